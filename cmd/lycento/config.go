package main

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/lycento/lycento-go/internal/config"
	"github.com/lycento/lycento-go/internal/httpclient"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI configuration",
	}

	cmd.AddCommand(
		newConfigShowCmd(a),
		newConfigSetServerCmd(a),
		newConfigSetAPIKeyCmd(a),
		newConfigSetTimeoutCmd(a),
		newConfigSetProxyCmd(a),
	)

	return cmd
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return err
			}
			path, _ := a.configFilePath()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config file: %s\n", path)
			fmt.Fprintln(out)

			if !cfg.IsConfigured() {
				fmt.Fprintln(out, "No license server configured. Run 'lycento config set-server <url>' to set one.")
				return nil
			}

			apiKey := "(none)"
			if cfg.APIKey != "" {
				apiKey = maskAPIKey(cfg.APIKey)
			}
			fmt.Fprintf(out, "Server URL: %s\n", cfg.BaseURL)
			fmt.Fprintf(out, "API key:    %s\n", apiKey)
			fmt.Fprintf(out, "Timeout:    %s\n", cfg.RequestTimeout())
			fmt.Fprintf(out, "Proxy:      %s\n", httpclient.ProxyInfo(cfg.GetProxyConfig()))
			return nil
		},
	}
}

// updateConfig loads the config file (without env or flag overrides),
// applies fn and saves it back.
func (a *app) updateConfig(fn func(cfg *config.ClientConfig) error) error {
	cfg, err := a.readConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := fn(cfg); err != nil {
		return err
	}
	if err := a.writeConfig(cfg); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func newConfigSetServerCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-server <url>",
		Short: "Set the license server URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := url.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid server URL: %w", err)
			}
			if parsed.Scheme != "http" && parsed.Scheme != "https" {
				return fmt.Errorf("server URL must use http or https scheme")
			}

			serverURL := strings.TrimSuffix(args[0], "/")
			err = a.updateConfig(func(cfg *config.ClientConfig) error {
				cfg.BaseURL = serverURL
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Server URL set to: %s\n", serverURL)
			return nil
		},
	}
}

func newConfigSetAPIKeyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-api-key <key>",
		Short: "Set the API key sent as a bearer token (empty to clear)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.updateConfig(func(cfg *config.ClientConfig) error {
				cfg.APIKey = args[0]
				return nil
			})
			if err != nil {
				return err
			}

			if args[0] == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "API key cleared")
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "API key set to: %s\n", maskAPIKey(args[0]))
			}
			return nil
		},
	}
}

func newConfigSetTimeoutCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set-timeout <duration>",
		Short: "Set the request timeout, e.g. 10s",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := time.ParseDuration(args[0])
			if err != nil {
				return fmt.Errorf("invalid timeout: %w", err)
			}
			if d <= 0 {
				return fmt.Errorf("timeout must be positive")
			}

			err = a.updateConfig(func(cfg *config.ClientConfig) error {
				cfg.Timeout = config.Duration(d)
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Timeout set to: %s\n", d)
			return nil
		},
	}
}

func newConfigSetProxyCmd(a *app) *cobra.Command {
	var proxy config.ProxyConfig

	cmd := &cobra.Command{
		Use:   "set-proxy",
		Short: "Set outbound proxy settings (no flags clears them)",
		RunE: func(cmd *cobra.Command, args []string) error {
			err := a.updateConfig(func(cfg *config.ClientConfig) error {
				if !proxy.HasProxy() {
					cfg.Proxy = nil
					return nil
				}
				p := proxy
				cfg.Proxy = &p
				return nil
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Proxy: %s\n", httpclient.ProxyInfo(&proxy))
			return nil
		},
	}

	cmd.Flags().StringVar(&proxy.HTTPProxy, "http", "", "HTTP proxy URL")
	cmd.Flags().StringVar(&proxy.HTTPSProxy, "https", "", "HTTPS proxy URL")
	cmd.Flags().StringVar(&proxy.SOCKS5Proxy, "socks5", "", "SOCKS5 proxy URL (takes precedence)")
	cmd.Flags().StringVar(&proxy.NoProxy, "no-proxy", "", "Comma-separated hosts that bypass the proxy")

	return cmd
}
