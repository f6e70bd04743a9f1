// Package main is the entrypoint for the lycento license CLI.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"runtime"
	"time"

	"github.com/lycento/lycento-go/internal/config"
	"github.com/lycento/lycento-go/internal/httpclient"
	"github.com/lycento/lycento-go/pkg/device"
	"github.com/lycento/lycento-go/pkg/lycento"
	"github.com/lycento/lycento-go/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Build-time variables set via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app holds global flags and the resources built from them.
type app struct {
	configPath  string
	baseURL     string
	apiKey      string
	timeout     time.Duration
	jsonOutput  bool
	verbose     bool
	metricsFile string

	registry *prometheus.Registry
	logger   zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "lycento",
		Short: "Lycento license client",
		Long: `lycento activates, validates and deactivates Lycento licenses on this
machine and inspects license details.

Run 'lycento config set-server <url>' to point it at your license server.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			a.logger = newLogger(cmd.ErrOrStderr(), a.verbose)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (default: ~/.lycento/config.yml)")
	flags.StringVar(&a.baseURL, "base-url", "", "License server URL (overrides config and "+config.EnvBaseURL+")")
	flags.StringVar(&a.apiKey, "api-key", "", "API key (overrides config and "+config.EnvAPIKey+")")
	flags.DurationVar(&a.timeout, "timeout", 0, "Request timeout (default: 10s)")
	flags.BoolVar(&a.jsonOutput, "json", false, "Print results as JSON")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")
	flags.StringVar(&a.metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after each command")

	rootCmd.AddCommand(
		newVersionCmd(),
		newActivateCmd(a),
		newValidateCmd(a),
		newCheckCmd(a),
		newDeactivateCmd(a),
		newInfoCmd(a),
		newDeviceCmd(a),
		newConfigCmd(a),
	)

	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Lycento CLI %s\n", Version)
			fmt.Fprintf(out, "  Commit:     %s\n", Commit)
			fmt.Fprintf(out, "  Built:      %s\n", BuildDate)
			fmt.Fprintf(out, "  Go version: %s\n", runtime.Version())
			fmt.Fprintf(out, "  OS/Arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newLogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}).
		Level(level).
		With().
		Timestamp().
		Logger()
}

// configFilePath returns the --config value or the default path.
func (a *app) configFilePath() (string, error) {
	if a.configPath != "" {
		return a.configPath, nil
	}
	return config.DefaultConfigPath()
}

// readConfig loads the --config file, or the default one.
func (a *app) readConfig() (*config.ClientConfig, error) {
	if a.configPath != "" {
		return config.Load(a.configPath)
	}
	return config.LoadDefault()
}

// writeConfig saves cfg to the --config file, or the default one.
func (a *app) writeConfig(cfg *config.ClientConfig) error {
	if a.configPath != "" {
		return cfg.Save(a.configPath)
	}
	return cfg.SaveDefault()
}

// loadConfig merges the config file, environment and flags, in increasing
// precedence.
func (a *app) loadConfig() (*config.ClientConfig, error) {
	cfg, err := a.readConfig()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	cfg.ApplyEnv()
	if a.baseURL != "" {
		cfg.BaseURL = a.baseURL
	}
	if a.apiKey != "" {
		cfg.APIKey = a.apiKey
	}
	if a.timeout > 0 {
		cfg.Timeout = config.Duration(a.timeout)
	}

	return cfg, nil
}

// newClient builds a license client from the merged configuration.
func (a *app) newClient() (*lycento.Client, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("no license server configured; run 'lycento config set-server <url>' or pass --base-url")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	httpClient, err := httpclient.NewWithConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("create HTTP client: %w", err)
	}

	clientCfg := lycento.Config{
		BaseURL:    cfg.BaseURL,
		APIKey:     cfg.APIKey,
		HTTPClient: httpClient,
		Logger:     a.logger,
		Resolver:   device.NewResolver(device.ResolverConfig{Logger: a.logger}),
	}

	if a.metricsFile != "" {
		a.registry = prometheus.NewRegistry()
		m, err := metrics.NewClientMetrics(a.registry)
		if err != nil {
			return nil, err
		}
		clientCfg.Metrics = m
	}

	return lycento.New(clientCfg)
}

// flushMetrics writes the metrics textfile if --metrics-file was given.
func (a *app) flushMetrics() {
	if a.registry == nil {
		return
	}
	if err := metrics.WriteTextfile(a.metricsFile, a.registry); err != nil {
		a.logger.Warn().Err(err).Str("path", a.metricsFile).Msg("failed to write metrics")
	}
}

func (a *app) printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}

func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return "never"
	}
	return t.Format(time.RFC3339)
}
