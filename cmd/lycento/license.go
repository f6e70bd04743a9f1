package main

import (
	"errors"
	"fmt"

	"github.com/lycento/lycento-go/pkg/device"
	"github.com/lycento/lycento-go/pkg/lycento"
	"github.com/spf13/cobra"
)

// errLicenseInvalid makes 'check' exit non-zero.
var errLicenseInvalid = errors.New("license is not valid on this device")

func newActivateCmd(a *app) *cobra.Command {
	var (
		deviceID   string
		deviceName string
		platform   string
		ipAddress  string
	)

	cmd := &cobra.Command{
		Use:   "activate <license-key>",
		Short: "Activate a license on this device",
		Long: `Activate a license on this device.

Device ID, name and platform are detected automatically unless given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := lycento.ActivateOptions{
				LicenseKey: args[0],
				DeviceID:   deviceID,
				DeviceName: deviceName,
				IPAddress:  ipAddress,
			}
			if platform != "" {
				p, err := device.ParsePlatform(platform)
				if err != nil {
					return err
				}
				opts.DevicePlatform = p
			}

			client, err := a.newClient()
			if err != nil {
				return err
			}
			defer a.flushMetrics()

			res, err := client.Activate(cmd.Context(), opts)
			if err != nil {
				return fmt.Errorf("activate license: %w", err)
			}

			if a.jsonOutput {
				return a.printJSON(cmd.OutOrStdout(), res)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "License activated: %v\n", res.Success)
			fmt.Fprintf(out, "Status:        %s\n", res.License.Status)
			fmt.Fprintf(out, "Type:          %s\n", res.License.Type)
			fmt.Fprintf(out, "Expires:       %s\n", formatTime(res.License.ExpiresAt))
			fmt.Fprintf(out, "Max devices:   %d\n", res.License.MaxDevices)
			fmt.Fprintf(out, "Activation ID: %d\n", res.Activation.ID)
			fmt.Fprintf(out, "Device:        %s (%s, %s)\n",
				res.Activation.DeviceName, res.Activation.DevicePlatform, res.Activation.DeviceID)
			return nil
		},
	}

	cmd.Flags().StringVar(&deviceID, "device-id", "", "Device ID (default: detected)")
	cmd.Flags().StringVar(&deviceName, "device-name", "", "Device name (default: detected)")
	cmd.Flags().StringVar(&platform, "platform", "", "Device platform: windows, macos, linux, android, ios, unknown")
	cmd.Flags().StringVar(&ipAddress, "ip", "", "IP address to report")

	return cmd
}

func newValidateCmd(a *app) *cobra.Command {
	var deviceID string

	cmd := &cobra.Command{
		Use:   "validate <license-key>",
		Short: "Validate a license for this device",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			defer a.flushMetrics()

			res, err := client.Validate(cmd.Context(), lycento.ValidateOptions{
				LicenseKey: args[0],
				DeviceID:   deviceID,
			})
			if err != nil {
				return fmt.Errorf("validate license: %w", err)
			}

			if a.jsonOutput {
				return a.printJSON(cmd.OutOrStdout(), res)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Valid:       %v\n", res.Valid)
			fmt.Fprintf(out, "Status:      %s\n", res.License.Status)
			fmt.Fprintf(out, "Type:        %s\n", res.License.Type)
			fmt.Fprintf(out, "Expires:     %s\n", formatTime(res.License.ExpiresAt))
			fmt.Fprintf(out, "Max devices: %d\n", res.License.MaxDevices)
			if res.Activation != nil {
				fmt.Fprintf(out, "Activation:  %d (%s), last validated %s\n",
					res.Activation.ID, res.Activation.DeviceName, formatTime(&res.Activation.LastValidatedAt))
			} else {
				fmt.Fprintln(out, "Activation:  none for this device")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&deviceID, "device-id", "", "Device ID (default: detected)")

	return cmd
}

func newCheckCmd(a *app) *cobra.Command {
	var deviceID string

	cmd := &cobra.Command{
		Use:   "check <license-key>",
		Short: "Exit 0 if the license is valid on this device, 1 otherwise",
		Long: `Check a license for scripting. Prints "valid" or "invalid" and exits
non-zero unless the license is valid. Network and server failures count as
invalid.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			defer a.flushMetrics()

			if !client.IsValid(cmd.Context(), args[0], deviceID) {
				fmt.Fprintln(cmd.OutOrStdout(), "invalid")
				return errLicenseInvalid
			}
			fmt.Fprintln(cmd.OutOrStdout(), "valid")
			return nil
		},
	}

	cmd.Flags().StringVar(&deviceID, "device-id", "", "Device ID (default: detected)")

	return cmd
}

func newDeactivateCmd(a *app) *cobra.Command {
	var deviceID string

	cmd := &cobra.Command{
		Use:   "deactivate <license-key>",
		Short: "Deactivate a license on a device",
		Long: `Deactivate a license on a registered device.

The device ID is required; run 'lycento device' to print this machine's ID.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			defer a.flushMetrics()

			res, err := client.Deactivate(cmd.Context(), lycento.DeactivateOptions{
				LicenseKey: args[0],
				DeviceID:   deviceID,
			})
			if err != nil {
				return fmt.Errorf("deactivate license: %w", err)
			}

			if a.jsonOutput {
				return a.printJSON(cmd.OutOrStdout(), res)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Device deactivated: %v\n", res.Success)
			if res.Message != "" {
				fmt.Fprintf(out, "Message:     %s\n", res.Message)
			}
			fmt.Fprintf(out, "Activation:  %d (%s)\n", res.Activation.ID, res.Activation.DeviceID)
			fmt.Fprintf(out, "Deactivated: %s\n", formatTime(&res.Activation.DeactivatedAt))
			return nil
		},
	}

	cmd.Flags().StringVar(&deviceID, "device-id", "", "Device ID to deactivate (required)")
	_ = cmd.MarkFlagRequired("device-id")

	return cmd
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <license-key>",
		Short: "Show license details and activations",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.newClient()
			if err != nil {
				return err
			}
			defer a.flushMetrics()

			info, err := client.GetInfo(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("get license info: %w", err)
			}

			if a.jsonOutput {
				return a.printJSON(cmd.OutOrStdout(), info)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "License key:    %s\n", info.License.Key)
			fmt.Fprintf(out, "Status:         %s\n", info.License.Status)
			fmt.Fprintf(out, "Type:           %s\n", info.License.Type)
			fmt.Fprintf(out, "Expires:        %s\n", formatTime(info.License.ExpiresAt))
			fmt.Fprintf(out, "Active devices: %d/%d\n", info.License.ActiveDevices, info.License.MaxDevices)
			fmt.Fprintln(out)

			if len(info.Activations) == 0 {
				fmt.Fprintln(out, "No activations.")
				return nil
			}
			fmt.Fprintln(out, "Activations:")
			for _, act := range info.Activations {
				state := "Inactive"
				if act.IsActive {
					state = "Active"
				}
				fmt.Fprintf(out, "- %s (%s): %s\n", act.DeviceName, act.DevicePlatform, state)
			}
			return nil
		},
	}
}
