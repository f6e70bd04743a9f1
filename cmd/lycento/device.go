package main

import (
	"fmt"

	"github.com/lycento/lycento-go/pkg/device"
	"github.com/spf13/cobra"
)

func newDeviceCmd(a *app) *cobra.Command {
	var idOnly bool

	cmd := &cobra.Command{
		Use:   "device",
		Short: "Show the identity this machine reports to the license server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver := device.NewResolver(device.ResolverConfig{Logger: a.logger})
			out := cmd.OutOrStdout()

			if idOnly {
				fmt.Fprintln(out, resolver.DeviceID(cmd.Context()))
				return nil
			}

			info := resolver.Info(cmd.Context())
			if a.jsonOutput {
				return a.printJSON(out, info)
			}

			fmt.Fprintf(out, "Device ID:        %s\n", info.DeviceID)
			fmt.Fprintf(out, "Device name:      %s\n", info.DeviceName)
			fmt.Fprintf(out, "Platform:         %s\n", info.Platform)
			fmt.Fprintf(out, "Platform version: %s\n", info.PlatformVersion)
			fmt.Fprintf(out, "Architecture:     %s\n", info.Architecture)
			return nil
		},
	}

	cmd.Flags().BoolVar(&idOnly, "id", false, "Print only the device ID")

	return cmd
}
