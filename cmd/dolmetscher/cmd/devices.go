//go:build voice

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/dolmetscher/internal/audio"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio input devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := audio.ListDevices()
		if err != nil {
			printError("failed to list devices", err)
			return err
		}

		for _, d := range devices {
			if d.MaxInputChannels == 0 {
				continue
			}
			marker := " "
			if d.IsDefaultInput {
				marker = "*"
			}
			fmt.Printf("%s %-40s %d ch  %.0f Hz\n", marker, d.Name, d.MaxInputChannels, d.DefaultSampleRate)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
