package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/msto63/dolmetscher/pkg/core/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Print(version.Info())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
