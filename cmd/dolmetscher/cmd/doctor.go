package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/msto63/dolmetscher/pkg/core/health"
)

var doctorTimeout time.Duration

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the translation service and the speech capabilities",
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := setup(cmd)
		if err != nil {
			printError("startup failed", err)
			return err
		}
		defer app.Close()

		report := app.Health.CheckWithTimeout(doctorTimeout)
		fmt.Print(report.String())

		if report.Status == health.StatusUnhealthy {
			return fmt.Errorf("%s is unhealthy", report.Service)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	doctorCmd.Flags().DurationVar(&doctorTimeout, "timeout", 5*time.Second, "timeout for all checks")
}
