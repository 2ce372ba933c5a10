package commands

import (
	"github.com/spf13/cobra"

	"github.com/AI-READI/fitpack/pkg/dedup"
)

var logLevel string

var RootCmd = &cobra.Command{
	Use:   "fitpack",
	Short: "De-duplicate Garmin Monitor FIT files inside FIT-*.zip archives",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return dedup.SetLogLevel(logLevel)
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error, disabled")
	RootCmd.AddCommand(CleanCmd)
	RootCmd.AddCommand(ExtractCmd)
}
