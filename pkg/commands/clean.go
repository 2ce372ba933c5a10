package commands

import (
	"github.com/spf13/cobra"

	"github.com/AI-READI/fitpack/pkg/dedup"
)

type CleanCmdOptions struct {
	Workers int
}

var cleanOpts = &CleanCmdOptions{}

var CleanCmd = &cobra.Command{
	Use:   "clean <root_dir>",
	Short: "Remove duplicate Monitor FIT copies from every FIT-*.zip archive in a directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runClean,
}

func init() {
	CleanCmd.Flags().IntVarP(&cleanOpts.Workers, "workers", "w", 1, "Number of archives to process concurrently")
}

func runClean(cmd *cobra.Command, args []string) error {
	// Per-archive failures are contained and counted inside CleanDirectory;
	// only a bad root path surfaces here and fails the command.
	_, err := dedup.CleanDirectory(dedup.CleanOptions{
		RootDir: args[0],
		Workers: cleanOpts.Workers,
	})
	return err
}
