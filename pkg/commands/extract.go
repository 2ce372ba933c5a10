package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AI-READI/fitpack/pkg/dedup"
)

type ExtractCmdOptions struct {
	InputFile  string
	OutputPath string
}

var extractOpts = &ExtractCmdOptions{}

var ExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract an archive, de-duplicate the extracted files and print the directory",
	RunE:  runExtract,
}

func init() {
	ExtractCmd.Flags().StringVarP(&extractOpts.InputFile, "input", "i", "", "Archive to extract")
	ExtractCmd.Flags().StringVarP(&extractOpts.OutputPath, "output", "o", "", "Directory to extract into (a temporary directory is created when omitted)")
	ExtractCmd.MarkFlagRequired("input")
}

func runExtract(cmd *cobra.Command, args []string) error {
	dir, err := dedup.ExtractAndDeduplicate(dedup.ExtractOptions{
		ArchivePath: extractOpts.InputFile,
		OutputPath:  extractOpts.OutputPath,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), dir)
	return nil
}
