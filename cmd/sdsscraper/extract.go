package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"sdsscraper/pkg/scraper"
)

// extractCmd lists the documents a run would download
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Print the document URLs and filenames found in the HTML file",
	Long: `Read the HTML file, extract unique document URLs and print each one
with the filename it would be saved as, separated by a tab.`,
	Example: `  sdsscraper extract
  sdsscraper extract --mode dom --html-file pages.html | wc -l`,
	Args: cobra.NoArgs,
	RunE: runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)
	addExtractFlags(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := setup(changedFlags(cmd, pipelineFlags))
	if err != nil {
		return err
	}

	s, err := scraper.New(cfg)
	if err != nil {
		return err
	}

	urls, err := s.ExtractURLs()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, job := range s.Jobs(urls) {
		fmt.Fprintf(out, "%s\t%s\n", job.URL, job.Filename)
	}
	return nil
}
