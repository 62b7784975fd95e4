package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"sdsscraper/pkg/scraper"
	"sdsscraper/pkg/storage"
	"sdsscraper/pkg/ui"
)

// fetchCmd renders pages without downloading anything
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Render listing pages and append them to the HTML file",
	Long: `Render listing pages start..end-1 and append each one to the HTML file.

Unlike run, fetch always renders: pages are appended to an existing file.
Pass --refetch to start from an empty file.`,
	Example: `  sdsscraper fetch --start 500 --end 600
  sdsscraper fetch --engine http --html-file pages.html --refetch`,
	Args: cobra.NoArgs,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	addPageFlags(fetchCmd)
	fetchCmd.Flags().BoolVar(&refetch, "refetch", false, "remove the HTML file before rendering")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, err := setup(changedFlags(cmd, pipelineFlags))
	if err != nil {
		return err
	}

	if refetch {
		if err := storage.NewHTMLFile(cfg.Output.HTMLFile).Remove(); err != nil {
			return err
		}
	}

	s, err := scraper.New(cfg)
	if err != nil {
		return err
	}

	result, err := s.Fetch(cmd.Context())

	console := ui.NewConsole(os.Stdout, noColor)
	console.PrintInfo("Pages", fmt.Sprintf("%d rendered, %d failed", result.Rendered, result.Failed))
	console.PrintInfo("HTML file", cfg.Output.HTMLFile)
	return err
}
