package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"sdsscraper/pkg/filename"
)

var sanitizeNames bool

// filenameCmd derives filenames without touching the network or disk
var filenameCmd = &cobra.Command{
	Use:   "filename <url>...",
	Short: "Print the filename each document URL is saved as",
	Example: `  sdsscraper filename 'https://bio-rad-sds.thewercs.com/DirectDocumentDownloader/Document?prd=ABC123~~lang=en'
  # abc123-lang=en.pdf`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		for _, u := range args {
			name := filename.Derive(u)
			if sanitizeNames {
				name = filename.Sanitize(name)
			}
			fmt.Fprintln(out, name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(filenameCmd)
	filenameCmd.Flags().BoolVar(&sanitizeNames, "sanitize", false, "replace filesystem-unsafe characters")
}
