package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"sdsscraper/internal/downloader"
	"sdsscraper/pkg/logger"
	"sdsscraper/pkg/scraper"
	"sdsscraper/pkg/ui"
)

var (
	refetch bool
	notify  bool
)

// pipelineFlags maps CLI flag names to config flag keys
var pipelineFlags = map[string]string{
	"base-url":           "base-url",
	"start":              "start-page",
	"end":                "end-page",
	"engine":             "engine",
	"headless":           "headless",
	"mode":               "mode",
	"html-file":          "html-file",
	"output":             "output",
	"sanitize-filenames": "sanitize-filenames",
	"workers":            "workers",
}

// runCmd represents the run command
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Fetch listing pages, extract links and download every document",
	Long: `Run the full pipeline.

If the HTML file does not exist yet, listing pages start..end-1 are rendered
and appended to it. Otherwise the existing file is reused (pass --refetch to
render again). Every document URL found in the file is downloaded into the
output directory, skipping files that already exist.

Failed pages and downloads are reported but do not change the exit code.`,
	Example: `  # Default run: pages 0-9, 20 workers, documents in ./PDFs
  sdsscraper run

  # Pages 500-599 with 50 workers
  sdsscraper run --start 500 --end 600 --workers 50

  # Render again with go-rod and parse the DOM instead of using the regex
  sdsscraper run --refetch --engine rod --mode dom`,
	Args: cobra.NoArgs,
	RunE: runPipeline,
}

func init() {
	rootCmd.AddCommand(runCmd)
	addPageFlags(runCmd)
	addExtractFlags(runCmd)

	runCmd.Flags().StringP("output", "o", "", "directory documents are saved to (default PDFs)")
	runCmd.Flags().IntP("workers", "w", 0, "number of concurrent downloads (default 20)")
	runCmd.Flags().BoolVar(&refetch, "refetch", false, "discard the HTML file and render the pages again")
	runCmd.Flags().BoolVar(&notify, "notify", false, "send a desktop notification when the run finishes")
}

// addPageFlags registers the flags that control page rendering
func addPageFlags(cmd *cobra.Command) {
	cmd.Flags().String("base-url", "", "listing URL the page number is appended to")
	cmd.Flags().Int("start", 0, "first page to render")
	cmd.Flags().Int("end", 0, "page to stop before")
	cmd.Flags().String("engine", "", "render engine: chromedp, rod or http")
	cmd.Flags().Bool("headless", true, "run the browser headless")
	cmd.Flags().String("html-file", "", "HTML accumulation file (default bio-rad-msds.html)")
}

// addExtractFlags registers the flags that control link extraction
func addExtractFlags(cmd *cobra.Command) {
	if cmd.Flags().Lookup("html-file") == nil {
		cmd.Flags().String("html-file", "", "HTML accumulation file (default bio-rad-msds.html)")
	}
	cmd.Flags().String("mode", "", "extraction mode: regex or dom")
	cmd.Flags().Bool("sanitize-filenames", false, "replace filesystem-unsafe characters in filenames")
}

func runPipeline(cmd *cobra.Command, args []string) error {
	cfg, err := setup(changedFlags(cmd, pipelineFlags))
	if err != nil {
		return err
	}

	console := ui.NewConsole(os.Stdout, noColor)
	console.PrintLogo()
	console.PrintInfo("Pages", fmt.Sprintf("%d..%d", cfg.Site.StartPage, cfg.Site.EndPage-1))
	console.PrintInfo("Engine", cfg.Browser.Engine)
	console.PrintInfo("HTML file", cfg.Output.HTMLFile)
	console.PrintInfo("Output", cfg.Output.PDFDirectory)
	console.PrintInfo("Workers", fmt.Sprintf("%d", cfg.Download.ConcurrentDownloads))

	tracker := ui.NewStatusTracker(0)
	live := console.Interactive()
	s, err := scraper.New(cfg,
		scraper.WithRefetch(refetch),
		scraper.WithExtractHandler(tracker.SetTotal),
		scraper.WithResultHandler(func(r downloader.DownloadResult) {
			reportResult(console, tracker, r, live)
		}),
	)
	if err != nil {
		return err
	}

	logger.WithField("version", version).WithField("run_id", s.RunID()).Info("sdsscraper starting")

	summary, err := s.Run(cmd.Context())
	if summary != nil {
		printSummary(console, summary, tracker)
	}

	if notify {
		n := ui.NewNotifier(console)
		if err != nil {
			n.SendError("sdsscraper", err.Error())
		} else {
			n.SendSuccess("sdsscraper", fmt.Sprintf("%d downloaded, %d skipped, %d failed",
				summary.Downloaded, summary.Skipped, summary.Failed))
		}
	}

	return err
}

// reportResult records r and prints its line. When live, the progress line
// is cleared first and redrawn below the result.
func reportResult(c *ui.Console, tracker *ui.StatusTracker, r downloader.DownloadResult, live bool) {
	tracker.Record(string(r.Status), r.Size)
	if live {
		c.ClearLine()
	}
	printResult(c, r)
	if live {
		tracker.PrintProgress(c)
	}
}

// printResult writes one console line per finished download
func printResult(c *ui.Console, r downloader.DownloadResult) {
	switch r.Status {
	case downloader.StatusDownloaded:
		fmt.Fprintf(c.Writer(), "%s %s %s\n", c.Green("[SAVED]"), r.Job.Filename, c.Dim(ui.FormatBytes(int64(r.Size))))
	case downloader.StatusSkipped:
		fmt.Fprintf(c.Writer(), "%s %s\n", c.Dim("[EXISTS]"), r.Job.Filename)
	default:
		fmt.Fprintf(c.Writer(), "%s %s: %v\n", c.Red("[FAILED]"), r.Job.Filename, r.Error)
	}
}

// printSummary writes the final report of a run
func printSummary(c *ui.Console, s *scraper.Summary, tracker *ui.StatusTracker) {
	fmt.Fprintln(c.Writer())
	if s.FetchSkipped {
		c.PrintInfo("Pages", "reused existing HTML file")
	} else {
		c.PrintInfo("Pages", fmt.Sprintf("%d rendered, %d failed", s.PagesRendered, s.PagesFailed))
	}
	c.PrintInfo("Documents", fmt.Sprintf("%d unique URLs", s.URLsExtracted))
	c.PrintInfo("Result", fmt.Sprintf("%d downloaded (%s), %d skipped, %d failed",
		s.Downloaded, ui.FormatBytes(s.Bytes), s.Skipped, s.Failed))
	if s.Downloaded > 0 {
		c.PrintInfo("Rate", fmt.Sprintf("%.1f documents/min", tracker.GetDownloadRate()))
	}
	c.PrintInfo("Elapsed", s.Elapsed.Round(time.Millisecond).String())

	if s.Failed > 0 {
		c.PrintWarning(fmt.Sprintf("%d downloads failed; run again to retry them", s.Failed))
	} else {
		c.PrintSuccess("All downloads completed.")
	}
}
