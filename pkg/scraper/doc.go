// Package scraper runs the whole literature-library pipeline.
//
// A run has three stages:
//
//  1. Fetch: unless the HTML accumulation file already exists, render every
//     listing page in the configured range and append it to the file.
//  2. Extract: read the file back, pull out document download URLs and
//     remove duplicates.
//  3. Download: derive a filename per URL and hand the jobs to a bounded
//     worker pool. Files already on disk are skipped, so an interrupted run
//     can simply be started again.
//
// Failed pages and failed downloads are logged and counted in the Summary;
// they never abort the run. Run only returns an error when the HTML file
// cannot be read or the context is cancelled.
//
// Usage:
//
//	s, err := scraper.New(cfg)
//	if err != nil {
//	    return err
//	}
//	summary, err := s.Run(ctx)
package scraper
