package scraper

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"sdsscraper/internal/downloader"
	"sdsscraper/pkg/client"
	"sdsscraper/pkg/config"
	"sdsscraper/pkg/extract"
	"sdsscraper/pkg/fetcher"
	"sdsscraper/pkg/filename"
	"sdsscraper/pkg/logger"
	"sdsscraper/pkg/render"
	"sdsscraper/pkg/storage"
)

// Summary describes one run
type Summary struct {
	RunID         string
	FetchSkipped  bool
	PagesRendered int
	PagesFailed   int
	URLsExtracted int
	Downloaded    int
	Skipped       int
	Failed        int
	Bytes         int64
	Elapsed       time.Duration
}

// ResultHandler is called for every download result, from a single goroutine
type ResultHandler func(downloader.DownloadResult)

// ExtractHandler is called once with the number of unique document URLs,
// before any download starts
type ExtractHandler func(count int)

// Scraper ties the fetch, extract and download stages together
type Scraper struct {
	config    *config.Config
	renderer  render.Renderer
	client    downloader.DocumentDownloader
	storage   downloader.DocumentStorage
	htmlFile  *storage.HTMLFile
	extractor *extract.Extractor
	onResult  ResultHandler
	onExtract ExtractHandler
	refetch   bool
	runID     string
	logger    logger.Logger
}

// Option customises a Scraper
type Option func(*Scraper)

// WithRenderer replaces the renderer chosen by browser.engine
func WithRenderer(r render.Renderer) Option {
	return func(s *Scraper) { s.renderer = r }
}

// WithDownloader replaces the HTTP client used for documents
func WithDownloader(d downloader.DocumentDownloader) Option {
	return func(s *Scraper) { s.client = d }
}

// WithStorage replaces the document store
func WithStorage(st downloader.DocumentStorage) Option {
	return func(s *Scraper) { s.storage = st }
}

// WithLogger sets the logger; defaults to the global logger
func WithLogger(l logger.Logger) Option {
	return func(s *Scraper) { s.logger = l }
}

// WithResultHandler registers a callback for each download result
func WithResultHandler(h ResultHandler) Option {
	return func(s *Scraper) { s.onResult = h }
}

// WithExtractHandler registers a callback for the extracted URL count
func WithExtractHandler(h ExtractHandler) Option {
	return func(s *Scraper) { s.onExtract = h }
}

// WithRefetch discards an existing HTML file so pages are rendered again
func WithRefetch(refetch bool) Option {
	return func(s *Scraper) { s.refetch = refetch }
}

// New creates a Scraper from cfg. Components not supplied through options
// are built from the configuration.
func New(cfg *config.Config, opts ...Option) (*Scraper, error) {
	s := &Scraper{
		config:   cfg,
		htmlFile: storage.NewHTMLFile(cfg.Output.HTMLFile),
		runID:    uuid.NewString(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = logger.GetLogger()
	}
	s.logger = s.logger.WithField("run_id", s.runID)

	extractor, err := extract.New(cfg.Extract.Mode)
	if err != nil {
		return nil, err
	}
	s.extractor = extractor

	if s.client == nil {
		c := client.NewClient(cfg.Download.DownloadTimeout, s.logger)
		if cfg.Download.UserAgent != "" {
			c.SetHeader("User-Agent", cfg.Download.UserAgent)
		}
		s.client = c
	}

	if s.renderer == nil {
		pageClient := client.NewClient(cfg.Browser.PageTimeout, s.logger)
		if cfg.Browser.UserAgent != "" {
			pageClient.SetHeader("User-Agent", cfg.Browser.UserAgent)
		}
		r, err := render.New(cfg.Browser, pageClient)
		if err != nil {
			return nil, err
		}
		s.renderer = r
	}

	return s, nil
}

// RunID identifies this scraper's log lines
func (s *Scraper) RunID() string {
	return s.runID
}

// Fetch renders the configured page range into the HTML file
func (s *Scraper) Fetch(ctx context.Context) (fetcher.Result, error) {
	f := fetcher.New(s.renderer, s.htmlFile, s.config.Site.BaseURL, s.logger)
	return f.Fetch(ctx, s.config.Site.StartPage, s.config.Site.EndPage)
}

// ExtractURLs reads the HTML file and returns the unique document URLs in it
func (s *Scraper) ExtractURLs() ([]string, error) {
	html, err := s.htmlFile.Read()
	if err != nil {
		return nil, err
	}

	urls, err := s.extractor.Extract(html)
	if err != nil {
		return nil, err
	}

	s.logger.InfoWithFields("Extracted document URLs", map[string]interface{}{
		"mode":  s.extractor.Mode(),
		"count": len(urls),
		"bytes": len(html),
	})
	return urls, nil
}

// Jobs maps each URL to a download job with its derived filename
func (s *Scraper) Jobs(urls []string) []downloader.DownloadJob {
	jobs := make([]downloader.DownloadJob, 0, len(urls))
	owners := make(map[string]string, len(urls))

	for _, u := range urls {
		name := filename.Derive(u)
		if s.config.Output.SanitizeFilenames {
			name = filename.Sanitize(name)
		}

		if prev, ok := owners[name]; ok {
			s.logger.WarnWithFields("Distinct URLs map to the same filename", map[string]interface{}{
				"filename": name,
				"url":      u,
				"previous": prev,
			})
		} else {
			owners[name] = u
		}

		jobs = append(jobs, downloader.DownloadJob{URL: u, Filename: name})
	}
	return jobs
}

// Download runs jobs through the worker pool and tallies the results into summary.
// If ctx is cancelled, downloads in flight finish and are counted, queued jobs
// are dropped and ctx.Err() is returned.
func (s *Scraper) Download(ctx context.Context, jobs []downloader.DownloadJob, summary *Summary) error {
	store, err := s.documentStorage()
	if err != nil {
		return err
	}

	pool := downloader.NewWorkerPool(ctx, s.config.Download.ConcurrentDownloads, s.client, store, s.logger)
	pool.Start()

	var g errgroup.Group

	g.Go(func() error {
		defer pool.Stop()
		for _, job := range jobs {
			if err := pool.Submit(job); err != nil {
				return err
			}
		}
		return nil
	})

	g.Go(func() error {
		for result := range pool.Results() {
			switch result.Status {
			case downloader.StatusDownloaded:
				summary.Downloaded++
				summary.Bytes += int64(result.Size)
			case downloader.StatusSkipped:
				summary.Skipped++
			default:
				summary.Failed++
			}
			if s.onResult != nil {
				s.onResult(result)
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

func (s *Scraper) documentStorage() (downloader.DocumentStorage, error) {
	if s.storage != nil {
		return s.storage, nil
	}
	m, err := storage.NewManager(s.config.Output.PDFDirectory)
	if err != nil {
		return nil, err
	}
	s.storage = m
	return m, nil
}

// Run executes the whole pipeline. Page and download failures are counted
// in the summary, not returned; an error means the run could not complete.
func (s *Scraper) Run(ctx context.Context) (*Summary, error) {
	start := time.Now()
	summary := &Summary{RunID: s.runID}
	defer func() { summary.Elapsed = time.Since(start) }()

	if s.refetch {
		if err := s.htmlFile.Remove(); err != nil {
			return summary, err
		}
	}

	if s.htmlFile.Exists() {
		summary.FetchSkipped = true
		s.logger.InfoWithFields("HTML file exists, skipping page fetch", map[string]interface{}{
			"html_file": s.htmlFile.Path(),
		})
	} else {
		result, err := s.Fetch(ctx)
		summary.PagesRendered = result.Rendered
		summary.PagesFailed = result.Failed
		if err != nil {
			return summary, fmt.Errorf("page fetch interrupted: %w", err)
		}
	}

	urls, err := s.ExtractURLs()
	if err != nil {
		return summary, err
	}
	summary.URLsExtracted = len(urls)
	if s.onExtract != nil {
		s.onExtract(len(urls))
	}

	if err := s.Download(ctx, s.Jobs(urls), summary); err != nil {
		return summary, fmt.Errorf("download interrupted: %w", err)
	}

	s.logger.InfoWithFields("Run finished", map[string]interface{}{
		"pages_rendered": summary.PagesRendered,
		"pages_failed":   summary.PagesFailed,
		"urls":           summary.URLsExtracted,
		"downloaded":     summary.Downloaded,
		"skipped":        summary.Skipped,
		"failed":         summary.Failed,
		"duration":       time.Since(start),
	})

	return summary, nil
}
