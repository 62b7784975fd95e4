package fetcher

import (
	"context"
	"fmt"
	"time"

	"sdsscraper/pkg/logger"
	"sdsscraper/pkg/render"
)

// PageURL returns the listing URL for page n: the base URL with n appended
func PageURL(baseURL string, n int) string {
	return fmt.Sprintf("%s%d", baseURL, n)
}

// Sink receives the HTML of every rendered page
type Sink interface {
	Append(html string) error
}

// Result counts the pages handled by one Fetch call
type Result struct {
	Rendered int
	Failed   int
	Duration time.Duration
}

// Fetcher renders listing pages one by one and appends them to a Sink
type Fetcher struct {
	renderer render.Renderer
	sink     Sink
	baseURL  string
	logger   logger.Logger
}

// New creates a Fetcher for pages under baseURL
func New(renderer render.Renderer, sink Sink, baseURL string, log logger.Logger) *Fetcher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &Fetcher{
		renderer: renderer,
		sink:     sink,
		baseURL:  baseURL,
		logger:   log.WithField("component", "fetcher"),
	}
}

// Fetch renders pages start..end-1 in ascending order. A page that fails to
// render or to append is logged and skipped. Fetch stops early only when ctx
// is cancelled, returning the counts so far together with ctx.Err().
func (f *Fetcher) Fetch(ctx context.Context, start, end int) (Result, error) {
	began := time.Now()
	var result Result

	logger.LogComponentStart(f.logger, "fetcher", map[string]interface{}{
		"start_page": start,
		"end_page":   end,
	})

	for page := start; page < end; page++ {
		if err := ctx.Err(); err != nil {
			result.Duration = time.Since(began)
			return result, err
		}

		url := PageURL(f.baseURL, page)
		f.logger.DebugWithFields("Rendering page", map[string]interface{}{
			"page": page,
			"url":  url,
		})

		html, err := f.renderer.Render(ctx, url)
		if err != nil {
			result.Failed++
			logger.LogPageFetch(f.logger, page, url, 0, err)
			continue
		}

		if err := f.sink.Append(html); err != nil {
			result.Failed++
			logger.LogPageFetch(f.logger, page, url, len(html), err)
			continue
		}

		result.Rendered++
		logger.LogPageFetch(f.logger, page, url, len(html), nil)
	}

	result.Duration = time.Since(began)
	f.logger.InfoWithFields("Page fetch finished", map[string]interface{}{
		"rendered": result.Rendered,
		"failed":   result.Failed,
		"duration": result.Duration,
	})
	return result, nil
}
