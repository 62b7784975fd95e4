package scraper

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sdsscraper/internal/downloader"
	"sdsscraper/internal/testserver"
	"sdsscraper/pkg/client"
	"sdsscraper/pkg/config"
	errs "sdsscraper/pkg/errors"
	"sdsscraper/pkg/logger"
	"sdsscraper/pkg/render"
)

type testEnv struct {
	server *testserver.MockLibraryServer
	config *config.Config
	dir    string
	log    *logger.TestLogger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	server := testserver.NewMockLibraryServer()
	t.Cleanup(server.Close)

	server.SetPage(0, "prd=ABC123~~EN", "prd=DEF456~~lang=de")
	server.SetPage(1, "prd=ABC123~~EN", "prd=X|Y", "prd=MISSING~~EN", "prd=GHI789~~FR")

	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Site.BaseURL = server.ListingBaseURL()
	cfg.Site.StartPage = 0
	cfg.Site.EndPage = 2
	cfg.Browser.Engine = config.EngineHTTP
	cfg.Output.HTMLFile = filepath.Join(dir, "bio-rad-msds.html")
	cfg.Output.PDFDirectory = filepath.Join(dir, "PDFs")
	cfg.Download.ConcurrentDownloads = 4

	server.SetErrorResponse("prd=MISSING~~EN", http.StatusNotFound)

	return &testEnv{server: server, config: cfg, dir: dir, log: logger.NewTestLogger()}
}

func (e *testEnv) newScraper(t *testing.T, opts ...Option) *Scraper {
	t.Helper()

	httpClient := client.NewClientWithHTTP(e.server.Client(), e.log)
	base := []Option{
		WithLogger(e.log),
		WithRenderer(render.NewHTTPRenderer(httpClient, 5*time.Second)),
		WithDownloader(httpClient),
	}

	s, err := New(e.config, append(base, opts...)...)
	require.NoError(t, err)
	return s
}

func (e *testEnv) pdf(name string) string {
	return filepath.Join(e.config.Output.PDFDirectory, name)
}

func TestRunEndToEnd(t *testing.T) {
	env := newTestEnv(t)

	var mu sync.Mutex
	seen := map[string]downloader.Status{}
	s := env.newScraper(t, WithResultHandler(func(r downloader.DownloadResult) {
		mu.Lock()
		defer mu.Unlock()
		seen[r.Job.Filename] = r.Status
	}))

	summary, err := s.Run(context.Background())
	require.NoError(t, err)

	assert.False(t, summary.FetchSkipped)
	assert.Equal(t, 2, summary.PagesRendered)
	assert.Equal(t, 0, summary.PagesFailed)
	assert.Equal(t, 4, summary.URLsExtracted, "duplicates and piped URLs removed")
	assert.Equal(t, 3, summary.Downloaded)
	assert.Equal(t, 0, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, s.RunID(), summary.RunID)
	assert.NotZero(t, summary.Elapsed)

	for query, name := range map[string]string{
		"prd=ABC123~~EN":      "abc123-en.pdf",
		"prd=DEF456~~lang=de": "def456-lang=de.pdf",
		"prd=GHI789~~FR":      "ghi789-fr.pdf",
	} {
		data, err := os.ReadFile(env.pdf(name))
		require.NoError(t, err, name)
		assert.Equal(t, testserver.DocumentBody(query), data)
		assert.Equal(t, 1, env.server.DocumentRequests(query), "each URL fetched once")
	}

	_, err = os.Stat(env.pdf("missing-en.pdf"))
	assert.True(t, os.IsNotExist(err), "failed download leaves no file")

	assert.Equal(t, downloader.StatusFailed, seen["missing-en.pdf"])
	assert.Len(t, seen, 4)
	assert.True(t, env.log.HasMessage("Run finished"))
}

func TestRunIsIdempotent(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.newScraper(t).Run(context.Background())
	require.NoError(t, err)
	listings := env.server.ListingRequests()

	summary, err := env.newScraper(t).Run(context.Background())
	require.NoError(t, err)

	assert.True(t, summary.FetchSkipped)
	assert.Equal(t, listings, env.server.ListingRequests(), "existing HTML file is reused")
	assert.Equal(t, 0, summary.Downloaded)
	assert.Equal(t, 3, summary.Skipped)
	assert.Equal(t, 1, summary.Failed)

	// existing files are never requested again, the failed one is retried
	assert.Equal(t, 1, env.server.DocumentRequests("prd=ABC123~~EN"))
	assert.Equal(t, 2, env.server.DocumentRequests("prd=MISSING~~EN"))
}

func TestRunRefetch(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.newScraper(t).Run(context.Background())
	require.NoError(t, err)

	env.server.SetPage(0, "prd=NEW001~~EN")
	env.server.SetPage(1)

	summary, err := env.newScraper(t, WithRefetch(true)).Run(context.Background())
	require.NoError(t, err)

	assert.False(t, summary.FetchSkipped)
	assert.Equal(t, 4, env.server.ListingRequests())
	assert.Equal(t, 1, summary.URLsExtracted, "old pages were discarded")
	assert.Equal(t, 1, summary.Downloaded)
	assert.FileExists(t, env.pdf("new001-en.pdf"))
}

func TestRunSkipsFailedPages(t *testing.T) {
	env := newTestEnv(t)
	env.config.Site.EndPage = 3
	env.server.SetPage(2, "prd=LATE~~EN")
	env.server.SetErrorResponse("page=1", http.StatusInternalServerError)

	summary, err := env.newScraper(t).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, summary.PagesRendered)
	assert.Equal(t, 1, summary.PagesFailed)
	assert.Equal(t, 3, summary.URLsExtracted)
	assert.FileExists(t, env.pdf("late-en.pdf"))
	assert.NoFileExists(t, env.pdf("ghi789-fr.pdf"))
}

func TestRunWithoutHTMLFileFails(t *testing.T) {
	env := newTestEnv(t)
	env.config.Site.EndPage = 0

	_, err := env.newScraper(t).Run(context.Background())
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeFilesystem))
}

func TestRunCancelled(t *testing.T) {
	env := newTestEnv(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := env.newScraper(t).Run(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.PagesRendered)
	assert.Equal(t, 0, env.server.ListingRequests())
}

// slowDownloader honours ctx so an aborted download shows up as a failure
type slowDownloader struct {
	delay time.Duration
}

func (d slowDownloader) DownloadDocument(ctx context.Context, url string) ([]byte, error) {
	select {
	case <-time.After(d.delay):
		return []byte("%PDF " + url), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestDownloadCancelledMidBatch(t *testing.T) {
	env := newTestEnv(t)
	env.config.Download.ConcurrentDownloads = 2

	s := env.newScraper(t, WithDownloader(slowDownloader{delay: 200 * time.Millisecond}))
	jobs := s.Jobs([]string{
		testserver.DocumentURL("prd=A1~~EN"),
		testserver.DocumentURL("prd=A2~~EN"),
		testserver.DocumentURL("prd=A3~~EN"),
		testserver.DocumentURL("prd=A4~~EN"),
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	time.AfterFunc(50*time.Millisecond, cancel)

	summary := &Summary{}
	err := s.Download(ctx, jobs, summary)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)

	// in-flight downloads complete; the rest are never started
	assert.Equal(t, 2, summary.Downloaded)
	assert.Equal(t, 0, summary.Failed)
	assert.Equal(t, 0, summary.Skipped)

	entries, err := os.ReadDir(env.config.Output.PDFDirectory)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRunReportsExtractedCount(t *testing.T) {
	env := newTestEnv(t)

	var got []int
	var results int
	s := env.newScraper(t,
		WithExtractHandler(func(n int) {
			assert.Zero(t, results, "count arrives before any result")
			got = append(got, n)
		}),
		WithResultHandler(func(downloader.DownloadResult) { results++ }),
	)

	summary, err := s.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{summary.URLsExtracted}, got)
	assert.Equal(t, summary.URLsExtracted, results)
}

func TestRunDOMMode(t *testing.T) {
	env := newTestEnv(t)
	env.config.Extract.Mode = config.ModeDOM

	summary, err := env.newScraper(t).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, summary.URLsExtracted)
	assert.Equal(t, 3, summary.Downloaded)
}

func TestJobs(t *testing.T) {
	env := newTestEnv(t)
	urls := []string{
		testserver.DocumentURL("prd=ABC123~~EN"),
		testserver.DocumentURL("prd=A/B~~EN"),
		testserver.DocumentURL("prd=abc123~~en"),
	}

	jobs := env.newScraper(t).Jobs(urls)
	require.Len(t, jobs, 3)
	assert.Equal(t, "abc123-en.pdf", jobs[0].Filename)
	assert.Equal(t, "a/b-en.pdf", jobs[1].Filename)
	assert.Equal(t, urls[2], jobs[2].URL)
	assert.Len(t, env.log.GetMessagesByLevel("WARN"), 1, "filename collision reported")

	env.config.Output.SanitizeFilenames = true
	jobs = env.newScraper(t).Jobs(urls)
	assert.Equal(t, "a_b-en.pdf", jobs[1].Filename)
}

func TestNew(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Output.HTMLFile = filepath.Join(t.TempDir(), "pages.html")

	s, err := New(cfg, WithLogger(logger.NewNopLogger()))
	require.NoError(t, err)
	assert.IsType(t, &render.ChromeRenderer{}, s.renderer)
	assert.IsType(t, &client.Client{}, s.client)
	assert.NotEmpty(t, s.RunID())

	cfg.Extract.Mode = "xpath"
	_, err = New(cfg, WithLogger(logger.NewNopLogger()))
	assert.Error(t, err)

	cfg.Extract.Mode = config.ModeRegex
	cfg.Browser.Engine = "selenium"
	_, err = New(cfg, WithLogger(logger.NewNopLogger()))
	assert.Error(t, err)
}
