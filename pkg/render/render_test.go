package render

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sdsscraper/pkg/client"
	"sdsscraper/pkg/config"
	errs "sdsscraper/pkg/errors"
	"sdsscraper/pkg/logger"
)

func TestNewSelectsEngine(t *testing.T) {
	c := client.NewClient(time.Second, logger.NewNopLogger())
	cfg := config.DefaultConfig().Browser

	tests := []struct {
		engine  string
		want    interface{}
		wantErr bool
	}{
		{config.EngineChromedp, &ChromeRenderer{}, false},
		{"", &ChromeRenderer{}, false},
		{config.EngineRod, &RodRenderer{}, false},
		{"HTTP", &HTTPRenderer{}, false},
		{"selenium", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			cfg.Engine = tt.engine
			r, err := New(cfg, c)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.want, r)
		})
	}
}

func TestNewHTTPEngineNeedsClient(t *testing.T) {
	cfg := config.DefaultConfig().Browser
	cfg.Engine = config.EngineHTTP

	_, err := New(cfg, nil)
	assert.Error(t, err)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := config.DefaultConfig().Browser
	cfg.SettleDelay = 2 * time.Second
	cfg.UserAgent = "test-agent"

	opts := OptionsFromConfig(cfg)
	assert.True(t, opts.Headless)
	assert.Equal(t, 1920, opts.WindowWidth)
	assert.Equal(t, 1080, opts.WindowHeight)
	assert.Equal(t, 2*time.Second, opts.SettleDelay)
	assert.Equal(t, cfg.PageTimeout, opts.Timeout)
	assert.Equal(t, "test-agent", opts.UserAgent)
}

func TestChromeAllocatorOptions(t *testing.T) {
	base := NewChromeRenderer(Options{}).allocatorOptions()
	full := NewChromeRenderer(Options{WindowWidth: 800, WindowHeight: 600, UserAgent: "ua"}).allocatorOptions()

	assert.Len(t, full, len(base)+2)
}

func TestHTTPRenderer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "404" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body>page " + r.URL.Query().Get("page") + "</body></html>"))
	}))
	defer server.Close()

	r := NewHTTPRenderer(client.NewClient(5*time.Second, logger.NewNopLogger()), time.Second)

	html, err := r.Render(context.Background(), server.URL+"/?page=3")
	require.NoError(t, err)
	assert.Contains(t, html, "page 3")

	_, err = r.Render(context.Background(), server.URL+"/?page=404")
	require.Error(t, err)
	assert.True(t, errs.IsType(err, errs.ErrorTypeRender))
}

func TestHTTPRendererTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	}))
	defer server.Close()

	r := NewHTTPRenderer(client.NewClient(0, logger.NewNopLogger()), 50*time.Millisecond)

	start := time.Now()
	_, err := r.Render(context.Background(), server.URL)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestFunc(t *testing.T) {
	var got string
	var r Renderer = Func(func(ctx context.Context, url string) (string, error) {
		got = url
		return "<html></html>", nil
	})

	html, err := r.Render(context.Background(), "https://example.com/?page=1")
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", html)
	assert.Equal(t, "https://example.com/?page=1", got)
}

func TestSleepCtx(t *testing.T) {
	assert.NoError(t, sleepCtx(context.Background(), 0))
	assert.NoError(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
}
