package render

import (
	"context"
	"fmt"
	"strings"
	"time"

	"sdsscraper/pkg/client"
	"sdsscraper/pkg/config"
	errs "sdsscraper/pkg/errors"
)

// Renderer turns a URL into the page source after client-side rendering
type Renderer interface {
	Render(ctx context.Context, url string) (string, error)
}

// Func adapts an ordinary function to the Renderer interface
type Func func(ctx context.Context, url string) (string, error)

// Render calls f(ctx, url)
func (f Func) Render(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}

// Options are shared by the browser-backed renderers
type Options struct {
	Headless     bool
	WindowWidth  int
	WindowHeight int
	// SettleDelay is waited after load so late scripts can finish
	SettleDelay time.Duration
	// Timeout bounds a single render including browser start-up
	Timeout   time.Duration
	UserAgent string
}

// OptionsFromConfig builds Options from the browser section of the config
func OptionsFromConfig(cfg config.BrowserConfig) Options {
	return Options{
		Headless:     cfg.Headless,
		WindowWidth:  cfg.WindowWidth,
		WindowHeight: cfg.WindowHeight,
		SettleDelay:  cfg.SettleDelay,
		Timeout:      cfg.PageTimeout,
		UserAgent:    cfg.UserAgent,
	}
}

// New returns the renderer for cfg.Engine. httpClient is only used by the http engine.
func New(cfg config.BrowserConfig, httpClient *client.Client) (Renderer, error) {
	opts := OptionsFromConfig(cfg)

	switch strings.ToLower(cfg.Engine) {
	case config.EngineChromedp, "":
		return NewChromeRenderer(opts), nil
	case config.EngineRod:
		return NewRodRenderer(opts), nil
	case config.EngineHTTP:
		if httpClient == nil {
			return nil, fmt.Errorf("http engine requires an HTTP client")
		}
		return NewHTTPRenderer(httpClient, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown render engine %q", cfg.Engine)
	}
}

// withTimeout applies d to ctx when d is positive
func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

// sleepCtx waits for d or until ctx is done
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func renderError(url string, err error) error {
	return errs.New(errs.ErrorTypeRender, fmt.Sprintf("failed to render %s", url), err)
}
