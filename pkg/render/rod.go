package render

import (
	"context"
	"fmt"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// RodRenderer renders pages with a Chromium launched by go-rod.
// Like ChromeRenderer, each call owns a fresh browser process.
type RodRenderer struct {
	opts Options
}

// NewRodRenderer creates a go-rod backed renderer
func NewRodRenderer(opts Options) *RodRenderer {
	return &RodRenderer{opts: opts}
}

func (r *RodRenderer) launcher(ctx context.Context) *launcher.Launcher {
	l := launcher.New().
		Context(ctx).
		Headless(r.opts.Headless).
		NoSandbox(true).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage")
	if r.opts.WindowWidth > 0 && r.opts.WindowHeight > 0 {
		l = l.Set("window-size", fmt.Sprintf("%d,%d", r.opts.WindowWidth, r.opts.WindowHeight))
	}
	return l
}

// Render navigates to url, waits for the load event and returns the page HTML
func (r *RodRenderer) Render(ctx context.Context, url string) (html string, err error) {
	ctx, cancel := withTimeout(ctx, r.opts.Timeout)
	defer cancel()

	l := r.launcher(ctx)
	controlURL, err := l.Launch()
	if err != nil {
		return "", renderError(url, fmt.Errorf("launching browser: %w", err))
	}
	defer func() {
		// Cleanup blocks until the process exits
		l.Kill()
		l.Cleanup()
	}()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return "", renderError(url, fmt.Errorf("connecting to browser: %w", err))
	}
	defer func() {
		if closeErr := browser.Close(); closeErr != nil && err == nil {
			err = renderError(url, fmt.Errorf("closing browser: %w", closeErr))
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", renderError(url, err)
	}

	if r.opts.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: r.opts.UserAgent}); err != nil {
			return "", renderError(url, err)
		}
	}

	if err := page.Navigate(url); err != nil {
		return "", renderError(url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return "", renderError(url, err)
	}
	if err := sleepCtx(ctx, r.opts.SettleDelay); err != nil {
		return "", renderError(url, err)
	}

	html, err = page.HTML()
	if err != nil {
		return "", renderError(url, err)
	}
	return html, nil
}
