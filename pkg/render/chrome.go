package render

import (
	"context"

	"github.com/chromedp/chromedp"
)

// ChromeRenderer renders pages with a headless Chrome driven through chromedp.
// Every call starts its own browser and tears it down before returning.
type ChromeRenderer struct {
	opts Options
}

// NewChromeRenderer creates a chromedp-backed renderer
func NewChromeRenderer(opts Options) *ChromeRenderer {
	return &ChromeRenderer{opts: opts}
}

// allocatorOptions returns the Chrome flags for one browser instance
func (r *ChromeRenderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", r.opts.Headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.DisableGPU,
		chromedp.NoSandbox,
	)
	if r.opts.WindowWidth > 0 && r.opts.WindowHeight > 0 {
		opts = append(opts, chromedp.WindowSize(r.opts.WindowWidth, r.opts.WindowHeight))
	}
	if r.opts.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.opts.UserAgent))
	}
	return opts
}

// Render navigates to url and returns the outer HTML of the document
func (r *ChromeRenderer) Render(ctx context.Context, url string) (string, error) {
	ctx, cancel := withTimeout(ctx, r.opts.Timeout)
	defer cancel()

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	actions := []chromedp.Action{chromedp.Navigate(url)}
	if r.opts.SettleDelay > 0 {
		actions = append(actions, chromedp.Sleep(r.opts.SettleDelay))
	}

	var html string
	actions = append(actions, chromedp.OuterHTML("html", &html, chromedp.ByQuery))

	if err := chromedp.Run(browserCtx, actions...); err != nil {
		return "", renderError(url, err)
	}
	return html, nil
}
