package render

import (
	"context"
	"time"

	"sdsscraper/pkg/client"
)

// HTTPRenderer fetches pages without executing JavaScript
type HTTPRenderer struct {
	client  *client.Client
	timeout time.Duration
}

// NewHTTPRenderer creates a renderer backed by a plain HTTP GET
func NewHTTPRenderer(c *client.Client, timeout time.Duration) *HTTPRenderer {
	return &HTTPRenderer{client: c, timeout: timeout}
}

// Render returns the response body of url; non-2xx responses are render errors
func (r *HTTPRenderer) Render(ctx context.Context, url string) (string, error) {
	ctx, cancel := withTimeout(ctx, r.timeout)
	defer cancel()

	html, err := r.client.GetText(ctx, url)
	if err != nil {
		return "", renderError(url, err)
	}
	return html, nil
}
