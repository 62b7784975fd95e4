package client

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "sdsscraper/pkg/errors"
	"sdsscraper/pkg/logger"
)

// DefaultUserAgent is sent when no user agent is configured
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// Client issues plain HTTP GET requests for listing pages and documents
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	logger     logger.Logger
}

// NewClient creates a new HTTP client with the given per-request timeout
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	return NewClientWithHTTP(&http.Client{Timeout: timeout}, log)
}

// NewClientWithHTTP wraps an existing *http.Client
func NewClientWithHTTP(httpClient *http.Client, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: httpClient,
		headers: map[string]string{
			"User-Agent":      DefaultUserAgent,
			"Accept-Language": "en-US,en;q=0.9",
		},
		logger: log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// Get performs a GET request. Transport failures come back as network errors;
// the status code is not checked.
func (c *Client) Get(ctx context.Context, url string, accept string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeUnknown, fmt.Sprintf("failed to create request for %s", url), err)
	}

	for key, value := range c.headers {
		req.Header.Set(key, value)
	}
	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.DebugWithFields("HTTP request failed", map[string]interface{}{
			"url":      url,
			"error":    err.Error(),
			"duration": duration,
		})
		return nil, errs.New(errs.ErrorTypeNetwork, fmt.Sprintf("GET %s failed", url), err)
	}

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      url,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	return resp, nil
}

// GetText fetches url and returns the body as a string. Non-2xx responses are errors.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	data, err := c.getBody(ctx, url, "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// DownloadDocument fetches a document and returns its full body
func (c *Client) DownloadDocument(ctx context.Context, url string) ([]byte, error) {
	data, err := c.getBody(ctx, url, "application/pdf,*/*;q=0.8")
	if err != nil {
		return nil, err
	}

	c.logger.DebugWithFields("Document fetched", map[string]interface{}{
		"url":  url,
		"size": len(data),
	})
	return data, nil
}

func (c *Client) getBody(ctx context.Context, url, accept string) ([]byte, error) {
	resp, err := c.Get(ctx, url, accept)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if !errs.IsSuccessStatusCode(resp.StatusCode) {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, errs.NewHTTPStatus(resp.StatusCode, url)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeNetwork, fmt.Sprintf("reading body of %s", url), err)
	}
	return data, nil
}
