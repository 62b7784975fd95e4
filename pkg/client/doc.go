// Package client provides the HTTP client used to fetch documents and,
// for the "http" render engine, listing pages.
//
// Every request carries a browser-like User-Agent. Errors are classified
// with pkg/errors: transport failures are ErrorTypeNetwork and non-2xx
// responses are ErrorTypeHTTPStatus with the status code attached. The
// client never retries.
//
// Example usage:
//
//	c := client.NewClient(2*time.Minute, log)
//	data, err := c.DownloadDocument(ctx, url)
//	if errors.IsType(err, errors.ErrorTypeHTTPStatus) {
//	    // the server answered but not with a document
//	}
package client
