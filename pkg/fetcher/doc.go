// Package fetcher walks the numbered listing pages of the literature library,
// renders each one through a render.Renderer and appends the result to the
// HTML accumulation file. Pages are visited sequentially; a failed page is
// logged and skipped.
package fetcher
