// Package render hides the browser-automation engine behind the Renderer
// interface: given a URL it returns the fully rendered page source.
//
// Engines:
//   - ChromeRenderer (chromedp) starts one headless Chrome per call
//   - RodRenderer (go-rod) starts one Chromium per call
//   - HTTPRenderer fetches the raw response with no script execution
//
// The browser-backed renderers acquire and release their browser inside a
// single Render call, including on error, so no process outlives a page.
// All failures are returned as pkg/errors ErrorTypeRender.
package render
