// Package extract finds document download URLs in accumulated listing HTML.
//
// The accumulation file is a plain concatenation of rendered pages with no
// delimiters, so extraction never assumes a single well-formed document.
// Two modes are available:
//
//   - ModeRegex scans the raw text for the download endpoint followed by any
//     run of characters up to the next quote.
//   - ModeDOM parses the HTML and collects candidates from hidden inputs,
//     select options and anchors, keeping only those that are download
//     endpoint URLs.
//
// Both modes drop URLs containing "|" and return each URL once.
package extract
