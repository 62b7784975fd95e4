// Package filename maps document download URLs to local PDF file names.
package filename

import (
	"net/url"
	"strings"
)

const (
	tokenDelimiter = "~~"
	productPrefix  = "prd="
	extension      = ".pdf"
)

// Derive returns the local file name for a document URL.
//
// The raw query string is split on "~~". A token starting with "prd=" is
// replaced by the text after its first "=" (up to any further "="); every
// other token is kept verbatim. The parts are joined with "-", ".pdf" is
// appended and the whole result is lowercased. No escaping is applied, so
// callers that need filesystem-safe names should pass the result to Sanitize.
func Derive(rawURL string) string {
	tokens := strings.Split(rawQuery(rawURL), tokenDelimiter)

	parts := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if strings.HasPrefix(token, productPrefix) {
			parts = append(parts, strings.Split(token, "=")[1])
			continue
		}
		parts = append(parts, token)
	}

	return strings.ToLower(strings.Join(parts, "-") + extension)
}

// rawQuery returns the undecoded query of rawURL, without any fragment
func rawQuery(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil {
		return u.RawQuery
	}

	// url.Parse rejects some inputs (control characters, bad escapes) that
	// still carry a usable query
	_, query, found := strings.Cut(rawURL, "?")
	if !found {
		return ""
	}
	query, _, _ = strings.Cut(query, "#")
	return query
}

// unsafe lists characters that cannot appear in a file name on common filesystems
const unsafe = `/\:*?"<>|`

// Sanitize replaces path separators, reserved characters and control
// characters with "_" and guards against "." and ".." names.
// Names that are already safe are returned unchanged.
func Sanitize(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || strings.ContainsRune(unsafe, r) {
			return '_'
		}
		return r
	}, name)

	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "_" + extension
	}
	return cleaned
}
