package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extraction modes
const (
	ModeRegex = "regex"
	ModeDOM   = "dom"
)

// DocumentPattern matches a document download URL inside arbitrary text
var DocumentPattern = regexp.MustCompile(`https://bio-rad-sds\.thewercs\.com/DirectDocumentDownloader/Document\?[^"']+`)

// documentURL matches a string that is exactly one download URL
var documentURL = regexp.MustCompile(`^` + DocumentPattern.String() + `$`)

// hiddenValueSeparator joins several URLs inside one hidden input value
const hiddenValueSeparator = "~https://"

// Extractor pulls unique document URLs out of HTML
type Extractor struct {
	mode string
}

// New creates an Extractor for the given mode
func New(mode string) (*Extractor, error) {
	switch strings.ToLower(mode) {
	case "", ModeRegex:
		return &Extractor{mode: ModeRegex}, nil
	case ModeDOM:
		return &Extractor{mode: ModeDOM}, nil
	default:
		return nil, fmt.Errorf("unknown extract mode %q", mode)
	}
}

// Mode returns the extraction mode in use
func (e *Extractor) Mode() string {
	return e.mode
}

// Extract returns the deduplicated document URLs found in html.
// Input without matches yields an empty slice and no error.
func (e *Extractor) Extract(html string) ([]string, error) {
	if e.mode == ModeDOM {
		return FromDOM(html)
	}
	return FromText(html), nil
}

// FromText scans raw text with DocumentPattern
func FromText(text string) []string {
	return filterAndDedupe(DocumentPattern.FindAllString(text, -1))
}

// FromDOM parses html and collects download URLs from element attributes
func FromDOM(html string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return []string{}, fmt.Errorf("parsing HTML: %w", err)
	}

	var candidates []string

	doc.Find(`input[type="hidden"]`).Each(func(_ int, s *goquery.Selection) {
		val, ok := s.Attr("value")
		if !ok {
			return
		}
		for i, part := range strings.Split(val, hiddenValueSeparator) {
			if i > 0 {
				part = "https://" + part
			}
			candidates = append(candidates, strings.TrimSpace(part))
		}
	})

	doc.Find("option[value]").Each(func(_ int, s *goquery.Selection) {
		candidates = append(candidates, strings.TrimSpace(s.AttrOr("value", "")))
	})

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		candidates = append(candidates, strings.TrimSpace(s.AttrOr("href", "")))
	})

	matched := candidates[:0]
	for _, c := range candidates {
		if documentURL.MatchString(c) {
			matched = append(matched, c)
		}
	}

	return filterAndDedupe(matched), nil
}

// IsDocumentURL reports whether s is a single download URL that passes the pipe filter
func IsDocumentURL(s string) bool {
	return documentURL.MatchString(s) && !strings.Contains(s, "|")
}

func filterAndDedupe(matches []string) []string {
	kept := make([]string, 0, len(matches))
	for _, m := range matches {
		if strings.Contains(m, "|") {
			continue
		}
		kept = append(kept, m)
	}
	return Dedupe(kept)
}

// Dedupe returns items with duplicates removed, keeping first-seen order
func Dedupe(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
