package testserver

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// DocumentHost is the real download host; document links on listing pages point here
const DocumentHost = "https://bio-rad-sds.thewercs.com"

// DocumentPath is the download endpoint path
const DocumentPath = "/DirectDocumentDownloader/Document"

// ListingPath is the literature library path
const ListingPath = "/en-us/literature-library"

// MockLibraryServer simulates the literature library listing pages and the
// document download endpoint
type MockLibraryServer struct {
	server           *httptest.Server
	pages            map[int][]string
	errorResponses   map[string]int
	delays           map[string]time.Duration
	documentRequests map[string]int
	listingRequests  int32
	mu               sync.RWMutex
}

// NewMockLibraryServer starts a new mock server
func NewMockLibraryServer() *MockLibraryServer {
	m := &MockLibraryServer{
		pages:            make(map[int][]string),
		errorResponses:   make(map[string]int),
		delays:           make(map[string]time.Duration),
		documentRequests: make(map[string]int),
	}

	mux := http.NewServeMux()
	mux.HandleFunc(ListingPath, m.handleListing)
	mux.HandleFunc(DocumentPath, m.handleDocument)

	m.server = httptest.NewServer(mux)
	return m
}

// DocumentURL returns the production-style document URL for a raw query
func DocumentURL(query string) string {
	return DocumentHost + DocumentPath + "?" + query
}

// SetPage configures the document queries linked from listing page n
func (m *MockLibraryServer) SetPage(n int, queries ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[n] = queries
}

// SetErrorResponse makes a listing page ("page=N") or document query return code
func (m *MockLibraryServer) SetErrorResponse(key string, code int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorResponses[key] = code
}

// SetDelay delays the response for a listing page or document query
func (m *MockLibraryServer) SetDelay(key string, delay time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[key] = delay
}

func (m *MockLibraryServer) handleListing(w http.ResponseWriter, r *http.Request) {
	atomic.AddInt32(&m.listingRequests, 1)

	n, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	key := fmt.Sprintf("page=%d", n)
	m.wait(r, key)
	if code := m.getErrorResponse(key); code > 0 {
		w.WriteHeader(code)
		return
	}

	m.mu.RLock()
	queries := m.pages[n]
	m.mu.RUnlock()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(ListingHTML(n, queries...)))
}

func (m *MockLibraryServer) handleDocument(w http.ResponseWriter, r *http.Request) {
	query := r.URL.RawQuery

	m.mu.Lock()
	m.documentRequests[query]++
	m.mu.Unlock()

	m.wait(r, query)
	if code := m.getErrorResponse(query); code > 0 {
		w.WriteHeader(code)
		_, _ = fmt.Fprintf(w, "Error %d", code)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	_, _ = w.Write(DocumentBody(query))
}

// wait sleeps for the configured delay or until the client goes away
func (m *MockLibraryServer) wait(r *http.Request, key string) {
	m.mu.RLock()
	delay := m.delays[key]
	m.mu.RUnlock()

	if delay <= 0 {
		return
	}
	select {
	case <-time.After(delay):
	case <-r.Context().Done():
	}
}

func (m *MockLibraryServer) getErrorResponse(key string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.errorResponses[key]
}

// ListingHTML renders a listing page that links to the given document queries
func ListingHTML(page int, queries ...string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<!DOCTYPE html><html><head><title>Literature Library - page %d</title></head><body>", page)
	b.WriteString(`<div class="results">`)
	for _, q := range queries {
		fmt.Fprintf(&b, `<div class="result"><a href="%s" target="_blank">SDS</a></div>`, DocumentURL(q))
	}
	b.WriteString("</div></body></html>")
	return b.String()
}

// DocumentBody is the payload served for a document query
func DocumentBody(query string) []byte {
	return []byte("%PDF-1.4\n% " + query + "\n%%EOF\n")
}

// URL returns the base URL of the mock server
func (m *MockLibraryServer) URL() string {
	return m.server.URL
}

// ListingBaseURL returns the listing URL prefix that page numbers are appended to
func (m *MockLibraryServer) ListingBaseURL() string {
	return m.server.URL + ListingPath + "?facets_query=&page="
}

// Client returns an *http.Client that sends every request to the mock server,
// whatever host the URL names
func (m *MockLibraryServer) Client() *http.Client {
	target, _ := url.Parse(m.server.URL)
	return &http.Client{
		Transport: &redirectTransport{target: target, base: m.server.Client().Transport},
		Timeout:   10 * time.Second,
	}
}

// DocumentRequests returns how often a document query was requested
func (m *MockLibraryServer) DocumentRequests(query string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.documentRequests[query]
}

// TotalDocumentRequests returns the number of document requests served
func (m *MockLibraryServer) TotalDocumentRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	total := 0
	for _, n := range m.documentRequests {
		total += n
	}
	return total
}

// ListingRequests returns the number of listing page requests served
func (m *MockLibraryServer) ListingRequests() int {
	return int(atomic.LoadInt32(&m.listingRequests))
}

// Close shuts down the mock server
func (m *MockLibraryServer) Close() {
	m.server.Close()
}

type redirectTransport struct {
	target *url.URL
	base   http.RoundTripper
}

func (t *redirectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	r.URL.Scheme = t.target.Scheme
	r.URL.Host = t.target.Host
	r.Host = ""
	return t.base.RoundTrip(r)
}
