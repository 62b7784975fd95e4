package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
	barWidth      = 20
)

// StatusTracker counts download outcomes as they arrive from the workers
type StatusTracker struct {
	mu         sync.Mutex
	total      int
	downloaded int
	skipped    int
	failed     int
	bytes      int64
	startTime  time.Time
}

// NewStatusTracker creates a tracker expecting total results. The total may
// be set later with SetTotal once it is known.
func NewStatusTracker(total int) *StatusTracker {
	return &StatusTracker{
		total:     total,
		startTime: time.Now(),
	}
}

// SetTotal sets the number of results expected and restarts the clock
func (st *StatusTracker) SetTotal(total int) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.total = total
	st.startTime = time.Now()
}

// Record adds one result. status is "downloaded", "skipped" or "failed".
func (st *StatusTracker) Record(status string, size int) {
	st.mu.Lock()
	defer st.mu.Unlock()

	switch status {
	case "downloaded":
		st.downloaded++
		st.bytes += int64(size)
	case "skipped":
		st.skipped++
	default:
		st.failed++
	}
}

func (st *StatusTracker) done() int {
	return st.downloaded + st.skipped + st.failed
}

func (st *StatusTracker) progressBar() string {
	filled := 0
	if st.total > 0 {
		filled = st.done() * barWidth / st.total
	}
	if filled > barWidth {
		filled = barWidth
	}

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, barWidth-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, st.done(), st.total)
}

// GetDownloadRate returns documents downloaded per minute
func (st *StatusTracker) GetDownloadRate() float64 {
	st.mu.Lock()
	defer st.mu.Unlock()

	elapsed := time.Since(st.startTime).Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.downloaded) / elapsed
}

// PrintProgress redraws the progress line in place
func (st *StatusTracker) PrintProgress(c *Console) {
	st.mu.Lock()
	line := fmt.Sprintf("%s %s new: %d | skipped: %d | failed: %s | %s",
		c.Green("[DOWNLOADING]"),
		st.progressBar(),
		st.downloaded,
		st.skipped,
		c.Red(fmt.Sprintf("%d", st.failed)),
		FormatBytes(st.bytes),
	)
	st.mu.Unlock()

	fmt.Fprintf(c.Writer(), "\r%s", line)
}

// FormatBytes renders n as a human-readable size
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
