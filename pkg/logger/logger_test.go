package logger

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sdsscraper/pkg/config"
)

func newBufferLogger(buf *bytes.Buffer) *zerologLogger {
	zlog := zerolog.New(buf).Level(zerolog.DebugLevel)
	return &zerologLogger{
		logger: &zlog,
		fields: make(map[string]interface{}),
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.LoggingConfig
		wantErr bool
	}{
		{
			name:    "info level",
			cfg:     &config.LoggingConfig{Level: "info"},
			wantErr: false,
		},
		{
			name:    "debug level",
			cfg:     &config.LoggingConfig{Level: "debug"},
			wantErr: false,
		},
		{
			name:    "invalid level",
			cfg:     &config.LoggingConfig{Level: "invalid"},
			wantErr: true,
		},
		{
			name:    "file output",
			cfg:     &config.LoggingConfig{Level: "info", File: filepath.Join(t.TempDir(), "logs", "run.log")},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && l == nil {
				t.Error("New() returned nil logger")
			}
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		level    string
		expected zerolog.Level
		wantErr  bool
	}{
		{"debug", zerolog.DebugLevel, false},
		{"DEBUG", zerolog.DebugLevel, false},
		{"info", zerolog.InfoLevel, false},
		{"warn", zerolog.WarnLevel, false},
		{"warning", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"disabled", zerolog.Disabled, false},
		{"invalid", zerolog.InfoLevel, true},
		{"", zerolog.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			level, err := parseLogLevel(tt.level)
			if (err != nil) != tt.wantErr {
				t.Errorf("parseLogLevel() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if level != tt.expected {
				t.Errorf("parseLogLevel() = %v, want %v", level, tt.expected)
			}
		})
	}
}

func TestConsoleOutputRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	l, err := NewWithOptions(&config.LoggingConfig{Level: "warn"}, Options{Console: &buf, NoColor: true})
	require.NoError(t, err)

	l.Info("hidden message")
	l.Warn("visible message")

	out := buf.String()
	assert.NotContains(t, out, "hidden message")
	assert.Contains(t, out, "visible message")
	assert.Contains(t, out, "WARN")
	assert.NotContains(t, out, "\033[", "no ANSI codes when colour is off")
}

func TestWithFields(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	child := l.WithField("run_id", "abc").WithFields(map[string]interface{}{
		"page":  3,
		"ok":    true,
		"ratio": 0.5,
	})
	child.Info("page done")

	out := buf.String()
	assert.Contains(t, out, `"run_id":"abc"`)
	assert.Contains(t, out, `"page":3`)
	assert.Contains(t, out, `"ok":true`)
	assert.Contains(t, out, "page done")

	buf.Reset()
	l.Info("parent untouched")
	assert.NotContains(t, buf.String(), "run_id")
}

func TestWithError(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	if l.WithError(nil) != Logger(l) {
		t.Error("WithError(nil) should return the same logger")
	}

	l.WithError(errors.New("connection reset")).Error("download failed")
	out := buf.String()
	assert.Contains(t, out, "download failed")
	assert.Contains(t, out, "connection reset")
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	l := newBufferLogger(&buf)

	l.InfoWithFields("all types", map[string]interface{}{
		"int64":    int64(456),
		"time":     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		"duration": 5 * time.Second,
		"strings":  []string{"a", "b"},
		"cause":    errors.New("boom"),
		"custom":   struct{ Name string }{Name: "x"},
	})

	out := buf.String()
	assert.Contains(t, out, `"int64":456`)
	assert.Contains(t, out, `"strings":["a","b"]`)
	assert.Contains(t, out, `"cause":"boom"`)
}

func TestHelpers(t *testing.T) {
	tl := NewTestLogger()

	LogPageFetch(tl, 2, "https://example.com/?page=2", 1024, nil)
	LogPageFetch(tl, 3, "https://example.com/?page=3", 0, errors.New("timeout"))
	LogDownload(tl, "https://example.com/doc", "a.pdf", "downloaded", nil)
	LogDownload(tl, "https://example.com/doc", "a.pdf", "skipped", nil)
	LogDownload(tl, "https://example.com/doc", "a.pdf", "failed", errors.New("404"))

	assert.True(t, tl.HasMessage("Page rendered"))
	assert.True(t, tl.HasMessage("Page render failed, skipping"))
	assert.True(t, tl.HasMessage("File already exists, skipping"))
	assert.Len(t, tl.GetMessagesByLevel("ERROR"), 1)

	failed := tl.GetMessagesByLevel("ERROR")[0]
	assert.Equal(t, "a.pdf", failed.Fields["filename"])
	assert.Equal(t, "404", failed.Fields["error"])
}

func TestTestLoggerConcurrent(t *testing.T) {
	tl := NewTestLogger()
	child := tl.WithField("worker_id", 1)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			child.Info("tick")
		}()
	}
	wg.Wait()

	assert.Len(t, tl.GetMessages(), 50)
	assert.True(t, strings.Contains(tl.String(), "worker_id"))
}

func TestGlobalLogger(t *testing.T) {
	var buf bytes.Buffer
	err := Initialize(&config.LoggingConfig{Level: "debug"}, Options{Console: &buf, NoColor: true})
	require.NoError(t, err)

	WithField("component", "test").Info("global hello")
	assert.Contains(t, buf.String(), "global hello")
	assert.NotNil(t, GetLogger())
}
