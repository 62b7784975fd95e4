package logger

import (
	"context"

	"github.com/rs/zerolog"
)

// LogPageFetch logs the outcome of rendering one listing page
func LogPageFetch(log Logger, page int, url string, size int, err error) {
	fields := map[string]interface{}{
		"page": page,
		"url":  url,
	}

	if err != nil {
		log.WithError(err).WithFields(fields).Warn("Page render failed, skipping")
		return
	}

	fields["bytes"] = size
	log.InfoWithFields("Page rendered", fields)
}

// LogDownload logs one terminal download outcome: "downloaded", "skipped" or "failed"
func LogDownload(log Logger, url, filename, status string, err error) {
	l := log.WithFields(map[string]interface{}{
		"url":      url,
		"filename": filename,
		"status":   status,
	})

	switch {
	case err != nil:
		l.WithError(err).Error("Download failed")
	case status == "skipped":
		l.Debug("File already exists, skipping")
	default:
		l.Info("Download completed")
	}
}

// LogComponentStart logs when a component starts
func LogComponentStart(log Logger, component string, settings map[string]interface{}) {
	l := log.WithField("component", component)
	if len(settings) > 0 {
		l = l.WithFields(settings)
	}
	l.Info("Component started")
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return &nopLogger{}
}

// nopLogger is a logger that does nothing
type nopLogger struct{}

func (n *nopLogger) Debug(msg string)                                          {}
func (n *nopLogger) Info(msg string)                                           {}
func (n *nopLogger) Warn(msg string)                                           {}
func (n *nopLogger) Error(msg string)                                          {}
func (n *nopLogger) WithField(key string, value interface{}) Logger            { return n }
func (n *nopLogger) WithFields(fields map[string]interface{}) Logger           { return n }
func (n *nopLogger) WithError(err error) Logger                                { return n }
func (n *nopLogger) WithContext(ctx context.Context) Logger                    { return n }
func (n *nopLogger) DebugWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) InfoWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) WarnWithFields(msg string, fields map[string]interface{})  {}
func (n *nopLogger) ErrorWithFields(msg string, fields map[string]interface{}) {}
func (n *nopLogger) GetZerolog() *zerolog.Logger                               { l := zerolog.Nop(); return &l }
