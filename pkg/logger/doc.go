// Package logger provides structured logging for the scraper.
//
// It wraps zerolog behind a small Logger interface with:
//   - Levels (Debug, Info, Warn, Error)
//   - Structured fields via WithField / WithFields / WithError
//   - Pretty console output with short coloured level tags
//   - Optional JSON file output alongside the console
//   - A process-wide logger via Initialize / GetLogger
//
// Usage:
//
//	err := logger.Initialize(&cfg.Logging, logger.Options{NoColor: true})
//	log := logger.GetLogger().WithField("run_id", runID)
//	log.InfoWithFields("Page rendered", map[string]interface{}{"page": 3})
//
// Tests use NewTestLogger to capture messages or NewNopLogger to discard them.
package logger
