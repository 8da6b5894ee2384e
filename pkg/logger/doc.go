// Package logger provides structured logging for igdbcovers.
//
// It wraps zerolog behind a small Logger interface so packages can accept a
// logger without depending on zerolog directly. Console output is colored
// and human oriented; when a log file is configured events are appended as
// JSON lines instead.
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("platform", "PlayStation 2")
//	log.Info("Fetching covers")
//
// Tests use NewTestLogger to capture and inspect events, or NewNopLogger to
// discard them.
package logger
