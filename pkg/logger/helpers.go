package logger

import (
	"time"

	"github.com/MattThePandah/RA-Tracker/pkg/models"
)

// LogPage logs one processed catalog page
func LogPage(l Logger, platform string, offset, count int) {
	l.WithFields(map[string]interface{}{
		"platform": platform,
		"offset":   offset,
		"count":    count,
	}).Info("Page processed")
}

// LogCover logs the outcome of caching a single cover. Hits are only
// interesting at debug level.
func LogCover(l Logger, outcome, title, path string, err error) {
	fields := map[string]interface{}{
		"outcome": outcome,
		"title":   title,
		"path":    path,
	}

	switch {
	case err != nil:
		l.WithError(err).WarnWithFields("Cover download failed", fields)
	case outcome == "hit":
		l.DebugWithFields("Cover already cached", fields)
	default:
		l.DebugWithFields("Cover downloaded", fields)
	}
}

// LogRateLimit logs a rate-limit rejection and the cooldown before retrying
func LogRateLimit(l Logger, endpoint string, cooldown time.Duration, attempt int) {
	l.WithFields(map[string]interface{}{
		"endpoint": endpoint,
		"cooldown": cooldown,
		"attempt":  attempt,
		"action":   "rate_limited",
	}).Warn("Rate limit reached, backing off")
}

// LogRunSummary logs the aggregate counts of a run
func LogRunSummary(l Logger, stats models.RunStatistics, elapsed time.Duration, interrupted bool) {
	l.WithFields(map[string]interface{}{
		"downloaded":  stats.Downloaded,
		"skipped":     stats.Skipped,
		"failed":      stats.Failed,
		"elapsed":     elapsed,
		"interrupted": interrupted,
	}).Info("Run finished")
}
