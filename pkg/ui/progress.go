package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/MattThePandah/RA-Tracker/pkg/models"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// StatusTracker keeps running totals for the current platform and the run
type StatusTracker struct {
	Platform models.RunStatistics
	Run      models.RunStatistics
	Offset   int
	PageSize int
	// PageCovers counts covers handled since the last page boundary
	PageCovers int
	StartTime  time.Time
}

// NewStatusTracker creates a new status tracker
func NewStatusTracker(pageSize int) *StatusTracker {
	return &StatusTracker{
		PageSize:  pageSize,
		StartTime: time.Now(),
	}
}

// StartPlatform resets the per-platform counters
func (st *StatusTracker) StartPlatform(offset int) {
	st.Platform = models.RunStatistics{}
	st.Offset = offset
	st.PageCovers = 0
}

// EndPage records the offset reached at a page boundary
func (st *StatusTracker) EndPage(offset int) {
	st.Offset = offset
	st.PageCovers = 0
}

// Record counts one cover outcome
func (st *StatusTracker) Record(outcome string) {
	var delta models.RunStatistics
	switch outcome {
	case "hit":
		delta.Skipped = 1
	case "downloaded":
		delta.Downloaded = 1
	default:
		delta.Failed = 1
	}
	st.Platform = st.Platform.Add(delta)
	st.Run = st.Run.Add(delta)
	st.PageCovers++
}

// GetPageProgress returns a bar of how far through the current page the
// platform is
func (st *StatusTracker) GetPageProgress() string {
	const width = 20
	if st.PageSize <= 0 {
		return ""
	}
	done := min(st.PageCovers, st.PageSize)
	filled := done * width / st.PageSize

	bar := strings.Repeat(ProgressBar, filled) +
		strings.Repeat(ProgressEmpty, width-filled)

	return fmt.Sprintf("[%s] %d/%d", bar, done, st.PageSize)
}

// GetElapsedTime returns the elapsed time since tracking started
func (st *StatusTracker) GetElapsedTime() time.Duration {
	return time.Since(st.StartTime)
}

// GetDownloadRate returns the average download rate (covers per minute)
func (st *StatusTracker) GetDownloadRate() float64 {
	elapsed := st.GetElapsedTime().Minutes()
	if elapsed == 0 {
		return 0
	}
	return float64(st.Run.Downloaded) / elapsed
}
