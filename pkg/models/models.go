package models

import "time"

// Platform identifies one catalog partition to page through
type Platform struct {
	Name     string `json:"name"`
	RemoteID int    `json:"remote_id"`
}

// Platforms is the fixed set of consoles the fetcher knows about, in
// default processing order
var Platforms = []Platform{
	{Name: "PlayStation", RemoteID: 7},
	{Name: "PlayStation 2", RemoteID: 8},
	{Name: "PlayStation Portable", RemoteID: 38},
}

// PlatformNames returns the names of all known platforms
func PlatformNames() []string {
	names := make([]string, len(Platforms))
	for i, p := range Platforms {
		names[i] = p.Name
	}
	return names
}

// CoverRecord is one game entry from a catalog page. ImageURL is empty when
// the record carries no usable cover reference.
type CoverRecord struct {
	Title        string `json:"title"`
	PlatformName string `json:"platform_name"`
	ImageURL     string `json:"image_url,omitempty"`
}

// HasCover reports whether the record can be cached
func (r CoverRecord) HasCover() bool {
	return r.ImageURL != ""
}

// RunStatistics counts cover outcomes for a single invocation
type RunStatistics struct {
	Downloaded int `json:"downloaded"`
	Skipped    int `json:"skipped"`
	Failed     int `json:"failed"`
}

// Add returns the element-wise sum of s and other
func (s RunStatistics) Add(other RunStatistics) RunStatistics {
	return RunStatistics{
		Downloaded: s.Downloaded + other.Downloaded,
		Skipped:    s.Skipped + other.Skipped,
		Failed:     s.Failed + other.Failed,
	}
}

// Total is the number of covers seen
func (s RunStatistics) Total() int {
	return s.Downloaded + s.Skipped + s.Failed
}

// PlatformState is the lifecycle state of one platform within a run
type PlatformState string

const (
	PlatformNotStarted PlatformState = "not_started"
	PlatformResuming   PlatformState = "resuming"
	PlatformInProgress PlatformState = "in_progress"
	PlatformCompleted  PlatformState = "completed"
	PlatformError      PlatformState = "error"
)

// PlatformResult summarizes how a single platform ended
type PlatformResult struct {
	Platform    Platform
	State       PlatformState
	Stats       RunStatistics
	Pages       int
	FinalOffset int
	// Skipped is true when the checkpoint already marked the platform done
	Skipped bool
	Err     error
}

// RunSummary is the outcome of a whole fetch invocation
type RunSummary struct {
	Platforms   []PlatformResult
	Stats       RunStatistics
	Elapsed     time.Duration
	Interrupted bool
}
