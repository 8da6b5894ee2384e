package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/MattThePandah/RA-Tracker/pkg/models"
	"github.com/MattThePandah/RA-Tracker/pkg/storage"
)

// ProgressDisplay prints one human-readable progress line per event of a
// fetch run. In verbose mode every cover gets its own line; otherwise a
// single status line is rewritten in place.
type ProgressDisplay struct {
	mu       sync.Mutex
	tracker  *StatusTracker
	platform string
	verbose  bool
}

// NewProgressDisplay creates a new progress display
func NewProgressDisplay(pageSize int, verbose bool) *ProgressDisplay {
	return &ProgressDisplay{
		tracker: NewStatusTracker(pageSize),
		verbose: verbose,
	}
}

// Stats returns the totals seen so far
func (p *ProgressDisplay) Stats() models.RunStatistics {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tracker.Run
}

// PlatformStarted announces a platform and where it starts
func (p *ProgressDisplay) PlatformStarted(platform models.Platform, offset int, resuming bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.platform = platform.Name
	p.tracker.StartPlatform(offset)
	if IsQuietMode() {
		return
	}

	if resuming {
		fmt.Fprintf(output, "\n%s %s %s\n", Magenta("→"), Cyan(platform.Name), Dim(fmt.Sprintf("resuming at offset %d", offset)))
	} else {
		fmt.Fprintf(output, "\n%s %s\n", Magenta("→"), Cyan(platform.Name))
	}
}

// PlatformSkipped notes a platform the checkpoint marks as done
func (p *ProgressDisplay) PlatformSkipped(platform models.Platform) {
	if IsQuietMode() {
		return
	}
	fmt.Fprintf(output, "\n%s %s %s\n", Dim("•"), Cyan(platform.Name), Dim("already completed, skipping"))
}

// PageFetched reports a processed page
func (p *ProgressDisplay) PageFetched(platform models.Platform, offset, count int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tracker.EndPage(offset)
	if IsQuietMode() {
		return
	}

	if p.verbose {
		fmt.Fprintf(output, "%s page of %d, offset now %d\n", Magenta("→"), count, offset)
		return
	}
	p.printStatus()
}

// CoverProcessed reports one cover outcome
func (p *ProgressDisplay) CoverProcessed(record models.CoverRecord, outcome storage.Outcome, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.tracker.Record(string(outcome))
	if IsQuietMode() {
		return
	}

	if !p.verbose {
		if err != nil {
			fmt.Fprintf(output, "\r%s\r%s Failed: %s - %v\n", strings.Repeat(" ", 100), Red("✗"), record.Title, err)
		}
		p.printStatus()
		return
	}

	switch outcome {
	case storage.OutcomeDownloaded:
		fmt.Fprintf(output, "%s %s\n", Green("✓"), record.Title)
	case storage.OutcomeHit:
		fmt.Fprintf(output, "%s %s %s\n", Dim("="), record.Title, Dim("(cached)"))
	default:
		fmt.Fprintf(output, "%s %s - %v\n", Red("✗"), record.Title, err)
	}
}

// PlatformFinished closes the status line of a platform
func (p *ProgressDisplay) PlatformFinished(result models.PlatformResult) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if IsQuietMode() {
		return
	}

	stats := result.Stats
	switch result.State {
	case models.PlatformCompleted:
		fmt.Fprintf(output, "\n%s %s complete: %d downloaded, %d cached, %d failed\n",
			Green("✓"), result.Platform.Name, stats.Downloaded, stats.Skipped, stats.Failed)
	case models.PlatformError:
		fmt.Fprintf(output, "\n%s %s stopped at offset %d: %v\n",
			Red("✗"), result.Platform.Name, result.FinalOffset, result.Err)
	default:
		fmt.Fprintf(output, "\n%s %s paused at offset %d\n",
			Yellow("⚠"), result.Platform.Name, result.FinalOffset)
	}
}

// RunFinished prints the run summary
func (p *ProgressDisplay) RunFinished(summary models.RunSummary) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if IsQuietMode() {
		return
	}
	fmt.Fprint(output, FormatSummary(summary))
}

// printStatus rewrites the in-place status line
func (p *ProgressDisplay) printStatus() {
	st := p.tracker
	line := fmt.Sprintf("\r%s %s offset %d • %d new • %d cached",
		Cyan(p.platform),
		st.GetPageProgress(),
		st.Offset,
		st.Platform.Downloaded,
		st.Platform.Skipped,
	)
	if st.Platform.Failed > 0 {
		line += fmt.Sprintf(" • %s", Red(fmt.Sprintf("%d failed", st.Platform.Failed)))
	}

	fmt.Fprintf(output, "\r%s\r%s", strings.Repeat(" ", 100), line)
}

// FormatSummary renders the end-of-run counts
func FormatSummary(summary models.RunSummary) string {
	var b strings.Builder

	title := Green("✓ Run complete")
	if summary.Interrupted {
		title = Yellow("⚠ Run interrupted, progress saved")
	}
	fmt.Fprintf(&b, "\n%s\n", title)
	fmt.Fprintf(&b, "  %s Downloaded: %d\n", Dim("•"), summary.Stats.Downloaded)
	fmt.Fprintf(&b, "  %s Skipped (cached): %d\n", Dim("•"), summary.Stats.Skipped)
	fmt.Fprintf(&b, "  %s Failed: %d\n", Dim("•"), summary.Stats.Failed)
	fmt.Fprintf(&b, "  %s Elapsed: %s\n", Dim("•"), FormatDuration(summary.Elapsed))

	return b.String()
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%ds", int(d.Seconds()))
	} else if d < time.Hour {
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	} else {
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
