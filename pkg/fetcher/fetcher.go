package fetcher

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/MattThePandah/RA-Tracker/pkg/checkpoint"
	"github.com/MattThePandah/RA-Tracker/pkg/errors"
	"github.com/MattThePandah/RA-Tracker/pkg/logger"
	"github.com/MattThePandah/RA-Tracker/pkg/metrics"
	"github.com/MattThePandah/RA-Tracker/pkg/models"
	"github.com/MattThePandah/RA-Tracker/pkg/storage"
)

// DefaultPageSize is the page size requested from the catalog
const DefaultPageSize = 500

// CatalogClient pages through the remote catalog
type CatalogClient interface {
	FetchPage(ctx context.Context, platform models.Platform, limit, offset int) ([]models.CoverRecord, error)
}

// CoverCache stores covers locally
type CoverCache interface {
	EnsureCached(ctx context.Context, imageURL, title, platformName string) (storage.Outcome, error)
}

// ProgressStore persists per-platform progress
type ProgressStore interface {
	Load(platform string) checkpoint.Entry
	Save(platform string, offset int, completed bool) error
}

// Reporter receives human-readable progress events
type Reporter interface {
	PlatformStarted(platform models.Platform, offset int, resuming bool)
	PlatformSkipped(platform models.Platform)
	PageFetched(platform models.Platform, offset, count int)
	CoverProcessed(record models.CoverRecord, outcome storage.Outcome, err error)
	PlatformFinished(result models.PlatformResult)
	RunFinished(summary models.RunSummary)
}

// Options configures a Fetcher
type Options struct {
	// PageSize defaults to DefaultPageSize
	PageSize int
	// Resume continues from the checkpoint and skips completed platforms
	Resume   bool
	Metrics  *metrics.Metrics
	Logger   logger.Logger
	Reporter Reporter
}

// Fetcher drives the fetch-and-cache pipeline one platform at a time
type Fetcher struct {
	client   CatalogClient
	cache    CoverCache
	progress ProgressStore
	pageSize int
	resume   bool
	metrics  *metrics.Metrics
	logger   logger.Logger
	reporter Reporter

	now func() time.Time
}

// New creates a Fetcher
func New(client CatalogClient, cache CoverCache, progress ProgressStore, opts Options) *Fetcher {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Logger == nil {
		opts.Logger = logger.GetLogger()
	}
	if opts.Reporter == nil {
		opts.Reporter = nopReporter{}
	}

	return &Fetcher{
		client:   client,
		cache:    cache,
		progress: progress,
		pageSize: opts.PageSize,
		resume:   opts.Resume,
		metrics:  opts.Metrics,
		logger:   opts.Logger.WithField("component", "fetcher"),
		reporter: opts.Reporter,
		now:      time.Now,
	}
}

// Run processes platforms in order. A cancelled context stops the run at
// the next page boundary and is not an error. Credential and authentication
// failures abort the run and are returned; any other platform failure is
// logged and the next platform starts.
func (f *Fetcher) Run(ctx context.Context, platforms []models.Platform) (models.RunSummary, error) {
	start := f.now()
	summary := models.RunSummary{}

	f.logger.InfoWithFields("Starting cover fetch", map[string]interface{}{
		"platforms": len(platforms),
		"resume":    f.resume,
		"page_size": f.pageSize,
	})

	var runErr error
	for _, platform := range platforms {
		if ctx.Err() != nil {
			summary.Interrupted = true
			break
		}

		result, err := f.FetchPlatform(ctx, platform)
		summary.Platforms = append(summary.Platforms, result)
		summary.Stats = summary.Stats.Add(result.Stats)

		if err == nil {
			continue
		}
		if isInterrupt(err) {
			summary.Interrupted = true
			break
		}
		if errors.IsFatal(errors.TypeOf(err)) {
			runErr = err
			break
		}

		f.logger.WithError(err).WarnWithFields("Platform ended with error, moving on", map[string]interface{}{
			"platform":   platform.Name,
			"error_type": string(errors.TypeOf(err)),
		})
	}

	summary.Elapsed = f.now().Sub(start)
	logger.LogRunSummary(f.logger, summary.Stats, summary.Elapsed, summary.Interrupted)
	f.reporter.RunFinished(summary)

	return summary, runErr
}

// FetchPlatform pages through one platform until an empty or short page.
// The returned error is nil for a normal finish, including a request
// failure, which ends the platform as if no more data existed.
func (f *Fetcher) FetchPlatform(ctx context.Context, platform models.Platform) (models.PlatformResult, error) {
	result := models.PlatformResult{
		Platform: platform,
		State:    models.PlatformNotStarted,
	}
	log := f.logger.WithField("platform", platform.Name)

	offset := 0
	if f.resume {
		entry := f.progress.Load(platform.Name)
		if entry.Completed {
			result.State = models.PlatformCompleted
			result.Skipped = true
			result.FinalOffset = entry.LastOffset
			log.Info("Platform already completed, skipping")
			f.reporter.PlatformSkipped(platform)
			return result, nil
		}
		offset = entry.LastOffset
	}

	result.State = models.PlatformInProgress
	if offset > 0 {
		result.State = models.PlatformResuming
	}
	result.FinalOffset = offset

	log.InfoWithFields("Processing platform", map[string]interface{}{
		"offset":   offset,
		"resuming": offset > 0,
	})
	f.reporter.PlatformStarted(platform, offset, offset > 0)

	for {
		if err := ctx.Err(); err != nil {
			return f.finish(result, err), err
		}

		records, err := f.client.FetchPage(ctx, platform, f.pageSize, offset)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return f.finish(result, ctxErr), ctxErr
			}
			return f.pageFailed(result, offset, err)
		}

		if len(records) == 0 {
			f.save(log, platform.Name, offset, true)
			result.State = models.PlatformCompleted
			return f.finish(result, nil), nil
		}

		result.Stats = result.Stats.Add(f.cachePage(ctx, records))
		result.Pages++

		offset += len(records)
		result.FinalOffset = offset
		f.save(log, platform.Name, offset, false)

		f.metrics.IncPage(platform.Name)
		logger.LogPage(log, platform.Name, offset, len(records))
		f.reporter.PageFetched(platform, offset, len(records))

		if len(records) < f.pageSize {
			f.save(log, platform.Name, offset, true)
			result.State = models.PlatformCompleted
			return f.finish(result, nil), nil
		}
		result.State = models.PlatformInProgress
	}
}

// pageFailed decides how a failed page ends the platform
func (f *Fetcher) pageFailed(result models.PlatformResult, offset int, err error) (models.PlatformResult, error) {
	errorType := errors.TypeOf(err)
	f.metrics.IncError(string(errorType))
	base := f.logger.WithField("platform", result.Platform.Name)
	log := base.WithError(err)

	if errorType == errors.ErrorTypeRequest {
		// Indistinguishable from the end of the catalog
		log.WarnWithFields("Page request failed, treating as end of data", map[string]interface{}{
			"offset":     offset,
			"error_type": string(errorType),
		})
		f.save(base, result.Platform.Name, offset, true)
		result.State = models.PlatformCompleted
		result.Err = err
		return f.finish(result, nil), nil
	}

	log.ErrorWithFields("Page fetch failed", map[string]interface{}{
		"offset":     offset,
		"error_type": string(errorType),
	})
	result.State = models.PlatformError
	result.Err = err
	return f.finish(result, err), err
}

// cachePage caches every record with a cover. Downloads are detached from
// cancellation so an interrupt lets the current page finish.
func (f *Fetcher) cachePage(ctx context.Context, records []models.CoverRecord) models.RunStatistics {
	dctx := context.WithoutCancel(ctx)
	var stats models.RunStatistics

	for _, record := range records {
		if !record.HasCover() {
			continue
		}

		outcome, err := f.cache.EnsureCached(dctx, record.ImageURL, record.Title, record.PlatformName)
		switch outcome {
		case storage.OutcomeHit:
			stats.Skipped++
		case storage.OutcomeDownloaded:
			stats.Downloaded++
		default:
			stats.Failed++
		}

		f.metrics.IncCover(string(outcome))
		if err != nil {
			f.metrics.IncError(string(errors.TypeOf(err)))
		}
		f.reporter.CoverProcessed(record, outcome, err)
	}

	return stats
}

// save records progress; a failed write is logged and the run goes on with
// the previous checkpoint still valid on disk
func (f *Fetcher) save(log logger.Logger, platform string, offset int, completed bool) {
	if err := f.progress.Save(platform, offset, completed); err != nil {
		f.metrics.IncError("checkpoint")
		log.WithError(err).ErrorWithFields("Failed to save checkpoint", map[string]interface{}{
			"offset":    offset,
			"completed": completed,
		})
	}
}

func (f *Fetcher) finish(result models.PlatformResult, err error) models.PlatformResult {
	if err != nil && isInterrupt(err) {
		f.logger.WithField("platform", result.Platform.Name).InfoWithFields("Interrupted, progress kept", map[string]interface{}{
			"offset": result.FinalOffset,
		})
	}
	f.reporter.PlatformFinished(result)
	return result
}

func isInterrupt(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}

type nopReporter struct{}

func (nopReporter) PlatformStarted(models.Platform, int, bool)                {}
func (nopReporter) PlatformSkipped(models.Platform)                           {}
func (nopReporter) PageFetched(models.Platform, int, int)                     {}
func (nopReporter) CoverProcessed(models.CoverRecord, storage.Outcome, error) {}
func (nopReporter) PlatformFinished(models.PlatformResult)                    {}
func (nopReporter) RunFinished(models.RunSummary)                             {}
