package sync

import (
	"context"
	"fmt"

	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/catalog"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/download"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/extract"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/search"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/state"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CatalogResolver resolves the remote manifest for a region. Implemented by
// catalog.Resolver.
type CatalogResolver interface {
	Resolve(ctx context.Context, region catalog.Region, explicitVersion string) (*catalog.Manifest, error)
}

// Options selects what one run does.
type Options struct {
	// Region is the deployment to synchronize against.
	Region catalog.Region

	// Version pins the manifest version; only honored for GL.
	Version string

	// Criteria optionally narrows the manifest before diffing.
	Criteria search.Criteria

	// SkipExtraction leaves downloaded files unextracted.
	SkipExtraction bool

	// ForceExtraction re-extracts entries already recorded as extracted.
	ForceExtraction bool
}

// Summary is the user-visible result of one run.
type Summary struct {
	RunID   string
	Region  catalog.Region
	Version string

	Planned           int
	Downloaded        int
	Reused            int
	SkippedUnchanged  int
	FailedPermanently int

	Extracted        int
	ExtractionFailed int
	Unsupported      int

	Stale []string
}

// Degraded reports whether any entry ended in a permanent failure. The run
// still completes, but callers should exit non-zero.
func (s *Summary) Degraded() bool {
	return s.FailedPermanently > 0
}

// Service runs the synchronization pipeline.
type Service struct {
	resolver   CatalogResolver
	filter     *search.Engine
	store      *state.Store
	scheduler  *download.Scheduler
	dispatcher *extract.Dispatcher
	logger     *zap.Logger
}

// NewService wires the pipeline stages together.
func NewService(
	resolver CatalogResolver,
	filter *search.Engine,
	store *state.Store,
	scheduler *download.Scheduler,
	dispatcher *extract.Dispatcher,
	logger *zap.Logger,
) *Service {
	return &Service{
		resolver:   resolver,
		filter:     filter,
		store:      store,
		scheduler:  scheduler,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Run executes one full synchronization: resolve, filter, diff, download,
// extract. Fatal errors (unresolvable or unparsable catalog, missing search
// capability) surface before anything is downloaded; per-entry failures are
// folded into the summary.
func (s *Service) Run(ctx context.Context, opts Options) (*Summary, error) {
	runID := uuid.NewString()
	logger := s.logger.With(
		zap.String("run_id", runID),
		zap.String("region", string(opts.Region)))

	manifest, err := s.resolver.Resolve(ctx, opts.Region, opts.Version)
	if err != nil {
		return nil, err
	}

	filtered, err := s.filter.Filter(manifest, opts.Criteria)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.store.Snapshot(ctx, string(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("read local state: %w", err)
	}

	plan := Diff(filtered, snapshot)
	downloads := plan.Downloads()
	logger.Info("run planned",
		zap.String("version", manifest.Version),
		zap.Int("entries", filtered.Len()),
		zap.Int("downloads", len(downloads)),
		zap.Int("re_extract", len(plan.ReExtractOnly())),
		zap.Int("stale", len(plan.Stale)))

	results := s.scheduler.Run(ctx, opts.Region, manifest.Version, downloads)

	summary := &Summary{
		RunID:   runID,
		Region:  opts.Region,
		Version: manifest.Version,
		Planned: len(plan.Items),
		Stale:   plan.Stale,
	}
	for _, item := range plan.Items {
		if item.Action == ActionSkipUnchanged {
			summary.SkippedUnchanged++
		}
	}
	for _, res := range results.Items {
		switch {
		case res.Outcome == download.Success && res.Reused:
			summary.Reused++
		case res.Outcome == download.Success:
			summary.Downloaded++
		default:
			summary.FailedPermanently++
		}
	}

	if err := ctx.Err(); err != nil {
		// Cancelled mid-download: report what was committed, skip extraction.
		// The next run recomputes the remaining work from state.
		return summary, err
	}

	if !opts.SkipExtraction {
		tasks := s.extractionTasks(plan, results, snapshot)
		outcomes := s.dispatcher.Run(ctx, opts.Region, tasks, opts.ForceExtraction)
		for _, out := range outcomes {
			switch out.Kind {
			case extract.OutcomeExtracted:
				summary.Extracted++
			case extract.OutcomeFailed:
				summary.ExtractionFailed++
			case extract.OutcomeUnsupported:
				summary.Unsupported++
			}
		}
	}

	logger.Info("run finished",
		zap.Int("downloaded", summary.Downloaded),
		zap.Int("reused", summary.Reused),
		zap.Int("skipped", summary.SkippedUnchanged),
		zap.Int("failed", summary.FailedPermanently),
		zap.Int("extracted", summary.Extracted),
		zap.Int("extraction_failed", summary.ExtractionFailed),
		zap.Bool("degraded", summary.Degraded()))
	return summary, nil
}

// extractionTasks collects the entries extraction applies to: freshly
// downloaded ones (status reset by the commit) and up-to-date entries whose
// previous extraction never succeeded.
func (s *Service) extractionTasks(plan Plan, results download.Results, snapshot state.Snapshot) []extract.Task {
	var tasks []extract.Task
	for _, entry := range results.Succeeded() {
		tasks = append(tasks, extract.Task{Entry: entry, Status: state.NotAttempted})
	}
	for _, entry := range plan.ReExtractOnly() {
		status := state.NotAttempted
		if rec, ok := snapshot[entry.Path]; ok {
			status = rec.ExtractionStatus
		}
		tasks = append(tasks, extract.Task{Entry: entry, Status: status})
	}
	return tasks
}
