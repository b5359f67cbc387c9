package extract

import (
	"context"
	"path/filepath"
	"sort"
	"sync"

	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/storage"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/catalog"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/state"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Extractor is the external extraction capability for one payload format.
type Extractor interface {
	// Extract turns the raw file at rawPath into usable files under destDir.
	Extract(ctx context.Context, rawPath, destDir string) error
}

// Registry maps (region, resource type) to the installed extraction capability.
type Registry struct {
	extractors map[registryKey]Extractor
}

type registryKey struct {
	region catalog.Region
	typ    catalog.ResourceType
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{extractors: make(map[registryKey]Extractor)}
}

// Register installs a capability for a region and resource type.
func (r *Registry) Register(region catalog.Region, typ catalog.ResourceType, ex Extractor) {
	r.extractors[registryKey{region: region, typ: typ}] = ex
}

// Lookup returns the capability for a region and resource type, if installed
// and supported for that region at all.
func (r *Registry) Lookup(region catalog.Region, typ catalog.ResourceType) (Extractor, bool) {
	if !region.SupportsExtraction(typ) {
		return nil, false
	}
	ex, ok := r.extractors[registryKey{region: region, typ: typ}]
	return ex, ok
}

// OutcomeKind classifies the result of dispatching one entry.
type OutcomeKind string

const (
	// OutcomeExtracted means the capability succeeded.
	OutcomeExtracted OutcomeKind = "extracted"
	// OutcomeFailed means the capability returned an error.
	OutcomeFailed OutcomeKind = "extraction_failed"
	// OutcomeUnsupported means no capability applies; recorded as a no-op.
	OutcomeUnsupported OutcomeKind = "unsupported"
	// OutcomeSkipped means the entry was already extracted at this hash.
	OutcomeSkipped OutcomeKind = "skipped"
)

// Outcome is the per-entry result of a dispatch pass.
type Outcome struct {
	Path string
	Kind OutcomeKind
	Err  error
}

// Task is one entry handed to the dispatcher together with its recorded
// extraction status, taken from the run's state view.
type Task struct {
	Entry  catalog.Entry
	Status state.ExtractionStatus
}

// StatusStore records extraction outcomes. Implemented by the state store.
type StatusStore interface {
	SetExtractionStatus(ctx context.Context, region, path string, status state.ExtractionStatus) error
}

// Dispatcher routes downloaded entries to extraction capabilities.
type Dispatcher struct {
	registry    *Registry
	local       *storage.Local
	states      StatusStore
	logger      *zap.Logger
	concurrency int
}

// NewDispatcher creates a dispatcher running at most concurrency extractions
// in parallel.
func NewDispatcher(registry *Registry, local *storage.Local, states StatusStore, concurrency int, logger *zap.Logger) *Dispatcher {
	if concurrency <= 0 {
		concurrency = 4
	}
	return &Dispatcher{
		registry:    registry,
		local:       local,
		states:      states,
		logger:      logger,
		concurrency: concurrency,
	}
}

// Run dispatches all tasks and returns per-entry outcomes ordered by path.
// force re-extracts entries that are already recorded as extracted.
func (d *Dispatcher) Run(ctx context.Context, region catalog.Region, tasks []Task, force bool) []Outcome {
	if len(tasks) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		outcomes = make([]Outcome, 0, len(tasks))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(d.concurrency)

	for _, task := range tasks {
		if gctx.Err() != nil {
			break
		}
		task := task
		g.Go(func() error {
			out := d.dispatch(gctx, region, task, force)
			mu.Lock()
			outcomes = append(outcomes, out)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	sort.Slice(outcomes, func(i, j int) bool { return outcomes[i].Path < outcomes[j].Path })
	return outcomes
}

func (d *Dispatcher) dispatch(ctx context.Context, region catalog.Region, task Task, force bool) Outcome {
	entry := task.Entry

	if task.Status == state.Extracted && !force {
		return Outcome{Path: entry.Path, Kind: OutcomeSkipped}
	}

	ex, ok := d.registry.Lookup(region, entry.Type)
	if !ok {
		return Outcome{Path: entry.Path, Kind: OutcomeUnsupported}
	}

	destDir := filepath.Dir(d.local.ExtractPath(entry.Path))
	err := ex.Extract(ctx, d.local.RawPath(entry.Path), destDir)
	if err != nil {
		d.logger.Warn("extraction failed",
			zap.String("path", entry.Path),
			zap.String("type", string(entry.Type)),
			zap.Error(err))
		if setErr := d.states.SetExtractionStatus(ctx, string(region), entry.Path, state.ExtractionFailed); setErr != nil {
			d.logger.Error("record extraction failure", zap.String("path", entry.Path), zap.Error(setErr))
		}
		return Outcome{Path: entry.Path, Kind: OutcomeFailed, Err: err}
	}

	if err := d.states.SetExtractionStatus(ctx, string(region), entry.Path, state.Extracted); err != nil {
		d.logger.Error("record extraction success", zap.String("path", entry.Path), zap.Error(err))
		return Outcome{Path: entry.Path, Kind: OutcomeFailed, Err: err}
	}
	return Outcome{Path: entry.Path, Kind: OutcomeExtracted}
}
