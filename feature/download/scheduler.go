package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/storage"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/catalog"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/state"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// errDigestMismatch marks a fetched payload whose digest does not equal the
// catalog's declared hash. Treated as transient.
var errDigestMismatch = errors.New("content digest mismatch")

// Config holds configuration for the download scheduler.
type Config struct {
	// Concurrency is the worker pool size.
	Concurrency int `mapstructure:"concurrency" default:"20"`
	// MaxRetries is the per-entry retry ceiling beyond the first attempt.
	MaxRetries int `mapstructure:"max_retries" default:"5"`
	// FetchTimeoutSeconds bounds one fetch attempt.
	FetchTimeoutSeconds int `mapstructure:"fetch_timeout_seconds" default:"120"`

	// retryInterval seeds the exponential backoff. Tests shrink it.
	retryInterval time.Duration
}

func (c Config) concurrency() int {
	if c.Concurrency <= 0 {
		return 20
	}
	return c.Concurrency
}

func (c Config) fetchTimeout() time.Duration {
	if c.FetchTimeoutSeconds <= 0 {
		return 120 * time.Second
	}
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}

func (c Config) backoffSeed() time.Duration {
	if c.retryInterval > 0 {
		return c.retryInterval
	}
	return 500 * time.Millisecond
}

// Outcome is the terminal state of one download.
type Outcome string

const (
	// Success means the entry was fetched, verified and committed.
	Success Outcome = "success"
	// FailedPermanently means the entry exhausted its retry ceiling.
	FailedPermanently Outcome = "failed_permanently"
)

// Result is the per-entry outcome of a scheduler run.
type Result struct {
	Entry    catalog.Entry
	Outcome  Outcome
	Attempts int
	// Reused is set when the raw store already held verified content and no
	// fetch was issued.
	Reused bool
	Err    error
}

// Results aggregates one scheduler run, ordered by ascending entry path.
type Results struct {
	Items []Result
}

// Succeeded returns the successfully committed entries in order.
func (r Results) Succeeded() []catalog.Entry {
	var out []catalog.Entry
	for _, item := range r.Items {
		if item.Outcome == Success {
			out = append(out, item.Entry)
		}
	}
	return out
}

// FailedCount returns the number of permanently failed entries.
func (r Results) FailedCount() int {
	n := 0
	for _, item := range r.Items {
		if item.Outcome == FailedPermanently {
			n++
		}
	}
	return n
}

// Committer persists the state record of a successfully downloaded asset.
// Implemented by the state store.
type Committer interface {
	Commit(ctx context.Context, rec state.AssetRecord) error
}

// Scheduler downloads plan entries with bounded concurrency.
type Scheduler struct {
	cfg    Config
	client *http.Client
	local  *storage.Local
	states Committer
	mirror *storage.Mirror
	logger *zap.Logger
}

// NewScheduler creates a scheduler. mirror may be nil.
func NewScheduler(cfg Config, client *http.Client, local *storage.Local, states Committer, mirror *storage.Mirror, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cfg:    cfg,
		client: client,
		local:  local,
		states: states,
		mirror: mirror,
		logger: logger,
	}
}

// Run processes the given Download entries and returns per-entry outcomes.
// Cancellation stops dispatch; in-flight entries finish or abort their current
// attempt and nothing partial is ever committed.
func (s *Scheduler) Run(ctx context.Context, region catalog.Region, version string, entries []catalog.Entry) Results {
	if len(entries) == 0 {
		return Results{}
	}

	var (
		mu      sync.Mutex
		results = make([]Result, 0, len(entries))
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.concurrency())

	for _, entry := range entries {
		if gctx.Err() != nil {
			break
		}
		entry := entry
		g.Go(func() error {
			res := s.process(gctx, region, version, entry)
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	sort.Slice(results, func(i, j int) bool {
		return results[i].Entry.Path < results[j].Entry.Path
	})

	out := Results{Items: results}
	s.logger.Info("download pass finished",
		zap.String("region", string(region)),
		zap.Int("requested", len(entries)),
		zap.Int("succeeded", len(out.Succeeded())),
		zap.Int("failed", out.FailedCount()))
	return out
}

// process downloads, verifies and commits one entry.
func (s *Scheduler) process(ctx context.Context, region catalog.Region, version string, entry catalog.Entry) Result {
	res := Result{Entry: entry}

	// A matching file already on disk means a previous run was interrupted
	// between the file commit and the record write. Reuse it.
	if s.local.HasRaw(entry.Path, entry.Size) {
		if data, err := s.local.ReadRaw(entry.Path); err == nil &&
			catalog.VerifyDigest(entry.Hash, data, entry.ContentHash) {
			if err := s.commit(ctx, region, version, entry, data, false); err == nil {
				res.Outcome = Success
				res.Reused = true
				return res
			}
		}
	}

	data, attempts, err := s.fetchVerified(ctx, entry)
	res.Attempts = attempts
	if err != nil {
		res.Outcome = FailedPermanently
		res.Err = err
		s.logger.Warn("download failed permanently",
			zap.String("path", entry.Path),
			zap.Int("attempts", attempts),
			zap.Error(err))
		return res
	}

	if err := s.commit(ctx, region, version, entry, data, true); err != nil {
		res.Outcome = FailedPermanently
		res.Err = err
		s.logger.Error("commit failed", zap.String("path", entry.Path), zap.Error(err))
		return res
	}

	res.Outcome = Success
	return res
}

// fetchVerified fetches the entry with bounded retries until the payload
// verifies against the declared digest.
func (s *Scheduler) fetchVerified(ctx context.Context, entry catalog.Entry) ([]byte, int, error) {
	var (
		data     []byte
		attempts int
	)

	op := func() error {
		attempts++
		body, err := s.fetch(ctx, entry.URL)
		if err != nil {
			return err
		}
		if !catalog.VerifyDigest(entry.Hash, body, entry.ContentHash) {
			return fmt.Errorf("%w: %s", errDigestMismatch, entry.Path)
		}
		data = body
		return nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = s.cfg.backoffSeed()
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(s.cfg.MaxRetries)), ctx)

	if err := backoff.Retry(op, policy); err != nil {
		return nil, attempts, err
	}
	return data, attempts, nil
}

// fetch issues one GET attempt with the per-fetch deadline applied.
func (s *Scheduler) fetch(ctx context.Context, url string) ([]byte, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, s.cfg.fetchTimeout())
	defer cancel()

	req, err := http.NewRequestWithContext(fetchCtx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

// commit writes the raw file (unless already on disk), updates the state
// record and mirrors the asset. File before record: a crash in between is
// recovered by the reuse path, never by trusting a dangling record.
func (s *Scheduler) commit(ctx context.Context, region catalog.Region, version string, entry catalog.Entry, data []byte, writeFile bool) error {
	if writeFile {
		if err := s.local.CommitRaw(entry.Path, data); err != nil {
			return err
		}
	}
	if err := s.states.Commit(ctx, state.AssetRecord{
		Region:            string(region),
		Path:              entry.Path,
		ContentHash:       entry.ContentHash,
		Size:              int64(len(data)),
		ResourceType:      string(entry.Type),
		LastSyncedVersion: version,
	}); err != nil {
		return err
	}
	if err := s.mirror.Upload(ctx, entry.Path, data); err != nil {
		// The mirror is best-effort; the local store is authoritative.
		s.logger.Warn("mirror upload failed", zap.String("path", entry.Path), zap.Error(err))
	}
	return nil
}
