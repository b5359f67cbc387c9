package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/config"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/database"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/logger"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/netclient"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/storage"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/catalog"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/download"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/extract"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/search"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/state"
	syncpipe "github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/sync"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for sync command
	syncRegion      string
	syncVersion     string
	syncThreads     int
	syncMaxRetries  int
	syncProxy       string
	syncRawDir      string
	syncExtractDir  string
	syncTempDir     string
	syncSearch      []string
	syncAttrs       []string
	syncNoExtract   bool
	syncForceUnpack bool
)

// syncCmd runs one full synchronization pass for a region.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize game assets for a region",
	Long: `Synchronize game assets for a region: resolve the current catalog,
diff it against local state, download what changed, and extract what can be
extracted.

Runs are idempotent. Re-running after a completed sync downloads nothing;
re-running after an interrupted sync picks up the remaining work.

Examples:
  # Full sync of the JP deployment
  sync --region jp

  # Sync a pinned GL version with 8 workers
  sync --region gl --version 1.38.123456 --threads 8

  # Only assets matching a character keyword
  sync --region jp --search aru

  # Only assets matching profile attributes
  sync --region jp --attrs school=Arius --attrs club=GameDev

  # Download only, no extraction
  sync --region cn --no-extract`,
	RunE: runSync,
}

func init() {
	syncCmd.Flags().StringVar(&syncRegion, "region", "", "Deployment region: cn, gl, or jp (required)")
	syncCmd.Flags().StringVar(&syncVersion, "version", "", "Pin a catalog version (GL only; ignored elsewhere)")
	syncCmd.Flags().IntVar(&syncThreads, "threads", 0, "Concurrent download workers (default from config)")
	syncCmd.Flags().IntVar(&syncMaxRetries, "max-retries", -1, "Retries per entry after the first attempt (default from config)")
	syncCmd.Flags().StringVar(&syncProxy, "proxy", "", "Proxy URL for all outgoing requests")
	syncCmd.Flags().StringVar(&syncRawDir, "raw-dir", "", "Directory for downloaded raw assets")
	syncCmd.Flags().StringVar(&syncExtractDir, "extract-dir", "", "Directory for extracted assets")
	syncCmd.Flags().StringVar(&syncTempDir, "temp-dir", "", "Directory for in-progress downloads")
	syncCmd.Flags().StringSliceVar(&syncSearch, "search", nil, "Keyword search terms (repeatable)")
	syncCmd.Flags().StringSliceVar(&syncAttrs, "attrs", nil, "Attribute criteria like school=Arius (repeatable, JP only)")
	syncCmd.Flags().BoolVar(&syncNoExtract, "no-extract", false, "Skip extraction, download only")
	syncCmd.Flags().BoolVar(&syncForceUnpack, "force-extract", false, "Re-extract entries already extracted")

	syncCmd.MarkFlagsMutuallyExclusive("search", "attrs")
	_ = syncCmd.MarkFlagRequired("region")

	RootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	region, err := catalog.ParseRegion(syncRegion)
	if err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applySyncFlags(cfg)

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	l.Info("Starting synchronization", zap.String("region", string(region)))

	// Cancel the run on SIGINT/SIGTERM; committed work survives.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	service, err := buildPipeline(ctx, cfg, l)
	if err != nil {
		return err
	}

	opts := syncpipe.Options{
		Region:          region,
		Version:         syncVersion,
		SkipExtraction:  syncNoExtract,
		ForceExtraction: syncForceUnpack,
		Criteria: search.Criteria{
			Keywords:   syncSearch,
			Attributes: syncAttrs,
		},
	}

	summary, err := service.Run(ctx, opts)
	if err != nil {
		if summary != nil {
			// Interrupted mid-run: report partial progress before exiting.
			printSummary(l, summary)
		}
		return err
	}

	printSummary(l, summary)

	if len(summary.Stale) > 0 {
		l.Info("Stale local assets detected; run 'prune' to remove them",
			zap.Int("count", len(summary.Stale)))
	}
	if summary.Degraded() {
		return fmt.Errorf("sync completed with %d permanent failure(s)", summary.FailedPermanently)
	}
	return nil
}

// applySyncFlags overlays command-line flags onto the loaded configuration.
// Flags win over environment and defaults.
func applySyncFlags(cfg *config.Config) {
	if syncThreads > 0 {
		cfg.Download.Concurrency = syncThreads
	}
	if syncMaxRetries >= 0 {
		cfg.Download.MaxRetries = syncMaxRetries
	}
	if syncProxy != "" {
		cfg.Network.ProxyURL = syncProxy
	}
	if syncRawDir != "" {
		cfg.Storage.RawDir = syncRawDir
	}
	if syncExtractDir != "" {
		cfg.Storage.ExtractDir = syncExtractDir
	}
	if syncTempDir != "" {
		cfg.Storage.TempDir = syncTempDir
	}
}

// buildPipeline wires the full synchronization pipeline from configuration.
func buildPipeline(ctx context.Context, cfg *config.Config, l *zap.Logger) (*syncpipe.Service, error) {
	// Connect to the state database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	store := state.NewStore(db, l)
	if err := store.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to migrate state schema: %w", err)
	}

	// Local stores
	local, err := storage.NewLocal(cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare local storage: %w", err)
	}

	// Optional object-storage mirror
	var mirror *storage.Mirror
	if cfg.Storage.Mirror.Enabled {
		client, err := storage.NewClient(cfg.Storage.Mirror)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to mirror: %w", err)
		}
		mirror, err = storage.NewMirror(ctx, client, cfg.Storage.Mirror.Bucket)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare mirror bucket: %w", err)
		}
	}

	// Outgoing HTTP client
	httpClient, err := netclient.New(cfg.Network)
	if err != nil {
		return nil, fmt.Errorf("failed to build HTTP client: %w", err)
	}

	resolver := catalog.NewResolver(httpClient, l)
	engine := search.NewEngine(loadMetadataProvider(local, l), l)
	scheduler := download.NewScheduler(cfg.Download, httpClient, local, store, mirror, l)
	dispatcher := extract.NewDispatcher(buildRegistry(), local, store, 0, l)

	return syncpipe.NewService(resolver, engine, store, scheduler, dispatcher, l), nil
}

// loadMetadataProvider loads the character relation data produced by table
// extraction. Absence is fine; keyword search then falls back to raw paths
// and attribute search reports the capability as unavailable.
func loadMetadataProvider(local *storage.Local, l *zap.Logger) search.MetadataProvider {
	path := filepath.Join(local.ExtractDir(), "CharacterRelation.json")
	provider, err := search.LoadFileProvider(path)
	if err != nil {
		l.Warn("Failed to load character relation data", zap.Error(err))
		return nil
	}
	if provider == nil {
		return nil
	}
	l.Info("Loaded character relation data", zap.String("version", provider.Version()))
	return provider
}

// buildRegistry registers the built-in extraction capabilities. Media files
// are copied as-is for every region; table archives are unpacked. Bundles
// have no capability and are reported as unsupported.
func buildRegistry() *extract.Registry {
	registry := extract.NewRegistry()
	for _, region := range catalog.Regions() {
		registry.Register(region, catalog.TypeMedia, extract.MediaCopy{})
		registry.Register(region, catalog.TypeTable, extract.TableZip{})
	}
	return registry
}

func printSummary(l *zap.Logger, s *syncpipe.Summary) {
	l.Info("Synchronization summary",
		zap.String("run_id", s.RunID),
		zap.String("region", string(s.Region)),
		zap.String("version", s.Version),
		zap.Int("planned", s.Planned),
		zap.Int("downloaded", s.Downloaded),
		zap.Int("reused", s.Reused),
		zap.Int("skipped_unchanged", s.SkippedUnchanged),
		zap.Int("failed_permanently", s.FailedPermanently),
		zap.Int("extracted", s.Extracted),
		zap.Int("extraction_failed", s.ExtractionFailed),
		zap.Int("unsupported", s.Unsupported),
		zap.Int("stale", len(s.Stale)),
	)
}
