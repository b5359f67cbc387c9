package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/config"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/database"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/logger"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/storage"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/catalog"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/extract"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/state"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for extract command
	extractRegion string
	extractForce  bool
)

// extractCmd re-runs extraction over already-downloaded assets.
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract already-downloaded assets",
	Long: `Run extraction over assets already downloaded for a region, without
touching the network. Useful after an extraction capability becomes available
or after failures.

By default only assets whose last extraction did not succeed are processed;
--force re-extracts everything.

Examples:
  # Retry failed or never-attempted extractions
  extract --region jp

  # Re-extract everything
  extract --region jp --force`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVar(&extractRegion, "region", "", "Deployment region: cn, gl, or jp (required)")
	extractCmd.Flags().BoolVar(&extractForce, "force", false, "Re-extract entries already extracted")
	_ = extractCmd.MarkFlagRequired("region")

	RootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	region, err := catalog.ParseRegion(extractRegion)
	if err != nil {
		return err
	}

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Initialize logger
	l, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to the state database
	db, err := database.Connect(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	store := state.NewStore(db, l)
	if err := store.Migrate(); err != nil {
		return fmt.Errorf("failed to migrate state schema: %w", err)
	}

	local, err := storage.NewLocal(cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to prepare local storage: %w", err)
	}

	// Tasks come from recorded state; the catalog is not consulted.
	snapshot, err := store.Snapshot(ctx, string(region))
	if err != nil {
		return fmt.Errorf("failed to read local state: %w", err)
	}

	tasks := make([]extract.Task, 0, len(snapshot))
	for _, rec := range snapshot {
		tasks = append(tasks, extract.Task{
			Entry: catalog.Entry{
				Path:        rec.Path,
				ContentHash: rec.ContentHash,
				Size:        rec.Size,
				Type:        catalog.ResourceType(rec.ResourceType),
			},
			Status: rec.ExtractionStatus,
		})
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].Entry.Path < tasks[j].Entry.Path })

	if len(tasks) == 0 {
		l.Info("Nothing downloaded for region yet", zap.String("region", string(region)))
		return nil
	}

	dispatcher := extract.NewDispatcher(buildRegistry(), local, store, 0, l)
	outcomes := dispatcher.Run(ctx, region, tasks, extractForce)

	var extracted, failed, unsupported, skipped int
	for _, out := range outcomes {
		switch out.Kind {
		case extract.OutcomeExtracted:
			extracted++
		case extract.OutcomeFailed:
			failed++
		case extract.OutcomeUnsupported:
			unsupported++
		case extract.OutcomeSkipped:
			skipped++
		}
	}

	l.Info("Extraction finished",
		zap.String("region", string(region)),
		zap.Int("extracted", extracted),
		zap.Int("failed", failed),
		zap.Int("unsupported", unsupported),
		zap.Int("skipped", skipped))

	if failed > 0 {
		return fmt.Errorf("extraction completed with %d failure(s)", failed)
	}
	return nil
}
