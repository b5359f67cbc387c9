package cmd

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/config"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/database"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/logger"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/netclient"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/core/storage"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/catalog"
	"github.com/ZM-Kimu/Blue-Archive-Asset-Downloader/feature/state"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for prune command
	pruneRegion string
	pruneYes    bool
)

// pruneCmd removes local assets the current catalog no longer lists.
var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Remove local assets absent from the current catalog",
	Long: `Remove local assets the current remote catalog no longer references.

Sync never deletes anything on its own; stale assets accumulate until this
command is run. Deletion covers the raw file, the state record, and the
mirror object if mirroring is enabled.

Examples:
  # Report and confirm interactively
  prune --region jp

  # Non-interactive (CI)
  prune --region jp --yes`,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().StringVar(&pruneRegion, "region", "", "Deployment region: cn, gl, or jp (required)")
	pruneCmd.Flags().BoolVar(&pruneYes, "yes", false, "Auto-confirm deletion (non-interactive)")
	_ = pruneCmd.MarkFlagRequired("region")

	RootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	region, err := catalog.ParseRegion(pruneRegion)
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

	var mirror *storage.Mirror
	if cfg.Storage.Mirror.Enabled {
		client, err := storage.NewClient(cfg.Storage.Mirror)
		if err != nil {
			return fmt.Errorf("failed to connect to mirror: %w", err)
		}
		mirror, err = storage.NewMirror(ctx, client, cfg.Storage.Mirror.Bucket)
		if err != nil {
			return fmt.Errorf("failed to prepare mirror bucket: %w", err)
		}
	}

	httpClient, err := netclient.New(cfg.Network)
	if err != nil {
		return fmt.Errorf("failed to build HTTP client: %w", err)
	}

	// Resolve the current catalog so staleness reflects the live listing.
	resolver := catalog.NewResolver(httpClient, l)
	manifest, err := resolver.Resolve(ctx, region, "")
	if err != nil {
		return err
	}

	current := make(map[string]struct{}, manifest.Len())
	for _, entry := range manifest.Entries {
		current[entry.Path] = struct{}{}
	}

	stale, err := store.Stale(ctx, string(region), current)
	if err != nil {
		return fmt.Errorf("failed to compute stale assets: %w", err)
	}
	if len(stale) == 0 {
		l.Info("No stale assets", zap.String("region", string(region)))
		return nil
	}

	l.Info("Stale assets to remove",
		zap.String("region", string(region)),
		zap.String("version", manifest.Version),
		zap.Int("count", len(stale)))
	maxShow := 10
	if len(stale) < maxShow {
		maxShow = len(stale)
	}
	for _, path := range stale[:maxShow] {
		l.Info("Stale asset", zap.String("path", path))
	}
	if len(stale) > maxShow {
		l.Info("Additional stale assets not shown", zap.Int("count", len(stale)-maxShow))
	}

	if !confirmPrune(len(stale)) {
		l.Warn("Operation cancelled by user. No changes were made.")
		return nil
	}

	// Remove files first so an interruption leaves records pointing at
	// missing files, which the next prune run cleans up again. Records are
	// only dropped for paths whose files actually went away.
	var fileErrs int
	cleared := make([]string, 0, len(stale))
	for _, path := range stale {
		if err := local.RemoveRaw(path); err != nil {
			l.Warn("Failed to remove raw file", zap.String("path", path), zap.Error(err))
			fileErrs++
			continue
		}
		if err := mirror.Remove(ctx, path); err != nil {
			l.Warn("Failed to remove mirror object", zap.String("path", path), zap.Error(err))
		}
		cleared = append(cleared, path)
	}

	removed, err := store.Prune(ctx, string(region), cleared)
	if err != nil {
		return fmt.Errorf("failed to prune state records: %w", err)
	}

	l.Info("Prune finished",
		zap.Int64("records_removed", removed),
		zap.Int("file_errors", fileErrs))
	if fileErrs > 0 {
		return fmt.Errorf("prune completed with %d file removal error(s)", fileErrs)
	}
	return nil
}

// confirmPrune prompts for confirmation or honors --yes.
func confirmPrune(count int) bool {
	if pruneYes {
		fmt.Println("\n✓ Auto-confirmed via --yes flag")
		return true
	}

	fmt.Printf("\n⚠️  Type 'yes' to delete %d stale asset(s): ", count)
	reader := bufio.NewReader(os.Stdin)
	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}

	return strings.TrimSpace(response) == "yes"
}
