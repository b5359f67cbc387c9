package state

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Snapshot is a read-only view of one region's records, keyed by path.
// It is taken once before scheduling and never updated during a run.
type Snapshot map[string]AssetRecord

// Store owns the lifetime of AssetRecord rows.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger

	// mu linearizes mutations; see the package comment.
	mu sync.Mutex
}

// NewStore creates a store over the given database connection.
func NewStore(db *gorm.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// Migrate creates or updates the backing schema.
func (s *Store) Migrate() error {
	if err := s.db.AutoMigrate(&AssetRecord{}); err != nil {
		return fmt.Errorf("migrate asset records: %w", err)
	}
	return nil
}

// Snapshot loads all records of a region into an in-memory map.
func (s *Store) Snapshot(ctx context.Context, region string) (Snapshot, error) {
	var records []AssetRecord
	if err := s.db.WithContext(ctx).Where("region = ?", region).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("load state snapshot for %s: %w", region, err)
	}
	snap := make(Snapshot, len(records))
	for _, rec := range records {
		snap[rec.Path] = rec
	}
	return snap, nil
}

// Commit upserts the record for a successfully downloaded asset. The extraction
// status is reset to NotAttempted because the content just changed on disk.
func (s *Store) Commit(ctx context.Context, rec AssetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec.ExtractionStatus = NotAttempted
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "region"}, {Name: "path"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"content_hash", "size", "resource_type", "extraction_status", "last_synced_version", "updated_at",
		}),
	}).Create(&rec).Error
	if err != nil {
		return fmt.Errorf("commit record %s/%s: %w", rec.Region, rec.Path, err)
	}
	return nil
}

// SetExtractionStatus records the outcome of an extraction attempt.
func (s *Store) SetExtractionStatus(ctx context.Context, region, path string, status ExtractionStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.db.WithContext(ctx).Model(&AssetRecord{}).
		Where("region = ? AND path = ?", region, path).
		Update("extraction_status", status)
	if res.Error != nil {
		return fmt.Errorf("update extraction status %s/%s: %w", region, path, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("update extraction status %s/%s: no such record", region, path)
	}
	return nil
}

// Stale returns the recorded paths of a region that are absent from current,
// in ascending path order. Nothing is deleted.
func (s *Store) Stale(ctx context.Context, region string, current map[string]struct{}) ([]string, error) {
	snap, err := s.Snapshot(ctx, region)
	if err != nil {
		return nil, err
	}
	var stale []string
	for p := range snap {
		if _, ok := current[p]; !ok {
			stale = append(stale, p)
		}
	}
	sort.Strings(stale)
	return stale, nil
}

// Prune deletes the records for the given paths. This is the only way records
// leave the store, and it is always an explicit caller decision.
func (s *Store) Prune(ctx context.Context, region string, paths []string) (int64, error) {
	if len(paths) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.db.WithContext(ctx).
		Where("region = ? AND path IN ?", region, paths).
		Delete(&AssetRecord{})
	if res.Error != nil {
		return 0, fmt.Errorf("prune records for %s: %w", region, res.Error)
	}
	s.logger.Info("pruned stale records",
		zap.String("region", region),
		zap.Int64("deleted", res.RowsAffected))
	return res.RowsAffected, nil
}
