package state

import "time"

// ExtractionStatus tracks the extraction outcome of a downloaded asset.
type ExtractionStatus string

const (
	// NotAttempted means the asset was downloaded but never handed to an extractor.
	NotAttempted ExtractionStatus = "not_attempted"
	// Extracted means the last extraction attempt succeeded.
	Extracted ExtractionStatus = "extracted"
	// ExtractionFailed means the last extraction attempt errored.
	ExtractionFailed ExtractionStatus = "extraction_failed"
)

// AssetRecord is the persisted state of one synchronized asset path.
type AssetRecord struct {
	// Region scopes the record to one deployment; paths are only unique per region.
	Region string `gorm:"primaryKey;size:8"`

	// Path is the catalog path of the asset.
	Path string `gorm:"primaryKey;size:512"`

	// ContentHash is the digest of the last successfully downloaded copy.
	ContentHash string `gorm:"size:64"`

	// Size is the byte size of the last successfully downloaded copy.
	Size int64

	// ResourceType is the catalog's payload classification (bundle, media,
	// table), kept so extraction can be re-run without resolving a catalog.
	ResourceType string `gorm:"size:16"`

	// ExtractionStatus records the outcome of the last extraction attempt.
	ExtractionStatus ExtractionStatus `gorm:"size:24"`

	// LastSyncedVersion is the manifest version the record was last synced against.
	LastSyncedVersion string `gorm:"size:64"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName pins the table name independent of gorm's pluralization rules.
func (AssetRecord) TableName() string {
	return "asset_records"
}
