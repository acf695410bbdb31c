package domain

// Store handles the local cache (BoltDB + memory): unit metadata, download
// state, and asset records. Metadata and download state live in disjoint
// buckets so a metadata sync can never race a download transition.
type Store interface {
	// === Unit metadata (refreshed on every sync) ===

	// UpsertMetadata inserts or replaces metadata rows keyed by unit ID.
	// Never touches download state. Idempotent and order-independent.
	UpsertMetadata(units []UnitMetadata) error

	// GetMetadata returns a single unit's metadata
	GetMetadata(unitID string) (UnitMetadata, bool)

	// ListUnits returns every known unit merged with its download state
	// (StatusIdle if the unit has never been downloaded), sorted by title.
	ListUnits() ([]UnitCacheEntry, error)

	// === Download state (written only by the tracker) ===

	GetState(unitID string) (DownloadState, bool)
	SaveState(unitID string, state DownloadState) error

	// === Full unit content (present only for completed units) ===

	GetContent(unitID string) (*UnitContent, bool)
	SaveContent(unitID string, content *UnitContent) error
	DeleteContent(unitID string)

	// === Asset records (foreign-keyed to their unit) ===

	GetAssets(unitID string) ([]AssetRecord, bool)
	SaveAssets(unitID string, assets []AssetRecord) error
	DeleteAssets(unitID string)

	// === Lifecycle ===

	Close() error
}

// AssetStore persists downloaded binary asset payloads on disk.
type AssetStore interface {
	// Write persists an asset payload and returns its record. Writes are
	// staged to a temp file and renamed so readers never see partial bytes.
	// A non-empty checksum is verified before the rename.
	Write(assetID, unitID string, kind AssetKind, data []byte, checksum string) (AssetRecord, error)

	// Has reports whether the asset payload exists on disk
	Has(record AssetRecord) bool

	// Delete removes a single asset payload (missing files are not an error)
	Delete(record AssetRecord) error

	// PurgeUnit removes every payload under the unit's directory
	PurgeUnit(unitID string) error
}
