package domain

import "context"

// ContentClient provides access to the remote learning content API.
// Implemented by the REST adapter; faked in tests.
type ContentClient interface {
	// GetUnits returns lightweight metadata for all units visible to the user
	GetUnits(ctx context.Context) ([]UnitMetadata, error)

	// GetUnitContent returns a unit's full lessons, exercise bank, and
	// asset URL manifest
	GetUnitContent(ctx context.Context, unitID string) (*UnitContent, error)

	// FetchAsset downloads one asset payload
	FetchAsset(ctx context.Context, entry AssetManifestEntry) ([]byte, error)
}
