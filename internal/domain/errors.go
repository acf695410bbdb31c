package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrUnitNotFound indicates the requested unit does not exist in the cache
	ErrUnitNotFound = errors.New("unit not found")

	// ErrNotDownloaded indicates full content was requested for a unit that
	// is not completed; callers branch to a "download required" prompt
	ErrNotDownloaded = errors.New("unit content not downloaded")

	// ErrIllegalTransition indicates an invalid download status transition.
	// This is a programming bug in the caller, not a retryable condition.
	ErrIllegalTransition = errors.New("illegal download status transition")

	// ErrDownloadActive indicates a download attempt is already in flight
	ErrDownloadActive = errors.New("download already in progress")

	// ErrServerOffline indicates the content server is unreachable
	ErrServerOffline = errors.New("content server is unreachable")

	// ErrAuthFailed indicates the access token was rejected
	ErrAuthFailed = errors.New("access token is invalid")
)

// SyncError wraps a metadata refresh failure. Non-fatal: the cache keeps
// serving whatever it already holds.
type SyncError struct {
	Err error
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("metadata sync failed: %v", e.Err)
}

func (e *SyncError) Unwrap() error { return e.Err }

// DownloadError wraps a failure during full-content or asset download.
// By the time the caller sees it, partial assets for the unit are purged.
type DownloadError struct {
	UnitID  string
	AssetID string // Empty when the content fetch itself failed
	Err     error
}

func (e *DownloadError) Error() string {
	if e.AssetID != "" {
		return fmt.Sprintf("download failed for unit %s (asset %s): %v", e.UnitID, e.AssetID, e.Err)
	}
	return fmt.Sprintf("download failed for unit %s: %v", e.UnitID, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }
