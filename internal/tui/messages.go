package tui

import "github.com/mwenda/somo/internal/domain"

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// UnitsLoadedMsg signals that the cached unit list has been (re)read
type UnitsLoadedMsg struct {
	Entries []domain.UnitCacheEntry
}

// SyncDoneMsg signals that a metadata refresh finished
type SyncDoneMsg struct {
	Result domain.SyncResult
	Err    error
}

// DownloadProgressMsg carries incremental progress for an in-flight download
type DownloadProgressMsg domain.DownloadProgress

// DownloadDoneMsg signals that a download attempt reached a terminal state
type DownloadDoneMsg struct {
	UnitID string
	State  domain.DownloadState
	Err    error
}

// DeleteDoneMsg signals that a unit's offline content was removed
type DeleteDoneMsg struct {
	UnitID string
	Err    error
}

// DetailLoadedMsg signals that a unit detail projection is ready
type DetailLoadedMsg struct {
	Detail domain.UnitDetail
	Err    error
}
