package domain

// DownloadStatus represents a unit's offline download lifecycle state
type DownloadStatus string

const (
	// StatusIdle means the unit has never been downloaded (metadata only)
	StatusIdle DownloadStatus = "idle"

	// StatusPending means a download was requested but has not started
	StatusPending DownloadStatus = "pending"

	// StatusInProgress means content and assets are being fetched
	StatusInProgress DownloadStatus = "in_progress"

	// StatusCompleted means all assets are verified present on disk
	StatusCompleted DownloadStatus = "completed"

	// StatusFailed means the download aborted and partial assets were purged
	StatusFailed DownloadStatus = "failed"
)

// String returns the string representation of DownloadStatus
func (s DownloadStatus) String() string {
	return string(s)
}

// IsActive returns true if a download attempt is currently underway
func (s DownloadStatus) IsActive() bool {
	return s == StatusPending || s == StatusInProgress
}

// IsTerminal returns true if the status is a resting state (no attempt in flight)
func (s DownloadStatus) IsTerminal() bool {
	return s == StatusIdle || s == StatusCompleted || s == StatusFailed
}

// CanTransition reports whether moving from s to next is a legal lifecycle step.
// Deletion (-> idle) is legal from every state so it can double as cancellation.
func (s DownloadStatus) CanTransition(next DownloadStatus) bool {
	if next == StatusIdle {
		return true
	}
	switch s {
	case StatusIdle, StatusFailed:
		return next == StatusPending
	case StatusPending:
		return next == StatusInProgress
	case StatusInProgress:
		return next == StatusCompleted || next == StatusFailed
	default:
		return false
	}
}
