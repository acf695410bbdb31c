package domain

import "fmt"

// UnitMetadata is the lightweight unit index entry refreshed on every sync.
// It is always safe to show in lists regardless of download state.
type UnitMetadata struct {
	ID              string // Server-assigned stable identifier
	Title           string // Display title
	Description     string // Short summary shown in list views
	LessonCount     int    // Number of lessons in the unit
	CoverImageURL   string // Remote thumbnail URL
	SourceUpdatedAt int64  // Server-side last-modified unix timestamp
}

// DownloadState tracks a unit's offline download lifecycle.
type DownloadState struct {
	Status       DownloadStatus
	StartedAt    int64    // Unix timestamp of last download start (0 = never)
	CompletedAt  int64    // Unix timestamp of last successful completion
	AssetIDs     []string // Assets owned by this unit; empty unless in_progress or later
	StorageBytes int64    // Total bytes on disk; non-zero only when completed
	LastError    string   // Human-readable cause of the last failure
}

// NewDownloadState returns the initial state for a unit never downloaded.
func NewDownloadState() DownloadState {
	return DownloadState{Status: StatusIdle}
}

// UnitCacheEntry is a unit's metadata merged with its current download state.
// This is what list views render.
type UnitCacheEntry struct {
	UnitMetadata
	State DownloadState
}

// IsDownloaded returns true if the unit's full content is available offline
func (e UnitCacheEntry) IsDownloaded() bool {
	return e.State.Status == StatusCompleted
}

// FormattedSize returns the on-disk size in a human-readable format
func (e UnitCacheEntry) FormattedSize() string {
	if e.State.Status != StatusCompleted {
		return "-"
	}
	return FormatBytes(e.State.StorageBytes)
}

// FormatBytes renders a byte count as B/KB/MB with one decimal place
func FormatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1fMB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fKB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%dB", n)
	}
}

// Lesson is one ordered lesson inside a downloaded unit
type Lesson struct {
	ID       string
	UnitID   string
	Title    string
	Position int
	Sections []LessonSection
}

// LessonSection is a block of lesson content
type LessonSection struct {
	Kind    string // "text", "audio", "image"
	Body    string // Markdown body for text sections
	AssetID string // Owning asset for audio/image sections
}

// Exercise is a multiple-choice question from a unit's exercise bank
type Exercise struct {
	ID           string
	UnitID       string
	LessonID     string
	Prompt       string
	Choices      []string
	AnswerIndex  int
	Explanation  string
	AudioAssetID string // Optional prompt audio
}

// UnitContent is the full offline payload for a single unit.
// Only ever handed to callers when the unit's download is completed.
type UnitContent struct {
	UnitID        string
	Lessons       []Lesson
	Exercises     []Exercise
	AssetManifest []AssetManifestEntry
}

// AssetManifestEntry describes one asset the server expects the client to fetch
type AssetManifestEntry struct {
	AssetID  string
	Kind     AssetKind
	URL      string
	Checksum string // Optional sha256 hex; empty disables verification
}

// UnitDetail is the orchestrator's read projection for a single unit.
// Content is nil unless Entry.State.Status == StatusCompleted.
type UnitDetail struct {
	Entry   UnitCacheEntry
	Content *UnitContent
}
