package domain

import "testing"

func TestDownloadStatus_CanTransition(t *testing.T) {
	tests := []struct {
		from     DownloadStatus
		to       DownloadStatus
		expected bool
	}{
		// Download request path
		{StatusIdle, StatusPending, true},
		{StatusFailed, StatusPending, true},
		{StatusPending, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusFailed, true},

		// Deletion doubles as cancellation from every state
		{StatusIdle, StatusIdle, true},
		{StatusPending, StatusIdle, true},
		{StatusInProgress, StatusIdle, true},
		{StatusCompleted, StatusIdle, true},
		{StatusFailed, StatusIdle, true},

		// Illegal steps
		{StatusIdle, StatusInProgress, false},
		{StatusIdle, StatusCompleted, false},
		{StatusIdle, StatusFailed, false},
		{StatusPending, StatusPending, false},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusFailed, false},
		{StatusInProgress, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusInProgress, false},
		{StatusFailed, StatusCompleted, false},
	}

	for _, test := range tests {
		result := test.from.CanTransition(test.to)
		if result != test.expected {
			t.Errorf("CanTransition(%s -> %s) = %v, expected %v", test.from, test.to, result, test.expected)
		}
	}
}

func TestDownloadStatus_IsActive(t *testing.T) {
	tests := []struct {
		status   DownloadStatus
		expected bool
	}{
		{StatusIdle, false},
		{StatusPending, true},
		{StatusInProgress, true},
		{StatusCompleted, false},
		{StatusFailed, false},
	}

	for _, test := range tests {
		if result := test.status.IsActive(); result != test.expected {
			t.Errorf("DownloadStatus(%s).IsActive() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestDownloadStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   DownloadStatus
		expected bool
	}{
		{StatusIdle, true},
		{StatusPending, false},
		{StatusInProgress, false},
		{StatusCompleted, true},
		{StatusFailed, true},
	}

	for _, test := range tests {
		if result := test.status.IsTerminal(); result != test.expected {
			t.Errorf("DownloadStatus(%s).IsTerminal() = %v, expected %v", test.status, result, test.expected)
		}
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		bytes    int64
		expected string
	}{
		{0, "0B"},
		{512, "512B"},
		{2048, "2.0KB"},
		{500000, "488.3KB"},
		{5 * 1 << 20, "5.0MB"},
	}

	for _, test := range tests {
		if result := FormatBytes(test.bytes); result != test.expected {
			t.Errorf("FormatBytes(%d) = %s, expected %s", test.bytes, result, test.expected)
		}
	}
}

func TestUnitCacheEntry_FormattedSize(t *testing.T) {
	completed := UnitCacheEntry{
		State: DownloadState{Status: StatusCompleted, StorageBytes: 2048},
	}
	if got := completed.FormattedSize(); got != "2.0KB" {
		t.Errorf("FormattedSize() = %s, expected 2.0KB", got)
	}

	idle := UnitCacheEntry{State: NewDownloadState()}
	if got := idle.FormattedSize(); got != "-" {
		t.Errorf("FormattedSize() for idle unit = %s, expected -", got)
	}
}
