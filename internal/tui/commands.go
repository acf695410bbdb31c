package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwenda/somo/internal/domain"
)

// loadUnitsCmd reads the cached unit list (never hits network)
func (m *Model) loadUnitsCmd() tea.Cmd {
	return func() tea.Msg {
		entries, err := m.svc.ListUnits()
		if err != nil {
			return ErrMsg{Err: err, Context: "list units"}
		}
		return UnitsLoadedMsg{Entries: entries}
	}
}

// syncCmd refreshes unit metadata from the server
func (m *Model) syncCmd() tea.Cmd {
	return func() tea.Msg {
		result, err := m.svc.SyncMetadata(context.Background())
		return SyncDoneMsg{Result: result, Err: err}
	}
}

// downloadCmd runs a full unit download, streaming progress through the
// model's progress channel
func (m *Model) downloadCmd(unitID string) tea.Cmd {
	progress := m.progress
	return func() tea.Msg {
		state, err := m.svc.RequestDownload(context.Background(), unitID, func(p domain.DownloadProgress) {
			select {
			case progress <- p:
			default: // Never block the download on a slow UI
			}
		})
		return DownloadDoneMsg{UnitID: unitID, State: state, Err: err}
	}
}

// listenProgress waits for the next progress update
func (m *Model) listenProgress() tea.Cmd {
	progress := m.progress
	return func() tea.Msg {
		return DownloadProgressMsg(<-progress)
	}
}

// deleteCmd removes a unit's offline content
func (m *Model) deleteCmd(unitID string) tea.Cmd {
	return func() tea.Msg {
		_, err := m.svc.DeleteDownload(unitID)
		return DeleteDoneMsg{UnitID: unitID, Err: err}
	}
}

// detailCmd loads a unit's detail projection
func (m *Model) detailCmd(unitID string) tea.Cmd {
	return func() tea.Msg {
		detail, err := m.svc.GetUnitDetail(unitID)
		return DetailLoadedMsg{Detail: detail, Err: err}
	}
}
