package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mwenda/somo/internal/domain"
	"github.com/mwenda/somo/internal/offline"
	"github.com/mwenda/somo/internal/search"
	"github.com/mwenda/somo/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateFiltering
	StateDetail
	StateConfirmDelete
	StateHelp
)

// Model is the main Bubble Tea model for the application
type Model struct {
	state ApplicationState

	svc       *offline.Service
	searchSvc *search.Service

	// Unit list
	entries []domain.UnitCacheEntry // All cached units
	visible []domain.UnitCacheEntry // After filter
	cursor  int

	// Filter
	filterInput textinput.Model
	filtering   bool

	// Detail view
	detail domain.UnitDetail

	// Download progress per unit
	progress    chan domain.DownloadProgress
	downloading map[string]domain.DownloadProgress

	// Chrome
	spin        spinner.Model
	syncing     bool
	statusMsg   string
	statusIsErr bool
	width       int
	height      int
}

// NewModel creates the root TUI model
func NewModel(svc *offline.Service, searchSvc *search.Service) Model {
	ti := textinput.New()
	ti.Placeholder = "Filter units..."
	ti.CharLimit = 60
	ti.Width = 30
	ti.Prompt = "/ "
	ti.PromptStyle = styles.AccentStyle

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.AccentStyle

	return Model{
		svc:         svc,
		searchSvc:   searchSvc,
		filterInput: ti,
		spin:        sp,
		progress:    make(chan domain.DownloadProgress, 16),
		downloading: make(map[string]domain.DownloadProgress),
	}
}

func (m Model) Init() tea.Cmd {
	// Show whatever the cache holds immediately, then refresh metadata.
	return tea.Batch(m.loadUnitsCmd(), m.startSync(), m.listenProgress())
}

func (m *Model) startSync() tea.Cmd {
	m.syncing = true
	return tea.Batch(m.syncCmd(), m.spin.Tick)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case spinner.TickMsg:
		if !m.syncing && len(m.downloading) == 0 {
			return m, nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case UnitsLoadedMsg:
		m.entries = msg.Entries
		m.applyFilter()
		return m, nil

	case SyncDoneMsg:
		m.syncing = false
		if msg.Err != nil {
			// Stale metadata shows silently; the footer hint is enough.
			m.setStatus("offline — showing cached units", false)
			return m, nil
		}
		m.setStatus(fmt.Sprintf("synced %d units", msg.Result.Units), false)
		return m, m.loadUnitsCmd()

	case DownloadProgressMsg:
		p := domain.DownloadProgress(msg)
		m.downloading[p.UnitID] = p
		return m, tea.Batch(m.listenProgress(), m.spin.Tick)

	case DownloadDoneMsg:
		delete(m.downloading, msg.UnitID)
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("download failed: %v", msg.Err), true)
		} else if msg.State.Status == domain.StatusCompleted {
			m.setStatus(fmt.Sprintf("downloaded (%s)", domain.FormatBytes(msg.State.StorageBytes)), false)
		}
		return m, m.loadUnitsCmd()

	case DeleteDoneMsg:
		if msg.Err != nil {
			m.setStatus(fmt.Sprintf("delete failed: %v", msg.Err), true)
		} else {
			m.setStatus("download removed", false)
		}
		return m, m.loadUnitsCmd()

	case DetailLoadedMsg:
		if msg.Err != nil && msg.Err != domain.ErrNotDownloaded {
			m.setStatus(msg.Err.Error(), true)
			return m, nil
		}
		m.detail = msg.Detail
		m.state = StateDetail
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Filter input captures most keys while active
	if m.state == StateFiltering {
		switch {
		case key.Matches(msg, Keys.Escape):
			m.state = StateBrowsing
			m.filterInput.SetValue("")
			m.filterInput.Blur()
			m.applyFilter()
			return m, nil
		case key.Matches(msg, Keys.Enter):
			m.state = StateBrowsing
			m.filterInput.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.filterInput, cmd = m.filterInput.Update(msg)
			m.applyFilter()
			return m, cmd
		}
	}

	switch m.state {
	case StateConfirmDelete:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.state = StateBrowsing
			if entry, ok := m.selected(); ok {
				return m, m.deleteCmd(entry.ID)
			}
			return m, nil
		case key.Matches(msg, Keys.Deny), key.Matches(msg, Keys.Escape):
			m.state = StateBrowsing
			return m, nil
		}
		return m, nil

	case StateDetail, StateHelp:
		switch {
		case key.Matches(msg, Keys.Back), key.Matches(msg, Keys.Escape), key.Matches(msg, Keys.Quit):
			m.state = StateBrowsing
			return m, nil
		case key.Matches(msg, Keys.Download):
			if m.state == StateDetail {
				return m, m.requestDownload(m.detail.Entry.ID)
			}
		}
		return m, nil
	}

	// Browsing
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, Keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, Keys.Down):
		if m.cursor < len(m.visible)-1 {
			m.cursor++
		}
	case key.Matches(msg, Keys.Filter):
		m.state = StateFiltering
		m.filterInput.Focus()
		return m, textinput.Blink
	case key.Matches(msg, Keys.Refresh):
		return m, m.startSync()
	case key.Matches(msg, Keys.Enter):
		if entry, ok := m.selected(); ok {
			return m, m.detailCmd(entry.ID)
		}
	case key.Matches(msg, Keys.Download):
		if entry, ok := m.selected(); ok {
			return m, m.requestDownload(entry.ID)
		}
	case key.Matches(msg, Keys.Delete):
		if entry, ok := m.selected(); ok && entry.State.Status != domain.StatusIdle {
			m.state = StateConfirmDelete
		}
	case key.Matches(msg, Keys.Help):
		m.state = StateHelp
	case key.Matches(msg, Keys.Escape):
		m.filterInput.SetValue("")
		m.applyFilter()
	}
	return m, nil
}

func (m *Model) requestDownload(unitID string) tea.Cmd {
	m.downloading[unitID] = domain.DownloadProgress{UnitID: unitID}
	m.setStatus("downloading...", false)
	return tea.Batch(m.downloadCmd(unitID), m.loadUnitsCmd(), m.spin.Tick)
}

func (m *Model) selected() (domain.UnitCacheEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.visible) {
		return domain.UnitCacheEntry{}, false
	}
	return m.visible[m.cursor], true
}

// applyFilter recomputes the visible unit list from the filter query
func (m *Model) applyFilter() {
	query := strings.TrimSpace(m.filterInput.Value())
	if query == "" {
		m.visible = m.entries
	} else {
		results := m.searchSvc.Filter(query)
		m.visible = make([]domain.UnitCacheEntry, len(results))
		for i, r := range results {
			m.visible[i] = r.Entry
		}
	}
	if m.cursor >= len(m.visible) {
		m.cursor = len(m.visible) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) setStatus(msg string, isErr bool) {
	m.statusMsg = msg
	m.statusIsErr = isErr
}

// === View ===

func (m Model) View() string {
	switch m.state {
	case StateDetail:
		return m.viewDetail()
	case StateHelp:
		return m.viewHelp()
	default:
		return m.viewList()
	}
}

func (m Model) viewList() string {
	var b strings.Builder

	header := styles.HeaderStyle.Render("somo")
	if m.syncing {
		header += " " + m.spin.View() + styles.DimStyle.Render(" syncing")
	}
	b.WriteString(header + "\n\n")

	if m.state == StateFiltering || m.filterInput.Value() != "" {
		b.WriteString(m.filterInput.View() + "\n\n")
	}

	if len(m.visible) == 0 {
		b.WriteString(styles.DimStyle.Render("  no units — press r to refresh") + "\n")
	}

	for i, entry := range m.visible {
		b.WriteString(m.renderRow(i, entry) + "\n")
	}

	b.WriteString("\n" + m.renderFooter())

	if m.state == StateConfirmDelete {
		if entry, ok := m.selected(); ok {
			prompt := styles.WarnStyle.Render(fmt.Sprintf("delete offline copy of %q? (y/n)", entry.Title))
			b.WriteString("\n" + prompt)
		}
	}

	return b.String()
}

func (m Model) renderRow(i int, entry domain.UnitCacheEntry) string {
	glyph, glyphStyle := statusGlyph(entry.State.Status)

	status := glyphStyle.Render(glyph)
	if p, ok := m.downloading[entry.ID]; ok && p.Total > 0 {
		status = styles.AccentStyle.Render(fmt.Sprintf("%d/%d", p.Loaded, p.Total))
	}

	line := fmt.Sprintf("%s %-40s %3d lessons  %8s", status, truncate(entry.Title, 40), entry.LessonCount, entry.FormattedSize())
	if i == m.cursor {
		return styles.SelectedStyle.Render(line)
	}
	return "  " + line
}

func (m Model) renderFooter() string {
	help := "j/k move · enter open · d download · x delete · / filter · r refresh · q quit"
	footer := styles.FooterStyle.Render(help)
	if total := m.svc.StorageBytes(); total > 0 {
		footer += styles.DimStyle.Render("  |  offline: " + domain.FormatBytes(total))
	}
	if m.statusMsg != "" {
		style := styles.SubtitleStyle
		if m.statusIsErr {
			style = styles.ErrorStyle
		}
		footer += "\n" + style.Render(m.statusMsg)
	}
	return footer
}

func (m Model) viewDetail() string {
	var b strings.Builder
	entry := m.detail.Entry

	b.WriteString(styles.TitleStyle.Render(entry.Title) + "\n")
	if entry.Description != "" {
		b.WriteString(styles.SubtitleStyle.Render(entry.Description) + "\n")
	}
	b.WriteString("\n")

	if m.detail.Content == nil {
		glyph, glyphStyle := statusGlyph(entry.State.Status)
		b.WriteString(glyphStyle.Render(glyph) + " " + styles.DimStyle.Render("not available offline — press d to download") + "\n")
		if entry.State.Status == domain.StatusFailed && entry.State.LastError != "" {
			b.WriteString(styles.ErrorStyle.Render("last attempt: "+entry.State.LastError) + "\n")
		}
	} else {
		for _, lesson := range m.detail.Content.Lessons {
			b.WriteString(fmt.Sprintf("  %2d. %s\n", lesson.Position, lesson.Title))
		}
		b.WriteString("\n" + styles.DimStyle.Render(fmt.Sprintf("%d exercises · %s on disk",
			len(m.detail.Content.Exercises), entry.FormattedSize())) + "\n")
	}

	b.WriteString("\n" + styles.FooterStyle.Render("esc back"))
	return b.String()
}

func (m Model) viewHelp() string {
	lines := []string{
		styles.TitleStyle.Render("somo — offline study units"),
		"",
		"  j/k, ↑/↓    move",
		"  enter       open unit detail",
		"  d           download unit for offline use",
		"  x           delete offline copy",
		"  /           filter by title",
		"  r           refresh unit metadata",
		"  q           quit",
		"",
		styles.FooterStyle.Render("esc back"),
	}
	return strings.Join(lines, "\n")
}

func statusGlyph(status domain.DownloadStatus) (string, lipgloss.Style) {
	switch status {
	case domain.StatusCompleted:
		return styles.GlyphCompleted, styles.SuccessStyle
	case domain.StatusInProgress:
		return styles.GlyphInProgress, styles.AccentStyle
	case domain.StatusPending:
		return styles.GlyphPending, styles.AccentStyle
	case domain.StatusFailed:
		return styles.GlyphFailed, styles.ErrorStyle
	default:
		return styles.GlyphIdle, styles.DimStyle
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 1 {
		return s[:max]
	}
	return s[:max-1] + "…"
}
