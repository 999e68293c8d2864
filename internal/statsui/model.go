// Package statsui provides the Bubble Tea writing history browser.
package statsui

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/writestat/internal/model"
	"github.com/verte-zerg/writestat/internal/stats"
	"github.com/verte-zerg/writestat/internal/store"
)

const (
	tabOverview = iota
	tabSessions
	tabDocuments
)

var (
	activeNavStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F0F0F0")).
			Bold(true).
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#C89A3A"))
	inactiveNavStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#B0B0B0")).
				Padding(0, 1).
				Border(lipgloss.RoundedBorder(), true).
				BorderForeground(lipgloss.Color("#4A4A4A"))
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	cardStyle   = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
	cardTitleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	cardValueStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	tableMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Loader fetches sessions for the browser.
type Loader interface {
	ListSessions(ctx context.Context, cfg model.HistoryConfig) ([]model.SessionAggregate, error)
}

var _ Loader = (*store.Store)(nil)

// Model implements the Bubble Tea history browser.
type Model struct {
	loader Loader
	cfg    model.HistoryConfig

	sessions []model.SessionAggregate
	totals   []stats.DocumentTotal
	errMsg   string

	tabs      []string
	activeTab int
	overview  viewport.Model
	tables    map[int]*table.Model

	width  int
	height int

	filterMode   bool
	filterInputs []textinput.Model
	filterIndex  int
	filterError  string
}

// NewModel constructs a history browser.
func NewModel(loader Loader, cfg model.HistoryConfig) *Model {
	if cfg.Window <= 0 {
		cfg.Window = 1
	}
	sessionsTable := newTable(sessionColumns())
	documentsTable := newTable(documentColumns())
	m := &Model{
		loader:   loader,
		cfg:      cfg,
		tabs:     []string{"Overview", "Sessions", "Documents"},
		overview: viewport.New(0, 0),
		tables: map[int]*table.Model{
			tabSessions:  &sessionsTable,
			tabDocuments: &documentsTable,
		},
	}
	m.initInputs()
	m.refreshReport()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		m.renderOverview()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || (!m.filterMode && msg.String() == "q") {
			return m, tea.Quit
		}
		if m.filterMode {
			return m.updateFilter(msg)
		}
		switch msg.String() {
		case "left", "h":
			m.moveTab(-1)
			return m, tea.ClearScreen
		case "right", "l", "tab":
			m.moveTab(1)
			return m, tea.ClearScreen
		case "=":
			m.cfg.Window = nextWindow(m.cfg.Window)
			m.renderOverview()
			return m, nil
		case "-":
			m.cfg.Window = prevWindow(m.cfg.Window)
			m.renderOverview()
			return m, nil
		case "/":
			return m.startFilter()
		case "g", "home":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoTop()
			} else {
				m.overview.GotoTop()
			}
			return m, nil
		case "G", "end":
			if t, ok := m.tables[m.activeTab]; ok {
				t.GotoBottom()
			} else {
				m.overview.GotoBottom()
			}
			return m, nil
		default:
			var cmd tea.Cmd
			if t, ok := m.tables[m.activeTab]; ok {
				*t, cmd = t.Update(msg)
				return m, cmd
			}
			m.overview, cmd = m.overview.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) initInputs() {
	m.filterInputs = []textinput.Model{
		newFilterInput("Document: "),
		newFilterInput("Since (YYYY-MM-DD): "),
		newFilterInput("Last: "),
		newFilterInput("Trend window: "),
	}
	m.setInputsFromConfig()
}

func newFilterInput(prompt string) textinput.Model {
	input := textinput.New()
	input.Prompt = prompt
	input.CharLimit = 0
	input.Cursor.SetMode(cursor.CursorBlink)
	return input
}

func (m *Model) setInputsFromConfig() {
	m.filterInputs[0].SetValue(m.cfg.Document)
	if m.cfg.Since != nil {
		m.filterInputs[1].SetValue(m.cfg.Since.Format("2006-01-02"))
	} else {
		m.filterInputs[1].SetValue("")
	}
	if m.cfg.Last > 0 {
		m.filterInputs[2].SetValue(strconv.Itoa(m.cfg.Last))
	} else {
		m.filterInputs[2].SetValue("")
	}
	m.filterInputs[3].SetValue(strconv.Itoa(m.cfg.Window))
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	tabsHeight := max(1, lipgloss.Height(activeNavStyle.Render("X")))
	headerHeight = tabsHeight + 1
	footerHeight = 1
	if !m.filterMode && m.errMsg != "" {
		footerHeight++
	}
	bodyHeight = max(1, m.height-headerHeight-footerHeight)
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.overview.Width = m.width
	m.overview.Height = bodyHeight
	for _, t := range m.tables {
		t.SetWidth(m.width)
		t.SetHeight(bodyHeight)
	}
	for i := range m.filterInputs {
		promptWidth := lipgloss.Width(m.filterInputs[i].Prompt)
		m.filterInputs[i].Width = max(10, m.width-promptWidth-2)
	}
}

func (m *Model) moveTab(delta int) {
	count := len(m.tabs)
	next := (m.activeTab + delta + count) % count
	for tab, t := range m.tables {
		if tab == next {
			t.Focus()
		} else {
			t.Blur()
		}
	}
	m.activeTab = next
}

func (m *Model) renderTabs() string {
	parts := make([]string, 0, len(m.tabs))
	for i, tab := range m.tabs {
		if i == m.activeTab {
			parts = append(parts, activeNavStyle.Render(tab))
		} else {
			parts = append(parts, inactiveNavStyle.Render(tab))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m *Model) renderHeader() string {
	return m.renderTabs() + "\n" + m.renderFilterSummary()
}

func (m *Model) renderFilterSummary() string {
	doc := "any"
	if m.cfg.Document != "" {
		doc = filepath.Base(m.cfg.Document)
	}
	since := "any"
	if m.cfg.Since != nil {
		since = m.cfg.Since.Format("2006-01-02")
	}
	last := "all"
	if m.cfg.Last > 0 {
		last = strconv.Itoa(m.cfg.Last)
	}
	summary := fmt.Sprintf("Filters: doc=%s  since=%s  last=%s  window=%d", doc, since, last, m.cfg.Window)
	return headerStyle.Render(truncateLine(summary, m.width))
}

func (m *Model) renderFooter() string {
	if m.filterMode {
		return headerStyle.Render("tab/shift+tab: next field  enter: apply  esc: cancel")
	}
	help := headerStyle.Render("Nav: left/right  Scroll: up/down/pgup/pgdn  Window: -/=  Filters: /  Quit: q")
	if m.errMsg != "" {
		return help + "\n" + errorStyle.Render(m.errMsg)
	}
	return help
}

func (m *Model) renderBody() string {
	if m.filterMode {
		lines := []string{"Filters (enter to apply, esc to cancel)"}
		for _, input := range m.filterInputs {
			lines = append(lines, input.View())
		}
		if m.filterError != "" {
			lines = append(lines, errorStyle.Render(m.filterError))
		}
		return strings.Join(lines, "\n")
	}
	if t, ok := m.tables[m.activeTab]; ok {
		if len(m.sessions) == 0 {
			return "No sessions found."
		}
		return tableMutedStyle.Render(t.View())
	}
	return m.overview.View()
}

func (m *Model) refreshReport() {
	sessions, err := m.loader.ListSessions(context.Background(), m.cfg)
	if err != nil {
		m.errMsg = err.Error()
		m.overview.SetContent("Failed to load sessions.")
		return
	}
	if m.cfg.Last > 0 && len(sessions) > m.cfg.Last {
		sessions = sessions[len(sessions)-m.cfg.Last:]
	}
	m.errMsg = ""
	m.sessions = sessions
	m.totals = stats.DocumentTotals(sessions)
	m.tables[tabSessions].SetRows(sessionRows(sessions))
	m.tables[tabDocuments].SetRows(documentRows(m.totals))
	m.renderOverview()
}

func (m *Model) renderOverview() {
	if m.errMsg != "" {
		return
	}
	if len(m.sessions) == 0 {
		m.overview.SetContent("No sessions found.")
		return
	}
	width := m.width
	if width <= 0 {
		width = 80
	}
	content := renderSummaryCards(m.sessions, width)
	var buf bytes.Buffer
	if err := stats.RenderTrend(&buf, m.sessions, m.cfg.Window); err != nil {
		content += "\n\n" + fmt.Sprintf("Failed to render trend: %v", err)
	} else if trend := strings.TrimRight(buf.String(), "\n"); trend != "" {
		content += "\n\n" + truncateLine(trend, width)
	}
	m.overview.SetContent(content)
}

func renderSummaryCards(sessions []model.SessionAggregate, width int) string {
	var words int
	var writing, idle int64
	bestWPM := 0.0
	for _, s := range sessions {
		words += s.WordsWritten
		writing += s.WritingMs
		idle += s.IdleMs
		wpm, _ := stats.SessionMetrics(s.WordsWritten, s.WritingMs, s.IdleMs)
		bestWPM = max(bestWPM, wpm)
	}
	avgWPM, idlePct := stats.SessionMetrics(words, writing, idle)
	cards := []string{
		metricCard("Sessions", fmt.Sprintf("%d", len(sessions))),
		metricCard("Words", fmt.Sprintf("%d", words)),
		metricCard("Writing", stats.FormatDuration(writing)),
		metricCard("Avg WPM", fmt.Sprintf("%.1f", avgWPM)),
		metricCard("Best WPM", fmt.Sprintf("%.1f", bestWPM)),
		metricCard("Idle", fmt.Sprintf("%.0f%%", idlePct)),
	}
	if width < 80 {
		return strings.Join(cards, "\n")
	}
	row1 := lipgloss.JoinHorizontal(lipgloss.Top, cards[0], cards[1], cards[2])
	row2 := lipgloss.JoinHorizontal(lipgloss.Top, cards[3], cards[4], cards[5])
	return lipgloss.JoinVertical(lipgloss.Left, row1, row2)
}

func metricCard(label, value string) string {
	content := fmt.Sprintf("%s\n%s", cardTitleStyle.Render(label), cardValueStyle.Render(value))
	return cardStyle.Render(content)
}

func newTable(columns []table.Column) table.Model {
	t := table.New(table.WithColumns(columns))
	t.SetStyles(tableStyles())
	return t
}

func sessionColumns() []table.Column {
	return []table.Column{
		{Title: "Ended", Width: 16},
		{Title: "Document", Width: 24},
		{Title: "Words", Width: 7},
		{Title: "Total", Width: 7},
		{Title: "Writing", Width: 8},
		{Title: "WPM", Width: 6},
		{Title: "Idle", Width: 5},
	}
}

func documentColumns() []table.Column {
	return []table.Column{
		{Title: "Document", Width: 32},
		{Title: "Sessions", Width: 8},
		{Title: "Words", Width: 7},
		{Title: "Total", Width: 7},
		{Title: "Writing", Width: 8},
		{Title: "WPM", Width: 6},
	}
}

// sessionRows lists the newest session first.
func sessionRows(sessions []model.SessionAggregate) []table.Row {
	rows := make([]table.Row, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		s := sessions[i]
		wpm, idlePct := stats.SessionMetrics(s.WordsWritten, s.WritingMs, s.IdleMs)
		rows = append(rows, table.Row{
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			filepath.Base(s.Document),
			strconv.Itoa(s.WordsWritten),
			strconv.Itoa(s.FinalWords),
			stats.FormatDuration(s.WritingMs),
			fmt.Sprintf("%.1f", wpm),
			fmt.Sprintf("%.0f%%", idlePct),
		})
	}
	return rows
}

func documentRows(totals []stats.DocumentTotal) []table.Row {
	rows := make([]table.Row, 0, len(totals))
	for _, t := range totals {
		wpm, _ := stats.SessionMetrics(t.WordsWritten, t.WritingMs, t.IdleMs)
		rows = append(rows, table.Row{
			t.Document,
			strconv.Itoa(t.Sessions),
			strconv.Itoa(t.WordsWritten),
			strconv.Itoa(t.FinalWords),
			stats.FormatDuration(t.WritingMs),
			fmt.Sprintf("%.1f", wpm),
		})
	}
	return rows
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) startFilter() (tea.Model, tea.Cmd) {
	m.filterMode = true
	m.filterError = ""
	m.setInputsFromConfig()
	return m, m.setFilterIndex(0)
}

func (m *Model) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.filterMode = false
		m.filterError = ""
		return m, nil
	case tea.KeyEnter:
		cfg, err := m.parseFilter()
		if err != nil {
			m.filterError = err.Error()
			return m, nil
		}
		m.cfg = cfg
		m.filterMode = false
		m.filterError = ""
		m.refreshReport()
		m.updateLayout()
		return m, nil
	case tea.KeyTab:
		return m, m.setFilterIndex(m.filterIndex + 1)
	case tea.KeyShiftTab:
		return m, m.setFilterIndex(m.filterIndex - 1)
	}
	var cmd tea.Cmd
	m.filterInputs[m.filterIndex], cmd = m.filterInputs[m.filterIndex].Update(msg)
	return m, cmd
}

func (m *Model) setFilterIndex(idx int) tea.Cmd {
	count := len(m.filterInputs)
	m.filterIndex = (idx + count) % count
	var cmd tea.Cmd
	for i := range m.filterInputs {
		if i == m.filterIndex {
			cmd = m.filterInputs[i].Focus()
		} else {
			m.filterInputs[i].Blur()
		}
	}
	return cmd
}

func (m *Model) parseFilter() (model.HistoryConfig, error) {
	doc := strings.TrimSpace(m.filterInputs[0].Value())
	if doc != "" {
		abs, err := filepath.Abs(doc)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid document path")
		}
		doc = abs
	}

	var since *time.Time
	if sinceInput := strings.TrimSpace(m.filterInputs[1].Value()); sinceInput != "" {
		parsed, err := time.ParseInLocation("2006-01-02", sinceInput, time.Local)
		if err != nil {
			return model.HistoryConfig{}, fmt.Errorf("invalid since date (expected YYYY-MM-DD)")
		}
		since = &parsed
	}

	last := 0
	if lastInput := strings.TrimSpace(m.filterInputs[2].Value()); lastInput != "" {
		parsed, err := strconv.Atoi(lastInput)
		if err != nil || parsed < 0 {
			return model.HistoryConfig{}, fmt.Errorf("invalid last value (use 0 or positive integer)")
		}
		last = parsed
	}

	window := 1
	if windowInput := strings.TrimSpace(m.filterInputs[3].Value()); windowInput != "" {
		parsed, err := strconv.Atoi(windowInput)
		if err != nil || parsed < 1 {
			return model.HistoryConfig{}, fmt.Errorf("invalid trend window (use integer >= 1)")
		}
		window = parsed
	}

	return model.HistoryConfig{
		Document: doc,
		Since:    since,
		Last:     last,
		Window:   window,
	}, nil
}

func nextWindow(n int) int {
	if n < 5 {
		return 5
	}
	return (n/5 + 1) * 5
}

func prevWindow(n int) int {
	if n <= 5 {
		return 1
	}
	if n%5 == 0 {
		return n - 5
	}
	return (n / 5) * 5
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
