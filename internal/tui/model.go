// Package tui provides the Bubble Tea live statistics dashboard.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/verte-zerg/writestat/internal/coordinator"
	"github.com/verte-zerg/writestat/internal/textstats"
)

const (
	previewLines = 8
	labelWidth   = 18
	valueWidth   = 14
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0")).Bold(true)
	scopeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	typingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#52C41A"))
	cardStyle     = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder(), true).
			BorderForeground(lipgloss.Color("#4A4A4A"))
)

var documentFields = []coordinator.Field{
	coordinator.WordCount,
	coordinator.CharacterCount,
	coordinator.SentenceCount,
	coordinator.ParagraphCount,
	coordinator.PageCount,
	coordinator.ComplexWords,
	coordinator.ReadingTime,
	coordinator.LixReadingEase,
	coordinator.ReadabilityIndex,
}

var sessionFields = []coordinator.Field{
	coordinator.TotalWordCount,
	coordinator.SessionWordCount,
	coordinator.SessionPageCount,
	coordinator.WordsPerMinute,
	coordinator.WritingTime,
	coordinator.IdleTimePercentage,
}

var fieldLabels = map[coordinator.Field]string{
	coordinator.WordCount:          "Words",
	coordinator.CharacterCount:     "Characters",
	coordinator.SentenceCount:      "Sentences",
	coordinator.ParagraphCount:     "Paragraphs",
	coordinator.PageCount:          "Pages",
	coordinator.ComplexWords:       "Complex words",
	coordinator.ReadingTime:        "Reading time",
	coordinator.LixReadingEase:     "LIX",
	coordinator.ReadabilityIndex:   "Readability",
	coordinator.TotalWordCount:     "Net words",
	coordinator.SessionWordCount:   "Words written",
	coordinator.SessionPageCount:   "Pages written",
	coordinator.WordsPerMinute:     "WPM",
	coordinator.WritingTime:        "Writing time",
	coordinator.IdleTimePercentage: "Idle",
}

// Controller receives selection and reset requests from the dashboard.
type Controller interface {
	SelectionChanged(text string, start, end int)
	TextDeselected()
	DocumentChanged(text string)
}

type notificationMsg coordinator.Notification

type documentMsg struct {
	text  string
	reset bool
}

type typingMsg bool

// Model implements the Bubble Tea dashboard.
type Model struct {
	ctl  Controller
	path string

	text       string
	paragraphs []textstats.Range
	selected   int
	typing     bool

	values map[coordinator.Field]coordinator.Notification
	scope  coordinator.Scope

	docTable     table.Model
	sessionTable table.Model

	width  int
	height int
}

// NewModel constructs a dashboard for the document at path.
func NewModel(ctl Controller, path string) *Model {
	m := &Model{
		ctl:      ctl,
		path:     path,
		selected: -1,
		values:   map[coordinator.Field]coordinator.Notification{},
	}
	m.docTable = newMetricTable(len(documentFields))
	m.sessionTable = newMetricTable(len(sessionFields))
	m.refreshTables()
	return m
}

func newMetricTable(rows int) table.Model {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		BorderBottom(true).
		Bold(false)
	styles.Selected = lipgloss.NewStyle()
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Metric", Width: labelWidth},
			{Title: "Value", Width: valueWidth},
		}),
		table.WithFocused(false),
	)
	t.SetStyles(styles)
	t.SetHeight(rows + 2)
	return t
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
		return m, nil
	case notificationMsg:
		m.applyNotification(coordinator.Notification(msg))
		return m, nil
	case documentMsg:
		m.setText(msg.text, msg.reset)
		return m, nil
	case typingMsg:
		m.typing = bool(msg)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	default:
		return m, nil
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "n", "j", "down":
		m.selectParagraph(m.selected + 1)
	case "p", "k", "up":
		if m.selected < 0 {
			m.selectParagraph(len(m.paragraphs) - 1)
		} else {
			m.selectParagraph(m.selected - 1)
		}
	case "esc":
		m.deselect()
	case "r":
		m.selected = -1
		m.ctl.DocumentChanged(m.text)
	}
	return m, nil
}

func (m *Model) applyNotification(n coordinator.Notification) {
	m.values[n.Field] = n
	if isDocumentField(n.Field) {
		m.scope = n.Scope
	}
	m.refreshTables()
}

func (m *Model) setText(text string, reset bool) {
	m.text = text
	m.paragraphs = textstats.ParagraphRanges(text)
	if reset || m.selected >= len(m.paragraphs) {
		m.selected = -1
	}
}

func (m *Model) selectParagraph(i int) {
	if len(m.paragraphs) == 0 {
		return
	}
	if i < 0 || i >= len(m.paragraphs) {
		m.deselect()
		return
	}
	m.selected = i
	r := m.paragraphs[i]
	runes := []rune(m.text)
	m.ctl.SelectionChanged(string(runes[r.Start:r.End]), r.Start, r.End)
}

func (m *Model) deselect() {
	if m.selected < 0 {
		return
	}
	m.selected = -1
	m.ctl.TextDeselected()
}

func (m *Model) refreshTables() {
	m.docTable.SetRows(m.rowsFor(documentFields))
	m.sessionTable.SetRows(m.rowsFor(sessionFields))
}

func (m *Model) rowsFor(fields []coordinator.Field) []table.Row {
	rows := make([]table.Row, 0, len(fields))
	for _, f := range fields {
		value := "-"
		if n, ok := m.values[f]; ok {
			value = formatValue(n)
		}
		rows = append(rows, table.Row{fieldLabels[f], value})
	}
	return rows
}

func isDocumentField(f coordinator.Field) bool {
	for _, d := range documentFields {
		if d == f {
			return true
		}
	}
	return false
}

// formatValue renders a notification value with its unit.
func formatValue(n coordinator.Notification) string {
	if n.Approximate {
		switch n.Field {
		case coordinator.SentenceCount, coordinator.ParagraphCount, coordinator.ComplexWords,
			coordinator.LixReadingEase, coordinator.ReadabilityIndex:
			return "n/a"
		}
	}
	switch n.Field {
	case coordinator.LixReadingEase:
		return fmt.Sprintf("%d (%s)", n.Value, n.Band)
	case coordinator.ReadingTime, coordinator.WritingTime:
		return fmt.Sprintf("%d min", n.Value)
	case coordinator.IdleTimePercentage:
		return fmt.Sprintf("%d%%", n.Value)
	default:
		if n.Approximate {
			return fmt.Sprintf("~%d", n.Value)
		}
		return fmt.Sprintf("%d", n.Value)
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	header := titleStyle.Render("writestat") + "  " + mutedStyle.Render(m.path)
	scope := scopeStyle.Render("Document")
	if m.scope == coordinator.ScopeSelection && m.selected >= 0 {
		scope = scopeStyle.Render(fmt.Sprintf("Paragraph %d of %d", m.selected+1, len(m.paragraphs)))
	}
	docCard := cardStyle.Render(scope + "\n" + m.docTable.View())
	sessionCard := cardStyle.Render(scopeStyle.Render("Session") + "\n" + m.sessionTable.View())
	cards := lipgloss.JoinHorizontal(lipgloss.Top, docCard, " ", sessionCard)

	parts := []string{header, cards}
	if preview := m.renderPreview(); preview != "" {
		parts = append(parts, preview)
	}
	parts = append(parts, m.renderFooter())
	content := lipgloss.JoinVertical(lipgloss.Left, parts...)
	if m.width == 0 || m.height == 0 {
		return content
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
}

func (m *Model) renderPreview() string {
	if m.selected < 0 || m.selected >= len(m.paragraphs) {
		return ""
	}
	sel := m.paragraphs[m.selected]
	width := lipgloss.Width(m.docTable.View())*2 + 4
	if m.width > 0 {
		width = min(width, m.width-4)
	}
	start, end := sel.Start, sel.End
	if m.selected > 0 {
		start = m.paragraphs[m.selected-1].Start
	}
	if m.selected+1 < len(m.paragraphs) {
		end = m.paragraphs[m.selected+1].End
	}
	runes := []rune(m.text)
	styled := buildStyledRunes(runes[start:end], textstats.Range{Start: sel.Start - start, End: sel.End - start})
	return cardStyle.Render(clampLines(wrapStyledRunes(styled, max(width, 10)), previewLines))
}

func (m *Model) renderFooter() string {
	state := mutedStyle.Render("idle")
	if m.typing {
		state = typingStyle.Render("typing")
	}
	segments := []string{
		state,
		"n/p paragraph",
		"esc document",
		"r reset session",
		"q quit",
	}
	return footerStyle.Render(strings.Join(segments, "  ·  "))
}

// Observer returns a coordinator subscriber that forwards notifications to p.
func Observer(p *tea.Program) func(coordinator.Notification) {
	return func(n coordinator.Notification) {
		p.Send(notificationMsg(n))
	}
}

// ProgramSink forwards editor activity to the dashboard running in P.
type ProgramSink struct {
	P *tea.Program
}

// DocumentChanged replaces the dashboard text and clears the selection.
func (s ProgramSink) DocumentChanged(text string) {
	s.P.Send(documentMsg{text: text, reset: true})
}

// TextChanged replaces the dashboard text.
func (s ProgramSink) TextChanged(text string) {
	s.P.Send(documentMsg{text: text})
}

// TypingResumed marks the footer as typing.
func (s ProgramSink) TypingResumed() {
	s.P.Send(typingMsg(true))
}

// TypingPaused marks the footer as idle.
func (s ProgramSink) TypingPaused() {
	s.P.Send(typingMsg(false))
}
