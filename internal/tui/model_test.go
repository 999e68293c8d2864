package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/verte-zerg/writestat/internal/coordinator"
	"github.com/verte-zerg/writestat/internal/textstats"
)

type selection struct {
	text       string
	start, end int
}

type fakeController struct {
	selections []selection
	deselects  int
	documents  []string
}

func (f *fakeController) SelectionChanged(text string, start, end int) {
	f.selections = append(f.selections, selection{text: text, start: start, end: end})
}

func (f *fakeController) TextDeselected() { f.deselects++ }

func (f *fakeController) DocumentChanged(text string) { f.documents = append(f.documents, text) }

func key(s string) tea.KeyMsg {
	switch s {
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func TestParagraphNavigation(t *testing.T) {
	ctl := &fakeController{}
	m := NewModel(ctl, "draft.md")
	m.Update(documentMsg{text: "First para.\n\nSecond para here.", reset: true})

	m.Update(key("n"))
	m.Update(key("n"))
	if len(ctl.selections) != 2 {
		t.Fatalf("expected 2 selections, got %d", len(ctl.selections))
	}
	if got := ctl.selections[1]; got.text != "Second para here." || got.start != 13 || got.end != 30 {
		t.Fatalf("unexpected selection: %+v", got)
	}

	m.Update(key("n"))
	if m.selected != -1 || ctl.deselects != 1 {
		t.Fatalf("expected moving past the last paragraph to deselect")
	}

	m.Update(key("p"))
	if m.selected != 1 {
		t.Fatalf("expected p to wrap to the last paragraph, got %d", m.selected)
	}
	m.Update(key("esc"))
	m.Update(key("esc"))
	if ctl.deselects != 2 {
		t.Fatalf("expected a single deselect for repeated esc, got %d", ctl.deselects)
	}
}

func TestResetKeySendsDocument(t *testing.T) {
	ctl := &fakeController{}
	m := NewModel(ctl, "draft.md")
	m.Update(documentMsg{text: "hello world"})
	m.Update(key("r"))
	if len(ctl.documents) != 1 || ctl.documents[0] != "hello world" {
		t.Fatalf("unexpected documents: %v", ctl.documents)
	}
}

func TestQuitKeys(t *testing.T) {
	m := NewModel(&fakeController{}, "draft.md")
	for _, k := range []string{"q", "ctrl+c"} {
		_, cmd := m.Update(key(k))
		if cmd == nil {
			t.Fatalf("expected quit command for %q", k)
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Fatalf("expected QuitMsg for %q", k)
		}
	}
}

func TestNotificationsFillTables(t *testing.T) {
	m := NewModel(&fakeController{}, "draft.md")
	m.Update(notificationMsg(coordinator.Notification{Field: coordinator.WordCount, Value: 42}))
	m.Update(notificationMsg(coordinator.Notification{Field: coordinator.LixReadingEase, Value: 31, Band: textstats.LixEasy}))
	m.Update(notificationMsg(coordinator.Notification{Field: coordinator.IdleTimePercentage, Value: 25}))
	m.Update(typingMsg(true))

	out := m.View()
	for _, want := range []string{"42", "31 (Easy)", "25%", "typing", "draft.md"} {
		if !strings.Contains(out, want) {
			t.Fatalf("view missing %q:\n%s", want, out)
		}
	}
}

func TestFormatValue(t *testing.T) {
	cases := []struct {
		n    coordinator.Notification
		want string
	}{
		{coordinator.Notification{Field: coordinator.ReadingTime, Value: 3}, "3 min"},
		{coordinator.Notification{Field: coordinator.WordCount, Value: 9, Approximate: true}, "~9"},
		{coordinator.Notification{Field: coordinator.SentenceCount, Approximate: true}, "n/a"},
		{coordinator.Notification{Field: coordinator.SessionWordCount, Value: 7}, "7"},
	}
	for _, tc := range cases {
		if got := formatValue(tc.n); got != tc.want {
			t.Fatalf("formatValue(%v) = %q, want %q", tc.n.Field, got, tc.want)
		}
	}
}

func TestSelectionScopeLabel(t *testing.T) {
	m := NewModel(&fakeController{}, "draft.md")
	m.Update(documentMsg{text: "a\n\nb"})
	m.Update(key("n"))
	m.Update(notificationMsg(coordinator.Notification{Field: coordinator.WordCount, Scope: coordinator.ScopeSelection, Value: 1}))
	if out := m.View(); !strings.Contains(out, "Paragraph 1 of 2") {
		t.Fatalf("expected selection label:\n%s", out)
	}
}
