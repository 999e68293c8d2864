package stats

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-runewidth"
)

const ellipsis = "..."

// column describes one report column. Numeric columns align right; maxWidth
// caps path-like columns, which keep their tail when cut.
type column struct {
	title    string
	right    bool
	maxWidth int
}

type textTable struct {
	columns    []column
	rows       [][]string
	showHeader bool
}

func newTable(columns ...column) *textTable {
	return &textTable{columns: columns, showHeader: true}
}

func (t *textTable) addRow(cells ...string) {
	row := make([]string, len(t.columns))
	for i := range row {
		if i < len(cells) {
			row[i] = clipLeft(cells[i], t.columns[i].maxWidth)
		}
	}
	t.rows = append(t.rows, row)
}

func (t *textTable) widths() []int {
	widths := make([]int, len(t.columns))
	if t.showHeader {
		for i, c := range t.columns {
			widths[i] = runewidth.StringWidth(c.title)
		}
	}
	for _, row := range t.rows {
		for i, cell := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(cell))
		}
	}
	return widths
}

func (t *textTable) lines() []string {
	if len(t.columns) == 0 {
		return nil
	}
	widths := t.widths()
	out := make([]string, 0, len(t.rows)+1)
	if t.showHeader {
		titles := make([]string, len(t.columns))
		for i, c := range t.columns {
			titles[i] = c.title
		}
		out = append(out, t.line(titles, widths))
	}
	for _, row := range t.rows {
		out = append(out, t.line(row, widths))
	}
	return out
}

func (t *textTable) line(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		gap := widths[i] - runewidth.StringWidth(cell)
		switch {
		case gap <= 0:
			parts[i] = cell
		case t.columns[i].right:
			parts[i] = strings.Repeat(" ", gap) + cell
		case i == len(cells)-1:
			parts[i] = cell
		default:
			parts[i] = cell + strings.Repeat(" ", gap)
		}
	}
	return strings.Join(parts, " ")
}

func (t *textTable) write(w io.Writer) error {
	for _, l := range t.lines() {
		if _, err := fmt.Fprintln(w, l); err != nil {
			return err
		}
	}
	return nil
}

// clipLeft keeps the last cells of s that fit in width, marking the cut.
func clipLeft(s string, width int) string {
	if width <= 0 || runewidth.StringWidth(s) <= width {
		return s
	}
	room := width - runewidth.StringWidth(ellipsis)
	runes := []rune(s)
	used := 0
	start := len(runes)
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if used+w > room {
			break
		}
		used += w
		start--
	}
	return ellipsis + string(runes[start:])
}
