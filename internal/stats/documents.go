package stats

import (
	"fmt"
	"io"
	"sort"

	"github.com/verte-zerg/writestat/internal/model"
)

// DocumentTotal aggregates every session of one document.
type DocumentTotal struct {
	Document     string
	Sessions     int
	WordsWritten int
	FinalWords   int
	WritingMs    int64
	IdleMs       int64
}

// DocumentTotals groups sessions by document, most words written first.
// FinalWords comes from the latest session of each document.
func DocumentTotals(sessions []model.SessionAggregate) []DocumentTotal {
	byDoc := map[string]*DocumentTotal{}
	order := []string{}
	for _, s := range sessions {
		total, ok := byDoc[s.Document]
		if !ok {
			total = &DocumentTotal{Document: s.Document}
			byDoc[s.Document] = total
			order = append(order, s.Document)
		}
		total.Sessions++
		total.WordsWritten += s.WordsWritten
		total.WritingMs += s.WritingMs
		total.IdleMs += s.IdleMs
		total.FinalWords = s.FinalWords
	}
	out := make([]DocumentTotal, 0, len(order))
	for _, doc := range order {
		out = append(out, *byDoc[doc])
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].WordsWritten > out[j].WordsWritten
	})
	return out
}

// RenderDocumentTable prints per-document totals.
func RenderDocumentTable(w io.Writer, totals []DocumentTotal) error {
	if len(totals) == 0 {
		return nil
	}
	tbl := newTable(
		column{title: "Document", maxWidth: documentWidth},
		column{title: "Sessions", right: true},
		column{title: "Words", right: true},
		column{title: "Total", right: true},
		column{title: "Writing", right: true},
		column{title: "WPM", right: true},
	)
	for _, t := range totals {
		wpm, _ := SessionMetrics(t.WordsWritten, t.WritingMs, t.IdleMs)
		tbl.addRow(
			t.Document,
			fmt.Sprintf("%d", t.Sessions),
			fmt.Sprintf("%d", t.WordsWritten),
			fmt.Sprintf("%d", t.FinalWords),
			FormatDuration(t.WritingMs),
			fmt.Sprintf("%.1f", wpm),
		)
	}
	if err := tbl.write(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}
