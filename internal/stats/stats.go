// Package stats contains statistics calculations and reporting.
package stats

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/verte-zerg/writestat/internal/model"
	"github.com/verte-zerg/writestat/internal/textstats"
)

const (
	sparkChars    = " .:-=+*#%@"
	documentWidth = 40
)

// SessionMetrics computes WPM over writing time and the idle share for a session.
func SessionMetrics(wordsWritten int, writingMs, idleMs int64) (wpm, idlePct float64) {
	if writingMs > 0 {
		wpm = float64(wordsWritten) / (float64(writingMs) / 60000.0)
	}
	total := writingMs + idleMs
	if total > 0 {
		idlePct = float64(idleMs) / float64(total) * 100
	}
	return wpm, idlePct
}

// MovingAverage computes a rolling mean over the provided window size.
func MovingAverage(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	if window <= 1 || len(values) == 0 {
		copy(out, values)
		return out
	}
	var sum float64
	for i := 0; i < len(values); i++ {
		sum += values[i]
		den := float64(i + 1)
		if i >= window {
			sum -= values[i-window]
			den = float64(window)
		}
		out[i] = sum / den
	}
	return out
}

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal, maxVal := values[0], values[0]
	for _, v := range values[1:] {
		minVal = math.Min(minVal, v)
		maxVal = math.Max(maxVal, v)
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		idx = max(0, min(idx, len(sparkChars)-1))
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderSummary prints totals across sessions.
func RenderSummary(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, "No sessions found.")
		return err
	}
	var totalWords int
	var totalWriting, totalIdle int64
	bestWPM := 0.0
	for _, s := range sessions {
		totalWords += s.WordsWritten
		totalWriting += s.WritingMs
		totalIdle += s.IdleMs
		wpm, _ := SessionMetrics(s.WordsWritten, s.WritingMs, s.IdleMs)
		bestWPM = math.Max(bestWPM, wpm)
	}
	avgWPM, idlePct := SessionMetrics(totalWords, totalWriting, totalIdle)
	lines := []string{
		"Summary",
		fmt.Sprintf("Sessions: %d", len(sessions)),
		fmt.Sprintf("Words written: %d", totalWords),
		fmt.Sprintf("Writing time: %s", FormatDuration(totalWriting)),
		fmt.Sprintf("Avg WPM: %.1f", avgWPM),
		fmt.Sprintf("Best WPM: %.1f", bestWPM),
		fmt.Sprintf("Idle: %.0f%%", idlePct),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// RenderSessionTable prints one row per session, oldest first.
func RenderSessionTable(w io.Writer, sessions []model.SessionAggregate) error {
	if len(sessions) == 0 {
		return nil
	}
	tbl := newTable(
		column{title: "Ended"},
		column{title: "Document", maxWidth: documentWidth},
		column{title: "Words", right: true},
		column{title: "Total", right: true},
		column{title: "Writing", right: true},
		column{title: "WPM", right: true},
		column{title: "Idle", right: true},
	)
	for _, s := range sessions {
		wpm, idlePct := SessionMetrics(s.WordsWritten, s.WritingMs, s.IdleMs)
		tbl.addRow(
			s.EndedAt.Local().Format("2006-01-02 15:04"),
			s.Document,
			fmt.Sprintf("%d", s.WordsWritten),
			fmt.Sprintf("%d", s.FinalWords),
			FormatDuration(s.WritingMs),
			fmt.Sprintf("%.1f", wpm),
			fmt.Sprintf("%.0f%%", idlePct),
		)
	}
	if err := tbl.write(w); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// RenderTrend prints a sparkline of the moving-average WPM.
func RenderTrend(w io.Writer, sessions []model.SessionAggregate, window int) error {
	if len(sessions) < 2 {
		return nil
	}
	wpms := make([]float64, len(sessions))
	for i, s := range sessions {
		wpms[i], _ = SessionMetrics(s.WordsWritten, s.WritingMs, s.IdleMs)
	}
	smoothed := MovingAverage(wpms, window)
	_, err := fmt.Fprintf(w, "WPM trend (window %d): [%s] %.1f -> %.1f\n",
		window, Sparkline(smoothed), smoothed[0], smoothed[len(smoothed)-1])
	return err
}

// RenderMetrics prints a metric table for a single analysis.
func RenderMetrics(w io.Writer, m textstats.Metrics) error {
	unavailable := func(v string) string {
		if m.Approximate {
			return "n/a"
		}
		return v
	}
	tbl := newTable(column{title: "Metric"}, column{title: "Value", right: true})
	tbl.showHeader = false
	tbl.addRow("Words", fmt.Sprintf("%d", m.Words))
	tbl.addRow("Characters", fmt.Sprintf("%d", m.Characters))
	tbl.addRow("Sentences", unavailable(fmt.Sprintf("%d", m.Sentences)))
	tbl.addRow("Paragraphs", unavailable(fmt.Sprintf("%d", m.Paragraphs)))
	tbl.addRow("Pages", fmt.Sprintf("%d", m.Pages))
	tbl.addRow("Complex words", unavailable(fmt.Sprintf("%d", m.ComplexWords)))
	tbl.addRow("Reading time", fmt.Sprintf("%d min", m.ReadingTimeMinutes))
	tbl.addRow("LIX", unavailable(fmt.Sprintf("%.0f (%s)", m.LIX, m.Band)))
	tbl.addRow("Readability index", unavailable(fmt.Sprintf("%.0f", m.ReadabilityIndex)))
	return tbl.write(w)
}

// FormatDuration renders milliseconds as h:mm or m:ss.
func FormatDuration(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	if d >= time.Hour {
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
	return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
}
