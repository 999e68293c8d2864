package stats

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/verte-zerg/writestat/internal/model"
	"github.com/verte-zerg/writestat/internal/store"
)

func TestBuildReport(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "writestat.db")
	st, err := store.Open(dbPath)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	ctx := context.Background()
	var ids []int64
	for i := 0; i < 3; i++ {
		start := time.Unix(0, 0).Add(time.Duration(i) * time.Hour)
		end := start.Add(30 * time.Minute)
		rec := model.SessionRecord{
			StartedAt:     start,
			EndedAt:       end,
			Document:      "/tmp/draft.md",
			BaselineWords: 100 * i,
			FinalWords:    100 * (i + 1),
			WordsWritten:  100,
			WritingMs:     (20 * time.Minute).Milliseconds(),
			IdleMs:        (10 * time.Minute).Milliseconds(),
			LastWPM:       5,
		}
		id, err := st.InsertSession(ctx, rec)
		if err != nil {
			t.Fatalf("insert session: %v", err)
		}
		ids = append(ids, id)
	}

	report, err := BuildReport(ctx, st, model.HistoryConfig{Last: 2, Window: 3})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if len(report.Sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(report.Sessions))
	}
	if report.Sessions[0].SessionID != ids[1] || report.Sessions[1].SessionID != ids[2] {
		t.Fatalf("unexpected session ids: %+v", report.Sessions)
	}
	if report.Window != 3 {
		t.Fatalf("expected window 3, got %d", report.Window)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"Sessions: 2", "Words written: 200", "Avg WPM: 5.0", "Idle: 33%", "/tmp/draft.md"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestBuildReportDefaultsWindow(t *testing.T) {
	st, err := store.Open(filepath.Join(t.TempDir(), "writestat.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	report, err := BuildReport(context.Background(), st, model.HistoryConfig{})
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Window != 1 || len(report.Sessions) != 0 {
		t.Fatalf("unexpected report: %+v", report)
	}
	var buf bytes.Buffer
	if err := report.Render(&buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	if buf.String() != "No sessions found.\n" {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}
