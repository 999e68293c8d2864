package stats

import (
	"context"
	"io"

	"github.com/verte-zerg/writestat/internal/model"
	"github.com/verte-zerg/writestat/internal/store"
)

// Report contains precomputed data for history rendering.
type Report struct {
	Sessions []model.SessionAggregate
	Window   int
}

// BuildReport loads and prepares data for history rendering.
func BuildReport(ctx context.Context, st *store.Store, cfg model.HistoryConfig) (Report, error) {
	sessions, err := st.ListSessions(ctx, cfg)
	if err != nil {
		return Report{}, err
	}
	if cfg.Last > 0 && len(sessions) > cfg.Last {
		sessions = sessions[len(sessions)-cfg.Last:]
	}
	window := cfg.Window
	if window <= 0 {
		window = 1
	}
	return Report{Sessions: sessions, Window: window}, nil
}

// Render writes the summary, the trend line and the session table. Documents
// get their own table once more than one appears.
func (r Report) Render(w io.Writer) error {
	if err := RenderSummary(w, r.Sessions); err != nil {
		return err
	}
	if err := RenderTrend(w, r.Sessions, r.Window); err != nil {
		return err
	}
	if err := RenderSessionTable(w, r.Sessions); err != nil {
		return err
	}
	if totals := DocumentTotals(r.Sessions); len(totals) > 1 {
		return RenderDocumentTable(w, totals)
	}
	return nil
}
