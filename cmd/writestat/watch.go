package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/verte-zerg/writestat/internal/config"
	"github.com/verte-zerg/writestat/internal/coordinator"
	"github.com/verte-zerg/writestat/internal/model"
	"github.com/verte-zerg/writestat/internal/session"
	"github.com/verte-zerg/writestat/internal/store"
	"github.com/verte-zerg/writestat/internal/textstats"
	"github.com/verte-zerg/writestat/internal/tui"
	"github.com/verte-zerg/writestat/internal/watch"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <file>",
		Short: "Track a writing session on a file with a live dashboard",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatchCmd,
	}
	addEngineFlags(cmd)
	addSessionFlags(cmd)
	cmd.Flags().StringVar(&watchLogLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	return cmd
}

func runWatchCmd(cmd *cobra.Command, args []string) error {
	cfg, abbrevs, err := loadEngineConfig(cmd)
	if err != nil {
		return err
	}
	path, err := filepath.Abs(expandHome(args[0]))
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	if info, err := os.Stat(path); err != nil {
		return fmt.Errorf("failed to open document: %w", err)
	} else if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}

	logger, err := newFileLogger(config.DefaultLogPath(), watchLogLevel)
	if err != nil {
		return err
	}
	defer func() {
		// Best-effort flush.
		_ = logger.Sync()
	}()

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()

	coord := coordinator.New(cfg,
		coordinator.WithLogger(logger.Named("coordinator")),
		coordinator.WithAbbreviations(abbrevs))
	dashboard := tui.NewModel(coord, path)
	program := tea.NewProgram(dashboard, tea.WithAltScreen())
	coord.Subscribe(tui.Observer(program))

	watcher := watch.New(path, coord.Config().IdleTimeout,
		watch.Tee(coord, tui.ProgramSink{P: program}), logger.Named("watch"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	coordDone := make(chan struct{})
	go func() {
		defer close(coordDone)
		if err := coord.Run(ctx); err != nil {
			logger.Error("coordinator stopped", zap.Error(err))
		}
	}()
	watchErr := make(chan error, 1)
	go func() {
		err := watcher.Run(ctx)
		if err != nil {
			program.Quit()
		}
		watchErr <- err
	}()

	_, runErr := program.Run()
	cancel()
	<-coordDone
	werr := <-watchErr

	if rec, ok := sessionRecord(path, coord.Session(), coord.Metrics(), time.Now()); ok {
		if _, err := st.InsertSession(context.Background(), rec); err != nil {
			logErrf("failed to save session: %v\n", err)
		} else {
			logger.Info("session saved",
				zap.String("document", path),
				zap.Int("words_written", rec.WordsWritten),
				zap.Int64("writing_ms", rec.WritingMs))
			msg := fmt.Sprintf("Session saved: %d words in %s.", rec.WordsWritten, formatElapsed(rec.WritingMs))
			if total, err := st.TotalWordsWritten(context.Background(), path); err == nil {
				msg += fmt.Sprintf(" %d words written on this document so far.", total)
			}
			logErrln(msg)
		}
	}

	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run TUI: %w", runErr)
	}
	if werr != nil {
		return fmt.Errorf("failed to watch document: %w", werr)
	}
	return nil
}

// sessionRecord converts the final tracker state into a history row. Sessions
// with no writing activity are not recorded.
func sessionRecord(path string, snap session.Snapshot, metrics textstats.Metrics, now time.Time) (model.SessionRecord, bool) {
	if snap.WordsWritten == 0 && snap.Writing == 0 {
		return model.SessionRecord{}, false
	}
	return model.SessionRecord{
		StartedAt:      snap.StartedAt,
		EndedAt:        now,
		Document:       path,
		BaselineWords:  snap.Baseline,
		FinalWords:     snap.WordCount,
		WordsWritten:   snap.WordsWritten,
		WritingMs:      snap.Writing.Milliseconds(),
		IdleMs:         snap.Idle.Milliseconds(),
		LastWPM:        snap.WPM,
		ReadingMinutes: metrics.ReadingTimeMinutes,
	}, true
}

func formatElapsed(ms int64) string {
	d := time.Duration(ms) * time.Millisecond
	return d.Round(time.Second).String()
}

// newFileLogger writes JSON logs to path; the terminal belongs to the dashboard.
func newFileLogger(path, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(lvl)
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	logger, err := zcfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return logger, nil
}
