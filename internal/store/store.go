// Package store handles SQLite persistence.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/verte-zerg/writestat/internal/model"

	_ "modernc.org/sqlite" // SQLite driver.
)

// Store wraps SQLite access for writing sessions.
type Store struct {
	db *sql.DB
}

// Open opens or creates the SQLite database and applies migrations.
func Open(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		if cerr := db.Close(); cerr != nil {
			// Best-effort close on migration failure.
			_ = cerr
		}
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS writing_sessions (
			id INTEGER PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT NOT NULL,
			document TEXT NOT NULL,
			baseline_words INTEGER NOT NULL,
			final_words INTEGER NOT NULL,
			words_written INTEGER NOT NULL,
			writing_ms INTEGER NOT NULL,
			idle_ms INTEGER NOT NULL,
			last_wpm INTEGER NOT NULL,
			reading_minutes INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_writing_sessions_ended_at ON writing_sessions(ended_at);`,
		`CREATE INDEX IF NOT EXISTS idx_writing_sessions_document ON writing_sessions(document);`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// InsertSession stores a finished writing session.
func (s *Store) InsertSession(ctx context.Context, rec model.SessionRecord) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO writing_sessions (started_at, ended_at, document, baseline_words, final_words, words_written, writing_ms, idle_ms, last_wpm, reading_minutes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.StartedAt.UTC().Format(time.RFC3339Nano),
		rec.EndedAt.UTC().Format(time.RFC3339Nano),
		rec.Document,
		rec.BaselineWords,
		rec.FinalWords,
		rec.WordsWritten,
		rec.WritingMs,
		rec.IdleMs,
		rec.LastWPM,
		rec.ReadingMinutes,
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListSessions returns session aggregates filtered by history config, oldest first.
func (s *Store) ListSessions(ctx context.Context, cfg model.HistoryConfig) ([]model.SessionAggregate, error) {
	clauses := []string{"1=1"}
	args := []any{}
	if cfg.Document != "" {
		clauses = append(clauses, "document = ?")
		args = append(args, cfg.Document)
	}
	if cfg.Since != nil {
		clauses = append(clauses, "ended_at >= ?")
		args = append(args, cfg.Since.UTC().Format(time.RFC3339Nano))
	}
	query := fmt.Sprintf(`SELECT id, ended_at, document, words_written, final_words, writing_ms, idle_ms
		FROM writing_sessions
		WHERE %s
		ORDER BY ended_at ASC, id ASC`, strings.Join(clauses, " AND "))
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			// Best-effort rows close.
			_ = cerr
		}
	}()

	var sessions []model.SessionAggregate
	for rows.Next() {
		var agg model.SessionAggregate
		var endedAt string
		if err := rows.Scan(&agg.SessionID, &endedAt, &agg.Document, &agg.WordsWritten, &agg.FinalWords, &agg.WritingMs, &agg.IdleMs); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(time.RFC3339Nano, endedAt)
		if err != nil {
			return nil, err
		}
		agg.EndedAt = parsed
		sessions = append(sessions, agg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// TotalWordsWritten sums words written across every stored session of a document.
func (s *Store) TotalWordsWritten(ctx context.Context, document string) (int, error) {
	var total sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT SUM(words_written) FROM writing_sessions WHERE document = ?`, document).Scan(&total)
	if err != nil {
		return 0, err
	}
	return int(total.Int64), nil
}
