// Package model defines shared data structures.
package model

import "time"

// Config defines the constants of the statistics engine.
type Config struct {
	AverageReadingWPM int
	WordsPerPage      int
	DebounceInterval  time.Duration
	WPMWindow         time.Duration
	TickInterval      time.Duration
	IdleTimeout       time.Duration
	MaxAnalyzeRunes   int
}

// DefaultConfig returns the engine defaults.
func DefaultConfig() Config {
	return Config{
		AverageReadingWPM: 200,
		WordsPerPage:      450,
		DebounceInterval:  300 * time.Millisecond,
		WPMWindow:         5 * time.Minute,
		TickInterval:      time.Second,
		IdleTimeout:       5 * time.Second,
		MaxAnalyzeRunes:   1 << 20,
	}
}

// HistoryConfig defines filters for the history report.
type HistoryConfig struct {
	Document string
	Since    *time.Time
	Last     int
	Window   int
}

// SessionRecord captures a finished writing session.
type SessionRecord struct {
	StartedAt      time.Time
	EndedAt        time.Time
	Document       string
	BaselineWords  int
	FinalWords     int
	WordsWritten   int
	WritingMs      int64
	IdleMs         int64
	LastWPM        int
	ReadingMinutes int
}

// SessionAggregate summarizes a stored session for reporting.
type SessionAggregate struct {
	SessionID    int64
	EndedAt      time.Time
	Document     string
	WordsWritten int
	FinalWords   int
	WritingMs    int64
	IdleMs       int64
}
