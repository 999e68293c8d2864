// Package session tracks writing activity and derives writing speed.
package session

import (
	"math"
	"time"
)

const defaultWindow = 5 * time.Minute

// State is the writer's activity state.
type State int

const (
	Idle State = iota
	Typing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Typing:
		return "typing"
	default:
		return "unknown"
	}
}

type sample struct {
	at     time.Time
	words  int
	typing time.Duration
}

// Snapshot is a read-only copy of the tracker state.
type Snapshot struct {
	State        State
	StartedAt    time.Time
	Baseline     int
	WordCount    int
	WordsWritten int
	Writing      time.Duration
	Idle         time.Duration
	WPM          int
	IdlePercent  int
}

// NetWords returns the document growth since the session baseline, never negative.
func (s Snapshot) NetWords() int {
	if s.WordCount < s.Baseline {
		return 0
	}
	return s.WordCount - s.Baseline
}

// WritingMinutes returns whole minutes spent typing.
func (s Snapshot) WritingMinutes() int {
	return int(s.Writing / time.Minute)
}

// Tracker is a two-state activity machine. Transitions happen only through
// Resume and Pause; time is charged on Tick. It is not safe for concurrent use.
type Tracker struct {
	window time.Duration

	state     State
	startedAt time.Time
	lastTick  time.Time

	baseline int
	previous int
	written  int
	pending  int

	writing time.Duration
	idle    time.Duration

	samples []sample
	wpm     int
}

// New returns a tracker whose session starts at now with the given document word count.
func New(window time.Duration, now time.Time, wordCount int) *Tracker {
	if window <= 0 {
		window = defaultWindow
	}
	t := &Tracker{window: window}
	t.Reset(now, wordCount)
	return t
}

// Reset starts a new session rebased on the current document word count.
func (t *Tracker) Reset(now time.Time, wordCount int) {
	if wordCount < 0 {
		wordCount = 0
	}
	t.state = Idle
	t.startedAt = now
	t.lastTick = now
	t.baseline = wordCount
	t.previous = wordCount
	t.written = 0
	t.pending = 0
	t.writing = 0
	t.idle = 0
	t.samples = t.samples[:0]
	t.wpm = 0
}

// Rebase moves the baseline to wordCount without touching time accounting or
// words already written.
func (t *Tracker) Rebase(wordCount int) {
	if wordCount < 0 {
		wordCount = 0
	}
	t.baseline = wordCount
	t.previous = wordCount
}

// Resume moves the tracker to Typing.
func (t *Tracker) Resume() {
	t.state = Typing
}

// Pause moves the tracker to Idle.
func (t *Tracker) Pause() {
	t.state = Idle
}

// State returns the current activity state.
func (t *Tracker) State() State {
	return t.state
}

// UpdateWordCount feeds the latest whole-document word count. Only growth
// counts as written words; shrinkage rebases without a negative contribution.
func (t *Tracker) UpdateWordCount(n int) {
	if n < 0 {
		n = 0
	}
	if delta := n - t.previous; delta > 0 {
		t.written += delta
		t.pending += delta
	}
	t.previous = n
}

// Tick charges the time since the previous tick to the current state and
// refreshes the rolling WPM.
func (t *Tracker) Tick(now time.Time) Snapshot {
	elapsed := now.Sub(t.lastTick)
	if elapsed < 0 {
		elapsed = 0
	} else {
		t.lastTick = now
	}

	var typing time.Duration
	if t.state == Typing {
		t.writing += elapsed
		typing = elapsed
	} else {
		t.idle += elapsed
	}

	if t.pending > 0 || typing > 0 {
		t.samples = append(t.samples, sample{at: t.lastTick, words: t.pending, typing: typing})
	}
	t.pending = 0
	t.pruneWindow()
	t.wpm = t.windowWPM()
	return t.Snapshot()
}

func (t *Tracker) pruneWindow() {
	cutoff := t.lastTick.Add(-t.window)
	drop := 0
	for drop < len(t.samples) && !t.samples[drop].at.After(cutoff) {
		drop++
	}
	if drop > 0 {
		t.samples = append(t.samples[:0], t.samples[drop:]...)
	}
}

// windowWPM divides the words in the window by the wall-clock span it covers.
func (t *Tracker) windowWPM() int {
	words := 0
	var typing time.Duration
	for _, s := range t.samples {
		words += s.words
		typing += s.typing
	}
	if typing <= 0 {
		return 0
	}
	span := min(t.lastTick.Sub(t.startedAt), t.window)
	if span <= 0 {
		return 0
	}
	return int(math.Round(float64(words) / span.Minutes()))
}

// Snapshot returns the current state without advancing time.
func (t *Tracker) Snapshot() Snapshot {
	return Snapshot{
		State:        t.state,
		StartedAt:    t.startedAt,
		Baseline:     t.baseline,
		WordCount:    t.previous,
		WordsWritten: t.written,
		Writing:      t.writing,
		Idle:         t.idle,
		WPM:          t.wpm,
		IdlePercent:  idlePercent(t.idle, t.writing),
	}
}

func idlePercent(idle, writing time.Duration) int {
	total := idle + writing
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(idle) / float64(total)))
}
