package coordinator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/writestat/internal/model"
	"github.com/verte-zerg/writestat/internal/session"
	"github.com/verte-zerg/writestat/internal/textstats"
)

type recorder struct {
	mu    sync.Mutex
	items []Notification
}

func (r *recorder) observe(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
}

func (r *recorder) last(f Field) (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.items) - 1; i >= 0; i-- {
		if r.items[i].Field == f {
			return r.items[i], true
		}
	}
	return Notification{}, false
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.items)
}

func (r *recorder) clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = nil
}

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func newTestCoordinator(t *testing.T, cfg model.Config) (*Coordinator, *recorder, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	c := New(cfg, WithClock(clock.Now))
	rec := &recorder{}
	c.Subscribe(rec.observe)
	t.Cleanup(c.stopDebounce)
	return c, rec, clock
}

func requireValue(t *testing.T, rec *recorder, f Field, want int) Notification {
	t.Helper()
	n, ok := rec.last(f)
	require.True(t, ok, "no %s notification", f)
	require.Equal(t, want, n.Value, f.String())
	return n
}

func TestTextChangedIsDebounced(t *testing.T) {
	c, rec, _ := newTestCoordinator(t, model.Config{DebounceInterval: time.Hour})

	c.handle(event{kind: evText, text: "one"})
	c.handle(event{kind: evText, text: "one two three."})
	assert.Zero(t, rec.count())
	require.True(t, c.pending)
	require.NotNil(t, c.debounce)

	c.flushPending()
	assert.False(t, c.pending)
	n := requireValue(t, rec, WordCount, 3)
	assert.Equal(t, ScopeDocument, n.Scope)
	requireValue(t, rec, SentenceCount, 1)
	requireValue(t, rec, ParagraphCount, 1)
	requireValue(t, rec, CharacterCount, 14)
	requireValue(t, rec, TotalWordCount, 0)
	requireValue(t, rec, SessionWordCount, 0)
	requireValue(t, rec, SessionPageCount, 0)
	lix := requireValue(t, rec, LixReadingEase, 3)
	assert.Equal(t, textstats.LixVeryEasy, lix.Band)
}

func TestFirstTextWithoutDocumentBecomesBaseline(t *testing.T) {
	c, rec, _ := newTestCoordinator(t, model.Config{})
	c.handle(event{kind: evText, text: "an existing draft of five"})
	c.flushPending()
	assert.Equal(t, 5, c.Session().Baseline)
	requireValue(t, rec, SessionWordCount, 0)

	c.handle(event{kind: evText, text: "an existing draft of five words"})
	c.flushPending()
	requireValue(t, rec, TotalWordCount, 1)
	requireValue(t, rec, SessionWordCount, 1)
}

func TestConfigFallsBackToDefaults(t *testing.T) {
	c := New(model.Config{IdleTimeout: 2 * time.Second})
	cfg := c.Config()
	assert.Equal(t, 2*time.Second, cfg.IdleTimeout)
	assert.Equal(t, model.DefaultConfig().WordsPerPage, cfg.WordsPerPage)
}

func TestEveryMetricFieldIsPublished(t *testing.T) {
	c, rec, _ := newTestCoordinator(t, model.Config{})
	c.handle(event{kind: evText, text: "Some text."})
	c.flushPending()
	for _, f := range []Field{WordCount, CharacterCount, SentenceCount, ParagraphCount, PageCount,
		ComplexWords, ReadingTime, LixReadingEase, ReadabilityIndex, TotalWordCount} {
		_, ok := rec.last(f)
		assert.True(t, ok, f.String())
	}
}

func TestSelectionScopeAndRevert(t *testing.T) {
	c, rec, _ := newTestCoordinator(t, model.Config{DebounceInterval: time.Hour})
	text := "First sentence here. Second one. Third closes it."
	c.handle(event{kind: evText, text: text})

	start := strings.Index(text, "Second")
	c.handle(event{kind: evSelection, start: start, end: start + len("Second one.")})
	assert.False(t, c.pending, "selection must flush the pending recompute")
	assert.Equal(t, ScopeSelection, c.Scope())
	n := requireValue(t, rec, SentenceCount, 1)
	assert.Equal(t, ScopeSelection, n.Scope)
	requireValue(t, rec, WordCount, 2)
	assert.Equal(t, 8, c.Metrics().Words)

	c.handle(event{kind: evDeselect})
	assert.Equal(t, ScopeDocument, c.Scope())
	n = requireValue(t, rec, SentenceCount, 3)
	assert.Equal(t, ScopeDocument, n.Scope)
	requireValue(t, rec, WordCount, 8)
}

func TestSelectionWithExplicitText(t *testing.T) {
	c, rec, _ := newTestCoordinator(t, model.Config{})
	c.handle(event{kind: evSelection, text: "Just these words", start: 10, end: 26})
	requireValue(t, rec, WordCount, 3)
	assert.Equal(t, ScopeSelection, c.Scope())
}

func TestEmptySelectionDeselects(t *testing.T) {
	c, rec, _ := newTestCoordinator(t, model.Config{})
	c.handle(event{kind: evDocument, text: "alpha beta"})
	c.handle(event{kind: evSelection, text: "alpha"})
	requireValue(t, rec, WordCount, 1)

	c.handle(event{kind: evSelection, start: 3, end: 3})
	assert.Equal(t, ScopeDocument, c.Scope())
	requireValue(t, rec, WordCount, 2)
}

func TestDocumentRecomputeDuringSelectionKeepsScope(t *testing.T) {
	c, rec, _ := newTestCoordinator(t, model.Config{})
	c.handle(event{kind: evDocument, text: "one two"})
	c.handle(event{kind: evSelection, text: "one"})
	rec.clear()

	c.handle(event{kind: evText, text: "one two three four"})
	c.flushPending()
	_, ok := rec.last(WordCount)
	assert.False(t, ok, "document fields must not overwrite the selection scope")
	requireValue(t, rec, TotalWordCount, 2)
	assert.Equal(t, 4, c.Metrics().Words)

	c.handle(event{kind: evDeselect})
	requireValue(t, rec, WordCount, 4)
}

func TestDeselectWithoutSelectionIsNoop(t *testing.T) {
	c, rec, _ := newTestCoordinator(t, model.Config{})
	c.handle(event{kind: evDeselect})
	assert.Zero(t, rec.count())
}

func TestDocumentChangedResetsSession(t *testing.T) {
	c, rec, clock := newTestCoordinator(t, model.Config{})
	c.handle(event{kind: evDocument, text: "a b c"})
	c.handle(event{kind: evResume})
	c.handle(event{kind: evText, text: "a b c d e"})
	c.flushPending()
	clock.advance(time.Minute)
	c.tick(clock.Now())
	requireValue(t, rec, WordsPerMinute, 2)
	requireValue(t, rec, WritingTime, 1)

	long := strings.TrimSpace(strings.Repeat("word ", 100))
	c.handle(event{kind: evDocument, text: long})
	snap := c.Session()
	assert.Equal(t, session.Idle, snap.State)
	assert.Zero(t, snap.Writing)
	assert.Zero(t, snap.Idle)
	assert.Equal(t, 100, snap.Baseline)
	requireValue(t, rec, WordCount, 100)
	requireValue(t, rec, TotalWordCount, 0)
	requireValue(t, rec, SessionWordCount, 0)
	requireValue(t, rec, WordsPerMinute, 0)
	requireValue(t, rec, WritingTime, 0)

	c.handle(event{kind: evText, text: long + " more"})
	c.flushPending()
	requireValue(t, rec, TotalWordCount, 1)
	requireValue(t, rec, SessionWordCount, 1)
}

func TestDocumentChangedCancelsPendingRecompute(t *testing.T) {
	c, rec, _ := newTestCoordinator(t, model.Config{DebounceInterval: time.Hour})
	c.handle(event{kind: evText, text: "stale text here"})
	c.handle(event{kind: evDocument, text: "fresh"})
	assert.False(t, c.pending)
	assert.Nil(t, c.debounce)
	requireValue(t, rec, WordCount, 1)
}

func TestTickPublishesSessionFields(t *testing.T) {
	c, rec, clock := newTestCoordinator(t, model.Config{})
	c.handle(event{kind: evDocument, text: ""})
	c.handle(event{kind: evResume})
	c.handle(event{kind: evText, text: "one two three four five six"})
	c.flushPending()
	clock.advance(30 * time.Second)
	c.tick(clock.Now())
	c.handle(event{kind: evPause})
	clock.advance(30 * time.Second)
	c.tick(clock.Now())

	requireValue(t, rec, WordsPerMinute, 6)
	requireValue(t, rec, WritingTime, 0)
	requireValue(t, rec, IdleTimePercentage, 50)
	assert.Equal(t, session.Idle, c.Session().State)
}

func TestDeletionDoesNotReduceSessionWords(t *testing.T) {
	c, rec, _ := newTestCoordinator(t, model.Config{})
	c.handle(event{kind: evDocument, text: "one two"})
	c.handle(event{kind: evText, text: "one two three four"})
	c.flushPending()
	c.handle(event{kind: evText, text: "one"})
	c.flushPending()
	requireValue(t, rec, SessionWordCount, 2)
	requireValue(t, rec, TotalWordCount, 0)
}

func TestStaleLargeDocumentResultIsDiscarded(t *testing.T) {
	c, rec, _ := newTestCoordinator(t, model.Config{MaxAnalyzeRunes: 8})
	c.handle(event{kind: evText, text: "this document is oversized"})
	c.flushPending()
	c.handle(event{kind: evText, text: "a newer edit also oversized"})

	var res result
	select {
	case res = <-c.results:
	case <-time.After(5 * time.Second):
		t.Fatalf("no analysis result")
	}
	c.applyResult(res)
	_, ok := rec.last(WordCount)
	assert.False(t, ok)

	c.flushPending()
	select {
	case res = <-c.results:
	case <-time.After(5 * time.Second):
		t.Fatalf("no analysis result")
	}
	c.applyResult(res)
	n := requireValue(t, rec, WordCount, 5)
	assert.True(t, n.Approximate)
}

func TestRunLoop(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	var mu sync.Mutex
	now := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return clock.Now()
	}
	c := New(model.Config{DebounceInterval: 10 * time.Millisecond, TickInterval: 5 * time.Millisecond}, WithClock(now))
	rec := &recorder{}
	c.Subscribe(rec.observe)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	c.DocumentChanged("start")
	c.TypingResumed()
	c.TextChanged("start and")
	c.TextChanged("start and then more")

	require.Eventually(t, func() bool {
		n, ok := rec.last(WordCount)
		return ok && n.Value == 4
	}, 2*time.Second, 5*time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := rec.last(WordsPerMinute)
		return ok
	}, 2*time.Second, 5*time.Millisecond)

	c.SelectionChanged("", 0, 5)
	require.Eventually(t, func() bool {
		n, ok := rec.last(WordCount)
		return ok && n.Value == 1 && n.Scope == ScopeSelection
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not stop")
	}
	assert.Equal(t, 4, c.Metrics().Words)
	assert.Equal(t, 3, c.Session().WordsWritten)

	// Events after shutdown are dropped instead of blocking.
	c.TextChanged("ignored")
}

func TestFieldNames(t *testing.T) {
	assert.Equal(t, "lixReadingEaseChanged", LixReadingEase.String())
	assert.Equal(t, "idleTimePercentageChanged", IdleTimePercentage.String())
	assert.Equal(t, "unknown", Field(-1).String())
	assert.Equal(t, "selection", ScopeSelection.String())
}
