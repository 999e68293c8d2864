// Package coordinator connects editor activity to the text analyzer and the
// session tracker, and republishes their results as per-field notifications.
//
// All state is owned by the goroutine executing Run. Event methods only
// enqueue, so they may be called from any goroutine.
package coordinator

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/verte-zerg/writestat/internal/model"
	"github.com/verte-zerg/writestat/internal/session"
	"github.com/verte-zerg/writestat/internal/textstats"
)

const eventQueueSize = 256

type eventKind int

const (
	evText eventKind = iota
	evSelection
	evDeselect
	evPause
	evResume
	evDocument
)

type event struct {
	kind  eventKind
	text  string
	start int
	end   int
}

type result struct {
	gen     uint64
	metrics textstats.Metrics
}

// Coordinator owns the analyzer, the session tracker and the display scope.
type Coordinator struct {
	cfg           model.Config
	analyzer      *textstats.Analyzer
	tracker       *session.Tracker
	bus           Bus
	logger        *zap.Logger
	now           func() time.Time
	abbreviations map[string]struct{}

	events  chan event
	results chan result
	done    chan struct{}

	text     string
	pending  bool
	debounce *time.Timer
	gen      uint64

	docMetrics textstats.Metrics
	selMetrics textstats.Metrics
	scope      Scope
	attached   bool
}

// Option customizes a Coordinator.
type Option func(*Coordinator)

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClock replaces time.Now for session accounting.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// WithAbbreviations extends the sentence abbreviation guard.
func WithAbbreviations(set map[string]struct{}) Option {
	return func(c *Coordinator) {
		c.abbreviations = set
	}
}

// New builds a Coordinator. Zero config values fall back to model.DefaultConfig.
// Callers should announce the document with DocumentChanged first; otherwise the
// first analyzed text becomes the session baseline.
func New(cfg model.Config, opts ...Option) *Coordinator {
	cfg = withDefaults(cfg)
	c := &Coordinator{
		cfg:     cfg,
		logger:  zap.NewNop(),
		now:     time.Now,
		events:  make(chan event, eventQueueSize),
		results: make(chan result, 1),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.analyzer = textstats.New(textstats.Options{
		ReadingWPM:    cfg.AverageReadingWPM,
		WordsPerPage:  cfg.WordsPerPage,
		MaxRunes:      cfg.MaxAnalyzeRunes,
		Abbreviations: c.abbreviations,
	})
	c.tracker = session.New(cfg.WPMWindow, c.now(), 0)
	return c
}

func withDefaults(cfg model.Config) model.Config {
	d := model.DefaultConfig()
	if cfg.AverageReadingWPM <= 0 {
		cfg.AverageReadingWPM = d.AverageReadingWPM
	}
	if cfg.WordsPerPage <= 0 {
		cfg.WordsPerPage = d.WordsPerPage
	}
	if cfg.DebounceInterval <= 0 {
		cfg.DebounceInterval = d.DebounceInterval
	}
	if cfg.WPMWindow <= 0 {
		cfg.WPMWindow = d.WPMWindow
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = d.TickInterval
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = d.IdleTimeout
	}
	if cfg.MaxAnalyzeRunes <= 0 {
		cfg.MaxAnalyzeRunes = d.MaxAnalyzeRunes
	}
	return cfg
}

// Subscribe registers a display observer. Observers run on the Run goroutine.
func (c *Coordinator) Subscribe(fn func(Notification)) {
	c.bus.Subscribe(fn)
}

// TextChanged schedules a debounced whole-document recompute.
func (c *Coordinator) TextChanged(text string) {
	c.post(event{kind: evText, text: text})
}

// SelectionChanged recomputes metrics for the selection immediately. When
// text is empty the rune range [start, end) of the latest document is used.
func (c *Coordinator) SelectionChanged(text string, start, end int) {
	c.post(event{kind: evSelection, text: text, start: start, end: end})
}

// TextDeselected reverts the display scope to the whole document.
func (c *Coordinator) TextDeselected() {
	c.post(event{kind: evDeselect})
}

// TypingPaused moves the session to Idle.
func (c *Coordinator) TypingPaused() {
	c.post(event{kind: evPause})
}

// TypingResumed moves the session to Typing.
func (c *Coordinator) TypingResumed() {
	c.post(event{kind: evResume})
}

// DocumentChanged resets the session and recomputes metrics for text.
func (c *Coordinator) DocumentChanged(text string) {
	c.post(event{kind: evDocument, text: text})
}

func (c *Coordinator) post(ev event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// Run processes events, debounce expiries and ticks until ctx is canceled.
// It must be called once.
func (c *Coordinator) Run(ctx context.Context) error {
	defer close(c.done)
	defer c.stopDebounce()

	ticker := time.NewTicker(c.cfg.TickInterval)
	defer ticker.Stop()

	c.logger.Debug("coordinator started",
		zap.Duration("debounce", c.cfg.DebounceInterval),
		zap.Duration("tick", c.cfg.TickInterval))
	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("coordinator stopped")
			return nil
		case ev := <-c.events:
			c.handle(ev)
		case <-c.debounceC():
			c.debounce = nil
			c.recomputeDocument()
		case res := <-c.results:
			c.applyResult(res)
		case <-ticker.C:
			c.tick(c.now())
		}
	}
}

func (c *Coordinator) handle(ev event) {
	switch ev.kind {
	case evText:
		c.text = ev.text
		c.gen++
		c.pending = true
		c.armDebounce()
	case evSelection:
		c.selectText(ev)
	case evDeselect:
		c.deselect()
	case evPause:
		c.tracker.Pause()
		c.logger.Debug("typing paused")
	case evResume:
		c.tracker.Resume()
		c.logger.Debug("typing resumed")
	case evDocument:
		c.resetDocument(ev.text)
	}
}

func (c *Coordinator) armDebounce() {
	c.stopDebounce()
	c.debounce = time.NewTimer(c.cfg.DebounceInterval)
}

func (c *Coordinator) stopDebounce() {
	if c.debounce != nil {
		c.debounce.Stop()
		c.debounce = nil
	}
}

func (c *Coordinator) debounceC() <-chan time.Time {
	if c.debounce == nil {
		return nil
	}
	return c.debounce.C
}

// flushPending runs a pending debounced recompute right away.
func (c *Coordinator) flushPending() {
	if !c.pending {
		return
	}
	c.stopDebounce()
	c.recomputeDocument()
}

func (c *Coordinator) recomputeDocument() {
	c.pending = false
	text := c.text
	if c.analyzer.Oversized(text) {
		gen := c.gen
		c.logger.Debug("analyzing large document off the loop", zap.Uint64("generation", gen))
		go func() {
			m := c.analyzer.Analyze(textstats.Snapshot{Text: text})
			select {
			case c.results <- result{gen: gen, metrics: m}:
			case <-c.done:
			}
		}()
		return
	}
	started := time.Now()
	m := c.analyzer.Analyze(textstats.Snapshot{Text: text})
	c.logger.Debug("document analyzed",
		zap.Int("words", m.Words),
		zap.Duration("took", time.Since(started)))
	c.applyDocument(m)
}

func (c *Coordinator) applyResult(res result) {
	if res.gen != c.gen {
		c.logger.Debug("discarding stale analysis",
			zap.Uint64("generation", res.gen),
			zap.Uint64("current", c.gen))
		return
	}
	c.applyDocument(res.metrics)
}

func (c *Coordinator) applyDocument(m textstats.Metrics) {
	c.docMetrics = m
	if c.attached {
		c.tracker.UpdateWordCount(m.Words)
	} else {
		c.tracker.Rebase(m.Words)
		c.attached = true
	}
	if c.scope == ScopeDocument {
		c.publishMetrics(m, ScopeDocument)
	}
	c.publishSessionWords()
}

func (c *Coordinator) selectText(ev event) {
	c.flushPending()
	var snap textstats.Snapshot
	switch {
	case ev.text != "":
		snap = textstats.Snapshot{Text: ev.text}
	case ev.start != ev.end:
		snap = textstats.Snapshot{Text: c.text, Selection: &textstats.Range{Start: ev.start, End: ev.end}}
	default:
		c.deselect()
		return
	}
	c.selMetrics = c.analyzer.Analyze(snap)
	c.scope = ScopeSelection
	c.publishMetrics(c.selMetrics, ScopeSelection)
}

func (c *Coordinator) deselect() {
	if c.scope == ScopeDocument {
		return
	}
	c.scope = ScopeDocument
	c.selMetrics = textstats.Metrics{}
	c.publishMetrics(c.docMetrics, ScopeDocument)
}

func (c *Coordinator) resetDocument(text string) {
	c.stopDebounce()
	c.pending = false
	c.gen++
	c.text = text
	c.scope = ScopeDocument
	c.selMetrics = textstats.Metrics{}
	c.attached = true

	m := c.analyzer.Analyze(textstats.Snapshot{Text: text})
	c.docMetrics = m
	now := c.now()
	c.tracker.Reset(now, m.Words)
	c.logger.Info("session reset", zap.Int("baseline_words", m.Words), zap.Time("at", now))

	c.publishMetrics(m, ScopeDocument)
	c.publishSessionWords()
	c.publishSessionTime(c.tracker.Snapshot())
}

func (c *Coordinator) tick(now time.Time) {
	c.publishSessionTime(c.tracker.Tick(now))
}

func (c *Coordinator) publishMetrics(m textstats.Metrics, scope Scope) {
	for _, n := range metricNotifications(m, scope) {
		c.bus.Publish(n)
	}
}

func (c *Coordinator) publishSessionWords() {
	snap := c.tracker.Snapshot()
	c.bus.Publish(Notification{Field: TotalWordCount, Value: snap.NetWords()})
	c.bus.Publish(Notification{Field: SessionWordCount, Value: snap.WordsWritten})
	c.bus.Publish(Notification{Field: SessionPageCount, Value: ceilDiv(snap.WordsWritten, c.cfg.WordsPerPage)})
}

func (c *Coordinator) publishSessionTime(snap session.Snapshot) {
	c.bus.Publish(Notification{Field: WordsPerMinute, Value: snap.WPM})
	c.bus.Publish(Notification{Field: WritingTime, Value: snap.WritingMinutes()})
	c.bus.Publish(Notification{Field: IdleTimePercentage, Value: snap.IdlePercent})
}

// Metrics returns the last whole-document metrics. Call it from an observer or after Run returns.
func (c *Coordinator) Metrics() textstats.Metrics {
	return c.docMetrics
}

// Scope returns the current display scope.
func (c *Coordinator) Scope() Scope {
	return c.scope
}

// Session returns the session tracker state.
func (c *Coordinator) Session() session.Snapshot {
	return c.tracker.Snapshot()
}

// Config returns the effective configuration.
func (c *Coordinator) Config() model.Config {
	return c.cfg
}
