// Package watch turns writes to a file into editor activity events: text
// changes plus typing resumed/paused transitions derived from an idle timeout.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Sink receives editor events.
type Sink interface {
	DocumentChanged(text string)
	TextChanged(text string)
	TypingResumed()
	TypingPaused()
}

// Watcher follows a single file. It watches the parent directory so that
// editors which save by renaming a temp file are still observed.
type Watcher struct {
	path        string
	idleTimeout time.Duration
	sink        Sink
	logger      *zap.Logger

	last   string
	typing bool
	idle   *time.Timer
}

// New creates a watcher for path.
func New(path string, idleTimeout time.Duration, sink Sink, logger *zap.Logger) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Watcher{
		path:        path,
		idleTimeout: idleTimeout,
		sink:        sink,
		logger:      logger,
	}
}

// Run loads the file, announces it as a new document and forwards changes
// until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}
	w.path = abs

	text, err := readText(abs)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}
	w.last = text
	w.sink.DocumentChanged(text)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() {
		if cerr := fsw.Close(); cerr != nil {
			w.logger.Warn("failed to close watcher", zap.Error(cerr))
		}
	}()
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(abs), err)
	}
	defer w.stopIdle()

	w.logger.Info("watching document", zap.String("path", abs), zap.Duration("idle_timeout", w.idleTimeout))
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs || (!ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create)) {
				continue
			}
			text, err := readText(abs)
			if err != nil {
				// Half-written or mid-rename; the next event retries.
				w.logger.Debug("failed to read document", zap.Error(err))
				continue
			}
			w.fileChanged(text)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("watcher error", zap.Error(err))
		case <-w.idleC():
			w.idle = nil
			w.idleExpired()
		}
	}
}

// fileChanged reports whether text differed from the last seen content.
func (w *Watcher) fileChanged(text string) bool {
	if text == w.last {
		return false
	}
	w.last = text
	if !w.typing {
		w.typing = true
		w.sink.TypingResumed()
	}
	w.sink.TextChanged(text)
	w.armIdle()
	return true
}

func (w *Watcher) idleExpired() {
	if !w.typing {
		return
	}
	w.typing = false
	w.sink.TypingPaused()
}

func (w *Watcher) armIdle() {
	w.stopIdle()
	w.idle = time.NewTimer(w.idleTimeout)
}

func (w *Watcher) stopIdle() {
	if w.idle != nil {
		w.idle.Stop()
		w.idle = nil
	}
}

func (w *Watcher) idleC() <-chan time.Time {
	if w.idle == nil {
		return nil
	}
	return w.idle.C
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Tee fans events out to every sink in order.
func Tee(sinks ...Sink) Sink {
	return teeSink(sinks)
}

type teeSink []Sink

func (t teeSink) DocumentChanged(text string) {
	for _, s := range t {
		s.DocumentChanged(text)
	}
}

func (t teeSink) TextChanged(text string) {
	for _, s := range t {
		s.TextChanged(text)
	}
}

func (t teeSink) TypingResumed() {
	for _, s := range t {
		s.TypingResumed()
	}
}

func (t teeSink) TypingPaused() {
	for _, s := range t {
		s.TypingPaused()
	}
}
