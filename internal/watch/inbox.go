// Package watch regenerates the journal when entry files land in an inbox
// directory.
package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/entries"
	"github.com/julianstephens/leverage-journal/internal/logger"
)

// Handler receives the bundle decoded from a settled inbox file
type Handler func(ctx context.Context, path string, b entries.Bundle) error

// Stats counts inbox activity
type Stats struct {
	Received  int
	Processed int
	Ignored   int
	Errors    int
	LastPath  string
	LastEvent time.Time
}

// Inbox watches a directory for *.json entry files. Each file is handled
// once it has stopped changing for the debounce window.
type Inbox struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	dir         string
	handler     Handler
	pending     map[string]time.Time
	debounceDur time.Duration
	tick        time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	doneOnce    sync.Once
	running     bool

	stats Stats
}

// Option configures an Inbox
type Option func(*Inbox)

// WithDebounce sets how long a file must be quiet before it is handled
func WithDebounce(d time.Duration) Option {
	return func(in *Inbox) {
		in.debounceDur = d
		if d < in.tick {
			in.tick = d
		}
	}
}

// NewInbox creates a watcher for dir. dir must exist.
func NewInbox(dir string, handler Handler, opts ...Option) (*Inbox, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("inbox path is not a directory: " + dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	in := &Inbox{
		watcher:     watcher,
		dir:         dir,
		handler:     handler,
		pending:     make(map[string]time.Time),
		debounceDur: constants.WatchDebounce,
		tick:        constants.WatchTick,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(in)
	}
	return in, nil
}

// Start begins watching. It does not block.
func (in *Inbox) Start(ctx context.Context) error {
	in.mu.Lock()
	if in.running {
		in.mu.Unlock()
		return nil
	}
	in.running = true
	in.mu.Unlock()

	if err := in.watcher.Add(in.dir); err != nil {
		in.mu.Lock()
		in.running = false
		in.mu.Unlock()
		return err
	}
	logger.Info("watching inbox", "dir", in.dir)

	go in.run(ctx)
	return nil
}

// Stop ends the watch loop and waits for it to exit
func (in *Inbox) Stop() {
	in.mu.Lock()
	if !in.running {
		in.mu.Unlock()
		_ = in.watcher.Close()
		in.closeDone()
		return
	}
	in.running = false
	in.mu.Unlock()

	close(in.stopCh)
	<-in.doneCh

	if err := in.watcher.Close(); err != nil {
		logger.Error("failed to close inbox watcher", "err", err)
	}
	logger.Info("inbox watcher stopped", "dir", in.dir)
}

// Done is closed when the watch loop has exited, or by Stop when the loop
// never started
func (in *Inbox) Done() <-chan struct{} {
	return in.doneCh
}

func (in *Inbox) closeDone() {
	in.doneOnce.Do(func() { close(in.doneCh) })
}

// Stats returns a snapshot of inbox activity
func (in *Inbox) Stats() Stats {
	in.mu.Lock()
	defer in.mu.Unlock()
	return in.stats
}

func (in *Inbox) run(ctx context.Context) {
	defer in.closeDone()

	ticker := time.NewTicker(in.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-in.stopCh:
			return

		case event, ok := <-in.watcher.Events:
			if !ok {
				return
			}
			in.handleEvent(event)

		case err, ok := <-in.watcher.Errors:
			if !ok {
				return
			}
			logger.Error("inbox watcher error", "err", err)
			in.mu.Lock()
			in.stats.Errors++
			in.mu.Unlock()

		case <-ticker.C:
			in.processSettled(ctx)
		}
	}
}

func (in *Inbox) handleEvent(event fsnotify.Event) {
	if !strings.EqualFold(filepath.Ext(event.Name), ".json") || strings.HasPrefix(filepath.Base(event.Name), ".") {
		return
	}
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}

	in.mu.Lock()
	in.stats.Received++
	in.stats.LastPath = event.Name
	in.stats.LastEvent = time.Now()
	in.pending[event.Name] = time.Now()
	in.mu.Unlock()
}

func (in *Inbox) processSettled(ctx context.Context) {
	in.mu.Lock()
	now := time.Now()
	var settled []string
	for path, at := range in.pending {
		if now.Sub(at) >= in.debounceDur {
			settled = append(settled, path)
			delete(in.pending, path)
		}
	}
	in.mu.Unlock()

	for _, path := range settled {
		in.process(ctx, path)
	}
}

func (in *Inbox) process(ctx context.Context, path string) {
	b, err := entries.FileSource{Path: path}.Load(ctx)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return
		}
		in.mu.Lock()
		if errors.Is(err, entries.ErrIgnoredMessage) {
			in.stats.Ignored++
		} else {
			in.stats.Errors++
		}
		in.mu.Unlock()
		logger.Warn("skipping inbox file", "path", path, "err", err)
		return
	}

	if err := in.handler(ctx, path, b); err != nil {
		in.mu.Lock()
		in.stats.Errors++
		in.mu.Unlock()
		logger.Error("inbox file handler failed", "path", path, "err", err)
		return
	}

	in.mu.Lock()
	in.stats.Processed++
	in.mu.Unlock()
	logger.Info("inbox file processed", "path", path, "days", len(b.EntriesByDay))
}
