package journal

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/julianstephens/leverage-journal/internal/logger"
	"github.com/julianstephens/leverage-journal/internal/models"
	"github.com/julianstephens/leverage-journal/internal/output"
)

// ErrMissingContainer is returned by Run when the output target has nowhere
// to put the document
var ErrMissingContainer = output.ErrMissingContainer

// Enhancer post-processes a written document, filling QR slots with images.
// It reports how many slots it filled; zero means the document is unchanged.
type Enhancer interface {
	Enhance(ctx context.Context, doc []byte) ([]byte, int, error)
}

// Observer is told about every finished run
type Observer func(trigger string, res Result, elapsed time.Duration, err error)

// Observers fans one finished run out to every non-nil observer in order
func Observers(obs ...Observer) Observer {
	return func(trigger string, res Result, elapsed time.Duration, err error) {
		for _, o := range obs {
			if o != nil {
				o(trigger, res, elapsed, err)
			}
		}
	}
}

// Assembler is the single entry point for producing the journal. Every
// trigger calls Run; overlapping runs are serialized and each one fully
// replaces the previous document.
type Assembler struct {
	mu       sync.Mutex
	target   output.Target
	enhancer Enhancer
	observer Observer
	opts     []Option

	lastMu sync.RWMutex
	last   *Result
}

// AssemblerOption configures an Assembler
type AssemblerOption func(*Assembler)

// WithEnhancer runs e on every written document
func WithEnhancer(e Enhancer) AssemblerOption {
	return func(a *Assembler) {
		a.enhancer = e
	}
}

// WithObserver registers a callback for finished runs
func WithObserver(o Observer) AssemblerOption {
	return func(a *Assembler) {
		a.observer = o
	}
}

// WithGenerateOptions applies opts to every Generate call the assembler makes
func WithGenerateOptions(opts ...Option) AssemblerOption {
	return func(a *Assembler) {
		a.opts = append(a.opts, opts...)
	}
}

// NewAssembler creates an assembler writing to target
func NewAssembler(target output.Target, opts ...AssemblerOption) *Assembler {
	a := &Assembler{target: target}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Run generates the journal for entries, renders it and replaces the
// target's content. trigger names the caller in logs and metrics.
func (a *Assembler) Run(ctx context.Context, trigger string, entries models.EntriesByDay, opts ...Option) (Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	start := time.Now()
	lg := logger.With("component", "assembler", "trigger", trigger, "target", a.target.Name())

	res := Generate(entries, append(append([]Option(nil), a.opts...), opts...)...)
	err := a.write(ctx, res)
	if err != nil {
		if errors.Is(err, ErrMissingContainer) {
			lg.Error("journal container missing, nothing written", "err", err)
		} else {
			lg.Error("failed to write journal", "err", err)
		}
	} else {
		a.lastMu.Lock()
		a.last = &res
		a.lastMu.Unlock()
		lg.Info("journal written", "pages", len(res.Pages), "failures", len(res.Failures), "elapsed", time.Since(start))
	}

	if a.observer != nil {
		a.observer(trigger, res, time.Since(start), err)
	}
	return res, err
}

func (a *Assembler) write(ctx context.Context, res Result) error {
	var buf bytes.Buffer
	if err := Render(&buf, res); err != nil {
		return err
	}
	doc := buf.Bytes()

	if err := a.target.Replace(ctx, doc); err != nil {
		return fmt.Errorf("failed to write journal to %s: %w", a.target.Name(), err)
	}

	if a.enhancer == nil {
		return nil
	}
	enhanced, n, err := a.enhancer.Enhance(ctx, doc)
	if err != nil {
		logger.Warn("QR enhancement failed, keeping plain document", "err", err)
		return nil
	}
	if n == 0 {
		return nil
	}
	if err := a.target.Replace(ctx, enhanced); err != nil {
		logger.Warn("failed to write QR-enhanced journal", "err", err)
	}
	return nil
}

// Last returns the most recent successfully written result
func (a *Assembler) Last() (Result, bool) {
	a.lastMu.RLock()
	defer a.lastMu.RUnlock()
	if a.last == nil {
		return Result{}, false
	}
	return *a.last, true
}
