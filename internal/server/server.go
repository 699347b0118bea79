// Package server exposes the journal over HTTP: the page-load and message
// triggers, the entry fetch contract, a websocket message channel and
// Prometheus metrics.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/entries"
	"github.com/julianstephens/leverage-journal/internal/journal"
	"github.com/julianstephens/leverage-journal/internal/logger"
	"github.com/julianstephens/leverage-journal/internal/models"
	"github.com/julianstephens/leverage-journal/internal/output"
	"github.com/julianstephens/leverage-journal/internal/server/metrics"
)

// Store is the storage the entry API and fetch contract need
type Store interface {
	SaveEntry(models.JournalEntry) (models.JournalEntry, error)
	GetEntry(date string) (models.JournalEntry, error)
	ListEntries(includeDeleted bool) ([]models.JournalEntry, error)
	GetEntriesByDay() (models.EntriesByDay, error)
	GetReviewsByWeek() (models.ReviewsByWeek, error)
}

// Config configures a Server
type Config struct {
	Addr string
	// Token guards the API routes with a bearer check. Empty disables it.
	Token string
	// Source feeds the page-load trigger. Defaults to Store, then to no entries.
	Source entries.Source
	Store  Store
	// Enhancer fills QR anchors after each render
	Enhancer journal.Enhancer
	// OnRun is called after every assembly run
	OnRun journal.Observer

	RateLimit float64
	RateBurst int
}

// Server is the journal HTTP service
type Server struct {
	cfg       Config
	source    entries.Source
	target    *output.MemoryTarget
	assembler *journal.Assembler
	router    *mux.Router
	limiter   *rateLimiter
	upgrader  websocket.Upgrader

	connMu sync.Mutex
	conns  map[*websocket.Conn]struct{}
	closed bool
}

// New builds a server and its routes
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = constants.DefaultListenAddr
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = constants.ServerRateLimit
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = constants.ServerRateBurst
	}

	s := &Server{
		cfg:     cfg,
		target:  output.NewMemoryTarget(),
		limiter: newRateLimiter(cfg.RateLimit, cfg.RateBurst),
		conns:   make(map[*websocket.Conn]struct{}),
	}

	switch {
	case cfg.Source != nil:
		s.source = cfg.Source
	case cfg.Store != nil:
		s.source = entries.StoreSource{Store: cfg.Store}
	default:
		s.source = entries.Static{}
	}

	opts := []journal.AssemblerOption{journal.WithObserver(s.observe)}
	if cfg.Enhancer != nil {
		opts = append(opts, journal.WithEnhancer(cfg.Enhancer))
	}
	s.assembler = journal.NewAssembler(s.target, opts...)

	s.routes()
	return s
}

func (s *Server) routes() {
	r := mux.NewRouter()
	r.Use(metrics.InstrumentHandler)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/journal", s.handleJournal).Methods(http.MethodGet)
	r.HandleFunc("/journal/current", s.handleCurrent).Methods(http.MethodGet)

	limited := r.NewRoute().Subrouter()
	limited.Use(s.limiter.Handler)
	limited.HandleFunc("/ws", s.handleWebsocket)
	limited.HandleFunc("/api/journal/messages", s.handleMessage).Methods(http.MethodPost)

	api := limited.PathPrefix("/api/journal").Subrouter()
	api.Use(s.requireToken)
	api.HandleFunc("/generate", s.handleGenerate).Methods(http.MethodGet)
	api.HandleFunc("/pages", s.handlePages).Methods(http.MethodGet)
	api.HandleFunc("/entries", s.handleGetEntry).Methods(http.MethodGet)
	api.HandleFunc("/entries", s.handleSaveEntry).Methods(http.MethodPost)

	s.router = r
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Assembler returns the assembler every trigger runs through
func (s *Server) Assembler() *journal.Assembler {
	return s.assembler
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  constants.ServerReadTimeout,
		WriteTimeout: constants.ServerWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("journal server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		s.Close()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ServerShutdownGrace)
	defer cancel()
	s.Close()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	<-errCh
	logger.Info("journal server stopped")
	return nil
}

// Close drops every open websocket connection
func (s *Server) Close() {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	s.closed = true
	for conn := range s.conns {
		_ = conn.Close()
	}
	s.conns = map[*websocket.Conn]struct{}{}
}

func (s *Server) run(ctx context.Context, trigger string, b entries.Bundle) (journal.Result, error) {
	return s.assembler.Run(ctx, trigger, b.EntriesByDay, journal.WithReviews(b.ReviewsByWeek))
}

func (s *Server) observe(trigger string, res journal.Result, elapsed time.Duration, err error) {
	kinds := make([]string, 0, len(res.Failures))
	for _, f := range res.Failures {
		kinds = append(kinds, f.Page.Kind.String())
	}
	metrics.RecordGeneration(trigger, elapsed, kinds, err == nil)
	if s.cfg.OnRun != nil {
		s.cfg.OnRun(trigger, res, elapsed, err)
	}
}
