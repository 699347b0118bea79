package server

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/entries"
	"github.com/julianstephens/leverage-journal/internal/journal"
	"github.com/julianstephens/leverage-journal/internal/logger"
	"github.com/julianstephens/leverage-journal/internal/models"
	"github.com/julianstephens/leverage-journal/internal/server/metrics"
	"github.com/julianstephens/leverage-journal/internal/storage"
)

// renderSummary is returned by the message triggers
type renderSummary struct {
	Status   string   `json:"status"`
	Pages    int      `json:"pages"`
	Failures []string `json:"failures,omitempty"`
}

func summarize(res journal.Result) renderSummary {
	sum := renderSummary{Status: "rendered", Pages: len(res.Pages)}
	for _, f := range res.Failures {
		sum.Failures = append(sum.Failures, f.Page.Anchor)
	}
	return sum
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("failed to encode response", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeDocument(w http.ResponseWriter, doc []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// requireToken enforces the bearer token when one is configured
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.Token == "" {
			next.ServeHTTP(w, r)
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(got), []byte(s.cfg.Token)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": constants.Version})
}

// handleJournal is the page-load trigger: load entries, regenerate, serve
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	b, err := s.source.Load(r.Context())
	if err != nil {
		logger.Warn("entry load failed, generating a blank journal", "err", err)
		b = entries.Bundle{EntriesByDay: models.EntriesByDay{}}
	}
	if _, err := s.run(r.Context(), "page-load", b); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render journal")
		return
	}
	writeDocument(w, s.target.Bytes())
}

// handleCurrent serves the last rendered document without regenerating it
func (s *Server) handleCurrent(w http.ResponseWriter, _ *http.Request) {
	doc := s.target.Bytes()
	if doc == nil {
		writeError(w, http.StatusNotFound, "no journal rendered yet")
		return
	}
	writeDocument(w, doc)
}

// handleMessage is the HTTP form of the message trigger
func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(io.LimitReader(r.Body, constants.MaxMessageBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read message")
		return
	}
	if len(data) > constants.MaxMessageBytes {
		metrics.RecordMessage("http", "rejected")
		writeError(w, http.StatusRequestEntityTooLarge, "message too large")
		return
	}

	msg, err := entries.DecodeMessage(data)
	if err != nil {
		if errors.Is(err, entries.ErrIgnoredMessage) {
			metrics.RecordMessage("http", "ignored")
			writeJSON(w, http.StatusAccepted, map[string]string{"status": "ignored"})
			return
		}
		metrics.RecordMessage("http", "rejected")
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	metrics.RecordMessage("http", "accepted")

	res, err := s.run(r.Context(), "message", msg.Bundle())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to render journal")
		return
	}
	writeJSON(w, http.StatusOK, summarize(res))
}

// handleGenerate serves the fetch contract other journals load from
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	b, err := s.source.Load(r.Context())
	if err != nil {
		logger.Error("failed to load entries for fetch", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch entries")
		return
	}
	if b.EntriesByDay == nil {
		b.EntriesByDay = models.EntriesByDay{}
	}
	if b.ReviewsByWeek == nil {
		b.ReviewsByWeek = models.ReviewsByWeek{}
	}
	if s.cfg.Store != nil && b.Entries == nil {
		if list, err := s.cfg.Store.ListEntries(false); err == nil {
			b.Entries = list
		}
	}
	writeJSON(w, http.StatusOK, b)
}

// handlePages lists the pages of the last rendered document
func (s *Server) handlePages(w http.ResponseWriter, _ *http.Request) {
	res, ok := s.assembler.Last()
	if !ok {
		pages, _ := journal.Outline()
		res = journal.Result{Title: journal.DocumentTitle, Pages: pages}
	}
	writeJSON(w, http.StatusOK, map[string]any{"title": res.Title, "pages": res.Listing()})
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "no entry storage configured")
		return
	}
	date := r.URL.Query().Get("date")
	if date == "" {
		list, err := s.cfg.Store.ListEntries(false)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "failed to list entries")
			return
		}
		if list == nil {
			list = []models.JournalEntry{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": list})
		return
	}

	e, err := s.cfg.Store.GetEntry(date)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeJSON(w, http.StatusOK, map[string]any{"entry": nil})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch entry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": e})
}

func (s *Server) handleSaveEntry(w http.ResponseWriter, r *http.Request) {
	if s.cfg.Store == nil {
		writeError(w, http.StatusServiceUnavailable, "no entry storage configured")
		return
	}
	var e models.JournalEntry
	if err := json.NewDecoder(io.LimitReader(r.Body, constants.MaxMessageBytes)).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid entry: %v", err))
		return
	}
	if err := e.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := s.cfg.Store.SaveEntry(e)
	if err != nil {
		logger.Error("failed to save entry", "date", e.EntryDate, "err", err)
		writeError(w, http.StatusInternalServerError, "failed to save entry")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entry": saved})
}
