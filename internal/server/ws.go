package server

import (
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/julianstephens/leverage-journal/internal/constants"
	"github.com/julianstephens/leverage-journal/internal/entries"
	"github.com/julianstephens/leverage-journal/internal/logger"
	"github.com/julianstephens/leverage-journal/internal/server/metrics"
)

const wsWriteWait = 10 * time.Second

// wsReply is written back for each JOURNAL_ENTRIES frame
type wsReply struct {
	Type string `json:"type"`
	renderSummary
	Error string `json:"error,omitempty"`
}

// handleWebsocket is the websocket form of the message trigger. Each text
// frame is a message; frames of another type are dropped.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	if !s.track(conn) {
		_ = conn.Close()
		return
	}
	defer s.untrack(conn)

	conn.SetReadLimit(constants.MaxMessageBytes)
	lg := logger.With("component", "ws", "client", clientKey(r))
	lg.Info("websocket client connected")

	limiter := rate.NewLimiter(rate.Limit(s.cfg.RateLimit), s.cfg.RateBurst)
	for {
		kind, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				lg.Warn("websocket read failed", "err", err)
			}
			return
		}
		if kind != websocket.TextMessage {
			continue
		}
		if !limiter.Allow() {
			metrics.RecordMessage("ws", "rejected")
			if !s.reply(conn, wsReply{Type: "ERROR", Error: "rate limit exceeded"}) {
				return
			}
			continue
		}

		msg, err := entries.DecodeMessage(data)
		if err != nil {
			if errors.Is(err, entries.ErrIgnoredMessage) {
				metrics.RecordMessage("ws", "ignored")
				continue
			}
			metrics.RecordMessage("ws", "rejected")
			if !s.reply(conn, wsReply{Type: "ERROR", Error: err.Error()}) {
				return
			}
			continue
		}
		metrics.RecordMessage("ws", "accepted")

		res, err := s.run(r.Context(), "websocket", msg.Bundle())
		reply := wsReply{Type: "JOURNAL_RENDERED", renderSummary: summarize(res)}
		if err != nil {
			reply = wsReply{Type: "ERROR", Error: "failed to render journal"}
		}
		if !s.reply(conn, reply) {
			return
		}
	}
}

func (s *Server) reply(conn *websocket.Conn, v wsReply) bool {
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
	if err := conn.WriteJSON(v); err != nil {
		logger.Warn("websocket write failed", "err", err)
		return false
	}
	return true
}

func (s *Server) track(conn *websocket.Conn) bool {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.closed {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn *websocket.Conn) {
	s.connMu.Lock()
	delete(s.conns, conn)
	s.connMu.Unlock()
	_ = conn.Close()
}
