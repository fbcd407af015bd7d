package http

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/couchcryptid/sf-danger-zones/internal/domain"
	"github.com/couchcryptid/sf-danger-zones/internal/pipeline"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Maximum selection message size accepted from the peer.
	maxMessageSize = 64 << 10
)

// wsMessage is the server reply to one selection message.
type wsMessage struct {
	Selection *domain.Selection `json:"selection,omitempty"`
	Query     string            `json:"query,omitempty"`
	Summary   *domain.Summary   `json:"summary,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// handleWS upgrades to a WebSocket and answers every selection message with
// the recomputed summary. The table is shared; the selection is per message.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	logger := s.logger.With("conn_id", uuid.NewString(), "remote_addr", r.RemoteAddr)
	s.metrics.WebSocketClients.Inc()
	defer s.metrics.WebSocketClients.Dec()
	logger.Debug("websocket connected")

	limiter := rate.NewLimiter(rate.Limit(s.opts.WSMessageRate), s.opts.WSMessageBurst)
	conn.SetReadLimit(maxMessageSize)

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", "error", err)
			}
			logger.Debug("websocket disconnected")
			return
		}

		reply := s.answer(r, limiter, data)
		if reply.Error != "" {
			logger.Debug("websocket message rejected", "error", reply.Error)
		}

		if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
			return
		}
		if err := conn.WriteJSON(reply); err != nil {
			logger.Warn("websocket write failed", "error", err)
			return
		}
	}
}

func (s *Server) answer(r *http.Request, limiter *rate.Limiter, data []byte) wsMessage {
	if !limiter.Allow() {
		return wsMessage{Error: "rate limit exceeded"}
	}

	var sel domain.Selection
	if err := json.Unmarshal(data, &sel); err != nil {
		return wsMessage{Error: "invalid selection: " + err.Error()}
	}

	summary, err := s.dashboard.Update(r.Context(), sel, pipeline.SurfaceWS)
	if err != nil {
		s.logger.Error("live update failed", "error", err)
		return wsMessage{Error: err.Error()}
	}
	return wsMessage{Selection: &sel, Query: sel.Query().Encode(), Summary: &summary}
}
