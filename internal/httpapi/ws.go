package httpapi

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/flowforge/dagflow/internal/domain"
)

// upgrader is permissive about origin: this transport has no
// authentication layer (spec §1 Non-goals explicitly excludes
// authn/authz), so origin-checking would be a false sense of security.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// handleStream relays an execution's status/log events to a websocket
// client (SPEC_FULL §6 "Live observer stream"). It never streams
// partial node output — only the same Event values the Observer
// contract already defines.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	events, unsubscribe, ok := s.mgr.Subscribe(id)
	if !ok {
		writeError(w, http.StatusNotFound, "unknown execution or too many subscribers")
		return
	}
	defer unsubscribe()

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	for {
		select {
		case ev, open := <-events:
			if !open {
				return
			}
			if err := conn.WriteJSON(wireEvent(ev)); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}

type wireEventPayload struct {
	Kind   string            `json:"kind"`
	NodeID string            `json:"node_id,omitempty"`
	Status domain.NodeStatus `json:"status,omitempty"`
	Log    *domain.LogEntry  `json:"log,omitempty"`
}

func wireEvent(ev domain.Event) wireEventPayload {
	if ev.Kind == domain.EventLog {
		return wireEventPayload{Kind: "log", Log: &ev.Log}
	}
	return wireEventPayload{Kind: "node_status", NodeID: ev.NodeID, Status: ev.Status}
}
