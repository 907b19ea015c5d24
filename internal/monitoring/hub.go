package monitoring

import (
	"sync"

	"github.com/flowforge/dagflow/internal/domain"
)

// Hub fans out an execution's events to any number of live subscribers
// (the websocket stream in internal/httpapi/ws.go). It is purely a
// transport-layer convenience over the Observer contract; it never
// carries partial node output, only status/log events (spec §1
// Non-goals, SPEC_FULL §6).
type Hub struct {
	mu          sync.Mutex
	subscribers map[string]map[chan domain.Event]struct{}
	maxPerRun   int
}

func NewHub(maxSubscribersPerRun int) *Hub {
	if maxSubscribersPerRun <= 0 {
		maxSubscribersPerRun = 16
	}
	return &Hub{subscribers: make(map[string]map[chan domain.Event]struct{}), maxPerRun: maxSubscribersPerRun}
}

// Subscribe registers a new listener for executionID and returns the
// channel it will receive events on, plus an unsubscribe func. Returns
// ok=false if the run already has maxSubscribersPerRun listeners.
func (h *Hub) Subscribe(executionID string) (ch chan domain.Event, unsubscribe func(), ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, exists := h.subscribers[executionID]
	if !exists {
		set = make(map[chan domain.Event]struct{})
		h.subscribers[executionID] = set
	}
	if len(set) >= h.maxPerRun {
		return nil, nil, false
	}

	ch = make(chan domain.Event, 64)
	set[ch] = struct{}{}

	unsubscribe = func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if s, ok := h.subscribers[executionID]; ok {
			delete(s, ch)
			if len(s) == 0 {
				delete(h.subscribers, executionID)
			}
		}
		close(ch)
	}
	return ch, unsubscribe, true
}

// Publish fans event out to every subscriber of executionID, dropping
// it for any subscriber whose buffer is full rather than blocking.
func (h *Hub) Publish(executionID string, event domain.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[executionID] {
		select {
		case ch <- event:
		default:
		}
	}
}
