// Package monitoring redesigns the teacher's direct-callback Observer
// (internal/infrastructure/monitoring/observer.go in the teacher repo)
// into the bounded, non-blocking queue spec §9 asks for: "Preferred
// redesign: a bounded queue of events drained by the Manager. Callback
// must never block or fail the node."
package monitoring

import "github.com/flowforge/dagflow/internal/domain"

// QueueObserver buffers events from a single execution's Context.
// Notify never blocks: once the buffer is full, further events are
// dropped rather than stalling the node that raised them.
type QueueObserver struct {
	events chan domain.Event
}

func NewQueueObserver(bufferSize int) *QueueObserver {
	if bufferSize <= 0 {
		bufferSize = 256
	}
	return &QueueObserver{events: make(chan domain.Event, bufferSize)}
}

func (q *QueueObserver) Notify(e domain.Event) {
	select {
	case q.events <- e:
	default:
		// Buffer full: drop rather than block the node (spec §9).
	}
}

// Events exposes the channel for a drain loop to range over.
func (q *QueueObserver) Events() <-chan domain.Event {
	return q.events
}
