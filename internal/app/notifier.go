package app

import (
	"sync"
	"time"

	"academy-service/internal/domain"
	"github.com/google/uuid"
)

// Hub is the in-process notification sink. Each student has a set of
// subscriber channels (websocket feeds, tests); Emit never blocks the
// emitting request handler.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan domain.Notification]struct{}
	clock       func() time.Time
	newID       func() string
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan domain.Notification]struct{}),
		clock:       time.Now,
		newID:       func() string { return uuid.NewString() },
	}
}

// Emit delivers a notification to every subscriber of the student. Slow
// consumers lose their oldest buffered event rather than stalling delivery.
func (h *Hub) Emit(studentID, kind string, payload map[string]any) {
	n := domain.Notification{
		ID:        h.newID(),
		StudentID: studentID,
		Kind:      kind,
		Payload:   payload,
		CreatedAt: h.clock(),
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subscribers[studentID] {
		select {
		case ch <- n:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- n:
			default:
			}
		}
	}
}

// Subscribe returns a channel of the student's notifications. The caller
// must invoke the returned cancel function to avoid leaks.
func (h *Hub) Subscribe(studentID string) (<-chan domain.Notification, func()) {
	ch := make(chan domain.Notification, 16)

	h.mu.Lock()
	set, ok := h.subscribers[studentID]
	if !ok {
		set = make(map[chan domain.Notification]struct{})
		h.subscribers[studentID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subscribers[studentID]; ok {
			if _, ok := set[ch]; ok {
				delete(set, ch)
				close(ch)
			}
			if len(set) == 0 {
				delete(h.subscribers, studentID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}
