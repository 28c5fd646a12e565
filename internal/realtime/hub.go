package realtime

import (
	"sync"

	"github.com/google/uuid"
)

type subscriber struct {
	id      uuid.UUID
	channel string
	out     chan Event
}

// Hub fans events out to in-process SSE subscribers. Slow subscribers are
// skipped rather than blocking the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]map[uuid.UUID]*subscriber
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[uuid.UUID]*subscriber)}
}

// Subscribe registers a listener on one channel and returns the event stream
// plus an unsubscribe func. The stream buffers a handful of events.
func (h *Hub) Subscribe(channel string) (<-chan Event, func()) {
	sub := &subscriber{
		id:      uuid.New(),
		channel: channel,
		out:     make(chan Event, 16),
	}
	h.mu.Lock()
	if h.subs[channel] == nil {
		h.subs[channel] = make(map[uuid.UUID]*subscriber)
	}
	h.subs[channel][sub.id] = sub
	h.mu.Unlock()

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if set, ok := h.subs[channel]; ok {
			if _, live := set[sub.id]; live {
				delete(set, sub.id)
				close(sub.out)
			}
			if len(set) == 0 {
				delete(h.subs, channel)
			}
		}
	}
	return sub.out, unsubscribe
}

// Publish delivers the event to every subscriber of its channel.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs[ev.Channel] {
		select {
		case sub.out <- ev:
		default:
		}
	}
}
