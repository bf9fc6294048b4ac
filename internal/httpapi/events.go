package httpapi

import (
	"sync"

	"github.com/mmakana/dabus/internal/skill"
)

// Hub fans turn events out to websocket subscribers. Publishing never
// blocks the dispatcher: slow subscribers lose events instead.
type Hub struct {
	mu   sync.Mutex
	subs map[int]chan skill.TurnEvent
	next int
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int]chan skill.TurnEvent)}
}

// PublishTurn implements skill.EventSink.
func (h *Hub) PublishTurn(event skill.TurnEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe registers a buffered event channel and returns it with its
// cancel function. Cancel closes the channel.
func (h *Hub) Subscribe(buffer int) (<-chan skill.TurnEvent, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	ch := make(chan skill.TurnEvent, buffer)

	h.mu.Lock()
	id := h.next
	h.next++
	h.subs[id] = ch
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if _, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(ch)
		}
	}
	return ch, cancel
}

func (h *Hub) subscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
