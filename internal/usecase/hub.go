package usecase

import (
	"sync"

	domrepo "ChartCast/internal/domain/repository"
)

// HubKey identifies one chart stream.
func HubKey(entity string, period domrepo.Period) string {
	return entity + ":" + string(period)
}

// Hub fans out forecast-ready notifications to stream subscribers.
type Hub struct {
	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func NewHub() *Hub {
	return &Hub{subs: make(map[string]map[chan struct{}]struct{})}
}

// Subscribe returns a channel signalled on every Notify for key and a
// function that unsubscribes. Notifications coalesce while unread.
func (h *Hub) Subscribe(key string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	h.mu.Lock()
	set, ok := h.subs[key]
	if !ok {
		set = make(map[chan struct{}]struct{})
		h.subs[key] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[key], ch)
			if len(h.subs[key]) == 0 {
				delete(h.subs, key)
			}
		})
	}
}

// Notify signals all subscribers of key and returns how many there were.
func (h *Hub) Notify(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[key] {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	return len(h.subs[key])
}

// Subscribers returns the number of subscribers for key.
func (h *Hub) Subscribers(key string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs[key])
}
