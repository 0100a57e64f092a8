package session

import "sync"

// subscriberBuffer is the per-subscriber queue length.
const subscriberBuffer = 16

// Hub fans updates out to any number of subscribers. A subscriber that falls
// behind misses intermediate updates; every Update carries the full state,
// so the next one it receives is still complete.
type Hub struct {
	// mu protects subs, last and closed.
	mu sync.Mutex
	// subs maps subscription ids to their channels.
	subs map[int]chan Update
	// nextID is the id of the next subscription.
	nextID int
	// last is the latest published update, replayed to new subscribers.
	last *Update
	// closed is set once Close was called.
	closed bool
}

// NewHub returns an empty hub.
func NewHub() *Hub {
	return &Hub{
		subs: make(map[int]chan Update),
	}
}

// Subscribe returns a channel of updates, primed with the latest one, and a
// function that cancels the subscription. The channel is closed on cancel or
// when the hub closes.
func (h *Hub) Subscribe() (<-chan Update, func()) {
	ch := make(chan Update, subscriberBuffer)

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		close(ch)

		return ch, func() {}
	}

	if h.last != nil {
		ch <- *h.last
	}

	id := h.nextID
	h.nextID++
	h.subs[id] = ch

	var once sync.Once

	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()

			if sub, ok := h.subs[id]; ok {
				delete(h.subs, id)
				close(sub)
			}
		})
	}
}

// Publish delivers u to every subscriber without blocking.
func (h *Hub) Publish(u Update) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.last = &u

	for _, ch := range h.subs {
		select {
		case ch <- u:
		default: // drop if slow
		}
	}
}

// Close closes every subscriber channel. Later subscriptions get a closed channel.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}

	h.closed = true

	for id, ch := range h.subs {
		delete(h.subs, id)
		close(ch)
	}
}
