package scan

import "sync"

// Handle is the registration token for I/O-interrupt scanning. The driver
// hands out one handle per card; the scanner subscribes to it and the
// driver triggers it whenever the card's inputs change, so records wired
// for interrupt scanning are processed without polling.
type Handle struct {
	mu   sync.Mutex
	subs []chan struct{}
}

func NewHandle() *Handle {
	return &Handle{}
}

// Subscribe registers a new listener. The returned channel carries one
// pending notification at most; coalescing repeated triggers is fine
// because a scan reads current hardware state, not an event payload.
func (h *Handle) Subscribe() <-chan struct{} {
	ch := make(chan struct{}, 1)

	h.mu.Lock()
	h.subs = append(h.subs, ch)
	h.mu.Unlock()

	return ch
}

// Trigger notifies all subscribers without blocking. A subscriber that
// already has a notification pending is skipped.
func (h *Handle) Trigger() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, ch := range h.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// SubscriberCount returns the number of registered listeners.
func (h *Handle) SubscriberCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
