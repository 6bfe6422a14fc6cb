package stream

import (
	"sync"

	julia "github.com/marben/juliaset"
)

// Hub fans engine events out to any number of watchers. It implements
// julia.Listener and julia.FaultListener.
//
// Each watcher has a bounded queue. A full queue drops intermediate progress;
// lifecycle messages evict the oldest queued message instead, so a slow
// watcher still sees every run start and complete.
type Hub struct {
	depth int

	mu       sync.Mutex
	watchers map[chan Message]struct{}
	last     Message // latest resized message, replayed to new watchers
}

// NewHub returns a hub whose watcher queues hold depth messages.
func NewHub(depth int) *Hub {
	return &Hub{
		depth:    max(1, depth),
		watchers: make(map[chan Message]struct{}),
	}
}

// Watch registers a watcher. The returned channel is closed by stop.
func (h *Hub) Watch() (msgs <-chan Message, stop func()) {
	ch := make(chan Message, h.depth)

	h.mu.Lock()
	h.watchers[ch] = struct{}{}
	if h.last.Type != "" {
		ch <- h.last
	}
	n := len(h.watchers)
	h.mu.Unlock()

	julia.Logger().Debug("stream: watcher joined", "watchers", n)

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.watchers, ch)
			n := len(h.watchers)
			close(ch)
			h.mu.Unlock()
			julia.Logger().Debug("stream: watcher left", "watchers", n)
		})
	}
}

// Watchers returns the number of registered watchers.
func (h *Hub) Watchers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.watchers)
}

func (h *Hub) publish(m Message, droppable bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if m.Type == TypeResized {
		h.last = m
	}
	for ch := range h.watchers {
		select {
		case ch <- m:
			continue
		default:
		}
		if droppable {
			continue
		}
		// h.mu is held, so no other sender can refill the freed slot.
		select {
		case <-ch:
		default:
		}
		ch <- m
	}
}

func (h *Hub) Resized(ev julia.ResizedEvent) { h.publish(resized(ev), false) }

func (h *Hub) Started(ev julia.StartedEvent) { h.publish(started(ev), false) }

func (h *Hub) Iterated(ev julia.IteratedEvent) { h.publish(iterated(ev), !ev.Done) }

func (h *Hub) Completed(ev julia.CompletedEvent) { h.publish(completed(ev), false) }

func (h *Hub) PointFault(f julia.PointFault) { h.publish(fault(f), true) }

var (
	_ julia.Listener      = (*Hub)(nil)
	_ julia.FaultListener = (*Hub)(nil)
)
