package session

import (
	"sync"

	"github.com/shubh-37/idea-processor/internal/store"
)

// Hub owns one controller per session id
type Hub struct {
	store store.Store
	ai    Generator
	opts  []Option

	mu          sync.Mutex
	controllers map[string]*Controller
}

func NewHub(st store.Store, ai Generator, opts ...Option) *Hub {
	return &Hub{
		store:       st,
		ai:          ai,
		opts:        opts,
		controllers: make(map[string]*Controller),
	}
}

// Get returns the controller for sessionID, creating it on first use
func (h *Hub) Get(sessionID string) *Controller {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.controllers[sessionID]
	if !ok {
		c = New(sessionID, h.store, h.ai, h.opts...)
		h.controllers[sessionID] = c
	}
	return c
}

// Lookup returns an existing controller without creating one
func (h *Hub) Lookup(sessionID string) (*Controller, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	c, ok := h.controllers[sessionID]
	return c, ok
}

// SessionIDs lists the sessions with a controller
func (h *Hub) SessionIDs() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	ids := make([]string, 0, len(h.controllers))
	for id := range h.controllers {
		ids = append(ids, id)
	}
	return ids
}

// Close closes every controller. Sessions stay as they are in the store.
func (h *Hub) Close() {
	h.mu.Lock()
	controllers := h.controllers
	h.controllers = make(map[string]*Controller)
	h.mu.Unlock()

	for _, c := range controllers {
		c.Close()
	}
}
