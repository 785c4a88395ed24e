// Package push pkg/push/registry.go holds the subscriber registry. The
// registry is an explicitly owned object handed to the gateway at
// construction, not a process-wide singleton, so tests can run any number of
// isolated registries in one process.
package push

import (
	"sync"

	"github.com/gorilla/websocket"
)

type client struct {
	conn *websocket.Conn
	send chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// enqueue hands a frame to the client's writer. Best-effort: a client whose
// buffer is full misses the frame; dead connections are reaped by the ping
// cycle.
func (c *client) enqueue(payload []byte) {
	select {
	case c.send <- payload:
	default:
	}
}

func (c *client) close() {
	c.closeOnce.Do(func() {
		close(c.done)
	})
}

// Registry is the concurrency-safe set of live subscriber connections.
type Registry struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[*client]struct{}),
	}
}

func (r *Registry) add(c *client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients[c] = struct{}{}
}

// remove reports whether the client was still registered, so that a
// concurrent read-side failure and write-side failure prune only once.
func (r *Registry) remove(c *client) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.clients[c]; !ok {
		return false
	}

	delete(r.clients, c)

	return true
}

func (r *Registry) snapshot() []*client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*client, 0, len(r.clients))
	for c := range r.clients {
		clients = append(clients, c)
	}

	return clients
}

// Count reports the number of connected subscribers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.clients)
}
