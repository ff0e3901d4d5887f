// Package registry maps opaque connection ids to their live transport
// handles. It is the leaf dependency every component uses to address
// participants; it knows nothing about rooms or pairings.
package registry

import "sync"

// Event is a single outbound frame: an event name and an arbitrary payload.
type Event struct {
	Name string      `json:"event"`
	Data interface{} `json:"data,omitempty"`
}

// Sender is a live transport handle for one connection. Send must not block:
// implementations queue the event and report whether it was accepted.
type Sender interface {
	Send(ev Event) bool
	Close()
}

// Registry is the process-wide connection table.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]Sender
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{conns: make(map[string]Sender)}
}

// Add registers a connection under the given id.
func (r *Registry) Add(id string, s Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = s
}

// Remove drops the connection from the table. It does not close the sender;
// removal happens as part of transport-level teardown.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
}

// Send pushes an event to a single connection. It reports false when the
// connection is gone or its queue is full; callers treat both as "target
// unreachable" with no distinction.
func (r *Registry) Send(id string, ev Event) bool {
	r.mu.RLock()
	s, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	return s.Send(ev)
}

// Broadcast pushes an event to every connected client.
func (r *Registry) Broadcast(ev Event) {
	r.mu.RLock()
	senders := make([]Sender, 0, len(r.conns))
	for _, s := range r.conns {
		senders = append(senders, s)
	}
	r.mu.RUnlock()

	for _, s := range senders {
		s.Send(ev)
	}
}

// CloseConn forcibly closes the transport of a connection if it is still
// registered. Used when a room is deleted under its members.
func (r *Registry) CloseConn(id string) {
	r.mu.RLock()
	s, ok := r.conns[id]
	r.mu.RUnlock()
	if ok {
		s.Close()
	}
}

// Count returns the number of live connections.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.conns)
}
