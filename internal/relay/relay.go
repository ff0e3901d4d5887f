// Package relay is the stateless fan-out of opaque payloads to addressed
// connections: one connection, a room's membership, or everyone.
package relay

import (
	"github.com/rs/zerolog"

	"github.com/jorgehenrrique/next-chat-server/internal/metrics"
	"github.com/jorgehenrrique/next-chat-server/internal/registry"
	"github.com/jorgehenrrique/next-chat-server/internal/store"
)

// Relay resolves addressing through the room store and pushes through the
// connection registry. It holds no state of its own.
type Relay struct {
	reg    *registry.Registry
	store  *store.RoomStore
	logger zerolog.Logger
}

// New creates a relay over the given registry and store.
func New(reg *registry.Registry, st *store.RoomStore, logger zerolog.Logger) *Relay {
	return &Relay{
		reg:    reg,
		store:  st,
		logger: logger.With().Str("component", "relay").Logger(),
	}
}

// ToRoom pushes an event to every currently connected member of a room and
// returns how many deliveries were accepted.
func (r *Relay) ToRoom(roomID string, ev registry.Event) int {
	delivered := 0
	for _, id := range r.store.Members(roomID) {
		if r.reg.Send(id, ev) {
			delivered++
		}
	}
	if delivered > 0 {
		metrics.MessagesRelayed.WithLabelValues("room").Inc()
	}
	return delivered
}

// ToConn delivers an event to a single connection if still connected;
// silently dropped otherwise. No acknowledgment contract exists: the sender
// cannot distinguish "delivered" from "target disconnected".
func (r *Relay) ToConn(id string, ev registry.Event) bool {
	return r.reg.Send(id, ev)
}

// CloseConn forcibly closes a connection's transport. Used after the final
// notice to a member of a deleted room has been queued.
func (r *Relay) CloseConn(id string) {
	r.reg.CloseConn(id)
}

// Broadcast pushes an event to every connected client.
func (r *Relay) Broadcast(ev registry.Event) {
	r.reg.Broadcast(ev)
}

// RoomListEvent builds a "room list" event from the store's current state.
func (r *Relay) RoomListEvent() registry.Event {
	return registry.Event{Name: "room list", Data: r.store.List()}
}

// BroadcastRoomList pushes the current room list to all connections so
// clients' listings stay live.
func (r *Relay) BroadcastRoomList() {
	r.Broadcast(r.RoomListEvent())
}
