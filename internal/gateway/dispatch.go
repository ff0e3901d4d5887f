package gateway

import (
	"encoding/json"
	"errors"

	"github.com/jorgehenrrique/next-chat-server/internal/crypto"
	"github.com/jorgehenrrique/next-chat-server/internal/models"
	"github.com/jorgehenrrique/next-chat-server/internal/registry"
	"github.com/jorgehenrrique/next-chat-server/internal/store"
)

// inboundFrame is the wire shape of every client event.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type createRoomRequest struct {
	Name      string `json:"name"`
	IsPrivate bool   `json:"isPrivate"`
	Password  string `json:"password"`
	CreatorID string `json:"creatorId"`
}

type roomCreated struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"isPrivate"`
}

type joinPrivateRequest struct {
	RoomID   string `json:"roomId"`
	Password string `json:"password"`
}

type deleteRoomRequest struct {
	RoomID  string `json:"roomId"`
	UserID  string `json:"userId"`
	IsAdmin bool   `json:"isAdmin"`
}

type videoSignalRequest struct {
	Signal json.RawMessage `json:"signal"`
	To     string          `json:"to"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// dispatch routes one decoded frame. Handlers run on the connection's read
// goroutine, so events from a single connection are processed in the order
// sent; cross-connection ordering is whatever the transport delivers.
func (g *Gateway) dispatch(c *client, event string, data json.RawMessage) {
	switch event {
	case "get rooms":
		c.Send(g.relay.RoomListEvent())

	case "create room":
		g.handleCreateRoom(c, data)

	case "get room":
		g.handleGetRoom(c, data)

	case "join private room":
		g.handleJoinPrivateRoom(c, data)

	case "join room":
		var roomID string
		if decode(c, data, &roomID) {
			if count, ok := g.store.Join(c.id, roomID); ok {
				g.relay.ToRoom(roomID, registry.Event{Name: "user count", Data: count})
			}
		}

	case "leave room":
		var roomID string
		if decode(c, data, &roomID) {
			if count, ok := g.store.Leave(c.id, roomID); ok {
				g.relay.ToRoom(roomID, registry.Event{Name: "user count", Data: count})
			}
		}

	case "message":
		g.handleMessage(c, data)

	case "delete room":
		g.handleDeleteRoom(c, data)

	case "join random chat":
		g.match.Enqueue(c.id)

	case "leave random chat":
		g.match.Leave(c.id)

	case "next partner":
		g.match.Next(c.id)

	case "random message":
		g.match.RelayMessage(c.id, data)

	case "video enabled":
		g.match.SetVideo(c.id, true)

	case "video disabled":
		g.match.SetVideo(c.id, false)

	case "video signal":
		var req videoSignalRequest
		if decode(c, data, &req) && req.To != "" {
			g.match.RelayVideoSignal(c.id, req.To, req.Signal)
		}

	default:
		c.logger.Debug().Str("event", event).Msg("unknown event discarded")
	}
}

func (g *Gateway) handleCreateRoom(c *client, data json.RawMessage) {
	var req createRoomRequest
	if !decode(c, data, &req) {
		return
	}

	room, err := g.store.Create(req.Name, req.IsPrivate, req.Password, req.CreatorID)
	switch {
	case err == nil:
		g.relay.BroadcastRoomList()
		c.Send(registry.Event{Name: "room created", Data: roomCreated{ID: room.ID, Name: room.Name, IsPrivate: room.IsPrivate}})
	case errors.Is(err, store.ErrNameConflict):
		c.Send(registry.Event{Name: "room exists", Data: req.Name})
	case errors.Is(err, store.ErrCapacityExceeded):
		c.Send(registry.Event{Name: "room limit reached"})
	default:
		c.logger.Error().Err(err).Msg("create room failed")
		c.Send(registry.Event{Name: "error", Data: errorPayload{Message: "create room failed"}})
	}
}

func (g *Gateway) handleGetRoom(c *client, data json.RawMessage) {
	var roomID string
	if !decode(c, data, &roomID) {
		return
	}
	room, err := g.store.Get(roomID)
	if err != nil {
		c.Send(registry.Event{Name: "room info", Data: nil})
		return
	}
	c.Send(registry.Event{Name: "room info", Data: room})
}

func (g *Gateway) handleJoinPrivateRoom(c *client, data json.RawMessage) {
	var req joinPrivateRequest
	if !decode(c, data, &req) {
		return
	}
	// Store errors (missing room, public room) all collapse to a failed
	// join from the client's point of view.
	ok, err := g.store.VerifyAccess(req.RoomID, req.Password)
	c.Send(registry.Event{Name: "join result", Data: err == nil && ok})
}

func (g *Gateway) handleMessage(c *client, data json.RawMessage) {
	var msg models.Message
	if !decode(c, data, &msg) || msg.RoomID == "" {
		return
	}
	if msg.ID == "" {
		msg.ID = crypto.NewMessageID()
	}
	// A chat message counts as room activity; other relays do not.
	g.store.RecordActivity(msg.RoomID)
	g.relay.ToRoom(msg.RoomID, registry.Event{Name: "message", Data: msg})
}

func (g *Gateway) handleDeleteRoom(c *client, data json.RawMessage) {
	var req deleteRoomRequest
	if !decode(c, data, &req) {
		return
	}

	members, err := g.store.Delete(req.RoomID, req.UserID, req.IsAdmin)
	if err != nil {
		c.Send(registry.Event{Name: "error", Data: errorPayload{Message: err.Error()}})
		return
	}

	for _, id := range members {
		g.relay.ToConn(id, registry.Event{Name: "room deleted", Data: req.RoomID})
		g.reg.CloseConn(id)
	}
	g.relay.BroadcastRoomList()
}

// decode unmarshals an event payload, discarding the frame on failure.
func decode(c *client, data json.RawMessage, v interface{}) bool {
	if err := json.Unmarshal(data, v); err != nil {
		c.logger.Debug().Err(err).Msg("malformed payload discarded")
		return false
	}
	return true
}
