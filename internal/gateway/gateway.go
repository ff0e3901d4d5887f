// Package gateway is the externally facing entry point: it upgrades
// websocket connections, decodes inbound event frames, and dispatches them
// to the room store, matchmaker, and relay.
package gateway

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jorgehenrrique/next-chat-server/internal/crypto"
	"github.com/jorgehenrrique/next-chat-server/internal/match"
	"github.com/jorgehenrrique/next-chat-server/internal/metrics"
	"github.com/jorgehenrrique/next-chat-server/internal/registry"
	"github.com/jorgehenrrique/next-chat-server/internal/relay"
	"github.com/jorgehenrrique/next-chat-server/internal/store"
)

// Options bound what a single connection may push at the server.
type Options struct {
	MessageLimit int64
	RateBurst    int
	RateRefill   time.Duration
}

// Gateway routes inbound events to the coordination components and owns
// connection lifecycle, including the synchronous cleanup on disconnect.
type Gateway struct {
	reg      *registry.Registry
	store    *store.RoomStore
	match    *match.Matchmaker
	relay    *relay.Relay
	opts     Options
	upgrader websocket.Upgrader
	logger   zerolog.Logger
}

// New creates a gateway over the given components.
func New(reg *registry.Registry, st *store.RoomStore, mm *match.Matchmaker, rl *relay.Relay, opts Options, logger zerolog.Logger) *Gateway {
	return &Gateway{
		reg:   reg,
		store: st,
		match: mm,
		relay: rl,
		opts:  opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browsers reach the server from arbitrary origins; access
			// control happens per room, not per origin.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger.With().Str("component", "gateway").Logger(),
	}
}

// ServeWS upgrades the request and runs the connection's pumps. It returns
// when the connection dies and all derived state has been cleaned up.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.logger.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	c := &client{
		id:      crypto.NewConnectionID(),
		conn:    conn,
		send:    make(chan []byte, sendBuffer),
		done:    make(chan struct{}),
		gw:      g,
		limiter: newRateLimiter(g.opts.RateBurst, g.opts.RateRefill),
	}
	c.logger = g.logger.With().Str("conn", c.id).Logger()

	g.reg.Add(c.id, c)
	metrics.ConnectionsActive.Inc()
	c.logger.Info().Str("remote", r.RemoteAddr).Msg("connected")

	go c.writePump()
	c.readPump()
}

// disconnect clears every trace of a dead connection: matchmaker state and
// capability flag, room memberships, and the registry entry. It completes
// before the read pump returns so no component holds a dangling reference.
func (g *Gateway) disconnect(c *client) {
	g.reg.Remove(c.id)
	g.match.Disconnect(c.id)
	for _, mc := range g.store.DisconnectCleanup(c.id) {
		g.relay.ToRoom(mc.RoomID, registry.Event{Name: "user count", Data: mc.Count})
	}
	metrics.ConnectionsActive.Dec()
	c.logger.Info().Msg("disconnected")
}
