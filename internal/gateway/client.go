package gateway

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/jorgehenrrique/next-chat-server/internal/registry"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
	sendBuffer = 256
)

// client is one live websocket connection. It implements registry.Sender:
// outbound events are queued on a buffered channel drained by writePump, so
// Send never blocks an event handler.
type client struct {
	id      string
	conn    *websocket.Conn
	send    chan []byte
	done    chan struct{}
	gw      *Gateway
	limiter *rateLimiter
	closing sync.Once
	logger  zerolog.Logger
}

// Send queues an event for delivery. It reports false when the connection is
// shutting down or its queue is full; the frame is dropped either way.
func (c *client) Send(ev registry.Event) bool {
	data, err := json.Marshal(ev)
	if err != nil {
		c.logger.Error().Err(err).Str("event", ev.Name).Msg("marshal outbound event")
		return false
	}
	select {
	case <-c.done:
		return false
	case c.send <- data:
		return true
	default:
		c.logger.Warn().Str("event", ev.Name).Msg("send buffer full, dropping frame")
		return false
	}
}

// Close initiates teardown. The write pump drains queued frames, closes the
// socket, and the read pump then runs the usual disconnect cleanup.
func (c *client) Close() {
	c.closing.Do(func() {
		close(c.done)
	})
}

func (c *client) readPump() {
	defer func() {
		c.gw.disconnect(c)
		c.Close()
	}()

	c.conn.SetReadLimit(c.gw.opts.MessageLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Warn().Err(err).Msg("unexpected close")
			}
			return
		}

		if !c.limiter.allow() {
			c.logger.Warn().Msg("rate limit exceeded, discarding event")
			continue
		}

		var frame inboundFrame
		if err := json.Unmarshal(raw, &frame); err != nil || frame.Event == "" {
			c.logger.Debug().Msg("malformed frame discarded")
			continue
		}
		c.gw.dispatch(c, frame.Event, frame.Data)
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
		_ = c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			// Flush whatever is queued (a "room deleted" notice, say)
			// before the close frame goes out.
			for {
				select {
				case msg := <-c.send:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
						return
					}
				default:
					_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
					_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
					return
				}
			}
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
