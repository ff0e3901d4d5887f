// Package match pairs waiting connections into 1:1 random chats and relays
// payloads between matched partners.
package match

import (
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jorgehenrrique/next-chat-server/internal/metrics"
	"github.com/jorgehenrrique/next-chat-server/internal/registry"
)

// Pusher delivers an event to a single connection. *registry.Registry
// satisfies it; tests substitute a recorder.
type Pusher interface {
	Send(id string, ev registry.Event) bool
}

// Matched is the payload of a "chat matched" event.
type Matched struct {
	PartnerID string `json:"partnerId"`
	WithVideo bool   `json:"withVideo"`
}

// VideoSignal is the payload of a relayed "video signal" event.
type VideoSignal struct {
	Signal interface{} `json:"signal"`
	From   string      `json:"from"`
}

// Matchmaker holds the waiting queue and the active pairing table. Both are
// guarded by one mutex; notifications are pushed after the lock is released.
type Matchmaker struct {
	mu     sync.Mutex
	queue  []string        // waiting connections in arrival order
	queued map[string]bool // membership index for queue
	video  map[string]bool // video capability flags, queued or not
	pairs  map[string]string
	push   Pusher
	logger zerolog.Logger
}

// New creates an empty matchmaker.
func New(push Pusher, logger zerolog.Logger) *Matchmaker {
	return &Matchmaker{
		queued: make(map[string]bool),
		video:  make(map[string]bool),
		pairs:  make(map[string]string),
		push:   push,
		logger: logger.With().Str("component", "match").Logger(),
	}
}

type pair struct {
	a, b      string
	withVideo bool
}

// Enqueue adds the connection to the waiting queue, unless it is already
// queued or paired, and runs a matching pass.
func (m *Matchmaker) Enqueue(id string) {
	m.mu.Lock()
	if m.queued[id] || m.pairs[id] != "" {
		m.mu.Unlock()
		return
	}
	m.queue = append(m.queue, id)
	m.queued[id] = true
	metrics.QueueDepth.Set(float64(len(m.queue)))
	pairs := m.matchLocked()
	m.mu.Unlock()

	m.notifyMatches(pairs)
}

// Leave clears the connection's random chat state: the partner, if any, gets
// exactly one "partner left" event and both pairing directions are removed;
// the queue entry is dropped if present. Calling it on an already-idle
// connection is a no-op.
func (m *Matchmaker) Leave(id string) {
	m.mu.Lock()
	partner := m.pairs[id]
	if partner != "" {
		delete(m.pairs, id)
		delete(m.pairs, partner)
	}
	m.dequeueLocked(id)
	m.mu.Unlock()

	if partner != "" {
		m.push.Send(partner, registry.Event{Name: "partner left"})
	}
}

// Next is leave followed by an immediate re-enqueue with the connection's
// last known video preference.
func (m *Matchmaker) Next(id string) {
	m.Leave(id)
	m.Enqueue(id)
}

// SetVideo updates the connection's video capability flag. Toggling while
// queued re-runs matching, since the connection moves between the video and
// non-video sub-queues. Toggling while paired has no effect on the current
// pairing.
func (m *Matchmaker) SetVideo(id string, enabled bool) {
	m.mu.Lock()
	if enabled {
		m.video[id] = true
	} else {
		delete(m.video, id)
	}
	var pairs []pair
	if m.queued[id] {
		pairs = m.matchLocked()
	}
	m.mu.Unlock()

	m.notifyMatches(pairs)
}

// RelayMessage forwards a payload to the sender's active partner. If the
// sender is not paired the payload is silently dropped: a stale UI state,
// not an error.
func (m *Matchmaker) RelayMessage(fromID string, payload interface{}) {
	m.mu.Lock()
	partner := m.pairs[fromID]
	m.mu.Unlock()
	if partner == "" {
		return
	}
	if m.push.Send(partner, registry.Event{Name: "random message", Data: payload}) {
		metrics.MessagesRelayed.WithLabelValues("random").Inc()
	}
}

// RelayVideoSignal forwards an opaque signaling payload to the addressed
// connection, tagged with the sender. The payload's structure is never
// interpreted.
func (m *Matchmaker) RelayVideoSignal(fromID, toID string, signal interface{}) {
	if m.push.Send(toID, registry.Event{Name: "video signal", Data: VideoSignal{Signal: signal, From: fromID}}) {
		metrics.MessagesRelayed.WithLabelValues("signal").Inc()
	}
}

// PartnerOf returns the active partner of a connection, if any.
func (m *Matchmaker) PartnerOf(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	partner := m.pairs[id]
	return partner, partner != ""
}

// Disconnect clears all matchmaker state for a dead connection, capability
// flag included.
func (m *Matchmaker) Disconnect(id string) {
	m.Leave(id)
	m.mu.Lock()
	delete(m.video, id)
	m.mu.Unlock()
}

func (m *Matchmaker) dequeueLocked(id string) {
	if !m.queued[id] {
		return
	}
	delete(m.queued, id)
	for i, qid := range m.queue {
		if qid == id {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			break
		}
	}
	metrics.QueueDepth.Set(float64(len(m.queue)))
}

// matchLocked partitions the queue into video and non-video sub-queues,
// preserving arrival order, and pairs the earliest waiters within each.
// The two sub-queues are never cross-matched: a lone video-capable
// participant waits until another video-capable one arrives, indefinitely
// if need be. Deliberate policy carried over from the original, not a bug.
func (m *Matchmaker) matchLocked() []pair {
	var videoQ, normalQ []string
	for _, id := range m.queue {
		if m.video[id] {
			videoQ = append(videoQ, id)
		} else {
			normalQ = append(normalQ, id)
		}
	}

	var pairs []pair
	for len(videoQ) >= 2 {
		pairs = append(pairs, pair{a: videoQ[0], b: videoQ[1], withVideo: true})
		videoQ = videoQ[2:]
	}
	for len(normalQ) >= 2 {
		pairs = append(pairs, pair{a: normalQ[0], b: normalQ[1], withVideo: false})
		normalQ = normalQ[2:]
	}

	for _, p := range pairs {
		m.dequeueLocked(p.a)
		m.dequeueLocked(p.b)
		m.pairs[p.a] = p.b
		m.pairs[p.b] = p.a
	}
	return pairs
}

func (m *Matchmaker) notifyMatches(pairs []pair) {
	for _, p := range pairs {
		m.push.Send(p.a, registry.Event{Name: "chat matched", Data: Matched{PartnerID: p.b, WithVideo: p.withVideo}})
		m.push.Send(p.b, registry.Event{Name: "chat matched", Data: Matched{PartnerID: p.a, WithVideo: p.withVideo}})
		metrics.MatchesMade.WithLabelValues(strconv.FormatBool(p.withVideo)).Inc()
		m.logger.Debug().Str("a", p.a).Str("b", p.b).Bool("video", p.withVideo).Msg("pair matched")
	}
}
