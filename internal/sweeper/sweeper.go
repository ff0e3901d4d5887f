// Package sweeper periodically evicts rooms past their inactivity lifetime.
// Public and private rooms run on independent schedules, since private rooms
// may warrant a different lifetime policy.
package sweeper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/jorgehenrrique/next-chat-server/internal/registry"
	"github.com/jorgehenrrique/next-chat-server/internal/relay"
	"github.com/jorgehenrrique/next-chat-server/internal/store"
)

// Schedule is the interval/lifetime pair for one room kind.
type Schedule struct {
	Interval time.Duration
	Lifetime time.Duration
}

// Sweeper drives the two eviction loops.
type Sweeper struct {
	store   *store.RoomStore
	relay   *relay.Relay
	public  Schedule
	private Schedule
	logger  zerolog.Logger
}

// New creates a sweeper over the given store and relay.
func New(st *store.RoomStore, rl *relay.Relay, public, private Schedule, logger zerolog.Logger) *Sweeper {
	return &Sweeper{
		store:   st,
		relay:   rl,
		public:  public,
		private: private,
		logger:  logger.With().Str("component", "sweeper").Logger(),
	}
}

// Start launches both sweep loops. They stop when ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) {
	go s.loop(ctx, false, s.public)
	go s.loop(ctx, true, s.private)
}

func (s *Sweeper) loop(ctx context.Context, isPrivate bool, sched Schedule) {
	ticker := time.NewTicker(sched.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep(isPrivate, sched.Lifetime)
		}
	}
}

// Sweep evicts every room of the given kind whose last activity is older
// than lifetime, notifies the evicted rooms' members, and broadcasts the
// refreshed room list once. A failure on one room never aborts the sweep of
// the others.
func (s *Sweeper) Sweep(isPrivate bool, lifetime time.Duration) {
	now := time.Now()
	evicted := 0
	for _, roomID := range s.store.ExpiredRooms(isPrivate, lifetime, now) {
		if s.evict(roomID, lifetime, now) {
			evicted++
		}
	}
	if evicted > 0 {
		s.logger.Info().Bool("private", isPrivate).Int("evicted", evicted).Msg("sweep completed")
	}

	// The refreshed list goes out even on an empty sweep; clients treat it
	// as a passive refresh tick.
	s.relay.BroadcastRoomList()
}

// evict removes a single candidate, re-checking its activity under the store
// lock, notifies its members and closes their connections, same as an
// explicit delete. Panics are contained so the remaining candidates still
// get processed.
func (s *Sweeper) evict(roomID string, lifetime time.Duration, now time.Time) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error().Str("room", roomID).Interface("panic", r).Msg("eviction failed")
			ok = false
		}
	}()

	members, evicted := s.store.EvictIfExpired(roomID, lifetime, now)
	if !evicted {
		return false
	}
	for _, id := range members {
		s.relay.ToConn(id, registry.Event{Name: "room deleted", Data: roomID})
		s.relay.CloseConn(id)
	}
	return true
}
