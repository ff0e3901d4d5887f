// Package store owns the in-memory room table: existence, membership and
// metadata. All state is process-lifetime only; there is no persistence.
package store

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jorgehenrrique/next-chat-server/internal/crypto"
	"github.com/jorgehenrrique/next-chat-server/internal/metrics"
	"github.com/jorgehenrrique/next-chat-server/internal/models"
)

// Expected, recoverable failures. They are reported to the requesting
// connection only and never crash the process.
var (
	ErrNameConflict     = errors.New("room name already exists")
	ErrCapacityExceeded = errors.New("room limit reached")
	ErrRoomNotFound     = errors.New("room not found")
	ErrNotPrivate       = errors.New("room is not private")
	ErrForbidden        = errors.New("not allowed to delete room")
	ErrProtectedRoom    = errors.New("the global room cannot be deleted")
)

// PasswordHasher is the opaque one-way hash capability used for private room
// passwords. Hash may block; the store never holds its lock across a call.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Compare(plaintext, hash string) bool
}

// Limits are the configured per-kind room capacity limits.
type Limits struct {
	Public  int
	Private int
}

// MemberCount reports the member count of a room after a membership change.
type MemberCount struct {
	RoomID string
	Count  int
}

type room struct {
	id           string
	name         string
	isPrivate    bool
	passwordHash string // empty for public rooms and passwordless private rooms
	creatorID    string
	lastActivity time.Time
	members      map[string]struct{}
}

func (r *room) view() models.Room {
	return models.Room{
		ID:        r.id,
		Name:      r.name,
		IsPrivate: r.isPrivate,
		CreatorID: r.creatorID,
	}
}

// RoomStore is the single source of truth for rooms. Every mutation happens
// under one mutex so individual operations stay atomic with respect to each
// other, matching the cooperative scheduling of the original implementation.
type RoomStore struct {
	mu     sync.RWMutex
	rooms  map[string]*room
	limits Limits
	hasher PasswordHasher
	logger zerolog.Logger
}

// New creates a room store with the global room pre-seeded.
func New(limits Limits, hasher PasswordHasher, logger zerolog.Logger) *RoomStore {
	s := &RoomStore{
		rooms:  make(map[string]*room),
		limits: limits,
		hasher: hasher,
		logger: logger.With().Str("component", "store").Logger(),
	}
	s.rooms[models.GlobalRoomID] = &room{
		id:           models.GlobalRoomID,
		name:         models.GlobalRoomID,
		isPrivate:    false,
		lastActivity: time.Now(),
		members:      make(map[string]struct{}),
	}
	metrics.RoomsActive.WithLabelValues("public").Set(1)
	return s
}

// List returns all rooms partitioned into public and private sets, plus the
// configured limits. No side effects.
func (s *RoomStore) List() models.RoomList {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := models.RoomList{
		PublicRooms:  []models.Room{},
		PrivateRooms: []models.Room{},
		PublicLimit:  s.limits.Public,
		PrivateLimit: s.limits.Private,
	}
	for _, r := range s.rooms {
		if r.isPrivate {
			list.PrivateRooms = append(list.PrivateRooms, r.view())
		} else {
			list.PublicRooms = append(list.PublicRooms, r.view())
		}
	}
	return list
}

// checkCreateLocked validates name uniqueness and capacity. Callers hold the
// lock. The name check runs against public rooms only: private rooms are
// reached by direct link, so they may share names freely.
func (s *RoomStore) checkCreateLocked(name string, isPrivate bool) error {
	for _, r := range s.rooms {
		if !r.isPrivate && r.name == name {
			return ErrNameConflict
		}
	}
	limit, count := s.limits.Public, 0
	if isPrivate {
		limit = s.limits.Private
	}
	for _, r := range s.rooms {
		if r.isPrivate == isPrivate {
			count++
		}
	}
	if count >= limit {
		return ErrCapacityExceeded
	}
	return nil
}

// Create adds a new room and returns its public view. The password hash is
// computed outside the lock; existence and capacity are re-validated after
// the hash resolves, since two concurrent creates with the same name could
// otherwise both pass the pre-check.
func (s *RoomStore) Create(name string, isPrivate bool, password, creatorID string) (models.Room, error) {
	s.mu.Lock()
	if err := s.checkCreateLocked(name, isPrivate); err != nil {
		s.mu.Unlock()
		return models.Room{}, err
	}
	s.mu.Unlock()

	var passwordHash string
	if isPrivate && password != "" {
		hash, err := s.hasher.Hash(password)
		if err != nil {
			// No partial state: the room is never created without its
			// password hash resolved.
			return models.Room{}, fmt.Errorf("hash room password: %w", err)
		}
		passwordHash = hash
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkCreateLocked(name, isPrivate); err != nil {
		return models.Room{}, err
	}

	r := &room{
		id:           crypto.NewRoomID(),
		name:         name,
		isPrivate:    isPrivate,
		passwordHash: passwordHash,
		creatorID:    creatorID,
		lastActivity: time.Now(),
		members:      make(map[string]struct{}),
	}
	s.rooms[r.id] = r

	kind := roomKind(isPrivate)
	metrics.RoomsActive.WithLabelValues(kind).Inc()
	metrics.RoomsCreated.WithLabelValues(kind).Inc()
	s.logger.Info().Str("room", r.id).Str("name", name).Bool("private", isPrivate).Msg("room created")

	return r.view(), nil
}

// Get returns the public view of a room.
func (s *RoomStore) Get(id string) (models.Room, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[id]
	if !ok {
		return models.Room{}, ErrRoomNotFound
	}
	return r.view(), nil
}

// VerifyAccess checks a password against a private room's stored hash.
// A private room with no password at all is link-only: any password is
// accepted. That mirrors the original behaviour and is a policy choice,
// not a security assertion.
func (s *RoomStore) VerifyAccess(id, password string) (bool, error) {
	s.mu.RLock()
	r, ok := s.rooms[id]
	if !ok {
		s.mu.RUnlock()
		return false, ErrRoomNotFound
	}
	if !r.isPrivate {
		s.mu.RUnlock()
		return false, ErrNotPrivate
	}
	hash := r.passwordHash
	s.mu.RUnlock()

	if hash == "" {
		return true, nil
	}
	// Compare runs outside the lock; it is the only blocking-equivalent step.
	return s.hasher.Compare(password, hash), nil
}

// Join adds the connection to the room's membership and refreshes activity.
// Adding twice is a no-op. A stale join after room deletion reports ok=false
// without error: the gateway validates existence for UI purposes, but a late
// join must never crash the store.
func (s *RoomStore) Join(connID, roomID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return 0, false
	}
	r.members[connID] = struct{}{}
	r.lastActivity = time.Now()
	return len(r.members), true
}

// Leave removes the connection from the room's membership. No-op if the room
// or the membership entry is absent.
func (s *RoomStore) Leave(connID, roomID string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return 0, false
	}
	delete(r.members, connID)
	return len(r.members), true
}

// RecordActivity refreshes a room's lastActivity timestamp on message send.
func (s *RoomStore) RecordActivity(roomID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, ok := s.rooms[roomID]; ok {
		r.lastActivity = time.Now()
	}
}

// Delete removes a room on behalf of its creator or an admin and returns the
// member connections that must be notified and force-disconnected. The
// global room is protected unconditionally, admin flag included.
func (s *RoomStore) Delete(roomID, requesterID string, isAdmin bool) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if roomID == models.GlobalRoomID {
		return nil, ErrProtectedRoom
	}
	r, ok := s.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if r.creatorID != requesterID && !isAdmin {
		return nil, ErrForbidden
	}

	members := memberIDs(r)
	delete(s.rooms, roomID)

	kind := roomKind(r.isPrivate)
	metrics.RoomsActive.WithLabelValues(kind).Dec()
	metrics.RoomsDeleted.WithLabelValues(kind, "request").Inc()
	s.logger.Info().Str("room", roomID).Str("requester", requesterID).Bool("admin", isAdmin).Msg("room deleted")

	return members, nil
}

// DisconnectCleanup removes the connection from every room's membership and
// returns the rooms whose membership changed so the gateway can push updated
// counts.
func (s *RoomStore) DisconnectCleanup(connID string) []MemberCount {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []MemberCount
	for _, r := range s.rooms {
		if _, ok := r.members[connID]; ok {
			delete(r.members, connID)
			changed = append(changed, MemberCount{RoomID: r.id, Count: len(r.members)})
		}
	}
	return changed
}

// ExpiredRooms returns the ids of non-global rooms of the given kind whose
// last activity is older than lifetime. A snapshot only: eviction re-checks
// each candidate under the lock.
func (s *RoomStore) ExpiredRooms(isPrivate bool, lifetime time.Duration, now time.Time) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var expired []string
	for id, r := range s.rooms {
		if id == models.GlobalRoomID || r.isPrivate != isPrivate {
			continue
		}
		if now.Sub(r.lastActivity) > lifetime {
			expired = append(expired, id)
		}
	}
	return expired
}

// EvictIfExpired removes the room if it is still inactive and returns its
// members for notification. The activity check is repeated under the lock
// because a join or message may have refreshed the room since the snapshot.
func (s *RoomStore) EvictIfExpired(roomID string, lifetime time.Duration, now time.Time) ([]string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if roomID == models.GlobalRoomID {
		return nil, false
	}
	r, ok := s.rooms[roomID]
	if !ok || now.Sub(r.lastActivity) <= lifetime {
		return nil, false
	}

	members := memberIDs(r)
	delete(s.rooms, roomID)

	kind := roomKind(r.isPrivate)
	metrics.RoomsActive.WithLabelValues(kind).Dec()
	metrics.RoomsDeleted.WithLabelValues(kind, "sweep").Inc()
	s.logger.Info().Str("room", roomID).Str("name", r.name).Msg("inactive room evicted")

	return members, true
}

// Members returns the connection ids currently joined to a room.
func (s *RoomStore) Members(roomID string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.rooms[roomID]
	if !ok {
		return nil
	}
	return memberIDs(r)
}

// Counts returns the current number of public and private rooms.
func (s *RoomStore) Counts() (public, private int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.rooms {
		if r.isPrivate {
			private++
		} else {
			public++
		}
	}
	return public, private
}

func memberIDs(r *room) []string {
	members := make([]string, 0, len(r.members))
	for id := range r.members {
		members = append(members, id)
	}
	return members
}

func roomKind(isPrivate bool) string {
	if isPrivate {
		return "private"
	}
	return "public"
}
