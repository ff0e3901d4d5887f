package crypto

import (
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// NewRoomID generates a random UUID for a freshly created room.
func NewRoomID() string {
	return uuid.NewString()
}

// NewConnectionID generates the opaque id for a live transport session.
func NewConnectionID() string {
	return uuid.NewString()
}

// NewMessageID generates a time-ordered ULID, minted for relayed messages
// that arrive without a client-supplied id.
func NewMessageID() string {
	return ulid.Make().String()
}
