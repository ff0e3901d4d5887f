package models

// Room is the public view of a chat room sent to clients. The stored
// password hash never leaves the room store.
type Room struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsPrivate bool   `json:"isPrivate"`
	CreatorID string `json:"creatorId,omitempty"`
}

// RoomList is the payload of a "room list" event: every room partitioned by
// visibility, plus the configured capacity limits so clients can render
// "N of M" counters.
type RoomList struct {
	PublicRooms  []Room `json:"publicRooms"`
	PrivateRooms []Room `json:"privateRooms"`
	PublicLimit  int    `json:"publicLimit"`
	PrivateLimit int    `json:"privateLimit"`
}

// GlobalRoomID is the fixed id of the singleton global room. The global room
// exists from process start, is always public and is never deleted.
const GlobalRoomID = "global"
