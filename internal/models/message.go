package models

// Message is a chat message relayed to a room. Messages are ephemeral: they
// exist only for the duration of the relay call and are never stored.
type Message struct {
	ID       string `json:"id"`
	Text     string `json:"text"`
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Color    string `json:"color,omitempty"`
	RoomID   string `json:"roomId"`
	IsAdmin  bool   `json:"isAdmin,omitempty"`
}
