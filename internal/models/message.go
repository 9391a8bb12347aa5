// Package models defines the data and wire types shared by the widget client
// and the store node.
package models

// AnonymousSender is the placeholder identity attached to every message.
const AnonymousSender = "anonymous"

// MessageWindow is how many of the most recent messages a room feed carries.
const MessageWindow = 50

// ChatMessage is one message inside a room. ID and CreatedAt are assigned by
// the store node; CreatedAt is the sole ordering key, ties broken by
// insertion order.
type ChatMessage struct {
	ID        string `json:"id"`
	RoomID    string `json:"room_id"`
	Sender    string `json:"sender"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"` // unix micro
}

// MessageSnapshot is one delivery on a room's live feed: the complete current
// window, newest first. Consumers must treat it as the authoritative list and
// check RoomID against their active room before applying it.
type MessageSnapshot struct {
	RoomID   string        `json:"room_id"`
	Messages []ChatMessage `json:"messages"`
}
