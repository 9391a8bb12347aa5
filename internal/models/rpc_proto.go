package models

import "encoding/json"

// Envelope frames every RPC sent to the store node.
type Envelope struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
}

// GetRoom
type GetRoomRequest struct {
	RoomID string `json:"room_id"`
}
type GetRoomResponse struct {
	Found bool     `json:"found"`
	Room  RoomInfo `json:"room"`
	Error string   `json:"error,omitempty"`
}

// SetRoom merges the patch into the room document, creating it if needed.
type SetRoomRequest struct {
	RoomID string    `json:"room_id"`
	Patch  RoomPatch `json:"patch"`
}
type SetRoomResponse struct {
	Error string `json:"error,omitempty"`
}

// GetAccess
type GetAccessRequest struct {
	RoomID string `json:"room_id"`
}
type GetAccessResponse struct {
	Found  bool         `json:"found"`
	Access AccessRecord `json:"access"`
	Error  string       `json:"error,omitempty"`
}

// SetAccess
type SetAccessRequest struct {
	RoomID string       `json:"room_id"`
	Access AccessRecord `json:"access"`
}
type SetAccessResponse struct {
	Error string `json:"error,omitempty"`
}

// AppendMessage queues a message for the room; the store assigns id and
// timestamp and later republishes the room's window on its messages topic.
type AppendMessageRequest struct {
	RoomID string `json:"room_id"`
	Sender string `json:"sender"`
	Text   string `json:"text"`
}
type AppendMessageResponse struct {
	Error string `json:"error,omitempty"`
}

// LatestMessages returns the current window, newest first.
type LatestMessagesRequest struct {
	RoomID string `json:"room_id"`
	Limit  int    `json:"limit"`
}
type LatestMessagesResponse struct {
	Messages []ChatMessage `json:"messages"`
	Error    string        `json:"error,omitempty"`
}

// ListRooms is a diagnostics call, not used by the widget flow.
type ListRoomsRequest struct{}
type ListRoomsResponse struct {
	Rooms []RoomInfo `json:"rooms"`
	Error string     `json:"error,omitempty"`
}
