package models

// Visibility values stored in a room's access record.
const (
	VisibilityPublic  = "public"
	VisibilityPrivate = "private"
)

// RoomInfo is the metadata document of one chat room. CreatedAt is assigned
// by the store node the first time the document is written.
type RoomInfo struct {
	ID        string `json:"room_id"`
	ChatName  string `json:"chatName,omitempty"`
	AvatarSrc string `json:"chatAvatarSrc,omitempty"`
	CreatedAt int64  `json:"createdAt,omitempty"` // unix micro
}

// RoomPatch is a merge-write against a room document. Nil fields are left
// untouched on the store side.
type RoomPatch struct {
	ChatName  *string `json:"chatName,omitempty"`
	AvatarSrc *string `json:"chatAvatarSrc,omitempty"`
}

// AccessRecord controls who may join a room. The password is compared as an
// exact string; an empty password on a public room is the default state.
type AccessRecord struct {
	Visibility string `json:"visibility"`
	Password   string `json:"password"`
}

// DefaultAccess is the record written at room creation and when a room is
// found without one.
func DefaultAccess() AccessRecord {
	return AccessRecord{Visibility: VisibilityPublic, Password: ""}
}
