package client

import (
	"encoding/base64"
	"os"

	"bubblechat/internal/models"
	"bubblechat/internal/utils"
)

// maxAvatarBytes bounds the raw image size; the avatar lives inline in the
// room document, so big files would bloat every metadata read.
const maxAvatarBytes = 256 << 10

// RoomAvatar resolves the avatar source for a room, using the session cache
// before falling back to the store.
func (cli *Client) RoomAvatar(id string) string {
	if id == "" {
		return ""
	}
	if src, ok := cli.Session.cachedAvatar(id); ok {
		return src
	}
	src := cli.GetRoomInfo(id).AvatarSrc
	cli.Session.cacheAvatar(id, src)
	return src
}

// SetAvatar reads a PNG file and stores it base64-encoded as the active
// room's avatar. Unlike other metadata writes this one reports failure to
// the caller, which surfaces it as an alert.
func (cli *Client) SetAvatar(path string) error {
	id := cli.Session.ActiveRoom()
	if id == "" {
		return utils.NoActiveRoom
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return utils.LocalStateError("read avatar image").WithDetails(err.Error())
	}
	if len(data) > maxAvatarBytes {
		return utils.LocalStateError("avatar image too large")
	}
	src := "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
	if err := cli.Node.SetRoom(id, models.RoomPatch{AvatarSrc: &src}); err != nil {
		return err
	}
	cli.Session.cacheAvatar(id, src)
	return nil
}
