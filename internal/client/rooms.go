package client

import (
	"github.com/google/uuid"

	"bubblechat/internal/models"
)

// OpenRoom makes id the active room. Opening the already-active room is a
// no-op, unless its feed is missing because an earlier subscribe failed, in
// which case the open runs again in full. Otherwise the old feed is torn
// down, the window cleared, the new feed established and the recent list
// updated. Opening "" closes the room.
func (cli *Client) OpenRoom(id string) error {
	s := cli.Session
	s.mu.Lock()
	if id == s.chatID && (s.feed != nil || id == "") {
		s.mu.Unlock()
		return nil
	}
	old := s.feed
	s.feed = nil
	s.chatID = id
	s.messages = nil
	s.mu.Unlock()

	if old != nil {
		old.Cancel()
	}
	if cli.OnMessages != nil {
		go cli.OnMessages(id, nil)
	}

	if id != "" {
		if err := cli.subscribe(id); err != nil {
			s.Log.Logf("subscribe to %s failed: %v", id, err)
			return err
		}
		if err := s.Recent.Add(id); err != nil {
			// local-state failure, keep going with the room open
			s.Log.Logf("recent list update failed: %v", err)
		}
	}

	if cli.OnRoomChanged != nil {
		cli.OnRoomChanged(id)
	}
	return nil
}

// NewRoom creates a room with a fresh client-generated id, writes its
// metadata document and default public access record, then opens it. Both
// writes must succeed before the switch: a half-created room would lose the
// join-vs-create race on its access record.
func (cli *Client) NewRoom() (string, error) {
	id := uuid.NewString()
	if err := cli.Node.SetRoom(id, models.RoomPatch{}); err != nil {
		return "", err
	}
	if err := cli.Node.SetAccess(id, models.DefaultAccess()); err != nil {
		return "", err
	}
	if err := cli.OpenRoom(id); err != nil {
		return "", err
	}
	return id, nil
}

// GetRoomInfo returns the metadata record for id, defaulting to the active
// room. An unknown room, or no id with no room open, yields an empty record.
func (cli *Client) GetRoomInfo(id string) models.RoomInfo {
	if id == "" {
		id = cli.Session.ActiveRoom()
	}
	if id == "" {
		return models.RoomInfo{}
	}
	room, found, err := cli.Node.GetRoom(id)
	if err != nil {
		cli.Session.Log.Logf("get chat info for %s failed: %v", id, err)
		return models.RoomInfo{}
	}
	if !found {
		return models.RoomInfo{}
	}
	return room
}

// SetRoomInfo merge-writes the patch into the room's metadata record,
// defaulting to the active room. Best-effort: a failed write is logged and
// the previous state stands.
func (cli *Client) SetRoomInfo(patch models.RoomPatch, id string) {
	if id == "" {
		id = cli.Session.ActiveRoom()
	}
	if id == "" {
		return
	}
	if err := cli.Node.SetRoom(id, patch); err != nil {
		cli.Session.Log.Logf("failed set chat info for %s: %v", id, err)
	}
}

// RemoveRecent evicts id from the recent list. Removing the active room
// falls back to the first remaining entry, or closes the room when none is
// left.
func (cli *Client) RemoveRecent(id string) {
	s := cli.Session
	if err := s.Recent.Remove(id); err != nil {
		s.Log.Logf("recent list remove failed: %v", err)
	}
	if s.ActiveRoom() != id {
		return
	}
	next := ""
	if ids := s.Recent.IDs(); len(ids) > 0 {
		next = ids[0]
	}
	if err := cli.OpenRoom(next); err != nil {
		s.Log.Logf("fallback open %q failed: %v", next, err)
	}
}
