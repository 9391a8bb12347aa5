package p2p

import (
	"encoding/json"
	"fmt"

	"bubblechat/internal/models"
	"bubblechat/internal/utils"
)

// sendStoreRequest opens a stream to the store node, sends {method, params}
// and decodes the JSON response into out.
func (n *Node) sendStoreRequest(method string, params any, out any) error {
	if n.Store == nil {
		return fmt.Errorf("store node address not set")
	}
	if err := n.Host.Connect(n.Ctx, *n.Store); err != nil {
		return err
	}
	s, err := n.Host.NewStream(n.Ctx, n.Store.ID, StoreProtocolID)
	if err != nil {
		return err
	}
	defer s.Close()

	raw, err := json.Marshal(params)
	if err != nil {
		return err
	}
	env := models.Envelope{Method: method, Params: raw}
	if err := json.NewEncoder(s).Encode(&env); err != nil {
		return err
	}
	return json.NewDecoder(s).Decode(out)
}

// GetRoom fetches a room document. found is false when no document exists;
// that case is not an error.
func (n *Node) GetRoom(id string) (models.RoomInfo, bool, error) {
	var resp models.GetRoomResponse
	if err := n.sendStoreRequest("GetRoom", models.GetRoomRequest{RoomID: id}, &resp); err != nil {
		return models.RoomInfo{}, false, err
	}
	if resp.Error != "" {
		return models.RoomInfo{}, false, fmt.Errorf("%s", resp.Error)
	}
	return resp.Room, resp.Found, nil
}

// SetRoom merge-writes the patch into the room document, creating the
// document (with a store-assigned creation time) when absent.
func (n *Node) SetRoom(id string, patch models.RoomPatch) error {
	var resp models.SetRoomResponse
	err := n.sendStoreRequest("SetRoom", models.SetRoomRequest{RoomID: id, Patch: patch}, &resp)
	if err != nil {
		return utils.WriteError("set room failed").WithDetails(err.Error())
	}
	if resp.Error != "" {
		return utils.WriteError("set room failed").WithDetails(resp.Error)
	}
	return nil
}

func (n *Node) GetAccess(id string) (models.AccessRecord, bool, error) {
	var resp models.GetAccessResponse
	if err := n.sendStoreRequest("GetAccess", models.GetAccessRequest{RoomID: id}, &resp); err != nil {
		return models.AccessRecord{}, false, err
	}
	if resp.Error != "" {
		return models.AccessRecord{}, false, fmt.Errorf("%s", resp.Error)
	}
	return resp.Access, resp.Found, nil
}

func (n *Node) SetAccess(id string, access models.AccessRecord) error {
	var resp models.SetAccessResponse
	err := n.sendStoreRequest("SetAccess", models.SetAccessRequest{RoomID: id, Access: access}, &resp)
	if err != nil {
		return utils.WriteError("set access failed").WithDetails(err.Error())
	}
	if resp.Error != "" {
		return utils.WriteError("set access failed").WithDetails(resp.Error)
	}
	return nil
}

// AppendMessage queues one message on the store node. It returns once the
// write is accepted; the message shows up on the live feed asynchronously.
func (n *Node) AppendMessage(roomID, sender, text string) error {
	req := models.AppendMessageRequest{RoomID: roomID, Sender: sender, Text: text}
	var resp models.AppendMessageResponse
	if err := n.sendStoreRequest("AppendMessage", req, &resp); err != nil {
		return utils.WriteError("append message failed").WithDetails(err.Error())
	}
	if resp.Error != "" {
		return utils.WriteError("append message failed").WithDetails(resp.Error)
	}
	return nil
}

// LatestMessages returns the room's current window, newest first.
func (n *Node) LatestMessages(roomID string, limit int) ([]models.ChatMessage, error) {
	req := models.LatestMessagesRequest{RoomID: roomID, Limit: limit}
	var resp models.LatestMessagesResponse
	if err := n.sendStoreRequest("LatestMessages", req, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	return resp.Messages, nil
}

func (n *Node) ListRooms() ([]models.RoomInfo, error) {
	var resp models.ListRoomsResponse
	if err := n.sendStoreRequest("ListRooms", models.ListRoomsRequest{}, &resp); err != nil {
		return nil, err
	}
	if resp.Error != "" {
		return nil, fmt.Errorf("%s", resp.Error)
	}
	return resp.Rooms, nil
}
