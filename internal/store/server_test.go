package store_test

import (
	"bufio"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	libp2p "github.com/libp2p/go-libp2p"
	"github.com/libp2p/go-libp2p/core/host"
	"github.com/libp2p/go-libp2p/core/peer"
	"github.com/stretchr/testify/require"

	"bubblechat/internal/models"
	"bubblechat/internal/p2p"
	"bubblechat/internal/store"
)

func startTestStore(t *testing.T) (*store.Server, string) {
	ctx := context.Background()
	srv, err := store.NewServer(ctx, "/ip4/127.0.0.1/tcp/0", filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	addrs := srv.Host.Addrs()
	require.NotEmpty(t, addrs)
	return srv, addrs[0].String() + "/p2p/" + srv.Host.ID().String()
}

// helper: create a libp2p host for testing
func newTestClient(t *testing.T) (host.Host, context.Context) {
	ctx := context.Background()
	h, err := libp2p.New(libp2p.ListenAddrStrings("/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h, ctx
}

// helper: send one RPC and decode the reply
func sendRPC[T any, U any](t *testing.T, ctx context.Context, h host.Host, storeAddr string,
	method string, params T, out *U,
) {
	pi, err := peer.AddrInfoFromString(storeAddr)
	require.NoError(t, err)
	require.NoError(t, h.Connect(ctx, *pi))
	s, err := h.NewStream(ctx, pi.ID, p2p.StoreProtocolID)
	require.NoError(t, err)
	defer s.Close()

	env := struct {
		Method string      `json:"method"`
		Params interface{} `json:"params"`
	}{method, params}

	enc := json.NewEncoder(s)
	require.NoError(t, enc.Encode(env))

	rd := bufio.NewReader(s)
	dec := json.NewDecoder(rd)
	var zero U
	*out = zero
	require.NoError(t, dec.Decode(out))
}

func strPtrT(s string) *string { return &s }

func TestStoreNode_Documents(t *testing.T) {
	_, storeAddr := startTestStore(t)
	client, ctx := newTestClient(t)

	// 1) GetRoom on an unknown id reports not-found, no error
	var getResp models.GetRoomResponse
	sendRPC(t, ctx, client, storeAddr, "GetRoom", models.GetRoomRequest{RoomID: "ghost"}, &getResp)
	require.Empty(t, getResp.Error)
	require.False(t, getResp.Found)

	// 2) SetRoom creates the document
	var setResp models.SetRoomResponse
	sendRPC(t, ctx, client, storeAddr, "SetRoom", models.SetRoomRequest{
		RoomID: "room-1",
		Patch:  models.RoomPatch{ChatName: strPtrT("lobby")},
	}, &setResp)
	require.Empty(t, setResp.Error)

	sendRPC(t, ctx, client, storeAddr, "GetRoom", models.GetRoomRequest{RoomID: "room-1"}, &getResp)
	require.True(t, getResp.Found)
	require.Equal(t, "lobby", getResp.Room.ChatName)
	require.Positive(t, getResp.Room.CreatedAt)
	created := getResp.Room.CreatedAt

	// 3) a later merge-write keeps name and creation time
	sendRPC(t, ctx, client, storeAddr, "SetRoom", models.SetRoomRequest{
		RoomID: "room-1",
		Patch:  models.RoomPatch{AvatarSrc: strPtrT("data:image/png;base64,abc")},
	}, &setResp)
	require.Empty(t, setResp.Error)

	sendRPC(t, ctx, client, storeAddr, "GetRoom", models.GetRoomRequest{RoomID: "room-1"}, &getResp)
	require.Equal(t, "lobby", getResp.Room.ChatName)
	require.Equal(t, "data:image/png;base64,abc", getResp.Room.AvatarSrc)
	require.Equal(t, created, getResp.Room.CreatedAt)

	// 4) empty room id is rejected
	sendRPC(t, ctx, client, storeAddr, "SetRoom", models.SetRoomRequest{}, &setResp)
	require.NotEmpty(t, setResp.Error)

	// 5) ListRooms sees the document
	var listResp models.ListRoomsResponse
	sendRPC(t, ctx, client, storeAddr, "ListRooms", models.ListRoomsRequest{}, &listResp)
	require.Len(t, listResp.Rooms, 1)
	require.Equal(t, "room-1", listResp.Rooms[0].ID)
}

func TestStoreNode_Access(t *testing.T) {
	_, storeAddr := startTestStore(t)
	client, ctx := newTestClient(t)

	var setRoomResp models.SetRoomResponse
	sendRPC(t, ctx, client, storeAddr, "SetRoom", models.SetRoomRequest{RoomID: "room-1"}, &setRoomResp)
	require.Empty(t, setRoomResp.Error)

	// no record yet
	var getResp models.GetAccessResponse
	sendRPC(t, ctx, client, storeAddr, "GetAccess", models.GetAccessRequest{RoomID: "room-1"}, &getResp)
	require.Empty(t, getResp.Error)
	require.False(t, getResp.Found)

	// bogus visibility is rejected
	var setResp models.SetAccessResponse
	sendRPC(t, ctx, client, storeAddr, "SetAccess", models.SetAccessRequest{
		RoomID: "room-1",
		Access: models.AccessRecord{Visibility: "friends-only"},
	}, &setResp)
	require.NotEmpty(t, setResp.Error)

	sendRPC(t, ctx, client, storeAddr, "SetAccess", models.SetAccessRequest{
		RoomID: "room-1",
		Access: models.AccessRecord{Visibility: models.VisibilityPrivate, Password: "pw"},
	}, &setResp)
	require.Empty(t, setResp.Error)

	sendRPC(t, ctx, client, storeAddr, "GetAccess", models.GetAccessRequest{RoomID: "room-1"}, &getResp)
	require.True(t, getResp.Found)
	require.Equal(t, models.VisibilityPrivate, getResp.Access.Visibility)
	require.Equal(t, "pw", getResp.Access.Password)
}

func TestStoreNode_Messages(t *testing.T) {
	_, storeAddr := startTestStore(t)
	client, ctx := newTestClient(t)

	var setRoomResp models.SetRoomResponse
	sendRPC(t, ctx, client, storeAddr, "SetRoom", models.SetRoomRequest{RoomID: "room-1"}, &setRoomResp)
	require.Empty(t, setRoomResp.Error)

	for _, text := range []string{"hello", "world"} {
		var appendResp models.AppendMessageResponse
		sendRPC(t, ctx, client, storeAddr, "AppendMessage", models.AppendMessageRequest{
			RoomID: "room-1",
			Sender: models.AnonymousSender,
			Text:   text,
		}, &appendResp)
		require.Empty(t, appendResp.Error)
	}

	// appends are batched; the window shows up after the writer flushes
	require.Eventually(t, func() bool {
		var resp models.LatestMessagesResponse
		sendRPC(t, ctx, client, storeAddr, "LatestMessages", models.LatestMessagesRequest{
			RoomID: "room-1",
			Limit:  models.MessageWindow,
		}, &resp)
		return resp.Error == "" && len(resp.Messages) == 2
	}, 5*time.Second, 100*time.Millisecond)

	var resp models.LatestMessagesResponse
	sendRPC(t, ctx, client, storeAddr, "LatestMessages", models.LatestMessagesRequest{
		RoomID: "room-1",
		Limit:  models.MessageWindow,
	}, &resp)
	// newest first
	require.Equal(t, "world", resp.Messages[0].Text)
	require.Equal(t, "hello", resp.Messages[1].Text)
	require.Equal(t, models.AnonymousSender, resp.Messages[0].Sender)
	require.NotEmpty(t, resp.Messages[0].ID)
	require.Positive(t, resp.Messages[0].CreatedAt)
}
