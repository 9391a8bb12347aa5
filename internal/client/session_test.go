package client

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"bubblechat/internal/models"
	"bubblechat/internal/p2p"
	"bubblechat/internal/recent"
	"bubblechat/internal/store"
	"bubblechat/internal/utils"
)

// newTestClient brings up a store node and a headless client connected to
// it. No UI, alerts go to the (silent) log.
func newTestClient(t *testing.T) *Client {
	ctx := context.Background()
	srv, err := store.NewServer(ctx, "/ip4/127.0.0.1/tcp/0", filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(srv.Close)

	addrs := srv.Host.Addrs()
	require.NotEmpty(t, addrs)
	storeAddr := addrs[0].String() + "/p2p/" + srv.Host.ID().String()

	node := &p2p.Node{Ctx: ctx}
	require.NoError(t, node.InitNode("/ip4/127.0.0.1/tcp/0"))
	require.NoError(t, node.ConnectStore(storeAddr))

	rl, _ := utils.NewRemoteLogger(0)
	cli := &Client{
		Node:    node,
		Session: NewSession(recent.Load(filepath.Join(t.TempDir(), "chat-list.json")), rl),
	}
	t.Cleanup(func() { _ = cli.Shutdown() })
	return cli
}

func TestNewRoomIsJoinable(t *testing.T) {
	cli := newTestClient(t)

	id, err := cli.NewRoom()
	require.NoError(t, err)
	require.NotEmpty(t, id)
	require.Equal(t, id, cli.Session.ActiveRoom())
	require.True(t, cli.Session.Recent.Contains(id))

	// a fresh room is public, no password needed
	ok, err := cli.CheckAccess(id, "")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCheckAccessPrivateRoom(t *testing.T) {
	cli := newTestClient(t)

	id, err := cli.NewRoom()
	require.NoError(t, err)
	require.NoError(t, cli.Node.SetAccess(id, models.AccessRecord{
		Visibility: models.VisibilityPrivate,
		Password:   "abc",
	}))

	ok, err := cli.CheckAccess(id, "abc")
	require.NoError(t, err)
	require.True(t, ok)

	// comparison is exact, case included
	ok, err = cli.CheckAccess(id, "ABC")
	require.False(t, ok)
	require.True(t, utils.IsAccessDenied(err))

	ok, err = cli.CheckAccess(id, "")
	require.False(t, ok)
	require.True(t, utils.IsAccessDenied(err))
}

func TestCheckAccessUnknownRoom(t *testing.T) {
	cli := newTestClient(t)

	ok, err := cli.CheckAccess("no-such-room", "")
	require.False(t, ok)
	require.True(t, utils.IsNotFound(err))
	require.False(t, cli.HandleInvitation("no-such-room", ""))
}

func TestCheckAccessRepairsMissingRecord(t *testing.T) {
	cli := newTestClient(t)

	// a room written without an access record, as older clients left them
	require.NoError(t, cli.Node.SetRoom("legacy-room", models.RoomPatch{}))

	ok, err := cli.CheckAccess("legacy-room", "whatever")
	require.NoError(t, err)
	require.True(t, ok)

	rec, found, err := cli.Node.GetAccess("legacy-room")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, models.DefaultAccess(), rec)
}

func TestOpenRoomIdempotent(t *testing.T) {
	cli := newTestClient(t)

	id, err := cli.NewRoom()
	require.NoError(t, err)

	cli.Session.mu.Lock()
	feed := cli.Session.feed
	cli.Session.mu.Unlock()
	require.NotNil(t, feed)

	require.NoError(t, cli.OpenRoom(id))

	cli.Session.mu.Lock()
	same := cli.Session.feed
	cli.Session.mu.Unlock()
	require.Same(t, feed, same)
}

func TestOpenRoomRetriesAfterSubscribeFailure(t *testing.T) {
	cli := newTestClient(t)

	// the node has not finished starting yet
	ps := cli.Node.PS
	cli.Node.PS = nil
	require.Error(t, cli.OpenRoom("room-1"))

	// the retry on the same id must run the open again, not short-circuit
	cli.Node.PS = ps
	require.NoError(t, cli.OpenRoom("room-1"))
	require.Equal(t, "room-1", cli.Session.ActiveRoom())
	require.True(t, cli.Session.Recent.Contains("room-1"))

	cli.Session.mu.Lock()
	feed := cli.Session.feed
	cli.Session.mu.Unlock()
	require.NotNil(t, feed)
}

func TestSnapshotForOtherRoomDiscarded(t *testing.T) {
	cli := newTestClient(t)

	id, err := cli.NewRoom()
	require.NoError(t, err)

	current := []models.ChatMessage{
		{ID: "m1", RoomID: id, Sender: models.AnonymousSender, Text: "kept", CreatedAt: 1},
	}
	cli.applySnapshot(id, current)
	require.Equal(t, current, cli.Session.Window())

	// a late delivery from a previously active room must not land
	stale := []models.ChatMessage{
		{ID: "m2", RoomID: "other-room", Sender: models.AnonymousSender, Text: "late", CreatedAt: 2},
	}
	cli.applySnapshot("other-room", stale)
	require.Equal(t, current, cli.Session.Window())

	// a delivery for the active room replaces the whole window
	fresh := []models.ChatMessage{
		{ID: "m3", RoomID: id, Sender: models.AnonymousSender, Text: "fresh", CreatedAt: 3},
	}
	cli.applySnapshot(id, fresh)
	require.Equal(t, fresh, cli.Session.Window())
}

func TestCommitMessageNoRoomOrBlank(t *testing.T) {
	cli := newTestClient(t)

	require.NoError(t, cli.CommitMessage("dropped, no room open"))

	_, err := cli.NewRoom()
	require.NoError(t, err)
	require.NoError(t, cli.CommitMessage("   \n\t"))

	// nothing must ever show up for either call
	time.Sleep(500 * time.Millisecond)
	require.Empty(t, cli.Session.Window())
}

func TestCommitMessageReachesWindow(t *testing.T) {
	cli := newTestClient(t)

	_, err := cli.NewRoom()
	require.NoError(t, err)

	// the write is async end to end (batch flush, then topic delivery),
	// re-sending until the feed catches up keeps the test robust
	require.Eventually(t, func() bool {
		require.NoError(t, cli.CommitMessage("hello"))
		w := cli.Session.Window()
		return len(w) > 0 && w[len(w)-1].Text == "hello"
	}, 20*time.Second, 500*time.Millisecond)

	w := cli.Session.Window()
	require.Equal(t, models.AnonymousSender, w[len(w)-1].Sender)
	for i := 1; i < len(w); i++ {
		require.LessOrEqual(t, w[i-1].CreatedAt, w[i].CreatedAt)
	}
}

func TestRoomInfoMergeRoundTrip(t *testing.T) {
	cli := newTestClient(t)

	id, err := cli.NewRoom()
	require.NoError(t, err)

	name := "standup"
	cli.SetRoomInfo(models.RoomPatch{ChatName: &name}, "")
	avatar := "data:image/png;base64,abc"
	cli.SetRoomInfo(models.RoomPatch{AvatarSrc: &avatar}, id)

	info := cli.GetRoomInfo("")
	require.Equal(t, id, info.ID)
	require.Equal(t, "standup", info.ChatName)
	require.Equal(t, avatar, info.AvatarSrc)
	require.Positive(t, info.CreatedAt)
}

func TestGetRoomInfoUnknown(t *testing.T) {
	cli := newTestClient(t)

	require.Equal(t, models.RoomInfo{}, cli.GetRoomInfo("no-such-room"))
	// no room open either
	require.Equal(t, models.RoomInfo{}, cli.GetRoomInfo(""))
}

func TestAvatarRoundTrip(t *testing.T) {
	cli := newTestClient(t)

	id, err := cli.NewRoom()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "avatar.png")
	require.NoError(t, os.WriteFile(path, []byte{0x89, 'P', 'N', 'G'}, 0o644))
	require.NoError(t, cli.SetAvatar(path))

	src := cli.RoomAvatar(id)
	require.True(t, strings.HasPrefix(src, "data:image/png;base64,"))

	// second resolution comes from the cache and must agree with the store
	require.Equal(t, src, cli.RoomAvatar(id))
	require.Equal(t, src, cli.GetRoomInfo(id).AvatarSrc)
}

func TestSetAvatarFailures(t *testing.T) {
	cli := newTestClient(t)

	// no room open
	require.ErrorIs(t, cli.SetAvatar("whatever.png"), utils.NoActiveRoom)

	_, err := cli.NewRoom()
	require.NoError(t, err)
	err = cli.SetAvatar(filepath.Join(t.TempDir(), "missing.png"))
	require.True(t, utils.IsLocalState(err))
}

func TestRemoveRecentFallsBack(t *testing.T) {
	cli := newTestClient(t)

	first, err := cli.NewRoom()
	require.NoError(t, err)
	second, err := cli.NewRoom()
	require.NoError(t, err)
	require.Equal(t, second, cli.Session.ActiveRoom())

	cli.RemoveRecent(second)
	require.Equal(t, first, cli.Session.ActiveRoom())
	require.False(t, cli.Session.Recent.Contains(second))

	cli.RemoveRecent(first)
	require.Equal(t, "", cli.Session.ActiveRoom())
	require.Empty(t, cli.Session.Recent.IDs())
}
