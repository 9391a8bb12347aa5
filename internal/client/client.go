// Package client holds the widget-side session logic: room lifecycle,
// invitations, the live message feed and the glue towards the UI.
package client

import (
	"context"
	"log"
	"os"
	"path/filepath"

	"bubblechat/internal/models"
	"bubblechat/internal/p2p"
	"bubblechat/internal/recent"
	"bubblechat/internal/ui"
	"bubblechat/internal/utils"
)

type Client struct {
	Node    *p2p.Node
	UI      *ui.UI
	Session *Session

	// OnMessages fires with the full window (oldest first) whenever it
	// changes; nil msgs means the room was switched and the view should
	// clear. OnRoomChanged fires after the active room id changed.
	OnMessages    func(roomID string, msgs []models.ChatMessage)
	OnRoomChanged func(id string)
}

// alert surfaces a user-facing failure. Headless sessions (tests) have no
// UI, the message goes to the log instead.
func (cli *Client) alert(title, message string) {
	if cli.UI == nil {
		cli.Session.Log.Logf("%s: %s", title, message)
		return
	}
	cli.UI.ShowError(title, message, "OK", 0, nil)
}

// StartWidgetApp runs the chat widget until the UI exits. storeAddr is the
// multiaddr of the document store node, chatID an optional room to open on
// startup (the first recent room is used when empty).
func StartWidgetApp(storeAddr, chatID string, logPort int) {
	cli := &Client{}
	ctx := context.Background()

	homeDir, err := os.UserHomeDir()
	if err != nil {
		log.Printf("Failed to get user home directory: %v", err)
		panic(err)
	}
	theme := ui.LoadThemeFromDir(filepath.Join(homeDir, ".bubblechat", "themes"), "default")

	rl, err := utils.NewRemoteLogger(logPort)
	if err != nil {
		log.Printf("Failed to start remote logger: %v", err)
	}
	rl.Logf("bubblechat widget starting")

	recentPath, err := recent.DefaultPath()
	if err != nil {
		panic(err)
	}
	cli.Session = NewSession(recent.Load(recentPath), rl)
	cli.Node = &p2p.Node{Ctx: ctx}

	cli.UI = ui.NewUI(&ui.UIConfig{
		Theme:             theme,
		OpenChatHandler:   cli.OpenRoom,
		NewChatHandler:    cli.NewRoom,
		SendHandler:       cli.CommitMessage,
		InvitationHandler: cli.HandleInvitation,
		SetNameHandler: func(name string) {
			cli.SetRoomInfo(models.RoomPatch{ChatName: &name}, "")
		},
		SetAvatarHandler:  cli.SetAvatar,
		RemoveChatHandler: cli.RemoveRecent,
		GetChatName: func() string {
			return cli.GetRoomInfo("").ChatName
		},
		GetChatID:      cli.Session.ActiveRoom,
		GetRecentChats: cli.Session.Recent.IDs,
	})

	cli.OnMessages = func(roomID string, msgs []models.ChatMessage) {
		// always called off the event goroutine, QueueUpdateDraw is safe
		cli.UI.App.QueueUpdateDraw(func() {
			cli.UI.ChatScreen.UpdateMessages(msgs)
		})
	}
	cli.OnRoomChanged = func(id string) {
		go cli.UI.App.QueueUpdateDraw(func() {
			cli.UI.ChatScreen.RefreshHeader()
			cli.UI.ChatScreen.UpdateRecent(cli.Session.Recent.IDs())
		})
	}

	go func() {
		if err := cli.Node.InitNode(); err != nil {
			rl.Logf("node init failed: %v", err)
			go cli.UI.App.QueueUpdateDraw(func() {
				cli.alert("Network error", "failed to start the p2p node: "+err.Error())
			})
			return
		}
		if err := cli.Node.ConnectStore(storeAddr); err != nil {
			rl.Logf("store connect failed: %v", err)
			go cli.UI.App.QueueUpdateDraw(func() {
				cli.alert("Network error", "failed to reach the document store: "+err.Error())
			})
			return
		}
		rl.Logf("connected to store node %s", cli.Node.Store.ID)

		open := chatID
		if open == "" {
			if ids := cli.Session.Recent.IDs(); len(ids) > 0 {
				open = ids[0]
			}
		}
		if open != "" {
			if err := cli.OpenRoom(open); err != nil {
				rl.Logf("opening %s on startup failed: %v", open, err)
			}
		}
	}()

	defer func() {
		if err := cli.Shutdown(); err != nil {
			log.Printf("[Shutdown] Failed to close node resources: %v", err)
		}
	}()

	if err := cli.UI.App.Run(); err != nil {
		log.Printf("Failed to run UI: %v", err)
		panic(err)
	}
}

// Shutdown tears down the live feed and the libp2p node.
func (cli *Client) Shutdown() error {
	s := cli.Session
	s.mu.Lock()
	feed := s.feed
	s.feed = nil
	s.mu.Unlock()
	if feed != nil {
		feed.Cancel()
	}
	if cli.Session.Log != nil {
		cli.Session.Log.Close()
	}
	return cli.Node.Close()
}
