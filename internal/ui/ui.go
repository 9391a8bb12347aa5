// Package ui renders the chat widget with tview.
package ui

import "github.com/rivo/tview"

// UIConfig wires the widget's controls to the session logic. All handlers
// run on the tview event goroutine.
type UIConfig struct {
	Theme *Theme

	OpenChatHandler   func(id string) error
	NewChatHandler    func() (string, error)
	SendHandler       func(text string) error
	InvitationHandler func(id, password string) bool
	SetNameHandler    func(name string)
	SetAvatarHandler  func(path string) error
	RemoveChatHandler func(id string)

	GetChatName    func() string
	GetChatID      func() string
	GetRecentChats func() []string
}

type UI struct {
	App        *tview.Application
	Pages      *tview.Pages
	Theme      *Theme
	ChatScreen *ChatScreen

	cfg *UIConfig
}

func NewUI(cfg *UIConfig) *UI {
	ui := &UI{
		App:   tview.NewApplication().EnableMouse(true),
		Theme: cfg.Theme,
		cfg:   cfg,
	}
	ui.ChatScreen = &ChatScreen{UI: ui}
	ui.ChatScreen.NewChatScreen()

	ui.Pages = tview.NewPages().
		AddPage("chat", ui.ChatScreen.Layout, true, true)

	ui.App.SetRoot(ui.Pages, true).
		SetFocus(ui.Pages)
	return ui
}

// modalFrame centers p in an invisible flex grid.
func modalFrame(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
