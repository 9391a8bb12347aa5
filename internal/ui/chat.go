package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"bubblechat/internal/models"
	"bubblechat/internal/utils"
)

// ChatScreen is the widget's main screen: the recent-chats sidebar, the
// message window and the input area.
type ChatScreen struct {
	*UI
	Layout      *tview.Flex
	RecentList  *tview.List
	recentPane  *tview.Flex
	SideWrapper *tview.Flex
	chatView    *tview.Flex
	MessageView *tview.List
	msgInput    *tview.TextArea
	newBtn      *tview.Button
	inviteBtn   *tview.Button
	settingsBtn *tview.Button
	noChatView  *tview.TextView
	inviteForm  *tview.Form
	recent      []string
}

func (c *ChatScreen) NewChatScreen() {
	c.Layout = tview.NewFlex()
	c.Layout.SetDirection(tview.FlexColumn).
		SetBorder(false)

	c.RecentList = tview.NewList()
	c.RecentList.SetSelectedBackgroundColor(c.Theme.GetColor("background-light"))
	c.RecentList.SetSelectedTextColor(c.Theme.GetColor("primary")).
		SetHighlightFullLine(true)
	c.RecentList.
		SetTitleColor(c.Theme.GetColor("primary")).
		SetBackgroundColor(c.Theme.GetColor("background"))
	c.RecentList.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		// Delete (or x) forgets the highlighted chat
		if event.Key() == tcell.KeyDelete || event.Rune() == 'x' {
			idx := c.RecentList.GetCurrentItem()
			if idx >= 0 && idx < len(c.recent) {
				c.cfg.RemoveChatHandler(c.recent[idx])
			}
			return nil
		}
		return event
	})

	c.newBtn = tview.NewButton("New Chat")
	c.newBtn.SetSelectedFunc(func() {
		id, err := c.cfg.NewChatHandler()
		if err != nil {
			c.ShowError("Create chat failed", err.Error(), "OK", 0, nil)
			return
		}
		// the id is the invitation, show it in full once
		c.ShowToast("Chat created. ID: "+id, 0, nil)
	}).
		SetLabelColor(c.Theme.GetColor("button-text")).
		SetBackgroundColor(c.Theme.GetColor("button-active"))

	c.inviteBtn = tview.NewButton("Invitation")
	c.inviteBtn.SetSelectedFunc(c.showInvitationForm).
		SetLabelColor(c.Theme.GetColor("button-text")).
		SetBackgroundColor(c.Theme.GetColor("button-active"))

	c.settingsBtn = tview.NewButton("Settings")
	c.settingsBtn.SetSelectedFunc(c.showSettingsForm).
		SetLabelColor(c.Theme.GetColor("button-text")).
		SetBackgroundColor(c.Theme.GetColor("button-active"))

	c.recentPane = tview.NewFlex()
	c.recentPane.AddItem(c.RecentList, 0, 1, false)
	c.recentPane.SetDirection(tview.FlexRow)

	c.SideWrapper = tview.NewFlex()
	c.SideWrapper.SetDirection(tview.FlexRow)
	c.SideWrapper.AddItem(c.recentPane, 0, 1, false).
		AddItem(c.newBtn, 1, 0, false).
		AddItem(c.inviteBtn, 1, 0, false).
		AddItem(c.settingsBtn, 1, 0, false)
	c.SideWrapper.SetBorder(true).
		SetTitle("[ Recent Chats ]").
		SetTitleColor(c.Theme.GetColor("primary")).
		SetBorderColor(c.Theme.GetColor("border")).
		SetBackgroundColor(c.Theme.GetColor("background")).
		SetBorderPadding(1, 1, 1, 1)

	c.msgInput = tview.NewTextArea().
		SetPlaceholder("Type your message here...").
		SetPlaceholderStyle(
			tcell.StyleDefault.Background(c.Theme.GetColor("background")).
				Foreground(c.Theme.GetColor("foreground-dark"))).
		SetTextStyle(tcell.StyleDefault.Background(c.Theme.GetColor("background")).
			Foreground(c.Theme.GetColor("foreground")))

	c.msgInput.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if event.Key() == tcell.KeyEnter && event.Modifiers()&tcell.ModShift == 0 {
			message := c.msgInput.GetText()
			if message != "" {
				if err := c.cfg.SendHandler(message); err != nil {
					c.ShowError("Send message failed", err.Error(), "OK", 0, nil)
					return nil
				}
				c.msgInput.SetText("", false)
			}
			return nil
		} else if event.Key() == tcell.KeyTAB {
			c.App.SetFocus(c.RecentList)
			return nil
		} else if event.Key() == tcell.KeyEscape {
			// close the chat, keep the widget running
			if err := c.cfg.OpenChatHandler(""); err != nil {
				c.ShowError("Close chat failed", err.Error(), "OK", 0, nil)
			}
			return nil
		}
		return event
	})

	c.msgInput.SetWordWrap(true).SetWrap(true)
	c.msgInput.SetBorder(true).
		SetBorderColor(c.Theme.GetColor("foreground"))

	c.MessageView = tview.NewList()
	c.MessageView.SetSelectedBackgroundColor(c.Theme.GetColor("background-light"))
	c.MessageView.SetSecondaryTextColor(c.Theme.GetColor("foreground-dark"))

	c.chatView = tview.NewFlex()
	c.chatView.SetDirection(tview.FlexRow)
	c.chatView.AddItem(c.MessageView, 0, 1, false).
		AddItem(c.msgInput, 5, 0, true)

	c.MessageView.SetBorder(true).
		SetTitleColor(c.Theme.GetColor("primary")).
		SetBorderColor(c.Theme.GetColor("border")).
		SetBackgroundColor(c.Theme.GetColor("background")).
		SetBorderPadding(1, 1, 1, 1)
	c.RefreshHeader()

	c.Layout.AddItem(c.SideWrapper, 0, 1, false).
		AddItem(c.chatView, 0, 4, true)
	c.App.SetFocus(c.msgInput)

	c.UpdateRecent(c.cfg.GetRecentChats())
}

// RefreshHeader redraws the message pane title from the active chat.
func (c *ChatScreen) RefreshHeader() {
	id := c.cfg.GetChatID()
	if id == "" {
		c.MessageView.SetTitle("[ no chat open ]")
		return
	}
	name := c.cfg.GetChatName()
	if name == "" {
		name = shortID(id)
	}
	c.MessageView.SetTitle(fmt.Sprintf("[ %s ]", name))
}

// UpdateMessages replaces the message pane contents, oldest first, and
// keeps the view pinned to the newest message.
func (c *ChatScreen) UpdateMessages(msgs []models.ChatMessage) {
	c.MessageView.Clear()
	for _, m := range msgs {
		line := fmt.Sprintf("%s: %s", m.Sender, m.Text)
		c.MessageView.AddItem(line, utils.FormatPrettyTime(m.CreatedAt), 0, nil)
	}
	if len(msgs) > 0 {
		c.MessageView.SetCurrentItem(-1)
	}
}

func (c *ChatScreen) UpdateRecent(ids []string) {
	c.recent = ids
	c.RecentList.Clear()
	if len(ids) == 0 {
		if c.noChatView == nil {
			c.noChatView = tview.NewTextView().
				SetTextAlign(tview.AlignCenter).
				SetTextColor(c.Theme.GetColor("foreground")).
				SetText("No recent chats.")
		}
		// remove first so repeated empty updates don't stack it
		c.recentPane.RemoveItem(c.noChatView)
		c.recentPane.AddItem(c.noChatView, 0, 1, false)
		return
	}
	c.recentPane.RemoveItem(c.noChatView)

	active := c.cfg.GetChatID()
	for _, id := range ids {
		id := id
		line := shortID(id)
		if id == active {
			line = "> " + line
		}
		c.RecentList.AddItem(line, "", 0, func() {
			if err := c.cfg.OpenChatHandler(id); err != nil {
				c.ShowError("Open chat failed", err.Error(), "OK", 0, nil)
			}
		})
	}
}

func (c *ChatScreen) showInvitationForm() {
	c.inviteForm = tview.NewForm()

	bgColor, fieldBg, buttonBg, buttonText, fieldText := c.Theme.FormColors()
	c.inviteForm.SetBackgroundColor(bgColor)
	c.inviteForm.SetButtonBackgroundColor(buttonBg)
	c.inviteForm.SetButtonTextColor(buttonText)
	c.inviteForm.SetFieldBackgroundColor(fieldBg)
	c.inviteForm.SetFieldTextColor(fieldText)
	c.inviteForm.SetLabelColor(c.Theme.GetColor("primary"))
	c.inviteForm.SetBorder(true)
	c.inviteForm.SetBorderColor(c.Theme.GetColor("border"))
	c.inviteForm.SetButtonsAlign(tview.AlignCenter)

	c.inviteForm.AddInputField("Chat ID", "", 0, nil, nil).
		AddPasswordField("Password (opt)", "", 0, '*', nil).
		AddButton("Join", func() {
			id := c.inviteForm.GetFormItemByLabel("Chat ID").(*tview.InputField).GetText()
			pass := c.inviteForm.GetFormItemByLabel("Password (opt)").(*tview.InputField).GetText()
			if !c.cfg.InvitationHandler(id, pass) {
				// the handler already showed why
				return
			}
			c.Pages.RemovePage("invite")
			if err := c.cfg.OpenChatHandler(id); err != nil {
				c.ShowError("Open chat failed", err.Error(), "OK", 0, nil)
			}
		}).
		AddButton("Cancel", func() {
			c.Pages.RemovePage("invite")
		})

	c.inviteForm.SetBorder(true).
		SetTitle("[ Join by Invitation ]").
		SetTitleAlign(tview.AlignCenter).
		SetTitleColor(c.Theme.GetColor("primary"))

	c.Pages.AddPage("invite", modalFrame(c.inviteForm, 50, 9), true, true)
	c.App.SetFocus(c.inviteForm)
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
