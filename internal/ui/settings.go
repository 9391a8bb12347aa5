package ui

import (
	"github.com/rivo/tview"
)

// showSettingsForm edits the active chat's metadata: display name and
// avatar image. The avatar is read from a PNG on disk and stored inline in
// the chat document.
func (c *ChatScreen) showSettingsForm() {
	if c.cfg.GetChatID() == "" {
		c.ShowError("Settings", "no chat open", "OK", 0, nil)
		return
	}

	form := tview.NewForm()

	bgColor, fieldBg, buttonBg, buttonText, fieldText := c.Theme.FormColors()
	form.SetBackgroundColor(bgColor)
	form.SetButtonBackgroundColor(buttonBg)
	form.SetButtonTextColor(buttonText)
	form.SetFieldBackgroundColor(fieldBg)
	form.SetFieldTextColor(fieldText)
	form.SetLabelColor(c.Theme.GetColor("primary"))
	form.SetBorder(true)
	form.SetBorderColor(c.Theme.GetColor("border"))
	form.SetButtonsAlign(tview.AlignCenter)

	form.AddInputField("Chat name", c.cfg.GetChatName(), 0, nil, nil).
		AddInputField("Avatar file (png)", "", 0, nil, nil).
		AddButton("Save", func() {
			name := form.GetFormItemByLabel("Chat name").(*tview.InputField).GetText()
			avatar := form.GetFormItemByLabel("Avatar file (png)").(*tview.InputField).GetText()
			if name != "" {
				c.cfg.SetNameHandler(name)
			}
			if avatar != "" {
				if err := c.cfg.SetAvatarHandler(avatar); err != nil {
					c.ShowError("Set avatar failed", err.Error(), "OK", 0, nil)
					return
				}
			}
			c.Pages.RemovePage("settings")
			c.RefreshHeader()
		}).
		AddButton("Cancel", func() {
			c.Pages.RemovePage("settings")
		})

	form.SetBorder(true).
		SetTitle("[ Chat Settings ]").
		SetTitleAlign(tview.AlignCenter).
		SetTitleColor(c.Theme.GetColor("primary"))

	c.Pages.AddPage("settings", modalFrame(form, 50, 10), true, true)
	c.App.SetFocus(form)
}
