package ui

import (
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

func (ui *UI) showModal(page, title, message, action string, accent tcell.Color, duration time.Duration, onDismiss func()) {
	modal := tview.NewModal()
	buttonStyle := tcell.StyleDefault.
		Background(ui.Theme.GetColor("background")).
		Foreground(accent)
	buttonStyleActive := tcell.StyleDefault.
		Background(accent).
		Foreground(ui.Theme.GetColor("background"))
	modal.SetText(message).
		AddButtons([]string{action}).
		SetDoneFunc(func(buttonIndex int, buttonLabel string) {
			ui.Pages.RemovePage(page)
			if onDismiss != nil {
				onDismiss()
			}
		}).SetButtonStyle(buttonStyle).
		SetButtonActivatedStyle(buttonStyleActive)
	modal.SetBackgroundColor(ui.Theme.GetColor("background")).
		SetBorder(true).
		SetBorderColor(accent).
		SetTitle(title).
		SetTitleColor(accent).
		SetTitleAlign(tview.AlignCenter)

	ui.Pages.AddPage(page, modal, true, true)
	ui.App.SetFocus(modal)

	if duration > 0 {
		go func() {
			time.Sleep(duration)
			ui.App.QueueUpdateDraw(func() {
				ui.Pages.RemovePage(page)
				if onDismiss != nil {
					onDismiss()
				}
			})
		}()
	}
}

func (ui *UI) ShowToast(message string, duration time.Duration, onDismiss func()) {
	ui.showModal("toast", "", message, "OK", ui.Theme.GetColor("primary"), duration, onDismiss)
}

func (ui *UI) ShowError(title string, message string, actionName string, duration time.Duration, onDismiss func()) {
	ui.showModal("error", title, message, actionName, ui.Theme.GetColor("red"), duration, onDismiss)
}
