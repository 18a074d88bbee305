package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"irc4osu/directory"
)

// showChannelDialog opens the channel browser over the latest directory
// snapshot. Channels that already have an open tab are not listed.
func (a *App) showChannelDialog() {
	if a.pages.HasPage("channels") {
		a.pages.ShowPage("channels")
		a.app.SetFocus(a.channelList)
		return
	}

	a.channelList = tview.NewList()
	a.channelList.ShowSecondaryText(true)
	a.channelList.SetBorder(true)
	a.channelList.SetTitle(" Channels (Esc to close) ")
	a.channelList.SetTitleColor(ColorTitle)
	a.channelList.SetBorderColor(ColorBorder)
	a.channelList.SetBackgroundColor(ColorBg)
	a.channelList.SetSelectedBackgroundColor(ColorHighlight)
	a.channelList.SetSecondaryTextColor(ColorBorder)
	a.channelList.SetDoneFunc(a.hideChannelDialog)
	a.channelList.SetSelectedFunc(func(index int, name, topic string, shortcut rune) {
		a.hideChannelDialog()
		a.session.JoinChannel(name)
	})

	modal := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(a.channelList, 0, 6, true).
			AddItem(nil, 0, 1, false), 0, 2, true).
		AddItem(nil, 0, 1, false)

	a.pages.AddPage("channels", modal, true, true)
	a.refreshChannelDialog()
	a.app.SetFocus(a.channelList)
}

func (a *App) hideChannelDialog() {
	a.pages.HidePage("channels")
	a.app.SetFocus(a.input)
}

// refreshChannelDialog repopulates the channel browser from the buffered
// directory snapshot. No-op while the dialog has never been opened.
func (a *App) refreshChannelDialog() {
	if a.channelList == nil || !a.pages.HasPage("channels") {
		return
	}

	open := make(map[string]bool)
	for _, name := range a.session.Tabs().Names() {
		open[name] = true
	}

	a.mu.Lock()
	entries := make([]directory.Entry, len(a.dirBuffer))
	copy(entries, a.dirBuffer)
	a.mu.Unlock()

	a.channelList.Clear()
	for _, entry := range entries {
		if open[entry.Name] {
			continue
		}
		secondary := fmt.Sprintf("%d users", entry.UserCount)
		if entry.Topic != "" {
			secondary += "  " + entry.Topic
		}
		a.channelList.AddItem(entry.Name, secondary, 0, nil)
	}
}
