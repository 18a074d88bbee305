package ui

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"irc4osu/directory"
	"irc4osu/pipeline"
	"irc4osu/tabs"
)

const statusHelp = " F2:Join channel | F4:Close tab | F6:Notifications | F9:Logout | F10:Quit "

func (a *App) buildMainScreen() {
	a.tabsList = tview.NewList()
	a.tabsList.ShowSecondaryText(false)
	a.tabsList.SetBorder(true)
	a.tabsList.SetTitle(" Tabs ")
	a.tabsList.SetTitleColor(ColorTitle)
	a.tabsList.SetBorderColor(ColorBorder)
	a.tabsList.SetBackgroundColor(ColorBg)
	a.tabsList.SetSelectedBackgroundColor(ColorHighlight)
	a.tabsList.SetChangedFunc(func(index int, label, name string, shortcut rune) {
		a.session.Tabs().SetActive(name)
		a.refreshChat()
	})

	a.chatView = tview.NewTextView()
	a.chatView.SetBorder(true)
	a.chatView.SetBorderColor(ColorBorder)
	a.chatView.SetBackgroundColor(ColorBg)
	a.chatView.SetTextColor(ColorFg)
	a.chatView.SetDynamicColors(true)
	a.chatView.SetScrollable(true)

	a.input = tview.NewInputField()
	a.input.SetLabel("> ")
	a.input.SetFieldWidth(0)
	a.input.SetBackgroundColor(ColorBg)
	a.input.SetFieldBackgroundColor(ColorBg)
	a.input.SetFieldTextColor(ColorFg)
	a.input.SetLabelColor(ColorHighlight)
	a.input.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter {
			return
		}
		text := a.input.GetText()
		if text == "" {
			return
		}
		if active, ok := a.session.Tabs().Active(); ok {
			go a.session.SendText(active.Name, text)
			a.input.SetText("")
		}
	})

	a.statusBar = tview.NewTextView()
	a.statusBar.SetDynamicColors(true)
	a.statusBar.SetBackgroundColor(ColorBorder)
	a.statusBar.SetTextColor(ColorTitle)
	a.statusBar.SetText(statusHelp)

	right := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.chatView, 0, 1, false).
		AddItem(a.input, 1, 0, true)

	columns := tview.NewFlex().
		AddItem(a.tabsList, 24, 0, false).
		AddItem(right, 0, 1, true)

	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(columns, 0, 1, true).
		AddItem(a.statusBar, 1, 0, false)
	root.SetInputCapture(a.inputCapture)

	a.pages.AddPage("main", root, true, true)
}

// refreshTabs rebuilds the tab bar from the registry, keeping the active
// tab selected and showing unread badges.
func (a *App) refreshTabs() {
	active, hasActive := a.session.Tabs().Active()

	a.tabsList.SetChangedFunc(nil)
	a.tabsList.Clear()
	for _, name := range a.session.Tabs().Names() {
		label := name
		if tab, ok := a.session.Tabs().Get(name); ok && tab.Unread > 0 {
			label = fmt.Sprintf("%s (%d)", name, tab.Unread)
		}
		a.tabsList.AddItem(label, name, 0, nil)
		if hasActive && name == active.Name {
			a.tabsList.SetCurrentItem(a.tabsList.GetItemCount() - 1)
		}
	}
	a.tabsList.SetChangedFunc(func(index int, label, name string, shortcut rune) {
		a.session.Tabs().SetActive(name)
		a.refreshChat()
	})
}

// refreshChat re-renders the active tab's history.
func (a *App) refreshChat() {
	a.chatView.Clear()

	active, ok := a.session.Tabs().Active()
	if !ok {
		a.chatView.SetTitle("")
		return
	}
	a.chatView.SetTitle(" " + active.Name + " ")

	records, err := a.session.Tabs().Records(active.Name)
	if err != nil {
		return
	}
	for _, rec := range records {
		fmt.Fprintln(a.chatView, renderRecord(rec))
	}
	if active.AutoScroll {
		a.chatView.ScrollToEnd()
	}
}

// scrollChat pages the chat view. Paging up detaches the view from the
// tail; paging back down to the bottom reattaches it, so new records
// resume force-scrolling.
func (a *App) scrollChat(direction int) {
	active, ok := a.session.Tabs().Active()
	if !ok {
		return
	}

	row, _ := a.chatView.GetScrollOffset()
	_, _, _, height := a.chatView.GetInnerRect()

	if direction < 0 {
		a.session.Tabs().SetAutoScroll(active.Name, false)
		row -= height
		if row < 0 {
			row = 0
		}
		a.chatView.ScrollTo(row, 0)
		return
	}

	row += height
	if row+height >= a.chatView.GetOriginalLineCount() {
		a.session.Tabs().SetAutoScroll(active.Name, true)
		a.chatView.ScrollToEnd()
		return
	}
	a.chatView.ScrollTo(row, 0)
}

// flashStatus shows msg in the status bar, restoring the help line after
// a few seconds.
func (a *App) flashStatus(msg string) {
	a.statusBar.SetText(" " + msg + " ")
	time.AfterFunc(3*time.Second, func() {
		a.app.QueueUpdateDraw(func() {
			a.statusBar.SetText(statusHelp)
		})
	})
}

// RecordAppended implements session.Presenter.
func (a *App) RecordAppended(tab string, rec tabs.Record) {
	a.app.QueueUpdateDraw(func() {
		if active, ok := a.session.Tabs().Active(); ok && active.Name == tab {
			fmt.Fprintln(a.chatView, renderRecord(rec))
			if active.AutoScroll {
				a.chatView.ScrollToEnd()
			}
		}
		a.refreshTabs()
	})
}

// Joining implements session.Presenter.
func (a *App) Joining(channel string) {
	a.app.QueueUpdateDraw(func() {
		a.flashStatus("Joining " + tview.Escape(channel) + "...")
	})
}

// TabOpened implements session.Presenter.
func (a *App) TabOpened(tab tabs.Tab) {
	a.app.QueueUpdateDraw(func() {
		a.refreshTabs()
		a.refreshChat()
	})
}

// TabClosed implements session.Presenter.
func (a *App) TabClosed(name string) {
	a.app.QueueUpdateDraw(func() {
		a.refreshTabs()
		a.refreshChat()
	})
}

// DirectoryUpdated implements session.Presenter.
func (a *App) DirectoryUpdated(entries []directory.Entry) {
	a.mu.Lock()
	a.dirBuffer = entries
	a.mu.Unlock()
	a.app.QueueUpdateDraw(func() {
		a.refreshChannelDialog()
	})
}

// Notify implements session.Presenter. Terminal stand-in for a desktop
// notification: a status bar flash.
func (a *App) Notify(n pipeline.Notification) {
	a.app.QueueUpdateDraw(func() {
		a.flashStatus("[#ff66aa]" + tview.Escape(n.Title) + ":[-] " + tview.Escape(n.Body))
	})
}
