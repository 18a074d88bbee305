// Package ui is the terminal presentation layer: it renders session
// signals and forwards user intents back to the session.
package ui

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"irc4osu/directory"
	"irc4osu/session"
	"irc4osu/storage"
)

// App is the terminal application. It implements session.Presenter; all
// widget mutation is queued onto the UI thread.
type App struct {
	app     *tview.Application
	pages   *tview.Pages
	session *session.Session
	kv      *storage.Store

	mu        sync.Mutex
	settings  storage.Settings
	dirBuffer []directory.Entry

	tabsList  *tview.List
	chatView  *tview.TextView
	input     *tview.InputField
	statusBar *tview.TextView

	loginForm   *tview.Form
	loginStatus *tview.TextView
	channelList *tview.List
}

// NewApp creates the application. Bind must be called with the session
// before Run.
func NewApp(kv *storage.Store, settings storage.Settings) *App {
	return &App{
		kv:       kv,
		settings: settings,
	}
}

// Bind attaches the session the app presents. The app is the session's
// presenter, so the two are constructed apart and joined here.
func (a *App) Bind(sess *session.Session) {
	a.session = sess
}

// NotificationsEnabled reports the current settings toggle. Wired into
// the session's message pipeline.
func (a *App) NotificationsEnabled() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.settings.NotificationsEnabled
}

// Run builds the UI and blocks until quit. When creds is non-nil the
// login form is skipped and the session starts immediately.
func (a *App) Run(creds *storage.Credentials) error {
	a.app = tview.NewApplication()
	a.pages = tview.NewPages()

	background := tview.NewBox()
	background.SetBackgroundColor(ColorBg)
	a.pages.AddPage("background", background, true, true)

	a.buildMainScreen()
	a.buildLoginForm()

	if creds != nil {
		go a.session.Start(*creds)
	} else {
		a.pages.ShowPage("login")
		a.app.SetFocus(a.loginForm)
	}

	return a.app.SetRoot(a.pages, true).EnableMouse(false).Run()
}

func (a *App) quit() {
	a.session.Stop()
	a.app.Stop()
}

func (a *App) toggleNotifications() {
	a.mu.Lock()
	a.settings.NotificationsEnabled = !a.settings.NotificationsEnabled
	s := a.settings
	a.mu.Unlock()

	if err := storage.SaveSettings(a.kv, s); err != nil {
		a.flashStatus("[red]Saving settings failed: " + tview.Escape(err.Error()) + "[-]")
		return
	}
	if s.NotificationsEnabled {
		a.flashStatus("Notifications enabled")
	} else {
		a.flashStatus("Notifications disabled")
	}
}

func (a *App) inputCapture(event *tcell.EventKey) *tcell.EventKey {
	switch event.Key() {
	case tcell.KeyF2:
		a.showChannelDialog()
		return nil
	case tcell.KeyF4:
		if active, ok := a.session.Tabs().Active(); ok {
			a.session.CloseTab(active.Name)
		}
		return nil
	case tcell.KeyF6:
		a.toggleNotifications()
		return nil
	case tcell.KeyPgUp:
		a.scrollChat(-1)
		return nil
	case tcell.KeyPgDn:
		a.scrollChat(1)
		return nil
	case tcell.KeyF9:
		go a.session.Logout()
		return nil
	case tcell.KeyF10:
		a.quit()
		return nil
	}
	return event
}
