package ui

import (
	"github.com/rivo/tview"

	"irc4osu/session"
	"irc4osu/storage"
)

func (a *App) buildLoginForm() {
	a.loginStatus = tview.NewTextView()
	a.loginStatus.SetDynamicColors(true)
	a.loginStatus.SetTextAlign(tview.AlignCenter)
	a.loginStatus.SetBackgroundColor(ColorBg)

	a.loginForm = tview.NewForm()
	a.loginForm.SetBorder(true)
	a.loginForm.SetTitle(" irc4osu ─ log in ")
	a.loginForm.SetTitleColor(ColorTitle)
	a.loginForm.SetBorderColor(ColorBorder)
	a.loginForm.SetBackgroundColor(ColorBg)
	a.loginForm.SetFieldBackgroundColor(ColorBorder)
	a.loginForm.SetLabelColor(ColorFg)
	a.loginForm.SetButtonBackgroundColor(ColorHighlight)

	a.loginForm.AddInputField("Username", "", 28, nil, nil)
	a.loginForm.AddPasswordField("IRC password", "", 28, '*', nil)
	a.loginForm.AddButton("Connect", a.submitLogin)
	a.loginForm.AddButton("Quit", a.quit)

	flex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(a.loginForm, 11, 0, true).
		AddItem(a.loginStatus, 1, 0, false).
		AddItem(nil, 0, 1, false)
	modal := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(flex, 44, 0, true).
		AddItem(nil, 0, 1, false)

	a.pages.AddPage("login", modal, true, false)
}

func (a *App) submitLogin() {
	username := a.loginForm.GetFormItem(0).(*tview.InputField).GetText()
	password := a.loginForm.GetFormItem(1).(*tview.InputField).GetText()
	if username == "" || password == "" {
		a.loginStatus.SetText("[red]Username and password are required[-]")
		return
	}

	go a.session.Start(storage.Credentials{Username: username, Password: password})
}

func (a *App) setLoginEnabled(enabled bool) {
	for i := 0; i < a.loginForm.GetFormItemCount(); i++ {
		if field, ok := a.loginForm.GetFormItem(i).(*tview.InputField); ok {
			field.SetDisabled(!enabled)
		}
	}
}

// LoginFormState implements session.Presenter.
func (a *App) LoginFormState(state session.FormState, reason string) {
	a.app.QueueUpdateDraw(func() {
		switch state {
		case session.FormLoading:
			a.setLoginEnabled(false)
			a.loginStatus.SetText("[yellow]Connecting...[-]")

		case session.FormError:
			a.setLoginEnabled(true)
			a.pages.ShowPage("login")
			a.app.SetFocus(a.loginForm)
			switch reason {
			case "credentials":
				a.loginStatus.SetText("[red]Wrong username or password[-]")
			case "lookup":
				a.loginStatus.SetText("[red]Could not resolve your account, try again[-]")
			default:
				a.loginStatus.SetText("[red]Connection failed[-]")
			}

		case session.FormHide:
			a.loginStatus.SetText("")
			a.pages.HidePage("login")
			a.app.SetFocus(a.input)

		case session.FormRestore:
			a.setLoginEnabled(true)
			a.loginStatus.SetText("")
			a.pages.ShowPage("login")
			a.app.SetFocus(a.loginForm)
		}
	})
}
