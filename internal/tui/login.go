package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/smartwaste/pickup/internal/forms"
	"github.com/smartwaste/pickup/pkg/client"
)

const loginFailed = "Invalid email or password. Please try again."

const (
	loginEmail = iota
	loginPassword
)

type loginDoneMsg struct {
	resp *client.LoginResponse
	err  error
}

type loginModel struct {
	deps    Deps
	form    form
	notice  notice
	loading bool
	width   int
	height  int
}

func newLoginModel(d Deps) loginModel {
	return loginModel{
		deps: d,
		form: newForm(
			formField{label: "email", hint: "you@example.com"},
			formField{label: "password", secret: true},
		),
	}
}

// Init leaves the screen for home when a user is already known. A token
// without a profile keeps the form so the user can sign in again.
func (m loginModel) Init() tea.Cmd {
	if m.deps.Session == nil {
		return nil
	}
	cur := m.deps.Session.Current()
	if cur.HasUser() {
		return navigate(viewWelcome)
	}
	return nil
}

func (m loginModel) Update(msg tea.Msg) (loginModel, tea.Cmd) {
	switch msg := msg.(type) {
	case loginDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.deps.Log.Debug("login failed", zap.Error(msg.err))
			m.notice = errorNotice(loginFailed)
			m.form.set(loginPassword, "")
			return m, nil
		}
		return m, navigateWith(navigateMsg{to: viewWelcome})

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m loginModel) updateKeys(msg tea.KeyMsg) (loginModel, tea.Cmd) {
	if m.loading {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		return m, navigate(viewWelcome)
	case "ctrl+r":
		return m, navigate(viewRegister)
	case "ctrl+f":
		return m, navigate(viewForgot)
	case "ctrl+s":
		return m.submit()
	case "enter":
		if m.form.last() {
			return m.submit()
		}
		m.form.next()
		return m, nil
	}
	m.form.handleKey(msg.String())
	return m, nil
}

func (m loginModel) submit() (loginModel, tea.Cmd) {
	in := forms.Login{
		Email:    strings.TrimSpace(m.form.value(loginEmail)),
		Password: m.form.value(loginPassword),
	}
	if err := m.deps.Forms.Check(in); err != nil {
		m.notice = errorNotice(err.Error())
		return m, nil
	}

	m.loading = true
	m.notice = notice{}
	store := m.deps.Session
	d := m.deps
	return m, func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		resp, err := store.Login(ctx, client.Credentials{Email: in.Email, Password: in.Password})
		return loginDoneMsg{resp: resp, err: err}
	}
}

func (m loginModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Welcome Back") + "\n")
	b.WriteString("  " + dimStyle.Render("Sign in to manage your pickups") + "\n\n")

	if m.deps.Session != nil {
		if cur := m.deps.Session.Current(); cur.Authenticated() && !cur.HasUser() && m.notice.kind == noticeNone {
			m.notice = infoNotice("Your profile could not be loaded. Sign in again to continue.")
		}
	}

	b.WriteString(indent(m.form.view(!m.loading), 2))
	b.WriteString("\n")
	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("Signing in...") + "\n")
	case m.notice.kind != noticeNone:
		b.WriteString("  " + m.notice.String() + "\n")
	}
	b.WriteString("\n  " + metaStyle.Render("No account? ctrl+r to register.  Forgot your password? ctrl+f.") + "\n")
	return b.String()
}
