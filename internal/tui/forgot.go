package tui

import (
	"net/http"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartwaste/pickup/internal/forms"
	"github.com/smartwaste/pickup/pkg/client"
)

// Outcome texts for a reset request.
const (
	forgotSent    = "Password reset instructions have been sent to your email address."
	forgotSoon    = "Password reset feature is coming soon. Please contact support for assistance."
	forgotFailed  = "Something went wrong. Please try again later."
	forgotMissing = "Please enter your email address."
)

type forgotDoneMsg struct{ err error }

type forgotModel struct {
	deps    Deps
	form    form
	notice  notice
	loading bool
	width   int
	height  int
}

func newForgotModel(d Deps) forgotModel {
	return forgotModel{
		deps: d,
		form: newForm(formField{label: "email", hint: "you@example.com"}),
	}
}

func (m forgotModel) Init() tea.Cmd { return nil }

// forgotNotice maps a reset request outcome to what the user sees.
func forgotNotice(err error) notice {
	switch {
	case err == nil:
		return successNotice(forgotSent)
	case client.IsStatus(err, http.StatusNotFound):
		return infoNotice(forgotSoon)
	}
	return errorNotice(apiMessage(err, forgotFailed))
}

func (m forgotModel) Update(msg tea.Msg) (forgotModel, tea.Cmd) {
	switch msg := msg.(type) {
	case forgotDoneMsg:
		m.loading = false
		m.notice = forgotNotice(msg.err)
		if msg.err == nil {
			m.form.reset()
		}
		return m, nil

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, navigate(viewLogin)
		case "enter", "ctrl+s":
			return m.submit()
		}
		m.form.handleKey(msg.String())
	}
	return m, nil
}

func (m forgotModel) submit() (forgotModel, tea.Cmd) {
	email := strings.TrimSpace(m.form.value(0))
	if email == "" {
		m.notice = errorNotice(forgotMissing)
		return m, nil
	}
	if err := m.deps.Forms.Check(forms.Forgot{Email: email}); err != nil {
		m.notice = errorNotice(err.Error())
		return m, nil
	}

	m.loading = true
	m.notice = notice{}
	c := m.deps.Client
	d := m.deps
	return m, func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		return forgotDoneMsg{err: c.ForgotPassword(ctx, email)}
	}
}

func (m forgotModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Forgot Password?") + "\n")
	b.WriteString("  " + dimStyle.Render("Enter your email and we'll send you reset instructions") + "\n\n")
	b.WriteString(indent(m.form.view(!m.loading), 2))
	b.WriteString("\n")
	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("Sending...") + "\n")
	case m.notice.kind != noticeNone:
		b.WriteString("  " + m.notice.String() + "\n")
	}
	return b.String()
}
