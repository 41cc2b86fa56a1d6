package tui

import (
	"encoding/json"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartwaste/pickup/internal/forms"
)

const (
	regName = iota
	regEmail
	regPhone
	regAddress
	regPassword
	regConfirm
)

type registerDoneMsg struct {
	raw json.RawMessage
	err error
}

type registerModel struct {
	deps    Deps
	form    form
	notice  notice
	loading bool
	width   int
	height  int
}

func newRegisterModel(d Deps) registerModel {
	return registerModel{
		deps: d,
		form: newForm(
			formField{label: "name"},
			formField{label: "email", hint: "you@example.com"},
			formField{label: "phone", hint: "optional"},
			formField{label: "address", hint: "optional"},
			formField{label: "password", secret: true, hint: "at least 6 characters"},
			formField{label: "confirm password", secret: true},
		),
	}
}

func (m registerModel) Init() tea.Cmd { return nil }

func (m registerModel) Update(msg tea.Msg) (registerModel, tea.Cmd) {
	switch msg := msg.(type) {
	case registerDoneMsg:
		m.loading = false
		if msg.err != nil {
			m.notice = errorNotice(apiMessage(msg.err, "Registration failed. Please try again."))
			return m, nil
		}
		return m, navigateWith(navigateMsg{
			to:     viewLogin,
			notice: successNotice("Registration successful! Please log in."),
		})

	case tea.KeyMsg:
		if m.loading {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, navigate(viewLogin)
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
	}
	return m, nil
}

func (m registerModel) submit() (registerModel, tea.Cmd) {
	in := forms.Register{
		Name:     strings.TrimSpace(m.form.value(regName)),
		Email:    strings.TrimSpace(m.form.value(regEmail)),
		Phone:    strings.TrimSpace(m.form.value(regPhone)),
		Address:  strings.TrimSpace(m.form.value(regAddress)),
		Password: m.form.value(regPassword),
		Confirm:  m.form.value(regConfirm),
	}
	if err := m.deps.Forms.Check(in); err != nil {
		m.notice = errorNotice(err.Error())
		return m, nil
	}

	m.loading = true
	m.notice = notice{}
	d := m.deps
	return m, func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		raw, err := d.Session.Register(ctx, in.Request())
		return registerDoneMsg{raw: raw, err: err}
	}
}

func (m registerModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Create Account") + "\n")
	b.WriteString("  " + dimStyle.Render("Register to book waste pickups") + "\n\n")
	b.WriteString(indent(m.form.view(!m.loading), 2))
	b.WriteString("\n")
	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("Creating account...") + "\n")
	case m.notice.kind != noticeNone:
		b.WriteString("  " + m.notice.String() + "\n")
	}
	return b.String()
}
