package tui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/smartwaste/pickup/internal/forms"
	"github.com/smartwaste/pickup/pkg/client"
	"github.com/smartwaste/pickup/pkg/domain"
)

// profileMode is the state machine for the profile screen.
type profileMode int

const (
	profileViewing  profileMode = iota
	profileEditing              // name, phone, address
	profileAvatar               // image path
	profilePassword             // current, new, confirm
)

// Result texts for profile actions.
const (
	profileSaved      = "Profile updated successfully!"
	profileSaveFailed = "Error updating profile"
	avatarSaved       = "Profile picture updated successfully!"
	avatarFailed      = "Upload failed. Please try again."
	passwordSaved     = "Password changed successfully!"
	passwordFailed    = "Password change failed."
)

type profileLoadedMsg struct {
	user domain.User
	err  error
}

type profileSavedMsg struct {
	user domain.User
	err  error
}

type avatarSavedMsg struct {
	user domain.User
	err  error
}

type passwordChangedMsg struct{ err error }

type profileModel struct {
	deps   Deps
	mode   profileMode
	form   form
	busy   bool
	notice notice
	width  int
	height int
}

func newProfileModel(d Deps) profileModel {
	return profileModel{deps: d}
}

func (m profileModel) user() domain.User {
	if m.deps.Session == nil {
		return nil
	}
	return m.deps.Session.Current().User
}

// Init refreshes the stored profile from the server.
func (m profileModel) Init() tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		u, err := d.Client.Me(ctx)
		return profileLoadedMsg{user: u, err: err}
	}
}

func (m profileModel) storeUser(u domain.User) {
	if u == nil || m.deps.Session == nil {
		return
	}
	if err := m.deps.Session.UpdateUser(u); err != nil {
		m.deps.Log.Warn("persist user failed", zap.Error(err))
	}
}

func (m profileModel) Update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case profileLoadedMsg:
		if msg.err != nil {
			m.deps.Log.Warn("refresh profile failed", zap.Error(msg.err))
			return m, nil
		}
		m.storeUser(msg.user)
		return m, nil

	case profileSavedMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = errorNotice(profileSaveFailed)
			return m, nil
		}
		m.storeUser(msg.user)
		m.mode = profileViewing
		m.notice = successNotice(profileSaved)
		return m, nil

	case avatarSavedMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = errorNotice(avatarFailed)
			return m, nil
		}
		m.storeUser(msg.user)
		m.mode = profileViewing
		m.notice = successNotice(avatarSaved)
		return m, nil

	case passwordChangedMsg:
		m.busy = false
		if msg.err != nil {
			m.notice = errorNotice(passwordFailed)
			return m, nil
		}
		m.mode = profileViewing
		m.notice = successNotice(passwordSaved)
		return m, nil

	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		if m.mode == profileViewing {
			return m.updateViewing(msg)
		}
		return m.updateForm(msg)
	}
	return m, nil
}

func (m profileModel) updateViewing(msg tea.KeyMsg) (profileModel, tea.Cmd) {
	u := m.user()
	switch msg.String() {
	case "e":
		m.mode = profileEditing
		m.form = newForm(
			formField{label: "name", value: u.Name()},
			formField{label: "phone", value: u.Phone()},
			formField{label: "address", value: u.Address()},
		)
		m.notice = notice{}
	case "a":
		m.mode = profileAvatar
		m.form = newForm(formField{label: "image path", hint: "PNG or JPEG, up to 5MB"})
		m.notice = notice{}
	case "p":
		m.mode = profilePassword
		m.form = newForm(
			formField{label: "current password", secret: true},
			formField{label: "new password", secret: true},
			formField{label: "confirm password", secret: true},
		)
		m.notice = notice{}
	case "o":
		if img := u.ProfileImage(); img != "" {
			if err := m.deps.OpenURL(m.deps.mediaURL(img)); err != nil {
				m.notice = errorNotice("could not open image: " + err.Error())
			}
		}
	case "x":
		if m.deps.Session != nil {
			if err := m.deps.Session.Logout(); err != nil {
				m.deps.Log.Warn("logout failed", zap.Error(err))
			}
		}
		return m, navigateWith(navigateMsg{to: viewWelcome, notice: infoNotice("You have been logged out.")})
	}
	return m, nil
}

func (m profileModel) updateForm(msg tea.KeyMsg) (profileModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = profileViewing
		m.notice = notice{}
		return m, nil
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

func (m profileModel) submit() (profileModel, tea.Cmd) {
	d := m.deps
	switch m.mode {
	case profileEditing:
		in := forms.Profile{
			Name:    strings.TrimSpace(m.form.value(0)),
			Phone:   strings.TrimSpace(m.form.value(1)),
			Address: strings.TrimSpace(m.form.value(2)),
		}
		if err := d.Forms.Check(in); err != nil {
			m.notice = errorNotice(err.Error())
			return m, nil
		}
		m.busy = true
		return m, func() tea.Msg {
			ctx, cancel := d.ctx()
			defer cancel()
			u, err := d.Client.UpdateMe(ctx, client.ProfileUpdate(in))
			return profileSavedMsg{user: u, err: err}
		}

	case profileAvatar:
		path := strings.TrimSpace(m.form.value(0))
		if _, err := forms.CheckAvatar(path); err != nil {
			if errors.Is(err, forms.ErrImageType) || errors.Is(err, forms.ErrImageSize) {
				m.notice = errorNotice(err.Error())
			} else {
				m.notice = errorNotice(fmt.Sprintf("cannot read %s", path))
			}
			return m, nil
		}
		m.busy = true
		return m, func() tea.Msg {
			ctx, cancel := d.ctx()
			defer cancel()
			u, err := d.Client.UpdateProfileImage(ctx, path)
			return avatarSavedMsg{user: u, err: err}
		}

	case profilePassword:
		in := forms.PasswordChange{
			Current: m.form.value(0),
			New:     m.form.value(1),
			Confirm: m.form.value(2),
		}
		if err := d.Forms.CheckPasswordChange(in); err != nil {
			m.notice = errorNotice(err.Error())
			return m, nil
		}
		m.busy = true
		return m, func() tea.Msg {
			ctx, cancel := d.ctx()
			defer cancel()
			err := d.Client.ChangePassword(ctx, client.PasswordChange{CurrentPassword: in.Current, NewPassword: in.New})
			return passwordChangedMsg{err: err}
		}
	}
	return m, nil
}

func (m profileModel) helpKeys() string {
	if m.mode != profileViewing {
		return helpBar("tab", "next", "ctrl+s", "save", "esc", "cancel")
	}
	return helpBar("1-5", "tabs", "e", "edit", "a", "avatar", "p", "password", "o", "open avatar", "x", "logout", "q", "quit")
}

func (m profileModel) View() string {
	u := m.user()
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render(u.DisplayName()) + "\n")
	b.WriteString("  " + dimStyle.Render(u.Email()) + "\n\n")

	row := func(label, value string) {
		if value == "" {
			value = metaStyle.Render("-")
		} else {
			value = normalStyle.Render(value)
		}
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%-9s", label)), value)
	}

	switch m.mode {
	case profileViewing:
		row("Name", u.Name())
		row("Phone", u.Phone())
		row("Address", u.Address())
		row("Avatar", u.ProfileImage())
	case profileEditing:
		b.WriteString("  " + sectionHeaderStyle.Render("Edit Profile") + "\n")
		b.WriteString(indent(m.form.view(!m.busy), 2))
	case profileAvatar:
		b.WriteString("  " + sectionHeaderStyle.Render("Profile Picture") + "\n")
		b.WriteString(indent(m.form.view(!m.busy), 2))
	case profilePassword:
		b.WriteString("  " + sectionHeaderStyle.Render("Change Password") + "\n")
		b.WriteString(indent(m.form.view(!m.busy), 2))
	}

	b.WriteString("\n")
	switch {
	case m.busy:
		b.WriteString("  " + dimStyle.Render("Saving...") + "\n")
	case m.notice.kind != noticeNone:
		b.WriteString("  " + m.notice.String() + "\n")
	}
	return b.String()
}
