package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartwaste/pickup/internal/forms"
	"github.com/smartwaste/pickup/pkg/client"
	"github.com/smartwaste/pickup/pkg/domain"
)

type wasteCategory struct {
	name        string
	description string
	items       []string
	color       string
}

var wasteCategories = []wasteCategory{
	{
		name:        "Bio Waste",
		description: "Organic kitchen scraps, yard waste, food leftovers. Fully compostable and ideal for bio-processing.",
		items:       []string{"Food scraps", "Coffee grounds", "Leaves & grass", "Paper towels"},
		color:       "#4CAF50",
	},
	{
		name:        "Non-Bio Waste",
		description: "Materials that can't decompose easily and need special handling to avoid pollution.",
		items:       []string{"Plastic wrappers", "Rubber", "Styrofoam", "Mixed polymers"},
		color:       "#F44336",
	},
	{
		name:        "Recyclable Waste",
		description: "Materials that can be reprocessed into new products, reducing landfill load and conserving resources.",
		items:       []string{"Cardboard", "Paper", "Glass bottles", "Metal cans"},
		color:       "#2196F3",
	},
}

var guidelines = []string{
	"Sign up or log in to book a pickup and track your history.",
	"Choose the correct waste type to get accurate pricing and routing.",
	"Use clear photos for faster verification when uploading waste images.",
	"Confirm pickup date/time and address before submitting.",
	"For hazardous items (batteries, chemicals), contact support before booking.",
}

// Contact form texts.
const (
	contactIncomplete = "Please complete all fields before sending."
	contactSent       = "Thanks! Your message has been sent."
	contactFailed     = "Something went wrong. Please try again."
)

const (
	contactName = iota
	contactEmail
	contactMessage
)

type contactSentMsg struct{ err error }

type welcomeModel struct {
	deps    Deps
	contact form
	editing bool // contact form focused
	sending bool
	notice  notice
	width   int
	height  int
}

func newWelcomeModel(d Deps) welcomeModel {
	return welcomeModel{
		deps: d,
		contact: newForm(
			formField{label: "name"},
			formField{label: "email", hint: "you@example.com"},
			formField{label: "message"},
		),
	}
}

func (m welcomeModel) Init() tea.Cmd { return nil }

func (m welcomeModel) signedIn() bool {
	return m.deps.Session != nil && m.deps.Session.Current().HasUser()
}

func (m welcomeModel) Update(msg tea.Msg) (welcomeModel, tea.Cmd) {
	switch msg := msg.(type) {
	case contactSentMsg:
		m.sending = false
		if msg.err != nil {
			m.notice = errorNotice(contactFailed)
			return m, nil
		}
		m.notice = successNotice(contactSent)
		m.contact.reset()
		m.editing = false
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateContact(msg)
		}
		switch msg.String() {
		case "c":
			m.editing = true
			m.notice = notice{}
		case "l":
			if !m.signedIn() {
				return m, navigate(viewLogin)
			}
		case "r":
			if !m.signedIn() {
				return m, navigate(viewRegister)
			}
		case "b":
			return m, navigate(viewBooking)
		case "d":
			return m, navigate(viewDashboard)
		}
	}
	return m, nil
}

func (m welcomeModel) updateContact(msg tea.KeyMsg) (welcomeModel, tea.Cmd) {
	if m.sending {
		return m, nil
	}
	switch msg.String() {
	case "esc":
		m.editing = false
		return m, nil
	case "ctrl+s":
		return m.submit()
	case "enter":
		if m.contact.last() {
			return m.submit()
		}
		m.contact.next()
		return m, nil
	}
	m.contact.handleKey(msg.String())
	return m, nil
}

func (m welcomeModel) submit() (welcomeModel, tea.Cmd) {
	in := forms.Contact{
		Name:    strings.TrimSpace(m.contact.value(contactName)),
		Email:   strings.TrimSpace(m.contact.value(contactEmail)),
		Message: strings.TrimSpace(m.contact.value(contactMessage)),
	}
	if in.Name == "" || in.Email == "" || in.Message == "" {
		m.notice = errorNotice(contactIncomplete)
		return m, nil
	}
	if err := m.deps.Forms.Check(in); err != nil {
		m.notice = errorNotice(err.Error())
		return m, nil
	}

	m.sending = true
	m.notice = notice{}
	d := m.deps
	return m, func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		err := d.Client.SendContact(ctx, client.ContactMessage(in))
		return contactSentMsg{err: err}
	}
}

func (m welcomeModel) helpKeys() string {
	if m.editing {
		return helpBar("tab", "next", "ctrl+s", "send", "esc", "done")
	}
	if m.signedIn() {
		return helpBar("1-5", "tabs", "b", "book pickup", "d", "dashboard", "c", "contact", "?", "help", "q", "quit")
	}
	return helpBar("1-5", "tabs", "l", "login", "r", "register", "c", "contact", "?", "help", "q", "quit")
}

func (m welcomeModel) View() string {
	var user domain.User
	if m.signedIn() {
		user = m.deps.Session.Current().User
	}
	var b strings.Builder
	b.WriteString(WelcomePage(user, m.width))

	b.WriteString("  " + sectionHeaderStyle.Render("Contact Us") + "\n")
	if m.editing || m.contact.value(contactName) != "" {
		b.WriteString(indent(m.contact.view(m.editing && !m.sending), 2))
	} else {
		b.WriteString("  " + metaStyle.Render("press c to send us a message") + "\n")
	}
	switch {
	case m.sending:
		b.WriteString("  " + dimStyle.Render("Sending...") + "\n")
	case m.notice.kind != noticeNone:
		b.WriteString("  " + m.notice.String() + "\n")
	}
	return b.String()
}

// WelcomePage renders the landing page: title, greeting for a signed-in
// user, usage guidelines and waste categories.
func WelcomePage(user domain.User, width int) string {
	var b strings.Builder

	b.WriteString("\n  " + titleStyle.Render("Smart Garbage Management System") + "\n")
	if user != nil {
		name := user.DisplayName()
		b.WriteString("  " + normalStyle.Render(fmt.Sprintf("Welcome back, %s 👋", name)) + "\n")
	}
	b.WriteString("  " + dimStyle.Render("Efficient waste collection for a cleaner, greener planet.") + "\n\n")

	b.WriteString("  " + sectionHeaderStyle.Render("How to use this site") + "\n")
	for i, g := range guidelines {
		fmt.Fprintf(&b, "  %s %s\n", metaStyle.Render(fmt.Sprintf("%d.", i+1)), normalStyle.Render(g))
	}
	b.WriteString("\n")

	b.WriteString("  " + sectionHeaderStyle.Render("Waste Categories") + "\n")
	desc := max(width-8, 30)
	for _, c := range wasteCategories {
		name := selectedStyle.Foreground(lipgloss.Color(c.color)).Render(c.name)
		fmt.Fprintf(&b, "  %s  %s\n", name, dimStyle.Render(strings.Join(c.items, " · ")))
		fmt.Fprintf(&b, "    %s\n", metaStyle.Render(truncStr(c.description, desc)))
	}
	b.WriteString("\n")

	return b.String()
}
