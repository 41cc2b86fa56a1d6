package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/smartwaste/pickup/pkg/domain"
)

// recentBookings is how many bookings the dashboard lists.
const recentBookings = 5

type bookingsLoadedMsg struct {
	bookings []domain.Booking
	err      error
}

type dashboardModel struct {
	deps     Deps
	bookings []domain.Booking
	stats    domain.BookingStats
	cursor   int
	loading  bool
	err      error
	width    int
	height   int
}

func newDashboardModel(d Deps) dashboardModel {
	return dashboardModel{deps: d, loading: true}
}

func (m dashboardModel) Init() tea.Cmd {
	return loadBookings(m.deps)
}

func loadBookings(d Deps) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		bookings, err := d.Client.BookingHistory(ctx)
		return bookingsLoadedMsg{bookings: bookings, err: err}
	}
}

func (m dashboardModel) recent() []domain.Booking {
	if len(m.bookings) > recentBookings {
		return m.bookings[:recentBookings]
	}
	return m.bookings
}

func (m dashboardModel) Update(msg tea.Msg) (dashboardModel, tea.Cmd) {
	switch msg := msg.(type) {
	case bookingsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.deps.Log.Warn("load bookings failed", zap.Error(msg.err))
			return m, nil
		}
		m.bookings = msg.bookings
		m.stats = domain.Summarize(msg.bookings)
		m.cursor = 0
		return m, nil

	case tea.KeyMsg:
		recent := m.recent()
		switch msg.String() {
		case "j", "down":
			if m.cursor < len(recent)-1 {
				m.cursor++
			}
		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}
		case "enter":
			if m.cursor < len(recent) {
				return m, navigateWith(navigateMsg{to: viewHistory, bookingID: recent[m.cursor].ID})
			}
		case "n":
			return m, navigate(viewBooking)
		case "h":
			return m, navigate(viewHistory)
		case "r":
			m.loading = true
			return m, loadBookings(m.deps)
		}
	}
	return m, nil
}

func (m dashboardModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("My Dashboard") + "\n")
	b.WriteString("  " + dimStyle.Render("Overview of your bookings and activities") + "\n\n")

	if m.loading {
		b.WriteString("  " + dimStyle.Render("Loading...") + "\n")
		return b.String()
	}
	if m.err != nil {
		b.WriteString("  " + errorStyle.Render("Could not load bookings: "+apiMessage(m.err, m.err.Error())) + "\n")
		return b.String()
	}

	cards := []string{
		statCard("Total Bookings", fmt.Sprintf("%d", m.stats.Total)),
		statCard("Pending", fmt.Sprintf("%d", m.stats.Pending)),
		statCard("Completed", fmt.Sprintf("%d", m.stats.Completed)),
		statCard("Total Spent", rupees(m.stats.TotalSpent)),
	}
	b.WriteString(indent(lipgloss.JoinHorizontal(lipgloss.Top, cards...), 2) + "\n\n")

	b.WriteString("  " + sectionHeaderStyle.Render("Recent Bookings") + "\n")
	recent := m.recent()
	if len(recent) == 0 {
		b.WriteString("  " + dimStyle.Render("No bookings yet. Create your first booking!") + "\n")
		return b.String()
	}
	for i, bk := range recent {
		cursor := "  "
		name := normalStyle.Render(bk.WasteTypeName())
		if i == m.cursor {
			cursor = accentStyle.Render("> ")
			name = selectedStyle.Render(bk.WasteTypeName())
		}
		fmt.Fprintf(&b, "  %s%s  %s  %s  %s  %s\n",
			cursor,
			metaStyle.Render(fmt.Sprintf("#%d", bk.ID)),
			name,
			dimStyle.Render(bk.QuantityKg.String()+" kg · "+bk.PickupDate),
			statusPill(bk.Status),
			priceStyle.Render(rupees(bk.TotalPrice)),
		)
	}
	return b.String()
}

func statCard(label, value string) string {
	return cardStyle.Width(18).Render(priceStyle.Render(value) + "\n" + dimStyle.Render(label))
}
