package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smartwaste/pickup/pkg/domain"
)

// Shimmer animation for the PICKUP logo.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmerLogo renders "P I C K U P" as a wave of green light moving
// left to right, from deep moss (#1a3a24) to leaf green (#4ade80).
func renderShimmerLogo(frame int) string {
	const text = "PICKUP"
	n := len(text)
	t := float64(frame)

	var out strings.Builder
	for i := 0; i < n; i++ {
		x := float64(i) / float64(n-1)
		phase := t*0.1 - x*3.0 + math.Sin(t*0.023)*2.0

		b := math.Pow(math.Sin(phase)*0.5+0.5, 1.3)
		b = b*0.75 + math.Sin(t*0.035)*0.12 + 0.18
		b = math.Max(0.05, math.Min(1.0, b))

		color := fmt.Sprintf("#%02X%02X%02X",
			clampByte(26+b*(74-26)),
			clampByte(58+b*(222-58)),
			clampByte(36+b*(128-36)))

		out.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(string(text[i])))
		if i < n-1 {
			out.WriteString("  ")
		}
	}
	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34d474"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80")).
			Bold(true)

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#c0c4d0")).
				Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#f87171"))

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#22d3ee"))

	priceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c8a84c")).
			Bold(true)

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#34d474"))

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#505868")).
				Italic(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#2a3040")).
			Padding(0, 1)
)

// Colours for booking and payment status pills.
var (
	statusColors = map[string]string{
		domain.StatusCompleted:  "#4CAF50",
		domain.StatusInProgress: "#FF9800",
		domain.StatusAccepted:   "#2196F3",
		domain.StatusPending:    "#9E9E9E",
	}
	paymentColors = map[string]string{
		domain.PaymentPaid: "#4CAF50",
		"pending":          "#FF9800",
		"failed":           "#F44336",
	}
)

// StatusStyle returns the pill style for a booking status. Unknown statuses
// render red.
func StatusStyle(status string) lipgloss.Style {
	c, ok := statusColors[status]
	if !ok {
		c = "#F44336"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c)).Bold(true)
}

// PaymentStyle returns the pill style for a payment status. Unknown statuses
// render grey.
func PaymentStyle(status string) lipgloss.Style {
	c, ok := paymentColors[status]
	if !ok {
		c = "#9E9E9E"
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c))
}

// statusPill renders "IN PROGRESS" style labels.
func statusPill(status string) string {
	return StatusStyle(status).Render(domain.StatusLabel(status))
}

func paymentPill(status string) string {
	return PaymentStyle(status).Render("Payment: " + strings.ToUpper(status))
}

// rupees formats an amount with the currency sign.
func rupees(a domain.Amount) string {
	return "₹" + a.String()
}

// helpEntry renders a single "key label" pair for help bars.
func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

// helpBar joins help entries given as key, label pairs.
func helpBar(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return " " + strings.Join(parts, "  ")
}

// helpView renders the help overlay.
func helpView() string {
	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	sectionStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)

	screens := []struct{ key, desc string }{
		{"1", "Home: categories, guidelines, contact"},
		{"2", "Dashboard: booking summary"},
		{"3", "Book a pickup"},
		{"4", "Booking history"},
		{"5", "Profile and password"},
	}
	commands := []struct{ cmd, desc string }{
		{"pickup", "Open this interface"},
		{"pickup login", "Sign in"},
		{"pickup book", "Book a pickup from flags"},
		{"pickup bookings [id]", "List bookings or show one"},
		{"pickup logout", "Clear your session"},
	}

	var b strings.Builder
	fmt.Fprintf(&b, "\n  %s\n\n", titleStyle.Render("Smart Garbage Management System"))
	fmt.Fprintf(&b, "  %s\n", sectionStyle.Render("Screens"))
	for _, s := range screens {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(s.key), descStyle.Render(s.desc))
	}
	fmt.Fprintf(&b, "\n  %s\n", sectionStyle.Render("Commands"))
	for _, c := range commands {
		fmt.Fprintf(&b, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-22s", c.cmd)), descStyle.Render(c.desc))
	}
	return b.String()
}
