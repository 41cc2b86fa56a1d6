package main

import (
	"fmt"
	"io"
	"math/rand/v2"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/smartwaste/pickup/internal/tui"
	"github.com/smartwaste/pickup/pkg/domain"
)

var pickupTips = [...]string{
	"Rinse food containers before they go in the recyclable bag.",
	"Flatten cardboard boxes. They take half the space on the truck.",
	"Batteries and paint are hazardous. Contact support before booking them.",
	"Book the day before and you can pick any morning slot.",
	"A clear photo of the waste gets your booking verified faster.",
	"Mixed bags are priced as Non-Bio. Sort them and pay less.",
	"Coffee grounds and leaves are Bio waste. Compost loves them.",
	"Glass bottles and metal cans are worth keeping apart from plastic.",
	"\"pickup nearest\" shows the center closest to you.",
	"\"pickup bookings\" lists everything you have booked so far.",
}

func newWelcomeCmd(get func() *env) *cobra.Command {
	return &cobra.Command{
		Use:   "welcome",
		Short: "Show the welcome page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var user domain.User
			if e := get(); e.guard.Allow() {
				user = e.session.Current().User
			}
			printWelcome(cmd.OutOrStdout(), user)
			return nil
		},
	}
}

func printWelcome(w io.Writer, user domain.User) {
	fmt.Fprint(w, tui.WelcomePage(user, 80))

	tip := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render(pickupTips[rand.IntN(len(pickupTips))])
	label := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#D4A017")).
		Render("Tip:")

	next := "To get started: pickup login  (no account? pickup register)"
	if user != nil {
		next = "To book a pickup: pickup book -i"
	}
	hint := lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render(next)

	fmt.Fprintf(w, "  %s %s\n\n  %s\n\n", label, tip, hint)
}
