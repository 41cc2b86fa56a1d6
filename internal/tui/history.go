package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/smartwaste/pickup/pkg/domain"
)

type bookingLoadedMsg struct {
	id      int
	booking *domain.Booking
	err     error
}

type historyModel struct {
	deps     Deps
	bookings []domain.Booking
	detail   *domain.Booking
	detailID int // booking shown in detail, 0 for the list
	cursor   int
	loading  bool
	err      error
	notice   notice
	width    int
	height   int
}

// newHistoryModel opens the list, or the detail of bookingID when non-zero.
func newHistoryModel(d Deps, bookingID int) historyModel {
	return historyModel{deps: d, detailID: bookingID, loading: true}
}

func (m historyModel) Init() tea.Cmd {
	if m.detailID != 0 {
		return m.loadDetail(m.detailID)
	}
	return loadBookings(m.deps)
}

func (m historyModel) loadDetail(id int) tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		b, err := d.Client.GetBooking(ctx, id)
		return bookingLoadedMsg{id: id, booking: b, err: err}
	}
}

// current is the booking the c and o keys act on.
func (m historyModel) current() *domain.Booking {
	if m.detailID != 0 {
		return m.detail
	}
	if m.cursor < len(m.bookings) {
		return &m.bookings[m.cursor]
	}
	return nil
}

func (m historyModel) Update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case bookingsLoadedMsg:
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.deps.Log.Warn("load bookings failed", zap.Error(msg.err))
			return m, nil
		}
		m.bookings = msg.bookings
		if m.cursor >= len(m.bookings) {
			m.cursor = 0
		}
		return m, nil

	case bookingLoadedMsg:
		// Replies for a detail the user already left are dropped.
		if msg.id != m.detailID {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		if msg.err != nil {
			m.deps.Log.Warn("load booking failed", zap.Int("id", m.detailID), zap.Error(msg.err))
			return m, nil
		}
		m.detail = msg.booking
		return m, nil

	case tea.KeyMsg:
		return m.updateKeys(msg)
	}
	return m, nil
}

func (m historyModel) updateKeys(msg tea.KeyMsg) (historyModel, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.detailID == 0 && m.cursor < len(m.bookings)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.detailID == 0 && m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.detailID == 0 && m.cursor < len(m.bookings) {
			m.detailID = m.bookings[m.cursor].ID
			m.detail = nil
			m.loading = true
			m.notice = notice{}
			return m, m.loadDetail(m.detailID)
		}
	case "esc":
		if m.detailID != 0 {
			m.detailID = 0
			m.detail = nil
			m.err = nil
			m.notice = notice{}
			m.loading = m.bookings == nil
			if m.loading {
				return m, loadBookings(m.deps)
			}
		}
	case "c":
		if b := m.current(); b != nil {
			if err := m.deps.Clipboard(fmt.Sprintf("%d", b.ID)); err != nil {
				m.notice = errorNotice("copy failed: " + err.Error())
			} else {
				m.notice = successNotice(fmt.Sprintf("copied booking #%d", b.ID))
			}
		}
	case "o":
		if b := m.current(); b != nil {
			if b.WasteImage == "" {
				m.notice = infoNotice("this booking has no image")
			} else if err := m.deps.OpenURL(m.deps.mediaURL(b.WasteImage)); err != nil {
				m.notice = errorNotice("could not open image: " + err.Error())
			}
		}
	case "n":
		return m, navigate(viewBooking)
	case "r":
		m.loading = true
		m.notice = notice{}
		if m.detailID != 0 {
			return m, m.loadDetail(m.detailID)
		}
		return m, loadBookings(m.deps)
	}
	return m, nil
}

func (m historyModel) helpKeys() string {
	if m.detailID != 0 {
		return helpBar("c", "copy id", "o", "open image", "r", "refresh", "esc", "all bookings", "q", "quit")
	}
	return helpBar("1-5", "tabs", "j/k", "nav", "enter", "details", "c", "copy id", "o", "image", "n", "new", "q", "quit")
}

func (m historyModel) View() string {
	var b strings.Builder
	title := "My Bookings"
	if m.detailID != 0 {
		title = fmt.Sprintf("Booking #%d", m.detailID)
	}
	b.WriteString("\n  " + titleStyle.Render(title) + "\n\n")

	switch {
	case m.loading:
		b.WriteString("  " + dimStyle.Render("Loading...") + "\n")
	case m.err != nil:
		b.WriteString("  " + errorStyle.Render("Could not load bookings: "+apiMessage(m.err, m.err.Error())) + "\n")
	case m.detailID != 0:
		if m.detail == nil {
			b.WriteString("  " + dimStyle.Render("No bookings found.") + "\n")
		} else {
			b.WriteString(BookingDetail(*m.detail))
		}
	case len(m.bookings) == 0:
		b.WriteString("  " + dimStyle.Render("No bookings found.") + "\n")
		b.WriteString("  " + metaStyle.Render("press n to create a new booking") + "\n")
	default:
		b.WriteString(m.listView())
	}

	if m.notice.kind != noticeNone {
		b.WriteString("\n  " + m.notice.String() + "\n")
	}
	return b.String()
}

func (m historyModel) listView() string {
	var b strings.Builder
	for i, bk := range m.bookings {
		cursor := "  "
		name := normalStyle.Render(fmt.Sprintf("%-14s", truncStr(bk.WasteTypeName(), 14)))
		if i == m.cursor {
			cursor = accentStyle.Render("> ")
			name = selectedStyle.Render(fmt.Sprintf("%-14s", truncStr(bk.WasteTypeName(), 14)))
		}
		fmt.Fprintf(&b, "  %s%s %s  %s  %s  %s  %s\n",
			cursor,
			metaStyle.Render(fmt.Sprintf("#%-4d", bk.ID)),
			name,
			dimStyle.Render(bk.PickupDate+" "+bk.PickupTime),
			statusPill(bk.Status),
			paymentPill(bk.PaymentStatus),
			priceStyle.Render(rupees(bk.TotalPrice)),
		)
	}
	return b.String()
}

// BookingDetail renders every field of a booking.
func BookingDetail(bk domain.Booking) string {
	var b strings.Builder
	row := func(label, value string) {
		fmt.Fprintf(&b, "  %s %s\n", dimStyle.Render(fmt.Sprintf("%-18s", label+":")), normalStyle.Render(value))
	}
	fmt.Fprintf(&b, "  %s   %s\n", statusPill(bk.Status), paymentPill(bk.PaymentStatus))
	b.WriteString("  " + metaStyle.Render("Created: "+formatStamp(bk.CreatedAt)+" ("+formatTime(bk.CreatedAt)+")") + "\n\n")
	row("Waste Type", bk.WasteTypeName())
	row("Quantity", bk.QuantityKg.String()+" kg")
	row("Pickup Date", bk.PickupDate)
	row("Pickup Time", bk.PickupTime)
	row("Collection Center", bk.CenterName())
	row("Total Price", rupees(bk.TotalPrice))
	row("Address", bk.Address)
	if bk.WasteImage != "" {
		row("Waste Image", bk.WasteImage)
	}
	return b.String()
}
