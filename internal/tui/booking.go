package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/smartwaste/pickup/internal/forms"
	"github.com/smartwaste/pickup/internal/geo"
	"github.com/smartwaste/pickup/pkg/client"
	"github.com/smartwaste/pickup/pkg/domain"
)

// mapZoom is the OpenStreetMap zoom used when opening a center.
const mapZoom = 15

const (
	bkType = iota
	bkQuantity
	bkDate
	bkTime
	bkAddress
	bkImage
)

type wasteTypesLoadedMsg struct {
	types []domain.WasteType
	err   error
}

type centersLoadedMsg struct {
	centers []domain.Center
	err     error
}

type locatedMsg struct{ result geo.Result }

type nearestCenterMsg struct {
	resp *client.NearestCenterResponse
	err  error
}

type bookingCreatedMsg struct {
	booking *domain.Booking
	err     error
}

type bookingModel struct {
	deps Deps
	step int // 1 details, 2 center

	types    []domain.WasteType
	typeIdx  int // -1 until a type is chosen
	wantType int // preselected waste type id
	form     form

	centers   []domain.Center
	cursor    int
	selected  int // center id, 0 for none
	nearest   *domain.Center
	userLoc   *domain.Coordinate
	mapCenter domain.Coordinate
	locating  bool

	loadingTypes bool
	submitting   bool
	notice       notice
	width        int
	height       int
}

func newBookingModel(d Deps, wasteTypeID int) bookingModel {
	return bookingModel{
		deps:     d,
		step:     1,
		typeIdx:  -1,
		wantType: wasteTypeID,
		form: newForm(
			formField{label: "waste type", hint: "loading..."},
			formField{label: "quantity (kg)", hint: "e.g. 5"},
			formField{label: "pickup date", hint: "YYYY-MM-DD"},
			formField{label: "pickup time", hint: "HH:MM"},
			formField{label: "address"},
			formField{label: "image", hint: "optional path to a photo"},
		),
		mapCenter:    domain.DefaultMapCenter,
		locating:     true,
		loadingTypes: true,
	}
}

func (m bookingModel) Init() tea.Cmd {
	d := m.deps
	loadTypes := func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		types, err := d.Client.ListWasteTypes(ctx)
		return wasteTypesLoadedMsg{types: types, err: err}
	}
	loadCenters := func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		centers, err := d.Client.ListCenters(ctx)
		return centersLoadedMsg{centers: centers, err: err}
	}
	locate := func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		return locatedMsg{result: geo.Resolve(ctx, d.Locator, d.Log)}
	}
	return tea.Batch(loadTypes, loadCenters, locate)
}

func (m bookingModel) findNearest(loc domain.Coordinate) tea.Cmd {
	d := m.deps
	return func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		resp, err := d.Client.NearestCenter(ctx, loc)
		return nearestCenterMsg{resp: resp, err: err}
	}
}

func (m bookingModel) wasteType() *domain.WasteType {
	if m.typeIdx < 0 || m.typeIdx >= len(m.types) {
		return nil
	}
	return &m.types[m.typeIdx]
}

func (m *bookingModel) selectType(idx int) {
	m.typeIdx = idx
	if wt := m.wasteType(); wt != nil {
		m.form.set(bkType, fmt.Sprintf("%s (%s/kg)", wt.Name, rupees(wt.PricePerKg)))
	}
}

func (m bookingModel) details() forms.Booking {
	b := forms.Booking{
		Quantity:   m.form.value(bkQuantity),
		PickupDate: strings.TrimSpace(m.form.value(bkDate)),
		PickupTime: strings.TrimSpace(m.form.value(bkTime)),
		Address:    strings.TrimSpace(m.form.value(bkAddress)),
		ImagePath:  strings.TrimSpace(m.form.value(bkImage)),
	}
	if wt := m.wasteType(); wt != nil {
		b.WasteTypeID = wt.ID
	}
	return b
}

func (m bookingModel) estimate() string {
	return forms.Estimate(m.form.value(bkQuantity), m.wasteType())
}

func (m bookingModel) centerName(id int) string {
	for _, c := range m.centers {
		if c.ID == id {
			return c.Name
		}
	}
	if m.nearest != nil && m.nearest.ID == id {
		return m.nearest.Name
	}
	return "Not selected"
}

func (m bookingModel) Update(msg tea.Msg) (bookingModel, tea.Cmd) {
	switch msg := msg.(type) {
	case wasteTypesLoadedMsg:
		m.loadingTypes = false
		if msg.err != nil {
			m.deps.Log.Warn("load waste types failed", zap.Error(msg.err))
			m.notice = errorNotice("Could not load waste types: " + apiMessage(msg.err, msg.err.Error()))
			return m, nil
		}
		m.types = msg.types
		m.form.fields[bkType].hint = "←/→ to choose"
		if m.wantType != 0 {
			for i, t := range m.types {
				if t.ID == m.wantType {
					m.selectType(i)
					break
				}
			}
		}
		return m, nil

	case centersLoadedMsg:
		if msg.err != nil {
			m.deps.Log.Warn("load centers failed", zap.Error(msg.err))
			return m, nil
		}
		m.centers = msg.centers
		m.cursor = m.indexOf(m.selected)
		return m, nil

	case locatedMsg:
		m.locating = false
		m.mapCenter = msg.result.Center
		if !msg.result.Found {
			return m, nil
		}
		loc := msg.result.User
		m.userLoc = &loc
		return m, m.findNearest(loc)

	case nearestCenterMsg:
		if msg.err != nil {
			m.deps.Log.Warn("nearest center lookup failed", zap.Error(msg.err))
			return m, nil
		}
		c := msg.resp.Center
		m.nearest = &c
		m.selected = c.ID
		m.cursor = m.indexOf(c.ID)
		return m, nil

	case bookingCreatedMsg:
		m.submitting = false
		if msg.err != nil {
			m.deps.Log.Warn("create booking failed", zap.Error(msg.err))
			text := "Error creating booking."
			if d := client.Detail(msg.err); d != "" {
				text += " " + d
			}
			m.notice = errorNotice(text)
			return m, nil
		}
		return m, navigateWith(navigateMsg{
			to:        viewHistory,
			bookingID: msg.booking.ID,
			notice:    successNotice(fmt.Sprintf("Booking #%d created.", msg.booking.ID)),
		})

	case tea.KeyMsg:
		if m.submitting {
			return m, nil
		}
		if m.step == 1 {
			return m.updateDetails(msg)
		}
		return m.updateCenter(msg)
	}
	return m, nil
}

func (m bookingModel) indexOf(centerID int) int {
	for i, c := range m.centers {
		if c.ID == centerID {
			return i
		}
	}
	return 0
}

func (m bookingModel) updateDetails(msg tea.KeyMsg) (bookingModel, tea.Cmd) {
	key := msg.String()
	switch key {
	case "esc":
		return m, navigate(viewDashboard)
	case "ctrl+s", "ctrl+n":
		return m.advance(), nil
	case "enter":
		if m.form.last() {
			return m.advance(), nil
		}
		m.form.next()
		return m, nil
	}

	if m.form.focus == bkType {
		switch key {
		case "left", "h":
			if len(m.types) > 0 {
				m.selectType((max(m.typeIdx, 0) - 1 + len(m.types)) % len(m.types))
			}
			return m, nil
		case "right", "l", " ":
			if len(m.types) > 0 {
				m.selectType((m.typeIdx + 1) % len(m.types))
			}
			return m, nil
		case "tab", "down", "shift+tab", "up":
			m.form.handleKey(key)
		}
		return m, nil
	}

	m.notice = notice{}
	m.form.handleKey(key)
	return m, nil
}

// advance validates the details and moves to the center step.
func (m bookingModel) advance() bookingModel {
	if err := m.deps.Forms.CheckBooking(m.details()); err != nil {
		m.notice = errorNotice(err.Error())
		return m
	}
	m.notice = notice{}
	m.step = 2
	return m
}

func (m bookingModel) updateCenter(msg tea.KeyMsg) (bookingModel, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.step = 1
		m.notice = notice{}
	case "j", "down":
		if m.cursor < len(m.centers)-1 {
			m.cursor++
		}
	case "k", "up":
		if m.cursor > 0 {
			m.cursor--
		}
	case "enter":
		if m.cursor < len(m.centers) {
			m.selected = m.centers[m.cursor].ID
		}
	case "o":
		target := m.mapCenter
		if m.cursor < len(m.centers) {
			target = m.centers[m.cursor].Location()
		}
		if err := m.deps.OpenURL(target.MapURL(mapZoom)); err != nil {
			m.notice = errorNotice("Could not open the map: " + err.Error())
		}
	case "ctrl+s":
		return m.submit()
	}
	return m, nil
}

func (m bookingModel) submit() (bookingModel, tea.Cmd) {
	details := m.details()
	if err := m.deps.Forms.CheckBooking(details); err != nil {
		m.step = 1
		m.notice = errorNotice(err.Error())
		return m, nil
	}

	m.submitting = true
	m.notice = notice{}
	req := details.Request(m.selected)
	d := m.deps
	return m, func() tea.Msg {
		ctx, cancel := d.ctx()
		defer cancel()
		b, err := d.Client.CreateBooking(ctx, req)
		return bookingCreatedMsg{booking: b, err: err}
	}
}

func (m bookingModel) helpKeys() string {
	if m.step == 1 {
		return helpBar("tab", "next", "←/→", "waste type", "ctrl+s", "continue", "esc", "cancel")
	}
	return helpBar("j/k", "nav", "enter", "select", "o", "open map", "ctrl+s", "submit", "esc", "back")
}

func (m bookingModel) View() string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Book Waste Pickup") + "\n")
	b.WriteString("  " + dimStyle.Render("Two quick steps to schedule a pickup.") + "  " + m.stepPills() + "\n\n")

	if m.step == 1 {
		b.WriteString(indent(m.form.view(!m.submitting), 2))
	} else {
		b.WriteString(m.centerView())
	}

	b.WriteString("\n  " + dimStyle.Render("Estimated price: ") + priceStyle.Render("₹"+m.estimate()) + "\n")
	switch {
	case m.submitting:
		b.WriteString("  " + dimStyle.Render("Submitting booking...") + "\n")
	case m.notice.kind != noticeNone:
		b.WriteString("  " + m.notice.String() + "\n")
	}
	return b.String()
}

func (m bookingModel) stepPills() string {
	one, two := metaStyle, metaStyle
	if m.step == 1 {
		one = accentStyle
	} else {
		two = accentStyle
	}
	return one.Render("1 Details") + metaStyle.Render(" · ") + two.Render("2 Location & Center")
}

func (m bookingModel) centerView() string {
	var b strings.Builder
	switch {
	case m.locating:
		b.WriteString("  " + dimStyle.Render("Finding your location...") + "\n")
	case m.userLoc != nil:
		b.WriteString("  " + dimStyle.Render("You are here: ") + normalStyle.Render(m.userLoc.String()) + "\n")
	default:
		b.WriteString("  " + dimStyle.Render("Location unavailable. Map centred on ") + normalStyle.Render(m.mapCenter.String()) + "\n")
	}
	if m.nearest != nil {
		b.WriteString("  " + dimStyle.Render("Nearest center: ") + accentStyle.Render(m.nearest.Name) + "\n")
	}
	b.WriteString("  " + dimStyle.Render("Selected: ") + selectedStyle.Render(m.centerName(m.selected)) + "\n\n")

	if len(m.centers) == 0 {
		b.WriteString("  " + dimStyle.Render("No collection centers available.") + "\n")
		return b.String()
	}
	for i, c := range m.centers {
		cursor := "  "
		name := normalStyle.Render(c.Name)
		if i == m.cursor {
			cursor = accentStyle.Render("> ")
			name = selectedStyle.Render(c.Name)
		}
		mark := metaStyle.Render("○")
		if c.ID == m.selected {
			mark = accentStyle.Render("●")
		}
		fmt.Fprintf(&b, "  %s%s %s  %s\n", cursor, mark, name, dimStyle.Render(truncStr(c.Address, 48)))
	}
	return b.String()
}
