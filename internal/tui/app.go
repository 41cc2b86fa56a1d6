package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/smartwaste/pickup/internal/browser"
	"github.com/smartwaste/pickup/internal/forms"
	"github.com/smartwaste/pickup/internal/geo"
	"github.com/smartwaste/pickup/internal/session"
	"github.com/smartwaste/pickup/pkg/client"
)

// requestTimeout bounds every API call started from a screen.
const requestTimeout = 30 * time.Second

type view int

const (
	viewWelcome view = iota
	viewLogin
	viewRegister
	viewForgot
	viewDashboard
	viewBooking
	viewHistory
	viewProfile
)

// protected reports whether v needs a signed-in user.
func (v view) protected() bool {
	switch v {
	case viewDashboard, viewBooking, viewHistory, viewProfile:
		return true
	}
	return false
}

// Deps is what the screens need from the outside world.
type Deps struct {
	Client    *client.Client
	Session   *session.Store
	Forms     *forms.Validator
	Locator   geo.Locator
	Log       *zap.Logger
	Clipboard func(string) error
	OpenURL   func(string) error
}

func (d Deps) withDefaults() Deps {
	if d.Forms == nil {
		d.Forms = forms.New()
	}
	if d.Locator == nil {
		d.Locator = geo.Denied{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Clipboard == nil {
		d.Clipboard = clipboard.WriteAll
	}
	if d.OpenURL == nil {
		d.OpenURL = browser.Open
	}
	return d
}

// mediaURL makes an image reference from the API openable.
func (d Deps) mediaURL(ref string) string {
	if d.Client == nil {
		return ref
	}
	return d.Client.MediaURL(ref)
}

func (d Deps) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// navigateMsg asks the App to switch screens.
type navigateMsg struct {
	to          view
	wasteTypeID int
	bookingID   int
	notice      notice
}

func navigate(to view) tea.Cmd {
	return func() tea.Msg { return navigateMsg{to: to} }
}

func navigateWith(msg navigateMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

// App is the root Bubbletea model.
type App struct {
	deps      Deps
	guard     session.Guard
	view      view
	welcome   welcomeModel
	login     loginModel
	register  registerModel
	forgot    forgotModel
	dashboard dashboardModel
	booking   bookingModel
	history   historyModel
	profile   profileModel
	helpOpen  bool
	start     *navigateMsg
	width     int
	height    int
	frame     int // logo shimmer animation frame
}

// NewApp creates the terminal application. It starts on the welcome screen.
func NewApp(d Deps) App {
	d = d.withDefaults()
	return App{
		deps:    d,
		guard:   session.NewGuard(d.Session),
		welcome: newWelcomeModel(d),
		login:   newLoginModel(d),
	}
}

// WithBooking starts the App in the booking wizard with the given waste type
// preselected. Zero selects nothing.
func (a App) WithBooking(wasteTypeID int) App {
	a.start = &navigateMsg{to: viewBooking, wasteTypeID: wasteTypeID}
	return a
}

func (a App) Init() tea.Cmd {
	if a.start != nil {
		return tea.Batch(shimmerTickCmd(), navigateWith(*a.start))
	}
	return tea.Batch(shimmerTickCmd(), a.welcome.Init())
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a = a.resize()
		return a, nil

	case shimmerTickMsg:
		a.frame++
		return a, shimmerTickCmd()

	case navigateMsg:
		return a.open(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		if a.helpOpen {
			switch msg.String() {
			case "?", "esc":
				a.helpOpen = false
			case "q":
				return a, tea.Quit
			}
			return a, nil
		}
		if !a.isEditing() {
			switch msg.String() {
			case "?":
				a.helpOpen = true
				return a, nil
			case "q":
				return a, tea.Quit
			case "1":
				return a.open(navigateMsg{to: viewWelcome})
			case "2":
				return a.open(navigateMsg{to: viewDashboard})
			case "3":
				return a.open(navigateMsg{to: viewBooking})
			case "4":
				return a.open(navigateMsg{to: viewHistory})
			case "5":
				return a.open(navigateMsg{to: viewProfile})
			}
		}
	}

	if a.view.protected() && !a.guard.Allow() {
		return a.open(navigateMsg{to: viewLogin})
	}

	var cmd tea.Cmd
	switch a.view {
	case viewWelcome:
		a.welcome, cmd = a.welcome.Update(msg)
	case viewLogin:
		a.login, cmd = a.login.Update(msg)
	case viewRegister:
		a.register, cmd = a.register.Update(msg)
	case viewForgot:
		a.forgot, cmd = a.forgot.Update(msg)
	case viewDashboard:
		a.dashboard, cmd = a.dashboard.Update(msg)
	case viewBooking:
		a.booking, cmd = a.booking.Update(msg)
	case viewHistory:
		a.history, cmd = a.history.Update(msg)
	case viewProfile:
		a.profile, cmd = a.profile.Update(msg)
	}
	return a, cmd
}

// open mounts a fresh model for the target screen. Protected screens are
// replaced by login while no user is known.
func (a App) open(msg navigateMsg) (App, tea.Cmd) {
	a.helpOpen = false
	to := msg.to
	if to.protected() && !a.guard.Allow() {
		to = viewLogin
		msg.notice = infoNotice("Please log in to continue.")
	}
	a.view = to

	var cmd tea.Cmd
	switch to {
	case viewWelcome:
		a.welcome = newWelcomeModel(a.deps)
		a.welcome.notice = msg.notice
		cmd = a.welcome.Init()
	case viewLogin:
		a.login = newLoginModel(a.deps)
		if msg.notice.kind != noticeNone {
			a.login.notice = msg.notice
		}
		cmd = a.login.Init()
	case viewRegister:
		a.register = newRegisterModel(a.deps)
		cmd = a.register.Init()
	case viewForgot:
		a.forgot = newForgotModel(a.deps)
		cmd = a.forgot.Init()
	case viewDashboard:
		a.dashboard = newDashboardModel(a.deps)
		cmd = a.dashboard.Init()
	case viewBooking:
		a.booking = newBookingModel(a.deps, msg.wasteTypeID)
		cmd = a.booking.Init()
	case viewHistory:
		a.history = newHistoryModel(a.deps, msg.bookingID)
		a.history.notice = msg.notice
		cmd = a.history.Init()
	case viewProfile:
		a.profile = newProfileModel(a.deps)
		cmd = a.profile.Init()
	}
	return a.resize(), cmd
}

// resize hands the body area to every screen.
func (a App) resize() App {
	// Chrome: header(2) + tabs(1) + help(1) = 4 lines
	w, h := a.width, a.height-4
	a.welcome.width, a.welcome.height = w, h
	a.login.width, a.login.height = w, h
	a.register.width, a.register.height = w, h
	a.forgot.width, a.forgot.height = w, h
	a.dashboard.width, a.dashboard.height = w, h
	a.booking.width, a.booking.height = w, h
	a.history.width, a.history.height = w, h
	a.profile.width, a.profile.height = w, h
	return a
}

func (a App) isEditing() bool {
	switch a.view {
	case viewWelcome:
		return a.welcome.editing
	case viewLogin, viewRegister, viewForgot:
		return true
	case viewBooking:
		return a.booking.step == 1
	case viewProfile:
		return a.profile.mode != profileViewing
	}
	return false
}

func (a App) View() string {
	cur := session.Session{}
	if a.deps.Session != nil {
		cur = a.deps.Session.Current()
	}

	logo := renderShimmerLogo(a.frame)
	who := dimStyle.Render("guest")
	switch {
	case cur.HasUser():
		who = normalStyle.Render(cur.User.DisplayName())
	case cur.Authenticated():
		who = dimStyle.Render("signed in")
	}
	header := center(logo, a.width) + "\n" + center(who, a.width)

	type tabEntry struct {
		key  string
		name string
		v    view
	}
	tabs := []tabEntry{
		{"1", "Home", viewWelcome},
		{"2", "Dashboard", viewDashboard},
		{"3", "Book", viewBooking},
		{"4", "History", viewHistory},
		{"5", "Profile", viewProfile},
	}
	colWidth := a.width / len(tabs)
	var tabBar strings.Builder
	for _, t := range tabs {
		var label string
		if t.v == a.view {
			label = accentStyle.Render(t.key) + " " + selectedStyle.Underline(true).Render(t.name)
		} else {
			label = metaStyle.Render(t.key) + " " + dimStyle.Render(t.name)
		}
		labelWidth := lipgloss.Width(label)
		leftPad := max((colWidth-labelWidth)/2, 0)
		rightPad := max(colWidth-labelWidth-leftPad, 0)
		tabBar.WriteString(strings.Repeat(" ", leftPad) + label + strings.Repeat(" ", rightPad))
	}

	// A protected screen never renders without a user.
	shown := a.view
	if shown.protected() && !a.guard.Allow() {
		shown = viewLogin
	}

	var body, help string
	switch shown {
	case viewWelcome:
		body = a.welcome.View()
		help = a.welcome.helpKeys()
	case viewLogin:
		body = a.login.View()
		help = helpBar("tab", "next", "enter", "sign in", "ctrl+r", "register", "ctrl+f", "forgot", "esc", "home")
	case viewRegister:
		body = a.register.View()
		help = helpBar("tab", "next", "ctrl+s", "register", "esc", "login")
	case viewForgot:
		body = a.forgot.View()
		help = helpBar("enter", "send", "esc", "login")
	case viewDashboard:
		body = a.dashboard.View()
		help = helpBar("1-5", "tabs", "j/k", "nav", "enter", "open", "n", "new booking", "r", "refresh", "q", "quit")
	case viewBooking:
		body = a.booking.View()
		help = a.booking.helpKeys()
	case viewHistory:
		body = a.history.View()
		help = a.history.helpKeys()
	case viewProfile:
		body = a.profile.View()
		help = a.profile.helpKeys()
	}

	if a.helpOpen {
		body = helpView()
		help = helpBar("esc", "close")
	}

	chrome := 4
	body = strings.TrimRight(truncateToHeight(body, a.height-chrome), "\n")

	return fmt.Sprintf("%s\n%s\n%s\n%s", header, tabBar.String(), body, help)
}

// center pads s to sit in the middle of width columns.
func center(s string, width int) string {
	pad := max((width-lipgloss.Width(s))/2, 0)
	return strings.Repeat(" ", pad) + s
}
