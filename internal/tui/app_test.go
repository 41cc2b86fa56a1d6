package tui

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/smartwaste/pickup/internal/forms"
	"github.com/smartwaste/pickup/internal/session"
	"github.com/smartwaste/pickup/internal/storage"
	"github.com/smartwaste/pickup/pkg/client"
	"github.com/smartwaste/pickup/pkg/domain"
)

var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.Local)

var testUser = domain.User{"name": "Asha", "email": "asha@example.com", "phone": "9876543210", "address": "12 Market Road"}

// recorder captures clipboard writes and opened URLs.
type recorder struct {
	copied []string
	opened []string
}

// newTestDeps returns deps over an in-memory session. A non-nil user is
// stored as signed in. Client is nil unless a server is attached.
func newTestDeps(t *testing.T, user domain.User) (Deps, *recorder) {
	t.Helper()
	return newServerDeps(t, user, nil)
}

// newServerDeps is newTestDeps with an API client pointed at handler.
func newServerDeps(t *testing.T, user domain.User, handler http.Handler) (Deps, *recorder) {
	t.Helper()
	kv := storage.NewMemory()
	if user != nil {
		raw, err := json.Marshal(user)
		if err != nil {
			t.Fatal(err)
		}
		if err := kv.Apply(storage.Set(session.TokenKey, "test-token"), storage.Set(session.UserKey, string(raw))); err != nil {
			t.Fatal(err)
		}
	}

	var c *client.Client
	var api session.AuthAPI
	if handler != nil {
		srv := httptest.NewServer(handler)
		t.Cleanup(srv.Close)
		c = client.New(srv.URL + "/api/")
		api = c
	}
	store, err := session.Open(session.NewKVPersister(kv, nil), api, nil)
	if err != nil {
		t.Fatal(err)
	}

	rec := &recorder{}
	d := Deps{
		Client:  c,
		Session: store,
		Forms:   forms.NewWithClock(func() time.Time { return testNow }),
		Clipboard: func(s string) error {
			rec.copied = append(rec.copied, s)
			return nil
		},
		OpenURL: func(u string) error {
			rec.opened = append(rec.opened, u)
			return nil
		},
	}
	return d.withDefaults(), rec
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// key builds a KeyMsg whose String() is s.
func key(s string) tea.KeyMsg {
	special := map[string]tea.KeyType{
		"enter":     tea.KeyEnter,
		"esc":       tea.KeyEsc,
		"tab":       tea.KeyTab,
		"shift+tab": tea.KeyShiftTab,
		"backspace": tea.KeyBackspace,
		"up":        tea.KeyUp,
		"down":      tea.KeyDown,
		"left":      tea.KeyLeft,
		"right":     tea.KeyRight,
		"ctrl+c":    tea.KeyCtrlC,
		"ctrl+s":    tea.KeyCtrlS,
		"ctrl+r":    tea.KeyCtrlR,
		"ctrl+f":    tea.KeyCtrlF,
		"ctrl+n":    tea.KeyCtrlN,
		" ":         tea.KeySpace,
	}
	if kt, ok := special[s]; ok {
		return tea.KeyMsg{Type: kt}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

type updater[M any] interface {
	Update(tea.Msg) (M, tea.Cmd)
}

// typeText sends s one rune at a time.
func typeText[M updater[M]](m M, s string) M {
	for _, r := range s {
		m, _ = m.Update(key(string(r)))
	}
	return m
}

// runCmd executes cmd and flattens batches into their messages.
func runCmd(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, runCmd(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

// navigation returns the navigateMsg produced by cmd, if any.
func navigation(t *testing.T, cmd tea.Cmd) navigateMsg {
	t.Helper()
	for _, msg := range runCmd(cmd) {
		if nav, ok := msg.(navigateMsg); ok {
			return nav
		}
	}
	t.Fatal("expected a navigation command")
	return navigateMsg{}
}

func newTestApp(t *testing.T, user domain.User) App {
	t.Helper()
	d, _ := newTestDeps(t, user)
	a := NewApp(d)
	model, _ := a.Update(tea.WindowSizeMsg{Width: 100, Height: 60})
	return model.(App)
}

func TestAppStartsOnWelcome(t *testing.T) {
	a := newTestApp(t, nil)
	view := a.View()
	if !strings.Contains(view, "Smart Garbage Management System") {
		t.Errorf("expected welcome title, got:\n%s", view)
	}
	if !strings.Contains(view, "guest") {
		t.Errorf("expected guest header, got:\n%s", view)
	}
}

func TestAppTabSwitchingWithUser(t *testing.T) {
	tests := []struct {
		key  string
		want view
	}{
		{"1", viewWelcome},
		{"2", viewDashboard},
		{"3", viewBooking},
		{"4", viewHistory},
		{"5", viewProfile},
	}
	for _, tc := range tests {
		t.Run(tc.key, func(t *testing.T) {
			a := newTestApp(t, testUser)
			model, _ := a.Update(key(tc.key))
			if got := model.(App).view; got != tc.want {
				t.Errorf("after %q: view = %d, want %d", tc.key, got, tc.want)
			}
		})
	}
}

func TestAppGuardRedirectsToLogin(t *testing.T) {
	for _, k := range []string{"2", "3", "4", "5"} {
		t.Run(k, func(t *testing.T) {
			a := newTestApp(t, nil)
			model, _ := a.Update(key(k))
			a = model.(App)
			if a.view != viewLogin {
				t.Fatalf("view = %d, want login", a.view)
			}
			if !strings.Contains(a.View(), "Please log in to continue.") {
				t.Errorf("expected login notice, got:\n%s", a.View())
			}
		})
	}
}

func TestAppViewNeverRendersProtectedScreenWithoutUser(t *testing.T) {
	a := newTestApp(t, nil)
	a.view = viewDashboard
	view := a.View()
	if strings.Contains(view, "My Dashboard") {
		t.Errorf("dashboard rendered without a user:\n%s", view)
	}
	if !strings.Contains(view, "Welcome Back") {
		t.Errorf("expected login screen, got:\n%s", view)
	}
}

func TestAppLogoutElsewhereRedirectsOnNextMessage(t *testing.T) {
	a := newTestApp(t, testUser)
	model, _ := a.Update(key("2"))
	a = model.(App)
	if a.view != viewDashboard {
		t.Fatalf("view = %d, want dashboard", a.view)
	}

	if err := a.deps.Session.Logout(); err != nil {
		t.Fatal(err)
	}
	model, _ = a.Update(bookingsLoadedMsg{})
	if got := model.(App).view; got != viewLogin {
		t.Errorf("view after logout = %d, want login", got)
	}
}

func TestAppEscFromLoginReturnsToWelcome(t *testing.T) {
	a := newTestApp(t, nil)
	model, _ := a.Update(key("4"))
	a = model.(App)
	if a.view != viewLogin {
		t.Fatalf("view = %d, want login", a.view)
	}

	_, cmd := a.Update(key("esc"))
	nav := navigation(t, cmd)
	if nav.to != viewWelcome {
		t.Fatalf("esc navigated to %d, want welcome", nav.to)
	}
	model, _ = a.Update(nav)
	if got := model.(App).view; got != viewWelcome {
		t.Errorf("view = %d, want welcome", got)
	}
}

func TestAppQuitKeys(t *testing.T) {
	a := newTestApp(t, nil)
	if _, cmd := a.Update(key("q")); cmd == nil {
		t.Error("expected quit on q from welcome")
	}

	model, _ := a.Update(navigateMsg{to: viewLogin})
	a = model.(App)
	model, _ = a.Update(key("q"))
	if got := model.(App).login.form.value(loginEmail); got != "q" {
		t.Errorf("q should type into the login form, email = %q", got)
	}
	if _, cmd := a.Update(key("ctrl+c")); cmd == nil {
		t.Error("expected quit on ctrl+c while editing")
	}
}

func TestAppHelpOverlay(t *testing.T) {
	a := newTestApp(t, nil)
	model, _ := a.Update(key("?"))
	a = model.(App)
	if !a.helpOpen || !strings.Contains(a.View(), "pickup book") {
		t.Fatalf("expected help overlay, got:\n%s", a.View())
	}
	model, _ = a.Update(key("esc"))
	if model.(App).helpOpen {
		t.Error("esc should close help")
	}
}

func TestAppHeaderShowsUser(t *testing.T) {
	a := newTestApp(t, testUser)
	if !strings.Contains(a.View(), "Asha") {
		t.Errorf("expected user name in header:\n%s", a.View())
	}
}

func TestAppWithBookingPreselectsType(t *testing.T) {
	d, _ := newTestDeps(t, testUser)
	a := NewApp(d).WithBooking(2)
	if a.start == nil || a.start.to != viewBooking {
		t.Fatal("expected booking start")
	}

	model, _ := a.Update(*a.start)
	a = model.(App)
	if a.view != viewBooking {
		t.Fatalf("view = %d, want booking", a.view)
	}
	model, _ = a.Update(wasteTypesLoadedMsg{types: []domain.WasteType{
		{ID: 1, Name: "Bio", PricePerKg: 5},
		{ID: 2, Name: "Plastic", PricePerKg: 10},
	}})
	if wt := model.(App).booking.wasteType(); wt == nil || wt.ID != 2 {
		t.Errorf("preselected type = %+v, want id 2", wt)
	}
}
