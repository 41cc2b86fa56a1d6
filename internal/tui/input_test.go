package tui

import (
	"strings"
	"testing"
)

func TestEditRune(t *testing.T) {
	tests := []struct {
		name  string
		start string
		key   string
		want  string
	}{
		{"append to empty", "", "a", "a"},
		{"append digit", "12", "3", "123"},
		{"append space", "12 Market", " ", "12 Market "},
		{"append symbol", "a", "@", "a@"},
		{"backspace", "hello", "backspace", "hell"},
		{"backspace empty", "", "backspace", ""},
		{"backspace multibyte", "café", "backspace", "caf"},
		{"backspace rupee", "₹", "backspace", ""},
		{"named key ignored", "hello", "enter", "hello"},
		{"ctrl combo ignored", "hello", "ctrl+s", "hello"},
		{"arrow ignored", "hello", "left", "hello"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := editRune(tc.start, tc.key); got != tc.want {
				t.Errorf("editRune(%q, %q) = %q, want %q", tc.start, tc.key, got, tc.want)
			}
		})
	}
}

func TestEditRuneMaxInputLen(t *testing.T) {
	atLimit := strings.Repeat("a", maxInputLen)
	if got := editRune(atLimit, "b"); got != atLimit {
		t.Errorf("editRune at limit grew to %d runes", len([]rune(got)))
	}
	if got := editRune(atLimit, "backspace"); len(got) != maxInputLen-1 {
		t.Errorf("backspace at limit: got %d runes, want %d", len(got), maxInputLen-1)
	}
}

func TestTruncateToHeight(t *testing.T) {
	input := "line1\nline2\nline3\nline4\nline5\n"
	tests := []struct {
		name     string
		maxLines int
		contains string
		missing  string
	}{
		{"limits lines", 3, "line3", "line4"},
		{"zero returns all", 0, "line5", ""},
		{"negative returns all", -1, "line5", ""},
		{"larger than input", 10, "line5", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := truncateToHeight(input, tc.maxLines)
			if !strings.Contains(got, tc.contains) {
				t.Errorf("truncateToHeight(%d) = %q, want %q kept", tc.maxLines, got, tc.contains)
			}
			if tc.missing != "" && strings.Contains(got, tc.missing) {
				t.Errorf("truncateToHeight(%d) = %q, want %q dropped", tc.maxLines, got, tc.missing)
			}
		})
	}
}

func TestTruncStr(t *testing.T) {
	tests := []struct {
		s      string
		maxLen int
		want   string
	}{
		{"Bio Waste", 20, "Bio Waste"},
		{"Recyclable Waste", 10, "Recyclabl…"},
		{"", 5, ""},
		{"कचरा संग्रह", 3, "कच…"},
	}
	for _, tt := range tests {
		if got := truncStr(tt.s, tt.maxLen); got != tt.want {
			t.Errorf("truncStr(%q, %d) = %q, want %q", tt.s, tt.maxLen, got, tt.want)
		}
	}
}

func TestFormNavigationAndEditing(t *testing.T) {
	f := newForm(
		formField{label: "email"},
		formField{label: "password", secret: true},
	)

	for _, k := range []string{"a", "@", "b"} {
		f.handleKey(k)
	}
	if f.value(0) != "a@b" {
		t.Fatalf("value(0) = %q, want a@b", f.value(0))
	}

	f.handleKey("tab")
	if f.focus != 1 || !f.last() {
		t.Fatalf("focus after tab = %d, want 1", f.focus)
	}
	f.handleKey("x")
	f.handleKey("y")
	f.handleKey("tab")
	if f.focus != 0 {
		t.Errorf("tab should wrap to first field, focus = %d", f.focus)
	}
	f.handleKey("shift+tab")
	if f.focus != 1 {
		t.Errorf("shift+tab should wrap to last field, focus = %d", f.focus)
	}

	if f.handleKey("ctrl+s") {
		t.Error("ctrl+s should not be consumed by the form")
	}

	view := f.view(true)
	if strings.Contains(view, "xy") {
		t.Errorf("secret field leaked its value:\n%s", view)
	}
	if !strings.Contains(view, "••") {
		t.Errorf("expected masked password in view:\n%s", view)
	}
	if !strings.Contains(view, "a@b") {
		t.Errorf("expected email in view:\n%s", view)
	}

	f.reset()
	if f.value(0) != "" || f.value(1) != "" || f.focus != 0 {
		t.Errorf("reset left state behind: %+v", f)
	}
}

func TestFormHint(t *testing.T) {
	f := newForm(formField{label: "date", hint: "YYYY-MM-DD"}, formField{label: "time"})
	f.focus = 1
	if !strings.Contains(f.view(true), "YYYY-MM-DD") {
		t.Error("expected hint for empty unfocused field")
	}
}
