package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxInputLen is the maximum number of runes allowed in a form input.
const maxInputLen = 2000

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	default:
		if utf8.RuneCountInString(key) == 1 {
			if utf8.RuneCountInString(text) >= maxInputLen {
				return text
			}
			return text + key
		}
		return text
	}
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// formField is one labelled text input.
type formField struct {
	label  string
	value  string
	secret bool
	hint   string
}

// form is a vertical list of inputs with one focused field.
type form struct {
	fields []formField
	focus  int
}

func newForm(fields ...formField) form {
	return form{fields: fields}
}

func (f *form) next() { f.focus = (f.focus + 1) % len(f.fields) }

func (f *form) prev() { f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields) }

func (f form) last() bool { return f.focus == len(f.fields)-1 }

func (f form) value(i int) string { return f.fields[i].value }

func (f *form) set(i int, v string) { f.fields[i].value = v }

// reset clears every value and focuses the first field.
func (f *form) reset() {
	for i := range f.fields {
		f.fields[i].value = ""
	}
	f.focus = 0
}

// handleKey applies navigation and editing keys. It reports whether the key
// was consumed.
func (f *form) handleKey(key string) bool {
	switch key {
	case "tab", "down":
		f.next()
	case "shift+tab", "up":
		f.prev()
	case "backspace":
		fld := &f.fields[f.focus]
		fld.value = editRune(fld.value, "backspace")
	default:
		if utf8.RuneCountInString(key) != 1 {
			return false
		}
		fld := &f.fields[f.focus]
		fld.value = editRune(fld.value, key)
	}
	return true
}

// view renders the fields. Secret values are masked and the focused field
// shows a cursor when active.
func (f form) view(active bool) string {
	width := 0
	for _, fld := range f.fields {
		if n := utf8.RuneCountInString(fld.label); n > width {
			width = n
		}
	}

	var b strings.Builder
	for i, fld := range f.fields {
		cursor := " "
		style := metaStyle
		focused := active && i == f.focus
		if focused {
			cursor = ">"
			style = selectedStyle
		}
		value := fld.value
		if fld.secret {
			value = strings.Repeat("•", utf8.RuneCountInString(value))
		}
		switch {
		case focused:
			value = normalStyle.Render(value) + accentStyle.Render("█")
		case value == "" && fld.hint != "":
			value = inputPlaceholderStyle.Render(fld.hint)
		default:
			value = normalStyle.Render(value)
		}
		fmt.Fprintf(&b, "%s %s  %s\n", cursor, style.Render(fmt.Sprintf("%-*s", width, fld.label)), value)
	}
	return b.String()
}
