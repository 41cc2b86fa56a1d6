package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/smartwaste/pickup/pkg/client"
)

// formatTime renders a relative timestamp for booking lists.
func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	}
}

// formatStamp renders an absolute local timestamp.
func formatStamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("02 Jan 2006 15:04")
}

// truncStr truncates a string to maxLen runes, appending an ellipsis if needed.
func truncStr(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	return string(runes[:maxLen-1]) + "…"
}

// apiMessage returns the server's message for err, or fallback.
func apiMessage(err error, fallback string) string {
	if d := client.Detail(err); d != "" {
		return d
	}
	return fallback
}

// noticeKind picks the colour of a status line.
type noticeKind int

const (
	noticeNone noticeKind = iota
	noticeSuccess
	noticeError
	noticeInfo
)

// notice is a one-line message shown under a form.
type notice struct {
	kind noticeKind
	text string
}

func successNotice(text string) notice { return notice{kind: noticeSuccess, text: text} }
func errorNotice(text string) notice   { return notice{kind: noticeError, text: text} }
func infoNotice(text string) notice    { return notice{kind: noticeInfo, text: text} }

func (n notice) String() string {
	switch n.kind {
	case noticeSuccess:
		return successStyle.Render(n.text)
	case noticeError:
		return errorStyle.Render(n.text)
	case noticeInfo:
		return infoStyle.Render(n.text)
	}
	return ""
}

// indent prefixes every non-empty line of s with n spaces.
func indent(s string, n int) string {
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = pad + l
		}
	}
	return strings.Join(lines, "\n")
}
