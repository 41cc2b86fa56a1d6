package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/smartwaste/pickup/pkg/client"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#4ade80"))
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("#34d474"))
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF9800"))
	cellStyle     = lipgloss.NewStyle().Padding(0, 1)
	headCellStyle = cellStyle.Bold(true)
)

// printTable writes rows under headers as a bordered table.
func printTable(w io.Writer, headers []string, rows [][]string) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headCellStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...)
	fmt.Fprintln(w, t.Render())
}

// printRows writes label/value pairs, one per line.
func printRows(w io.Writer, pairs ...string) {
	for i := 0; i+1 < len(pairs); i += 2 {
		value := pairs[i+1]
		if value == "" {
			value = "-"
		}
		fmt.Fprintf(w, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", pairs[i]+":")), value)
	}
}

// apiError turns an API failure into the message the user sees: the
// fallback followed by the server's explanation when there is one.
func apiError(err error, fallback string) error {
	if d := client.Detail(err); d != "" {
		return errors.New(fallback + " " + d)
	}
	return fmt.Errorf("%s %w", fallback, err)
}

// flagOrPrompt returns the flag value, asking on the terminal when it is empty.
func flagOrPrompt(cmd *cobra.Command, name, label string, secret bool) (string, error) {
	v, err := cmd.Flags().GetString(name)
	if err != nil {
		return "", err
	}
	if v != "" {
		return v, nil
	}
	return prompt(cmd, label, secret)
}

// prompt reads one line from the command's input. Secrets are read without
// echo when the input is a terminal.
func prompt(cmd *cobra.Command, label string, secret bool) (string, error) {
	out := cmd.ErrOrStderr()
	fmt.Fprintf(out, "%s: ", label)

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && secret && term.IsTerminal(f.Fd()) {
		b, err := term.ReadPassword(f.Fd())
		fmt.Fprintln(out)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
		}
		return string(b), nil
	}

	line, err := readLine(in)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(label), err)
	}
	return line, nil
}

// readLine reads up to a newline one byte at a time, so consecutive prompts
// sharing a reader each get their own line.
func readLine(r io.Reader) (string, error) {
	var b strings.Builder
	buf := make([]byte, 1)
	for {
		n, err := r.Read(buf)
		if n == 1 {
			if buf[0] == '\n' {
				break
			}
			b.WriteByte(buf[0])
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", err
		}
	}
	return strings.TrimRight(b.String(), "\r"), nil
}
