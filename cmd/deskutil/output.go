package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	keyStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	onStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	offStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type field struct {
	key   string
	value any
}

// writeResult prints aligned, styled fields on a terminal and indented JSON
// of v otherwise.
func writeResult(v any, fields []field) int {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	writeFields(os.Stdout, fields)
	return 0
}

func writeFields(w io.Writer, fields []field) {
	width := 0
	for _, f := range fields {
		width = max(width, len(f.key)+1)
	}
	for _, f := range fields {
		label := keyStyle.Width(width + 1).Render(f.key + ":")
		fmt.Fprintf(w, "%s%s\n", label, formatValue(f.value))
	}
}

func formatValue(v any) string {
	b, ok := v.(bool)
	if !ok {
		return fmt.Sprint(v)
	}
	if b {
		return onStyle.Render("true")
	}
	return offStyle.Render("false")
}
