package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/qcs-runtime/result"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	regionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	typeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// render prints every requested region of h, one shot per line. Regions
// without data are shown with the reason.
func render(h *result.Handle, readouts []string, styled bool) string {
	style := func(s lipgloss.Style, text string) string {
		if !styled {
			return text
		}
		return s.Render(text)
	}

	var b strings.Builder
	for _, name := range readouts {
		d, ok := h.Data(name)
		if !ok {
			reason := "no data"
			if err := h.DataError(name); err != nil {
				reason = err.Error()
			}
			fmt.Fprintf(&b, "%s: %s\n", style(regionStyle, name), style(errorStyle, reason))
			continue
		}
		fmt.Fprintf(&b, "%s %s\n", style(regionStyle, name),
			style(typeStyle, fmt.Sprintf("%s[%d] x %d shots", d.Type, d.ShotLength, d.NumberOfShots)))
		for _, row := range d.Rows() {
			b.WriteString("  ")
			b.WriteString(style(resultStyle, formatRow(row)))
			b.WriteByte('\n')
		}
	}
	if h.Duration > 0 {
		fmt.Fprintf(&b, "execution time: %s\n", h.Duration)
	}
	return b.String()
}

func formatRow(row []float64) string {
	fields := make([]string, len(row))
	for i, v := range row {
		fields[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(fields, " ")
}
