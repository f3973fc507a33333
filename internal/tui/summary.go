package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

type SummaryRow struct {
	Label string
	Value string
	Warn  bool
}

// SummaryTable is the end-of-run report: a titled two-column table followed
// by any warnings, one per line.
type SummaryTable struct {
	Title string
	Rows  []SummaryRow
	Notes []string
}

const (
	itemHeader   = "Item"
	resultHeader = "Result"
)

func (t SummaryTable) Render() string {
	labelWidth := len(itemHeader)
	valueWidth := len(resultHeader)
	for _, row := range t.Rows {
		labelWidth = max(labelWidth, len(row.Label))
		valueWidth = max(valueWidth, len(row.Value))
	}

	rule := ruleStyle.Render(strings.Repeat("─", labelWidth+valueWidth+3))
	lines := []string{}
	if t.Title != "" {
		lines = append(lines, titleStyle.Render(t.Title))
	}
	lines = append(lines,
		fmt.Sprintf("%s │ %s", headerStyle.Render(padRight(itemHeader, labelWidth)), headerStyle.Render(resultHeader)),
		rule,
	)

	for _, row := range t.Rows {
		style := valueStyle
		if row.Warn {
			style = warnStyle
		}
		lines = append(lines, fmt.Sprintf("%s │ %s",
			labelStyle.Render(padRight(row.Label, labelWidth)),
			style.Render(row.Value)))
	}
	lines = append(lines, rule)

	for _, note := range t.Notes {
		lines = append(lines, warnStyle.Render("! ")+labelStyle.Render(note))
	}
	return strings.Join(lines, "\n")
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

var (
	headerStyle = lipgloss.NewStyle().Foreground(ColorMuted).Underline(true)
	ruleStyle   = lipgloss.NewStyle().Foreground(ColorMuted)
	valueStyle  = lipgloss.NewStyle().Foreground(ColorText).Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(ColorCaution).Bold(true)
)
