package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/excess/internal/domain"
)

const maxViolationRows = 12

var (
	sectionHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(accent)
	hintStyle          = lipgloss.NewStyle().Foreground(dim).Italic(true)
)

func severityStyle(s domain.Severity) lipgloss.Style {
	switch s {
	case domain.SeverityCritical:
		return lipgloss.NewStyle().Foreground(danger).Bold(true)
	case domain.SeverityHigh:
		return lipgloss.NewStyle().Foreground(danger)
	case domain.SeverityMedium:
		return lipgloss.NewStyle().Foreground(warning)
	default:
		return lipgloss.NewStyle().Foreground(info)
	}
}

func severityTag(s domain.Severity) string {
	return severityStyle(s).Render(padRight(string(s), 8))
}

// renderViolationSection lists one level's violations, most severe first
// (collectors already sort them).
func renderViolationSection(b *strings.Builder, title string, vs []domain.Violation) {
	if len(vs) == 0 {
		return
	}

	b.WriteString("\n")
	fmt.Fprintf(b, "  %s %s\n",
		sectionHeaderStyle.Render(title),
		dimStyle.Render(fmt.Sprintf("(%d)", len(vs))),
	)

	shown := min(len(vs), maxViolationRows)
	for _, v := range vs[:shown] {
		location := v.File
		if location == "" && len(v.Files) > 0 {
			location = strings.Join(v.Files, ", ")
		}
		fmt.Fprintf(b, "    %s %s  %s\n", severityTag(v.Severity), fileStyle.Render(location), faintStyle.Render(string(v.Type)))
		fmt.Fprintf(b, "             %s\n", v.Message)
		if v.Suggestion != "" {
			fmt.Fprintf(b, "             %s\n", hintStyle.Render(v.Suggestion))
		}
	}
	if rest := len(vs) - shown; rest > 0 {
		b.WriteString(faintStyle.Render(fmt.Sprintf("    (%d more)\n", rest)))
	}
}
