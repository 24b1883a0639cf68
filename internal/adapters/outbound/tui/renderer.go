package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/excess/internal/domain"
)

// ── Warm palette ──
var (
	accent    = lipgloss.Color("#D97706") // amber
	fg        = lipgloss.Color("#E8E6E3") // warm light gray
	dim       = lipgloss.Color("#6B7280") // muted gray
	faint     = lipgloss.Color("#3F3F46") // very dim
	success   = lipgloss.Color("#22C55E") // green
	lime      = lipgloss.Color("#A3E635")
	danger    = lipgloss.Color("#EF4444") // red
	warning   = lipgloss.Color("#F59E0B") // amber-yellow
	info      = lipgloss.Color("#8B949E") // soft blue-gray
	skipColor = lipgloss.Color("#4B5563") // dark gray
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	skipStyle     = lipgloss.NewStyle().Foreground(skipColor)
	fileStyle     = lipgloss.NewStyle().Foreground(dim)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	levelStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))
)

var levelNames = map[domain.Level]string{
	domain.LevelDRY:       "DRY",
	domain.LevelRams:      "Rams",
	domain.LevelHeidegger: "Heidegger",
}

// RenderAudit formats one audit result for the terminal.
func RenderAudit(r *domain.AuditResult) string {
	var b strings.Builder

	// ── Header ──
	title := headerStyle.Render("excess")
	subtitle := dimStyle.Render(r.Project.Name)
	scoreStyled := lipgloss.NewStyle().
		Bold(true).
		Foreground(scoreColor(r.Scores.Overall)).
		Render(fmt.Sprintf("%.1f / 10  %s", r.Scores.Overall, domain.GradeFor(r.Scores.Overall)))
	files := dimStyle.Render(fmt.Sprintf("%d files", r.FilesScanned))

	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + files))
	b.WriteString("\n\n")

	// ── Levels ──
	renderLevel(&b, domain.LevelDRY, r.Scores.DRY, domain.WeightDRY)
	renderLevel(&b, domain.LevelRams, r.Scores.Rams, domain.WeightRams)
	renderLevel(&b, domain.LevelHeidegger, r.Scores.Heidegger, domain.WeightHeidegger)

	b.WriteString("\n")
	b.WriteString("  " + separatorLine)
	b.WriteString("\n")

	// ── Violations ──
	if r.Summary.Total == 0 {
		b.WriteString("\n  " + passStyle.Render("No violations found.") + "\n")
	} else {
		b.WriteString("\n  " + titleStyle.Render("Violations") + "  " + summaryTags(r.Summary) + "\n")
		renderViolationSection(&b, levelNames[domain.LevelDRY], r.DRY.Violations)
		renderViolationSection(&b, levelNames[domain.LevelRams], r.Rams.Violations)
		renderViolationSection(&b, levelNames[domain.LevelHeidegger], r.Heidegger.Violations)
	}

	// ── Commendations ──
	if len(r.Commendations) > 0 {
		b.WriteString("\n  " + titleStyle.Render("Commendations") + "\n")
		for _, c := range r.Commendations {
			fmt.Fprintf(&b, "    %s %s  %s\n",
				passStyle.Render("✔"),
				dimStyle.Render(padRight(levelNames[c.Level]+"/"+c.Component, 30)),
				c.Reason)
		}
	}

	if len(r.Skipped) > 0 {
		b.WriteString("\n  " + skipStyle.Render(fmt.Sprintf("%d files skipped", len(r.Skipped))) + "\n")
	}

	b.WriteString("\n")
	return b.String()
}

func renderLevel(b *strings.Builder, level domain.Level, score, weight float64) {
	name := levelStyle.Render(padRight(levelNames[level], 12))
	bar := coloredBar(score, 24)
	scoreText := lipgloss.NewStyle().Bold(true).Foreground(scoreColor(score)).Render(fmt.Sprintf("%4.1f", score))
	w := dimStyle.Render(fmt.Sprintf("%d%%", int(weight*100)))
	fmt.Fprintf(b, "  %s %s  %s %s\n", name, bar, scoreText, w)
}

func summaryTags(s domain.Summary) string {
	var tags []string
	if s.Critical > 0 {
		tags = append(tags, severityStyle(domain.SeverityCritical).Render(fmt.Sprintf("%d critical", s.Critical)))
	}
	if s.High > 0 {
		tags = append(tags, severityStyle(domain.SeverityHigh).Render(fmt.Sprintf("%d high", s.High)))
	}
	if s.Medium > 0 {
		tags = append(tags, severityStyle(domain.SeverityMedium).Render(fmt.Sprintf("%d medium", s.Medium)))
	}
	if s.Low > 0 {
		tags = append(tags, severityStyle(domain.SeverityLow).Render(fmt.Sprintf("%d low", s.Low)))
	}
	return strings.Join(tags, "  ")
}

// coloredBar draws a 0-10 score as a bar of the given width.
func coloredBar(score float64, width int) string {
	filled := max(0, min(int(score*float64(width)/10+0.5), width))
	empty := width - filled

	color := scoreColor(score)
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func scoreColor(score float64) lipgloss.Color {
	switch {
	case score >= 8:
		return success
	case score >= 6:
		return lime
	case score >= 4:
		return warning
	default:
		return danger
	}
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}

// RenderDelta formats a comparison against the pinned baseline.
func RenderDelta(d *domain.ScoreDelta) string {
	var b strings.Builder
	b.WriteString("\n  " + titleStyle.Render("Compared to baseline") + "  ")
	if d.Baseline.Commit != "" {
		b.WriteString(faintStyle.Render(shortHash(d.Baseline.Commit)) + "  ")
	}
	b.WriteString(dimStyle.Render(d.Baseline.Timestamp.Format("2006-01-02 15:04")) + "\n\n")

	rows := []struct {
		name  string
		delta float64
	}{
		{"DRY", d.DRY},
		{"Rams", d.Rams},
		{"Heidegger", d.Heidegger},
		{"Overall", d.Overall},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "    %s %s\n", dimStyle.Render(padRight(r.name, 12)), deltaText(r.delta))
	}

	var status string
	switch d.Status {
	case domain.StatusImproved:
		status = passStyle.Render("improved")
	case domain.StatusDegraded:
		status = failStyle.Bold(true).Render("degraded")
	default:
		status = dimStyle.Render("unchanged")
	}
	b.WriteString("\n    " + status + "\n\n")
	return b.String()
}

func deltaText(v float64) string {
	switch {
	case v > 0:
		return passStyle.Render(fmt.Sprintf("↑%.1f", v))
	case v < 0:
		return failStyle.Render(fmt.Sprintf("↓%.1f", -v))
	default:
		return faintStyle.Render("·")
	}
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}

// RenderHistory formats recorded runs for terminal output.
func RenderHistory(entries []domain.HistoryEntry) string {
	if len(entries) == 0 {
		return "  " + dimStyle.Render("No audit history found.") + "\n"
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Audit History") + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 60)) + "\n\n")

	for i, e := range entries {
		hash := shortHash(e.Commit)
		if hash == "" {
			hash = "·······"
		}

		scoreStyled := lipgloss.NewStyle().
			Foreground(scoreColor(e.Scores.Overall)).
			Render(fmt.Sprintf("%4.1f", e.Scores.Overall))
		levels := dimStyle.Render(fmt.Sprintf("D %.1f  R %.1f  H %.1f", e.Scores.DRY, e.Scores.Rams, e.Scores.Heidegger))

		line := fmt.Sprintf("  %s  %s  %s  %s  %s",
			dimStyle.Render(e.Timestamp.Format("2006-01-02")),
			faintStyle.Render(hash),
			scoreStyled,
			levels,
			dimStyle.Render(fmt.Sprintf("%d violations", e.Violations.Total)),
		)

		if i > 0 {
			diff := domain.Round1(e.Scores.Overall - entries[i-1].Scores.Overall)
			if diff != 0 {
				line += "  " + deltaText(diff)
			}
		}

		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}
