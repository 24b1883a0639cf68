// Package report renders audit results in machine- and review-friendly
// formats: indented JSON and Markdown.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/openkraft/excess/internal/domain"
)

// JSON writes v indented by two spaces with a trailing newline.
func JSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Markdown renders r, and d when a baseline comparison was made.
func Markdown(r *domain.AuditResult, d *domain.ScoreDelta) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# excess audit: %s\n\n", r.Project.Name)
	meta := []string{fmt.Sprintf("%d files", r.FilesScanned), r.Timestamp.Format("2006-01-02 15:04 MST")}
	if r.Project.Commit != "" {
		meta = append(meta, "`"+short(r.Project.Commit)+"`")
	}
	if r.Project.Branch != "" {
		meta = append(meta, r.Project.Branch)
	}
	b.WriteString(strings.Join(meta, " · ") + "\n\n")

	b.WriteString("| Level | Score | Weight |\n|---|---:|---:|\n")
	fmt.Fprintf(&b, "| DRY | %.1f | %d%% |\n", r.Scores.DRY, percent(domain.WeightDRY))
	fmt.Fprintf(&b, "| Rams | %.1f | %d%% |\n", r.Scores.Rams, percent(domain.WeightRams))
	fmt.Fprintf(&b, "| Heidegger | %.1f | %d%% |\n", r.Scores.Heidegger, percent(domain.WeightHeidegger))
	fmt.Fprintf(&b, "| **Overall** | **%.1f** | |\n\n", r.Scores.Overall)

	if d != nil {
		b.WriteString("## Compared to baseline\n\n")
		fmt.Fprintf(&b, "Status: **%s** (overall %+.1f; DRY %+.1f, Rams %+.1f, Heidegger %+.1f)\n\n",
			d.Status, d.Overall, d.DRY, d.Rams, d.Heidegger)
	}

	s := r.Summary
	fmt.Fprintf(&b, "## Violations (%d)\n\n", s.Total)
	if s.Total == 0 {
		b.WriteString("None.\n\n")
	} else {
		fmt.Fprintf(&b, "%d critical · %d high · %d medium · %d low\n\n", s.Critical, s.High, s.Medium, s.Low)
		writeViolations(&b, "DRY", r.DRY.Violations)
		writeViolations(&b, "Rams", r.Rams.Violations)
		writeViolations(&b, "Heidegger", r.Heidegger.Violations)
	}

	if len(r.Commendations) > 0 {
		b.WriteString("## Commendations\n\n")
		for _, c := range r.Commendations {
			fmt.Fprintf(&b, "- **%s/%s**: %s\n", c.Level, c.Component, c.Reason)
		}
		b.WriteString("\n")
	}

	if len(r.Skipped) > 0 {
		fmt.Fprintf(&b, "## Skipped files (%d)\n\n", len(r.Skipped))
		for _, sk := range r.Skipped {
			fmt.Fprintf(&b, "- `%s`: %s\n", sk.Path, sk.Reason)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeViolations(b *strings.Builder, level string, vs []domain.Violation) {
	if len(vs) == 0 {
		return
	}
	fmt.Fprintf(b, "### %s\n\n| Severity | Type | Location | Message |\n|---|---|---|---|\n", level)
	for _, v := range vs {
		loc := v.File
		if loc == "" {
			loc = strings.Join(v.Files, ", ")
		}
		fmt.Fprintf(b, "| %s | %s | `%s` | %s |\n", v.Severity, v.Type, loc, escapeCell(v.Message))
	}
	b.WriteString("\n")
}

// escapeCell keeps a message inside one table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.ReplaceAll(s, "\n", " ")
}

func percent(w float64) int {
	return int(w*100 + 0.5)
}

func short(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
