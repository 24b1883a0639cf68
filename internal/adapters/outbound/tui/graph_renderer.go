package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/openkraft/excess/internal/domain/graph"
)

const graphMaxRows = 15

// RenderGraph produces a terminal view of the file import graph: a summary
// header, the most connected files, cycles and unresolved specifiers.
func RenderGraph(g *graph.ImportGraph, project string) string {
	if g == nil || len(g.Nodes) == 0 {
		return "\n  " + dimStyle.Render("No import graph available (no source files found).") + "\n\n"
	}

	cycles := g.DetectCycles()
	var b strings.Builder

	// ── Header box ──
	renderGraphHeader(&b, g, project, len(cycles))

	// ── Fan-in / fan-out table ──
	renderFileTable(&b, g, graph.CycleMembers(cycles))

	// ── Cycles ──
	renderCyclesSection(&b, cycles)

	// ── Unresolved ──
	renderUnresolvedSection(&b, g)

	b.WriteString("\n")
	return b.String()
}

func renderGraphHeader(b *strings.Builder, g *graph.ImportGraph, project string, cycles int) {
	externals := make(map[string]bool)
	for _, n := range g.Nodes {
		for _, e := range n.External {
			externals[e] = true
		}
	}

	title := headerStyle.Render("Import Graph")
	projLine := lipgloss.NewStyle().Bold(true).Foreground(fg).Render(project)

	cycleLabel := passStyle.Render(fmt.Sprintf("%d cycles", cycles))
	if cycles > 0 {
		cycleLabel = failStyle.Render(fmt.Sprintf("%d cycles", cycles))
	}

	stats := dimStyle.Render(fmt.Sprintf(
		"%d files  ·  %d edges  ·  %d packages  ·  ", len(g.Nodes), g.EdgeCount(), len(externals))) + cycleLabel

	b.WriteString(boxStyle.Render(title + "\n\n" + projLine + "\n" + stats))
	b.WriteString("\n\n")
}

type fileRow struct {
	path    string
	in, out int
	cyclic  bool
}

func renderFileTable(b *strings.Builder, g *graph.ImportGraph, inCycle map[string]bool) {
	rows := make([]fileRow, 0, len(g.Nodes))
	for p, n := range g.Nodes {
		rows = append(rows, fileRow{
			path:   p,
			in:     len(n.ImportedBy),
			out:    len(n.Imports),
			cyclic: inCycle[p],
		})
	}

	// Files in cycles first, then by fan-in desc, then alphabetical.
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].cyclic != rows[j].cyclic {
			return rows[i].cyclic
		}
		if rows[i].in != rows[j].in {
			return rows[i].in > rows[j].in
		}
		return rows[i].path < rows[j].path
	})

	hdrLine := fmt.Sprintf("  %-44s %4s %4s  %s", "File", "In", "Out", "")
	b.WriteString(titleStyle.Render(hdrLine) + "\n")
	b.WriteString("  " + faintStyle.Render(strings.Repeat("─", 64)) + "\n")

	shown := min(len(rows), graphMaxRows)
	for _, r := range rows[:shown] {
		mark := dimStyle.Render("—")
		switch {
		case r.cyclic:
			mark = failStyle.Render("✘ cycle")
		case r.in == 0:
			mark = warnStyle.Render("no importers")
		}
		fmt.Fprintf(b, "  %s %4d %4d  %s\n", dimStyle.Render(truncateOrPad(r.path, 44)), r.in, r.out, mark)
	}

	if remaining := len(rows) - shown; remaining > 0 {
		b.WriteString(faintStyle.Render(fmt.Sprintf("  (%d more files)\n", remaining)))
	}
	b.WriteString("\n")
}

func renderCyclesSection(b *strings.Builder, cycles [][]string) {
	b.WriteString("  " + titleStyle.Render("Cycles") + "\n")
	if len(cycles) == 0 {
		b.WriteString("    " + passStyle.Render("(none)") + "\n")
	} else {
		for _, cycle := range cycles {
			// a → b → c → a
			parts := append(append([]string{}, cycle...), cycle[0])
			b.WriteString("    " + failStyle.Render(strings.Join(parts, " → ")) + "\n")
		}
	}
	b.WriteString("\n")
}

func renderUnresolvedSection(b *strings.Builder, g *graph.ImportGraph) {
	b.WriteString("  " + titleStyle.Render("Unresolved Imports") + "\n")
	found := false
	for _, p := range g.Paths() {
		for _, spec := range g.Nodes[p].Unresolved {
			found = true
			b.WriteString("    " + warnStyle.Render(fmt.Sprintf("%s imports %q", p, spec)) + "\n")
		}
	}
	if !found {
		b.WriteString("    " + passStyle.Render("(none)") + "\n")
	}
}

func truncateOrPad(s string, width int) string {
	if len(s) > width {
		return "…" + s[len(s)-width+1:]
	}
	return padRight(s, width)
}
