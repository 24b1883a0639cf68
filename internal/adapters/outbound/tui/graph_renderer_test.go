package tui

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/openkraft/excess/internal/domain/graph"
)

func buildGraph(edges ...[2]string) *graph.ImportGraph {
	g := graph.New()
	for _, e := range edges {
		g.AddEdge(e[0], e[1])
	}
	g.Seal()
	return g
}

func TestRenderGraph_NilGraph(t *testing.T) {
	out := RenderGraph(nil, "demo")
	assert.Contains(t, out, "No import graph available")
}

func TestRenderGraph_EmptyGraph(t *testing.T) {
	out := RenderGraph(graph.New(), "demo")
	assert.Contains(t, out, "No import graph available")
}

func TestRenderGraph_SingleFile(t *testing.T) {
	g := graph.New()
	g.AddFile("index.js")

	out := RenderGraph(g, "demo")
	assert.Contains(t, out, "Import Graph")
	assert.Contains(t, out, "1 files")
	assert.Contains(t, out, "0 edges")
	assert.Contains(t, out, "0 cycles")
	assert.Contains(t, out, "(none)")
}

func TestRenderGraph_CyclesListedAndMarked(t *testing.T) {
	g := buildGraph(
		[2]string{"src/index.js", "src/a.js"},
		[2]string{"src/a.js", "src/b.js"},
		[2]string{"src/b.js", "src/a.js"},
	)

	out := RenderGraph(g, "demo")
	assert.Contains(t, out, "1 cycles")
	assert.Contains(t, out, "src/a.js → src/b.js → src/a.js")
	assert.Contains(t, out, "✘ cycle")
}

func TestRenderGraph_ExternalAndUnresolved(t *testing.T) {
	g := buildGraph([2]string{"index.js", "lib.js"})
	g.AddExternal("index.js", "react")
	g.AddExternal("lib.js", "react")
	g.AddExternal("lib.js", "lodash")
	g.AddUnresolved("lib.js", "./gone")

	out := RenderGraph(g, "demo")
	assert.Contains(t, out, "2 packages")
	assert.Contains(t, out, `lib.js imports "./gone"`)
}

func TestRenderGraph_TruncatesRows(t *testing.T) {
	g := graph.New()
	for i := range graphMaxRows + 5 {
		g.AddEdge("index.js", fmt.Sprintf("mod%02d.js", i))
	}
	g.Seal()

	out := RenderGraph(g, "demo")
	assert.Contains(t, out, "(6 more files)")
}

func TestRenderFileTable_CyclesFirstThenFanIn(t *testing.T) {
	g := buildGraph(
		[2]string{"a.js", "shared.js"},
		[2]string{"b.js", "shared.js"},
		[2]string{"x.js", "y.js"},
		[2]string{"y.js", "x.js"},
	)

	var b strings.Builder
	renderFileTable(&b, g, graph.CycleMembers(g.DetectCycles()))
	out := b.String()

	assert.Less(t, strings.Index(out, "x.js"), strings.Index(out, "shared.js"))
	assert.Less(t, strings.Index(out, "y.js"), strings.Index(out, "shared.js"))
	assert.Less(t, strings.Index(out, "shared.js"), strings.Index(out, "a.js"))
}

func TestTruncateOrPad(t *testing.T) {
	assert.Equal(t, "ab  ", truncateOrPad("ab", 4))
	assert.Equal(t, "…cde", truncateOrPad("abcde", 4))
}
