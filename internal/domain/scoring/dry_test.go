package scoring_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/openkraft/excess/internal/domain"
	"github.com/openkraft/excess/internal/domain/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sharedBlock = `const total = items.reduce((sum, item) => sum + item.price, 0);
const taxed = total * (1 + TAX_RATE);
const rounded = Math.round(taxed * 100) / 100;
console.log("rounded total", rounded);
sendInvoice(customer, rounded);
`

func collectDRY(t *testing.T, in *scoring.Input) domain.DRYMetrics {
	t.Helper()
	m, err := scoring.CollectDRY(context.Background(), in)
	require.NoError(t, err)
	return m
}

func TestCollectDRY_DuplicateBlockAcrossFiles(t *testing.T) {
	in := project(t, map[string]string{
		"a.js": "export function alpha() {\n  return 1;\n}\n" + sharedBlock + "export const a = 1;\n",
		"b.js": "import { x } from './x';\n" + sharedBlock + "export const b = 2;\n",
	})

	m := collectDRY(t, in)
	require.Len(t, m.DuplicateBlocks, 1)
	b := m.DuplicateBlocks[0]
	assert.Equal(t, 5, b.Lines)
	assert.Equal(t, []string{"a.js", "b.js"}, b.Files)
	assert.Equal(t, []domain.BlockLocation{
		{File: "a.js", StartLine: 4, EndLine: 8},
		{File: "b.js", StartLine: 2, EndLine: 6},
	}, b.Occurrences)
	assert.Equal(t, 5, m.DuplicatedLines)
	assert.Contains(t, b.Fragment, "sendInvoice")
}

func TestCollectDRY_DuplicateBlockWithinFile(t *testing.T) {
	var filler strings.Builder
	for i := 0; i < 6; i++ {
		fmt.Fprintf(&filler, "step%d();\n", i)
	}
	in := project(t, map[string]string{
		"a.js": sharedBlock + filler.String() + sharedBlock,
	})

	m := collectDRY(t, in)
	require.Len(t, m.DuplicateBlocks, 1)
	assert.Equal(t, 5, m.DuplicateBlocks[0].Lines)
	assert.Equal(t, []string{"a.js"}, m.DuplicateBlocks[0].Files)
	assert.Len(t, m.DuplicateBlocks[0].Occurrences, 2)
}

func TestCollectDRY_OverlappingWindowsCollapse(t *testing.T) {
	var region strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&region, "registry.register(\"handler-%d\", createHandler(%d));\n", i, i)
	}
	in := project(t, map[string]string{
		"a.js": "// a\n" + region.String() + "done(1);\n",
		"b.js": "// b\n" + region.String() + "done(2);\n",
	})

	m := collectDRY(t, in)
	require.Len(t, m.DuplicateBlocks, 1)
	assert.Equal(t, 12, m.DuplicateBlocks[0].Lines)

	var dupViolations int
	for _, v := range m.Violations {
		if v.Type == domain.ViolationDuplicateBlock {
			dupViolations++
			assert.Equal(t, domain.SeverityMedium, v.Severity)
		}
	}
	assert.Equal(t, 1, dupViolations)
}

func TestCollectDRY_BackToBackCopiesInOneFile(t *testing.T) {
	in := project(t, map[string]string{"a.js": sharedBlock + sharedBlock})

	m := collectDRY(t, in)
	require.Len(t, m.DuplicateBlocks, 1)
	assert.Equal(t, 5, m.DuplicateBlocks[0].Lines)
	assert.Equal(t, []domain.BlockLocation{
		{File: "a.js", StartLine: 1, EndLine: 5},
		{File: "a.js", StartLine: 6, EndLine: 10},
	}, m.DuplicateBlocks[0].Occurrences)
}

func TestCollectDRY_RegionPartlyInFirstFile(t *testing.T) {
	region := make([]string, 7)
	for i := range region {
		region[i] = fmt.Sprintf("const stage%d = pipeline.stage(%d, options.retry);", i, i)
	}
	file := func(name string, lines []string) string {
		return fmt.Sprintf("export const %s = 1;\n%s\nfinish(%q);\n", name, strings.Join(lines, "\n"), name)
	}
	in := project(t, map[string]string{
		"a.js": file("a", region[:6]),
		"b.js": file("b", region),
		"c.js": file("c", region),
	})

	m := collectDRY(t, in)
	require.Len(t, m.DuplicateBlocks, 1)
	b := m.DuplicateBlocks[0]
	assert.Equal(t, 7, b.Lines)
	assert.Equal(t, []string{"a.js", "b.js", "c.js"}, b.Files)
	assert.Equal(t, []domain.BlockLocation{
		{File: "a.js", StartLine: 2, EndLine: 7},
		{File: "b.js", StartLine: 2, EndLine: 8},
		{File: "c.js", StartLine: 2, EndLine: 8},
	}, b.Occurrences)
	assert.Equal(t, 13, m.DuplicatedLines)
}

func TestCollectDRY_ShortWindowsIgnored(t *testing.T) {
	short := "a();\nb();\nc();\nd();\ne();\n"
	in := project(t, map[string]string{"a.js": short + "x();\n", "b.js": short + "y();\n"})

	m := collectDRY(t, in)
	assert.Empty(t, m.DuplicateBlocks)
}

func TestCollectDRY_SimilarFiles(t *testing.T) {
	body := func(name string) string {
		return fmt.Sprintf(`export function %s(user) {
  if (!user) {
    throw new Error("missing user");
  }
  const profile = loadProfile(user.id);
  const settings = loadSettings(user.id);
  return { id: user.id, profile, settings, updatedAt: Date.now() };
}
`, name)
	}
	in := project(t, map[string]string{
		"src/users.js":  body("buildUser"),
		"src/admins.js": body("buildAdmin"),
		"src/other.js":  strings.Repeat("export const unrelatedValue = computeSomethingElse();\n", 5),
	})

	m := collectDRY(t, in)
	require.Len(t, m.SimilarFiles, 1)
	assert.Equal(t, "src/admins.js", m.SimilarFiles[0].FileA)
	assert.Equal(t, "src/users.js", m.SimilarFiles[0].FileB)
	assert.GreaterOrEqual(t, m.SimilarFiles[0].Similarity, 0.8)
}

func TestCollectDRY_SimilarFunctions(t *testing.T) {
	src := `function loadUser(id) {
  const row = db.query("users", id);
  if (!row) {
    return null;
  }
  return normalize(row);
}

function loadTeam(id) {
  const row = db.query("teams", id);
  if (!row) {
    return null;
  }
  return normalize(row);
}

function tiny() { return 1; }
`
	m := collectDRY(t, project(t, map[string]string{"repo.js": src}))
	require.Len(t, m.SimilarFunctions, 1)
	assert.Equal(t, "loadUser", m.SimilarFunctions[0].FunctionA)
	assert.Equal(t, "loadTeam", m.SimilarFunctions[0].FunctionB)
}

func TestCollectDRY_RepeatedLiterals(t *testing.T) {
	const url = `"https://api.example.com/v1"`
	in := project(t, map[string]string{
		"a.js":      "fetch(" + url + ");\n",
		"b.js":      "fetch(" + url + ");\nfetch(" + url + ");\n",
		"c.js":      "fetch(\"https://other.example.com\");\n",
		"a.test.js": "expect(" + url + ");\n",
	})

	m := collectDRY(t, in)
	require.Len(t, m.RepeatedLiterals, 1)
	lit := m.RepeatedLiterals[0]
	assert.Equal(t, "https://api.example.com/v1", lit.Value)
	assert.Equal(t, 3, lit.Count)
	assert.Equal(t, []string{"a.js", "b.js"}, lit.Files)
}

func TestCollectDRY_CleanProjectScoresTen(t *testing.T) {
	m := collectDRY(t, project(t, map[string]string{
		"a.js": "export const a = 1;\n",
		"b.js": "export const b = 2;\n",
	}))
	assert.Equal(t, 10.0, m.Score)
	assert.Empty(t, m.Violations)
	assert.Equal(t, 2, m.TotalLines)
}

func TestCollectDRY_NoFiles(t *testing.T) {
	m := collectDRY(t, project(t, map[string]string{}))
	assert.Equal(t, 0.0, m.Score)
	assert.Empty(t, m.Violations)
}

func TestCollectDRY_Deterministic(t *testing.T) {
	files := map[string]string{
		"a.js": sharedBlock + "a();\n",
		"b.js": sharedBlock + "b();\n",
		"c.js": "c();\n" + sharedBlock,
	}
	first := collectDRY(t, project(t, files))
	second := collectDRY(t, project(t, files))
	assert.Equal(t, first, second)
	require.Len(t, first.DuplicateBlocks, 1)
	assert.Equal(t, []string{"a.js", "b.js", "c.js"}, first.DuplicateBlocks[0].Files)
}
