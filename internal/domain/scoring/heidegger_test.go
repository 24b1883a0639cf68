package scoring_test

import (
	"testing"

	"github.com/openkraft/excess/internal/domain"
	"github.com/openkraft/excess/internal/domain/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectHeidegger_SingleCycle(t *testing.T) {
	in := project(t, map[string]string{
		"index.js": "import './a';\n",
		"a.js":     "import './b';\n",
		"b.js":     "import './c';\n",
		"c.js":     "import './a';\n",
	})

	m := scoring.CollectHeidegger(in)
	require.Len(t, m.CircularDependencies, 1)
	assert.Equal(t, []string{"a.js", "b.js", "c.js"}, m.CircularDependencies[0].Cycle)

	var cycles []domain.Violation
	for _, v := range m.Violations {
		if v.Type == domain.ViolationCircularDependency {
			cycles = append(cycles, v)
		}
	}
	require.Len(t, cycles, 1)
	assert.Equal(t, domain.SeverityHigh, cycles[0].Severity)
	assert.Equal(t, "import cycle: a.js → b.js → c.js → a.js", cycles[0].Message)
}

func TestCollectHeidegger_Orphans(t *testing.T) {
	in := project(t, map[string]string{
		"src/index.js":    "import './used';\n",
		"src/used.js":     "export const used = 1;\n",
		"src/lonely.js":   "export const lonely = 1;\n",
		"src/island.js":   "import './islet';\n",
		"src/islet.js":    "import './island';\n",
		"scripts/seed.js": "console.log('seed');\n",
	})

	m := scoring.CollectHeidegger(in)
	assert.Equal(t, []domain.OrphanedFile{
		{File: "src/island.js", Reason: "unreachable from any entry point"},
		{File: "src/islet.js", Reason: "unreachable from any entry point"},
		{File: "src/lonely.js", Reason: "not imported by any file"},
	}, m.OrphanedFiles)
}

func TestCollectHeidegger_OrphansWithoutEntryPoints(t *testing.T) {
	in := project(t, map[string]string{
		"lib/a.js": "import './b';\n",
		"lib/b.js": "export const b = 1;\n",
	})

	m := scoring.CollectHeidegger(in)
	assert.Equal(t, []domain.OrphanedFile{{File: "lib/a.js", Reason: "not imported by any file"}}, m.OrphanedFiles)
}

func TestCollectHeidegger_PackageCompleteness(t *testing.T) {
	in := project(t, map[string]string{
		"package.json":               `{"name": "root"}`,
		"README.md":                  "# root\n",
		"src/index.js":               "// entry\nexport const x = 1;\n",
		"test/index.test.js":         "// test\n",
		"packages/bare/package.json": `{"name": "bare"}`,
		"packages/bare/index.js":     "// bare\n",
	})

	m := scoring.CollectHeidegger(in)
	require.Len(t, m.PackageCompleteness, 2)
	assert.Equal(t, domain.PackageCompleteness{Package: "root", Completeness: 1}, m.PackageCompleteness[0])
	assert.Equal(t, "bare", m.PackageCompleteness[1].Package)
	assert.Equal(t, 0.25, m.PackageCompleteness[1].Completeness)
	assert.Equal(t, []string{"source directory", "tests", "README"}, m.PackageCompleteness[1].Missing)
}

func TestCollectHeidegger_DocumentationAndNaming(t *testing.T) {
	in := project(t, map[string]string{
		"index.js":      "// Entry point.\nimport './messy';\nimport './clean';\n",
		"messy.js":      "export function Parse_Input() {}\nexport class userStore {}\nfunction loadAll() {}\n",
		"clean.js":      "/** Helpers. */\nexport function loadUser() {}\nexport class UserStore {}\n",
		"messy.test.js": "test('x', () => {});\n",
	})

	m := scoring.CollectHeidegger(in)
	assert.Equal(t, []string{"messy.js"}, m.Undocumented)
	require.Len(t, m.NamingDrift, 1)
	assert.Equal(t, "messy.js", m.NamingDrift[0].File)
	assert.Equal(t, 0.33, m.NamingDrift[0].Consistency)
	assert.Equal(t, []string{"Parse_Input", "userStore"}, m.NamingDrift[0].Offenders)
}

func TestCollectHeidegger_Coupling(t *testing.T) {
	in := projectWith(t, map[string]string{
		"hub.js": "// hub\nimport a from 'a';\nimport b from 'b';\nimport c from 'c';\nexport const x = a + b + c;\nexport const y = 1;\nexport const z = 2;\n",
	}, func(cfg *domain.AuditConfig) {
		cfg.Thresholds.MaxImports = 2
		cfg.Thresholds.MaxExports = 2
	})

	m := scoring.CollectHeidegger(in)
	assert.Equal(t, []domain.CouplingFinding{{File: "hub.js", Imports: 3, Exports: 3}}, m.Coupling)

	types := map[string]domain.Severity{}
	for _, v := range m.Violations {
		types[v.Type] = v.Severity
	}
	assert.Equal(t, domain.SeverityMedium, types[domain.ViolationHighCoupling])
	assert.Equal(t, domain.SeverityLow, types[domain.ViolationUnclearSurface])
}

func TestCollectHeidegger_ScoreInRange(t *testing.T) {
	files := map[string]string{}
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		next := map[string]string{"a": "b", "b": "a", "c": "d", "d": "c", "e": "f", "f": "e"}[name]
		files[name+".js"] = "import './" + next + "';\n"
	}
	m := scoring.CollectHeidegger(project(t, files))
	assert.Len(t, m.CircularDependencies, 3)
	assert.GreaterOrEqual(t, m.Score, 0.0)
	assert.LessOrEqual(t, m.Score, 10.0)
}

func TestCollectHeidegger_NoFiles(t *testing.T) {
	m := scoring.CollectHeidegger(project(t, map[string]string{}))
	assert.Equal(t, 0.0, m.Score)
	assert.Empty(t, m.Violations)
	assert.Empty(t, m.PackageCompleteness)
}
