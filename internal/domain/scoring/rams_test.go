package scoring_test

import (
	"strings"
	"testing"

	"github.com/openkraft/excess/internal/domain"
	"github.com/openkraft/excess/internal/domain/scoring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectRams_UnusedImports(t *testing.T) {
	in := project(t, map[string]string{
		"src/index.js": "import { foo, bar } from './lib';\nimport { name } from './names';\nbar();\nconsole.log(user.name);\n",
		"src/lib.js":   "export const foo = 1;\nexport const bar = () => 2;\n",
		"src/names.js": "export const name = 'n';\n",
		"src/App.jsx":  "import React from 'react';\nimport { useState } from 'react';\nexport function App() {\n  const [s] = useState(0);\n  return <div>{s}</div>;\n}\n",
	})

	m := scoring.CollectRams(in)
	var got []string
	for _, u := range m.UnusedImports {
		got = append(got, u.File+":"+u.Symbol)
	}
	assert.Equal(t, []string{"src/index.js:foo", "src/index.js:name"}, got)
	assert.Equal(t, "./lib", m.UnusedImports[0].Specifier)
	assert.Equal(t, 1, m.UnusedImports[0].Line)
}

func TestCollectRams_ReferencedImportIsNotFlagged(t *testing.T) {
	in := project(t, map[string]string{
		"index.js": "import { foo } from './foo';\n\nfunction run() {\n  return foo + 1;\n}\nrun();\n",
		"foo.js":   "export const foo = 1;\n",
	})
	assert.Empty(t, scoring.CollectRams(in).UnusedImports)
}

func TestCollectRams_DeadExports(t *testing.T) {
	in := project(t, map[string]string{
		"package.json":         `{"name": "lib", "main": "src/index.ts"}`,
		"src/index.ts":         "export * from './public';\nimport { helper } from './internal';\nexport const run = () => helper();\n",
		"src/public.ts":        "export const visible = 1;\nexport const alsoVisible = 2;\n",
		"src/internal.ts":      "export function helper() {}\nexport function forgotten() {}\n",
		"src/ns.ts":            "export const a = 1;\nexport const b = 2;\n",
		"src/consumer.ts":      "import * as ns from './ns';\nimport { legacy } from './cjs';\nconsole.log(ns, legacy);\n",
		"src/cjs.js":           "module.exports = { legacy, unusedLegacy };\n",
		"src/consumer.test.ts": "import { forgotten } from './internal';\nexport const fixture = 1;\n",
	})

	m := scoring.CollectRams(in)
	var got []string
	for _, d := range m.DeadExports {
		got = append(got, d.File+":"+d.Export)
	}
	// forgotten is used by a test; fixture lives in a test file; index.ts is
	// the package entry.
	assert.Equal(t, []string{"src/cjs.js:unusedLegacy"}, got)
}

func TestCollectRams_BarrelReExportCountsAsUse(t *testing.T) {
	in := project(t, map[string]string{
		"src/main.ts":        "import { format } from './util';\nformat();\n",
		"src/util/index.ts":  "export { format, parse } from './format';\n",
		"src/util/format.ts": "export const format = () => 1;\nexport const parse = () => 2;\nexport const hidden = 3;\n",
	})

	m := scoring.CollectRams(in)
	var got []string
	for _, d := range m.DeadExports {
		got = append(got, d.File+":"+d.Export)
	}
	assert.Equal(t, []string{"src/util/format.ts:hidden", "src/util/index.ts:parse"}, got)
}

func TestCollectRams_UnusedDependencies(t *testing.T) {
	in := project(t, map[string]string{
		"package.json": `{
  "name": "app",
  "dependencies": {"lodash": "^4.17.21", "react": "^18.0.0", "@scope/kit": "1.0.0"},
  "devDependencies": {"vitest": "^1.0.0", "@types/react": "^18.0.0", "@types/node": "^20.0.0", "typescript": "^5.0.0", "prettier": "^3.0.0"},
  "peerDependencies": {"react-dom": "^18.0.0"},
  "scripts": {"test": "vitest run", "build": "tsc -p ."}
}`,
		"src/index.tsx":             "import { render } from 'react';\nimport { Button } from '@scope/kit/button';\nrender(Button);\n",
		"packages/sub/package.json": `{"name": "sub", "dependencies": {"lodash": "4"}}`,
		"packages/sub/index.js":     "const _ = require('lodash');\n_.noop();\n",
	})

	m := scoring.CollectRams(in)
	require.Len(t, m.UnusedDependencies, 3)
	assert.Equal(t, domain.UnusedDependency{Name: "lodash", Type: domain.DependencyRuntime, Manifest: "package.json"}, m.UnusedDependencies[0])
	assert.Equal(t, domain.UnusedDependency{Name: "prettier", Type: domain.DependencyDev, Manifest: "package.json"}, m.UnusedDependencies[1])
	assert.Equal(t, domain.UnusedDependency{Name: "react-dom", Type: domain.DependencyPeer, Manifest: "package.json"}, m.UnusedDependencies[2])

	var lodash domain.Violation
	for _, v := range m.Violations {
		if v.Type == domain.ViolationUnusedDependency && strings.Contains(v.Message, "lodash") {
			lodash = v
		}
	}
	assert.Equal(t, domain.SeverityMedium, lodash.Severity)
}

func TestCollectRams_LargeAndEmptyFiles(t *testing.T) {
	in := projectWith(t, map[string]string{
		"medium.js":   strings.Repeat("x();\n", 4),
		"high.js":     strings.Repeat("x();\n", 6),
		"critical.js": strings.Repeat("x();\n", 11),
		"small.js":    "x();\n",
		"empty.js":    "  \n\n",
	}, func(cfg *domain.AuditConfig) {
		cfg.Thresholds.LargeFileLines = 3
		cfg.Thresholds.CriticalFileLines = 5
	})

	m := scoring.CollectRams(in)
	assert.ElementsMatch(t, []domain.LargeFile{
		{File: "critical.js", Lines: 11},
		{File: "high.js", Lines: 6},
		{File: "medium.js", Lines: 4},
	}, m.LargeFiles)
	assert.Equal(t, []string{"empty.js"}, m.EmptyFiles)

	severities := map[string]domain.Severity{}
	for _, v := range m.Violations {
		if v.Type == domain.ViolationLargeFile {
			severities[v.File] = v.Severity
		}
	}
	assert.Equal(t, domain.SeverityCritical, severities["critical.js"])
	assert.Equal(t, domain.SeverityHigh, severities["high.js"])
	assert.Equal(t, domain.SeverityMedium, severities["medium.js"])

	// 3.0 for large files capped at 2.5, 0.25 for the empty file.
	assert.Equal(t, 7.3, m.Score)
	assert.Equal(t, domain.SeverityCritical, m.Violations[0].Severity)
}

func TestCollectRams_ScoreBounds(t *testing.T) {
	files := map[string]string{}
	for i := 0; i < 40; i++ {
		files["dead"+strings.Repeat("x", i)+".js"] = "import { a, b, c } from 'pkg';\nexport const unused = 1;\n"
	}
	m := scoring.CollectRams(project(t, files))
	assert.GreaterOrEqual(t, m.Score, 0.0)
	assert.LessOrEqual(t, m.Score, 10.0)
	assert.Equal(t, 5.0, m.Score)
}
