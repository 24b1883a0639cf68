package resolver_test

import (
	"testing"

	"github.com/openkraft/excess/internal/adapters/outbound/resolver"
	"github.com/stretchr/testify/assert"
)

func newResolver() *resolver.Resolver {
	return resolver.New([]string{
		"index.ts",
		"src/app.ts",
		"src/util/format.ts",
		"src/util/index.ts",
		"src/components/Button.tsx",
		"src/legacy.js",
		"src/types.d.ts",
		"lib/server.mts",
	}, map[string]string{"@/": "src", "~": "src/util"})
}

func TestResolve_Internal(t *testing.T) {
	r := newResolver()
	tests := []struct {
		from, spec, want string
	}{
		{"src/app.ts", "./util/format", "src/util/format.ts"},
		{"src/app.ts", "./util", "src/util/index.ts"},
		{"src/util/format.ts", ".", "src/util/index.ts"},
		{"src/app.ts", "..", "index.ts"},
		{"src/util/format.ts", "../components/Button", "src/components/Button.tsx"},
		{"src/app.ts", "./legacy.js", "src/legacy.js"},
		{"src/app.ts", "./util/format.js", "src/util/format.ts"},
		{"src/app.ts", "./types", "src/types.d.ts"},
		{"src/app.ts", "/lib/server.mjs", "lib/server.mts"},
		{"index.ts", "@/app", "src/app.ts"},
		{"index.ts", "~/format", "src/util/format.ts"},
		{"src/app.ts", "./util/format?raw", "src/util/format.ts"},
	}
	for _, tt := range tests {
		t.Run(tt.spec, func(t *testing.T) {
			res, ok := r.Resolve(tt.from, tt.spec)
			assert.True(t, ok)
			assert.False(t, res.External)
			assert.Equal(t, tt.want, res.Path)
		})
	}
}

func TestResolve_Unresolved(t *testing.T) {
	r := newResolver()
	_, ok := r.Resolve("src/app.ts", "./missing")
	assert.False(t, ok)
	_, ok = r.Resolve("src/app.ts", "@/nope")
	assert.False(t, ok)
}

func TestResolve_External(t *testing.T) {
	r := newResolver()

	res, ok := r.Resolve("src/app.ts", "lodash/fp")
	assert.True(t, ok)
	assert.True(t, res.External)
	assert.False(t, res.Builtin)
	assert.Equal(t, "lodash", res.Package)

	res, _ = r.Resolve("src/app.ts", "@scope/pkg/deep/path")
	assert.Equal(t, "@scope/pkg", res.Package)

	res, _ = r.Resolve("src/app.ts", "node:fs/promises")
	assert.True(t, res.Builtin)

	res, _ = r.Resolve("src/app.ts", "path")
	assert.True(t, res.Builtin)
	assert.Equal(t, "path", res.Package)
}

func TestPackageName(t *testing.T) {
	assert.Equal(t, "react", resolver.PackageName("react"))
	assert.Equal(t, "react-dom", resolver.PackageName("react-dom/client"))
	assert.Equal(t, "@types/node", resolver.PackageName("@types/node"))
}
