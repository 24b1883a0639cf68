package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/openkraft/excess/internal/domain"
	"github.com/openkraft/excess/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSource_Errors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "lib.js"), 0o755))

	data, reason := readSource(filepath.Join(dir, "gone.js"), 0)
	assert.Nil(t, data)
	assert.NotEmpty(t, reason)

	data, reason = readSource(filepath.Join(dir, "lib.js"), 0)
	assert.Nil(t, data)
	assert.NotEmpty(t, reason)
}

// Files that disappear or turn unreadable between the walk and the read
// are skipped with the read error, not fatal.
func TestParseAll_UnreadableFilesAreSkipped(t *testing.T) {
	root := testutil.TempTree(t, map[string]string{"ok.js": "export const ok = 1;\n"})
	require.NoError(t, os.Mkdir(filepath.Join(root, "lib.js"), 0o755))

	s := New(testutil.NewTestLogger(t))
	files, skipped, err := s.parseAll(context.Background(), root, domain.DefaultAuditConfig(root), []string{"ok.js", "lib.js", "gone.js"})
	require.NoError(t, err)

	require.Len(t, files, 1)
	assert.Equal(t, "ok.js", files[0].Path)
	require.Len(t, skipped, 2)
	assert.Equal(t, "gone.js", skipped[0].Path)
	assert.Equal(t, "lib.js", skipped[1].Path)
	for _, sk := range skipped {
		assert.NotEmpty(t, sk.Reason)
	}
}
