package history_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/excess/internal/adapters/outbound/history"
	"github.com/openkraft/excess/internal/domain"
	"github.com/openkraft/excess/internal/testutil"
)

func entry(id, path string, overall float64) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:        id,
		Timestamp: time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC),
		Path:      path,
		Scores:    domain.Scores{Overall: overall},
	}
}

func TestHistory_AppendAndLoad(t *testing.T) {
	dir := t.TempDir()
	h := history.New(testutil.NewTestLogger(t))

	require.NoError(t, h.Append(dir, entry("1", "/p", 7.5)))

	entries, err := h.Load(dir, "/p")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].ID)
	assert.Equal(t, 7.5, entries[0].Scores.Overall)
	assert.True(t, entries[0].Timestamp.Equal(time.Date(2026, 2, 25, 10, 0, 0, 0, time.UTC)))
}

func TestHistory_AppendKeepsOrder(t *testing.T) {
	dir := t.TempDir()
	h := history.New(nil)

	require.NoError(t, h.Append(dir, entry("1", "/p", 4.7)))
	require.NoError(t, h.Append(dir, entry("2", "/p", 6.2)))
	require.NoError(t, h.Append(dir, entry("3", "/p", 8.5)))

	entries, err := h.Load(dir, "/p")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "1", entries[0].ID)
	assert.Equal(t, "3", entries[2].ID)
}

func TestHistory_FiltersByPath(t *testing.T) {
	dir := t.TempDir()
	h := history.New(nil)

	require.NoError(t, h.Append(dir, entry("a", "/one", 5)))
	require.NoError(t, h.Append(dir, entry("b", "/two", 6)))

	entries, err := h.Load(dir, "/two")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "b", entries[0].ID)
}

func TestHistory_LoadEmpty(t *testing.T) {
	entries, err := history.New(nil).Load(t.TempDir(), "/p")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistory_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "deep", ".excess")
	require.NoError(t, history.New(nil).Append(dir, entry("1", "/p", 5)))

	_, err := os.Stat(filepath.Join(dir, history.FileName))
	assert.NoError(t, err)
}

func TestHistory_SkipsCorruptLines(t *testing.T) {
	dir := t.TempDir()
	h := history.New(testutil.NewTestLogger(t))
	require.NoError(t, h.Append(dir, entry("1", "/p", 5)))

	f, err := os.OpenFile(filepath.Join(dir, history.FileName), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, h.Append(dir, entry("2", "/p", 6)))

	entries, err := h.Load(dir, "/p")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "2", entries[1].ID)
}

func TestHistory_SkipsOversizedLine(t *testing.T) {
	dir := t.TempDir()
	h := history.New(testutil.NewTestLogger(t))
	require.NoError(t, h.Append(dir, entry("1", "/p", 5)))

	big := entry("big", "/p", 9)
	big.Commit = strings.Repeat("f", 2<<20)
	data, err := json.Marshal(big)
	require.NoError(t, err)
	f, err := os.OpenFile(filepath.Join(dir, history.FileName), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.Write(append(data, '\n'))
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, h.Append(dir, entry("2", "/p", 6)))

	entries, err := h.Load(dir, "/p")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "1", entries[0].ID)
	assert.Equal(t, "2", entries[1].ID)
}

func TestHistory_RepairsMissingTrailingNewline(t *testing.T) {
	dir := t.TempDir()
	h := history.New(nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, history.FileName),
		[]byte(`{"id":"0","path":"/p","scores":{"overall":1}}`), 0o644))

	require.NoError(t, h.Append(dir, entry("1", "/p", 2)))

	entries, err := h.Load(dir, "/p")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "0", entries[0].ID)
}

func TestWriteAtomic_LeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	dest := filepath.Join(dir, "out.json")
	require.NoError(t, history.WriteAtomic(dest, []byte("one")))
	require.NoError(t, history.WriteAtomic(dest, []byte("two")))

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	names, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, names, 1)
}
