package mcp

import (
	"context"
	"encoding/json"
	"testing"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openkraft/excess/internal/adapters/outbound/baseline"
	"github.com/openkraft/excess/internal/adapters/outbound/config"
	"github.com/openkraft/excess/internal/adapters/outbound/history"
	"github.com/openkraft/excess/internal/adapters/outbound/scanner"
	"github.com/openkraft/excess/internal/application"
	"github.com/openkraft/excess/internal/domain"
	"github.com/openkraft/excess/internal/testutil"
)

func newHandler(t *testing.T, root string) *handler {
	t.Helper()
	logger := testutil.NewTestLogger(t)
	return &handler{
		projectPath: root,
		audit:       application.NewAuditService(scanner.New(logger), config.New(), nil, logger),
		baselines:   application.NewBaselineService(history.New(logger), baseline.New(logger), logger),
	}
}

func contentText(t *testing.T, contents []mcplib.ResourceContents) string {
	t.Helper()
	require.Len(t, contents, 1)
	tc, ok := contents[0].(mcplib.TextResourceContents)
	require.True(t, ok)
	assert.Equal(t, "application/json", tc.MIMEType)
	return tc.Text
}

func TestAuditResource(t *testing.T) {
	root := testutil.TempTree(t, map[string]string{"index.js": "export const x = 1;\n"})
	h := newHandler(t, root)

	contents, err := h.handleAuditResource(context.Background(), mcplib.ReadResourceRequest{})
	require.NoError(t, err)

	var r domain.AuditResult
	require.NoError(t, json.Unmarshal([]byte(contentText(t, contents)), &r))
	assert.Equal(t, 1, r.FilesScanned)
}

func TestBaselineResource(t *testing.T) {
	root := testutil.TempTree(t, map[string]string{"index.js": "export const x = 1;\n"})
	h := newHandler(t, root)

	contents, err := h.handleBaselineResource(context.Background(), mcplib.ReadResourceRequest{})
	require.NoError(t, err)
	assert.Equal(t, "null", contentText(t, contents))

	r, cfg, err := h.audit.AuditPath(context.Background(), root)
	require.NoError(t, err)
	_, err = h.baselines.SaveBaseline(cfg, r)
	require.NoError(t, err)

	contents, err = h.handleBaselineResource(context.Background(), mcplib.ReadResourceRequest{})
	require.NoError(t, err)
	var b domain.Baseline
	require.NoError(t, json.Unmarshal([]byte(contentText(t, contents)), &b))
	assert.Equal(t, r.RunID, b.Entry.ID)
}
