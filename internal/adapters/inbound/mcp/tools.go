package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/excess/internal/domain"
)

// registerTools registers all excess MCP tools on the given server.
func registerTools(s *server.MCPServer, h *handler) {
	// 1. excess_audit
	s.AddTool(
		mcplib.NewTool("excess_audit",
			mcplib.WithDescription("Audit the project for duplication (DRY), unearned artifacts (Rams) and disconnection (Heidegger). Returns the full result as JSON."),
			mcplib.WithString("path", mcplib.Description("Directory to audit (defaults to the server's project path)")),
			mcplib.WithBoolean("record", mcplib.Description("Append the run to the audit history")),
		),
		h.handleAudit,
	)

	// 2. excess_compare
	s.AddTool(
		mcplib.NewTool("excess_compare",
			mcplib.WithDescription("Audit the project and compare the scores with the pinned baseline"),
			mcplib.WithString("path", mcplib.Description("Directory to audit (defaults to the server's project path)")),
		),
		h.handleCompare,
	)

	// 3. excess_history
	s.AddTool(
		mcplib.NewTool("excess_history",
			mcplib.WithDescription("Returns the recorded audit runs for the project, oldest first"),
			mcplib.WithString("path", mcplib.Description("Audited directory (defaults to the server's project path)")),
			mcplib.WithNumber("limit", mcplib.Description("Return only the most recent N runs")),
		),
		h.handleHistory,
	)
}

func (h *handler) path(request mcplib.CallToolRequest) string {
	return request.GetString("path", h.projectPath)
}

func (h *handler) handleAudit(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	r, cfg, err := h.audit.AuditPath(ctx, h.path(request))
	if err != nil {
		return errorResult(fmt.Sprintf("audit failed: %v", err)), nil
	}
	if request.GetBool("record", false) {
		if _, err := h.baselines.Record(cfg, r); err != nil {
			return errorResult(err.Error()), nil
		}
	}
	return jsonResult(r)
}

func (h *handler) handleCompare(ctx context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	r, cfg, err := h.audit.AuditPath(ctx, h.path(request))
	if err != nil {
		return errorResult(fmt.Sprintf("audit failed: %v", err)), nil
	}
	d, err := h.baselines.Compare(cfg, r)
	if errors.Is(err, domain.ErrNoBaseline) {
		return errorResult("no baseline recorded for this path; run `excess baseline` first"), nil
	}
	if err != nil {
		return errorResult(err.Error()), nil
	}
	return jsonResult(struct {
		Scores domain.Scores     `json:"scores"`
		Delta  domain.ScoreDelta `json:"delta"`
	}{r.Scores, *d})
}

func (h *handler) handleHistory(_ context.Context, request mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	cfg, err := h.audit.ResolveConfig(h.path(request))
	if err != nil {
		return errorResult(err.Error()), nil
	}
	entries, err := h.baselines.History(cfg, cfg.Root)
	if err != nil {
		return errorResult(err.Error()), nil
	}
	if limit := request.GetInt("limit", 0); limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	return jsonResult(entries)
}

// jsonResult marshals v into a text content result.
func jsonResult(v any) (*mcplib.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling result: %w", err)
	}
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(string(data))},
	}, nil
}

// errorResult returns a tool-level error the client can show.
func errorResult(msg string) *mcplib.CallToolResult {
	return &mcplib.CallToolResult{
		Content: []mcplib.Content{mcplib.NewTextContent(msg)},
		IsError: true,
	}
}
