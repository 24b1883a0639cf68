package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	auditURI    = "excess://audit"
	baselineURI = "excess://baseline"
)

// registerResources registers all excess MCP resources on the given server.
func registerResources(s *server.MCPServer, h *handler) {
	// 1. excess://audit - fresh audit of the project
	s.AddResource(
		mcplib.NewResource(
			auditURI,
			"Audit",
			mcplib.WithResourceDescription("Current excess audit result for the project"),
			mcplib.WithMIMEType("application/json"),
		),
		h.handleAuditResource,
	)

	// 2. excess://baseline - pinned baseline
	s.AddResource(
		mcplib.NewResource(
			baselineURI,
			"Baseline",
			mcplib.WithResourceDescription("The baseline pinned for the project, or null"),
			mcplib.WithMIMEType("application/json"),
		),
		h.handleBaselineResource,
	)
}

func (h *handler) handleAuditResource(ctx context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	r, _, err := h.audit.AuditPath(ctx, h.projectPath)
	if err != nil {
		return nil, fmt.Errorf("audit failed: %w", err)
	}
	return jsonContents(auditURI, r)
}

func (h *handler) handleBaselineResource(_ context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
	cfg, err := h.audit.ResolveConfig(h.projectPath)
	if err != nil {
		return nil, err
	}
	b, err := h.baselines.Baseline(cfg, cfg.Root)
	if err != nil {
		return nil, err
	}
	return jsonContents(baselineURI, b)
}

func jsonContents(uri string, v any) ([]mcplib.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %s: %w", uri, err)
	}
	return []mcplib.ResourceContents{
		mcplib.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
