package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/openkraft/excess/internal/adapters/outbound/baseline"
	"github.com/openkraft/excess/internal/adapters/outbound/config"
	"github.com/openkraft/excess/internal/adapters/outbound/gitinfo"
	"github.com/openkraft/excess/internal/adapters/outbound/history"
	"github.com/openkraft/excess/internal/adapters/outbound/scanner"
	"github.com/openkraft/excess/internal/application"
)

// Version is reported in the MCP handshake.
var Version = "dev"

// handler carries the services every tool and resource shares. Each call
// runs a fresh audit; nothing is cached between calls.
type handler struct {
	projectPath string
	audit       *application.AuditService
	baselines   *application.BaselineService
}

// NewExcessMCPServer creates an MCP server with every excess tool and
// resource registered. projectPath is the default tree to audit.
func NewExcessMCPServer(projectPath string, logger *slog.Logger) *server.MCPServer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	h := &handler{
		projectPath: projectPath,
		audit:       application.NewAuditService(scanner.New(logger), config.New(), gitinfo.New(), logger),
		baselines:   application.NewBaselineService(history.New(logger), baseline.New(logger), logger),
	}

	s := server.NewMCPServer(
		"excess",
		Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	registerTools(s, h)
	registerResources(s, h)

	return s
}
