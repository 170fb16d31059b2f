package mcp

import (
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("LifeHub", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("LifeHub training progression server. Read the fitness profile, level progress per muscle group, the activity log and body stats."),
	)

	h := newHandlers(ds, log)

	s.AddTools(
		server.ServerTool{Tool: toolGetProfile, Handler: h.getProfile},
		server.ServerTool{Tool: toolGetLevelStatus, Handler: h.getLevelStatus},
		server.ServerTool{Tool: toolGetRecentLogs, Handler: h.getRecentLogs},
		server.ServerTool{Tool: toolGetBodyStats, Handler: h.getBodyStats},
	)

	s.AddResources(
		server.ServerResource{Resource: resProfileSummary, Handler: h.profileSummary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
	now func() time.Time
}

func newHandlers(ds DataSource, log *slog.Logger) *handlers {
	return &handlers{ds: ds, log: log, now: time.Now}
}

var resProfileSummary = mcp.NewResource(
	"lifehub://profile_summary",
	"Profile Summary",
	mcp.WithResourceDescription("Fitness level, streak, prestige, per-muscle levels and current body stats"),
	mcp.WithMIMEType("application/json"),
)
