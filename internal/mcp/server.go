package mcp

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type contextKey int

const userIDKey contextKey = iota

// UserIDFromContext extracts the user ID injected by the transport layer.
func UserIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(userIDKey).(string); ok {
		return id
	}
	return ""
}

// WithUserID returns a context with the given user ID.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// New creates an MCP server with all tools and resources registered.
func New(ds DataSource, version string, log *slog.Logger) *server.MCPServer {
	s := server.NewMCPServer("Wellness", version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Wellness health data server. Query daily health metrics, insights, connected data sources, and sync history. All data is scoped to the authenticated user."),
	)

	h := &handlers{ds: ds, log: log}

	// Tools
	s.AddTools(
		server.ServerTool{Tool: toolGetDailyMetrics, Handler: h.getDailyMetrics},
		server.ServerTool{Tool: toolGetInsights, Handler: h.getInsights},
		server.ServerTool{Tool: toolGetConnectedSources, Handler: h.getConnectedSources},
		server.ServerTool{Tool: toolGetSyncLogs, Handler: h.getSyncLogs},
	)

	// Resources
	s.AddResources(
		server.ServerResource{Resource: resRecentSummary, Handler: h.recentSummary},
	)

	return s
}

// handlers holds dependencies for MCP tool/resource handlers.
type handlers struct {
	ds  DataSource
	log *slog.Logger
}

// --- Resource definitions ---

var resRecentSummary = mcp.NewResource(
	"wellness://recent_summary",
	"Recent Summary",
	mcp.WithResourceDescription("The latest daily metric record, recent insights, and subscription state"),
	mcp.WithMIMEType("application/json"),
)
