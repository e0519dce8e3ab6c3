package mcp

import (
	"context"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

// defaultDateRange returns start/end date strings defaulting to the last
// 30 days.
func defaultDateRange(startStr, endStr string) (string, string, error) {
	end := endStr
	if end == "" {
		end = time.Now().UTC().Format("2006-01-02")
	}
	start := startStr
	if start == "" {
		t, err := time.Parse("2006-01-02", end)
		if err != nil {
			return "", "", err
		}
		start = t.AddDate(0, 0, -30).Format("2006-01-02")
	}
	for _, d := range []string{start, end} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return "", "", err
		}
	}
	return start, end, nil
}

// --- Tool definitions ---

var toolGetDailyMetrics = mcp.NewTool("get_daily_metrics",
	mcp.WithDescription("Retrieve daily health metric records (steps, active minutes, calories, sleep durations, weight, resting heart rate, macros) for a date range. One record per day."),
	mcp.WithString("start", mcp.Description("Start date (YYYY-MM-DD). Defaults to 30 days ago.")),
	mcp.WithString("end", mcp.Description("End date (YYYY-MM-DD). Defaults to today.")),
)

var toolGetInsights = mcp.NewTool("get_insights",
	mcp.WithDescription("Retrieve generated health insights, newest first."),
	mcp.WithString("category", mcp.Description("Filter by insight category (e.g. 'summary')")),
	mcp.WithNumber("limit", mcp.Description("Maximum number of insights to return. Defaults to 50.")),
)

var toolGetConnectedSources = mcp.NewTool("get_connected_sources",
	mcp.WithDescription("List the user's connected health data sources with auto-sync status and last sync time."),
)

var toolGetSyncLogs = mcp.NewTool("get_sync_logs",
	mcp.WithDescription("Retrieve recent sync operations with trigger, status, and volume counters."),
	mcp.WithNumber("limit", mcp.Description("Maximum number of log entries to return. Defaults to 50.")),
)

// --- Tool handlers ---

func (h *handlers) getDailyMetrics(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	start, end, err := defaultDateRange(req.GetString("start", ""), req.GetString("end", ""))
	if err != nil {
		return mcp.NewToolResultError("invalid date format: " + err.Error()), nil
	}

	uid := UserIDFromContext(ctx)
	records, err := h.ds.QueryDailyMetrics(ctx, uid, start, end)
	if err != nil {
		h.log.Error("mcp get_daily_metrics", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(records)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getInsights(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	uid := UserIDFromContext(ctx)
	category := req.GetString("category", "")
	limit := req.GetInt("limit", 0)

	insights, err := h.ds.QueryInsights(ctx, uid, category, limit)
	if err != nil {
		h.log.Error("mcp get_insights", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(insights)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getConnectedSources(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sources, err := h.ds.ListSources(ctx, UserIDFromContext(ctx))
	if err != nil {
		h.log.Error("mcp get_connected_sources", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(sources)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}

func (h *handlers) getSyncLogs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logs, err := h.ds.QuerySyncLogs(ctx, UserIDFromContext(ctx), req.GetInt("limit", 0))
	if err != nil {
		h.log.Error("mcp get_sync_logs", "error", err)
		return mcp.NewToolResultError("query failed: " + err.Error()), nil
	}

	result, err := mcp.NewToolResultJSON(logs)
	if err != nil {
		return mcp.NewToolResultError("serialization failed"), nil
	}
	return result, nil
}
