package mcp

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
)

func (h *handlers) recentSummary(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uid := UserIDFromContext(ctx)

	latest, err := h.ds.GetLatestDailyMetric(ctx, uid)
	if err != nil {
		return nil, err
	}

	insights, err := h.ds.QueryInsights(ctx, uid, "", 10)
	if err != nil {
		h.log.Warn("recent_summary: insight query failed", "error", err)
	}

	sub, err := h.ds.GetSubscription(ctx, uid)
	if err != nil {
		h.log.Warn("recent_summary: subscription query failed", "error", err)
	}

	summary := map[string]any{
		"date":            time.Now().UTC().Format("2006-01-02"),
		"latest_metrics":  latest,
		"recent_insights": insights,
		"subscription":    sub,
	}

	data, err := json.Marshal(summary)
	if err != nil {
		return nil, err
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
