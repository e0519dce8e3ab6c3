package mcp

import (
	"context"

	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/storage"
)

// DataSource abstracts the data layer for MCP tools.
type DataSource interface {
	QueryDailyMetrics(ctx context.Context, userID, start, end string) ([]models.DailyMetricRecord, error)
	GetLatestDailyMetric(ctx context.Context, userID string) (*models.DailyMetricRecord, error)
	QueryInsights(ctx context.Context, userID, category string, limit int) ([]models.Insight, error)
	ListSources(ctx context.Context, userID string) ([]models.ConnectedSource, error)
	QuerySyncLogs(ctx context.Context, userID string, limit int) ([]storage.SyncLog, error)
	GetSubscription(ctx context.Context, userID string) (*models.Subscription, error)
}

// Compile-time check: *storage.DB satisfies DataSource.
var _ DataSource = (*storage.DB)(nil)
