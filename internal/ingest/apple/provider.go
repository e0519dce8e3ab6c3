package apple

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/ingest"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
)

// Store is the persistence surface the provider drives. *storage.DB
// satisfies it; tests substitute fakes to exercise the sequencing rules.
type Store interface {
	UpsertDailyMetrics(ctx context.Context, records []models.DailyMetricRecord) error
	InsertInsight(ctx context.Context, insight models.Insight) error
	MarkSourceSynced(ctx context.Context, userID, source string, syncedAt time.Time) error
}

// Provider processes Apple Health sync payloads. The pipeline order is
// fixed: validate, reduce, persist, then insight and source bookkeeping.
type Provider struct {
	store Store
	log   *slog.Logger
	now   func() time.Time
}

// NewProvider creates an Apple Health ingest provider.
func NewProvider(store Store, log *slog.Logger) *Provider {
	return &Provider{store: store, log: log, now: time.Now}
}

// Ingest runs the full pipeline for one user's payload. If persistence
// fails, the insight and bookkeeping steps are skipped entirely and the
// operation fails as a whole.
func (p *Provider) Ingest(ctx context.Context, raw *models.HealthPayload, userID string) (*ingest.Result, error) {
	batch, err := ValidatePayload(raw)
	if err != nil {
		return nil, err
	}

	records := Reduce(userID, models.SourceAppleHealth, batch)

	if err := p.store.UpsertDailyMetrics(ctx, records); err != nil {
		return nil, fmt.Errorf("persisting daily metrics: %w", err)
	}

	summary := fmt.Sprintf("Synced %d day(s) of Apple Health data across %d observation(s).",
		len(records), batch.Entries())

	insight := models.Insight{
		ID:       uuid.New(),
		UserID:   userID,
		Content:  summary,
		Category: models.InsightCategorySummary,
		Severity: models.InsightSeverityInfo,
	}
	if err := p.store.InsertInsight(ctx, insight); err != nil {
		return nil, fmt.Errorf("recording sync insight: %w", err)
	}

	if err := p.store.MarkSourceSynced(ctx, userID, models.SourceAppleHealth, p.now()); err != nil {
		return nil, fmt.Errorf("updating source sync state: %w", err)
	}

	p.log.Info("apple health sync complete",
		"user", userID,
		"days", len(records),
		"entries", batch.Entries(),
	)

	return &ingest.Result{
		EntriesReceived:  batch.Entries(),
		DaysProduced:     len(records),
		ActivityEntries:  len(batch.Activity),
		SleepEntries:     len(batch.Sleep),
		BodyMassEntries:  len(batch.BodyMass),
		HeartRateEntries: len(batch.HeartRate),
		NutritionEntries: len(batch.Nutrition),
		Message:          summary,
	}, nil
}
