// Package autosync replays each opted-in user's most recently cached sync
// payload through the ingest pipeline, once per day, driven by the
// scheduler.
package autosync

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/paradigmbrian/wellness-mono-sub000/internal/ingest"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
)

// TaskID is the scheduler registration id for the daily sync task.
const TaskID = "daily-auto-sync"

// Store lists the connected sources eligible for automatic syncing.
type Store interface {
	ListAutoSyncSources(ctx context.Context) ([]models.ConnectedSource, error)
}

// Ingester runs the full ingest pipeline for one payload.
type Ingester interface {
	Ingest(ctx context.Context, raw *models.HealthPayload, userID string) (*ingest.Result, error)
}

// Runner is the daily sync task body.
type Runner struct {
	store Store
	apple Ingester
	log   *slog.Logger
}

// NewRunner creates a daily sync runner.
func NewRunner(store Store, apple Ingester, log *slog.Logger) *Runner {
	return &Runner{store: store, apple: apple, log: log}
}

// Run processes every auto-sync-enabled source. Failures are isolated per
// user: one user's bad payload or storage error is logged and the loop
// moves on, so it never blocks the remaining users in the same tick.
func (r *Runner) Run(ctx context.Context) error {
	sources, err := r.store.ListAutoSyncSources(ctx)
	if err != nil {
		return err
	}

	for _, src := range sources {
		if len(src.CachedPayload) == 0 {
			r.log.Info("auto-sync: no cached payload", "user", src.UserID, "source", src.Source)
			continue
		}

		var payload models.HealthPayload
		if err := json.Unmarshal(src.CachedPayload, &payload); err != nil {
			r.log.Error("auto-sync: cached payload unreadable", "user", src.UserID, "error", err)
			continue
		}

		result, err := r.apple.Ingest(ctx, &payload, src.UserID)
		if err != nil {
			r.log.Error("auto-sync failed", "user", src.UserID, "source", src.Source, "error", err)
			continue
		}
		r.log.Info("auto-sync complete", "user", src.UserID, "days", result.DaysProduced)
	}

	return nil
}
