package autosync

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/paradigmbrian/wellness-mono-sub000/internal/ingest"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
)

type fakeStore struct {
	sources []models.ConnectedSource
	err     error
}

func (f *fakeStore) ListAutoSyncSources(context.Context) ([]models.ConnectedSource, error) {
	return f.sources, f.err
}

type fakeIngester struct {
	calls   []string
	failFor map[string]error
}

func (f *fakeIngester) Ingest(_ context.Context, _ *models.HealthPayload, userID string) (*ingest.Result, error) {
	f.calls = append(f.calls, userID)
	if err := f.failFor[userID]; err != nil {
		return nil, err
	}
	return &ingest.Result{DaysProduced: 1}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func cachedPayload(t *testing.T) json.RawMessage {
	t.Helper()
	return json.RawMessage(`{"activities": [{"date": "2024-01-05", "steps": 100}]}`)
}

func TestRunProcessesAllSources(t *testing.T) {
	store := &fakeStore{sources: []models.ConnectedSource{
		{UserID: "u1", Source: "apple_health", CachedPayload: cachedPayload(t)},
		{UserID: "u2", Source: "apple_health", CachedPayload: cachedPayload(t)},
	}}
	ing := &fakeIngester{}

	r := NewRunner(store, ing, testLogger())
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ing.calls) != 2 {
		t.Errorf("ingested %d users, want 2", len(ing.calls))
	}
}

func TestRunIsolatesPerUserFailures(t *testing.T) {
	store := &fakeStore{sources: []models.ConnectedSource{
		{UserID: "u1", Source: "apple_health", CachedPayload: cachedPayload(t)},
		{UserID: "u2", Source: "apple_health", CachedPayload: cachedPayload(t)},
		{UserID: "u3", Source: "apple_health", CachedPayload: cachedPayload(t)},
	}}
	ing := &fakeIngester{failFor: map[string]error{"u1": errors.New("bad payload")}}

	r := NewRunner(store, ing, testLogger())
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run returned error despite per-user isolation: %v", err)
	}
	if len(ing.calls) != 3 {
		t.Errorf("ingested %d users, want all 3", len(ing.calls))
	}
}

func TestRunSkipsEmptyAndUnreadablePayloads(t *testing.T) {
	store := &fakeStore{sources: []models.ConnectedSource{
		{UserID: "empty", Source: "apple_health"},
		{UserID: "garbage", Source: "apple_health", CachedPayload: json.RawMessage(`{{{`)},
		{UserID: "ok", Source: "apple_health", CachedPayload: cachedPayload(t)},
	}}
	ing := &fakeIngester{}

	r := NewRunner(store, ing, testLogger())
	if err := r.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ing.calls) != 1 || ing.calls[0] != "ok" {
		t.Errorf("ingest calls = %v, want only %q", ing.calls, "ok")
	}
}

func TestRunPropagatesListFailure(t *testing.T) {
	store := &fakeStore{err: errors.New("db down")}
	r := NewRunner(store, &fakeIngester{}, testLogger())
	if err := r.Run(context.Background()); err == nil {
		t.Fatal("Run succeeded, want list error")
	}
}
