package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
)

// ConnectSource creates or re-activates a user's link to a data source.
// Reconnecting keeps existing sync state but replaces the settings blob
// when a non-empty one is supplied.
func (db *DB) ConnectSource(ctx context.Context, userID, source string, settings json.RawMessage) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO connected_sources (user_id, source, connected, settings)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (user_id, source) DO UPDATE
			SET connected = TRUE,
			    settings = COALESCE(NULLIF($3, 'null'::jsonb), connected_sources.settings)
	`, userID, source, normalizeSettings(settings))
	if err != nil {
		return fmt.Errorf("connecting source %s for %s: %w", source, userID, err)
	}
	return nil
}

// DisconnectSource marks a source disconnected and turns auto-sync off.
// The cached payload is dropped so a stale sync cannot replay later.
func (db *DB) DisconnectSource(ctx context.Context, userID, source string) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE connected_sources
		SET connected = FALSE, auto_sync = FALSE, cached_payload = NULL
		WHERE user_id = $1 AND source = $2
	`, userID, source)
	if err != nil {
		return fmt.Errorf("disconnecting source %s for %s: %w", source, userID, err)
	}
	return nil
}

// SetAutoSync toggles automatic daily syncing for a connected source.
func (db *DB) SetAutoSync(ctx context.Context, userID, source string, enabled bool) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE connected_sources
		SET auto_sync = $3
		WHERE user_id = $1 AND source = $2 AND connected
	`, userID, source, enabled)
	if err != nil {
		return fmt.Errorf("setting auto-sync for %s/%s: %w", userID, source, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("source %s is not connected for user %s", source, userID)
	}
	return nil
}

// SaveSourcePayload caches the most recent raw payload for a source so the
// daily auto-sync task can replay it.
func (db *DB) SaveSourcePayload(ctx context.Context, userID, source string, payload json.RawMessage) error {
	_, err := db.Pool.Exec(ctx, `
		UPDATE connected_sources
		SET cached_payload = $3
		WHERE user_id = $1 AND source = $2
	`, userID, source, payload)
	if err != nil {
		return fmt.Errorf("caching payload for %s/%s: %w", userID, source, err)
	}
	return nil
}

// MarkSourceSynced advances the last-synced timestamp after a successful
// ingest.
func (db *DB) MarkSourceSynced(ctx context.Context, userID, source string, syncedAt time.Time) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO connected_sources (user_id, source, connected, last_synced_at)
		VALUES ($1, $2, TRUE, $3)
		ON CONFLICT (user_id, source) DO UPDATE SET last_synced_at = $3
	`, userID, source, syncedAt)
	if err != nil {
		return fmt.Errorf("marking %s/%s synced: %w", userID, source, err)
	}
	return nil
}

// ListSources returns all of a user's source links.
func (db *DB) ListSources(ctx context.Context, userID string) ([]models.ConnectedSource, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT user_id, source, connected, auto_sync, last_synced_at, settings, cached_payload
		FROM connected_sources
		WHERE user_id = $1
		ORDER BY source
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("listing sources for %s: %w", userID, err)
	}
	defer rows.Close()

	var result []models.ConnectedSource
	for rows.Next() {
		var s models.ConnectedSource
		if err := rows.Scan(&s.UserID, &s.Source, &s.Connected, &s.AutoSync,
			&s.LastSyncedAt, &s.Settings, &s.CachedPayload); err != nil {
			return nil, fmt.Errorf("scanning source row: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// ListAutoSyncSources returns every connected source with auto-sync on,
// across all users. The daily sync task iterates this set.
func (db *DB) ListAutoSyncSources(ctx context.Context) ([]models.ConnectedSource, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT user_id, source, connected, auto_sync, last_synced_at, settings, cached_payload
		FROM connected_sources
		WHERE connected AND auto_sync
		ORDER BY user_id, source
	`)
	if err != nil {
		return nil, fmt.Errorf("listing auto-sync sources: %w", err)
	}
	defer rows.Close()

	var result []models.ConnectedSource
	for rows.Next() {
		var s models.ConnectedSource
		if err := rows.Scan(&s.UserID, &s.Source, &s.Connected, &s.AutoSync,
			&s.LastSyncedAt, &s.Settings, &s.CachedPayload); err != nil {
			return nil, fmt.Errorf("scanning source row: %w", err)
		}
		result = append(result, s)
	}
	return result, rows.Err()
}

// normalizeSettings maps an empty blob to JSON null so COALESCE/NULLIF in
// ConnectSource behaves.
func normalizeSettings(settings json.RawMessage) json.RawMessage {
	if len(settings) == 0 {
		return json.RawMessage("null")
	}
	return settings
}
