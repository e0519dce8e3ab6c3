package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
)

// SyncLog represents a single sync operation's outcome.
type SyncLog struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"user_id"`
	CreatedAt       time.Time `json:"created_at"`
	Source          string    `json:"source"`
	Trigger         string    `json:"trigger"` // "manual" or "auto"
	Status          string    `json:"status"`  // "success" or "error"
	EntriesReceived int       `json:"entries_received"`
	DaysProduced    int       `json:"days_produced"`
	DurationMs      int       `json:"duration_ms"`
	ErrorMessage    *string   `json:"error_message"`
}

// InsertSyncLog creates a sync log entry and returns its ID.
func (db *DB) InsertSyncLog(ctx context.Context, log SyncLog) (int64, error) {
	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO sync_logs (user_id, source, trigger_kind, status, entries_received, days_produced, duration_ms, error_message)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`, log.UserID, log.Source, log.Trigger, log.Status,
		log.EntriesReceived, log.DaysProduced, log.DurationMs, log.ErrorMessage,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("inserting sync log: %w", err)
	}
	return id, nil
}

// QuerySyncLogs returns the most recent sync logs for a user.
func (db *DB) QuerySyncLogs(ctx context.Context, userID string, limit int) ([]SyncLog, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, created_at, source, trigger_kind, status, entries_received, days_produced, duration_ms, error_message
		FROM sync_logs
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying sync logs: %w", err)
	}
	defer rows.Close()

	var result []SyncLog
	for rows.Next() {
		var l SyncLog
		if err := rows.Scan(&l.ID, &l.UserID, &l.CreatedAt, &l.Source, &l.Trigger,
			&l.Status, &l.EntriesReceived, &l.DaysProduced, &l.DurationMs, &l.ErrorMessage); err != nil {
			return nil, fmt.Errorf("scanning sync log: %w", err)
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

// isNoRows reports whether err is pgx's no-rows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
