package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
)

// UpsertDailyMetrics batch-upserts daily metric records keyed by
// (user_id, date). The upsert is a replace: a conflicting row takes every
// field from the incoming record, so re-syncing the same payload is
// idempotent. Concurrent syncs for the same user resolve last-write-wins
// at this layer.
func (db *DB) UpsertDailyMetrics(ctx context.Context, records []models.DailyMetricRecord) error {
	if len(records) == 0 {
		return nil
	}

	query := `INSERT INTO daily_metrics (user_id, date, source, steps, active_minutes, calories_burned,
resting_heart_rate, sleep_duration, deep_sleep_duration, light_sleep_duration, weight, protein, carbs, fats)
VALUES `
	args := make([]any, 0, len(records)*14)
	valueStrings := make([]string, 0, len(records))

	for i, r := range records {
		base := i * 14
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d,$%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7,
			base+8, base+9, base+10, base+11, base+12, base+13, base+14,
		))
		args = append(args, r.UserID, r.Date, r.Source, r.Steps, r.ActiveMinutes, r.CaloriesBurned,
			r.RestingHeartRate, r.SleepDuration, r.DeepSleepDuration, r.LightSleepDuration,
			r.Weight, r.Protein, r.Carbs, r.Fats)
	}

	query += strings.Join(valueStrings, ",") + ` ON CONFLICT (user_id, date) DO UPDATE SET
source = EXCLUDED.source, steps = EXCLUDED.steps, active_minutes = EXCLUDED.active_minutes,
calories_burned = EXCLUDED.calories_burned, resting_heart_rate = EXCLUDED.resting_heart_rate,
sleep_duration = EXCLUDED.sleep_duration, deep_sleep_duration = EXCLUDED.deep_sleep_duration,
light_sleep_duration = EXCLUDED.light_sleep_duration, weight = EXCLUDED.weight,
protein = EXCLUDED.protein, carbs = EXCLUDED.carbs, fats = EXCLUDED.fats`

	if _, err := db.Pool.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("upserting daily metrics: %w", err)
	}
	return nil
}

// QueryDailyMetrics retrieves a user's daily records in a date range
// (inclusive), ordered by date.
func (db *DB) QueryDailyMetrics(ctx context.Context, userID, start, end string) ([]models.DailyMetricRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, date::text, source, steps, active_minutes, calories_burned,
		 resting_heart_rate, sleep_duration, deep_sleep_duration, light_sleep_duration,
		 weight, protein, carbs, fats
		 FROM daily_metrics
		 WHERE user_id = $1 AND date >= $2 AND date <= $3
		 ORDER BY date ASC`,
		userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("querying daily metrics: %w", err)
	}
	defer rows.Close()

	return scanDailyMetricRows(rows)
}

// GetLatestDailyMetric returns the most recent record for a user, or nil
// when the user has no data yet.
func (db *DB) GetLatestDailyMetric(ctx context.Context, userID string) (*models.DailyMetricRecord, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT user_id, date::text, source, steps, active_minutes, calories_burned,
		 resting_heart_rate, sleep_duration, deep_sleep_duration, light_sleep_duration,
		 weight, protein, carbs, fats
		 FROM daily_metrics
		 WHERE user_id = $1
		 ORDER BY date DESC
		 LIMIT 1`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("querying latest daily metric: %w", err)
	}
	defer rows.Close()

	records, err := scanDailyMetricRows(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func scanDailyMetricRows(rows pgx.Rows) ([]models.DailyMetricRecord, error) {
	var result []models.DailyMetricRecord
	for rows.Next() {
		var r models.DailyMetricRecord
		if err := rows.Scan(&r.UserID, &r.Date, &r.Source, &r.Steps, &r.ActiveMinutes,
			&r.CaloriesBurned, &r.RestingHeartRate, &r.SleepDuration, &r.DeepSleepDuration,
			&r.LightSleepDuration, &r.Weight, &r.Protein, &r.Carbs, &r.Fats); err != nil {
			return nil, fmt.Errorf("scanning daily metric row: %w", err)
		}
		result = append(result, r)
	}
	return result, rows.Err()
}
