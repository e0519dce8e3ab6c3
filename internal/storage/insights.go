package storage

import (
	"context"
	"fmt"

	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
)

// InsertInsight records one narrative insight for a user.
func (db *DB) InsertInsight(ctx context.Context, insight models.Insight) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO insights (id, user_id, content, category, severity)
		VALUES ($1, $2, $3, $4, $5)
	`, insight.ID, insight.UserID, insight.Content, insight.Category, insight.Severity)
	if err != nil {
		return fmt.Errorf("inserting insight: %w", err)
	}
	return nil
}

// QueryInsights returns a user's most recent insights, optionally filtered
// by category.
func (db *DB) QueryInsights(ctx context.Context, userID, category string, limit int) ([]models.Insight, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id, user_id, content, category, severity, created_at
		FROM insights
		WHERE user_id = $1 AND ($2 = '' OR category = $2)
		ORDER BY created_at DESC
		LIMIT $3
	`, userID, category, limit)
	if err != nil {
		return nil, fmt.Errorf("querying insights: %w", err)
	}
	defer rows.Close()

	var result []models.Insight
	for rows.Next() {
		var i models.Insight
		if err := rows.Scan(&i.ID, &i.UserID, &i.Content, &i.Category, &i.Severity, &i.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning insight row: %w", err)
		}
		result = append(result, i)
	}
	return result, rows.Err()
}
