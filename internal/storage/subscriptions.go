package storage

import (
	"context"
	"fmt"

	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
)

// UpsertSubscription replaces a user's stored subscription state with what
// the payment processor reported.
func (db *DB) UpsertSubscription(ctx context.Context, sub models.Subscription) error {
	_, err := db.Pool.Exec(ctx, `
		INSERT INTO subscriptions (user_id, tier, status, current_period_end, updated_at)
		VALUES ($1, $2, $3, $4, NOW())
		ON CONFLICT (user_id) DO UPDATE
			SET tier = $2, status = $3, current_period_end = $4, updated_at = NOW()
	`, sub.UserID, sub.Tier, sub.Status, sub.CurrentPeriodEnd)
	if err != nil {
		return fmt.Errorf("upserting subscription for %s: %w", sub.UserID, err)
	}
	return nil
}

// GetSubscription returns a user's subscription state, defaulting to a
// free tier when no row exists.
func (db *DB) GetSubscription(ctx context.Context, userID string) (*models.Subscription, error) {
	var s models.Subscription
	err := db.Pool.QueryRow(ctx, `
		SELECT user_id, tier, status, current_period_end, updated_at
		FROM subscriptions
		WHERE user_id = $1
	`, userID).Scan(&s.UserID, &s.Tier, &s.Status, &s.CurrentPeriodEnd, &s.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return &models.Subscription{UserID: userID, Tier: "free", Status: "none"}, nil
		}
		return nil, fmt.Errorf("fetching subscription for %s: %w", userID, err)
	}
	return &s, nil
}
