package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// DailyMetricRecord is one row per (user, calendar date). Repeated
// observations for the same date across category streams merge into the
// same record; the batch upsert replaces fields rather than accumulating.
type DailyMetricRecord struct {
	UserID string `json:"userId"`
	Date   string `json:"date"` // YYYY-MM-DD
	Source string `json:"source,omitempty"`

	Steps          int `json:"steps"`
	ActiveMinutes  int `json:"activeMinutes"`
	CaloriesBurned int `json:"caloriesBurned"`

	RestingHeartRate int `json:"restingHeartRate"`

	SleepDuration      int `json:"sleepDuration"`
	DeepSleepDuration  int `json:"deepSleepDuration"`
	LightSleepDuration int `json:"lightSleepDuration"`

	// Weight stays a decimal string end to end to avoid float drift in storage.
	Weight string `json:"weight,omitempty"`

	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fats    int `json:"fats"`
}

// ConnectedSource is a user's link to an external data source, plus the
// sync bookkeeping the scheduler reads.
type ConnectedSource struct {
	UserID        string          `json:"user_id"`
	Source        string          `json:"source"`
	Connected     bool            `json:"connected"`
	AutoSync      bool            `json:"auto_sync"`
	LastSyncedAt  *time.Time      `json:"last_synced_at"`
	Settings      json.RawMessage `json:"settings,omitempty"`
	CachedPayload json.RawMessage `json:"-"`
}

// Insight is one human-readable narrative record over a user's data.
type Insight struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	Content   string    `json:"content"`
	Category  string    `json:"category"`
	Severity  string    `json:"severity"`
	CreatedAt time.Time `json:"created_at"`
}

// Insight categories and severities.
const (
	InsightCategorySummary = "summary"

	InsightSeverityInfo    = "info"
	InsightSeverityWarning = "warning"
)

// LabDocument is the metadata row for a lab result file stored in S3.
type LabDocument struct {
	ID          uuid.UUID `json:"id"`
	UserID      string    `json:"user_id"`
	Filename    string    `json:"filename"`
	ObjectKey   string    `json:"object_key"`
	ContentType string    `json:"content_type"`
	SizeBytes   int64     `json:"size_bytes"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Subscription is the persisted billing state for a user. The payment
// processor itself is external; the server only stores what it reports.
type Subscription struct {
	UserID           string     `json:"user_id"`
	Tier             string     `json:"tier"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end"`
	UpdatedAt        time.Time  `json:"updated_at"`
}
