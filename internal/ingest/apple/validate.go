package apple

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
)

// Validation failure kinds. Dates fail loudly; numbers never do, since
// the FlexNumber decoder defaults anything non-numeric to zero instead.
var (
	ErrInvalidFormat = errors.New("invalid format")
	ErrTypeMismatch  = errors.New("type mismatch")
)

// ValidationError rejects a whole payload before any reduction happens.
type ValidationError struct {
	Kind  error  // ErrInvalidFormat or ErrTypeMismatch
	Field string // offending field or category name
	Value any    // offending value as received
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: field %q (value %v)", e.Kind, e.Field, e.Value)
}

func (e *ValidationError) Unwrap() error { return e.Kind }

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// validateDate accepts only strings matching YYYY-MM-DD. It deliberately
// performs no calendar check: "2024-02-30" passes. Changing that would
// change accepted-input behavior.
func validateDate(v any) (string, error) {
	s, ok := v.(string)
	if !ok || !datePattern.MatchString(s) {
		return "", &ValidationError{Kind: ErrInvalidFormat, Field: "date", Value: v}
	}
	return s, nil
}

// decodeCategory unmarshals one category's raw JSON into typed entries.
// A missing or null category yields nil; a present non-array rejects the
// whole payload.
func decodeCategory[T any](name string, raw json.RawMessage) ([]T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}
	var entries []T
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, &ValidationError{Kind: ErrTypeMismatch, Field: name, Value: string(raw)}
	}
	return entries, nil
}

// Observation types produced by validation: dates checked, numbers coerced.
// These are the trusted shapes the reducer works with.

type activityObs struct {
	date           string
	steps          int
	activeMinutes  int
	caloriesBurned int
}

type sleepObs struct {
	date  string
	total int
	deep  int
	light int
}

type bodyMassObs struct {
	date   string
	weight string
}

type heartRateObs struct {
	date    string
	resting int
}

type nutritionObs struct {
	date    string
	protein int
	carbs   int
	fats    int
}

// Batch is a fully validated payload, ready for reduction.
type Batch struct {
	Activity  []activityObs
	Sleep     []sleepObs
	BodyMass  []bodyMassObs
	HeartRate []heartRateObs
	Nutrition []nutritionObs
}

// Entries returns the total observation count across categories.
func (b *Batch) Entries() int {
	return len(b.Activity) + len(b.Sleep) + len(b.BodyMass) + len(b.HeartRate) + len(b.Nutrition)
}

// ValidatePayload sanitizes a raw payload into a trusted Batch. Any bad
// date anywhere fails the whole payload; no partial batch is returned.
func ValidatePayload(raw *models.HealthPayload) (*Batch, error) {
	b := &Batch{}

	activities, err := decodeCategory[models.ActivityEntry]("activities", raw.Activities)
	if err != nil {
		return nil, err
	}
	for _, e := range activities {
		date, err := validateDate(e.Date)
		if err != nil {
			return nil, err
		}
		b.Activity = append(b.Activity, activityObs{
			date:           date,
			steps:          e.Steps.Int(),
			activeMinutes:  e.ActiveMinutes.Int(),
			caloriesBurned: e.ActiveEnergyBurned.Int(),
		})
	}

	sleeps, err := decodeCategory[models.SleepEntry]("sleepAnalysis", raw.SleepAnalysis)
	if err != nil {
		return nil, err
	}
	for _, e := range sleeps {
		date, err := validateDate(e.Date)
		if err != nil {
			return nil, err
		}
		b.Sleep = append(b.Sleep, sleepObs{
			date:  date,
			total: e.TotalSleepDuration.Int(),
			deep:  e.DeepSleepDuration.Int(),
			light: e.LightSleepDuration.Int(),
		})
	}

	masses, err := decodeCategory[models.BodyMassEntry]("bodyMass", raw.BodyMass)
	if err != nil {
		return nil, err
	}
	for _, e := range masses {
		date, err := validateDate(e.Date)
		if err != nil {
			return nil, err
		}
		b.BodyMass = append(b.BodyMass, bodyMassObs{
			date:   date,
			weight: formatWeight(e.Weight.Float()),
		})
	}

	rates, err := decodeCategory[models.HeartRateEntry]("heartRate", raw.HeartRate)
	if err != nil {
		return nil, err
	}
	for _, e := range rates {
		date, err := validateDate(e.Date)
		if err != nil {
			return nil, err
		}
		b.HeartRate = append(b.HeartRate, heartRateObs{
			date:    date,
			resting: e.RestingHeartRate.Int(),
		})
	}

	nutrition, err := decodeCategory[models.NutritionEntry]("nutrition", raw.Nutrition)
	if err != nil {
		return nil, err
	}
	for _, e := range nutrition {
		date, err := validateDate(e.Date)
		if err != nil {
			return nil, err
		}
		b.Nutrition = append(b.Nutrition, nutritionObs{
			date:    date,
			protein: e.Protein.Int(),
			carbs:   e.Carbs.Int(),
			fats:    e.Fats.Int(),
		})
	}

	return b, nil
}

// formatWeight renders a weight as a decimal string for storage.
func formatWeight(w float64) string {
	return strconv.FormatFloat(w, 'f', -1, 64)
}
