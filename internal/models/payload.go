package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Source tags recorded on daily metric records.
const (
	SourceAppleHealth = "apple_health"
)

// HealthPayload is the raw multi-category sync payload as uploaded by a
// client. Each category is kept as raw JSON so the validation layer can
// distinguish "key absent" from "key present but not an array".
type HealthPayload struct {
	Activities    json.RawMessage `json:"activities,omitempty"`
	SleepAnalysis json.RawMessage `json:"sleepAnalysis,omitempty"`
	BodyMass      json.RawMessage `json:"bodyMass,omitempty"`
	HeartRate     json.RawMessage `json:"heartRate,omitempty"`
	Nutrition     json.RawMessage `json:"nutrition,omitempty"`
}

// FlexNumber is a best-effort numeric field. Clients send numbers, numeric
// strings, null, or garbage; everything that does not parse becomes 0.
// Decoding never fails.
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	*n = 0

	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = FlexNumber(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			*n = FlexNumber(parsed)
		}
	}
	return nil
}

func (n FlexNumber) MarshalJSON() ([]byte, error) {
	return json.Marshal(float64(n))
}

// Int returns the value truncated to an integer.
func (n FlexNumber) Int() int { return int(n) }

// Float returns the value as a float64.
func (n FlexNumber) Float() float64 { return float64(n) }

// ActivityEntry is one day's activity observation. Date is deliberately
// untyped: the validator rejects non-string dates with a format error
// rather than failing the JSON decode of the whole category.
type ActivityEntry struct {
	Date               any        `json:"date"`
	Steps              FlexNumber `json:"steps"`
	ActiveEnergyBurned FlexNumber `json:"activeEnergyBurned"`
	ActiveMinutes      FlexNumber `json:"activeMinutes"`
}

// SleepEntry is one night's sleep observation, durations in minutes.
type SleepEntry struct {
	Date               any        `json:"date"`
	TotalSleepDuration FlexNumber `json:"totalSleepDuration"`
	DeepSleepDuration  FlexNumber `json:"deepSleepDuration"`
	LightSleepDuration FlexNumber `json:"lightSleepDuration"`
}

// BodyMassEntry is one day's weight observation.
type BodyMassEntry struct {
	Date   any        `json:"date"`
	Weight FlexNumber `json:"weight"`
}

// HeartRateEntry is one day's resting heart rate observation.
type HeartRateEntry struct {
	Date             any        `json:"date"`
	RestingHeartRate FlexNumber `json:"restingHeartRate"`
}

// NutritionEntry is one day's macro totals in grams.
type NutritionEntry struct {
	Date    any        `json:"date"`
	Protein FlexNumber `json:"protein"`
	Carbs   FlexNumber `json:"carbs"`
	Fats    FlexNumber `json:"fats"`
}
