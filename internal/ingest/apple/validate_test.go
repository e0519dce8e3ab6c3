package apple

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/paradigmbrian/wellness-mono-sub000/internal/models"
)

func TestValidateDate(t *testing.T) {
	tests := []struct {
		name    string
		input   any
		want    string
		wantErr bool
	}{
		{"valid date", "2024-01-05", "2024-01-05", false},
		{"missing leading zeros", "2024-1-5", "", true},
		{"not a date at all", "yesterday", "", true},
		{"empty string", "", "", true},
		{"trailing garbage", "2024-01-05T00:00:00", "", true},
		{"numeric date", 20240105, "", true},
		{"nil date", nil, "", true},
		// The pattern checks shape only, not the calendar. February 30th
		// passes today; tightening this would reject previously accepted
		// payloads.
		{"impossible calendar date", "2024-02-30", "2024-02-30", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := validateDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("validateDate(%v) = %q, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidFormat) {
					t.Errorf("error = %v, want ErrInvalidFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("validateDate(%v) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("validateDate(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestFlexNumberCoercion(t *testing.T) {
	tests := []struct {
		name string
		json string
		want int
	}{
		{"plain number", `{"steps": 42}`, 42},
		{"numeric string", `{"steps": "42"}`, 42},
		{"float truncates", `{"steps": 41.9}`, 41},
		{"null", `{"steps": null}`, 0},
		{"non-numeric string", `{"steps": "abc"}`, 0},
		{"missing field", `{}`, 0},
		{"boolean", `{"steps": true}`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e models.ActivityEntry
			if err := json.Unmarshal([]byte(tt.json), &e); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if got := e.Steps.Int(); got != tt.want {
				t.Errorf("Steps = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestValidatePayloadTypeMismatch(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"activities is object", `{"activities": {"date": "2024-01-05"}}`},
		{"sleepAnalysis is string", `{"sleepAnalysis": "not an array"}`},
		{"heartRate is number", `{"heartRate": 7}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var payload models.HealthPayload
			if err := json.Unmarshal([]byte(tt.body), &payload); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			_, err := ValidatePayload(&payload)
			if err == nil {
				t.Fatal("ValidatePayload succeeded, want type mismatch")
			}
			if !errors.Is(err, ErrTypeMismatch) {
				t.Errorf("error = %v, want ErrTypeMismatch", err)
			}
		})
	}
}

func TestValidatePayloadMissingAndNullCategories(t *testing.T) {
	var payload models.HealthPayload
	body := `{"activities": null}`
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	batch, err := ValidatePayload(&payload)
	if err != nil {
		t.Fatalf("ValidatePayload: %v", err)
	}
	if batch.Entries() != 0 {
		t.Errorf("Entries() = %d, want 0", batch.Entries())
	}
}

func TestValidatePayloadBadDateAbortsWholePayload(t *testing.T) {
	body := `{
		"activities": [{"date": "2024-01-05", "steps": 100}],
		"nutrition": [{"date": "not-a-date", "protein": 30}]
	}`
	var payload models.HealthPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if _, err := ValidatePayload(&payload); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("error = %v, want ErrInvalidFormat", err)
	}
}

func TestValidatePayloadCoercesNumbers(t *testing.T) {
	body := `{
		"activities": [{"date": "2024-01-05", "steps": "8500", "activeMinutes": null, "activeEnergyBurned": "oops"}],
		"bodyMass": [{"date": "2024-01-05", "weight": 82.5}]
	}`
	var payload models.HealthPayload
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	batch, err := ValidatePayload(&payload)
	if err != nil {
		t.Fatalf("ValidatePayload: %v", err)
	}
	if len(batch.Activity) != 1 {
		t.Fatalf("Activity entries = %d, want 1", len(batch.Activity))
	}
	a := batch.Activity[0]
	if a.steps != 8500 || a.activeMinutes != 0 || a.caloriesBurned != 0 {
		t.Errorf("activity = %+v, want steps=8500 others 0", a)
	}
	if len(batch.BodyMass) != 1 || batch.BodyMass[0].weight != "82.5" {
		t.Errorf("bodyMass = %+v, want weight %q", batch.BodyMass, "82.5")
	}
}
