package ingest

// Result holds the outcome of a sync/ingest operation.
type Result struct {
	EntriesReceived int `json:"entries_received"`
	DaysProduced    int `json:"days_produced"`

	ActivityEntries  int `json:"activity_entries,omitempty"`
	SleepEntries     int `json:"sleep_entries,omitempty"`
	BodyMassEntries  int `json:"body_mass_entries,omitempty"`
	HeartRateEntries int `json:"heart_rate_entries,omitempty"`
	NutritionEntries int `json:"nutrition_entries,omitempty"`

	Message string `json:"message,omitempty"`
}
