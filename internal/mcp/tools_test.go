package mcp

import (
	"testing"
	"time"
)

func TestDefaultDateRange(t *testing.T) {
	t.Run("explicit", func(t *testing.T) {
		start, end, err := defaultDateRange("2024-01-01", "2024-02-01")
		if err != nil {
			t.Fatalf("defaultDateRange: %v", err)
		}
		if start != "2024-01-01" || end != "2024-02-01" {
			t.Errorf("range = %s..%s", start, end)
		}
	})

	t.Run("start defaults to 30 days before end", func(t *testing.T) {
		start, end, err := defaultDateRange("", "2024-02-01")
		if err != nil {
			t.Fatalf("defaultDateRange: %v", err)
		}
		if start != "2024-01-02" || end != "2024-02-01" {
			t.Errorf("range = %s..%s", start, end)
		}
	})

	t.Run("both default", func(t *testing.T) {
		start, end, err := defaultDateRange("", "")
		if err != nil {
			t.Fatalf("defaultDateRange: %v", err)
		}
		st, _ := time.Parse("2006-01-02", start)
		en, _ := time.Parse("2006-01-02", end)
		if days := en.Sub(st).Hours() / 24; days != 30 {
			t.Errorf("default span = %v days, want 30", days)
		}
	})

	t.Run("rejects garbage", func(t *testing.T) {
		if _, _, err := defaultDateRange("soon", ""); err == nil {
			t.Error("malformed start accepted")
		}
	})
}
