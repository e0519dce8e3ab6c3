package server

import (
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseDateRange(t *testing.T) {
	t.Run("explicit range", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/?start=2024-01-01&end=2024-01-31", nil)
		start, end, err := parseDateRange(req)
		if err != nil {
			t.Fatalf("parseDateRange: %v", err)
		}
		if start != "2024-01-01" || end != "2024-01-31" {
			t.Errorf("range = %s..%s", start, end)
		}
	})

	t.Run("defaults to last 30 days", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		start, end, err := parseDateRange(req)
		if err != nil {
			t.Fatalf("parseDateRange: %v", err)
		}
		st, _ := time.Parse("2006-01-02", start)
		en, _ := time.Parse("2006-01-02", end)
		if days := en.Sub(st).Hours() / 24; days != 30 {
			t.Errorf("default span = %v days, want 30", days)
		}
	})

	t.Run("rejects malformed dates", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/?start=Jan+1", nil)
		if _, _, err := parseDateRange(req); err == nil {
			t.Error("malformed start accepted")
		}
	})
}
