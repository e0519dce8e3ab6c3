package upload

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestUploaderRun(t *testing.T) {
	var received atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/sync/apple" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("X-API-Key") != "k" || r.Header.Get("X-User-ID") != "u1" {
			t.Error("auth headers missing")
		}
		received.Add(1)
		w.Write([]byte(`{"entries_received": 1, "days_produced": 2}`))
	}))
	defer srv.Close()

	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"activities": [{"date": "2024-01-05", "steps": 100}]}`)
	writeFile(t, dir, "b.json", `{"sleepAnalysis": []}`)
	writeFile(t, dir, "broken.json", `not json`)
	writeFile(t, dir, "ignored.txt", `skip me`)

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	u := New(NewClient(srv.URL, "k", "u1"), state, dir, false, testLogger())
	stats, err := u.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if stats.FilesTotal != 3 {
		t.Errorf("FilesTotal = %d, want 3", stats.FilesTotal)
	}
	if stats.FilesSent != 2 || received.Load() != 2 {
		t.Errorf("FilesSent = %d (server saw %d), want 2", stats.FilesSent, received.Load())
	}
	if stats.FilesErrored != 1 {
		t.Errorf("FilesErrored = %d, want 1", stats.FilesErrored)
	}
	if stats.DaysProduced != 4 {
		t.Errorf("DaysProduced = %d, want 4", stats.DaysProduced)
	}
	if total, err := state.TotalDaysSent(); err != nil || total != 4 {
		t.Errorf("TotalDaysSent = %d (err %v), want 4", total, err)
	}

	// A second run skips everything already sent.
	u2 := New(NewClient(srv.URL, "k", "u1"), state, dir, false, testLogger())
	stats2, err := u2.Run()
	if err != nil {
		t.Fatalf("second Run: %v", err)
	}
	if stats2.FilesSkipped != 2 || received.Load() != 2 {
		t.Errorf("FilesSkipped = %d (server saw %d), want 2 skipped and no new sends",
			stats2.FilesSkipped, received.Load())
	}
}

func TestUploaderDryRun(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", `{"activities": []}`)

	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	defer state.Close()

	u := New(nil, state, dir, true, testLogger())
	stats, err := u.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if stats.FilesSent != 1 {
		t.Errorf("FilesSent = %d, want 1 (counted, not transmitted)", stats.FilesSent)
	}

	// Dry-run must not mark files as sent.
	sent, err := state.IsSent("a.json", 0, "")
	if err != nil {
		t.Fatal(err)
	}
	if sent {
		t.Error("dry-run recorded state")
	}
}
