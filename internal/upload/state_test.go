package upload

import (
	"os"
	"path/filepath"
	"testing"
)

func TestStateDBRoundTrip(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	defer state.Close()

	sent, err := state.IsSent("export/2024-01.json", 100, "abc")
	if err != nil {
		t.Fatalf("IsSent: %v", err)
	}
	if sent {
		t.Error("fresh file reported as sent")
	}

	if err := state.MarkSent("export/2024-01.json", 100, "abc", 3); err != nil {
		t.Fatalf("MarkSent: %v", err)
	}

	sent, err = state.IsSent("export/2024-01.json", 100, "abc")
	if err != nil {
		t.Fatalf("IsSent: %v", err)
	}
	if !sent {
		t.Error("marked file not reported as sent")
	}

	// A changed hash means the file changed and must be re-sent.
	sent, err = state.IsSent("export/2024-01.json", 100, "different")
	if err != nil {
		t.Fatalf("IsSent: %v", err)
	}
	if sent {
		t.Error("changed file reported as already sent")
	}
}

func TestTotalDaysSent(t *testing.T) {
	state, err := OpenStateDB(t.TempDir())
	if err != nil {
		t.Fatalf("OpenStateDB: %v", err)
	}
	defer state.Close()

	total, err := state.TotalDaysSent()
	if err != nil {
		t.Fatalf("TotalDaysSent: %v", err)
	}
	if total != 0 {
		t.Errorf("empty state TotalDaysSent = %d, want 0", total)
	}

	if err := state.MarkSent("a.json", 10, "h1", 3); err != nil {
		t.Fatal(err)
	}
	if err := state.MarkSent("b.json", 20, "h2", 2); err != nil {
		t.Fatal(err)
	}
	// Re-sending a changed file replaces its day count, not adds to it.
	if err := state.MarkSent("a.json", 11, "h1b", 4); err != nil {
		t.Fatal(err)
	}

	total, err = state.TotalDaysSent()
	if err != nil {
		t.Fatalf("TotalDaysSent: %v", err)
	}
	if total != 6 {
		t.Errorf("TotalDaysSent = %d, want 6", total)
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "payload.json")
	if err := os.WriteFile(path, []byte(`{"activities": []}`), 0o644); err != nil {
		t.Fatal(err)
	}

	h1, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	h2, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if h1 != h2 {
		t.Error("hash not deterministic")
	}
	if len(h1) != 64 {
		t.Errorf("hash length = %d, want 64 hex chars", len(h1))
	}

	if err := os.WriteFile(path, []byte(`{"activities": [1]}`), 0o644); err != nil {
		t.Fatal(err)
	}
	h3, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if h3 == h1 {
		t.Error("hash unchanged after content change")
	}
}
