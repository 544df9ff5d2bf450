package journal

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/wricardo/mcp-training/richman/game/engine"
)

func readRecords(t *testing.T, path string) []Record {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("Failed to open %s: %v", path, err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		t.Fatalf("Failed to create decoder: %v", err)
	}
	defer dec.Close()

	var out []Record
	scanner := bufio.NewScanner(dec)
	for scanner.Scan() {
		var r Record
		if err := json.Unmarshal(scanner.Bytes(), &r); err != nil {
			t.Fatalf("Failed to decode line %q: %v", scanner.Text(), err)
		}
		out = append(out, r)
	}
	if err := scanner.Err(); err != nil {
		t.Fatalf("Failed to read: %v", err)
	}
	return out
}

func TestJournal_Append(t *testing.T) {
	dir := t.TempDir()
	j := Open(dir)
	j.w.now = func() time.Time { return time.Date(2026, 3, 1, 14, 5, 0, 0, time.UTC) }

	entries := []engine.LogEntry{
		{ID: "a", Seq: 1, Message: "Ann rolled a 4", Type: engine.LogInfo},
		{ID: "b", Seq: 2, Message: "Ann bought Alpha", Type: engine.LogSuccess},
	}
	if err := j.Append("ab12", entries); err != nil {
		t.Fatalf("Failed to append: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	records := readRecords(t, filepath.Join(dir, "events-2026-03-01-14.jsonl.zst"))
	if len(records) != 2 {
		t.Fatalf("Expected 2 records, got %d", len(records))
	}
	if records[1].SessionID != "ab12" || records[1].Entry.Message != "Ann bought Alpha" {
		t.Errorf("Unexpected record %+v", records[1])
	}
}

func TestWriter_RotatesHourly(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(dir, "events")
	now := time.Date(2026, 3, 1, 14, 59, 0, 0, time.UTC)
	w.now = func() time.Time { return now }

	if err := w.Write(map[string]int{"n": 1}); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if err := w.Write(map[string]int{"n": 2}); err != nil {
		t.Fatalf("Failed to write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}

	files, err := filepath.Glob(filepath.Join(dir, "events-*.jsonl.zst"))
	if err != nil {
		t.Fatalf("Failed to glob: %v", err)
	}
	if len(files) != 2 {
		t.Errorf("Expected 2 hourly files, got %v", files)
	}
}
