package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/theirongolddev/orgburn/internal/store"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func bucketExport(start int64, userID string, cost float64) string {
	return fmt.Sprintf(`{"data":[{"start_time":%d,"end_time":%d,"results":[{"user_id":%q,"project_id":"p1","amount":{"value":%g}}]}]}`,
		start, start+3600, userID, cost)
}

func TestLoad_DirectoryInOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.json", bucketExport(1736078400, "u2", 2))
	writeFile(t, dir, "a.json", bucketExport(1736078400, "u1", 1))
	writeFile(t, dir, "empty.json", `{"object":"page"}`)
	writeFile(t, dir, "broken.json", `{"data":`)

	var calls atomic.Int64
	result, err := Load([]string{dir}, time.UTC, func(current, total int) {
		calls.Add(1)
		if total != 4 {
			t.Errorf("progress total = %d, want 4", total)
		}
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.TotalFiles != 4 || result.ParsedFiles != 3 || result.FileErrors != 1 || result.EmptyFiles != 1 {
		t.Errorf("result = %+v", result)
	}
	if len(result.Errors) != 1 {
		t.Errorf("len(Errors) = %d, want 1", len(result.Errors))
	}
	if calls.Load() != 4 {
		t.Errorf("progress calls = %d, want 4", calls.Load())
	}
	if len(result.Records) != 2 || result.Records[0].UserID != "u1" || result.Records[1].UserID != "u2" {
		t.Errorf("records = %+v, want u1 then u2", result.Records)
	}
}

func TestLoad_DedupesPaths(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "jan.json", bucketExport(1736078400, "u1", 1))

	result, err := Load([]string{path, dir}, time.UTC, nil)
	if err != nil {
		t.Fatal(err)
	}
	if result.TotalFiles != 1 || len(result.Records) != 1 {
		t.Errorf("result = %+v, want one file and one record", result)
	}
}

func TestLoad_MissingPath(t *testing.T) {
	if _, err := Load([]string{filepath.Join(t.TempDir(), "nope")}, time.UTC, nil); err == nil {
		t.Error("expected error for missing path")
	}
}

func TestLoadWithCache(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.json", bucketExport(1736078400, "u1", 1))
	bPath := writeFile(t, dir, "b.json", bucketExport(1736078400, "u2", 2))

	cache, err := store.Open(filepath.Join(t.TempDir(), "records.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = cache.Close() }()

	first, err := LoadWithCache([]string{dir}, time.UTC, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheHits != 0 || first.Reparsed != 2 || len(first.Records) != 2 {
		t.Errorf("first = hits %d reparsed %d records %d", first.CacheHits, first.Reparsed, len(first.Records))
	}

	second, err := LoadWithCache([]string{dir}, time.UTC, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if second.CacheHits != 2 || second.Reparsed != 0 {
		t.Errorf("second = hits %d reparsed %d, want 2 and 0", second.CacheHits, second.Reparsed)
	}
	if len(second.Records) != 2 || second.Records[0].UserID != "u1" || second.Records[1].Cost() != 2 {
		t.Errorf("cached records = %+v", second.Records)
	}
	if second.Records[0].Date != "2025-01-05" {
		t.Errorf("cached Date = %q, want 2025-01-05", second.Records[0].Date)
	}

	// Rewriting b with a different size forces a reparse of b only.
	writeFile(t, dir, filepath.Base(bPath), bucketExport(1736078400, "u3", 12.75))
	third, err := LoadWithCache([]string{dir}, time.UTC, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheHits != 1 || third.Reparsed != 1 {
		t.Errorf("third = hits %d reparsed %d, want 1 and 1", third.CacheHits, third.Reparsed)
	}
	if third.Records[1].UserID != "u3" {
		t.Errorf("records[1].UserID = %q, want u3", third.Records[1].UserID)
	}

	// A different zone invalidates every entry.
	fixed := time.FixedZone("UTC+3", 3*3600)
	fourth, err := LoadWithCache([]string{dir}, fixed, cache, nil)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheHits != 0 || fourth.Reparsed != 2 {
		t.Errorf("fourth = hits %d reparsed %d, want 0 and 2", fourth.CacheHits, fourth.Reparsed)
	}
}
