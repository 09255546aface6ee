package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dododb/dodo/lib/db"
	"github.com/dododb/dodo/lib/db/engines/rwmap"
	"github.com/dododb/dodo/lib/db/util"
	"github.com/dododb/dodo/lib/store"
	"github.com/dododb/dodo/lib/store/lstore"
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func newTestManager(start int64) (*Manager, db.KVDB, *util.ManualClock) {
	database := rwmap.NewRWMapDB()
	clock := util.NewManualClock(time.Unix(start, 0))
	return NewManager(database, clock), database, clock
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}

// --------------------------------------------------------------------------
// Load & Save
// --------------------------------------------------------------------------

func TestSnapshotFidelity(t *testing.T) {
	m, database, _ := newTestManager(1000)
	database.Swap("a", db.Entry{Value: `{"x":1}`, CreatedAt: 10})
	database.Swap("b", db.Entry{Value: `"text"`, CreatedAt: 20})
	database.Swap("c", db.Entry{Value: `not json`, CreatedAt: 30})

	path := filepath.Join(t.TempDir(), "nested", "snapshot.json")
	if err := m.SaveSnapshot(path); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Temporary file was left behind")
	}

	restored, restoredDB, _ := newTestManager(1000)
	n, err := restored.LoadSnapshot(path, nil)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if n != 3 {
		t.Fatalf("Expected 3 entries, got %d", n)
	}

	want := database.Snapshot()
	got := restoredDB.Snapshot()
	for k, e := range want {
		if got[k] != e {
			t.Errorf("Entry %s differs: want %+v, got %+v", k, e, got[k])
		}
	}
}

func TestSaveFormat(t *testing.T) {
	m, database, _ := newTestManager(0)
	database.Swap("b", db.Entry{Value: `1`, CreatedAt: 5})
	database.Swap("a", db.Entry{Value: `2`, CreatedAt: 6})

	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := m.SaveSnapshot(path); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	data, _ := os.ReadFile(path)
	want := "{\n  \"a\": {\n    \"value\": \"2\",\n    \"created_at\": 6\n  },\n  \"b\": {\n    \"value\": \"1\",\n    \"created_at\": 5\n  }\n}"
	if string(data) != want {
		t.Errorf("Unexpected snapshot content:\n%s", data)
	}
}

func TestLoadMissingFile(t *testing.T) {
	m, database, _ := newTestManager(0)
	database.Swap("keep", db.Entry{Value: `1`})

	n, err := m.LoadSnapshot(filepath.Join(t.TempDir(), "missing.json"), nil)
	if err != nil || n != 0 {
		t.Fatalf("Expected (0, nil), got (%d, %v)", n, err)
	}
	if !database.Has("keep") {
		t.Error("Missing snapshot must not clear the database")
	}
}

func TestLoadMalformedFile(t *testing.T) {
	for name, content := range map[string]string{
		"invalid": `{"a": `,
		"array":   `[1, 2]`,
		"string":  `"text"`,
		"null":    `null`,
		"empty":   ``,
	} {
		t.Run(name, func(t *testing.T) {
			m, database, _ := newTestManager(0)
			database.Swap("keep", db.Entry{Value: `1`})

			_, err := m.LoadSnapshot(writeFile(t, content), nil)
			if !errors.Is(err, ErrSnapshotParse) {
				t.Fatalf("Expected ErrSnapshotParse, got %v", err)
			}
			if database.Len() != 1 || !database.Has("keep") {
				t.Error("Database must be left untouched")
			}
		})
	}
}

func TestLoadUnreadableFile(t *testing.T) {
	m, _, _ := newTestManager(0)

	// a directory can be opened but not read as a file
	_, err := m.LoadSnapshot(t.TempDir(), nil)
	if !errors.Is(err, ErrSnapshotIO) {
		t.Fatalf("Expected ErrSnapshotIO, got %v", err)
	}
}

func TestLoadRecordFormats(t *testing.T) {
	m, database, _ := newTestManager(500)

	path := writeFile(t, `{
		"current": {"value": "{\"a\":1}", "created_at": 400},
		"legacy": "\"old\"",
		"no_ts": {"value": "1"},
		"bad_ts": {"value": "2", "created_at": "yesterday"},
		"null_ts": {"value": "3", "created_at": null},
		"bad_value": {"value": 3, "created_at": 400},
		"number": 42,
		"list": [1]
	}`)

	n, err := m.LoadSnapshot(path, nil)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Expected 5 entries, got %d", n)
	}

	if e, _ := database.Get("current"); e.CreatedAt != 400 || e.Value != `{"a":1}` {
		t.Errorf("Unexpected current entry %+v", e)
	}
	if e, _ := database.Get("legacy"); e.CreatedAt != 500 || e.Value != `"old"` {
		t.Errorf("Unexpected legacy entry %+v", e)
	}
	if e, _ := database.Get("no_ts"); e.CreatedAt != 500 {
		t.Errorf("Expected load time for missing created_at, got %d", e.CreatedAt)
	}
	if e, _ := database.Get("bad_ts"); e.CreatedAt != 500 {
		t.Errorf("Expected load time for invalid created_at, got %d", e.CreatedAt)
	}
	if e, _ := database.Get("null_ts"); e.CreatedAt != 500 {
		t.Errorf("Expected load time for null created_at, got %d", e.CreatedAt)
	}
	for _, k := range []string{"bad_value", "number", "list"} {
		if database.Has(k) {
			t.Errorf("Malformed record %s must be skipped", k)
		}
	}
}

func TestLoadReplacesContent(t *testing.T) {
	m, database, _ := newTestManager(0)
	database.Swap("stale", db.Entry{Value: `1`})

	if _, err := m.LoadSnapshot(writeFile(t, `{"fresh": {"value": "2", "created_at": 0}}`), nil); err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if database.Has("stale") || !database.Has("fresh") {
		t.Errorf("Expected content to be replaced, got %v", database.Keys())
	}
}

func TestLoadRetentionBoundary(t *testing.T) {
	m, database, _ := newTestManager(1000)

	path := writeFile(t, `{
		"older": {"value": "1", "created_at": 939},
		"boundary": {"value": "2", "created_at": 940},
		"newer": {"value": "3", "created_at": 941},
		"legacy": "4"
	}`)

	n, err := m.LoadSnapshot(path, durationPtr(60*time.Second))
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if n != 3 {
		t.Errorf("Expected 3 entries, got %d", n)
	}
	if database.Has("older") {
		t.Error("Entry older than the retention must be dropped")
	}
	for _, k := range []string{"boundary", "newer", "legacy"} {
		if !database.Has(k) {
			t.Errorf("Entry %s must be kept", k)
		}
	}
}

func TestSaveFailureKeepsOldSnapshot(t *testing.T) {
	m, database, _ := newTestManager(0)
	dir := t.TempDir()
	path := filepath.Join(dir, "snapshot.json")

	database.Swap("a", db.Entry{Value: `1`})
	if err := m.SaveSnapshot(path); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	// a directory in place of the temporary file makes the next write fail
	if err := os.Mkdir(path+".tmp", 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	database.Swap("b", db.Entry{Value: `2`})
	if err := m.SaveSnapshot(path); err == nil {
		t.Fatal("Expected SaveSnapshot to fail")
	}

	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), `"b"`) {
		t.Error("Failed save must not modify the existing snapshot")
	}
}

// --------------------------------------------------------------------------
// Purge & Loops
// --------------------------------------------------------------------------

func TestPurgeExpired(t *testing.T) {
	m, database, _ := newTestManager(100)
	database.Swap("old", db.Entry{Value: `1`, CreatedAt: 39})
	database.Swap("edge", db.Entry{Value: `2`, CreatedAt: 40})
	database.Swap("new", db.Entry{Value: `3`, CreatedAt: 100})

	if removed := m.PurgeExpired(60 * time.Second); removed != 1 {
		t.Errorf("Expected 1 removed entry, got %d", removed)
	}
	if database.Has("old") || !database.Has("edge") || !database.Has("new") {
		t.Errorf("Unexpected keys after purge: %v", database.Keys())
	}
}

func TestPurgeZeroRetention(t *testing.T) {
	m, database, _ := newTestManager(100)
	database.Swap("a", db.Entry{Value: `1`, CreatedAt: 50})
	database.Swap("b", db.Entry{Value: `2`, CreatedAt: 100})

	if removed := m.PurgeExpired(0); removed != 2 {
		t.Errorf("Expected every entry to be removed, got %d", removed)
	}
	if database.Len() != 0 {
		t.Errorf("Expected empty database, got %v", database.Keys())
	}
}

func TestCleanupLoopScenario(t *testing.T) {
	database := rwmap.NewRWMapDB()
	clock := util.NewManualClock(time.Unix(0, 0))
	m := NewManager(database, clock)
	kv := lstore.NewLocalStore(database, nil, clock)

	if err := kv.Set("k", json.RawMessage(`"a"`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.CleanupLoop(ctx, 60*time.Second, 10*time.Second)
		close(done)
	}()
	if !clock.WaitForTickers(1, time.Second) {
		t.Fatal("Cleanup loop did not start")
	}

	// ticks up to t=60 keep the key (age <= retention)
	for i := 0; i < 6; i++ {
		clock.Advance(10 * time.Second)
	}
	if _, err := kv.Get("k"); err != nil {
		t.Fatalf("Expected key to exist at t=60, got %v", err)
	}

	clock.Advance(10 * time.Second)
	waitFor(t, func() bool {
		_, err := kv.Get("k")
		return store.IsNotFound(err)
	})

	cancel()
	<-done
	if clock.Tickers() != 0 {
		t.Error("Cleanup loop did not stop its ticker")
	}
}

func TestAutosaveLoop(t *testing.T) {
	m, database, clock := newTestManager(0)
	path := filepath.Join(t.TempDir(), "snapshot.json")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.AutosaveLoop(ctx, path, 5*time.Second)
		close(done)
	}()
	if !clock.WaitForTickers(1, time.Second) {
		t.Fatal("Autosave loop did not start")
	}

	database.Swap("a", db.Entry{Value: `1`, CreatedAt: 0})
	clock.Advance(5 * time.Second)

	waitFor(t, func() bool {
		data, err := os.ReadFile(path)
		return err == nil && strings.Contains(string(data), `"a"`)
	})

	cancel()
	<-done
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}
