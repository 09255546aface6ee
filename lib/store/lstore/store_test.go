package lstore

import (
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/dododb/dodo/lib/db"
	"github.com/dododb/dodo/lib/db/engines/rwmap"
	"github.com/dododb/dodo/lib/db/util"
	"github.com/dododb/dodo/lib/store"
)

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

type notification struct {
	key      string
	oldValue json.RawMessage
	newValue json.RawMessage
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []notification
}

func (r *recordingNotifier) Notify(key string, oldValue, newValue json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, notification{key: key, oldValue: oldValue, newValue: newValue})
}

func (r *recordingNotifier) all() []notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notification(nil), r.calls...)
}

func newTestStore() (store.IStore, db.KVDB, *recordingNotifier, *util.ManualClock) {
	database := rwmap.NewRWMapDB()
	notifier := &recordingNotifier{}
	clock := util.NewManualClock(time.Unix(1000, 0))
	return NewLocalStore(database, notifier, clock), database, notifier, clock
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestSetGet(t *testing.T) {
	s, database, _, _ := newTestStore()

	if err := s.Set("k", json.RawMessage(`{ "a" : [1, 2,3] }`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, err := s.Get("k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(value) != `{"a":[1,2,3]}` {
		t.Errorf("Expected compact value, got %s", value)
	}

	entry, ok := database.Get("k")
	if !ok {
		t.Fatal("Expected entry in database")
	}
	if entry.CreatedAt != 1000 {
		t.Errorf("Expected created_at 1000, got %d", entry.CreatedAt)
	}
}

func TestSetInvalidJSON(t *testing.T) {
	s, _, notifier, _ := newTestStore()

	err := s.Set("k", json.RawMessage(`{not json`))
	if store.CodeOf(err) != store.RetCInvalidValue {
		t.Fatalf("Expected InvalidValue, got %v", err)
	}
	if ok, _ := s.Exists("k"); ok {
		t.Error("Invalid value must not be stored")
	}
	if len(notifier.all()) != 0 {
		t.Error("Invalid value must not trigger a notification")
	}
}

func TestGetMissing(t *testing.T) {
	s, _, _, _ := newTestStore()

	_, err := s.Get("missing")
	if !store.IsNotFound(err) {
		t.Fatalf("Expected NotFound, got %v", err)
	}
}

func TestDelete(t *testing.T) {
	s, _, _, _ := newTestStore()

	_ = s.Set("k", json.RawMessage(`1`))
	if err := s.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := s.Get("k"); !store.IsNotFound(err) {
		t.Errorf("Expected NotFound after delete, got %v", err)
	}

	// deleting a missing key is not an error
	if err := s.Delete("k"); err != nil {
		t.Errorf("Delete of missing key failed: %v", err)
	}
}

func TestUpdateNotifiesOldValue(t *testing.T) {
	s, database, notifier, clock := newTestStore()

	_ = s.Set("k", json.RawMessage(`"v1"`))
	clock.Advance(5 * time.Second)
	_ = s.Set("k", json.RawMessage(`"v2"`))

	calls := notifier.all()
	if len(calls) != 2 {
		t.Fatalf("Expected 2 notifications, got %d", len(calls))
	}
	if calls[0].oldValue != nil {
		t.Errorf("Expected nil old value for first set, got %s", calls[0].oldValue)
	}
	if string(calls[1].oldValue) != `"v1"` || string(calls[1].newValue) != `"v2"` {
		t.Errorf("Unexpected second notification: old=%s new=%s", calls[1].oldValue, calls[1].newValue)
	}

	entry, _ := database.Get("k")
	if entry.CreatedAt != 1005 {
		t.Errorf("Expected created_at to be refreshed to 1005, got %d", entry.CreatedAt)
	}
}

func TestUndecodableValue(t *testing.T) {
	s, database, notifier, _ := newTestStore()

	// legacy snapshots may contain payloads that are not valid json
	database.Swap("legacy", db.Entry{Value: "not json", CreatedAt: 1})
	_ = s.Set("ok", json.RawMessage(`true`))

	if _, err := s.Get("legacy"); store.CodeOf(err) != store.RetCDecodeError {
		t.Errorf("Expected DecodeError, got %v", err)
	}

	all, err := s.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if _, ok := all["legacy"]; ok {
		t.Error("GetAll must omit undecodable values")
	}
	if string(all["ok"]) != "true" {
		t.Errorf("Expected ok=true, got %s", all["ok"])
	}

	keys, _ := s.List()
	if len(keys) != 2 {
		t.Errorf("List must still report undecodable keys, got %v", keys)
	}

	// overwriting an undecodable value reports a nil old value
	_ = s.Set("legacy", json.RawMessage(`1`))
	calls := notifier.all()
	if last := calls[len(calls)-1]; last.oldValue != nil {
		t.Errorf("Expected nil old value, got %s", last.oldValue)
	}
}

func TestListCountClear(t *testing.T) {
	s, _, _, _ := newTestStore()

	for _, k := range []string{"c", "a", "b"} {
		_ = s.Set(k, json.RawMessage(`null`))
	}

	keys, _ := s.List()
	if fmt.Sprint(keys) != "[a b c]" {
		t.Errorf("Expected sorted keys, got %v", keys)
	}
	if n, _ := s.Count(); n != 3 {
		t.Errorf("Expected count 3, got %d", n)
	}

	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if n, _ := s.Count(); n != 0 {
		t.Errorf("Expected count 0 after clear, got %d", n)
	}
}

func TestNilNotifier(t *testing.T) {
	s := NewLocalStore(rwmap.NewRWMapDB(), nil, nil)
	if err := s.Set("k", json.RawMessage(`1`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
}

func TestConcurrentSetsSeeDistinctOldValues(t *testing.T) {
	s, _, notifier, _ := newTestStore()

	const writers = 50
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Set("shared", json.RawMessage(fmt.Sprintf("%d", i)))
		}(i)
	}
	wg.Wait()

	// every write replaced exactly one prior value, so old values never repeat
	seen := make(map[string]bool)
	nilCount := 0
	for _, c := range notifier.all() {
		if c.oldValue == nil {
			nilCount++
			continue
		}
		if seen[string(c.oldValue)] {
			t.Fatalf("Old value %s observed twice", c.oldValue)
		}
		seen[string(c.oldValue)] = true
	}
	if nilCount != 1 {
		t.Errorf("Expected exactly one nil old value, got %d", nilCount)
	}
}
