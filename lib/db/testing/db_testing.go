package testing

import (
	"fmt"
	"sort"
	"sync"
	"testing"

	"github.com/dododb/dodo/lib/db"
)

// DBFactory is a function that creates a new instance of a KVDB implementation
type DBFactory func() db.KVDB

// RunKVDBTests runs a comprehensive test suite for a KVDB implementation.
func RunKVDBTests(t *testing.T, name string, factory DBFactory) {
	t.Run(name, func(t *testing.T) {
		t.Run("Swap&Get", func(t *testing.T) {
			testSwapGet(t, factory())
		})

		t.Run("Delete", func(t *testing.T) {
			testDelete(t, factory())
		})

		t.Run("Has", func(t *testing.T) {
			testHas(t, factory())
		})

		t.Run("KeysAndLen", func(t *testing.T) {
			testKeysAndLen(t, factory())
		})

		t.Run("Clear", func(t *testing.T) {
			testClear(t, factory())
		})

		t.Run("Snapshot", func(t *testing.T) {
			testSnapshot(t, factory())
		})

		t.Run("Replace", func(t *testing.T) {
			testReplace(t, factory())
		})

		t.Run("RemoveIf", func(t *testing.T) {
			testRemoveIf(t, factory())
		})

		t.Run("ConcurrentWrites", func(t *testing.T) {
			testConcurrentWrites(t, factory())
		})

		t.Run("ConsistentReads", func(t *testing.T) {
			testConsistentReads(t, factory())
		})
	})
}

// --------------------------------------------------------------------------
// Test functions
// --------------------------------------------------------------------------

func testSwapGet(t *testing.T, database db.KVDB) {
	defer database.Close()

	testKey := "test-key"
	first := db.Entry{Value: `"test-value1"`, CreatedAt: 10}
	second := db.Entry{Value: `"test-value2"`, CreatedAt: 20}

	old, loaded := database.Swap(testKey, first)
	if loaded {
		t.Errorf("Expected no previous entry for %s, got %+v", testKey, old)
	}

	result, exists := database.Get(testKey)
	if !exists {
		t.Fatalf("Expected key %s to exist after Swap", testKey)
	}
	if result != first {
		t.Errorf("Expected entry %+v, got %+v", first, result)
	}

	old, loaded = database.Swap(testKey, second)
	if !loaded {
		t.Errorf("Expected previous entry for %s", testKey)
	}
	if old != first {
		t.Errorf("Expected previous entry %+v, got %+v", first, old)
	}

	result, _ = database.Get(testKey)
	if result != second {
		t.Errorf("Expected entry %+v, got %+v", second, result)
	}

	if _, exists = database.Get("nonexistent-key"); exists {
		t.Errorf("Expected nonexistent key to return exists=false")
	}
}

func testDelete(t *testing.T, database db.KVDB) {
	defer database.Close()

	testKey := "delete-test-key"
	database.Swap(testKey, db.Entry{Value: `1`, CreatedAt: 1})

	if !database.Delete(testKey) {
		t.Errorf("Expected Delete to report an existing key")
	}
	if _, exists := database.Get(testKey); exists {
		t.Errorf("Expected key %s to not exist after Delete", testKey)
	}

	// deleting twice is not an error
	if database.Delete(testKey) {
		t.Errorf("Expected second Delete to report a missing key")
	}
	if database.Delete("never-set") {
		t.Errorf("Expected Delete of unknown key to report a missing key")
	}
}

func testHas(t *testing.T, database db.KVDB) {
	defer database.Close()

	if database.Has("has-key") {
		t.Errorf("Expected Has to return false for a missing key")
	}

	database.Swap("has-key", db.Entry{Value: `true`, CreatedAt: 1})
	if !database.Has("has-key") {
		t.Errorf("Expected Has to return true after Swap")
	}

	database.Delete("has-key")
	if database.Has("has-key") {
		t.Errorf("Expected Has to return false after Delete")
	}
}

func testKeysAndLen(t *testing.T, database db.KVDB) {
	defer database.Close()

	if n := database.Len(); n != 0 {
		t.Errorf("Expected empty database, got %d entries", n)
	}
	if keys := database.Keys(); len(keys) != 0 {
		t.Errorf("Expected no keys, got %v", keys)
	}

	want := []string{"a", "b", "c"}
	for i, k := range want {
		database.Swap(k, db.Entry{Value: fmt.Sprintf("%d", i), CreatedAt: int64(i)})
	}
	// overwriting must not add a key
	database.Swap("a", db.Entry{Value: `9`, CreatedAt: 9})

	if n := database.Len(); n != len(want) {
		t.Errorf("Expected %d entries, got %d", len(want), n)
	}

	keys := database.Keys()
	sort.Strings(keys)
	if fmt.Sprint(keys) != fmt.Sprint(want) {
		t.Errorf("Expected keys %v, got %v", want, keys)
	}
}

func testClear(t *testing.T, database db.KVDB) {
	defer database.Close()

	for i := 0; i < 100; i++ {
		database.Swap(fmt.Sprintf("key-%d", i), db.Entry{Value: `0`, CreatedAt: 0})
	}

	database.Clear()

	if n := database.Len(); n != 0 {
		t.Errorf("Expected empty database after Clear, got %d entries", n)
	}
	if database.Has("key-1") {
		t.Errorf("Expected key-1 to be gone after Clear")
	}

	// the database must stay usable
	database.Swap("after", db.Entry{Value: `1`, CreatedAt: 1})
	if !database.Has("after") {
		t.Errorf("Expected database to accept writes after Clear")
	}
}

func testSnapshot(t *testing.T, database db.KVDB) {
	defer database.Close()

	database.Swap("k1", db.Entry{Value: `"v1"`, CreatedAt: 1})
	database.Swap("k2", db.Entry{Value: `"v2"`, CreatedAt: 2})

	snap := database.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Expected 2 entries in snapshot, got %d", len(snap))
	}
	if snap["k1"].Value != `"v1"` || snap["k1"].CreatedAt != 1 {
		t.Errorf("Unexpected snapshot entry for k1: %+v", snap["k1"])
	}

	// the snapshot is a copy
	snap["k3"] = db.Entry{Value: `"v3"`, CreatedAt: 3}
	delete(snap, "k1")

	if database.Has("k3") {
		t.Errorf("Modifying the snapshot must not add keys to the database")
	}
	if !database.Has("k1") {
		t.Errorf("Modifying the snapshot must not remove keys from the database")
	}

	// later writes do not show up in an old snapshot
	snap = database.Snapshot()
	database.Swap("k4", db.Entry{Value: `"v4"`, CreatedAt: 4})
	if _, ok := snap["k4"]; ok {
		t.Errorf("Snapshot must not observe later writes")
	}
}

func testReplace(t *testing.T, database db.KVDB) {
	defer database.Close()

	database.Swap("old", db.Entry{Value: `"old"`, CreatedAt: 1})

	entries := map[string]db.Entry{
		"new1": {Value: `"n1"`, CreatedAt: 5},
		"new2": {Value: `"n2"`, CreatedAt: 6},
	}
	database.Replace(entries)

	if database.Has("old") {
		t.Errorf("Expected Replace to drop previous content")
	}
	if n := database.Len(); n != 2 {
		t.Errorf("Expected 2 entries after Replace, got %d", n)
	}
	if e, _ := database.Get("new2"); e.CreatedAt != 6 {
		t.Errorf("Expected CreatedAt 6 for new2, got %d", e.CreatedAt)
	}

	// the argument is not retained
	entries["new3"] = db.Entry{Value: `"n3"`, CreatedAt: 7}
	if database.Has("new3") {
		t.Errorf("Replace must copy the given entries")
	}

	database.Replace(nil)
	if n := database.Len(); n != 0 {
		t.Errorf("Expected empty database after Replace(nil), got %d", n)
	}
	database.Swap("x", db.Entry{Value: `1`, CreatedAt: 1})
	if !database.Has("x") {
		t.Errorf("Expected database to accept writes after Replace(nil)")
	}
}

func testRemoveIf(t *testing.T, database db.KVDB) {
	defer database.Close()

	for i := 0; i < 10; i++ {
		database.Swap(fmt.Sprintf("key-%d", i), db.Entry{Value: `0`, CreatedAt: int64(i)})
	}

	removed := database.RemoveIf(func(_ string, e db.Entry) bool {
		return e.CreatedAt < 4
	})
	if removed != 4 {
		t.Errorf("Expected 4 removed entries, got %d", removed)
	}
	if n := database.Len(); n != 6 {
		t.Errorf("Expected 6 remaining entries, got %d", n)
	}
	if database.Has("key-0") || database.Has("key-3") {
		t.Errorf("Expected matching entries to be removed")
	}
	if !database.Has("key-4") {
		t.Errorf("Expected non matching entries to be kept")
	}

	if removed = database.RemoveIf(func(string, db.Entry) bool { return false }); removed != 0 {
		t.Errorf("Expected 0 removed entries, got %d", removed)
	}
}

func testConcurrentWrites(t *testing.T, database db.KVDB) {
	defer database.Close()

	numWorkers := 8
	keysPerWorker := 500

	var wg sync.WaitGroup
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func(workerId int) {
			defer wg.Done()
			for i := 0; i < keysPerWorker; i++ {
				key := fmt.Sprintf("w%d-k%d", workerId, i)
				database.Swap(key, db.Entry{Value: fmt.Sprintf(`"%s"`, key), CreatedAt: int64(i)})
			}
		}(w)
	}
	wg.Wait()

	if n := database.Len(); n != numWorkers*keysPerWorker {
		t.Fatalf("Lost writes: expected %d entries, got %d", numWorkers*keysPerWorker, n)
	}

	for w := 0; w < numWorkers; w++ {
		for i := 0; i < keysPerWorker; i++ {
			key := fmt.Sprintf("w%d-k%d", w, i)
			e, ok := database.Get(key)
			if !ok || e.Value != fmt.Sprintf(`"%s"`, key) {
				t.Errorf("Unexpected entry for %s: %+v (found=%v)", key, e, ok)
			}
		}
	}
}

// testConsistentReads checks that readers never observe a torn entry:
// every writer stores Value and CreatedAt derived from the same counter.
func testConsistentReads(t *testing.T, database db.KVDB) {
	defer database.Close()

	const key = "shared"
	database.Swap(key, db.Entry{Value: "0", CreatedAt: 0})

	stop := make(chan struct{})
	var wg sync.WaitGroup

	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := int64(1); ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				database.Swap(key, db.Entry{Value: fmt.Sprintf("%d", i), CreatedAt: i})
			}
		}()
	}

	var errs sync.Map
	var readers sync.WaitGroup
	for r := 0; r < 4; r++ {
		readers.Add(1)
		go func() {
			defer readers.Done()
			for i := 0; i < 2000; i++ {
				e, ok := database.Get(key)
				if !ok {
					errs.Store("missing", "key vanished during concurrent writes")
					continue
				}
				if e.Value != fmt.Sprintf("%d", e.CreatedAt) {
					errs.Store(e.Value, fmt.Sprintf("torn entry %+v", e))
				}
			}
		}()
	}

	readers.Wait()
	close(stop)
	wg.Wait()

	errs.Range(func(_, v any) bool {
		t.Errorf("Consistency error: %v", v)
		return true
	})
}
