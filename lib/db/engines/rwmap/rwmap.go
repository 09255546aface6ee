package rwmap

import (
	"github.com/dododb/dodo/lib/db"
	"github.com/puzpuzpuz/xsync/v3"
)

// --------------------------------------------------------------------------
// Core database structure
// --------------------------------------------------------------------------

// rwMapImpl implements db.KVDB with a single map and one reader/writer lock
type rwMapImpl struct {
	mu   *xsync.RBMutex
	data map[string]db.Entry
}

// NewRWMapDB creates a new, empty database
func NewRWMapDB() db.KVDB {
	return &rwMapImpl{
		mu:   xsync.NewRBMutex(),
		data: make(map[string]db.Entry),
	}
}

// --------------------------------------------------------------------------
// KVDB Interface Methods - Write Operations
// --------------------------------------------------------------------------

// Swap stores the entry and returns the previous one.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *rwMapImpl) Swap(key string, entry db.Entry) (db.Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, loaded := m.data[key]
	m.data[key] = entry
	return old, loaded
}

// Delete removes the entry for the key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *rwMapImpl) Delete(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.data[key]
	delete(m.data, key)
	return ok
}

// Clear removes all entries.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *rwMapImpl) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()

	clear(m.data)
}

// Replace swaps the whole content of the database.
// The new map is built before the lock is taken, so the critical section
// only consists of a pointer assignment.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *rwMapImpl) Replace(entries map[string]db.Entry) {
	data := make(map[string]db.Entry, len(entries))
	for k, v := range entries {
		data[k] = v
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.data = data
}

// RemoveIf deletes all entries matching fn.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *rwMapImpl) RemoveIf(fn func(key string, entry db.Entry) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for k, e := range m.data {
		if fn(k, e) {
			delete(m.data, k)
			removed++
		}
	}
	return removed
}

// --------------------------------------------------------------------------
// KVDB Interface Methods - Read Operations
// --------------------------------------------------------------------------

// Get returns the entry for the key.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *rwMapImpl) Get(key string) (db.Entry, bool) {
	t := m.mu.RLock()
	defer m.mu.RUnlock(t)

	e, ok := m.data[key]
	return e, ok
}

// Has checks if a key exists.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *rwMapImpl) Has(key string) bool {
	t := m.mu.RLock()
	defer m.mu.RUnlock(t)

	_, ok := m.data[key]
	return ok
}

// Keys returns all keys.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *rwMapImpl) Keys() []string {
	t := m.mu.RLock()
	defer m.mu.RUnlock(t)

	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	return keys
}

// Snapshot copies all entries.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *rwMapImpl) Snapshot() map[string]db.Entry {
	t := m.mu.RLock()
	defer m.mu.RUnlock(t)

	out := make(map[string]db.Entry, len(m.data))
	for k, v := range m.data {
		out[k] = v
	}
	return out
}

// Len returns the number of entries.
//
// Thread-safety: This method is thread-safe and can be called concurrently.
func (m *rwMapImpl) Len() int {
	t := m.mu.RLock()
	defer m.mu.RUnlock(t)

	return len(m.data)
}

// --------------------------------------------------------------------------
// KVDB Interface Methods - Metadata
// --------------------------------------------------------------------------

// GetInfo returns statistics about the database
func (m *rwMapImpl) GetInfo() db.DatabaseInfo {
	t := m.mu.RLock()
	n := len(m.data)
	valueBytes := 0
	oldest := int64(0)
	for _, e := range m.data {
		valueBytes += len(e.Value)
		if oldest == 0 || e.CreatedAt < oldest {
			oldest = e.CreatedAt
		}
	}
	m.mu.RUnlock(t)

	meta := &struct {
		ValueBytes      int   `json:"value_bytes"`
		OldestCreatedAt int64 `json:"oldest_created_at"`
	}{
		ValueBytes:      valueBytes,
		OldestCreatedAt: oldest,
	}

	return db.DatabaseInfo{
		Entries:  n,
		DbType:   db.ImplRWMap,
		Metadata: meta,
	}
}

// Close drops all entries
func (m *rwMapImpl) Close() error {
	m.Clear()
	return nil
}
