package db

// --------------------------------------------------------------------------
// Helper Types
// --------------------------------------------------------------------------

type Implementation string

const (
	ImplRWMap Implementation = "rwmap"
)

// Entry is a single stored value together with the time it was last set.
//
// Value holds the compact JSON encoding of the payload. The database never
// interprets it, decoding is left to the store layer.
// CreatedAt is the unix timestamp (seconds) of the last write of the key.
type Entry struct {
	Value     string `json:"value"`
	CreatedAt int64  `json:"created_at"`
}

// Age returns the age of the entry in seconds relative to now (unix seconds).
func (e Entry) Age(now int64) int64 {
	return now - e.CreatedAt
}

type DatabaseInfo struct {
	Entries  int            `json:"entries"`
	DbType   Implementation `json:"db_type"`
	Metadata interface{}    `json:"metadata"`
}

// --------------------------------------------------------------------------
// Database Interface
// --------------------------------------------------------------------------

// KVDB defines the interface for the in-memory key-value map backing a store.
// Implementations guard the whole map with a single reader/writer lock:
// any number of readers may proceed together, a writer excludes everybody else.
// No method performs I/O or blocks on anything but the lock itself.
type KVDB interface {

	// --------------------------------------------------------------------------
	// Write Operations
	// --------------------------------------------------------------------------

	// Swap stores the entry for the key and returns the entry it replaced.
	// The read of the prior entry and the write happen in one critical section.
	Swap(key string, entry Entry) (old Entry, loaded bool)

	// Delete removes the entry for the key. It reports whether the key existed.
	Delete(key string) (deleted bool)

	// Clear removes every entry.
	Clear()

	// Replace clears the database and inserts all given entries in one critical
	// section. Readers observe either the old or the new content, never a mix.
	Replace(entries map[string]Entry)

	// RemoveIf removes every entry for which fn returns true in one critical
	// section and returns the number of removed entries.
	// fn is called while the write lock is held and must not block.
	RemoveIf(fn func(key string, entry Entry) bool) (removed int)

	// --------------------------------------------------------------------------
	// Query Operations
	// --------------------------------------------------------------------------

	// Get returns the entry for an exact key.
	Get(key string) (entry Entry, loaded bool)

	// Has checks whether a key exists.
	Has(key string) (loaded bool)

	// Keys returns all keys in no particular order.
	Keys() (keys []string)

	// Snapshot returns a copy of all entries. The copy is taken under the read
	// lock, so the caller is free to do I/O with it afterwards.
	Snapshot() (entries map[string]Entry)

	// Len returns the number of entries.
	Len() (n int)

	// GetInfo returns information about the database.
	GetInfo() (info DatabaseInfo)

	// Close releases the resources of the database.
	Close() (err error)
}
