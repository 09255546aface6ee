// Package rwmap implements the db.KVDB interface with a plain Go map guarded by
// a single reader-biased reader/writer mutex (xsync.RBMutex).
//
// The package focuses on:
//   - Strict consistency: one coarse-grained lock for the whole map, so aggregate
//     operations (Snapshot, Keys, Replace, RemoveIf, Clear) always see or produce a
//     consistent state
//   - Read heavy workloads: RBMutex makes concurrent readers scale across cores while
//     writers still exclude everybody else
//   - Short critical sections: every method only touches the map while holding the
//     lock, copies are handed out so callers can do I/O without holding it
//
// Key Components:
//
//   - rwMapImpl: The database structure implementing db.KVDB. Values are stored as
//     db.Entry structs (strings and integers), so copies handed out to callers never
//     alias memory held by the map.
//
// Usage:
//
//	database := rwmap.NewRWMapDB()
//	defer database.Close()
//
//	old, loaded := database.Swap("key", db.Entry{Value: `"v"`, CreatedAt: time.Now().Unix()})
//	entries := database.Snapshot()
//
// Thread Safety:
//
//	All methods are safe for concurrent use.
package rwmap
