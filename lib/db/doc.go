// Package db provides the interface for the in-memory map that backs a dodo store.
// It defines the KVDB interface and the Entry type shared by all layers above it.
//
// The package focuses on:
//   - A minimal, lock-guarded map abstraction (the "Store")
//   - Whole-store operations used by the persistence layer (Snapshot, Replace, RemoveIf)
//   - Metadata reporting through DatabaseInfo
//
// Key Components:
//
//   - KVDB Interface: Every implementation guards its content with one coarse-grained
//     reader/writer lock. Write operations (Swap, Delete, Clear, Replace, RemoveIf)
//     take the write lock, query operations (Get, Has, Keys, Snapshot, Len) the read
//     lock. No operation performs I/O while holding the lock.
//
//   - Entry: The stored value (an opaque, JSON encoded string) plus the unix timestamp
//     in seconds of the last write. Reads never modify an entry.
//
// Note on Time:
//   - The database does not know about time. CreatedAt is supplied by the caller
//     (the store layer stamps it on every write) and age computations are done by
//     the persistence layer with its own clock. This keeps every critical section
//     free of clock reads and makes the database trivially testable.
//
// Related Packages:
//
// The engines/rwmap package (github.com/dododb/dodo/lib/db/engines/rwmap) provides the
// implementation of the KVDB interface based on a plain map and a reader-biased mutex.
//
// The testing package (github.com/dododb/dodo/lib/db/testing) provides
// standardized tests and benchmarks for implementations of the db.KVDB interface.
//   - RunKVDBTests: Runs a standardized test suite to validate implementations
//   - RunKVDBBenchmarks: Provides performance benchmarks for comparing implementations
package db
