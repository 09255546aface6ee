// Package store provides the high-level interface for key-value operations
// on schema-less JSON values together with a unified error type.
// It serves as the only layer allowed to mutate the underlying db.KVDB: it stamps
// every write with the current time, captures the previous value and triggers
// change notifications.
//
// The package focuses on:
//   - A unified interface (IStore) used by the HTTP API and the HTTP client alike
//   - Typed errors (Error with RetCode) instead of sentinel strings
//   - A notification hook (INotifier) invoked after every write
//
// Key Components:
//
//   - IStore Interface: The core abstraction defining operations for interacting with
//     the store (Set, Get, Delete, List, GetAll, Exists, Clear, Count). Values are passed
//     as json.RawMessage and stored in their compact encoding.
//
//   - Error System: A structured error reporting mechanism using typed error codes
//     (RetCNotFound, RetCDecodeError, RetCInvalidValue, ...). Use CodeOf or IsNotFound
//     to inspect an error, they work through wrapping.
//
//   - INotifier: Receives (key, old value, new value) after every Set. The store calls
//     it after the write lock has been released. Implementations must not block.
//
// Implementations:
//
//	- Local Store (lstore): The in-process implementation on top of a db.KVDB.
//	  Available in the "github.com/dododb/dodo/lib/store/lstore" package.
//
//	- RPC Store (client): An HTTP client implementing IStore against a running
//	  dodo server. Available in the "github.com/dododb/dodo/rpc/client" package.
//
// Note on decoding:
//
//	Get reports RetCDecodeError for a stored payload that is not valid JSON (this can
//	only happen for values loaded from legacy snapshots), while GetAll silently omits
//	such entries. Both behaviours are kept on purpose, callers relying on GetAll must
//	not assume it returns every key reported by List.
package store
