// Package lstore implements the local, in-memory key-value store based on the
// store.IStore interface. It is a thin layer on top of a db.KVDB that adds
// everything the database itself does not know about: JSON validation, timestamps
// and change notifications.
//
// Key Features:
//   - Values are validated and stored in their compact JSON encoding
//   - Every write is stamped with the current time of the injected util.Clock
//   - The previous value of a key is captured atomically with the write
//   - Subscribers are notified through a store.INotifier after the lock is released
//
// Implementation Details:
//
//   - Old value capture: Set uses db.KVDB.Swap, so reading the prior entry and writing
//     the new one happen in a single critical section. Two concurrent writers of the same
//     key can therefore never observe the same old value.
//
//   - Notifications: The notifier is called on the caller's goroutine once Swap returned.
//     It is expected to hand the work off (the pubsub.Dispatcher spawns one goroutine per
//     delivery), so a slow webhook receiver never delays a write.
//
// Usage Example:
//
//	database := rwmap.NewRWMapDB()
//	dispatcher := pubsub.NewDispatcher(registry, transport, timeout, nil)
//	kv := lstore.NewLocalStore(database, dispatcher, nil)
//
//	err := kv.Set("user:1", json.RawMessage(`{"name":"alice"}`))
//	value, err := kv.Get("user:1")
//
// Persistence is not part of this package. The persistence.Manager works on the same
// db.KVDB instance and loads, saves and purges entries without going through the store,
// so none of these operations trigger notifications.
package lstore
