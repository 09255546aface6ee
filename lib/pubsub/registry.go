package pubsub

import (
	"sort"
	"sync/atomic"

	"github.com/VictoriaMetrics/metrics"
	"github.com/puzpuzpuz/xsync/v3"
)

var (
	subscribeTotal   = metrics.NewCounter("dodo_pubsub_subscribe_total")
	unsubscribeTotal = metrics.NewCounter("dodo_pubsub_unsubscribe_total")
)

// Subscription registers a webhook callback for an exact key.
type Subscription struct {
	ID       uint64 `json:"id"`
	Key      string `json:"key"`
	Callback string `json:"callback"`
}

// Registry holds the active subscriptions of a server.
// Subscriptions are kept in memory only and are lost on restart.
//
// Thread-safety: All methods are safe for concurrent use. No lock is held while
// callers work with the returned subscriptions.
type Registry struct {
	subs   *xsync.MapOf[uint64, Subscription]
	nextID atomic.Uint64
}

// NewRegistry creates an empty registry. The first issued id is 1.
func NewRegistry() *Registry {
	return &Registry{
		subs: xsync.NewMapOf[uint64, Subscription](),
	}
}

// Subscribe registers callback for key and returns the new subscription id.
// Ids are strictly increasing and never reused. Identical (key, callback) pairs
// are not deduplicated.
func (r *Registry) Subscribe(key, callback string) uint64 {
	id := r.nextID.Add(1)
	r.subs.Store(id, Subscription{ID: id, Key: key, Callback: callback})
	subscribeTotal.Inc()
	Logger.Debugf("subscription %d registered for key %s -> %s", id, key, callback)
	return id
}

// Unsubscribe removes the subscription with the given id.
// It reports whether the subscription existed.
func (r *Registry) Unsubscribe(id uint64) bool {
	_, existed := r.subs.LoadAndDelete(id)
	if existed {
		unsubscribeTotal.Inc()
		Logger.Debugf("subscription %d removed", id)
	}
	return existed
}

// Match returns a copy of all subscriptions for exactly key.
func (r *Registry) Match(key string) []Subscription {
	var matches []Subscription
	r.subs.Range(func(_ uint64, sub Subscription) bool {
		if sub.Key == key {
			matches = append(matches, sub)
		}
		return true
	})
	return matches
}

// Count returns the number of active subscriptions.
func (r *Registry) Count() int {
	return r.subs.Size()
}

// List returns all active subscriptions ordered by id.
func (r *Registry) List() []Subscription {
	all := make([]Subscription, 0, r.subs.Size())
	r.subs.Range(func(_ uint64, sub Subscription) bool {
		all = append(all, sub)
		return true
	})
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	return all
}
