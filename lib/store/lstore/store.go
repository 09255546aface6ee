package lstore

import (
	"bytes"
	"encoding/json"
	"sort"

	"github.com/VictoriaMetrics/metrics"
	"github.com/dododb/dodo/lib/db"
	"github.com/dododb/dodo/lib/db/util"
	"github.com/dododb/dodo/lib/store"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("store")

var (
	setTotal    = metrics.NewCounter("dodo_kv_set_total")
	deleteTotal = metrics.NewCounter("dodo_kv_delete_total")
	clearTotal  = metrics.NewCounter("dodo_kv_clear_total")
)

type storeImpl struct {
	db       db.KVDB
	notifier store.INotifier
	clock    util.Clock
}

// NewLocalStore creates a new local store instance.
// This store implementation is not distributed and only works on a single node.
// notifier may be nil, in that case no notifications are sent.
// clock may be nil, in that case the wall clock is used.
func NewLocalStore(database db.KVDB, notifier store.INotifier, clock util.Clock) store.IStore {
	if clock == nil {
		clock = util.NewRealClock()
	}
	return &storeImpl{
		db:       database,
		notifier: notifier,
		clock:    clock,
	}
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Set(key string, value json.RawMessage) error {
	// store the compact encoding, this also validates the value
	var buf bytes.Buffer
	if err := json.Compact(&buf, value); err != nil {
		return store.NewError(store.RetCInvalidValue, err.Error())
	}
	encoded := buf.String()

	old, loaded := s.db.Swap(key, db.Entry{
		Value:     encoded,
		CreatedAt: s.clock.Now().Unix(),
	})
	setTotal.Inc()

	// the write lock is released at this point
	if s.notifier != nil {
		var oldValue json.RawMessage
		if loaded && json.Valid([]byte(old.Value)) {
			oldValue = json.RawMessage(old.Value)
		}
		s.notifier.Notify(key, oldValue, json.RawMessage(encoded))
	}
	return nil
}

func (s *storeImpl) Get(key string) (json.RawMessage, error) {
	entry, ok := s.db.Get(key)
	if !ok {
		return nil, store.NewError(store.RetCNotFound, "key not found")
	}
	if !json.Valid([]byte(entry.Value)) {
		return nil, store.NewError(store.RetCDecodeError, "stored value of key "+key+" is not valid json")
	}
	return json.RawMessage(entry.Value), nil
}

func (s *storeImpl) Delete(key string) error {
	if s.db.Delete(key) {
		deleteTotal.Inc()
	}
	return nil
}

func (s *storeImpl) List() ([]string, error) {
	keys := s.db.Keys()
	sort.Strings(keys)
	return keys, nil
}

func (s *storeImpl) GetAll() (map[string]json.RawMessage, error) {
	entries := s.db.Snapshot()

	out := make(map[string]json.RawMessage, len(entries))
	for k, e := range entries {
		if !json.Valid([]byte(e.Value)) {
			Logger.Debugf("skipping undecodable value of key %s", k)
			continue
		}
		out[k] = json.RawMessage(e.Value)
	}
	return out, nil
}

func (s *storeImpl) Exists(key string) (bool, error) {
	return s.db.Has(key), nil
}

func (s *storeImpl) Clear() error {
	s.db.Clear()
	clearTotal.Inc()
	return nil
}

func (s *storeImpl) Count() (int, error) {
	return s.db.Len(), nil
}
