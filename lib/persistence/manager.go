package persistence

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/dododb/dodo/lib/db"
	"github.com/dododb/dodo/lib/db/util"
	"github.com/lni/dragonboat/v4/logger"
)

var Logger = logger.GetLogger("persistence")

var (
	savesTotal        = metrics.NewCounter(`dodo_snapshot_saves_total{result="ok"}`)
	saveFailuresTotal = metrics.NewCounter(`dodo_snapshot_saves_total{result="error"}`)
	saveDuration      = metrics.NewSummary("dodo_snapshot_save_duration_seconds")
	purgedTotal       = metrics.NewCounter("dodo_expired_keys_purged_total")
)

// Manager moves the content of a db.KVDB to and from a snapshot file and
// removes expired entries.
//
// The manager works directly on the database and bypasses the store layer:
// loading, saving and purging never trigger notifications and never change
// the created_at of an entry.
//
// Thread-safety: All methods are safe for concurrent use. File I/O is always
// done after the database lock has been released.
type Manager struct {
	db    db.KVDB
	clock util.Clock
}

// NewManager creates a manager for database.
// clock may be nil, in that case the wall clock is used.
func NewManager(database db.KVDB, clock util.Clock) *Manager {
	if clock == nil {
		clock = util.NewRealClock()
	}
	return &Manager{
		db:    database,
		clock: clock,
	}
}

// ----- snapshot operations -----

// LoadSnapshot replaces the content of the database with the snapshot stored at path.
//
// A missing file is not an error: the database is left as is and 0 is returned.
// If the file can not be read (ErrSnapshotIO) or is not a JSON object (ErrSnapshotParse)
// the database is left untouched as well and the error is returned.
// If retention is not nil, entries older than retention are not loaded. An entry
// whose age equals the retention is kept.
func (m *Manager) LoadSnapshot(path string, retention *time.Duration) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			Logger.Infof("no snapshot found at %s, starting empty", path)
			return 0, nil
		}
		Logger.Warningf("failed to read snapshot %s: %v", path, err)
		return 0, fmt.Errorf("%w: %v", ErrSnapshotIO, err)
	}

	now := m.clock.Now().Unix()
	entries, skipped, err := decodeSnapshot(data, now)
	if err != nil {
		Logger.Warningf("ignoring snapshot %s: %v", path, err)
		return 0, err
	}
	if skipped > 0 {
		Logger.Debugf("skipped %d malformed records in snapshot %s", skipped, path)
	}

	if retention != nil {
		maxAge := int64(*retention / time.Second)
		expired := 0
		for key, entry := range entries {
			if entry.Age(now) > maxAge {
				delete(entries, key)
				expired++
			}
		}
		if expired > 0 {
			Logger.Infof("dropped %d expired entries from snapshot (retention %s)", expired, *retention)
		}
	}

	m.db.Replace(entries)
	Logger.Infof("loaded snapshot from %s: %d entries", path, len(entries))
	return len(entries), nil
}

// SaveSnapshot writes the current content of the database to path.
// On failure the previous snapshot file stays in place.
func (m *Manager) SaveSnapshot(path string) error {
	start := time.Now()
	entries := m.db.Snapshot()

	if err := writeSnapshot(path, entries); err != nil {
		saveFailuresTotal.Inc()
		Logger.Errorf("failed to save snapshot to %s: %v", path, err)
		return err
	}

	savesTotal.Inc()
	saveDuration.UpdateDuration(start)
	Logger.Debugf("snapshot saved to %s: %d entries", path, len(entries))
	return nil
}

// PurgeExpired removes every entry older than retention and returns the number of removed entries.
// A retention of 0 removes every entry, including entries written in the current second.
func (m *Manager) PurgeExpired(retention time.Duration) int {
	now := m.clock.Now().Unix()
	maxAge := int64(retention / time.Second)

	removed := m.db.RemoveIf(func(_ string, entry db.Entry) bool {
		return maxAge <= 0 || entry.Age(now) > maxAge
	})

	if removed > 0 {
		purgedTotal.Add(removed)
		Logger.Infof("cleanup removed %d expired keys (%d remaining)", removed, m.db.Len())
	}
	return removed
}

// ----- background loops -----

// AutosaveLoop saves the snapshot every interval until ctx is cancelled.
// A failed save is logged and retried on the next tick.
func (m *Manager) AutosaveLoop(ctx context.Context, path string, interval time.Duration) {
	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	Logger.Infof("autosave to %s every %s", path, interval)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			_ = m.SaveSnapshot(path)
		}
	}
}

// CleanupLoop purges expired entries every interval until ctx is cancelled.
func (m *Manager) CleanupLoop(ctx context.Context, retention, interval time.Duration) {
	if retention == 0 {
		Logger.Warningf("cleanup started with a retention of 0, all keys will be removed on every run")
	}

	ticker := m.clock.NewTicker(interval)
	defer ticker.Stop()

	Logger.Infof("cleanup every %s (retention %s)", interval, retention)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C():
			m.PurgeExpired(retention)
		}
	}
}
