package persistence

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dododb/dodo/lib/db"
)

// ErrSnapshotParse is returned by LoadSnapshot when the snapshot file is not a JSON object.
var ErrSnapshotParse = errors.New("snapshot is not a valid json object")

// ErrSnapshotIO is returned by LoadSnapshot when an existing snapshot file can not be read.
var ErrSnapshotIO = errors.New("snapshot can not be read")

// --------------------------------------------------------------------------
// Decoding
// --------------------------------------------------------------------------

// decodeSnapshot parses the content of a snapshot file.
// The file must be a JSON object, otherwise ErrSnapshotParse is returned.
// Records are decoded one by one, a malformed record is skipped. Records without
// a usable created_at (including the legacy bare string format) get the timestamp now.
func decodeSnapshot(data []byte, now int64) (entries map[string]db.Entry, skipped int, err error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, 0, ErrSnapshotParse
	}

	var records map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrSnapshotParse, err)
	}

	entries = make(map[string]db.Entry, len(records))
	for key, raw := range records {
		entry, ok := decodeRecord(raw, now)
		if !ok {
			skipped++
			continue
		}
		entries[key] = entry
	}
	return entries, skipped, nil
}

func decodeRecord(raw json.RawMessage, now int64) (db.Entry, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return db.Entry{}, false
	}

	switch raw[0] {
	case '{':
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return db.Entry{}, false
		}
		var value string
		if err := json.Unmarshal(fields["value"], &value); err != nil {
			return db.Entry{}, false
		}
		createdAt := now
		if ts, ok := fields["created_at"]; ok {
			var parsed *int64
			if err := json.Unmarshal(ts, &parsed); err == nil && parsed != nil {
				createdAt = *parsed
			}
		}
		return db.Entry{Value: value, CreatedAt: createdAt}, true

	case '"':
		// legacy format: the bare value without metadata
		var value string
		if err := json.Unmarshal(raw, &value); err != nil {
			return db.Entry{}, false
		}
		return db.Entry{Value: value, CreatedAt: now}, true

	default:
		return db.Entry{}, false
	}
}

// --------------------------------------------------------------------------
// Encoding
// --------------------------------------------------------------------------

// writeSnapshot writes entries as an indented JSON object with sorted keys.
// The file is written to path.tmp first and then renamed, so a reader never
// observes a partially written snapshot.
func writeSnapshot(path string, entries map[string]db.Entry) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create snapshot directory: %w", err)
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename snapshot: %w", err)
	}
	return nil
}
