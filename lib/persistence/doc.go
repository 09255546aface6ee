// Package persistence keeps a dodo database on disk and enforces the retention window.
//
// The Manager offers four operations:
//
//   - LoadSnapshot: called once at startup. Replaces the content of the database with
//     the snapshot file in a single critical section, dropping entries older than the
//     retention window. A file that is not a JSON object aborts the load and leaves the
//     database untouched, a single malformed record is skipped.
//   - SaveSnapshot: copies the database under the read lock and writes it as indented
//     JSON once the lock is released. The file is replaced via rename.
//   - AutosaveLoop / CleanupLoop: periodic save and periodic purge, both driven by a
//     util.Clock ticker and stopped through their context.
//   - PurgeExpired: removes all entries older than the retention window in one write lock.
//
// Snapshot format:
//
//	{
//	  "user:1": {
//	    "value": "{\"name\":\"alice\"}",
//	    "created_at": 1714564800
//	  }
//	}
//
// The value is the JSON encoding of the stored payload as a string. Files written by
// older versions map keys directly to the value string. They are still accepted, the
// entries get the load time as created_at.
//
// The disk is a best effort backup: writes between the last save and a crash are lost.
package persistence
