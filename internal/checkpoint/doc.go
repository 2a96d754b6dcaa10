// Package checkpoint persists agent session state on local disk.
//
// Each project, identified by an 8-hex fingerprint of its root path, owns one
// mutable rolling checkpoint ({hash}-current.json) and any number of
// immutable handoffs ({hash}.{id}.json) snapshotted from it. All files live
// in a single storage root and are written with an exclusive lock held for
// the read-merge-write sequence plus an atomic temp-file rename, so
// concurrent hook processes never lose updates or leave partial JSON behind.
//
// Absence is reported as a nil record with a nil error. Malformed files are
// surfaced as ERR_206_FILE_CORRUPT rather than silently replaced.
package checkpoint
