// Package statestore persists workflow snapshots.
//
// A Store wraps one Backend (SQLite by default, a JSON file, or Redis) and
// handles the versioned envelope: Save writes the whole snapshot in one
// operation, Load discards records it cannot read or that carry another
// schema version, and Purge removes the record. Backends only move bytes.
package statestore
