package store

import "errors"

// ErrNotFound is returned when a requested record is not found in the store.
// This abstracts away the underlying storage implementation from the
// synchronization engine.
var ErrNotFound = errors.New("record not found")

// ErrConflict is returned when a write violates a uniqueness constraint,
// e.g. registering an email that already exists.
var ErrConflict = errors.New("record conflicts with existing data")
