package testutil

import (
	"log/slog"
	"testing"

	"github.com/vandelli/summit/internal/logger"
	"github.com/vandelli/summit/internal/store"
)

// NewTestStore creates a new in-memory store for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(":memory:", NewTestLogger())
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// NewTestLogger returns a logger suitable for tests. Warn level keeps test
// output quiet while still surfacing real problems.
func NewTestLogger() logger.Logger {
	return logger.NewWithLevel(slog.LevelWarn)
}
