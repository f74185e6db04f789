package testsupport

import (
	"testing"

	"obdexporter/internal/config"
	"obdexporter/internal/history"
)

// MustOpenHistory opens the history journal for tests and registers cleanup.
func MustOpenHistory(t testing.TB, cfg *config.Config) *history.Store {
	t.Helper()

	store, err := history.Open(cfg.HistoryPath())
	if err != nil {
		t.Fatalf("history.Open: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
