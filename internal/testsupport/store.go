package testsupport

import (
	"testing"

	"foldersort/internal/config"
	"foldersort/internal/ledger"
)

// MustOpenLedgerStore opens the journal named by cfg and registers cleanup.
func MustOpenLedgerStore(t testing.TB, cfg *config.Config) *ledger.Store {
	t.Helper()

	store, err := ledger.OpenStore(cfg.LedgerPath())
	if err != nil {
		t.Fatalf("ledger.OpenStore: %v", err)
	}
	t.Cleanup(func() {
		store.Close()
	})
	return store
}
