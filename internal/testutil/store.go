// Package testutil provides test helpers for exercising the account
// store and poll pipeline.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/model"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/storage"
)

// SetupTestStore creates a migrated in-memory account store seeded with
// the given accounts. Cleanup is registered automatically.
func SetupTestStore(t *testing.T, accounts ...model.Account) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	for i := range accounts {
		if err := store.SaveAccount(ctx, &accounts[i]); err != nil {
			t.Fatalf("failed to seed account %q: %v", accounts[i].Name, err)
		}
		if accounts[i].Active {
			if err := store.SetActiveAccount(ctx, accounts[i].Name); err != nil {
				t.Fatalf("failed to mark account %q active: %v", accounts[i].Name, err)
			}
		}
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return store
}

// TestAccount builds a minimal usable account for tests.
func TestAccount(name string) model.Account {
	return model.Account{
		ID:      "id-" + name,
		Name:    name,
		SteamID: "7656119800000" + name,
	}
}
