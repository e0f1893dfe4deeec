package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/the-sleeper-must-awaken/internal/config"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/engine"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/service"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/session"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/steam"
	"github.com/Veraticus/the-sleeper-must-awaken/internal/storage"
)

// initStorage opens the account store and brings the schema up to date.
func initStorage(ctx context.Context) (service.AccountStore, error) {
	store, err := storage.NewSQLiteStorage(config.DatabasePath())
	if err != nil {
		return nil, fmt.Errorf("failed to open account store: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate account store: %w", err)
	}
	return store, nil
}

// buildScheduler wires the full poll pipeline: Steam client, session
// guard, and scheduler over the given store.
func buildScheduler(store service.AccountStore) *engine.Scheduler {
	client := steam.NewClient(steam.NewCommandKeySource(config.KeygenCommand()))
	guard := session.NewGuard(client, store)
	return engine.NewScheduler(guard, client, store, config.Source{})
}
