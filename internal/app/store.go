package app

import (
	"context"
	"fmt"

	"github.com/adanyl0v/tasklist/internal/config"
	"github.com/adanyl0v/tasklist/internal/storage"
	"github.com/adanyl0v/tasklist/internal/storage/gormstore"
	"github.com/adanyl0v/tasklist/internal/storage/postgres"
	"github.com/adanyl0v/tasklist/internal/storage/sqlite"
)

func (a *App) MustOpenStore(ctx context.Context) {
	store, err := openStore(ctx, a.cfg)
	if err != nil {
		a.logger.Error().
			Err(err).
			Str("driver", a.cfg.Storage.Driver).
			Msg("failed to open store")
		panic(err)
	}
	a.logger.Info().
		Str("driver", a.cfg.Storage.Driver).
		Msg("opened store")

	a.store = store
}

func (a *App) CloseStore() {
	if a.store == nil {
		return
	}

	err := a.store.Close()
	if err != nil {
		a.logger.Error().
			Err(err).
			Msg("failed to close store")
		return
	}
	a.logger.Info().Msg("closed store")
}

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverPostgres:
		pgPool, err := postgres.Connect(ctx, cfg.Postgres)
		if err != nil {
			return nil, err
		}
		store, err := postgres.New(ctx, pgPool)
		if err != nil {
			pgPool.Close()
			return nil, err
		}
		return store, nil
	case config.StorageDriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.StorageDriverMySQL:
		store, err := gormstore.OpenMySQL(ctx, cfg.MySQL)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Storage.Driver)
	}
}
