package database

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/kv"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store/gormstore"
	"github.com/ahmetcoskunkizilkaya/buildforge-backend/internal/store/localstore"
	"gorm.io/gorm"
)

const (
	BackendPostgres = "postgres"
	BackendLocal    = "local"
)

// OpenProvider builds the persistence provider selected by
// cfg.StoreBackend. The *gorm.DB is non-nil only for the postgres backend.
func OpenProvider(cfg *config.Config) (store.Provider, *gorm.DB, error) {
	switch cfg.StoreBackend {
	case BackendPostgres:
		db, err := Connect(cfg)
		if err != nil {
			return nil, nil, err
		}
		if err := Migrate(db); err != nil {
			return nil, nil, fmt.Errorf("migration failed: %w", err)
		}
		return gormstore.New(db), db, nil

	case BackendLocal:
		kvs, err := openKV(cfg.LocalStorePath)
		if err != nil {
			return nil, nil, err
		}
		provider := localstore.New(kvs, localstore.Options{
			Seed:            cfg.LocalStoreSeed,
			SuperAdminEmail: cfg.SuperAdminEmail,
			BcryptCost:      cfg.BcryptCost,
			Logger:          slog.Default(),
		})
		slog.Info("local store ready", "seed", cfg.LocalStoreSeed)
		return provider, nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown STORE_BACKEND %q (want %s or %s)", cfg.StoreBackend, BackendPostgres, BackendLocal)
	}
}

func openKV(path string) (kv.Store, error) {
	if path == "memory" {
		return kv.NewMemory(), nil
	}
	return kv.OpenSQLite(path, runtime.NumCPU(), slog.Default())
}
