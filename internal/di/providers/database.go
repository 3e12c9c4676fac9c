package providers

import (
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/bookhaven/bookhaven-server/internal/cache"
	"github.com/bookhaven/bookhaven-server/internal/config"
	"github.com/bookhaven/bookhaven-server/internal/kv"
	"github.com/bookhaven/bookhaven-server/internal/lock"
	"github.com/bookhaven/bookhaven-server/internal/logger"
	"github.com/bookhaven/bookhaven-server/internal/store/sqlite"
)

// StoreHandle wraps the SQLite store with shutdown capability.
type StoreHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the SQLite catalog store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "catalog.db")
	st, err := sqlite.Open(dbPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Catalog database initialized", "path", dbPath)

	return &StoreHandle{Store: st}, nil
}

// KVHandle wraps the Badger store with shutdown capability.
type KVHandle struct {
	*kv.Store
}

// Shutdown implements do.Shutdownable.
func (h *KVHandle) Shutdown() error {
	return h.Close()
}

// ProvideKV provides the Badger store backing the cache and lock layers.
func ProvideKV(i do.Injector) (*KVHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	kvPath := filepath.Join(cfg.Data.BasePath, "kv")
	kvStore, err := kv.Open(kvPath)
	if err != nil {
		return nil, err
	}

	log.Info("KV store initialized", "path", kvPath)

	return &KVHandle{Store: kvStore}, nil
}

// ProvideCache provides the cache-aside layer over the KV store.
func ProvideCache(i do.Injector) (*cache.Cache, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	kvHandle := do.MustInvoke[*KVHandle](i)

	return cache.New(kvHandle.Store, cfg.Catalog.CacheTTL, log.Logger), nil
}

// ProvideLocker provides the distributed lock manager over the KV store.
func ProvideLocker(i do.Injector) (*lock.Locker, error) {
	kvHandle := do.MustInvoke[*KVHandle](i)
	return lock.New(kvHandle.Store), nil
}
