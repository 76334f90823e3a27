package config

import (
	"fmt"
	"log/slog"

	"github.com/dreamware/todokit/internal/storage"
)

// OpenStore opens the persistent store selected by c.
func (c StoreConfig) OpenStore(logger *slog.Logger) (storage.Store, error) {
	switch c.Driver {
	case DriverMemory:
		return storage.NewMemoryStore(), nil
	case DriverFile:
		fs, err := storage.OpenFileStore(c.Path)
		if err != nil {
			return nil, err
		}
		return fs, nil
	case DriverSQLite:
		ss, err := storage.OpenSQLiteStore(storage.SQLiteConfig{
			Path:     c.Path,
			PoolSize: c.PoolSize,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		return ss, nil
	}
	return nil, fmt.Errorf("open store: unknown driver %q", c.Driver)
}
