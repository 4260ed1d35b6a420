package state

import (
	"fmt"
	"log/slog"
)

// BackendType selects which durable slot implementation backs the store.
type BackendType string

const (
	FileBackend   BackendType = "file"
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

func (bt BackendType) String() string { return string(bt) }

func (bt BackendType) IsValid() bool {
	switch bt {
	case FileBackend, SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}

// Config holds the backend selection and its paths.
type Config struct {
	Type         BackendType
	FilePath     string
	SQLiteDBPath string
}

// CleanupFunc releases backend resources; nil-safe to skip.
type CleanupFunc func() error

// Open creates the configured store. The returned cleanup may be nil for
// backends without resources to release.
func Open(cfg Config, logger *slog.Logger) (Store, CleanupFunc, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Type {
	case FileBackend:
		store, err := NewFileStore(cfg.FilePath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize file store: %w", err)
		}
		logger.Info("Initialized file state store", "path", cfg.FilePath)
		return store, nil, nil
	case SQLiteBackend:
		store, err := NewSQLiteStore(cfg.SQLiteDBPath)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize sqlite store: %w", err)
		}
		logger.Info("Initialized sqlite state store", "db_path", cfg.SQLiteDBPath)
		return store, store.Close, nil
	case MemoryBackend:
		logger.Info("Initialized memory state store")
		return NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("invalid state backend: %s", cfg.Type)
	}
}
