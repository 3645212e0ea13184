package storage

import (
	"fmt"
	"log/slog"
)

// Backend selects a snapshot store implementation.
type Backend string

const (
	MemoryBackend   Backend = "memory"
	FileBackend     Backend = "file"
	SQLiteBackend   Backend = "sqlite"
	PostgresBackend Backend = "postgres"
)

// IsValid checks if the backend type is valid
func (b Backend) IsValid() bool {
	switch b {
	case MemoryBackend, FileBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}

type Config struct {
	Backend      Backend
	SnapshotFile string
	SQLiteDBPath string
	PostgresDSN  string
	Key          string
}

// Open builds the store named by cfg.Backend.
func Open(cfg Config, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if !cfg.Backend.IsValid() {
		return nil, fmt.Errorf("invalid storage backend: %q", cfg.Backend)
	}

	switch cfg.Backend {
	case FileBackend:
		s, err := NewFileStore(cfg.SnapshotFile)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file store: %w", err)
		}
		logger.Info("Initialized file store", "path", cfg.SnapshotFile)
		return s, nil
	case SQLiteBackend:
		s, err := NewSQLiteStore(cfg.SQLiteDBPath, cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite store: %w", err)
		}
		logger.Info("Initialized SQLite store", "db_path", cfg.SQLiteDBPath)
		return s, nil
	case PostgresBackend:
		s, err := NewPostgresStore(cfg.PostgresDSN, cfg.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Postgres store: %w", err)
		}
		logger.Info("Initialized Postgres store")
		return s, nil
	default:
		logger.Info("Initialized memory store")
		return NewMemoryStore(), nil
	}
}
