package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"finledger/internal/core"
)

type dialect struct {
	driver string
	load   string
	save   string
}

var (
	sqliteDialect = dialect{
		driver: "sqlite",
		load:   `SELECT data FROM snapshots WHERE key = ?`,
		save: `INSERT INTO snapshots (key, data, version, updated_at) VALUES (?, ?, 1, ?)
ON CONFLICT(key) DO UPDATE SET data = excluded.data, version = snapshots.version + 1, updated_at = excluded.updated_at`,
	}
	postgresDialect = dialect{
		driver: "postgres",
		load:   `SELECT data FROM snapshots WHERE key = $1`,
		save: `INSERT INTO snapshots (key, data, version, updated_at) VALUES ($1, $2, 1, $3)
ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, version = snapshots.version + 1, updated_at = EXCLUDED.updated_at`,
	}
)

// SQLStore keeps snapshots in a "snapshots" table, one row per key.
type SQLStore struct {
	db      *sql.DB
	key     string
	dialect dialect
}

// NewSQLiteStore opens (creating if needed) the SQLite database at dbPath and
// applies migrations.
func NewSQLiteStore(dbPath, key string) (*SQLStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	return openSQL(sqliteDialect, dbPath, key)
}

// NewPostgresStore connects to dsn and applies migrations.
func NewPostgresStore(dsn, key string) (*SQLStore, error) {
	return openSQL(postgresDialect, dsn, key)
}

func openSQL(d dialect, dsn, key string) (*SQLStore, error) {
	if key == "" {
		key = DefaultKey
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", d.driver, err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(d.driver, dsn); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	if d.driver == "sqlite" {
		// A single connection serializes writers on the file.
		db.SetMaxOpenConns(1)
	}

	return &SQLStore{db: db, key: key, dialect: d}, nil
}

func (s *SQLStore) Load(ctx context.Context) (*core.Snapshot, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx, s.dialect.load, s.key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, fmt.Errorf("query snapshot: %w", err)
	}
	return decode(data)
}

func (s *SQLStore) Save(ctx context.Context, snap *core.Snapshot) error {
	data, err := encode(snap)
	if err != nil {
		return err
	}
	var updatedAt any = time.Now().UTC()
	if s.dialect.driver == "sqlite" {
		updatedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.save, s.key, string(data), updatedAt); err != nil {
		return fmt.Errorf("upsert snapshot: %w", err)
	}

	slog.DebugContext(ctx, "Snapshot saved",
		"driver", s.dialect.driver,
		"key", s.key,
		"bytes", len(data))
	return nil
}

func (s *SQLStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}
