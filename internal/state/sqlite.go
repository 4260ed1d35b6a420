package state

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"financas/internal/core"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteStore keeps the state document as a single row in a SQLite file.
// The slot semantics are identical to FileStore; SQLite only adds a
// transactional write of the one-row table.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func runMigrations(dbPath string) error {
	// Separate connection so the migration driver does not interfere with
	// the main one.
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *SQLiteStore) Load(ctx context.Context) (*core.AppState, error) {
	var raw []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM state_slot WHERE id = 1`).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		slog.InfoContext(ctx, "State slot absent, seeding default state")
		return Seed(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state slot: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		slog.ErrorContext(ctx, "State slot corrupt, falling back to seeded default", "error", err)
		return Seed(), nil
	}
	return Materialize(ctx, doc), nil
}

func (s *SQLiteStore) Save(ctx context.Context, state *core.AppState) error {
	raw, err := json.Marshal(Snapshot(state))
	if err != nil {
		return fmt.Errorf("encode state document: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO state_slot (id, document, updated_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			updated_at = CURRENT_TIMESTAMP`, raw)
	if err != nil {
		return fmt.Errorf("write state slot: %w", err)
	}
	return nil
}
