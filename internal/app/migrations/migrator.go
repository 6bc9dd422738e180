// Package migrations applies the SQL schema used by the postgres driver.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/yigit/greenleaf/internal/db"
)

//go:embed sql/*.sql
var embedded embed.FS

// Files returns the bundled migrations.
func Files() fs.FS {
	sub, _ := fs.Sub(embedded, "sql")
	return sub
}

// Migrator applies versioned SQL files, recording each in schema_migrations
type Migrator struct {
	db     *db.PostgresDB
	files  fs.FS
	logger zerolog.Logger
}

// NewMigrator creates a migrator that reads files from fsys
func NewMigrator(database *db.PostgresDB, fsys fs.FS, logger zerolog.Logger) *Migrator {
	return &Migrator{
		db:     database,
		files:  fsys,
		logger: logger.With().Str("component", "migrator").Logger(),
	}
}

// Migration is a single SQL file
type Migration struct {
	Version string
	Name    string
}

// versionOf extracts the version prefix, "001_init.sql" => "001"
func versionOf(name string) string {
	return strings.SplitN(path.Base(name), "_", 2)[0]
}

// List returns the .sql files of fsys in version order
func List(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration directory: %w", err)
	}
	var out []Migration
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") {
			continue
		}
		out = append(out, Migration{Version: versionOf(e.Name()), Name: e.Name()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *Migrator) ensureMigrationTableExists(ctx context.Context) error {
	_, err := m.db.Pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
	);`)
	if err != nil {
		return fmt.Errorf("failed to create migration tracking table: %w", err)
	}
	return nil
}

func (m *Migrator) isMigrationApplied(ctx context.Context, version string) (bool, error) {
	var exists bool
	err := m.db.Pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)`, version).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	return exists, nil
}

// apply runs one migration and records it in the same transaction
func (m *Migrator) apply(ctx context.Context, mig Migration) error {
	applied, err := m.isMigrationApplied(ctx, mig.Version)
	if err != nil {
		return err
	}
	if applied {
		m.logger.Debug().Str("migration", mig.Name).Msg("Migration already applied, skipping")
		return nil
	}

	content, err := fs.ReadFile(m.files, mig.Name)
	if err != nil {
		return fmt.Errorf("failed to read migration file: %w", err)
	}

	err = m.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, string(content)); err != nil {
			return fmt.Errorf("migration %s failed: %w", mig.Name, err)
		}
		if _, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version) VALUES ($1)`, mig.Version); err != nil {
			return fmt.Errorf("failed to record migration: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	m.logger.Info().Str("migration", mig.Name).Msg("Migration applied")
	return nil
}

// Up applies every pending migration in order
func (m *Migrator) Up(ctx context.Context) error {
	if err := m.ensureMigrationTableExists(ctx); err != nil {
		return err
	}
	migrations, err := List(m.files)
	if err != nil {
		return err
	}
	for _, mig := range migrations {
		if err := m.apply(ctx, mig); err != nil {
			return err
		}
	}
	return nil
}
