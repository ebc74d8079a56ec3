package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pageza/gecko-recipes/backend/internal/models"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const rollbackSuffix = "_rollback.sql"

// Arbitrary key for pg_advisory_xact_lock so concurrent starts create the
// tracking table and apply each migration once.
const migrationLockKey = 7216349

// Migration is one forward SQL file and its optional rollback.
type Migration struct {
	Version  string
	Name     string
	Up       string
	Rollback string
}

// MigrationStatus reports whether a migration has been applied.
type MigrationStatus struct {
	Migration
	AppliedAt *time.Time
}

// LoadMigrations returns the embedded migrations sorted by file name.
func LoadMigrations() ([]Migration, error) {
	return loadMigrations(migrationFiles, "migrations")
}

func loadMigrations(fsys fs.FS, dir string) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".sql") || strings.HasSuffix(e.Name(), rollbackSuffix) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	migrations := make([]Migration, 0, len(names))
	for _, name := range names {
		up, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", name, err)
		}
		m := Migration{
			Version: strings.SplitN(name, "_", 2)[0],
			Name:    name,
			Up:      string(up),
		}
		rb, err := fs.ReadFile(fsys, path.Join(dir, strings.TrimSuffix(name, ".sql")+rollbackSuffix))
		switch {
		case err == nil:
			m.Rollback = string(rb)
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("failed to read rollback for %s: %w", name, err)
		}
		migrations = append(migrations, m)
	}
	return migrations, nil
}

// Migrator applies SQL migrations to Postgres and tracks them in
// schema_migrations.
type Migrator struct {
	db         *sql.DB
	migrations []Migration
	log        *slog.Logger
}

// NewMigrator uses the embedded migrations.
func NewMigrator(db *sql.DB, log *slog.Logger) (*Migrator, error) {
	migrations, err := LoadMigrations()
	if err != nil {
		return nil, err
	}
	return &Migrator{db: db, migrations: migrations, log: log}, nil
}

// ensureTable creates schema_migrations under the migration lock, so replicas
// starting against an empty database do not race on the CREATE.
func (m *Migrator) ensureTable(ctx context.Context) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockKey); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    VARCHAR(64) PRIMARY KEY,
			name       VARCHAR(255) NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return fmt.Errorf("failed to create schema_migrations table: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema_migrations table: %w", err)
	}
	return nil
}

// Up applies every pending migration, each in its own transaction. It
// returns the names of the migrations it applied.
func (m *Migrator) Up(ctx context.Context) ([]string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	var applied []string
	for _, mig := range m.migrations {
		ok, err := m.apply(ctx, mig)
		if err != nil {
			return applied, err
		}
		if !ok {
			m.log.Debug("skipping migration, already applied", "migration", mig.Name)
			continue
		}
		m.log.Info("applied migration", "migration", mig.Name)
		applied = append(applied, mig.Name)
	}
	return applied, nil
}

func (m *Migrator) apply(ctx context.Context, mig Migration) (bool, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockKey); err != nil {
		return false, fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	var exists bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", mig.Version,
	).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	if exists {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, mig.Up); err != nil {
		return false, fmt.Errorf("failed to execute migration %s: %w", mig.Name, err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES ($1, $2)", mig.Version, mig.Name,
	); err != nil {
		return false, fmt.Errorf("failed to record migration %s: %w", mig.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit migration %s: %w", mig.Name, err)
	}
	return true, nil
}

// ErrNoMigrations is returned by Down when nothing has been applied.
var ErrNoMigrations = errors.New("no migrations to roll back")

// Down rolls back the most recently applied migration and returns its name.
func (m *Migrator) Down(ctx context.Context) (string, error) {
	if err := m.ensureTable(ctx); err != nil {
		return "", err
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockKey); err != nil {
		return "", fmt.Errorf("failed to acquire migration lock: %w", err)
	}

	var version, name string
	err = tx.QueryRowContext(ctx,
		"SELECT version, name FROM schema_migrations ORDER BY version DESC LIMIT 1",
	).Scan(&version, &name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNoMigrations
	}
	if err != nil {
		return "", fmt.Errorf("failed to get last migration: %w", err)
	}

	mig, ok := m.find(version)
	if !ok || mig.Rollback == "" {
		return "", fmt.Errorf("rollback file not found for %s", name)
	}
	if _, err := tx.ExecContext(ctx, mig.Rollback); err != nil {
		return "", fmt.Errorf("failed to execute rollback for %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM schema_migrations WHERE version = $1", version); err != nil {
		return "", fmt.Errorf("failed to remove migration record: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit rollback: %w", err)
	}

	m.log.Info("rolled back migration", "migration", name)
	return name, nil
}

// Status lists every known migration with its applied time, if any.
func (m *Migrator) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.ensureTable(ctx); err != nil {
		return nil, err
	}

	rows, err := m.db.QueryContext(ctx, "SELECT version, applied_at FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read schema_migrations: %w", err)
	}
	defer rows.Close()

	appliedAt := make(map[string]time.Time)
	for rows.Next() {
		var version string
		var at time.Time
		if err := rows.Scan(&version, &at); err != nil {
			return nil, err
		}
		appliedAt[version] = at
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]MigrationStatus, 0, len(m.migrations))
	for _, mig := range m.migrations {
		s := MigrationStatus{Migration: mig}
		if at, ok := appliedAt[mig.Version]; ok {
			s.AppliedAt = &at
		}
		out = append(out, s)
	}
	return out, nil
}

func (m *Migrator) find(version string) (Migration, bool) {
	for _, mig := range m.migrations {
		if mig.Version == version {
			return mig, true
		}
	}
	return Migration{}, false
}

// RunMigrations brings the schema up to date. SQLite has no enum types, so it
// is migrated from the gorm models instead of the SQL files.
func RunMigrations(ctx context.Context, db *gorm.DB, log *slog.Logger) error {
	if db.Dialector.Name() == "sqlite" {
		log.Debug("using gorm auto-migration for sqlite")
		return db.WithContext(ctx).AutoMigrate(&models.Recipe{}, &models.Ingredient{})
	}

	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	migrator, err := NewMigrator(sqlDB, log)
	if err != nil {
		return err
	}
	_, err = migrator.Up(ctx)
	return err
}
