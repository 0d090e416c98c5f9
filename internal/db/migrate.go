package db

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"

	"happi-app-go/pkg/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migrate applies the embedded SQL migrations that schema_migrations does not
// list yet, in filename order.
func Migrate(db *gorm.DB, log logger.Logger) error {
	sub, err := fs.Sub(migrationFiles, "migrations")
	if err != nil {
		return err
	}
	applied, err := MigrateFS(db, sub)
	for _, name := range applied {
		log.Info("db: migration applied", "file", name)
	}
	if err != nil {
		return err
	}
	if len(applied) == 0 {
		log.Debug("db: schema up to date")
	}
	return nil
}

// MigrateFS runs every pending *.sql file of fsys together with its
// schema_migrations row in one transaction, so a failed file leaves no record.
// It returns the files applied before any failure.
func MigrateFS(db *gorm.DB, fsys fs.FS) ([]string, error) {
	if err := db.Exec(createSchemaMigrations).Error; err != nil {
		return nil, fmt.Errorf("schema_migrations: %w", err)
	}

	done, err := appliedMigrations(db)
	if err != nil {
		return nil, err
	}

	pending, err := pendingMigrations(fsys, done)
	if err != nil {
		return nil, err
	}

	var applied []string
	for _, name := range pending {
		contents, err := fs.ReadFile(fsys, name)
		if err != nil {
			return applied, err
		}
		statement := strings.TrimSpace(string(contents))

		err = db.Transaction(func(tx *gorm.DB) error {
			if statement != "" {
				if err := tx.Exec(statement).Error; err != nil {
					return err
				}
			}
			return tx.Exec(
				"INSERT INTO schema_migrations (filename, applied_at) VALUES (?, ?)",
				name, time.Now().UTC(),
			).Error
		})
		if err != nil {
			return applied, fmt.Errorf("apply migration %s: %w", name, err)
		}
		applied = append(applied, name)
	}
	return applied, nil
}

const createSchemaMigrations = `
	CREATE TABLE IF NOT EXISTS schema_migrations (
		filename TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);
`

func appliedMigrations(db *gorm.DB) (map[string]struct{}, error) {
	var names []string
	if err := db.Raw("SELECT filename FROM schema_migrations").Scan(&names).Error; err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	done := make(map[string]struct{}, len(names))
	for _, name := range names {
		done[name] = struct{}{}
	}
	return done, nil
}

func pendingMigrations(fsys fs.FS, done map[string]struct{}) ([]string, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, err
	}
	var pending []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != ".sql" {
			continue
		}
		if _, ok := done[name]; ok {
			continue
		}
		pending = append(pending, name)
	}
	sort.Strings(pending)
	return pending, nil
}
