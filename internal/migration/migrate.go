// Package migration applies embedded schema migrations in filename order.
package migration

import (
	"database/sql"
	"fmt"
	"io/fs"
	"sort"
)

// RunMigrations applies every embedded *.up.sql file exactly once, tracking
// applied versions in schema_migrations.
func RunMigrations(db *sql.DB) error {
	if _, err := db.Exec(
		`CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	); err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	names, err := migrationNames()
	if err != nil {
		return err
	}

	for _, name := range names {
		applied, err := isApplied(db, name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := apply(db, name); err != nil {
			return fmt.Errorf("apply %s: %w", name, err)
		}
	}
	return nil
}

func migrationNames() ([]string, error) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("read migrations: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func isApplied(db *sql.DB, version string) (bool, error) {
	var count int
	err := db.QueryRow(
		`SELECT COUNT(1) FROM schema_migrations WHERE version = $1`,
		version,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func apply(db *sql.DB, name string) error {
	contents, err := fs.ReadFile(embeddedMigrations, migrationsDir+"/"+name)
	if err != nil {
		return err
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(string(contents)); err != nil {
		_ = tx.Rollback()
		return err
	}
	if _, err := tx.Exec(
		`INSERT INTO schema_migrations (version) VALUES ($1)`,
		name,
	); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}
