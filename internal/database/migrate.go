package database

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed migrations/001_document_versions.up.sql
var documentVersionsSQL string

//go:embed migrations/002_audit_entries.up.sql
var auditEntriesSQL string

type migration struct {
	name string
	sql  string
}

var migrations = []migration{
	{name: "document_versions", sql: documentVersionsSQL},
	{name: "audit_entries", sql: auditEntriesSQL},
}

var requiredTables = []string{
	"document_versions",
	"audit_entries",
}

// EnsureSchema creates the catalog and audit schema when it is missing. The
// migrations are idempotent, so a partially applied schema is completed on
// the next run.
func (db *DB) EnsureSchema(ctx context.Context) error {
	if db == nil || db.Pool == nil {
		return fmt.Errorf("database pool is not initialized")
	}

	exists, err := db.hasAllRequiredTables(ctx)
	if err != nil {
		return fmt.Errorf("check existing tables: %w", err)
	}

	if !exists {
		slog.Info("database schema missing tables; applying migrations")
	}

	for _, m := range migrations {
		if _, err := db.Pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("apply %s migration: %w", m.name, err)
		}
	}

	exists, err = db.hasAllRequiredTables(ctx)
	if err != nil {
		return fmt.Errorf("re-check tables after migration: %w", err)
	}

	if !exists {
		return fmt.Errorf("schema initialization incomplete: required tables are still missing")
	}

	slog.Info("database schema ensured")
	return nil
}

func (db *DB) hasAllRequiredTables(ctx context.Context) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM information_schema.tables
		WHERE table_schema = current_schema()
		  AND table_name = ANY($1)
	`, requiredTables).Scan(&count)
	if err != nil {
		return false, err
	}

	return count == len(requiredTables), nil
}
