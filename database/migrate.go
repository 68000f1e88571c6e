package database

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"

	"todo-manager/config"
)

//go:embed schema_postgres.sql
var postgresSchema string

//go:embed schema_sqlite.sql
var sqliteSchema string

// Schema returns the DDL for the given driver.
func Schema(driver string) (string, error) {
	switch driver {
	case config.DriverPostgres, config.DriverPgx:
		return postgresSchema, nil
	case config.DriverSQLite:
		return sqliteSchema, nil
	default:
		return "", fmt.Errorf("no schema for driver %q", driver)
	}
}

// Migrate creates the task, tag and task_tags tables if they do not exist.
func Migrate(ctx context.Context, db *sql.DB, driver string) error {
	schema, err := Schema(driver)
	if err != nil {
		return err
	}

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("error executing migration: %w", err)
		}
	}
	return nil
}
