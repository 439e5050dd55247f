package snapshot

import (
	"context"
	"database/sql"
)

// statements creating the tables of a snapshot file
var snapshotSchema = []string{
	`CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS table_schemas (
		table_name TEXT PRIMARY KEY,
		schema_json TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS table_data (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		table_name TEXT NOT NULL REFERENCES table_schemas(table_name),
		row_json TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_table_data_table_name ON table_data(table_name)`,
}

func initializeSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range snapshotSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
