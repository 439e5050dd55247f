// Package snapshot stores table schemas and data in SQLite files so that two points
// in time can be compared and turned into a changelog.
package snapshot

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite"

	"github.com/koba/db-changelog/internal/database"
	"github.com/koba/db-changelog/internal/schema"
)

// Metadata keys
const (
	KeyCreatedAt = "created_at"
	KeyDBType    = "db_type"
)

// Snapshot is the loaded content of a snapshot file
type Snapshot struct {
	Metadata map[string]string
	Tables   map[string]*schema.Table
}

// DBType returns the type of the database the snapshot was taken from
func (s *Snapshot) DBType() string {
	return s.Metadata[KeyDBType]
}

// TableNames returns the table names in sorted order
func (s *Snapshot) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Create writes a snapshot of tables to outputPath, replacing any existing file.
// No tables means every table. A positive limit caps the rows stored per table.
func Create(ctx context.Context, db database.Database, tables []string, outputPath string, limit int) error {
	// Ensure output directory exists
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	// Remove existing snapshot file
	if err := os.Remove(outputPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove existing snapshot: %w", err)
	}

	snapshotDB, err := sql.Open("sqlite", outputPath)
	if err != nil {
		return fmt.Errorf("failed to create snapshot database: %w", err)
	}
	defer snapshotDB.Close()

	// Initialize schema
	if err := initializeSchema(ctx, snapshotDB); err != nil {
		return fmt.Errorf("failed to initialize snapshot schema: %w", err)
	}

	// Store metadata
	metadata := map[string]string{
		KeyCreatedAt: time.Now().UTC().Format(time.RFC3339),
		KeyDBType:    db.Type(),
	}
	for key, value := range metadata {
		if _, err := snapshotDB.ExecContext(ctx, "INSERT INTO metadata (key, value) VALUES (?, ?)", key, value); err != nil {
			return fmt.Errorf("failed to insert metadata: %w", err)
		}
	}

	// Get all tables if not specified
	if len(tables) == 0 {
		tables, err = db.GetAllTables(ctx)
		if err != nil {
			return fmt.Errorf("failed to get all tables: %w", err)
		}
	}
	for _, tableName := range tables {
		if err := snapshotTable(ctx, db, snapshotDB, tableName, limit); err != nil {
			return fmt.Errorf("failed to snapshot table %s: %w", tableName, err)
		}
	}
	return nil
}

func snapshotTable(ctx context.Context, db database.Database, snapshotDB *sql.DB, tableName string, limit int) error {
	// Get table schema and data
	tableSchema, err := db.GetTableSchema(ctx, tableName)
	if err != nil {
		return fmt.Errorf("failed to get schema: %w", err)
	}
	data, err := db.GetTableData(ctx, tableName, limit)
	if err != nil {
		return fmt.Errorf("failed to get data: %w", err)
	}

	schemaJSON, err := json.Marshal(tableSchema)
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}

	// One transaction per table
	tx, err := snapshotDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO table_schemas (table_name, schema_json) VALUES (?, ?)", tableName, string(schemaJSON)); err != nil {
		return fmt.Errorf("failed to insert schema: %w", err)
	}

	// Store data as JSON
	stmt, err := tx.PrepareContext(ctx, "INSERT INTO table_data (table_name, row_json) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, row := range data {
		rowJSON, err := json.Marshal(row)
		if err != nil {
			return fmt.Errorf("failed to marshal row: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, tableName, string(rowJSON)); err != nil {
			return fmt.Errorf("failed to insert row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Load reads a snapshot file. Rows keep the order they were stored in.
func Load(snapshotPath string) (*Snapshot, error) {
	// Check if file exists
	if _, err := os.Stat(snapshotPath); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("snapshot file does not exist: %s", snapshotPath)
	}

	// Open SQLite database
	db, err := sql.Open("sqlite", snapshotPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	defer db.Close()

	snap := &Snapshot{
		Metadata: make(map[string]string),
		Tables:   make(map[string]*schema.Table),
	}
	// Load schemas before data. Every row needs its table.
	if err := loadMetadata(db, snap); err != nil {
		return nil, err
	}
	if err := loadSchemas(db, snap); err != nil {
		return nil, err
	}
	if err := loadData(db, snap); err != nil {
		return nil, err
	}
	return snap, nil
}

func loadMetadata(db *sql.DB, snap *Snapshot) error {
	rows, err := db.Query("SELECT key, value FROM metadata")
	if err != nil {
		return fmt.Errorf("failed to query metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("failed to scan metadata: %w", err)
		}
		snap.Metadata[key] = value
	}
	return rows.Err()
}

func loadSchemas(db *sql.DB, snap *Snapshot) error {
	rows, err := db.Query("SELECT table_name, schema_json FROM table_schemas")
	if err != nil {
		return fmt.Errorf("failed to query table schemas: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, schemaJSON string
		if err := rows.Scan(&tableName, &schemaJSON); err != nil {
			return fmt.Errorf("failed to scan table schema: %w", err)
		}
		var tableSchema schema.TableSchema
		if err := json.Unmarshal([]byte(schemaJSON), &tableSchema); err != nil {
			return fmt.Errorf("failed to unmarshal schema of %s: %w", tableName, err)
		}
		snap.Tables[tableName] = &schema.Table{Schema: tableSchema}
	}
	return rows.Err()
}

func loadData(db *sql.DB, snap *Snapshot) error {
	rows, err := db.Query("SELECT table_name, row_json FROM table_data ORDER BY id")
	if err != nil {
		return fmt.Errorf("failed to query table data: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tableName, rowJSON string
		if err := rows.Scan(&tableName, &rowJSON); err != nil {
			return fmt.Errorf("failed to scan row: %w", err)
		}
		table, ok := snap.Tables[tableName]
		if !ok {
			return fmt.Errorf("row for unknown table %s", tableName)
		}
		var row schema.Row
		if err := json.Unmarshal([]byte(rowJSON), &row); err != nil {
			return fmt.Errorf("failed to unmarshal row: %w", err)
		}
		table.Data = append(table.Data, row)
	}
	return rows.Err()
}
