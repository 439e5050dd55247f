package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/koba/db-changelog/internal/schema"
)

// SQLite implements the Database interface for SQLite files. Config.Database is the file path.
type SQLite struct {
	conn
	config Config
}

// NewSQLite creates a new SQLite database
func NewSQLite(config Config) *SQLite {
	return &SQLite{config: config}
}

// Type returns "sqlite"
func (s *SQLite) Type() string { return TypeSQLite }

// Connect opens the database file
func (s *SQLite) Connect(ctx context.Context) error {
	return s.open(ctx, "sqlite", s.config.Database, "SQLite")
}

// GetAllTables retrieves all user table names
func (s *SQLite) GetAllTables(ctx context.Context) ([]string, error) {
	tables, err := s.queryStrings(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	return tables, nil
}

// GetTableSchema retrieves the schema for a specific table
func (s *SQLite) GetTableSchema(ctx context.Context, tableName string) (*schema.TableSchema, error) {
	var ddl string
	err := s.db.QueryRowContext(ctx, "SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", tableName).Scan(&ddl)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("table %s does not exist", tableName)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table definition: %w", err)
	}

	// Get columns
	columns, pk, err := s.getColumns(ctx, tableName, ddl)
	if err != nil {
		return nil, err
	}
	// Get indexes
	indexes, err := s.getIndexes(ctx, tableName)
	if err != nil {
		return nil, err
	}
	// Primary key columns form the PRIMARY index
	if len(pk) > 0 {
		indexes = append(indexes, schema.Index{Name: "PRIMARY", Columns: pk, Unique: true, Primary: true})
	}
	// Get foreign keys
	foreignKeys, err := s.getForeignKeys(ctx, tableName)
	if err != nil {
		return nil, err
	}

	t := &schema.TableSchema{Name: tableName, Columns: columns, Indexes: indexes, ForeignKeys: foreignKeys}
	t.Sort()
	return t, nil
}

// getColumns also returns the primary key columns in key order
func (s *SQLite) getColumns(ctx context.Context, tableName, ddl string) ([]schema.Column, []string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT cid, name, type, \"notnull\", dflt_value, pk FROM pragma_table_info(?) ORDER BY cid", tableName)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get columns: %w", err)
	}
	defer rows.Close()

	type keyPart struct {
		seq  int
		name string
	}
	var (
		columns []schema.Column
		keys    []keyPart
	)
	for rows.Next() {
		var (
			col          schema.Column
			notNull      int
			defaultValue sql.NullString
			pk           int
		)
		if err := rows.Scan(&col.Position, &col.Name, &col.Type, &notNull, &defaultValue, &pk); err != nil {
			return nil, nil, fmt.Errorf("failed to scan column: %w", err)
		}
		col.Position++
		col.Nullable = notNull == 0 && pk == 0
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		if pk > 0 {
			keys = append(keys, keyPart{pk, col.Name})
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read columns: %w", err)
	}

	sort.Slice(keys, func(i, j int) bool { return keys[i].seq < keys[j].seq })
	pk := make([]string, len(keys))
	for i, k := range keys {
		pk[i] = k.name
	}
	if len(pk) == 1 && strings.Contains(strings.ToUpper(ddl), "AUTOINCREMENT") {
		for i := range columns {
			if columns[i].Name == pk[0] {
				columns[i].AutoIncrement = true
			}
		}
	}
	return columns, pk, nil
}

func (s *SQLite) getIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT l.name, i.name, l."unique"
		FROM pragma_index_list(?) l, pragma_index_info(l.name) i
		WHERE l.origin = 'c'
		ORDER BY l.name, i.seqno
	`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes: %w", err)
	}
	defer rows.Close()

	var entries []indexEntry
	for rows.Next() {
		var (
			e      indexEntry
			unique int
		)
		if err := rows.Scan(&e.name, &e.column, &unique); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		e.unique = unique == 1
		e.kind = "BTREE"
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read indexes: %w", err)
	}
	return groupIndexes(entries), nil
}

func (s *SQLite) getForeignKeys(ctx context.Context, tableName string) ([]schema.ForeignKey, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, "from", "table", "to", on_delete, on_update FROM pragma_foreign_key_list(?) ORDER BY id, seq`, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get foreign keys: %w", err)
	}
	defer rows.Close()

	var foreignKeys []schema.ForeignKey
	for rows.Next() {
		var (
			id int
			fk schema.ForeignKey
			to sql.NullString
		)
		if err := rows.Scan(&id, &fk.Column, &fk.ReferencedTable, &to, &fk.OnDelete, &fk.OnUpdate); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		// SQLite does not keep constraint names
		fk.Name = fmt.Sprintf("fk_%s_%s", tableName, fk.Column)
		fk.ReferencedColumn = to.String
		foreignKeys = append(foreignKeys, fk)
	}
	return foreignKeys, rows.Err()
}

// GetTableData retrieves up to limit rows of a table. A limit of zero reads every row.
func (s *SQLite) GetTableData(ctx context.Context, tableName string, limit int) ([]schema.Row, error) {
	query := `SELECT * FROM "` + strings.ReplaceAll(tableName, `"`, `""`) + `"`
	return s.queryRows(ctx, limitClause(query, limit))
}
