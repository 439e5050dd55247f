package database

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/koba/db-changelog/internal/schema"
)

// MySQL implements the Database interface for MySQL and MariaDB
type MySQL struct {
	conn
	config Config
}

// NewMySQL creates a new MySQL database
func NewMySQL(config Config) *MySQL {
	return &MySQL{config: config}
}

// Type returns "mysql"
func (m *MySQL) Type() string { return TypeMySQL }

// DSN returns the driver connection string
func (m *MySQL) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = m.config.User
	cfg.Passwd = m.config.Password
	cfg.Net = "tcp"
	cfg.Addr = net.JoinHostPort(m.config.Host, m.config.Port)
	cfg.DBName = m.config.Database
	cfg.ParseTime = true
	return cfg.FormatDSN()
}

// Connect establishes a connection to MySQL
func (m *MySQL) Connect(ctx context.Context) error {
	return m.open(ctx, "mysql", m.DSN(), "MySQL")
}

// GetAllTables retrieves all base table names of the configured schema
func (m *MySQL) GetAllTables(ctx context.Context) ([]string, error) {
	tables, err := m.queryStrings(ctx,
		"SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME",
		m.config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	return tables, nil
}

// GetTableSchema retrieves the schema for a specific table
func (m *MySQL) GetTableSchema(ctx context.Context, tableName string) (*schema.TableSchema, error) {
	// Get columns
	columns, err := m.getColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	// Get indexes
	indexes, err := m.getIndexes(ctx, tableName)
	if err != nil {
		return nil, err
	}
	// Get foreign keys
	foreignKeys, err := m.getForeignKeys(ctx, tableName)
	if err != nil {
		return nil, err
	}

	t := &schema.TableSchema{Name: tableName, Columns: columns, Indexes: indexes, ForeignKeys: foreignKeys}
	t.Sort()
	return t, nil
}

func (m *MySQL) getColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT COLUMN_NAME, COLUMN_TYPE, IS_NULLABLE, COLUMN_DEFAULT, EXTRA, ORDINAL_POSITION
		FROM information_schema.COLUMNS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY ORDINAL_POSITION
	`
	rows, err := m.db.QueryContext(ctx, query, m.config.Database, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}
	defer rows.Close()

	var columns []schema.Column
	for rows.Next() {
		var (
			col          schema.Column
			nullable     string
			defaultValue sql.NullString
			extra        string
		)
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &defaultValue, &extra, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		col.Nullable = nullable == "YES"
		if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		col.AutoIncrement = strings.Contains(strings.ToLower(extra), "auto_increment")
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (m *MySQL) getIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := `
		SELECT INDEX_NAME, COLUMN_NAME, NON_UNIQUE, INDEX_TYPE
		FROM information_schema.STATISTICS
		WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
		ORDER BY INDEX_NAME, SEQ_IN_INDEX
	`
	rows, err := m.db.QueryContext(ctx, query, m.config.Database, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes: %w", err)
	}
	defer rows.Close()

	var entries []indexEntry
	for rows.Next() {
		var (
			e         indexEntry
			nonUnique int
		)
		if err := rows.Scan(&e.name, &e.column, &nonUnique, &e.kind); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		e.unique = nonUnique == 0
		e.primary = e.name == "PRIMARY"
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read indexes: %w", err)
	}
	return groupIndexes(entries), nil
}

func (m *MySQL) getForeignKeys(ctx context.Context, tableName string) ([]schema.ForeignKey, error) {
	query := `
		SELECT k.CONSTRAINT_NAME, k.COLUMN_NAME, k.REFERENCED_TABLE_NAME, k.REFERENCED_COLUMN_NAME,
			r.DELETE_RULE, r.UPDATE_RULE
		FROM information_schema.KEY_COLUMN_USAGE k
		JOIN information_schema.REFERENTIAL_CONSTRAINTS r
			ON r.CONSTRAINT_SCHEMA = k.TABLE_SCHEMA AND r.CONSTRAINT_NAME = k.CONSTRAINT_NAME
		WHERE k.TABLE_SCHEMA = ? AND k.TABLE_NAME = ? AND k.REFERENCED_TABLE_NAME IS NOT NULL
		ORDER BY k.CONSTRAINT_NAME
	`
	rows, err := m.db.QueryContext(ctx, query, m.config.Database, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get foreign keys: %w", err)
	}
	defer rows.Close()

	var foreignKeys []schema.ForeignKey
	for rows.Next() {
		var fk schema.ForeignKey
		if err := rows.Scan(&fk.Name, &fk.Column, &fk.ReferencedTable, &fk.ReferencedColumn, &fk.OnDelete, &fk.OnUpdate); err != nil {
			return nil, fmt.Errorf("failed to scan foreign key: %w", err)
		}
		foreignKeys = append(foreignKeys, fk)
	}
	return foreignKeys, rows.Err()
}

// GetTableData retrieves up to limit rows of a table. A limit of zero reads every row.
func (m *MySQL) GetTableData(ctx context.Context, tableName string, limit int) ([]schema.Row, error) {
	query := "SELECT * FROM `" + strings.ReplaceAll(tableName, "`", "``") + "`"
	return m.queryRows(ctx, limitClause(query, limit))
}
