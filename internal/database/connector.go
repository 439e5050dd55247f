package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/koba/db-changelog/internal/schema"
)

// Supported database types
const (
	TypeMySQL    = "mysql"
	TypePostgres = "postgres"
	TypePgx      = "pgx"
	TypeSQLite   = "sqlite"
)

// Config holds database connection configuration
type Config struct {
	Type     string `mapstructure:"type"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Database string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// WithDefaults normalizes the type and fills in the host and the default port of the type
func (c Config) WithDefaults() (Config, error) {
	t, err := NormalizeType(c.Type)
	if err != nil {
		return c, err
	}
	c.Type = t
	if c.Host == "" && t != TypeSQLite {
		c.Host = "localhost"
	}
	if c.Port == "" {
		switch t {
		case TypeMySQL:
			c.Port = "3306"
		case TypePostgres, TypePgx:
			c.Port = "5432"
		}
	}
	return c, nil
}

// NormalizeType maps the accepted spellings of a database type to its canonical name
func NormalizeType(t string) (string, error) {
	switch strings.ToLower(t) {
	case "mysql", "mariadb":
		return TypeMySQL, nil
	case "postgres", "postgresql":
		return TypePostgres, nil
	case "pgx":
		return TypePgx, nil
	case "sqlite", "sqlite3":
		return TypeSQLite, nil
	case "":
		return "", fmt.Errorf("database type is required")
	default:
		return "", fmt.Errorf("unsupported database type: %s", t)
	}
}

// Database reads table structure and data from a live database
type Database interface {
	Connect(ctx context.Context) error
	Close() error
	// Type is the canonical database type, recorded in snapshots.
	Type() string
	GetAllTables(ctx context.Context) ([]string, error)
	GetTableSchema(ctx context.Context, tableName string) (*schema.TableSchema, error)
	GetTableData(ctx context.Context, tableName string, limit int) ([]schema.Row, error)
	// Conn returns a dedicated connection, used to run custom changes.
	Conn(ctx context.Context) (*sql.Conn, error)
}

// NewDatabase creates a database of the configured type. Call Connect before use.
func NewDatabase(config Config) (Database, error) {
	config, err := config.WithDefaults()
	if err != nil {
		return nil, err
	}
	switch config.Type {
	case TypeMySQL:
		return NewMySQL(config), nil
	case TypePostgres, TypePgx:
		return NewPostgres(config), nil
	default:
		return NewSQLite(config), nil
	}
}

// conn is the *sql.DB holder shared by the implementations
type conn struct {
	db *sql.DB
}

func (c *conn) open(ctx context.Context, driver, dsn, name string) error {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open %s connection: %w", name, err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return fmt.Errorf("failed to ping %s: %w", name, err)
	}
	c.db = db
	return nil
}

// Close closes the connection pool
func (c *conn) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Conn returns a dedicated connection from the pool
func (c *conn) Conn(ctx context.Context) (*sql.Conn, error) {
	if c.db == nil {
		return nil, fmt.Errorf("database is not connected")
	}
	return c.db.Conn(ctx)
}

func (c *conn) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// queryRows runs query and returns every row keyed by column name. []byte values become strings.
func (c *conn) queryRows(ctx context.Context, query string) ([]schema.Row, error) {
	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get table data: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns: %w", err)
	}

	var data []schema.Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}

		row := make(schema.Row, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				row[col] = string(b)
			} else {
				row[col] = values[i]
			}
		}
		data = append(data, row)
	}
	return data, rows.Err()
}

// groupIndexes folds per-column index rows, already ordered by index and column position
func groupIndexes(entries []indexEntry) []schema.Index {
	var indexes []schema.Index
	pos := make(map[string]int)
	for _, e := range entries {
		if i, ok := pos[e.name]; ok {
			indexes[i].Columns = append(indexes[i].Columns, e.column)
			continue
		}
		pos[e.name] = len(indexes)
		indexes = append(indexes, schema.Index{
			Name:    e.name,
			Columns: []string{e.column},
			Unique:  e.unique,
			Primary: e.primary,
			Type:    e.kind,
		})
	}
	return indexes
}

type indexEntry struct {
	name    string
	column  string
	unique  bool
	primary bool
	kind    string
}

func limitClause(query string, limit int) string {
	if limit > 0 {
		return fmt.Sprintf("%s LIMIT %d", query, limit)
	}
	return query
}
