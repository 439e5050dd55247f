package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"github.com/koba/db-changelog/internal/schema"
)

// Postgres implements the Database interface for PostgreSQL. The "postgres" type
// connects through lib/pq, the "pgx" type through the pgx stdlib driver.
type Postgres struct {
	conn
	config Config
}

// NewPostgres creates a new PostgreSQL database
func NewPostgres(config Config) *Postgres {
	return &Postgres{config: config}
}

// Type returns "postgres" or "pgx"
func (p *Postgres) Type() string {
	if p.config.Type == TypePgx {
		return TypePgx
	}
	return TypePostgres
}

// DSN returns the key/value connection string understood by both drivers
func (p *Postgres) DSN() string {
	parts := []string{
		"host=" + pqValue(p.config.Host),
		"port=" + pqValue(p.config.Port),
		"dbname=" + pqValue(p.config.Database),
		"sslmode=disable",
	}
	if p.config.User != "" {
		parts = append(parts, "user="+pqValue(p.config.User))
	}
	if p.config.Password != "" {
		parts = append(parts, "password="+pqValue(p.config.Password))
	}
	return strings.Join(parts, " ")
}

func pqValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	return "'" + strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v) + "'"
}

// Connect establishes a connection to PostgreSQL
func (p *Postgres) Connect(ctx context.Context) error {
	driver := "postgres"
	if p.Type() == TypePgx {
		driver = "pgx"
	}
	return p.open(ctx, driver, p.DSN(), "PostgreSQL")
}

// GetAllTables retrieves all table names in the public schema
func (p *Postgres) GetAllTables(ctx context.Context) ([]string, error) {
	tables, err := p.queryStrings(ctx, `
		SELECT table_name
		FROM information_schema.tables
		WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		ORDER BY table_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get tables: %w", err)
	}
	return tables, nil
}

// GetTableSchema retrieves the schema for a specific table
func (p *Postgres) GetTableSchema(ctx context.Context, tableName string) (*schema.TableSchema, error) {
	// Get columns
	columns, err := p.getColumns(ctx, tableName)
	if err != nil {
		return nil, err
	}
	// Get indexes
	indexes, err := p.getIndexes(ctx, tableName)
	if err != nil {
		return nil, err
	}
	// Get foreign keys
	foreignKeys, err := p.getForeignKeys(ctx, tableName)
	if err != nil {
		return nil, err
	}

	t := &schema.TableSchema{Name: tableName, Columns: columns, Indexes: indexes, ForeignKeys: foreignKeys}
	t.Sort()
	return t, nil
}

func (p *Postgres) getColumns(ctx context.Context, tableName string) ([]schema.Column, error) {
	query := `
		SELECT column_name, data_type, is_nullable, column_default, ordinal_position
		FROM information_schema.columns
		WHERE table_schema = 'public' AND table_name = $1
		ORDER BY ordinal_position
	`
	rows, err := p.db.QueryContext(ctx, query, tableName)
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
		)
		if err := rows.Scan(&col.Name, &col.Type, &nullable, &defaultValue, &col.Position); err != nil {
			return nil, fmt.Errorf("failed to scan column: %w", err)
		}
		col.Nullable = nullable == "YES"
		// serial columns default to nextval of their sequence
		if strings.Contains(strings.ToLower(defaultValue.String), "nextval") {
			col.AutoIncrement = true
		} else if defaultValue.Valid {
			col.DefaultValue = &defaultValue.String
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (p *Postgres) getIndexes(ctx context.Context, tableName string) ([]schema.Index, error) {
	query := `
		SELECT i.relname, a.attname, ix.indisunique, ix.indisprimary, am.amname
		FROM pg_class t
		JOIN pg_namespace n ON n.oid = t.relnamespace
		JOIN pg_index ix ON t.oid = ix.indrelid
		JOIN pg_class i ON i.oid = ix.indexrelid
		JOIN pg_am am ON am.oid = i.relam
		JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS k(attnum, ord) ON true
		JOIN pg_attribute a ON a.attrelid = t.oid AND a.attnum = k.attnum
		WHERE n.nspname = 'public' AND t.relname = $1 AND t.relkind = 'r'
		ORDER BY i.relname, k.ord
	`
	rows, err := p.db.QueryContext(ctx, query, tableName)
	if err != nil {
		return nil, fmt.Errorf("failed to get indexes: %w", err)
	}
	defer rows.Close()

	var entries []indexEntry
	for rows.Next() {
		var e indexEntry
		if err := rows.Scan(&e.name, &e.column, &e.unique, &e.primary, &e.kind); err != nil {
			return nil, fmt.Errorf("failed to scan index: %w", err)
		}
		e.kind = strings.ToUpper(e.kind)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read indexes: %w", err)
	}
	return groupIndexes(entries), nil
}

func (p *Postgres) getForeignKeys(ctx context.Context, tableName string) ([]schema.ForeignKey, error) {
	query := `
		SELECT tc.constraint_name, kcu.column_name, ccu.table_name, ccu.column_name,
			rc.delete_rule, rc.update_rule
		FROM information_schema.table_constraints tc
		JOIN information_schema.key_column_usage kcu
			ON tc.constraint_name = kcu.constraint_name AND tc.table_schema = kcu.table_schema
		JOIN information_schema.constraint_column_usage ccu
			ON ccu.constraint_name = tc.constraint_name AND ccu.table_schema = tc.table_schema
		JOIN information_schema.referential_constraints rc
			ON rc.constraint_name = tc.constraint_name AND rc.constraint_schema = tc.table_schema
		WHERE tc.constraint_type = 'FOREIGN KEY' AND tc.table_schema = 'public' AND tc.table_name = $1
		ORDER BY tc.constraint_name
	`
	rows, err := p.db.QueryContext(ctx, query, tableName)
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
func (p *Postgres) GetTableData(ctx context.Context, tableName string, limit int) ([]schema.Row, error) {
	return p.queryRows(ctx, limitClause("SELECT * FROM "+pq.QuoteIdentifier(tableName), limit))
}
