// Package schema is the introspected model of database tables that snapshots store
// and changelogs are generated from.
package schema

import "sort"

// Column is a table column as reported by the database
type Column struct {
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	Nullable      bool    `json:"nullable"`
	DefaultValue  *string `json:"default_value,omitempty"`
	AutoIncrement bool    `json:"auto_increment"`
	Position      int     `json:"position"`
}

// Index is a table index. The primary key is reported as an index with Primary set.
type Index struct {
	Name    string   `json:"name"`
	Columns []string `json:"columns"`
	Unique  bool     `json:"unique"`
	Primary bool     `json:"primary"`
	Type    string   `json:"type"`
}

// ForeignKey is a single-column foreign key constraint
type ForeignKey struct {
	Name             string `json:"name"`
	Column           string `json:"column"`
	ReferencedTable  string `json:"referenced_table"`
	ReferencedColumn string `json:"referenced_column"`
	OnDelete         string `json:"on_delete"`
	OnUpdate         string `json:"on_update"`
}

// TableSchema is the structure of one table
type TableSchema struct {
	Name        string       `json:"name"`
	Columns     []Column     `json:"columns"`
	Indexes     []Index      `json:"indexes"`
	ForeignKeys []ForeignKey `json:"foreign_keys"`
}

// PrimaryKey returns the primary key columns, or nil if the table has none
func (t *TableSchema) PrimaryKey() []string {
	for _, idx := range t.Indexes {
		if idx.Primary {
			return idx.Columns
		}
	}
	return nil
}

// Column returns the named column
func (t *TableSchema) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Sort orders columns by position and indexes and foreign keys by name,
// so that schemas read from different drivers compare equal.
func (t *TableSchema) Sort() {
	sort.SliceStable(t.Columns, func(i, j int) bool { return t.Columns[i].Position < t.Columns[j].Position })
	sort.Slice(t.Indexes, func(i, j int) bool { return t.Indexes[i].Name < t.Indexes[j].Name })
	sort.Slice(t.ForeignKeys, func(i, j int) bool { return t.ForeignKeys[i].Name < t.ForeignKeys[j].Name })
}

// Row is one row of table data keyed by column name
type Row map[string]any

// Columns returns the column names of the row in sorted order
func (r Row) Columns() []string {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	return cols
}

// Table is a table schema with its data
type Table struct {
	Schema TableSchema
	Data   []Row
}
