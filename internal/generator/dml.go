package generator

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/koba/db-changelog/changelog"
	"github.com/koba/db-changelog/internal/diff"
	"github.com/koba/db-changelog/internal/schema"
)

// modifyData deletes removed rows, inserts added rows and updates modified ones.
// Rows are matched by primary key, or by every column for tables without one.
func (g *Generator) modifyData(d *diff.DataDiff) *changeSet {
	set := &changeSet{}
	table := d.TableName

	for _, row := range d.RowsDeleted {
		set.add(
			&changelog.Delete{TableName: table, Where: g.whereClause(row, d.PrimaryKey)},
			insert(table, row),
		)
	}
	for _, row := range d.RowsAdded {
		set.add(
			insert(table, row),
			&changelog.Delete{TableName: table, Where: g.whereClause(row, d.PrimaryKey)},
		)
	}
	for _, mod := range d.RowsModified {
		cols := mod.ChangedColumns()
		if len(cols) == 0 {
			continue
		}
		set.add(
			&changelog.Update{TableName: table, Columns: values(mod.NewRow, cols), Where: g.whereClause(mod.OldRow, d.PrimaryKey)},
			&changelog.Update{TableName: table, Columns: values(mod.OldRow, cols), Where: g.whereClause(mod.NewRow, d.PrimaryKey)},
		)
	}
	return set
}

func insert(table string, row schema.Row) changelog.Change {
	return &changelog.Insert{TableName: table, Columns: values(row, row.Columns())}
}

// values returns the named columns of a row as changelog column values
func values(row schema.Row, cols []string) []changelog.Column {
	out := make([]changelog.Column, 0, len(cols))
	for _, name := range cols {
		c := changelog.Column{Name: name}
		switch v := row[name].(type) {
		case nil:
			c.ValueComputed = "NULL"
		case string:
			c.Value = v
			if v == "" {
				c.ValueComputed = "''"
			}
		case bool:
			c.ValueBoolean = changelog.Bool(v)
		case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
			c.ValueNumeric = formatNumber(v)
		case []byte:
			c.Value = string(v)
		default:
			c.Value = fmt.Sprintf("%v", v)
		}
		out = append(out, c)
	}
	return out
}

// whereClause matches a row by the key columns, or by all of its columns when there is no key
func (g *Generator) whereClause(row schema.Row, key []string) string {
	if len(key) == 0 {
		key = row.Columns()
	}
	conditions := make([]string, 0, len(key))
	for _, col := range key {
		val := row[col]
		if val == nil {
			conditions = append(conditions, fmt.Sprintf("%s IS NULL", g.quoteIdentifier(col)))
		} else {
			conditions = append(conditions, fmt.Sprintf("%s = %s", g.quoteIdentifier(col), formatValue(val)))
		}
	}
	return strings.Join(conditions, " AND ")
}

func formatValue(val any) string {
	switch v := val.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(v, "'", "''") + "'"
	case []byte:
		return "'" + strings.ReplaceAll(string(v), "'", "''") + "'"
	case float32, float64, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return formatNumber(v)
	case bool:
		if v {
			return "TRUE"
		}
		return "FALSE"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprintf("%v", v), "'", "''") + "'"
	}
}

// formatNumber prints floats without exponent or trailing zeros, so 1 stays 1
func formatNumber(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func (g *Generator) quoteIdentifier(name string) string {
	switch g.dbType {
	case "mysql":
		return "`" + strings.ReplaceAll(name, "`", "``") + "`"
	default:
		return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
	}
}
