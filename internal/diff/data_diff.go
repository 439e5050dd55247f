package diff

import (
	"encoding/json"
	"fmt"

	"github.com/koba/db-changelog/internal/schema"
)

// DataDiff represents data differences for a table
type DataDiff struct {
	TableName string
	// PrimaryKey is empty for tables without one. Rows of such tables are
	// compared whole and never reported as modified.
	PrimaryKey   []string
	RowsAdded    []schema.Row
	RowsDeleted  []schema.Row
	RowsModified []RowModification
}

// RowModification represents a modified row
type RowModification struct {
	OldRow schema.Row
	NewRow schema.Row
}

// ChangedColumns returns the columns whose values differ, in sorted order
func (m RowModification) ChangedColumns() []string {
	var cols []string
	for _, col := range m.NewRow.Columns() {
		old, exists := m.OldRow[col]
		if !exists || encode(old) != encode(m.NewRow[col]) {
			cols = append(cols, col)
		}
	}
	return cols
}

// compareData returns nil when the data is equal. Added and modified rows follow
// the new data, deleted rows the old data.
func compareData(tableName string, oldData, newData []schema.Row, tableSchema *schema.TableSchema) *DataDiff {
	diff := &DataDiff{
		TableName:  tableName,
		PrimaryKey: tableSchema.PrimaryKey(),
	}

	// No primary key, compare whole rows
	if len(diff.PrimaryKey) == 0 {
		compareRowSets(diff, oldData, newData)
	} else {
		// Index old rows by primary key
		oldRows := make(map[string]schema.Row, len(oldData))
		for _, row := range oldData {
			oldRows[rowKey(row, diff.PrimaryKey)] = row
		}
		// Find added and modified rows
		newKeys := make(map[string]bool, len(newData))
		for _, row := range newData {
			key := rowKey(row, diff.PrimaryKey)
			newKeys[key] = true
			oldRow, exists := oldRows[key]
			switch {
			case !exists:
				diff.RowsAdded = append(diff.RowsAdded, row)
			case !rowsEqual(oldRow, row):
				diff.RowsModified = append(diff.RowsModified, RowModification{OldRow: oldRow, NewRow: row})
			}
		}
		// Find deleted rows
		for _, row := range oldData {
			if !newKeys[rowKey(row, diff.PrimaryKey)] {
				diff.RowsDeleted = append(diff.RowsDeleted, row)
			}
		}
	}

	// Return nil if no changes
	if len(diff.RowsAdded) == 0 && len(diff.RowsDeleted) == 0 && len(diff.RowsModified) == 0 {
		return nil
	}
	return diff
}

// compareRowSets matches whole rows, counting duplicates
func compareRowSets(diff *DataDiff, oldData, newData []schema.Row) {
	counts := make(map[string]int, len(oldData))
	for _, row := range oldData {
		counts[encode(row)]++
	}
	for _, row := range newData {
		key := encode(row)
		if counts[key] > 0 {
			counts[key]--
			continue
		}
		diff.RowsAdded = append(diff.RowsAdded, row)
	}
	for _, row := range oldData {
		key := encode(row)
		if counts[key] > 0 {
			counts[key]--
			diff.RowsDeleted = append(diff.RowsDeleted, row)
		}
	}
}

// rowKey generates a unique key for a row based on primary key columns
func rowKey(row schema.Row, pkColumns []string) string {
	keyParts := make([]any, len(pkColumns))
	for i, col := range pkColumns {
		keyParts[i] = row[col]
	}
	return encode(keyParts)
}

// encode is a canonical form of a value. JSON sorts map keys.
func encode(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func rowsEqual(a, b schema.Row) bool {
	if len(a) != len(b) {
		return false
	}
	for key, valA := range a {
		valB, exists := b[key]
		if !exists || encode(valA) != encode(valB) {
			return false
		}
	}
	return true
}
