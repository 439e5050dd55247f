// Package diff compares two snapshots table by table.
package diff

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/koba/db-changelog/internal/snapshot"
)

// Result holds the complete comparison result, ordered by table name
type Result struct {
	SchemaDiffs []*SchemaDiff
	DataDiffs   []*DataDiff
}

// Empty reports whether the snapshots were equal
func (r *Result) Empty() bool {
	return len(r.SchemaDiffs) == 0 && len(r.DataDiffs) == 0
}

// Tables returns the names of all tables with differences in sorted order
func (r *Result) Tables() []string {
	seen := make(map[string]bool)
	var names []string
	for _, d := range r.SchemaDiffs {
		if !seen[d.TableName] {
			seen[d.TableName] = true
			names = append(names, d.TableName)
		}
	}
	for _, d := range r.DataDiffs {
		if !seen[d.TableName] {
			seen[d.TableName] = true
			names = append(names, d.TableName)
		}
	}
	sort.Strings(names)
	return names
}

// SchemaDiff returns the schema differences of a table, or nil
func (r *Result) SchemaDiff(table string) *SchemaDiff {
	for _, d := range r.SchemaDiffs {
		if d.TableName == table {
			return d
		}
	}
	return nil
}

// DataDiff returns the data differences of a table, or nil
func (r *Result) DataDiff(table string) *DataDiff {
	for _, d := range r.DataDiffs {
		if d.TableName == table {
			return d
		}
	}
	return nil
}

// Compare compares two snapshots and returns the differences.
// Data of added and dropped tables is not compared.
func Compare(snap1, snap2 *snapshot.Snapshot) *Result {
	result := &Result{}

	// Find all unique table names
	tableNames := make(map[string]bool)
	for name := range snap1.Tables {
		tableNames[name] = true
	}
	for name := range snap2.Tables {
		tableNames[name] = true
	}
	names := make([]string, 0, len(tableNames))
	for name := range tableNames {
		names = append(names, name)
	}
	sort.Strings(names)

	// Compare each table
	for _, tableName := range names {
		table1, exists1 := snap1.Tables[tableName]
		table2, exists2 := snap2.Tables[tableName]

		// Table added in snapshot2
		if !exists1 {
			result.SchemaDiffs = append(result.SchemaDiffs, &SchemaDiff{
				TableName: tableName,
				Action:    ActionAdd,
				NewSchema: &table2.Schema,
			})
			continue
		}
		// Table removed in snapshot2
		if !exists2 {
			result.SchemaDiffs = append(result.SchemaDiffs, &SchemaDiff{
				TableName: tableName,
				Action:    ActionDrop,
				OldSchema: &table1.Schema,
			})
			continue
		}

		// Table exists in both snapshots
		if schemaDiff := compareSchemas(&table1.Schema, &table2.Schema); schemaDiff != nil {
			result.SchemaDiffs = append(result.SchemaDiffs, schemaDiff)
		}
		if dataDiff := compareData(tableName, table1.Data, table2.Data, &table2.Schema); dataDiff != nil {
			result.DataDiffs = append(result.DataDiffs, dataDiff)
		}
	}

	return result
}

// Display writes the diff result in a human-readable format
func Display(w io.Writer, result *Result) error {
	var b strings.Builder
	if result.Empty() {
		b.WriteString("No differences found.\n")
	}

	// Display schema differences
	if len(result.SchemaDiffs) > 0 {
		b.WriteString("=== Schema Differences ===\n\n")
		for _, schemaDiff := range result.SchemaDiffs {
			displaySchemaDiff(&b, schemaDiff)
		}
	}

	// Display data differences
	if len(result.DataDiffs) > 0 {
		if len(result.SchemaDiffs) > 0 {
			b.WriteString("\n")
		}
		b.WriteString("=== Data Differences ===\n\n")
		for _, dataDiff := range result.DataDiffs {
			displayDataDiff(&b, dataDiff)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func displaySchemaDiff(b *strings.Builder, diff *SchemaDiff) {
	fmt.Fprintf(b, "Table: %s\n", diff.TableName)

	switch diff.Action {
	case ActionAdd:
		fmt.Fprintf(b, "  Action: ADD (new table)\n")
		fmt.Fprintf(b, "  Columns: %d\n", len(diff.NewSchema.Columns))
	case ActionDrop:
		fmt.Fprintf(b, "  Action: DROP (removed table)\n")
	case ActionModify:
		fmt.Fprintf(b, "  Action: MODIFY\n")
		if len(diff.ColumnChanges) > 0 {
			fmt.Fprintf(b, "  Column changes:\n")
			for _, change := range diff.ColumnChanges {
				fmt.Fprintf(b, "    - %s: %s", change.ColumnName, change.Action)
				if details := change.Details(); len(details) > 0 {
					fmt.Fprintf(b, " (%s)", strings.Join(details, ", "))
				}
				b.WriteString("\n")
			}
		}
		if len(diff.IndexChanges) > 0 {
			fmt.Fprintf(b, "  Index changes:\n")
			for _, change := range diff.IndexChanges {
				fmt.Fprintf(b, "    - %s: %s\n", change.IndexName, change.Action)
			}
		}
		if len(diff.ForeignKeyChanges) > 0 {
			fmt.Fprintf(b, "  Foreign key changes:\n")
			for _, change := range diff.ForeignKeyChanges {
				fmt.Fprintf(b, "    - %s: %s\n", change.FKName, change.Action)
			}
		}
	}
	b.WriteString("\n")
}

func displayDataDiff(b *strings.Builder, diff *DataDiff) {
	fmt.Fprintf(b, "Table: %s\n", diff.TableName)
	fmt.Fprintf(b, "  Rows added: %d\n", len(diff.RowsAdded))
	fmt.Fprintf(b, "  Rows deleted: %d\n", len(diff.RowsDeleted))
	fmt.Fprintf(b, "  Rows modified: %d\n", len(diff.RowsModified))
	b.WriteString("\n")
}
