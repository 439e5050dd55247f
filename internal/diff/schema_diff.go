package diff

import (
	"fmt"
	"slices"

	"github.com/koba/db-changelog/internal/schema"
)

// Action represents the type of change
type Action string

const (
	ActionAdd    Action = "ADD"
	ActionDrop   Action = "DROP"
	ActionModify Action = "MODIFY"
)

// SchemaDiff represents schema differences for a table
type SchemaDiff struct {
	TableName         string
	Action            Action
	OldSchema         *schema.TableSchema
	NewSchema         *schema.TableSchema
	ColumnChanges     []ColumnChange
	IndexChanges      []IndexChange
	ForeignKeyChanges []ForeignKeyChange
}

// ColumnChange represents a change to a column
type ColumnChange struct {
	ColumnName string
	Action     Action
	OldColumn  *schema.Column
	NewColumn  *schema.Column
}

// TypeChanged reports whether a modified column changed its data type
func (c ColumnChange) TypeChanged() bool {
	return c.Action == ActionModify && c.OldColumn.Type != c.NewColumn.Type
}

// NullableChanged reports whether a modified column changed its nullability
func (c ColumnChange) NullableChanged() bool {
	return c.Action == ActionModify && c.OldColumn.Nullable != c.NewColumn.Nullable
}

// DefaultChanged reports whether a modified column changed its default value
func (c ColumnChange) DefaultChanged() bool {
	return c.Action == ActionModify && !sameDefault(c.OldColumn.DefaultValue, c.NewColumn.DefaultValue)
}

// Details describes what changed in a modified column
func (c ColumnChange) Details() []string {
	if c.Action != ActionModify {
		return nil
	}
	var details []string
	if c.TypeChanged() {
		details = append(details, fmt.Sprintf("type %s -> %s", c.OldColumn.Type, c.NewColumn.Type))
	}
	if c.NullableChanged() {
		details = append(details, fmt.Sprintf("nullable %t -> %t", c.OldColumn.Nullable, c.NewColumn.Nullable))
	}
	if c.DefaultChanged() {
		details = append(details, fmt.Sprintf("default %s -> %s", defaultText(c.OldColumn.DefaultValue), defaultText(c.NewColumn.DefaultValue)))
	}
	if c.OldColumn.AutoIncrement != c.NewColumn.AutoIncrement {
		details = append(details, fmt.Sprintf("auto increment %t -> %t", c.OldColumn.AutoIncrement, c.NewColumn.AutoIncrement))
	}
	return details
}

func defaultText(v *string) string {
	if v == nil {
		return "none"
	}
	return *v
}

// IndexChange represents a change to an index
type IndexChange struct {
	IndexName string
	Action    Action
	OldIndex  *schema.Index
	NewIndex  *schema.Index
}

// ForeignKeyChange represents a change to a foreign key
type ForeignKeyChange struct {
	FKName        string
	Action        Action
	OldForeignKey *schema.ForeignKey
	NewForeignKey *schema.ForeignKey
}

// compareSchemas returns nil when the schemas are equal. Changes follow the order
// of the new schema, followed by drops in the order of the old one.
func compareSchemas(old, new *schema.TableSchema) *SchemaDiff {
	diff := &SchemaDiff{
		TableName: new.Name,
		Action:    ActionModify,
		OldSchema: old,
		NewSchema: new,
	}

	// Find added and modified columns
	for i := range new.Columns {
		newCol := &new.Columns[i]
		oldCol, exists := old.Column(newCol.Name)
		switch {
		case !exists:
			diff.ColumnChanges = append(diff.ColumnChanges, ColumnChange{ColumnName: newCol.Name, Action: ActionAdd, NewColumn: newCol})
		case !columnsEqual(oldCol, newCol):
			diff.ColumnChanges = append(diff.ColumnChanges, ColumnChange{ColumnName: newCol.Name, Action: ActionModify, OldColumn: oldCol, NewColumn: newCol})
		}
	}
	// Find dropped columns
	for i := range old.Columns {
		if _, exists := new.Column(old.Columns[i].Name); !exists {
			diff.ColumnChanges = append(diff.ColumnChanges, ColumnChange{ColumnName: old.Columns[i].Name, Action: ActionDrop, OldColumn: &old.Columns[i]})
		}
	}

	// Compare indexes
	oldIndexes := indexByName(old.Indexes)
	newIndexes := indexByName(new.Indexes)
	for i := range new.Indexes {
		newIdx := &new.Indexes[i]
		oldIdx, exists := oldIndexes[newIdx.Name]
		switch {
		case !exists:
			diff.IndexChanges = append(diff.IndexChanges, IndexChange{IndexName: newIdx.Name, Action: ActionAdd, NewIndex: newIdx})
		case !indexesEqual(oldIdx, newIdx):
			diff.IndexChanges = append(diff.IndexChanges, IndexChange{IndexName: newIdx.Name, Action: ActionModify, OldIndex: oldIdx, NewIndex: newIdx})
		}
	}
	for i := range old.Indexes {
		if _, exists := newIndexes[old.Indexes[i].Name]; !exists {
			diff.IndexChanges = append(diff.IndexChanges, IndexChange{IndexName: old.Indexes[i].Name, Action: ActionDrop, OldIndex: &old.Indexes[i]})
		}
	}

	// Compare foreign keys
	oldFKs := foreignKeyByName(old.ForeignKeys)
	newFKs := foreignKeyByName(new.ForeignKeys)
	for i := range new.ForeignKeys {
		newFK := &new.ForeignKeys[i]
		oldFK, exists := oldFKs[newFK.Name]
		switch {
		case !exists:
			diff.ForeignKeyChanges = append(diff.ForeignKeyChanges, ForeignKeyChange{FKName: newFK.Name, Action: ActionAdd, NewForeignKey: newFK})
		case *oldFK != *newFK:
			diff.ForeignKeyChanges = append(diff.ForeignKeyChanges, ForeignKeyChange{FKName: newFK.Name, Action: ActionModify, OldForeignKey: oldFK, NewForeignKey: newFK})
		}
	}
	for i := range old.ForeignKeys {
		if _, exists := newFKs[old.ForeignKeys[i].Name]; !exists {
			diff.ForeignKeyChanges = append(diff.ForeignKeyChanges, ForeignKeyChange{FKName: old.ForeignKeys[i].Name, Action: ActionDrop, OldForeignKey: &old.ForeignKeys[i]})
		}
	}

	// Return nil if no changes
	if len(diff.ColumnChanges) == 0 && len(diff.IndexChanges) == 0 && len(diff.ForeignKeyChanges) == 0 {
		return nil
	}
	return diff
}

func indexByName(indexes []schema.Index) map[string]*schema.Index {
	m := make(map[string]*schema.Index, len(indexes))
	for i := range indexes {
		m[indexes[i].Name] = &indexes[i]
	}
	return m
}

func foreignKeyByName(fks []schema.ForeignKey) map[string]*schema.ForeignKey {
	m := make(map[string]*schema.ForeignKey, len(fks))
	for i := range fks {
		m[fks[i].Name] = &fks[i]
	}
	return m
}

// Position is not compared, a column that only moved is unchanged
func columnsEqual(a, b *schema.Column) bool {
	return a.Name == b.Name &&
		a.Type == b.Type &&
		a.Nullable == b.Nullable &&
		a.AutoIncrement == b.AutoIncrement &&
		sameDefault(a.DefaultValue, b.DefaultValue)
}

func sameDefault(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func indexesEqual(a, b *schema.Index) bool {
	return a.Name == b.Name &&
		a.Unique == b.Unique &&
		a.Primary == b.Primary &&
		slices.Equal(a.Columns, b.Columns)
}
