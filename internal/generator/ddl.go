package generator

import (
	"strconv"
	"strings"

	"github.com/koba/db-changelog/changelog"
	"github.com/koba/db-changelog/internal/diff"
	"github.com/koba/db-changelog/internal/schema"
)

// createTable adds the table with its primary key and secondary indexes.
// A single-column primary key becomes a column constraint.
func (g *Generator) createTable(set *changeSet, t *schema.TableSchema) {
	pk := t.PrimaryKey()
	ct := &changelog.CreateTable{TableName: t.Name}
	for i := range t.Columns {
		col := columnDefinition(&t.Columns[i])
		if len(pk) == 1 && pk[0] == col.Name {
			if col.Constraints == nil {
				col.Constraints = &changelog.Constraints{}
			}
			col.Constraints.PrimaryKey = changelog.Bool(true)
		}
		ct.Columns = append(ct.Columns, col)
	}
	set.add(ct, &changelog.DropTable{TableName: t.Name})

	if len(pk) > 1 {
		set.add(addPrimaryKey(t.Name, pk))
	}
	for i := range t.Indexes {
		if !t.Indexes[i].Primary {
			set.add(createIndex(t.Name, &t.Indexes[i]))
		}
	}
}

// dropTable drops the table. The rollback recreates it with its indexes and foreign keys.
func (g *Generator) dropTable(set *changeSet, t *schema.TableSchema) {
	recreate := &changeSet{}
	g.createTable(recreate, t)
	for i := range t.ForeignKeys {
		recreate.add(addForeignKey(t.Name, &t.ForeignKeys[i]))
	}
	set.changes = append(set.changes, &changelog.DropTable{TableName: t.Name, CascadeConstraints: changelog.Bool(true)})
	set.rollback = append(set.rollback, recreate.changes...)
}

func (g *Generator) addForeignKeys(t *schema.TableSchema) *changeSet {
	set := &changeSet{}
	for i := range t.ForeignKeys {
		fk := &t.ForeignKeys[i]
		set.add(addForeignKey(t.Name, fk), dropForeignKey(t.Name, fk))
	}
	return set
}

// modifyTable drops changed constraints before touching columns and recreates them after
func (g *Generator) modifyTable(set *changeSet, d *diff.SchemaDiff) {
	table := d.TableName

	for _, c := range d.ForeignKeyChanges {
		if c.Action == diff.ActionDrop || c.Action == diff.ActionModify {
			set.add(dropForeignKey(table, c.OldForeignKey), addForeignKey(table, c.OldForeignKey))
		}
	}
	for _, c := range d.IndexChanges {
		if c.Action != diff.ActionDrop && c.Action != diff.ActionModify {
			continue
		}
		if c.OldIndex.Primary {
			set.add(&changelog.DropPrimaryKey{TableName: table}, addPrimaryKey(table, c.OldIndex.Columns))
		} else {
			set.add(&changelog.DropIndex{TableName: table, IndexName: c.OldIndex.Name}, createIndex(table, c.OldIndex))
		}
	}

	for _, c := range d.ColumnChanges {
		switch c.Action {
		case diff.ActionAdd:
			set.add(
				&changelog.AddColumn{TableName: table, Columns: []changelog.Column{columnDefinition(c.NewColumn)}},
				&changelog.DropColumn{TableName: table, ColumnName: c.ColumnName},
			)
		case diff.ActionDrop:
			set.add(
				&changelog.DropColumn{TableName: table, ColumnName: c.ColumnName},
				&changelog.AddColumn{TableName: table, Columns: []changelog.Column{columnDefinition(c.OldColumn)}},
			)
		case diff.ActionModify:
			g.modifyColumn(set, table, c)
		}
	}

	for _, c := range d.IndexChanges {
		if c.Action != diff.ActionAdd && c.Action != diff.ActionModify {
			continue
		}
		if c.NewIndex.Primary {
			set.add(addPrimaryKey(table, c.NewIndex.Columns), &changelog.DropPrimaryKey{TableName: table})
		} else {
			set.add(createIndex(table, c.NewIndex), &changelog.DropIndex{TableName: table, IndexName: c.NewIndex.Name})
		}
	}
	for _, c := range d.ForeignKeyChanges {
		if c.Action == diff.ActionAdd || c.Action == diff.ActionModify {
			set.add(addForeignKey(table, c.NewForeignKey), dropForeignKey(table, c.NewForeignKey))
		}
	}
}

func (g *Generator) modifyColumn(set *changeSet, table string, c diff.ColumnChange) {
	oldCol, newCol := c.OldColumn, c.NewColumn

	if c.TypeChanged() {
		set.add(
			&changelog.ModifyDataType{TableName: table, ColumnName: c.ColumnName, NewDataType: newCol.Type},
			&changelog.ModifyDataType{TableName: table, ColumnName: c.ColumnName, NewDataType: oldCol.Type},
		)
	}
	if c.NullableChanged() {
		addNotNull := &changelog.AddNotNullConstraint{TableName: table, ColumnName: c.ColumnName, ColumnDataType: newCol.Type}
		dropNotNull := &changelog.DropNotNullConstraint{TableName: table, ColumnName: c.ColumnName, ColumnDataType: newCol.Type}
		if newCol.Nullable {
			set.add(dropNotNull, addNotNull)
		} else {
			set.add(addNotNull, dropNotNull)
		}
	}
	if c.DefaultChanged() {
		dropDefault := func(dataType string) changelog.Change {
			return &changelog.DropDefaultValue{TableName: table, ColumnName: c.ColumnName, ColumnDataType: dataType}
		}
		switch {
		case newCol.DefaultValue == nil:
			set.add(dropDefault(newCol.Type), addDefault(table, oldCol))
		case oldCol.DefaultValue == nil:
			set.add(addDefault(table, newCol), dropDefault(oldCol.Type))
		default:
			set.add(addDefault(table, newCol), addDefault(table, oldCol))
		}
	}
}

func columnDefinition(col *schema.Column) changelog.Column {
	c := changelog.Column{Name: col.Name, Type: col.Type}
	if col.AutoIncrement {
		c.AutoIncrement = changelog.Bool(true)
	} else if col.DefaultValue != nil {
		d := parseDefault(*col.DefaultValue)
		c.DefaultValue, c.DefaultValueNumeric, c.DefaultValueBoolean, c.DefaultValueComputed = d.value, d.numeric, d.boolean, d.computed
	}
	if !col.Nullable {
		c.Constraints = &changelog.Constraints{Nullable: changelog.Bool(false)}
	}
	return c
}

func addDefault(table string, col *schema.Column) changelog.Change {
	d := parseDefault(*col.DefaultValue)
	return &changelog.AddDefaultValue{
		TableName:            table,
		ColumnName:           col.Name,
		ColumnDataType:       col.Type,
		DefaultValue:         d.value,
		DefaultValueNumeric:  d.numeric,
		DefaultValueBoolean:  d.boolean,
		DefaultValueComputed: d.computed,
	}
}

func addPrimaryKey(table string, columns []string) changelog.Change {
	return &changelog.AddPrimaryKey{TableName: table, ColumnNames: strings.Join(columns, ", ")}
}

func createIndex(table string, idx *schema.Index) changelog.Change {
	ci := &changelog.CreateIndex{TableName: table, IndexName: idx.Name}
	if idx.Unique {
		ci.Unique = changelog.Bool(true)
	}
	for _, col := range idx.Columns {
		ci.Columns = append(ci.Columns, changelog.Column{Name: col})
	}
	return ci
}

// referential actions accepted by addForeignKeyConstraint. NO ACTION is the default and left out.
var fkActions = map[string]bool{"CASCADE": true, "SET NULL": true, "SET DEFAULT": true, "RESTRICT": true}

func fkAction(action string) string {
	action = strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(action), "_", " "))
	if fkActions[action] {
		return action
	}
	return ""
}

func addForeignKey(table string, fk *schema.ForeignKey) changelog.Change {
	return &changelog.AddForeignKeyConstraint{
		ConstraintName:        fk.Name,
		BaseTableName:         table,
		BaseColumnNames:       fk.Column,
		ReferencedTableName:   fk.ReferencedTable,
		ReferencedColumnNames: fk.ReferencedColumn,
		OnDelete:              fkAction(fk.OnDelete),
		OnUpdate:              fkAction(fk.OnUpdate),
	}
}

func dropForeignKey(table string, fk *schema.ForeignKey) changelog.Change {
	return &changelog.DropForeignKeyConstraint{BaseTableName: table, ConstraintName: fk.Name}
}

// defaultValue is a column default split into the typed forms of a changelog column
type defaultValue struct {
	value    string
	numeric  string
	boolean  *bool
	computed string
}

// parseDefault classifies a default as reported by the database. Quoted literals,
// with an optional PostgreSQL cast, are strings. Anything that is not a number,
// a boolean or NULL is an expression.
func parseDefault(raw string) defaultValue {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "'") {
		if end := strings.LastIndex(s, "'"); end > 0 && (end == len(s)-1 || strings.HasPrefix(s[end+1:], "::")) {
			return defaultValue{value: strings.ReplaceAll(s[1:end], "''", "'")}
		}
	}
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		if inner := parseDefault(s[1 : len(s)-1]); inner.computed == "" {
			return inner
		}
	}
	switch strings.ToUpper(s) {
	case "TRUE":
		return defaultValue{boolean: changelog.Bool(true)}
	case "FALSE":
		return defaultValue{boolean: changelog.Bool(false)}
	case "NULL":
		return defaultValue{computed: "NULL"}
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil && strings.ContainsAny(s[:1], "+-.0123456789") {
		return defaultValue{numeric: s}
	}
	return defaultValue{computed: s}
}
