package diff

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/koba/db-changelog/internal/schema"
	"github.com/koba/db-changelog/internal/snapshot"
)

func str(s string) *string { return &s }

func employeeSchema() schema.TableSchema {
	return schema.TableSchema{
		Name: "employee",
		Columns: []schema.Column{
			{Name: "id", Type: "INTEGER", Position: 1, AutoIncrement: true},
			{Name: "name", Type: "VARCHAR(50)", Position: 2},
			{Name: "dept", Type: "VARCHAR(10)", Nullable: true, Position: 3},
		},
		Indexes: []schema.Index{
			{Name: "PRIMARY", Columns: []string{"id"}, Unique: true, Primary: true},
			{Name: "idx_dept", Columns: []string{"dept"}},
		},
		ForeignKeys: []schema.ForeignKey{
			{Name: "fk_dept", Column: "dept", ReferencedTable: "dept", ReferencedColumn: "code"},
		},
	}
}

func snap(tables ...*schema.Table) *snapshot.Snapshot {
	s := &snapshot.Snapshot{Metadata: map[string]string{}, Tables: map[string]*schema.Table{}}
	for _, t := range tables {
		s.Tables[t.Schema.Name] = t
	}
	return s
}

func TestCompareTables(t *testing.T) {
	old := snap(
		&schema.Table{Schema: employeeSchema()},
		&schema.Table{Schema: schema.TableSchema{Name: "legacy"}},
	)
	changed := employeeSchema()
	changed.Columns[1].Type = "VARCHAR(100)"
	changed.Columns[1].DefaultValue = str("'x'")
	changed.Columns = append(changed.Columns[:2], schema.Column{Name: "email", Type: "TEXT", Position: 3})
	changed.Indexes[1] = schema.Index{Name: "idx_email", Columns: []string{"email"}, Unique: true}
	changed.ForeignKeys[0].OnDelete = "CASCADE"
	new := snap(
		&schema.Table{Schema: changed},
		&schema.Table{Schema: schema.TableSchema{Name: "audit"}},
	)

	result := Compare(old, new)

	var tables []string
	for _, d := range result.SchemaDiffs {
		tables = append(tables, d.TableName+":"+string(d.Action))
	}
	if want := []string{"audit:ADD", "employee:MODIFY", "legacy:DROP"}; !reflect.DeepEqual(tables, want) {
		t.Fatalf("got %v, want %v", tables, want)
	}

	emp := result.SchemaDiff("employee")
	var cols []string
	for _, c := range emp.ColumnChanges {
		cols = append(cols, c.ColumnName+":"+string(c.Action))
	}
	if want := []string{"name:MODIFY", "email:ADD", "dept:DROP"}; !reflect.DeepEqual(cols, want) {
		t.Fatalf("got columns %v, want %v", cols, want)
	}
	name := emp.ColumnChanges[0]
	if !name.TypeChanged() || !name.DefaultChanged() || name.NullableChanged() {
		t.Fatalf("got change %+v", name)
	}
	if want := []string{"type VARCHAR(50) -> VARCHAR(100)", "default none -> 'x'"}; !reflect.DeepEqual(name.Details(), want) {
		t.Fatalf("got details %v", name.Details())
	}

	var idx []string
	for _, c := range emp.IndexChanges {
		idx = append(idx, c.IndexName+":"+string(c.Action))
	}
	if want := []string{"idx_email:ADD", "idx_dept:DROP"}; !reflect.DeepEqual(idx, want) {
		t.Fatalf("got indexes %v, want %v", idx, want)
	}
	if len(emp.ForeignKeyChanges) != 1 || emp.ForeignKeyChanges[0].Action != ActionModify {
		t.Fatalf("got foreign keys %+v", emp.ForeignKeyChanges)
	}

	if !reflect.DeepEqual(result.Tables(), []string{"audit", "employee", "legacy"}) {
		t.Fatalf("got tables %v", result.Tables())
	}
}

func TestCompareMovedColumnIsEqual(t *testing.T) {
	moved := employeeSchema()
	moved.Columns[2].Position = 7
	result := Compare(snap(&schema.Table{Schema: employeeSchema()}), snap(&schema.Table{Schema: moved}))
	if !result.Empty() {
		t.Fatalf("got %+v", result.SchemaDiffs)
	}
}

func TestCompareDataByPrimaryKey(t *testing.T) {
	s := employeeSchema()
	old := snap(&schema.Table{Schema: s, Data: []schema.Row{
		{"id": float64(1), "name": "ann"},
		{"id": float64(2), "name": "bob"},
		{"id": float64(3), "name": "cy"},
	}})
	new := snap(&schema.Table{Schema: s, Data: []schema.Row{
		{"id": float64(4), "name": "dee"},
		{"id": float64(2), "name": "bobby"},
		{"id": float64(1), "name": "ann"},
	}})

	result := Compare(old, new)
	d := result.DataDiff("employee")
	if d == nil {
		t.Fatal("missing data diff")
	}
	if !reflect.DeepEqual(d.PrimaryKey, []string{"id"}) {
		t.Fatalf("got key %v", d.PrimaryKey)
	}
	if len(d.RowsAdded) != 1 || d.RowsAdded[0]["name"] != "dee" {
		t.Fatalf("got added %v", d.RowsAdded)
	}
	if len(d.RowsDeleted) != 1 || d.RowsDeleted[0]["name"] != "cy" {
		t.Fatalf("got deleted %v", d.RowsDeleted)
	}
	if len(d.RowsModified) != 1 || !reflect.DeepEqual(d.RowsModified[0].ChangedColumns(), []string{"name"}) {
		t.Fatalf("got modified %v", d.RowsModified)
	}
}

func TestCompareDataWithoutPrimaryKey(t *testing.T) {
	s := schema.TableSchema{Name: "log", Columns: []schema.Column{{Name: "msg", Type: "TEXT", Position: 1}}}
	old := snap(&schema.Table{Schema: s, Data: []schema.Row{{"msg": "a"}, {"msg": "a"}, {"msg": "b"}}})
	new := snap(&schema.Table{Schema: s, Data: []schema.Row{{"msg": "a"}, {"msg": "c"}, {"msg": "b"}}})

	d := Compare(old, new).DataDiff("log")
	if d == nil {
		t.Fatal("missing data diff")
	}
	if !reflect.DeepEqual(d.RowsAdded, []schema.Row{{"msg": "c"}}) {
		t.Fatalf("got added %v", d.RowsAdded)
	}
	if !reflect.DeepEqual(d.RowsDeleted, []schema.Row{{"msg": "a"}}) {
		t.Fatalf("got deleted %v", d.RowsDeleted)
	}
	if len(d.RowsModified) != 0 {
		t.Fatalf("got modified %v", d.RowsModified)
	}
}

func TestDisplay(t *testing.T) {
	var buf bytes.Buffer
	if err := Display(&buf, &Result{}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "No differences found.\n" {
		t.Fatalf("got %q", buf.String())
	}

	changed := employeeSchema()
	changed.Columns[2].Nullable = false
	result := Compare(
		snap(&schema.Table{Schema: employeeSchema(), Data: []schema.Row{{"id": float64(1)}}}),
		snap(&schema.Table{Schema: changed}),
	)
	buf.Reset()
	if err := Display(&buf, result); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"=== Schema Differences ===\n\nTable: employee\n  Action: MODIFY\n",
		"    - dept: MODIFY (nullable true -> false)\n",
		"=== Data Differences ===\n\nTable: employee\n  Rows added: 0\n  Rows deleted: 1\n",
	} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("missing %q in\n%s", want, buf.String())
		}
	}
}
