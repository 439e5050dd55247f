package generator

import (
	"bytes"
	"reflect"
	"testing"
	"time"

	"github.com/koba/db-changelog/changelog"
	"github.com/koba/db-changelog/internal/diff"
	"github.com/koba/db-changelog/internal/schema"
	"github.com/koba/db-changelog/internal/snapshot"
	"github.com/koba/db-changelog/parser"
	"github.com/koba/db-changelog/serializer"
)

var clock = WithClock(func() time.Time { return time.UnixMilli(1700000000000) })

func str(s string) *string { return &s }

func company() *schema.TableSchema {
	return &schema.TableSchema{
		Name: "company",
		Columns: []schema.Column{
			{Name: "id", Type: "INTEGER", Position: 1, AutoIncrement: true},
			{Name: "name", Type: "VARCHAR(100)", Position: 2, DefaultValue: str("'n/a'")},
		},
		Indexes: []schema.Index{{Name: "PRIMARY", Columns: []string{"id"}, Unique: true, Primary: true}},
	}
}

func membership() *schema.TableSchema {
	return &schema.TableSchema{
		Name: "membership",
		Columns: []schema.Column{
			{Name: "company_id", Type: "INTEGER", Position: 1},
			{Name: "user_id", Type: "INTEGER", Position: 2},
			{Name: "active", Type: "BOOLEAN", Position: 3, Nullable: true, DefaultValue: str("true")},
		},
		Indexes: []schema.Index{
			{Name: "PRIMARY", Columns: []string{"company_id", "user_id"}, Unique: true, Primary: true},
			{Name: "idx_user", Columns: []string{"user_id"}},
		},
		ForeignKeys: []schema.ForeignKey{
			{Name: "fk_company", Column: "company_id", ReferencedTable: "company", ReferencedColumn: "id", OnDelete: "cascade", OnUpdate: "NO ACTION"},
		},
	}
}

func kinds(changes []changelog.Change) []string {
	var out []string
	for _, c := range changes {
		out = append(out, c.Kind().String())
	}
	return out
}

func TestFromSchemas(t *testing.T) {
	g := New("koba", "mysql", clock)
	cl, err := g.FromSchemas("db/init.go", []*schema.TableSchema{membership(), company()})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(cl.ChangeSets) != 3 {
		t.Fatalf("got %d changesets", len(cl.ChangeSets))
	}

	var ids []string
	for _, cs := range cl.ChangeSets {
		ids = append(ids, cs.ID)
		if cs.Author != "koba" || cs.FilePath != "db/init.go" {
			t.Fatalf("got changeset %s by %s in %s", cs.ID, cs.Author, cs.FilePath)
		}
	}
	if want := []string{"1700000000000-1", "1700000000000-2", "1700000000000-3"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("got ids %v", ids)
	}

	first := cl.ChangeSets[0]
	if got := kinds(first.Changes); !reflect.DeepEqual(got, []string{"CreateTable"}) {
		t.Fatalf("got %v", got)
	}
	ct := first.Changes[0].(*changelog.CreateTable)
	id := ct.Columns[0]
	if !*id.AutoIncrement || !*id.Constraints.PrimaryKey || *id.Constraints.Nullable {
		t.Fatalf("got id column %+v", id)
	}
	if name := ct.Columns[1]; name.DefaultValue != "n/a" {
		t.Fatalf("got name column %+v", name)
	}
	if got := kinds(first.Rollback); !reflect.DeepEqual(got, []string{"DropTable"}) {
		t.Fatalf("got rollback %v", got)
	}

	second := cl.ChangeSets[1]
	if got := kinds(second.Changes); !reflect.DeepEqual(got, []string{"CreateTable", "AddPrimaryKey", "CreateIndex"}) {
		t.Fatalf("got %v", got)
	}
	if pk := second.Changes[1].(*changelog.AddPrimaryKey); pk.ColumnNames != "company_id, user_id" {
		t.Fatalf("got primary key %+v", pk)
	}
	if active := second.Changes[0].(*changelog.CreateTable).Columns[2]; active.DefaultValueBoolean == nil || !*active.DefaultValueBoolean || active.Constraints != nil {
		t.Fatalf("got active column %+v", active)
	}

	fk := cl.ChangeSets[2].Changes[0].(*changelog.AddForeignKeyConstraint)
	if fk.OnDelete != "CASCADE" || fk.OnUpdate != "" || fk.BaseTableName != "membership" {
		t.Fatalf("got foreign key %+v", fk)
	}
}

func TestFromDiffSchema(t *testing.T) {
	changed := company()
	changed.Columns[1].Type = "VARCHAR(200)"
	changed.Columns[1].Nullable = true
	changed.Columns[1].DefaultValue = nil
	changed.Columns = append(changed.Columns, schema.Column{Name: "founded", Type: "DATE", Position: 3, Nullable: true})
	changed.Indexes = append(changed.Indexes, schema.Index{Name: "idx_name", Columns: []string{"name"}, Unique: true})

	old := &snapshot.Snapshot{Tables: map[string]*schema.Table{
		"company": {Schema: *company()},
		"legacy":  {Schema: schema.TableSchema{Name: "legacy", Columns: []schema.Column{{Name: "x", Type: "INT", Position: 1, Nullable: true}}}},
	}}
	new := &snapshot.Snapshot{Tables: map[string]*schema.Table{
		"company":    {Schema: *changed},
		"membership": {Schema: *membership()},
	}}

	cl, err := New("koba", "postgres", clock).FromDiff("db/next.go", diff.Compare(old, new))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var got [][]string
	for _, cs := range cl.ChangeSets {
		got = append(got, kinds(cs.Changes))
	}
	want := [][]string{
		{"ModifyDataType", "DropNotNullConstraint", "DropDefaultValue", "AddColumn", "CreateIndex"},
		{"DropTable"},
		{"CreateTable", "AddPrimaryKey", "CreateIndex"},
		{"AddForeignKeyConstraint"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	modify := cl.ChangeSets[0]
	if got := kinds(modify.Rollback); !reflect.DeepEqual(got, []string{"DropIndex", "DropColumn", "AddDefaultValue", "AddNotNullConstraint", "ModifyDataType"}) {
		t.Fatalf("got rollback %v", got)
	}
	if back := modify.Rollback[4].(*changelog.ModifyDataType); back.NewDataType != "VARCHAR(100)" {
		t.Fatalf("got %+v", back)
	}
	if def := modify.Rollback[2].(*changelog.AddDefaultValue); def.DefaultValue != "n/a" {
		t.Fatalf("got %+v", def)
	}
	if got := kinds(cl.ChangeSets[1].Rollback); !reflect.DeepEqual(got, []string{"CreateTable"}) {
		t.Fatalf("got drop rollback %v", got)
	}
}

func TestFromDiffData(t *testing.T) {
	s := *company()
	old := &snapshot.Snapshot{Tables: map[string]*schema.Table{"company": {Schema: s, Data: []schema.Row{
		{"id": float64(1), "name": "acme"},
		{"id": float64(2), "name": "O'Brien"},
	}}}}
	new := &snapshot.Snapshot{Tables: map[string]*schema.Table{"company": {Schema: s, Data: []schema.Row{
		{"id": float64(1), "name": nil},
		{"id": float64(3), "name": ""},
	}}}}

	cl, err := New("koba", "mysql", clock).FromDiff("db/data.go", diff.Compare(old, new))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if len(cl.ChangeSets) != 1 {
		t.Fatalf("got %d changesets", len(cl.ChangeSets))
	}
	cs := cl.ChangeSets[0]
	if got := kinds(cs.Changes); !reflect.DeepEqual(got, []string{"Delete", "Insert", "Update"}) {
		t.Fatalf("got %v", got)
	}
	if del := cs.Changes[0].(*changelog.Delete); del.Where != "`id` = 2" {
		t.Fatalf("got where %q", del.Where)
	}
	ins := cs.Changes[1].(*changelog.Insert)
	if !reflect.DeepEqual(ins.Columns, []changelog.Column{{Name: "id", ValueNumeric: "3"}, {Name: "name", ValueComputed: "''"}}) {
		t.Fatalf("got insert %+v", ins.Columns)
	}
	upd := cs.Changes[2].(*changelog.Update)
	if !reflect.DeepEqual(upd.Columns, []changelog.Column{{Name: "name", ValueComputed: "NULL"}}) || upd.Where != "`id` = 1" {
		t.Fatalf("got update %+v", upd)
	}

	if got := kinds(cs.Rollback); !reflect.DeepEqual(got, []string{"Update", "Delete", "Insert"}) {
		t.Fatalf("got rollback %v", got)
	}
	restore := cs.Rollback[2].(*changelog.Insert)
	if restore.Columns[1].Value != "O'Brien" {
		t.Fatalf("got restore %+v", restore.Columns)
	}
}

func TestWhereClauseWithoutKey(t *testing.T) {
	g := New("koba", "postgres")
	got := g.whereClause(schema.Row{"b": "it's", "a": nil, "c": 1.5, "d": true}, nil)
	if want := `"a" IS NULL AND "b" = 'it''s' AND "c" = 1.5 AND "d" = TRUE`; got != want {
		t.Fatalf("got %s, want %s", got, want)
	}
}

func TestParseDefault(t *testing.T) {
	tests := []struct {
		raw  string
		want defaultValue
	}{
		{"'abc'", defaultValue{value: "abc"}},
		{"'it''s'::character varying", defaultValue{value: "it's"}},
		{"('x')", defaultValue{value: "x"}},
		{"42", defaultValue{numeric: "42"}},
		{"-1.5", defaultValue{numeric: "-1.5"}},
		{"FALSE", defaultValue{boolean: changelog.Bool(false)}},
		{"CURRENT_TIMESTAMP", defaultValue{computed: "CURRENT_TIMESTAMP"}},
		{"nextval('seq'::regclass)", defaultValue{computed: "nextval('seq'::regclass)"}},
		{"Infinity", defaultValue{computed: "Infinity"}},
	}
	for _, tt := range tests {
		if got := parseDefault(tt.raw); !reflect.DeepEqual(got, tt.want) {
			t.Fatalf("%s: got %+v, want %+v", tt.raw, got, tt.want)
		}
	}
}

type nopCloser struct{ *bytes.Buffer }

func (nopCloser) Close() error { return nil }

func TestGeneratedChangeLogRoundTrips(t *testing.T) {
	old := &snapshot.Snapshot{Tables: map[string]*schema.Table{"company": {Schema: *company(), Data: []schema.Row{{"id": float64(1), "name": "acme"}}}}}
	new := &snapshot.Snapshot{Tables: map[string]*schema.Table{
		"company":    {Schema: *company(), Data: []schema.Row{{"id": float64(1), "name": "globex"}, {"id": float64(2), "name": nil}}},
		"membership": {Schema: *membership()},
	}}
	cl, err := New("koba", "sqlite", clock).FromDiff("db/next.go", diff.Compare(old, new))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var buf bytes.Buffer
	if err := serializer.New().Write(cl.ChangeSets, nopCloser{&buf}); err != nil {
		t.Fatalf("write: %v", err)
	}
	parsed, err := parser.Parse(buf.Bytes())
	if err != nil {
		t.Fatalf("parse: %v\n%s", err, buf.String())
	}
	if !reflect.DeepEqual(parsed.ChangeSets, cl.ChangeSets) {
		t.Fatalf("round trip changed the changelog:\n%s", buf.String())
	}
}

func TestFromDiffDataWithPlaceholderText(t *testing.T) {
	s := *company()
	old := &snapshot.Snapshot{Tables: map[string]*schema.Table{"company": {Schema: s}}}
	new := &snapshot.Snapshot{Tables: map[string]*schema.Table{"company": {Schema: s, Data: []schema.Row{
		{"id": "${id}", "name": "${name}"},
	}}}}

	cl, err := New("koba", "mysql", clock).FromDiff("db/data.go", diff.Compare(old, new))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	undo := cl.ChangeSets[0].Rollback[0].(*changelog.Delete)
	if undo.Where != "`id` = '${id}'" {
		t.Fatalf("got where %q", undo.Where)
	}

	var buf bytes.Buffer
	if err := serializer.New().Write(cl.ChangeSets, nopCloser{&buf}); err != nil {
		t.Fatalf("write: %v", err)
	}
	parsed, err := parser.Parse(buf.Bytes(), changelog.WithProperties(map[string]string{"name": "acme"}))
	if err != nil {
		t.Fatalf("parse: %v\n%s", err, buf.String())
	}
	if !reflect.DeepEqual(parsed.ChangeSets, cl.ChangeSets) {
		t.Fatalf("round trip changed the changelog:\n%s", buf.String())
	}
}
