package changelog

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/koba/db-changelog/connproxy"
	"github.com/koba/db-changelog/custom"
	"github.com/koba/db-changelog/internal/expr"
)

func build(t *testing.T, body func(*Builder), opts ...Option) *ChangeLog {
	t.Helper()
	log, err := Define("db/changelog.go", body).Build(opts...)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return log
}

func buildErr(t *testing.T, body func(*Builder), opts ...Option) error {
	t.Helper()
	_, err := Define("db/changelog.go", body).Build(opts...)
	if err == nil {
		t.Fatal("expected build error")
	}
	return err
}

func TestBuildCreateTable(t *testing.T) {
	log := build(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.CreateTable(CreateTable{TableName: "employee"}, func(t *ColumnsBuilder) {
				t.Column(Column{Name: "id", Type: "UUID"}, func(c *ConstraintsBuilder) {
					c.Constraints(Constraints{Nullable: Bool(false), PrimaryKey: Bool(true)})
				})
				t.Column(Column{Name: "name", Type: "VARCHAR(255)"})
			})
		})
	})

	if len(log.ChangeSets) != 1 {
		t.Fatalf("got %d changesets", len(log.ChangeSets))
	}
	cs := log.ChangeSets[0]
	if cs.FilePath != "db/changelog.go" {
		t.Fatalf("got file path %q", cs.FilePath)
	}
	ct, ok := cs.Changes[0].(*CreateTable)
	if !ok {
		t.Fatalf("got %T", cs.Changes[0])
	}
	if len(ct.Columns) != 2 || ct.Columns[0].Constraints == nil || *ct.Columns[0].Constraints.PrimaryKey != true {
		t.Fatalf("unexpected columns: %+v", ct.Columns)
	}
	if ct.Columns[1].Constraints != nil {
		t.Fatal("second column should have no constraints")
	}
}

func TestDuplicateChangeSetRejected(t *testing.T) {
	err := buildErr(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, nil)
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, nil)
	})
	var dup *DuplicateChangeSetError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateChangeSetError, got %v", err)
	}
	if dup.ID != "1" || dup.Author != "koba" || dup.FilePath != "db/changelog.go" {
		t.Fatalf("got %+v", dup)
	}
}

func TestSameIDDifferentIdentity(t *testing.T) {
	log := build(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, nil)
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "momose"}, nil)
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba", LogicalFilePath: "legacy.xml"}, nil)
	})
	if len(log.ChangeSets) != 3 {
		t.Fatalf("got %d changesets", len(log.ChangeSets))
	}
	if log.ChangeSets[2].FilePath != "legacy.xml" {
		t.Fatalf("logical file path not applied: %q", log.ChangeSets[2].FilePath)
	}
}

func TestRollbackTo(t *testing.T) {
	log := build(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.DropTable(DropTable{TableName: "a"})
			cs.DropTable(DropTable{TableName: "b"})
		})
		b.ChangeSet(ChangeSetArgs{ID: "2", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.TagDatabase(TagDatabase{Tag: "v1"})
			cs.RollbackTo("1", "koba", "")
		})
	})

	forward := log.ChangeSets[0].Changes
	rollback := log.ChangeSets[1].Rollback
	if len(rollback) != len(forward) {
		t.Fatalf("got %d rollback changes, want %d", len(rollback), len(forward))
	}
	for i := range forward {
		if rollback[i] != forward[i] {
			t.Fatalf("rollback change %d differs", i)
		}
	}
}

func TestRollbackToMissing(t *testing.T) {
	err := buildErr(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "2", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.RollbackTo("X", "Y", "")
		})
	})
	var impossible *RollbackImpossibleError
	if !errors.As(err, &impossible) {
		t.Fatalf("expected RollbackImpossibleError, got %v", err)
	}
	if impossible.ID != "X" || impossible.Author != "Y" || impossible.Path != "db/changelog.go" {
		t.Fatalf("got %+v", impossible)
	}
	var perr *ParseError
	if !errors.As(err, &perr) || perr.ChangeSetID != "2" {
		t.Fatalf("expected ParseError for changeset 2, got %v", err)
	}
}

func TestRollbackBlock(t *testing.T) {
	log := build(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.CreateTable(CreateTable{TableName: "a"}, func(t *ColumnsBuilder) {
				t.Column(Column{Name: "id", Type: "INT"})
			})
			cs.Rollback(func(rb *ChangeSetBuilder) {
				rb.DropTable(DropTable{TableName: "a"})
			})
			cs.Comment("creates a")
		})
	})
	cs := log.ChangeSets[0]
	if len(cs.Changes) != 1 || len(cs.Rollback) != 1 {
		t.Fatalf("got %d changes and %d rollback changes", len(cs.Changes), len(cs.Rollback))
	}
	if _, ok := cs.Rollback[0].(*DropTable); !ok {
		t.Fatalf("got %T", cs.Rollback[0])
	}
	if cs.Comments != "creates a" {
		t.Fatalf("got comment %q", cs.Comments)
	}
}

func TestForwardOnlyCallsInsideRollback(t *testing.T) {
	err := buildErr(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.Rollback(func(rb *ChangeSetBuilder) {
				rb.Comment("nope")
			})
		})
	})
	if !strings.Contains(err.Error(), "not allowed inside a rollback block") {
		t.Fatalf("got %v", err)
	}
}

func TestParseErrorCarriesChangeSetID(t *testing.T) {
	err := buildErr(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "ok", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.TagDatabase(TagDatabase{Tag: "v1"})
		})
		b.ChangeSet(ChangeSetArgs{ID: "broken", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.DropTable(DropTable{})
			cs.DropTable(DropTable{TableName: "never reached"})
		})
	})
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.ChangeSetID != "broken" {
		t.Fatalf("got changeset id %q", perr.ChangeSetID)
	}
	if !strings.HasPrefix(err.Error(), "changeSetId: broken. DropTable: TableName is required") {
		t.Fatalf("got message %q", err.Error())
	}
}

func TestChangeSetArgsValidation(t *testing.T) {
	tests := []struct {
		name string
		args ChangeSetArgs
		want string
	}{
		{"missing id", ChangeSetArgs{Author: "koba"}, "ID is required"},
		{"missing author", ChangeSetArgs{ID: "1"}, "Author is required"},
		{"bad run order", ChangeSetArgs{ID: "1", Author: "koba", RunOrder: "middle"}, "RunOrder"},
		{"bad quoting", ChangeSetArgs{ID: "1", Author: "koba", ObjectQuotingStrategy: "SOME"}, "ObjectQuotingStrategy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := buildErr(t, func(b *Builder) {
				b.ChangeSet(tt.args, nil)
			})
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("got %v, want mention of %s", err, tt.want)
			}
		})
	}
}

func TestPropertyEvaluation(t *testing.T) {
	log := build(t, func(b *Builder) {
		b.Property("schema", "ignored")
		b.Property("table", "employee")
		b.Property("table", "second definition loses")
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.SQL(RawSQL{SQL: "select * from ${schema}.${table}"})
			cs.DropTable(DropTable{TableName: "${unknown}"})
		})
	}, WithProperties(map[string]string{"schema": "app"}))

	sql := log.ChangeSets[0].Changes[0].(*RawSQL)
	if sql.SQL != "select * from app.employee" {
		t.Fatalf("got %q", sql.SQL)
	}
	drop := log.ChangeSets[0].Changes[1].(*DropTable)
	if drop.TableName != "${unknown}" {
		t.Fatalf("lenient field should keep the token, got %q", drop.TableName)
	}
	if log.Properties["schema"] != "app" || log.Properties["table"] != "employee" {
		t.Fatalf("got properties %v", log.Properties)
	}
}

func TestStrictPlaceholderFails(t *testing.T) {
	err := buildErr(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.SQL(RawSQL{SQL: "drop table ${missing}"})
		})
	})
	if !errors.Is(err, expr.ErrUnresolved) {
		t.Fatalf("expected ErrUnresolved, got %v", err)
	}
}

func TestWithoutEvaluation(t *testing.T) {
	log := build(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba", LogicalFilePath: "legacy.xml"}, func(cs *ChangeSetBuilder) {
			cs.SQL(RawSQL{SQL: "drop table ${missing}"})
			cs.Comment("for ${schema}")
		})
	}, WithProperties(map[string]string{"schema": "app"}), WithoutEvaluation())

	cs := log.ChangeSets[0]
	if sql := cs.Changes[0].(*RawSQL).SQL; sql != "drop table ${missing}" {
		t.Fatalf("got %q", sql)
	}
	if cs.Comments != "for ${schema}" {
		t.Fatalf("got comment %q", cs.Comments)
	}
	if cs.FilePath != "legacy.xml" || cs.ChangeLogPath != "db/changelog.go" {
		t.Fatalf("got FilePath %q ChangeLogPath %q", cs.FilePath, cs.ChangeLogPath)
	}
}

func TestColumnRules(t *testing.T) {
	tests := []struct {
		name string
		body func(cs *ChangeSetBuilder)
		want string
	}{
		{
			name: "two values",
			body: func(cs *ChangeSetBuilder) {
				cs.Insert(Insert{TableName: "a"}, func(t *ColumnsBuilder) {
					t.Column(Column{Name: "x", Value: "1", ValueNumeric: "1"})
				})
			},
			want: "only one value",
		},
		{
			name: "two defaults",
			body: func(cs *ChangeSetBuilder) {
				cs.AddColumn(AddColumn{TableName: "a"}, func(t *ColumnsBuilder) {
					t.Column(Column{Name: "x", Type: "INT", DefaultValue: "1", DefaultValueBoolean: Bool(true)})
				})
			},
			want: "only one default value",
		},
		{
			name: "placement outside addColumn",
			body: func(cs *ChangeSetBuilder) {
				cs.CreateTable(CreateTable{TableName: "a"}, func(t *ColumnsBuilder) {
					t.Column(Column{Name: "x", Type: "INT", AfterColumn: "y"})
				})
			},
			want: "placement",
		},
		{
			name: "create table without columns",
			body: func(cs *ChangeSetBuilder) {
				cs.CreateTable(CreateTable{TableName: "a"}, nil)
			},
			want: "at least one column",
		},
		{
			name: "untyped column",
			body: func(cs *ChangeSetBuilder) {
				cs.CreateTable(CreateTable{TableName: "a"}, func(t *ColumnsBuilder) {
					t.Column(Column{Name: "x"})
				})
			},
			want: "Type is required",
		},
		{
			name: "constraints twice",
			body: func(cs *ChangeSetBuilder) {
				cs.CreateTable(CreateTable{TableName: "a"}, func(t *ColumnsBuilder) {
					t.Column(Column{Name: "x", Type: "INT"}, func(c *ConstraintsBuilder) {
						c.Constraints(Constraints{Nullable: Bool(false)})
						c.Constraints(Constraints{Unique: Bool(true)})
					})
				})
			},
			want: "constraints already set",
		},
		{
			name: "delete with columns",
			body: func(cs *ChangeSetBuilder) {
				cs.Delete(Delete{TableName: "a"}, func(d *ModifyDataBuilder) {
					d.Column(Column{Name: "x", Value: "1"})
				})
			},
			want: "delete does not accept columns",
		},
		{
			name: "drop column without target",
			body: func(cs *ChangeSetBuilder) {
				cs.DropColumn(DropColumn{TableName: "a"})
			},
			want: "ColumnName or at least one column",
		},
		{
			name: "bad foreign key action",
			body: func(cs *ChangeSetBuilder) {
				cs.AddForeignKeyConstraint(AddForeignKeyConstraint{
					BaseColumnNames: "a_id", BaseTableName: "b", ConstraintName: "fk",
					ReferencedColumnNames: "id", ReferencedTableName: "a", OnDelete: "EXPLODE",
				})
			},
			want: "OnDelete",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := buildErr(t, func(b *Builder) {
				b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, tt.body)
			})
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("got %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestModifyData(t *testing.T) {
	log := build(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.Update(Update{TableName: "employee"}, func(d *ModifyDataBuilder) {
				d.Column(Column{Name: "active", ValueBoolean: Bool(false)})
				d.Where("id = :value")
				d.WhereParams(func(w *ParamsBuilder) {
					w.Param(Param{Name: "id", Value: "7"})
				})
			})
			cs.Delete(Delete{TableName: "employee", Where: "active = false"}, nil)
		})
	})
	upd := log.ChangeSets[0].Changes[0].(*Update)
	if upd.Where != "id = :value" || len(upd.Columns) != 1 || len(upd.WhereParams) != 1 {
		t.Fatalf("got %+v", upd)
	}
	del := log.ChangeSets[0].Changes[1].(*Delete)
	if del.Where != "active = false" || del.WhereParams != nil {
		t.Fatalf("got %+v", del)
	}
}

func TestOutputTargetDefault(t *testing.T) {
	log := build(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.Output(Output{Message: "hello"})
			cs.Output(Output{Message: "hello", Target: "STDOUT"})
		})
	})
	changes := log.ChangeSets[0].Changes
	if got := changes[0].(*Output).Target; got != "STDERR" {
		t.Fatalf("got target %q", got)
	}
	if got := changes[1].(*Output).Target; got != "STDOUT" {
		t.Fatalf("got target %q", got)
	}
}

func TestPreconditions(t *testing.T) {
	log := build(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.PreConditions(PreConditionArgs{OnFail: "MARK_RAN"}, func(pc *PreconditionBuilder) {
				pc.Condition("dbms", Param{Name: "type", Value: "postgresql"})
				pc.Not(func(pc *PreconditionBuilder) {
					pc.Condition("tableExists", Param{Name: "tableName", Value: "employee"})
				})
				pc.Or(func(pc *PreconditionBuilder) {
					pc.Condition("runningAs", Param{Name: "username", Value: "admin"})
					pc.And(func(pc *PreconditionBuilder) {})
				})
			})
		})
	})

	pre := log.ChangeSets[0].Preconditions
	if pre == nil || pre.OnFail != "MARK_RAN" || len(pre.Nodes) != 3 {
		t.Fatalf("got %+v", pre)
	}
	not, ok := pre.Nodes[1].(*NotCondition)
	if !ok || len(not.Nodes) != 1 {
		t.Fatalf("got %#v", pre.Nodes[1])
	}
	if leaf := not.Nodes[0].(*Condition); leaf.Name != "tableExists" || leaf.Params[0].Value != "employee" {
		t.Fatalf("got %+v", leaf)
	}
	or := pre.Nodes[2].(*OrCondition)
	if len(or.Nodes) != 2 {
		t.Fatalf("got %d or nodes", len(or.Nodes))
	}
}

func TestPreconditionPolicies(t *testing.T) {
	err := buildErr(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.PreConditions(PreConditionArgs{OnError: "IGNORE"}, nil)
		})
	})
	if !strings.Contains(err.Error(), "OnError") {
		t.Fatalf("got %v", err)
	}
}

func TestModifySql(t *testing.T) {
	log := build(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.ModifySql(ModifySqlArgs{DBMS: " mysql, mariadb ,", ApplyToRollback: Bool(true)}, func(m *ModifySqlBuilder) {
				m.Append(" ENGINE=InnoDB")
				m.Replace("VARCHAR", "NVARCHAR")
			})
			cs.ModifySql(ModifySqlArgs{}, func(m *ModifySqlBuilder) {
				m.RegExpReplace(`\s+`, " ")
			})
		})
	})
	visitors := log.ChangeSets[0].SQLVisitors
	if len(visitors) != 3 {
		t.Fatalf("got %d visitors", len(visitors))
	}
	if got := visitors[0].DBMS; len(got) != 2 || got[0] != "mysql" || got[1] != "mariadb" {
		t.Fatalf("got dbms %q", got)
	}
	if visitors[1].Kind != VisitReplace || visitors[1].With != "NVARCHAR" || !*visitors[1].ApplyToRollback {
		t.Fatalf("got %+v", visitors[1])
	}
	if visitors[2].DBMS != nil || visitors[2].ApplyToRollback != nil {
		t.Fatalf("filters leaked into the second block: %+v", visitors[2])
	}
}

func TestInclude(t *testing.T) {
	shared := Define("db/shared.go", func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.TagDatabase(TagDatabase{Tag: "shared"})
		})
	})
	log := build(t, func(b *Builder) {
		b.Include(shared)
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.RollbackTo("1", "koba", "db/shared.go")
		})
	})
	if len(log.ChangeSets) != 2 {
		t.Fatalf("got %d changesets", len(log.ChangeSets))
	}
	if log.ChangeSets[0].FilePath != "db/shared.go" || log.ChangeSets[1].FilePath != "db/changelog.go" {
		t.Fatalf("got paths %q and %q", log.ChangeSets[0].FilePath, log.ChangeSets[1].FilePath)
	}
	if len(log.ChangeSets[1].Rollback) != 1 {
		t.Fatal("rollback to included changeset failed")
	}
}

func TestCircularInclude(t *testing.T) {
	var self *Definition
	self = Define("db/changelog.go", func(b *Builder) {
		b.Include(self)
	})
	if _, err := self.Build(); err == nil || !strings.Contains(err.Error(), "circular include") {
		t.Fatalf("got %v", err)
	}
}

func TestReferencesUniqueColumnWarns(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	build(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.AddForeignKeyConstraint(AddForeignKeyConstraint{
				BaseColumnNames: "company_id", BaseTableName: "employee", ConstraintName: "fk_company",
				ReferencedColumnNames: "id", ReferencedTableName: "company", ReferencesUniqueColumn: Bool(true),
			})
		})
	}, WithLogger(logger))
	if !strings.Contains(buf.String(), "deprecated") || !strings.Contains(buf.String(), "fk_company") {
		t.Fatalf("expected deprecation warning, got %q", buf.String())
	}
}

func init() {
	custom.Register("changelog.test.Seed", func(params map[string]string) (custom.Task, error) {
		return custom.New(custom.Definition[connproxy.Conn]{
			ConfirmationMessage: "seeded " + params["table"],
			Execute:             func(context.Context, connproxy.Conn) error { return nil },
			Transform:           custom.SQL,
		}), nil
	})
}

func TestCustomChange(t *testing.T) {
	inline := custom.New(custom.Definition[connproxy.Conn]{
		Execute:   func(context.Context, connproxy.Conn) error { return nil },
		Transform: custom.SQL,
	})

	log := build(t, func(b *Builder) {
		b.Property("seed.table", "employee")
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.CustomChange(CustomChange{Class: "changelog.test.Seed"}, func(p *ParamsBuilder) {
				p.Param(Param{Name: "table", Value: "${seed.table}"})
			})
			cs.CustomTask(inline)
		})
	})

	registered := log.ChangeSets[0].Changes[0].(*CustomChange)
	task, err := registered.Task()
	if err != nil {
		t.Fatalf("task: %v", err)
	}
	if task.ConfirmationMessage() != "seeded employee" {
		t.Fatalf("got %q", task.ConfirmationMessage())
	}

	inlined := log.ChangeSets[0].Changes[1].(*CustomChange)
	if !inlined.Inline() {
		t.Fatal("expected inline task")
	}
	if task, _ := inlined.Task(); task != inline {
		t.Fatal("inline task not returned")
	}
}

func TestCustomChangeNeedsClass(t *testing.T) {
	err := buildErr(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.CustomChange(CustomChange{})
		})
	})
	if !strings.Contains(err.Error(), "Class is required") {
		t.Fatalf("got %v", err)
	}
}

func TestFirstErrorWins(t *testing.T) {
	err := buildErr(t, func(b *Builder) {
		b.ChangeSet(ChangeSetArgs{ID: "1", Author: "koba"}, func(cs *ChangeSetBuilder) {
			cs.DropView(DropView{})
			cs.DropTable(DropTable{})
		})
		b.ChangeSet(ChangeSetArgs{ID: "2", Author: "koba"}, func(cs *ChangeSetBuilder) {
			t.Fatal("body of a later changeset ran after an error")
		})
	})
	if !strings.Contains(err.Error(), "DropView") {
		t.Fatalf("got %v", err)
	}
}

func TestRegistryCoversEveryKind(t *testing.T) {
	seen := make(map[string]bool)
	for k := KindCreateTable; k <= KindEmpty; k++ {
		spec, ok := Lookup(k)
		if !ok {
			t.Fatalf("kind %d not registered", k)
		}
		if got := spec.NewChange().Kind(); got != k {
			t.Fatalf("%s: NewChange returned kind %v", spec.Name, got)
		}
		if m, ok := LookupMethod(spec.Method); !ok || m != spec {
			t.Fatalf("%s: method %s not registered", spec.Name, spec.Method)
		}
		if seen[spec.Name] {
			t.Fatalf("%s registered twice", spec.Name)
		}
		seen[spec.Name] = true
	}
	if len(Kinds()) != int(KindEmpty) {
		t.Fatalf("got %d kinds, want %d", len(Kinds()), KindEmpty)
	}
	if KindRawSQL.String() != "RawSQL" {
		t.Fatalf("got %s", KindRawSQL)
	}
}
