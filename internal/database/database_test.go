package database

import (
	"context"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func openSQLite(t *testing.T, ddl ...string) *SQLite {
	t.Helper()
	ctx := context.Background()
	db := NewSQLite(Config{Type: TypeSQLite, Database: filepath.Join(t.TempDir(), "app.db")})
	if err := db.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	for _, stmt := range ddl {
		if _, err := db.db.ExecContext(ctx, stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	return db
}

func TestSQLiteIntrospection(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t,
		`CREATE TABLE company (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT NOT NULL)`,
		`CREATE TABLE employee (
			id INTEGER NOT NULL,
			company_id INTEGER REFERENCES company(id) ON DELETE CASCADE,
			email TEXT DEFAULT 'n/a',
			PRIMARY KEY (id)
		)`,
		`CREATE UNIQUE INDEX idx_employee_email ON employee (email, company_id)`,
		`INSERT INTO company (name) VALUES ('acme'), ('globex')`,
	)

	tables, err := db.GetAllTables(ctx)
	if err != nil {
		t.Fatalf("tables: %v", err)
	}
	if want := []string{"company", "employee"}; !reflect.DeepEqual(tables, want) {
		t.Fatalf("got tables %v, want %v", tables, want)
	}

	company, err := db.GetTableSchema(ctx, "company")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	id, ok := company.Column("id")
	if !ok || !id.AutoIncrement || id.Nullable {
		t.Fatalf("got id column %+v", id)
	}
	if name, _ := company.Column("name"); name.Nullable || name.Position != 2 {
		t.Fatalf("got name column %+v", name)
	}

	employee, err := db.GetTableSchema(ctx, "employee")
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	if pk := employee.PrimaryKey(); !reflect.DeepEqual(pk, []string{"id"}) {
		t.Fatalf("got primary key %v", pk)
	}
	if email, _ := employee.Column("email"); email.DefaultValue == nil || *email.DefaultValue != "'n/a'" {
		t.Fatalf("got email column %+v", email)
	}
	if len(employee.Indexes) != 2 || employee.Indexes[1].Name != "idx_employee_email" {
		t.Fatalf("got indexes %+v", employee.Indexes)
	}
	if idx := employee.Indexes[1]; !idx.Unique || !reflect.DeepEqual(idx.Columns, []string{"email", "company_id"}) {
		t.Fatalf("got index %+v", idx)
	}
	if len(employee.ForeignKeys) != 1 {
		t.Fatalf("got foreign keys %+v", employee.ForeignKeys)
	}
	fk := employee.ForeignKeys[0]
	if fk.Column != "company_id" || fk.ReferencedTable != "company" || fk.ReferencedColumn != "id" || fk.OnDelete != "CASCADE" {
		t.Fatalf("got foreign key %+v", fk)
	}

	rows, err := db.GetTableData(ctx, "company", 1)
	if err != nil {
		t.Fatalf("data: %v", err)
	}
	if len(rows) != 1 || rows[0]["name"] != "acme" {
		t.Fatalf("got rows %v", rows)
	}

	if _, err := db.GetTableSchema(ctx, "missing"); err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("got %v", err)
	}
}

func TestSQLiteConnForCustomChanges(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t, `CREATE TABLE t (x INTEGER)`)

	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatalf("conn: %v", err)
	}
	defer conn.Close()
	if _, err := conn.ExecContext(ctx, "INSERT INTO t (x) VALUES (1)"); err != nil {
		t.Fatalf("exec: %v", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	tests := []struct {
		in      Config
		want    Config
		wantErr string
	}{
		{in: Config{Type: "MySQL", Database: "app"}, want: Config{Type: TypeMySQL, Host: "localhost", Port: "3306", Database: "app"}},
		{in: Config{Type: "PostgreSQL", Host: "db", Database: "app"}, want: Config{Type: TypePostgres, Host: "db", Port: "5432", Database: "app"}},
		{in: Config{Type: "pgx", Port: "6432"}, want: Config{Type: TypePgx, Host: "localhost", Port: "6432"}},
		{in: Config{Type: "sqlite3", Database: "app.db"}, want: Config{Type: TypeSQLite, Database: "app.db"}},
		{in: Config{}, wantErr: "database type is required"},
		{in: Config{Type: "oracle"}, wantErr: "unsupported database type: oracle"},
	}
	for _, tt := range tests {
		got, err := tt.in.WithDefaults()
		if tt.wantErr != "" {
			if err == nil || err.Error() != tt.wantErr {
				t.Fatalf("%+v: got error %v, want %s", tt.in, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%+v: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("got %+v, want %+v", got, tt.want)
		}
	}
}

func TestDSN(t *testing.T) {
	m := NewMySQL(Config{Type: TypeMySQL, Host: "db", Port: "3306", Database: "app", User: "root", Password: "secret"})
	if got := m.DSN(); got != "root:secret@tcp(db:3306)/app?parseTime=true" {
		t.Fatalf("got mysql dsn %q", got)
	}

	p := NewPostgres(Config{Type: TypePgx, Host: "db", Port: "5432", Database: "app", User: "app", Password: "it's"})
	if got := p.DSN(); got != `host=db port=5432 dbname=app sslmode=disable user=app password='it\'s'` {
		t.Fatalf("got postgres dsn %q", got)
	}
	if p.Type() != TypePgx {
		t.Fatalf("got type %s", p.Type())
	}
}

func TestNewDatabase(t *testing.T) {
	for typ, want := range map[string]string{"mysql": TypeMySQL, "postgres": TypePostgres, "pgx": TypePgx, "sqlite": TypeSQLite} {
		db, err := NewDatabase(Config{Type: typ})
		if err != nil {
			t.Fatalf("%s: %v", typ, err)
		}
		if db.Type() != want {
			t.Fatalf("%s: got type %s", typ, db.Type())
		}
	}
}
