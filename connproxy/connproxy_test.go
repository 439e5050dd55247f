package connproxy

import (
	"context"
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"
)

func openConn(t *testing.T) *sql.Conn {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	conn, err := db.Conn(context.Background())
	if err != nil {
		t.Fatalf("conn: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestNoCloseSuppressesClose(t *testing.T) {
	ctx := context.Background()
	conn := openConn(t)
	wrapped := Wrap(conn)

	if _, err := wrapped.ExecContext(ctx, "CREATE TABLE t (id INTEGER)"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if err := wrapped.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	if _, err := conn.ExecContext(ctx, "INSERT INTO t (id) VALUES (1)"); err != nil {
		t.Fatalf("connection closed by proxy: %v", err)
	}
	var n int
	if err := wrapped.QueryRowContext(ctx, "SELECT count(*) FROM t").Scan(&n); err != nil {
		t.Fatalf("query: %v", err)
	}
	if n != 1 {
		t.Fatalf("got %d rows, want 1", n)
	}
}

func TestNoCloseForwardsTransactions(t *testing.T) {
	ctx := context.Background()
	wrapped := Wrap(openConn(t))

	if err := wrapped.PingContext(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}
	tx, err := wrapped.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if _, err := tx.ExecContext(ctx, "CREATE TABLE t (id INTEGER)"); err != nil {
		t.Fatalf("exec: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	stmt, err := wrapped.PrepareContext(ctx, "INSERT INTO t (id) VALUES (?)")
	if err != nil {
		t.Fatalf("prepare: %v", err)
	}
	defer stmt.Close()
	if _, err := stmt.ExecContext(ctx, 7); err != nil {
		t.Fatalf("stmt exec: %v", err)
	}
}

func TestWrapIsIdempotent(t *testing.T) {
	conn := openConn(t)
	once := Wrap(conn)
	twice := Wrap(once)
	if twice.Unwrap() != Conn(conn) {
		t.Fatal("double wrap should keep the original connection")
	}
	ptr := Wrap(&once)
	if ptr.Unwrap() != Conn(conn) {
		t.Fatal("wrapping *NoClose should keep the original connection")
	}
}
