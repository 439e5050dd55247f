// Package connproxy wraps a database connection so that code which does not own it cannot close it.
package connproxy

import (
	"context"
	"database/sql"
)

// Conn is the method set of *sql.Conn
type Conn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	PingContext(ctx context.Context) error
	Raw(f func(driverConn any) error) error
	Close() error
}

var _ Conn = (*sql.Conn)(nil)

// NoClose forwards every call to the wrapped connection except Close, which does nothing.
type NoClose struct {
	Conn
}

// Close leaves the wrapped connection open
func (NoClose) Close() error {
	return nil
}

// Unwrap returns the wrapped connection
func (n NoClose) Unwrap() Conn {
	return n.Conn
}

// Wrap returns conn guarded against Close. Wrapping a NoClose returns it unchanged.
func Wrap(conn Conn) NoClose {
	if n, ok := conn.(NoClose); ok {
		return n
	}
	if n, ok := conn.(*NoClose); ok && n != nil {
		return *n
	}
	return NoClose{Conn: conn}
}
