package custom

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/koba/db-changelog/connproxy"
)

// SQL passes the engine connection wrapped so that Close is a no-op
func SQL(_ context.Context, db Database, fn func(connproxy.Conn) error) error {
	return fn(connproxy.Wrap(db.Conn()))
}

// Pgx passes the native pgx connection behind a connection opened with the pgx stdlib driver
func Pgx(_ context.Context, db Database, fn func(*pgx.Conn) error) error {
	return db.Conn().Raw(func(driverConn any) error {
		c, ok := driverConn.(*stdlib.Conn)
		if !ok {
			return fmt.Errorf("pgx transform needs a connection from the pgx stdlib driver, got %T", driverConn)
		}
		return fn(c.Conn())
	})
}

var (
	_ Transform[connproxy.Conn] = SQL
	_ Transform[*pgx.Conn]      = Pgx
)
