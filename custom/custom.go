// Package custom adapts user supplied Go closures to the custom change contract of a migration engine.
package custom

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/koba/db-changelog/connproxy"
)

var (
	// ErrRollbackUnsupported is returned by Rollback of a definition without a rollback block.
	ErrRollbackUnsupported = errors.New("custom change does not support rollback")
	// ErrNoExecute is returned by Execute of a definition without an execute block.
	ErrNoExecute = errors.New("custom change has no execute block")
	// ErrNoTransform is returned when a definition has no transform.
	ErrNoTransform = errors.New("custom change has no transform")
)

// Database is the handle the migration engine passes to a custom change
type Database interface {
	ShortName() string
	Conn() connproxy.Conn
}

// DB is a Database over a single connection
type DB struct {
	shortName string
	conn      connproxy.Conn
}

// NewDatabase returns a handle for conn. shortName is the engine name, e.g. postgresql.
func NewDatabase(shortName string, conn connproxy.Conn) *DB {
	return &DB{shortName: shortName, conn: conn}
}

func (d *DB) ShortName() string    { return d.shortName }
func (d *DB) Conn() connproxy.Conn { return d.conn }

// ValidationErrors lists the problems found by Validate
type ValidationErrors []string

func (v ValidationErrors) Error() string {
	return strings.Join(v, "; ")
}

// Err returns v as an error, or nil when empty
func (v ValidationErrors) Err() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// Task is the contract the migration engine drives
type Task interface {
	ConfirmationMessage() string
	SetUp() error
	Validate(ctx context.Context, db Database) ValidationErrors
	Execute(ctx context.Context, db Database) error
	Rollback(ctx context.Context, db Database) error
}

// Transform maps the engine handle to the handle T expected by the closures of a Definition
type Transform[T any] func(ctx context.Context, db Database, fn func(T) error) error

// Definition is a custom change written as closures over T
type Definition[T any] struct {
	ConfirmationMessage string
	Validate            func(ctx context.Context, conn T) ValidationErrors
	Execute             func(ctx context.Context, conn T) error
	// Rollback is optional. Without it the change is forward only.
	Rollback  func(ctx context.Context, conn T) error
	Transform Transform[T]
}

// Option configures a Change
type Option func(*options)

type options struct {
	logger *slog.Logger
}

// WithLogger sets the logger of a Change
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Change implements Task for a Definition
type Change[T any] struct {
	def    Definition[T]
	logger *slog.Logger

	mu         sync.Mutex
	rolledBack bool
}

var _ Task = (*Change[connproxy.Conn])(nil)

// New returns a Task running def
func New[T any](def Definition[T], opts ...Option) *Change[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Change[T]{def: def, logger: o.logger}
}

// ConfirmationMessage returns the message shown after a successful execute
func (c *Change[T]) ConfirmationMessage() string {
	if c.def.ConfirmationMessage == "" {
		return "custom change executed"
	}
	return c.def.ConfirmationMessage
}

// SetUp has nothing to prepare; the definition is complete when constructed.
func (c *Change[T]) SetUp() error {
	return nil
}

// Validate runs the validate block, if any
func (c *Change[T]) Validate(ctx context.Context, db Database) ValidationErrors {
	if c.def.Validate == nil {
		return nil
	}
	var result ValidationErrors
	err := c.transform(ctx, db, func(conn T) error {
		result = c.def.Validate(ctx, conn)
		return nil
	})
	if err != nil {
		return append(result, err.Error())
	}
	return result
}

// Execute runs the execute block
func (c *Change[T]) Execute(ctx context.Context, db Database) error {
	if c.def.Execute == nil {
		return ErrNoExecute
	}
	return c.transform(ctx, db, func(conn T) error {
		return c.def.Execute(ctx, conn)
	})
}

// Rollback runs the rollback block until it succeeds once. Calls after a
// successful rollback are logged and skipped. A failed rollback can be retried.
func (c *Change[T]) Rollback(ctx context.Context, db Database) error {
	if c.def.Rollback == nil {
		return ErrRollbackUnsupported
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rolledBack {
		c.logger.Debug("custom change already rolled back, skipping", "change", c.ConfirmationMessage())
		return nil
	}
	err := c.transform(ctx, db, func(conn T) error {
		return c.def.Rollback(ctx, conn)
	})
	if err != nil {
		return err
	}
	c.rolledBack = true
	return nil
}

func (c *Change[T]) transform(ctx context.Context, db Database, fn func(T) error) error {
	if c.def.Transform == nil {
		return ErrNoTransform
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := c.def.Transform(ctx, db, fn); err != nil {
		return fmt.Errorf("custom change: %w", err)
	}
	return nil
}
