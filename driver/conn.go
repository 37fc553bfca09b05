package driver

import (
	"context"
	"database/sql/driver"
	"errors"

	sqlite "github.com/connerohnesorge/sqlite-purego"
)

// errArgs is returned when a statement is given arguments. The binding
// only exposes whole-statement execution, so values must be written into
// the SQL text (see sqlite.Escape).
var errArgs = errors.New("sqlite-purego: statement arguments are not supported")

// Conn implements the database/sql/driver.Conn interface
type Conn struct {
	conn *sqlite.Conn
	inTx bool
}

// Prepare returns a prepared statement
func (c *Conn) Prepare(query string) (driver.Stmt, error) {
	return c.PrepareContext(context.Background(), query)
}

// PrepareContext returns a prepared statement. Nothing is sent to SQLite
// until the statement is executed.
func (c *Conn) PrepareContext(ctx context.Context, query string) (driver.Stmt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Stmt{conn: c, query: query}, nil
}

// Close closes the connection and releases its library reference
func (c *Conn) Close() error {
	_, closeErr := c.conn.Close()
	return errors.Join(closeErr, c.conn.Release())
}

// Begin starts a transaction
func (c *Conn) Begin() (driver.Tx, error) {
	return c.BeginTx(context.Background(), driver.TxOptions{})
}

// BeginTx starts a transaction. Only the default isolation level is
// supported; read-only transactions are rejected.
func (c *Conn) BeginTx(ctx context.Context, opts driver.TxOptions) (driver.Tx, error) {
	if c.inTx {
		return nil, errors.New("sqlite-purego: already in a transaction")
	}
	if opts.Isolation != 0 {
		return nil, errors.New("sqlite-purego: isolation levels are not supported")
	}
	if opts.ReadOnly {
		return nil, errors.New("sqlite-purego: read-only transactions are not supported")
	}
	if err := c.statement(ctx, "BEGIN"); err != nil {
		return nil, err
	}

	c.inTx = true
	return &Tx{conn: c}, nil
}

// ExecContext executes a query that doesn't return rows
func (c *Conn) ExecContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Result, error) {
	if len(args) > 0 {
		return nil, errArgs
	}
	if err := c.statement(ctx, query); err != nil {
		return nil, err
	}
	n, err := c.conn.Changes()
	if err != nil {
		return nil, translate(err)
	}
	return driver.RowsAffected(n), nil
}

// QueryContext executes a query that returns rows
func (c *Conn) QueryContext(ctx context.Context, query string, args []driver.NamedValue) (driver.Rows, error) {
	if len(args) > 0 {
		return nil, errArgs
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	table, err := c.conn.Query(query)
	if err != nil {
		return nil, translate(err)
	}

	return newRows(table), nil
}

// Ping verifies the connection
func (c *Conn) Ping(ctx context.Context) error {
	if c.conn.Handle() == 0 {
		return driver.ErrBadConn
	}
	_, err := c.QueryContext(ctx, "SELECT 1", nil)
	return err
}

// ResetSession is called before a connection is reused
func (c *Conn) ResetSession(ctx context.Context) error {
	if c.inTx || c.conn.Handle() == 0 {
		return driver.ErrBadConn
	}
	return nil
}

// IsValid reports whether the connection can be reused
func (c *Conn) IsValid() bool {
	return c.conn.Handle() != 0
}

// Raw returns the underlying binding connection, for use with
// sql.Conn.Raw.
func (c *Conn) Raw() *sqlite.Conn {
	return c.conn
}

func (c *Conn) statement(ctx context.Context, query string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := c.conn.Statement(query, nil); err != nil {
		return translate(err)
	}
	return nil
}

// translate maps binding state errors to driver.ErrBadConn so that
// database/sql discards the connection.
func translate(err error) error {
	if errors.Is(err, sqlite.ErrNotConnected) || errors.Is(err, sqlite.ErrReleased) {
		return driver.ErrBadConn
	}
	return err
}

// Ensure Conn implements the required interfaces
var (
	_ driver.Conn               = (*Conn)(nil)
	_ driver.ConnPrepareContext = (*Conn)(nil)
	_ driver.ConnBeginTx        = (*Conn)(nil)
	_ driver.Pinger             = (*Conn)(nil)
	_ driver.ExecerContext      = (*Conn)(nil)
	_ driver.QueryerContext     = (*Conn)(nil)
	_ driver.SessionResetter    = (*Conn)(nil)
	_ driver.Validator          = (*Conn)(nil)
)
