package driver

import (
	"context"
	"database/sql/driver"
)

// Stmt implements the database/sql/driver.Stmt interface. It holds the
// query text; every execution runs it afresh.
type Stmt struct {
	conn   *Conn
	query  string
	closed bool
}

// Close closes the statement
func (s *Stmt) Close() error {
	s.closed = true
	return nil
}

// NumInput returns the number of placeholder parameters. Arguments are
// not supported, so database/sql rejects any before they reach the driver.
func (s *Stmt) NumInput() int {
	return 0
}

// Exec executes a statement that doesn't return rows
func (s *Stmt) Exec(args []driver.Value) (driver.Result, error) {
	return s.ExecContext(context.Background(), valuesToNamedValues(args))
}

// ExecContext executes a statement with context
func (s *Stmt) ExecContext(ctx context.Context, args []driver.NamedValue) (driver.Result, error) {
	if s.closed {
		return nil, driver.ErrBadConn
	}
	return s.conn.ExecContext(ctx, s.query, args)
}

// Query executes a query that returns rows
func (s *Stmt) Query(args []driver.Value) (driver.Rows, error) {
	return s.QueryContext(context.Background(), valuesToNamedValues(args))
}

// QueryContext executes a query with context
func (s *Stmt) QueryContext(ctx context.Context, args []driver.NamedValue) (driver.Rows, error) {
	if s.closed {
		return nil, driver.ErrBadConn
	}
	return s.conn.QueryContext(ctx, s.query, args)
}

// valuesToNamedValues converts []driver.Value to []driver.NamedValue
func valuesToNamedValues(args []driver.Value) []driver.NamedValue {
	named := make([]driver.NamedValue, len(args))
	for i, arg := range args {
		named[i] = driver.NamedValue{
			Ordinal: i + 1,
			Value:   arg,
		}
	}
	return named
}

var (
	_ driver.Stmt             = (*Stmt)(nil)
	_ driver.StmtExecContext  = (*Stmt)(nil)
	_ driver.StmtQueryContext = (*Stmt)(nil)
)
