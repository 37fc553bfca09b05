package driver

import (
	"context"
	"database/sql/driver"
	"errors"
)

// Tx implements the database/sql/driver.Tx interface
type Tx struct {
	conn     *Conn
	finished bool
}

// Commit commits the transaction. When SQLite refuses the commit (for
// example a deferred constraint fails) the transaction is rolled back so
// the connection can be reused; if that rollback also fails the connection
// stays marked as in a transaction and is discarded by the pool.
func (tx *Tx) Commit() error {
	if tx.finished {
		return driver.ErrBadConn
	}
	tx.finished = true

	ctx := context.Background()
	err := tx.conn.statement(ctx, "COMMIT")
	if err == nil {
		tx.conn.inTx = false
		return nil
	}
	if rbErr := tx.conn.statement(ctx, "ROLLBACK"); rbErr != nil {
		return errors.Join(err, rbErr)
	}
	tx.conn.inTx = false
	return err
}

// Rollback rolls back the transaction
func (tx *Tx) Rollback() error {
	if tx.finished {
		return driver.ErrBadConn
	}
	tx.finished = true

	if err := tx.conn.statement(context.Background(), "ROLLBACK"); err != nil {
		return err
	}
	tx.conn.inTx = false
	return nil
}

var _ driver.Tx = (*Tx)(nil)
