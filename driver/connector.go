package driver

import (
	"context"
	"database/sql/driver"

	sqlite "github.com/connerohnesorge/sqlite-purego"
)

// Connector implements the database/sql/driver.Connector interface
type Connector struct {
	driver *Driver
	name   string
	opts   []sqlite.Option
}

// NewConnector returns a Connector for the database file name, for use
// with sql.OpenDB.
func NewConnector(name string, opts ...sqlite.Option) *Connector {
	return &Connector{driver: &Driver{}, name: name, opts: opts}
}

// Connect returns a new connection
func (c *Connector) Connect(ctx context.Context) (driver.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	opts := append(append([]sqlite.Option(nil), c.driver.Options...), c.opts...)
	conn, err := sqlite.New(c.name, opts...)
	if err != nil {
		return nil, err
	}

	return &Conn{conn: conn}, nil
}

// Driver returns the underlying driver
func (c *Connector) Driver() driver.Driver {
	return c.driver
}

var _ driver.Connector = (*Connector)(nil)
