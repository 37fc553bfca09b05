package driver

import (
	"context"
	"database/sql"
	"database/sql/driver"

	sqlite "github.com/connerohnesorge/sqlite-purego"
)

// DriverName is the name the driver registers with database/sql.
const DriverName = "sqlite-purego"

func init() {
	sql.Register(DriverName, &Driver{})
}

// Driver implements the database/sql/driver.Driver interface
type Driver struct {
	// Options are applied to every connection the driver opens.
	Options []sqlite.Option
}

// Open returns a new connection to the database file name
func (d *Driver) Open(name string) (driver.Conn, error) {
	connector, err := d.OpenConnector(name)
	if err != nil {
		return nil, err
	}
	return connector.Connect(context.Background())
}

// OpenConnector returns a new connector
func (d *Driver) OpenConnector(name string) (driver.Connector, error) {
	return &Connector{
		driver: d,
		name:   name,
	}, nil
}

// Ensure Driver implements the required interfaces
var (
	_ driver.Driver        = (*Driver)(nil)
	_ driver.DriverContext = (*Driver)(nil)
)
