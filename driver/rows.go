package driver

import (
	"database/sql/driver"
	"io"
	"reflect"

	sqlite "github.com/connerohnesorge/sqlite-purego"
)

// Rows implements the database/sql/driver.Rows interface over a decoded
// table. SQLite returns every value as text through get_table, so
// non-NULL cells are strings and NULL cells are nil.
type Rows struct {
	table *sqlite.Table
	next  int
}

func newRows(table *sqlite.Table) *Rows {
	return &Rows{table: table, next: 1}
}

// Columns returns the column names
func (r *Rows) Columns() []string {
	return r.table.Headers()
}

// Close closes the rows iterator
func (r *Rows) Close() error {
	r.next = r.table.RowCount() + 1
	return nil
}

// Next populates the provided slice with the next row values
func (r *Rows) Next(dest []driver.Value) error {
	if r.next > r.table.RowCount() {
		return io.EOF
	}
	row, err := r.table.Row(r.next)
	if err != nil {
		return err
	}
	r.next++

	for i := range dest {
		if i >= len(row) {
			break
		}
		if row[i].IsNull() {
			dest[i] = nil
		} else {
			dest[i] = row[i].Text
		}
	}
	return nil
}

// ColumnTypeDatabaseTypeName returns the database type name
func (r *Rows) ColumnTypeDatabaseTypeName(index int) string {
	return "TEXT"
}

// ColumnTypeNullable returns whether the column can be null
func (r *Rows) ColumnTypeNullable(index int) (nullable, ok bool) {
	return true, true
}

// ColumnTypeScanType returns the Go type for scanning
func (r *Rows) ColumnTypeScanType(index int) reflect.Type {
	return reflect.TypeOf("")
}

var (
	_ driver.Rows                           = (*Rows)(nil)
	_ driver.RowsColumnTypeDatabaseTypeName = (*Rows)(nil)
	_ driver.RowsColumnTypeNullable         = (*Rows)(nil)
	_ driver.RowsColumnTypeScanType         = (*Rows)(nil)
)
