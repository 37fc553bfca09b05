// Package sqlite provides a pure-Go binding to the SQLite C library.
//
// The library is loaded at runtime through purego instead of cgo, so no C
// toolchain is needed to build programs that use it. The binding exposes
// the raw primitives of the C interface: open, close, exec and
// get_table, plus an opt-in escape hatch for calling any other sqlite3_*
// function.
//
// Usage:
//
//	conn, err := sqlite.New("app.db")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Release()
//
//	res, err := conn.Exec("SELECT id, name FROM users", nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	name, _ := res.Table.Field(1, "name")
//
// A database/sql driver built on the same primitives lives in the driver
// subpackage.
package sqlite

import (
	"strings"

	"github.com/connerohnesorge/sqlite-purego/internal/purego"
)

// Version returns the version of the SQLite Go binding
const Version = "0.1.0"

// Code is an SQLite result code.
type Code = purego.Code

// Result codes callers commonly branch on.
const (
	CodeOK         = purego.OK
	CodeError      = purego.Error
	CodeAbort      = purego.Abort
	CodeBusy       = purego.Busy
	CodeLocked     = purego.Locked
	CodeNoMem      = purego.NoMem
	CodeReadOnly   = purego.ReadOnly
	CodeCantOpen   = purego.CantOpen
	CodeConstraint = purego.Constraint
	CodeMisuse     = purego.Misuse
	CodeRange      = purego.Range
	CodeNotADB     = purego.NotADB
	CodeRow        = purego.Row
	CodeDone       = purego.Done
)

// Escape doubles every single quote in s so it can be placed inside a
// single-quoted SQL literal. It is not a substitute for bound parameters.
func Escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
