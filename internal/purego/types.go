package purego

import (
	"strconv"
	"unsafe"
)

// DB is a native sqlite3* connection handle.
type DB uintptr

// Code is an SQLite result code. Extended codes carry the primary code in
// their low byte.
type Code int32

// Primary result codes
const (
	OK         Code = 0
	Error      Code = 1
	Internal   Code = 2
	Perm       Code = 3
	Abort      Code = 4
	Busy       Code = 5
	Locked     Code = 6
	NoMem      Code = 7
	ReadOnly   Code = 8
	Interrupt  Code = 9
	IOErr      Code = 10
	Corrupt    Code = 11
	NotFound   Code = 12
	Full       Code = 13
	CantOpen   Code = 14
	Protocol   Code = 15
	Empty      Code = 16
	Schema     Code = 17
	TooBig     Code = 18
	Constraint Code = 19
	Mismatch   Code = 20
	Misuse     Code = 21
	NoLFS      Code = 22
	Auth       Code = 23
	Format     Code = 24
	Range      Code = 25
	NotADB     Code = 26
	Notice     Code = 27
	Warning    Code = 28
	Row        Code = 100
	Done       Code = 101
)

var codeNames = map[Code]string{
	OK:         "SQLITE_OK",
	Error:      "SQLITE_ERROR",
	Internal:   "SQLITE_INTERNAL",
	Perm:       "SQLITE_PERM",
	Abort:      "SQLITE_ABORT",
	Busy:       "SQLITE_BUSY",
	Locked:     "SQLITE_LOCKED",
	NoMem:      "SQLITE_NOMEM",
	ReadOnly:   "SQLITE_READONLY",
	Interrupt:  "SQLITE_INTERRUPT",
	IOErr:      "SQLITE_IOERR",
	Corrupt:    "SQLITE_CORRUPT",
	NotFound:   "SQLITE_NOTFOUND",
	Full:       "SQLITE_FULL",
	CantOpen:   "SQLITE_CANTOPEN",
	Protocol:   "SQLITE_PROTOCOL",
	Empty:      "SQLITE_EMPTY",
	Schema:     "SQLITE_SCHEMA",
	TooBig:     "SQLITE_TOOBIG",
	Constraint: "SQLITE_CONSTRAINT",
	Mismatch:   "SQLITE_MISMATCH",
	Misuse:     "SQLITE_MISUSE",
	NoLFS:      "SQLITE_NOLFS",
	Auth:       "SQLITE_AUTH",
	Format:     "SQLITE_FORMAT",
	Range:      "SQLITE_RANGE",
	NotADB:     "SQLITE_NOTADB",
	Notice:     "SQLITE_NOTICE",
	Warning:    "SQLITE_WARNING",
	Row:        "SQLITE_ROW",
	Done:       "SQLITE_DONE",
}

// Primary strips the extended bits from c.
func (c Code) Primary() Code {
	return c & 0xff
}

// String returns the C name of the code. Extended codes are reported by
// their primary name with the full value appended.
func (c Code) String() string {
	if name, ok := codeNames[c]; ok {
		return name
	}
	if name, ok := codeNames[c.Primary()]; ok {
		return name + "(" + strconv.Itoa(int(c)) + ")"
	}
	return "SQLITE_UNKNOWN(" + strconv.Itoa(int(c)) + ")"
}

// Informational reports whether c is a code SQLite uses for a non-fatal
// condition rather than a failure.
func (c Code) Informational() bool {
	switch c.Primary() {
	case Row, Done, Notice, Warning:
		return true
	}
	return false
}

// TableResult is the raw output of sqlite3_get_table. Data points at
// (Rows+1)*Cols char* entries and must be released with FreeTable.
type TableResult struct {
	Data unsafe.Pointer
	Rows int
	Cols int
}

// ptrSize is the width of one entry in a native pointer array.
const ptrSize = unsafe.Sizeof(uintptr(0))
