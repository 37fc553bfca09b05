package sqlite

import (
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"sync"
	"unsafe"

	"github.com/google/uuid"

	"github.com/connerohnesorge/sqlite-purego/internal/purego"
)

// api is the subset of the native library a Conn drives.
type api interface {
	Open(path string) (purego.DB, Code, *string, error)
	CloseDB(db purego.DB) (Code, *string)
	Exec(db purego.DB, sql string, fn purego.ExecFunc) (Code, *string, error)
	GetTable(db purego.DB, sql string) (purego.TableResult, Code, *string, error)
	FreeTable(res purego.TableResult)
	Errmsg(db purego.DB) string
	LibVersion() string
	Call(name string, args ...uintptr) (uintptr, error)
	Release() error
}

// acquire hands out a reference to the process-wide library.
var acquire = func(path string) (api, error) {
	s, err := purego.Acquire(path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// LibVersion returns the version string of the SQLite library the binding
// loads, such as "3.45.1".
func LibVersion() (string, error) {
	lib, err := acquire("")
	if err != nil {
		return "", err
	}
	v := lib.LibVersion()
	return v, lib.Release()
}

// RowFunc receives one result row from Exec. Returning an error aborts
// the statement; the error is then reachable from the returned *Error
// through errors.Is and errors.As.
type RowFunc func(columns []string, values []Value) error

// Result is the outcome of Exec or Dispatch. Table is set for
// row-returning statements, Value for raw calls that return something
// other than a status code.
type Result struct {
	Code  Code
	Table *Table
	Value any
}

// Conn owns one native SQLite connection handle.
//
// A Conn is meant to be used from one goroutine at a time; the native
// handle is not shared between Conns.
type Conn struct {
	api    api
	id     uuid.UUID
	logger *log.Logger

	mu         sync.Mutex
	db         purego.DB
	errCode    Code
	errMsg     string
	autoEscape bool
	dispatch   bool
	released   bool
}

// New creates a connection bound to the shared SQLite library. When path
// (or the configured path) is non-empty the database is opened right away.
// Call Release when done with the Conn.
func New(path string, opts ...Option) (*Conn, error) {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}

	lib, err := acquire(s.config.Library)
	if err != nil {
		return nil, err
	}

	c := newConn(lib, s)
	runtime.SetFinalizer(c, (*Conn).finalize)

	if path == "" {
		path = s.config.Path
	}
	if path != "" {
		if _, err := c.Open(path); err != nil {
			_ = c.Release()
			return nil, err
		}
	}

	return c, nil
}

func newConn(lib api, s settings) *Conn {
	logger := s.logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Conn{
		api:        lib,
		id:         uuid.New(),
		logger:     logger,
		autoEscape: bool(s.config.AutoEscape),
		dispatch:   bool(s.config.Dispatch),
	}
}

// ID returns the identifier used for this Conn in log output.
func (c *Conn) ID() uuid.UUID {
	return c.id
}

// Handle returns the native sqlite3* handle, 0 when not connected.
func (c *Conn) Handle() uintptr {
	c.mu.Lock()
	defer c.mu.Unlock()
	return uintptr(c.db)
}

// LastError returns the code and message of the most recent native
// failure. Both are cleared at the start of every operation.
func (c *Conn) LastError() (Code, string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errCode, c.errMsg
}

// Open opens the database file at path.
func (c *Conn) Open(path string) (Code, error) {
	c.clearError()

	c.mu.Lock()
	released, db := c.released, c.db
	c.mu.Unlock()
	if released {
		return 0, ErrReleased
	}
	if db != 0 {
		return 0, ErrAlreadyOpen
	}

	db, rc, msg, err := c.api.Open(path)
	if err != nil {
		return 0, &ValueError{Name: "path", Value: path, Reason: err.Error()}
	}
	if rc == CodeOK && db == 0 {
		m := "unable to allocate memory for the database handle"
		rc, msg = CodeNoMem, &m
	}
	if rc != CodeOK && msg == nil {
		m := fmt.Sprintf("unable to open database file %q", path)
		msg = &m
	}
	if code, err := c.check("open", rc, msg); err != nil {
		return code, err
	}

	c.mu.Lock()
	c.db = db
	c.mu.Unlock()

	c.logger.Printf("sqlite: conn=%s opened %s", c.id, path)
	return CodeOK, nil
}

// Close closes the native handle. Closing an unopened Conn is a no-op.
// When SQLite refuses to close (SQLITE_BUSY) the handle stays open and the
// error is returned; nothing is retried.
func (c *Conn) Close() (Code, error) {
	c.clearError()

	db := purego.DB(c.Handle())
	if db == 0 {
		return CodeOK, nil
	}

	rc, msg := c.api.CloseDB(db)
	if rc != CodeOK {
		return c.check("close", rc, msg)
	}

	c.mu.Lock()
	c.db = 0
	c.mu.Unlock()

	c.logger.Printf("sqlite: conn=%s closed", c.id)
	return CodeOK, nil
}

// Exec runs sql. Without a callback, statements whose first keyword is
// SELECT, PRAGMA, WITH, VALUES or EXPLAIN are run through
// sqlite3_get_table and their rows returned in Result.Table. Everything
// else, and every call with a callback, goes through sqlite3_exec.
//
// Use Query or Statement to state the intent explicitly.
func (c *Conn) Exec(sql string, fn RowFunc) (Result, error) {
	if fn == nil && isRowReturning(sql) {
		t, err := c.Query(sql)
		if err != nil {
			code, _ := c.LastError()
			return Result{Code: failureCode(code)}, err
		}
		return Result{Code: CodeOK, Table: t}, nil
	}

	code, err := c.Statement(sql, fn)
	if err != nil {
		code = failureCode(code)
	}
	return Result{Code: code}, err
}

// failureCode maps the code recorded for a failed operation to a non-OK
// code. State and validation failures record none and report SQLITE_ERROR.
func failureCode(code Code) Code {
	if code == CodeOK {
		return CodeError
	}
	return code
}

// Changes returns the number of rows modified, inserted or deleted by the
// most recent INSERT, UPDATE or DELETE on the connection.
func (c *Conn) Changes() (int64, error) {
	db := purego.DB(c.Handle())
	if db == 0 {
		return 0, ErrNotConnected
	}
	r1, err := c.api.Call("sqlite3_changes", uintptr(db))
	if err != nil {
		return 0, &UnimplementedError{Op: "changes", Err: err}
	}
	return int64(int32(r1)), nil
}

// Query runs sql through sqlite3_get_table and decodes the result. The
// native buffer is released before Query returns.
func (c *Conn) Query(sql string) (*Table, error) {
	c.clearError()

	db := purego.DB(c.Handle())
	if db == 0 {
		return nil, ErrNotConnected
	}

	res, rc, msg, err := c.api.GetTable(db, sql)
	if err != nil {
		return nil, &ValueError{Name: "sql", Value: sql, Reason: err.Error()}
	}
	defer c.api.FreeTable(res)

	if _, err := c.check("query", rc, msg); err != nil {
		return nil, err
	}

	return decodeTable(res.Data, res.Rows, res.Cols)
}

// Statement runs sql through sqlite3_exec, calling fn once per result row
// when fn is non-nil.
func (c *Conn) Statement(sql string, fn RowFunc) (Code, error) {
	c.clearError()

	db := purego.DB(c.Handle())
	if db == 0 {
		return 0, ErrNotConnected
	}

	var (
		native purego.ExecFunc
		cbErr  error
	)
	if fn != nil {
		native = func(argc int, argv, names unsafe.Pointer) (rc int32) {
			defer func() {
				if r := recover(); r != nil {
					cbErr = fmt.Errorf("row callback panicked: %v", r)
					rc = 1
				}
			}()
			columns := make([]string, argc)
			values := make([]Value, argc)
			for i := 0; i < argc; i++ {
				columns[i] = cellAt(names, i).Text
				values[i] = cellAt(argv, i)
			}
			if err := fn(columns, values); err != nil {
				cbErr = err
				return 1
			}
			return 0
		}
	}

	rc, msg, err := c.api.Exec(db, sql, native)
	if err != nil {
		return 0, &ValueError{Name: "sql", Value: sql, Reason: err.Error()}
	}

	code, err := c.check("exec", rc, msg)
	if err != nil && cbErr != nil {
		var e *Error
		if errors.As(err, &e) {
			e.Err = cbErr
		}
	}
	return code, err
}

// Execf formats a statement with fmt.Sprintf and runs it with Exec. When
// auto-escaping is enabled, string and fmt.Stringer arguments are passed
// through Escape first.
func (c *Conn) Execf(format string, args ...any) (Result, error) {
	if c.AutoEscape() {
		escaped := make([]any, len(args))
		for i, arg := range args {
			switch v := arg.(type) {
			case string:
				escaped[i] = Escape(v)
			case fmt.Stringer:
				escaped[i] = Escape(v.String())
			default:
				escaped[i] = arg
			}
		}
		args = escaped
	}
	return c.Exec(fmt.Sprintf(format, args...), nil)
}

// AutoEscape reports whether Execf escapes string arguments.
func (c *Conn) AutoEscape() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.autoEscape
}

// SetAutoEscape turns argument escaping in Execf on or off.
func (c *Conn) SetAutoEscape(on bool) {
	c.mu.Lock()
	c.autoEscape = on
	c.mu.Unlock()
}

// Dispatching reports whether raw calls through Dispatch are enabled.
func (c *Conn) Dispatching() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dispatch
}

// SetDispatch enables or disables raw calls through Dispatch.
func (c *Conn) SetDispatch(on bool) {
	c.mu.Lock()
	c.dispatch = on
	c.mu.Unlock()
}

// SetOption sets a boolean switch by name ("auto_escape" or "dispatch").
// value may be a bool, the integers 0 or 1, or one of the strings
// accepted by ParseSwitch.
func (c *Conn) SetOption(name string, value any) error {
	on, err := ParseSwitch(value)
	if err != nil {
		return err
	}
	switch name {
	case "auto_escape":
		c.SetAutoEscape(on)
	case "dispatch":
		c.SetDispatch(on)
	default:
		return &ValueError{Name: "option", Value: name, Reason: "unknown option"}
	}
	return nil
}

// Release closes the connection if it is open and drops the Conn's
// reference to the shared library. The Conn cannot be reopened afterwards.
// When the close fails (SQLITE_BUSY) the error is returned and the library
// reference is not dropped, since the native handle still depends on it.
func (c *Conn) Release() error {
	c.mu.Lock()
	if c.released {
		c.mu.Unlock()
		return nil
	}
	c.released = true
	db := c.db
	c.db = 0
	c.mu.Unlock()

	runtime.SetFinalizer(c, nil)

	if db != 0 {
		if _, e := report(c.api.CloseDB(db)); e != nil {
			e.Op = "close"
			// The native connection is still open, so the library must stay
			// loaded; its reference is kept for the life of the process.
			c.logger.Printf("sqlite: conn=%s release: close failed, keeping library loaded: %s", c.id, e.Message)
			return e
		}
	}
	if err := c.api.Release(); err != nil {
		return err
	}

	c.logger.Printf("sqlite: conn=%s released", c.id)
	return nil
}

func (c *Conn) finalize() {
	if err := c.Release(); err != nil {
		c.logger.Printf("sqlite: conn=%s release in finalizer: %v", c.id, err)
	}
}

func (c *Conn) clearError() {
	c.mu.Lock()
	c.errCode, c.errMsg = 0, ""
	c.mu.Unlock()
}

// check routes a native result through report and records failures in
// the Conn's error state.
func (c *Conn) check(op string, rc Code, msg *string) (Code, error) {
	code, e := report(rc, msg)
	if e == nil {
		return code, nil
	}
	e.Op = op

	c.mu.Lock()
	c.errCode, c.errMsg = e.Code, e.Message
	c.mu.Unlock()

	c.logger.Printf("sqlite: conn=%s %s failed: %s (%s)", c.id, op, e.Message, e.Code)
	return code, e
}
