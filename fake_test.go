package sqlite

import (
	"errors"
	"unsafe"

	"github.com/connerohnesorge/sqlite-purego/internal/purego"
)

func str(s string) *string { return &s }

// cArray lays cells out as a native char* array in Go memory. A nil cell
// becomes a NULL pointer.
func cArray(cells []*string) unsafe.Pointer {
	if len(cells) == 0 {
		return nil
	}
	arr := make([]unsafe.Pointer, len(cells))
	for i, c := range cells {
		if c == nil {
			continue
		}
		buf := append([]byte(*c), 0)
		arr[i] = unsafe.Pointer(&buf[0])
	}
	return unsafe.Pointer(&arr[0])
}

// nativeTable builds a get_table style result: headers then row-major
// data.
func nativeTable(headers []string, rows ...[]*string) purego.TableResult {
	cells := make([]*string, 0, len(headers)*(len(rows)+1))
	for _, h := range headers {
		cells = append(cells, str(h))
	}
	for _, r := range rows {
		cells = append(cells, r...)
	}
	return purego.TableResult{Data: cArray(cells), Rows: len(rows), Cols: len(headers)}
}

// fakeAPI stands in for the native library.
type fakeAPI struct {
	openDB  purego.DB
	openRC  Code
	openMsg *string

	closeRC  Code
	closeMsg *string

	execCols []string
	execRows [][]*string
	execRC   Code
	execMsg  *string

	table    purego.TableResult
	tableRC  Code
	tableMsg *string

	callRet uintptr
	callErr error
	errmsg  string
	version string

	opens, closes, execs, tables, freed, released int
	lastSQL                                       string
	calls                                         []string
	callArgs                                      [][]uintptr
}

func (f *fakeAPI) Open(path string) (purego.DB, Code, *string, error) {
	if _, err := purego.CString(path); err != nil {
		return 0, 0, nil, err
	}
	f.opens++
	if f.openRC != CodeOK {
		return 0, f.openRC, f.openMsg, nil
	}
	return f.openDB, f.openRC, f.openMsg, nil
}

func (f *fakeAPI) CloseDB(db purego.DB) (Code, *string) {
	f.closes++
	return f.closeRC, f.closeMsg
}

func (f *fakeAPI) Exec(db purego.DB, sql string, fn purego.ExecFunc) (Code, *string, error) {
	if _, err := purego.CString(sql); err != nil {
		return 0, nil, err
	}
	f.execs++
	f.lastSQL = sql
	if fn != nil {
		names := make([]*string, len(f.execCols))
		for i, n := range f.execCols {
			names[i] = str(n)
		}
		namesArr := cArray(names)
		for _, row := range f.execRows {
			if fn(len(row), cArray(row), namesArr) != 0 {
				return CodeAbort, str("query aborted"), nil
			}
		}
	}
	return f.execRC, f.execMsg, nil
}

func (f *fakeAPI) GetTable(db purego.DB, sql string) (purego.TableResult, Code, *string, error) {
	f.tables++
	f.lastSQL = sql
	if f.tableRC != CodeOK {
		return purego.TableResult{}, f.tableRC, f.tableMsg, nil
	}
	return f.table, f.tableRC, f.tableMsg, nil
}

func (f *fakeAPI) FreeTable(res purego.TableResult) {
	f.freed++
}

func (f *fakeAPI) Errmsg(db purego.DB) string {
	return f.errmsg
}

func (f *fakeAPI) LibVersion() string {
	return f.version
}

func (f *fakeAPI) Call(name string, args ...uintptr) (uintptr, error) {
	f.calls = append(f.calls, name)
	f.callArgs = append(f.callArgs, args)
	return f.callRet, f.callErr
}

func (f *fakeAPI) Release() error {
	f.released++
	if f.released > 1 {
		return errors.New("released twice")
	}
	return nil
}

// newTestConn returns a Conn over f, opened when f.openDB is set.
func newTestConn(f *fakeAPI, opts ...Option) *Conn {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	c := newConn(f, s)
	if f.openDB != 0 {
		if _, err := c.Open("test.db"); err != nil {
			panic(err)
		}
	}
	return c
}
