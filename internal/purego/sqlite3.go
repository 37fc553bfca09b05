package purego

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// SQLite represents a loaded SQLite library with its registered functions
type SQLite struct {
	lib *Library

	sqlite3Open       func(filename *byte, db *DB) int32
	sqlite3Close      func(db DB) int32
	sqlite3Exec       func(db DB, sql *byte, callback uintptr, arg uintptr, errmsg *unsafe.Pointer) int32
	sqlite3GetTable   func(db DB, sql *byte, result *unsafe.Pointer, nrow *int32, ncol *int32, errmsg *unsafe.Pointer) int32
	sqlite3FreeTable  func(result unsafe.Pointer)
	sqlite3Free       func(p unsafe.Pointer)
	sqlite3Errmsg     func(db DB) unsafe.Pointer
	sqlite3Libversion func() unsafe.Pointer
}

// maxCallArgs is the argument limit of purego.SyscallN.
const maxCallArgs = 15

var (
	sharedMu   sync.Mutex
	shared     *SQLite
	sharedRefs int
)

// Acquire returns the process-wide SQLite instance, loading it on first
// use. Every successful Acquire must be paired with one Release. Once the
// library is loaded, a different explicit path is rejected.
func Acquire(path string) (*SQLite, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		if path != "" && path != shared.lib.Path() {
			return nil, fmt.Errorf("SQLite library already loaded from %q, cannot load %q", shared.lib.Path(), path)
		}
		sharedRefs++
		return shared, nil
	}

	s, err := New(path)
	if err != nil {
		return nil, err
	}
	shared = s
	sharedRefs = 1
	return s, nil
}

// Release drops one reference taken by Acquire. The library is unloaded
// when the last reference is released.
func (s *SQLite) Release() error {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if s != shared || sharedRefs == 0 {
		return errors.New("release of an SQLite instance that is not held")
	}
	sharedRefs--
	if sharedRefs > 0 {
		return nil
	}
	shared = nil
	return s.Close()
}

// References reports how many Acquire calls are outstanding.
func References() int {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	return sharedRefs
}

// New loads the library and registers the functions used by the binding.
// Most callers want Acquire.
func New(path string) (*SQLite, error) {
	lib, err := LoadLibrary(path)
	if err != nil {
		return nil, err
	}

	s := &SQLite{lib: lib}

	if err := s.registerFunctions(); err != nil {
		_ = lib.Close() // Library closing errors not critical in error path
		return nil, err
	}

	return s, nil
}

// registerFunctions registers the SQLite C API functions
func (s *SQLite) registerFunctions() error {
	funcs := []struct {
		fn   interface{}
		name string
	}{
		{&s.sqlite3Open, "sqlite3_open"},
		{&s.sqlite3Close, "sqlite3_close"},
		{&s.sqlite3Exec, "sqlite3_exec"},
		{&s.sqlite3GetTable, "sqlite3_get_table"},
		{&s.sqlite3FreeTable, "sqlite3_free_table"},
		{&s.sqlite3Free, "sqlite3_free"},
		{&s.sqlite3Errmsg, "sqlite3_errmsg"},
		{&s.sqlite3Libversion, "sqlite3_libversion"},
	}
	for _, f := range funcs {
		if err := s.lib.RegisterFunc(f.fn, f.name); err != nil {
			return fmt.Errorf("failed to register %s: %w", f.name, err)
		}
	}
	return nil
}

// Close unloads the library
func (s *SQLite) Close() error {
	if s.lib != nil {
		return s.lib.Close()
	}
	return nil
}

// Path returns the file the library was loaded from.
func (s *SQLite) Path() string {
	return s.lib.Path()
}

// Call invokes the exported function name with integer-class arguments and
// returns its raw result register. No marshaling is performed.
func (s *SQLite) Call(name string, args ...uintptr) (uintptr, error) {
	if len(args) > maxCallArgs {
		return 0, fmt.Errorf("%s: %d arguments exceeds the limit of %d", name, len(args), maxCallArgs)
	}
	addr, err := s.lib.Symbol(name)
	if err != nil {
		return 0, err
	}
	r1, _, _ := purego.SyscallN(addr, args...)
	return r1, nil
}
