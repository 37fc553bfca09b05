package purego

import (
	"runtime"
	"unsafe"
)

// Open opens a database file. A handle SQLite allocated for a failed open
// is closed here, so the returned DB is zero whenever code is not OK.
func (s *SQLite) Open(path string) (DB, Code, *string, error) {
	buf, err := CString(path)
	if err != nil {
		return 0, 0, nil, err
	}

	var db DB
	rc := Code(s.sqlite3Open(&buf[0], &db))
	runtime.KeepAlive(buf)

	if rc != OK {
		var msg *string
		if db != 0 {
			m := s.Errmsg(db)
			msg = &m
			s.sqlite3Close(db)
		}
		return 0, rc, msg, nil
	}

	return db, rc, nil, nil
}

// CloseDB closes a database handle. On failure the handle stays valid and
// the connection's error text is returned.
func (s *SQLite) CloseDB(db DB) (Code, *string) {
	rc := Code(s.sqlite3Close(db))
	if rc != OK {
		m := s.Errmsg(db)
		return rc, &m
	}
	return rc, nil
}

// Exec runs sql through sqlite3_exec. fn, when non-nil, is called once per
// result row on the calling goroutine.
func (s *SQLite) Exec(db DB, sql string, fn ExecFunc) (Code, *string, error) {
	buf, err := CString(sql)
	if err != nil {
		return 0, nil, err
	}

	var cb, arg uintptr
	if fn != nil {
		cb = callbackAddr()
		arg = registerCallback(fn)
		defer unregisterCallback(arg)
	}

	var errmsg unsafe.Pointer
	rc := Code(s.sqlite3Exec(db, &buf[0], cb, arg, &errmsg))
	runtime.KeepAlive(buf)

	return rc, s.takeMessage(errmsg), nil
}

// GetTable runs sql through sqlite3_get_table. When code is OK the caller
// owns the result and must pass it to FreeTable.
func (s *SQLite) GetTable(db DB, sql string) (TableResult, Code, *string, error) {
	buf, err := CString(sql)
	if err != nil {
		return TableResult{}, 0, nil, err
	}

	var (
		data       unsafe.Pointer
		nrow, ncol int32
		errmsg     unsafe.Pointer
	)
	rc := Code(s.sqlite3GetTable(db, &buf[0], &data, &nrow, &ncol, &errmsg))
	runtime.KeepAlive(buf)

	res := TableResult{Data: data, Rows: int(nrow), Cols: int(ncol)}
	return res, rc, s.takeMessage(errmsg), nil
}

// FreeTable releases a sqlite3_get_table result.
func (s *SQLite) FreeTable(res TableResult) {
	if res.Data != nil {
		s.sqlite3FreeTable(res.Data)
	}
}

// Errmsg returns the most recent error text for db. The buffer is owned by
// SQLite and is not freed.
func (s *SQLite) Errmsg(db DB) string {
	msg, _ := GoString(s.sqlite3Errmsg(db))
	return msg
}

// LibVersion returns the version string of the loaded library.
func (s *SQLite) LibVersion() string {
	v, _ := GoString(s.sqlite3Libversion())
	return v
}

// takeMessage decodes a sqlite3_malloc'd error message and frees it.
func (s *SQLite) takeMessage(p unsafe.Pointer) *string {
	if p == nil {
		return nil
	}
	msg, _ := GoString(p)
	s.sqlite3Free(p)
	return &msg
}
