package sqlite

import (
	"errors"
	"runtime"
	"testing"
	"unsafe"

	"github.com/connerohnesorge/sqlite-purego/internal/purego"
)

func TestDispatchTypedOps(t *testing.T) {
	f := &fakeAPI{openDB: 11, table: nativeTable([]string{"x"}, []*string{str("1")})}
	c := newConn(f, defaultSettings())

	if res, err := c.Dispatch(OpenOp{Path: "a.db"}); err != nil || res.Code != CodeOK {
		t.Fatalf("OpenOp failed: %v", err)
	}
	if c.Handle() != 11 {
		t.Errorf("Expected handle 11, got %d", c.Handle())
	}

	res, err := c.Dispatch(ExecOp{SQL: "SELECT 1 AS x"})
	if err != nil {
		t.Fatalf("ExecOp failed: %v", err)
	}
	if v, _ := res.Table.Field(1, "x"); v.Text != "1" {
		t.Errorf("Expected 1, got %q", v.Text)
	}

	if _, err := c.Dispatch(CloseOp{}); err != nil {
		t.Fatalf("CloseOp failed: %v", err)
	}
	if c.Handle() != 0 {
		t.Error("Expected handle cleared")
	}

	var ue *UnimplementedError
	if _, err := c.Dispatch(nil); !errors.As(err, &ue) {
		t.Errorf("Expected *UnimplementedError for nil op, got %v", err)
	}
}

func TestDispatchRawDisabled(t *testing.T) {
	f := &fakeAPI{openDB: 1}
	c := newTestConn(f)

	_, err := c.Dispatch(RawOp{Name: "changes", Args: []Arg{HandleArg()}, Returns: ReturnInt})
	var ue *UnimplementedError
	if !errors.As(err, &ue) || ue.Op != "changes" {
		t.Fatalf("Expected *UnimplementedError naming changes, got %v", err)
	}
	if len(f.calls) != 0 {
		t.Error("Expected no native call while dispatch is disabled")
	}
}

func TestDispatchRaw(t *testing.T) {
	f := &fakeAPI{openDB: 77}
	c := newTestConn(f, WithDispatch(true))

	t.Run("Int", func(t *testing.T) {
		f.callRet = 3
		res, err := c.Dispatch(RawOp{Name: "changes", Args: []Arg{HandleArg()}, Returns: ReturnInt})
		if err != nil {
			t.Fatalf("raw call failed: %v", err)
		}
		if res.Value != int64(3) {
			t.Errorf("Expected 3, got %v", res.Value)
		}
		last := len(f.calls) - 1
		if f.calls[last] != "sqlite3_changes" {
			t.Errorf("Expected sqlite3_changes, got %s", f.calls[last])
		}
		if args := f.callArgs[last]; len(args) != 1 || args[0] != 77 {
			t.Errorf("Expected handle argument, got %v", args)
		}
	})

	t.Run("Text", func(t *testing.T) {
		buf := []byte("3.45.0\x00")
		f.callRet = uintptr(unsafe.Pointer(&buf[0]))
		res, err := c.Dispatch(RawOp{Name: "libversion", Returns: ReturnText})
		runtime.KeepAlive(buf)
		if err != nil {
			t.Fatalf("raw call failed: %v", err)
		}
		if res.Value != "3.45.0" {
			t.Errorf("Expected 3.45.0, got %v", res.Value)
		}

		f.callRet = 0
		res, _ = c.Dispatch(RawOp{Name: "libversion", Returns: ReturnText})
		if res.Value != nil {
			t.Errorf("Expected nil for a NULL string, got %v", res.Value)
		}
	})

	t.Run("StatusFailure", func(t *testing.T) {
		f.callRet = uintptr(CodeMisuse)
		f.errmsg = "bad parameter or other API misuse"
		res, err := c.Dispatch(RawOp{Name: "busy_timeout", Args: []Arg{HandleArg(), IntArg(100)}})
		if res.Code != CodeMisuse {
			t.Errorf("Expected SQLITE_MISUSE, got %s", res.Code)
		}
		var e *Error
		if !errors.As(err, &e) || e.Message != f.errmsg || e.Op != "busy_timeout" {
			t.Fatalf("Expected reported *Error, got %v", err)
		}
		if code, msg := c.LastError(); code != CodeMisuse || msg != f.errmsg {
			t.Errorf("Unexpected last error %s %q", code, msg)
		}
	})

	t.Run("StatusDone", func(t *testing.T) {
		f.callRet = uintptr(CodeDone)
		res, err := c.Dispatch(RawOp{Name: "step", Args: []Arg{PointerArg(0)}})
		if err != nil || res.Code != CodeDone {
			t.Errorf("Expected SQLITE_DONE to pass through, got %s %v", res.Code, err)
		}
	})

	t.Run("MissingSymbol", func(t *testing.T) {
		f.callErr = errors.New("symbol not found")
		defer func() { f.callErr = nil }()
		_, err := c.Dispatch(RawOp{Name: "no_such_fn"})
		var ue *UnimplementedError
		if !errors.As(err, &ue) || !errors.Is(err, f.callErr) {
			t.Errorf("Expected *UnimplementedError wrapping the lookup error, got %v", err)
		}
	})

	t.Run("EmptyName", func(t *testing.T) {
		var ve *ValueError
		if _, err := c.Dispatch(RawOp{}); !errors.As(err, &ve) {
			t.Errorf("Expected *ValueError, got %v", err)
		}
	})
}

func TestMarshalArgs(t *testing.T) {
	args, keep, err := marshalArgs([]Arg{
		IntArg(-1),
		Int64Arg(1 << 40),
		PointerArg(0xdead),
		TextArg("main"),
		HandleArg(),
	}, purego.DB(99))
	if err != nil {
		t.Fatalf("marshalArgs failed: %v", err)
	}
	if int32(args[0]) != -1 {
		t.Errorf("int: got %#x", args[0])
	}
	if unsafe.Sizeof(uintptr(0)) == 8 && uint64(args[1]) != 1<<40 {
		t.Errorf("int64: got %#x", args[1])
	}
	if args[2] != 0xdead || args[4] != 99 {
		t.Errorf("pointer/handle: got %#x %#x", args[2], args[4])
	}
	if len(keep) != 1 {
		t.Fatalf("Expected one kept text buffer, got %d", len(keep))
	}
	if s, _ := purego.GoString(unsafe.Pointer(&keep[0][0])); s != "main" {
		t.Errorf("text: got %q", s)
	}

	bad := []struct {
		name string
		args []Arg
		db   purego.DB
		want error
	}{
		{"double", []Arg{DoubleArg(1.5)}, 1, nil},
		{"wrong int type", []Arg{{Type: ArgInt, Value: 1}}, 1, nil},
		{"nul in text", []Arg{TextArg("a\x00")}, 1, nil},
		{"unknown type", []Arg{{Type: ArgType(42)}}, 1, nil},
		{"handle without db", []Arg{HandleArg()}, 0, ErrNotConnected},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := marshalArgs(tt.args, tt.db)
			if err == nil {
				t.Fatal("Expected error")
			}
			if tt.want != nil {
				if !errors.Is(err, tt.want) {
					t.Errorf("Expected %v, got %v", tt.want, err)
				}
				return
			}
			var ve *ValueError
			if !errors.As(err, &ve) {
				t.Errorf("Expected *ValueError, got %T %v", err, err)
			}
		})
	}
}
