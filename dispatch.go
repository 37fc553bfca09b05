package sqlite

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/connerohnesorge/sqlite-purego/internal/purego"
)

// Op is an operation Dispatch can perform. OpenOp, CloseOp and ExecOp map
// onto the typed methods; RawOp calls a native function directly.
type Op interface {
	opName() string
}

// OpenOp opens Path, as Conn.Open.
type OpenOp struct {
	Path string
}

// CloseOp closes the connection, as Conn.Close.
type CloseOp struct{}

// ExecOp runs SQL, as Conn.Exec.
type ExecOp struct {
	SQL string
	Fn  RowFunc
}

// RawOp calls the native function sqlite3_<Name> with Args. Nothing about
// the call is checked beyond converting each argument to a machine word:
// the caller is responsible for matching the C signature.
type RawOp struct {
	Name    string
	Args    []Arg
	Returns ReturnKind
}

func (OpenOp) opName() string  { return "open" }
func (CloseOp) opName() string { return "close" }
func (ExecOp) opName() string  { return "exec" }
func (o RawOp) opName() string { return o.Name }

// ArgType is the native type of a raw call argument.
type ArgType int

const (
	ArgInt     ArgType = iota // C int
	ArgInt64                  // sqlite3_int64
	ArgPointer                // any pointer, passed as is
	ArgText                   // const char*, UTF-8, NUL-terminated
	ArgHandle                 // this connection's sqlite3*
	ArgDouble                 // double; not supported by the raw call path
)

func (t ArgType) String() string {
	switch t {
	case ArgInt:
		return "int"
	case ArgInt64:
		return "int64"
	case ArgPointer:
		return "pointer"
	case ArgText:
		return "text"
	case ArgHandle:
		return "handle"
	case ArgDouble:
		return "double"
	}
	return fmt.Sprintf("ArgType(%d)", int(t))
}

// Arg is one raw call argument paired with its native type.
type Arg struct {
	Type  ArgType
	Value any
}

// IntArg returns a C int argument.
func IntArg(v int32) Arg { return Arg{Type: ArgInt, Value: v} }

// Int64Arg returns a sqlite3_int64 argument.
func Int64Arg(v int64) Arg { return Arg{Type: ArgInt64, Value: v} }

// PointerArg returns a pointer argument.
func PointerArg(p uintptr) Arg { return Arg{Type: ArgPointer, Value: p} }

// TextArg returns a C string argument.
func TextArg(s string) Arg { return Arg{Type: ArgText, Value: s} }

// HandleArg stands for the connection's own sqlite3* handle.
func HandleArg() Arg { return Arg{Type: ArgHandle} }

// DoubleArg returns a double argument.
func DoubleArg(f float64) Arg { return Arg{Type: ArgDouble, Value: f} }

// ReturnKind says how to interpret the result of a raw call.
type ReturnKind int

const (
	ReturnStatus  ReturnKind = iota // int result code, checked like any other call
	ReturnInt                       // C int, in Result.Value as int64
	ReturnInt64                     // sqlite3_int64, in Result.Value as int64
	ReturnPointer                   // pointer, in Result.Value as uintptr
	ReturnText                      // const char* owned by SQLite, in Result.Value as string (nil for NULL)
)

// Dispatch performs op. Raw calls require SetDispatch(true); otherwise
// they fail with *UnimplementedError naming the function.
func (c *Conn) Dispatch(op Op) (Result, error) {
	switch op := op.(type) {
	case OpenOp:
		code, err := c.Open(op.Path)
		if err != nil {
			code = failureCode(code)
		}
		return Result{Code: code}, err
	case CloseOp:
		code, err := c.Close()
		if err != nil {
			code = failureCode(code)
		}
		return Result{Code: code}, err
	case ExecOp:
		return c.Exec(op.SQL, op.Fn)
	case RawOp:
		return c.raw(op)
	case nil:
		return Result{}, &UnimplementedError{Op: "<nil>"}
	default:
		return Result{}, &UnimplementedError{Op: op.opName()}
	}
}

func (c *Conn) raw(op RawOp) (Result, error) {
	c.clearError()

	if !c.Dispatching() {
		return Result{}, &UnimplementedError{Op: op.Name}
	}
	if op.Name == "" {
		return Result{}, &ValueError{Name: "function name", Value: op.Name, Reason: "empty"}
	}

	c.mu.Lock()
	released, db := c.released, c.db
	c.mu.Unlock()
	if released {
		return Result{}, ErrReleased
	}

	args, keep, err := marshalArgs(op.Args, db)
	if err != nil {
		return Result{}, err
	}

	symbol := "sqlite3_" + op.Name
	r1, err := c.api.Call(symbol, args...)
	runtime.KeepAlive(keep)
	if err != nil {
		return Result{}, &UnimplementedError{Op: op.Name, Err: err}
	}
	c.logger.Printf("sqlite: conn=%s raw %s(%d args) = %#x", c.id, symbol, len(args), r1)

	switch op.Returns {
	case ReturnInt:
		return Result{Code: CodeOK, Value: int64(int32(r1))}, nil
	case ReturnInt64:
		return Result{Code: CodeOK, Value: int64(r1)}, nil
	case ReturnPointer:
		return Result{Code: CodeOK, Value: r1}, nil
	case ReturnText:
		s, ok := purego.GoString(*(*unsafe.Pointer)(unsafe.Pointer(&r1)))
		if !ok {
			return Result{Code: CodeOK}, nil
		}
		return Result{Code: CodeOK, Value: s}, nil
	}

	rc := Code(int32(r1))
	var msg *string
	if rc != CodeOK && !rc.Informational() && db != 0 {
		m := c.api.Errmsg(db)
		msg = &m
	}
	code, err := c.check(op.Name, rc, msg)
	return Result{Code: code}, err
}

// marshalArgs converts raw call arguments to machine words. The returned
// buffers back ArgText pointers and must stay reachable for the call.
func marshalArgs(in []Arg, db purego.DB) ([]uintptr, [][]byte, error) {
	args := make([]uintptr, len(in))
	var keep [][]byte

	for i, a := range in {
		bad := func(reason string) error {
			return &ValueError{Name: fmt.Sprintf("argument %d (%s)", i+1, a.Type), Value: a.Value, Reason: reason}
		}

		switch a.Type {
		case ArgInt:
			v, ok := a.Value.(int32)
			if !ok {
				return nil, nil, bad("want int32")
			}
			args[i] = uintptr(v)
		case ArgInt64:
			v, ok := a.Value.(int64)
			if !ok {
				return nil, nil, bad("want int64")
			}
			if unsafe.Sizeof(uintptr(0)) < 8 {
				return nil, nil, bad("64-bit arguments need a 64-bit platform")
			}
			args[i] = uintptr(v)
		case ArgPointer:
			v, ok := a.Value.(uintptr)
			if !ok {
				return nil, nil, bad("want uintptr")
			}
			args[i] = v
		case ArgText:
			s, ok := a.Value.(string)
			if !ok {
				return nil, nil, bad("want string")
			}
			buf, err := purego.CString(s)
			if err != nil {
				return nil, nil, bad(err.Error())
			}
			keep = append(keep, buf)
			args[i] = uintptr(unsafe.Pointer(&buf[0]))
		case ArgHandle:
			if db == 0 {
				return nil, nil, ErrNotConnected
			}
			args[i] = uintptr(db)
		case ArgDouble:
			return nil, nil, bad("floating-point arguments are not passed by raw calls")
		default:
			return nil, nil, bad("unknown argument type")
		}
	}

	return args, keep, nil
}
