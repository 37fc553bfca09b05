package purego

import (
	"sync"
	"unsafe"

	"github.com/ebitengine/purego"
)

// ExecFunc receives one sqlite3_exec row: argc values and column names as
// native char* arrays. A non-zero return aborts the statement.
type ExecFunc func(argc int, argv, names unsafe.Pointer) int32

// purego callbacks are never freed and their number is limited, so a
// single trampoline serves every Exec and dispatches on the void* argument.
var (
	trampolineOnce sync.Once
	trampoline     uintptr

	callbacksMu sync.Mutex
	callbacks   = map[uintptr]ExecFunc{}
	nextID      uintptr
)

func callbackAddr() uintptr {
	trampolineOnce.Do(func() {
		trampoline = purego.NewCallback(execTrampoline)
	})
	return trampoline
}

func execTrampoline(arg uintptr, argc int32, argv, names unsafe.Pointer) int32 {
	callbacksMu.Lock()
	fn := callbacks[arg]
	callbacksMu.Unlock()
	if fn == nil {
		return 1
	}
	return fn(int(argc), argv, names)
}

// registerCallback keeps fn alive until unregisterCallback and returns
// the key to pass as the native void* argument.
func registerCallback(fn ExecFunc) uintptr {
	callbacksMu.Lock()
	defer callbacksMu.Unlock()
	nextID++
	if nextID == 0 {
		nextID++
	}
	callbacks[nextID] = fn
	return nextID
}

func unregisterCallback(id uintptr) {
	callbacksMu.Lock()
	delete(callbacks, id)
	callbacksMu.Unlock()
}
