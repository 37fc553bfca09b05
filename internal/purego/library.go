package purego

import (
	"errors"
	"fmt"
	"os"
	"runtime"

	"github.com/ebitengine/purego"
)

// LibraryPathEnv names the environment variable that overrides library
// resolution.
const LibraryPathEnv = "SQLITE3_LIBRARY_PATH"

// candidates returns the library names to try for goos/goarch, most
// specific first.
func candidates(goos, goarch string) []string {
	switch goos {
	case "darwin":
		return []string{
			"/opt/homebrew/opt/sqlite/lib/libsqlite3.dylib", // Apple Silicon Homebrew
			"/usr/local/opt/sqlite/lib/libsqlite3.dylib",    // Intel Homebrew
			"libsqlite3.dylib",
			"/usr/lib/libsqlite3.dylib",
		}
	case "windows":
		if goarch == "386" {
			return []string{"sqlite3_x86.dll", "sqlite3.dll"}
		}
		return []string{"sqlite3_x64.dll", "sqlite3.dll"}
	default: // linux, *bsd, etc
		var dir string
		if goos == "linux" {
			switch goarch {
			case "amd64":
				dir = "/usr/lib/x86_64-linux-gnu"
			case "386":
				dir = "/usr/lib/i386-linux-gnu"
			case "arm64":
				dir = "/usr/lib/aarch64-linux-gnu"
			}
		}
		names := []string{"libsqlite3.so.0", "libsqlite3.so"}
		if dir != "" {
			names = append([]string{dir + "/libsqlite3.so.0"}, names...)
		}
		return names
	}
}

// Library represents a loaded SQLite shared library
type Library struct {
	handle uintptr
	path   string
}

// LoadLibrary loads the SQLite shared library. An explicit path is tried
// alone; otherwise the environment override and the platform candidates are
// tried in order.
func LoadLibrary(path string) (*Library, error) {
	var libNames []string
	switch {
	case path != "":
		libNames = []string{path}
	case os.Getenv(LibraryPathEnv) != "":
		libNames = []string{os.Getenv(LibraryPathEnv)}
	default:
		libNames = candidates(runtime.GOOS, runtime.GOARCH)
	}

	var errs []error
	for _, libName := range libNames {
		handle, err := openLibrary(libName)
		if err == nil {
			return &Library{handle: handle, path: libName}, nil
		}
		errs = append(errs, err)
	}

	return nil, fmt.Errorf("failed to load SQLite library (set %s to override): %w", LibraryPathEnv, errors.Join(errs...))
}

// Path returns the name the library was loaded from.
func (l *Library) Path() string {
	return l.path
}

// Close closes the loaded library
func (l *Library) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := closeLibrary(l.handle)
	l.handle = 0
	return err
}

// RegisterFunc registers a function from the library
func (l *Library) RegisterFunc(fn interface{}, name string) error {
	// RegisterLibFunc panics on a missing symbol; probe first so callers get
	// an error naming it.
	if _, err := l.Symbol(name); err != nil {
		return err
	}
	purego.RegisterLibFunc(fn, l.handle, name)
	return nil
}

// Symbol resolves the address of an exported function.
func (l *Library) Symbol(name string) (uintptr, error) {
	if l.handle == 0 {
		return 0, errors.New("library is closed")
	}
	addr, err := lookupSymbol(l.handle, name)
	if err != nil {
		return 0, fmt.Errorf("symbol %s: %w", name, err)
	}
	return addr, nil
}
