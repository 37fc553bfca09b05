package purego

import (
	"errors"
	"strings"
	"unsafe"

	"golang.org/x/text/encoding/unicode"
)

// ErrNulInString is returned by CString when the input cannot be
// represented as a C string.
var ErrNulInString = errors.New("string contains NUL byte")

// CString encodes s as UTF-8 into a NUL-terminated buffer. Invalid UTF-8
// sequences are replaced with U+FFFD. The caller must keep the returned
// slice reachable until the native call using it has returned.
func CString(s string) ([]byte, error) {
	if strings.IndexByte(s, 0) >= 0 {
		return nil, ErrNulInString
	}
	enc, err := unicode.UTF8.NewEncoder().String(s)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, len(enc)+1)
	copy(buf, enc)
	return buf, nil
}

// GoString decodes the NUL-terminated string at p. The second result is
// false when p is nil, which SQLite uses for NULL values.
func GoString(p unsafe.Pointer) (string, bool) {
	if p == nil {
		return "", false
	}
	n := 0
	for *(*byte)(unsafe.Add(p, n)) != 0 {
		n++
	}
	raw := unsafe.Slice((*byte)(p), n)
	dec, err := unicode.UTF8.NewDecoder().Bytes(raw)
	if err != nil {
		// The decoder replaces ill-formed input rather than failing, so
		// this only triggers on transformer errors; fall back to a copy.
		return string(raw), true
	}
	return string(dec), true
}

// PointerAt returns entry i of the native pointer array at base.
func PointerAt(base unsafe.Pointer, i int) unsafe.Pointer {
	return *(*unsafe.Pointer)(unsafe.Add(base, uintptr(i)*ptrSize))
}
