package sqlite

import (
	"unsafe"

	"github.com/connerohnesorge/sqlite-purego/internal/purego"
)

// decodeTable builds a Table from the flat char* array produced by
// sqlite3_get_table: cols header pointers followed by rows*cols data
// pointers in row-major order. A nil entry is SQL NULL. The array is only
// read; releasing it stays with the caller.
func decodeTable(data unsafe.Pointer, rows, cols int) (*Table, error) {
	if rows < 0 || cols < 0 {
		return nil, &ValueError{Name: "table shape", Value: [2]int{rows, cols}, Reason: "negative count"}
	}
	t := &Table{cols: cols}
	if cols == 0 {
		return t, nil
	}
	if data == nil {
		return nil, &ValueError{Name: "table buffer", Value: nil, Reason: "nil buffer for non-empty result"}
	}

	t.headers = make([]string, cols)
	for c := 0; c < cols; c++ {
		t.headers[c] = cellAt(data, c).Text
	}

	t.rows = make([][]Value, 0, rows)
	t.fields = make([]Value, 0, rows*cols)
	for r := 1; r <= rows; r++ {
		row := make([]Value, cols)
		for c := 0; c < cols; c++ {
			row[c] = cellAt(data, r*cols+c)
		}
		t.rows = append(t.rows, row)
		t.fields = append(t.fields, row...)
	}

	return t, nil
}

// cellAt decodes entry i of a native char* array.
func cellAt(base unsafe.Pointer, i int) Value {
	s, ok := purego.GoString(purego.PointerAt(base, i))
	return Value{Text: s, Valid: ok}
}
