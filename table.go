package sqlite

// Value is one table cell. SQL NULL has Valid false; an empty string has
// Valid true and Text "".
type Value struct {
	Text  string
	Valid bool
}

// NullValue returns the NULL cell.
func NullValue() Value {
	return Value{}
}

// TextValue returns a non-NULL cell holding s.
func TextValue(s string) Value {
	return Value{Text: s, Valid: true}
}

// IsNull reports whether v is SQL NULL.
func (v Value) IsNull() bool {
	return !v.Valid
}

// String returns the text of v. NULL and "" both render as "".
func (v Value) String() string {
	return v.Text
}

// Table is the materialized result of a row-returning statement. Rows and
// columns are addressed from 1; the slices returned by Headers, AllRows
// and Fields are ordinary 0-based copies.
type Table struct {
	cols    int
	headers []string
	rows    [][]Value
	fields  []Value
}

// ColumnCount returns the number of columns
func (t *Table) ColumnCount() int {
	return t.cols
}

// RowCount returns the number of data rows
func (t *Table) RowCount() int {
	return len(t.rows)
}

// Headers returns the column names in order.
func (t *Table) Headers() []string {
	return append([]string(nil), t.headers...)
}

// Header returns the name of column col.
func (t *Table) Header(col int) (string, error) {
	if col < 1 || col > t.cols {
		return "", &RangeError{Arg: "column", Value: col, Max: t.cols}
	}
	return t.headers[col-1], nil
}

// HeaderIndex returns the column number of the first header equal to
// name.
func (t *Table) HeaderIndex(name string) (int, bool) {
	for i, h := range t.headers {
		if h == name {
			return i + 1, true
		}
	}
	return 0, false
}

// Row returns a copy of data row r.
func (t *Table) Row(r int) ([]Value, error) {
	if r < 1 || r > len(t.rows) {
		return nil, &RangeError{Arg: "row", Value: r, Max: len(t.rows)}
	}
	return append([]Value(nil), t.rows[r-1]...), nil
}

// AllRows returns a copy of every data row.
func (t *Table) AllRows() [][]Value {
	out := make([][]Value, len(t.rows))
	for i, row := range t.rows {
		out[i] = append([]Value(nil), row...)
	}
	return out
}

// Fields returns every cell in row-major order.
func (t *Table) Fields() []Value {
	return append([]Value(nil), t.fields...)
}

// Field returns the cell at row and col. row must be an integer; col is
// either an integer column number or a header name.
func (t *Table) Field(row, col any) (Value, error) {
	r, ok := toIndex(row)
	if !ok {
		return Value{}, &RangeError{Arg: "row", Value: row}
	}
	if r < 1 || r > len(t.rows) {
		return Value{}, &RangeError{Arg: "row", Value: r, Max: len(t.rows)}
	}

	var c int
	switch v := col.(type) {
	case string:
		idx, found := t.HeaderIndex(v)
		if !found {
			return Value{}, &RangeError{Arg: "column", Value: v}
		}
		c = idx
	default:
		idx, isInt := toIndex(col)
		if !isInt {
			return Value{}, &RangeError{Arg: "column", Value: col}
		}
		if idx < 1 || idx > t.cols {
			return Value{}, &RangeError{Arg: "column", Value: idx, Max: t.cols}
		}
		c = idx
	}

	return t.rows[r-1][c-1], nil
}

// Records returns each row keyed by header. With duplicate headers the
// first column wins, matching HeaderIndex.
func (t *Table) Records() []map[string]Value {
	out := make([]map[string]Value, len(t.rows))
	for i, row := range t.rows {
		rec := make(map[string]Value, t.cols)
		for c := len(row) - 1; c >= 0; c-- {
			rec[t.headers[c]] = row[c]
		}
		out[i] = rec
	}
	return out
}

// toIndex converts any Go integer to int.
func toIndex(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int8:
		return int(n), true
	case int16:
		return int(n), true
	case int32:
		return int(n), true
	case int64:
		return int(n), true
	case uint:
		return int(n), true
	case uint8:
		return int(n), true
	case uint16:
		return int(n), true
	case uint32:
		return int(n), true
	case uint64:
		return int(n), true
	}
	return 0, false
}
