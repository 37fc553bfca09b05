package sqlite

import (
	"errors"
	"testing"
)

func usersTable(t *testing.T) *Table {
	t.Helper()
	res := nativeTable([]string{"id", "name", "email"},
		[]*string{str("1"), str("Alice"), str("alice@example.com")},
		[]*string{str("2"), str("Bob"), nil},
		[]*string{str("3"), str(""), str("carol@example.com")},
	)
	table, err := decodeTable(res.Data, res.Rows, res.Cols)
	if err != nil {
		t.Fatalf("decodeTable failed: %v", err)
	}
	return table
}

func TestDecodeTable(t *testing.T) {
	table := usersTable(t)

	if table.ColumnCount() != 3 || table.RowCount() != 3 {
		t.Fatalf("Expected 3x3, got %dx%d", table.RowCount(), table.ColumnCount())
	}
	if h := table.Headers(); len(h) != 3 || h[0] != "id" || h[2] != "email" {
		t.Errorf("Unexpected headers %v", h)
	}
	if n := len(table.Fields()); n != table.RowCount()*table.ColumnCount() {
		t.Errorf("Expected %d fields, got %d", table.RowCount()*table.ColumnCount(), n)
	}
	for i, row := range table.AllRows() {
		if len(row) != table.ColumnCount() {
			t.Errorf("row %d: expected %d cells, got %d", i+1, table.ColumnCount(), len(row))
		}
	}

	// Fields is the row-major flattening of AllRows.
	fields := table.Fields()
	for r, row := range table.AllRows() {
		for c, v := range row {
			if fields[r*table.ColumnCount()+c] != v {
				t.Errorf("field (%d,%d) differs from row data", r+1, c+1)
			}
		}
	}

	null, _ := table.Field(2, "email")
	empty, _ := table.Field(3, "name")
	if !null.IsNull() {
		t.Error("Expected NULL email for Bob")
	}
	if empty.IsNull() || empty.Text != "" {
		t.Errorf("Expected empty non-NULL name, got %#v", empty)
	}
}

func TestDecodeTableEdges(t *testing.T) {
	t.Run("NoColumns", func(t *testing.T) {
		table, err := decodeTable(nil, 0, 0)
		if err != nil {
			t.Fatalf("decodeTable failed: %v", err)
		}
		if table.RowCount() != 0 || table.ColumnCount() != 0 || len(table.Headers()) != 0 {
			t.Error("Expected an empty table")
		}
	})

	t.Run("HeadersOnly", func(t *testing.T) {
		res := nativeTable([]string{"a", "b"})
		table, err := decodeTable(res.Data, res.Rows, res.Cols)
		if err != nil {
			t.Fatalf("decodeTable failed: %v", err)
		}
		if table.RowCount() != 0 || table.ColumnCount() != 2 {
			t.Errorf("Expected 0 rows and 2 columns, got %dx%d", table.RowCount(), table.ColumnCount())
		}
	})

	t.Run("Negative", func(t *testing.T) {
		var ve *ValueError
		if _, err := decodeTable(nil, -1, 2); !errors.As(err, &ve) {
			t.Errorf("Expected *ValueError, got %v", err)
		}
	})

	t.Run("NilBuffer", func(t *testing.T) {
		var ve *ValueError
		if _, err := decodeTable(nil, 1, 2); !errors.As(err, &ve) {
			t.Errorf("Expected *ValueError, got %v", err)
		}
	})
}

func TestTableAccessors(t *testing.T) {
	table := usersTable(t)

	// Header and HeaderIndex agree.
	for c := 1; c <= table.ColumnCount(); c++ {
		name, err := table.Header(c)
		if err != nil {
			t.Fatalf("Header(%d) failed: %v", c, err)
		}
		idx, ok := table.HeaderIndex(name)
		if !ok || idx != c {
			t.Errorf("HeaderIndex(%q) = %d, %v; want %d", name, idx, ok, c)
		}
	}

	// Lookup by name and by index agree.
	for r := 1; r <= table.RowCount(); r++ {
		for _, h := range table.Headers() {
			idx, _ := table.HeaderIndex(h)
			byName, err1 := table.Field(r, h)
			byIndex, err2 := table.Field(r, idx)
			if err1 != nil || err2 != nil || byName != byIndex {
				t.Errorf("Field(%d, %q) = %v, Field(%d, %d) = %v", r, h, byName, r, idx, byIndex)
			}
		}
	}

	row, err := table.Row(1)
	if err != nil || row[1].Text != "Alice" {
		t.Errorf("Row(1) = %v, %v", row, err)
	}
	row[1] = TextValue("changed")
	if again, _ := table.Row(1); again[1].Text != "Alice" {
		t.Error("Row should return a copy")
	}

	if v, err := table.Field(int64(1), uint8(2)); err != nil || v.Text != "Alice" {
		t.Errorf("Field with sized integers = %v, %v", v, err)
	}
}

func TestTableRangeErrors(t *testing.T) {
	table := usersTable(t)

	tests := []struct {
		name string
		call func() error
	}{
		{"header 0", func() error { _, err := table.Header(0); return err }},
		{"header past end", func() error { _, err := table.Header(4); return err }},
		{"row 0", func() error { _, err := table.Row(0); return err }},
		{"row past end", func() error { _, err := table.Row(4); return err }},
		{"field row 0", func() error { _, err := table.Field(0, 1); return err }},
		{"field row past end", func() error { _, err := table.Field(4, "id"); return err }},
		{"field row not integer", func() error { _, err := table.Field("1", "id"); return err }},
		{"field col 0", func() error { _, err := table.Field(1, 0); return err }},
		{"field col past end", func() error { _, err := table.Field(1, 4); return err }},
		{"field missing name", func() error { _, err := table.Field(1, "phone"); return err }},
		{"field col float", func() error { _, err := table.Field(1, 1.0); return err }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call()
			var re *RangeError
			if !errors.As(err, &re) {
				t.Fatalf("Expected *RangeError, got %v", err)
			}
			if re.Error() == "" {
				t.Error("Expected a message")
			}
		})
	}

	if _, ok := table.HeaderIndex("phone"); ok {
		t.Error("Expected missing header")
	}
}

func TestDuplicateHeaders(t *testing.T) {
	res := nativeTable([]string{"a", "a"}, []*string{str("first"), str("second")})
	table, err := decodeTable(res.Data, res.Rows, res.Cols)
	if err != nil {
		t.Fatalf("decodeTable failed: %v", err)
	}
	if idx, _ := table.HeaderIndex("a"); idx != 1 {
		t.Errorf("Expected first match, got %d", idx)
	}
	if v, _ := table.Field(1, "a"); v.Text != "first" {
		t.Errorf("Expected first column, got %q", v.Text)
	}
	if rec := table.Records()[0]; rec["a"].Text != "first" {
		t.Errorf("Expected first column in record, got %q", rec["a"].Text)
	}
}

func TestRecords(t *testing.T) {
	recs := usersTable(t).Records()
	if len(recs) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(recs))
	}
	if recs[0]["name"].Text != "Alice" || !recs[1]["email"].IsNull() {
		t.Errorf("Unexpected records %v", recs)
	}
}

func BenchmarkDecodeTable(b *testing.B) {
	headers := []string{"id", "name", "email", "note"}
	rows := make([][]*string, 1000)
	for i := range rows {
		rows[i] = []*string{str("1"), str("name"), str("someone@example.com"), nil}
	}
	res := nativeTable(headers, rows...)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := decodeTable(res.Data, res.Rows, res.Cols); err != nil {
			b.Fatal(err)
		}
	}
}
