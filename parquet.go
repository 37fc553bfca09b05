package sqlite

import (
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"
	"github.com/parquet-go/parquet-go/compress/snappy"
)

// WriteParquet writes the table to w as a Parquet file with one optional
// string column per header, snappy-compressed. NULL cells are written as
// Parquet nulls, so the distinction from empty strings survives the export.
func (t *Table) WriteParquet(w io.Writer) error {
	group := make(parquet.Group, t.cols)
	for _, h := range t.headers {
		if h == "" {
			return &ValueError{Name: "header", Value: h, Reason: "empty column name"}
		}
		if _, dup := group[h]; dup {
			return &ValueError{Name: "header", Value: h, Reason: "duplicate column name"}
		}
		group[h] = parquet.Optional(parquet.String())
	}
	schema := parquet.NewSchema("table", group)

	// Group fields are ordered by name, so leaf indexes differ from the
	// header order.
	leaf := make([]int, t.cols)
	for i, h := range t.headers {
		col, ok := schema.Lookup(h)
		if !ok {
			return fmt.Errorf("parquet schema has no column %q", h)
		}
		leaf[i] = col.ColumnIndex
	}

	rows := make([]parquet.Row, len(t.rows))
	for r, src := range t.rows {
		row := make(parquet.Row, t.cols)
		for c, v := range src {
			if v.Valid {
				row[leaf[c]] = parquet.ByteArrayValue([]byte(v.Text)).Level(0, 1, leaf[c])
			} else {
				row[leaf[c]] = parquet.NullValue().Level(0, 0, leaf[c])
			}
		}
		rows[r] = row
	}

	pw := parquet.NewWriter(w, schema, parquet.Compression(&snappy.Codec{}))
	if _, err := pw.WriteRows(rows); err != nil {
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}
