// Package dataset holds the in-memory tabular model used by the segmentation
// pipeline, plus loaders for delimited text and XLSX workbooks.
package dataset

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind classifies a single cell.
type Kind uint8

const (
	KindMissing Kind = iota
	KindNumber
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindMissing:
		return "missing"
	case KindNumber:
		return "numeric"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Value is one cell. Raw keeps the source text so exports round-trip unchanged.
type Value struct {
	Kind Kind
	Num  float64
	Raw  string
}

// Missing returns an empty cell.
func Missing() Value { return Value{Kind: KindMissing} }

// Number returns a numeric cell formatted in the shortest round-trip form.
func Number(f float64) Value {
	return Value{Kind: KindNumber, Num: f, Raw: strconv.FormatFloat(f, 'g', -1, 64)}
}

// Text returns a non-numeric cell.
func Text(s string) Value { return Value{Kind: KindText, Raw: s} }

func (v Value) IsMissing() bool { return v.Kind == KindMissing }
func (v Value) IsNumber() bool  { return v.Kind == KindNumber }

// String returns the export form of the cell.
func (v Value) String() string { return v.Raw }

// Dataset is an ordered sequence of records sharing one header.
type Dataset struct {
	Name    string
	Columns []string
	Rows    [][]Value
	// TotalRows counts data rows seen in the source, including rows skipped by MaxRows.
	TotalRows int
}

// New constructs an empty dataset with the given header.
func New(name string, columns []string) *Dataset {
	cols := make([]string, len(columns))
	copy(cols, columns)
	return &Dataset{Name: name, Columns: cols}
}

// Append adds a record, padding short rows with missing cells.
func (d *Dataset) Append(row []Value) {
	if len(row) < len(d.Columns) {
		tmp := make([]Value, len(d.Columns))
		copy(tmp, row)
		row = tmp
	} else if len(row) > len(d.Columns) {
		row = row[:len(d.Columns)]
	}
	d.Rows = append(d.Rows, row)
	if d.TotalRows < len(d.Rows) {
		d.TotalRows = len(d.Rows)
	}
}

// Len returns the number of loaded records.
func (d *Dataset) Len() int { return len(d.Rows) }

// ColumnIndex finds a column by exact name, then case-insensitively.
func (d *Dataset) ColumnIndex(name string) (int, bool) {
	for i, c := range d.Columns {
		if c == name {
			return i, true
		}
	}
	want := strings.ToLower(strings.TrimSpace(name))
	for i, c := range d.Columns {
		if strings.ToLower(c) == want {
			return i, true
		}
	}
	return -1, false
}

// Column returns a copy of the named column.
func (d *Dataset) Column(name string) ([]Value, error) {
	idx, ok := d.ColumnIndex(name)
	if !ok {
		return nil, fmt.Errorf("column %q not found", name)
	}
	out := make([]Value, len(d.Rows))
	for i, row := range d.Rows {
		out[i] = row[idx]
	}
	return out, nil
}

// WithColumn returns a copy of the dataset with an extra column appended. If a
// column of the same name exists it is replaced in the copy.
func (d *Dataset) WithColumn(name string, vals []Value) (*Dataset, error) {
	if len(vals) != len(d.Rows) {
		return nil, fmt.Errorf("column %q has %d values, dataset has %d rows", name, len(vals), len(d.Rows))
	}
	idx, exists := -1, false
	for i, c := range d.Columns {
		if c == name {
			idx, exists = i, true
			break
		}
	}
	out := New(d.Name, d.Columns)
	if !exists {
		out.Columns = append(out.Columns, name)
		idx = len(out.Columns) - 1
	}
	out.Rows = make([][]Value, len(d.Rows))
	for i, row := range d.Rows {
		r := make([]Value, len(out.Columns))
		copy(r, row)
		r[idx] = vals[i]
		out.Rows[i] = r
	}
	out.TotalRows = d.TotalRows
	return out, nil
}

// Head returns up to n records.
func (d *Dataset) Head(n int) [][]Value {
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	if n < 0 {
		n = 0
	}
	return d.Rows[:n]
}

// Table renders the dataset as string cells.
func (d *Dataset) Table() Table {
	t := Table{Header: append([]string(nil), d.Columns...), Rows: make([][]string, len(d.Rows))}
	for i, row := range d.Rows {
		r := make([]string, len(row))
		for j, v := range row {
			r[j] = v.String()
		}
		t.Rows[i] = r
	}
	return t
}
