// Package table implements the Table data model of spec.md §3: an ordered
// sequence of uniquely-labeled columns, an ordered row-index of integer
// keys, and per-cell nullability. Tables are copy-on-write: every mutating
// operation in this package returns a new *Table rather than mutating its
// receiver, so callers (in particular internal/arrow's Proxy) can hand out
// a Table without risking it being corrupted by its recipient.
package table

import (
	"deltaflow/internal/dferrors"
)

// DType tags the runtime type a column's non-null cells hold.
type DType int

const (
	Int64 DType = iota
	Float64
	Bool
	String
)

func (d DType) String() string {
	switch d {
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case Bool:
		return "bool"
	case String:
		return "string"
	default:
		return "unknown"
	}
}

// Cell is a tagged-union value. Null, when true, means the cell carries no
// value regardless of DType.
type Cell struct {
	Null  bool
	DType DType
	I     int64
	F     float64
	S     string
	B     bool
}

// NullCell returns a cell with no value, tagged with the column's dtype so
// a later coercion has something to preserve.
func NullCell(dtype DType) Cell { return Cell{Null: true, DType: dtype} }

func IntCell(v int64) Cell     { return Cell{DType: Int64, I: v} }
func FloatCell(v float64) Cell { return Cell{DType: Float64, F: v} }
func BoolCell(v bool) Cell     { return Cell{DType: Bool, B: v} }
func StringCell(v string) Cell { return Cell{DType: String, S: v} }

// Equal reports whether two cells carry the same value. Two null cells are
// always equal, regardless of dtype — nullness dominates.
func (c Cell) Equal(o Cell) bool {
	if c.Null || o.Null {
		return c.Null == o.Null
	}
	if c.DType != o.DType {
		return false
	}
	switch c.DType {
	case Int64:
		return c.I == o.I
	case Float64:
		return c.F == o.F
	case Bool:
		return c.B == o.B
	default:
		return c.S == o.S
	}
}

// Column is a single named series, one Cell per row of the owning Table's
// row-index, in the same order.
type Column struct {
	Label string
	DType DType
	Cells []Cell
}

func (c Column) clone() Column {
	cells := make([]Cell, len(c.Cells))
	copy(cells, c.Cells)
	return Column{Label: c.Label, DType: c.DType, Cells: cells}
}

// Table is an ordered sequence of columns sharing one ordered row-index.
// The row-index is a label, not a positional offset: row labels need not
// be contiguous or start at zero.
type Table struct {
	rowLabels []int64
	columns   []Column

	rowPos map[int64]int
	colPos map[string]int
}

// New builds a Table from row labels and columns, validating uniqueness of
// both axes and that every column has exactly len(rowLabels) cells.
func New(rowLabels []int64, columns []Column) (*Table, error) {
	rowPos := make(map[int64]int, len(rowLabels))
	for i, rl := range rowLabels {
		if _, dup := rowPos[rl]; dup {
			return nil, dferrors.NewAxisLabelError("row index")
		}
		rowPos[rl] = i
	}

	colPos := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, dup := colPos[c.Label]; dup {
			return nil, dferrors.NewAxisLabelError("column index")
		}
		if len(c.Cells) != len(rowLabels) {
			return nil, dferrors.NewInsertionError(len(rowLabels), len(c.Cells))
		}
		colPos[c.Label] = i
	}

	return &Table{rowLabels: rowLabels, columns: columns, rowPos: rowPos, colPos: colPos}, nil
}

// Empty returns a zero-row, zero-column table. Passed as the argument of
// ConcatColumns or ConcatRows it leaves the receiver unchanged; as the
// receiver it is not an identity (the result keeps none of the other
// table's cells on the axis being concatenated across).
func Empty() *Table {
	t, _ := New(nil, nil)
	return t
}

// Clone returns a deep copy safe for independent mutation.
func (t *Table) Clone() *Table {
	rowLabels := make([]int64, len(t.rowLabels))
	copy(rowLabels, t.rowLabels)
	columns := make([]Column, len(t.columns))
	for i, c := range t.columns {
		columns[i] = c.clone()
	}
	clone, _ := New(rowLabels, columns)
	return clone
}

func (t *Table) NumRows() int { return len(t.rowLabels) }
func (t *Table) NumCols() int { return len(t.columns) }

// RowLabels returns the row-index in table order. The returned slice must
// not be mutated by the caller.
func (t *Table) RowLabels() []int64 { return t.rowLabels }

// ColumnLabels returns column labels in table order.
func (t *Table) ColumnLabels() []string {
	labels := make([]string, len(t.columns))
	for i, c := range t.columns {
		labels[i] = c.Label
	}
	return labels
}

// Columns returns the table's columns in order. The returned slice and its
// Cells must not be mutated by the caller.
func (t *Table) Columns() []Column { return t.columns }

// HasRow reports whether label is present in the row-index.
func (t *Table) HasRow(label int64) bool {
	_, ok := t.rowPos[label]
	return ok
}

// HasColumn reports whether label is present among column labels.
func (t *Table) HasColumn(label string) bool {
	_, ok := t.colPos[label]
	return ok
}

// Column looks up a column by label.
func (t *Table) Column(label string) (Column, bool) {
	i, ok := t.colPos[label]
	if !ok {
		return Column{}, false
	}
	return t.columns[i], true
}

// At returns the cell at (rowLabel, colLabel).
func (t *Table) At(rowLabel int64, colLabel string) (Cell, bool) {
	ci, ok := t.colPos[colLabel]
	if !ok {
		return Cell{}, false
	}
	ri, ok := t.rowPos[rowLabel]
	if !ok {
		return Cell{}, false
	}
	return t.columns[ci].Cells[ri], true
}

// rowPosOf and colPosOf expose the internal position maps to sibling files
// in this package (ops.go, shrink.go, codec.go) without making them part
// of the public API.
func (t *Table) rowPosOf(label int64) (int, bool) {
	i, ok := t.rowPos[label]
	return i, ok
}

func (t *Table) colPosOf(label string) (int, bool) {
	i, ok := t.colPos[label]
	return i, ok
}
