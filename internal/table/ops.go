package table

import "deltaflow/internal/dferrors"

// Axis selects rows (0) or columns (1), matching spec.md's axis numbering.
type Axis int

const (
	AxisRows Axis = 0
	AxisCols Axis = 1
)

// SelectColumns returns a new Table restricted to the given column labels,
// in the order given. Unknown labels are ignored (callers intersect first
// when spec semantics call for it).
func (t *Table) SelectColumns(labels []string) *Table {
	cols := make([]Column, 0, len(labels))
	for _, l := range labels {
		if c, ok := t.Column(l); ok {
			cols = append(cols, c.clone())
		}
	}
	out, _ := New(append([]int64(nil), t.rowLabels...), cols)
	return out
}

// SelectRows returns a new Table restricted to the given row labels, in
// the order given. Unknown labels are ignored.
func (t *Table) SelectRows(labels []int64) *Table {
	positions := make([]int, 0, len(labels))
	kept := make([]int64, 0, len(labels))
	for _, l := range labels {
		if i, ok := t.rowPosOf(l); ok {
			positions = append(positions, i)
			kept = append(kept, l)
		}
	}
	cols := make([]Column, len(t.columns))
	for ci, c := range t.columns {
		cells := make([]Cell, len(positions))
		for pi, rp := range positions {
			cells[pi] = c.Cells[rp]
		}
		cols[ci] = Column{Label: c.Label, DType: c.DType, Cells: cells}
	}
	out, _ := New(kept, cols)
	return out
}

// DropRows returns a new Table with the given row labels removed. Labels
// not present are ignored.
func (t *Table) DropRows(labels []int64) *Table {
	drop := make(map[int64]bool, len(labels))
	for _, l := range labels {
		drop[l] = true
	}
	keep := make([]int64, 0, len(t.rowLabels))
	for _, rl := range t.rowLabels {
		if !drop[rl] {
			keep = append(keep, rl)
		}
	}
	return t.SelectRows(keep)
}

// DropColumns returns a new Table with the given column labels removed.
func (t *Table) DropColumns(labels []string) *Table {
	drop := make(map[string]bool, len(labels))
	for _, l := range labels {
		drop[l] = true
	}
	keep := make([]string, 0, len(t.columns))
	for _, c := range t.columns {
		if !drop[c.Label] {
			keep = append(keep, c.Label)
		}
	}
	return t.SelectColumns(keep)
}

// RelabelRows returns a new Table whose row-index has had old[i] renamed
// to new[i] for each i, leaving row order and values untouched. Labels on
// the axis not named in old are preserved unchanged.
func (t *Table) RelabelRows(oldLabels, newLabels []int64) (*Table, error) {
	if len(oldLabels) != len(newLabels) {
		return nil, dferrors.NewSetIndexError(len(oldLabels), len(newLabels))
	}
	mapping := make(map[int64]int64, len(oldLabels))
	for i, o := range oldLabels {
		mapping[o] = newLabels[i]
	}
	rows := make([]int64, len(t.rowLabels))
	for i, rl := range t.rowLabels {
		if nv, ok := mapping[rl]; ok {
			rows[i] = nv
		} else {
			rows[i] = rl
		}
	}
	cols := make([]Column, len(t.columns))
	for i, c := range t.columns {
		cols[i] = c.clone()
	}
	return New(rows, cols)
}

// RelabelColumns is the column-axis counterpart of RelabelRows.
func (t *Table) RelabelColumns(oldLabels, newLabels []string) (*Table, error) {
	if len(oldLabels) != len(newLabels) {
		return nil, dferrors.NewSetIndexError(len(oldLabels), len(newLabels))
	}
	mapping := make(map[string]string, len(oldLabels))
	for i, o := range oldLabels {
		mapping[o] = newLabels[i]
	}
	cols := make([]Column, len(t.columns))
	for i, c := range t.columns {
		label := c.Label
		if nv, ok := mapping[label]; ok {
			label = nv
		}
		cols[i] = Column{Label: label, DType: c.DType, Cells: append([]Cell(nil), c.Cells...)}
	}
	return New(append([]int64(nil), t.rowLabels...), cols)
}

// IntersectRows returns the row labels present in both t and other, in t's
// order.
func (t *Table) IntersectRows(other *Table) []int64 {
	var out []int64
	for _, rl := range t.rowLabels {
		if other.HasRow(rl) {
			out = append(out, rl)
		}
	}
	return out
}

// IntersectColumns returns the column labels present in both t and other,
// in t's order.
func (t *Table) IntersectColumns(other *Table) []string {
	var out []string
	for _, c := range t.columns {
		if other.HasColumn(c.Label) {
			out = append(out, c.Label)
		}
	}
	return out
}

// Update returns a new Table equal to t except that every cell present in
// patch (keyed by row label and column label) overwrites t's cell at that
// position. Rows and columns outside t's axes are ignored: callers that
// need intersection semantics (put) intersect before calling Update.
// preserveDtype optionally forces certain columns back to a given dtype
// after the write, matching PutBlock's recorded dtype tags.
func (t *Table) Update(patch *Table, preserveDtype map[string]DType) *Table {
	out := t.Clone()
	for _, col := range patch.Columns() {
		ci, ok := out.colPosOf(col.Label)
		if !ok {
			continue
		}
		for pi, prl := range patch.RowLabels() {
			ri, ok := out.rowPosOf(prl)
			if !ok {
				continue
			}
			cell := col.Cells[pi]
			if cell.Null {
				continue
			}
			out.columns[ci].Cells[ri] = cell
		}
	}
	for label, dt := range preserveDtype {
		ci, ok := out.colPosOf(label)
		if !ok {
			continue
		}
		out.columns[ci].DType = dt
		for ri, c := range out.columns[ci].Cells {
			out.columns[ci].Cells[ri] = coerce(c, dt)
		}
	}
	return out
}

func coerce(c Cell, dt DType) Cell {
	if c.Null {
		return Cell{Null: true, DType: dt}
	}
	c.DType = dt
	return c
}

// ConcatColumns appends other's columns (which must share t's row-index)
// to t, returning a new Table. Rows present in t but absent from other
// receive null cells in the new columns, and vice versa is not permitted:
// callers (Extend, axis 1) must have already aligned row-indices.
func (t *Table) ConcatColumns(other *Table) (*Table, error) {
	for _, ocol := range other.Columns() {
		if t.HasColumn(ocol.Label) {
			return nil, dferrors.NewNameExistsError("column", ocol.Label)
		}
	}
	cols := make([]Column, 0, len(t.columns)+other.NumCols())
	for _, c := range t.columns {
		cols = append(cols, c.clone())
	}
	for _, ocol := range other.Columns() {
		cells := make([]Cell, t.NumRows())
		for i, rl := range t.rowLabels {
			if oi, ok := other.rowPosOf(rl); ok {
				cells[i] = ocol.Cells[oi]
			} else {
				cells[i] = NullCell(ocol.DType)
			}
		}
		cols = append(cols, Column{Label: ocol.Label, DType: ocol.DType, Cells: cells})
	}
	return New(append([]int64(nil), t.rowLabels...), cols)
}

// ConcatRows appends other's rows (which must carry every column in t) to
// t, returning a new Table whose column set is t's.
func (t *Table) ConcatRows(other *Table) (*Table, error) {
	for _, rl := range other.RowLabels() {
		if t.HasRow(rl) {
			return nil, dferrors.NewNameExistsError("row", formatInt64(rl))
		}
	}
	rows := append(append([]int64(nil), t.rowLabels...), other.RowLabels()...)
	cols := make([]Column, len(t.columns))
	for ci, c := range t.columns {
		oc, ok := other.Column(c.Label)
		cells := make([]Cell, 0, len(rows))
		cells = append(cells, c.Cells...)
		if ok {
			cells = append(cells, oc.Cells...)
		} else {
			for range other.RowLabels() {
				cells = append(cells, NullCell(c.DType))
			}
		}
		cols[ci] = Column{Label: c.Label, DType: c.DType, Cells: cells}
	}
	return New(rows, cols)
}

func formatInt64(v int64) string {
	if v == 0 {
		return "0"
	}
	neg := v < 0
	if neg {
		v = -v
	}
	var buf [20]byte
	i := len(buf)
	for v > 0 {
		i--
		buf[i] = byte('0' + v%10)
		v /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}
