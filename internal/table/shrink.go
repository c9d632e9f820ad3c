package table

// Shrink implements spec.md's canonical diff primitive: the submatrix of y
// consisting of cells where y[i,j] != x[i,j], with rows and columns that
// are entirely null after that mask dropped. Both put's change-detection
// and the delta engine's value-diff stage build on this one function.
//
// x and y must share column and row axes at the positions being compared;
// Shrink compares only the intersection of their labels on both axes and
// ignores anything present in one but not the other (callers intersect
// first when the spec calls for rejecting a non-intersecting index).
func Shrink(x, y *Table) *Table {
	cols := y.IntersectColumns(x)
	rows := y.IntersectRows(x)

	masked := make([]Column, 0, len(cols))
	for _, label := range cols {
		yc, _ := y.Column(label)
		xc, _ := x.Column(label)
		cells := make([]Cell, len(rows))
		for i, rl := range rows {
			yi, _ := y.rowPosOf(rl)
			xi, _ := x.rowPosOf(rl)
			yv := yc.Cells[yi]
			xv := xc.Cells[xi]
			if yv.Equal(xv) {
				cells[i] = NullCell(yc.DType)
			} else {
				cells[i] = yv
			}
		}
		masked = append(masked, Column{Label: label, DType: yc.DType, Cells: cells})
	}

	keepRow := make([]bool, len(rows))
	for ri := range rows {
		for _, c := range masked {
			if !c.Cells[ri].Null {
				keepRow[ri] = true
				break
			}
		}
	}
	keepCol := make([]bool, len(masked))
	for ci, c := range masked {
		for _, cell := range c.Cells {
			if !cell.Null {
				keepCol[ci] = true
				break
			}
		}
	}

	finalRows := make([]int64, 0, len(rows))
	for ri, rl := range rows {
		if keepRow[ri] {
			finalRows = append(finalRows, rl)
		}
	}
	finalCols := make([]Column, 0, len(masked))
	for ci, c := range masked {
		if !keepCol[ci] {
			continue
		}
		cells := make([]Cell, 0, len(finalRows))
		for ri := range rows {
			if keepRow[ri] {
				cells = append(cells, c.Cells[ri])
			}
		}
		finalCols = append(finalCols, Column{Label: c.Label, DType: c.DType, Cells: cells})
	}

	out, _ := New(finalRows, finalCols)
	return out
}

// IsEmpty reports whether a table has no cells worth writing: either axis
// being zero-length means shrink produced nothing.
func (t *Table) IsEmpty() bool {
	return t.NumRows() == 0 || t.NumCols() == 0
}
