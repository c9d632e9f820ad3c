package table

import "testing"

func mustTable(t *testing.T, rows []int64, cols []Column) *Table {
	t.Helper()
	tbl, err := New(rows, cols)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return tbl
}

func TestNewRejectsDuplicateRowLabels(t *testing.T) {
	_, err := New([]int64{0, 0}, []Column{{Label: "a", DType: Int64, Cells: []Cell{IntCell(1), IntCell(2)}}})
	if err == nil {
		t.Fatal("expected error for duplicate row labels")
	}
}

func TestNewRejectsMismatchedColumnLength(t *testing.T) {
	_, err := New([]int64{0, 1}, []Column{{Label: "a", DType: Int64, Cells: []Cell{IntCell(1)}}})
	if err == nil {
		t.Fatal("expected error for column/row length mismatch")
	}
}

func TestSelectAndDrop(t *testing.T) {
	tbl := mustTable(t, []int64{0, 1, 2}, []Column{
		{Label: "a", DType: Int64, Cells: []Cell{IntCell(1), IntCell(2), IntCell(3)}},
		{Label: "b", DType: Int64, Cells: []Cell{IntCell(4), IntCell(5), IntCell(6)}},
	})

	dropped := tbl.DropRows([]int64{1})
	if dropped.NumRows() != 2 {
		t.Fatalf("NumRows after drop = %d, want 2", dropped.NumRows())
	}
	if dropped.HasRow(1) {
		t.Fatal("row 1 should have been dropped")
	}

	selected := tbl.SelectColumns([]string{"b"})
	if selected.NumCols() != 1 {
		t.Fatalf("NumCols after select = %d, want 1", selected.NumCols())
	}
	if selected.HasColumn("a") {
		t.Fatal("column a should not be present after select")
	}
}

func TestUpdateOverwritesOnlyTouchedCells(t *testing.T) {
	base := mustTable(t, []int64{0, 1}, []Column{
		{Label: "a", DType: Int64, Cells: []Cell{IntCell(1), IntCell(2)}},
	})
	patch := mustTable(t, []int64{0}, []Column{
		{Label: "a", DType: Int64, Cells: []Cell{IntCell(10)}},
	})

	out := base.Update(patch, nil)
	v, _ := out.At(0, "a")
	if v.I != 10 {
		t.Fatalf("At(0,a) = %v, want 10", v)
	}
	v2, _ := out.At(1, "a")
	if v2.I != 2 {
		t.Fatalf("At(1,a) = %v, want unchanged 2", v2)
	}
}

func TestShrinkMasksUnchangedAndDropsAllNull(t *testing.T) {
	x := mustTable(t, []int64{0, 1}, []Column{
		{Label: "a", DType: Int64, Cells: []Cell{IntCell(1), IntCell(2)}},
		{Label: "b", DType: Int64, Cells: []Cell{IntCell(5), IntCell(6)}},
	})
	y := mustTable(t, []int64{0, 1}, []Column{
		{Label: "a", DType: Int64, Cells: []Cell{IntCell(1), IntCell(99)}},
		{Label: "b", DType: Int64, Cells: []Cell{IntCell(5), IntCell(6)}},
	})

	diff := Shrink(x, y)
	if diff.NumRows() != 1 || diff.NumCols() != 1 {
		t.Fatalf("Shrink shape = (%d,%d), want (1,1)", diff.NumRows(), diff.NumCols())
	}
	if !diff.HasRow(1) || !diff.HasColumn("a") {
		t.Fatalf("Shrink kept wrong cell: rows=%v cols=%v", diff.RowLabels(), diff.ColumnLabels())
	}
	v, _ := diff.At(1, "a")
	if v.I != 99 {
		t.Fatalf("diff value = %v, want 99", v)
	}
}

func TestShrinkOfIdenticalTablesIsEmpty(t *testing.T) {
	x := mustTable(t, []int64{0}, []Column{{Label: "a", DType: Int64, Cells: []Cell{IntCell(1)}}})
	y := mustTable(t, []int64{0}, []Column{{Label: "a", DType: Int64, Cells: []Cell{IntCell(1)}}})
	if !Shrink(x, y).IsEmpty() {
		t.Fatal("expected empty shrink for identical tables")
	}
}

func TestConcatColumnsAlignsOnRowIndex(t *testing.T) {
	base := mustTable(t, []int64{0, 2}, []Column{
		{Label: "a", DType: Int64, Cells: []Cell{IntCell(1), IntCell(3)}},
	})
	ext := mustTable(t, []int64{0, 2}, []Column{
		{Label: "c", DType: Int64, Cells: []Cell{IntCell(7), IntCell(9)}},
	})
	out, err := base.ConcatColumns(ext)
	if err != nil {
		t.Fatalf("ConcatColumns: %v", err)
	}
	if out.NumCols() != 2 {
		t.Fatalf("NumCols = %d, want 2", out.NumCols())
	}
	v, _ := out.At(2, "c")
	if v.I != 9 {
		t.Fatalf("At(2,c) = %v, want 9", v)
	}
}

func TestConcatRowsRejectsDuplicateLabel(t *testing.T) {
	base := mustTable(t, []int64{0}, []Column{{Label: "a", DType: Int64, Cells: []Cell{IntCell(1)}}})
	other := mustTable(t, []int64{0}, []Column{{Label: "a", DType: Int64, Cells: []Cell{IntCell(2)}}})
	if _, err := base.ConcatRows(other); err == nil {
		t.Fatal("expected error for duplicate row label on ConcatRows")
	}
}

func TestMarshalUnmarshalRoundTrip(t *testing.T) {
	orig := mustTable(t, []int64{0, 5, -3}, []Column{
		{Label: "a", DType: Int64, Cells: []Cell{IntCell(1), NullCell(Int64), IntCell(-7)}},
		{Label: "b", DType: String, Cells: []Cell{StringCell("x"), StringCell("y"), StringCell("")}},
		{Label: "c", DType: Float64, Cells: []Cell{FloatCell(1.5), FloatCell(-2.25), NullCell(Float64)}},
		{Label: "d", DType: Bool, Cells: []Cell{BoolCell(true), BoolCell(false), BoolCell(true)}},
	})

	payload, err := Marshal(orig)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, err := Unmarshal(payload)
	if err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got.NumRows() != orig.NumRows() || got.NumCols() != orig.NumCols() {
		t.Fatalf("shape mismatch: got (%d,%d), want (%d,%d)", got.NumRows(), got.NumCols(), orig.NumRows(), orig.NumCols())
	}
	for _, rl := range orig.RowLabels() {
		for _, label := range orig.ColumnLabels() {
			want, _ := orig.At(rl, label)
			have, ok := got.At(rl, label)
			if !ok {
				t.Fatalf("missing cell (%d,%s) after round trip", rl, label)
			}
			if !have.Equal(want) {
				t.Fatalf("cell (%d,%s) = %+v, want %+v", rl, label, have, want)
			}
		}
	}
}
