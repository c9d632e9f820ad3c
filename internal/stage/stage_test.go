package stage

import (
	"testing"

	"deltaflow/internal/dferrors"
	"deltaflow/internal/table"
)

func mustTable(t *testing.T, rows []int64, cols []table.Column) *table.Table {
	t.Helper()
	tbl, err := table.New(rows, cols)
	if err != nil {
		t.Fatalf("table.New: %v", err)
	}
	return tbl
}

func baseTable(t *testing.T) *table.Table {
	return mustTable(t, []int64{0, 1, 2}, []table.Column{
		{Label: "a", DType: table.Int64, Cells: []table.Cell{table.IntCell(1), table.IntCell(3), table.IntCell(5)}},
		{Label: "b", DType: table.Int64, Cells: []table.Cell{table.IntCell(2), table.IntCell(4), table.IntCell(6)}},
	})
}

func TestPutNoopDoesNotGrowLog(t *testing.T) {
	s := New(baseTable(t))
	patch := mustTable(t, []int64{0}, []table.Column{{Label: "a", DType: table.Int64, Cells: []table.Cell{table.IntCell(1)}}})
	if err := s.Put(patch); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if s.HasPendingChanges() {
		t.Fatal("no-op put should not grow the log")
	}
}

func TestPutThenUndoRestoresLive(t *testing.T) {
	s := New(baseTable(t))
	before := s.Live().Clone()

	patch := mustTable(t, []int64{0}, []table.Column{{Label: "a", DType: table.Int64, Cells: []table.Cell{table.IntCell(10)}}})
	if err := s.Put(patch); err != nil {
		t.Fatalf("Put: %v", err)
	}
	v, _ := s.Live().At(0, "a")
	if v.I != 10 {
		t.Fatalf("At(0,a) after put = %v, want 10", v)
	}

	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	v2, _ := s.Live().At(0, "a")
	want, _ := before.At(0, "a")
	if v2.I != want.I {
		t.Fatalf("At(0,a) after undo = %v, want %v", v2, want)
	}
}

func TestUndoOnEmptyLogFails(t *testing.T) {
	s := New(baseTable(t))
	err := s.Undo()
	if code, ok := dferrors.Code(err); !ok || code != dferrors.UndoError {
		t.Fatalf("Undo on empty log: err = %v, want UndoError", err)
	}
}

func TestDropIntersectionEmptyRaisesIntersectionError(t *testing.T) {
	s := New(baseTable(t))
	err := s.DropRows([]int64{99}, Intersection)
	if code, ok := dferrors.Code(err); !ok || code != dferrors.IntersectionError {
		t.Fatalf("DropRows: err = %v, want IntersectionError", err)
	}
}

func TestDropDifferenceEmptyRaisesDifferenceError(t *testing.T) {
	s := New(baseTable(t))
	err := s.DropRows([]int64{0, 1, 2}, Difference)
	if code, ok := dferrors.Code(err); !ok || code != dferrors.DifferenceError {
		t.Fatalf("DropRows: err = %v, want DifferenceError", err)
	}
}

func TestExtendColumnsRequiresNewLabel(t *testing.T) {
	s := New(baseTable(t))
	dup := mustTable(t, []int64{0, 1, 2}, []table.Column{{Label: "a", DType: table.Int64, Cells: []table.Cell{table.IntCell(1), table.IntCell(1), table.IntCell(1)}}})
	err := s.ExtendColumns(dup)
	if code, ok := dferrors.Code(err); !ok || code != dferrors.ExtensionError {
		t.Fatalf("ExtendColumns: err = %v, want ExtensionError", err)
	}
}

func TestExtendColumnsThenUndo(t *testing.T) {
	s := New(baseTable(t))
	ext := mustTable(t, []int64{0, 1, 2}, []table.Column{{Label: "c", DType: table.Int64, Cells: []table.Cell{table.IntCell(7), table.IntCell(8), table.IntCell(9)}}})
	if err := s.ExtendColumns(ext); err != nil {
		t.Fatalf("ExtendColumns: %v", err)
	}
	if s.Live().NumCols() != 3 {
		t.Fatalf("NumCols = %d, want 3", s.Live().NumCols())
	}
	if err := s.Undo(); err != nil {
		t.Fatalf("Undo: %v", err)
	}
	if s.Live().NumCols() != 2 {
		t.Fatalf("NumCols after undo = %d, want 2", s.Live().NumCols())
	}
}

func TestDropThenExtendCommutationProducesSameLive(t *testing.T) {
	ext := func() *table.Table {
		tbl, err := table.New([]int64{0, 1, 2}, []table.Column{{Label: "c", DType: table.Int64, Cells: []table.Cell{table.IntCell(7), table.IntCell(8), table.IntCell(9)}}})
		if err != nil {
			t.Fatalf("table.New: %v", err)
		}
		return tbl
	}

	s1 := New(baseTable(t))
	if err := s1.DropRows([]int64{1}, Intersection); err != nil {
		t.Fatalf("DropRows: %v", err)
	}
	if err := s1.ExtendColumns(ext()); err != nil {
		t.Fatalf("ExtendColumns: %v", err)
	}

	s2 := New(baseTable(t))
	if err := s2.ExtendColumns(ext()); err != nil {
		t.Fatalf("ExtendColumns: %v", err)
	}
	if err := s2.DropRows([]int64{1}, Intersection); err != nil {
		t.Fatalf("DropRows: %v", err)
	}

	if s1.Live().NumRows() != s2.Live().NumRows() || s1.Live().NumCols() != s2.Live().NumCols() {
		t.Fatalf("shape mismatch between orderings: %dx%d vs %dx%d",
			s1.Live().NumRows(), s1.Live().NumCols(), s2.Live().NumRows(), s2.Live().NumCols())
	}
	for _, rl := range s1.Live().RowLabels() {
		for _, label := range s1.Live().ColumnLabels() {
			v1, _ := s1.Live().At(rl, label)
			v2, ok := s2.Live().At(rl, label)
			if !ok || !v1.Equal(v2) {
				t.Fatalf("cell (%d,%s) differs between orderings: %v vs %v", rl, label, v1, v2)
			}
		}
	}
}
