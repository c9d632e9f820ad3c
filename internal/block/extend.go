package block

import (
	"deltaflow/internal/dferrors"
	"deltaflow/internal/table"
)

// ExtendSpec carries the appended-columns and appended-rows tables the
// delta engine's Extract stage carved off the live table's trailing
// labels. Either may be nil when that axis did not grow.
type ExtendSpec struct {
	Cols *table.Table // aligned on the post-strip row-index
	Rows *table.Table // carries every post-strip column
}

func (s ExtendSpec) IsEmpty() bool {
	return (s.Cols == nil || s.Cols.NumCols() == 0) && (s.Rows == nil || s.Rows.NumRows() == 0)
}

// BuildExtend writes the appended-columns partition first, then the
// appended-rows partition, per spec.md §4.2. A nil/empty side is omitted
// from the partition list and recorded as null in its slot of meta.shape.
func BuildExtend(s ExtendSpec) (*Built, error) {
	var partitions [][]byte
	var colsShape, rowsShape any

	if s.Cols != nil && s.Cols.NumCols() > 0 {
		payload, err := table.Marshal(s.Cols)
		if err != nil {
			return nil, dferrors.WrapBlockError("marshal extend cols payload", err)
		}
		partitions = append(partitions, payload)
		colsShape = []int{s.Cols.NumRows(), s.Cols.NumCols()}
	}
	if s.Rows != nil && s.Rows.NumRows() > 0 {
		payload, err := table.Marshal(s.Rows)
		if err != nil {
			return nil, dferrors.WrapBlockError("marshal extend rows payload", err)
		}
		partitions = append(partitions, payload)
		rowsShape = []int{s.Rows.NumRows(), s.Rows.NumCols()}
	}

	meta := map[string]any{
		"class": string(ClassExtend),
		"shape": []any{colsShape, rowsShape},
	}
	return &Built{Class: ClassExtend, Meta: meta, Partitions: partitions}, nil
}

func applyExtend(meta map[string]any, partitions [][]byte, t *table.Table) (*table.Table, error) {
	shapeRaw, ok := meta["shape"]
	if !ok {
		return nil, dferrors.NewBlockError("extend meta missing shape")
	}
	shape, ok := shapeRaw.([]any)
	if !ok || len(shape) != 2 {
		return nil, dferrors.NewBlockError("extend meta shape has unexpected form")
	}

	out := t
	idx := 0
	if shape[0] != nil {
		if idx >= len(partitions) {
			return nil, dferrors.NewBlockError("extend block missing cols partition")
		}
		colsTable, err := table.Unmarshal(partitions[idx])
		if err != nil {
			return nil, dferrors.WrapBlockError("unmarshal extend cols payload", err)
		}
		idx++
		out, err = out.ConcatColumns(colsTable)
		if err != nil {
			return nil, err
		}
	}
	if shape[1] != nil {
		if idx >= len(partitions) {
			return nil, dferrors.NewBlockError("extend block missing rows partition")
		}
		rowsTable, err := table.Unmarshal(partitions[idx])
		if err != nil {
			return nil, dferrors.WrapBlockError("unmarshal extend rows payload", err)
		}
		var err2 error
		out, err2 = out.ConcatRows(rowsTable)
		if err2 != nil {
			return nil, err2
		}
	}
	return out, nil
}
