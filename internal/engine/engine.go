// Package engine implements the delta engine of spec.md §4.5: given a
// Stage's (base, live, log), produce the minimal ordered block set for a
// commit by projecting the operation log onto baseline coordinates.
package engine

import (
	"deltaflow/internal/block"
	"deltaflow/internal/stage"
	"deltaflow/internal/table"
)

// Build runs the three-stage Align/Extract/Build pipeline and returns the
// ordered block set to write for this commit. The returned slice is
// already in canonical order (axis, put, extend) and omits any section
// whose data is empty.
func Build(base, live *table.Table, ops []stage.Operation, compressionLevel int) ([]block.Built, error) {
	rowsState, colsState := align(base, ops)
	extracted, err := extract(base, live, rowsState, colsState)
	if err != nil {
		return nil, err
	}
	return buildBlocks(rowsState, colsState, extracted, compressionLevel)
}

func align(base *table.Table, ops []stage.Operation) (*axisState[int64], *axisState[string]) {
	rowsState := newAxisState(base.RowLabels())
	colsState := newAxisState(base.ColumnLabels())

	for _, op := range ops {
		if op.Drop != nil {
			if op.Drop.Axis == table.AxisRows {
				rowsState.processDrop(op.Drop.RowLabels)
			} else {
				colsState.processDrop(op.Drop.ColLabels)
			}
		}
		if op.Relabel != nil {
			if op.Relabel.Axis == table.AxisRows {
				rowsState.processRelabel(op.Relabel.NewRowLabels)
			} else {
				colsState.processRelabel(op.Relabel.NewColLabels)
			}
		}
	}
	return rowsState, colsState
}

type extracted struct {
	x              *table.Table
	putValues      *table.Table
	preservedDType map[string]table.DType
	extendCols     *table.Table
	extendRows     *table.Table
}

// extract implements Stage B. It strips base to x, carves trailing
// extensions off live by position, then — per the corrected `_ext_both`
// behavior spec.md §9 specifies — builds the row block from live
// restricted to (new rows, surviving base columns) and the column block
// from live restricted to (surviving base rows, new columns).
func extract(base, live *table.Table, rowsState *axisState[int64], colsState *axisState[string]) (*extracted, error) {
	x := base.DropRows(rowsState.Dropped()).DropColumns(colsState.Dropped())

	liveRows := live.RowLabels()
	liveCols := live.ColumnLabels()

	extendRowsCount := len(liveRows) - x.NumRows()
	extendColsCount := len(liveCols) - x.NumCols()
	if extendRowsCount < 0 {
		extendRowsCount = 0
	}
	if extendColsCount < 0 {
		extendColsCount = 0
	}

	var extRowLabels []int64
	if extendRowsCount > 0 {
		extRowLabels = liveRows[len(liveRows)-extendRowsCount:]
	}
	var extColLabels []string
	if extendColsCount > 0 {
		extColLabels = liveCols[len(liveCols)-extendColsCount:]
	}

	currentBaseRows := rowsState.CurrentBaseLabels()
	currentBaseCols := colsState.CurrentBaseLabels()

	var extendRowsTable *table.Table
	if len(extRowLabels) > 0 {
		extendRowsTable = live.SelectRows(extRowLabels).SelectColumns(currentBaseCols)
	}
	var extendColsTable *table.Table
	if len(extColLabels) > 0 {
		extendColsTable = live.SelectRows(currentBaseRows).SelectColumns(extColLabels)
	}

	liveForPut := live
	var err error
	if rowsState.Relabeled() {
		liveForPut, err = liveForPut.RelabelRows(currentBaseRows, rowsState.BaseLabels())
		if err != nil {
			return nil, err
		}
	}
	if colsState.Relabeled() {
		liveForPut, err = liveForPut.RelabelColumns(currentBaseCols, colsState.BaseLabels())
		if err != nil {
			return nil, err
		}
	}

	putValues := table.Shrink(x, liveForPut)

	preserved := map[string]table.DType{}
	for _, label := range putValues.ColumnLabels() {
		pc, _ := putValues.Column(label)
		if xc, ok := x.Column(label); ok && xc.DType != pc.DType {
			preserved[label] = pc.DType
		}
	}

	return &extracted{
		x:              x,
		putValues:      putValues,
		preservedDType: preserved,
		extendCols:     extendColsTable,
		extendRows:     extendRowsTable,
	}, nil
}

// buildBlocks implements Stage C: emit sections only when non-empty, in
// canonical order.
func buildBlocks(rowsState *axisState[int64], colsState *axisState[string], ex *extracted, compressionLevel int) ([]block.Built, error) {
	var out []block.Built

	dropRowsOld := rowsState.Dropped()
	dropColsOld := colsState.Dropped()
	relabelRowsOld, relabelRowsNew := rowsState.RelabelPairs()
	relabelColsOld, relabelColsNew := colsState.RelabelPairs()

	axisSpec := block.AxisSpec{
		DropRows:       dropRowsOld,
		DropCols:       dropColsOld,
		RelabelRowsOld: relabelRowsOld,
		RelabelRowsNew: relabelRowsNew,
		RelabelColsOld: relabelColsOld,
		RelabelColsNew: relabelColsNew,
	}
	if !axisSpec.IsEmpty() {
		built, err := block.BuildAxis(axisSpec, compressionLevel)
		if err != nil {
			return nil, err
		}
		out = append(out, *built)
	}

	putSpec := block.PutSpec{Values: ex.putValues, PreservedDType: ex.preservedDType}
	if !putSpec.IsEmpty() {
		built, err := block.BuildPut(putSpec)
		if err != nil {
			return nil, err
		}
		out = append(out, *built)
	}

	extendSpec := block.ExtendSpec{Cols: ex.extendCols, Rows: ex.extendRows}
	if !extendSpec.IsEmpty() {
		built, err := block.BuildExtend(extendSpec)
		if err != nil {
			return nil, err
		}
		out = append(out, *built)
	}

	return out, nil
}
