// Package stage implements the operation log and Stage of spec.md §4.4:
// the in-memory (base, live, log) triple a loaded Arrow owns, and the
// put/drop/extend/relabel/undo mutators that grow or unwind it.
//
// Undo is implemented by snapshotting live before each Layer rather than
// inverting each Operation's recorded fields (see DESIGN.md): the spec
// requires only that undo recovers the previous live state, and a
// snapshot trivially satisfies that. The delta engine (internal/engine)
// never reads Operation.Put or Operation.Extend — it rederives put and
// extend sections directly from base vs. live (§4.5 Stage B) — so only
// Drop and Relabel operations carry fields the engine actually consumes.
package stage

import (
	"deltaflow/internal/dferrors"
	"deltaflow/internal/table"
)

// DropMethod names the two label-selection strategies spec.md §4.4
// defines for drop.
type DropMethod string

const (
	Intersection DropMethod = "intersection"
	Difference   DropMethod = "difference"
)

// DropOp records the axis and the exact labels removed, in their pre-drop
// order, so the delta engine's Align stage can project them into
// baseline coordinates.
type DropOp struct {
	Axis      table.Axis
	RowLabels []int64  // set when Axis == AxisRows
	ColLabels []string // set when Axis == AxisCols
}

// RelabelOp records the whole-axis old→new label mapping, in order.
type RelabelOp struct {
	Axis                       table.Axis
	OldRowLabels, NewRowLabels []int64
	OldColLabels, NewColLabels []string
}

// PutOp records the new values written (applied to live) and the prior
// values they replaced (restored on undo).
type PutOp struct {
	NewValues *table.Table
	OldValues *table.Table
}

// ExtendOp records the appended slice, aligned to the target axis.
type ExtendOp struct {
	Axis table.Axis
	Data *table.Table
}

// Operation is a tagged variant: exactly one field is non-nil.
type Operation struct {
	Drop    *DropOp
	Relabel *RelabelOp
	Put     *PutOp
	Extend  *ExtendOp
}

// Layer is a non-empty ordered list of Operations appended atomically by
// one mutator call, plus the live snapshot from immediately before it.
type Layer struct {
	Ops     []Operation
	preLive *table.Table
}

// Stage is the (base, live, log) triple.
type Stage struct {
	base *table.Table
	live *table.Table
	log  []Layer
}

// New creates a Stage whose base and initial live are both base (a clone,
// so mutating live never touches the caller's table).
func New(base *table.Table) *Stage {
	return &Stage{base: base, live: base.Clone()}
}

func (s *Stage) Base() *table.Table { return s.base }
func (s *Stage) Live() *table.Table { return s.live }

// Operations flattens the log into a single ordered slice, the form the
// delta engine's Align stage walks.
func (s *Stage) Operations() []Operation {
	var ops []Operation
	for _, l := range s.log {
		ops = append(ops, l.Ops...)
	}
	return ops
}

// HasPendingChanges reports whether the log is non-empty: committing an
// empty log is rejected with PutError (spec.md §8 invariant 3).
func (s *Stage) HasPendingChanges() bool { return len(s.log) > 0 }

// Reset clears the log and sets base = live, the state after a successful
// commit (spec.md §4.6 step 7).
func (s *Stage) Reset() {
	s.base = s.live.Clone()
	s.log = nil
}

func (s *Stage) pushLayer(preLive *table.Table, ops ...Operation) {
	s.log = append(s.log, Layer{Ops: ops, preLive: preLive})
}

// Put intersects data's row and column labels with live, requires matching
// dtypes at the intersection, and writes the minimal differing cells. A
// put that changes nothing is a no-op: it does not grow the log.
func (s *Stage) Put(data *table.Table) error {
	cols := s.live.IntersectColumns(data)
	rows := s.live.IntersectRows(data)
	if len(cols) == 0 || len(rows) == 0 {
		return nil
	}

	dataSlice := data.SelectRows(rows).SelectColumns(cols)
	stageSlice := s.live.SelectRows(rows).SelectColumns(cols)

	for _, label := range cols {
		dc, _ := dataSlice.Column(label)
		sc, _ := stageSlice.Column(label)
		if dc.DType != sc.DType {
			return dferrors.NewDataTypeError()
		}
	}

	newValues := table.Shrink(stageSlice, dataSlice)
	oldValues := table.Shrink(dataSlice, stageSlice)
	if newValues.IsEmpty() {
		return nil
	}

	pre := s.live.Clone()
	s.live = s.live.Update(newValues, nil)
	s.pushLayer(pre, Operation{Put: &PutOp{NewValues: newValues, OldValues: oldValues}})
	return nil
}

// DropRows removes row labels selected by method, pushing a Layer with
// one DropOp.
func (s *Stage) DropRows(labels []int64, method DropMethod) error {
	toDrop, err := selectDropRows(s.live, labels, method)
	if err != nil {
		return err
	}
	pre := s.live.Clone()
	s.live = s.live.DropRows(toDrop)
	s.pushLayer(pre, Operation{Drop: &DropOp{Axis: table.AxisRows, RowLabels: toDrop}})
	return nil
}

// DropColumns is the column-axis counterpart of DropRows.
func (s *Stage) DropColumns(labels []string, method DropMethod) error {
	toDrop, err := selectDropCols(s.live, labels, method)
	if err != nil {
		return err
	}
	pre := s.live.Clone()
	s.live = s.live.DropColumns(toDrop)
	s.pushLayer(pre, Operation{Drop: &DropOp{Axis: table.AxisCols, ColLabels: toDrop}})
	return nil
}

func selectDropRows(live *table.Table, labels []int64, method DropMethod) ([]int64, error) {
	switch method {
	case Intersection:
		var out []int64
		for _, l := range labels {
			if live.HasRow(l) {
				out = append(out, l)
			}
		}
		if len(out) == 0 {
			return nil, dferrors.NewIntersectionError()
		}
		return out, nil
	case Difference:
		set := make(map[int64]bool, len(labels))
		for _, l := range labels {
			set[l] = true
		}
		var out []int64
		for _, rl := range live.RowLabels() {
			if !set[rl] {
				out = append(out, rl)
			}
		}
		if len(out) == 0 {
			return nil, dferrors.NewDifferenceError()
		}
		return out, nil
	default:
		return nil, dferrors.NewIndexerError(int(table.AxisRows), string(method))
	}
}

func selectDropCols(live *table.Table, labels []string, method DropMethod) ([]string, error) {
	switch method {
	case Intersection:
		var out []string
		for _, l := range labels {
			if live.HasColumn(l) {
				out = append(out, l)
			}
		}
		if len(out) == 0 {
			return nil, dferrors.NewIntersectionError()
		}
		return out, nil
	case Difference:
		set := make(map[string]bool, len(labels))
		for _, l := range labels {
			set[l] = true
		}
		var out []string
		for _, c := range live.ColumnLabels() {
			if !set[c] {
				out = append(out, c)
			}
		}
		if len(out) == 0 {
			return nil, dferrors.NewDifferenceError()
		}
		return out, nil
	default:
		return nil, dferrors.NewIndexerError(int(table.AxisCols), string(method))
	}
}

// ExtendRows requires data's columns to fully cover live's columns,
// introduces at least one new row label, and drops any data column not
// present in live.
func (s *Stage) ExtendRows(data *table.Table) error {
	for _, col := range s.live.ColumnLabels() {
		if !data.HasColumn(col) {
			return dferrors.NewExtensionError(int(table.AxisRows))
		}
	}
	aligned := data.SelectColumns(s.live.ColumnLabels())

	var newRows []int64
	for _, rl := range aligned.RowLabels() {
		if !s.live.HasRow(rl) {
			newRows = append(newRows, rl)
		}
	}
	if len(newRows) == 0 {
		return dferrors.NewExtensionError(int(table.AxisRows))
	}
	toAppend := aligned.SelectRows(newRows)

	newLive, err := s.live.ConcatRows(toAppend)
	if err != nil {
		return err
	}
	pre := s.live.Clone()
	s.live = newLive
	s.pushLayer(pre, Operation{Extend: &ExtendOp{Axis: table.AxisRows, Data: toAppend}})
	return nil
}

// ExtendColumns requires at least one new column label and drops any data
// row not present in live.
func (s *Stage) ExtendColumns(data *table.Table) error {
	var newCols []string
	for _, label := range data.ColumnLabels() {
		if !s.live.HasColumn(label) {
			newCols = append(newCols, label)
		}
	}
	if len(newCols) == 0 {
		return dferrors.NewExtensionError(int(table.AxisCols))
	}
	candidate := data.SelectColumns(newCols)

	var alignedRows []int64
	for _, rl := range s.live.RowLabels() {
		if candidate.HasRow(rl) {
			alignedRows = append(alignedRows, rl)
		}
	}
	toAppend := candidate.SelectRows(alignedRows)

	newLive, err := s.live.ConcatColumns(toAppend)
	if err != nil {
		return err
	}
	pre := s.live.Clone()
	s.live = newLive
	s.pushLayer(pre, Operation{Extend: &ExtendOp{Axis: table.AxisCols, Data: toAppend}})
	return nil
}

// RelabelRows replaces the entire row-index element-wise; len(newLabels)
// must match live's current row count.
func (s *Stage) RelabelRows(newLabels []int64) error {
	old := append([]int64(nil), s.live.RowLabels()...)
	if len(newLabels) != len(old) {
		return dferrors.NewSetIndexError(len(old), len(newLabels))
	}
	newLive, err := s.live.RelabelRows(old, newLabels)
	if err != nil {
		return err
	}
	pre := s.live.Clone()
	s.live = newLive
	s.pushLayer(pre, Operation{Relabel: &RelabelOp{Axis: table.AxisRows, OldRowLabels: old, NewRowLabels: append([]int64(nil), newLabels...)}})
	return nil
}

// RelabelColumns is the column-axis counterpart of RelabelRows.
func (s *Stage) RelabelColumns(newLabels []string) error {
	old := append([]string(nil), s.live.ColumnLabels()...)
	if len(newLabels) != len(old) {
		return dferrors.NewSetIndexError(len(old), len(newLabels))
	}
	newLive, err := s.live.RelabelColumns(old, newLabels)
	if err != nil {
		return err
	}
	pre := s.live.Clone()
	s.live = newLive
	s.pushLayer(pre, Operation{Relabel: &RelabelOp{Axis: table.AxisCols, OldColLabels: old, NewColLabels: append([]string(nil), newLabels...)}})
	return nil
}

// Undo pops the last Layer and restores the live snapshot from before it
// ran. Fails with UndoError if the log is empty.
func (s *Stage) Undo() error {
	if len(s.log) == 0 {
		return dferrors.NewUndoError()
	}
	last := s.log[len(s.log)-1]
	s.log = s.log[:len(s.log)-1]
	s.live = last.preLive
	return nil
}
