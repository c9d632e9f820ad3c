// Package arrow implements the Arrow of spec.md §4.4/§4.6: a named mutable
// cursor wrapping a Stage and a Tree, exposing put/drop/extend/relabel/
// undo/commit/proxy. Commit drives the delta engine, persists the three
// commit artifacts in the mandated order, and advances the underlying
// Tree's arrow pointer.
package arrow

import (
	"deltaflow/internal/dferrors"
	"deltaflow/internal/deltafile"
	"deltaflow/internal/engine"
	"deltaflow/internal/node"
	"deltaflow/internal/stage"
	"deltaflow/internal/table"
	"deltaflow/internal/tree"
)

// Arrow is a loaded cursor: its Stage tracks uncommitted edits, and it
// remembers enough of the head node's own lineage to build the next
// commit's header without re-reading it from disk.
type Arrow struct {
	name             string
	tree             *tree.Tree
	stage            *stage.Stage
	headID           string
	originDataHash   string   // the origin's hash_table digest (spec.md line 40), not a node id
	headLineage      []string // the currently-committed head's own lineage (empty if head is an origin)
	compressionLevel int
}

// Open resolves name's current head through tr, materializes it, and
// returns an Arrow ready to accept edits.
func Open(tr *tree.Tree, name string, compressionLevel int) (*Arrow, error) {
	headID, err := tr.ArrowHead(name)
	if err != nil {
		return nil, err
	}
	live, err := tr.Resolve(headID)
	if err != nil {
		return nil, err
	}

	h, err := tr.Node(headID)
	if err != nil {
		return nil, err
	}

	var originDataHash string
	var lineage []string
	switch v := h.(type) {
	case *node.OriginHeader:
		originDataHash = v.Origin
	case *node.DeltaHeader:
		originDataHash = v.Origin
		lineage = v.Lineage
	default:
		return nil, dferrors.NewIntegrityError(headID, "header")
	}

	return &Arrow{
		name:             name,
		tree:             tr,
		stage:            stage.New(live),
		headID:           headID,
		originDataHash:   originDataHash,
		headLineage:      lineage,
		compressionLevel: compressionLevel,
	}, nil
}

// Proxy returns a read-only snapshot of the staged live table.
func (a *Arrow) Proxy() *table.Table { return a.stage.Live().Clone() }

// Put writes the minimal differing cells between data and live.
func (a *Arrow) Put(data *table.Table) error { return a.stage.Put(data) }

// Drop removes labels from the given axis, by the given method.
func (a *Arrow) Drop(labels any, axis table.Axis, method stage.DropMethod) error {
	switch axis {
	case table.AxisRows:
		rowLabels, ok := labels.([]int64)
		if !ok {
			return dferrors.NewIndexerError(int(axis), "expected []int64")
		}
		return a.stage.DropRows(rowLabels, method)
	case table.AxisCols:
		colLabels, ok := labels.([]string)
		if !ok {
			return dferrors.NewIndexerError(int(axis), "expected []string")
		}
		return a.stage.DropColumns(colLabels, method)
	default:
		return dferrors.NewIndexerError(int(axis), "unknown axis")
	}
}

// Extend appends new labels along the given axis.
func (a *Arrow) Extend(data *table.Table, axis table.Axis) error {
	if axis == table.AxisRows {
		return a.stage.ExtendRows(data)
	}
	return a.stage.ExtendColumns(data)
}

// Relabel replaces an entire axis's labels element-wise.
func (a *Arrow) Relabel(labels any, axis table.Axis) error {
	switch axis {
	case table.AxisRows:
		rowLabels, ok := labels.([]int64)
		if !ok {
			return dferrors.NewIndexerError(int(axis), "expected []int64")
		}
		return a.stage.RelabelRows(rowLabels)
	case table.AxisCols:
		colLabels, ok := labels.([]string)
		if !ok {
			return dferrors.NewIndexerError(int(axis), "expected []string")
		}
		return a.stage.RelabelColumns(colLabels)
	default:
		return dferrors.NewIndexerError(int(axis), "unknown axis")
	}
}

// Undo pops the last edit layer.
func (a *Arrow) Undo() error { return a.stage.Undo() }

// Commit hands the Stage to the delta engine, persists the delta file and
// node header, advances the Tree's arrow pointer, and resets the Stage.
// Committing an empty log raises PutError (spec.md §8 invariant 3).
func (a *Arrow) Commit() (string, error) {
	if !a.stage.HasPendingChanges() {
		return "", dferrors.NewPutError()
	}

	built, err := engine.Build(a.stage.Base(), a.stage.Live(), a.stage.Operations(), a.compressionLevel)
	if err != nil {
		return "", err
	}

	blocks := make([]deltafile.Block, 0, len(built))
	for _, b := range built {
		blocks = append(blocks, deltafile.Block{Class: b.Class, Meta: b.Meta, Partitions: b.Partitions})
	}

	newID, err := a.tree.CommitDelta(a.name, a.headID, a.headLineage, a.originDataHash, blocks, a.stage.Live())
	if err != nil {
		return "", err
	}

	a.headLineage = append([]string{a.headID}, a.headLineage...)
	a.headID = newID
	a.stage.Reset()

	return newID, nil
}

// HeadID returns the node id this Arrow is currently staged on top of.
func (a *Arrow) HeadID() string { return a.headID }
