// Package block implements the three delta block kinds of spec.md §4.2:
// AxisBlock (drops/relabels in baseline coordinates), PutBlock (sparse
// value overrides with dtype preservation), and ExtensionBlock (appended
// rows/columns). Each block type exposes a Build step (producing the JSON
// meta plus an ordered list of partition payloads) and an Apply step
// (folding a parsed block into a table).
//
// The container's chunk/partition byte accounting (spec.md §4.3) is owned
// by internal/deltafile, which hands this package whole partition byte
// slices rather than a masked stream: the table codec this module builds
// on (protowire-based, internal/table) already operates on self-contained
// []byte payloads, so there is no streaming consumer on this side of the
// boundary that would need a seekable reader.
package block

import (
	"deltaflow/internal/dferrors"
	"deltaflow/internal/table"
)

// Class names the block kind, used both as the delta file's block name and
// as meta.class.
type Class string

const (
	ClassAxis   Class = "axis"
	ClassPut    Class = "put"
	ClassExtend Class = "extend"
)

// CanonicalOrder is the emission and apply order mandated by spec.md §4.2:
// axis before put before extend, because drops/relabels must resolve
// before put/extend coordinates are meaningful.
var CanonicalOrder = []Class{ClassAxis, ClassPut, ClassExtend}

// Built is the output of a Build step: the JSON-serializable meta (minus
// the chunk field, which the container fills in once partition lengths
// are known) and the ordered partition payloads to write.
type Built struct {
	Class      Class
	Meta       map[string]any
	Partitions [][]byte
}

// Apply folds a parsed block (its meta and raw partitions) into t,
// dispatching on class. It is the single entry point internal/tree uses
// while walking a node's delta file in stored block order.
func Apply(class Class, meta map[string]any, partitions [][]byte, t *table.Table) (*table.Table, error) {
	switch class {
	case ClassAxis:
		return applyAxis(meta, partitions, t)
	case ClassPut:
		return applyPut(meta, partitions, t)
	case ClassExtend:
		return applyExtend(meta, partitions, t)
	default:
		return nil, dferrors.NewBlockError("unknown block class: " + string(class))
	}
}
