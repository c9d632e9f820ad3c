package block

import (
	"encoding/json"

	"github.com/klauspost/compress/zstd"

	"deltaflow/internal/dferrors"
	"deltaflow/internal/table"
)

// AxisSpec carries the per-axis drop and relabel sets the delta engine's
// Align stage produced, already expressed in baseline coordinates.
type AxisSpec struct {
	DropRows []int64
	DropCols []string

	RelabelRowsOld, RelabelRowsNew []int64
	RelabelColsOld, RelabelColsNew []string
}

// IsEmpty reports whether this axis block would carry no information, in
// which case the delta engine's Build stage omits it entirely.
func (s AxisSpec) IsEmpty() bool {
	return len(s.DropRows) == 0 && len(s.DropCols) == 0 &&
		len(s.RelabelRowsOld) == 0 && len(s.RelabelColsOld) == 0
}

type axisBundle struct {
	DropRows       []int64  `json:"drop_rows,omitempty"`
	DropCols       []string `json:"drop_cols,omitempty"`
	RelabelRowsOld []int64  `json:"relabel_rows_old,omitempty"`
	RelabelRowsNew []int64  `json:"relabel_rows_new,omitempty"`
	RelabelColsOld []string `json:"relabel_cols_old,omitempty"`
	RelabelColsNew []string `json:"relabel_cols_new,omitempty"`
}

// BuildAxis compresses the six named arrays (drop rows, drop columns, and
// the old and new labels of row and column relabels) into a single zstd-wrapped
// JSON bundle, the way the teacher's upload handler wraps response bodies
// in a zstd.Encoder. compressionLevel maps to zstd.EncoderLevelFromZstd.
func BuildAxis(s AxisSpec, compressionLevel int) (*Built, error) {
	bundle := axisBundle{
		DropRows:       s.DropRows,
		DropCols:       s.DropCols,
		RelabelRowsOld: s.RelabelRowsOld,
		RelabelRowsNew: s.RelabelRowsNew,
		RelabelColsOld: s.RelabelColsOld,
		RelabelColsNew: s.RelabelColsNew,
	}
	raw, err := json.Marshal(bundle)
	if err != nil {
		return nil, dferrors.WrapBlockError("marshal axis bundle", err)
	}

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.EncoderLevelFromZstd(compressionLevel)))
	if err != nil {
		return nil, dferrors.WrapBlockError("create zstd encoder", err)
	}
	compressed := enc.EncodeAll(raw, nil)
	_ = enc.Close()

	meta := map[string]any{"class": string(ClassAxis)}
	if len(s.DropRows) > 0 || len(s.RelabelRowsOld) > 0 {
		meta["rows"] = map[string]any{"shape": len(s.DropRows) + len(s.RelabelRowsOld), "type": "IntegerIndex"}
	}
	if len(s.DropCols) > 0 || len(s.RelabelColsOld) > 0 {
		meta["cols"] = map[string]any{"shape": len(s.DropCols) + len(s.RelabelColsOld), "type": "LabelIndex"}
	}

	return &Built{Class: ClassAxis, Meta: meta, Partitions: [][]byte{compressed}}, nil
}

func applyAxis(meta map[string]any, partitions [][]byte, t *table.Table) (*table.Table, error) {
	if len(partitions) != 1 {
		return nil, dferrors.NewBlockError("axis block expects exactly one partition")
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, dferrors.WrapBlockError("create zstd decoder", err)
	}
	defer dec.Close()

	raw, err := dec.DecodeAll(partitions[0], nil)
	if err != nil {
		return nil, dferrors.WrapBlockError("decompress axis payload", err)
	}

	var bundle axisBundle
	if err := json.Unmarshal(raw, &bundle); err != nil {
		return nil, dferrors.WrapBlockError("unmarshal axis bundle", err)
	}

	out := t
	if len(bundle.DropRows) > 0 {
		out = out.DropRows(bundle.DropRows)
	}
	if len(bundle.DropCols) > 0 {
		out = out.DropColumns(bundle.DropCols)
	}
	if len(bundle.RelabelRowsOld) > 0 {
		out, err = out.RelabelRows(bundle.RelabelRowsOld, bundle.RelabelRowsNew)
		if err != nil {
			return nil, err
		}
	}
	if len(bundle.RelabelColsOld) > 0 {
		out, err = out.RelabelColumns(bundle.RelabelColsOld, bundle.RelabelColsNew)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}
