package block

import (
	"deltaflow/internal/dferrors"
	"deltaflow/internal/table"
)

// PutSpec carries the sparse value overrides the delta engine's Extract
// stage computed (put_values) along with any dtype the engine recorded
// as differing from base's dtype for the same column.
type PutSpec struct {
	Values         *table.Table
	PreservedDType map[string]table.DType
}

func (s PutSpec) IsEmpty() bool {
	return s.Values == nil || s.Values.IsEmpty()
}

// BuildPut encodes the sparse put table as a single columnar payload.
func BuildPut(s PutSpec) (*Built, error) {
	payload, err := table.Marshal(s.Values)
	if err != nil {
		return nil, dferrors.WrapBlockError("marshal put payload", err)
	}

	meta := map[string]any{
		"class": string(ClassPut),
		"shape": []int{s.Values.NumRows(), s.Values.NumCols()},
		"count": countNonNull(s.Values),
	}
	if len(s.PreservedDType) > 0 {
		dtypes := make(map[string]string, len(s.PreservedDType))
		for label, dt := range s.PreservedDType {
			dtypes[label] = dt.String()
		}
		meta["dtypes"] = dtypes
	}

	return &Built{Class: ClassPut, Meta: meta, Partitions: [][]byte{payload}}, nil
}

func countNonNull(t *table.Table) int {
	n := 0
	for _, col := range t.Columns() {
		for _, c := range col.Cells {
			if !c.Null {
				n++
			}
		}
	}
	return n
}

func applyPut(meta map[string]any, partitions [][]byte, t *table.Table) (*table.Table, error) {
	if len(partitions) != 1 {
		return nil, dferrors.NewBlockError("put block expects exactly one partition")
	}
	patch, err := table.Unmarshal(partitions[0])
	if err != nil {
		return nil, dferrors.WrapBlockError("unmarshal put payload", err)
	}

	preserved := map[string]table.DType{}
	if raw, ok := meta["dtypes"]; ok {
		dtypes, err := asStringMap(raw)
		if err != nil {
			return nil, dferrors.WrapBlockError("parse put dtypes", err)
		}
		for label, name := range dtypes {
			dt, ok := dtypeByName(name)
			if !ok {
				return nil, dferrors.NewBlockError("unknown dtype tag in put meta: " + name)
			}
			preserved[label] = dt
		}
	}

	return t.Update(patch, preserved), nil
}

func dtypeByName(name string) (table.DType, bool) {
	switch name {
	case "int64":
		return table.Int64, true
	case "float64":
		return table.Float64, true
	case "bool":
		return table.Bool, true
	case "string":
		return table.String, true
	default:
		return 0, false
	}
}

// asStringMap normalizes a decoded meta value (which may be
// map[string]any after a JSON round trip, or map[string]string when built
// and applied in the same process) into map[string]string.
func asStringMap(raw any) (map[string]string, error) {
	switch v := raw.(type) {
	case map[string]string:
		return v, nil
	case map[string]any:
		out := make(map[string]string, len(v))
		for k, val := range v {
			s, ok := val.(string)
			if !ok {
				return nil, dferrors.NewBlockError("dtype map value is not a string")
			}
			out[k] = s
		}
		return out, nil
	default:
		return nil, dferrors.NewBlockError("dtype map has unexpected shape")
	}
}
