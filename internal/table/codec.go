package table

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"

	"deltaflow/internal/dferrors"
)

// Wire field numbers for the table-level message.
const (
	fieldRowLabels protowire.Number = 1
	fieldColumn    protowire.Number = 2
)

// Wire field numbers for the per-column sub-message.
const (
	fieldColLabel protowire.Number = 1
	fieldColDType protowire.Number = 2
	fieldColCell  protowire.Number = 3
)

// Marshal encodes a table as a self-contained columnar payload using raw
// protobuf wire groups (via encoding/protowire), without code generation:
// spec.md §9 leaves the columnar payload library unconstrained, so long as
// it round-trips a table to an arbitrary byte sink. One field-2 entry per
// column; within each column, one field-3 entry per cell, in row order.
func Marshal(t *Table) ([]byte, error) {
	var b []byte
	for _, rl := range t.rowLabels {
		b = protowire.AppendTag(b, fieldRowLabels, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeZigZag(rl))
	}
	for _, col := range t.columns {
		colBytes, err := marshalColumn(col)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, fieldColumn, protowire.BytesType)
		b = protowire.AppendBytes(b, colBytes)
	}
	return b, nil
}

func marshalColumn(col Column) ([]byte, error) {
	var b []byte
	b = protowire.AppendTag(b, fieldColLabel, protowire.BytesType)
	b = protowire.AppendString(b, col.Label)
	b = protowire.AppendTag(b, fieldColDType, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(col.DType))
	for _, cell := range col.Cells {
		cb, err := marshalCell(cell)
		if err != nil {
			return nil, err
		}
		b = protowire.AppendTag(b, fieldColCell, protowire.BytesType)
		b = protowire.AppendBytes(b, cb)
	}
	return b, nil
}

func marshalCell(c Cell) ([]byte, error) {
	if c.Null {
		return []byte{0}, nil
	}
	buf := make([]byte, 1, 9)
	buf[0] = 1
	switch c.DType {
	case Int64:
		buf = protowire.AppendVarint(buf, protowire.EncodeZigZag(c.I))
	case Float64:
		buf = protowire.AppendFixed64(buf, math.Float64bits(c.F))
	case Bool:
		if c.B {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	case String:
		buf = append(buf, []byte(c.S)...)
	default:
		return nil, dferrors.NewDataTypeError()
	}
	return buf, nil
}

// Unmarshal decodes a payload produced by Marshal back into a Table.
func Unmarshal(b []byte) (*Table, error) {
	var rowLabels []int64
	var columns []Column

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, dferrors.WrapBlockError("malformed table payload", protowire.ParseError(n))
		}
		b = b[n:]

		switch num {
		case fieldRowLabels:
			if typ != protowire.VarintType {
				return nil, dferrors.NewBlockError("row label field has wrong wire type")
			}
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, dferrors.WrapBlockError("malformed row label", protowire.ParseError(n))
			}
			b = b[n:]
			rowLabels = append(rowLabels, protowire.DecodeZigZag(v))

		case fieldColumn:
			if typ != protowire.BytesType {
				return nil, dferrors.NewBlockError("column field has wrong wire type")
			}
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, dferrors.WrapBlockError("malformed column", protowire.ParseError(n))
			}
			b = b[n:]
			col, err := unmarshalColumn(v)
			if err != nil {
				return nil, err
			}
			columns = append(columns, col)

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, dferrors.NewBlockError("malformed table payload field")
			}
			b = b[n:]
		}
	}

	return New(rowLabels, columns)
}

func unmarshalColumn(b []byte) (Column, error) {
	var col Column
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Column{}, dferrors.NewBlockError("malformed column header")
		}
		b = b[n:]

		switch num {
		case fieldColLabel:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Column{}, dferrors.NewBlockError("malformed column label")
			}
			b = b[n:]
			col.Label = string(v)

		case fieldColDType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Column{}, dferrors.NewBlockError("malformed column dtype")
			}
			b = b[n:]
			col.DType = DType(v)

		case fieldColCell:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Column{}, dferrors.NewBlockError("malformed cell")
			}
			b = b[n:]
			cell, err := unmarshalCell(v, col.DType)
			if err != nil {
				return Column{}, err
			}
			col.Cells = append(col.Cells, cell)

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Column{}, dferrors.NewBlockError("malformed column field")
			}
			b = b[n:]
		}
	}
	return col, nil
}

func unmarshalCell(b []byte, dtype DType) (Cell, error) {
	if len(b) == 0 {
		return Cell{}, dferrors.NewBlockError("empty cell payload")
	}
	if b[0] == 0 {
		return NullCell(dtype), nil
	}
	rest := b[1:]
	switch dtype {
	case Int64:
		v, n := protowire.ConsumeVarint(rest)
		if n < 0 {
			return Cell{}, dferrors.NewBlockError("malformed int64 cell")
		}
		return IntCell(protowire.DecodeZigZag(v)), nil
	case Float64:
		v, n := protowire.ConsumeFixed64(rest)
		if n < 0 {
			return Cell{}, dferrors.NewBlockError("malformed float64 cell")
		}
		return FloatCell(math.Float64frombits(v)), nil
	case Bool:
		if len(rest) < 1 {
			return Cell{}, dferrors.NewBlockError("malformed bool cell")
		}
		return BoolCell(rest[0] != 0), nil
	case String:
		return StringCell(string(rest)), nil
	default:
		return Cell{}, fmt.Errorf("unknown dtype tag %d", dtype)
	}
}
