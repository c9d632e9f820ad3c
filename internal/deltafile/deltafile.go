// Package deltafile implements the chunked binary container of spec.md
// §4.3: a sequence of block payload byte ranges, followed by a UTF-8 JSON
// trailer (an ordered mapping from block name to block meta, each meta
// carrying a `chunk` byte-length or tuple of lengths), followed by an
// 8-byte little-endian signed integer giving the trailer's length.
//
// Unlike the original implementation, this package does not expose a
// masked file-like reader/writer to the block codec: internal/block's
// table payloads are already self-contained []byte values (internal/table
// is protowire-based, not stream-oriented), so the container's job
// reduces to byte accounting — concatenate partitions, record their
// lengths, and slice them back out by summation on read. The on-disk
// byte layout this produces is identical to the literal spec.
package deltafile

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"deltaflow/internal/block"
	"deltaflow/internal/dferrors"
)

// Block is one class's contribution to a delta file, either freshly built
// (for writing) or freshly parsed (for reading).
type Block struct {
	Class      block.Class
	Meta       map[string]any
	Partitions [][]byte
}

// Encode serializes blocks, in the given order, into a complete delta
// file: concatenated partition bytes, then the ordered JSON trailer, then
// the 8-byte length tail. Caller order is the canonical block order
// (block.CanonicalOrder filtered to non-empty sections); Encode does not
// reorder blocks itself.
func Encode(blocks []Block) ([]byte, error) {
	var payload bytes.Buffer
	entries := make([]metaEntry, 0, len(blocks))

	for _, b := range blocks {
		for _, part := range b.Partitions {
			payload.Write(part)
		}

		meta := make(map[string]any, len(b.Meta)+1)
		for k, v := range b.Meta {
			meta[k] = v
		}
		meta["chunk"] = chunkField(b.Partitions)

		raw, err := json.Marshal(meta)
		if err != nil {
			return nil, dferrors.WrapBlockError("marshal block meta", err)
		}
		entries = append(entries, metaEntry{Name: string(b.Class), Raw: raw})
	}

	trailer, err := marshalOrderedMeta(entries)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	out.Write(payload.Bytes())
	out.Write(trailer)

	var tail [8]byte
	binary.LittleEndian.PutUint64(tail[:], uint64(int64(len(trailer))))
	out.Write(tail[:])

	return out.Bytes(), nil
}

func chunkField(partitions [][]byte) any {
	if len(partitions) == 1 {
		return len(partitions[0])
	}
	lengths := make([]int, len(partitions))
	for i, p := range partitions {
		lengths[i] = len(p)
	}
	return lengths
}

// Decode inverts Encode: it reads the tail, slices out the trailer, and
// walks the ordered block-name sequence to recover each block's meta and
// partition byte slices in stored order.
func Decode(data []byte) ([]Block, error) {
	if len(data) < 8 {
		return nil, dferrors.NewBlockError("delta file too short for length tail")
	}
	tailStart := len(data) - 8
	metaLen := int64(binary.LittleEndian.Uint64(data[tailStart:]))
	if metaLen < 0 || int64(tailStart) < metaLen {
		return nil, dferrors.NewBlockError("delta file length tail out of range")
	}
	metaStart := tailStart - int(metaLen)
	trailer := data[metaStart:tailStart]
	payload := data[:metaStart]

	entries, err := unmarshalOrderedMeta(trailer)
	if err != nil {
		return nil, dferrors.WrapBlockError("parse delta file trailer", err)
	}

	var blocks []Block
	offset := 0
	for _, e := range entries {
		var meta map[string]any
		if err := json.Unmarshal(e.Raw, &meta); err != nil {
			return nil, dferrors.WrapBlockError("parse block meta", err)
		}
		lengths, err := chunkLengths(meta["chunk"])
		if err != nil {
			return nil, err
		}

		partitions := make([][]byte, len(lengths))
		for i, l := range lengths {
			if offset+l > len(payload) {
				return nil, dferrors.NewBlockError("block partition exceeds payload bounds")
			}
			partitions[i] = payload[offset : offset+l]
			offset += l
		}

		blocks = append(blocks, Block{Class: block.Class(e.Name), Meta: meta, Partitions: partitions})
	}

	if offset != len(payload) {
		return nil, dferrors.NewBlockError("delta file payload has unconsumed bytes")
	}

	return blocks, nil
}

func chunkLengths(raw any) ([]int, error) {
	switch v := raw.(type) {
	case float64:
		return []int{int(v)}, nil
	case []any:
		out := make([]int, len(v))
		for i, e := range v {
			f, ok := e.(float64)
			if !ok {
				return nil, dferrors.NewBlockError("chunk tuple entry is not a number")
			}
			out[i] = int(f)
		}
		return out, nil
	default:
		return nil, dferrors.NewBlockError(fmt.Sprintf("chunk field has unexpected type %T", raw))
	}
}
