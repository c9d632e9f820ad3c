// Package hash provides the three deterministic content hashes the rest of
// deltaflow builds node identity on: hash_table, hash_header, and
// hash_pair (spec.md §4.1).
//
// The digest is blake2b-256 rather than the original implementation's
// SHA-1: both are acceptable per the open question in spec.md §9 ("a
// reimplementation may substitute any collision-resistant 160-256 bit
// hash so long as all four producers/consumers agree"), and blake2b is
// already this module's cryptographic dependency (golang.org/x/crypto).
package hash

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"golang.org/x/crypto/blake2b"

	"deltaflow/internal/table"
)

// Algorithm names the digest backing every hash in this package. It is not
// written into node headers or delta files, and it plays no role in the
// computation itself.
const Algorithm = "blake2b-256"

// HashTable computes the content hash of a table: the column labels, then a
// deterministic per-row digest that includes the row-index label. The
// label prefix keeps two tables with identical values but different
// schemas from colliding.
func HashTable(t *table.Table) string {
	h, _ := blake2b.New256(nil)

	for _, label := range t.ColumnLabels() {
		writeLP(h, []byte(label))
	}

	rows := t.RowLabels()
	for i, rowLabel := range rows {
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(rowLabel))
		h.Write(buf[:])

		for _, col := range t.Columns() {
			writeCell(h, col.Cells[i])
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}

// HashHeader computes the digest of the UTF-8 bytes of a canonical JSON
// encoding of a node header. Callers pass the already-marshaled bytes
// (produced with an ordered struct, not a map) so that key order is
// controlled by the caller, not by this package.
func HashHeader(headerJSON []byte) string {
	sum := blake2b.Sum256(headerJSON)
	return hex.EncodeToString(sum[:])
}

// HashPair binds a node id to both its header and its content: the digest
// of the concatenation of the two hex digests.
func HashPair(headerHash, dataHash string) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(headerHash))
	h.Write([]byte(dataHash))
	return hex.EncodeToString(h.Sum(nil))
}

func writeLP(h interface{ Write([]byte) (int, error) }, b []byte) {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(b)))
	h.Write(length[:])
	h.Write(b)
}

func writeCell(h interface{ Write([]byte) (int, error) }, c table.Cell) {
	if c.Null {
		h.Write([]byte{0x00})
		return
	}
	h.Write([]byte{0x01})
	switch c.DType {
	case table.Int64:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], uint64(c.I))
		h.Write(buf[:])
	case table.Float64:
		var buf [8]byte
		binary.BigEndian.PutUint64(buf[:], float64bits(c.F))
		h.Write(buf[:])
	case table.Bool:
		if c.B {
			h.Write([]byte{1})
		} else {
			h.Write([]byte{0})
		}
	default: // table.String and anything else hashed as its string form
		writeLP(h, []byte(c.S))
	}
}

func float64bits(f float64) uint64 {
	return math.Float64bits(f)
}
