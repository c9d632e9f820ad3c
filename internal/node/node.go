// Package node implements the node header shapes and id computation of
// spec.md §4.6: an origin node is `{type, origin}`, a delta node is
// `{type, origin, lineage}` with lineage ordered newest-first, oldest
// (the origin id) last. A node's id is never stored in its own header —
// it is always the hash_pair of the header's hash and the materialized
// table's hash, recomputed by every reader.
package node

import (
	"encoding/json"

	"deltaflow/internal/hash"
)

const (
	TypeOrigin = "origin"
	TypeDelta  = "delta"
)

// OriginHeader describes an immutable baseline table. Origin is the hex
// hash_table digest of the origin's data, not the node id.
type OriginHeader struct {
	Type   string `json:"type"`
	Origin string `json:"origin"`
}

// DeltaHeader describes a committed delta. Lineage is newest-first: the
// first entry is this node's immediate parent, the last is always the
// origin id.
type DeltaHeader struct {
	Type    string   `json:"type"`
	Origin  string   `json:"origin"`
	Lineage []string `json:"lineage"`
}

// NewOriginHeader builds the header for a freshly registered origin.
func NewOriginHeader(originDataHash string) OriginHeader {
	return OriginHeader{Type: TypeOrigin, Origin: originDataHash}
}

// NewDeltaHeader builds the header for a new commit on top of parentID,
// given the parent's own lineage (empty if the parent is an origin).
// Per spec.md §4.6 step 1: the new lineage is [parentID] followed by the
// parent's lineage (an origin parent contributes [parentID] — it is its
// own origin, so there is nothing further to prepend). originDataHash is
// the hash_table digest of the origin's data (spec.md line 40), not any
// node id — callers must not pass a node id here.
func NewDeltaHeader(originDataHash, parentID string, parentLineage []string) DeltaHeader {
	lineage := make([]string, 0, 1+len(parentLineage))
	lineage = append(lineage, parentID)
	lineage = append(lineage, parentLineage...)
	return DeltaHeader{Type: TypeDelta, Origin: originDataHash, Lineage: lineage}
}

// CanonicalJSON encodes a header the way hash_header expects: Go's
// encoding/json marshals struct fields in declaration order, which is
// deterministic and is this module's one on-disk canonical ordering (the
// struct field order here IS the canonical order — there is no separate
// sorting step).
func CanonicalJSON(header any) ([]byte, error) {
	return json.Marshal(header)
}

// HeaderHash computes hash_header over a header's canonical encoding.
func HeaderHash(header any) (string, error) {
	raw, err := CanonicalJSON(header)
	if err != nil {
		return "", err
	}
	return hash.HashHeader(raw), nil
}

// ParseOriginHeader and ParseDeltaHeader decode a stored header file,
// used by the tree when walking a node's type-tagged header.
func ParseOriginHeader(data []byte) (OriginHeader, error) {
	var h OriginHeader
	err := json.Unmarshal(data, &h)
	return h, err
}

func ParseDeltaHeader(data []byte) (DeltaHeader, error) {
	var h DeltaHeader
	err := json.Unmarshal(data, &h)
	return h, err
}

// PeekType reads only the "type" discriminator from a stored header, so
// callers can dispatch to ParseOriginHeader/ParseDeltaHeader.
func PeekType(data []byte) (string, error) {
	var tagged struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &tagged); err != nil {
		return "", err
	}
	return tagged.Type, nil
}
