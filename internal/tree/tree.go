// Package tree implements spec.md §4.6's Tree: the collection of origins,
// nodes, and arrow pointers rooted at one field directory, answering
// lineage queries and performing hash-verified reconstruction. No
// module-level cache is kept — every Tree is path-rooted and reads
// through to disk, per spec.md §9 "Global state: None."
package tree

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"deltaflow/internal/dferrors"
	"deltaflow/internal/deltafile"
	"deltaflow/internal/fs"
	"deltaflow/internal/hash"
	"deltaflow/internal/logging"
	"deltaflow/internal/node"
	"deltaflow/internal/table"
	blockpkg "deltaflow/internal/block"
)

const (
	dirName     = ".deltaflow"
	originsFile = "origins"
	arrowsDir   = "arrows"
	nodesDir    = "nodes"
	deltasDir   = "deltas"
)

// Tree is a handle over one field directory. It holds no cached state.
type Tree struct {
	root   string
	logger *logging.Logger
}

// New opens a Tree over an already-initialized field directory.
func New(root string, logger *logging.Logger) *Tree {
	return &Tree{root: root, logger: logger}
}

func (t *Tree) metaDir() string     { return filepath.Join(t.root, dirName) }
func (t *Tree) originsPath() string { return filepath.Join(t.metaDir(), originsFile) }
func (t *Tree) arrowsDir() string   { return filepath.Join(t.metaDir(), arrowsDir) }
func (t *Tree) nodesDir() string    { return filepath.Join(t.metaDir(), nodesDir) }
func (t *Tree) deltasDir() string   { return filepath.Join(t.metaDir(), deltasDir) }
func (t *Tree) arrowPath(name string) string {
	return filepath.Join(t.arrowsDir(), name)
}
func (t *Tree) nodePath(id string) string  { return filepath.Join(t.nodesDir(), id) }
func (t *Tree) deltaPath(id string) string { return filepath.Join(t.deltasDir(), id+".delta") }
func (t *Tree) originDataPath(name string) string {
	return filepath.Join(t.root, name+".origin")
}

// Touch initializes an empty field directory at root.
func Touch(root string) error {
	for _, dir := range []string{
		filepath.Join(root, dirName),
		filepath.Join(root, dirName, arrowsDir),
		filepath.Join(root, dirName, nodesDir),
		filepath.Join(root, dirName, deltasDir),
	} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("touch: %w", err)
		}
	}
	originsPath := filepath.Join(root, dirName, originsFile)
	if _, err := os.Stat(originsPath); os.IsNotExist(err) {
		if err := fs.WriteFileAtomic(originsPath, []byte("{}"), 0o644); err != nil {
			return fmt.Errorf("touch: write origins: %w", err)
		}
	}
	return nil
}

// Origins returns the name -> node id mapping.
func (t *Tree) Origins() (map[string]string, error) {
	data, err := os.ReadFile(t.originsPath())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	var origins map[string]string
	if err := json.Unmarshal(data, &origins); err != nil {
		return nil, err
	}
	return origins, nil
}

func (t *Tree) writeOrigins(origins map[string]string) error {
	data, err := json.Marshal(origins)
	if err != nil {
		return err
	}
	return fs.WriteFileAtomic(t.originsPath(), data, 0o644)
}

// Arrows returns the name -> head node id mapping.
func (t *Tree) Arrows() (map[string]string, error) {
	entries, err := os.ReadDir(t.arrowsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, err
	}
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		id, err := t.ArrowHead(e.Name())
		if err != nil {
			return nil, err
		}
		out[e.Name()] = id
	}
	return out, nil
}

// ArrowHead reads the node id an arrow currently points at.
func (t *Tree) ArrowHead(name string) (string, error) {
	data, err := os.ReadFile(t.arrowPath(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", dferrors.NewNameLookupError("arrow", name)
		}
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// SetArrowHead overwrites an arrow file in place with a new head.
func (t *Tree) SetArrowHead(name, nodeID string) error {
	return fs.WriteFileAtomic(t.arrowPath(name), []byte(nodeID+"\n"), 0o644)
}

// CreateArrow writes a new arrow file, failing with NameExistsError if
// one already exists with this name. A name starting with "." is also
// rejected with NameExistsError: such names are reserved for the
// per-origin "."+name arrow that AddOrigin creates through the unexported
// createArrow with isInternal set (spec.md §4.1/§6).
func (t *Tree) CreateArrow(name, nodeID string) error {
	return t.createArrow(name, nodeID, false)
}

func (t *Tree) createArrow(name, nodeID string, isInternal bool) error {
	if !isInternal && strings.HasPrefix(name, ".") {
		return dferrors.NewNameExistsError("arrow", name)
	}
	if _, err := os.Stat(t.arrowPath(name)); err == nil {
		return dferrors.NewNameExistsError("arrow", name)
	}
	if !t.NodeExists(nodeID) {
		return dferrors.NewIDLookupError(nodeID)
	}
	return t.SetArrowHead(name, nodeID)
}

// Nodes lists every node id on disk.
func (t *Tree) Nodes() ([]string, error) {
	entries, err := os.ReadDir(t.nodesDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, e.Name())
		}
	}
	sort.Strings(out)
	return out, nil
}

// NodeExists reports whether a node header file exists for id.
func (t *Tree) NodeExists(id string) bool {
	_, err := os.Stat(t.nodePath(id))
	return err == nil
}

// readHeaderBytes reads a node's raw header bytes, or returns
// IDLookupError if the node does not exist.
func (t *Tree) readHeaderBytes(id string) ([]byte, error) {
	data, err := os.ReadFile(t.nodePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, dferrors.NewIDLookupError(id)
		}
		return nil, err
	}
	return data, nil
}

// Node reads and parses a node header, returning either an
// *node.OriginHeader or a *node.DeltaHeader.
func (t *Tree) Node(id string) (any, error) {
	data, err := t.readHeaderBytes(id)
	if err != nil {
		return nil, err
	}
	typ, err := node.PeekType(data)
	if err != nil {
		return nil, dferrors.NewIntegrityError(id, "header")
	}
	switch typ {
	case node.TypeOrigin:
		h, err := node.ParseOriginHeader(data)
		if err != nil {
			return nil, dferrors.NewIntegrityError(id, "header")
		}
		return &h, nil
	case node.TypeDelta:
		h, err := node.ParseDeltaHeader(data)
		if err != nil {
			return nil, dferrors.NewIntegrityError(id, "header")
		}
		return &h, nil
	default:
		return nil, dferrors.NewIntegrityError(id, "header")
	}
}

// NameOrigin returns the origin name registered for node id, if any.
func (t *Tree) NameOrigin(id string) (string, bool, error) {
	origins, err := t.Origins()
	if err != nil {
		return "", false, err
	}
	for name, nodeID := range origins {
		if nodeID == id {
			return name, true, nil
		}
	}
	return "", false, nil
}

// OutlineEntry is one step of a lineage walk: a node id and the
// recomputed hash of its header, read fresh from disk.
type OutlineEntry struct {
	NodeID     string
	HeaderHash string
}

// Outline produces the ordered origin-to-head mapping for a node id,
// recomputing every header hash from disk rather than trusting any
// cached lineage field (spec.md §4.6).
func (t *Tree) Outline(headID string) ([]OutlineEntry, error) {
	h, err := t.Node(headID)
	if err != nil {
		return nil, err
	}

	var sequence []string
	switch v := h.(type) {
	case *node.OriginHeader:
		sequence = []string{headID}
	case *node.DeltaHeader:
		sequence = make([]string, 0, len(v.Lineage)+1)
		for i := len(v.Lineage) - 1; i >= 0; i-- {
			sequence = append(sequence, v.Lineage[i])
		}
		sequence = append(sequence, headID)
	default:
		return nil, dferrors.NewIntegrityError(headID, "header")
	}

	out := make([]OutlineEntry, 0, len(sequence))
	for _, id := range sequence {
		data, err := t.readHeaderBytes(id)
		if err != nil {
			return nil, err
		}
		hh := hash.HashHeader(data)
		out = append(out, OutlineEntry{NodeID: id, HeaderHash: hh})
	}
	return out, nil
}

// Resolve materializes the table at node id, verifying every hash along
// the way. Any mismatch raises IntegrityError naming the offending node.
func (t *Tree) Resolve(id string) (*table.Table, error) {
	outline, err := t.Outline(id)
	if err != nil {
		return nil, err
	}
	if len(outline) == 0 {
		return nil, dferrors.NewIDLookupError(id)
	}

	originEntry := outline[0]
	originName, ok, err := t.NameOrigin(originEntry.NodeID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, dferrors.NewIntegrityError(originEntry.NodeID, "origin")
	}

	h, err := t.Node(originEntry.NodeID)
	if err != nil {
		return nil, err
	}
	originHeader, ok := h.(*node.OriginHeader)
	if !ok {
		return nil, dferrors.NewIntegrityError(originEntry.NodeID, "origin")
	}

	raw, err := os.ReadFile(t.originDataPath(originName))
	if err != nil {
		return nil, dferrors.NewIntegrityError(originEntry.NodeID, "origin")
	}
	data, err := table.Unmarshal(raw)
	if err != nil {
		return nil, dferrors.NewIntegrityError(originEntry.NodeID, "origin")
	}
	if hash.HashTable(data) != originHeader.Origin {
		return nil, dferrors.NewIntegrityError(originEntry.NodeID, "origin")
	}
	if t.logger != nil {
		t.logger.Debug("origin verified", map[string]any{"node": originEntry.NodeID})
	}

	for _, entry := range outline[1:] {
		deltaRaw, err := os.ReadFile(t.deltaPath(entry.NodeID))
		if err != nil {
			return nil, dferrors.NewIntegrityError(entry.NodeID, "delta")
		}
		blocks, err := deltafile.Decode(deltaRaw)
		if err != nil {
			return nil, dferrors.NewIntegrityError(entry.NodeID, "delta")
		}
		for _, b := range blocks {
			data, err = blockpkg.Apply(b.Class, b.Meta, b.Partitions, data)
			if err != nil {
				return nil, dferrors.NewIntegrityError(entry.NodeID, "delta")
			}
		}
		if hash.HashPair(entry.HeaderHash, hash.HashTable(data)) != entry.NodeID {
			return nil, dferrors.NewIntegrityError(entry.NodeID, "delta")
		}
		if t.logger != nil {
			t.logger.Debug("delta verified", map[string]any{"node": entry.NodeID})
		}
	}

	return data, nil
}

// AddOrigin registers an immutable baseline table under name, writing the
// origin data file, its node header, and the auto-created "."+name arrow.
// Raises InformationError if the content already exists under a different
// name, NameExistsError if name is already taken.
func (t *Tree) AddOrigin(tbl *table.Table, name string) (string, error) {
	origins, err := t.Origins()
	if err != nil {
		return "", err
	}
	if _, exists := origins[name]; exists {
		return "", dferrors.NewNameExistsError("origin", name)
	}

	dataHash := hash.HashTable(tbl)
	for existingName, existingID := range origins {
		h, err := t.Node(existingID)
		if err != nil {
			continue
		}
		if oh, ok := h.(*node.OriginHeader); ok && oh.Origin == dataHash {
			_ = existingName
			return "", dferrors.NewInformationError("origin", existingID)
		}
	}

	header := node.NewOriginHeader(dataHash)
	headerJSON, err := node.CanonicalJSON(header)
	if err != nil {
		return "", err
	}
	headerHash := hash.HashHeader(headerJSON)
	id := hash.HashPair(headerHash, dataHash)

	payload, err := table.Marshal(tbl)
	if err != nil {
		return "", err
	}
	if err := fs.WriteFileExclusive(t.originDataPath(name), payload, 0o644); err != nil {
		return "", err
	}
	if err := fs.WriteFileExclusive(t.nodePath(id), headerJSON, 0o644); err != nil {
		return "", err
	}

	origins[name] = id
	if err := t.writeOrigins(origins); err != nil {
		return "", err
	}
	if err := t.createArrow("."+name, id, true); err != nil {
		return "", err
	}

	if t.logger != nil {
		t.logger.Info("origin registered", map[string]any{"name": name, "id": id})
	}
	return id, nil
}

// CommitDelta writes a new delta node's three artifacts (delta file, node
// header) and advances arrowName's head, per spec.md §4.6's write order.
// originDataHash is the origin's hash_table digest (spec.md line 40), the
// value every delta in the lineage carries in its own Origin field — not
// the origin node's id.
func (t *Tree) CommitDelta(arrowName, parentID string, parentLineage []string, originDataHash string, blocks []deltafile.Block, live *table.Table) (string, error) {
	deltaBytes, err := deltafile.Encode(blocks)
	if err != nil {
		return "", err
	}

	header := node.NewDeltaHeader(originDataHash, parentID, parentLineage)
	headerJSON, err := node.CanonicalJSON(header)
	if err != nil {
		return "", err
	}
	headerHash := hash.HashHeader(headerJSON)
	dataHash := hash.HashTable(live)
	newID := hash.HashPair(headerHash, dataHash)

	if err := fs.WriteFileExclusive(t.nodePath(newID), headerJSON, 0o644); err != nil {
		return "", err
	}
	if err := fs.WriteFileExclusive(t.deltaPath(newID), deltaBytes, 0o644); err != nil {
		return "", err
	}
	if err := t.SetArrowHead(arrowName, newID); err != nil {
		return "", err
	}

	if t.logger != nil {
		t.logger.Info("commit", map[string]any{"arrow": arrowName, "node": newID, "parent": parentID})
	}
	return newID, nil
}
