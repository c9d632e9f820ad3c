// Package field implements the top-level entry points of spec.md §6's
// public surface: touch(path), Field(path).add_origin/add_arrow/arrow.
package field

import (
	"os"

	"deltaflow/internal/arrow"
	"deltaflow/internal/dferrors"
	"deltaflow/internal/logging"
	"deltaflow/internal/table"
	"deltaflow/internal/tree"
)

// Touch initializes an empty field directory at path, creating it if
// necessary.
func Touch(path string) error {
	return tree.Touch(path)
}

// Field is a handle over an initialized field directory.
type Field struct {
	root             string
	tree             *tree.Tree
	compressionLevel int
}

// Open opens an already-initialized field directory. It fails with
// FieldPathError if path has never been touched.
func Open(path string, logger *logging.Logger, compressionLevel int) (*Field, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, dferrors.NewFieldPathError(path)
	}
	if _, err := os.Stat(path + "/.deltaflow"); err != nil {
		return nil, dferrors.NewFieldPathError(path)
	}
	return &Field{root: path, tree: tree.New(path, logger), compressionLevel: compressionLevel}, nil
}

// Tree exposes the read-only lineage/inspection surface.
func (f *Field) Tree() *tree.Tree { return f.tree }

// AddOrigin registers an immutable baseline table under name, implicitly
// creating the dot-prefixed arrow ".name" at its node.
func (f *Field) AddOrigin(data *table.Table, name string) (string, error) {
	return f.tree.AddOrigin(data, name)
}

// AddArrow creates a new named cursor pointing at an already-existing
// node id.
func (f *Field) AddArrow(nodeID, name string) error {
	return f.tree.CreateArrow(name, nodeID)
}

// Arrow opens the named cursor for editing.
func (f *Field) Arrow(name string) (*arrow.Arrow, error) {
	return arrow.Open(f.tree, name, f.compressionLevel)
}
