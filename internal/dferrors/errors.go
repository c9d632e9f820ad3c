// Package dferrors defines the single error family used across deltaflow:
// one struct, a stable Code, and an optional wrapped cause. No kind is ever
// retried internally; all of them surface to the caller synchronously.
package dferrors

import (
	"errors"
	"fmt"
)

// ErrorCode is a stable, disjoint failure kind.
type ErrorCode string

const (
	// Lookup
	FieldPathError  ErrorCode = "FIELD_PATH_ERROR"
	NameLookupError ErrorCode = "NAME_LOOKUP_ERROR"
	IDLookupError   ErrorCode = "ID_LOOKUP_ERROR"

	// Uniqueness
	NameExistsError  ErrorCode = "NAME_EXISTS_ERROR"
	InformationError ErrorCode = "INFORMATION_ERROR"

	// Typing
	ObjectTypeError ErrorCode = "OBJECT_TYPE_ERROR"
	IndexerError    ErrorCode = "INDEXER_ERROR"
	AxisLabelError  ErrorCode = "AXIS_LABEL_ERROR"
	DataTypeError   ErrorCode = "DATA_TYPE_ERROR"

	// Shape
	SetIndexError  ErrorCode = "SET_INDEX_ERROR"
	InsertionError ErrorCode = "INSERTION_ERROR"
	ExtensionError ErrorCode = "EXTENSION_ERROR"

	// Predicate
	IntersectionError ErrorCode = "INTERSECTION_ERROR"
	DifferenceError   ErrorCode = "DIFFERENCE_ERROR"
	PutError          ErrorCode = "PUT_ERROR"

	// Stage
	UndoError ErrorCode = "UNDO_ERROR"

	// Integrity
	IntegrityError ErrorCode = "INTEGRITY_ERROR"

	// Block
	BlockError ErrorCode = "BLOCK_ERROR"
)

// DeltaflowError is the single error type raised by every package in this
// module. Code is stable across releases; Message is for humans.
type DeltaflowError struct {
	Code    ErrorCode
	Message string
	cause   error
}

func (e *DeltaflowError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error, if any.
func (e *DeltaflowError) Unwrap() error { return e.cause }

func newErr(code ErrorCode, message string) *DeltaflowError {
	return &DeltaflowError{Code: code, Message: message}
}

func wrap(code ErrorCode, message string, cause error) *DeltaflowError {
	return &DeltaflowError{Code: code, Message: message, cause: cause}
}

// Code returns the ErrorCode of err if it is (or wraps) a *DeltaflowError,
// and ok=false otherwise.
func Code(err error) (ErrorCode, bool) {
	var de *DeltaflowError
	if errors.As(err, &de) {
		return de.Code, true
	}
	return "", false
}

func NewFieldPathError(path string) *DeltaflowError {
	return newErr(FieldPathError, fmt.Sprintf("path %q is not a deltaflow field directory", path))
}

func NewNameLookupError(kind, name string) *DeltaflowError {
	return newErr(NameLookupError, fmt.Sprintf("%s %q not found in field", kind, name))
}

func NewIDLookupError(id string) *DeltaflowError {
	return newErr(IDLookupError, fmt.Sprintf("node with id %q not found", id))
}

func NewNameExistsError(kind, name string) *DeltaflowError {
	return newErr(NameExistsError, fmt.Sprintf("%s with name %q already exists", kind, name))
}

func NewInformationError(kind, id string) *DeltaflowError {
	return newErr(InformationError, fmt.Sprintf("%s is identical to existing node %q", kind, id))
}

func NewObjectTypeError(expected, got string) *DeltaflowError {
	return newErr(ObjectTypeError, fmt.Sprintf("expected %s, got %s", expected, got))
}

func NewIndexerError(axis int, got string) *DeltaflowError {
	name := "row"
	if axis == 1 {
		name = "column"
	}
	return newErr(IndexerError, fmt.Sprintf("invalid %s indexer: got %s", name, got))
}

func NewAxisLabelError(kind string) *DeltaflowError {
	return newErr(AxisLabelError, fmt.Sprintf("%s requires axis labels", kind))
}

func NewDataTypeError() *DeltaflowError {
	return newErr(DataTypeError, "data types must match stage at intersections")
}

func NewSetIndexError(expected, got int) *DeltaflowError {
	return newErr(SetIndexError, fmt.Sprintf("expected index of length %d, got %d", expected, got))
}

func NewInsertionError(expected, got int) *DeltaflowError {
	return newErr(InsertionError, fmt.Sprintf("expected data of length %d, got %d", expected, got))
}

func NewExtensionError(axis int) *DeltaflowError {
	if axis == 0 {
		return newErr(ExtensionError, "columns of row extension must match stage")
	}
	return newErr(ExtensionError, "rows of column extension must match stage")
}

func NewIntersectionError() *DeltaflowError {
	return newErr(IntersectionError, "index does not intersect with live data")
}

func NewDifferenceError() *DeltaflowError {
	return newErr(DifferenceError, "index does not differ from live data")
}

func NewPutError() *DeltaflowError {
	return newErr(PutError, "data is identical to live data at intersection")
}

func NewUndoError() *DeltaflowError {
	return newErr(UndoError, "nothing to undo")
}

func NewIntegrityError(key, kind string) *DeltaflowError {
	return newErr(IntegrityError, fmt.Sprintf("%s %q is corrupted or was modified outside of deltaflow", kind, key))
}

func NewBlockError(message string) *DeltaflowError {
	return newErr(BlockError, message)
}

func WrapBlockError(message string, cause error) *DeltaflowError {
	return wrap(BlockError, message, cause)
}
