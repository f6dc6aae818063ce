package svgmesh

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrTessellation is matched by every *TessellationError.
	ErrTessellation = errors.New("svgmesh: tessellation failed")

	// ErrNilDocument is returned when no document is given.
	ErrNilDocument = errors.New("svgmesh: nil document")

	// ErrUnknownAsset is returned by Library for names never updated.
	ErrUnknownAsset = errors.New("svgmesh: unknown asset")
)

var errNonFiniteTransform = errors.New("non-finite transform")

// TessellationError reports a path whose geometry could not be
// tessellated. It is scoped to one node: the path is skipped, the error is
// recorded in mesh.Mesh.Warnings, and the other paths still render.
type TessellationError struct {
	// NodeID is the id attribute of the path, possibly empty.
	NodeID string
	// Index is the paint-order index of the path.
	Index int
	// Stage is "fill" or "stroke".
	Stage string
	Err   error
}

func (e *TessellationError) Error() string {
	id := e.NodeID
	if id == "" {
		id = fmt.Sprintf("#%d", e.Index)
	}
	return fmt.Sprintf("svgmesh: %s of path %s: %v", e.Stage, id, e.Err)
}

// Is reports whether target is ErrTessellation.
func (e *TessellationError) Is(target error) bool {
	return target == ErrTessellation
}

// Unwrap returns the underlying error.
func (e *TessellationError) Unwrap() error {
	return e.Err
}
