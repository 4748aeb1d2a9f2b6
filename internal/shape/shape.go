// Package shape holds PetalFlow's Shape value type: the (rows, cols,
// depth) extent of a layer's input or output tensor, with its derived
// length computed once and never changed.
package shape

import "github.com/fernlane/petalflow-go/internal/petalerr"

// Shape is a value object. Length is derived at construction and is part
// of the value, not recomputed on each access.
type Shape struct {
	Rows, Cols, Depth int
	Length            int
}

// New validates the three extents and derives Length = Rows*Cols*Depth.
func New(rows, cols, depth int) (Shape, error) {
	if rows <= 0 || cols <= 0 || depth <= 0 {
		return Shape{}, petalerr.New("shape.New", petalerr.ShapeZero)
	}
	length := rows * cols * depth
	if length <= 0 || length/rows/cols != depth {
		return Shape{}, petalerr.New("shape.New", petalerr.ShapeTooBig)
	}
	return Shape{Rows: rows, Cols: cols, Depth: depth, Length: length}, nil
}

// Flat is a convenience constructor for a 1-D shape of the given length,
// used throughout the dense-only layer stack.
func Flat(length int) (Shape, error) {
	return New(1, length, 1)
}

// Equal reports whether two shapes describe the same extent.
func (s Shape) Equal(o Shape) bool {
	return s.Rows == o.Rows && s.Cols == o.Cols && s.Depth == o.Depth
}
