package parser

import (
	"fmt"

	"github.com/beetlebugorg/cadgeo/pkg/drawing"
)

// ErrSyntax indicates malformed drawing input at a given line.
type ErrSyntax struct {
	Line   int
	Reason string
}

func (e *ErrSyntax) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("syntax error at line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("syntax error: %s", e.Reason)
}

// ErrUnsupportedFormat indicates an input format the parser cannot read
type ErrUnsupportedFormat struct {
	Format string
}

func (e *ErrUnsupportedFormat) Error() string {
	return fmt.Sprintf("unsupported drawing format: %s", e.Format)
}

// ErrInvalidCoordinate indicates a non-finite coordinate
type ErrInvalidCoordinate struct {
	Handle string
	X, Y   float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("entity %s: invalid coordinate (%g, %g)", e.Handle, e.X, e.Y)
}

// ErrInvalidGeometry indicates an entity whose parameters cannot describe
// a shape
type ErrInvalidGeometry struct {
	Kind   drawing.Kind
	Handle string
	Reason string
}

func (e *ErrInvalidGeometry) Error() string {
	if e.Handle != "" {
		return fmt.Sprintf("invalid geometry (%v %s): %s", e.Kind, e.Handle, e.Reason)
	}
	return fmt.Sprintf("invalid geometry (%v): %s", e.Kind, e.Reason)
}

// ErrMissingBlock indicates an INSERT that references an undefined block
type ErrMissingBlock struct {
	Handle string
	Name   string
}

func (e *ErrMissingBlock) Error() string {
	return fmt.Sprintf("insert %s references missing block %q", e.Handle, e.Name)
}
