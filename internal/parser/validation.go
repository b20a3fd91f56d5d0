package parser

import (
	"math"

	"github.com/beetlebugorg/cadgeo/pkg/drawing"
)

// ValidateCoordinate validates a single coordinate pair
// Drawing coordinates must be finite
func ValidateCoordinate(handle string, v drawing.Vec) error {
	if math.IsNaN(v.X) || math.IsInf(v.X, 0) || math.IsNaN(v.Y) || math.IsInf(v.Y, 0) {
		return &ErrInvalidCoordinate{Handle: handle, X: v.X, Y: v.Y}
	}
	return nil
}

// ValidateEntity checks the parameters of one entity.
// Block references are not resolved here; see ValidateDrawing.
func ValidateEntity(e drawing.Entity) error {
	c := e.Attrs()
	check := func(vs ...drawing.Vec) error {
		for _, v := range vs {
			if err := ValidateCoordinate(c.Handle, v); err != nil {
				return err
			}
		}
		return nil
	}
	invalid := func(reason string) error {
		return &ErrInvalidGeometry{Kind: e.Kind(), Handle: c.Handle, Reason: reason}
	}

	switch e := e.(type) {
	case *drawing.Line:
		return check(e.Start, e.End)
	case *drawing.LWPolyline:
		return checkVertices(c.Handle, e.Vertices)
	case *drawing.Polyline:
		return checkVertices(c.Handle, e.Vertices)
	case *drawing.Circle:
		if !(e.Radius > 0) {
			return invalid("radius must be positive")
		}
		return check(e.Center)
	case *drawing.Arc:
		if !(e.Radius > 0) {
			return invalid("radius must be positive")
		}
		return check(e.Center)
	case *drawing.Text:
		return check(e.Insert)
	case *drawing.MText:
		return check(e.Insert)
	case *drawing.Point:
		return check(e.Location)
	case *drawing.Spline:
		if len(e.ControlPoints) == 0 && len(e.FitPoints) == 0 {
			return invalid("spline has no control or fit points")
		}
		if err := check(e.ControlPoints...); err != nil {
			return err
		}
		return check(e.FitPoints...)
	case *drawing.Ellipse:
		if e.MajorAxis == (drawing.Vec{}) {
			return invalid("major axis is zero")
		}
		if !(e.Ratio > 0 && e.Ratio <= 1) {
			return invalid("axis ratio must be in (0, 1]")
		}
		return check(e.Center, e.MajorAxis)
	case *drawing.Insert:
		if e.Name == "" {
			return invalid("insert without block name")
		}
		return check(e.Point)
	case *drawing.Invalid:
		return e.Err
	}
	return nil
}

func checkVertices(handle string, vertices []drawing.Vertex) error {
	for _, v := range vertices {
		if err := ValidateCoordinate(handle, drawing.Vec{X: v.X, Y: v.Y}); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDrawing validates every entity, including block contents, and
// checks that every INSERT references a defined block.
func ValidateDrawing(d *drawing.Drawing) error {
	validate := func(entities []drawing.Entity) error {
		for _, e := range entities {
			if err := ValidateEntity(e); err != nil {
				return err
			}
			if ins, ok := e.(*drawing.Insert); ok && d.Block(ins.Name) == nil {
				return &ErrMissingBlock{Handle: ins.Handle, Name: ins.Name}
			}
		}
		return nil
	}
	if err := validate(d.Entities); err != nil {
		return err
	}
	for _, b := range d.Blocks {
		if err := validate(b.Entities); err != nil {
			return err
		}
	}
	return nil
}
