package cadgeo

import (
	"math"

	"github.com/beetlebugorg/cadgeo/pkg/drawing"
	"seehuhn.de/go/geom/matrix"
)

// transform maps block-local coordinates to drawing coordinates.
type transform matrix.Matrix

var identity = transform(matrix.Identity)

// insertTransform returns the transform placing the block of ins: move the
// block base to the origin, scale, rotate counter-clockwise, then move to
// the insertion point.
func insertTransform(ins *drawing.Insert, base drawing.Vec) transform {
	sx, sy := ins.Scale()
	rot := 0.0
	if ins.Rotation != nil {
		rot = *ins.Rotation
	}

	m := matrix.Translate(-base.X, -base.Y).
		Mul(matrix.Scale(sx, sy)).
		Mul(matrix.RotateDeg(rot)).
		Mul(matrix.Translate(ins.Point.X, ins.Point.Y))
	return transform(m)
}

// then returns the transform applying t first and parent second.
func (t transform) then(parent transform) transform {
	return transform(matrix.Matrix(t).Mul(matrix.Matrix(parent)))
}

func (t transform) apply(v drawing.Vec) drawing.Vec {
	x, y := matrix.Matrix(t).Apply(v.X, v.Y)
	return drawing.Vec{X: x, Y: y}
}

func (t transform) isIdentity() bool {
	return t == identity
}

// direction returns the angle in degrees of a direction given in
// block-local degrees, after placement by t.
func (t transform) direction(deg float64) float64 {
	if t.isIdentity() {
		return deg
	}
	rad := deg * math.Pi / 180
	c, s := math.Cos(rad), math.Sin(rad)
	return math.Atan2(c*t[1]+s*t[3], c*t[0]+s*t[2]) * 180 / math.Pi
}

// scale returns the linear scale factor, sqrt(|det|).
func (t transform) scale() float64 {
	return math.Sqrt(math.Abs(t[0]*t[3] - t[1]*t[2]))
}
