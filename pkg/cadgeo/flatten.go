package cadgeo

import (
	"math"
	"sort"

	"github.com/beetlebugorg/cadgeo/pkg/drawing"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// maxCurveSegments caps the vertex count of one flattened curve.
const maxCurveSegments = 4096

// maxSubdivision bounds the recursion depth of adaptive spline sampling.
const maxSubdivision = 12

// segmentsFor returns how many chords keep a curve with the given maximum
// radius of curvature within tol over sweep radians.
func segmentsFor(sweep, radius, tol float64) int {
	sweep = math.Abs(sweep)
	if sweep == 0 || radius <= 0 {
		return 1
	}
	step := math.Pi / 2
	if tol < radius {
		step = math.Min(step, 2*math.Acos(1-tol/radius))
	}
	n := int(math.Ceil(sweep / step))
	if n < 1 {
		n = 1
	}
	if n > maxCurveSegments {
		n = maxCurveSegments
	}
	return n
}

// flattenArc samples a circular arc. Angles are in radians; the arc runs
// counter-clockwise from start by sweep (negative sweeps run clockwise).
func flattenArc(center drawing.Vec, radius, start, sweep, tol float64) []drawing.Vec {
	n := segmentsFor(sweep, radius, tol)
	pts := make([]drawing.Vec, n+1)
	for i := 0; i <= n; i++ {
		a := start + sweep*float64(i)/float64(n)
		pts[i] = drawing.Vec{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)}
	}
	return pts
}

// arcSweep returns the counter-clockwise sweep from start to end degrees.
// Equal angles describe a full circle.
func arcSweep(start, end float64) float64 {
	sweep := math.Mod(end-start, 360)
	if sweep <= 0 {
		sweep += 360
	}
	return sweep * math.Pi / 180
}

func flattenEllipse(e *drawing.Ellipse, tol float64) []drawing.Vec {
	a := math.Hypot(e.MajorAxis.X, e.MajorAxis.Y)
	ratio := math.Min(math.Abs(e.Ratio), 1)
	minor := drawing.Vec{X: -e.MajorAxis.Y * ratio, Y: e.MajorAxis.X * ratio}

	start, end := e.StartParam, e.EndParam
	sweep := math.Mod(end-start, 2*math.Pi)
	if sweep <= 0 {
		sweep += 2 * math.Pi
	}

	// The largest radius of curvature of an ellipse is a²/b, at the ends
	// of the minor axis.
	radius := a
	if b := a * ratio; b > 0 {
		radius = a * a / b
	}
	n := segmentsFor(sweep, radius, tol)
	pts := make([]drawing.Vec, n+1)
	for i := 0; i <= n; i++ {
		t := start + sweep*float64(i)/float64(n)
		c, s := math.Cos(t), math.Sin(t)
		pts[i] = drawing.Vec{
			X: e.Center.X + e.MajorAxis.X*c + minor.X*s,
			Y: e.Center.Y + e.MajorAxis.Y*c + minor.Y*s,
		}
	}
	return pts
}

// flattenVertices expands bulged polyline segments into arcs. A closed
// polyline also flattens the segment from the last vertex back to the
// first.
func flattenVertices(vertices []drawing.Vertex, closed bool, tol float64) []drawing.Vec {
	if len(vertices) == 0 {
		return nil
	}
	pts := []drawing.Vec{{X: vertices[0].X, Y: vertices[0].Y}}
	n := len(vertices)
	last := n - 1
	if closed {
		last = n
	}
	for i := 0; i < last; i++ {
		v0, v1 := vertices[i], vertices[(i+1)%n]
		p0, p1 := drawing.Vec{X: v0.X, Y: v0.Y}, drawing.Vec{X: v1.X, Y: v1.Y}
		if i == n-1 && p0 == p1 {
			continue
		}
		if v0.Bulge == 0 || p0 == p1 {
			pts = append(pts, p1)
			continue
		}
		arc := bulgeArc(p0, p1, v0.Bulge, tol)
		pts = append(pts, arc[1:]...)
	}
	return pts
}

// bulgeArc samples the arc from p0 to p1 whose bulge is tan(θ/4).
func bulgeArc(p0, p1 drawing.Vec, bulge, tol float64) []drawing.Vec {
	theta := 4 * math.Atan(bulge)
	dx, dy := p1.X-p0.X, p1.Y-p0.Y
	chord := math.Hypot(dx, dy)
	radius := math.Abs(chord / (2 * math.Sin(theta/2)))

	// Signed distance from the chord midpoint to the center, along the
	// chord's left normal.
	d := (chord / 2) / math.Tan(theta/2)
	center := drawing.Vec{
		X: (p0.X+p1.X)/2 - dy/chord*d,
		Y: (p0.Y+p1.Y)/2 + dx/chord*d,
	}
	start := math.Atan2(p0.Y-center.Y, p0.X-center.X)
	pts := flattenArc(center, radius, start, theta, tol)
	pts[0], pts[len(pts)-1] = p0, p1
	return pts
}

// flattenSpline samples a NURBS curve. Invalid knot vectors are replaced
// by a clamped uniform one; splines without control points fall back to
// their fit points.
func flattenSpline(s *drawing.Spline, tol float64) []drawing.Vec {
	ctrl := s.ControlPoints
	if len(ctrl) < 2 {
		return append([]drawing.Vec(nil), s.FitPoints...)
	}
	degree := s.Degree
	if degree < 1 {
		degree = 1
	}
	if degree >= len(ctrl) {
		degree = len(ctrl) - 1
	}
	knots := s.Knots
	if !validKnots(knots, len(ctrl), degree) {
		knots = clampedKnots(len(ctrl), degree)
	}
	weights := s.Weights
	if len(weights) != len(ctrl) {
		weights = nil
	}

	c := nurbs{degree: degree, knots: knots, ctrl: ctrl, weights: weights}
	t0, t1 := knots[degree], knots[len(ctrl)]

	// Sample each non-empty knot span a few times before refining, so
	// short wiggles inside one span are not missed.
	var params []float64
	for i := degree; i < len(ctrl); i++ {
		if knots[i+1] > knots[i] {
			for k := 0; k < 4; k++ {
				params = append(params, knots[i]+(knots[i+1]-knots[i])*float64(k)/4)
			}
		}
	}
	params = append(params, t1)
	if len(params) == 1 {
		params = []float64{t0, t1}
	}

	prevT, prev := params[0], c.at(params[0])
	pts := []drawing.Vec{prev}
	for _, t := range params[1:] {
		next := c.at(t)
		pts = c.refine(pts, prevT, prev, t, next, tol, maxSubdivision)
		prevT, prev = t, next
	}
	if s.Closed && pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}
	return pts
}

func validKnots(knots []float64, n, degree int) bool {
	if len(knots) != n+degree+1 {
		return false
	}
	if !sort.Float64sAreSorted(knots) {
		return false
	}
	return knots[n] > knots[degree]
}

func clampedKnots(n, degree int) []float64 {
	knots := make([]float64, n+degree+1)
	inner := n - degree
	for i := range knots {
		switch {
		case i <= degree:
			knots[i] = 0
		case i >= n:
			knots[i] = 1
		default:
			knots[i] = float64(i-degree) / float64(inner)
		}
	}
	return knots
}

type nurbs struct {
	degree  int
	knots   []float64
	ctrl    []drawing.Vec
	weights []float64
}

// at evaluates the curve with de Boor's algorithm in homogeneous
// coordinates.
func (c nurbs) at(t float64) drawing.Vec {
	p, n := c.degree, len(c.ctrl)
	k := sort.Search(n-p, func(i int) bool { return c.knots[p+i+1] > t }) + p
	if k > n-1 {
		k = n - 1
	}

	type hpoint struct{ x, y, w float64 }
	d := make([]hpoint, p+1)
	for j := 0; j <= p; j++ {
		w := 1.0
		if c.weights != nil {
			w = c.weights[j+k-p]
		}
		cp := c.ctrl[j+k-p]
		d[j] = hpoint{cp.X * w, cp.Y * w, w}
	}
	for r := 1; r <= p; r++ {
		for j := p; j >= r; j-- {
			lo, hi := c.knots[j+k-p], c.knots[j+1+k-r]
			alpha := 0.0
			if hi > lo {
				alpha = (t - lo) / (hi - lo)
			}
			d[j] = hpoint{
				x: (1-alpha)*d[j-1].x + alpha*d[j].x,
				y: (1-alpha)*d[j-1].y + alpha*d[j].y,
				w: (1-alpha)*d[j-1].w + alpha*d[j].w,
			}
		}
	}
	if d[p].w == 0 {
		return drawing.Vec{X: d[p].x, Y: d[p].y}
	}
	return drawing.Vec{X: d[p].x / d[p].w, Y: d[p].y / d[p].w}
}

// refine appends the samples between (t0, p0) and (t1, p1), splitting the
// interval while its midpoint strays more than tol from the chord.
func (c nurbs) refine(pts []drawing.Vec, t0 float64, p0 drawing.Vec, t1 float64, p1 drawing.Vec, tol float64, depth int) []drawing.Vec {
	tm := (t0 + t1) / 2
	pm := c.at(tm)
	if depth > 0 && len(pts) < maxCurveSegments &&
		planar.DistanceFromSegment(orb.Point{p0.X, p0.Y}, orb.Point{p1.X, p1.Y}, orb.Point{pm.X, pm.Y}) > tol {
		pts = c.refine(pts, t0, p0, tm, pm, tol, depth-1)
		return c.refine(pts, tm, pm, t1, p1, tol, depth-1)
	}
	return append(pts, p1)
}
