package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/beetlebugorg/cadgeo/pkg/drawing"
)

// DXF polyline flag bits (group code 70)
const (
	polylineClosed       = 1
	polyline3DMesh       = 16
	polylinePolyfaceMesh = 64

	vertexSplineFrame  = 16
	vertexPolyfaceFace = 128

	splineClosed   = 1
	splinePeriodic = 2
)

func (r *record) find(code int) (group, bool) {
	for _, g := range r.groups {
		if g.code == code {
			return g, true
		}
	}
	return group{}, false
}

func (r *record) str(code int, def string) string {
	if g, ok := r.find(code); ok {
		return strings.TrimSpace(g.value)
	}
	return def
}

func parseFloat(g group) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(g.value), 64)
	if err != nil {
		return 0, &ErrSyntax{Line: g.line, Reason: fmt.Sprintf("group %d: invalid number %q", g.code, g.value)}
	}
	return v, nil
}

// float returns the value of code and whether it was present.
func (r *record) float(code int) (float64, bool, error) {
	g, ok := r.find(code)
	if !ok {
		return 0, false, nil
	}
	v, err := parseFloat(g)
	return v, true, err
}

func (r *record) floatOr(code int, def float64) (float64, error) {
	v, ok, err := r.float(code)
	if !ok {
		return def, err
	}
	return v, err
}

func (r *record) intOr(code int, def int) (int, error) {
	g, ok := r.find(code)
	if !ok {
		return def, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(g.value))
	if err != nil {
		return 0, &ErrSyntax{Line: g.line, Reason: fmt.Sprintf("group %d: invalid integer %q", g.code, g.value)}
	}
	return v, nil
}

func (r *record) vec(xc, yc int) (drawing.Vec, error) {
	x, err := r.floatOr(xc, 0)
	if err != nil {
		return drawing.Vec{}, err
	}
	y, err := r.floatOr(yc, 0)
	if err != nil {
		return drawing.Vec{}, err
	}
	return drawing.Vec{X: x, Y: y}, nil
}

// floats returns every value of code in order.
func (r *record) floats(code int) ([]float64, error) {
	var out []float64
	for _, g := range r.groups {
		if g.code != code {
			continue
		}
		v, err := parseFloat(g)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// pairs returns repeated (x, y) coordinates in order. Each xc group starts
// a new pair.
func (r *record) pairs(xc, yc int) ([]drawing.Vec, error) {
	var out []drawing.Vec
	for _, g := range r.groups {
		switch g.code {
		case xc:
			x, err := parseFloat(g)
			if err != nil {
				return nil, err
			}
			out = append(out, drawing.Vec{X: x})
		case yc:
			if len(out) == 0 {
				continue
			}
			y, err := parseFloat(g)
			if err != nil {
				return nil, err
			}
			out[len(out)-1].Y = y
		}
	}
	return out, nil
}

// optionalFloat returns a pointer to the value of code, or nil.
func (r *record) optionalFloat(code int) (*float64, error) {
	v, ok, err := r.float(code)
	if err != nil || !ok {
		return nil, err
	}
	return &v, nil
}

func (r *record) common() (drawing.Common, error) {
	c := drawing.Common{
		Handle: r.str(5, ""),
		Layer:  r.str(8, "0"),
	}
	if g, ok := r.find(62); ok {
		v, err := strconv.Atoi(strings.TrimSpace(g.value))
		if err != nil {
			return c, &ErrSyntax{Line: g.line, Reason: fmt.Sprintf("invalid color %q", g.value)}
		}
		c.Color = &v
	}
	return c, nil
}

// decodeEntity converts a record into a drawing entity. Unknown types
// become drawing.Unsupported.
func decodeEntity(rec *record) (drawing.Entity, error) {
	c, err := rec.common()
	if err != nil {
		return nil, err
	}

	switch rec.typ {
	case "LINE":
		e := &drawing.Line{Common: c}
		if e.Start, err = rec.vec(10, 20); err != nil {
			return nil, err
		}
		if e.End, err = rec.vec(11, 21); err != nil {
			return nil, err
		}
		return e, nil

	case "LWPOLYLINE":
		e := &drawing.LWPolyline{Common: c}
		flags, err := rec.intOr(70, 0)
		if err != nil {
			return nil, err
		}
		e.Closed = flags&polylineClosed != 0
		if e.Vertices, err = lwVertices(rec); err != nil {
			return nil, err
		}
		return e, nil

	case "CIRCLE":
		e := &drawing.Circle{Common: c}
		if e.Center, err = rec.vec(10, 20); err != nil {
			return nil, err
		}
		if e.Radius, err = rec.floatOr(40, 0); err != nil {
			return nil, err
		}
		return e, nil

	case "ARC":
		e := &drawing.Arc{Common: c}
		if e.Center, err = rec.vec(10, 20); err != nil {
			return nil, err
		}
		if e.Radius, err = rec.floatOr(40, 0); err != nil {
			return nil, err
		}
		if e.StartAngle, err = rec.floatOr(50, 0); err != nil {
			return nil, err
		}
		if e.EndAngle, err = rec.floatOr(51, 360); err != nil {
			return nil, err
		}
		return e, nil

	case "TEXT":
		e := &drawing.Text{Common: c, Value: rec.str(1, "")}
		if e.Insert, err = rec.vec(10, 20); err != nil {
			return nil, err
		}
		if e.Height, err = rec.floatOr(40, 0); err != nil {
			return nil, err
		}
		if e.Rotation, err = rec.optionalFloat(50); err != nil {
			return nil, err
		}
		return e, nil

	case "MTEXT":
		e := &drawing.MText{Common: c, Value: mtextValue(rec)}
		if e.Insert, err = rec.vec(10, 20); err != nil {
			return nil, err
		}
		if e.Height, err = rec.floatOr(40, 0); err != nil {
			return nil, err
		}
		if e.Rotation, err = rec.optionalFloat(50); err != nil {
			return nil, err
		}
		if e.Rotation == nil {
			if _, ok := rec.find(11); ok {
				dir, err := rec.vec(11, 21)
				if err != nil {
					return nil, err
				}
				deg := math.Atan2(dir.Y, dir.X) * 180 / math.Pi
				e.Rotation = &deg
			}
		}
		return e, nil

	case "POINT":
		e := &drawing.Point{Common: c}
		if e.Location, err = rec.vec(10, 20); err != nil {
			return nil, err
		}
		if e.Rotation, err = rec.optionalFloat(50); err != nil {
			return nil, err
		}
		return e, nil

	case "SPLINE":
		return decodeSpline(rec, c)

	case "ELLIPSE":
		e := &drawing.Ellipse{Common: c}
		if e.Center, err = rec.vec(10, 20); err != nil {
			return nil, err
		}
		if e.MajorAxis, err = rec.vec(11, 21); err != nil {
			return nil, err
		}
		if e.Ratio, err = rec.floatOr(40, 1); err != nil {
			return nil, err
		}
		if e.StartParam, err = rec.floatOr(41, 0); err != nil {
			return nil, err
		}
		if e.EndParam, err = rec.floatOr(42, 2*math.Pi); err != nil {
			return nil, err
		}
		return e, nil

	case "INSERT":
		e := &drawing.Insert{Common: c, Name: rec.str(2, "")}
		if e.Point, err = rec.vec(10, 20); err != nil {
			return nil, err
		}
		if e.ScaleX, err = rec.floatOr(41, 1); err != nil {
			return nil, err
		}
		if e.ScaleY, err = rec.floatOr(42, 1); err != nil {
			return nil, err
		}
		if e.Rotation, err = rec.optionalFloat(50); err != nil {
			return nil, err
		}
		return e, nil
	}

	return &drawing.Unsupported{Common: c, Type: rec.typ}, nil
}

// lwVertices reads LWPOLYLINE vertices. Codes 10/20 give the position and
// 42 the bulge of the vertex just started.
func lwVertices(rec *record) ([]drawing.Vertex, error) {
	var out []drawing.Vertex
	for _, g := range rec.groups {
		switch g.code {
		case 10, 20, 42:
			v, err := parseFloat(g)
			if err != nil {
				return nil, err
			}
			if g.code == 10 {
				out = append(out, drawing.Vertex{X: v})
				continue
			}
			if len(out) == 0 {
				continue
			}
			if g.code == 20 {
				out[len(out)-1].Y = v
			} else {
				out[len(out)-1].Bulge = v
			}
		}
	}
	return out, nil
}

// mtextValue joins the text chunks (code 3 continuation, code 1 final)
// and converts paragraph breaks.
func mtextValue(rec *record) string {
	var b strings.Builder
	for _, g := range rec.groups {
		if g.code == 3 {
			b.WriteString(g.value)
		}
	}
	b.WriteString(rec.str(1, ""))
	text := strings.ReplaceAll(b.String(), `\P`, "\n")
	return strings.ReplaceAll(text, `\~`, " ")
}

func decodeSpline(rec *record, c drawing.Common) (drawing.Entity, error) {
	e := &drawing.Spline{Common: c}
	flags, err := rec.intOr(70, 0)
	if err != nil {
		return nil, err
	}
	e.Closed = flags&(splineClosed|splinePeriodic) != 0
	if e.Degree, err = rec.intOr(71, 3); err != nil {
		return nil, err
	}
	if e.Knots, err = rec.floats(40); err != nil {
		return nil, err
	}
	if e.Weights, err = rec.floats(41); err != nil {
		return nil, err
	}
	if e.ControlPoints, err = rec.pairs(10, 20); err != nil {
		return nil, err
	}
	if e.FitPoints, err = rec.pairs(11, 21); err != nil {
		return nil, err
	}
	return e, nil
}

// decodePolyline builds a heavyweight polyline from its header record and
// VERTEX records. Mesh polylines are returned as drawing.Unsupported.
func decodePolyline(rec *record, vertices []*record) (drawing.Entity, error) {
	c, err := rec.common()
	if err != nil {
		return nil, err
	}
	flags, err := rec.intOr(70, 0)
	if err != nil {
		return nil, err
	}
	if flags&(polyline3DMesh|polylinePolyfaceMesh) != 0 {
		return &drawing.Unsupported{Common: c, Type: "POLYLINE"}, nil
	}

	e := &drawing.Polyline{Common: c, Closed: flags&polylineClosed != 0}
	for _, v := range vertices {
		vflags, err := v.intOr(70, 0)
		if err != nil {
			return nil, err
		}
		if vflags&(vertexSplineFrame|vertexPolyfaceFace) != 0 {
			continue
		}
		p, err := v.vec(10, 20)
		if err != nil {
			return nil, err
		}
		bulge, err := v.floatOr(42, 0)
		if err != nil {
			return nil, err
		}
		e.Vertices = append(e.Vertices, drawing.Vertex{X: p.X, Y: p.Y, Bulge: bulge})
	}
	return e, nil
}
