package cadgeo

import (
	"fmt"
	"math"

	"github.com/beetlebugorg/cadgeo/internal/crs"
	"github.com/beetlebugorg/cadgeo/internal/linref"
	"github.com/beetlebugorg/cadgeo/pkg/drawing"
	"github.com/paulmach/orb"
)

// normalizer turns visits into features. It is safe for concurrent use.
type normalizer struct {
	reproj   crs.Reprojector
	tol      float64
	chainage *linref.Calculator // nil when no centerline is available
}

// normalize converts one visit. Any error means the entity is skipped.
func (n *normalizer) normalize(v Visit) (*Feature, error) {
	if v.Err != nil {
		return nil, v.Err
	}
	e := v.Entity
	c := e.Attrs()

	props := map[string]interface{}{
		PropHandle: c.Handle,
		PropLayer:  v.Layer,
		PropType:   string(e.Kind()),
		PropColor:  colorProperty(v.Color),
	}
	if c.Rotation != nil {
		props[PropRotation] = outputRotation(*c.Rotation, v.xf)
	}

	tol := n.tol
	if s := v.xf.scale(); s > 0 {
		tol /= s
	}

	var (
		geom Geometry
		err  error
	)
	switch e := e.(type) {
	case *drawing.Insert:
		if !v.Anchor {
			return nil, &ErrUnsupportedEntity{Type: string(e.Kind())}
		}
		props[PropBlock] = e.Name
		geom, err = n.point(e.Point, v.xf, props)
	case *drawing.Point:
		geom, err = n.point(e.Location, v.xf, props)
	case *drawing.Text:
		props[PropText] = e.Value
		geom, err = n.point(e.Insert, v.xf, props)
	case *drawing.MText:
		props[PropText] = e.Value
		geom, err = n.point(e.Insert, v.xf, props)
	case *drawing.Circle:
		if e.Radius < 0 || math.IsNaN(e.Radius) {
			return nil, &ErrInvalidGeometry{Kind: e.Kind(), Reason: "negative radius"}
		}
		props[PropRadius] = e.Radius * v.xf.scale()
		geom, err = n.point(e.Center, v.xf, props)
	case *drawing.Line:
		geom, err = n.lineString(e.Kind(), []drawing.Vec{e.Start, e.End}, false, v.xf)
	case *drawing.LWPolyline:
		geom, err = n.polyline(e.Kind(), e.Vertices, e.Closed, tol, v.xf)
	case *drawing.Polyline:
		geom, err = n.polyline(e.Kind(), e.Vertices, e.Closed, tol, v.xf)
	case *drawing.Arc:
		if e.Radius <= 0 {
			return nil, &ErrInvalidGeometry{Kind: e.Kind(), Reason: "radius must be positive"}
		}
		props[PropRadius] = e.Radius * v.xf.scale()
		sweep := arcSweep(e.StartAngle, e.EndAngle)
		pts := flattenArc(e.Center, e.Radius, e.StartAngle*math.Pi/180, sweep, tol)
		geom, err = n.lineString(e.Kind(), pts, false, v.xf)
	case *drawing.Ellipse:
		if e.MajorAxis == (drawing.Vec{}) {
			return nil, &ErrInvalidGeometry{Kind: e.Kind(), Reason: "zero major axis"}
		}
		geom, err = n.lineString(e.Kind(), flattenEllipse(e, tol), false, v.xf)
	case *drawing.Spline:
		geom, err = n.lineString(e.Kind(), flattenSpline(e, tol), e.Closed, v.xf)
	case *drawing.Invalid:
		return nil, &ErrInvalidGeometry{Kind: drawing.Kind(e.Type), Reason: "malformed record", Err: e.Err}
	case *drawing.Unsupported:
		return nil, &ErrUnsupportedEntity{Type: e.Type}
	default:
		return nil, &ErrUnsupportedEntity{Type: string(e.Kind())}
	}
	if err != nil {
		return nil, fmt.Errorf("entity %s: %w", c.Handle, err)
	}

	return &Feature{handle: c.Handle, kind: e.Kind(), geometry: geom, properties: props}, nil
}

// point builds a Point geometry and records the drawing coordinates and,
// when a centerline is available, the chainage.
func (n *normalizer) point(p drawing.Vec, xf transform, props map[string]interface{}) (Geometry, error) {
	p = xf.apply(p)
	lon, lat, err := n.reproj.ToLonLat(p.X, p.Y)
	if err != nil {
		return Geometry{}, err
	}
	props[PropX] = p.X
	props[PropY] = p.Y
	if n.chainage != nil {
		if ch, err := n.chainage.Annotate(orb.Point{p.X, p.Y}); err == nil {
			props[PropChainage] = ch
		}
	}
	return Geometry{Type: GeometryTypePoint, Coordinates: [][]float64{{lon, lat}}}, nil
}

func (n *normalizer) polyline(kind drawing.Kind, vertices []drawing.Vertex, closed bool, tol float64, xf transform) (Geometry, error) {
	if len(vertices) < 2 {
		return Geometry{}, &ErrInvalidGeometry{Kind: kind, Err: errTooFewPoints}
	}
	return n.lineString(kind, flattenVertices(vertices, closed, tol), closed, xf)
}

// lineString reprojects pts into a LineString. With closed set, the first
// point is repeated at the end unless it is already there.
func (n *normalizer) lineString(kind drawing.Kind, pts []drawing.Vec, closed bool, xf transform) (Geometry, error) {
	if closed && len(pts) > 0 && pts[0] != pts[len(pts)-1] {
		pts = append(pts, pts[0])
	}
	coords := make([][]float64, 0, len(pts))
	for _, p := range pts {
		p = xf.apply(p)
		lon, lat, err := n.reproj.ToLonLat(p.X, p.Y)
		if err != nil {
			return Geometry{}, err
		}
		coords = append(coords, []float64{lon, lat})
	}
	if !hasTwoDistinct(coords) {
		return Geometry{}, &ErrInvalidGeometry{Kind: kind, Err: errTooFewPoints}
	}
	return Geometry{Type: GeometryTypeLineString, Coordinates: coords}, nil
}

func hasTwoDistinct(coords [][]float64) bool {
	for _, c := range coords[min(1, len(coords)):] {
		if c[0] != coords[0][0] || c[1] != coords[0][1] {
			return true
		}
	}
	return false
}

// colorProperty returns the ACI code, or ColorByLayer when absent.
func colorProperty(color *int) interface{} {
	switch {
	case color == nil || *color == drawing.ColorByLayer:
		return ColorByLayer
	case *color == drawing.ColorByBlock:
		return ColorByBlock
	default:
		return *color
	}
}

// outputRotation converts a counter-clockwise source rotation, placed by
// xf, to clockwise degrees.
func outputRotation(rotation float64, xf transform) float64 {
	r := xf.direction(rotation)
	if r == 0 {
		return 0
	}
	return -r
}
