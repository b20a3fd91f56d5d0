package linref

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
)

// minExtent keeps axis-aligned segments from producing zero-size
// rectangles, which rtreego rejects.
const minExtent = 1e-9

// indexedSegment wraps one path segment for R-tree storage.
type indexedSegment struct {
	i    int // index of the segment's first vertex
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial.
func (s *indexedSegment) Bounds() rtreego.Rect {
	return s.rect
}

func buildSegmentIndex(path orb.LineString) *rtreego.Rtree {
	segments := make([]rtreego.Spatial, 0, len(path)-1)
	for i := 0; i+1 < len(path); i++ {
		a, b := path[i], path[i+1]
		lo := rtreego.Point{math.Min(a[0], b[0]), math.Min(a[1], b[1])}
		lengths := []float64{
			math.Max(math.Abs(b[0]-a[0]), minExtent),
			math.Max(math.Abs(b[1]-a[1]), minExtent),
		}
		rect, err := rtreego.NewRect(lo, lengths)
		if err != nil {
			continue
		}
		segments = append(segments, &indexedSegment{i: i, rect: rect})
	}
	return rtreego.NewTree(2, 25, 50, segments...)
}

// projection is the closest point on the path to a query point.
type projection struct {
	segment  int
	point    orb.Point
	station  float64
	distance float64
}

// project finds the orthogonal projection of p onto the path. Ties between
// equally distant segments resolve to the smallest station.
func (c *Centerline) project(p orb.Point) projection {
	candidates := c.candidates(p)

	best := projection{distance: math.Inf(1)}
	for _, i := range candidates {
		q, t := projectOnSegment(p, c.path[i], c.path[i+1])
		d := math.Hypot(p[0]-q[0], p[1]-q[1])
		station := c.stations[i] + t*(c.stations[i+1]-c.stations[i])
		if d < best.distance || (d == best.distance && station < best.station) {
			best = projection{segment: i, point: q, station: station, distance: d}
		}
	}
	return best
}

// Project returns the point of the path closest to p, its station and
// its distance from p.
func (c *Centerline) Project(p orb.Point) (closest orb.Point, station, distance float64) {
	proj := c.project(p)
	return proj.point, proj.station, proj.distance
}

// candidates returns the indexes of segments that may contain the
// closest point to p.
func (c *Centerline) candidates(p orb.Point) []int {
	if c.index == nil || c.index.Size() == 0 {
		return c.allSegments()
	}

	query := rtreego.Point{p[0], p[1]}
	nearest, ok := c.index.NearestNeighbor(query).(*indexedSegment)
	if !ok {
		return c.allSegments()
	}
	q, _ := projectOnSegment(p, c.path[nearest.i], c.path[nearest.i+1])
	radius := math.Hypot(p[0]-q[0], p[1]-q[1])

	// Every segment at most radius away has a bounding box overlapping
	// the query square.
	hits := c.index.SearchIntersect(query.ToRect(radius + 2*minExtent))
	out := make([]int, 0, len(hits))
	for _, h := range hits {
		out = append(out, h.(*indexedSegment).i)
	}
	if len(out) == 0 {
		out = append(out, nearest.i)
	}
	return out
}

func (c *Centerline) allSegments() []int {
	out := make([]int, len(c.path)-1)
	for i := range out {
		out[i] = i
	}
	return out
}

// projectOnSegment returns the closest point to p on segment ab and its
// parameter t in [0, 1].
func projectOnSegment(p, a, b orb.Point) (orb.Point, float64) {
	dx, dy := b[0]-a[0], b[1]-a[1]
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return a, 0
	}
	t := ((p[0]-a[0])*dx + (p[1]-a[1])*dy) / l2
	t = math.Max(0, math.Min(1, t))
	return orb.Point{a[0] + t*dx, a[1] + t*dy}, t
}
