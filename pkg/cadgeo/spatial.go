package cadgeo

import "github.com/paulmach/orb"

// Bounds is a WGS84 bounding box. X is longitude and Y latitude, both in
// decimal degrees. Points on the edge count as inside.
type Bounds orb.Bound

// NewBounds returns the box spanning the two corners.
func NewBounds(minLon, minLat, maxLon, maxLat float64) Bounds {
	return Bounds{Min: orb.Point{minLon, minLat}, Max: orb.Point{maxLon, maxLat}}
}

// Orb returns b as an orb.Bound.
func (b Bounds) Orb() orb.Bound { return orb.Bound(b) }

func (b Bounds) MinLon() float64 { return b.Min[0] }
func (b Bounds) MinLat() float64 { return b.Min[1] }
func (b Bounds) MaxLon() float64 { return b.Max[0] }
func (b Bounds) MaxLat() float64 { return b.Max[1] }

// Contains reports whether (lon, lat) lies within b.
func (b Bounds) Contains(lon, lat float64) bool {
	return b.Orb().Contains(orb.Point{lon, lat})
}

// Intersects reports whether b and other share at least one point.
func (b Bounds) Intersects(other Bounds) bool {
	return b.Orb().Intersects(other.Orb())
}

// Expand pads b by margin degrees on every side.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds(b.Orb().Pad(margin))
}

func (b Bounds) union(other Bounds) Bounds {
	return Bounds(b.Orb().Union(other.Orb()))
}

// featureBounds is the lon/lat extent of a feature's geometry; zero for a
// feature without coordinates.
func featureBounds(f Feature) Bounds {
	g := f.geometry.Orb()
	if g == nil {
		return Bounds{}
	}
	if ls, ok := g.(orb.LineString); ok && len(ls) == 0 {
		return Bounds{}
	}
	return Bounds(g.Bound())
}
