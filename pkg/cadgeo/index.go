package cadgeo

import (
	"sort"

	"github.com/dhconnelly/rtreego"
)

// spatialIndex provides O(log n) bounding box queries using an R-tree.
type spatialIndex struct {
	rtree *rtreego.Rtree
}

// indexedFeature wraps a feature for R-tree storage.
type indexedFeature struct {
	order   int
	feature *Feature
	bounds  Bounds
}

// Bounds implements rtreego.Spatial interface.
func (f *indexedFeature) Bounds() rtreego.Rect {
	return boundsRect(f.bounds)
}

// boundsRect converts b to an R-tree rectangle. Zero extents (points,
// axis-parallel lines) are widened by a small epsilon (~11 meters at the
// equator) since the R-tree requires non-zero dimensions.
func boundsRect(b Bounds) rtreego.Rect {
	const epsilon = 0.0001
	point := rtreego.Point{b.MinLon(), b.MinLat()}
	lonLength := b.MaxLon() - b.MinLon()
	latLength := b.MaxLat() - b.MinLat()
	if lonLength < epsilon {
		point[0] -= epsilon / 2
		lonLength = epsilon
	}
	if latLength < epsilon {
		point[1] -= epsilon / 2
		latLength = epsilon
	}
	rect, _ := rtreego.NewRect(point, []float64{lonLength, latLength})
	return rect
}

// buildSpatialIndex indexes features and returns their combined bounds.
func buildSpatialIndex(features []*Feature) (*spatialIndex, Bounds) {
	if len(features) == 0 {
		return nil, Bounds{}
	}

	// 2D, min=25 children, max=50 children
	objs := make([]rtreego.Spatial, len(features))
	var total Bounds
	for i, f := range features {
		fb := featureBounds(*f)
		objs[i] = &indexedFeature{order: i, feature: f, bounds: fb}
		if i == 0 {
			total = fb
		} else {
			total = total.union(fb)
		}
	}
	return &spatialIndex{rtree: rtreego.NewTree(2, 25, 50, objs...)}, total
}

// search returns the features whose bounds intersect b, in conversion
// order.
func (s *spatialIndex) search(b Bounds) []*Feature {
	spatials := s.rtree.SearchIntersect(boundsRect(b))
	found := make([]*indexedFeature, 0, len(spatials))
	for _, spatial := range spatials {
		indexed := spatial.(*indexedFeature)
		// The R-tree works on padded rectangles; confirm on exact bounds.
		if b.Intersects(indexed.bounds) {
			found = append(found, indexed)
		}
	}
	sort.Slice(found, func(i, j int) bool { return found[i].order < found[j].order })

	result := make([]*Feature, len(found))
	for i, f := range found {
		result[i] = f.feature
	}
	return result
}
