package cadgeo

import (
	"sort"

	"github.com/google/uuid"
	geojson "github.com/paulmach/go.geojson"
)

// Summary reports what a conversion produced. It is available after every
// non-fatal run.
type Summary struct {
	// RunID identifies the conversion in logs.
	RunID uuid.UUID `json:"run_id"`

	// Visited counts admitted entities, including skipped ones.
	Visited int `json:"visited"`

	Points      int `json:"points"`
	LineStrings int `json:"linestrings"`
	Records     int `json:"records"`

	// Skipped counts admitted entities that produced no feature.
	Skipped     int                `json:"skipped"`
	SkipReasons map[SkipReason]int `json:"skip_reasons,omitempty"`

	// Centerline is true when chainage was computed.
	Centerline       bool    `json:"centerline"`
	CenterlineLength float64 `json:"centerline_length,omitempty"`
	// CenterlineError explains why no centerline was built, when one was
	// configured.
	CenterlineError string `json:"centerline_error,omitempty"`
}

// Reasons returns the skip reasons in a stable order.
func (s Summary) Reasons() []SkipReason {
	reasons := make([]SkipReason, 0, len(s.SkipReasons))
	for r := range s.SkipReasons {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}

// Result holds the output of one conversion. Feature slices are in
// drawing order.
type Result struct {
	features    []*Feature
	points      []*Feature
	lineStrings []*Feature
	records     []Record
	summary     Summary
	columns     []string

	bounds       Bounds
	spatialIndex *spatialIndex
}

// Points returns the Point features.
func (r *Result) Points() []*Feature { return r.points }

// LineStrings returns the LineString features.
func (r *Result) LineStrings() []*Feature { return r.lineStrings }

// Features returns all features in drawing order.
func (r *Result) Features() []*Feature { return r.features }

// Records returns the schema records, one per converted entity. Nil when
// the configuration has no schema.
func (r *Result) Records() []Record { return r.records }

// Columns returns the record column names in schema order.
func (r *Result) Columns() []string { return r.columns }

// Summary returns the conversion statistics.
func (r *Result) Summary() Summary { return r.summary }

// Bounds returns the bounding box of all features.
func (r *Result) Bounds() Bounds { return r.bounds }

// FeaturesInBounds returns all features that intersect the given bounding
// box, in drawing order.
//
// Example:
//
//	site := cadgeo.NewBounds(126.97, 37.56, 126.99, 37.57)
//	for _, f := range result.FeaturesInBounds(site) {
//	    fmt.Println(f.Handle(), f.Geometry().Type)
//	}
func (r *Result) FeaturesInBounds(bounds Bounds) []*Feature {
	if r.spatialIndex == nil || r.spatialIndex.rtree == nil {
		return r.featuresInBoundsLinear(bounds)
	}
	return r.spatialIndex.search(bounds)
}

// featuresInBoundsLinear performs linear search when no spatial index exists.
func (r *Result) featuresInBoundsLinear(bounds Bounds) []*Feature {
	var result []*Feature
	for _, f := range r.features {
		if bounds.Intersects(featureBounds(*f)) {
			result = append(result, f)
		}
	}
	return result
}

// PointCollection returns the Point features as a GeoJSON feature
// collection.
func (r *Result) PointCollection() *geojson.FeatureCollection {
	return collection(r.points)
}

// LineStringCollection returns the LineString features as a GeoJSON
// feature collection.
func (r *Result) LineStringCollection() *geojson.FeatureCollection {
	return collection(r.lineStrings)
}

func collection(features []*Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		fc.AddFeature(f.GeoJSON())
	}
	return fc
}

// GeoJSON returns the feature as a GeoJSON feature.
func (f *Feature) GeoJSON() *geojson.Feature {
	var gf *geojson.Feature
	switch f.geometry.Type {
	case GeometryTypePoint:
		gf = geojson.NewPointFeature(f.geometry.Coordinates[0])
	default:
		gf = geojson.NewLineStringFeature(f.geometry.Coordinates)
	}
	for k, v := range f.properties {
		gf.SetProperty(k, v)
	}
	return gf
}
