package cadgeo

import (
	"github.com/beetlebugorg/cadgeo/pkg/drawing"
	"github.com/paulmach/orb"
)

// Property names set on every feature.
const (
	PropHandle   = "handle"
	PropLayer    = "layer"
	PropType     = "type"
	PropColor    = "color"
	PropRotation = "rotation"
	PropText     = "text"
	PropRadius   = "radius"
	PropX        = "x"
	PropY        = "y"
	PropBlock    = "block"
	PropChainage = "chainage"
)

// ColorByLayer is the color property value of entities without an
// explicit color.
const ColorByLayer = "BYLAYER"

// ColorByBlock is the color property value of BYBLOCK entities placed
// outside any colored insert.
const ColorByBlock = "BYBLOCK"

// Feature is one converted entity.
//
// Access feature data via methods:
//   - Handle() returns the source entity handle
//   - Kind() returns the source entity kind ("LINE", "CIRCLE", ...)
//   - Geometry() returns the WGS84 geometry
//   - Properties() returns all properties
//   - Property(name) returns a specific property value
type Feature struct {
	handle     string
	kind       drawing.Kind
	geometry   Geometry
	properties map[string]interface{}
}

// Handle returns the handle of the source entity.
func (f *Feature) Handle() string {
	return f.handle
}

// Kind returns the source entity kind.
func (f *Feature) Kind() drawing.Kind {
	return f.kind
}

// Geometry returns the WGS84 geometry of the feature.
func (f *Feature) Geometry() Geometry {
	return f.geometry
}

// Properties returns all feature properties as a map.
//
// Always present: handle, layer, type, color. Present when applicable:
// rotation (clockwise degrees), text, radius (source units, not
// reprojected), x and y (source coordinates of point features), block
// (insert anchors) and chainage.
func (f *Feature) Properties() map[string]interface{} {
	return f.properties
}

// Property returns a specific property value by name.
//
// Returns the value and true if the property exists, or nil and false if not found.
func (f *Feature) Property(name string) (interface{}, bool) {
	val, ok := f.properties[name]
	return val, ok
}

// Chainage returns the formatted chainage of the feature, if any.
func (f *Feature) Chainage() (string, bool) {
	v, ok := f.properties[PropChainage].(string)
	return v, ok
}

// Geometry represents the spatial representation of a feature.
//
// Coordinates follow GeoJSON convention: [longitude, latitude] pairs.
// All coordinates are in WGS-84 decimal degrees.
type Geometry struct {
	// Type indicates the geometry type (Point or LineString).
	Type GeometryType

	// Coordinates contains [longitude, latitude] pairs.
	//
	// For Point: Single coordinate pair
	// For LineString: Two or more coordinate pairs
	Coordinates [][]float64
}

// Orb returns the geometry as an orb.Geometry.
func (g Geometry) Orb() orb.Geometry {
	switch g.Type {
	case GeometryTypePoint:
		if len(g.Coordinates) == 0 {
			return nil
		}
		return orb.Point{g.Coordinates[0][0], g.Coordinates[0][1]}
	case GeometryTypeLineString:
		ls := make(orb.LineString, len(g.Coordinates))
		for i, c := range g.Coordinates {
			ls[i] = orb.Point{c[0], c[1]}
		}
		return ls
	}
	return nil
}

// GeometryType represents the type of geometry.
type GeometryType int

const (
	// GeometryTypePoint represents a single point location.
	GeometryTypePoint GeometryType = iota

	// GeometryTypeLineString represents a line composed of connected points.
	GeometryTypeLineString
)

// String returns the string representation of the geometry type.
func (g GeometryType) String() string {
	switch g {
	case GeometryTypePoint:
		return "Point"
	case GeometryTypeLineString:
		return "LineString"
	default:
		return "Unknown"
	}
}
