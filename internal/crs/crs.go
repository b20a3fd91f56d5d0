// Package crs converts planar drawing coordinates to WGS84 longitude and
// latitude.
//
// A Reprojector is built once per run from an identifier such as
// "EPSG:5186" and is safe for concurrent use. Axis order is always
// (x, y) in and (lon, lat) out, whatever the authority's native order.
package crs

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Reprojector maps between a source reference system and WGS84.
type Reprojector interface {
	// ToLonLat converts a source coordinate to longitude/latitude degrees.
	ToLonLat(x, y float64) (lon, lat float64, err error)

	// FromLonLat is the inverse of ToLonLat.
	FromLonLat(lon, lat float64) (x, y float64, err error)

	// ID returns the canonical identifier the reprojector was built for.
	ID() string
}

// New returns the reprojector for a source CRS identifier.
//
// Accepted forms (case-insensitive):
//
//	EPSG:5186, 5186          registered EPSG codes (see Supported)
//	local-planar             local tangent plane anchored at lon 0, lat 0
//	local-planar:127.0,37.5  local tangent plane anchored at lon 127, lat 37.5
//
// Unrecognized identifiers return *ErrUnknownCRS.
func New(id string) (Reprojector, error) {
	norm := strings.ToUpper(strings.TrimSpace(id))
	if norm == "" {
		return nil, &ErrUnknownCRS{ID: id}
	}

	if strings.HasPrefix(norm, localPlanarID) {
		return parseLocalPlanar(id, norm)
	}

	code := strings.TrimPrefix(norm, "EPSG:")
	n, err := strconv.Atoi(code)
	if err != nil {
		return nil, &ErrUnknownCRS{ID: id}
	}
	def, ok := lookupEPSG(n)
	if !ok {
		return nil, &ErrUnknownCRS{ID: id}
	}
	return def, nil
}

// Supported lists the EPSG codes New accepts, in ascending order.
func Supported() []int {
	codes := make([]int, 0, len(registry)+120)
	for code := range registry {
		codes = append(codes, code)
	}
	for z := 1; z <= 60; z++ {
		codes = append(codes, 32600+z, 32700+z)
	}
	sort.Ints(codes)
	return codes
}

// ErrUnknownCRS indicates an identifier no reprojector exists for.
type ErrUnknownCRS struct {
	ID string
}

func (e *ErrUnknownCRS) Error() string {
	return fmt.Sprintf("unknown coordinate reference system: %q", e.ID)
}

// ErrOutOfRange indicates a coordinate that cannot be converted or that
// converts to an invalid longitude/latitude.
type ErrOutOfRange struct {
	CRS  string
	X, Y float64
}

func (e *ErrOutOfRange) Error() string {
	return fmt.Sprintf("%s: coordinate (%g, %g) out of range", e.CRS, e.X, e.Y)
}

// validLonLat reports whether lon/lat are finite and within WGS84 bounds.
func validLonLat(lon, lat float64) bool {
	return finite(lon) && finite(lat) &&
		lon >= -180 && lon <= 180 &&
		lat >= -90 && lat <= 90
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// normalizeLon wraps a longitude into [-180, 180].
func normalizeLon(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

const (
	deg2rad = math.Pi / 180
	rad2deg = 180 / math.Pi
)
