package crs

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const localPlanarID = "LOCAL-PLANAR"

// localPlanar treats coordinates as meters east/north of an origin on a
// local tangent plane (equirectangular approximation). It is meant for
// drawings in site coordinates that have no registered CRS.
type localPlanar struct {
	id         string
	lon0, lat0 float64
	mPerDegLon float64
	mPerDegLat float64
}

// NewLocalPlanar returns a local tangent plane reprojector anchored at
// lon0, lat0.
func NewLocalPlanar(lon0, lat0 float64) (Reprojector, error) {
	if !validLonLat(lon0, lat0) || math.Abs(lat0) >= 90 {
		return nil, fmt.Errorf("local-planar origin (%g, %g): %w", lon0, lat0,
			&ErrOutOfRange{CRS: "local-planar", X: lon0, Y: lat0})
	}
	id := "local-planar"
	if lon0 != 0 || lat0 != 0 {
		id = fmt.Sprintf("local-planar:%g,%g", lon0, lat0)
	}
	return &localPlanar{
		id:         id,
		lon0:       lon0,
		lat0:       lat0,
		mPerDegLon: earthRadius * deg2rad * math.Cos(lat0*deg2rad),
		mPerDegLat: earthRadius * deg2rad,
	}, nil
}

func parseLocalPlanar(raw, norm string) (Reprojector, error) {
	rest := strings.TrimPrefix(norm, localPlanarID)
	if rest == "" {
		return NewLocalPlanar(0, 0)
	}
	if !strings.HasPrefix(rest, ":") {
		return nil, &ErrUnknownCRS{ID: raw}
	}
	parts := strings.Split(rest[1:], ",")
	if len(parts) != 2 {
		return nil, &ErrUnknownCRS{ID: raw}
	}
	lon0, err1 := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	lat0, err2 := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err1 != nil || err2 != nil {
		return nil, &ErrUnknownCRS{ID: raw}
	}
	return NewLocalPlanar(lon0, lat0)
}

func (p *localPlanar) ID() string { return p.id }

func (p *localPlanar) ToLonLat(x, y float64) (float64, float64, error) {
	if !finite(x) || !finite(y) {
		return 0, 0, &ErrOutOfRange{CRS: p.id, X: x, Y: y}
	}
	lon := p.lon0 + x/p.mPerDegLon
	lat := p.lat0 + y/p.mPerDegLat
	if !validLonLat(lon, lat) {
		return 0, 0, &ErrOutOfRange{CRS: p.id, X: x, Y: y}
	}
	return lon, lat, nil
}

func (p *localPlanar) FromLonLat(lon, lat float64) (float64, float64, error) {
	if !validLonLat(lon, lat) {
		return 0, 0, &ErrOutOfRange{CRS: p.id, X: lon, Y: lat}
	}
	return (lon - p.lon0) * p.mPerDegLon, (lat - p.lat0) * p.mPerDegLat, nil
}
