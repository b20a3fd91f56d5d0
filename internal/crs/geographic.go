package crs

import "math"

// geographic passes longitude/latitude through unchanged.
type geographic struct {
	id string
}

func (g geographic) ID() string { return g.id }

func (g geographic) ToLonLat(x, y float64) (float64, float64, error) {
	if !validLonLat(x, y) {
		return 0, 0, &ErrOutOfRange{CRS: g.id, X: x, Y: y}
	}
	return x, y, nil
}

func (g geographic) FromLonLat(lon, lat float64) (float64, float64, error) {
	return g.ToLonLat(lon, lat)
}

const earthRadius = 6378137.0

// maxMercatorLat is the latitude at which Web Mercator y reaches π·R.
const maxMercatorLat = 85.05112877980659

// webMercator is the spherical Mercator used by web map tiles.
type webMercator struct {
	id string
}

func (w webMercator) ID() string { return w.id }

func (w webMercator) ToLonLat(x, y float64) (float64, float64, error) {
	if !finite(x) || !finite(y) {
		return 0, 0, &ErrOutOfRange{CRS: w.id, X: x, Y: y}
	}
	lon := x / earthRadius * rad2deg
	lat := math.Atan(math.Sinh(y/earthRadius)) * rad2deg
	if !validLonLat(lon, lat) {
		return 0, 0, &ErrOutOfRange{CRS: w.id, X: x, Y: y}
	}
	return lon, lat, nil
}

func (w webMercator) FromLonLat(lon, lat float64) (float64, float64, error) {
	if !validLonLat(lon, lat) || math.Abs(lat) > maxMercatorLat {
		return 0, 0, &ErrOutOfRange{CRS: w.id, X: lon, Y: lat}
	}
	x := earthRadius * lon * deg2rad
	y := earthRadius * math.Asinh(math.Tan(lat*deg2rad))
	return x, y, nil
}
