package crs

import "fmt"

type ellipsoid struct {
	a float64 // semi-major axis, meters
	f float64 // flattening
}

var (
	ellipsoidWGS84 = ellipsoid{a: 6378137, f: 1 / 298.257223563}
	ellipsoidGRS80 = ellipsoid{a: 6378137, f: 1 / 298.257222101}
)

// registry holds the fixed EPSG definitions. UTM zones are generated in
// lookupEPSG.
var registry = map[int]func() Reprojector{
	4326: func() Reprojector { return geographic{id: "EPSG:4326"} },
	4737: func() Reprojector { return geographic{id: "EPSG:4737"} },

	3857:   func() Reprojector { return webMercator{id: "EPSG:3857"} },
	900913: func() Reprojector { return webMercator{id: "EPSG:900913"} },

	// Korea 2000 belts (2002 false northing).
	5180: koreaBelt(5180, 125, 500000),
	5181: koreaBelt(5181, 127, 500000),
	5182: koreaBelt(5182, 127, 550000), // Jeju
	5183: koreaBelt(5183, 129, 500000),
	5184: koreaBelt(5184, 131, 500000),

	// Korea 2000 belts (2010 false northing).
	5185: koreaBelt(5185, 125, 600000),
	5186: koreaBelt(5186, 127, 600000),
	5187: koreaBelt(5187, 129, 600000),
	5188: koreaBelt(5188, 131, 600000),

	// Korea 2000 unified coordinate system (UTM-K).
	5179: func() Reprojector {
		return newTransverseMercator("EPSG:5179", ellipsoidGRS80, 38, 127.5, 0.9996, 1000000, 2000000)
	},
}

func koreaBelt(code int, lon0, fn float64) func() Reprojector {
	return func() Reprojector {
		return newTransverseMercator(fmt.Sprintf("EPSG:%d", code), ellipsoidGRS80, 38, lon0, 1, 200000, fn)
	}
}

func lookupEPSG(code int) (Reprojector, bool) {
	if build, ok := registry[code]; ok {
		return build(), true
	}

	// WGS84 / UTM zones.
	var fn float64
	switch {
	case code >= 32601 && code <= 32660:
		fn = 0
	case code >= 32701 && code <= 32760:
		fn = 10000000
	default:
		return nil, false
	}
	zone := code % 100
	lon0 := float64(6*zone - 183)
	return newTransverseMercator(fmt.Sprintf("EPSG:%d", code), ellipsoidWGS84, 0, lon0, 0.9996, 500000, fn), true
}
