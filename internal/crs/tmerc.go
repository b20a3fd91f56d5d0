package crs

import (
	"math"
	"math/cmplx"
)

// transverseMercator implements the ellipsoidal Transverse Mercator
// projection with Krüger's series to fourth order in the third
// flattening n. The inverse solves the forward series by Newton iteration
// so that a round trip is exact to well under a micrometre.
type transverseMercator struct {
	id     string
	lon0   float64 // radians
	k0     float64
	fe, fn float64

	e, e2 float64
	a     float64 // rectifying radius
	alpha [4]float64
	beta  [4]float64
	y0    float64 // northing of the latitude of origin before k0
}

func newTransverseMercator(id string, el ellipsoid, lat0, lon0, k0, fe, fn float64) *transverseMercator {
	f := el.f
	n := f / (2 - f)
	n2, n3, n4 := n*n, n*n*n, n*n*n*n
	e2 := f * (2 - f)

	t := &transverseMercator{
		id:   id,
		lon0: lon0 * deg2rad,
		k0:   k0,
		fe:   fe,
		fn:   fn,
		e2:   e2,
		e:    math.Sqrt(e2),
		a:    el.a / (1 + n) * (1 + n2/4 + n4/64),
		alpha: [4]float64{
			n/2 - 2*n2/3 + 5*n3/16 + 41*n4/180,
			13*n2/48 - 3*n3/5 + 557*n4/1440,
			61*n3/240 - 103*n4/140,
			49561 * n4 / 161280,
		},
		beta: [4]float64{
			n/2 - 2*n2/3 + 37*n3/96 - n4/360,
			n2/48 + n3/15 - 437*n4/1440,
			17*n3/480 - 37*n4/840,
			4397 * n4 / 161280,
		},
	}
	xi0, _ := t.conformalXi(lat0*deg2rad, 0)
	t.y0 = t.a * real(t.forwardSeries(complex(xi0, 0)))
	return t
}

func (t *transverseMercator) ID() string { return t.id }

// tauPrime maps tan φ to tan χ (χ = conformal latitude).
func (t *transverseMercator) tauPrime(tau float64) float64 {
	sigma := math.Sinh(t.e * math.Atanh(t.e*tau/math.Hypot(1, tau)))
	return tau*math.Hypot(1, sigma) - sigma*math.Hypot(1, tau)
}

// tau inverts tauPrime by Newton's method.
func (t *transverseMercator) tau(taup float64) float64 {
	tau := taup / (1 - t.e2)
	for i := 0; i < 8; i++ {
		tp := t.tauPrime(tau)
		d := (taup - tp) * (1 + (1-t.e2)*tau*tau) /
			((1 - t.e2) * math.Hypot(1, tp) * math.Hypot(1, tau))
		tau += d
		if math.Abs(d) <= 1e-15*math.Max(1, math.Abs(tau)) {
			break
		}
	}
	return tau
}

// conformalXi returns the spherical transverse Mercator coordinates of a
// point on the conformal sphere.
func (t *transverseMercator) conformalXi(phi, lam float64) (xi, eta float64) {
	taup := t.tauPrime(math.Tan(phi))
	xi = math.Atan2(taup, math.Cos(lam))
	eta = math.Asinh(math.Sin(lam) / math.Hypot(taup, math.Cos(lam)))
	return xi, eta
}

func (t *transverseMercator) forwardSeries(z complex128) complex128 {
	out := z
	for j, a := range t.alpha {
		out += complex(a, 0) * cmplx.Sin(complex(float64(2*(j+1)), 0)*z)
	}
	return out
}

// inverseSeries solves forwardSeries(z') = z for z'.
func (t *transverseMercator) inverseSeries(z complex128) complex128 {
	zp := z
	for j, b := range t.beta {
		zp -= complex(b, 0) * cmplx.Sin(complex(float64(2*(j+1)), 0)*z)
	}
	for i := 0; i < 6; i++ {
		f := t.forwardSeries(zp) - z
		if cmplx.Abs(f) < 1e-15 {
			break
		}
		df := complex(1, 0)
		for j, a := range t.alpha {
			k := float64(2 * (j + 1))
			df += complex(k*a, 0) * cmplx.Cos(complex(k, 0)*zp)
		}
		zp -= f / df
	}
	return zp
}

func (t *transverseMercator) FromLonLat(lon, lat float64) (float64, float64, error) {
	if !validLonLat(lon, lat) || math.Abs(lat) == 90 {
		return 0, 0, &ErrOutOfRange{CRS: t.id, X: lon, Y: lat}
	}
	lam := normalizeLon(lon-t.lon0*rad2deg) * deg2rad
	if math.Abs(lam) >= math.Pi/2 {
		return 0, 0, &ErrOutOfRange{CRS: t.id, X: lon, Y: lat}
	}
	xi, eta := t.conformalXi(lat*deg2rad, lam)
	z := t.forwardSeries(complex(xi, eta))

	x := t.fe + t.k0*t.a*imag(z)
	y := t.fn + t.k0*(t.a*real(z)-t.y0)
	return x, y, nil
}

func (t *transverseMercator) ToLonLat(x, y float64) (float64, float64, error) {
	if !finite(x) || !finite(y) {
		return 0, 0, &ErrOutOfRange{CRS: t.id, X: x, Y: y}
	}
	xi := ((y-t.fn)/t.k0 + t.y0) / t.a
	eta := (x - t.fe) / t.k0 / t.a
	if math.Abs(eta) > 2 || math.Abs(xi) > math.Pi {
		return 0, 0, &ErrOutOfRange{CRS: t.id, X: x, Y: y}
	}

	zp := t.inverseSeries(complex(xi, eta))
	xip, etap := real(zp), imag(zp)

	taup := math.Sin(xip) / math.Hypot(math.Sinh(etap), math.Cos(xip))
	lam := math.Atan2(math.Sinh(etap), math.Cos(xip))
	phi := math.Atan(t.tau(taup))

	lon := normalizeLon((t.lon0 + lam) * rad2deg)
	lat := phi * rad2deg
	if !validLonLat(lon, lat) {
		return 0, 0, &ErrOutOfRange{CRS: t.id, X: x, Y: y}
	}
	return lon, lat, nil
}
