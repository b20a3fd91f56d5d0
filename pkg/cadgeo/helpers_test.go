package cadgeo

import (
	"testing"

	"github.com/beetlebugorg/cadgeo/internal/crs"
	"github.com/beetlebugorg/cadgeo/pkg/drawing"
	"github.com/stretchr/testify/require"
)

func common(handle, layer string) drawing.Common {
	return drawing.Common{Handle: handle, Layer: layer}
}

func line(handle, layer string, x0, y0, x1, y1 float64) *drawing.Line {
	return &drawing.Line{
		Common: common(handle, layer),
		Start:  drawing.Vec{X: x0, Y: y0},
		End:    drawing.Vec{X: x1, Y: y1},
	}
}

func point(handle, layer string, x, y float64) *drawing.Point {
	return &drawing.Point{Common: common(handle, layer), Location: drawing.Vec{X: x, Y: y}}
}

func intp(v int) *int { return &v }

func floatp(v float64) *float64 { return &v }

func newDrawing(entities ...drawing.Entity) *drawing.Drawing {
	d := drawing.New()
	d.Entities = entities
	return d
}

// lonLat reprojects a local-planar coordinate for expectations.
func lonLat(t *testing.T, x, y float64) []float64 {
	t.Helper()
	r, err := crs.New("local-planar")
	require.NoError(t, err)
	lon, lat, err := r.ToLonLat(x, y)
	require.NoError(t, err)
	return []float64{lon, lat}
}

func serialOptions() Options {
	return Options{Parallel: false}
}

func convert(t *testing.T, cfg Config, d *drawing.Drawing) *Result {
	t.Helper()
	conv, err := NewConverter(cfg, serialOptions())
	require.NoError(t, err)
	result, err := conv.Convert(d)
	require.NoError(t, err)
	return result
}

func handles(features []*Feature) []string {
	out := make([]string, len(features))
	for i, f := range features {
		out[i] = f.Handle()
	}
	return out
}
