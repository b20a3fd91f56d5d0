package linref

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeChain(t *testing.T) {
	tests := []struct {
		name      string
		fragments []orb.LineString
		want      orb.LineString
		length    float64
	}{
		{
			name: "two segments in order",
			fragments: []orb.LineString{
				{{0, 0}, {100, 0}},
				{{100, 0}, {250, 0}},
			},
			want:   orb.LineString{{0, 0}, {100, 0}, {250, 0}},
			length: 250,
		},
		{
			name: "three segments, shuffled and one reversed",
			fragments: []orb.LineString{
				{{100, 0}, {200, 0}},
				{{300, 0}, {200, 0}},
				{{0, 0}, {100, 0}},
			},
			want:   orb.LineString{{0, 0}, {100, 0}, {200, 0}, {300, 0}},
			length: 300,
		},
		{
			name: "polyline fragments",
			fragments: []orb.LineString{
				{{0, 0}, {30, 40}},
				{{30, 40}, {30, 100}, {90, 100}},
			},
			want:   orb.LineString{{0, 0}, {30, 40}, {30, 100}, {90, 100}},
			length: 50 + 60 + 60,
		},
		{
			name: "degenerate fragments are ignored",
			fragments: []orb.LineString{
				{{5, 5}},
				{{0, 0}, {10, 0}},
				{{7, 7}, {7, 7}},
			},
			want:   orb.LineString{{0, 0}, {10, 0}},
			length: 10,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Merge(tt.fragments, 0)
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, c.Path()); diff != "" {
				t.Errorf("path mismatch (-want +got):\n%s", diff)
			}
			assert.InDelta(t, tt.length, c.Length(), 1e-9)
		})
	}
}

func TestMergeKeepsFirstFragmentDirection(t *testing.T) {
	c, err := Merge([]orb.LineString{
		{{100, 0}, {250, 0}},
		{{0, 0}, {100, 0}},
	}, 0)
	require.NoError(t, err)

	path := c.Path()
	assert.Equal(t, orb.Point{0, 0}, path[0])
	assert.Equal(t, orb.Point{250, 0}, path[len(path)-1])
	assert.Equal(t, []float64{0, 100, 250}, c.Stations())
}

func TestMergeSnapsEndpoints(t *testing.T) {
	c, err := Merge([]orb.LineString{
		{{0, 0}, {100, 0}},
		{{100.0000001, 0}, {200, 0}},
	}, 1e-3)
	require.NoError(t, err)
	assert.Len(t, c.Path(), 3)
	assert.InDelta(t, 200, c.Length(), 1e-6)
}

func TestMergeRing(t *testing.T) {
	c, err := Merge([]orb.LineString{
		{{0, 0}, {10, 0}},
		{{10, 0}, {10, 10}},
		{{10, 10}, {0, 0}},
	}, 0)
	require.NoError(t, err)
	path := c.Path()
	assert.Equal(t, path[0], path[len(path)-1])
	assert.Len(t, path, 4)
}

func TestMergeFailures(t *testing.T) {
	tests := []struct {
		name      string
		fragments []orb.LineString
		paths     int
	}{
		{"empty", nil, 0},
		{"only degenerate", []orb.LineString{{{1, 1}}}, 0},
		{
			name: "disjoint",
			fragments: []orb.LineString{
				{{0, 0}, {100, 0}},
				{{200, 0}, {300, 0}},
			},
			paths: 2,
		},
		{
			name: "branching",
			fragments: []orb.LineString{
				{{0, 0}, {100, 0}},
				{{100, 0}, {200, 0}},
				{{100, 0}, {100, 100}},
			},
			paths: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Merge(tt.fragments, 0)
			assert.Nil(t, c)
			var nc *ErrNoCenterline
			require.True(t, errors.As(err, &nc), "got %v", err)
			assert.Equal(t, tt.paths, nc.Paths)
		})
	}
}

func TestPointAt(t *testing.T) {
	c, err := New(orb.LineString{{0, 0}, {100, 0}, {100, 50}})
	require.NoError(t, err)

	tests := []struct {
		s    float64
		want orb.Point
	}{
		{-5, orb.Point{0, 0}},
		{0, orb.Point{0, 0}},
		{40, orb.Point{40, 0}},
		{100, orb.Point{100, 0}},
		{125, orb.Point{100, 25}},
		{150, orb.Point{100, 50}},
		{999, orb.Point{100, 50}},
	}
	for _, tt := range tests {
		got := c.PointAt(tt.s)
		assert.InDelta(t, tt.want[0], got[0], 1e-9, "s=%v", tt.s)
		assert.InDelta(t, tt.want[1], got[1], 1e-9, "s=%v", tt.s)
	}
}

func TestProjectMatchesLinearScan(t *testing.T) {
	path := orb.LineString{}
	for i := 0; i <= 200; i++ {
		y := 0.0
		if i%2 == 1 {
			y = 7
		}
		path = append(path, orb.Point{float64(i * 5), y})
	}
	c, err := New(path)
	require.NoError(t, err)

	for i := 0; i < 300; i++ {
		p := orb.Point{float64(i*37%1010) - 3.5, float64(i*13%41) - 20}
		got := c.project(p)

		want := projection{distance: 1e308}
		for _, s := range c.allSegments() {
			q, tt := projectOnSegment(p, c.path[s], c.path[s+1])
			d := math.Hypot(p[0]-q[0], p[1]-q[1])
			st := c.stations[s] + tt*(c.stations[s+1]-c.stations[s])
			if d < want.distance || (d == want.distance && st < want.station) {
				want = projection{segment: s, point: q, station: st, distance: d}
			}
		}
		assert.InDelta(t, want.distance, got.distance, 1e-9, "point %v", p)
		assert.InDelta(t, want.station, got.station, 1e-9, "point %v", p)
	}
}

func TestProject(t *testing.T) {
	line, err := Merge([]orb.LineString{
		{{0, 0}, {100, 0}},
		{{100, 0}, {100, 50}},
	}, 0)
	require.NoError(t, err)

	closest, station, distance := line.Project(orb.Point{110, 20})
	assert.Equal(t, orb.Point{100, 20}, closest)
	assert.InDelta(t, 120, station, 1e-9)
	assert.InDelta(t, 10, distance, 1e-9)

	closest, station, distance = line.Project(orb.Point{-5, 0})
	assert.Equal(t, orb.Point{0, 0}, closest)
	assert.Zero(t, station)
	assert.InDelta(t, 5, distance, 1e-9)
}
