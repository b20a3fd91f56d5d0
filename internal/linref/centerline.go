// Package linref builds a reference alignment from drawing line fragments
// and measures points against it (station, offset and side).
package linref

import (
	"fmt"
	"math"
	"sort"

	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// DefaultSnapTolerance is the grid size used to match fragment endpoints.
const DefaultSnapTolerance = 1e-6

// Centerline is an immutable merged reference path.
type Centerline struct {
	path     orb.LineString
	stations []float64 // cumulative distance at each vertex
	length   float64
	index    *rtreego.Rtree
}

// ErrNoCenterline is returned when the fragments cannot be merged into
// exactly one continuous path.
type ErrNoCenterline struct {
	Reason string
	Paths  int // number of disjoint paths found, 0 if none
}

func (e *ErrNoCenterline) Error() string {
	if e.Paths > 1 {
		return fmt.Sprintf("no centerline: %s (%d paths)", e.Reason, e.Paths)
	}
	return fmt.Sprintf("no centerline: %s", e.Reason)
}

// nodeKey is an endpoint snapped to the tolerance grid.
type nodeKey [2]int64

// fragmentEnd refers to one end of an input fragment.
type fragmentEnd struct {
	part    int
	atStart bool
}

// Merge joins fragments that share endpoints into a single path.
//
// The merged path runs in the direction of the first usable fragment.
// Fragments with fewer than two points or zero length are ignored. If the
// fragments form more than one path, or branch at any endpoint, Merge
// returns *ErrNoCenterline.
func Merge(fragments []orb.LineString, snap float64) (*Centerline, error) {
	if snap <= 0 {
		snap = DefaultSnapTolerance
	}
	key := func(p orb.Point) nodeKey {
		return nodeKey{int64(math.Round(p[0] / snap)), int64(math.Round(p[1] / snap))}
	}

	parts := make([]orb.LineString, 0, len(fragments))
	for _, f := range fragments {
		if len(f) < 2 || planar.Length(f) == 0 {
			continue
		}
		parts = append(parts, f)
	}
	if len(parts) == 0 {
		return nil, &ErrNoCenterline{Reason: "no usable line fragments"}
	}

	nodes := make(map[nodeKey][]fragmentEnd)
	for i, p := range parts {
		s, e := key(p[0]), key(p[len(p)-1])
		nodes[s] = append(nodes[s], fragmentEnd{part: i, atStart: true})
		nodes[e] = append(nodes[e], fragmentEnd{part: i, atStart: false})
	}
	for _, ends := range nodes {
		if len(ends) > 2 {
			return nil, &ErrNoCenterline{Reason: "fragments branch", Paths: countPaths(parts, nodes)}
		}
	}

	used := make([]bool, len(parts))
	used[0] = true
	path := append(orb.LineString(nil), parts[0]...)

	next := func(at nodeKey) (fragmentEnd, bool) {
		for _, end := range nodes[at] {
			if !used[end.part] {
				return end, true
			}
		}
		return fragmentEnd{}, false
	}

	// Extend forward from the end of the path.
	for {
		end, ok := next(key(path[len(path)-1]))
		if !ok {
			break
		}
		used[end.part] = true
		seg := parts[end.part]
		if !end.atStart {
			seg = reversed(seg)
		}
		path = append(path, seg[1:]...)
	}

	// Extend backward from the start of the path.
	var head []orb.Point
	at := key(path[0])
	for {
		end, ok := next(at)
		if !ok {
			break
		}
		used[end.part] = true
		seg := parts[end.part]
		if end.atStart {
			seg = reversed(seg)
		}
		// seg now ends at the current head; prepend all but its last point.
		head = append(append([]orb.Point(nil), seg[:len(seg)-1]...), head...)
		at = key(seg[0])
	}
	if len(head) > 0 {
		path = append(orb.LineString(head), path...)
	}

	for _, u := range used {
		if !u {
			return nil, &ErrNoCenterline{Reason: "fragments are disjoint", Paths: countPaths(parts, nodes)}
		}
	}

	return newCenterline(path), nil
}

// New returns a centerline for an already continuous path.
func New(path orb.LineString) (*Centerline, error) {
	if len(path) < 2 || planar.Length(path) == 0 {
		return nil, &ErrNoCenterline{Reason: "path is degenerate"}
	}
	return newCenterline(append(orb.LineString(nil), path...)), nil
}

func newCenterline(path orb.LineString) *Centerline {
	stations := make([]float64, len(path))
	for i := 1; i < len(path); i++ {
		stations[i] = stations[i-1] + planar.Distance(path[i-1], path[i])
	}
	c := &Centerline{
		path:     path,
		stations: stations,
		length:   planar.Length(path),
	}
	c.index = buildSegmentIndex(path)
	return c
}

// Path returns a copy of the merged path.
func (c *Centerline) Path() orb.LineString {
	return append(orb.LineString(nil), c.path...)
}

// Length returns the planar length of the path.
func (c *Centerline) Length() float64 { return c.length }

// Stations returns the cumulative distance at each vertex.
func (c *Centerline) Stations() []float64 {
	return append([]float64(nil), c.stations...)
}

// PointAt returns the point at distance s along the path. s is clamped to
// [0, Length()].
func (c *Centerline) PointAt(s float64) orb.Point {
	if s <= 0 {
		return c.path[0]
	}
	last := len(c.path) - 1
	if s >= c.stations[last] {
		return c.path[last]
	}
	// first vertex with station > s
	i := sort.Search(len(c.stations), func(i int) bool { return c.stations[i] > s })
	a, b := c.path[i-1], c.path[i]
	segLen := c.stations[i] - c.stations[i-1]
	if segLen == 0 {
		return a
	}
	t := (s - c.stations[i-1]) / segLen
	return orb.Point{a[0] + t*(b[0]-a[0]), a[1] + t*(b[1]-a[1])}
}

func reversed(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[len(ls)-1-i] = p
	}
	return out
}

// countPaths returns the number of connected fragment groups.
func countPaths(parts []orb.LineString, nodes map[nodeKey][]fragmentEnd) int {
	parent := make([]int, len(parts))
	for i := range parent {
		parent[i] = i
	}
	find := func(i int) int {
		for parent[i] != i {
			parent[i] = parent[parent[i]]
			i = parent[i]
		}
		return i
	}
	for _, ends := range nodes {
		for _, e := range ends[1:] {
			parent[find(e.part)] = find(ends[0].part)
		}
	}
	roots := make(map[int]struct{})
	for i := range parts {
		roots[find(i)] = struct{}{}
	}
	return len(roots)
}
