package linref

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// DefaultTangentDelta is the distance ahead of (or behind) a projected
// point used to sample the path direction.
const DefaultTangentDelta = 0.1

// centerEpsilon is the offset at or below which a point lies on the path.
const centerEpsilon = 1e-9

// Side is the lateral position of a point relative to the path direction.
type Side int

const (
	SideCenter Side = iota
	SideLeft
	SideRight
)

// String returns the English name of the side.
func (s Side) String() string {
	switch s {
	case SideLeft:
		return "Left"
	case SideRight:
		return "Right"
	case SideCenter:
		return "Center"
	default:
		return "Unknown"
	}
}

// Chainage is the linear reference of one point.
type Chainage struct {
	Station float64 // distance along the path, in [0, Length]
	Offset  float64 // perpendicular distance to the path, >= 0
	Side    Side
}

// Labels are the words used when formatting a chainage.
type Labels struct {
	Forward string `yaml:"forward"`
	Reverse string `yaml:"reverse"`
	Left    string `yaml:"left"`
	Right   string `yaml:"right"`
	Center  string `yaml:"center"`
}

// DefaultLabels returns Korean road labels: 상행/하행 for direction and
// 좌/우/중 for side.
func DefaultLabels() Labels {
	return Labels{
		Forward: "상행",
		Reverse: "하행",
		Left:    "좌",
		Right:   "우",
		Center:  "중",
	}
}

// side returns the label for s, falling back to the default label when
// the configured one is empty.
func (l Labels) side(s Side) string {
	d := DefaultLabels()
	switch s {
	case SideLeft:
		return firstNonEmpty(l.Left, d.Left)
	case SideRight:
		return firstNonEmpty(l.Right, d.Right)
	default:
		return firstNonEmpty(l.Center, d.Center)
	}
}

func (l Labels) direction(reverse bool) string {
	d := DefaultLabels()
	if reverse {
		return firstNonEmpty(l.Reverse, d.Reverse)
	}
	return firstNonEmpty(l.Forward, d.Forward)
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// ErrDegenerate is returned when a chainage cannot be computed for a
// point, for example because the path direction is undefined there.
type ErrDegenerate struct {
	Reason string
}

func (e *ErrDegenerate) Error() string {
	return fmt.Sprintf("chainage: %s", e.Reason)
}

// Calculator measures points against a centerline. It is safe for
// concurrent use.
type Calculator struct {
	line    *Centerline
	reverse bool
	delta   float64
	labels  Labels
}

// NewCalculator returns a calculator for line. A delta <= 0 selects
// DefaultTangentDelta.
func NewCalculator(line *Centerline, reverse bool, delta float64, labels Labels) *Calculator {
	if delta <= 0 {
		delta = DefaultTangentDelta
	}
	return &Calculator{line: line, reverse: reverse, delta: delta, labels: labels}
}

// Centerline returns the reference path.
func (c *Calculator) Centerline() *Centerline { return c.line }

// Compute projects p onto the centerline.
//
// With reverse set, the station is measured from the end of the path; the
// side stays relative to the path's own direction.
func (c *Calculator) Compute(p orb.Point) (Chainage, error) {
	if c.line == nil || len(c.line.path) < 2 || c.line.length <= 0 {
		return Chainage{}, &ErrDegenerate{Reason: "centerline is empty"}
	}
	if math.IsNaN(p[0]) || math.IsNaN(p[1]) || math.IsInf(p[0], 0) || math.IsInf(p[1], 0) {
		return Chainage{}, &ErrDegenerate{Reason: "point is not finite"}
	}

	proj := c.line.project(p)
	if math.IsInf(proj.distance, 1) {
		return Chainage{}, &ErrDegenerate{Reason: "projection failed"}
	}

	var from, to orb.Point
	switch {
	case proj.station+c.delta <= c.line.length:
		from, to = proj.point, c.line.PointAt(proj.station+c.delta)
	case proj.station-c.delta >= 0:
		from, to = c.line.PointAt(proj.station-c.delta), proj.point
	default:
		// Path shorter than the delta on both sides: clamp to its ends.
		from = c.line.PointAt(math.Max(0, proj.station-c.delta))
		to = c.line.PointAt(math.Min(c.line.length, proj.station+c.delta))
	}
	tangent := orb.Point{to[0] - from[0], to[1] - from[1]}
	if tangent[0] == 0 && tangent[1] == 0 {
		return Chainage{}, &ErrDegenerate{Reason: "tangent is zero"}
	}

	side := SideCenter
	if proj.distance > centerEpsilon {
		cross := tangent[0]*(p[1]-proj.point[1]) - tangent[1]*(p[0]-proj.point[0])
		switch {
		case cross < 0:
			side = SideRight
		case cross > 0:
			side = SideLeft
		}
	}

	station := math.Max(0, math.Min(proj.station, c.line.length))
	if c.reverse {
		station = c.line.length - station
	}

	return Chainage{Station: station, Offset: proj.distance, Side: side}, nil
}

// Format renders a chainage as "{km}+{m:06.2f}/{direction}({side})/{offset:.1f}",
// for example "0+050.00/상행(좌)/5.0".
func (c *Calculator) Format(ch Chainage) string {
	return FormatChainage(ch, c.reverse, c.labels)
}

// FormatChainage is Format without a calculator.
func FormatChainage(ch Chainage, reverse bool, labels Labels) string {
	station := math.Round(ch.Station*100) / 100
	km := math.Floor(station / 1000)
	m := station - km*1000
	if m < 0 {
		m = 0
	}
	return fmt.Sprintf("%d+%06.2f/%s(%s)/%.1f",
		int64(km), m, labels.direction(reverse), labels.side(ch.Side), ch.Offset)
}

// Annotate computes and formats the chainage of p in one call.
func (c *Calculator) Annotate(p orb.Point) (string, error) {
	ch, err := c.Compute(p)
	if err != nil {
		return "", err
	}
	return c.Format(ch), nil
}
