package drawing

// Entity is implemented by every drawing primitive.
//
// The interface is sealed: only types in this package satisfy it.
type Entity interface {
	Kind() Kind
	Attrs() *Common
	isEntity()
}

// Common holds attributes shared by all entity kinds.
type Common struct {
	// Handle is the entity's identifier, unique within one drawing.
	Handle string

	// Layer is the layer name the entity is drawn on.
	Layer string

	// Color is the ACI color code. Nil means BYLAYER.
	Color *int

	// Rotation in degrees, counter-clockwise positive. Nil when the kind
	// or the source carries no rotation.
	Rotation *float64
}

// Attrs returns the shared attributes.
func (c *Common) Attrs() *Common { return c }

func (*Common) isEntity() {}

// ColorByBlock is the ACI code that makes an entity take the color of the
// insert that places it.
const ColorByBlock = 0

// ColorByLayer is the ACI code for "use the layer's color".
const ColorByLayer = 256

// Line is a straight segment.
type Line struct {
	Common
	Start, End Vec
}

func (*Line) Kind() Kind { return KindLine }

// Vertex is a polyline vertex. Bulge is tan(θ/4) of the arc from this
// vertex to the next one, 0 for a straight segment.
type Vertex struct {
	X, Y  float64
	Bulge float64
}

// LWPolyline is a lightweight (2D) polyline.
type LWPolyline struct {
	Common
	Vertices []Vertex
	Closed   bool
}

func (*LWPolyline) Kind() Kind { return KindLWPolyline }

// Polyline is a heavyweight polyline built from VERTEX records.
type Polyline struct {
	Common
	Vertices []Vertex
	Closed   bool
}

func (*Polyline) Kind() Kind { return KindPolyline }

// Circle is a full circle.
type Circle struct {
	Common
	Center Vec
	Radius float64
}

func (*Circle) Kind() Kind { return KindCircle }

// Arc is a circular arc drawn counter-clockwise from StartAngle to
// EndAngle (degrees).
type Arc struct {
	Common
	Center     Vec
	Radius     float64
	StartAngle float64
	EndAngle   float64
}

func (*Arc) Kind() Kind { return KindArc }

// Text is a single-line text entity.
type Text struct {
	Common
	Insert Vec
	Height float64
	Value  string
}

func (*Text) Kind() Kind { return KindText }

// MText is a multi-line text entity.
type MText struct {
	Common
	Insert Vec
	Height float64
	Value  string
}

func (*MText) Kind() Kind { return KindMText }

// Point is a point entity.
type Point struct {
	Common
	Location Vec
}

func (*Point) Kind() Kind { return KindPoint }

// Spline is a NURBS curve. When Knots do not match the control points the
// curve is evaluated with a clamped uniform knot vector; when there are no
// control points the fit points are used as a polyline.
type Spline struct {
	Common
	Degree        int
	Closed        bool
	Knots         []float64
	Weights       []float64
	ControlPoints []Vec
	FitPoints     []Vec
}

func (*Spline) Kind() Kind { return KindSpline }

// Ellipse is an elliptical arc. MajorAxis is the vector from Center to the
// end of the major axis; Ratio is minor/major. StartParam and EndParam are
// in radians; a full ellipse runs from 0 to 2π.
type Ellipse struct {
	Common
	Center     Vec
	MajorAxis  Vec
	Ratio      float64
	StartParam float64
	EndParam   float64
}

func (*Ellipse) Kind() Kind { return KindEllipse }

// Insert places a block definition.
type Insert struct {
	Common
	Name   string
	Point  Vec
	ScaleX float64
	ScaleY float64
}

func (*Insert) Kind() Kind { return KindInsert }

// Scale returns the insert's scale factors with zero values treated as 1.
func (i *Insert) Scale() (sx, sy float64) {
	sx, sy = i.ScaleX, i.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	return sx, sy
}

// Unsupported keeps an entity of a type the model does not represent, so
// that it can be counted instead of silently dropped.
type Unsupported struct {
	Common
	Type string
}

func (*Unsupported) Kind() Kind { return KindUnsupported }

// Invalid is an entity whose source record could not be decoded, such as a
// LINE with a non-numeric coordinate. Handle and layer are kept when they
// were readable.
type Invalid struct {
	Common
	Type string
	Err  error
}

func (*Invalid) Kind() Kind { return KindInvalid }
