package parser

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/beetlebugorg/cadgeo/pkg/drawing"
)

// jsonDrawing is the JSON dump layout:
//
//	{
//	  "version": "AC1032",
//	  "entities": [{"type": "LINE", "handle": "1F", "layer": "ROAD", "start": [0, 0], "end": [10, 0]}],
//	  "blocks": {"SIGN": {"base": [0, 0], "entities": [...]}}
//	}
type jsonDrawing struct {
	Version  string               `json:"version"`
	Units    int                  `json:"units"`
	Entities []jsonEntity         `json:"entities"`
	Blocks   map[string]jsonBlock `json:"blocks"`
}

type jsonBlock struct {
	Base     []float64    `json:"base"`
	Entities []jsonEntity `json:"entities"`
}

// jsonEntity carries the union of all entity fields. Which ones apply is
// decided by Type.
type jsonEntity struct {
	Type     string   `json:"type"`
	Handle   string   `json:"handle"`
	Layer    string   `json:"layer"`
	Color    *int     `json:"color"`
	Rotation *float64 `json:"rotation"`

	Start    []float64 `json:"start"`
	End      []float64 `json:"end"`
	Center   []float64 `json:"center"`
	Insert   []float64 `json:"insert"`
	Location []float64 `json:"location"`

	// Vertices are [x, y] or [x, y, bulge].
	Vertices [][]float64 `json:"vertices"`
	Closed   bool        `json:"closed"`

	Radius     float64  `json:"radius"`
	StartAngle float64  `json:"start_angle"`
	EndAngle   *float64 `json:"end_angle"`

	Text   string  `json:"text"`
	Height float64 `json:"height"`

	Degree        int         `json:"degree"`
	Knots         []float64   `json:"knots"`
	Weights       []float64   `json:"weights"`
	ControlPoints [][]float64 `json:"control_points"`
	FitPoints     [][]float64 `json:"fit_points"`

	MajorAxis  []float64 `json:"major_axis"`
	Ratio      *float64  `json:"ratio"`
	StartParam float64   `json:"start_param"`
	EndParam   *float64  `json:"end_param"`

	Name   string   `json:"name"`
	ScaleX *float64 `json:"scale_x"`
	ScaleY *float64 `json:"scale_y"`
}

func readJSON(r io.Reader) (*drawing.Drawing, error) {
	var doc jsonDrawing
	dec := json.NewDecoder(r)
	if err := dec.Decode(&doc); err != nil {
		var se *json.SyntaxError
		if errors.As(err, &se) {
			return nil, &ErrSyntax{Reason: fmt.Sprintf("json offset %d: %v", se.Offset, se)}
		}
		return nil, fmt.Errorf("failed to decode drawing: %w", err)
	}

	d := drawing.New()
	d.Version = doc.Version
	d.Units = doc.Units

	d.Entities = convertJSONEntities(doc.Entities)
	for name, b := range doc.Blocks {
		base, err := jsonVec(b.Base, "base")
		if err != nil {
			return nil, fmt.Errorf("block %q: %w", name, err)
		}
		d.AddBlock(&drawing.Block{Name: name, Base: base, Entities: convertJSONEntities(b.Entities)})
	}
	return d, nil
}

// convertJSONEntities converts entities in order. An entity with malformed
// fields is kept as drawing.Invalid.
func convertJSONEntities(in []jsonEntity) []drawing.Entity {
	out := make([]drawing.Entity, 0, len(in))
	for i := range in {
		e, err := in[i].entity()
		if err != nil {
			e = &drawing.Invalid{
				Common: in[i].common(),
				Type:   strings.ToUpper(in[i].Type),
				Err:    fmt.Errorf("entity %d: %w", i, err),
			}
		}
		out = append(out, e)
	}
	return out
}

// jsonVec converts an [x, y] array. A missing array is the origin.
func jsonVec(v []float64, field string) (drawing.Vec, error) {
	switch len(v) {
	case 0:
		return drawing.Vec{}, nil
	case 2, 3:
		return drawing.Vec{X: v[0], Y: v[1]}, nil
	}
	return drawing.Vec{}, &ErrSyntax{Reason: fmt.Sprintf("%s: expected [x, y], got %d values", field, len(v))}
}

func jsonVecs(in [][]float64, field string) ([]drawing.Vec, error) {
	out := make([]drawing.Vec, 0, len(in))
	for _, v := range in {
		p, err := jsonVec(v, field)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (j *jsonEntity) common() drawing.Common {
	c := drawing.Common{
		Handle:   j.Handle,
		Layer:    j.Layer,
		Color:    j.Color,
		Rotation: j.Rotation,
	}
	if c.Layer == "" {
		c.Layer = "0"
	}
	return c
}

func (j *jsonEntity) entity() (drawing.Entity, error) {
	c := j.common()

	var err error
	switch typ := strings.ToUpper(j.Type); typ {
	case "LINE":
		e := &drawing.Line{Common: c}
		if e.Start, err = jsonVec(j.Start, "start"); err != nil {
			return nil, err
		}
		if e.End, err = jsonVec(j.End, "end"); err != nil {
			return nil, err
		}
		return e, nil

	case "LWPOLYLINE", "POLYLINE":
		vertices := make([]drawing.Vertex, 0, len(j.Vertices))
		for _, v := range j.Vertices {
			if len(v) < 2 || len(v) > 3 {
				return nil, &ErrSyntax{Reason: fmt.Sprintf("vertices: expected [x, y] or [x, y, bulge], got %d values", len(v))}
			}
			vx := drawing.Vertex{X: v[0], Y: v[1]}
			if len(v) == 3 {
				vx.Bulge = v[2]
			}
			vertices = append(vertices, vx)
		}
		if typ == "POLYLINE" {
			return &drawing.Polyline{Common: c, Vertices: vertices, Closed: j.Closed}, nil
		}
		return &drawing.LWPolyline{Common: c, Vertices: vertices, Closed: j.Closed}, nil

	case "CIRCLE":
		e := &drawing.Circle{Common: c, Radius: j.Radius}
		e.Center, err = jsonVec(j.Center, "center")
		return e, err

	case "ARC":
		e := &drawing.Arc{Common: c, Radius: j.Radius, StartAngle: j.StartAngle, EndAngle: 360}
		if j.EndAngle != nil {
			e.EndAngle = *j.EndAngle
		}
		e.Center, err = jsonVec(j.Center, "center")
		return e, err

	case "TEXT":
		e := &drawing.Text{Common: c, Value: j.Text, Height: j.Height}
		e.Insert, err = jsonVec(j.Insert, "insert")
		return e, err

	case "MTEXT":
		e := &drawing.MText{Common: c, Value: j.Text, Height: j.Height}
		e.Insert, err = jsonVec(j.Insert, "insert")
		return e, err

	case "POINT":
		e := &drawing.Point{Common: c}
		e.Location, err = jsonVec(j.Location, "location")
		return e, err

	case "SPLINE":
		e := &drawing.Spline{Common: c, Degree: j.Degree, Closed: j.Closed, Knots: j.Knots, Weights: j.Weights}
		if e.Degree == 0 {
			e.Degree = 3
		}
		if e.ControlPoints, err = jsonVecs(j.ControlPoints, "control_points"); err != nil {
			return nil, err
		}
		if e.FitPoints, err = jsonVecs(j.FitPoints, "fit_points"); err != nil {
			return nil, err
		}
		return e, nil

	case "ELLIPSE":
		e := &drawing.Ellipse{Common: c, Ratio: 1, StartParam: j.StartParam, EndParam: 2 * math.Pi}
		if j.Ratio != nil {
			e.Ratio = *j.Ratio
		}
		if j.EndParam != nil {
			e.EndParam = *j.EndParam
		}
		if e.Center, err = jsonVec(j.Center, "center"); err != nil {
			return nil, err
		}
		if e.MajorAxis, err = jsonVec(j.MajorAxis, "major_axis"); err != nil {
			return nil, err
		}
		return e, nil

	case "INSERT":
		e := &drawing.Insert{Common: c, Name: j.Name, ScaleX: 1, ScaleY: 1}
		if j.ScaleX != nil {
			e.ScaleX = *j.ScaleX
		}
		if j.ScaleY != nil {
			e.ScaleY = *j.ScaleY
		}
		e.Point, err = jsonVec(j.Insert, "insert")
		return e, err

	case "":
		return nil, &ErrSyntax{Reason: "entity without type"}
	}

	return &drawing.Unsupported{Common: c, Type: strings.ToUpper(j.Type)}, nil
}
