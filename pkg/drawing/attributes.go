package drawing

// Attributes returns the raw attribute values of an entity keyed by name.
//
// Keys: handle, layer, type, color, rotation, text, radius, x, y, block,
// height, closed, vertex_count. Keys that do not apply to the entity's
// kind are absent from the map. x and y are the entity's anchor (start
// point for lines and polylines, center for circles and curves).
func Attributes(e Entity) map[string]interface{} {
	c := e.Attrs()
	attrs := map[string]interface{}{
		"handle": c.Handle,
		"layer":  c.Layer,
		"type":   string(e.Kind()),
	}
	if c.Color != nil {
		attrs["color"] = *c.Color
	}
	if c.Rotation != nil {
		attrs["rotation"] = *c.Rotation
	}

	setXY := func(v Vec) {
		attrs["x"] = v.X
		attrs["y"] = v.Y
	}

	switch e := e.(type) {
	case *Line:
		setXY(e.Start)
	case *LWPolyline:
		attrs["closed"] = e.Closed
		attrs["vertex_count"] = len(e.Vertices)
		if len(e.Vertices) > 0 {
			setXY(Vec{e.Vertices[0].X, e.Vertices[0].Y})
		}
	case *Polyline:
		attrs["closed"] = e.Closed
		attrs["vertex_count"] = len(e.Vertices)
		if len(e.Vertices) > 0 {
			setXY(Vec{e.Vertices[0].X, e.Vertices[0].Y})
		}
	case *Circle:
		setXY(e.Center)
		attrs["radius"] = e.Radius
	case *Arc:
		setXY(e.Center)
		attrs["radius"] = e.Radius
	case *Text:
		setXY(e.Insert)
		attrs["text"] = e.Value
		attrs["height"] = e.Height
	case *MText:
		setXY(e.Insert)
		attrs["text"] = e.Value
		attrs["height"] = e.Height
	case *Point:
		setXY(e.Location)
	case *Spline:
		attrs["closed"] = e.Closed
		if len(e.ControlPoints) > 0 {
			setXY(e.ControlPoints[0])
		} else if len(e.FitPoints) > 0 {
			setXY(e.FitPoints[0])
		}
	case *Ellipse:
		setXY(e.Center)
	case *Insert:
		setXY(e.Point)
		attrs["block"] = e.Name
	case *Unsupported:
		attrs["type"] = e.Type
	case *Invalid:
		attrs["type"] = e.Type
	}
	return attrs
}
