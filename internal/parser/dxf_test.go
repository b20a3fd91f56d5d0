package parser

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/beetlebugorg/cadgeo/pkg/drawing"
)

// dxfDoc joins group code/value pairs into DXF text.
func dxfDoc(pairs ...string) string {
	return strings.Join(pairs, "\n") + "\n"
}

var sampleDXF = dxfDoc(
	"999", "written by hand",
	"0", "SECTION", "2", "HEADER",
	"9", "$ACADVER", "1", "AC1027",
	"9", "$INSUNITS", "70", "6",
	"0", "ENDSEC",

	"0", "SECTION", "2", "TABLES",
	"0", "TABLE", "2", "LAYER",
	"0", "ENDTAB",
	"0", "ENDSEC",

	"0", "SECTION", "2", "BLOCKS",
	"0", "BLOCK", "5", "20", "8", "0", "2", "SIGN", "10", "1.0", "20", "2.0",
	"0", "LINE", "5", "21", "8", "0", "10", "1.0", "20", "2.0", "11", "3.0", "21", "2.0",
	"0", "ENDBLK", "5", "22", "8", "0",
	"0", "ENDSEC",

	"0", "SECTION", "2", "ENTITIES",
	"0", "LINE", "5", "1A", "8", "ROAD", "62", "1",
	"10", "0.0", "20", "0.0", "11", "100.0", "21", "0.0",

	"0", "LWPOLYLINE", "5", "1B", "8", "ROAD", "90", "3", "70", "1",
	"10", "0.0", "20", "0.0", "42", "0.5",
	"10", "10.0", "20", "0.0",
	"10", "10.0", "20", "10.0",

	"0", "POLYLINE", "5", "1C", "8", "EDGE", "66", "1", "70", "0",
	"0", "VERTEX", "5", "1D", "8", "EDGE", "10", "1.0", "20", "1.0",
	"0", "VERTEX", "5", "1E", "8", "EDGE", "10", "2.0", "20", "3.0",
	"0", "SEQEND", "5", "1F", "8", "EDGE",

	"0", "CIRCLE", "5", "30", "8", "MH", "10", "5.0", "20", "6.0", "40", "1.5",

	"0", "ARC", "5", "31", "8", "MH", "10", "0.0", "20", "0.0", "40", "2.0", "50", "0.0", "51", "90.0",

	"0", "TEXT", "5", "32", "8", "LABEL", "10", "7.0", "20", "8.0", "40", "2.5", "1", "KP 1+000", "50", "30.0",

	"0", "MTEXT", "5", "33", "8", "LABEL", "10", "1.0", "20", "1.0", "3", `first\P`, "1", "second",

	"0", "POINT", "5", "34", "8", "worthless_object", "10", "9.0", "20", "9.0",

	"0", "SPLINE", "5", "35", "8", "CURVE", "70", "8", "71", "3",
	"40", "0.0", "40", "0.0", "40", "0.0", "40", "0.0",
	"40", "1.0", "40", "1.0", "40", "1.0", "40", "1.0",
	"10", "0.0", "20", "0.0",
	"10", "1.0", "20", "2.0",
	"10", "3.0", "20", "2.0",
	"10", "4.0", "20", "0.0",

	"0", "ELLIPSE", "5", "36", "8", "CURVE", "10", "0.0", "20", "0.0", "11", "4.0", "21", "0.0", "40", "0.5",

	"0", "INSERT", "5", "37", "8", "SIGNS", "2", "SIGN", "10", "50.0", "20", "60.0", "41", "2.0", "50", "90.0", "66", "1",
	"0", "ATTRIB", "5", "38", "8", "SIGNS", "1", "value",
	"0", "SEQEND", "5", "39", "8", "SIGNS",

	"0", "DIMENSION", "5", "3A", "8", "DIM",
	"0", "ENDSEC",
	"0", "EOF",
)

func TestReadDXF(t *testing.T) {
	d, err := readDXF(strings.NewReader(sampleDXF))
	if err != nil {
		t.Fatalf("readDXF() error = %v", err)
	}

	if d.Version != "AC1027" || d.Units != 6 {
		t.Errorf("header = %q/%d, want AC1027/6", d.Version, d.Units)
	}

	wantKinds := []drawing.Kind{
		drawing.KindLine, drawing.KindLWPolyline, drawing.KindPolyline,
		drawing.KindCircle, drawing.KindArc, drawing.KindText, drawing.KindMText,
		drawing.KindPoint, drawing.KindSpline, drawing.KindEllipse,
		drawing.KindInsert, drawing.KindUnsupported,
	}
	if len(d.Entities) != len(wantKinds) {
		t.Fatalf("got %d entities, want %d", len(d.Entities), len(wantKinds))
	}
	for i, want := range wantKinds {
		if got := d.Entities[i].Kind(); got != want {
			t.Errorf("entity %d kind = %v, want %v", i, got, want)
		}
	}

	line := d.Entities[0].(*drawing.Line)
	if line.Handle != "1A" || line.Layer != "ROAD" || line.Color == nil || *line.Color != 1 {
		t.Errorf("line attrs = %+v", line.Common)
	}
	if line.End != (drawing.Vec{X: 100, Y: 0}) {
		t.Errorf("line end = %v", line.End)
	}

	lw := d.Entities[1].(*drawing.LWPolyline)
	if !lw.Closed || len(lw.Vertices) != 3 || lw.Vertices[0].Bulge != 0.5 || lw.Vertices[2] != (drawing.Vertex{X: 10, Y: 10}) {
		t.Errorf("lwpolyline = %+v", lw)
	}

	pl := d.Entities[2].(*drawing.Polyline)
	if len(pl.Vertices) != 2 || pl.Vertices[1].Y != 3 {
		t.Errorf("polyline vertices = %+v", pl.Vertices)
	}

	circle := d.Entities[3].(*drawing.Circle)
	if circle.Radius != 1.5 || circle.Center != (drawing.Vec{X: 5, Y: 6}) {
		t.Errorf("circle = %+v", circle)
	}

	arc := d.Entities[4].(*drawing.Arc)
	if arc.EndAngle != 90 {
		t.Errorf("arc = %+v", arc)
	}

	text := d.Entities[5].(*drawing.Text)
	if text.Value != "KP 1+000" || text.Rotation == nil || *text.Rotation != 30 {
		t.Errorf("text = %+v", text)
	}

	mtext := d.Entities[6].(*drawing.MText)
	if mtext.Value != "first\nsecond" {
		t.Errorf("mtext value = %q", mtext.Value)
	}

	spline := d.Entities[8].(*drawing.Spline)
	if spline.Degree != 3 || len(spline.Knots) != 8 || len(spline.ControlPoints) != 4 || spline.Closed {
		t.Errorf("spline = %+v", spline)
	}

	ellipse := d.Entities[9].(*drawing.Ellipse)
	if ellipse.Ratio != 0.5 || ellipse.EndParam != 2*math.Pi {
		t.Errorf("ellipse = %+v", ellipse)
	}

	insert := d.Entities[10].(*drawing.Insert)
	if insert.Name != "SIGN" || insert.ScaleX != 2 || insert.ScaleY != 1 || insert.Rotation == nil || *insert.Rotation != 90 {
		t.Errorf("insert = %+v", insert)
	}

	if u := d.Entities[11].(*drawing.Unsupported); u.Type != "DIMENSION" {
		t.Errorf("unsupported type = %q", u.Type)
	}

	block := d.Block("sign")
	if block == nil {
		t.Fatal("block SIGN not found")
	}
	if block.Base != (drawing.Vec{X: 1, Y: 2}) || len(block.Entities) != 1 {
		t.Errorf("block = %+v", block)
	}
}

func TestReadDXFErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"bad group code", dxfDoc("0", "SECTION", "x", "ENTITIES")},
		{"missing value", dxfDoc("0", "SECTION", "2")},
		{"stray group in entities", dxfDoc("0", "SECTION", "2", "ENTITIES", "10", "1", "0", "ENDSEC")},
		{"unterminated entities", dxfDoc("0", "SECTION", "2", "ENTITIES", "0", "LINE", "10", "1")},
		{"no section", dxfDoc("0", "LINE")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := readDXF(strings.NewReader(tt.input))
			var se *ErrSyntax
			if !errors.As(err, &se) {
				t.Fatalf("error = %v, want *ErrSyntax", err)
			}
		})
	}
}

func TestReadDXFPolylineWithoutSeqend(t *testing.T) {
	input := dxfDoc(
		"0", "SECTION", "2", "ENTITIES",
		"0", "POLYLINE", "8", "A", "70", "1",
		"0", "VERTEX", "10", "0", "20", "0",
		"0", "VERTEX", "10", "5", "20", "0",
		"0", "LINE", "10", "0", "20", "0", "11", "1", "21", "1",
		"0", "ENDSEC", "0", "EOF",
	)
	d, err := readDXF(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readDXF() error = %v", err)
	}
	if len(d.Entities) != 2 {
		t.Fatalf("got %d entities, want 2", len(d.Entities))
	}
	pl, ok := d.Entities[0].(*drawing.Polyline)
	if !ok || !pl.Closed || len(pl.Vertices) != 2 {
		t.Errorf("polyline = %+v", d.Entities[0])
	}
}

func TestReadDXFMeshPolylineUnsupported(t *testing.T) {
	input := dxfDoc(
		"0", "SECTION", "2", "ENTITIES",
		"0", "POLYLINE", "70", "64",
		"0", "VERTEX", "10", "0", "20", "0",
		"0", "SEQEND",
		"0", "ENDSEC", "0", "EOF",
	)
	d, err := readDXF(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readDXF() error = %v", err)
	}
	if len(d.Entities) != 1 || d.Entities[0].Kind() != drawing.KindUnsupported {
		t.Errorf("entities = %+v", d.Entities)
	}
}

func TestReadDXFCRLF(t *testing.T) {
	input := strings.ReplaceAll(dxfDoc(
		"  0", "SECTION", "  2", "ENTITIES",
		"  0", "POINT", "  8", "P", " 10", "1.5", " 20", "-2.5",
		"  0", "ENDSEC", "  0", "EOF",
	), "\n", "\r\n")
	d, err := readDXF(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readDXF() error = %v", err)
	}
	p := d.Entities[0].(*drawing.Point)
	if p.Layer != "P" || p.Location != (drawing.Vec{X: 1.5, Y: -2.5}) {
		t.Errorf("point = %+v", p)
	}
}

func TestReadDXFMalformedEntity(t *testing.T) {
	input := dxfDoc(
		"0", "SECTION", "2", "ENTITIES",
		"0", "LINE", "5", "A", "8", "ROAD", "10", "0", "20", "0", "11", "10", "21", "0",
		"0", "LINE", "5", "B", "8", "ROAD", "10", "abc", "20", "0", "11", "10", "21", "0",
		"0", "CIRCLE", "5", "C", "8", "MH", "62", "red", "10", "0", "20", "0", "40", "1",
		"0", "POLYLINE", "5", "D", "8", "EDGE",
		"0", "VERTEX", "10", "1", "20", "x",
		"0", "SEQEND",
		"0", "ENDSEC", "0", "EOF",
	)
	d, err := readDXF(strings.NewReader(input))
	if err != nil {
		t.Fatalf("readDXF() error = %v", err)
	}
	if len(d.Entities) != 4 {
		t.Fatalf("got %d entities, want 4", len(d.Entities))
	}
	if d.Entities[0].Kind() != drawing.KindLine {
		t.Errorf("entity 0 kind = %v, want LINE", d.Entities[0].Kind())
	}

	tests := []struct {
		index  int
		handle string
		layer  string
		typ    string
	}{
		{1, "B", "ROAD", "LINE"},
		{2, "C", "MH", "CIRCLE"},
		{3, "D", "EDGE", "POLYLINE"},
	}
	for _, tt := range tests {
		bad, ok := d.Entities[tt.index].(*drawing.Invalid)
		if !ok {
			t.Errorf("entity %d = %T, want *drawing.Invalid", tt.index, d.Entities[tt.index])
			continue
		}
		var se *ErrSyntax
		if bad.Handle != tt.handle || bad.Layer != tt.layer || bad.Type != tt.typ || !errors.As(bad.Err, &se) {
			t.Errorf("entity %d = %+v", tt.index, bad)
		}
	}
}
