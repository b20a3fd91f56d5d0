package parser

import (
	"errors"
	"math"
	"testing"

	"github.com/beetlebugorg/cadgeo/pkg/drawing"
)

// TestValidateCoordinate tests coordinate validation
func TestValidateCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		v       drawing.Vec
		wantErr bool
	}{
		{"valid", drawing.Vec{X: 198056.37, Y: 551885.03}, false},
		{"negative", drawing.Vec{X: -1e6, Y: -1e6}, false},
		{"nan x", drawing.Vec{X: math.NaN(), Y: 0}, true},
		{"inf y", drawing.Vec{X: 0, Y: math.Inf(-1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCoordinate("1", tt.v)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateCoordinate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestValidateEntity tests per-kind parameter checks
func TestValidateEntity(t *testing.T) {
	tests := []struct {
		name    string
		entity  drawing.Entity
		wantErr bool
	}{
		{"line", &drawing.Line{End: drawing.Vec{X: 1}}, false},
		{"circle zero radius", &drawing.Circle{}, true},
		{"circle", &drawing.Circle{Radius: 1}, false},
		{"arc negative radius", &drawing.Arc{Radius: -1}, true},
		{"polyline nan", &drawing.LWPolyline{Vertices: []drawing.Vertex{{X: math.NaN()}}}, true},
		{"spline empty", &drawing.Spline{Degree: 3}, true},
		{"spline fit", &drawing.Spline{FitPoints: []drawing.Vec{{X: 0}, {X: 1}}}, false},
		{"ellipse zero axis", &drawing.Ellipse{Ratio: 0.5}, true},
		{"ellipse bad ratio", &drawing.Ellipse{MajorAxis: drawing.Vec{X: 1}, Ratio: 2}, true},
		{"ellipse", &drawing.Ellipse{MajorAxis: drawing.Vec{X: 1}, Ratio: 0.5}, false},
		{"insert no name", &drawing.Insert{}, true},
		{"unsupported", &drawing.Unsupported{Type: "HATCH"}, false},
		{"undecodable", &drawing.Invalid{Type: "LINE", Err: &ErrSyntax{Line: 3, Reason: "bad"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEntity(tt.entity)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEntity() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateDrawingBlocks(t *testing.T) {
	d := drawing.New()
	d.AddBlock(&drawing.Block{Name: "B", Entities: []drawing.Entity{
		&drawing.Circle{Common: drawing.Common{Handle: "c"}},
	}})
	d.Entities = []drawing.Entity{&drawing.Insert{Name: "b"}}

	err := ValidateDrawing(d)
	var ig *ErrInvalidGeometry
	if !errors.As(err, &ig) || ig.Handle != "c" {
		t.Errorf("error = %v, want invalid geometry in block", err)
	}
}

// TestErrorMessages tests error formatting
func TestErrorMessages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&ErrSyntax{Line: 12, Reason: "bad"}, "syntax error at line 12: bad"},
		{&ErrSyntax{Reason: "bad"}, "syntax error: bad"},
		{&ErrUnsupportedFormat{Format: "binary dxf"}, "unsupported drawing format: binary dxf"},
		{&ErrInvalidGeometry{Kind: drawing.KindCircle, Reason: "r"}, "invalid geometry (CIRCLE): r"},
		{&ErrInvalidGeometry{Kind: drawing.KindArc, Handle: "2A", Reason: "r"}, "invalid geometry (ARC 2A): r"},
		{&ErrMissingBlock{Handle: "3", Name: "X"}, `insert 3 references missing block "X"`},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}
