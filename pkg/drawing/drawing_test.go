package drawing

import (
	"testing"
)

func TestBlockLookup(t *testing.T) {
	d := New()
	d.AddBlock(&Block{Name: " Sign ", Base: Vec{X: 1, Y: 2}})

	for _, name := range []string{"SIGN", "sign", "Sign", " sign"} {
		if b := d.Block(name); b == nil || b.Base.X != 1 {
			t.Errorf("Block(%q) = %v", name, b)
		}
	}
	if b := d.Block("OTHER"); b != nil {
		t.Errorf("Block(OTHER) = %v, want nil", b)
	}

	var empty Drawing
	if b := empty.Block("SIGN"); b != nil {
		t.Errorf("Block on zero Drawing = %v", b)
	}
	empty.AddBlock(&Block{Name: "X"})
	if empty.Block("x") == nil {
		t.Error("AddBlock on zero Drawing did not register")
	}
}

func TestInsertScale(t *testing.T) {
	tests := []struct {
		ins    Insert
		sx, sy float64
	}{
		{Insert{}, 1, 1},
		{Insert{ScaleX: 2}, 2, 1},
		{Insert{ScaleX: -1, ScaleY: 3}, -1, 3},
	}
	for _, tt := range tests {
		sx, sy := tt.ins.Scale()
		if sx != tt.sx || sy != tt.sy {
			t.Errorf("Scale() = %v, %v, want %v, %v", sx, sy, tt.sx, tt.sy)
		}
	}
}

func TestAttributes(t *testing.T) {
	color := 3
	rot := 45.0
	tests := []struct {
		name   string
		entity Entity
		want   map[string]interface{}
	}{
		{
			name:   "line",
			entity: &Line{Common: Common{Handle: "1", Layer: "ROAD", Color: &color}, Start: Vec{X: 1, Y: 2}, End: Vec{X: 3, Y: 4}},
			want:   map[string]interface{}{"handle": "1", "layer": "ROAD", "type": "LINE", "color": 3, "x": 1.0, "y": 2.0},
		},
		{
			name:   "text",
			entity: &Text{Common: Common{Handle: "2", Layer: "L", Rotation: &rot}, Insert: Vec{X: 5, Y: 6}, Height: 2.5, Value: "hi"},
			want:   map[string]interface{}{"handle": "2", "layer": "L", "type": "TEXT", "rotation": 45.0, "x": 5.0, "y": 6.0, "text": "hi", "height": 2.5},
		},
		{
			name:   "polyline",
			entity: &LWPolyline{Common: Common{Handle: "3"}, Vertices: []Vertex{{X: 7, Y: 8}, {X: 9, Y: 9}}, Closed: true},
			want:   map[string]interface{}{"handle": "3", "layer": "", "type": "LWPOLYLINE", "closed": true, "vertex_count": 2, "x": 7.0, "y": 8.0},
		},
		{
			name:   "insert",
			entity: &Insert{Common: Common{Handle: "4"}, Name: "SIGN", Point: Vec{X: 1, Y: 1}},
			want:   map[string]interface{}{"handle": "4", "layer": "", "type": "INSERT", "block": "SIGN", "x": 1.0, "y": 1.0},
		},
		{
			name:   "unsupported",
			entity: &Unsupported{Common: Common{Handle: "5"}, Type: "HATCH"},
			want:   map[string]interface{}{"handle": "5", "layer": "", "type": "HATCH"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Attributes(tt.entity)
			if len(got) != len(tt.want) {
				t.Errorf("got %d attributes %v, want %d", len(got), got, len(tt.want))
			}
			for k, v := range tt.want {
				if got[k] != v {
					t.Errorf("%s = %#v, want %#v", k, got[k], v)
				}
			}
		})
	}
}

func TestKindString(t *testing.T) {
	var e Entity = &Spline{}
	if e.Kind().String() != "SPLINE" {
		t.Errorf("Kind() = %v", e.Kind())
	}
	if e.Attrs() == nil {
		t.Error("Attrs() = nil")
	}
}
