package cadgeo

import (
	"errors"
	"testing"

	"github.com/beetlebugorg/cadgeo/pkg/drawing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect(t *testing.T, w *Walker, d *drawing.Drawing) []Visit {
	t.Helper()
	var visits []Visit
	require.NoError(t, w.Walk(d, func(v Visit) error {
		visits = append(visits, v)
		return nil
	}))
	return visits
}

func TestWalkerAdmits(t *testing.T) {
	tests := []struct {
		allowed []string
		layer   string
		want    bool
	}{
		{nil, "ANY", true},
		{[]string{"ROAD"}, "ROAD", true},
		{[]string{"ROAD"}, "road", true},
		{[]string{"ROAD"}, "BUILDING", false},
		{[]string{"ROAD"}, "worthless_object", true},
		{[]string{"ROAD"}, "WORTHLESS_OBJECT", true},
		{[]string{"ROAD"}, "", false},
	}
	for _, tt := range tests {
		w := NewWalker(tt.allowed, false)
		if got := w.Admits(tt.layer); got != tt.want {
			t.Errorf("Admits(%q) with %v = %v, want %v", tt.layer, tt.allowed, got, tt.want)
		}
	}
}

func TestWalkerExpandsInPlace(t *testing.T) {
	d := newDrawing(
		point("1", "A", 0, 0),
		&drawing.Insert{Common: common("2", "A"), Name: "OUTER"},
		point("3", "A", 0, 0),
	)
	d.AddBlock(&drawing.Block{Name: "OUTER", Entities: []drawing.Entity{
		point("4", "B", 0, 0),
		&drawing.Insert{Common: common("5", "0"), Name: "INNER"},
	}})
	d.AddBlock(&drawing.Block{Name: "INNER", Entities: []drawing.Entity{point("6", "0", 0, 0)}})

	visits := collect(t, NewWalker(nil, false), d)

	var got []string
	for i, v := range visits {
		assert.Equal(t, i, v.Index)
		got = append(got, v.Entity.Attrs().Handle)
	}
	assert.Equal(t, []string{"1", "4", "6", "3"}, got)
	assert.Equal(t, []string{"OUTER", "INNER"}, visits[2].Blocks)
	assert.Equal(t, "A", visits[2].Layer, "layer 0 inherits through nested inserts")
	assert.Equal(t, "B", visits[1].Layer)
}

func TestWalkerInsertAnchors(t *testing.T) {
	d := newDrawing(&drawing.Insert{Common: common("1", "SIGNS"), Name: "S"})
	d.AddBlock(&drawing.Block{Name: "S", Entities: []drawing.Entity{point("2", "0", 0, 0)}})

	visits := collect(t, NewWalker(nil, true), d)
	require.Len(t, visits, 2)
	assert.True(t, visits[0].Anchor)
	assert.Equal(t, "1", visits[0].Entity.Attrs().Handle)
	assert.False(t, visits[1].Anchor)
}

func TestWalkerFiltersBlockContents(t *testing.T) {
	d := newDrawing(&drawing.Insert{Common: common("1", "SIGNS"), Name: "S"})
	d.AddBlock(&drawing.Block{Name: "S", Entities: []drawing.Entity{
		point("2", "0", 0, 0),
		point("3", "OTHER", 0, 0),
		point("4", "worthless_object", 0, 0),
	}})

	visits := collect(t, NewWalker([]string{"SIGNS"}, false), d)
	var got []string
	for _, v := range visits {
		got = append(got, v.Entity.Attrs().Handle)
	}
	assert.Equal(t, []string{"2", "4"}, got)
}

func TestWalkerMissingBlock(t *testing.T) {
	d := newDrawing(&drawing.Insert{Common: common("1", "A"), Name: "GONE"})
	visits := collect(t, NewWalker(nil, false), d)
	require.Len(t, visits, 1)
	var missing *ErrMissingBlock
	require.True(t, errors.As(visits[0].Err, &missing))
	assert.Equal(t, "GONE", missing.Name)
}

func TestWalkerSiblingInsertsAreNotCycles(t *testing.T) {
	d := newDrawing(
		&drawing.Insert{Common: common("1", "A"), Name: "S"},
		&drawing.Insert{Common: common("2", "A"), Name: "S"},
	)
	d.AddBlock(&drawing.Block{Name: "S", Entities: []drawing.Entity{
		&drawing.Insert{Common: common("3", "0"), Name: "T"},
		&drawing.Insert{Common: common("4", "0"), Name: "T"},
	}})
	d.AddBlock(&drawing.Block{Name: "T", Entities: []drawing.Entity{point("5", "0", 0, 0)}})

	visits := collect(t, NewWalker(nil, false), d)
	assert.Len(t, visits, 4)
}

func TestWalkerSelfInsert(t *testing.T) {
	d := newDrawing(&drawing.Insert{Common: common("1", "A"), Name: "LOOP"})
	d.AddBlock(&drawing.Block{Name: "LOOP", Entities: []drawing.Entity{
		point("2", "0", 0, 0),
		&drawing.Insert{Common: common("3", "0"), Name: "LOOP"},
	}})

	err := NewWalker(nil, false).Walk(d, func(Visit) error { return nil })
	var cyc *ErrCyclicBlock
	require.True(t, errors.As(err, &cyc), "error = %v", err)
	assert.Equal(t, []string{"LOOP", "LOOP"}, cyc.Chain)
	assert.Equal(t, "cyclic block reference: LOOP -> LOOP", cyc.Error())
}

func TestWalkerStopsOnVisitorError(t *testing.T) {
	d := newDrawing(point("1", "A", 0, 0), point("2", "A", 0, 0))
	stop := errors.New("stop")
	n := 0
	err := NewWalker(nil, false).Walk(d, func(Visit) error {
		n++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, n)
}
