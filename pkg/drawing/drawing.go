// Package drawing defines the CAD drawing model consumed by cadgeo.
//
// A Drawing is a flat list of model-space entities plus a table of block
// definitions. Entities are a closed set of kinds (LINE, LWPOLYLINE, ARC,
// INSERT, ...); each kind is its own struct and all of them implement
// Entity. Code that needs per-kind behavior switches on the concrete type:
//
//	switch e := ent.(type) {
//	case *drawing.Line:
//	    ...
//	case *drawing.Insert:
//	    block := d.Block(e.Name)
//	}
//
// Coordinates are planar (x, y) pairs in the drawing's own reference system.
package drawing

import "strings"

// Kind identifies the entity type. Values use DXF entity names.
type Kind string

const (
	KindLine        Kind = "LINE"
	KindLWPolyline  Kind = "LWPOLYLINE"
	KindPolyline    Kind = "POLYLINE"
	KindCircle      Kind = "CIRCLE"
	KindText        Kind = "TEXT"
	KindMText       Kind = "MTEXT"
	KindPoint       Kind = "POINT"
	KindArc         Kind = "ARC"
	KindSpline      Kind = "SPLINE"
	KindEllipse     Kind = "ELLIPSE"
	KindInsert      Kind = "INSERT"
	KindUnsupported Kind = "UNSUPPORTED"
	KindInvalid     Kind = "INVALID"
)

// String returns the DXF name of the kind.
func (k Kind) String() string {
	return string(k)
}

// Drawing is a parsed CAD drawing.
type Drawing struct {
	// Entities are the model-space entities in file order.
	Entities []Entity

	// Blocks maps block names to definitions. Lookups through Block are
	// case-insensitive, matching DXF block name semantics.
	Blocks map[string]*Block

	// Version is the DXF $ACADVER value when known.
	Version string

	// Units is the DXF $INSUNITS code, 0 when unspecified.
	Units int
}

// Block is a reusable entity collection placed by Insert entities.
type Block struct {
	Name string

	// Base is the block's origin. Child coordinates are relative to it.
	Base Vec

	Entities []Entity
}

// New returns an empty drawing.
func New() *Drawing {
	return &Drawing{Blocks: make(map[string]*Block)}
}

// AddBlock registers a block definition, replacing any block with the
// same name.
func (d *Drawing) AddBlock(b *Block) {
	if d.Blocks == nil {
		d.Blocks = make(map[string]*Block)
	}
	d.Blocks[blockKey(b.Name)] = b
}

// Block returns the named block definition, or nil.
func (d *Drawing) Block(name string) *Block {
	if d.Blocks == nil {
		return nil
	}
	if b, ok := d.Blocks[blockKey(name)]; ok {
		return b
	}
	return nil
}

func blockKey(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}

// Vec is a planar coordinate pair.
type Vec struct {
	X, Y float64
}
