package cadgeo

import (
	"strings"

	"github.com/beetlebugorg/cadgeo/pkg/drawing"
)

// Visit is one entity reached by a Walker, with its block context
// resolved.
type Visit struct {
	// Index is the position of the visit in walk order.
	Index int

	// Entity is the source entity. For an anchor visit it is the insert.
	Entity drawing.Entity

	// Layer is the effective layer: entities on layer "0" inside a block
	// take the layer of the insert that places them.
	Layer string

	// Color is the effective ACI color; BYBLOCK entities take the color
	// of the insert that places them. Nil means BYLAYER.
	Color *int

	// Blocks lists the names of the enclosing blocks, outermost first.
	Blocks []string

	// Anchor marks the visit of an insert's own insertion point.
	Anchor bool

	// Err is set when the entity cannot be expanded, such as an insert of
	// an undefined block. The visit is still delivered so it can be
	// counted.
	Err error

	xf transform
}

// Walker traverses a drawing, expanding block inserts in place and
// filtering by layer.
type Walker struct {
	allowed       map[string]bool
	insertAnchors bool
}

// NewWalker returns a walker admitting the given layers. An empty list
// admits every layer. With insertAnchors set, every insert is also
// visited as a point before its block contents.
func NewWalker(allowedLayers []string, insertAnchors bool) *Walker {
	w := &Walker{insertAnchors: insertAnchors}
	if len(allowedLayers) > 0 {
		w.allowed = make(map[string]bool, len(allowedLayers))
		for _, l := range allowedLayers {
			w.allowed[strings.ToUpper(strings.TrimSpace(l))] = true
		}
	}
	return w
}

// Admits reports whether entities on layer pass the filter. The sentinel
// layer is always admitted.
func (w *Walker) Admits(layer string) bool {
	if w.allowed == nil || strings.EqualFold(layer, SentinelLayer) {
		return true
	}
	return w.allowed[strings.ToUpper(strings.TrimSpace(layer))]
}

// frame is one level of the expansion stack.
type frame struct {
	entities []drawing.Entity
	next     int
	xf       transform
	layer    string
	color    *int
	key      string
	blocks   []string
}

// Walk calls visit for every admitted entity of d in drawing order, with
// inserts replaced by their block contents. It returns an
// *ErrCyclicBlock when a block inserts itself, or the first error
// returned by visit.
func (w *Walker) Walk(d *drawing.Drawing, visit func(Visit) error) error {
	stack := []*frame{{entities: d.Entities, xf: identity}}
	expanding := make(map[string]bool)
	index := 0

	emit := func(v Visit) error {
		v.Index = index
		index++
		return visit(v)
	}

	for len(stack) > 0 {
		top := stack[len(stack)-1]
		if top.next >= len(top.entities) {
			stack = stack[:len(stack)-1]
			delete(expanding, top.key)
			continue
		}
		e := top.entities[top.next]
		top.next++

		layer, color := top.resolve(e.Attrs())
		v := Visit{Entity: e, Layer: layer, Color: color, Blocks: top.blocks, xf: top.xf}

		ins, ok := e.(*drawing.Insert)
		if !ok {
			if w.Admits(layer) {
				if err := emit(v); err != nil {
					return err
				}
			}
			continue
		}

		if w.insertAnchors && w.Admits(layer) {
			anchor := v
			anchor.Anchor = true
			if err := emit(anchor); err != nil {
				return err
			}
		}

		block := d.Block(ins.Name)
		if block == nil {
			if w.Admits(layer) {
				v.Err = &ErrMissingBlock{Handle: ins.Handle, Name: ins.Name}
				if err := emit(v); err != nil {
					return err
				}
			}
			continue
		}

		key := strings.ToUpper(strings.TrimSpace(block.Name))
		chain := append(append([]string(nil), top.blocks...), block.Name)
		if expanding[key] {
			return &ErrCyclicBlock{Chain: chain}
		}
		expanding[key] = true
		stack = append(stack, &frame{
			entities: block.Entities,
			xf:       insertTransform(ins, block.Base).then(top.xf),
			layer:    layer,
			color:    color,
			key:      key,
			blocks:   chain,
		})
	}
	return nil
}

// resolve applies block inheritance to an entity's layer and color.
func (f *frame) resolve(c *drawing.Common) (string, *int) {
	layer, color := c.Layer, c.Color
	if f.key == "" {
		return layer, color
	}
	if layer == "0" || layer == "" {
		layer = f.layer
	}
	if color != nil && *color == drawing.ColorByBlock && f.color != nil {
		color = f.color
	}
	return layer, color
}
