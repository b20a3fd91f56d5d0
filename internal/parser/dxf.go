package parser

// dxf.go - ASCII DXF reader
// A DXF file is a sequence of (group code, value) line pairs. Group code 0
// starts a new object; SECTION/ENDSEC bracket the HEADER, BLOCKS and
// ENTITIES sections read here. All other sections are skipped.

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/beetlebugorg/cadgeo/pkg/drawing"
)

const binaryDXFSentinel = "AutoCAD Binary DXF"

// group is one (code, value) pair.
type group struct {
	code  int
	value string
	line  int // line number of the code line
}

// groupReader reads group pairs with one pair of lookahead.
type groupReader struct {
	sc     *bufio.Scanner
	line   int
	peeked *group
}

func newGroupReader(r io.Reader) *groupReader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	return &groupReader{sc: sc}
}

func (r *groupReader) readLine() (string, bool) {
	if !r.sc.Scan() {
		return "", false
	}
	r.line++
	return strings.TrimRight(r.sc.Text(), "\r"), true
}

// next returns the next group, or io.EOF.
func (r *groupReader) next() (group, error) {
	if r.peeked != nil {
		g := *r.peeked
		r.peeked = nil
		return g, nil
	}
	codeLine, ok := r.readLine()
	if !ok {
		if err := r.sc.Err(); err != nil {
			return group{}, fmt.Errorf("failed to read input: %w", err)
		}
		return group{}, io.EOF
	}
	line := r.line
	if r.line == 1 && strings.HasPrefix(codeLine, binaryDXFSentinel) {
		return group{}, &ErrUnsupportedFormat{Format: "binary dxf"}
	}
	code, err := strconv.Atoi(strings.TrimSpace(strings.TrimPrefix(codeLine, "\ufeff")))
	if err != nil {
		return group{}, &ErrSyntax{Line: line, Reason: fmt.Sprintf("invalid group code %q", codeLine)}
	}
	value, ok := r.readLine()
	if !ok {
		return group{}, &ErrSyntax{Line: line, Reason: fmt.Sprintf("group code %d has no value", code)}
	}
	return group{code: code, value: value, line: line}, nil
}

// unread pushes g back so the next call to next returns it.
func (r *groupReader) unread(g group) {
	r.peeked = &g
}

// isMarker reports whether g is a code 0 group with the given value.
func (g group) isMarker(value string) bool {
	return g.code == 0 && strings.EqualFold(strings.TrimSpace(g.value), value)
}

// readDXF parses an ASCII DXF document.
func readDXF(r io.Reader) (*drawing.Drawing, error) {
	gr := newGroupReader(r)
	d := drawing.New()

	for {
		g, err := gr.next()
		if err == io.EOF {
			// Tolerate files truncated after the last section.
			return d, nil
		}
		if err != nil {
			return nil, err
		}
		if g.code == 999 {
			continue
		}
		if g.isMarker("EOF") {
			return d, nil
		}
		if !g.isMarker("SECTION") {
			return nil, &ErrSyntax{Line: g.line, Reason: fmt.Sprintf("expected SECTION, got %d/%q", g.code, g.value)}
		}

		name, err := gr.next()
		if err != nil {
			return nil, eofAsSyntax(err, g.line, "section without name")
		}
		if name.code != 2 {
			return nil, &ErrSyntax{Line: name.line, Reason: "section name must use group code 2"}
		}

		switch strings.ToUpper(strings.TrimSpace(name.value)) {
		case "HEADER":
			err = readHeader(gr, d)
		case "BLOCKS":
			err = readBlocks(gr, d)
		case "ENTITIES":
			d.Entities, err = readEntityList(gr, "ENDSEC")
		default:
			err = skipSection(gr)
		}
		if err != nil {
			return nil, err
		}
	}
}

func eofAsSyntax(err error, line int, reason string) error {
	if err == io.EOF {
		return &ErrSyntax{Line: line, Reason: reason}
	}
	return err
}

func skipSection(gr *groupReader) error {
	for {
		g, err := gr.next()
		if err != nil {
			return eofAsSyntax(err, gr.line, "unterminated section")
		}
		if g.isMarker("ENDSEC") {
			return nil
		}
	}
}

// readHeader keeps $ACADVER and $INSUNITS.
func readHeader(gr *groupReader, d *drawing.Drawing) error {
	variable := ""
	for {
		g, err := gr.next()
		if err != nil {
			return eofAsSyntax(err, gr.line, "unterminated HEADER section")
		}
		switch {
		case g.isMarker("ENDSEC"):
			return nil
		case g.code == 9:
			variable = strings.ToUpper(strings.TrimSpace(g.value))
		case variable == "$ACADVER" && g.code == 1:
			d.Version = strings.TrimSpace(g.value)
		case variable == "$INSUNITS" && g.code == 70:
			if n, err := strconv.Atoi(strings.TrimSpace(g.value)); err == nil {
				d.Units = n
			}
		}
	}
}

// readBlocks reads BLOCK ... ENDBLK definitions until ENDSEC.
func readBlocks(gr *groupReader, d *drawing.Drawing) error {
	for {
		g, err := gr.next()
		if err != nil {
			return eofAsSyntax(err, gr.line, "unterminated BLOCKS section")
		}
		switch {
		case g.isMarker("ENDSEC"):
			return nil
		case g.isMarker("BLOCK"):
			rec, err := readRecord(gr, "BLOCK", g.line)
			if err != nil {
				return err
			}
			entities, err := readEntityList(gr, "ENDBLK")
			if err != nil {
				return err
			}
			// ENDBLK carries its own groups (handle, layer).
			if _, err := readRecord(gr, "ENDBLK", gr.line); err != nil {
				return err
			}
			name := rec.str(2, "")
			if name == "" {
				name = rec.str(3, "")
			}
			if name == "" {
				return &ErrSyntax{Line: g.line, Reason: "block without name"}
			}
			base, err := rec.vec(10, 20)
			if err != nil {
				return err
			}
			d.AddBlock(&drawing.Block{Name: name, Base: base, Entities: entities})
		case g.code == 999:
		default:
			return &ErrSyntax{Line: g.line, Reason: fmt.Sprintf("unexpected %d/%q in BLOCKS", g.code, g.value)}
		}
	}
}

// record is the list of groups following one code 0 marker.
type record struct {
	typ    string
	line   int
	groups []group
}

// readRecord collects groups up to (not including) the next code 0.
func readRecord(gr *groupReader, typ string, line int) (*record, error) {
	rec := &record{typ: strings.ToUpper(strings.TrimSpace(typ)), line: line}
	for {
		g, err := gr.next()
		if err == io.EOF {
			return rec, nil
		}
		if err != nil {
			return nil, err
		}
		if g.code == 0 {
			gr.unread(g)
			return rec, nil
		}
		if g.code == 999 {
			continue
		}
		rec.groups = append(rec.groups, g)
	}
}

// readEntityList reads entities until the terminator marker, which is
// consumed. POLYLINE records absorb their VERTEX and SEQEND records. A
// record with undecodable values becomes drawing.Invalid; only a broken
// group stream is an error.
func readEntityList(gr *groupReader, terminator string) ([]drawing.Entity, error) {
	var entities []drawing.Entity
	for {
		g, err := gr.next()
		if err != nil {
			return nil, eofAsSyntax(err, gr.line, "missing "+terminator)
		}
		if g.isMarker(terminator) {
			return entities, nil
		}
		if g.code != 0 {
			return nil, &ErrSyntax{Line: g.line, Reason: fmt.Sprintf("expected entity start, got group code %d", g.code)}
		}

		rec, err := readRecord(gr, g.value, g.line)
		if err != nil {
			return nil, err
		}

		switch rec.typ {
		case "POLYLINE":
			vertices, err := readVertices(gr)
			if err != nil {
				return nil, err
			}
			e, err := decodePolyline(rec, vertices)
			if err != nil {
				e = invalidEntity(rec, err)
			}
			entities = append(entities, e)
			continue
		case "ATTRIB", "ATTDEF", "SEQEND", "VERTEX":
			// Insert attributes and stray sub-records are not drawn geometry.
			continue
		}

		e, err := decodeEntity(rec)
		if err != nil {
			e = invalidEntity(rec, err)
		}
		entities = append(entities, e)
	}
}

// invalidEntity keeps a record whose groups could not be decoded so that
// the rest of the drawing still converts.
func invalidEntity(rec *record, err error) drawing.Entity {
	c, _ := rec.common()
	return &drawing.Invalid{Common: c, Type: rec.typ, Err: err}
}

// readVertices reads VERTEX records up to and including SEQEND. Some
// writers omit SEQEND; any other entity then ends the sequence.
func readVertices(gr *groupReader) ([]*record, error) {
	var vertices []*record
	for {
		g, err := gr.next()
		if err == io.EOF {
			return vertices, nil
		}
		if err != nil {
			return nil, err
		}
		if g.code != 0 {
			return nil, &ErrSyntax{Line: g.line, Reason: "expected VERTEX or SEQEND"}
		}
		switch {
		case g.isMarker("VERTEX"):
			rec, err := readRecord(gr, g.value, g.line)
			if err != nil {
				return nil, err
			}
			vertices = append(vertices, rec)
		case g.isMarker("SEQEND"):
			if _, err := readRecord(gr, g.value, g.line); err != nil {
				return nil, err
			}
			return vertices, nil
		default:
			gr.unread(g)
			return vertices, nil
		}
	}
}
