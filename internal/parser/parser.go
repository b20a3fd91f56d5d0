package parser

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/beetlebugorg/cadgeo/pkg/drawing"
)

// Format identifies the encoding of a drawing file.
type Format int

const (
	// FormatAuto selects the format from the file extension, then content.
	FormatAuto Format = iota

	// FormatDXF is ASCII DXF (group code / value line pairs).
	FormatDXF

	// FormatJSON is a JSON entity dump with a "type" tag per entity.
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatAuto:
		return "auto"
	case FormatDXF:
		return "dxf"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// Parser reads CAD drawings into the drawing model.
type Parser interface {
	// Parse reads a drawing file with default options.
	Parse(filename string) (*drawing.Drawing, error)

	// ParseWithOptions parses with custom options
	ParseWithOptions(filename string, opts ParseOptions) (*drawing.Drawing, error)

	// ParseReader parses a drawing from r. FormatAuto sniffs the content.
	ParseReader(r io.Reader, opts ParseOptions) (*drawing.Drawing, error)

	// SupportedEntityTypes returns the DXF entity types the parser decodes
	SupportedEntityTypes() []string
}

// ParseOptions configures parsing behavior
type ParseOptions struct {
	// Format forces a reader. Default: FormatAuto
	Format Format

	// SkipUnknownEntities: if true, entity types the model does not cover
	// are dropped. Default: false (kept as drawing.Unsupported so they can
	// be counted)
	SkipUnknownEntities bool

	// ValidateGeometry: if true, reject drawings with non-finite
	// coordinates or inserts of undefined blocks
	// Default: false
	ValidateGeometry bool

	// EntityTypeFilter: if non-empty, only keep these entity types
	// (DXF names, case-insensitive). Block contents are filtered too.
	EntityTypeFilter []string
}

// DefaultParseOptions returns parse options with defaults
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		Format:              FormatAuto,
		SkipUnknownEntities: false,
		ValidateGeometry:    false,
		EntityTypeFilter:    nil,
	}
}

// defaultParser implements the Parser interface
type defaultParser struct {
}

// NewParser creates a new drawing parser
func NewParser() Parser {
	return &defaultParser{}
}

// Parse reads a drawing file with default options
func (p *defaultParser) Parse(filename string) (*drawing.Drawing, error) {
	return p.ParseWithOptions(filename, DefaultParseOptions())
}

// ParseWithOptions parses with custom options
func (p *defaultParser) ParseWithOptions(filename string, opts ParseOptions) (*drawing.Drawing, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	if opts.Format == FormatAuto {
		switch strings.ToLower(filepath.Ext(filename)) {
		case ".dxf":
			opts.Format = FormatDXF
		case ".json":
			opts.Format = FormatJSON
		}
	}

	d, err := p.ParseReader(f, opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filepath.Base(filename), err)
	}
	return d, nil
}

// ParseReader parses a drawing from r
func (p *defaultParser) ParseReader(r io.Reader, opts ParseOptions) (*drawing.Drawing, error) {
	br := bufio.NewReader(r)

	format := opts.Format
	if format == FormatAuto {
		var err error
		if format, err = sniff(br); err != nil {
			return nil, err
		}
	}

	var (
		d   *drawing.Drawing
		err error
	)
	switch format {
	case FormatDXF:
		d, err = readDXF(br)
	case FormatJSON:
		d, err = readJSON(br)
	default:
		return nil, &ErrUnsupportedFormat{Format: format.String()}
	}
	if err != nil {
		return nil, err
	}

	applyFilters(d, opts)

	if opts.ValidateGeometry {
		if err := ValidateDrawing(d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// SupportedEntityTypes returns the DXF entity types the parser decodes
func (p *defaultParser) SupportedEntityTypes() []string {
	return []string{
		string(drawing.KindLine),
		string(drawing.KindLWPolyline),
		string(drawing.KindPolyline),
		string(drawing.KindCircle),
		string(drawing.KindArc),
		string(drawing.KindText),
		string(drawing.KindMText),
		string(drawing.KindPoint),
		string(drawing.KindSpline),
		string(drawing.KindEllipse),
		string(drawing.KindInsert),
	}
}

// sniff guesses the format from the first non-blank bytes.
func sniff(br *bufio.Reader) (Format, error) {
	head, err := br.Peek(64)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return FormatAuto, fmt.Errorf("failed to read input: %w", err)
	}
	if bytes.HasPrefix(head, []byte(binaryDXFSentinel)) {
		return FormatAuto, &ErrUnsupportedFormat{Format: "binary dxf"}
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n\ufeff")
	if len(trimmed) == 0 {
		return FormatAuto, &ErrSyntax{Reason: "empty input"}
	}
	switch trimmed[0] {
	case '{':
		return FormatJSON, nil
	case '0', '9':
		return FormatDXF, nil
	}
	return FormatAuto, &ErrUnsupportedFormat{Format: "unrecognized content"}
}

// applyFilters drops entities excluded by the options.
func applyFilters(d *drawing.Drawing, opts ParseOptions) {
	if !opts.SkipUnknownEntities && len(opts.EntityTypeFilter) == 0 {
		return
	}
	keep := func(e drawing.Entity) bool {
		if opts.SkipUnknownEntities && e.Kind() == drawing.KindUnsupported {
			return false
		}
		if len(opts.EntityTypeFilter) > 0 && !contains(opts.EntityTypeFilter, entityType(e)) {
			return false
		}
		return true
	}
	d.Entities = filterEntities(d.Entities, keep)
	for _, b := range d.Blocks {
		b.Entities = filterEntities(b.Entities, keep)
	}
}

// entityType is the DXF type name of e, including the source type of
// entities the model does not represent.
func entityType(e drawing.Entity) string {
	switch e := e.(type) {
	case *drawing.Unsupported:
		return e.Type
	case *drawing.Invalid:
		return e.Type
	}
	return string(e.Kind())
}

func filterEntities(in []drawing.Entity, keep func(drawing.Entity) bool) []drawing.Entity {
	out := in[:0]
	for _, e := range in {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// contains checks if a string slice contains a value (case-insensitive)
func contains(slice []string, value string) bool {
	for _, s := range slice {
		if strings.EqualFold(s, value) {
			return true
		}
	}
	return false
}
