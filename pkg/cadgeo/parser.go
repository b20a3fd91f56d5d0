package cadgeo

import (
	"io"

	"github.com/beetlebugorg/cadgeo/internal/parser"
	"github.com/beetlebugorg/cadgeo/pkg/drawing"
)

// Parser reads CAD drawings.
//
// Create a parser with NewParser and use Parse or ParseWithOptions to read
// drawings.
type Parser interface {
	// Parse reads a drawing file.
	//
	// The reader is chosen by extension (.dxf, .json), falling back to
	// sniffing the content. Only ASCII DXF is supported.
	Parse(filename string) (*drawing.Drawing, error)

	// ParseWithOptions parses a drawing file with custom options.
	ParseWithOptions(filename string, opts ParseOptions) (*drawing.Drawing, error)

	// ParseReader parses a drawing from r.
	ParseReader(r io.Reader, opts ParseOptions) (*drawing.Drawing, error)
}

// Format selects a drawing reader.
type Format = parser.Format

const (
	FormatAuto = parser.FormatAuto
	FormatDXF  = parser.FormatDXF
	FormatJSON = parser.FormatJSON
)

// ParseOptions configures parsing behavior.
type ParseOptions struct {
	// Format forces a reader. FormatAuto picks one from the file name or
	// content.
	Format Format

	// SkipUnknownEntities drops entity types the model does not cover
	// instead of keeping them to be counted as skipped.
	SkipUnknownEntities bool

	// ValidateGeometry rejects drawings with non-finite coordinates or
	// inserts of undefined blocks.
	ValidateGeometry bool

	// EntityTypeFilter keeps only these DXF entity types.
	EntityTypeFilter []string
}

// DefaultParseOptions returns default options.
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		Format:              FormatAuto,
		SkipUnknownEntities: false,
		ValidateGeometry:    false,
		EntityTypeFilter:    nil,
	}
}

// NewParser creates a new drawing parser with default settings.
//
// Example:
//
//	parser := cadgeo.NewParser()
//	d, err := parser.Parse("site.dxf")
func NewParser() Parser {
	return &parserWrapper{
		internal: parser.NewParser(),
	}
}

// parserWrapper wraps the internal parser and converts options.
type parserWrapper struct {
	internal parser.Parser
}

func (p *parserWrapper) Parse(filename string) (*drawing.Drawing, error) {
	return p.internal.Parse(filename)
}

func (p *parserWrapper) ParseWithOptions(filename string, opts ParseOptions) (*drawing.Drawing, error) {
	return p.internal.ParseWithOptions(filename, opts.internal())
}

func (p *parserWrapper) ParseReader(r io.Reader, opts ParseOptions) (*drawing.Drawing, error) {
	return p.internal.ParseReader(r, opts.internal())
}

func (o ParseOptions) internal() parser.ParseOptions {
	return parser.ParseOptions{
		Format:              o.Format,
		SkipUnknownEntities: o.SkipUnknownEntities,
		ValidateGeometry:    o.ValidateGeometry,
		EntityTypeFilter:    o.EntityTypeFilter,
	}
}
