package cadgeo

import (
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb/encoding/wkt"
	"gopkg.in/yaml.v3"
)

// Source selects where a column value comes from.
type Source string

const (
	// SourceRaw reads an attribute of the source entity.
	SourceRaw Source = "raw"
	// SourceComputed derives the value from the converted feature.
	SourceComputed Source = "computed"
)

// Method names a computed column.
type Method string

const (
	MethodChainage Method = "chainage"
	MethodWKT      Method = "wkt"
)

// Rule is how one column is filled.
type Rule struct {
	Source    Source `yaml:"source"`
	Attribute string `yaml:"attribute"`
	Method    Method `yaml:"method"`
}

// Column is a named rule. Columns keep their declared order.
type Column struct {
	Name string
	Rule Rule
}

// Schema maps converted entities to output records.
type Schema struct {
	Columns []Column
}

// Record is one output row. Every schema column is present; a column
// without data holds nil.
type Record map[string]interface{}

// ColumnNames returns the column names in declared order.
func (s *Schema) ColumnNames() []string {
	names := make([]string, len(s.Columns))
	for i, c := range s.Columns {
		names[i] = c.Name
	}
	return names
}

// LoadSchema reads a schema document from path.
func LoadSchema(path string) (*Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	s, err := ParseSchema(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// ParseSchema decodes a YAML (or JSON) schema document. The columns are
// read from a top-level "columns" mapping, or from the root mapping when
// that key is absent:
//
//	columns:
//	  id:       {source: raw, attribute: handle}
//	  station:  {source: computed, method: chainage}
//	  geom:     {source: computed, method: wkt}
func ParseSchema(data []byte) (*Schema, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, &ErrConfig{Field: "schema", Reason: "empty document"}
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &ErrConfig{Field: "schema", Reason: "not a mapping"}
	}
	if cols := mappingValue(root, "columns"); cols != nil {
		root = cols
		if root.Kind != yaml.MappingNode {
			return nil, &ErrConfig{Field: "schema.columns", Reason: "not a mapping"}
		}
	}

	s := &Schema{}
	seen := make(map[string]bool)
	for i := 0; i+1 < len(root.Content); i += 2 {
		name := root.Content[i].Value
		if name == "" {
			return nil, &ErrConfig{Field: "schema", Reason: fmt.Sprintf("line %d: empty column name", root.Content[i].Line)}
		}
		if seen[name] {
			return nil, &ErrConfig{Field: "schema." + name, Reason: "duplicate column"}
		}
		seen[name] = true

		var rule Rule
		if err := root.Content[i+1].Decode(&rule); err != nil {
			return nil, fmt.Errorf("column %s: %w", name, err)
		}
		rule, err := rule.normalize()
		if err != nil {
			return nil, &ErrConfig{Field: "schema." + name, Reason: err.Error()}
		}
		s.Columns = append(s.Columns, Column{Name: name, Rule: rule})
	}
	if len(s.Columns) == 0 {
		return nil, &ErrConfig{Field: "schema", Reason: "no columns"}
	}
	return s, nil
}

func mappingValue(m *yaml.Node, key string) *yaml.Node {
	for i := 0; i+1 < len(m.Content); i += 2 {
		if m.Content[i].Value == key {
			return m.Content[i+1]
		}
	}
	return nil
}

// normalize canonicalizes source and method spellings.
func (r Rule) normalize() (Rule, error) {
	switch strings.ToLower(strings.TrimSpace(string(r.Source))) {
	case "raw", "raw-attribute", "raw_attribute", "attribute":
		r.Source = SourceRaw
		if strings.TrimSpace(r.Attribute) == "" {
			return r, fmt.Errorf("raw column needs an attribute")
		}
		r.Method = ""
	case "computed":
		r.Source = SourceComputed
		switch strings.ToLower(strings.TrimSpace(string(r.Method))) {
		case "chainage":
			r.Method = MethodChainage
		case "wkt", "well-known-text", "well_known_text":
			r.Method = MethodWKT
		default:
			return r, fmt.Errorf("unknown method %q", r.Method)
		}
		r.Attribute = ""
	default:
		return r, fmt.Errorf("unknown source %q", r.Source)
	}
	return r, nil
}

// project builds the record of one converted entity. raw holds the
// entity's attributes as returned by drawing.Attributes.
func (s *Schema) project(raw map[string]interface{}, f *Feature, srid int) Record {
	rec := make(Record, len(s.Columns))
	for _, c := range s.Columns {
		rec[c.Name] = c.Rule.value(raw, f, srid)
	}
	return rec
}

func (r Rule) value(raw map[string]interface{}, f *Feature, srid int) interface{} {
	switch r.Source {
	case SourceRaw:
		if v, ok := raw[r.Attribute]; ok {
			return v
		}
		return nil
	case SourceComputed:
		if f == nil {
			return nil
		}
		switch r.Method {
		case MethodChainage:
			if ch, ok := f.Chainage(); ok {
				return ch
			}
			return nil
		case MethodWKT:
			if text := WKT(f.Geometry(), srid); text != "" {
				return text
			}
			return nil
		}
	}
	return nil
}

// WKT renders g as extended well-known text, "SRID=4326;POINT(lon lat)".
// An srid <= 0 omits the prefix. An empty geometry renders as "".
func WKT(g Geometry, srid int) string {
	og := g.Orb()
	if og == nil {
		return ""
	}
	text := wkt.MarshalString(og)
	if srid <= 0 {
		return text
	}
	return fmt.Sprintf("SRID=%d;%s", srid, text)
}
