package cadgeo

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/beetlebugorg/cadgeo/internal/linref"
	"gopkg.in/yaml.v3"
)

// SentinelLayer is always admitted by the layer filter, whatever the
// allowed layers are. Matching is case-insensitive.
const SentinelLayer = "worthless_object"

// Defaults for the numeric tolerances, in source CRS units.
const (
	DefaultCurveTolerance = 0.001
	DefaultTangentDelta   = linref.DefaultTangentDelta
	DefaultSnapTolerance  = linref.DefaultSnapTolerance
	DefaultTargetSRID     = 4326
)

// Config describes one conversion run. A Converter copies it on creation.
type Config struct {
	// SourceCRS names the CRS of the drawing coordinates, for example
	// "EPSG:5186" or "local-planar:127.0,37.5".
	SourceCRS string `yaml:"source_crs"`

	// TargetSRID is written into WKT columns as "SRID=<n>;".
	TargetSRID int `yaml:"target_srid"`

	// AllowedLayers restricts conversion to these layers. Empty admits all.
	AllowedLayers []string `yaml:"allowed_layers"`

	// CenterlineLayer names the layer whose lines form the reference path.
	// Empty disables chainage.
	CenterlineLayer string `yaml:"centerline_layer"`

	// Reverse measures stations from the end of the centerline.
	Reverse bool `yaml:"reverse"`

	// InsertAnchors also emits each block insert's anchor as a point.
	InsertAnchors bool `yaml:"insert_anchors"`

	CurveTolerance float64 `yaml:"curve_tolerance"`
	TangentDelta   float64 `yaml:"tangent_delta"`
	SnapTolerance  float64 `yaml:"snap_tolerance"`

	Labels Labels `yaml:"labels"`

	// SchemaPath is resolved relative to the config file by LoadConfig.
	SchemaPath string `yaml:"schema"`

	// Schema shapes Result.Records. Nil produces no records.
	Schema *Schema `yaml:"-"`
}

// Labels are the words used in chainage strings. Empty fields use the
// defaults (상행, 하행, 좌, 우, 중).
type Labels = linref.Labels

// DefaultLabels returns the default chainage labels.
func DefaultLabels() Labels {
	return linref.DefaultLabels()
}

// DefaultConfig returns a configuration for local-planar drawings with
// no layer filter, no centerline and no schema.
func DefaultConfig() Config {
	return Config{
		SourceCRS:      "local-planar",
		TargetSRID:     DefaultTargetSRID,
		CurveTolerance: DefaultCurveTolerance,
		TangentDelta:   DefaultTangentDelta,
		SnapTolerance:  DefaultSnapTolerance,
		Labels:         DefaultLabels(),
	}
}

// LoadConfig reads a YAML configuration file over DefaultConfig. A schema
// named by the file is loaded as well.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	if cfg.SchemaPath != "" {
		schemaPath := cfg.SchemaPath
		if !filepath.IsAbs(schemaPath) {
			schemaPath = filepath.Join(filepath.Dir(path), schemaPath)
		}
		schema, err := LoadSchema(schemaPath)
		if err != nil {
			return Config{}, err
		}
		cfg.Schema = schema
	}
	return cfg, nil
}

// ParseConfig decodes YAML configuration data over DefaultConfig. It does
// not load the schema file.
func ParseConfig(data []byte) (Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first invalid field. The source CRS is checked by
// NewConverter, not here.
func (c Config) Validate() error {
	if strings.TrimSpace(c.SourceCRS) == "" {
		return &ErrConfig{Field: "source_crs", Reason: "empty"}
	}
	if c.TargetSRID < 0 {
		return &ErrConfig{Field: "target_srid", Reason: "negative"}
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"curve_tolerance", c.CurveTolerance},
		{"tangent_delta", c.TangentDelta},
		{"snap_tolerance", c.SnapTolerance},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) || f.value < 0 {
			return &ErrConfig{Field: f.name, Reason: fmt.Sprintf("must be a finite non-negative number, got %v", f.value)}
		}
	}
	return nil
}

// withDefaults fills zero tolerances.
func (c Config) withDefaults() Config {
	if c.CurveTolerance == 0 {
		c.CurveTolerance = DefaultCurveTolerance
	}
	if c.TangentDelta == 0 {
		c.TangentDelta = DefaultTangentDelta
	}
	if c.SnapTolerance == 0 {
		c.SnapTolerance = DefaultSnapTolerance
	}
	if c.TargetSRID == 0 {
		c.TargetSRID = DefaultTargetSRID
	}
	c.AllowedLayers = append([]string(nil), c.AllowedLayers...)
	return c
}
