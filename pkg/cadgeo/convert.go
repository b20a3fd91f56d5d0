package cadgeo

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/beetlebugorg/cadgeo/internal/crs"
	"github.com/beetlebugorg/cadgeo/internal/linref"
	"github.com/beetlebugorg/cadgeo/pkg/drawing"
	"github.com/google/uuid"
	"github.com/paulmach/orb"
)

// Converter turns drawings into features. A Converter holds no per-run
// state and may be reused and shared.
type Converter struct {
	cfg    Config
	opts   Options
	reproj crs.Reprojector
	walker *Walker
}

// NewConverter validates cfg and builds the source CRS reprojector. An
// unknown CRS is reported as *ErrUnknownCRS.
func NewConverter(cfg Config, opts Options) (*Converter, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	reproj, err := crs.New(cfg.SourceCRS)
	if err != nil {
		return nil, err
	}
	return &Converter{
		cfg:    cfg,
		opts:   opts,
		reproj: reproj,
		walker: NewWalker(cfg.AllowedLayers, cfg.InsertAnchors),
	}, nil
}

// Config returns the configuration in effect, defaults applied.
func (c *Converter) Config() Config { return c.cfg }

// outcome is the per-entity result: a feature, or the reason there is
// none.
type outcome struct {
	feature *Feature
	record  Record
	err     error
}

// Convert converts every admitted entity of d.
//
// The only errors returned are run-level: *ErrCyclicBlock. Entities that
// cannot be converted are skipped and counted in the summary; a missing
// centerline only drops the chainage property.
func (c *Converter) Convert(d *drawing.Drawing) (*Result, error) {
	runID := uuid.New()
	log := c.opts.logger().With("run", runID.String())
	log.Info("conversion started", "entities", len(d.Entities), "blocks", len(d.Blocks), "crs", c.reproj.ID())

	summary := Summary{RunID: runID, SkipReasons: make(map[SkipReason]int)}

	// Phase 1: the centerline must be complete before any chainage.
	norm := &normalizer{reproj: c.reproj, tol: c.cfg.CurveTolerance}
	if c.cfg.CenterlineLayer != "" {
		line, err := c.buildCenterline(d)
		var cycle *ErrCyclicBlock
		switch {
		case errors.As(err, &cycle):
			log.Error("conversion failed", "error", err)
			return nil, err
		case err != nil:
			summary.CenterlineError = err.Error()
			log.Warn("centerline unavailable, chainage disabled", "layer", c.cfg.CenterlineLayer, "error", err)
		default:
			summary.Centerline = true
			summary.CenterlineLength = line.Length()
			norm.chainage = linref.NewCalculator(line, c.cfg.Reverse, c.cfg.TangentDelta, c.cfg.Labels)
			log.Info("centerline built", "layer", c.cfg.CenterlineLayer, "length", line.Length(), "vertices", len(line.Path()))
		}
	}

	// Phase 2: expand blocks and filter layers.
	var visits []Visit
	if err := c.walker.Walk(d, func(v Visit) error {
		visits = append(visits, v)
		return nil
	}); err != nil {
		log.Error("conversion failed", "error", err)
		return nil, err
	}

	// Phase 3: normalize, index-stable.
	outcomes := c.normalizeAll(visits, norm)

	// Phase 4: ordered fan-in.
	result := &Result{}
	if c.cfg.Schema != nil {
		result.columns = c.cfg.Schema.ColumnNames()
		result.records = make([]Record, 0, len(visits))
	}
	for i, o := range outcomes {
		if o.err != nil {
			reason := reasonFor(o.err)
			summary.Skipped++
			summary.SkipReasons[reason]++
			log.Debug("entity skipped", "handle", visits[i].Entity.Attrs().Handle, "layer", visits[i].Layer, "reason", reason, "error", o.err)
			continue
		}
		result.features = append(result.features, o.feature)
		switch o.feature.geometry.Type {
		case GeometryTypePoint:
			result.points = append(result.points, o.feature)
		case GeometryTypeLineString:
			result.lineStrings = append(result.lineStrings, o.feature)
		}
		if o.record != nil {
			result.records = append(result.records, o.record)
		}
	}

	summary.Visited = len(visits)
	summary.Points = len(result.points)
	summary.LineStrings = len(result.lineStrings)
	summary.Records = len(result.records)
	result.summary = summary
	result.spatialIndex, result.bounds = buildSpatialIndex(result.features)

	log.Info("conversion finished",
		"points", summary.Points,
		"linestrings", summary.LineStrings,
		"records", summary.Records,
		"skipped", summary.Skipped,
		"chainage", summary.Centerline)
	return result, nil
}

// normalizeAll converts visits with a worker pool. outcomes[i] belongs to
// visits[i] whatever the worker count.
func (c *Converter) normalizeAll(visits []Visit, norm *normalizer) []outcome {
	outcomes := make([]outcome, len(visits))
	if len(visits) == 0 {
		return outcomes
	}

	workers := c.opts.workers(len(visits))
	if workers == 1 {
		for i, v := range visits {
			outcomes[i] = c.process(v, norm)
			if c.opts.Progress != nil {
				c.opts.Progress(i+1, len(visits))
			}
		}
		return outcomes
	}

	type indexed struct {
		index int
		outcome
	}

	jobs := make(chan int, len(visits))
	results := make(chan indexed, len(visits))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for index := range jobs {
				results <- indexed{index: index, outcome: c.process(visits[index], norm)}
			}
		}()
	}

	for i := range visits {
		jobs <- i
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	done := 0
	for r := range results {
		done++
		if c.opts.Progress != nil {
			c.opts.Progress(done, len(visits))
		}
		outcomes[r.index] = r.outcome
	}
	return outcomes
}

// process converts one visit and projects its record.
func (c *Converter) process(v Visit, norm *normalizer) outcome {
	f, err := norm.normalize(v)
	if err != nil {
		return outcome{err: err}
	}
	o := outcome{feature: f}
	if c.cfg.Schema != nil {
		// Raw layer and color are the effective values after block
		// inheritance, matching the feature.
		raw := drawing.Attributes(v.Entity)
		raw["layer"] = v.Layer
		if v.Color != nil {
			raw["color"] = *v.Color
		} else {
			delete(raw, "color")
		}
		o.record = c.cfg.Schema.project(raw, f, c.cfg.TargetSRID)
	}
	return o
}

// buildCenterline merges the line entities on the centerline layer. The
// layer filter does not apply; block contents count.
func (c *Converter) buildCenterline(d *drawing.Drawing) (*linref.Centerline, error) {
	var fragments []orb.LineString
	err := NewWalker(nil, false).Walk(d, func(v Visit) error {
		if v.Err != nil || !strings.EqualFold(v.Layer, c.cfg.CenterlineLayer) {
			return nil
		}
		var pts []drawing.Vec
		switch e := v.Entity.(type) {
		case *drawing.Line:
			pts = []drawing.Vec{e.Start, e.End}
		case *drawing.LWPolyline:
			pts = flattenVertices(e.Vertices, e.Closed, c.cfg.CurveTolerance)
		case *drawing.Polyline:
			pts = flattenVertices(e.Vertices, e.Closed, c.cfg.CurveTolerance)
		default:
			return nil
		}
		ls := make(orb.LineString, len(pts))
		for i, p := range pts {
			p = v.xf.apply(p)
			ls[i] = orb.Point{p.X, p.Y}
		}
		fragments = append(fragments, ls)
		return nil
	})
	if err != nil {
		return nil, err
	}
	line, err := linref.Merge(fragments, c.cfg.SnapTolerance)
	if err != nil {
		return nil, fmt.Errorf("layer %s: %w", c.cfg.CenterlineLayer, err)
	}
	return line, nil
}

// ConvertFile parses a drawing file and converts it.
func (c *Converter) ConvertFile(filename string) (*Result, error) {
	d, err := NewParser().Parse(filename)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}
	return c.Convert(d)
}
