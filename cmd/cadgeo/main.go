// Command cadgeo converts a CAD drawing (DXF or JSON dump) into GeoJSON
// feature collections and, with a schema, output records.
//
// Usage:
//
//	cadgeo -config cadgeo.yaml -points points.geojson -lines lines.geojson site.dxf
//	cadgeo -crs EPSG:5186 -centerline CL -records rows.msgpack site.dxf
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/beetlebugorg/cadgeo/pkg/cadgeo"
	"github.com/vmihailenco/msgpack/v5"
)

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("cadgeo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		configPath = fs.String("config", "", "YAML configuration file")
		crsID      = fs.String("crs", "", "source CRS, overrides the config (e.g. EPSG:5186, local-planar)")
		centerline = fs.String("centerline", "", "centerline layer, overrides the config")
		reverse    = fs.Bool("reverse", false, "measure stations from the end of the centerline")
		layers     = fs.String("layers", "", "comma-separated allowed layers, overrides the config")
		schemaPath = fs.String("schema", "", "column schema file, overrides the config")
		pointsOut  = fs.String("points", "", "write Point features as GeoJSON to this file")
		linesOut   = fs.String("lines", "", "write LineString features as GeoJSON to this file")
		recordsOut = fs.String("records", "", "write records to this file (.json or .msgpack)")
		workers    = fs.Int("workers", 0, "worker goroutines (0 = number of CPUs, 1 = serial)")
		verbose    = fs.Bool("v", false, "log skipped entities")
	)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return fmt.Errorf("expected one drawing file, got %d", fs.NArg())
	}
	input := fs.Arg(0)

	cfg := cadgeo.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = cadgeo.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *crsID != "" {
		cfg.SourceCRS = *crsID
	}
	if *centerline != "" {
		cfg.CenterlineLayer = *centerline
	}
	if *reverse {
		cfg.Reverse = true
	}
	if *layers != "" {
		cfg.AllowedLayers = splitList(*layers)
	}
	if *schemaPath != "" {
		schema, err := cadgeo.LoadSchema(*schemaPath)
		if err != nil {
			return err
		}
		cfg.Schema = schema
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	opts := cadgeo.DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	if *workers == 1 {
		opts.Parallel = false
	} else if *workers > 1 {
		opts.Workers = *workers
	}

	conv, err := cadgeo.NewConverter(cfg, opts)
	if err != nil {
		return err
	}
	result, err := conv.ConvertFile(input)
	if err != nil {
		return err
	}

	if *pointsOut != "" {
		if err := writeJSON(*pointsOut, result.PointCollection()); err != nil {
			return err
		}
	}
	if *linesOut != "" {
		if err := writeJSON(*linesOut, result.LineStringCollection()); err != nil {
			return err
		}
	}
	if *recordsOut != "" {
		if cfg.Schema == nil {
			return errors.New("-records needs a schema (-schema or the config's schema key)")
		}
		if err := writeRecords(*recordsOut, result.Records()); err != nil {
			return err
		}
	}

	printSummary(stdout, result.Summary())
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeJSON(path string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return os.WriteFile(path, data, 0o644)
}

// writeRecords picks the encoding from the file extension.
func writeRecords(path string, records []cadgeo.Record) error {
	if records == nil {
		records = []cadgeo.Record{}
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".msgpack", ".mpk":
		data, err := msgpack.Marshal(records)
		if err != nil {
			return fmt.Errorf("encode %s: %w", path, err)
		}
		return os.WriteFile(path, data, 0o644)
	default:
		return writeJSON(path, records)
	}
}

func printSummary(w io.Writer, s cadgeo.Summary) {
	fmt.Fprintf(w, "Run: %s\n", s.RunID)
	fmt.Fprintf(w, "Points: %d\n", s.Points)
	fmt.Fprintf(w, "LineStrings: %d\n", s.LineStrings)
	fmt.Fprintf(w, "Records: %d\n", s.Records)
	fmt.Fprintf(w, "Skipped: %d\n", s.Skipped)
	for _, r := range s.Reasons() {
		fmt.Fprintf(w, "  %-20s %d\n", r, s.SkipReasons[r])
	}
	if s.Centerline {
		fmt.Fprintf(w, "Centerline: %.3f\n", s.CenterlineLength)
	} else if s.CenterlineError != "" {
		fmt.Fprintf(w, "Centerline: unavailable (%s)\n", s.CenterlineError)
	}
}
