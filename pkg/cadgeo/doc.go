// Package cadgeo converts CAD drawings into geospatial features.
//
// A conversion walks the drawing's entities (expanding block inserts),
// turns each admitted entity into a Point or LineString in WGS84, and,
// when a centerline layer is configured, annotates point features with a
// chainage string such as "0+050.00/상행(좌)/5.0".
//
// # Basic Usage
//
//	d, err := cadgeo.NewParser().Parse("site.dxf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	cfg := cadgeo.DefaultConfig()
//	cfg.SourceCRS = "EPSG:5186"
//	cfg.CenterlineLayer = "CL"
//
//	conv, err := cadgeo.NewConverter(cfg, cadgeo.DefaultOptions())
//	if err != nil {
//	    log.Fatal(err) // unknown CRS, invalid config
//	}
//	result, err := conv.Convert(d)
//	if err != nil {
//	    log.Fatal(err) // cyclic block references
//	}
//
//	s := result.Summary()
//	fmt.Printf("%d points, %d lines, %d skipped\n", s.Points, s.LineStrings, s.Skipped)
//
// # Error Handling
//
// Errors come in three tiers:
//
//   - Run-level: an unknown source CRS (NewConverter) or a block that
//     inserts itself (Convert, *ErrCyclicBlock). No output is produced.
//   - Entity-level: an entity that cannot be converted (unsupported kind,
//     too few vertices, coordinates outside the CRS) is skipped and counted
//     in Summary.Skipped and Summary.SkipReasons.
//   - Degraded: no centerline could be built, or one point could not be
//     measured. The chainage property is omitted; nothing else changes.
//
// # Output
//
// Result.PointCollection and Result.LineStringCollection return GeoJSON
// feature collections ready for a tiling tool. When Config.Schema is set,
// Result.Records holds one row per converted entity, shaped by the schema.
//
// # Concurrency
//
// Entities are normalized by a worker pool (Options.Parallel). Output
// order always follows drawing order, whatever the worker count.
package cadgeo
