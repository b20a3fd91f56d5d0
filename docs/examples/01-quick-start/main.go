package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/cadgeo/pkg/cadgeo"
)

func main() {
	// Parse drawing file
	parser := cadgeo.NewParser()
	d, err := parser.Parse("site.dxf")
	if err != nil {
		log.Fatal(err)
	}

	// Korea 2000 central belt, chainage along the CL layer
	cfg := cadgeo.DefaultConfig()
	cfg.SourceCRS = "EPSG:5186"
	cfg.CenterlineLayer = "CL"

	conv, err := cadgeo.NewConverter(cfg, cadgeo.DefaultOptions())
	if err != nil {
		log.Fatal(err)
	}
	result, err := conv.Convert(d)
	if err != nil {
		log.Fatal(err)
	}

	// Print conversion summary
	s := result.Summary()
	fmt.Printf("Points: %d\n", s.Points)
	fmt.Printf("LineStrings: %d\n", s.LineStrings)
	fmt.Printf("Skipped: %d\n", s.Skipped)

	for _, f := range result.Points() {
		if ch, ok := f.Chainage(); ok {
			fmt.Printf("%s %s\n", f.Handle(), ch)
		}
	}

	// Get drawing bounds
	bounds := result.Bounds()
	fmt.Printf("Bounds: [%.6f,%.6f] to [%.6f,%.6f]\n",
		bounds.MinLon(), bounds.MinLat(),
		bounds.MaxLon(), bounds.MaxLat())
}
