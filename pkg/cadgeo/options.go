package cadgeo

import (
	"io"
	"log/slog"
	"runtime"
)

// Options controls how a Converter runs. Options never change what a
// conversion produces, only how it gets there.
type Options struct {
	// Parallel enables concurrent entity normalization.
	// When true, entities are converted using multiple worker goroutines.
	Parallel bool

	// Workers specifies the number of worker goroutines.
	// If 0, defaults to runtime.NumCPU().
	// Only used when Parallel is true.
	Workers int

	// Logger receives run events. Nil discards them.
	Logger *slog.Logger

	// Progress is an optional callback for tracking conversion progress.
	// Called after each entity is converted (successfully or skipped).
	// Parameters: (done, total) where done is count of entities processed so far.
	Progress func(done, total int)
}

// DefaultOptions returns options with sensible defaults.
func DefaultOptions() Options {
	return Options{
		Parallel: true,
		Workers:  runtime.NumCPU(),
		Logger:   nil,
		Progress: nil,
	}
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func (o Options) workers(jobs int) int {
	if !o.Parallel || jobs <= 1 {
		return 1
	}
	w := o.Workers
	if w <= 0 {
		w = runtime.NumCPU()
	}
	if w > jobs {
		w = jobs
	}
	return w
}
