package cadgeo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/beetlebugorg/cadgeo/internal/crs"
	"github.com/beetlebugorg/cadgeo/internal/parser"
	"github.com/beetlebugorg/cadgeo/pkg/drawing"
)

// ErrCyclicBlock indicates a block that, directly or through other
// blocks, inserts itself.
type ErrCyclicBlock struct {
	// Chain lists the block names from the outermost insert to the
	// repeated block.
	Chain []string
}

func (e *ErrCyclicBlock) Error() string {
	return fmt.Sprintf("cyclic block reference: %s", strings.Join(e.Chain, " -> "))
}

// ErrUnknownCRS indicates a source CRS identifier with no reprojector.
type ErrUnknownCRS = crs.ErrUnknownCRS

// ErrConfig indicates an invalid configuration value.
type ErrConfig struct {
	Field  string
	Reason string
}

func (e *ErrConfig) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// ErrInvalidGeometry indicates an entity whose geometry cannot be built.
type ErrInvalidGeometry struct {
	Kind   drawing.Kind
	Reason string
	Err    error
}

func (e *ErrInvalidGeometry) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("invalid geometry (%v): %s", e.Kind, e.Reason)
	case e.Reason == "":
		return fmt.Sprintf("invalid geometry (%v): %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("invalid geometry (%v): %s: %v", e.Kind, e.Reason, e.Err)
}

func (e *ErrInvalidGeometry) Unwrap() error { return e.Err }

// ErrUnsupportedEntity indicates an entity kind the normalizer has no
// conversion for.
type ErrUnsupportedEntity struct {
	Type string
}

func (e *ErrUnsupportedEntity) Error() string {
	return fmt.Sprintf("unsupported entity type %s", e.Type)
}

// ErrMissingBlock indicates an insert of an undefined block.
type ErrMissingBlock = parser.ErrMissingBlock

// SkipReason classifies why an entity produced no feature.
type SkipReason string

const (
	SkipUnsupported  SkipReason = "unsupported-kind"
	SkipTooFewPoints SkipReason = "too-few-vertices"
	SkipInvalid      SkipReason = "invalid-geometry"
	SkipReprojection SkipReason = "reprojection-failed"
	SkipMissingBlock SkipReason = "missing-block"
)

// errTooFewPoints is wrapped by ErrInvalidGeometry for degenerate paths.
var errTooFewPoints = errors.New("fewer than 2 distinct vertices")

// reasonFor maps an entity-level error to its skip reason.
func reasonFor(err error) SkipReason {
	var (
		unsupported *ErrUnsupportedEntity
		missing     *ErrMissingBlock
		oor         *crs.ErrOutOfRange
	)
	switch {
	case errors.As(err, &unsupported):
		return SkipUnsupported
	case errors.As(err, &missing):
		return SkipMissingBlock
	case errors.As(err, &oor):
		return SkipReprojection
	case errors.Is(err, errTooFewPoints):
		return SkipTooFewPoints
	default:
		return SkipInvalid
	}
}

// ErrReprojection indicates a coordinate the source CRS cannot map to a
// valid longitude/latitude.
type ErrReprojection = crs.ErrOutOfRange
