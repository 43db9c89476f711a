package driving

import (
	"context"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

// DocumentProcessor is the primary port for deck population. Process is
// the full pipeline; Detect runs classification alone, for inspection.
type DocumentProcessor interface {
	// Process maps data onto the deck template and returns the result,
	// including the updated archive bytes. Mapping errors are collected
	// in the result rather than failing the run; Process returns a
	// non-nil error only when the run itself could not proceed
	// (corrupt archive, empty data).
	Process(ctx context.Context, template []byte, data *domain.PlacementData) (*domain.UpdateResult, error)

	// ProcessRefs fetches the slip and template through the file store,
	// runs Process, stores the output deck and persists an audit job.
	ProcessRefs(ctx context.Context, slipRef, templateRef string) (*domain.UpdateResult, error)

	// Detect classifies the template's slides without modifying anything.
	Detect(ctx context.Context, template []byte) (*domain.DetectionReport, error)
}
