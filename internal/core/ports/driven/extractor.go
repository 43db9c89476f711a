package driven

import (
	"context"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

// PlacementExtractor turns placement-slip spreadsheet bytes into the
// structured PlacementData the mapping engine consumes. The extraction
// heuristics (label scanning, column offsets) live entirely behind this
// port.
type PlacementExtractor interface {
	Extract(ctx context.Context, slip []byte) (*domain.PlacementData, error)
}
