package driven

import "github.com/custodia-labs/slipdeck/internal/core/domain"

// SignatureStore provides the slide signature table. Loaded once at
// process start and treated as read-only; changes to the table are a
// deployment-time concern, not a runtime one.
type SignatureStore interface {
	Signatures() ([]domain.SlideSignature, error)
}
