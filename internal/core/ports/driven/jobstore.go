package driven

import (
	"context"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

// JobStore persists the audit record of document processing runs.
type JobStore interface {
	// SaveJob stores a completed run.
	SaveJob(ctx context.Context, job *domain.Job) error

	// GetJob retrieves a run by ID. Returns domain.ErrNotFound when absent.
	GetJob(ctx context.Context, id string) (*domain.Job, error)

	// ListJobs returns runs newest first, up to limit (0 means all).
	ListJobs(ctx context.Context, limit int) ([]domain.Job, error)
}
