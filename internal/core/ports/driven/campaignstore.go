package driven

import (
	"context"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

// CampaignStore persists campaigns and their recipients' delivery state.
// Deduplication and resume both rely on this store: a recipient whose
// status is already terminal is never attempted again.
type CampaignStore interface {
	// SaveCampaign stores or updates a campaign.
	SaveCampaign(ctx context.Context, c *domain.Campaign) error

	// GetCampaign retrieves a campaign by ID. Returns domain.ErrNotFound
	// when absent.
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)

	// ListCampaigns returns campaigns newest first.
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)

	// AddRecipients inserts recipients, skipping addresses already
	// present in the campaign. Returns the number actually added.
	AddRecipients(ctx context.Context, campaignID string, rs []domain.Recipient) (int, error)

	// ListRecipients returns a campaign's recipients in insertion order,
	// optionally filtered by status ("" means all).
	ListRecipients(ctx context.Context, campaignID string, status domain.RecipientStatus) ([]domain.Recipient, error)

	// UpdateRecipient persists a recipient's delivery state.
	UpdateRecipient(ctx context.Context, r *domain.Recipient) error

	// Progress summarises delivery state across a campaign.
	Progress(ctx context.Context, campaignID string) (domain.CampaignProgress, error)
}
