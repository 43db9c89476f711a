package driving

import (
	"context"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

// CampaignRunner drives outbound email campaigns.
type CampaignRunner interface {
	// Create registers a campaign and loads its recipients from the
	// list at sourceRef. Re-running Create with the same list adds only
	// addresses not already present.
	Create(ctx context.Context, name, subject, body, sourceRef string) (*domain.Campaign, error)

	// Run sends to every pending recipient, pacing sends and recording
	// per-recipient status. Safe to interrupt and re-run; already-sent
	// recipients are never re-attempted. Returns domain.ErrCampaignComplete
	// when nothing is pending.
	Run(ctx context.Context, campaignID string) (domain.CampaignProgress, error)

	// Status reports delivery progress for a campaign.
	Status(ctx context.Context, campaignID string) (domain.CampaignProgress, error)
}
