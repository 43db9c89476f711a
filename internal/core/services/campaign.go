package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driven"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driving"
	"github.com/custodia-labs/slipdeck/internal/logger"
)

// Ensure CampaignService implements the interface.
var _ driving.CampaignRunner = (*CampaignService)(nil)

// DefaultSendInterval paces campaign sends conservatively: well under
// Gmail API quotas, and slow enough not to look like a burst sender.
const DefaultSendInterval = 2 * time.Second

// CampaignService runs outbound mail campaigns: recipient loading with
// per-campaign deduplication, paced sending, and per-recipient status
// tracking so an interrupted run can resume without double sends.
type CampaignService struct {
	store   driven.CampaignStore
	source  driven.RecipientSource
	files   driven.FileStore
	mailer  driven.Mailer
	limiter *rate.Limiter
}

// NewCampaignService creates a campaign runner. interval controls the
// minimum gap between sends; zero selects DefaultSendInterval.
func NewCampaignService(
	store driven.CampaignStore,
	source driven.RecipientSource,
	files driven.FileStore,
	mailer driven.Mailer,
	interval time.Duration,
) *CampaignService {
	if interval <= 0 {
		interval = DefaultSendInterval
	}
	return &CampaignService{
		store:   store,
		source:  source,
		files:   files,
		mailer:  mailer,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Create registers a campaign and loads its recipients from the list at
// sourceRef. Addresses are normalised before insertion; duplicates
// within the list, and addresses already present on the campaign, are
// skipped.
func (s *CampaignService) Create(ctx context.Context, name, subject, body, sourceRef string) (*domain.Campaign, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("campaign name: %w", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(subject) == "" {
		return nil, fmt.Errorf("campaign subject: %w", domain.ErrInvalidInput)
	}

	list, err := s.files.Fetch(ctx, sourceRef)
	if err != nil {
		return nil, fmt.Errorf("fetch recipient list: %w", err)
	}
	rows, err := s.source.Load(ctx, list)
	if err != nil {
		return nil, fmt.Errorf("load recipients: %w", err)
	}

	campaign := &domain.Campaign{
		ID:        uuid.NewString(),
		Name:      name,
		Subject:   subject,
		Body:      body,
		SourceURI: sourceRef,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.SaveCampaign(ctx, campaign); err != nil {
		return nil, fmt.Errorf("save campaign: %w", err)
	}

	recipients := make([]domain.Recipient, 0, len(rows))
	seen := make(map[string]bool)
	for _, row := range rows {
		email := NormaliseEmail(row.Email)
		if email == "" {
			logger.Debug("row %d: no usable address, skipping", row.Row)
			continue
		}
		if seen[email] {
			logger.Debug("row %d: duplicate address %s, skipping", row.Row, email)
			continue
		}
		seen[email] = true
		recipients = append(recipients, domain.Recipient{
			ID:         uuid.NewString(),
			CampaignID: campaign.ID,
			Email:      email,
			Name:       strings.TrimSpace(row.Name),
			Company:    strings.TrimSpace(row.Company),
			Row:        row.Row,
			Status:     domain.RecipientPending,
		})
	}

	added, err := s.store.AddRecipients(ctx, campaign.ID, recipients)
	if err != nil {
		return nil, fmt.Errorf("add recipients: %w", err)
	}
	logger.Info("campaign %s created: %d recipients loaded, %d added", campaign.ID, len(rows), added)
	return campaign, nil
}

// Run sends to every pending recipient in insertion order. Each send
// waits on the pacing limiter first, then records the outcome before
// moving on, so a crash mid-run loses at most one status update.
func (s *CampaignService) Run(ctx context.Context, campaignID string) (domain.CampaignProgress, error) {
	campaign, err := s.store.GetCampaign(ctx, campaignID)
	if err != nil {
		return domain.CampaignProgress{}, fmt.Errorf("get campaign: %w", err)
	}

	pending, err := s.store.ListRecipients(ctx, campaignID, domain.RecipientPending)
	if err != nil {
		return domain.CampaignProgress{}, fmt.Errorf("list recipients: %w", err)
	}
	if len(pending) == 0 {
		progress, perr := s.store.Progress(ctx, campaignID)
		if perr != nil {
			return domain.CampaignProgress{}, perr
		}
		return progress, domain.ErrCampaignComplete
	}

	logger.Section(fmt.Sprintf("Campaign %s: %d pending", campaign.Name, len(pending)))
	for i := range pending {
		r := &pending[i]
		if err := s.limiter.Wait(ctx); err != nil {
			return domain.CampaignProgress{}, err
		}

		subject := RenderTemplate(campaign.Subject, r)
		body := RenderTemplate(campaign.Body, r)
		if err := s.mailer.Send(ctx, r.Email, subject, body); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return domain.CampaignProgress{}, err
			}
			r.Status = domain.RecipientFailed
			r.Error = err.Error()
			logger.Warn("send to %s failed: %v", r.Email, err)
		} else {
			now := time.Now().UTC()
			r.Status = domain.RecipientSent
			r.SentAt = &now
			r.Error = ""
			logger.Debug("sent to %s", r.Email)
		}
		if err := s.store.UpdateRecipient(ctx, r); err != nil {
			return domain.CampaignProgress{}, fmt.Errorf("update recipient %s: %w", r.Email, err)
		}
	}

	progress, err := s.store.Progress(ctx, campaignID)
	if err != nil {
		return domain.CampaignProgress{}, fmt.Errorf("campaign progress: %w", err)
	}
	logger.Info("campaign %s: %d sent, %d failed, %d pending",
		campaign.Name, progress.Sent, progress.Failed, progress.Pending)
	return progress, nil
}

// Status reports delivery progress for a campaign.
func (s *CampaignService) Status(ctx context.Context, campaignID string) (domain.CampaignProgress, error) {
	if _, err := s.store.GetCampaign(ctx, campaignID); err != nil {
		return domain.CampaignProgress{}, fmt.Errorf("get campaign: %w", err)
	}
	return s.store.Progress(ctx, campaignID)
}

// NormaliseEmail lowercases and trims an address, returning "" for
// anything that cannot plausibly receive mail.
func NormaliseEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
		return ""
	}
	return email
}

// RenderTemplate substitutes {{name}} and {{company}} placeholders.
// A recipient with no name falls back to "there" so greetings still read
// naturally.
func RenderTemplate(tmpl string, r *domain.Recipient) string {
	name := r.Name
	if name == "" {
		name = "there"
	}
	out := strings.ReplaceAll(tmpl, "{{name}}", name)
	out = strings.ReplaceAll(out, "{{company}}", r.Company)
	return out
}
