package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driven"
)

// campaignStore implements driven.CampaignStore.
type campaignStore struct {
	store *Store
}

var _ driven.CampaignStore = (*campaignStore)(nil)

// SaveCampaign stores or updates a campaign.
func (s *campaignStore) SaveCampaign(ctx context.Context, c *domain.Campaign) error {
	if c.ID == "" {
		return domain.ErrInvalidInput
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO campaigns (id, name, subject, body, source_uri, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			subject = excluded.subject,
			body = excluded.body,
			source_uri = excluded.source_uri
	`, c.ID, c.Name, c.Subject, c.Body, c.SourceURI, c.CreatedAt)

	if err != nil {
		return fmt.Errorf("saving campaign: %w", err)
	}
	return nil
}

// GetCampaign retrieves a campaign by ID.
func (s *campaignStore) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT id, name, subject, body, source_uri, created_at
		FROM campaigns WHERE id = ?
	`, id)

	var c domain.Campaign
	var createdAt sql.NullTime
	if err := row.Scan(&c.ID, &c.Name, &c.Subject, &c.Body, &c.SourceURI, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning campaign: %w", err)
	}
	if createdAt.Valid {
		c.CreatedAt = createdAt.Time
	}

	return &c, nil
}

// ListCampaigns returns campaigns newest first.
func (s *campaignStore) ListCampaigns(ctx context.Context) ([]domain.Campaign, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT id, name, subject, body, source_uri, created_at
		FROM campaigns ORDER BY created_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("querying campaigns: %w", err)
	}
	defer rows.Close()

	var campaigns []domain.Campaign //nolint:prealloc // size unknown from query
	for rows.Next() {
		var c domain.Campaign
		var createdAt sql.NullTime
		if err := rows.Scan(&c.ID, &c.Name, &c.Subject, &c.Body, &c.SourceURI, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning campaign: %w", err)
		}
		if createdAt.Valid {
			c.CreatedAt = createdAt.Time
		}
		campaigns = append(campaigns, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating campaigns: %w", err)
	}

	return campaigns, nil
}

// AddRecipients inserts recipients, skipping addresses already present
// in the campaign. Returns the number actually added.
func (s *campaignStore) AddRecipients(ctx context.Context, campaignID string, rs []domain.Recipient) (int, error) {
	if campaignID == "" {
		return 0, domain.ErrInvalidInput
	}

	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	added := 0
	for _, r := range rs {
		status := r.Status
		if status == "" {
			status = domain.RecipientPending
		}
		// The UNIQUE(campaign_id, email) index makes the conflict
		// clause a silent skip for duplicate addresses.
		res, err := tx.ExecContext(ctx, `
			INSERT INTO recipients
				(id, campaign_id, email, name, company, row, status, sent_at, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(campaign_id, email) DO NOTHING
		`, r.ID, campaignID, r.Email, r.Name, r.Company, r.Row, status, nullTime(r.SentAt), r.Error)
		if err != nil {
			return 0, fmt.Errorf("inserting recipient %s: %w", r.Email, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("counting inserted rows: %w", err)
		}
		added += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing recipients: %w", err)
	}

	return added, nil
}

// ListRecipients returns a campaign's recipients in insertion order,
// optionally filtered by status ("" means all).
func (s *campaignStore) ListRecipients(ctx context.Context, campaignID string, status domain.RecipientStatus) ([]domain.Recipient, error) {
	query := `
		SELECT id, campaign_id, email, name, company, row, status, sent_at, error
		FROM recipients WHERE campaign_id = ?`
	args := []any{campaignID}
	if status != "" {
		query += " AND status = ?"
		args = append(args, status)
	}
	query += " ORDER BY rowid"

	rows, err := s.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying recipients: %w", err)
	}
	defer rows.Close()

	var recipients []domain.Recipient //nolint:prealloc // size unknown from query
	for rows.Next() {
		var r domain.Recipient
		var sentAt sql.NullTime
		if err := rows.Scan(&r.ID, &r.CampaignID, &r.Email, &r.Name, &r.Company,
			&r.Row, &r.Status, &sentAt, &r.Error); err != nil {
			return nil, fmt.Errorf("scanning recipient: %w", err)
		}
		if sentAt.Valid {
			t := sentAt.Time
			r.SentAt = &t
		}
		recipients = append(recipients, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating recipients: %w", err)
	}

	return recipients, nil
}

// UpdateRecipient persists a recipient's delivery state.
func (s *campaignStore) UpdateRecipient(ctx context.Context, r *domain.Recipient) error {
	if r.ID == "" {
		return domain.ErrInvalidInput
	}

	res, err := s.store.db.ExecContext(ctx, `
		UPDATE recipients
		SET status = ?, sent_at = ?, error = ?
		WHERE id = ?
	`, r.Status, nullTime(r.SentAt), r.Error, r.ID)
	if err != nil {
		return fmt.Errorf("updating recipient: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("counting updated rows: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// Progress summarises delivery state across a campaign.
func (s *campaignStore) Progress(ctx context.Context, campaignID string) (domain.CampaignProgress, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT status, COUNT(*) FROM recipients
		WHERE campaign_id = ? GROUP BY status
	`, campaignID)
	if err != nil {
		return domain.CampaignProgress{}, fmt.Errorf("querying progress: %w", err)
	}
	defer rows.Close()

	var p domain.CampaignProgress
	for rows.Next() {
		var status domain.RecipientStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return domain.CampaignProgress{}, fmt.Errorf("scanning progress: %w", err)
		}
		p.Total += count
		switch status {
		case domain.RecipientSent:
			p.Sent += count
		case domain.RecipientSkipped:
			p.Skipped += count
		case domain.RecipientFailed:
			p.Failed += count
		case domain.RecipientPending:
			p.Pending += count
		}
	}

	if err := rows.Err(); err != nil {
		return domain.CampaignProgress{}, fmt.Errorf("iterating progress: %w", err)
	}

	return p, nil
}

// nullTime converts an optional time to its SQL representation.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
