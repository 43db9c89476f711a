package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

// setupTestStore creates a store backed by a temporary directory.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	return store, func() {
		store.Close()
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	var version int
	row := store.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	require.NoError(t, row.Scan(&version))
	assert.GreaterOrEqual(t, version, 1)
}

func TestNewStore_ReopenIsIdempotent(t *testing.T) {
	dir := t.TempDir()

	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.JobStore().SaveJob(context.Background(), &domain.Job{ID: "job-1"}))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.JobStore().GetJob(context.Background(), "job-1")
	require.NoError(t, err)
	assert.Equal(t, "job-1", got.ID)
}

func TestJobStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	jobs := store.JobStore()

	job := &domain.Job{
		ID:           "job-1",
		SourceURI:    "drive://slip.xlsx",
		TemplateURI:  "drive://template.pptx",
		OutputURI:    "drive://template-populated.pptx",
		TotalSlides:  24,
		UpdatedCount: 11,
		ErrorCount:   1,
		ResultJSON:   `{"updated":11}`,
	}
	require.NoError(t, jobs.SaveJob(ctx, job))
	assert.False(t, job.CreatedAt.IsZero())

	got, err := jobs.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, "drive://slip.xlsx", got.SourceURI)
	assert.Equal(t, 24, got.TotalSlides)
	assert.Equal(t, 11, got.UpdatedCount)
	assert.Equal(t, `{"updated":11}`, got.ResultJSON)

	// Upsert replaces fields.
	job.UpdatedCount = 12
	require.NoError(t, jobs.SaveJob(ctx, job))
	got, err = jobs.GetJob(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, 12, got.UpdatedCount)
}

func TestJobStore_GetMissing(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := store.JobStore().GetJob(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestJobStore_ListNewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	jobs := store.JobStore()

	base := time.Date(2025, 8, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, jobs.SaveJob(ctx, &domain.Job{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	all, err := jobs.ListJobs(ctx, 0)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "new", all[0].ID)
	assert.Equal(t, "old", all[2].ID)

	limited, err := jobs.ListJobs(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "new", limited[0].ID)
}

func TestCampaignStore_SaveAndGet(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	campaigns := store.CampaignStore()

	c := &domain.Campaign{
		ID:        "c-1",
		Name:      "Renewals Q3",
		Subject:   "Hello {{name}}",
		Body:      "Your renewal is due.",
		SourceURI: "drive://contacts.xlsx",
	}
	require.NoError(t, campaigns.SaveCampaign(ctx, c))

	got, err := campaigns.GetCampaign(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, "Renewals Q3", got.Name)
	assert.Equal(t, "Hello {{name}}", got.Subject)

	_, err = campaigns.GetCampaign(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCampaignStore_AddRecipientsDeduplicates(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	campaigns := store.CampaignStore()

	require.NoError(t, campaigns.SaveCampaign(ctx, &domain.Campaign{ID: "c-1", Name: "n"}))

	added, err := campaigns.AddRecipients(ctx, "c-1", []domain.Recipient{
		{ID: "r-1", Email: "alice@example.com", Name: "Alice", Row: 2},
		{ID: "r-2", Email: "bob@example.com", Name: "Bob", Row: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	// Re-adding the same address is a silent skip.
	added, err = campaigns.AddRecipients(ctx, "c-1", []domain.Recipient{
		{ID: "r-3", Email: "alice@example.com", Name: "Alice Again", Row: 7},
		{ID: "r-4", Email: "carol@example.com", Name: "Carol", Row: 8},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	all, err := campaigns.ListRecipients(ctx, "c-1", "")
	require.NoError(t, err)
	require.Len(t, all, 3)
	// The original row survives the duplicate insert.
	assert.Equal(t, "Alice", all[0].Name)
	assert.Equal(t, 2, all[0].Row)
	assert.Equal(t, domain.RecipientPending, all[0].Status)
}

func TestCampaignStore_UpdateAndFilterRecipients(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	campaigns := store.CampaignStore()

	require.NoError(t, campaigns.SaveCampaign(ctx, &domain.Campaign{ID: "c-1", Name: "n"}))
	_, err := campaigns.AddRecipients(ctx, "c-1", []domain.Recipient{
		{ID: "r-1", Email: "alice@example.com"},
		{ID: "r-2", Email: "bob@example.com"},
	})
	require.NoError(t, err)

	sentAt := time.Date(2025, 8, 15, 9, 30, 0, 0, time.UTC)
	require.NoError(t, campaigns.UpdateRecipient(ctx, &domain.Recipient{
		ID:     "r-1",
		Status: domain.RecipientSent,
		SentAt: &sentAt,
	}))

	pending, err := campaigns.ListRecipients(ctx, "c-1", domain.RecipientPending)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "bob@example.com", pending[0].Email)

	sent, err := campaigns.ListRecipients(ctx, "c-1", domain.RecipientSent)
	require.NoError(t, err)
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].SentAt)
	assert.Equal(t, sentAt, sent[0].SentAt.UTC())

	err = campaigns.UpdateRecipient(ctx, &domain.Recipient{ID: "ghost", Status: domain.RecipientSent})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCampaignStore_Progress(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	campaigns := store.CampaignStore()

	require.NoError(t, campaigns.SaveCampaign(ctx, &domain.Campaign{ID: "c-1", Name: "n"}))
	_, err := campaigns.AddRecipients(ctx, "c-1", []domain.Recipient{
		{ID: "r-1", Email: "a@example.com"},
		{ID: "r-2", Email: "b@example.com"},
		{ID: "r-3", Email: "c@example.com"},
	})
	require.NoError(t, err)

	require.NoError(t, campaigns.UpdateRecipient(ctx, &domain.Recipient{ID: "r-1", Status: domain.RecipientSent}))
	require.NoError(t, campaigns.UpdateRecipient(ctx, &domain.Recipient{
		ID: "r-2", Status: domain.RecipientFailed, Error: "mailbox full",
	}))

	p, err := campaigns.Progress(ctx, "c-1")
	require.NoError(t, err)
	assert.Equal(t, domain.CampaignProgress{Total: 3, Sent: 1, Failed: 1, Pending: 1}, p)
}

func TestCampaignStore_ListCampaignsNewestFirst(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	campaigns := store.CampaignStore()

	base := time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second"} {
		require.NoError(t, campaigns.SaveCampaign(ctx, &domain.Campaign{
			ID:        id,
			Name:      id,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}))
	}

	all, err := campaigns.ListCampaigns(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "second", all[0].ID)
}
