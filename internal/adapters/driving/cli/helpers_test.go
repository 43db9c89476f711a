package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driven"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driving"
)

// setupTestServices replaces the wired services with fakes and returns
// a cleanup that restores the previous state.
func setupTestServices() func() {
	prevProcessor := processor
	prevCampaigns := campaigns
	prevFileStore := fileStore
	prevJobStore := jobStore
	prevCampaignStore := campaignStore

	processor = &fakeProcessor{}
	campaigns = &fakeRunner{}
	fileStore = &fakeFiles{files: map[string][]byte{}}
	jobStore = &fakeJobs{}
	campaignStore = &fakeCampaigns{}

	return func() {
		processor = prevProcessor
		campaigns = prevCampaigns
		fileStore = prevFileStore
		jobStore = prevJobStore
		campaignStore = prevCampaignStore
	}
}

// fakeProcessor returns a canned result for every run.
type fakeProcessor struct {
	processErr error
}

var _ driving.DocumentProcessor = (*fakeProcessor)(nil)

func (f *fakeProcessor) Process(_ context.Context, _ []byte, _ *domain.PlacementData) (*domain.UpdateResult, error) {
	return f.result()
}

func (f *fakeProcessor) ProcessRefs(_ context.Context, _, _ string) (*domain.UpdateResult, error) {
	return f.result()
}

func (f *fakeProcessor) Detect(_ context.Context, _ []byte) (*domain.DetectionReport, error) {
	if f.processErr != nil {
		return nil, f.processErr
	}
	return &domain.DetectionReport{
		Results: map[domain.SlideType]domain.DetectionResult{
			domain.SlideCover: {Type: domain.SlideCover, Slide: 1, Confidence: 0.95},
			domain.SlideGTLOverview: {
				Type: domain.SlideGTLOverview, Slide: 8, Confidence: 0.2, UsedFallback: true,
			},
		},
		Warnings: []string{"GTL_OVERVIEW: low confidence, using fallback slide 8"},
	}, nil
}

func (f *fakeProcessor) result() (*domain.UpdateResult, error) {
	if f.processErr != nil {
		return nil, f.processErr
	}
	return &domain.UpdateResult{
		Success:     true,
		TotalSlides: 24,
		Updated: []domain.FieldUpdate{
			{Slide: 1, Field: "Period of Insurance", Value: "1 August 2025 to 31 July 2026"},
			{Slide: 8, Field: "Eligibility", Value: "All full-time employees"},
		},
		Errors: []domain.FieldError{
			{Slide: 14, Field: "Dependants", Error: "row not found", Hint: "rows: Eligibility; Basis"},
		},
	}, nil
}

// fakeRunner is a canned campaign runner.
type fakeRunner struct {
	runErr error
}

var _ driving.CampaignRunner = (*fakeRunner)(nil)

func (f *fakeRunner) Create(_ context.Context, name, _, _, _ string) (*domain.Campaign, error) {
	return &domain.Campaign{ID: "camp-1", Name: name, CreatedAt: time.Now()}, nil
}

func (f *fakeRunner) Run(_ context.Context, _ string) (domain.CampaignProgress, error) {
	if f.runErr != nil {
		return domain.CampaignProgress{Total: 3, Sent: 3}, f.runErr
	}
	return domain.CampaignProgress{Total: 3, Sent: 2, Failed: 1}, nil
}

func (f *fakeRunner) Status(_ context.Context, _ string) (domain.CampaignProgress, error) {
	return domain.CampaignProgress{Total: 3, Sent: 2, Pending: 1}, nil
}

// fakeFiles is an in-memory file store.
type fakeFiles struct {
	files map[string][]byte
}

var _ driven.FileStore = (*fakeFiles)(nil)

func (f *fakeFiles) Fetch(_ context.Context, ref string) ([]byte, error) {
	data, ok := f.files[ref]
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w", ref, domain.ErrNotFound)
	}
	return data, nil
}

func (f *fakeFiles) Store(_ context.Context, name string, content []byte) (string, error) {
	f.files[name] = content
	return name, nil
}

func (f *fakeFiles) EnsureFolder(_ context.Context) (string, error) {
	return "folder", nil
}

// fakeJobs holds canned job records.
type fakeJobs struct {
	jobs []domain.Job
}

var _ driven.JobStore = (*fakeJobs)(nil)

func (f *fakeJobs) SaveJob(_ context.Context, job *domain.Job) error {
	f.jobs = append(f.jobs, *job)
	return nil
}

func (f *fakeJobs) GetJob(_ context.Context, id string) (*domain.Job, error) {
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			return &f.jobs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeJobs) ListJobs(_ context.Context, limit int) ([]domain.Job, error) {
	if limit > 0 && limit < len(f.jobs) {
		return f.jobs[:limit], nil
	}
	return f.jobs, nil
}

// fakeCampaigns serves recipients for status annotation.
type fakeCampaigns struct {
	recipients []domain.Recipient
}

var _ driven.CampaignStore = (*fakeCampaigns)(nil)

func (f *fakeCampaigns) SaveCampaign(_ context.Context, _ *domain.Campaign) error { return nil }

func (f *fakeCampaigns) GetCampaign(_ context.Context, _ string) (*domain.Campaign, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeCampaigns) ListCampaigns(_ context.Context) ([]domain.Campaign, error) {
	return nil, nil
}

func (f *fakeCampaigns) AddRecipients(_ context.Context, _ string, rs []domain.Recipient) (int, error) {
	f.recipients = append(f.recipients, rs...)
	return len(rs), nil
}

func (f *fakeCampaigns) ListRecipients(_ context.Context, _ string, status domain.RecipientStatus) ([]domain.Recipient, error) {
	if status == "" {
		return f.recipients, nil
	}
	var out []domain.Recipient
	for _, r := range f.recipients {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeCampaigns) UpdateRecipient(_ context.Context, _ *domain.Recipient) error { return nil }

func (f *fakeCampaigns) Progress(_ context.Context, _ string) (domain.CampaignProgress, error) {
	return domain.CampaignProgress{}, nil
}
