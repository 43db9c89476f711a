package services

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
	"github.com/custodia-labs/slipdeck/internal/pptx"
)

// --- fakes ---

type fakeSignatureStore struct {
	sigs []domain.SlideSignature
	err  error
}

func (f *fakeSignatureStore) Signatures() ([]domain.SlideSignature, error) {
	return f.sigs, f.err
}

type fakeFileStore struct {
	files  map[string][]byte
	stored map[string][]byte
}

func (f *fakeFileStore) Fetch(_ context.Context, ref string) ([]byte, error) {
	content, ok := f.files[ref]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, ref)
	}
	return content, nil
}

func (f *fakeFileStore) Store(_ context.Context, name string, content []byte) (string, error) {
	if f.stored == nil {
		f.stored = make(map[string][]byte)
	}
	f.stored[name] = content
	return "stored:" + name, nil
}

func (f *fakeFileStore) EnsureFolder(context.Context) (string, error) {
	return "folder", nil
}

type fakeExtractor struct {
	data *domain.PlacementData
	err  error
}

func (f *fakeExtractor) Extract(context.Context, []byte) (*domain.PlacementData, error) {
	return f.data, f.err
}

type fakeJobStore struct {
	jobs []domain.Job
}

func (f *fakeJobStore) SaveJob(_ context.Context, job *domain.Job) error {
	f.jobs = append(f.jobs, *job)
	return nil
}

func (f *fakeJobStore) GetJob(_ context.Context, id string) (*domain.Job, error) {
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			return &f.jobs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeJobStore) ListJobs(context.Context, int) ([]domain.Job, error) {
	return f.jobs, nil
}

// --- fixtures ---

func buildDeck(t *testing.T, slides ...string) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	ct, err := w.Create("[Content_Types].xml")
	require.NoError(t, err)
	ct.Write([]byte(`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"/>`))
	pres, err := w.Create("ppt/presentation.xml")
	require.NoError(t, err)
	pres.Write([]byte(`<p:presentation xmlns:p="http://schemas.openxmlformats.org/presentationml/2006/main"/>`))

	for i, body := range slides {
		f, err := w.Create(fmt.Sprintf("ppt/slides/slide%d.xml", i+1))
		require.NoError(t, err)
		f.Write([]byte(`<p:sld xmlns:a="http://schemas.openxmlformats.org/drawingml/2006/main">` + body + `</p:sld>`))
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func coverSlide() string {
	return `<a:p><a:r><a:t>Employee Benefits Proposal</a:t></a:r></a:p>` +
		`<a:p><a:r><a:t>Period of Insurance: 1 July 2024 to 30 June 2025</a:t></a:r></a:p>`
}

func gtlOverviewSlide() string {
	return `<a:p><a:r><a:t>Group Term Life</a:t></a:r></a:p><a:tbl>` +
		`<a:tr><a:tc><a:txBody><a:p><a:r><a:t>Eligibility</a:t></a:r></a:p></a:txBody></a:tc>` +
		`<a:tc><a:txBody><a:p><a:r><a:t>All full-time employees</a:t></a:r></a:p></a:txBody></a:tc></a:tr>` +
		`<a:tr><a:tc><a:txBody><a:p><a:r><a:t>Non-evidence Limit</a:t></a:r></a:p></a:txBody></a:tc>` +
		`<a:tc><a:txBody><a:p><a:r><a:t>S$500,000</a:t></a:r></a:p></a:txBody></a:tc></a:tr>` +
		`</a:tbl>`
}

func processSignatures() []domain.SlideSignature {
	return []domain.SlideSignature{
		{
			Type:     domain.SlideCover,
			Primary:  []string{"Period of Insurance"},
			Fallback: 1,
			Group:    "cover",
			Sequence: 1,
		},
		{
			Type:      domain.SlideGTLOverview,
			Primary:   []string{"Group Term Life"},
			Secondary: []string{"Eligibility", "Non-evidence Limit"},
			Fallback:  2,
			Group:     "overview",
			Sequence:  1,
		},
	}
}

func testPlacementData() *domain.PlacementData {
	elig := "All actively-at-work employees aged 16 to 70"
	nel := "S$750,000"
	return &domain.PlacementData{
		PeriodOfInsurance: &domain.PeriodOfInsurance{
			Start:     "1 August 2025",
			End:       "31 July 2026",
			Formatted: "1 August 2025 to 31 July 2026",
		},
		GTLOverview: &domain.OverviewData{
			Eligibility:      &elig,
			NonEvidenceLimit: &nel,
		},
	}
}

// --- tests ---

func TestProcess_EndToEnd(t *testing.T) {
	svc := NewProcessService(&fakeSignatureStore{sigs: processSignatures()}, nil, nil, nil)
	template := buildDeck(t, coverSlide(), gtlOverviewSlide())

	result, err := svc.Process(context.Background(), template, testPlacementData())
	require.NoError(t, err)
	require.NotNil(t, result)

	assert.True(t, result.Success)
	assert.Equal(t, 2, result.TotalSlides)
	assert.Empty(t, result.Errors)
	require.Len(t, result.Updated, 3)
	assert.Equal(t, len(result.Buffer), result.BufferSize)

	// Detection put each type on the right slide.
	assert.Equal(t, 1, result.Detection.SlideFor(domain.SlideCover))
	assert.Equal(t, 2, result.Detection.SlideFor(domain.SlideGTLOverview))

	// The output archive carries the new values on the right slides.
	arch, err := pptx.Open(result.Buffer)
	require.NoError(t, err)
	slide1, err := arch.EntryText(pptx.SlideName(1))
	require.NoError(t, err)
	assert.Contains(t, slide1, "Period of Insurance: 1 August 2025 to 31 July 2026")
	slide2, err := arch.EntryText(pptx.SlideName(2))
	require.NoError(t, err)
	assert.Contains(t, slide2, "All actively-at-work employees aged 16 to 70")
	assert.Contains(t, slide2, "S$750,000")
	assert.NotContains(t, slide2, "S$500,000")
}

func TestProcess_EmptyData(t *testing.T) {
	svc := NewProcessService(&fakeSignatureStore{sigs: processSignatures()}, nil, nil, nil)
	template := buildDeck(t, coverSlide())

	_, err := svc.Process(context.Background(), template, &domain.PlacementData{})
	assert.ErrorIs(t, err, domain.ErrNoPlacementData)

	_, err = svc.Process(context.Background(), template, nil)
	assert.ErrorIs(t, err, domain.ErrNoPlacementData)
}

func TestProcess_CorruptTemplate(t *testing.T) {
	svc := NewProcessService(&fakeSignatureStore{sigs: processSignatures()}, nil, nil, nil)

	_, err := svc.Process(context.Background(), []byte("not a deck"), testPlacementData())
	assert.ErrorIs(t, err, domain.ErrCorruptArchive)
}

func TestProcess_FallbackAdvisory(t *testing.T) {
	// Slides carry none of the GTL signals, so the overview falls back;
	// since overview data is present this surfaces as an advisory error.
	svc := NewProcessService(&fakeSignatureStore{sigs: processSignatures()}, nil, nil, nil)
	template := buildDeck(t, coverSlide(), `<a:p><a:r><a:t>Claims Procedure</a:t></a:r></a:p>`)

	result, err := svc.Process(context.Background(), template, testPlacementData())
	require.NoError(t, err)

	res := result.Detection.Results[domain.SlideGTLOverview]
	assert.True(t, res.UsedFallback)
	assert.Equal(t, 2, res.Slide)

	var advisory bool
	for _, e := range result.Errors {
		if e.Field == "Slide detection" {
			advisory = true
		}
	}
	assert.True(t, advisory, "expected a detection advisory error")
}

func TestProcess_OutOfRangeFallbackIsFieldError(t *testing.T) {
	sigs := processSignatures()
	sigs[1].Fallback = 8 // beyond the 2-slide test deck
	svc := NewProcessService(&fakeSignatureStore{sigs: sigs}, nil, nil, nil)
	template := buildDeck(t, coverSlide(), `<a:p><a:r><a:t>Claims Procedure</a:t></a:r></a:p>`)

	result, err := svc.Process(context.Background(), template, testPlacementData())
	require.NoError(t, err)

	var rangeErr bool
	for _, e := range result.Errors {
		if e.Field == "GTL Overview" {
			rangeErr = true
			assert.Contains(t, e.Error, "outside the deck")
		}
	}
	assert.True(t, rangeErr, "expected an out-of-range field error")
	// The cover still processed.
	require.NotEmpty(t, result.Updated)
}

func TestProcessRefs(t *testing.T) {
	template := buildDeck(t, coverSlide(), gtlOverviewSlide())
	files := &fakeFileStore{files: map[string][]byte{
		"slip.xlsx":     []byte("slip-bytes"),
		"template.pptx": template,
	}}
	jobs := &fakeJobStore{}
	svc := NewProcessService(
		&fakeSignatureStore{sigs: processSignatures()},
		&fakeExtractor{data: testPlacementData()},
		files, jobs,
	)

	result, err := svc.ProcessRefs(context.Background(), "slip.xlsx", "template.pptx")
	require.NoError(t, err)
	assert.True(t, result.Success)

	// The populated deck was stored and the run audited.
	require.Len(t, files.stored, 1)
	require.Len(t, jobs.jobs, 1)
	job := jobs.jobs[0]
	assert.Equal(t, "slip.xlsx", job.SourceURI)
	assert.Equal(t, "template.pptx", job.TemplateURI)
	assert.Equal(t, len(result.Updated), job.UpdatedCount)
	assert.NotEmpty(t, job.ResultJSON)
	assert.NotEmpty(t, job.OutputURI)
}

func TestProcessRefs_MissingSlip(t *testing.T) {
	files := &fakeFileStore{files: map[string][]byte{}}
	svc := NewProcessService(
		&fakeSignatureStore{sigs: processSignatures()},
		&fakeExtractor{data: testPlacementData()},
		files, nil,
	)

	_, err := svc.ProcessRefs(context.Background(), "missing.xlsx", "template.pptx")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDetect(t *testing.T) {
	svc := NewProcessService(&fakeSignatureStore{sigs: processSignatures()}, nil, nil, nil)
	template := buildDeck(t, coverSlide(), gtlOverviewSlide())

	report, err := svc.Detect(context.Background(), template)
	require.NoError(t, err)
	assert.Equal(t, 1, report.SlideFor(domain.SlideCover))
	assert.Equal(t, 2, report.SlideFor(domain.SlideGTLOverview))
}
