package pptx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

func testSignatures() []domain.SlideSignature {
	return []domain.SlideSignature{
		{
			Type:     domain.SlideGTLOverview,
			Primary:  []string{"Group Term Life"},
			Secondary: []string{
				"Eligibility", "Basis of Cover", "Non-evidence Limit",
			},
			Unique:   []string{"Last Entry Age"},
			Exclude:  []string{"Schedule of Benefits"},
			Fallback: 8,
			Group:    "overview",
			Sequence: 1,
		},
		{
			Type:     domain.SlideGHSOverview,
			Primary:  []string{"Hospital & Surgical", "Hospital and Surgical"},
			Secondary: []string{
				"Eligibility", "Basis of Cover",
			},
			Exclude:  []string{"Schedule of Benefits"},
			Fallback: 14,
			Group:    "overview",
			Sequence: 2,
		},
		{
			Type:     domain.SlideGTLSchedule,
			Primary:  []string{"Group Term Life"},
			Secondary: []string{
				"Schedule of Benefits", "Sum Assured",
			},
			Unique:   []string{"Death Benefit"},
			Fallback: 20,
			Group:    "schedule",
			Sequence: 1,
		},
	}
}

func TestDetect_AssignsByContent(t *testing.T) {
	d := NewDetector(testSignatures())

	texts := []string{
		"Welcome\nPeriod of Insurance: 2025",
		"Group Term Life\nEligibility\nBasis of Cover\nNon-evidence Limit\nLast Entry Age",
		"Hospital & Surgical\nEligibility\nBasis of Cover",
		"Group Term Life\nSchedule of Benefits\nSum Assured\nDeath Benefit",
	}

	report := d.Detect(texts)

	require.Contains(t, report.Results, domain.SlideGTLOverview)
	assert.Equal(t, 2, report.Results[domain.SlideGTLOverview].Slide)
	assert.False(t, report.Results[domain.SlideGTLOverview].UsedFallback)
	assert.GreaterOrEqual(t, report.Results[domain.SlideGTLOverview].Confidence, ConfidenceHigh)

	assert.Equal(t, 3, report.Results[domain.SlideGHSOverview].Slide)
	assert.Equal(t, 4, report.Results[domain.SlideGTLSchedule].Slide)
}

func TestDetect_PrimaryRequired(t *testing.T) {
	d := NewDetector(testSignatures())

	// All the secondary signals but no primary: must not match.
	texts := []string{
		"Eligibility\nBasis of Cover\nNon-evidence Limit\nLast Entry Age",
	}

	report := d.Detect(texts)
	res := report.Results[domain.SlideGTLOverview]
	assert.True(t, res.UsedFallback)
	assert.Equal(t, 8, res.Slide)
	assert.Zero(t, res.Confidence)
}

func TestDetect_ExcludeSeparatesOverviewFromSchedule(t *testing.T) {
	d := NewDetector(testSignatures())

	// Both slides carry the GTL primary; the exclude pattern pushes the
	// overview signature away from the schedule slide.
	texts := []string{
		"Group Term Life\nSchedule of Benefits\nSum Assured\nDeath Benefit",
		"Group Term Life\nEligibility\nBasis of Cover\nNon-evidence Limit\nLast Entry Age",
	}

	report := d.Detect(texts)
	assert.Equal(t, 2, report.Results[domain.SlideGTLOverview].Slide)
	assert.Equal(t, 1, report.Results[domain.SlideGTLSchedule].Slide)
}

func TestDetect_GroupNeverSharesSlide(t *testing.T) {
	d := NewDetector(testSignatures())

	// One strong GTL slide, one weak-but-matching second slide. The two
	// overview types are in the same group and must land on different
	// slides.
	texts := []string{
		"Group Term Life\nEligibility\nBasis of Cover\nNon-evidence Limit\nLast Entry Age",
		"Hospital and Surgical\nEligibility\nBasis of Cover",
	}

	report := d.Detect(texts)
	gtl := report.Results[domain.SlideGTLOverview]
	ghs := report.Results[domain.SlideGHSOverview]
	require.False(t, gtl.UsedFallback)
	require.False(t, ghs.UsedFallback)
	assert.NotEqual(t, gtl.Slide, ghs.Slide)
}

func TestDetect_MediumConfidenceWarns(t *testing.T) {
	d := NewDetector(testSignatures())

	// Primary only, no unique hit: 50 + 0 + 0 = 0.50, between the
	// thresholds.
	texts := []string{"Group Term Life"}

	report := d.Detect(texts)
	res := report.Results[domain.SlideGTLOverview]
	assert.Equal(t, 1, res.Slide)
	assert.False(t, res.UsedFallback)
	assert.InDelta(t, 0.50, res.Confidence, 0.001)
	assert.NotEmpty(t, report.Warnings)
}

func TestDetect_FallbackSlideStaysInPool(t *testing.T) {
	sigs := []domain.SlideSignature{
		{Type: "A", Primary: []string{"nowhere"}, Fallback: 1, Group: "g", Sequence: 1},
		{Type: "B", Primary: []string{"target"}, Fallback: 2, Group: "g", Sequence: 2},
	}
	d := NewDetector(sigs)

	// A falls back to slide 1; B genuinely matches slide 1. The fallback
	// must not block B's real match.
	report := d.Detect([]string{"target content here"})
	assert.True(t, report.Results["A"].UsedFallback)
	assert.Equal(t, 1, report.Results["A"].Slide)
	assert.False(t, report.Results["B"].UsedFallback)
	assert.Equal(t, 1, report.Results["B"].Slide)
}

func TestDetect_Deterministic(t *testing.T) {
	d := NewDetector(testSignatures())
	texts := []string{
		"Group Term Life\nEligibility\nBasis of Cover\nNon-evidence Limit\nLast Entry Age",
		"Hospital & Surgical\nEligibility\nBasis of Cover",
		"Group Term Life\nSchedule of Benefits\nSum Assured\nDeath Benefit",
	}

	first := d.Detect(texts)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first.Results, d.Detect(texts).Results)
	}
}

func TestDetect_WordBoundary(t *testing.T) {
	sigs := []domain.SlideSignature{
		{Type: "A", Primary: []string{"GTL"}, Fallback: 1},
	}
	d := NewDetector(sigs)

	// Embedded in a longer word: no match.
	report := d.Detect([]string{"SGTLX overview"})
	assert.True(t, report.Results["A"].UsedFallback)

	// Case-insensitive standalone token: match.
	report = d.Detect([]string{"gtl overview"})
	assert.False(t, report.Results["A"].UsedFallback)
}
