package pptx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateCategoryMatchScore(t *testing.T) {
	tests := []struct {
		name    string
		a, b    string
		isMatch bool
	}{
		{"identical", "All Employees", "All Employees", true},
		{"ampersand drift", "Management & Support Staff", "Management and Support Staff", true},
		{"case and spacing", "  management and support STAFF ", "Management & Support Staff", true},
		{"word order", "Support and Management Staff", "Management and Support Staff", true},
		{"unrelated", "Sales Associates", "Head Office Staff", false},
		{"empty", "", "Management Staff", false},
		{"both empty", "", "", false},
		{"partial overlap below threshold", "Senior Management Team", "Management and Support Staff", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := CalculateCategoryMatchScore(tt.a, tt.b)
			assert.Equal(t, tt.isMatch, m.IsMatch, "score=%.2f method=%s", m.Score, m.Method)
		})
	}
}

func TestCalculateCategoryMatchScore_Methods(t *testing.T) {
	m := CalculateCategoryMatchScore("Management & Support Staff", "Management and Support Staff")
	assert.True(t, m.IsMatch)
	assert.Equal(t, "jaccard", m.Method)
	assert.InDelta(t, 1.0, m.Score, 0.001)

	// Long labels that diverge after the probe still match on prefix.
	m = CalculateCategoryMatchScore("General Insurance Claims Department", "General Insurance Claims Dept")
	assert.True(t, m.IsMatch)
}

func TestCalculateCategoryMatchScore_FirstWords(t *testing.T) {
	// Shares the first three words but diverges in tail wording; token
	// overlap alone is not enough.
	m := CalculateCategoryMatchScore(
		"All Full Time Permanent Singapore Based Office Employees",
		"All Full Time Contractual Malaysia Based Field Associates")
	assert.True(t, m.IsMatch)
	assert.Equal(t, "first-words", m.Method)
}

func TestBestCategoryIndex(t *testing.T) {
	candidates := []string{"Management & Support Staff", "Sales Associates", "All Other Employees"}

	assert.Equal(t, 0, BestCategoryIndex("Management and Support Staff", candidates))
	assert.Equal(t, 1, BestCategoryIndex("Sales Associates", candidates))
	assert.Equal(t, -1, BestCategoryIndex("Retired Directors", candidates))
}
