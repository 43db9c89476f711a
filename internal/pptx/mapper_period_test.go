package pptx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

func period(formatted string) *domain.PeriodOfInsurance {
	return &domain.PeriodOfInsurance{Formatted: formatted}
}

func TestMapPeriod_InlineFragment(t *testing.T) {
	markup := `<a:p><a:r><a:rPr sz="2000"/><a:t>Period of Insurance: 1 July 2024 to 30 June 2025</a:t></a:r></a:p>`

	out, res := MapPeriod(markup, 1, period("1 August 2025 to 31 July 2026"))
	require.Len(t, res.Updated, 1)
	assert.Empty(t, res.Errors)
	assert.Contains(t, out, "Period of Insurance: 1 August 2025 to 31 July 2026")
	assert.NotContains(t, out, "2024")
	assert.Contains(t, out, `<a:rPr sz="2000"/>`)
}

func TestMapPeriod_SplitFragments(t *testing.T) {
	// Label and value in separate runs; the value run keeps its colon.
	markup := `<a:p><a:r><a:t>Period of Insurance</a:t></a:r>` +
		`<a:r><a:rPr i="1"/><a:t>: 1 July 2024 to 30 June 2025</a:t></a:r></a:p>`

	out, res := MapPeriod(markup, 1, period("1 August 2025 to 31 July 2026"))
	require.Len(t, res.Updated, 1)
	assert.Contains(t, out, `<a:t>: 1 August 2025 to 31 July 2026</a:t>`)
	assert.Contains(t, out, `<a:t>Period of Insurance</a:t>`)
}

func TestMapPeriod_TableRow(t *testing.T) {
	markup := table(tableRow("Period of Insurance", "1 July 2024 to 30 June 2025"))

	out, res := MapPeriod(markup, 1, period("1 August 2025 to 31 July 2026"))
	require.Len(t, res.Updated, 1)
	assert.Contains(t, out, "1 August 2025 to 31 July 2026")
}

func TestMapPeriod_NotFound(t *testing.T) {
	markup := table(tableRow("Policyholder", "Acme Pte Ltd"))

	out, res := MapPeriod(markup, 1, period("1 August 2025 to 31 July 2026"))
	assert.Equal(t, markup, out)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, PeriodLabel, res.Errors[0].Field)
	assert.Contains(t, res.Errors[0].Hint, "Policyholder")
}

func TestMapPeriod_NoValue(t *testing.T) {
	markup := `<a:p><a:r><a:t>Period of Insurance: x</a:t></a:r></a:p>`

	out, res := MapPeriod(markup, 1, period("  "))
	assert.Equal(t, markup, out)
	require.Len(t, res.Errors, 1)
}
