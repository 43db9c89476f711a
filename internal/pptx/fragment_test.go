package pptx

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tableRow builds an <a:tr> with one <a:tc> per cell text. An empty
// string produces a cell whose run holds only a placeholder colon.
func tableRow(cells ...string) string {
	var b strings.Builder
	b.WriteString(`<a:tr h="370840">`)
	for _, c := range cells {
		b.WriteString(`<a:tc><a:txBody><a:bodyPr/><a:p><a:r><a:rPr lang="en-US" b="1"/><a:t>`)
		b.WriteString(EscapeText(c))
		b.WriteString(`</a:t></a:r></a:p></a:txBody></a:tc>`)
	}
	b.WriteString(`</a:tr>`)
	return b.String()
}

func table(rows ...string) string {
	return `<a:tbl><a:tblGrid/>` + strings.Join(rows, "") + `</a:tbl>`
}

func TestFragments(t *testing.T) {
	markup := `<a:p><a:r><a:t>first</a:t></a:r><a:r><a:t>second &amp; third</a:t></a:r><a:r><a:t/></a:r></a:p>`

	frags := Fragments(markup)
	require.Len(t, frags, 3)
	assert.Equal(t, "first", frags[0].Text)
	assert.Equal(t, "second & third", frags[1].Text)
	assert.Equal(t, -1, frags[2].ContentStart)
	assert.Empty(t, frags[2].Text)

	// Spans are absolute in the input.
	assert.Equal(t, "first", markup[frags[0].ContentStart:frags[0].ContentEnd])
}

func TestPlainText_JoinsParagraphs(t *testing.T) {
	markup := `<a:p><a:r><a:t>Group Term </a:t></a:r><a:r><a:t>Life</a:t></a:r></a:p>` +
		`<a:p><a:r><a:t>Schedule of Benefits</a:t></a:r></a:p>` +
		`<a:p><a:r><a:t>   </a:t></a:r></a:p>`

	assert.Equal(t, "Group Term Life\nSchedule of Benefits", PlainText(markup))
}

func TestPlainText_NoParagraphs(t *testing.T) {
	assert.Equal(t, "bare text", PlainText(`<a:t> bare text </a:t>`))
	assert.Empty(t, PlainText(`<a:sp><a:nvSpPr/></a:sp>`))
}

func TestLabelMatches(t *testing.T) {
	assert.True(t, LabelMatches("Eligibility", "Eligibility"))
	assert.True(t, LabelMatches("eligibility", "Eligibility"))
	assert.True(t, LabelMatches("Eligibility:", "Eligibility"))
	assert.True(t, LabelMatches("Eligibility : ", "Eligibility"))

	// A bare prefix must not match: "Eligibility" is not
	// "Eligibility Date".
	assert.False(t, LabelMatches("Eligibility Date", "Eligibility"))
	assert.False(t, LabelMatches("Period", "Period of Insurance"))
	assert.False(t, LabelMatches("", "Eligibility"))
	assert.False(t, LabelMatches("Eligibility", ""))
}

func TestReplaceCellValue(t *testing.T) {
	markup := table(
		tableRow("Eligibility", "All full-time employees"),
		tableRow("Last Entry Age", "Age 64"),
	)

	out, ok := ReplaceCellValue(markup, "Eligibility", "All active employees aged 16 to 70")
	require.True(t, ok)
	assert.Contains(t, out, "All active employees aged 16 to 70")
	assert.NotContains(t, out, "All full-time employees")
	// The neighbouring row is untouched.
	assert.Contains(t, out, "Age 64")
	// Formatting attributes survive.
	assert.Contains(t, out, `<a:rPr lang="en-US" b="1"/>`)
}

func TestReplaceCellValue_NoMatchingRow(t *testing.T) {
	markup := table(tableRow("Premium Rates", "On request"))

	out, ok := ReplaceCellValue(markup, "Eligibility", "anything")
	assert.False(t, ok)
	assert.Equal(t, markup, out)
}

func TestReplaceCellValue_EscapesValue(t *testing.T) {
	markup := table(tableRow("Eligibility", "old"))

	out, ok := ReplaceCellValue(markup, "Eligibility", "Staff & Dependants <21")
	require.True(t, ok)
	assert.Contains(t, out, "Staff &amp; Dependants &lt;21")
}

func TestReplaceCellValue_EmptyValueCell(t *testing.T) {
	// Value cell run is self-closing: a run must be synthesized.
	markup := `<a:tr><a:tc><a:txBody><a:p><a:r><a:t>Eligibility</a:t></a:r></a:p></a:txBody></a:tc>` +
		`<a:tc><a:txBody><a:p><a:endParaRPr/></a:p></a:txBody></a:tc></a:tr>`

	out, ok := ReplaceCellValue(markup, "Eligibility", "All employees")
	require.True(t, ok)
	assert.Contains(t, out, "<a:r><a:t>All employees</a:t></a:r>")
}

func TestReplaceRunText(t *testing.T) {
	markup := `<a:p><a:r><a:rPr lang="en-US"/><a:t>Period: 1 Jan 2025</a:t></a:r></a:p>` +
		`<a:p><a:r><a:t>1 Jan 2025 again</a:t></a:r></a:p>`

	out := ReplaceRunText(markup, "1 Jan 2025", "1 Feb 2026")
	assert.Equal(t, 2, strings.Count(out, "1 Feb 2026"))
	assert.NotContains(t, out, "1 Jan 2025")
	assert.Contains(t, out, `<a:rPr lang="en-US"/>`)
}

func TestReplaceRunText_DoesNotTouchAttributes(t *testing.T) {
	// "title" appears in an attribute value and in a text node; only the
	// text node changes.
	markup := `<a:sp name="title"/><a:p><a:r><a:t>title</a:t></a:r></a:p>`

	out := ReplaceRunText(markup, "title", "heading")
	assert.Contains(t, out, `<a:sp name="title"/>`)
	assert.Contains(t, out, `<a:t>heading</a:t>`)
}

func TestReplaceRunText_EmptyOld(t *testing.T) {
	markup := `<a:p><a:r><a:t>unchanged</a:t></a:r></a:p>`
	assert.Equal(t, markup, ReplaceRunText(markup, "", "x"))
}

func TestInsertOrReplaceCellText_ConsolidatesRuns(t *testing.T) {
	// Text split across three formatting runs, a common artifact of
	// manual template editing.
	cellMarkup := `<a:tc><a:txBody><a:p>` +
		`<a:r><a:rPr b="1"/><a:t>S$ </a:t></a:r>` +
		`<a:r><a:rPr b="0"/><a:t>100,</a:t></a:r>` +
		`<a:r><a:t>000</a:t></a:r>` +
		`</a:p></a:txBody></a:tc>`
	markup := `<a:tr>` + cellMarkup + `</a:tr>`

	rows := FindRows(markup)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].Cells, 1)

	out, ok := InsertOrReplaceCellText(markup, rows[0].Cells[0], "S$ 250,000")
	require.True(t, ok)
	assert.Contains(t, out, "S$ 250,000")
	// First run's formatting survives; later runs are gone.
	assert.Contains(t, out, `<a:rPr b="1"/>`)
	assert.NotContains(t, out, "100,")
	assert.Equal(t, "S$ 250,000", PlainText(out))
}

func TestInsertOrReplaceCellText_EmptyCell(t *testing.T) {
	markup := `<a:tr><a:tc><a:txBody><a:p><a:endParaRPr/></a:p></a:txBody></a:tc></a:tr>`

	rows := FindRows(markup)
	require.Len(t, rows, 1)

	out, ok := InsertOrReplaceCellText(markup, rows[0].Cells[0], "filled")
	require.True(t, ok)
	assert.Equal(t, "filled", PlainText(out))
}

func TestFindRows_AbsoluteSpans(t *testing.T) {
	prefix := `<a:sp><a:txBody><a:p><a:r><a:t>heading</a:t></a:r></a:p></a:txBody></a:sp>`
	markup := prefix + table(tableRow("A", "B"), tableRow("C", "D"))

	rows := FindRows(markup)
	require.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, row.Markup, markup[row.Start:row.End])
		for _, cell := range row.Cells {
			assert.Equal(t, cell.Markup, markup[cell.Start:cell.End])
		}
	}
	assert.Equal(t, "A\nB", strings.Join([]string{rows[0].Cells[0].Plain, rows[0].Cells[1].Plain}, "\n"))
}
