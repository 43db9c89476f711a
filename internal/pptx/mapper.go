package pptx

import (
	"regexp"
	"strings"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

// MapResult accumulates what one mapper managed to write and what it
// could not find. A missing row is data for the reviewer, never a
// process-aborting fault, so mappers return results instead of errors.
type MapResult struct {
	Updated []domain.FieldUpdate
	Errors  []domain.FieldError
}

// update records a successfully written field.
func (r *MapResult) update(slide int, field, value string) {
	r.Updated = append(r.Updated, domain.FieldUpdate{Slide: slide, Field: field, Value: value})
}

// fail records a field that could not be mapped.
func (r *MapResult) fail(slide int, field, msg, hint string) {
	r.Errors = append(r.Errors, domain.FieldError{Slide: slide, Field: field, Error: msg, Hint: hint})
}

// Merge appends another result's entries.
func (r *MapResult) Merge(other MapResult) {
	r.Updated = append(r.Updated, other.Updated...)
	r.Errors = append(r.Errors, other.Errors...)
}

// numericValueRe recognises plain or currency-prefixed numbers.
var numericValueRe = regexp.MustCompile(`^([A-Z]{0,3}\$|\$)?([0-9][0-9,]*)(\.[0-9]+)?$`)

// FormatNumber adds thousands separators to numeric-looking values,
// keeping any currency prefix and decimals. Non-numeric values pass
// through unchanged.
func FormatNumber(v string) string {
	m := numericValueRe.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return v
	}
	digits := strings.ReplaceAll(m[2], ",", "")
	return m[1] + groupThousands(digits) + m[3]
}

// groupThousands inserts commas into a bare digit string.
func groupThousands(digits string) string {
	n := len(digits)
	if n <= 3 {
		return digits
	}
	var b strings.Builder
	head := n % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < n; i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}

// containsFold is a case-insensitive substring test.
func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

// replaceAnyLabel tries ReplaceCellValue with each label synonym in turn.
func replaceAnyLabel(markup string, labels []string, value string) (string, bool) {
	for _, label := range labels {
		if out, ok := ReplaceCellValue(markup, label, value); ok {
			return out, true
		}
	}
	return markup, false
}

// rowLabelsHint lists the row labels actually present in the markup,
// for template-drift diagnosis in field error hints.
func rowLabelsHint(markup string) string {
	var labels []string
	for _, row := range FindRows(markup) {
		if len(row.Cells) == 0 {
			continue
		}
		if l := firstLine(strings.TrimSpace(row.Cells[0].Plain)); l != "" {
			labels = append(labels, l)
		}
	}
	if len(labels) == 0 {
		return "no table rows found on slide"
	}
	return "labels found: " + strings.Join(labels, ", ")
}
