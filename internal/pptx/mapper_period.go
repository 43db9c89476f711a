package pptx

import (
	"strings"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

// PeriodLabel is the cover slide label the period mapper anchors on.
const PeriodLabel = "Period of Insurance"

// MapPeriod writes the policy period onto the cover slide. The period
// usually lives in a free paragraph ("Period of Insurance: 1 July 2024
// to 30 June 2025"), occasionally in a label/value table row; both
// layouts are handled.
func MapPeriod(markup string, slide int, p *domain.PeriodOfInsurance) (string, MapResult) {
	var res MapResult
	if p == nil || strings.TrimSpace(p.Formatted) == "" {
		res.fail(slide, PeriodLabel, "no formatted period supplied", "")
		return markup, res
	}
	value := strings.TrimSpace(p.Formatted)

	frags := Fragments(markup)
	for i, f := range frags {
		if !containsFold(f.Text, PeriodLabel) {
			continue
		}

		// Inline form: label and value share one fragment.
		if idx := strings.Index(f.Text, ":"); idx >= 0 && substantial(f.Text[idx+1:]) {
			out := spliceFragment(markup, 0, f, f.Text[:idx+1]+" "+value)
			res.update(slide, PeriodLabel, value)
			return out, res
		}

		// Split form: the value sits in the next substantial fragment.
		for j := i + 1; j < len(frags); j++ {
			next := frags[j]
			if !substantial(next.Text) {
				continue
			}
			text := value
			if strings.HasPrefix(strings.TrimSpace(next.Text), ":") {
				text = ": " + value
			}
			out := spliceFragment(markup, 0, next, text)
			res.update(slide, PeriodLabel, value)
			return out, res
		}
	}

	// Table form.
	if out, ok := ReplaceCellValue(markup, PeriodLabel, value); ok {
		res.update(slide, PeriodLabel, value)
		return out, res
	}

	res.fail(slide, PeriodLabel, "period of insurance text not found", rowLabelsHint(markup))
	return markup, res
}
