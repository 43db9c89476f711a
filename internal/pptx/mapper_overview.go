package pptx

import (
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

// Field names reported in update results.
const (
	FieldEligibility      = "Eligibility"
	FieldLastEntryAge     = "Last Entry Age"
	FieldBasisOfCover     = "Basis of Cover"
	FieldNonEvidenceLimit = "Non-evidence Limit"
)

// Label synonyms tolerated across template revisions.
var (
	lastEntryAgeLabels = []string{"Last Entry Age", "Maximum Entry Age", "Max Entry Age"}
	nonEvidenceLabels  = []string{"Non-evidence Limit", "Non Evidence Limit", "Free Cover Limit"}
)

// ageFragmentRe recognises a fragment that is only colon-prefixed
// content beginning with an age marker, e.g. ": Age 65" or "65 years".
var ageFragmentRe = regexp.MustCompile(`(?i)^:?\s*(age\b|\d{1,3}\s*(years|yrs)\b)`)

// MapOverview rewrites the label-addressed fields of a product overview
// slide: eligibility, last entry age, basis of cover and non-evidence
// limit. Fields the slip did not supply are left untouched.
func MapOverview(markup string, slide int, data *domain.OverviewData) (string, MapResult) {
	var res MapResult
	if data == nil {
		return markup, res
	}

	if data.Eligibility != nil || data.LastEntryAge != nil {
		markup = mapEligibilityRow(markup, slide, data, &res)
	}

	if data.NonEvidenceLimit != nil {
		value := strings.TrimSpace(*data.NonEvidenceLimit)
		if out, ok := replaceAnyLabel(markup, nonEvidenceLabels, value); ok {
			markup = out
			res.update(slide, FieldNonEvidenceLimit, value)
		} else {
			res.fail(slide, FieldNonEvidenceLimit, "no non-evidence limit row", rowLabelsHint(markup))
		}
	}

	if len(data.BasisOfCover) > 0 {
		markup = mapBasisOfCover(markup, slide, data.BasisOfCover, &res)
	}

	return markup, res
}

// mapEligibilityRow handles both template layouts for eligibility and
// last entry age: separate rows, or one shared row whose value cell
// carries the eligibility clause and the age in two fragments. In the
// shared layout each fragment is updated independently; the two values
// are never concatenated into one fragment.
func mapEligibilityRow(markup string, slide int, data *domain.OverviewData, res *MapResult) string {
	var cell Cell
	found := false
	for _, row := range FindRows(markup) {
		if len(row.Cells) >= 2 && LabelMatches(firstLine(row.Cells[0].Plain), FieldEligibility) {
			cell = row.Cells[1]
			found = true
			break
		}
	}
	if !found {
		if data.Eligibility != nil {
			res.fail(slide, FieldEligibility, "no eligibility row", rowLabelsHint(markup))
		}
		return mapLastEntryAgeRow(markup, slide, data.LastEntryAge, res)
	}

	// Classify the value cell's substantial fragments: one may be the
	// colon-prefixed age clause, another the free-text eligibility.
	var ageTarget, eligTarget *Fragment
	frags := Fragments(cell.Markup)
	for i := range frags {
		f := &frags[i]
		if !substantial(f.Text) {
			continue
		}
		if ageFragmentRe.MatchString(strings.TrimSpace(f.Text)) {
			if ageTarget == nil {
				ageTarget = f
			}
		} else if eligTarget == nil {
			eligTarget = f
		}
	}

	type splice struct {
		frag         Fragment
		text         string
		field, value string
	}
	var splices []splice
	ageHandled := ageTarget != nil

	if data.LastEntryAge != nil && ageTarget != nil {
		value := strings.TrimSpace(*data.LastEntryAge)
		text := value
		if strings.HasPrefix(strings.TrimSpace(ageTarget.Text), ":") {
			text = ": " + value
		}
		splices = append(splices, splice{*ageTarget, text, FieldLastEntryAge, value})
	}

	needInsert := false
	if data.Eligibility != nil {
		if eligTarget != nil {
			value := strings.TrimSpace(*data.Eligibility)
			splices = append(splices, splice{*eligTarget, value, FieldEligibility, value})
		} else {
			// No free-text fragment to take the clause; a fresh run is
			// inserted after the splices so spans stay valid. The age
			// clause, when present, is never overwritten.
			needInsert = true
		}
	}

	// Apply fragment splices right to left so spans stay valid.
	sort.Slice(splices, func(i, j int) bool { return splices[i].frag.Start > splices[j].frag.Start })
	for _, sp := range splices {
		markup = spliceFragment(markup, cell.Start, sp.frag, sp.text)
		res.update(slide, sp.field, sp.value)
	}

	if needInsert {
		value := strings.TrimSpace(*data.Eligibility)
		inserted := false
		for _, row := range FindRows(markup) {
			if len(row.Cells) < 2 || !LabelMatches(firstLine(row.Cells[0].Plain), FieldEligibility) {
				continue
			}
			if out, ok := insertRunInCell(markup, row.Cells[1], value); ok {
				markup = out
				res.update(slide, FieldEligibility, value)
				inserted = true
			}
			break
		}
		if !inserted {
			res.fail(slide, FieldEligibility, "eligibility cell not writable", rowLabelsHint(markup))
		}
	}

	if data.LastEntryAge != nil && !ageHandled {
		// Shared cell has no age fragment: fall back to a dedicated row.
		markup = mapLastEntryAgeRow(markup, slide, data.LastEntryAge, res)
	}
	return markup
}

// mapLastEntryAgeRow writes the last entry age into its own table row.
func mapLastEntryAgeRow(markup string, slide int, age *string, res *MapResult) string {
	if age == nil {
		return markup
	}
	value := strings.TrimSpace(*age)
	if out, ok := replaceAnyLabel(markup, lastEntryAgeLabels, value); ok {
		res.update(slide, FieldLastEntryAge, value)
		return out
	}
	res.fail(slide, FieldLastEntryAge, "no last entry age row", rowLabelsHint(markup))
	return markup
}

// mapBasisOfCover writes the category/basis list. Three template styles
// are recognised, tried in order: a category table whose rows fuzzy-match
// supplied categories, a bullet list inside a "Basis of Cover" row
// matched positionally, and finally a wholesale rebuild of the value
// cell when no bullet markup can be located.
func mapBasisOfCover(markup string, slide int, entries []domain.BasisEntry, res *MapResult) string {
	categories := make([]string, len(entries))
	for i, e := range entries {
		categories[i] = e.Category
	}

	// Style 1: category table rows. Each category claims one row and
	// each row is claimed once.
	matched := 0
	claimedRows := make(map[string]bool)
	for {
		edited := false
		for _, row := range FindRows(markup) {
			if len(row.Cells) < 2 {
				continue
			}
			label := firstLine(row.Cells[0].Plain)
			if claimedRows[label] {
				continue
			}
			idx := BestCategoryIndex(label, categories)
			if idx < 0 || categories[idx] == "" {
				continue
			}
			value := strings.TrimSpace(entries[idx].Basis)
			out, ok := InsertOrReplaceCellText(markup, row.Cells[1], value)
			if !ok {
				continue
			}
			markup = out
			res.update(slide, FieldBasisOfCover+" - "+entries[idx].Category, value)
			categories[idx] = ""
			claimedRows[label] = true
			matched++
			edited = true
			break // rescan: spans shifted
		}
		if !edited {
			break
		}
	}
	if matched > 0 {
		for i, c := range categories {
			if c != "" {
				res.fail(slide, FieldBasisOfCover+" - "+c, "no matching category row",
					"basis "+entries[i].Basis+" not written; "+rowLabelsHint(markup))
			}
		}
		return markup
	}

	// Style 2 and 3: bullet list in the labelled row's value cell.
	for _, row := range FindRows(markup) {
		if len(row.Cells) < 2 || !LabelMatches(firstLine(row.Cells[0].Plain), FieldBasisOfCover) {
			continue
		}
		cell := row.Cells[1]
		paras := paragraphRe.FindAllStringIndex(cell.Markup, -1)
		if len(paras) == 0 {
			out, ok := rebuildCellParagraphs(markup, cell, entries)
			if !ok {
				res.fail(slide, FieldBasisOfCover, "basis of cover cell not writable", "")
				return markup
			}
			for _, e := range entries {
				res.update(slide, FieldBasisOfCover+" - "+e.Category, e.Basis)
			}
			return out
		}

		// Positional: first bullet gets the first category. Extra
		// template bullets beyond the supplied entries stay untouched.
		n := len(entries)
		if n > len(paras) {
			n = len(paras)
			for _, e := range entries[len(paras):] {
				res.fail(slide, FieldBasisOfCover+" - "+e.Category,
					"more categories than template bullets", "")
			}
		}
		// Edit from the last bullet backwards so earlier spans hold.
		written := make([]bool, n)
		for i := n - 1; i >= 0; i-- {
			p := paras[i]
			para := Cell{
				Start:  cell.Start + p[0],
				End:    cell.Start + p[1],
				Markup: cell.Markup[p[0]:p[1]],
			}
			text := entries[i].Category + ": " + entries[i].Basis
			if out, ok := InsertOrReplaceCellText(markup, para, text); ok {
				markup = out
				written[i] = true
			} else {
				res.fail(slide, FieldBasisOfCover+" - "+entries[i].Category,
					"template bullet not writable", "")
			}
		}
		for i := 0; i < n; i++ {
			if written[i] {
				res.update(slide, FieldBasisOfCover+" - "+entries[i].Category, entries[i].Basis)
			}
		}
		return markup
	}

	res.fail(slide, FieldBasisOfCover, "no basis of cover row or category table", rowLabelsHint(markup))
	return markup
}

// rebuildCellParagraphs replaces the cell's paragraph content wholesale,
// generating one paragraph per entry plus the formatting-only empty
// trailing paragraph the container format requires for a well-formed cell.
func rebuildCellParagraphs(markup string, cell Cell, entries []domain.BasisEntry) (string, bool) {
	bodyStart := strings.Index(cell.Markup, "<a:txBody")
	if bodyStart < 0 {
		return markup, false
	}
	bodyOpenEnd := strings.IndexByte(cell.Markup[bodyStart:], '>')
	if bodyOpenEnd < 0 {
		return markup, false
	}
	bodyEnd := strings.Index(cell.Markup, "</a:txBody>")
	if bodyEnd < 0 {
		return markup, false
	}

	inner := cell.Markup[bodyStart+bodyOpenEnd+1 : bodyEnd]
	// Keep bodyPr/lstStyle that precede the first paragraph.
	head := inner
	if i := strings.Index(inner, "<a:p"); i >= 0 {
		head = inner[:i]
	}

	var b strings.Builder
	b.WriteString(head)
	for _, e := range entries {
		b.WriteString("<a:p><a:r><a:t>")
		b.WriteString(EscapeText(e.Category + ": " + e.Basis))
		b.WriteString("</a:t></a:r></a:p>")
	}
	b.WriteString("<a:p><a:endParaRPr/></a:p>")

	absInnerStart := cell.Start + bodyStart + bodyOpenEnd + 1
	absInnerEnd := cell.Start + bodyEnd
	return markup[:absInnerStart] + b.String() + markup[absInnerEnd:], true
}
