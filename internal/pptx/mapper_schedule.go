package pptx

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

// benefitNumberRe matches the leading numeric identifier of a main
// benefit row, e.g. "1", "2.", "3)" or "2.1".
var benefitNumberRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)[.)]?(?:\s|$)`)

// subItemTokenRe matches a sub-item identifier token such as "(a)".
var subItemTokenRe = regexp.MustCompile(`^\s*\(([a-z0-9]{1,3})\)`)

// MapSchedule rewrites a schedule-of-benefits table: numbered main rows
// matched by identifier (or fuzzy name), unlabeled detail rows beneath
// them matched to the current benefit's sub-items by identifier token or
// keyword containment. Every plan column is updated independently and
// numeric-looking values get thousands separators.
func MapSchedule(markup string, slide int, data *domain.ScheduleData) (string, MapResult) {
	var res MapResult
	if data == nil || len(data.Benefits) == 0 {
		return markup, res
	}

	rows := FindRows(markup)
	headerIdx, columns := findPlanColumns(rows, data.PlanHeaders)
	if headerIdx < 0 {
		res.fail(slide, "Schedule of Benefits", "no header row matching plan columns",
			rowLabelsHint(markup))
		return markup, res
	}
	for _, h := range data.PlanHeaders {
		if _, ok := columns[h]; !ok {
			res.fail(slide, "Plan "+h, "plan column not found in header row", "")
		}
	}

	byNumber := make(map[string]*domain.Benefit, len(data.Benefits))
	for i := range data.Benefits {
		if n := strings.TrimSpace(data.Benefits[i].Number); n != "" {
			byNumber[n] = &data.Benefits[i]
		}
	}

	// Plan all cell edits against the original spans, then apply from
	// the highest offset down so earlier spans stay valid.
	type plannedEdit struct {
		cell  Cell
		value string
		field string
	}
	var edits []plannedEdit
	matched := make(map[*domain.Benefit]bool)

	planValues := func(row Row, values map[string]string, owner string) {
		for header, col := range columns {
			value, ok := values[header]
			if !ok || strings.TrimSpace(value) == "" || col >= len(row.Cells) {
				continue
			}
			formatted := FormatNumber(strings.TrimSpace(value))
			edits = append(edits, plannedEdit{
				cell:  row.Cells[col],
				value: formatted,
				field: fmt.Sprintf("%s (%s)", owner, header),
			})
		}
	}

	var current *domain.Benefit
	for _, row := range rows[headerIdx+1:] {
		if len(row.Cells) < 2 {
			continue
		}
		first := firstLine(row.Cells[0].Plain)
		second := firstLine(row.Cells[1].Plain)

		if m := benefitNumberRe.FindStringSubmatch(first); m != nil {
			benefit := byNumber[m[1]]
			if benefit == nil {
				benefit = benefitByName(data.Benefits, second)
			}
			current = benefit
			if benefit == nil {
				continue
			}
			matched[benefit] = true
			planValues(row, benefit.Values, benefit.Name)
			continue
		}

		// Detail row: empty first cell, non-empty second cell.
		if substantial(first) || !substantial(second) || current == nil {
			continue
		}
		sub := matchSubItem(current.SubItems, second)
		if sub == nil {
			continue
		}
		matched[sub] = true
		planValues(row, sub.Values, current.Name+" "+sub.Name)
	}

	sort.SliceStable(edits, func(i, j int) bool { return edits[i].cell.Start > edits[j].cell.Start })
	applied := make(map[int]bool)
	for _, e := range edits {
		if applied[e.cell.Start] {
			continue
		}
		if out, ok := InsertOrReplaceCellText(markup, e.cell, e.value); ok {
			markup = out
			applied[e.cell.Start] = true
			res.update(slide, e.field, e.value)
		} else {
			res.fail(slide, e.field, "cell not writable", "")
		}
	}
	// Report updates in a stable order regardless of edit direction.
	sort.SliceStable(res.Updated, func(i, j int) bool { return res.Updated[i].Field < res.Updated[j].Field })

	for i := range data.Benefits {
		b := &data.Benefits[i]
		if !matched[b] {
			res.fail(slide, benefitFieldName(b), "no matching table row", rowLabelsHint(markup))
		}
		for j := range b.SubItems {
			s := &b.SubItems[j]
			if !matched[s] {
				res.fail(slide, b.Name+" "+s.Name, "no matching detail row", "")
			}
		}
	}

	return markup, res
}

// benefitFieldName names a benefit for audit entries.
func benefitFieldName(b *domain.Benefit) string {
	if strings.TrimSpace(b.Number) != "" {
		return "Benefit " + strings.TrimSpace(b.Number) + " " + b.Name
	}
	return b.Name
}

// findPlanColumns locates the header row and maps each plan header to
// its cell index. The header row is the first row where at least one
// supplied plan header matches a cell.
func findPlanColumns(rows []Row, headers []string) (int, map[string]int) {
	for i, row := range rows {
		columns := make(map[string]int, len(headers))
		for _, h := range headers {
			for j := 1; j < len(row.Cells); j++ {
				cellText := firstLine(row.Cells[j].Plain)
				if !substantial(cellText) {
					continue
				}
				if CalculateCategoryMatchScore(cellText, h).IsMatch || containsFold(cellText, h) {
					if _, taken := columns[h]; !taken {
						columns[h] = j
					}
				}
			}
		}
		if len(columns) > 0 {
			return i, columns
		}
	}
	return -1, nil
}

// benefitByName fuzzy-matches a row's description against benefit names.
func benefitByName(benefits []domain.Benefit, text string) *domain.Benefit {
	if !substantial(text) {
		return nil
	}
	for i := range benefits {
		if CalculateCategoryMatchScore(text, benefits[i].Name).IsMatch {
			return &benefits[i]
		}
	}
	return nil
}

// matchSubItem finds the sub-item a detail row belongs to, by identifier
// token first ("(a)"), then by keyword containment against the name.
func matchSubItem(subs []domain.Benefit, text string) *domain.Benefit {
	if m := subItemTokenRe.FindStringSubmatch(strings.ToLower(text)); m != nil {
		token := "(" + m[1] + ")"
		for i := range subs {
			if strings.Contains(strings.ToLower(subs[i].Name), token) {
				return &subs[i]
			}
		}
	}

	normText := normaliseCategory(text)
	for i := range subs {
		for _, w := range strings.Fields(normaliseCategory(subs[i].Name)) {
			w = strings.Trim(w, "().,:;")
			if len(w) > 3 && strings.Contains(normText, w) {
				return &subs[i]
			}
		}
	}
	return nil
}
