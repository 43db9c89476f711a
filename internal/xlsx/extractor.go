package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driven"
	"github.com/custodia-labs/slipdeck/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.PlacementExtractor = (*Extractor)(nil)

// Section markers and field labels recognised in placement slips.
var (
	gtlMarkers = []string{"group term life", "gtl"}
	ghsMarkers = []string{"group hospital & surgical", "group hospital and surgical", "ghs"}

	periodLabels       = []string{"Period of Insurance", "Policy Period"}
	eligibilityLabels  = []string{"Eligibility"}
	lastEntryAgeLabels = []string{"Last Entry Age", "Maximum Entry Age", "Max Entry Age"}
	nonEvidenceLabels  = []string{"Non-evidence Limit", "Non Evidence Limit", "Free Cover Limit"}
	basisLabel         = "Basis of Cover"
	scheduleLabel      = "Schedule of Benefits"
)

// benefitNumberRe matches the leading identifier of a schedule row.
var benefitNumberRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*)[.)]?\s*$`)

// subItemRe matches a sub-item description such as "(a) Room and Board".
var subItemRe = regexp.MustCompile(`^\s*\([a-z0-9]{1,3}\)`)

// dateLayouts are the slip date formats accepted, most common first.
var dateLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"02/01/2006",
	"2/1/2006",
	"2006-01-02",
	"January 2, 2006",
}

// Extractor reads placement slip workbooks into PlacementData.
type Extractor struct{}

// NewExtractor creates a placement slip extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract parses slip bytes. Returns domain.ErrNoPlacementData when no
// recognisable section is found, and domain.ErrInvalidInput when the
// bytes are not a workbook.
func (e *Extractor) Extract(_ context.Context, slip []byte) (*domain.PlacementData, error) {
	f, err := excelize.OpenReader(bytes.NewReader(slip))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	data := &domain.PlacementData{}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		e.extractSheet(sheet, rows, data)
	}

	if data.IsEmpty() {
		return nil, domain.ErrNoPlacementData
	}
	return data, nil
}

// extractSheet pulls whatever sections a sheet carries. A slip may hold
// everything on one sheet or split products across several.
func (e *Extractor) extractSheet(sheet string, rows [][]string, data *domain.PlacementData) {
	if data.PeriodOfInsurance == nil {
		if v := labelValue(rows, periodLabels); v != "" {
			data.PeriodOfInsurance = parsePeriod(v)
			logger.Debug("sheet %s: period of insurance %q", sheet, data.PeriodOfInsurance.Formatted)
		}
	}

	for _, block := range productBlocks(sheet, rows) {
		switch block.product {
		case "gtl":
			if overview := extractOverview(block.rows); overview != nil && data.GTLOverview == nil {
				data.GTLOverview = overview
			}
			if sched := extractSchedule(block.rows); sched != nil && data.GTLSchedule == nil {
				data.GTLSchedule = sched
			}
		case "ghs":
			if overview := extractOverview(block.rows); overview != nil && data.GHSOverview == nil {
				data.GHSOverview = overview
			}
			if sched := extractSchedule(block.rows); sched != nil && data.GHSSchedule == nil {
				data.GHSSchedule = sched
			}
		}
	}
}

// productBlock is a run of rows belonging to one product line.
type productBlock struct {
	product string
	rows    [][]string
}

// productBlocks slices a sheet into per-product row ranges. A sheet
// whose name identifies the product is one whole block; otherwise
// product marker rows split the sheet.
func productBlocks(sheet string, rows [][]string) []productBlock {
	if p := classifyText(sheet); p != "" {
		return []productBlock{{product: p, rows: rows}}
	}

	var blocks []productBlock
	start := 0
	for i, row := range rows {
		p := classifyRow(row)
		if p == "" {
			continue
		}
		if len(blocks) > 0 {
			blocks[len(blocks)-1].rows = rows[start:i]
		}
		blocks = append(blocks, productBlock{product: p})
		start = i
	}
	if len(blocks) > 0 {
		blocks[len(blocks)-1].rows = rows[start:]
	}
	return blocks
}

// classifyRow identifies a product marker row: a short row whose first
// populated cell names the product.
func classifyRow(row []string) string {
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		return classifyText(cell)
	}
	return ""
}

// classifyText maps text to a product code, or "".
func classifyText(s string) string {
	low := strings.ToLower(strings.TrimSpace(s))
	for _, m := range ghsMarkers {
		if low == m || strings.HasPrefix(low, m) {
			return "ghs"
		}
	}
	for _, m := range gtlMarkers {
		if low == m || strings.HasPrefix(low, m) {
			return "gtl"
		}
	}
	return ""
}

// extractOverview reads the label-addressed overview fields and the
// basis of cover block. Returns nil when the rows carry none of them.
func extractOverview(rows [][]string) *domain.OverviewData {
	overview := &domain.OverviewData{}
	found := false

	if v := labelValue(rows, eligibilityLabels); v != "" {
		overview.Eligibility, found = &v, true
	}
	if v := labelValue(rows, lastEntryAgeLabels); v != "" {
		overview.LastEntryAge, found = &v, true
	}
	if v := labelValue(rows, nonEvidenceLabels); v != "" {
		overview.NonEvidenceLimit, found = &v, true
	}
	if basis := extractBasisBlock(rows); len(basis) > 0 {
		overview.BasisOfCover, found = basis, true
	}

	if !found {
		return nil
	}
	return overview
}

// extractBasisBlock walks the rows beneath a "Basis of Cover" heading:
// each row pairs a category with its basis, and the block ends at the
// first row with no such pair.
func extractBasisBlock(rows [][]string) []domain.BasisEntry {
	start := -1
	for i, row := range rows {
		if rowHasLabel(row, basisLabel) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}

	// The heading row itself may carry the first pair to its right.
	var entries []domain.BasisEntry
	for _, row := range rows[start+1:] {
		category, basis := firstPair(row)
		if category == "" || basis == "" {
			break
		}
		// A new labelled section ends the block.
		if isKnownLabel(category) {
			break
		}
		entries = append(entries, domain.BasisEntry{Category: category, Basis: basis})
	}
	return entries
}

// extractSchedule reads the schedule of benefits grid: a heading row, a
// header row naming the plan columns, then numbered benefit rows with
// sub-item rows beneath them.
func extractSchedule(rows [][]string) *domain.ScheduleData {
	start := -1
	for i, row := range rows {
		if rowHasLabel(row, scheduleLabel) {
			start = i
			break
		}
	}
	if start < 0 || start+1 >= len(rows) {
		return nil
	}

	// Header row: the first following row with at least one populated
	// cell beyond the description columns.
	headerIdx := -1
	var headers []string
	for i := start + 1; i < len(rows); i++ {
		if cells := planHeaderCells(rows[i]); len(cells) > 0 {
			headerIdx, headers = i, cells
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}

	sched := &domain.ScheduleData{PlanHeaders: headers}
	var current *domain.Benefit
	for _, row := range rows[headerIdx+1:] {
		number := cellAt(row, 0)
		name := cellAt(row, 1)
		if number == "" && name == "" {
			break
		}

		if m := benefitNumberRe.FindStringSubmatch(number); m != nil && name != "" {
			sched.Benefits = append(sched.Benefits, domain.Benefit{
				Number: m[1],
				Name:   name,
				Values: planValues(row, headers),
			})
			current = &sched.Benefits[len(sched.Benefits)-1]
			continue
		}
		if number == "" && subItemRe.MatchString(strings.ToLower(name)) && current != nil {
			current.SubItems = append(current.SubItems, domain.Benefit{
				Name:   name,
				Values: planValues(row, headers),
			})
		}
	}

	if len(sched.Benefits) == 0 {
		return nil
	}
	return sched
}

// planHeaderCells returns the populated cells from column 3 onwards when
// they look like a header row (first two columns empty or a heading).
func planHeaderCells(row []string) []string {
	var cells []string
	for i := 2; i < len(row); i++ {
		if v := strings.TrimSpace(row[i]); v != "" {
			cells = append(cells, v)
		}
	}
	if len(cells) == 0 {
		return nil
	}
	// A row that already starts with a benefit number is data, not a header.
	if benefitNumberRe.MatchString(cellAt(row, 0)) {
		return nil
	}
	return cells
}

// planValues maps plan headers to the row's value cells, aligned from
// column 3 onwards in header order.
func planValues(row []string, headers []string) map[string]string {
	values := make(map[string]string, len(headers))
	for i, h := range headers {
		if v := cellAt(row, 2+i); v != "" {
			values[h] = v
		}
	}
	return values
}

// labelValue finds the first cell matching any label and returns the
// value beside it: the remainder after an in-cell colon, or the next
// populated cell to the right.
func labelValue(rows [][]string, labels []string) string {
	for _, row := range rows {
		for i, cell := range row {
			cell = strings.TrimSpace(cell)
			for _, label := range labels {
				if !hasLabelPrefix(cell, label) {
					continue
				}
				rest := strings.TrimSpace(strings.TrimPrefix(cell[len(label):], ":"))
				if rest != "" {
					return rest
				}
				for j := i + 1; j < len(row); j++ {
					if v := strings.TrimSpace(row[j]); v != "" {
						return v
					}
				}
			}
		}
	}
	return ""
}

// hasLabelPrefix matches a cell against a label: exact, or label
// followed only by a colon-delimited value. A longer label ("Eligibility
// Date") never matches a shorter one ("Eligibility").
func hasLabelPrefix(cell, label string) bool {
	if len(cell) < len(label) || !strings.EqualFold(cell[:len(label)], label) {
		return false
	}
	rest := strings.TrimSpace(cell[len(label):])
	return rest == "" || strings.HasPrefix(rest, ":")
}

func rowHasLabel(row []string, label string) bool {
	for _, cell := range row {
		if hasLabelPrefix(strings.TrimSpace(cell), label) {
			return true
		}
	}
	return false
}

// isKnownLabel reports whether text is one of the overview field labels,
// which terminates a basis of cover block.
func isKnownLabel(s string) bool {
	for _, labels := range [][]string{eligibilityLabels, lastEntryAgeLabels, nonEvidenceLabels, {scheduleLabel}} {
		for _, l := range labels {
			if hasLabelPrefix(s, l) {
				return true
			}
		}
	}
	return false
}

// firstPair returns the first two populated cells of a row.
func firstPair(row []string) (string, string) {
	var first, second string
	for _, cell := range row {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			continue
		}
		if first == "" {
			first = cell
			continue
		}
		second = cell
		break
	}
	return first, second
}

func cellAt(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parsePeriod splits a period string into its endpoints and normalises
// recognisable dates to the display layout. Unparseable endpoints pass
// through as written, so an odd slip degrades rather than fails.
func parsePeriod(v string) *domain.PeriodOfInsurance {
	p := &domain.PeriodOfInsurance{Formatted: v}
	parts := splitRange(v)
	if len(parts) != 2 {
		return p
	}
	p.Start = normaliseDate(parts[0])
	p.End = normaliseDate(parts[1])
	p.Formatted = p.Start + " to " + p.End
	return p
}

// splitRange splits on the common range separators.
func splitRange(v string) []string {
	for _, sep := range []string{" to ", " - ", " – ", " till "} {
		if strings.Contains(v, sep) {
			parts := strings.SplitN(v, sep, 2)
			return []string{strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])}
		}
	}
	return nil
}

// normaliseDate renders a recognised date as "2 January 2006".
func normaliseDate(s string) string {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2 January 2006")
		}
	}
	return s
}
