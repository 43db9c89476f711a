package xlsx

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driven"
)

// Ensure RecipientList implements the interface.
var _ driven.RecipientSource = (*RecipientList)(nil)

// Recipient list column headers recognised on the first row. Without a
// header row, columns default to email, name, company.
var (
	emailHeaders   = []string{"email", "email address", "e-mail"}
	nameHeaders    = []string{"name", "contact", "contact name"}
	companyHeaders = []string{"company", "organisation", "organization"}
)

// StatusColumnHeader names the write-back column appended by
// AnnotateStatuses.
const StatusColumnHeader = "Send Status"

// RecipientList reads campaign recipient workbooks.
type RecipientList struct{}

// NewRecipientList creates a recipient list reader.
func NewRecipientList() *RecipientList {
	return &RecipientList{}
}

// Load parses recipients from the first sheet. Row numbers are 1-based
// workbook rows, preserved for status write-back.
func (l *RecipientList) Load(_ context.Context, list []byte) ([]driven.RecipientRow, error) {
	f, err := excelize.OpenReader(bytes.NewReader(list))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.ErrNoPlacementData
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	emailCol, nameCol, companyCol, hasHeader := detectColumns(rows[0])
	start := 0
	if hasHeader {
		start = 1
	}

	var out []driven.RecipientRow
	for i := start; i < len(rows); i++ {
		email := cellAt(rows[i], emailCol)
		if email == "" {
			continue
		}
		out = append(out, driven.RecipientRow{
			Row:     i + 1,
			Email:   email,
			Name:    cellAt(rows[i], nameCol),
			Company: cellAt(rows[i], companyCol),
		})
	}
	return out, nil
}

// AnnotateStatuses writes each row's delivery status into a status
// column on the first sheet and returns the updated workbook bytes.
// The column is created after the last populated header cell on first
// use and reused on later runs.
func (l *RecipientList) AnnotateStatuses(list []byte, statuses map[int]string) ([]byte, error) {
	f, err := excelize.OpenReader(bytes.NewReader(list))
	if err != nil {
		return nil, fmt.Errorf("%w: open workbook: %v", domain.ErrInvalidInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, domain.ErrNoPlacementData
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
	}

	col := statusColumn(rows)
	header, err := excelize.CoordinatesToCellName(col, 1)
	if err != nil {
		return nil, fmt.Errorf("status column: %w", err)
	}
	if err := f.SetCellValue(sheet, header, StatusColumnHeader); err != nil {
		return nil, fmt.Errorf("write status header: %w", err)
	}

	for row, status := range statuses {
		cell, err := excelize.CoordinatesToCellName(col, row)
		if err != nil {
			return nil, fmt.Errorf("status cell for row %d: %w", row, err)
		}
		if err := f.SetCellValue(sheet, cell, status); err != nil {
			return nil, fmt.Errorf("write status for row %d: %w", row, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialise workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// statusColumn returns the 1-based column for statuses: an existing
// status column, or the first free one after the widest row.
func statusColumn(rows [][]string) int {
	if len(rows) > 0 {
		for i, h := range rows[0] {
			if strings.EqualFold(strings.TrimSpace(h), StatusColumnHeader) {
				return i + 1
			}
		}
	}
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width + 1
}

// detectColumns maps header names to column indexes. When the first row
// has no recognisable header the positional default applies and the row
// is treated as data.
func detectColumns(header []string) (email, name, company int, hasHeader bool) {
	email, name, company = 0, 1, 2
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(h))
		switch {
		case matchesAny(h, emailHeaders):
			email, hasHeader = i, true
		case matchesAny(h, nameHeaders):
			name, hasHeader = i, true
		case matchesAny(h, companyHeaders):
			company, hasHeader = i, true
		}
	}
	return email, name, company, hasHeader
}

func matchesAny(s string, candidates []string) bool {
	for _, c := range candidates {
		if s == c {
			return true
		}
	}
	return false
}
