package pptx

import (
	"regexp"
	"strings"
	"unicode"
)

// Structural patterns over DrawingML slide markup. Lazy matching is
// safe because none of these elements nest within themselves.
var (
	textFragmentRe = regexp.MustCompile(`(?s)<a:t(?:\s[^>]*)?(?:/>|>(.*?)</a:t>)`)
	paragraphRe    = regexp.MustCompile(`(?s)<a:p(?:\s[^>]*)?>.*?</a:p>`)
	runRe          = regexp.MustCompile(`(?s)<a:r(?:\s[^>]*)?>.*?</a:r>`)
	rowRe          = regexp.MustCompile(`(?s)<a:tr(?:\s[^>]*)?>.*?</a:tr>`)
	cellRe         = regexp.MustCompile(`(?s)<a:tc(?:\s[^>]*)?>.*?</a:tc>`)
)

var (
	escaper   = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")
	unescaper = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&quot;", `"`, "&apos;", "'", "&amp;", "&")
)

// EscapeText escapes the five reserved markup characters so arbitrary
// extracted business text can be embedded safely.
func EscapeText(s string) string {
	return escaper.Replace(s)
}

// UnescapeText reverses EscapeText.
func UnescapeText(s string) string {
	return unescaper.Replace(s)
}

// Fragment is one a:t text node located within a markup string.
// Start/End span the whole element; ContentStart/ContentEnd span the
// textual payload (both -1 for a self-closing <a:t/>).
type Fragment struct {
	Start, End               int
	ContentStart, ContentEnd int
	// Text is the unescaped payload.
	Text string
}

// Fragments returns every text fragment in the markup, in document order.
func Fragments(markup string) []Fragment {
	idx := textFragmentRe.FindAllStringSubmatchIndex(markup, -1)
	frags := make([]Fragment, 0, len(idx))
	for _, m := range idx {
		f := Fragment{Start: m[0], End: m[1], ContentStart: m[2], ContentEnd: m[3]}
		if f.ContentStart >= 0 {
			f.Text = UnescapeText(markup[f.ContentStart:f.ContentEnd])
		}
		frags = append(frags, f)
	}
	return frags
}

// Cell is one table cell with its absolute span in the slide markup.
type Cell struct {
	Start, End int
	// Markup is the full <a:tc>…</a:tc> element.
	Markup string
	// Inner is the markup between the cell tags.
	Inner string
	// Plain is the unescaped concatenated text.
	Plain string
}

// Row is one table row with its cells.
type Row struct {
	Start, End int
	Markup     string
	Plain      string
	Cells      []Cell
}

// FindRows returns every table row in the markup with its cells, in
// document order. Spans are absolute within markup so callers can edit
// in place.
func FindRows(markup string) []Row {
	var rows []Row
	for _, loc := range rowRe.FindAllStringIndex(markup, -1) {
		rowMarkup := markup[loc[0]:loc[1]]
		row := Row{Start: loc[0], End: loc[1], Markup: rowMarkup, Plain: PlainText(rowMarkup)}
		for _, cl := range cellRe.FindAllStringIndex(rowMarkup, -1) {
			cellMarkup := rowMarkup[cl[0]:cl[1]]
			row.Cells = append(row.Cells, Cell{
				Start:  loc[0] + cl[0],
				End:    loc[0] + cl[1],
				Markup: cellMarkup,
				Inner:  cellInner(cellMarkup),
				Plain:  PlainText(cellMarkup),
			})
		}
		rows = append(rows, row)
	}
	return rows
}

// cellInner strips the cell's own open and close tags.
func cellInner(cellMarkup string) string {
	open := strings.IndexByte(cellMarkup, '>')
	close := strings.LastIndex(cellMarkup, "</a:tc>")
	if open < 0 || close < 0 || open+1 > close {
		return ""
	}
	return cellMarkup[open+1 : close]
}

// PlainText extracts the unescaped text of a markup snippet:
// fragments concatenated within each paragraph, paragraphs joined by
// newlines. Fragments outside any paragraph are appended as-is.
func PlainText(markup string) string {
	paras := paragraphRe.FindAllStringIndex(markup, -1)
	if len(paras) == 0 {
		var b strings.Builder
		for _, f := range Fragments(markup) {
			b.WriteString(f.Text)
		}
		return strings.TrimSpace(b.String())
	}

	var parts []string
	for _, p := range paras {
		var b strings.Builder
		for _, f := range Fragments(markup[p[0]:p[1]]) {
			b.WriteString(f.Text)
		}
		if s := b.String(); strings.TrimSpace(s) != "" {
			parts = append(parts, strings.TrimSpace(s))
		}
	}
	return strings.Join(parts, "\n")
}

// substantial reports whether text carries a real value rather than
// being a bare punctuation placeholder such as ":".
func substantial(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// LabelMatches reports whether a cell's plain text names a label:
// exact, trailing colon, or label followed by a colon with optional
// spacing. Plain prefix matching is deliberately not accepted, so the
// label "Eligibility" never claims an "Eligibility Date" row.
func LabelMatches(cellText, label string) bool {
	cell := strings.TrimSpace(cellText)
	label = strings.TrimSpace(label)
	if label == "" {
		return false
	}
	if strings.EqualFold(cell, label) {
		return true
	}
	lowCell := strings.ToLower(cell)
	lowLabel := strings.ToLower(label)
	if !strings.HasPrefix(lowCell, lowLabel) {
		return false
	}
	rest := strings.TrimLeft(lowCell[len(lowLabel):], " \t\u00a0")
	return strings.HasPrefix(rest, ":")
}

// ReplaceCellValue finds the first row whose first cell matches label
// and writes value into the row's second cell, replacing the first
// substantial text fragment and leaving all surrounding formatting
// untouched. When the value cell holds only punctuation placeholders a
// new run is inserted instead. Returns the original markup and false
// when no matching row exists.
func ReplaceCellValue(markup, label, value string) (string, bool) {
	for _, row := range FindRows(markup) {
		if len(row.Cells) < 2 {
			continue
		}
		if !LabelMatches(firstLine(row.Cells[0].Plain), label) {
			continue
		}
		if out, ok := setCellValue(markup, row.Cells[1], value); ok {
			return out, true
		}
	}
	return markup, false
}

// firstLine returns the first non-empty line of a cell's plain text,
// since label cells occasionally carry trailing footnote paragraphs.
func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// setCellValue writes value into the first substantial fragment of the
// cell, or inserts a run when the cell has none.
func setCellValue(markup string, cell Cell, value string) (string, bool) {
	for _, f := range Fragments(cell.Markup) {
		if !substantial(f.Text) {
			continue
		}
		return spliceFragment(markup, cell.Start, f, value), true
	}
	return insertRunInCell(markup, cell, value)
}

// spliceFragment rewrites one fragment's payload. base is the absolute
// offset of the markup the fragment spans were computed against.
func spliceFragment(markup string, base int, f Fragment, value string) string {
	escaped := EscapeText(value)
	if f.ContentStart < 0 {
		// Self-closing <a:t/>: replace the whole element.
		return markup[:base+f.Start] + "<a:t>" + escaped + "</a:t>" + markup[base+f.End:]
	}
	return markup[:base+f.ContentStart] + escaped + markup[base+f.ContentEnd:]
}

// insertRunInCell synthesizes a minimal run holding value before the
// cell's first paragraph end-marker. Falls back to appending a whole
// paragraph before the text body close when the cell has no paragraph.
func insertRunInCell(markup string, cell Cell, value string) (string, bool) {
	run := "<a:r><a:t>" + EscapeText(value) + "</a:t></a:r>"
	if i := strings.Index(cell.Markup, "</a:p>"); i >= 0 {
		pos := cell.Start + i
		return markup[:pos] + run + markup[pos:], true
	}
	if i := strings.Index(cell.Markup, "</a:txBody>"); i >= 0 {
		pos := cell.Start + i
		return markup[:pos] + "<a:p>" + run + "</a:p>" + markup[pos:], true
	}
	return markup, false
}

// ReplaceRunText substitutes old for new inside text fragments only.
// Attribute values and markup structure are never touched.
func ReplaceRunText(markup, old, new string) string {
	if old == "" {
		return markup
	}
	frags := Fragments(markup)
	// Splice right to left so earlier spans stay valid.
	out := markup
	for i := len(frags) - 1; i >= 0; i-- {
		f := frags[i]
		if f.ContentStart < 0 || !strings.Contains(f.Text, old) {
			continue
		}
		replaced := strings.ReplaceAll(f.Text, old, new)
		out = out[:f.ContentStart] + EscapeText(replaced) + out[f.ContentEnd:]
	}
	return out
}

// InsertOrReplaceCellText writes value as the cell's sole text: a
// single-fragment cell gets its payload replaced; text split across
// multiple formatting runs (a common artifact of manual template
// editing) is consolidated into the first run, preserving its
// formatting, with the remaining text runs removed; a cell with no run
// at all gets a minimal run synthesized.
func InsertOrReplaceCellText(markup string, cell Cell, value string) (string, bool) {
	var textRuns [][]int
	for _, rl := range runRe.FindAllStringIndex(cell.Markup, -1) {
		if textFragmentRe.MatchString(cell.Markup[rl[0]:rl[1]]) {
			textRuns = append(textRuns, rl)
		}
	}
	if len(textRuns) == 0 {
		return insertRunInCell(markup, cell, value)
	}

	first := textRuns[0]
	fi := textFragmentRe.FindStringSubmatchIndex(cell.Markup[first[0]:first[1]])
	frag := Fragment{
		Start: first[0] + fi[0], End: first[0] + fi[1],
		ContentStart: -1, ContentEnd: -1,
	}
	if fi[2] >= 0 {
		frag.ContentStart = first[0] + fi[2]
		frag.ContentEnd = first[0] + fi[3]
	}

	// Remove later runs right to left; the first run's span is below
	// every removal so it stays valid.
	out := markup
	for i := len(textRuns) - 1; i >= 1; i-- {
		rl := textRuns[i]
		out = out[:cell.Start+rl[0]] + out[cell.Start+rl[1]:]
	}
	return spliceFragment(out, cell.Start, frag, value), true
}
