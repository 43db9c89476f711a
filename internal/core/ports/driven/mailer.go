package driven

import "context"

// Mailer sends one plain-text message. Implementations wrap the Gmail
// API; pacing is the campaign service's concern, not the mailer's.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// RecipientSource loads campaign recipients from an external list,
// typically a spreadsheet column layout (email, name, company).
type RecipientSource interface {
	// Load parses recipients from list bytes. Row numbers are preserved
	// for status write-back.
	Load(ctx context.Context, list []byte) ([]RecipientRow, error)
}

// RecipientRow is one parsed row of a recipient list.
type RecipientRow struct {
	// Row is the 1-based spreadsheet row.
	Row int
	// Email is the raw address as found in the sheet.
	Email string
	// Name is the display name, if present.
	Name string
	// Company is the company column, if present.
	Company string
}
