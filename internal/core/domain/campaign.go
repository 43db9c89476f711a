package domain

import "time"

// RecipientStatus tracks delivery state for one campaign recipient.
type RecipientStatus string

const (
	// RecipientPending means the recipient has not been attempted yet.
	RecipientPending RecipientStatus = "pending"
	// RecipientSent means the message was accepted by the mail API.
	RecipientSent RecipientStatus = "sent"
	// RecipientSkipped means the recipient was deduplicated or already sent.
	RecipientSkipped RecipientStatus = "skipped"
	// RecipientFailed means delivery failed; Error holds the cause.
	RecipientFailed RecipientStatus = "failed"
)

// Campaign is one outbound mail campaign.
type Campaign struct {
	// ID is the unique campaign identifier.
	ID string

	// Name is the human-readable campaign name.
	Name string

	// Subject is the message subject template. {{name}} and {{company}}
	// placeholders are substituted per recipient.
	Subject string

	// Body is the plain-text message body template.
	Body string

	// SourceURI records where the recipient list came from.
	SourceURI string

	// CreatedAt is when the campaign was created.
	CreatedAt time.Time
}

// Recipient is one campaign recipient with delivery state.
type Recipient struct {
	// ID is the unique recipient identifier.
	ID string

	// CampaignID links to the owning campaign.
	CampaignID string

	// Email is the normalised (lowercased, trimmed) address.
	// Deduplication is by this value within a campaign.
	Email string

	// Name is the recipient's display name, if known.
	Name string

	// Company is the recipient's company, if known.
	Company string

	// Row is the 1-based spreadsheet row the recipient came from,
	// used for status write-back.
	Row int

	// Status is the current delivery state.
	Status RecipientStatus

	// SentAt is when the message was sent, nil while pending.
	SentAt *time.Time

	// Error holds the delivery failure cause, if any.
	Error string
}

// CampaignProgress summarises delivery state across a campaign.
type CampaignProgress struct {
	Total   int
	Sent    int
	Skipped int
	Failed  int
	Pending int
}
