package domain

import "time"

// Job is the persisted audit record of one document processing run.
type Job struct {
	// ID is the unique job identifier.
	ID string

	// SourceURI is where the placement slip came from.
	SourceURI string

	// TemplateURI is the deck template that was populated.
	TemplateURI string

	// OutputURI is where the populated deck was stored.
	OutputURI string

	// TotalSlides is the slide count of the processed deck.
	TotalSlides int

	// UpdatedCount is the number of fields written.
	UpdatedCount int

	// ErrorCount is the number of field-level errors.
	ErrorCount int

	// ResultJSON is the marshalled UpdateResult (without the buffer)
	// for later inspection.
	ResultJSON string

	// CreatedAt is when the run happened.
	CreatedAt time.Time
}
