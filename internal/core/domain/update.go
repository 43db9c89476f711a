package domain

// FieldUpdate records one successfully rewritten field.
type FieldUpdate struct {
	// Slide is the 1-based slide number that was modified.
	Slide int `json:"slide"`

	// Field is the logical field name, e.g. "Eligibility".
	Field string `json:"field"`

	// Value is the text written into the slide.
	Value string `json:"value"`
}

// FieldError records one field that could not be mapped. Field errors
// never abort a run; they are collected so a reviewer can judge whether
// the best-effort output is acceptable.
type FieldError struct {
	// Slide is the 1-based slide number the mapper targeted.
	Slide int `json:"slide"`

	// Field is the logical field name.
	Field string `json:"field"`

	// Error describes what could not be matched.
	Error string `json:"error"`

	// Hint aids template-drift diagnosis, e.g. the row labels that
	// were actually present.
	Hint string `json:"hint,omitempty"`
}

// UpdateResult is the full audit of one document update run.
// Built incrementally during orchestration; immutable once returned.
type UpdateResult struct {
	// Success is false only for structural failures. Field-level
	// errors still produce a best-effort document with Success true.
	Success bool `json:"success"`

	// TotalSlides is the number of slides in the package.
	TotalSlides int `json:"totalSlides"`

	// Updated lists every field successfully written.
	Updated []FieldUpdate `json:"updatedSlides"`

	// Errors lists every field that could not be mapped, plus the
	// advisory detection-validation error when a required slide type
	// fell back to its default position.
	Errors []FieldError `json:"errors"`

	// Detection is the slide position detection report.
	Detection DetectionReport `json:"slideDetection"`

	// Buffer is the re-serialised presentation package.
	Buffer []byte `json:"-"`

	// BufferSize is len(Buffer), kept for callers that drop the bytes.
	BufferSize int `json:"bufferSize"`
}
