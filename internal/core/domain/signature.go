package domain

// SlideType names a logical slide recognised by content signatures.
type SlideType string

// Slide types shipped with the default signature set. The signature
// table is configuration, so adapters may define further types without
// code changes; these constants exist for the built-in section registry.
const (
	SlideCover       SlideType = "COVER"
	SlideGTLOverview SlideType = "GTL_OVERVIEW"
	SlideGTLSchedule SlideType = "GTL_SCHEDULE"
	SlideGHSOverview SlideType = "GHS_OVERVIEW"
	SlideGHSSchedule SlideType = "GHS_SCHEDULE"
)

// SlideSignature is the scoring rule set used to recognise which physical
// slide corresponds to a logical slide type. Signatures are loaded once
// from configuration at startup and are read-only thereafter.
type SlideSignature struct {
	// Type is the logical slide type this signature identifies.
	Type SlideType

	// Primary patterns must appear for any match. Word-boundary,
	// case-insensitive.
	Primary []string

	// Secondary signals earn partial credit proportional to the
	// fraction present.
	Secondary []string

	// Unique signals disambiguate near-identical slides repeated for
	// different product lines. A type with no unique signals earns the
	// full unique credit whenever a primary pattern matched.
	Unique []string

	// Exclude patterns disqualify a slide on match.
	Exclude []string

	// Fallback is the 1-based slide number used when detection
	// confidence is too low. The document always receives a
	// best-effort mapping.
	Fallback int

	// Group names a set of mutually exclusive slide types, e.g. all
	// dental-related slides. Types in one group never share a detected
	// slide.
	Group string

	// Sequence orders assignment within a group: lower values claim
	// their best slide first.
	Sequence int
}

// DetectionResult records how one slide type was mapped to a slide number.
// Created fresh per document run; never persisted.
type DetectionResult struct {
	// Type is the slide type this result is for.
	Type SlideType `json:"type"`

	// Slide is the chosen 1-based slide number.
	Slide int `json:"slide"`

	// Confidence is the match score in [0,1].
	Confidence float64 `json:"confidence"`

	// UsedFallback is true when the configured fallback position was
	// substituted for a low-confidence match.
	UsedFallback bool `json:"usedFallback"`

	// Matched lists the signal patterns that contributed to the score.
	Matched []string `json:"matched,omitempty"`
}

// DetectionReport is the full output of slide position detection.
type DetectionReport struct {
	// Results holds the per-type outcome.
	Results map[SlideType]DetectionResult `json:"results"`

	// Warnings lists low- and medium-confidence diagnostics, in
	// detection order.
	Warnings []string `json:"warnings,omitempty"`
}

// SlideFor returns the slide number assigned to a type, or 0 when the
// type was not detected at all.
func (r *DetectionReport) SlideFor(t SlideType) int {
	if r == nil {
		return 0
	}
	res, ok := r.Results[t]
	if !ok {
		return 0
	}
	return res.Slide
}
