package domain

// PlacementData is the structured extraction result from a placement slip.
// Sections are nil when the slip did not contain them; the orchestrator
// skips nil sections. The JSON keys are the stable section identifiers
// used by the section registry and by external callers.
type PlacementData struct {
	// PeriodOfInsurance is the policy period shown on the cover slide.
	PeriodOfInsurance *PeriodOfInsurance `json:"periodOfInsurance,omitempty"`

	// GTLOverview populates the Group Term Life overview slide.
	GTLOverview *OverviewData `json:"slide8Data,omitempty"`

	// GHSOverview populates the Group Hospital & Surgical overview slide.
	GHSOverview *OverviewData `json:"slide14Data,omitempty"`

	// GTLSchedule populates the Group Term Life schedule of benefits.
	GTLSchedule *ScheduleData `json:"slide20Data,omitempty"`

	// GHSSchedule populates the Group Hospital & Surgical schedule of benefits.
	GHSSchedule *ScheduleData `json:"slide22Data,omitempty"`
}

// IsEmpty reports whether no section carries data.
func (p *PlacementData) IsEmpty() bool {
	if p == nil {
		return true
	}
	return p.PeriodOfInsurance == nil &&
		p.GTLOverview == nil &&
		p.GHSOverview == nil &&
		p.GTLSchedule == nil &&
		p.GHSSchedule == nil
}

// PeriodOfInsurance is the policy period, both as the raw endpoints read
// from the slip and as the display string written into the deck.
type PeriodOfInsurance struct {
	// Start is the raw start date string from the slip.
	Start string `json:"start,omitempty"`

	// End is the raw end date string from the slip.
	End string `json:"end,omitempty"`

	// Formatted is the display form, e.g. "1 August 2025 to 31 July 2026".
	Formatted string `json:"formatted"`
}

// OverviewData holds the label-addressed scalar fields and the
// basis-of-cover list for a product overview slide.
// Nil pointers mean the slip did not supply the field, so the
// template value is left untouched.
type OverviewData struct {
	// Eligibility is the free-text eligibility clause.
	Eligibility *string `json:"eligibility"`

	// LastEntryAge is the maximum entry age clause, e.g. "Age 65".
	LastEntryAge *string `json:"lastEntryAge"`

	// BasisOfCover maps employee categories to coverage formulas,
	// in slip order.
	BasisOfCover []BasisEntry `json:"basisOfCover,omitempty"`

	// NonEvidenceLimit is the free cover limit, e.g. "$50,000".
	NonEvidenceLimit *string `json:"nonEvidenceLimit"`
}

// BasisEntry is one category-to-formula line of the basis of cover.
type BasisEntry struct {
	// Category is the employee category, e.g. "Management Staff".
	Category string `json:"category"`

	// Basis is the coverage formula, e.g. "36x monthly basic salary".
	Basis string `json:"basis"`
}

// ScheduleData holds a schedule-of-benefits table for one product line.
type ScheduleData struct {
	// PlanHeaders are the plan column titles in template column order.
	PlanHeaders []string `json:"planHeaders"`

	// Benefits are the numbered benefit line items, in slip order.
	Benefits []Benefit `json:"benefits"`
}

// Benefit is one line item of a schedule of benefits. Sub-items model
// unnumbered detail rows beneath a main row, e.g. "(a) Room & Board".
type Benefit struct {
	// Number is the leading identifier of a main row, e.g. "1" or "2.1".
	// Empty for sub-items.
	Number string `json:"number,omitempty"`

	// Name is the benefit description used for row matching.
	Name string `json:"name"`

	// Values maps plan header to the value for that plan column.
	Values map[string]string `json:"values"`

	// SubItems are detail rows belonging to this benefit.
	SubItems []Benefit `json:"subItems,omitempty"`
}
