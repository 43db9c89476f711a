package pptx

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
)

// Confidence thresholds for detection acceptance.
const (
	// ConfidenceHigh accepts a detected slide silently.
	ConfidenceHigh = 0.70
	// ConfidenceMedium accepts a detected slide with a warning; below
	// it the signature's fallback position is used instead.
	ConfidenceMedium = 0.40
)

// Score weights. Primary patterns are required for any match at all;
// secondary and unique signals award partial credit; an exclude hit
// subtracts, floored at zero.
const (
	primaryWeight   = 50.0
	secondaryWeight = 30.0
	uniqueWeight    = 20.0
	excludePenalty  = 40.0
)

// Detector scores slides against the configured signature set.
// Signatures are read-only after construction, so one Detector is safe
// for concurrent use across documents.
type Detector struct {
	signatures []domain.SlideSignature

	mu       sync.Mutex
	patterns map[string]*regexp.Regexp
}

// NewDetector creates a detector over a signature set.
func NewDetector(signatures []domain.SlideSignature) *Detector {
	return &Detector{
		signatures: signatures,
		patterns:   make(map[string]*regexp.Regexp),
	}
}

// slideScore is one (type, slide) scoring outcome.
type slideScore struct {
	slide      int
	confidence float64
	matched    []string
}

// Detect assigns every configured slide type a slide number given the
// per-slide plain texts (index 0 is slide 1). Slide ordering in real
// templates is not stable under manual editing, so position is inferred
// from content and the configured fallback only used when confidence is
// too low. Deterministic: same texts, same report.
func (d *Detector) Detect(slideTexts []string) domain.DetectionReport {
	report := domain.DetectionReport{
		Results: make(map[domain.SlideType]domain.DetectionResult, len(d.signatures)),
	}

	// Process one exclusivity group at a time, in ascending sequence
	// order within each group, so earlier types claim their best slide
	// before later ones compete for what remains.
	assigned := make(map[int]bool)
	for _, sig := range d.orderedSignatures() {
		scores := d.scoreAll(sig, slideTexts)

		best := slideScore{slide: sig.Fallback}
		for _, s := range scores {
			if assigned[s.slide] {
				continue
			}
			if s.confidence > best.confidence {
				best = s
			}
		}

		result := domain.DetectionResult{
			Type:       sig.Type,
			Slide:      best.slide,
			Confidence: best.confidence,
			Matched:    best.matched,
		}

		switch {
		case best.confidence < ConfidenceMedium:
			// The document must always receive a best-effort mapping.
			// Fallback slides stay in the pool so a later type with a
			// real match is not blocked.
			result.Slide = sig.Fallback
			result.UsedFallback = true
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"%s: low confidence %.2f, using fallback slide %d",
				sig.Type, best.confidence, sig.Fallback))
		case best.confidence < ConfidenceHigh:
			assigned[best.slide] = true
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"%s: medium confidence %.2f for slide %d",
				sig.Type, best.confidence, best.slide))
		default:
			assigned[best.slide] = true
		}

		report.Results[sig.Type] = result
	}

	return report
}

// orderedSignatures returns signatures grouped, then by sequence within
// the group, with a name tie-break for determinism.
func (d *Detector) orderedSignatures() []domain.SlideSignature {
	sigs := make([]domain.SlideSignature, len(d.signatures))
	copy(sigs, d.signatures)
	sort.SliceStable(sigs, func(i, j int) bool {
		if sigs[i].Group != sigs[j].Group {
			return sigs[i].Group < sigs[j].Group
		}
		if sigs[i].Sequence != sigs[j].Sequence {
			return sigs[i].Sequence < sigs[j].Sequence
		}
		return sigs[i].Type < sigs[j].Type
	})
	return sigs
}

// scoreAll scores one signature against every slide.
func (d *Detector) scoreAll(sig domain.SlideSignature, slideTexts []string) []slideScore {
	scores := make([]slideScore, 0, len(slideTexts))
	for i, text := range slideTexts {
		s := d.score(sig, text)
		s.slide = i + 1
		scores = append(scores, s)
	}
	return scores
}

// score computes the weighted signal score for one slide.
func (d *Detector) score(sig domain.SlideSignature, text string) slideScore {
	var s slideScore

	primaryHit := false
	for _, p := range sig.Primary {
		if d.matches(text, p) {
			primaryHit = true
			s.matched = append(s.matched, p)
		}
	}
	// Primary patterns are required: without one the slide cannot be
	// this type no matter how many weaker signals fire.
	if !primaryHit {
		return slideScore{}
	}

	score := primaryWeight

	if len(sig.Secondary) > 0 {
		hits := 0
		for _, p := range sig.Secondary {
			if d.matches(text, p) {
				hits++
				s.matched = append(s.matched, p)
			}
		}
		score += secondaryWeight * float64(hits) / float64(len(sig.Secondary))
	}

	if len(sig.Unique) > 0 {
		hits := 0
		for _, p := range sig.Unique {
			if d.matches(text, p) {
				hits++
				s.matched = append(s.matched, p)
			}
		}
		score += uniqueWeight * float64(hits) / float64(len(sig.Unique))
	} else {
		// No unique signals defined: the primary hit earns full credit.
		score += uniqueWeight
	}

	for _, p := range sig.Exclude {
		if d.matches(text, p) {
			score -= excludePenalty
			break
		}
	}
	if score < 0 {
		score = 0
	}

	s.confidence = score / 100
	return s
}

// matches tests a word-boundary, case-insensitive pattern against text.
func (d *Detector) matches(text, pattern string) bool {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return false
	}
	re := d.compiled(pattern)
	return re.MatchString(text)
}

// compiled caches the compiled form of a pattern.
func (d *Detector) compiled(pattern string) *regexp.Regexp {
	d.mu.Lock()
	defer d.mu.Unlock()
	if re, ok := d.patterns[pattern]; ok {
		return re
	}
	re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(pattern) + `\b`)
	d.patterns[pattern] = re
	return re
}
