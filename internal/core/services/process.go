package services

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/slipdeck/internal/core/domain"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driven"
	"github.com/custodia-labs/slipdeck/internal/core/ports/driving"
	"github.com/custodia-labs/slipdeck/internal/logger"
	"github.com/custodia-labs/slipdeck/internal/pptx"
)

// Ensure ProcessService implements the interface.
var _ driving.DocumentProcessor = (*ProcessService)(nil)

// requiredTypes are the slide types whose fallback use is worth an
// advisory error entry: a wrong guess here silently corrupts the most
// important slides of the deck.
var requiredTypes = []domain.SlideType{
	domain.SlideGTLOverview,
	domain.SlideGHSOverview,
	domain.SlideGTLSchedule,
	domain.SlideGHSSchedule,
}

// ProcessService coordinates the full deck population pipeline:
// detect slide positions, map each data section onto its slide,
// re-serialise, and audit the run.
type ProcessService struct {
	signatures driven.SignatureStore
	extractor  driven.PlacementExtractor
	files      driven.FileStore
	jobs       driven.JobStore
}

// NewProcessService creates a document processor. The extractor, file
// store and job store are only required for ProcessRefs; callers that
// bring their own bytes may pass nil for all three.
func NewProcessService(
	signatures driven.SignatureStore,
	extractor driven.PlacementExtractor,
	files driven.FileStore,
	jobs driven.JobStore,
) *ProcessService {
	return &ProcessService{
		signatures: signatures,
		extractor:  extractor,
		files:      files,
		jobs:       jobs,
	}
}

// sectionMapping binds one PlacementData section to the slide type it
// populates and the mapper that writes it. Sections are applied in
// registry order; each operates on exactly one slide.
type sectionMapping struct {
	field   string
	target  domain.SlideType
	present func(*domain.PlacementData) bool
	apply   func(markup string, slide int, data *domain.PlacementData) (string, pptx.MapResult)
}

var sectionRegistry = []sectionMapping{
	{
		field:   "Period of Insurance",
		target:  domain.SlideCover,
		present: func(d *domain.PlacementData) bool { return d.PeriodOfInsurance != nil },
		apply: func(m string, slide int, d *domain.PlacementData) (string, pptx.MapResult) {
			return pptx.MapPeriod(m, slide, d.PeriodOfInsurance)
		},
	},
	{
		field:   "GTL Overview",
		target:  domain.SlideGTLOverview,
		present: func(d *domain.PlacementData) bool { return d.GTLOverview != nil },
		apply: func(m string, slide int, d *domain.PlacementData) (string, pptx.MapResult) {
			return pptx.MapOverview(m, slide, d.GTLOverview)
		},
	},
	{
		field:   "GHS Overview",
		target:  domain.SlideGHSOverview,
		present: func(d *domain.PlacementData) bool { return d.GHSOverview != nil },
		apply: func(m string, slide int, d *domain.PlacementData) (string, pptx.MapResult) {
			return pptx.MapOverview(m, slide, d.GHSOverview)
		},
	},
	{
		field:   "GTL Schedule",
		target:  domain.SlideGTLSchedule,
		present: func(d *domain.PlacementData) bool { return d.GTLSchedule != nil },
		apply: func(m string, slide int, d *domain.PlacementData) (string, pptx.MapResult) {
			return pptx.MapSchedule(m, slide, d.GTLSchedule)
		},
	},
	{
		field:   "GHS Schedule",
		target:  domain.SlideGHSSchedule,
		present: func(d *domain.PlacementData) bool { return d.GHSSchedule != nil },
		apply: func(m string, slide int, d *domain.PlacementData) (string, pptx.MapResult) {
			return pptx.MapSchedule(m, slide, d.GHSSchedule)
		},
	},
}

// Process maps data onto the deck template and returns the audit result
// with the re-serialised package in its buffer. Field-level mapping
// failures are collected in the result; only structural problems
// (corrupt archive, empty data) return an error.
func (s *ProcessService) Process(ctx context.Context, template []byte, data *domain.PlacementData) (*domain.UpdateResult, error) {
	if data.IsEmpty() {
		return nil, domain.ErrNoPlacementData
	}

	arch, err := pptx.Open(template)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}

	report, err := s.detect(arch)
	if err != nil {
		return nil, err
	}

	result := &domain.UpdateResult{
		Success:     true,
		TotalSlides: arch.SlideCount(),
		Updated:     []domain.FieldUpdate{},
		Errors:      []domain.FieldError{},
		Detection:   *report,
	}
	s.validateDetection(report, data, result)

	for _, section := range sectionRegistry {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !section.present(data) {
			continue
		}
		slide := report.SlideFor(section.target)
		if slide == 0 {
			result.Errors = append(result.Errors, domain.FieldError{
				Field: section.field,
				Error: fmt.Sprintf("no slide detected for %s", section.target),
			})
			continue
		}
		if slide < 1 || slide > arch.SlideCount() {
			result.Errors = append(result.Errors, domain.FieldError{
				Slide: slide,
				Field: section.field,
				Error: fmt.Sprintf("detected slide %d is outside the deck (1-%d)", slide, arch.SlideCount()),
			})
			continue
		}

		name := pptx.SlideName(slide)
		markup, err := arch.EntryText(name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}

		logger.Debug("mapping %s onto slide %d", section.field, slide)
		updated, res := section.apply(markup, slide, data)
		if updated != markup {
			arch.SetEntryText(name, updated)
		}
		result.Updated = append(result.Updated, res.Updated...)
		result.Errors = append(result.Errors, res.Errors...)
	}

	buf, err := arch.Serialize()
	if err != nil {
		return nil, fmt.Errorf("serialise package: %w", err)
	}
	result.Buffer = buf
	result.BufferSize = len(buf)

	logger.Info("processed deck: %d slides, %d fields updated, %d errors",
		result.TotalSlides, len(result.Updated), len(result.Errors))
	return result, nil
}

// ProcessRefs fetches the slip and template through the file store,
// extracts the placement data, runs Process, stores the populated deck
// and persists an audit job.
func (s *ProcessService) ProcessRefs(ctx context.Context, slipRef, templateRef string) (*domain.UpdateResult, error) {
	if s.files == nil || s.extractor == nil {
		return nil, fmt.Errorf("process refs: file store and extractor not configured")
	}

	slip, err := s.files.Fetch(ctx, slipRef)
	if err != nil {
		return nil, fmt.Errorf("fetch slip: %w", err)
	}
	template, err := s.files.Fetch(ctx, templateRef)
	if err != nil {
		return nil, fmt.Errorf("fetch template: %w", err)
	}

	data, err := s.extractor.Extract(ctx, slip)
	if err != nil {
		return nil, fmt.Errorf("extract placement data: %w", err)
	}

	result, err := s.Process(ctx, template, data)
	if err != nil {
		return nil, err
	}

	outputRef, err := s.files.Store(ctx, outputName(templateRef), result.Buffer)
	if err != nil {
		return nil, fmt.Errorf("store output: %w", err)
	}
	logger.Info("stored populated deck at %s", outputRef)

	if s.jobs != nil {
		if err := s.saveJob(ctx, slipRef, templateRef, outputRef, result); err != nil {
			logger.Warn("save job record: %v", err)
		}
	}
	return result, nil
}

// Detect classifies the template's slides without modifying anything.
func (s *ProcessService) Detect(ctx context.Context, template []byte) (*domain.DetectionReport, error) {
	arch, err := pptx.Open(template)
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}
	return s.detect(arch)
}

func (s *ProcessService) detect(arch *pptx.Archive) (*domain.DetectionReport, error) {
	sigs, err := s.signatures.Signatures()
	if err != nil {
		return nil, fmt.Errorf("load signatures: %w", err)
	}
	report := pptx.NewDetector(sigs).Detect(arch.SlideTexts())
	for _, w := range report.Warnings {
		logger.Warn("%s", w)
	}
	return &report, nil
}

// validateDetection adds one advisory error when any required slide
// type with data present had to fall back to its default position. The
// run still proceeds; the entry tells the reviewer to eyeball those
// slides.
func (s *ProcessService) validateDetection(report *domain.DetectionReport, data *domain.PlacementData, result *domain.UpdateResult) {
	var fell []string
	for _, t := range requiredTypes {
		res, ok := report.Results[t]
		if ok && res.UsedFallback && sectionHasData(data, t) {
			fell = append(fell, string(t))
		}
	}
	if len(fell) > 0 {
		result.Errors = append(result.Errors, domain.FieldError{
			Field: "Slide detection",
			Error: fmt.Sprintf("fallback positions used for: %s", strings.Join(fell, ", ")),
			Hint:  "verify these slides manually before sending the deck out",
		})
	}
}

func sectionHasData(data *domain.PlacementData, t domain.SlideType) bool {
	for _, section := range sectionRegistry {
		if section.target == t {
			return section.present(data)
		}
	}
	return false
}

// outputName derives the stored deck name from the template reference.
func outputName(templateRef string) string {
	base := path.Base(strings.ReplaceAll(templateRef, "\\", "/"))
	ext := path.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	if ext == "" {
		ext = ".pptx"
	}
	return fmt.Sprintf("%s-populated-%s%s", stem, time.Now().Format("20060102-150405"), ext)
}

func (s *ProcessService) saveJob(ctx context.Context, slipRef, templateRef, outputRef string, result *domain.UpdateResult) error {
	resultJSON, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	job := &domain.Job{
		ID:           uuid.NewString(),
		SourceURI:    slipRef,
		TemplateURI:  templateRef,
		OutputURI:    outputRef,
		TotalSlides:  result.TotalSlides,
		UpdatedCount: len(result.Updated),
		ErrorCount:   len(result.Errors),
		ResultJSON:   string(resultJSON),
		CreatedAt:    time.Now().UTC(),
	}
	return s.jobs.SaveJob(ctx, job)
}
