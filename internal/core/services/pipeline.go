// internal/core/services/pipeline.go
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
	"github.com/bilalmachraa82/propdocs/internal/core/extract"
	"github.com/bilalmachraa82/propdocs/internal/core/match"
	"github.com/bilalmachraa82/propdocs/internal/core/ports"
)

// FieldExtractor is the slice of the structured extractor the pipeline
// depends on, kept narrow for testing.
type FieldExtractor interface {
	Extract(ctx context.Context, text string, info domain.DocumentInfo) (*domain.ExtractedReservation, error)
}

// PipelineConfig tunes the orchestrator
type PipelineConfig struct {
	CacheTTL time.Duration
}

// DocumentPipeline wires the extraction stages together:
// text extraction → classification → structured extraction →
// validation → property matching → assembly → optional persistence.
// Each invocation is independent; concurrent invocations share nothing
// but the read-only catalog snapshots they each fetch.
type DocumentPipeline struct {
	text      ports.TextExtractor
	extractor FieldExtractor
	validator *Validator
	assembler *Assembler
	matcher   *match.Matcher
	catalog   ports.PropertyCatalog
	repo      ports.ReservationRepository
	cache     ports.CacheRepository // optional
	cfg       PipelineConfig
	logger    *slog.Logger
}

// Statically assert that *DocumentPipeline implements the port.
var _ ports.DocumentPipeline = (*DocumentPipeline)(nil)

// NewDocumentPipeline creates the orchestrator. cache may be nil; the
// pipeline then always pays the LLM round trip.
func NewDocumentPipeline(
	text ports.TextExtractor,
	extractor FieldExtractor,
	validator *Validator,
	assembler *Assembler,
	matcher *match.Matcher,
	catalog ports.PropertyCatalog,
	repo ports.ReservationRepository,
	cache ports.CacheRepository,
	cfg PipelineConfig,
	logger *slog.Logger,
) *DocumentPipeline {
	if cfg.CacheTTL == 0 {
		cfg.CacheTTL = 24 * time.Hour
	}
	return &DocumentPipeline{
		text:      text,
		extractor: extractor,
		validator: validator,
		assembler: assembler,
		matcher:   matcher,
		catalog:   catalog,
		repo:      repo,
		cache:     cache,
		cfg:       cfg,
		logger:    logger.With(slog.String("service", "document_pipeline")),
	}
}

// Process runs one document through the full pipeline. It never
// returns an error: every failure, including panics from malformed
// documents, is converted into a ProcessResult so one bad file cannot
// take down a batch.
func (p *DocumentPipeline) Process(ctx context.Context, params ports.ProcessParams) (result ports.ProcessResult) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.ErrorContext(ctx, "pipeline panic recovered",
				slog.String("file", params.Filename),
				slog.Any("panic", r))
			result = failure(domain.CodeInternalError, fmt.Sprintf("unexpected failure processing %s", params.Filename))
		}
	}()

	text, err := p.text.ExtractText(ctx, params.FilePath)
	if err != nil {
		if errors.Is(err, domain.ErrInsufficientText) {
			return failure(domain.CodeInsufficientText,
				"document is empty or corrupt: too little text could be extracted")
		}
		p.logger.ErrorContext(ctx, "text extraction failed",
			slog.String("file", params.Filename),
			slog.String("error", err.Error()))
		return failure(domain.CodeInternalError, "could not read document")
	}

	info := extract.Classify(text, params.Filename)
	p.logger.InfoContext(ctx, "document classified",
		slog.String("file", params.Filename),
		slog.String("type", string(info.Type)))

	data, err := p.extractCached(ctx, text, info)
	if err != nil || data == nil {
		// Both the model path and the regex fallback came up empty.
		// Return the raw text and a failed validation so the caller can
		// route the document to manual entry.
		empty := &domain.ExtractedReservation{RawText: text}
		validation := p.validator.Validate(nil)
		return ports.ProcessResult{
			Success:      false,
			Data:         empty,
			Validation:   validation,
			DocumentInfo: &info,
			Message:      "no reservation data could be extracted; manual entry required",
			Error:        domain.CodeExtractionFailed,
		}
	}
	data.RawText = text

	validation := p.validator.Validate(data)

	// Fresh catalog snapshot per run: properties change between requests.
	var matched *domain.Property
	var matchScore float64
	properties, err := p.catalog.ListProperties(ctx)
	if err != nil {
		p.logger.WarnContext(ctx, "catalog unavailable, skipping property match",
			slog.String("error", err.Error()))
	}
	if best := p.matcher.BestMatch(data.PropertyName, properties); best != nil {
		matched = best.Property
		matchScore = best.Score
		id := matched.ID
		data.PropertyID = &id
		if validation.DataWithDefaults != nil {
			validation.DataWithDefaults.PropertyID = &id
		}
	} else if data.PropertyName != "" {
		ApplyPropertyMatchWarning(validation)
	}

	record := p.assembler.Assemble(data, validation, matched, info, params.Filename)

	if params.Persist {
		if err := p.persist(ctx, record); err != nil {
			p.logger.ErrorContext(ctx, "failed to persist reservation",
				slog.String("file", params.Filename),
				slog.String("error", err.Error()))
			return ports.ProcessResult{
				Success:      false,
				Data:         validation.DataWithDefaults,
				Validation:   validation,
				PropertyID:   data.PropertyID,
				MatchScore:   matchScore,
				DocumentInfo: &info,
				Record:       record,
				Message:      "extraction succeeded but the reservation could not be saved",
				Error:        domain.CodeInternalError,
			}
		}
	}

	return ports.ProcessResult{
		Success:      true,
		Data:         validation.DataWithDefaults,
		Validation:   validation,
		PropertyID:   data.PropertyID,
		MatchScore:   matchScore,
		DocumentInfo: &info,
		Record:       record,
		Message:      statusMessage(validation),
	}
}

// extractCached memoizes extraction results by text hash so identical
// re-uploads skip the LLM round trip.
func (p *DocumentPipeline) extractCached(ctx context.Context, text string, info domain.DocumentInfo) (*domain.ExtractedReservation, error) {
	if p.cache == nil {
		return p.extractor.Extract(ctx, text, info)
	}

	key := extractionCacheKey(text)
	var cached domain.ExtractedReservation
	if err := p.cache.Get(ctx, key, &cached); err == nil && cached.HasMinimumFields() {
		p.logger.DebugContext(ctx, "extraction cache hit", slog.String("key", key))
		return &cached, nil
	}

	data, err := p.extractor.Extract(ctx, text, info)
	if err != nil || data == nil {
		return data, err
	}
	if cacheErr := p.cache.SetWithTTL(ctx, key, data, p.cfg.CacheTTL); cacheErr != nil {
		p.logger.WarnContext(ctx, "failed to cache extraction",
			slog.String("error", cacheErr.Error()))
	}
	return data, nil
}

func (p *DocumentPipeline) persist(ctx context.Context, record *domain.ReservationRecord) error {
	if err := record.Validate(); err != nil {
		return fmt.Errorf("record validation failed: %w", err)
	}
	record.PrepareForStorage()
	if err := p.repo.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save reservation: %w", err)
	}
	p.logger.InfoContext(ctx, "reservation persisted",
		slog.String("id", record.ID.String()),
		slog.String("status", string(record.Status)))
	return nil
}

func extractionCacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "extract:" + hex.EncodeToString(sum[:])
}

func failure(code, message string) ports.ProcessResult {
	return ports.ProcessResult{
		Success: false,
		Message: message,
		Error:   code,
	}
}

func statusMessage(v *domain.ValidationResult) string {
	switch v.Status {
	case domain.StatusValid:
		return "reservation extracted and validated"
	case domain.StatusIncomplete:
		return fmt.Sprintf("extraction incomplete, missing: %v", v.MissingFields)
	case domain.StatusNeedsReview:
		return "reservation extracted but needs review"
	default:
		return "extraction failed"
	}
}
