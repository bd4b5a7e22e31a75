// internal/core/ports/pipeline.go
package ports

import (
	"context"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
)

// ProcessParams identifies one uploaded document to run through the
// extraction pipeline. FilePath points at a temp file owned by the
// caller; Filename is the original upload name used as a classifier hint.
type ProcessParams struct {
	FilePath string
	Filename string
	Persist  bool
}

// ProcessResult is the plain result object handed back to callers.
// Partial, low-confidence extractions are still returned with their
// missing and warning fields enumerated so a human can complete them;
// callers decide status codes and retries.
type ProcessResult struct {
	Success      bool                         `json:"success"`
	Data         *domain.ExtractedReservation `json:"extractedData,omitempty"`
	Validation   *domain.ValidationResult     `json:"validation,omitempty"`
	PropertyID   *int64                       `json:"propertyId,omitempty"`
	MatchScore   float64                      `json:"matchScore,omitempty"`
	DocumentInfo *domain.DocumentInfo         `json:"documentInfo,omitempty"`
	Record       *domain.ReservationRecord    `json:"record,omitempty"`
	Message      string                       `json:"message"`
	Error        string                       `json:"error,omitempty"`
}

// DocumentPipeline defines the application service port for document
// processing. Implementations never let an error escape: any failure
// is converted into a ProcessResult with Success=false so one bad
// document cannot take down a batch.
type DocumentPipeline interface {
	Process(ctx context.Context, params ProcessParams) ProcessResult
}
