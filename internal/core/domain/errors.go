// internal/core/domain/errors.go
package domain

import "errors"

// Sentinel errors surfaced across the pipeline boundary. Everything
// else is wrapped context; callers branch on these with errors.Is.
var (
	// ErrInsufficientText means the document yielded too little text to
	// be worth sending to the LLM. Non-retryable.
	ErrInsufficientText = errors.New("insufficient text extracted from document")

	// ErrExtractionFailed means both the model path and the manual
	// regex fallback failed to produce a usable extraction.
	ErrExtractionFailed = errors.New("extraction produced no usable fields")
)

// Stable error codes reported in pipeline results
const (
	CodeInsufficientText = "INSUFFICIENT_TEXT"
	CodeExtractionFailed = "EXTRACTION_FAILED"
	CodeInternalError    = "INTERNAL_ERROR"
)
