// internal/core/ports/text_extractor.go
package ports

import "context"

// TextExtractor turns a PDF file on disk into raw text. Implementations
// must fail with domain.ErrInsufficientText when the document yields
// fewer than the minimum usable characters; the caller owns the file
// and cleans it up after the pipeline returns.
type TextExtractor interface {
	ExtractText(ctx context.Context, filePath string) (string, error)
}
