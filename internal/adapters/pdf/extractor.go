// internal/adapters/pdf/extractor.go
package pdf

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
	"github.com/bilalmachraa82/propdocs/internal/core/ports"
)

// MinTextLength is the floor below which a document is treated as
// empty or corrupt. Scanned-image PDFs with no text layer land here
// and are routed to the OCR path by the caller instead.
const MinTextLength = 50

// Extractor reads the text layer of a PDF file
type Extractor struct {
	minLength int
	logger    *slog.Logger
}

// Statically assert that *Extractor implements the TextExtractor port.
var _ ports.TextExtractor = (*Extractor)(nil)

// NewExtractor creates a PDF text extractor. minLength <= 0 selects
// the default floor.
func NewExtractor(minLength int, logger *slog.Logger) *Extractor {
	if minLength <= 0 {
		minLength = MinTextLength
	}
	return &Extractor{
		minLength: minLength,
		logger:    logger.With(slog.String("adapter", "pdf")),
	}
}

// ExtractText extracts plain text from every page of the PDF at
// filePath. It fails with domain.ErrInsufficientText when the result
// is shorter than the configured floor.
func (e *Extractor) ExtractText(ctx context.Context, filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	var sb strings.Builder
	totalPages := r.NumPage()

	for pageNum := 1; pageNum <= totalPages; pageNum++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		page := r.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			e.logger.WarnContext(ctx, "failed to extract text from page",
				slog.Int("page", pageNum),
				slog.String("error", err.Error()))
			continue
		}
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if len(text) < e.minLength {
		return "", fmt.Errorf("%w: got %d characters from %d pages",
			domain.ErrInsufficientText, len(text), totalPages)
	}

	e.logger.DebugContext(ctx, "text extracted",
		slog.Int("pages", totalPages),
		slog.Int("chars", len(text)))

	return text, nil
}
