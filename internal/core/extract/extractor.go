// internal/core/extract/extractor.go
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
	"github.com/bilalmachraa82/propdocs/internal/core/ports"
)

// ExtractorConfig tunes the LLM extraction loop
type ExtractorConfig struct {
	BasePromptLength int
	MinPromptLength  int
	MaxAttempts      int
	MaxOutputTokens  int
	Temperature      float64
}

// DefaultExtractorConfig returns the production tuning
func DefaultExtractorConfig() ExtractorConfig {
	return ExtractorConfig{
		BasePromptLength: 6000,
		MinPromptLength:  500,
		MaxAttempts:      3,
		MaxOutputTokens:  1024,
		Temperature:      0.1,
	}
}

// StructuredExtractor sends prefiltered document text to the LLM and
// coerces the model's JSON reply into an ExtractedReservation. When
// the model keeps hitting its output token cap the input shrinks
// geometrically per attempt; when every model path fails, the manual
// regex extractor takes over. The retry loop is deliberately serial:
// each retry's input size depends on the previous failure.
type StructuredExtractor struct {
	llm    ports.LLMClient
	manual *ManualExtractor
	cfg    ExtractorConfig
	logger *slog.Logger
}

// NewStructuredExtractor creates the extractor with its manual fallback
func NewStructuredExtractor(llm ports.LLMClient, manual *ManualExtractor, cfg ExtractorConfig, logger *slog.Logger) *StructuredExtractor {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.MinPromptLength <= 0 {
		cfg.MinPromptLength = 500
	}
	if cfg.BasePromptLength <= 0 {
		cfg.BasePromptLength = 6000
	}
	return &StructuredExtractor{
		llm:    llm,
		manual: manual,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "structured_extractor")),
	}
}

// Extract runs the model path with shrinking retries, then the manual
// fallback. It returns nil plus ErrExtractionFailed only when neither
// path recovers at least a name and a date.
func (s *StructuredExtractor) Extract(ctx context.Context, text string, info domain.DocumentInfo) (*domain.ExtractedReservation, error) {
	relevant := strings.Join(s.manual.RelevantLines(text), "\n")
	if relevant == "" {
		relevant = text
	}

	var llmData *domain.ExtractedReservation

	for attempt := 1; attempt <= s.cfg.MaxAttempts; attempt++ {
		limit := s.cfg.BasePromptLength / attempt
		if limit < s.cfg.MinPromptLength {
			limit = s.cfg.MinPromptLength
		}
		input := truncate(relevant, limit)

		resp, err := s.llm.Generate(ctx, ports.GenerateRequest{
			Prompt:          buildPrompt(info, input),
			Temperature:     s.cfg.Temperature,
			MaxOutputTokens: s.cfg.MaxOutputTokens,
		})
		if err != nil {
			// Network failures and timeouts are not worth burning the
			// remaining attempts on; the regex fallback still runs.
			s.logger.WarnContext(ctx, "llm call failed, falling back to manual extraction",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			break
		}

		if resp.FinishReason == ports.FinishMaxTokens {
			s.logger.InfoContext(ctx, "model hit output token cap, retrying with smaller input",
				slog.Int("attempt", attempt),
				slog.Int("input_chars", len(input)))
			continue
		}

		data, err := s.parseModelOutput(resp.Text)
		if err != nil {
			s.logger.WarnContext(ctx, "model output unparseable after repair",
				slog.Int("attempt", attempt),
				slog.String("error", err.Error()))
			break
		}

		llmData = data
		break
	}

	if llmData != nil {
		llmData.RawText = text
		if llmData.Platform == "" {
			llmData.Platform = detectPlatform(text)
		}
		if llmData.HasMinimumFields() {
			return llmData, nil
		}
	}

	manualData := s.manual.Extract(text)
	merged := mergeExtractions(llmData, manualData)
	if merged.Platform == "" || merged.Platform == domain.PlatformOther {
		merged.Platform = detectPlatform(text)
	}

	if !merged.HasMinimumFields() {
		return nil, domain.ErrExtractionFailed
	}
	return merged, nil
}

// parseModelOutput locates the JSON object in the model reply, repairs
// truncation damage, and coerces the untrusted payload field by field.
func (s *StructuredExtractor) parseModelOutput(reply string) (*domain.ExtractedReservation, error) {
	raw := isolateJSON(reply)
	if raw == "" {
		return nil, errors.New("no JSON object in model reply")
	}

	var loose map[string]any
	if err := json.Unmarshal([]byte(raw), &loose); err != nil {
		repaired := RepairJSON(raw)
		if err := json.Unmarshal([]byte(repaired), &loose); err != nil {
			return nil, fmt.Errorf("parse model output: %w", err)
		}
	}

	return coerceFields(loose), nil
}

// isolateJSON strips markdown fences and anything outside the
// outermost braces. Models decorate replies despite instructions.
func isolateJSON(reply string) string {
	reply = strings.TrimSpace(reply)
	reply = strings.TrimPrefix(reply, "```json")
	reply = strings.TrimPrefix(reply, "```")
	reply = strings.TrimSuffix(reply, "```")

	start := strings.Index(reply, "{")
	if start < 0 {
		return ""
	}
	end := strings.LastIndex(reply, "}")
	if end > start {
		return reply[start : end+1]
	}
	// Truncated object: keep everything from the opening brace and let
	// repair close it.
	return reply[start:]
}

// coerceFields maps the loose JSON into the reservation shape. Field
// presence and types are never trusted: numbers arrive as strings,
// strings as numbers, and keys in either camelCase or snake_case.
func coerceFields(m map[string]any) *domain.ExtractedReservation {
	str := func(keys ...string) string {
		for _, k := range keys {
			if v, ok := m[k]; ok {
				switch t := v.(type) {
				case string:
					if trimmed := strings.TrimSpace(t); trimmed != "" && !strings.EqualFold(trimmed, "null") {
						return trimmed
					}
				case float64:
					return strconv.FormatFloat(t, 'f', -1, 64)
				}
			}
		}
		return ""
	}
	num := func(keys ...string) int {
		for _, k := range keys {
			switch t := m[k].(type) {
			case float64:
				return int(t)
			case string:
				if n, err := strconv.Atoi(strings.TrimSpace(t)); err == nil {
					return n
				}
			}
		}
		return 0
	}

	data := &domain.ExtractedReservation{
		PropertyName:  str("propertyName", "property_name", "property"),
		GuestName:     str("guestName", "guest_name", "name"),
		GuestEmail:    str("guestEmail", "guest_email", "email"),
		GuestPhone:    str("guestPhone", "guest_phone", "phone"),
		CheckInDate:   toISODate(str("checkInDate", "check_in_date", "checkIn")),
		CheckOutDate:  toISODate(str("checkOutDate", "check_out_date", "checkOut")),
		NumGuests:     num("numGuests", "num_guests", "guests"),
		Adults:        num("adults"),
		Children:      num("children"),
		TotalAmount:   str("totalAmount", "total_amount", "total"),
		PlatformFee:   str("platformFee", "platform_fee"),
		CleaningFee:   str("cleaningFee", "cleaning_fee"),
		CheckInFee:    str("checkInFee", "check_in_fee"),
		CommissionFee: str("commissionFee", "commission_fee", "commission"),
		TeamPayment:   str("teamPayment", "team_payment"),
		Reference:     str("reference", "bookingReference", "booking_reference"),
	}

	switch strings.ToLower(str("platform")) {
	case "airbnb":
		data.Platform = domain.PlatformAirbnb
	case "booking", "booking.com":
		data.Platform = domain.PlatformBooking
	case "direct", "directo", "direto":
		data.Platform = domain.PlatformDirect
	case "":
		// left empty, caller detects from raw text
	default:
		data.Platform = domain.PlatformOther
	}

	return data
}

// mergeExtractions fills gaps in the model extraction with manual
// results. The model wins on conflicts since it sees layout context
// the regexes cannot.
func mergeExtractions(llm, manual *domain.ExtractedReservation) *domain.ExtractedReservation {
	if llm == nil {
		return manual
	}
	if manual == nil {
		return llm
	}

	merged := llm.Clone()
	if merged.PropertyName == "" {
		merged.PropertyName = manual.PropertyName
	}
	if merged.GuestName == "" {
		merged.GuestName = manual.GuestName
	}
	if merged.GuestEmail == "" {
		merged.GuestEmail = manual.GuestEmail
	}
	if merged.GuestPhone == "" {
		merged.GuestPhone = manual.GuestPhone
	}
	if merged.CheckInDate == "" {
		merged.CheckInDate = manual.CheckInDate
	}
	if merged.CheckOutDate == "" {
		merged.CheckOutDate = manual.CheckOutDate
	}
	if merged.Reference == "" {
		merged.Reference = manual.Reference
	}
	if merged.Adults == 0 {
		merged.Adults = manual.Adults
	}
	if merged.NumGuests == 0 {
		merged.NumGuests = manual.NumGuests
	}
	if merged.RawText == "" {
		merged.RawText = manual.RawText
	}
	return merged
}

// buildPrompt assembles a minimal-token instruction. Every extra word
// here is paid for on every document processed.
func buildPrompt(info domain.DocumentInfo, input string) string {
	var b strings.Builder
	b.WriteString("Extract reservation data from this ")
	b.WriteString(promptHint(info.Type))
	b.WriteString(" document. Reply with exactly one JSON object, no prose, keys: ")
	b.WriteString(`propertyName, guestName, guestEmail, guestPhone, checkInDate (YYYY-MM-DD), ` +
		`checkOutDate (YYYY-MM-DD), numGuests, adults, children, totalAmount, platformFee, ` +
		`cleaningFee, checkInFee, commissionFee, teamPayment, platform (airbnb|booking|direct|other), reference.`)
	b.WriteString(" Use empty string for unknown fields.\n\nDOCUMENT:\n")
	b.WriteString(input)
	return b.String()
}

func promptHint(t domain.DocumentType) string {
	switch t {
	case domain.DocTypeCheckIn:
		return "check-in"
	case domain.DocTypeCheckOut:
		return "check-out"
	case domain.DocTypeMixed:
		return "combined check-in/check-out"
	case domain.DocTypeControl:
		return "property control"
	default:
		return "reservation"
	}
}

// detectPlatform infers the booking platform from raw text
func detectPlatform(text string) domain.Platform {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "airbnb"):
		return domain.PlatformAirbnb
	case strings.Contains(lower, "booking.com"), strings.Contains(lower, "booking"):
		return domain.PlatformBooking
	default:
		return domain.PlatformDirect
	}
}

// toISODate normalizes the date formats seen in the corpus to ISO
func toISODate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	for _, layout := range []string{"2006-01-02", "02-01-2006", "02/01/2006", "2006/01/02", "02.01.2006"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return ""
}

// truncate cuts s to at most limit bytes without splitting a rune;
// the corpus is Portuguese text, so multi-byte runes are the norm.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
