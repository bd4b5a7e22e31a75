// internal/core/extract/manual.go
package extract

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
)

// ManualConfig carries the language-specific knobs of the regex
// fallback. The structural-word denylist and the known-property list
// are configuration, not literals: the documents are a Portuguese and
// English mix and both lists grow as new owners onboard.
type ManualConfig struct {
	Denylist        []string
	KnownProperties []string
	MinNameLength   int
}

// DefaultManualConfig returns the lists tuned against the current
// document corpus.
func DefaultManualConfig() ManualConfig {
	return ManualConfig{
		Denylist: []string{
			"pdf", "date", "data", "property", "propriedade", "check",
			"total", "reserva", "reservation", "guest", "name", "nome",
			"email", "phone", "telefone", "adults", "adultos", "children",
			"nights", "noites", "documento", "document", "page", "pagina",
			"booking", "airbnb", "control", "controlo", "mapa", "valor",
			"amount", "apartamento", "apartment", "confirmation",
		},
		KnownProperties: []string{
			`Aroeira\s*(?:I{1,3}|IV|\d)?`,
			`Almada\s+Noronha(?:\s+\d+)?`,
			`Sete\s+Rios`,
			`Casa\s+dos\s+Barcos`,
			`Costa\s+(?:da\s+)?Caparica`,
			`Bernardo(?:\s+T\d)?`,
			`Ajuda`,
			`Nazar[eé]\s*T\d`,
			`Magoito(?:\s+\w+)?`,
			`[EÉ]vora\s*T\d`,
		},
		MinNameLength: 8,
	}
}

// ManualExtractor recovers reservation fields from raw text with pure
// pattern matching. It only runs once the LLM path is exhausted, so it
// favors recall over precision: a wrong-but-plausible guest name is
// caught by validation and human review downstream.
type ManualExtractor struct {
	cfg        ManualConfig
	denySet    map[string]struct{}
	propertyRe []*regexp.Regexp
	logger     *slog.Logger
}

// Compiled patterns shared by every strategy.
var (
	reEmail     = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	rePhone     = regexp.MustCompile(`\+\d[\d\s]{6,}\d`)
	reDateDMY   = regexp.MustCompile(`\b(\d{2})-(\d{2})-(\d{4})\b`)
	reReference = regexp.MustCompile(`\b[A-Z]\d{3}-[A-Z0-9]+\b`)
	reAdults    = regexp.MustCompile(`(?i)(?:(\d+)\s*adult\w*|adult\w*\s*[:\-]?\s*(\d+))`)
	reNameSeq   = regexp.MustCompile(`\p{Lu}[\p{L}'\-]+(?:\s+\p{Lu}[\p{L}'\-]+){1,3}`)
	reNameLabel = regexp.MustCompile(`(?i)(?:name|guest|nome|titular|h[oó]spede)\s*[:\-]\s*(.+)`)
)

// NewManualExtractor builds the fallback extractor from config
func NewManualExtractor(cfg ManualConfig, logger *slog.Logger) *ManualExtractor {
	if cfg.MinNameLength == 0 {
		cfg.MinNameLength = 8
	}

	deny := make(map[string]struct{}, len(cfg.Denylist))
	for _, w := range cfg.Denylist {
		deny[strings.ToLower(w)] = struct{}{}
	}

	propertyRe := make([]*regexp.Regexp, 0, len(cfg.KnownProperties))
	for _, p := range cfg.KnownProperties {
		re, err := regexp.Compile(`(?i)` + p)
		if err != nil {
			logger.Warn("skipping invalid property pattern", slog.String("pattern", p))
			continue
		}
		propertyRe = append(propertyRe, re)
	}

	return &ManualExtractor{
		cfg:        cfg,
		denySet:    deny,
		propertyRe: propertyRe,
		logger:     logger.With(slog.String("component", "manual_extractor")),
	}
}

// Extract applies the full pattern cascade over the document text.
// The result may be partial; callers run it through validation.
func (m *ManualExtractor) Extract(text string) *domain.ExtractedReservation {
	lines := splitLines(text)

	data := &domain.ExtractedReservation{
		RawText:  text,
		Platform: domain.PlatformOther,
	}

	data.GuestName = m.extractGuestName(text, lines)
	data.PropertyName = m.extractPropertyName(text)
	data.GuestEmail = reEmail.FindString(text)
	data.GuestPhone = normalizePhone(rePhone.FindString(text))
	data.Reference = reReference.FindString(text)
	data.CheckInDate, data.CheckOutDate = extractDates(text)
	data.Adults = extractAdults(text)
	if data.Adults > 0 {
		data.NumGuests = data.Adults + data.Children
	}

	m.logger.Debug("manual extraction finished",
		slog.Bool("has_guest", data.GuestName != ""),
		slog.Bool("has_property", data.PropertyName != ""),
		slog.Bool("has_dates", data.CheckInDate != ""))

	return data
}

// extractGuestName runs the strategy chain: each strategy is only
// tried when the previous produced nothing.
func (m *ManualExtractor) extractGuestName(text string, lines []string) string {
	strategies := []func(string, []string) string{
		m.nameRepeatedInTable,
		m.nameBeforeEmail,
		m.nameBeforePhone,
		m.nameFromLabel,
		m.nameByFrequency,
		m.nameByGeneralPattern,
	}

	for _, strategy := range strategies {
		if name := strategy(text, lines); name != "" {
			return name
		}
	}
	return ""
}

// nameRepeatedInTable targets tabular control documents where the
// guest name appears twice consecutively followed by a phone number.
func (m *ManualExtractor) nameRepeatedInTable(_ string, lines []string) string {
	for i := 0; i+2 < len(lines); i++ {
		if lines[i] == "" || lines[i] != lines[i+1] {
			continue
		}
		if !rePhone.MatchString(lines[i+2]) {
			continue
		}
		if name := lines[i]; m.isPlausibleName(name) {
			return name
		}
	}
	return ""
}

// nameBeforeEmail looks for a capitalized name immediately preceding an
// email address, on the same line or the line above.
func (m *ManualExtractor) nameBeforeEmail(_ string, lines []string) string {
	return m.nameBeforePattern(lines, reEmail)
}

// nameBeforePhone is the same heuristic keyed on a phone number
func (m *ManualExtractor) nameBeforePhone(_ string, lines []string) string {
	return m.nameBeforePattern(lines, rePhone)
}

func (m *ManualExtractor) nameBeforePattern(lines []string, marker *regexp.Regexp) string {
	for i, line := range lines {
		loc := marker.FindStringIndex(line)
		if loc == nil {
			continue
		}
		// Same line: name precedes the marker.
		if name := m.lastPlausibleName(line[:loc[0]]); name != "" {
			return name
		}
		// Previous line holds just the name.
		if i > 0 {
			if name := m.lastPlausibleName(lines[i-1]); name != "" {
				return name
			}
		}
	}
	return ""
}

// nameFromLabel matches explicit labels ("Name:", "Titular:", ...) and
// otherwise accepts a plausible name alone on its own line.
func (m *ManualExtractor) nameFromLabel(_ string, lines []string) string {
	for _, line := range lines {
		if match := reNameLabel.FindStringSubmatch(line); match != nil {
			if name := m.lastPlausibleName(match[1]); name != "" {
				return name
			}
		}
	}
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if reNameSeq.FindString(trimmed) == trimmed && m.isPlausibleName(trimmed) {
			return trimmed
		}
	}
	return ""
}

// nameByFrequency picks the most repeated 2-4 word capitalized phrase
// across the whole document, provided it recurs more than once. Guest
// names tend to repeat in control documents; headers are filtered by
// the denylist.
func (m *ManualExtractor) nameByFrequency(text string, _ []string) string {
	counts := make(map[string]int)
	for _, candidate := range reNameSeq.FindAllString(text, -1) {
		if m.isPlausibleName(candidate) {
			counts[candidate]++
		}
	}

	best, bestCount := "", 1
	for name, count := range counts {
		if count > bestCount || (count == bestCount && name < best) {
			best, bestCount = name, count
		}
	}
	if bestCount > 1 {
		return best
	}
	return ""
}

// nameByGeneralPattern is the loosest strategy: any plausible 2-4 word
// capitalized sequence, preferring 2-3 word candidates and, within the
// same word count, longer strings.
func (m *ManualExtractor) nameByGeneralPattern(text string, _ []string) string {
	candidates := reNameSeq.FindAllString(text, -1)

	var plausible []string
	for _, c := range candidates {
		if m.isPlausibleName(c) {
			plausible = append(plausible, c)
		}
	}
	if len(plausible) == 0 {
		return ""
	}

	sort.SliceStable(plausible, func(i, j int) bool {
		wi, wj := len(strings.Fields(plausible[i])), len(strings.Fields(plausible[j]))
		pi, pj := wi >= 2 && wi <= 3, wj >= 2 && wj <= 3
		if pi != pj {
			return pi
		}
		return len(plausible[i]) > len(plausible[j])
	})

	return plausible[0]
}

// lastPlausibleName returns the last plausible name sequence in s
func (m *ManualExtractor) lastPlausibleName(s string) string {
	matches := reNameSeq.FindAllString(s, -1)
	for i := len(matches) - 1; i >= 0; i-- {
		if m.isPlausibleName(matches[i]) {
			return matches[i]
		}
	}
	return ""
}

// isPlausibleName applies the shared candidate filter: length floor,
// 2-4 space-separated tokens, no structural words.
func (m *ManualExtractor) isPlausibleName(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) < m.cfg.MinNameLength {
		return false
	}
	words := strings.Fields(s)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		if _, denied := m.denySet[strings.ToLower(strings.Trim(w, ".,:;"))]; denied {
			return false
		}
	}
	return true
}

// extractPropertyName matches the known-property patterns. Property
// names wrap across table cells in control PDFs, so embedded line
// breaks are collapsed before matching.
func (m *ManualExtractor) extractPropertyName(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	for _, re := range m.propertyRe {
		if match := re.FindString(flat); match != "" {
			return strings.TrimSpace(match)
		}
	}
	return ""
}

// extractDates finds DD-MM-YYYY dates and assigns the earlier one to
// check-in and the later one to check-out, converted to ISO.
func extractDates(text string) (checkIn, checkOut string) {
	matches := reDateDMY.FindAllStringSubmatch(text, -1)

	var dates []time.Time
	for _, match := range matches {
		day, _ := strconv.Atoi(match[1])
		month, _ := strconv.Atoi(match[2])
		year, _ := strconv.Atoi(match[3])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			continue
		}
		dates = append(dates, time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC))
	}
	if len(dates) == 0 {
		return "", ""
	}

	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	checkIn = dates[0].Format("2006-01-02")
	if len(dates) > 1 {
		checkOut = dates[len(dates)-1].Format("2006-01-02")
	}
	return checkIn, checkOut
}

func extractAdults(text string) int {
	match := reAdults.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	for _, group := range match[1:] {
		if group != "" {
			n, err := strconv.Atoi(group)
			if err == nil && n > 0 && n < 50 {
				return n
			}
		}
	}
	return 0
}

func normalizePhone(raw string) string {
	if raw == "" {
		return ""
	}
	compact := strings.ReplaceAll(raw, " ", "")
	if len(compact) < 9 { // '+' plus at least 8 digits
		return ""
	}
	return compact
}

func splitLines(text string) []string {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		lines = append(lines, strings.TrimSpace(l))
	}
	return lines
}

// DescribeStrategies is used in debug logging to show which strategies
// are configured, in order.
func (m *ManualExtractor) DescribeStrategies() string {
	return fmt.Sprintf("6 ordered strategies, %d denylist words, %d property patterns",
		len(m.denySet), len(m.propertyRe))
}
