// internal/core/match/matcher.go
package match

import (
	"log/slog"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
)

// Config holds the matcher thresholds. The values are hand-tuned
// against the real property catalog; they are configuration precisely
// so they can be re-tuned empirically without a code change.
type Config struct {
	AcceptThreshold   float64 // primary acceptance score
	FlexibleThreshold float64 // lowered threshold after the flexible retry
	FlexibleWordRatio float64 // share of search words that must appear in the candidate
}

// DefaultConfig returns the tuning currently in production
func DefaultConfig() Config {
	return Config{
		AcceptThreshold:   60,
		FlexibleThreshold: 30,
		FlexibleWordRatio: 0.6,
	}
}

// Result pairs the winning property with its score
type Result struct {
	Property *domain.Property
	Score    float64
}

// Matcher scores extracted property names against the catalog
type Matcher struct {
	cfg    Config
	logger *slog.Logger
}

// New creates a property matcher
func New(cfg Config, logger *slog.Logger) *Matcher {
	return &Matcher{
		cfg:    cfg,
		logger: logger.With(slog.String("component", "property_matcher")),
	}
}

var stripDiacritics = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowers the string, strips line breaks, diacritics and
// punctuation, and collapses whitespace. Both sides of every
// comparison go through this.
func Normalize(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\r", " ")

	if stripped, _, err := transform.String(stripDiacritics, s); err == nil {
		s = stripped
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == ' ' {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Score rates the similarity of two property names on a 0-100 scale.
// Ordering invariant: exact (100) ≥ numeral alias (95) ≥ shared base
// (80) ≥ substring (≤70) ≥ token overlap (≤40) ≥ 0.
func (m *Matcher) Score(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 100
	}

	// The Aroeira units are written interchangeably with roman and
	// arabic numerals ("Aroeira II" vs "aroeira 2").
	if baseA, numA, okA := splitNumeral(na); okA {
		if baseB, numB, okB := splitNumeral(nb); okB && baseA == baseB {
			if numA == numB {
				return 95
			}
			return 80
		}
	}

	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		shorter, longer := len(na), len(nb)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		return 70 * float64(shorter) / float64(longer)
	}

	wordsA, wordsB := strings.Fields(na), strings.Fields(nb)
	common := 0
	setA := make(map[string]struct{}, len(wordsA))
	for _, w := range wordsA {
		setA[w] = struct{}{}
	}
	for _, w := range wordsB {
		if _, ok := setA[w]; ok {
			common++
		}
	}
	if common > 0 {
		max := len(wordsA)
		if len(wordsB) > max {
			max = len(wordsB)
		}
		return 40 * float64(common) / float64(max)
	}

	return 0
}

// BestMatch returns the catalog property whose name scores highest
// against the extracted name, or nil when nothing clears the
// thresholds. A best score in the flexible band triggers a looser
// word-containment retry with the lowered threshold.
func (m *Matcher) BestMatch(extractedName string, catalog []domain.Property) *Result {
	if strings.TrimSpace(extractedName) == "" || len(catalog) == 0 {
		return nil
	}

	var best *Result
	for i := range catalog {
		score := m.Score(extractedName, catalog[i].Name)
		if best == nil || score > best.Score {
			best = &Result{Property: &catalog[i], Score: score}
		}
	}

	if best.Score > m.cfg.AcceptThreshold {
		m.logger.Debug("property matched",
			slog.String("extracted", extractedName),
			slog.String("matched", best.Property.Name),
			slog.Float64("score", best.Score))
		return best
	}

	if best.Score > m.cfg.FlexibleThreshold {
		if flexible := m.flexibleMatch(extractedName, catalog); flexible != nil {
			m.logger.Debug("property matched via flexible retry",
				slog.String("extracted", extractedName),
				slog.String("matched", flexible.Property.Name),
				slog.Float64("score", flexible.Score))
			return flexible
		}
	}

	m.logger.Debug("no property match above threshold",
		slog.String("extracted", extractedName),
		slog.Float64("best_score", best.Score))
	return nil
}

// flexibleMatch accepts a candidate containing at least the configured
// share of the search name's words as substrings, scored against the
// lowered threshold.
func (m *Matcher) flexibleMatch(extractedName string, catalog []domain.Property) *Result {
	searchWords := strings.Fields(Normalize(extractedName))
	if len(searchWords) == 0 {
		return nil
	}

	var best *Result
	for i := range catalog {
		candidate := Normalize(catalog[i].Name)
		contained := 0
		for _, w := range searchWords {
			if strings.Contains(candidate, w) {
				contained++
			}
		}
		if float64(contained)/float64(len(searchWords)) < m.cfg.FlexibleWordRatio {
			continue
		}
		score := m.Score(extractedName, catalog[i].Name)
		if score <= m.cfg.FlexibleThreshold {
			continue
		}
		if best == nil || score > best.Score {
			best = &Result{Property: &catalog[i], Score: score}
		}
	}
	return best
}

// splitNumeral splits a trailing roman or arabic numeral off a
// normalized name: "aroeira 2" -> ("aroeira", 2, true).
func splitNumeral(name string) (base string, numeral int, ok bool) {
	words := strings.Fields(name)
	if len(words) < 2 {
		return "", 0, false
	}

	last := words[len(words)-1]
	n, ok := parseNumeral(last)
	if !ok {
		return "", 0, false
	}
	return strings.Join(words[:len(words)-1], " "), n, true
}

var romanNumerals = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5,
	"vi": 6, "vii": 7, "viii": 8, "ix": 9, "x": 10,
}

func parseNumeral(s string) (int, bool) {
	if n, ok := romanNumerals[s]; ok {
		return n, true
	}
	if len(s) <= 2 {
		n := 0
		for _, r := range s {
			if r < '0' || r > '9' {
				return 0, false
			}
			n = n*10 + int(r-'0')
		}
		if n > 0 {
			return n, true
		}
	}
	return 0, false
}
