// internal/core/extract/prefilter.go
package extract

import (
	"regexp"
	"strings"
)

const maxRelevantLines = 50

// Header lines that repeat on every page of the agency's PDFs and
// carry no reservation data.
var repetitiveHeaders = []string{
	"mapa de reservas", "relatorio", "relatório", "printed", "impresso",
	"página", "pagina", "page ", "confidencial", "all rights reserved",
}

var reDigitRun = regexp.MustCompile(`\d{6,}`)

// RelevantLines shrinks a document to the subset of lines worth
// spending prompt tokens on: lines carrying an email, a phone-like
// digit run, a date, a reservation reference, a capitalized-name
// shape, or a known property token. Duplicates are removed and the
// result is capped, which keeps even multi-page control documents
// inside the model's input budget.
func (m *ManualExtractor) RelevantLines(text string) []string {
	seen := make(map[string]struct{})
	var kept []string

	for _, line := range splitLines(text) {
		if len(line) < 3 {
			continue
		}
		if isRepetitiveHeader(line) {
			continue
		}
		if !m.lineIsRelevant(line) {
			continue
		}
		if _, dup := seen[line]; dup {
			continue
		}
		seen[line] = struct{}{}
		kept = append(kept, line)
		if len(kept) >= maxRelevantLines {
			break
		}
	}
	return kept
}

func (m *ManualExtractor) lineIsRelevant(line string) bool {
	if reEmail.MatchString(line) ||
		rePhone.MatchString(line) ||
		reDigitRun.MatchString(line) ||
		reDateDMY.MatchString(line) ||
		reReference.MatchString(line) ||
		reNameSeq.MatchString(line) {
		return true
	}
	for _, re := range m.propertyRe {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func isRepetitiveHeader(line string) bool {
	lower := strings.ToLower(line)
	for _, header := range repetitiveHeaders {
		if strings.Contains(lower, header) {
			return true
		}
	}
	return false
}
