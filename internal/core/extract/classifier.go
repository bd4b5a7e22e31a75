// internal/core/extract/classifier.go
package extract

import (
	"strings"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
)

// Vocabulary the classifier scans for. Documents produced by the
// property managers are a Portuguese/English mix, so both sets are
// checked case-insensitively.
var (
	checkInTokens = []string{
		"check-in", "checkin", "check in",
		"entrada", "entradas", "chegada", "chegadas", "arrival",
	}
	checkOutTokens = []string{
		"check-out", "checkout", "check out",
		"saida", "saidas", "saída", "saídas", "partida", "partidas", "departure",
	}
	controlTokens = []string{
		"controlo", "controle", "mapa de reservas", "mapa de ocupacao",
		"mapa de ocupação", "control file", "exciting lisbon",
	}
)

// Classify tags a document as check-in, check-out, mixed, control or
// unknown based on substring checks against the text and the original
// filename. The result only steers which extraction prompt is used
// downstream; it is advisory and never fatal.
func Classify(text, filename string) domain.DocumentInfo {
	haystack := strings.ToLower(text + "\n" + filename)

	hasCheckIn := containsAny(haystack, checkInTokens)
	hasCheckOut := containsAny(haystack, checkOutTokens)

	switch {
	case hasCheckIn && hasCheckOut:
		return domain.DocumentInfo{
			Type:        domain.DocTypeMixed,
			Description: "document contains both check-in and check-out sections",
		}
	case hasCheckIn:
		return domain.DocumentInfo{
			Type:        domain.DocTypeCheckIn,
			Description: "check-in / arrivals document",
		}
	case hasCheckOut:
		return domain.DocumentInfo{
			Type:        domain.DocTypeCheckOut,
			Description: "check-out / departures document",
		}
	case containsAny(haystack, controlTokens):
		return domain.DocumentInfo{
			Type:        domain.DocTypeControl,
			Description: "property control document, possibly multi-reservation",
		}
	default:
		return domain.DocumentInfo{
			Type:        domain.DocTypeUnknown,
			Description: "unrecognized document layout",
		}
	}
}

func containsAny(haystack string, tokens []string) bool {
	for _, token := range tokens {
		if strings.Contains(haystack, token) {
			return true
		}
	}
	return false
}
