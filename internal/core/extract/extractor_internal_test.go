// internal/core/extract/extractor_internal_test.go
package extract

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestTruncate_NeverSplitsARune(t *testing.T) {
	const text = "Reserva confirmada: João Simões, habitação nº 3, sessão de check-in às 15h"

	for limit := 0; limit <= len(text)+1; limit++ {
		out := truncate(text, limit)

		assert.True(t, utf8.ValidString(out), "limit %d produced invalid UTF-8: %q", limit, out)
		assert.LessOrEqual(t, len(out), limit, "limit %d", limit)
		assert.True(t, strings.HasPrefix(text, out), "limit %d", limit)
	}

	assert.Equal(t, text, truncate(text, len(text)))
}
