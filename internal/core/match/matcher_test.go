// internal/core/match/matcher_test.go
package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
	"github.com/bilalmachraa82/propdocs/test/helpers"
)

func testCatalog() []domain.Property {
	return []domain.Property{
		{ID: 1, Name: "Aroeira I"},
		{ID: 2, Name: "Aroeira II"},
		{ID: 3, Name: "Almada Noronha 2"},
		{ID: 4, Name: "Sete Rios"},
	}
}

func newMatcher(t *testing.T) *Matcher {
	t.Helper()
	return New(DefaultConfig(), helpers.TestLogger())
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Aroeira I", "aroeira i"},
		{"SÃO JOÃO", "sao joao"},
		{"Almada,  Noronha: 2.", "almada noronha 2"},
		{"Aroeira\nII", "aroeira ii"},
		{"  ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Normalize(tt.in))
	}
}

func TestScore(t *testing.T) {
	m := newMatcher(t)

	tests := []struct {
		name string
		a, b string
		want float64
	}{
		{"exact_after_normalization", "aroeira i", "Aroeira I", 100},
		{"arabic_numeral_alias", "Aroeira 1", "Aroeira I", 95},
		{"different_unit_same_base", "aroeira 2", "Aroeira I", 80},
		{"substring_scaled_by_length", "Sete Rios T2", "Sete Rios", 70 * 9.0 / 12.0},
		{"token_overlap", "Quinta Aroeira Praia", "Aroeira I", 40 * 1.0 / 3.0},
		{"no_overlap", "Casa do Mar", "Aroeira I", 0},
		{"empty_side", "", "Aroeira I", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, m.Score(tt.a, tt.b), 0.001)
		})
	}
}

// The tiers must stay ordered or threshold tuning loses its meaning.
func TestScore_TierOrdering(t *testing.T) {
	m := newMatcher(t)

	exact := m.Score("Aroeira I", "aroeira i")
	alias := m.Score("Aroeira 1", "Aroeira I")
	sameBase := m.Score("Aroeira 2", "Aroeira I")
	substring := m.Score("Sete Rios T2", "Sete Rios")
	overlap := m.Score("Quinta Aroeira Praia", "Aroeira I")

	assert.Greater(t, exact, alias)
	assert.Greater(t, alias, sameBase)
	assert.Greater(t, sameBase, substring)
	assert.Greater(t, substring, overlap)
	assert.Greater(t, overlap, 0.0)
}

func TestBestMatch_NumeralAlias(t *testing.T) {
	m := newMatcher(t)

	result := m.BestMatch("aroeira 1", testCatalog())
	require.NotNil(t, result)

	assert.Equal(t, "Aroeira I", result.Property.Name)
	assert.InDelta(t, 95, result.Score, 0.001)
}

func TestBestMatch_PrefersHigherScore(t *testing.T) {
	m := newMatcher(t)

	// "Aroeira 2" aliases unit II at 95 and only shares the base with
	// unit I at 80.
	result := m.BestMatch("Aroeira 2", testCatalog())
	require.NotNil(t, result)

	assert.Equal(t, "Aroeira II", result.Property.Name)
}

func TestBestMatch_FlexibleRetry(t *testing.T) {
	m := newMatcher(t)

	// "Noronha 2" scores ~39 against "Almada Noronha 2", below the
	// primary threshold but inside the flexible band. Both words appear
	// in the candidate, so the retry accepts it.
	result := m.BestMatch("Noronha 2", testCatalog())
	require.NotNil(t, result)

	assert.Equal(t, "Almada Noronha 2", result.Property.Name)
	assert.Greater(t, result.Score, 30.0)
	assert.Less(t, result.Score, 60.0)
}

func TestBestMatch_FlexibleRetryRejectsLowWordContainment(t *testing.T) {
	m := newMatcher(t)

	// Scores inside the flexible band, but only two of the four search
	// words appear in "Sete Rios", under the 0.6 ratio.
	result := m.BestMatch("Sete Rios Lisboa X9", testCatalog())

	assert.Nil(t, result)
}

func TestBestMatch_NothingClose(t *testing.T) {
	m := newMatcher(t)

	assert.Nil(t, m.BestMatch("Casa do Mar", testCatalog()))
}

func TestBestMatch_EmptyInputs(t *testing.T) {
	m := newMatcher(t)

	assert.Nil(t, m.BestMatch("  ", testCatalog()))
	assert.Nil(t, m.BestMatch("Aroeira I", nil))
}

func TestParseNumeral(t *testing.T) {
	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"i", 1, true},
		{"iv", 4, true},
		{"x", 10, true},
		{"2", 2, true},
		{"12", 12, true},
		{"123", 0, false},
		{"0", 0, false},
		{"t2", 0, false},
	}
	for _, tt := range tests {
		n, ok := parseNumeral(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, n, tt.in)
	}
}
