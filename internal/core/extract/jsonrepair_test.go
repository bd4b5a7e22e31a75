// internal/core/extract/jsonrepair_test.go
package extract

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairJSON_ValidInputIsUntouched(t *testing.T) {
	inputs := []string{
		`{}`,
		`{"guestName":"Maria Santos"}`,
		`{"a":[1,2,3],"b":{"c":null}}`,
		`  {"padded": true}  `,
	}
	for _, in := range inputs {
		assert.Equal(t, in, RepairJSON(in))
	}
}

func TestRepairJSON_TruncatedOutput(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "cut_inside_string_value",
			input: `{"propertyName":"Aroeira I","guestName":"Mar`,
		},
		{
			name:  "cut_after_key_colon",
			input: `{"propertyName":"Aroeira I","guestName":`,
		},
		{
			name:  "cut_after_comma",
			input: `{"propertyName":"Aroeira I",`,
		},
		{
			name:  "cut_inside_key",
			input: `{"propertyName":"Aroeira I","guestNa`,
		},
		{
			name:  "cut_at_key_closing_quote",
			input: `{"propertyName"`,
		},
		{
			name:  "cut_at_second_key_closing_quote",
			input: `{"propertyName":"Aroeira I","guestName"`,
		},
		{
			name:  "cut_inside_boolean",
			input: `{"propertyName":"Aroeira I","confirmed":tru`,
		},
		{
			name:  "cut_inside_nested_array",
			input: `{"reservations":[{"guestName":"Maria"},{"guestName":"Jo`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repaired := RepairJSON(tt.input)
			require.True(t, json.Valid([]byte(repaired)),
				"repaired output must parse: %s", repaired)
		})
	}
}

// Whatever offset the token cap lands on, the repaired string must
// parse. Sweeps every cut point of a mixed-type object.
func TestRepairJSON_EveryTruncationOffsetParses(t *testing.T) {
	const full = `{"propertyName":"Aroeira I","guests":2,"confirmed":true,` +
		`"notes":null,"fees":[45.0,15.0],"guest":{"name":"João Silva"}}`

	for offset := 10; offset < len(full); offset++ {
		repaired := RepairJSON(full[:offset])
		require.True(t, json.Valid([]byte(repaired)),
			"offset %d: %q repaired to unparseable %q", offset, full[:offset], repaired)
	}
}

// Fields before the truncation point must survive the repair.
func TestRepairJSON_LeadingFieldsSurvive(t *testing.T) {
	input := `{"propertyName":"Aroeira I","guestName":"Maria Santos","totalAmount":"480.0`

	var out map[string]any
	require.NoError(t, json.Unmarshal([]byte(RepairJSON(input)), &out))

	assert.Equal(t, "Aroeira I", out["propertyName"])
	assert.Equal(t, "Maria Santos", out["guestName"])
}

func TestRepairJSON_Idempotent(t *testing.T) {
	input := `{"guestName":"Mar`
	once := RepairJSON(input)
	assert.Equal(t, once, RepairJSON(once))
}

func TestRepairJSON_HopelessInputReturnedAsIs(t *testing.T) {
	assert.Equal(t, "", RepairJSON(""))
	assert.Equal(t, "not json at all", RepairJSON("not json at all"))
}
