// internal/core/services/assembler_test.go
package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
	"github.com/bilalmachraa82/propdocs/test/helpers"
)

func aroeiraProperty() *domain.Property {
	return &domain.Property{
		ID:           1,
		Name:         "Aroeira I",
		CleaningCost: decimal.NewFromInt(45),
		CheckInFee:   decimal.NewFromInt(15),
		Commission:   decimal.NewFromInt(10),
		TeamPayment:  decimal.NewFromInt(30),
		Active:       true,
	}
}

func assemble(t *testing.T, data *domain.ExtractedReservation, property *domain.Property) *domain.ReservationRecord {
	t.Helper()
	v := NewValidator(helpers.TestLogger())
	a := NewAssembler(helpers.TestLogger())
	validation := v.Validate(data)
	return a.Assemble(data, validation, property, domain.DocumentInfo{Type: domain.DocTypeCheckIn}, "reservation.pdf")
}

func TestAssembler_PropertyDefaultsFillGaps(t *testing.T) {
	data := completeExtraction()

	record := assemble(t, data, aroeiraProperty())

	require.NotNil(t, record.PropertyID)
	assert.Equal(t, int64(1), *record.PropertyID)

	// No fee amounts in the document, so the property's cost structure
	// applies; booking withholds the default 10% service fee.
	assert.Equal(t, "48.00", record.PlatformFee.StringFixed(2))
	assert.Equal(t, "45.00", record.CleaningFee.StringFixed(2))
	assert.Equal(t, "15.00", record.CheckInFee.StringFixed(2))
	assert.Equal(t, "48.00", record.CommissionFee.StringFixed(2))
	assert.Equal(t, "30.00", record.TeamPayment.StringFixed(2))

	// 480 - 48 - 45 - 15 - 48 - 30
	assert.Equal(t, "294.00", record.NetAmount.StringFixed(2))
}

func TestAssembler_ExtractedAmountsWinOverDefaults(t *testing.T) {
	data := completeExtraction()
	data.PlatformFee = "52.80"
	data.CleaningFee = "60.00"

	record := assemble(t, data, aroeiraProperty())

	assert.Equal(t, "52.80", record.PlatformFee.StringFixed(2))
	assert.Equal(t, "60.00", record.CleaningFee.StringFixed(2))
	assert.Equal(t, "15.00", record.CheckInFee.StringFixed(2))
}

// A literal "0" means nothing was extracted, not a zero-cost
// reservation; the default must still apply.
func TestAssembler_ZeroStringDoesNotSuppressDefault(t *testing.T) {
	data := completeExtraction()
	data.CleaningFee = "0"

	record := assemble(t, data, aroeiraProperty())

	assert.Equal(t, "45.00", record.CleaningFee.StringFixed(2))
}

func TestAssembler_DirectBookingHasNoPlatformFee(t *testing.T) {
	data := completeExtraction()
	data.Platform = domain.PlatformDirect

	record := assemble(t, data, aroeiraProperty())

	assert.True(t, record.PlatformFee.IsZero())
}

func TestAssembler_EmptyPlatformDefaultsToDirect(t *testing.T) {
	data := completeExtraction()
	data.Platform = ""

	record := assemble(t, data, aroeiraProperty())

	assert.Equal(t, domain.PlatformDirect, record.Platform)
	assert.True(t, record.PlatformFee.IsZero())
}

func TestAssembler_UnmatchedPropertyKeepsZeroDefaults(t *testing.T) {
	data := completeExtraction()
	data.Platform = domain.PlatformAirbnb

	record := assemble(t, data, nil)

	assert.Nil(t, record.PropertyID)
	assert.Equal(t, "Aroeira I", record.PropertyName)
	assert.True(t, record.CleaningFee.IsZero())
	assert.True(t, record.CheckInFee.IsZero())
	assert.True(t, record.CommissionFee.IsZero())
	// The platform fee default does not depend on the catalog.
	assert.Equal(t, "48.00", record.PlatformFee.StringFixed(2))
}

func TestAssembler_KeepsExtractedPropertyNameAsWritten(t *testing.T) {
	data := completeExtraction()
	data.PropertyName = "  Aroeira 1  "

	record := assemble(t, data, aroeiraProperty())

	assert.Equal(t, "Aroeira 1", record.PropertyName)
	require.NotNil(t, record.PropertyID)
	assert.Equal(t, int64(1), *record.PropertyID)
}

func TestNormalizeAmount(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"480.00", "480.00"},
		{"480,50", "480.50"},
		{"€480,50", "480.50"},
		{"1,480.00", "1480.00"},
		{"$ 300", "300"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, normalizeAmount(tt.in), tt.in)
	}
}

func TestParseAmount_GarbageIsZero(t *testing.T) {
	assert.True(t, parseAmount("four hundred").IsZero())
	assert.True(t, parseAmount("").IsZero())
}
