// internal/core/services/validator_test.go
package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
	"github.com/bilalmachraa82/propdocs/test/helpers"
)

func completeExtraction() *domain.ExtractedReservation {
	return &domain.ExtractedReservation{
		PropertyName: "Aroeira I",
		GuestName:    "Maria Santos",
		CheckInDate:  "2024-06-01",
		CheckOutDate: "2024-06-05",
		TotalAmount:  "480.00",
		Platform:     domain.PlatformBooking,
	}
}

func TestValidator_CompleteExtractionIsValid(t *testing.T) {
	v := NewValidator(helpers.TestLogger())

	result := v.Validate(completeExtraction())

	assert.Equal(t, domain.StatusValid, result.Status)
	assert.True(t, result.IsValid)
	assert.Empty(t, result.MissingFields)
	assert.Empty(t, result.Errors)
}

func TestValidator_MissingFieldsAreIncomplete(t *testing.T) {
	v := NewValidator(helpers.TestLogger())

	data := completeExtraction()
	data.CheckOutDate = ""
	data.GuestName = ""

	result := v.Validate(data)

	assert.Equal(t, domain.StatusIncomplete, result.Status)
	assert.False(t, result.IsValid)
	assert.ElementsMatch(t, []string{"guestName", "checkOutDate"}, result.MissingFields)
}

func TestValidator_NilDataFails(t *testing.T) {
	v := NewValidator(helpers.TestLogger())

	result := v.Validate(nil)

	assert.Equal(t, domain.StatusFailed, result.Status)
	assert.NotEmpty(t, result.MissingFields)
}

func TestValidator_CheckOutBeforeCheckIn(t *testing.T) {
	v := NewValidator(helpers.TestLogger())

	data := completeExtraction()
	data.CheckInDate = "2024-06-05"
	data.CheckOutDate = "2024-06-01"

	result := v.Validate(data)

	assert.Equal(t, domain.StatusNeedsReview, result.Status)
	assert.True(t, result.HasErrorSeverity())
}

func TestValidator_UnparseableAmountIsWarning(t *testing.T) {
	v := NewValidator(helpers.TestLogger())

	data := completeExtraction()
	data.TotalAmount = "four hundred"

	result := v.Validate(data)

	assert.Equal(t, domain.StatusNeedsReview, result.Status)
	assert.Contains(t, result.WarningFields, "totalAmount")
	assert.False(t, result.HasErrorSeverity())
}

func TestValidator_DefaultsFillNumericGaps(t *testing.T) {
	v := NewValidator(helpers.TestLogger())

	data := completeExtraction()
	data.Platform = ""
	data.CleaningFee = ""

	result := v.Validate(data)

	require.NotNil(t, result.DataWithDefaults)
	assert.Equal(t, "0", result.DataWithDefaults.CleaningFee)
	assert.Equal(t, domain.PlatformDirect, result.DataWithDefaults.Platform)

	// The input itself must stay untouched.
	assert.Empty(t, data.CleaningFee)
	assert.Empty(t, string(data.Platform))
}

func TestApplyPropertyMatchWarning(t *testing.T) {
	v := NewValidator(helpers.TestLogger())

	result := v.Validate(completeExtraction())
	require.Equal(t, domain.StatusValid, result.Status)

	ApplyPropertyMatchWarning(result)

	assert.Equal(t, domain.StatusNeedsReview, result.Status)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.WarningFields, "propertyName")
}
