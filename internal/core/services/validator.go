// internal/core/services/validator.go
package services

import (
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
)

// Fields that must be present before a reservation can be considered
// complete.
var requiredFields = []string{"propertyName", "guestName", "checkInDate", "checkOutDate"}

// Validator checks an extraction for completeness and sanity. A fresh
// ValidationResult is built per attempt; partial data is never
// rejected outright, only labelled, because a human completes
// low-confidence extractions downstream.
type Validator struct {
	logger *slog.Logger
}

// NewValidator creates a validator
func NewValidator(logger *slog.Logger) *Validator {
	return &Validator{logger: logger.With(slog.String("component", "validator"))}
}

// Validate applies required-field, date-ordering and numeric checks.
// Status precedence: any missing required field ⇒ incomplete; else any
// warning or error finding ⇒ needs_review; else valid. The returned
// DataWithDefaults copy has numeric fields defaulted to "0" and the
// platform defaulted to direct so downstream assembly never sees an
// absent value.
func (v *Validator) Validate(data *domain.ExtractedReservation) *domain.ValidationResult {
	result := &domain.ValidationResult{}

	if data == nil {
		result.Status = domain.StatusFailed
		result.MissingFields = requiredFields
		result.AddError("extraction", "no data extracted")
		return result
	}

	for _, field := range requiredFields {
		if fieldValue(data, field) == "" {
			result.MissingFields = append(result.MissingFields, field)
			result.AddError(field, fmt.Sprintf("%s is required", field))
		}
	}

	checkIn, checkOut := data.ParseDates()
	if data.CheckInDate != "" && checkIn.IsZero() {
		result.AddWarning("checkInDate", "date is not in YYYY-MM-DD format")
	}
	if data.CheckOutDate != "" && checkOut.IsZero() {
		result.AddWarning("checkOutDate", "date is not in YYYY-MM-DD format")
	}
	if !checkIn.IsZero() && !checkOut.IsZero() && !checkOut.After(checkIn) {
		result.AddError("checkOutDate", "check-out must be after check-in")
	}

	for field, value := range map[string]string{
		"totalAmount":   data.TotalAmount,
		"platformFee":   data.PlatformFee,
		"cleaningFee":   data.CleaningFee,
		"checkInFee":    data.CheckInFee,
		"commissionFee": data.CommissionFee,
		"teamPayment":   data.TeamPayment,
		"netAmount":     data.NetAmount,
	} {
		if value == "" {
			continue
		}
		parsed, err := decimal.NewFromString(value)
		if err != nil {
			result.AddWarning(field, "amount does not parse as a number")
			continue
		}
		if parsed.IsNegative() {
			result.AddWarning(field, "amount is negative")
		}
	}

	switch {
	case len(result.MissingFields) > 0:
		result.Status = domain.StatusIncomplete
	case len(result.Errors) > 0:
		result.Status = domain.StatusNeedsReview
	default:
		result.Status = domain.StatusValid
	}
	result.IsValid = result.Status == domain.StatusValid
	result.DataWithDefaults = withDefaults(data)

	v.logger.Debug("validation finished",
		slog.String("status", string(result.Status)),
		slog.Int("missing", len(result.MissingFields)),
		slog.Int("findings", len(result.Errors)))

	return result
}

// ApplyPropertyMatchWarning records the warning-level finding raised
// when no catalog property clears the matcher threshold, and demotes a
// valid result to needs_review. Part of building the same attempt's
// result; results are immutable once handed to the caller.
func ApplyPropertyMatchWarning(result *domain.ValidationResult) {
	result.AddWarning("propertyName", "no matching property found in catalog")
	if result.Status == domain.StatusValid {
		result.Status = domain.StatusNeedsReview
		result.IsValid = false
	}
	if result.DataWithDefaults != nil {
		result.DataWithDefaults.PropertyID = nil
	}
}

func withDefaults(data *domain.ExtractedReservation) *domain.ExtractedReservation {
	d := data.Clone()
	for _, field := range []*string{
		&d.TotalAmount, &d.PlatformFee, &d.CleaningFee,
		&d.CheckInFee, &d.CommissionFee, &d.TeamPayment, &d.NetAmount,
	} {
		if *field == "" {
			*field = "0"
		}
	}
	if d.Platform == "" {
		d.Platform = domain.PlatformDirect
	}
	return d
}

func fieldValue(data *domain.ExtractedReservation, field string) string {
	switch field {
	case "propertyName":
		return data.PropertyName
	case "guestName":
		return data.GuestName
	case "checkInDate":
		return data.CheckInDate
	case "checkOutDate":
		return data.CheckOutDate
	default:
		return ""
	}
}
