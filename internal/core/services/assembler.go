// internal/core/services/assembler.go
package services

import (
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bilalmachraa82/propdocs/internal/core/domain"
)

// Share of the reservation total withheld by airbnb/booking when the
// document does not state the platform fee explicitly.
var defaultPlatformFeeRate = decimal.NewFromFloat(0.10)

// Assembler combines a validated extraction with the matched
// property's financial defaults into the final persisted record.
// Extracted amounts always win over defaults; defaults only fill the
// gaps the document left.
type Assembler struct {
	logger *slog.Logger
}

// NewAssembler creates an assembler
func NewAssembler(logger *slog.Logger) *Assembler {
	return &Assembler{logger: logger.With(slog.String("component", "assembler"))}
}

// Assemble builds the reservation record. When no property matched,
// fee defaults stay at zero and the record is still produced; the
// needs_review status flags it for manual completion downstream.
func (a *Assembler) Assemble(
	data *domain.ExtractedReservation,
	validation *domain.ValidationResult,
	property *domain.Property,
	info domain.DocumentInfo,
	sourceFilename string,
) *domain.ReservationRecord {
	total := parseAmount(data.TotalAmount)
	platform := data.Platform
	if platform == "" {
		platform = domain.PlatformDirect
	}

	platformFee, ok := extractedAmount(data.PlatformFee)
	if !ok {
		if platform.ChargesServiceFee() {
			platformFee = total.Mul(defaultPlatformFeeRate).Round(2)
		} else {
			platformFee = decimal.Zero
		}
	}

	cleaningFee, ok := extractedAmount(data.CleaningFee)
	if !ok && property != nil {
		cleaningFee = property.CleaningCost
	}
	checkInFee, ok := extractedAmount(data.CheckInFee)
	if !ok && property != nil {
		checkInFee = property.CheckInFee
	}
	commissionFee, ok := extractedAmount(data.CommissionFee)
	if !ok && property != nil {
		commissionFee = total.Mul(property.Commission).Div(decimal.NewFromInt(100)).Round(2)
	}
	teamPayment, ok := extractedAmount(data.TeamPayment)
	if !ok && property != nil {
		teamPayment = property.TeamPayment
	}

	checkIn, checkOut := data.ParseDates()

	record := &domain.ReservationRecord{
		PropertyName:   strings.TrimSpace(data.PropertyName),
		GuestName:      strings.TrimSpace(data.GuestName),
		GuestEmail:     data.GuestEmail,
		GuestPhone:     data.GuestPhone,
		CheckInDate:    checkIn,
		CheckOutDate:   checkOut,
		NumGuests:      data.NumGuests,
		Adults:         data.Adults,
		Children:       data.Children,
		TotalAmount:    total,
		PlatformFee:    platformFee,
		CleaningFee:    cleaningFee,
		CheckInFee:     checkInFee,
		CommissionFee:  commissionFee,
		TeamPayment:    teamPayment,
		Platform:       platform,
		Reference:      data.Reference,
		Status:         validation.Status,
		DocumentType:   info.Type,
		SourceFilename: sourceFilename,
		RawText:        data.RawText,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	if property != nil {
		id := property.ID
		record.PropertyID = &id
	}

	record.ComputeNetAmount()

	a.logger.Debug("record assembled",
		slog.String("guest", record.GuestName),
		slog.String("property", record.PropertyName),
		slog.Bool("matched", property != nil),
		slog.String("net", record.NetAmount.String()))

	return record
}

// extractedAmount distinguishes "the document stated this amount"
// from "nothing extracted": only the former suppresses defaults.
func extractedAmount(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(normalizeAmount(s))
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func parseAmount(s string) decimal.Decimal {
	d, err := decimal.NewFromString(normalizeAmount(strings.TrimSpace(s)))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// normalizeAmount strips currency symbols and converts the European
// decimal comma.
func normalizeAmount(s string) string {
	s = strings.NewReplacer("€", "", "$", "", "£", "", " ", "").Replace(s)
	if strings.Contains(s, ",") && !strings.Contains(s, ".") {
		s = strings.ReplaceAll(s, ",", ".")
	} else {
		s = strings.ReplaceAll(s, ",", "")
	}
	return s
}
