// internal/core/domain/reservation.go
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Platform represents the booking platform a reservation came from
type Platform string

// Platform constants
const (
	PlatformAirbnb  Platform = "airbnb"
	PlatformBooking Platform = "booking"
	PlatformDirect  Platform = "direct"
	PlatformOther   Platform = "other"
)

// ChargesServiceFee reports whether the platform takes a cut of the
// reservation total when no explicit fee was extracted from the document.
func (p Platform) ChargesServiceFee() bool {
	return p == PlatformAirbnb || p == PlatformBooking
}

// ValidationStatus represents the outcome of validating an extraction
type ValidationStatus string

// Validation status constants
const (
	StatusValid       ValidationStatus = "valid"
	StatusIncomplete  ValidationStatus = "incomplete"
	StatusNeedsReview ValidationStatus = "needs_review"
	StatusFailed      ValidationStatus = "failed"
)

// DocumentType classifies an uploaded document by its content
type DocumentType string

// Document type constants
const (
	DocTypeCheckIn  DocumentType = "checkin"
	DocTypeCheckOut DocumentType = "checkout"
	DocTypeMixed    DocumentType = "mixed"
	DocTypeControl  DocumentType = "control"
	DocTypeUnknown  DocumentType = "unknown"
)

// DocumentInfo is the advisory classification result. It steers which
// extraction prompt is used downstream and is never fatal.
type DocumentInfo struct {
	Type        DocumentType `json:"type"`
	Description string       `json:"description"`
}

// ExtractedReservation is the transient structure produced by the
// extraction pipeline before validation and property matching. Money
// fields are decimal-as-string because they arrive from an untrusted
// LLM payload or from regex capture; the assembler coerces them.
type ExtractedReservation struct {
	PropertyName  string   `json:"propertyName"`
	PropertyID    *int64   `json:"propertyId,omitempty"`
	GuestName     string   `json:"guestName"`
	GuestEmail    string   `json:"guestEmail,omitempty"`
	GuestPhone    string   `json:"guestPhone,omitempty"`
	CheckInDate   string   `json:"checkInDate"`  // YYYY-MM-DD
	CheckOutDate  string   `json:"checkOutDate"` // YYYY-MM-DD
	NumGuests     int      `json:"numGuests,omitempty"`
	Adults        int      `json:"adults,omitempty"`
	Children      int      `json:"children,omitempty"`
	TotalAmount   string   `json:"totalAmount,omitempty"`
	PlatformFee   string   `json:"platformFee,omitempty"`
	CleaningFee   string   `json:"cleaningFee,omitempty"`
	CheckInFee    string   `json:"checkInFee,omitempty"`
	CommissionFee string   `json:"commissionFee,omitempty"`
	TeamPayment   string   `json:"teamPayment,omitempty"`
	NetAmount     string   `json:"netAmount,omitempty"`
	Platform      Platform `json:"platform,omitempty"`
	Reference     string   `json:"reference,omitempty"`
	RawText       string   `json:"-"`
}

// HasMinimumFields reports whether the extraction recovered at least a
// guest or property name plus one date, the floor below which the
// pipeline treats the attempt as a miss.
func (e *ExtractedReservation) HasMinimumFields() bool {
	if e == nil {
		return false
	}
	hasName := e.GuestName != "" || e.PropertyName != ""
	hasDate := e.CheckInDate != "" || e.CheckOutDate != ""
	return hasName && hasDate
}

// Clone returns a deep copy. Validation fills defaults on a copy so the
// original extraction stays untouched for auditing.
func (e *ExtractedReservation) Clone() *ExtractedReservation {
	if e == nil {
		return nil
	}
	c := *e
	if e.PropertyID != nil {
		id := *e.PropertyID
		c.PropertyID = &id
	}
	return &c
}

// ParseDates returns the parsed check-in and check-out dates. A zero
// time is returned for fields that are empty or malformed.
func (e *ExtractedReservation) ParseDates() (checkIn, checkOut time.Time) {
	checkIn, _ = time.Parse("2006-01-02", e.CheckInDate)
	checkOut, _ = time.Parse("2006-01-02", e.CheckOutDate)
	return checkIn, checkOut
}

// ReservationRecord is the finished, persisted reservation built by the
// assembler from a validated extraction and the matched property's
// financial defaults.
type ReservationRecord struct {
	ID             uuid.UUID        `json:"id"`
	PropertyID     *int64           `json:"property_id,omitempty"`
	PropertyName   string           `json:"property_name"`
	GuestName      string           `json:"guest_name"`
	GuestEmail     string           `json:"guest_email,omitempty"`
	GuestPhone     string           `json:"guest_phone,omitempty"`
	CheckInDate    time.Time        `json:"check_in_date"`
	CheckOutDate   time.Time        `json:"check_out_date"`
	NumGuests      int              `json:"num_guests,omitempty"`
	Adults         int              `json:"adults,omitempty"`
	Children       int              `json:"children,omitempty"`
	TotalAmount    decimal.Decimal  `json:"total_amount"`
	PlatformFee    decimal.Decimal  `json:"platform_fee"`
	CleaningFee    decimal.Decimal  `json:"cleaning_fee"`
	CheckInFee     decimal.Decimal  `json:"check_in_fee"`
	CommissionFee  decimal.Decimal  `json:"commission_fee"`
	TeamPayment    decimal.Decimal  `json:"team_payment"`
	NetAmount      decimal.Decimal  `json:"net_amount"`
	Platform       Platform         `json:"platform"`
	Reference      string           `json:"reference,omitempty"`
	Status         ValidationStatus `json:"status"`
	DocumentType   DocumentType     `json:"document_type"`
	SourceFilename string           `json:"source_filename,omitempty"`
	RawText        string           `json:"raw_text,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

// Validate performs domain validation on the record before persistence
func (r *ReservationRecord) Validate() error {
	if r.GuestName == "" && r.PropertyName == "" {
		return fmt.Errorf("guest_name or property_name is required")
	}
	if r.TotalAmount.IsNegative() {
		return fmt.Errorf("total_amount cannot be negative")
	}
	if !r.CheckInDate.IsZero() && !r.CheckOutDate.IsZero() && !r.CheckOutDate.After(r.CheckInDate) {
		return fmt.Errorf("check_out_date must be after check_in_date")
	}
	if r.Platform == "" {
		r.Platform = PlatformDirect
	}
	if r.Status == "" {
		r.Status = StatusNeedsReview
	}
	return nil
}

// ComputeNetAmount recalculates the net amount from the current fee fields
func (r *ReservationRecord) ComputeNetAmount() {
	r.NetAmount = r.TotalAmount.
		Sub(r.PlatformFee).
		Sub(r.CleaningFee).
		Sub(r.CheckInFee).
		Sub(r.CommissionFee).
		Sub(r.TeamPayment)
}

// PrepareForStorage stamps identity and timestamps before persistence
func (r *ReservationRecord) PrepareForStorage() {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}

	r.ComputeNetAmount()

	now := time.Now()
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}
