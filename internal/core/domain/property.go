// internal/core/domain/property.go
package domain

import "github.com/shopspring/decimal"

// Property is a catalog entry with per-property financial defaults.
// The catalog is a read-only collaborator: a fresh snapshot is fetched
// per pipeline run and never mutated.
type Property struct {
	ID           int64           `json:"id"`
	Name         string          `json:"name"`
	CleaningCost decimal.Decimal `json:"cleaning_cost"`
	CheckInFee   decimal.Decimal `json:"check_in_fee"`
	Commission   decimal.Decimal `json:"commission"` // percent of total
	TeamPayment  decimal.Decimal `json:"team_payment"`
	Active       bool            `json:"active"`
}
