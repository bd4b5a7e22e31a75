// internal/core/domain/validation.go
package domain

// Severity of a single validation finding
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// ValidationError describes one finding on one field
type ValidationError struct {
	Field    string   `json:"field"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// ValidationResult is built once per extraction attempt and never
// mutated after return; retries construct a fresh one.
type ValidationResult struct {
	Status           ValidationStatus      `json:"status"`
	IsValid          bool                  `json:"isValid"`
	Errors           []ValidationError     `json:"errors,omitempty"`
	MissingFields    []string              `json:"missingFields,omitempty"`
	WarningFields    []string              `json:"warningFields,omitempty"`
	DataWithDefaults *ExtractedReservation `json:"dataWithDefaults,omitempty"`
}

// AddError records an error-severity finding
func (v *ValidationResult) AddError(field, message string) {
	v.Errors = append(v.Errors, ValidationError{Field: field, Message: message, Severity: SeverityError})
}

// AddWarning records a warning-severity finding and tracks the field
func (v *ValidationResult) AddWarning(field, message string) {
	v.Errors = append(v.Errors, ValidationError{Field: field, Message: message, Severity: SeverityWarning})
	v.WarningFields = append(v.WarningFields, field)
}

// HasErrorSeverity reports whether any finding is error-severity
func (v *ValidationResult) HasErrorSeverity() bool {
	for _, e := range v.Errors {
		if e.Severity == SeverityError {
			return true
		}
	}
	return false
}
