package leads

import "errors"

// ErrLeadNotFound is returned when a lead is not found
var ErrLeadNotFound = errors.New("lead not found")

// ValidationError reports the first form field that failed validation.
// Message is safe to show to the visitor.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// DuplicateError is the typed form of a store uniqueness rejection.
// Field names the colliding column ("email" or "phone").
type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string { return "leads: duplicate " + e.Field }

// UserMessage returns the visitor-facing text naming the colliding field.
func (e *DuplicateError) UserMessage() string {
	switch e.Field {
	case "phone":
		return "Este WhatsApp já está cadastrado"
	default:
		return "Este e-mail já está cadastrado"
	}
}
