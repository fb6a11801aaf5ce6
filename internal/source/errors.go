package source

import "fmt"

// ExtractionError is returned when the fetched content does not have the
// structure an adapter expects (missing markup, unparsable data).
type ExtractionError struct {
	Source  ID
	Message string
	Cause   error
}

// Error implements the error interface
func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: extraction error: %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: extraction error: %s", e.Source, e.Message)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// NewExtractionError creates an extraction error
func NewExtractionError(src ID, message string, cause error) *ExtractionError {
	return &ExtractionError{Source: src, Message: message, Cause: cause}
}

// FormulaError is returned when rate or margin data needed to derive a price
// is missing or malformed.
type FormulaError struct {
	Source ID
	Field  string
	Cause  error
}

// Error implements the error interface
func (e *FormulaError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: formula error: invalid %s: %v", e.Source, e.Field, e.Cause)
	}
	return fmt.Sprintf("%s: formula error: missing %s", e.Source, e.Field)
}

// Unwrap implements error unwrapping for errors.Is and errors.As
func (e *FormulaError) Unwrap() error {
	return e.Cause
}

// NewFormulaError creates a formula error
func NewFormulaError(src ID, field string, cause error) *FormulaError {
	return &FormulaError{Source: src, Field: field, Cause: cause}
}
