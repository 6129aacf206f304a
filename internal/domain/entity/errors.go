package entity

import (
	"errors"
	"fmt"
)

// Stable error codes returned to every transport.
const (
	CodeValidationError       = "VALIDATION_ERROR"
	CodeNotFound              = "NOT_FOUND"
	CodeAlreadyExists         = "ALREADY_EXISTS"
	CodeBusinessRuleViolation = "BUSINESS_RULE_VIOLATION"
	CodeInternalError         = "INTERNAL_ERROR"
)

// DomainError is an error with a stable code that is safe to expose to
// callers on any transport.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

// NewValidationError reports invalid input. The message should name the
// offending field.
func NewValidationError(format string, args ...any) *DomainError {
	return &DomainError{
		Code:    CodeValidationError,
		Message: fmt.Sprintf(format, args...),
	}
}

// NewNotFoundError reports a missing entity by type and identifier.
func NewNotFoundError(entityType, id string) *DomainError {
	return &DomainError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s with ID %s not found", entityType, id),
	}
}

// NewAlreadyExistsError reports a uniqueness conflict. The identifier names
// the conflicting attribute, e.g. "email=bob@example.com".
func NewAlreadyExistsError(entityType, identifier string) *DomainError {
	return &DomainError{
		Code:    CodeAlreadyExists,
		Message: fmt.Sprintf("%s with %s already exists", entityType, identifier),
	}
}

// NewBusinessRuleViolation reports an operation that the current state of
// the entity forbids.
func NewBusinessRuleViolation(rule, details string) *DomainError {
	return &DomainError{
		Code:    CodeBusinessRuleViolation,
		Message: fmt.Sprintf("Business rule violation: %s - %s", rule, details),
	}
}

// AsDomainError unwraps err into a DomainError when one is present in the
// chain.
func AsDomainError(err error) (*DomainError, bool) {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr, true
	}
	return nil, false
}
