package shared

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrorKind classifies a DomainError so callers can decide how to react
type ErrorKind string

const (
	// KindValidation is malformed or out-of-range input, rejected before any mutation
	KindValidation ErrorKind = "VALIDATION"
	// KindStateTransition is an illegal status change
	KindStateTransition ErrorKind = "STATE_TRANSITION"
	// KindInvariantViolation is a cross-field guard failure; the aggregate is left unmodified
	KindInvariantViolation ErrorKind = "INVARIANT_VIOLATION"
	// KindConcurrencyConflict is an optimistic version mismatch at persistence time
	KindConcurrencyConflict ErrorKind = "CONCURRENCY_CONFLICT"
	// KindNotFound is a missing aggregate or child entity
	KindNotFound ErrorKind = "NOT_FOUND"
)

// DomainError represents a domain-level error.
// EntityType, EntityID and Fields identify the offending entity for observability.
type DomainError struct {
	Kind       ErrorKind `json:"kind"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	EntityType string    `json:"entity_type,omitempty"`
	EntityID   uuid.UUID `json:"entity_id,omitempty"`
	Fields     []string  `json:"fields,omitempty"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is matches another DomainError by kind and code, so the sentinel values
// below can be used with errors.Is even after entity details are attached.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code
}

// Detail returns a log-friendly description including entity and fields
func (e *DomainError) Detail() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(" ")
	b.WriteString(e.Code)
	if e.EntityType != "" {
		fmt.Fprintf(&b, " %s", e.EntityType)
	}
	if e.EntityID != uuid.Nil {
		fmt.Fprintf(&b, "(%s)", e.EntityID)
	}
	if len(e.Fields) > 0 {
		fmt.Fprintf(&b, " [%s]", strings.Join(e.Fields, ","))
	}
	b.WriteString(": ")
	b.WriteString(e.Message)
	return b.String()
}

// WithEntity returns a copy of the error bound to the given entity
func (e *DomainError) WithEntity(entityType string, id uuid.UUID) *DomainError {
	c := *e
	c.EntityType = entityType
	c.EntityID = id
	return &c
}

// NewDomainError creates a new domain error. Errors created this way are
// classified as validation errors.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Kind:    KindValidation,
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates an error for malformed or out-of-range input
func NewValidationError(entityType string, entityID uuid.UUID, code, message string, fields ...string) *DomainError {
	return &DomainError{
		Kind:       KindValidation,
		Code:       code,
		Message:    message,
		EntityType: entityType,
		EntityID:   entityID,
		Fields:     fields,
	}
}

// NewStateTransitionError creates an error for an illegal status change
func NewStateTransitionError(entityType string, entityID uuid.UUID, from, to string) *DomainError {
	return &DomainError{
		Kind:       KindStateTransition,
		Code:       "INVALID_TRANSITION",
		Message:    fmt.Sprintf("%s cannot transition from %s to %s", entityType, from, to),
		EntityType: entityType,
		EntityID:   entityID,
		Fields:     []string{"status"},
	}
}

// NewInvalidStateError creates a state error for an operation that is not
// allowed in the current status (no target status involved)
func NewInvalidStateError(entityType string, entityID uuid.UUID, status, operation string) *DomainError {
	return &DomainError{
		Kind:       KindStateTransition,
		Code:       "INVALID_STATE",
		Message:    fmt.Sprintf("cannot %s %s in %s status", operation, entityType, status),
		EntityType: entityType,
		EntityID:   entityID,
		Fields:     []string{"status"},
	}
}

// NewInvariantViolationError creates an error for a cross-field guard failure
func NewInvariantViolationError(entityType string, entityID uuid.UUID, code, message string, fields ...string) *DomainError {
	return &DomainError{
		Kind:       KindInvariantViolation,
		Code:       code,
		Message:    message,
		EntityType: entityType,
		EntityID:   entityID,
		Fields:     fields,
	}
}

// NewConcurrencyConflictError creates an error for an optimistic version mismatch
func NewConcurrencyConflictError(entityType string, entityID uuid.UUID) *DomainError {
	return &DomainError{
		Kind:       KindConcurrencyConflict,
		Code:       "CONCURRENCY_CONFLICT",
		Message:    fmt.Sprintf("%s %s was modified by another process", entityType, entityID),
		EntityType: entityType,
		EntityID:   entityID,
		Fields:     []string{"version"},
	}
}

// NewNotFoundError creates an error for a missing entity
func NewNotFoundError(entityType string, entityID uuid.UUID) *DomainError {
	return &DomainError{
		Kind:       KindNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s %s not found", entityType, entityID),
		EntityType: entityType,
		EntityID:   entityID,
	}
}

// Common domain errors
var (
	ErrNotFound            = &DomainError{Kind: KindNotFound, Code: "NOT_FOUND", Message: "Resource not found"}
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = &DomainError{Kind: KindConcurrencyConflict, Code: "CONCURRENCY_CONFLICT", Message: "Resource was modified by another process"}
	ErrInvalidState        = &DomainError{Kind: KindStateTransition, Code: "INVALID_STATE", Message: "Operation not allowed in current state"}
)

func kindOf(err error) (ErrorKind, bool) {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind, true
	}
	return "", false
}

// IsValidationError reports whether err is a validation error
func IsValidationError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindValidation
}

// IsStateTransitionError reports whether err is an illegal state change
func IsStateTransitionError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindStateTransition
}

// IsInvariantViolationError reports whether err is a guard failure
func IsInvariantViolationError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindInvariantViolation
}

// IsConcurrencyConflictError reports whether err is an optimistic lock failure
func IsConcurrencyConflictError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindConcurrencyConflict
}

// IsNotFoundError reports whether err is a not-found error
func IsNotFoundError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == KindNotFound
}
