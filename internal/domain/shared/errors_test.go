package shared

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDomainError_Kinds(t *testing.T) {
	id := uuid.New()
	tests := []struct {
		name  string
		err   error
		check func(error) bool
	}{
		{"validation", NewValidationError("Commitment", id, "INVALID_NUMBER", "bad number", "commitment_number"), IsValidationError},
		{"transition", NewStateTransitionError("Budget", id, "DRAFT", "ACTIVE"), IsStateTransitionError},
		{"invalid state", NewInvalidStateError("Budget", id, "ACTIVE", "update"), IsStateTransitionError},
		{"invariant", NewInvariantViolationError("ControlAccount", id, "WORK_PACKAGES_INCOMPLETE", "incomplete"), IsInvariantViolationError},
		{"conflict", NewConcurrencyConflictError("EVMRecord", id), IsConcurrencyConflictError},
		{"not found", NewNotFoundError("Budget", id), IsNotFoundError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, tt.check(tt.err))
			wrapped := fmt.Errorf("service: %w", tt.err)
			assert.True(t, tt.check(wrapped), "predicates see through wrapping")
		})
	}
	assert.False(t, IsValidationError(errors.New("plain")))
	assert.False(t, IsNotFoundError(nil))
}

func TestDomainError_IsMatchesSentinels(t *testing.T) {
	err := NewNotFoundError("Commitment", uuid.New())
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, NewConcurrencyConflictError("Budget", uuid.New()), ErrConcurrencyConflict)
	assert.NotErrorIs(t, err, ErrConcurrencyConflict)
}

func TestDomainError_StateTransitionMessage(t *testing.T) {
	id := uuid.New()
	err := NewStateTransitionError("ControlAccount", id, "OPEN", "IN_PROGRESS")
	assert.Equal(t, "ControlAccount cannot transition from OPEN to IN_PROGRESS", err.Error())
	assert.Equal(t, []string{"status"}, err.Fields)
	assert.Equal(t, id, err.EntityID)
}

func TestDomainError_WithEntity(t *testing.T) {
	base := NewValidationError("", uuid.Nil, "NEGATIVE_VALUE", "bac cannot be negative", "bac")
	id := uuid.New()
	bound := base.WithEntity("ControlAccount", id)

	assert.Equal(t, "ControlAccount", bound.EntityType)
	assert.Equal(t, id, bound.EntityID)
	assert.Empty(t, base.EntityType, "original is not modified")
	assert.Equal(t, base.Code, bound.Code)
}

func TestDomainError_Detail(t *testing.T) {
	id := uuid.MustParse("6f1c2b1e-2f4a-4a57-9a55-1b1f8d5f0c11")
	err := NewInvariantViolationError("CommitmentWorkPackage", id, "PAYMENT_EXCEEDS_BALANCE", "too much", "paid_amount", "retained_amount")
	assert.Equal(t,
		"INVARIANT_VIOLATION PAYMENT_EXCEEDS_BALANCE CommitmentWorkPackage(6f1c2b1e-2f4a-4a57-9a55-1b1f8d5f0c11) [paid_amount,retained_amount]: too much",
		err.Detail())

	plain := NewDomainError("INVALID_INPUT", "bad")
	require.Equal(t, KindValidation, plain.Kind)
	assert.Equal(t, "VALIDATION INVALID_INPUT: bad", plain.Detail())
}
