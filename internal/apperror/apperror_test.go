package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindValidation, KindOf(Validation("bad input")))
	assert.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	assert.Equal(t, KindConflict, KindOf(Conflict("duplicate")))
	assert.Equal(t, KindInsufficientFunds, KindOf(InsufficientFunds("broke")))
	assert.Equal(t, KindInsufficientHoldings, KindOf(InsufficientHoldings("empty")))
	assert.Equal(t, KindInfrastructure, KindOf(errors.New("boom")))
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("creating position: %w", Conflict("duplicate"))

	assert.Equal(t, KindConflict, KindOf(err))
}

func TestInfrastructureUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Infrastructure("database unavailable", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "database unavailable: connection refused", err.Error())
}

func TestViolations(t *testing.T) {
	var violations Violations

	violations = violations.Check(true, "username", "must be set")
	violations = violations.Check(false, "amount", "must be at least 10")
	violations = violations.Checkf(false, "email", "must be at most %d characters", 30)

	err := violations.OrNil()
	require.Error(t, err)
	assert.Equal(t, KindValidation, KindOf(err))
	assert.Len(t, violations, 2)
	assert.Equal(
		t,
		"validation failed: amount: must be at least 10; email: must be at most 30 characters",
		err.Error(),
	)
}

func TestViolationsEmpty(t *testing.T) {
	var violations Violations

	assert.NoError(t, violations.Check(true, "username", "must be set").OrNil())
}
