package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHasCode_WalksWrappedChain(t *testing.T) {
	base := New(CodeConflict, "user is already clocked in")
	wrapped := Wrap(base, CodeInternal, "clock in failed")
	doubleWrapped := fmt.Errorf("handler: %w", wrapped)

	assert.True(t, HasCode(doubleWrapped, CodeConflict))
	assert.True(t, HasCode(doubleWrapped, CodeInternal))
	assert.False(t, HasCode(doubleWrapped, CodeNotFound))
}

func TestHasCode_UncodedError(t *testing.T) {
	assert.False(t, HasCode(errors.New("plain"), CodeInternal))
	assert.False(t, HasCode(nil, CodeInternal))
}

func TestCodeOf_OutermostWins(t *testing.T) {
	inner := New(CodeNotFound, "time entry not found")
	outer := Wrap(inner, CodeInternal, "lookup failed")

	assert.Equal(t, CodeInternal, CodeOf(outer))
	assert.Equal(t, CodeNotFound, CodeOf(inner))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("plain")))
}

func TestMessageOf_ShieldsUncodedErrors(t *testing.T) {
	assert.Equal(t, "lock unavailable", MessageOf(New(CodeConflict, "lock unavailable")))
	assert.Equal(t, "internal error", MessageOf(errors.New("pq: connection reset")))
}

func TestError_IncludesCauseInString(t *testing.T) {
	cause := errors.New("sql: no rows")
	err := Wrap(cause, CodeNotFound, "time entry not found")

	assert.Equal(t, "time entry not found: sql: no rows", err.Error())
	assert.Equal(t, cause, errors.Unwrap(err))
}
