package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError(t *testing.T) {
	cause := errors.New("title is required")

	err := NewValidationError(cause)

	assert.Equal(t, "Invalid input: title is required", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsValidation(fmt.Errorf("wrapped: %w", err)))
	assert.False(t, IsValidation(cause))
	assert.Equal(t, "plain", NewAppError("STORAGE_ERROR", "plain", nil).Error())
}
