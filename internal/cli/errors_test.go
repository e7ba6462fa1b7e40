package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAuthRequiredErrorIs(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &AuthRequiredError{})
	assert.True(t, errors.Is(err, &AuthRequiredError{}))
	assert.Contains(t, err.Error(), "codeset auth login")
}

func TestAuthFailedErrorUnwrap(t *testing.T) {
	cause := errors.New("exchange rejected")
	err := &AuthFailedError{Reason: cause}
	assert.ErrorIs(t, err, cause)
	assert.True(t, errors.Is(err, &AuthFailedError{}))
	assert.Contains(t, err.Error(), "exchange rejected")
}
