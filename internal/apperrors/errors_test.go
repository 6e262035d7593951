package apperrors

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestNotFound(t *testing.T) {
	assert := assert.New(t)

	err := NotFound("chat", "chat-1")
	assert.Equal(`[NOT_FOUND] chat "chat-1" not found`, err.Error())
	assert.True(IsNotFound(err))
	assert.False(IsValidation(err))
	assert.False(IsPermissionDenied(err))
}

func TestCodeOfWrappedError(t *testing.T) {
	assert := assert.New(t)

	// The code must survive wrapping by infrastructure layers.
	err := errors.Wrap(Validation("message content is empty"), "unable to send message")
	assert.Equal(CodeValidationFailed, CodeOf(err))
	assert.True(IsValidation(err))
}

func TestCodeOfPlainError(t *testing.T) {
	assert.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	assert.False(t, IsNotFound(nil))
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[INTERNAL_ERROR] internal error (connection refused)", err.Error())
}
