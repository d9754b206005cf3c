package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("generate: %w", Clone(ErrCourseNotFound, "course XX999 not found"))

	appErr := FromError(wrapped)
	assert.Equal(t, "COURSE_NOT_FOUND", appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, "course XX999 not found", appErr.Message)
}

func TestFromErrorFallsBackToInternal(t *testing.T) {
	cause := errors.New("disk on fire")

	appErr := FromError(cause)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.ErrorIs(t, appErr, cause)
	assert.Nil(t, FromError(nil))
}

func TestCloneDoesNotMutateOriginal(t *testing.T) {
	clone := Clone(ErrValidation, "course_codes is required")

	assert.Equal(t, "validation failed", ErrValidation.Message)
	assert.Equal(t, "course_codes is required", clone.Message)
	assert.Equal(t, "boom: inner", Wrap(errors.New("inner"), "X", 500, "boom").Error())
}

func TestInvalidListsFieldProblems(t *testing.T) {
	type payload struct {
		CourseCodes []string `validate:"required,min=1"`
		Limit       int      `validate:"max=50"`
	}
	err := validator.New().Struct(payload{Limit: 80})
	require.Error(t, err)

	appErr := Invalid(err, "invalid payload")
	assert.Equal(t, ErrValidation.Code, appErr.Code)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, []string{"CourseCodes is required", "Limit must be at most 50"}, appErr.Details)

	plain := Invalid(errors.New("eof"), "invalid payload")
	assert.Empty(t, plain.Details)
}
