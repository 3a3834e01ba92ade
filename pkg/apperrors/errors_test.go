package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromError(t *testing.T) {
	assert.Nil(t, FromError(nil))

	plain := FromError(errors.New("disk full"))
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
	assert.Equal(t, "INTERNAL_ERROR", plain.Code)

	wrapped := fmt.Errorf("store: %w", Clone(ErrNotFound, "commitment 7 not found"))
	got := FromError(wrapped)
	assert.Equal(t, http.StatusNotFound, got.Status)
	assert.Equal(t, "commitment 7 not found", got.Message)
}

func TestIsMatchesClones(t *testing.T) {
	err := Clone(ErrConflict, "already promoted")
	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "conflict", ErrConflict.Message, "clone leaves the original alone")
}

func TestValidation(t *testing.T) {
	cause := errors.New("start must be before end")
	err := Validation(cause)
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusBadRequest, err.Status)
	assert.Equal(t, "start must be before end", err.Error())
}
