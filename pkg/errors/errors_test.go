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

func TestCloneMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("book: %w", Clone(ErrSlotFull, "slot slot-1 has no seats left"))

	assert.True(t, errors.Is(err, ErrSlotFull))
	assert.False(t, errors.Is(err, ErrSlotClosed))

	appErr := FromError(err)
	assert.Equal(t, http.StatusConflict, appErr.Status)
	assert.Equal(t, "slot slot-1 has no seats left", appErr.Message)
}

func TestFromErrorDefaultsToInternal(t *testing.T) {
	appErr := FromError(errors.New("connection reset"))
	require.NotNil(t, appErr)
	assert.Equal(t, ErrInternal.Code, appErr.Code)
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.Nil(t, FromError(nil))
}

func TestValidationListsFieldFailures(t *testing.T) {
	type payload struct {
		Campus   string `validate:"required"`
		Capacity int    `validate:"min=1"`
	}
	err := validator.New().Struct(payload{Capacity: 0})
	require.Error(t, err)

	appErr := Validation(err, "invalid slot payload")
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
	assert.Equal(t, map[string]string{"campus": "required", "capacity": "min"}, appErr.Details)
	assert.ErrorIs(t, appErr, ErrValidation)

	plain := Validation(errors.New("unexpected EOF"), "invalid body")
	assert.Nil(t, plain.Details)
}
