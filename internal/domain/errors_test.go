package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("get city: %w", &FetchError{Query: "area(1);out;", Err: cause})

	assert.ErrorIs(t, err, ErrFetchFailed)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrNotFound)

	var fe *FetchError
	assert.ErrorAs(t, err, &fe)
	assert.Equal(t, "area(1);out;", fe.Query)
}

func TestValidationError(t *testing.T) {
	t.Run("reason and cause", func(t *testing.T) {
		err := NewValidationError(ErrNotEnoughAddresses, ErrNotFound, "The number of addresses in %d is small.", 42)

		assert.Equal(t, "The number of addresses in 42 is small.", err.Error())
		assert.ErrorIs(t, err, ErrValidation)
		assert.ErrorIs(t, err, ErrNotEnoughAddresses)
		assert.ErrorIs(t, err, ErrNotFound)
		assert.NotErrorIs(t, err, ErrCityNotFound)
	})

	t.Run("wraps fetch error", func(t *testing.T) {
		fetchErr := &FetchError{Query: "q", Err: errors.New("timeout")}
		err := NewValidationError(ErrCityNotFound, fetchErr, "city %d not found", 7)

		var fe *FetchError
		assert.ErrorAs(t, err, &fe)
		assert.ErrorIs(t, err, ErrFetchFailed)
	})

	t.Run("no cause", func(t *testing.T) {
		err := NewValidationError(ErrInvalidAreaID, nil, "bad")

		assert.ErrorIs(t, err, ErrInvalidAreaID)
		assert.Nil(t, errors.Unwrap(err))
	})
}

func TestValidAreaID(t *testing.T) {
	assert.True(t, ValidAreaID(1))
	assert.False(t, ValidAreaID(0))
	assert.False(t, ValidAreaID(-5))
}
