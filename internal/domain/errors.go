package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound - запрос к Overpass прошёл успешно, но пригодных данных нет
	ErrNotFound = errors.New("not found")

	// ErrFetchFailed - транспортная ошибка, ошибка статуса или декодирования ответа
	ErrFetchFailed = errors.New("upstream fetch failed")

	// ErrValidation - ошибка, которую может исправить вызывающая сторона
	ErrValidation = errors.New("validation failed")
)

// Причины ошибок валидации при добавлении города
var (
	ErrInvalidAreaID      = errors.New("invalid area id")
	ErrCityNotFound       = errors.New("city not found")
	ErrNotEnoughAddresses = errors.New("not enough addresses")
	ErrInvalidLocation    = errors.New("invalid location")
)

// FetchError описывает неудачный запрос к Overpass
type FetchError struct {
	Query string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("overpass fetch %q: %v", e.Query, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

func (e *FetchError) Is(target error) bool {
	return target == ErrFetchFailed
}

// ValidationError - ошибка валидации запроса на добавление города.
// Reason - одна из причин выше, Err - исходная причина (ErrNotFound или *FetchError).
type ValidationError struct {
	Reason  error
	Message string
	Err     error
}

// NewValidationError создает ValidationError
func NewValidationError(reason error, cause error, format string, args ...interface{}) *ValidationError {
	return &ValidationError{
		Reason:  reason,
		Message: fmt.Sprintf(format, args...),
		Err:     cause,
	}
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation || (e.Reason != nil && target == e.Reason)
}
