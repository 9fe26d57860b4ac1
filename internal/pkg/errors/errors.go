package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/address-data-service/internal/domain"
)

type AppError struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Details:    make(map[string]interface{}),
	}
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// FromDomain переводит доменную ошибку в AppError для HTTP-ответа.
// Ошибки валидации, вызванные сбоем Overpass, отдаются как 502.
func FromDomain(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	var validationErr *domain.ValidationError
	if stderrors.As(err, &validationErr) {
		if stderrors.Is(err, domain.ErrFetchFailed) {
			return New(CodeUpstreamUnavailable, validationErr.Message, http.StatusBadGateway)
		}
		return New(CodeValidationFailed, validationErr.Message, http.StatusBadRequest)
	}

	if stderrors.Is(err, domain.ErrFetchFailed) {
		return ErrUpstreamUnavailable
	}

	if stderrors.Is(err, domain.ErrNotFound) {
		return ErrLocationNotFound
	}

	return ErrInternalServer
}
