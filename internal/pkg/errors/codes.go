package errors

import "net/http"

const (
	CodeValidationFailed    = "VALIDATION_FAILED"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeSeedingInterrupted  = "SEEDING_INTERRUPTED"
)

var (
	ErrLocationNotFound = New(
		"LOCATION_NOT_FOUND",
		"Location not found",
		http.StatusNotFound,
	)

	ErrDocumentNotFound = New(
		"DOCUMENT_NOT_FOUND",
		"Document not found",
		http.StatusNotFound,
	)

	ErrInvalidAreaID = New(
		"INVALID_AREA_ID",
		"Invalid area ID",
		http.StatusBadRequest,
	)

	ErrUpstreamUnavailable = New(
		CodeUpstreamUnavailable,
		"Overpass API is unavailable",
		http.StatusBadGateway,
	)

	ErrStorageError = New(
		"STORAGE_ERROR",
		"Document storage operation failed",
		http.StatusInternalServerError,
	)

	ErrInvalidRequest = New(
		"INVALID_REQUEST",
		"Invalid request parameters",
		http.StatusBadRequest,
	)

	ErrInternalServer = New(
		"INTERNAL_SERVER_ERROR",
		"Internal server error",
		http.StatusInternalServerError,
	)
)
