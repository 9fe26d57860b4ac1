package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/address-data-service/internal/domain"
)

func TestFromDomain(t *testing.T) {
	fetchErr := &domain.FetchError{Query: "q", Err: stderrors.New("timeout")}

	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "validation",
			err:        domain.NewValidationError(domain.ErrNotEnoughAddresses, domain.ErrNotFound, "The number of addresses in %d is small.", 5),
			wantCode:   CodeValidationFailed,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "The number of addresses in 5 is small.",
		},
		{
			name:       "validation caused by fetch failure",
			err:        domain.NewValidationError(domain.ErrCityNotFound, fetchErr, "city %d not found", 5),
			wantCode:   CodeUpstreamUnavailable,
			wantStatus: http.StatusBadGateway,
			wantMsg:    "city 5 not found",
		},
		{
			name:       "bare fetch failure",
			err:        fmt.Errorf("get location: %w", fetchErr),
			wantCode:   CodeUpstreamUnavailable,
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "not found",
			err:        fmt.Errorf("get location: %w", domain.ErrNotFound),
			wantCode:   "LOCATION_NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "app error passes through",
			err:        ErrDocumentNotFound,
			wantCode:   "DOCUMENT_NOT_FOUND",
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "unknown",
			err:        stderrors.New("disk full"),
			wantCode:   "INTERNAL_SERVER_ERROR",
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := FromDomain(tt.err)
			assert.Equal(t, tt.wantCode, appErr.Code)
			assert.Equal(t, tt.wantStatus, appErr.StatusCode)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, appErr.Message)
			}
		})
	}

	assert.Nil(t, FromDomain(nil))
}
