package http

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/elchin/deskhelp/pkg/errors"
)

func TestFromDomainErrorMapsCodes(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			"invalid input",
			apperrors.Wrap(apperrors.CodeInvalidInput, "question cannot be empty", nil),
			http.StatusBadRequest,
			"invalid_request",
		},
		{
			"not found",
			apperrors.Wrap(apperrors.CodeNotFound, "document not found", nil),
			http.StatusNotFound,
			"not_found",
		},
		{
			"embedding failure",
			apperrors.Wrap(apperrors.CodeEmbeddingError, "failed to embed chunks", nil),
			http.StatusBadGateway,
			"embedding_failed",
		},
		{
			"rate limited",
			apperrors.Wrap(apperrors.CodeRateLimitReached, "too many requests", nil),
			http.StatusTooManyRequests,
			"rate_limit_exceeded",
		},
		{
			"unmapped domain code keeps fallback",
			apperrors.Wrap(apperrors.CodeStorageError, "failed to persist document", nil),
			http.StatusInternalServerError,
			"upload_failed",
		},
		{
			"foreign error keeps fallback",
			errors.New("boom"),
			http.StatusInternalServerError,
			"upload_failed",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			httpErr := fromDomainError(tc.err, "upload_failed")
			require.Equal(t, tc.wantStatus, httpErr.Status)
			require.Equal(t, tc.wantCode, httpErr.Code)
			require.Equal(t, tc.err.Error(), httpErr.Message)
		})
	}
}
