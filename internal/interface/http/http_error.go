package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/elchin/deskhelp/pkg/errors"
)

// HTTPError carries the status, wire code, and message for one failed request.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// fromDomainError maps well-known domain error codes to HTTP statuses.
// Unmapped errors become a 500 carrying fallbackCode, which names the failed
// operation on the wire.
func fromDomainError(err error, fallbackCode string) *HTTPError {
	switch apperrors.CodeOf(err) {
	case apperrors.CodeInvalidInput:
		return NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err)
	case apperrors.CodeNotFound:
		return NewHTTPError(http.StatusNotFound, "not_found", errMessage(err), err)
	case apperrors.CodeEmbeddingError:
		return NewHTTPError(http.StatusBadGateway, "embedding_failed", errMessage(err), err)
	case apperrors.CodeRateLimitReached:
		return NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", errMessage(err), err)
	default:
		return NewHTTPError(http.StatusInternalServerError, fallbackCode, errMessage(err), err)
	}
}

func asHTTPError(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr
	}
	return &HTTPError{
		Status:  http.StatusInternalServerError,
		Code:    "internal_error",
		Message: "something went wrong",
		Err:     err,
	}
}

func abortWithError(c *gin.Context, err *HTTPError) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}
