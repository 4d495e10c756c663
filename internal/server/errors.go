package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	achievementdomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/achievement/domain"
	activitydomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/activity/domain"
	aggregatedomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/aggregate/domain"
	factordomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/factor/domain"
	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/prediction"
)

// apiError is the wire shape of every error response.
type apiError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

func (e *apiError) Error() string { return e.Code }

var (
	ErrNotFound = &apiError{
		Status:  http.StatusNotFound,
		Code:    "not_found",
		Message: "resource not found",
	}
	ErrTooManyRequests = &apiError{
		Status:  http.StatusTooManyRequests,
		Code:    "rate_limited",
		Message: "too many requests",
	}
	ErrServiceUnavailable = &apiError{
		Status:  http.StatusServiceUnavailable,
		Code:    "service_unavailable",
		Message: "service temporarily unavailable",
	}
)

func invalidRequestError() *apiError {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    "invalid_request",
		Message: "request body could not be parsed",
	}
}

func newValidationError(field, code, message string) *apiError {
	return &apiError{
		Status:  http.StatusBadRequest,
		Code:    code,
		Field:   field,
		Message: message,
	}
}

// domainStatus maps service sentinel errors onto HTTP responses. Unmapped
// errors fall through to 500 with the code hidden from the client.
func domainStatus(err error) *apiError {
	switch {
	case errors.Is(err, activitydomain.ErrEntryNotFound):
		return &apiError{Status: http.StatusNotFound, Code: unwrapCode(err), Message: "resource not found"}
	case errors.Is(err, activitydomain.ErrInvalidUser),
		errors.Is(err, activitydomain.ErrInvalidCategory),
		errors.Is(err, activitydomain.ErrInvalidSource),
		errors.Is(err, activitydomain.ErrInvalidValue),
		errors.Is(err, activitydomain.ErrInvalidTimestamp),
		errors.Is(err, activitydomain.ErrInvalidEntry),
		errors.Is(err, activitydomain.ErrEmptyPatch),
		errors.Is(err, aggregatedomain.ErrInvalidUser),
		errors.Is(err, aggregatedomain.ErrInvalidGranularity),
		errors.Is(err, aggregatedomain.ErrInvalidWindow),
		errors.Is(err, achievementdomain.ErrInvalidUser),
		errors.Is(err, factordomain.ErrInvalidValue):
		return &apiError{Status: http.StatusBadRequest, Code: unwrapCode(err), Message: "invalid request"}
	case errors.Is(err, prediction.ErrUnavailable):
		return ErrServiceUnavailable
	case errors.Is(err, prediction.ErrBadEstimate):
		return &apiError{Status: http.StatusBadGateway, Code: "bad_estimate", Message: "estimator returned an unusable answer"}
	default:
		return nil
	}
}

// unwrapCode walks to the innermost sentinel, whose message doubles as the
// machine-readable error code.
func unwrapCode(err error) string {
	for {
		unwrapped := errors.Unwrap(err)
		if unwrapped == nil {
			return err.Error()
		}
		err = unwrapped
	}
}

// AbortWithError terminates the request with the error's HTTP mapping.
func AbortWithError(c *gin.Context, err error) {
	var api *apiError
	if !errors.As(err, &api) {
		api = domainStatus(err)
	}
	if api == nil {
		api = &apiError{
			Status:  http.StatusInternalServerError,
			Code:    "internal_error",
			Message: "internal error",
		}
	}
	c.AbortWithStatusJSON(api.Status, gin.H{"error": api})
}
