package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"seatly/internal/shared/apperrors"
)

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errs interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errs,
	})
}

// RespondError maps a core error to its HTTP status and writes the
// standard envelope. Structured errors contribute their detail payload
// so the caller can act on it.
func RespondError(c *gin.Context, err error) {
	if su, ok := apperrors.IsSeatUnavailable(err); ok {
		RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, gin.H{
			"conflicting_seats": su.Conflicting,
			"available_seats":   su.Available,
		})
		return
	}
	if cc, ok := apperrors.IsCapacityConflict(err); ok {
		RespondJSON(c, "error", http.StatusConflict, err.Error(), nil, gin.H{
			"requested_total": cc.Requested,
			"booked_seats":    cc.Booked,
		})
		return
	}
	if ve, ok := apperrors.IsValidation(err); ok {
		RespondJSON(c, "error", http.StatusBadRequest, err.Error(), nil, gin.H{
			"field": ve.Field,
		})
		return
	}

	RespondJSON(c, "error", statusFor(err), err.Error(), nil, nil)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound),
		errors.Is(err, apperrors.ErrBookingNotFound),
		errors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrEmptySelection),
		errors.Is(err, apperrors.ErrEventEnded):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrServiceUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
