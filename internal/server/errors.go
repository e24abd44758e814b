package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	creditdomain "github.com/recvlabs/recv/internal/credit/domain"
	entitlementdomain "github.com/recvlabs/recv/internal/entitlement/domain"
	paymentdomain "github.com/recvlabs/recv/internal/payment/domain"
	resourcedomain "github.com/recvlabs/recv/internal/resource/domain"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Tier    string `json:"tier,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrInvalidRequest = errors.New("invalid_request")
	ErrNotFound       = errors.New("not_found")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var quotaErr *creditdomain.QuotaExceededError
	if errors.As(err, &quotaErr) {
		return http.StatusTooManyRequests, errorPayload{
			Type:    "quota_exceeded",
			Message: "daily credit limit reached",
			Tier:    string(quotaErr.Tier),
			Limit:   quotaErr.Limit,
		}
	}

	var storageErr *resourcedomain.StorageLimitExceededError
	if errors.As(err, &storageErr) {
		return http.StatusConflict, errorPayload{
			Type:    "storage_limit_exceeded",
			Message: "resource limit reached",
			Limit:   storageErr.Limit,
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrMalformedOrderID),
		errors.Is(err, creditdomain.ErrInvalidAction),
		errors.Is(err, resourcedomain.ErrInvalidType),
		errors.Is(err, entitlementdomain.ErrInvalidUser),
		errors.Is(err, ErrInvalidRequest):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	case errors.Is(err, paymentdomain.ErrVerificationFailed):
		// Terminal non-success: the sender must not retry this payload.
		return http.StatusUnprocessableEntity, errorPayload{
			Type:    "verification_failed",
			Message: "payment could not be verified",
		}
	case errors.Is(err, entitlementdomain.ErrProfileNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "profile_not_found",
			Message: "no entitlement record for user",
		}
	case errors.Is(err, ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

// classifyErrorForLog feeds the request logger so expected rejections are
// not logged as failures.
func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	switch {
	case status >= http.StatusInternalServerError:
		return payload.Type, "error"
	default:
		return payload.Type, "rejected"
	}
}

func invalidRequestError() error {
	return ErrInvalidRequest
}
