package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/recvlabs/recv/internal/identity"
	obslogger "github.com/recvlabs/recv/internal/observability/logger"
	"go.uber.org/zap"
)

// HeaderUserID carries the identity verified by the upstream gateway.
const HeaderUserID = "X-User-ID"

// IdentityRequired consumes the identity injected by the external identity
// provider. No verification happens here: requests reach this service only
// through the gateway that owns authentication.
func (s *Server) IdentityRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := strings.TrimSpace(c.GetHeader(HeaderUserID))
		if userID == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		ctx := identity.WithUserID(c.Request.Context(), userID)
		ctx = obslogger.WithUserID(ctx, userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// AIRateLimit throttles AI routes per user when redis is configured. It
// fails open on limiter errors: the credit quota is the real gate.
func (s *Server) AIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.aiLimiter.Enabled() {
			c.Next()
			return
		}

		userID, ok := identity.UserIDFromContext(c.Request.Context())
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		result, err := s.aiLimiter.Allow(c.Request.Context(), userID)
		if err != nil {
			s.log.Warn("rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !result.Allowed {
			c.Header("Retry-After", result.RetryAfter.String())
			c.AbortWithStatusJSON(http.StatusTooManyRequests, errorResponse{Error: errorPayload{
				Type:    "rate_limited",
				Message: "too many requests",
			}})
			return
		}

		c.Next()
	}
}
