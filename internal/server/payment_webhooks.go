package server

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HandlePaymentNotification is the webhook endpoint the payment provider
// retries until it sees a 2xx, so every terminal outcome (including a
// malformed or unverifiable payload) must acknowledge rather than 500.
func (s *Server) HandlePaymentNotification(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	if err := s.payments.Reconcile(c.Request.Context(), payload); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
