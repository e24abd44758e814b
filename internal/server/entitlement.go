package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	creditdomain "github.com/recvlabs/recv/internal/credit/domain"
	entitlementdomain "github.com/recvlabs/recv/internal/entitlement/domain"
	"github.com/recvlabs/recv/internal/identity"
)

type profileResponse struct {
	UserID       string                 `json:"user_id"`
	Tier         entitlementdomain.Tier `json:"tier"`
	ProExpiresAt *time.Time             `json:"pro_expires_at,omitempty"`
	CreatedAt    time.Time              `json:"created_at"`
}

type entitlementResponse struct {
	Tier         entitlementdomain.Tier `json:"tier"`
	ProExpiresAt *time.Time             `json:"pro_expires_at,omitempty"`
	Credits      creditdomain.Summary   `json:"credits"`
	StorageLimit int                    `json:"storage_limit"`
}

func (s *Server) ProvisionProfile(c *gin.Context) {
	userID, ok := identity.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	profile, err := s.profiles.Provision(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, profileResponse{
		UserID:       profile.UserID,
		Tier:         profile.Tier,
		ProExpiresAt: profile.ProExpiresAt,
		CreatedAt:    profile.CreatedAt,
	})
}

func (s *Server) GetEntitlement(c *gin.Context) {
	userID, ok := identity.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	// Get applies the expiry sweep, so the tier below is already current.
	profile, err := s.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	summary, err := s.credits.Summary(c.Request.Context(), userID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, entitlementResponse{
		Tier:         profile.Tier,
		ProExpiresAt: profile.ProExpiresAt,
		Credits:      summary,
		StorageLimit: profile.Tier.ResourceLimit(),
	})
}
