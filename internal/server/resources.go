package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/recvlabs/recv/internal/identity"
	resourcedomain "github.com/recvlabs/recv/internal/resource/domain"
)

type createResourceRequest struct {
	Type  string          `json:"type" binding:"required"`
	Title string          `json:"title"`
	Body  json.RawMessage `json:"body"`
}

func (s *Server) CreateResource(c *gin.Context) {
	userID, ok := identity.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var req createResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resource, err := s.resources.Create(c.Request.Context(), userID, resourcedomain.CreateRequest{
		Type:  resourcedomain.Type(req.Type),
		Title: req.Title,
		Body:  req.Body,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resource)
}

func (s *Server) ListResources(c *gin.Context) {
	userID, ok := identity.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	resources, err := s.resources.List(c.Request.Context(), userID, resourcedomain.ListRequest{
		Type: resourcedomain.Type(c.Query("type")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resources})
}
