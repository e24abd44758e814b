package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	creditdomain "github.com/recvlabs/recv/internal/credit/domain"
	"github.com/recvlabs/recv/internal/identity"
)

type analyzeCVRequest struct {
	Content string `json:"content" binding:"required"`
}

type refineCVRequest struct {
	Content      string `json:"content" binding:"required"`
	Instructions string `json:"instructions"`
}

type coverLetterRequest struct {
	CVContent      string `json:"cv_content" binding:"required"`
	JobDescription string `json:"job_description" binding:"required"`
}

type aiResponse struct {
	Result string `json:"result"`
}

func (s *Server) AnalyzeCV(c *gin.Context) {
	var req analyzeCVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	prompt := "Review the following CV and list concrete, prioritized improvements:\n\n" + req.Content
	s.runMeteredAction(c, "cv.analyze", prompt)
}

func (s *Server) RefineCV(c *gin.Context) {
	var req refineCVRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	instructions := strings.TrimSpace(req.Instructions)
	if instructions == "" {
		instructions = "Improve clarity, impact and brevity."
	}
	prompt := fmt.Sprintf("Rewrite the following CV section. %s\n\n%s", instructions, req.Content)
	s.runMeteredAction(c, "cv.refine", prompt)
}

func (s *Server) GenerateCoverLetter(c *gin.Context) {
	var req coverLetterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	prompt := fmt.Sprintf(
		"Write a tailored cover letter for this job description:\n\n%s\n\nBased on this CV:\n\n%s",
		req.JobDescription, req.CVContent,
	)
	s.runMeteredAction(c, "cover_letter.generate", prompt)
}

// runMeteredAction wraps the completion call in the check-then-charge
// protocol: a failed upstream call is never charged.
func (s *Server) runMeteredAction(c *gin.Context, action, prompt string) {
	userID, ok := identity.UserIDFromContext(c.Request.Context())
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	var output string
	err := s.credits.Consume(c.Request.Context(), userID, creditdomain.ConsumeRequest{
		Action: action,
		Model:  s.aiClient.Model(),
	}, func(ctx context.Context) error {
		result, genErr := s.aiClient.Generate(ctx, prompt)
		if genErr != nil {
			return genErr
		}
		output = result
		return nil
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, aiResponse{Result: output})
}
