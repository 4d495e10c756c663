package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/prediction"
)

type estimateRequest struct {
	Category     string         `json:"category"`
	ActivityType string         `json:"activity_type"`
	Value        float64        `json:"value"`
	Region       string         `json:"region"`
	Metadata     map[string]any `json:"metadata"`
}

// @Summary      Estimate CO2
// @Description  Ask the external estimator for a CO2 quantity without logging it
// @Tags         estimates
// @Accept       json
// @Produce      json
// @Param        request body estimateRequest true "Estimate Request"
// @Success      200  {object}  prediction.EstimateResponse
// @Router       /v1/estimate [post]
func (s *Server) Estimate(c *gin.Context) {
	var req estimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.Category) == "" {
		AbortWithError(c, newValidationError("category", "required", "category is required"))
		return
	}

	resp, err := s.estimator.Estimate(c.Request.Context(), prediction.EstimateRequest{
		Category:     strings.TrimSpace(req.Category),
		ActivityType: strings.TrimSpace(req.ActivityType),
		Value:        req.Value,
		Region:       strings.TrimSpace(req.Region),
		Metadata:     req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
