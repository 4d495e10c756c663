package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	aggregatedomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/aggregate/domain"
)

// @Summary      Get Aggregate
// @Description  Current points, level, CO2 total, and streak for a user
// @Tags         aggregates
// @Produce      json
// @Param        user_id path string true "User ID"
// @Success      200  {object}  aggregatedomain.AggregateResponse
// @Router       /v1/users/{user_id}/aggregate [get]
func (s *Server) GetAggregate(c *gin.Context) {
	resp, err := s.aggregateSvc.Get(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Get Summary
// @Description  Windowed CO2 report with series buckets and equivalencies
// @Tags         aggregates
// @Produce      json
// @Param        user_id     path  string true  "User ID"
// @Param        from        query string false "From (RFC 3339)"
// @Param        to          query string false "To (RFC 3339)"
// @Param        granularity query string false "day, week, or month"
// @Success      200  {object}  aggregatedomain.SummaryResponse
// @Router       /v1/users/{user_id}/summary [get]
func (s *Server) GetSummary(c *gin.Context) {
	var query struct {
		From        string `form:"from"`
		To          string `form:"to"`
		Granularity string `form:"granularity"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	from, err := parseOptionalTime(query.From)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_from", "invalid from"))
		return
	}
	to, err := parseOptionalTime(query.To)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_to", "invalid to"))
		return
	}

	resp, err := s.aggregateSvc.Summary(c.Request.Context(), aggregatedomain.SummaryRequest{
		UserID:      c.Param("user_id"),
		From:        from,
		To:          to,
		Granularity: query.Granularity,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
