package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	activitydomain "github.com/manassrv29/Carbon-Footprint-Tracker-Using-AI-ML-sub001/internal/activity/domain"
)

type submitActivityRequest struct {
	UserID       string         `json:"user_id"`
	Category     string         `json:"category"`
	ActivityType string         `json:"activity_type"`
	Value        float64        `json:"value"`
	Source       string         `json:"source"`
	Region       string         `json:"region"`
	Timestamp    *time.Time     `json:"timestamp"`
	Co2Kg        *float64       `json:"co2_kg"`
	Metadata     map[string]any `json:"metadata"`
}

// @Summary      Submit Activity
// @Description  Log a carbon activity and update the user's aggregates
// @Tags         activities
// @Accept       json
// @Produce      json
// @Param        request body submitActivityRequest true "Submit Activity Request"
// @Success      200  {object}  activitydomain.SubmitResponse
// @Router       /v1/activities [post]
func (s *Server) SubmitActivity(c *gin.Context) {
	var req submitActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		AbortWithError(c, newValidationError("user_id", "required", "user_id is required"))
		return
	}

	resp, err := s.activitySvc.Submit(c.Request.Context(), activitydomain.SubmitRequest{
		UserID:           strings.TrimSpace(req.UserID),
		Category:         strings.TrimSpace(req.Category),
		ActivityType:     strings.TrimSpace(req.ActivityType),
		Value:            req.Value,
		Source:           strings.TrimSpace(req.Source),
		Region:           strings.TrimSpace(req.Region),
		Timestamp:        req.Timestamp,
		PrecomputedCo2Kg: req.Co2Kg,
		Metadata:         req.Metadata,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

type editActivityRequest struct {
	UserID       string     `json:"user_id"`
	Category     *string    `json:"category"`
	ActivityType *string    `json:"activity_type"`
	Value        *float64   `json:"value"`
	Timestamp    *time.Time `json:"timestamp"`
	Region       string     `json:"region"`
}

// @Summary      Edit Activity
// @Description  Patch an entry and refold the owner's aggregates
// @Tags         activities
// @Accept       json
// @Produce      json
// @Param        id      path string              true "Entry ID"
// @Param        request body editActivityRequest true "Edit Activity Request"
// @Success      200  {object}  aggregatedomain.AggregateResponse
// @Router       /v1/activities/{id} [patch]
func (s *Server) EditActivity(c *gin.Context) {
	var req editActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		AbortWithError(c, newValidationError("user_id", "required", "user_id is required"))
		return
	}

	resp, err := s.activitySvc.Edit(c.Request.Context(), strings.TrimSpace(req.UserID), c.Param("id"), activitydomain.Patch{
		Category:     req.Category,
		ActivityType: req.ActivityType,
		Value:        req.Value,
		Timestamp:    req.Timestamp,
		Region:       strings.TrimSpace(req.Region),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      Delete Activity
// @Description  Remove an entry and refold the owner's aggregates
// @Tags         activities
// @Produce      json
// @Param        id       path  string true "Entry ID"
// @Param        user_id  query string true "User ID"
// @Success      200  {object}  aggregatedomain.AggregateResponse
// @Router       /v1/activities/{id} [delete]
func (s *Server) DeleteActivity(c *gin.Context) {
	userID := strings.TrimSpace(c.Query("user_id"))
	if userID == "" {
		AbortWithError(c, newValidationError("user_id", "required", "user_id is required"))
		return
	}

	resp, err := s.activitySvc.Delete(c.Request.Context(), userID, c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

// @Summary      List Activities
// @Description  List a user's entries, newest first
// @Tags         activities
// @Produce      json
// @Param        user_id query string true  "User ID"
// @Param        from    query string false "From (RFC 3339)"
// @Param        to      query string false "To (RFC 3339)"
// @Param        limit   query int    false "Limit"
// @Success      200  {object}  []activitydomain.ActivityEntry
// @Router       /v1/activities [get]
func (s *Server) ListActivities(c *gin.Context) {
	var query struct {
		UserID string `form:"user_id"`
		From   string `form:"from"`
		To     string `form:"to"`
		Limit  int    `form:"limit"`
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

	entries, err := s.activitySvc.List(c.Request.Context(), activitydomain.ListRequest{
		UserID: strings.TrimSpace(query.UserID),
		From:   from,
		To:     to,
		Limit:  query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func parseOptionalTime(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	parsed = parsed.UTC()
	return &parsed, nil
}
