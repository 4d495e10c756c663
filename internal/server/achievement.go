package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Evaluate Achievements
// @Description  Check every badge predicate and unlock those now met
// @Tags         achievements
// @Produce      json
// @Param        user_id path string true "User ID"
// @Success      200  {object}  []achievementdomain.UnlockedBadge
// @Router       /v1/users/{user_id}/achievements/evaluate [post]
func (s *Server) EvaluateAchievements(c *gin.Context) {
	unlocked, err := s.achievementSvc.Evaluate(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"unlocked": unlocked,
		"count":    len(unlocked),
	}})
}

// @Summary      List User Badges
// @Description  The user's unlock history, newest first
// @Tags         achievements
// @Produce      json
// @Param        user_id path string true "User ID"
// @Success      200  {object}  []achievementdomain.UnlockedBadge
// @Router       /v1/users/{user_id}/achievements [get]
func (s *Server) ListUserBadges(c *gin.Context) {
	badges, err := s.achievementSvc.ListUnlocked(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": badges})
}

// @Summary      List Badges
// @Description  The active badge catalog
// @Tags         achievements
// @Produce      json
// @Success      200  {object}  []achievementdomain.Badge
// @Router       /v1/badges [get]
func (s *Server) ListBadges(c *gin.Context) {
	badges, err := s.achievementSvc.ListBadges(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": badges})
}
