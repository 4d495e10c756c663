package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// @Summary      Leaderboard
// @Description  Top users by eco-points, served from the refresh cache
// @Tags         aggregates
// @Produce      json
// @Success      200  {object}  []aggregatedomain.LeaderboardRow
// @Router       /v1/leaderboard [get]
func (s *Server) Leaderboard(c *gin.Context) {
	board, err := s.leaderboard.Top(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{
		"leaderboard":  board,
		"refreshed_at": s.leaderboard.RefreshedAt(),
	}})
}
