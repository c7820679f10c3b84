package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/service"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/response"
)

// LeaderboardHandler 排行榜 HTTP 处理器
type LeaderboardHandler struct {
	leaderboardSvc service.LeaderboardService
}

// NewLeaderboardHandler 创建 LeaderboardHandler
func NewLeaderboardHandler(leaderboardSvc service.LeaderboardService) *LeaderboardHandler {
	return &LeaderboardHandler{leaderboardSvc: leaderboardSvc}
}

// GetLeaderboard 获取轮次排行榜
// GET /api/v1/rounds/:id/leaderboard
func (h *LeaderboardHandler) GetLeaderboard(c *gin.Context) {
	board, err := h.leaderboardSvc.GetLeaderboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, board)
}
