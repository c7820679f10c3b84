package handler

import "github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Round       *RoundHandler
	Judging     *JudgingHandler
	Leaderboard *LeaderboardHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Round:       NewRoundHandler(svc.Round),
		Judging:     NewJudgingHandler(svc.Judging),
		Leaderboard: NewLeaderboardHandler(svc.Leaderboard),
		Export:      NewExportHandler(svc.Export),
	}
}
