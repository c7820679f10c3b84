package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/config"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/api/handler"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/api/middleware"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/jwt"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/metrics"
)

// Deps 路由依赖
// Blacklist / RateStore 为 nil 时对应能力降级（Redis 不可用）
type Deps struct {
	Config    *config.Config
	Handler   *handler.Handler
	JWT       *jwt.Manager
	Blacklist middleware.TokenBlacklist
	RateStore middleware.RateLimitStore
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
}

// importRoute ICS 导入接口，请求体上限单独配置
const importRoute = "/api/v1/events/:id/rounds/import"

// Setup 初始化并返回 Gin 路由引擎
func Setup(d Deps) *gin.Engine {
	h := d.Handler

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.Metrics(d.Metrics))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(d.Config.Server.CORS.AllowOrigins))
	if d.Config.Server.MaxBodyBytes > 0 {
		r.Use(middleware.BodyLimit(d.Config.Server.MaxBodyBytes, map[string]int64{
			importRoute: d.Config.Server.MaxImportBytes,
		}))
	}

	// ── 健康检查 / 指标 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))

	// ── API v1（全部需要认证）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(d.JWT, d.Blacklist))
	v1.Use(middleware.RateLimit(d.RateStore, d.Config.RateLimit.Requests, d.Config.RateLimit.Window))

	managers := middleware.RoleAuth("admin", "organizer")

	// 赛事维度
	events := v1.Group("/events/:id")
	{
		events.GET("/rounds", h.Round.ListRounds)
		events.POST("/rounds", managers, h.Round.CreateRound)
		events.POST("/rounds/import", managers, h.Round.ImportRounds)
		events.GET("/schedule.ics", h.Export.ExportSchedule)

		events.GET("/judges", h.Judging.ListJudges)
		events.POST("/judges", managers, h.Judging.AssignJudge)
		events.GET("/my-assignments", h.Judging.ListMyAssignments)
	}

	// 评委指派（接受/拒绝由评委本人操作，Service 层鉴权）
	judgeAssignments := v1.Group("/judge-assignments")
	{
		judgeAssignments.PUT("/:id/respond", middleware.RoleAuth("judge"), h.Judging.RespondJudgeAssignment)
		judgeAssignments.DELETE("/:id", managers, h.Judging.RemoveJudgeAssignment)
	}

	// 轮次
	rounds := v1.Group("/rounds/:id")
	{
		rounds.GET("", h.Round.GetRound)
		rounds.PUT("", managers, h.Round.UpdateRound)
		rounds.DELETE("", managers, h.Round.DeleteRound)

		// 选手可自行报名（Service 层校验本人或队长）
		rounds.GET("/assignments", h.Judging.ListAssignments)
		rounds.POST("/assignments", h.Judging.CreateAssignment)
		rounds.GET("/availability", managers, h.Judging.CheckAvailability)

		rounds.POST("/scores", middleware.RoleAuth("judge"), h.Judging.SubmitScores)
		rounds.POST("/winners", managers, h.Judging.DeclareWinners)

		rounds.GET("/leaderboard", h.Leaderboard.GetLeaderboard)
		rounds.GET("/leaderboard/export", managers, h.Export.ExportLeaderboard)
	}

	// 轮次分配（选手可撤回本人报名，Service 层鉴权）
	assignments := v1.Group("/assignments")
	{
		assignments.PUT("/:id", managers, h.Judging.UpdateAssignment)
		assignments.DELETE("/:id", h.Judging.DeleteAssignment)
	}

	return r
}
