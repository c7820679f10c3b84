package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/dto"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/service"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/response"
)

// JudgingHandler 评委、轮次分配、评分与晋级 HTTP 处理器
type JudgingHandler struct {
	judgingSvc service.JudgingService
}

// NewJudgingHandler 创建 JudgingHandler
func NewJudgingHandler(judgingSvc service.JudgingService) *JudgingHandler {
	return &JudgingHandler{judgingSvc: judgingSvc}
}

// ════════════════════════════════════════════════════════════
// 赛事评委
// ════════════════════════════════════════════════════════════

// AssignJudge 为赛事指派评委
// POST /api/v1/events/:id/judges
func (h *JudgingHandler) AssignJudge(c *gin.Context) {
	var req dto.AssignJudgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	ja, err := h.judgingSvc.AssignJudge(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, ja)
}

// ListJudges 获取赛事评委
// GET /api/v1/events/:id/judges
func (h *JudgingHandler) ListJudges(c *gin.Context) {
	list, err := h.judgingSvc.ListEventJudges(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// RespondJudgeAssignment 评委接受或拒绝邀请
// PUT /api/v1/judge-assignments/:id/respond
func (h *JudgingHandler) RespondJudgeAssignment(c *gin.Context) {
	var req dto.RespondJudgeAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	ja, err := h.judgingSvc.RespondJudgeAssignment(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, ja)
}

// RemoveJudgeAssignment 撤销评委指派
// DELETE /api/v1/judge-assignments/:id
func (h *JudgingHandler) RemoveJudgeAssignment(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.judgingSvc.RemoveJudgeAssignment(c.Request.Context(), c.Param("id"), caller); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}

// ════════════════════════════════════════════════════════════
// 轮次分配
// ════════════════════════════════════════════════════════════

// CreateAssignment 将评委或选手分配到轮次
// POST /api/v1/rounds/:id/assignments
func (h *JudgingHandler) CreateAssignment(c *gin.Context) {
	var req dto.CreateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	resp, err := h.judgingSvc.CreateRoundAssignment(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, resp)
}

// ListAssignments 获取轮次分配，可按 role 过滤
// GET /api/v1/rounds/:id/assignments?role=judge
func (h *JudgingHandler) ListAssignments(c *gin.Context) {
	list, err := h.judgingSvc.ListRoundAssignments(c.Request.Context(), c.Param("id"), c.Query("role"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// ListMyAssignments 当前用户在赛事内的全部分配
// GET /api/v1/events/:id/my-assignments
func (h *JudgingHandler) ListMyAssignments(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.judgingSvc.ListUserEventAssignments(c.Request.Context(), c.Param("id"), caller)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// CheckAvailability 查询用户在轮次时间段内的冲突
// GET /api/v1/rounds/:id/availability?user_id=xxx
func (h *JudgingHandler) CheckAvailability(c *gin.Context) {
	var q dto.AvailabilityQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	resp, err := h.judgingSvc.CheckAvailability(c.Request.Context(), c.Param("id"), q.UserID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, resp)
}

// UpdateAssignment 更新分配状态或反馈
// PUT /api/v1/assignments/:id
func (h *JudgingHandler) UpdateAssignment(c *gin.Context) {
	var req dto.UpdateAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	resp, err := h.judgingSvc.UpdateRoundAssignment(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, resp)
}

// DeleteAssignment 删除分配（选手可撤回自己的报名）
// DELETE /api/v1/assignments/:id
func (h *JudgingHandler) DeleteAssignment(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.judgingSvc.DeleteRoundAssignment(c.Request.Context(), c.Param("id"), caller); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}

// ════════════════════════════════════════════════════════════
// 评分与晋级
// ════════════════════════════════════════════════════════════

// SubmitScores 评委提交本轮评分（全部成功或全部失败）
// POST /api/v1/rounds/:id/scores
func (h *JudgingHandler) SubmitScores(c *gin.Context) {
	var req dto.SubmitScoresRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	resp, err := h.judgingSvc.SubmitScores(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, resp)
}

// DeclareWinners 宣布晋级名单，可选写入下一轮
// POST /api/v1/rounds/:id/winners
func (h *JudgingHandler) DeclareWinners(c *gin.Context) {
	var req dto.DeclareWinnersRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	resp, err := h.judgingSvc.DeclareWinners(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, resp)
}
