package handler

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/dto"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/service"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/response"
)

// RoundHandler 轮次模块 HTTP 处理器
type RoundHandler struct {
	roundSvc service.RoundService
}

// NewRoundHandler 创建 RoundHandler
func NewRoundHandler(roundSvc service.RoundService) *RoundHandler {
	return &RoundHandler{roundSvc: roundSvc}
}

// ListRounds 获取赛事下的轮次（按开始时间升序）
// GET /api/v1/events/:id/rounds
func (h *RoundHandler) ListRounds(c *gin.Context) {
	rounds, err := h.roundSvc.ListByEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{"list": rounds})
}

// GetRound 获取轮次详情
// GET /api/v1/rounds/:id
func (h *RoundHandler) GetRound(c *gin.Context) {
	round, err := h.roundSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, round)
}

// CreateRound 创建轮次
// POST /api/v1/events/:id/rounds
func (h *RoundHandler) CreateRound(c *gin.Context) {
	var req dto.CreateRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	round, err := h.roundSvc.Create(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, round)
}

// UpdateRound 更新轮次
// PUT /api/v1/rounds/:id
func (h *RoundHandler) UpdateRound(c *gin.Context) {
	var req dto.UpdateRoundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	round, err := h.roundSvc.Update(c.Request.Context(), c.Param("id"), &req, caller)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, round)
}

// DeleteRound 删除轮次（连同分配与评委指派）
// DELETE /api/v1/rounds/:id
func (h *RoundHandler) DeleteRound(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.roundSvc.Delete(c.Request.Context(), c.Param("id"), caller); err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, nil)
}

// ImportRounds 从 .ics 日历批量导入轮次
// POST /api/v1/events/:id/rounds/import
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"
//   - 直接提交: Content-Type: text/calendar，请求体即日历内容
func (h *RoundHandler) ImportRounds(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var body io.Reader
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			response.BadRequest(c, 10001, "请上传 ICS 文件")
			return
		}
		defer file.Close()
		body = file
	} else {
		if c.Request.Body == nil || c.Request.ContentLength == 0 {
			response.BadRequest(c, 10001, "请上传 ICS 文件")
			return
		}
		body = c.Request.Body
	}

	resp, err := h.roundSvc.ImportCalendar(c.Request.Context(), c.Param("id"), body, caller)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, resp)
}
