package handler

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/service"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportLeaderboard 导出轮次排行榜
// GET /api/v1/rounds/:id/leaderboard/export
func (h *ExportHandler) ExportLeaderboard(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportLeaderboard(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	sendAttachment(c, filename, contentTypeXLSX, buf)
}

// ExportSchedule 导出赛事轮次日历
// GET /api/v1/events/:id/schedule.ics
func (h *ExportHandler) ExportSchedule(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportEventSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	sendAttachment(c, filename, contentTypeICS, buf)
}

// sendAttachment 设置下载响应头并写出文件
func sendAttachment(c *gin.Context, filename, contentType string, buf *bytes.Buffer) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
