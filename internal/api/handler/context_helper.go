package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/dto"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/response"
)

// MustGetUserID 从 Gin 上下文中安全提取 user_id。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetUserID(c *gin.Context) (string, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	s, ok := v.(string)
	if !ok || s == "" {
		response.Unauthorized(c, 10002, "未认证")
		return "", false
	}
	return s, true
}

// MustGetCaller 提取调用方身份（user_id + role）。
// 角色不在已知集合内时按未认证处理。
func MustGetCaller(c *gin.Context) (dto.Caller, bool) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return dto.Caller{}, false
	}
	v, _ := c.Get("role")
	s, _ := v.(string)
	role := model.UserRole(s)
	if !role.IsValid() {
		response.Unauthorized(c, 10002, "未认证")
		return dto.Caller{}, false
	}
	return dto.Caller{UserID: userID, Role: role}, true
}
