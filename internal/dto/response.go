package dto

import (
	"time"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
)

// ── 通用 ──

// Caller 当前请求的调用方（由认证中间件解析 JWT 得到）
type Caller struct {
	UserID string
	Role   model.UserRole
}

// IsAdmin 是否为管理员
func (c Caller) IsAdmin() bool { return c.Role == model.UserRoleAdmin }

// ItemFailure 尽力而为批处理中被跳过的单项
type ItemFailure struct {
	ID     string `json:"id"`
	Stage  string `json:"stage"`
	Reason string `json:"reason"`
}

// ConflictWarning 被 override 的软冲突
type ConflictWarning struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// UserBrief 用户简要信息
type UserBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role string `json:"role"`
}

// TeamBrief 队伍简要信息
type TeamBrief struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// FormatTime 统一的时间输出格式
func FormatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
