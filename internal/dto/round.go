package dto

import "time"

// ── 轮次模块 DTO ──

// CreateRoundRequest 创建轮次请求
type CreateRoundRequest struct {
	Name            string    `json:"name"             binding:"required,min=1,max=100"`
	Type            string    `json:"type"             binding:"required"`
	Description     string    `json:"description"      binding:"max=2000"`
	StartTime       time.Time `json:"start_time"       binding:"required"`
	EndTime         time.Time `json:"end_time"         binding:"required"`
	Location        string    `json:"location"         binding:"max=200"`
	JudgesRequired  *int      `json:"judges_required"  binding:"omitempty,min=0"`
	MaxParticipants *int      `json:"max_participants" binding:"omitempty,min=0"`
}

// UpdateRoundRequest 更新轮次请求（字段均可选）
// Version 非空时要求与当前版本一致
type UpdateRoundRequest struct {
	Name            *string    `json:"name"             binding:"omitempty,min=1,max=100"`
	Type            *string    `json:"type"`
	Description     *string    `json:"description"      binding:"omitempty,max=2000"`
	StartTime       *time.Time `json:"start_time"`
	EndTime         *time.Time `json:"end_time"`
	Location        *string    `json:"location"         binding:"omitempty,max=200"`
	JudgesRequired  *int       `json:"judges_required"  binding:"omitempty,min=0"`
	MaxParticipants *int       `json:"max_participants" binding:"omitempty,min=0"`
	Status          *string    `json:"status"`
	Version         *int       `json:"version"          binding:"omitempty,min=1"`
}

// ── 响应 ──

// RoundResponse 轮次响应
type RoundResponse struct {
	ID              string `json:"round_id"`
	EventID         string `json:"event_id"`
	Name            string `json:"name"`
	Type            string `json:"type"`
	Description     string `json:"description"`
	StartTime       string `json:"start_time"`
	EndTime         string `json:"end_time"`
	Location        string `json:"location"`
	JudgesRequired  *int   `json:"judges_required"`
	MaxParticipants *int   `json:"max_participants"`
	Status          string `json:"status"`
	Version         int    `json:"version"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

// RoundBrief 冲突详情中的轮次摘要
type RoundBrief struct {
	ID        string `json:"round_id"`
	Name      string `json:"name"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
	Location  string `json:"location,omitempty"`
}

// ImportRoundsResponse 日历导入结果
type ImportRoundsResponse struct {
	Created  []RoundResponse `json:"created"`
	Failures []ItemFailure   `json:"failures,omitempty"`
}
