package dto

// ── 评委与轮次分配 DTO ──

// AssignJudgeRequest 为赛事（或某一轮次）指派评委
type AssignJudgeRequest struct {
	JudgeID string  `json:"judge_id" binding:"required,uuid"`
	RoundID *string `json:"round_id" binding:"omitempty,uuid"`
}

// RespondJudgeAssignmentRequest 评委接受 / 拒绝邀请
type RespondJudgeAssignmentRequest struct {
	Action string `json:"action" binding:"required,oneof=accept decline"`
}

// CreateAssignmentRequest 创建轮次分配
// user_id 与 team_id 二选一；team_id 仅用于选手
type CreateAssignmentRequest struct {
	UserID   *string `json:"user_id"  binding:"omitempty,uuid"`
	TeamID   *string `json:"team_id"  binding:"omitempty,uuid"`
	Role     string  `json:"role"     binding:"required"`
	Status   *string `json:"status"`
	Override bool    `json:"override"`
}

// UpdateAssignmentRequest 更新轮次分配状态或反馈
type UpdateAssignmentRequest struct {
	Status   *string `json:"status"`
	Feedback *string `json:"feedback" binding:"omitempty,max=2000"`
}

// AvailabilityQuery 时间冲突查询参数
type AvailabilityQuery struct {
	UserID string `form:"user_id" binding:"required,uuid"`
}

// ── 响应 ──

// JudgeAssignmentResponse 赛事评委响应
type JudgeAssignmentResponse struct {
	ID        string     `json:"judge_assignment_id"`
	EventID   string     `json:"event_id"`
	RoundID   *string    `json:"round_id"`
	JudgeID   string     `json:"judge_id"`
	Judge     *UserBrief `json:"judge,omitempty"`
	Status    string     `json:"status"`
	CreatedAt string     `json:"created_at"`
	UpdatedAt string     `json:"updated_at"`
}

// AssignmentResponse 轮次分配响应
type AssignmentResponse struct {
	ID                  string     `json:"assignment_id"`
	RoundID             string     `json:"round_id"`
	UserID              *string    `json:"user_id"`
	TeamID              *string    `json:"team_id"`
	User                *UserBrief `json:"user,omitempty"`
	Team                *TeamBrief `json:"team,omitempty"`
	Role                string     `json:"role"`
	Status              string     `json:"status"`
	Score               *float64   `json:"score"`
	TechnicalScore      *float64   `json:"technical_score"`
	PresentationScore   *float64   `json:"presentation_score"`
	CreativityScore     *float64   `json:"creativity_score"`
	ImplementationScore *float64   `json:"implementation_score"`
	JudgeComments       *string    `json:"judge_comments"`
	Feedback            *string    `json:"feedback"`
	CreatedAt           string     `json:"created_at"`
	UpdatedAt           string     `json:"updated_at"`
}

// CreateAssignmentResponse 创建结果；override 掉的软冲突放在 warnings
type CreateAssignmentResponse struct {
	Assignment AssignmentResponse `json:"assignment"`
	Warnings   []ConflictWarning  `json:"warnings,omitempty"`
}

// ScheduleConflict 用户在其他轮次中的时间冲突
type ScheduleConflict struct {
	AssignmentID string `json:"assignment_id"`
	RoundID      string `json:"round_id"`
	RoundName    string `json:"round_name"`
	EventID      string `json:"event_id"`
	Role         string `json:"role"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

// AvailabilityResponse 可用性检查结果（仅供参考，不阻止操作）
type AvailabilityResponse struct {
	UserID    string             `json:"user_id"`
	RoundID   string             `json:"round_id"`
	Available bool               `json:"available"`
	Conflicts []ScheduleConflict `json:"conflicts"`
}
