package dto

// ── 评分与晋级 DTO ──

// ScoreEntry 单条评分：participant_id 与 team_id 必须且只能填一个
// 至少提供一个分项分数，总分为已提供分项的平均值
type ScoreEntry struct {
	ParticipantID       *string  `json:"participant_id"       binding:"omitempty,uuid"`
	TeamID              *string  `json:"team_id"              binding:"omitempty,uuid"`
	TechnicalScore      *float64 `json:"technical_score"      binding:"omitempty,min=0,max=100"`
	PresentationScore   *float64 `json:"presentation_score"   binding:"omitempty,min=0,max=100"`
	CreativityScore     *float64 `json:"creativity_score"     binding:"omitempty,min=0,max=100"`
	ImplementationScore *float64 `json:"implementation_score" binding:"omitempty,min=0,max=100"`
	JudgeComments       *string  `json:"judge_comments"       binding:"omitempty,max=2000"`
}

// SubmitScoresRequest 评委提交评分
type SubmitScoresRequest struct {
	Scores []ScoreEntry `json:"scores" binding:"required,min=1,dive"`
}

// DeclareWinnersRequest 宣布晋级名单
// 字段名沿用前端既有的 camelCase
type DeclareWinnersRequest struct {
	WinnerIDs   []string `json:"winnerIds"   binding:"required,min=1,dive,uuid"`
	NextRoundID *string  `json:"nextRoundId" binding:"omitempty,uuid"`
}

// ── 响应 ──

// ScoredEntry 已写入的评分
type ScoredEntry struct {
	AssignmentID  string  `json:"assignment_id"`
	ParticipantID *string `json:"participant_id,omitempty"`
	TeamID        *string `json:"team_id,omitempty"`
	Score         float64 `json:"score"`
}

// SubmitScoresResponse 评分提交结果
type SubmitScoresResponse struct {
	RoundID     string        `json:"round_id"`
	JudgeID     string        `json:"judge_id"`
	Scored      []ScoredEntry `json:"scored"`
	JudgeStatus string        `json:"judge_status"`
}

// DeclareWinnersResponse 晋级结果
// Failures 列出被跳过的条目（尽力而为，不影响其余条目）
type DeclareWinnersResponse struct {
	RoundID     string        `json:"round_id"`
	Winners     []string      `json:"winners"`
	Eliminated  []string      `json:"eliminated"`
	Advanced    bool          `json:"advanced"`
	NextRoundID *string       `json:"next_round_id,omitempty"`
	Registered  []string      `json:"registered,omitempty"`
	Failures    []ItemFailure `json:"failures,omitempty"`
}
