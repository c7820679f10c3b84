package service

import (
	pkgerrors "github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/errors"
)

// 业务码分段：
//   10xxx 通用    14xxx 轮次    15xxx 评委与轮次分配
//   16xxx 评分与晋级    17xxx 排行榜与导出

// ── 通用 ──

var (
	ErrForbidden = pkgerrors.Forbidden(10003, "无权执行该操作")
)

// ── 轮次模块 ──

var (
	ErrEventNotFound         = pkgerrors.NotFound(14001, "赛事不存在")
	ErrRoundNotFound         = pkgerrors.NotFound(14002, "轮次不存在")
	ErrInvalidRoundType      = pkgerrors.Validation(14003, "轮次类型无效，可选 preliminary / semifinal / final / other")
	ErrInvalidTimeRange      = pkgerrors.Validation(14004, "开始时间必须早于结束时间")
	ErrRoundOutsideEvent     = pkgerrors.Validation(14005, "轮次时间必须在赛事起止时间之内")
	ErrRoundScheduleConflict = pkgerrors.Conflict(14006, "与同一赛事的其他轮次时间冲突")
	ErrInvalidRoundStatus    = pkgerrors.Validation(14007, "轮次状态无效")
	ErrInvalidCalendar       = pkgerrors.Validation(14008, "日历文件无法解析")
)

// ── 评委与轮次分配 ──

var (
	ErrUserNotFound             = pkgerrors.NotFound(15001, "用户不存在")
	ErrTeamNotFound             = pkgerrors.NotFound(15002, "队伍不存在")
	ErrAssignmentNotFound       = pkgerrors.NotFound(15003, "轮次分配不存在")
	ErrJudgeAssignmentNotFound  = pkgerrors.NotFound(15004, "评委指派不存在")
	ErrNotEligible              = pkgerrors.Validation(15005, "该用户不是评委，不能被指派")
	ErrInvalidRole              = pkgerrors.Validation(15006, "分配角色无效或与用户角色不符")
	ErrInvalidAssignmentSubject = pkgerrors.Validation(15007, "user_id 与 team_id 必须且只能填一个，队伍只能作为选手")
	ErrInvalidAssignmentStatus  = pkgerrors.Validation(15008, "分配状态无效")
	ErrDuplicateAssignment      = pkgerrors.Conflict(15009, "该用户已以相同角色分配到此轮次")
	ErrDuplicateJudgeAssignment = pkgerrors.Conflict(15010, "该评委已被指派到此赛事（轮次）")
	ErrCapacityExceeded         = pkgerrors.Conflict(15011, "轮次参赛人数已满")
	ErrCrossEventRound          = pkgerrors.Conflict(15012, "轮次不属于同一赛事")
	ErrJudgeQuotaReached        = pkgerrors.SoftConflict(15013, "轮次评委人数已满足要求")
	ErrSchedulingConflict       = pkgerrors.SoftConflict(15014, "该用户在其他轮次存在时间冲突")
	ErrTeamNotInEvent           = pkgerrors.Validation(15015, "队伍不属于该赛事")
	ErrJudgeAssignmentClosed    = pkgerrors.Conflict(15016, "评委指派已完成，不能再变更")
)

// ── 评分与晋级 ──

var (
	ErrNotAssigned         = pkgerrors.Forbidden(16001, "您未被指派为该轮次评委")
	ErrInvalidScoreEntry   = pkgerrors.Validation(16002, "评分条目无效")
	ErrScoreTargetNotFound = pkgerrors.NotFound(16003, "评分对象不是该轮次选手")
	ErrEmptyWinners        = pkgerrors.Validation(16004, "晋级名单不能为空")
	ErrNextRoundNotFound   = pkgerrors.NotFound(16005, "下一轮次不存在")
	ErrSameRoundAdvance    = pkgerrors.Validation(16006, "下一轮次不能是当前轮次")
	ErrWinnerNotInRound    = pkgerrors.NotFound(16007, "晋级选手不属于该轮次")
)

// ── 排行榜与导出 ──

var (
	ErrExportGenerateFail = pkgerrors.New(pkgerrors.KindUnexpected, 17001, "生成导出文件失败")
)
