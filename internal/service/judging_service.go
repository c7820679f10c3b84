package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/dto"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/repository"
	pkgerrors "github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/errors"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/metrics"
)

// JudgingService 评审流程业务接口
type JudgingService interface {
	// ── 赛事评委 ──
	AssignJudge(ctx context.Context, eventID string, req *dto.AssignJudgeRequest, caller dto.Caller) (*dto.JudgeAssignmentResponse, error)
	ListEventJudges(ctx context.Context, eventID string) ([]dto.JudgeAssignmentResponse, error)
	RespondJudgeAssignment(ctx context.Context, id string, req *dto.RespondJudgeAssignmentRequest, caller dto.Caller) (*dto.JudgeAssignmentResponse, error)
	RemoveJudgeAssignment(ctx context.Context, id string, caller dto.Caller) error

	// ── 轮次分配 ──
	CreateRoundAssignment(ctx context.Context, roundID string, req *dto.CreateAssignmentRequest, caller dto.Caller) (*dto.CreateAssignmentResponse, error)
	ListRoundAssignments(ctx context.Context, roundID string, role string) ([]dto.AssignmentResponse, error)
	ListUserEventAssignments(ctx context.Context, eventID string, caller dto.Caller) ([]dto.AssignmentResponse, error)
	// CheckAvailability 仅供参考，冲突不会阻止后续操作
	CheckAvailability(ctx context.Context, roundID, userID string) (*dto.AvailabilityResponse, error)
	UpdateRoundAssignment(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, caller dto.Caller) (*dto.AssignmentResponse, error)
	DeleteRoundAssignment(ctx context.Context, id string, caller dto.Caller) error

	// ── 评分与晋级 ──

	// SubmitScores 全部评分与评委状态在同一事务内写入，任一失败整体回滚
	SubmitScores(ctx context.Context, roundID string, req *dto.SubmitScoresRequest, caller dto.Caller) (*dto.SubmitScoresResponse, error)
	// DeclareWinners 逐条更新晋级 / 淘汰 / 下一轮报名，单条失败记录后继续
	DeclareWinners(ctx context.Context, roundID string, req *dto.DeclareWinnersRequest, caller dto.Caller) (*dto.DeclareWinnersResponse, error)
}

type judgingService struct {
	repo        *repository.Repository
	leaderboard LeaderboardService
	metrics     *metrics.Metrics
	tracer      trace.Tracer
	logger      *zap.Logger
}

// NewJudgingService 创建 JudgingService 实例
func NewJudgingService(
	repo *repository.Repository,
	leaderboard LeaderboardService,
	m *metrics.Metrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) JudgingService {
	return &judgingService{
		repo:        repo,
		leaderboard: leaderboard,
		metrics:     m,
		tracer:      tracer,
		logger:      logger,
	}
}

// ═══════════════════════════════════════════════════════════
// 赛事评委
// ═══════════════════════════════════════════════════════════

func (s *judgingService) AssignJudge(ctx context.Context, eventID string, req *dto.AssignJudgeRequest, caller dto.Caller) (*dto.JudgeAssignmentResponse, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := authorizeEventManager(event, caller); err != nil {
		return nil, err
	}

	if req.RoundID != nil {
		round, err := s.loadRound(ctx, *req.RoundID)
		if err != nil {
			return nil, err
		}
		if round.EventID != event.EventID {
			return nil, ErrCrossEventRound
		}
	}

	judge, err := s.loadUser(ctx, req.JudgeID)
	if err != nil {
		return nil, err
	}
	if judge.Role != model.UserRoleJudge {
		return nil, ErrNotEligible
	}

	_, err = s.repo.JudgeAssignment.Find(ctx, event.EventID, req.RoundID, judge.UserID)
	if err == nil {
		return nil, ErrDuplicateJudgeAssignment
	}
	if !isNotFound(err) {
		s.logger.Error("查询评委指派失败", zap.Error(err))
		return nil, err
	}

	ja := &model.JudgeAssignment{
		EventID: event.EventID,
		RoundID: req.RoundID,
		JudgeID: judge.UserID,
		Status:  model.JudgeAssignmentStatusPending,
	}
	if err := s.repo.JudgeAssignment.Create(ctx, ja); err != nil {
		if isDuplicate(err) {
			return nil, ErrDuplicateJudgeAssignment
		}
		s.logger.Error("创建评委指派失败", zap.Error(err))
		return nil, err
	}
	ja.Judge = judge

	s.logger.Info("评委已指派",
		zap.String("event_id", event.EventID),
		zap.String("judge_id", judge.UserID),
		zap.String("caller", caller.UserID),
	)
	resp := toJudgeAssignmentResponse(ja)
	return &resp, nil
}

func (s *judgingService) ListEventJudges(ctx context.Context, eventID string) ([]dto.JudgeAssignmentResponse, error) {
	if _, err := s.loadEvent(ctx, eventID); err != nil {
		return nil, err
	}
	list, err := s.repo.JudgeAssignment.ListByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("查询赛事评委失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.JudgeAssignmentResponse, 0, len(list))
	for i := range list {
		out = append(out, toJudgeAssignmentResponse(&list[i]))
	}
	return out, nil
}

func (s *judgingService) RespondJudgeAssignment(ctx context.Context, id string, req *dto.RespondJudgeAssignmentRequest, caller dto.Caller) (*dto.JudgeAssignmentResponse, error) {
	ja, err := s.loadJudgeAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	// 只有被邀请的评委本人可以答复
	if ja.JudgeID != caller.UserID {
		return nil, ErrForbidden
	}
	if ja.Status == model.JudgeAssignmentStatusCompleted {
		return nil, ErrJudgeAssignmentClosed
	}

	status := model.JudgeAssignmentStatusAccepted
	if req.Action == "decline" {
		status = model.JudgeAssignmentStatusDeclined
	}
	if err := s.repo.JudgeAssignment.UpdateStatus(ctx, ja.JudgeAssignmentID, status); err != nil {
		if isNotFound(err) {
			return nil, ErrJudgeAssignmentNotFound
		}
		s.logger.Error("更新评委指派状态失败", zap.Error(err))
		return nil, err
	}
	ja.Status = status

	resp := toJudgeAssignmentResponse(ja)
	return &resp, nil
}

func (s *judgingService) RemoveJudgeAssignment(ctx context.Context, id string, caller dto.Caller) error {
	ja, err := s.loadJudgeAssignment(ctx, id)
	if err != nil {
		return err
	}
	event, err := s.loadEvent(ctx, ja.EventID)
	if err != nil {
		return err
	}
	if err := authorizeEventManager(event, caller); err != nil {
		return err
	}
	if err := s.repo.JudgeAssignment.Delete(ctx, ja.JudgeAssignmentID); err != nil {
		if isNotFound(err) {
			return ErrJudgeAssignmentNotFound
		}
		s.logger.Error("删除评委指派失败", zap.Error(err))
		return err
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// 轮次分配
// ═══════════════════════════════════════════════════════════

// assignmentSpec 创建分配所需的参数，CreateRoundAssignment 与晋级报名共用
type assignmentSpec struct {
	UserID *string
	TeamID *string
	Role   model.AssignmentRole
	Status model.AssignmentStatus
}

func (s *judgingService) CreateRoundAssignment(ctx context.Context, roundID string, req *dto.CreateAssignmentRequest, caller dto.Caller) (*dto.CreateAssignmentResponse, error) {
	round, err := s.loadRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	event, err := s.loadEvent(ctx, round.EventID)
	if err != nil {
		return nil, err
	}

	spec := assignmentSpec{
		UserID: req.UserID,
		TeamID: req.TeamID,
		Role:   model.AssignmentRole(req.Role),
		Status: model.AssignmentStatusAssigned,
	}
	if req.Status != nil {
		spec.Status = model.AssignmentStatus(*req.Status)
		if !spec.Status.IsValid() {
			return nil, ErrInvalidAssignmentStatus
		}
	}

	if err := authorizeEventManager(event, caller); err != nil {
		// 选手可为本人或自己带领的队伍报名，但不能指定状态
		if req.Status != nil {
			return nil, ErrForbidden
		}
		if err := s.authorizeSelfRegistration(ctx, spec, caller); err != nil {
			return nil, err
		}
	}

	assignment, warnings, err := s.createAssignment(ctx, s.repo, round, spec, req.Override)
	if err != nil {
		return nil, err
	}
	s.leaderboard.Invalidate(ctx, round.RoundID)

	s.logger.Info("轮次分配已创建",
		zap.String("round_id", round.RoundID),
		zap.String("assignment_id", assignment.AssignmentID),
		zap.String("role", assignment.Role.String()),
		zap.Int("warnings", len(warnings)),
	)
	return &dto.CreateAssignmentResponse{
		Assignment: toAssignmentResponse(assignment),
		Warnings:   warnings,
	}, nil
}

func (s *judgingService) authorizeSelfRegistration(ctx context.Context, spec assignmentSpec, caller dto.Caller) error {
	if spec.Role != model.AssignmentRoleParticipant {
		return ErrForbidden
	}
	switch {
	case spec.UserID != nil && spec.TeamID == nil:
		if *spec.UserID != caller.UserID {
			return ErrForbidden
		}
		return nil
	case spec.TeamID != nil && spec.UserID == nil:
		team, err := s.loadTeam(ctx, *spec.TeamID)
		if err != nil {
			return err
		}
		if team.LeaderID != caller.UserID {
			return ErrForbidden
		}
		return nil
	default:
		return ErrInvalidAssignmentSubject
	}
}

// createAssignment 校验并创建一条轮次分配
//
// 检查顺序：角色 → 对象 → 重复 → 容量（硬）→ 评委名额（软）→ 时间冲突（软）。
// override=false 时返回第一个软冲突；override=true 时软冲突作为 warnings 返回。
func (s *judgingService) createAssignment(
	ctx context.Context,
	repo *repository.Repository,
	round *model.Round,
	spec assignmentSpec,
	override bool,
) (*model.Assignment, []dto.ConflictWarning, error) {
	if !spec.Role.IsValid() {
		return nil, nil, ErrInvalidRole
	}
	if (spec.UserID == nil) == (spec.TeamID == nil) {
		return nil, nil, ErrInvalidAssignmentSubject
	}
	if spec.TeamID != nil && spec.Role != model.AssignmentRoleParticipant {
		return nil, nil, ErrInvalidAssignmentSubject
	}

	assignment := &model.Assignment{
		RoundID: round.RoundID,
		UserID:  spec.UserID,
		TeamID:  spec.TeamID,
		Role:    spec.Role,
		Status:  spec.Status,
	}

	// ── 对象校验与重复检查 ──
	var existing error
	if spec.UserID != nil {
		user, err := s.loadUser(ctx, *spec.UserID)
		if err != nil {
			return nil, nil, err
		}
		if spec.Role == model.AssignmentRoleJudge && user.Role != model.UserRoleJudge {
			return nil, nil, ErrInvalidRole
		}
		assignment.User = user
		_, existing = repo.Assignment.FindByRoundAndUser(ctx, round.RoundID, user.UserID, spec.Role)
	} else {
		team, err := s.loadTeam(ctx, *spec.TeamID)
		if err != nil {
			return nil, nil, err
		}
		if team.EventID != round.EventID {
			return nil, nil, ErrTeamNotInEvent
		}
		assignment.Team = team
		_, existing = repo.Assignment.FindByRoundAndTeam(ctx, round.RoundID, team.TeamID, spec.Role)
	}
	if existing == nil {
		return nil, nil, ErrDuplicateAssignment
	}
	if !isNotFound(existing) {
		s.logger.Error("查询轮次分配失败", zap.Error(existing))
		return nil, nil, existing
	}

	// ── 容量（硬冲突）──
	if spec.Role == model.AssignmentRoleParticipant && round.MaxParticipants != nil {
		count, err := repo.Assignment.CountByRole(ctx, round.RoundID, model.AssignmentRoleParticipant)
		if err != nil {
			s.logger.Error("统计轮次选手失败", zap.Error(err))
			return nil, nil, err
		}
		if count >= int64(*round.MaxParticipants) {
			s.metrics.Conflict("capacity")
			return nil, nil, ErrCapacityExceeded.WithDetails(map[string]any{
				"max_participants": *round.MaxParticipants,
				"current":          count,
			})
		}
	}

	// ── 软冲突 ──
	var soft []*pkgerrors.Error
	if spec.Role == model.AssignmentRoleJudge && round.JudgesRequired != nil {
		count, err := repo.Assignment.CountByRole(ctx, round.RoundID, model.AssignmentRoleJudge)
		if err != nil {
			s.logger.Error("统计轮次评委失败", zap.Error(err))
			return nil, nil, err
		}
		if count >= int64(*round.JudgesRequired) {
			s.metrics.Conflict("judge_quota")
			soft = append(soft, ErrJudgeQuotaReached.WithDetails(map[string]any{
				"judges_required": *round.JudgesRequired,
				"current":         count,
			}))
		}
	}
	if spec.UserID != nil {
		conflicts, err := repo.Assignment.CheckAvailability(ctx, *spec.UserID, round.StartTime, round.EndTime, round.RoundID)
		if err != nil {
			s.logger.Error("检查时间冲突失败", zap.Error(err))
			return nil, nil, err
		}
		if len(conflicts) > 0 {
			s.metrics.Conflict("scheduling")
			soft = append(soft, ErrSchedulingConflict.WithDetails(toScheduleConflicts(conflicts)))
		}
	}
	if len(soft) > 0 && !override {
		return nil, nil, soft[0]
	}

	var warnings []dto.ConflictWarning
	for _, w := range soft {
		warnings = append(warnings, dto.ConflictWarning{Code: w.Code, Message: w.Message, Details: w.Details})
	}

	if err := repo.Assignment.Create(ctx, assignment); err != nil {
		if isDuplicate(err) {
			return nil, nil, ErrDuplicateAssignment
		}
		s.logger.Error("创建轮次分配失败", zap.Error(err))
		return nil, nil, err
	}
	return assignment, warnings, nil
}

func (s *judgingService) ListRoundAssignments(ctx context.Context, roundID string, role string) ([]dto.AssignmentResponse, error) {
	if _, err := s.loadRound(ctx, roundID); err != nil {
		return nil, err
	}
	var filter *model.AssignmentRole
	if role != "" {
		r := model.AssignmentRole(role)
		if !r.IsValid() {
			return nil, ErrInvalidRole
		}
		filter = &r
	}
	list, err := s.repo.Assignment.ListByRound(ctx, roundID, filter)
	if err != nil {
		s.logger.Error("查询轮次分配失败", zap.Error(err))
		return nil, err
	}
	return toAssignmentResponses(list), nil
}

func (s *judgingService) ListUserEventAssignments(ctx context.Context, eventID string, caller dto.Caller) ([]dto.AssignmentResponse, error) {
	if _, err := s.loadEvent(ctx, eventID); err != nil {
		return nil, err
	}
	list, err := s.repo.Assignment.ListByUserAndEvent(ctx, caller.UserID, eventID)
	if err != nil {
		s.logger.Error("查询用户赛事分配失败", zap.Error(err))
		return nil, err
	}
	return toAssignmentResponses(list), nil
}

func (s *judgingService) CheckAvailability(ctx context.Context, roundID, userID string) (*dto.AvailabilityResponse, error) {
	round, err := s.loadRound(ctx, roundID)
	if err != nil {
		return nil, err
	}
	if _, err := s.loadUser(ctx, userID); err != nil {
		return nil, err
	}
	conflicts, err := s.repo.Assignment.CheckAvailability(ctx, userID, round.StartTime, round.EndTime, round.RoundID)
	if err != nil {
		s.logger.Error("检查时间冲突失败", zap.Error(err))
		return nil, err
	}
	return &dto.AvailabilityResponse{
		UserID:    userID,
		RoundID:   round.RoundID,
		Available: len(conflicts) == 0,
		Conflicts: toScheduleConflicts(conflicts),
	}, nil
}

func (s *judgingService) UpdateRoundAssignment(ctx context.Context, id string, req *dto.UpdateAssignmentRequest, caller dto.Caller) (*dto.AssignmentResponse, error) {
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeRoundManager(ctx, assignment.RoundID, caller); err != nil {
		return nil, err
	}

	if req.Status != nil {
		st := model.AssignmentStatus(*req.Status)
		if !st.IsValid() {
			return nil, ErrInvalidAssignmentStatus
		}
		assignment.Status = st
	}
	if req.Feedback != nil {
		assignment.Feedback = req.Feedback
	}

	if err := s.repo.Assignment.Update(ctx, assignment); err != nil {
		if isNotFound(err) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("更新轮次分配失败", zap.Error(err))
		return nil, err
	}
	s.leaderboard.Invalidate(ctx, assignment.RoundID)

	resp := toAssignmentResponse(assignment)
	return &resp, nil
}

func (s *judgingService) DeleteRoundAssignment(ctx context.Context, id string, caller dto.Caller) error {
	assignment, err := s.loadAssignment(ctx, id)
	if err != nil {
		return err
	}
	// 选手可以撤回本人的报名
	self := assignment.Role == model.AssignmentRoleParticipant &&
		assignment.UserID != nil && *assignment.UserID == caller.UserID
	if !self {
		if err := s.authorizeRoundManager(ctx, assignment.RoundID, caller); err != nil {
			return err
		}
	}

	if err := s.repo.Assignment.Delete(ctx, assignment.AssignmentID); err != nil {
		if isNotFound(err) {
			return ErrAssignmentNotFound
		}
		s.logger.Error("删除轮次分配失败", zap.Error(err))
		return err
	}
	s.leaderboard.Invalidate(ctx, assignment.RoundID)
	return nil
}

// ── 辅助 ──

func (s *judgingService) authorizeRoundManager(ctx context.Context, roundID string, caller dto.Caller) error {
	round, err := s.loadRound(ctx, roundID)
	if err != nil {
		return err
	}
	event, err := s.loadEvent(ctx, round.EventID)
	if err != nil {
		return err
	}
	return authorizeEventManager(event, caller)
}

func (s *judgingService) loadEvent(ctx context.Context, id string) (*model.Event, error) {
	event, err := s.repo.Event.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrEventNotFound
		}
		s.logger.Error("查询赛事失败", zap.Error(err))
		return nil, err
	}
	return event, nil
}

func (s *judgingService) loadRound(ctx context.Context, id string) (*model.Round, error) {
	round, err := s.repo.Round.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRoundNotFound
		}
		s.logger.Error("查询轮次失败", zap.Error(err))
		return nil, err
	}
	return round, nil
}

func (s *judgingService) loadUser(ctx context.Context, id string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	return user, nil
}

func (s *judgingService) loadTeam(ctx context.Context, id string) (*model.Team, error) {
	team, err := s.repo.Team.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrTeamNotFound
		}
		s.logger.Error("查询队伍失败", zap.Error(err))
		return nil, err
	}
	return team, nil
}

func (s *judgingService) loadAssignment(ctx context.Context, id string) (*model.Assignment, error) {
	a, err := s.repo.Assignment.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrAssignmentNotFound
		}
		s.logger.Error("查询轮次分配失败", zap.Error(err))
		return nil, err
	}
	return a, nil
}

func (s *judgingService) loadJudgeAssignment(ctx context.Context, id string) (*model.JudgeAssignment, error) {
	ja, err := s.repo.JudgeAssignment.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrJudgeAssignmentNotFound
		}
		s.logger.Error("查询评委指派失败", zap.Error(err))
		return nil, err
	}
	return ja, nil
}

// isAlreadyRegistered 下一轮已存在相同报名视为成功，重复宣布晋级保持幂等
func isAlreadyRegistered(err error) bool {
	return errors.Is(err, ErrDuplicateAssignment)
}
