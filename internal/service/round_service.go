package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/dto"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/repository"
	pkgerrors "github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/errors"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/metrics"
)

// RoundService 轮次业务接口
//
// 冲突判定范围：同一赛事内的全部轮次，与地点无关；创建与更新使用同一规则。
// 重叠判定为严格不等式，首尾相接的轮次不冲突。
type RoundService interface {
	Create(ctx context.Context, eventID string, req *dto.CreateRoundRequest, caller dto.Caller) (*dto.RoundResponse, error)
	Get(ctx context.Context, id string) (*dto.RoundResponse, error)
	ListByEvent(ctx context.Context, eventID string) ([]dto.RoundResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateRoundRequest, caller dto.Caller) (*dto.RoundResponse, error)
	// Delete 在同一事务内删除轮次及其全部分配与评委指派
	Delete(ctx context.Context, id string, caller dto.Caller) error
	// ImportCalendar 从 .ics 批量导入轮次，逐条校验，失败条目跳过
	ImportCalendar(ctx context.Context, eventID string, r io.Reader, caller dto.Caller) (*dto.ImportRoundsResponse, error)
}

type roundService struct {
	repo        *repository.Repository
	leaderboard LeaderboardService
	metrics     *metrics.Metrics
	logger      *zap.Logger
}

// NewRoundService 创建 RoundService 实例
func NewRoundService(repo *repository.Repository, leaderboard LeaderboardService, m *metrics.Metrics, logger *zap.Logger) RoundService {
	return &roundService{repo: repo, leaderboard: leaderboard, metrics: m, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// Create
// ═══════════════════════════════════════════════════════════

func (s *roundService) Create(ctx context.Context, eventID string, req *dto.CreateRoundRequest, caller dto.Caller) (*dto.RoundResponse, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := authorizeEventManager(event, caller); err != nil {
		return nil, err
	}

	roundType := model.RoundType(req.Type)
	if !roundType.IsValid() {
		return nil, ErrInvalidRoundType
	}

	round := &model.Round{
		EventID:         event.EventID,
		Name:            req.Name,
		Type:            roundType,
		Description:     req.Description,
		StartTime:       req.StartTime.UTC(),
		EndTime:         req.EndTime.UTC(),
		Location:        req.Location,
		JudgesRequired:  req.JudgesRequired,
		MaxParticipants: req.MaxParticipants,
		Status:          model.RoundStatusScheduled,
	}
	if err := s.createRound(ctx, event, round); err != nil {
		return nil, err
	}

	s.logger.Info("轮次已创建",
		zap.String("event_id", event.EventID),
		zap.String("round_id", round.RoundID),
		zap.String("caller", caller.UserID),
	)
	resp := toRoundResponse(round)
	return &resp, nil
}

// createRound 校验时间窗口与冲突后落库
func (s *roundService) createRound(ctx context.Context, event *model.Event, round *model.Round) error {
	if err := validateRoundWindow(event, round.StartTime, round.EndTime); err != nil {
		return err
	}
	if err := s.checkConflicts(ctx, event.EventID, round.StartTime, round.EndTime, ""); err != nil {
		return err
	}
	round.Version = 1
	if err := s.repo.Round.Create(ctx, round); err != nil {
		s.logger.Error("创建轮次失败", zap.Error(err))
		return err
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// Read
// ═══════════════════════════════════════════════════════════

func (s *roundService) Get(ctx context.Context, id string) (*dto.RoundResponse, error) {
	round, err := s.loadRound(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toRoundResponse(round)
	return &resp, nil
}

func (s *roundService) ListByEvent(ctx context.Context, eventID string) ([]dto.RoundResponse, error) {
	if _, err := s.loadEvent(ctx, eventID); err != nil {
		return nil, err
	}
	rounds, err := s.repo.Round.ListByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("查询轮次列表失败", zap.Error(err))
		return nil, err
	}
	out := make([]dto.RoundResponse, 0, len(rounds))
	for i := range rounds {
		out = append(out, toRoundResponse(&rounds[i]))
	}
	return out, nil
}

// ═══════════════════════════════════════════════════════════
// Update
// ═══════════════════════════════════════════════════════════

func (s *roundService) Update(ctx context.Context, id string, req *dto.UpdateRoundRequest, caller dto.Caller) (*dto.RoundResponse, error) {
	round, err := s.loadRound(ctx, id)
	if err != nil {
		return nil, err
	}
	event, err := s.loadEvent(ctx, round.EventID)
	if err != nil {
		return nil, err
	}
	if err := authorizeEventManager(event, caller); err != nil {
		return nil, err
	}
	if req.Version != nil && *req.Version != round.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.Name != nil {
		round.Name = *req.Name
	}
	if req.Type != nil {
		t := model.RoundType(*req.Type)
		if !t.IsValid() {
			return nil, ErrInvalidRoundType
		}
		round.Type = t
	}
	if req.Status != nil {
		st := model.RoundStatus(*req.Status)
		if !st.IsValid() {
			return nil, ErrInvalidRoundStatus
		}
		round.Status = st
	}
	if req.Description != nil {
		round.Description = *req.Description
	}
	if req.Location != nil {
		round.Location = *req.Location
	}
	if req.JudgesRequired != nil {
		round.JudgesRequired = req.JudgesRequired
	}
	if req.MaxParticipants != nil {
		round.MaxParticipants = req.MaxParticipants
	}
	if req.StartTime != nil {
		round.StartTime = req.StartTime.UTC()
	}
	if req.EndTime != nil {
		round.EndTime = req.EndTime.UTC()
	}

	// 与创建相同的校验，排除自身
	if err := validateRoundWindow(event, round.StartTime, round.EndTime); err != nil {
		return nil, err
	}
	if err := s.checkConflicts(ctx, event.EventID, round.StartTime, round.EndTime, round.RoundID); err != nil {
		return nil, err
	}

	if err := s.repo.Round.Update(ctx, round); err != nil {
		s.logger.Error("更新轮次失败", zap.String("round_id", round.RoundID), zap.Error(err))
		return nil, err
	}
	s.leaderboard.Invalidate(ctx, round.RoundID)

	resp := toRoundResponse(round)
	return &resp, nil
}

// ═══════════════════════════════════════════════════════════
// Delete
// ═══════════════════════════════════════════════════════════

func (s *roundService) Delete(ctx context.Context, id string, caller dto.Caller) error {
	round, err := s.loadRound(ctx, id)
	if err != nil {
		return err
	}
	event, err := s.loadEvent(ctx, round.EventID)
	if err != nil {
		return err
	}
	if err := authorizeEventManager(event, caller); err != nil {
		return err
	}

	err = runAtomic(ctx, s.repo, s.logger, "DeleteRound", func(txRepo *repository.Repository) error {
		if err := txRepo.Assignment.DeleteByRound(ctx, round.RoundID); err != nil {
			return fmt.Errorf("删除轮次分配失败: %w", err)
		}
		if err := txRepo.JudgeAssignment.DeleteByRound(ctx, round.RoundID); err != nil {
			return fmt.Errorf("删除评委指派失败: %w", err)
		}
		if err := txRepo.Round.Delete(ctx, round.RoundID); err != nil {
			if isNotFound(err) {
				return ErrRoundNotFound
			}
			return fmt.Errorf("删除轮次失败: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.leaderboard.Invalidate(ctx, round.RoundID)
	s.logger.Info("轮次已删除", zap.String("round_id", round.RoundID), zap.String("caller", caller.UserID))
	return nil
}

// ═══════════════════════════════════════════════════════════
// ImportCalendar
// ═══════════════════════════════════════════════════════════

func (s *roundService) ImportCalendar(ctx context.Context, eventID string, r io.Reader, caller dto.Caller) (*dto.ImportRoundsResponse, error) {
	event, err := s.loadEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if err := authorizeEventManager(event, caller); err != nil {
		return nil, err
	}

	parsed, skipped, err := ParseRoundCalendar(r)
	if err != nil {
		return nil, ErrInvalidCalendar.WithDetails(err.Error())
	}

	byUID := make(map[string]parsedRound, len(parsed))
	uids := make([]string, 0, len(parsed))
	for _, p := range parsed {
		byUID[p.UID] = p
		uids = append(uids, p.UID)
	}

	created := make([]dto.RoundResponse, 0, len(parsed))
	_, failures := runBestEffort(ctx, s.logger, s.metrics, "import", uids, func(ctx context.Context, uid string) error {
		p := byUID[uid]
		round := &model.Round{
			EventID:     event.EventID,
			Name:        p.Name,
			Type:        p.Type,
			Description: p.Description,
			StartTime:   p.Start,
			EndTime:     p.End,
			Location:    p.Location,
			Status:      model.RoundStatusScheduled,
		}
		if err := s.createRound(ctx, event, round); err != nil {
			return err
		}
		created = append(created, toRoundResponse(round))
		return nil
	})

	for _, sk := range skipped {
		failures = append(failures, dto.ItemFailure{ID: sk.UID, Stage: "parse", Reason: sk.Reason})
	}

	s.logger.Info("日历导入完成",
		zap.String("event_id", event.EventID),
		zap.Int("created", len(created)),
		zap.Int("failed", len(failures)),
	)
	return &dto.ImportRoundsResponse{Created: created, Failures: failures}, nil
}

// ── 辅助 ──

func (s *roundService) loadEvent(ctx context.Context, id string) (*model.Event, error) {
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

func (s *roundService) loadRound(ctx context.Context, id string) (*model.Round, error) {
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

// checkConflicts 同一赛事内存在严格重叠的轮次时返回硬冲突，详情为冲突轮次
func (s *roundService) checkConflicts(ctx context.Context, eventID string, start, end time.Time, excludeID string) error {
	conflicts, err := s.repo.Round.FindConflicts(ctx, eventID, start, end, excludeID)
	if err != nil {
		s.logger.Error("检查轮次冲突失败", zap.Error(err))
		return err
	}
	if len(conflicts) > 0 {
		s.metrics.Conflict("schedule")
		return ErrRoundScheduleConflict.WithDetails(toRoundBriefs(conflicts))
	}
	return nil
}

// validateRoundWindow start < end 且区间落在赛事起止时间内（含边界）
func validateRoundWindow(event *model.Event, start, end time.Time) error {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return ErrInvalidTimeRange
	}
	if !event.Contains(start, end) {
		return ErrRoundOutsideEvent
	}
	return nil
}
