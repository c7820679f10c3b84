package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/dto"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/ranking"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/repository"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/metrics"
)

// Cache 排行榜缓存，*redis.Client 实现该接口
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

const leaderboardKeyPrefix = "leaderboard:round:"

func leaderboardKey(roundID string) string { return leaderboardKeyPrefix + roundID }

// LeaderboardService 排行榜业务接口
type LeaderboardService interface {
	// GetLeaderboard 读取轮次选手并按标准竞赛排名输出
	GetLeaderboard(ctx context.Context, roundID string) (*dto.LeaderboardResponse, error)
	// Invalidate 评分、晋级、分配变更后清除缓存；失败仅记录日志
	Invalidate(ctx context.Context, roundIDs ...string)
}

type leaderboardService struct {
	repo    *repository.Repository
	cache   Cache
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewLeaderboardService 创建 LeaderboardService 实例
func NewLeaderboardService(repo *repository.Repository, cache Cache, ttl time.Duration, m *metrics.Metrics, logger *zap.Logger) LeaderboardService {
	return &leaderboardService{repo: repo, cache: cache, ttl: ttl, metrics: m, logger: logger}
}

func (s *leaderboardService) GetLeaderboard(ctx context.Context, roundID string) (*dto.LeaderboardResponse, error) {
	if s.cache != nil {
		var cached dto.LeaderboardResponse
		hit, err := s.cache.GetJSON(ctx, leaderboardKey(roundID), &cached)
		switch {
		case err != nil:
			s.metrics.LeaderboardCache("error")
			s.logger.Warn("读取排行榜缓存失败", zap.String("round_id", roundID), zap.Error(err))
		case hit:
			s.metrics.LeaderboardCache("hit")
			return &cached, nil
		default:
			s.metrics.LeaderboardCache("miss")
		}
	}

	round, err := s.repo.Round.GetByID(ctx, roundID)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrRoundNotFound
		}
		s.logger.Error("查询轮次失败", zap.Error(err))
		return nil, err
	}

	role := model.AssignmentRoleParticipant
	participants, err := s.repo.Assignment.ListByRound(ctx, roundID, &role)
	if err != nil {
		s.logger.Error("查询轮次选手失败", zap.Error(err))
		return nil, err
	}

	ranked := ranking.Rank(participants, func(a model.Assignment) *float64 { return a.Score })
	entries := make([]dto.LeaderboardEntry, 0, len(ranked))
	for i := range ranked {
		entries = append(entries, dto.LeaderboardEntry{
			Rank:               ranked[i].Rank,
			AssignmentResponse: toAssignmentResponse(&ranked[i].Item),
		})
	}

	resp := &dto.LeaderboardResponse{
		RoundID:     round.RoundID,
		RoundName:   round.Name,
		EventID:     round.EventID,
		Entries:     entries,
		GeneratedAt: dto.FormatTime(time.Now()),
	}

	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.SetJSON(ctx, leaderboardKey(roundID), resp, s.ttl); err != nil {
			s.logger.Warn("写入排行榜缓存失败", zap.String("round_id", roundID), zap.Error(err))
		}
	}
	return resp, nil
}

func (s *leaderboardService) Invalidate(ctx context.Context, roundIDs ...string) {
	if s.cache == nil || len(roundIDs) == 0 {
		return
	}
	keys := make([]string, 0, len(roundIDs))
	for _, id := range roundIDs {
		keys = append(keys, leaderboardKey(id))
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		s.logger.Warn("清除排行榜缓存失败", zap.Strings("round_ids", roundIDs), zap.Error(err))
	}
}
