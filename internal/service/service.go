package service

import (
	"errors"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/config"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/dto"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/repository"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/metrics"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Round       RoundService
	Judging     JudgingService
	Leaderboard LeaderboardService
	Export      ExportService
}

// NewService 创建 Service 聚合
// cache 为 nil 时排行榜不走缓存；m 为 nil 时不记录指标
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	cache Cache,
	m *metrics.Metrics,
	tracer trace.Tracer,
	logger *zap.Logger,
) *Service {
	leaderboard := NewLeaderboardService(repo, cache, cfg.Judging.LeaderboardCacheTTL, m, logger)
	return &Service{
		Round:       NewRoundService(repo, leaderboard, m, logger),
		Judging:     NewJudgingService(repo, leaderboard, m, tracer, logger),
		Leaderboard: leaderboard,
		Export:      NewExportService(repo, leaderboard, logger),
	}
}

// ── 公共辅助 ──

// authorizeEventManager 仅管理员与赛事组织者可管理赛事下的轮次与评审
func authorizeEventManager(event *model.Event, caller dto.Caller) error {
	if caller.IsAdmin() {
		return nil
	}
	if caller.Role == model.UserRoleOrganizer && event.IsOrganizedBy(caller.UserID) {
		return nil
	}
	return ErrForbidden
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func strPtr(s string) *string { return &s }

// ── 模型 → 响应 ──

func toRoundResponse(r *model.Round) dto.RoundResponse {
	return dto.RoundResponse{
		ID:              r.RoundID,
		EventID:         r.EventID,
		Name:            r.Name,
		Type:            r.Type.String(),
		Description:     r.Description,
		StartTime:       dto.FormatTime(r.StartTime),
		EndTime:         dto.FormatTime(r.EndTime),
		Location:        r.Location,
		JudgesRequired:  r.JudgesRequired,
		MaxParticipants: r.MaxParticipants,
		Status:          r.Status.String(),
		Version:         r.Version,
		CreatedAt:       dto.FormatTime(r.CreatedAt),
		UpdatedAt:       dto.FormatTime(r.UpdatedAt),
	}
}

func toRoundBriefs(rounds []model.Round) []dto.RoundBrief {
	out := make([]dto.RoundBrief, 0, len(rounds))
	for i := range rounds {
		out = append(out, dto.RoundBrief{
			ID:        rounds[i].RoundID,
			Name:      rounds[i].Name,
			StartTime: dto.FormatTime(rounds[i].StartTime),
			EndTime:   dto.FormatTime(rounds[i].EndTime),
			Location:  rounds[i].Location,
		})
	}
	return out
}

func toUserBrief(u *model.User) *dto.UserBrief {
	if u == nil {
		return nil
	}
	return &dto.UserBrief{ID: u.UserID, Name: u.Name, Role: u.Role.String()}
}

func toAssignmentResponse(a *model.Assignment) dto.AssignmentResponse {
	resp := dto.AssignmentResponse{
		ID:                  a.AssignmentID,
		RoundID:             a.RoundID,
		UserID:              a.UserID,
		TeamID:              a.TeamID,
		User:                toUserBrief(a.User),
		Role:                a.Role.String(),
		Status:              a.Status.String(),
		Score:               a.Score,
		TechnicalScore:      a.TechnicalScore,
		PresentationScore:   a.PresentationScore,
		CreativityScore:     a.CreativityScore,
		ImplementationScore: a.ImplementationScore,
		JudgeComments:       a.JudgeComments,
		Feedback:            a.Feedback,
		CreatedAt:           dto.FormatTime(a.CreatedAt),
		UpdatedAt:           dto.FormatTime(a.UpdatedAt),
	}
	if a.Team != nil {
		resp.Team = &dto.TeamBrief{ID: a.Team.TeamID, Name: a.Team.Name}
	}
	return resp
}

func toAssignmentResponses(list []model.Assignment) []dto.AssignmentResponse {
	out := make([]dto.AssignmentResponse, 0, len(list))
	for i := range list {
		out = append(out, toAssignmentResponse(&list[i]))
	}
	return out
}

func toJudgeAssignmentResponse(ja *model.JudgeAssignment) dto.JudgeAssignmentResponse {
	return dto.JudgeAssignmentResponse{
		ID:        ja.JudgeAssignmentID,
		EventID:   ja.EventID,
		RoundID:   ja.RoundID,
		JudgeID:   ja.JudgeID,
		Judge:     toUserBrief(ja.Judge),
		Status:    ja.Status.String(),
		CreatedAt: dto.FormatTime(ja.CreatedAt),
		UpdatedAt: dto.FormatTime(ja.UpdatedAt),
	}
}

func toScheduleConflicts(list []model.Assignment) []dto.ScheduleConflict {
	out := make([]dto.ScheduleConflict, 0, len(list))
	for i := range list {
		c := dto.ScheduleConflict{
			AssignmentID: list[i].AssignmentID,
			RoundID:      list[i].RoundID,
			Role:         list[i].Role.String(),
		}
		if r := list[i].Round; r != nil {
			c.RoundName = r.Name
			c.EventID = r.EventID
			c.StartTime = dto.FormatTime(r.StartTime)
			c.EndTime = dto.FormatTime(r.EndTime)
		}
		out = append(out, c)
	}
	return out
}
