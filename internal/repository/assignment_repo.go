package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
)

// ScoreUpdate 单条评分写入：总分 + 四个分项 + 评语
// 未提供的分项写入 NULL
type ScoreUpdate struct {
	Score               float64
	TechnicalScore      *float64
	PresentationScore   *float64
	CreativityScore     *float64
	ImplementationScore *float64
	JudgeComments       *string
}

// AssignmentRepository 轮次分配数据访问接口
type AssignmentRepository interface {
	// Create 唯一索引兜底并发重复创建，冲突时返回 gorm.ErrDuplicatedKey
	Create(ctx context.Context, assignment *model.Assignment) error
	GetByID(ctx context.Context, id string) (*model.Assignment, error)
	FindByRoundAndUser(ctx context.Context, roundID, userID string, role model.AssignmentRole) (*model.Assignment, error)
	FindByRoundAndTeam(ctx context.Context, roundID, teamID string, role model.AssignmentRole) (*model.Assignment, error)
	// ListByRound role 为 nil 时返回全部角色
	ListByRound(ctx context.Context, roundID string, role *model.AssignmentRole) ([]model.Assignment, error)
	ListByUserAndEvent(ctx context.Context, userID, eventID string) ([]model.Assignment, error)
	CountByRole(ctx context.Context, roundID string, role model.AssignmentRole) (int64, error)
	// CheckAvailability 用户在其他轮次中与 [start, end] 严格重叠的分配（预加载 Round）
	CheckAvailability(ctx context.Context, userID string, start, end time.Time, excludeRoundID string) ([]model.Assignment, error)
	Update(ctx context.Context, assignment *model.Assignment) error
	UpdateStatus(ctx context.Context, id string, status model.AssignmentStatus) error
	ApplyScore(ctx context.Context, id string, score ScoreUpdate) error
	Delete(ctx context.Context, id string) error
	DeleteByRound(ctx context.Context, roundID string) error
}

type assignmentRepo struct {
	db *gorm.DB
}

func NewAssignmentRepo(db *gorm.DB) AssignmentRepository {
	return &assignmentRepo{db: db}
}

func (r *assignmentRepo) Create(ctx context.Context, assignment *model.Assignment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(assignment).Error
}

func (r *assignmentRepo) GetByID(ctx context.Context, id string) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Preload("User").
		Preload("Team").
		Where("assignment_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) FindByRoundAndUser(ctx context.Context, roundID, userID string, role model.AssignmentRole) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Where("round_id = ? AND user_id = ? AND role = ?", roundID, userID, role).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) FindByRoundAndTeam(ctx context.Context, roundID, teamID string, role model.AssignmentRole) (*model.Assignment, error) {
	var a model.Assignment
	err := r.db.WithContext(ctx).
		Where("round_id = ? AND team_id = ? AND role = ?", roundID, teamID, role).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *assignmentRepo) ListByRound(ctx context.Context, roundID string, role *model.AssignmentRole) ([]model.Assignment, error) {
	var list []model.Assignment
	query := r.db.WithContext(ctx).
		Preload("User").
		Preload("Team").
		Where("round_id = ?", roundID)
	if role != nil {
		query = query.Where("role = ?", *role)
	}
	err := query.Order("created_at ASC").Order("assignment_id ASC").Find(&list).Error
	return list, err
}

func (r *assignmentRepo) ListByUserAndEvent(ctx context.Context, userID, eventID string) ([]model.Assignment, error) {
	var list []model.Assignment
	err := r.db.WithContext(ctx).
		Select("round_assignments.*").
		Joins("JOIN rounds ON rounds.round_id = round_assignments.round_id").
		Preload("Round").
		Where("round_assignments.user_id = ? AND rounds.event_id = ?", userID, eventID).
		Order("rounds.start_time ASC").
		Find(&list).Error
	return list, err
}

func (r *assignmentRepo) CountByRole(ctx context.Context, roundID string, role model.AssignmentRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("round_id = ? AND role = ?", roundID, role).
		Count(&count).Error
	return count, err
}

func (r *assignmentRepo) CheckAvailability(ctx context.Context, userID string, start, end time.Time, excludeRoundID string) ([]model.Assignment, error) {
	var list []model.Assignment
	query := r.db.WithContext(ctx).
		Select("round_assignments.*").
		Joins("JOIN rounds ON rounds.round_id = round_assignments.round_id").
		Preload("Round").
		Where("round_assignments.user_id = ?", userID).
		Where("rounds.start_time < ? AND rounds.end_time > ?", end, start)
	if excludeRoundID != "" {
		query = query.Where("round_assignments.round_id <> ?", excludeRoundID)
	}
	err := query.Order("rounds.start_time ASC").Find(&list).Error
	return list, err
}

func (r *assignmentRepo) Update(ctx context.Context, assignment *model.Assignment) error {
	result := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", assignment.AssignmentID).
		Updates(map[string]interface{}{
			"status":   assignment.Status,
			"feedback": assignment.Feedback,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepo) UpdateStatus(ctx context.Context, id string, status model.AssignmentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepo) ApplyScore(ctx context.Context, id string, score ScoreUpdate) error {
	result := r.db.WithContext(ctx).
		Model(&model.Assignment{}).
		Where("assignment_id = ?", id).
		Updates(map[string]interface{}{
			"score":                score.Score,
			"technical_score":      score.TechnicalScore,
			"presentation_score":   score.PresentationScore,
			"creativity_score":     score.CreativityScore,
			"implementation_score": score.ImplementationScore,
			"judge_comments":       score.JudgeComments,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("assignment_id = ?", id).
		Delete(&model.Assignment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *assignmentRepo) DeleteByRound(ctx context.Context, roundID string) error {
	return r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Delete(&model.Assignment{}).Error
}
