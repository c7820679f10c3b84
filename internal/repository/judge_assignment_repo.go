package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
)

// JudgeAssignmentRepository 赛事评委数据访问接口
type JudgeAssignmentRepository interface {
	Create(ctx context.Context, ja *model.JudgeAssignment) error
	GetByID(ctx context.Context, id string) (*model.JudgeAssignment, error)
	// Find roundID 为 nil 时匹配赛事级评委（round_id IS NULL）
	Find(ctx context.Context, eventID string, roundID *string, judgeID string) (*model.JudgeAssignment, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.JudgeAssignment, error)
	UpdateStatus(ctx context.Context, id string, status model.JudgeAssignmentStatus) error
	Delete(ctx context.Context, id string) error
	DeleteByRound(ctx context.Context, roundID string) error
}

type judgeAssignmentRepo struct {
	db *gorm.DB
}

func NewJudgeAssignmentRepo(db *gorm.DB) JudgeAssignmentRepository {
	return &judgeAssignmentRepo{db: db}
}

func (r *judgeAssignmentRepo) Create(ctx context.Context, ja *model.JudgeAssignment) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(ja).Error
}

func (r *judgeAssignmentRepo) GetByID(ctx context.Context, id string) (*model.JudgeAssignment, error) {
	var ja model.JudgeAssignment
	err := r.db.WithContext(ctx).
		Preload("Judge").
		Where("judge_assignment_id = ?", id).
		First(&ja).Error
	if err != nil {
		return nil, err
	}
	return &ja, nil
}

func (r *judgeAssignmentRepo) Find(ctx context.Context, eventID string, roundID *string, judgeID string) (*model.JudgeAssignment, error) {
	var ja model.JudgeAssignment
	query := r.db.WithContext(ctx).
		Where("event_id = ? AND judge_id = ?", eventID, judgeID)
	if roundID == nil {
		query = query.Where("round_id IS NULL")
	} else {
		query = query.Where("round_id = ?", *roundID)
	}
	if err := query.First(&ja).Error; err != nil {
		return nil, err
	}
	return &ja, nil
}

func (r *judgeAssignmentRepo) ListByEvent(ctx context.Context, eventID string) ([]model.JudgeAssignment, error) {
	var list []model.JudgeAssignment
	err := r.db.WithContext(ctx).
		Preload("Judge").
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *judgeAssignmentRepo) UpdateStatus(ctx context.Context, id string, status model.JudgeAssignmentStatus) error {
	result := r.db.WithContext(ctx).
		Model(&model.JudgeAssignment{}).
		Where("judge_assignment_id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *judgeAssignmentRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("judge_assignment_id = ?", id).
		Delete(&model.JudgeAssignment{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *judgeAssignmentRepo) DeleteByRound(ctx context.Context, roundID string) error {
	return r.db.WithContext(ctx).
		Where("round_id = ?", roundID).
		Delete(&model.JudgeAssignment{}).Error
}
