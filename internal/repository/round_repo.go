package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
	pkgerrors "github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/errors"
)

// RoundRepository 轮次数据访问接口
type RoundRepository interface {
	Create(ctx context.Context, round *model.Round) error
	GetByID(ctx context.Context, id string) (*model.Round, error)
	ListByEvent(ctx context.Context, eventID string) ([]model.Round, error)
	// FindConflicts 同一赛事内与 [start, end] 严格重叠的轮次，excludeID 非空时排除自身
	FindConflicts(ctx context.Context, eventID string, start, end time.Time, excludeID string) ([]model.Round, error)
	Update(ctx context.Context, round *model.Round) error
	Delete(ctx context.Context, id string) error
}

type roundRepo struct {
	db *gorm.DB
}

func NewRoundRepo(db *gorm.DB) RoundRepository {
	return &roundRepo{db: db}
}

func (r *roundRepo) Create(ctx context.Context, round *model.Round) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(round).Error
}

func (r *roundRepo) GetByID(ctx context.Context, id string) (*model.Round, error) {
	var round model.Round
	err := r.db.WithContext(ctx).
		Where("round_id = ?", id).
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

func (r *roundRepo) ListByEvent(ctx context.Context, eventID string) ([]model.Round, error) {
	var rounds []model.Round
	err := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Order("start_time ASC").
		Find(&rounds).Error
	return rounds, err
}

func (r *roundRepo) FindConflicts(ctx context.Context, eventID string, start, end time.Time, excludeID string) ([]model.Round, error) {
	var rounds []model.Round
	query := r.db.WithContext(ctx).
		Where("event_id = ?", eventID).
		Where("start_time < ? AND end_time > ?", end, start)
	if excludeID != "" {
		query = query.Where("round_id <> ?", excludeID)
	}
	err := query.Order("start_time ASC").Find(&rounds).Error
	return rounds, err
}

func (r *roundRepo) Update(ctx context.Context, round *model.Round) error {
	oldVersion := round.Version
	result := r.db.WithContext(ctx).
		Model(&model.Round{}).
		Where("round_id = ? AND version = ?", round.RoundID, oldVersion).
		Updates(map[string]interface{}{
			"name":             round.Name,
			"type":             round.Type,
			"description":      round.Description,
			"start_time":       round.StartTime,
			"end_time":         round.EndTime,
			"location":         round.Location,
			"judges_required":  round.JudgesRequired,
			"max_participants": round.MaxParticipants,
			"status":           round.Status,
			"version":          oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	round.Version = oldVersion + 1
	return nil
}

func (r *roundRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("round_id = ?", id).
		Delete(&model.Round{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
