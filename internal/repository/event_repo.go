package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
)

// EventRepository 赛事数据访问接口（只读）
type EventRepository interface {
	GetByID(ctx context.Context, id string) (*model.Event, error)
}

type eventRepo struct {
	db *gorm.DB
}

func NewEventRepo(db *gorm.DB) EventRepository {
	return &eventRepo{db: db}
}

func (r *eventRepo) GetByID(ctx context.Context, id string) (*model.Event, error) {
	var event model.Event
	err := r.db.WithContext(ctx).
		Where("event_id = ?", id).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}
