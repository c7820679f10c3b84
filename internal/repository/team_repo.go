package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
)

// TeamRepository 队伍数据访问接口（只读）
type TeamRepository interface {
	GetByID(ctx context.Context, id string) (*model.Team, error)
}

type teamRepo struct {
	db *gorm.DB
}

func NewTeamRepo(db *gorm.DB) TeamRepository {
	return &teamRepo{db: db}
}

func (r *teamRepo) GetByID(ctx context.Context, id string) (*model.Team, error) {
	var team model.Team
	err := r.db.WithContext(ctx).
		Where("team_id = ?", id).
		First(&team).Error
	if err != nil {
		return nil, err
	}
	return &team, nil
}
