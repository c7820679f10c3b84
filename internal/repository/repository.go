package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
// 由 main 显式构造并注入各 Service，不使用全局连接
type Repository struct {
	db *gorm.DB

	User            UserRepository
	Event           EventRepository
	Team            TeamRepository
	Round           RoundRepository
	Assignment      AssignmentRepository
	JudgeAssignment JudgeAssignmentRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:              db,
		User:            NewUserRepo(db),
		Event:           NewEventRepo(db),
		Team:            NewTeamRepo(db),
		Round:           NewRoundRepo(db),
		Assignment:      NewAssignmentRepo(db),
		JudgeAssignment: NewJudgeAssignmentRepo(db),
	}
}

// BeginTx 开启事务
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	return tx, tx.Error
}

// WithTx 返回绑定到事务的 Repository 聚合
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在单个事务内执行 fn，fn 返回错误或 panic 时整体回滚
// 未绑定数据库（单元测试中的 mock 聚合）时直接执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}
