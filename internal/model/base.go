package model

import (
	"time"

	"github.com/google/uuid"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
// 时间列不声明数据库类型，PostgreSQL 由迁移脚本建表，测试中的 SQLite 由 AutoMigrate 建表
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

// VersionedModel 支持乐观锁的模型
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// ensureID 主键为空时生成 UUID
func ensureID(id *string) {
	if *id == "" {
		*id = uuid.NewString()
	}
}
