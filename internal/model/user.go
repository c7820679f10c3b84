package model

import "gorm.io/gorm"

// UserRole 平台角色
type UserRole string

const (
	UserRoleAdmin       UserRole = "admin"
	UserRoleOrganizer   UserRole = "organizer"
	UserRoleJudge       UserRole = "judge"
	UserRoleParticipant UserRole = "participant"
	UserRoleSponsor     UserRole = "sponsor"
)

// IsValid 是否为合法角色
func (r UserRole) IsValid() bool {
	switch r {
	case UserRoleAdmin, UserRoleOrganizer, UserRoleJudge, UserRoleParticipant, UserRoleSponsor:
		return true
	default:
		return false
	}
}

func (r UserRole) String() string { return string(r) }

// User 用户表 — 对应 users（由账号服务维护，本服务只读）
type User struct {
	UserID string   `gorm:"type:uuid;primaryKey"         json:"user_id"`
	Name   string   `gorm:"type:varchar(100);not null"   json:"name"`
	Email  string   `gorm:"type:varchar(255);not null"   json:"email"`
	Role   UserRole `gorm:"type:varchar(20);not null"    json:"role"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

func (u *User) BeforeCreate(*gorm.DB) error {
	ensureID(&u.UserID)
	return nil
}
