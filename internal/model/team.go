package model

import "gorm.io/gorm"

// Team 参赛队伍 — 对应 teams（只读）
type Team struct {
	TeamID   string `gorm:"type:uuid;primaryKey"       json:"team_id"`
	EventID  string `gorm:"type:uuid;not null"         json:"event_id"`
	Name     string `gorm:"type:varchar(100);not null" json:"name"`
	LeaderID string `gorm:"type:uuid;not null"         json:"leader_id"`
	BaseModel
}

func (Team) TableName() string { return "teams" }

func (t *Team) BeforeCreate(*gorm.DB) error {
	ensureID(&t.TeamID)
	return nil
}
