package model

import (
	"time"

	"gorm.io/gorm"
)

// Event 赛事表 — 对应 events（只读；起止时间约束轮次排期）
type Event struct {
	EventID     string    `gorm:"type:uuid;primaryKey"                     json:"event_id"`
	OrganizerID string    `gorm:"type:uuid;not null"                       json:"organizer_id"`
	Title       string    `gorm:"type:varchar(200);not null"               json:"title"`
	StartDate   time.Time `gorm:"not null"                                 json:"start_date"`
	EndDate     time.Time `gorm:"not null"                                 json:"end_date"`
	Location    string    `gorm:"type:varchar(200);not null;default:''"    json:"location"`
	Status      string    `gorm:"type:varchar(20);not null;default:'published'" json:"status"`
	BaseModel
}

func (Event) TableName() string { return "events" }

func (e *Event) BeforeCreate(*gorm.DB) error {
	ensureID(&e.EventID)
	return nil
}

// Contains 区间 [start, end] 是否完全落在赛事起止时间内（含边界）
func (e *Event) Contains(start, end time.Time) bool {
	return !start.Before(e.StartDate) && !end.After(e.EndDate)
}

// IsOrganizedBy 判断用户是否为赛事组织者
func (e *Event) IsOrganizedBy(userID string) bool {
	return e.OrganizerID == userID
}
