package model

import (
	"time"

	"gorm.io/gorm"
)

// RoundType 轮次类型
type RoundType string

const (
	RoundTypePreliminary RoundType = "preliminary"
	RoundTypeSemifinal   RoundType = "semifinal"
	RoundTypeFinal       RoundType = "final"
	RoundTypeOther       RoundType = "other"
)

func (t RoundType) IsValid() bool {
	switch t {
	case RoundTypePreliminary, RoundTypeSemifinal, RoundTypeFinal, RoundTypeOther:
		return true
	default:
		return false
	}
}

func (t RoundType) String() string { return string(t) }

// RoundStatus 轮次状态
type RoundStatus string

const (
	RoundStatusScheduled RoundStatus = "scheduled"
	RoundStatusOngoing   RoundStatus = "ongoing"
	RoundStatusCompleted RoundStatus = "completed"
	RoundStatusCancelled RoundStatus = "cancelled"
)

func (s RoundStatus) IsValid() bool {
	switch s {
	case RoundStatusScheduled, RoundStatusOngoing, RoundStatusCompleted, RoundStatusCancelled:
		return true
	default:
		return false
	}
}

func (s RoundStatus) String() string { return string(s) }

// Round 赛事轮次 — 对应 rounds
// 不变式：StartTime < EndTime，且 [StartTime, EndTime] 落在所属赛事起止时间内
type Round struct {
	RoundID         string      `gorm:"type:uuid;primaryKey"                               json:"round_id"`
	EventID         string      `gorm:"type:uuid;not null;index:idx_rounds_event_time,priority:1" json:"event_id"`
	Name            string      `gorm:"type:varchar(100);not null"                         json:"name"`
	Type            RoundType   `gorm:"type:varchar(20);not null"                          json:"type"`
	Description     string      `gorm:"type:text;not null;default:''"                      json:"description"`
	StartTime       time.Time   `gorm:"not null;index:idx_rounds_event_time,priority:2"    json:"start_time"`
	EndTime         time.Time   `gorm:"not null"                                           json:"end_time"`
	Location        string      `gorm:"type:varchar(200);not null;default:''"              json:"location"`
	JudgesRequired  *int        `json:"judges_required,omitempty"`
	MaxParticipants *int        `json:"max_participants,omitempty"`
	Status          RoundStatus `gorm:"type:varchar(20);not null;default:'scheduled'"      json:"status"`
	VersionedModel

	// 关联
	Event *Event `gorm:"foreignKey:EventID;references:EventID" json:"event,omitempty"`
}

func (Round) TableName() string { return "rounds" }

func (r *Round) BeforeCreate(*gorm.DB) error {
	ensureID(&r.RoundID)
	return nil
}

// Overlaps 严格重叠判断：首尾相接不算冲突
func (r *Round) Overlaps(start, end time.Time) bool {
	return r.StartTime.Before(end) && start.Before(r.EndTime)
}
