package model

import "gorm.io/gorm"

// JudgeAssignmentStatus 赛事评委邀请状态
type JudgeAssignmentStatus string

const (
	JudgeAssignmentStatusPending   JudgeAssignmentStatus = "pending"
	JudgeAssignmentStatusAccepted  JudgeAssignmentStatus = "accepted"
	JudgeAssignmentStatusDeclined  JudgeAssignmentStatus = "declined"
	JudgeAssignmentStatusCompleted JudgeAssignmentStatus = "completed"
)

func (s JudgeAssignmentStatus) IsValid() bool {
	switch s {
	case JudgeAssignmentStatusPending, JudgeAssignmentStatusAccepted,
		JudgeAssignmentStatusDeclined, JudgeAssignmentStatusCompleted:
		return true
	default:
		return false
	}
}

func (s JudgeAssignmentStatus) String() string { return string(s) }

// JudgeAssignment 赛事评委 — 对应 judge_assignments
// RoundID 为空表示赛事级评委；(event_id, round_id, judge_id) 唯一
type JudgeAssignment struct {
	JudgeAssignmentID string                `gorm:"type:uuid;primaryKey"                                                                                         json:"judge_assignment_id"`
	EventID           string                `gorm:"type:uuid;not null;uniqueIndex:uk_judge_assignment,priority:1;uniqueIndex:uk_judge_assignment_event_wide,priority:1,where:round_id IS NULL" json:"event_id"`
	RoundID           *string               `gorm:"type:uuid;uniqueIndex:uk_judge_assignment,priority:2"                                                         json:"round_id,omitempty"`
	JudgeID           string                `gorm:"type:uuid;not null;uniqueIndex:uk_judge_assignment,priority:3;uniqueIndex:uk_judge_assignment_event_wide,priority:2,where:round_id IS NULL" json:"judge_id"`
	Status            JudgeAssignmentStatus `gorm:"type:varchar(20);not null;default:'pending'"                                                                  json:"status"`
	BaseModel

	// 关联
	Judge *User  `gorm:"foreignKey:JudgeID;references:UserID"  json:"judge,omitempty"`
	Round *Round `gorm:"foreignKey:RoundID;references:RoundID" json:"round,omitempty"`
}

func (JudgeAssignment) TableName() string { return "judge_assignments" }

func (j *JudgeAssignment) BeforeCreate(*gorm.DB) error {
	ensureID(&j.JudgeAssignmentID)
	return nil
}
