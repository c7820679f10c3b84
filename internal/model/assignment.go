package model

import "gorm.io/gorm"

// AssignmentRole 轮次分配角色，只有选手与评委两种
type AssignmentRole string

const (
	AssignmentRoleParticipant AssignmentRole = "participant"
	AssignmentRoleJudge       AssignmentRole = "judge"
)

func (r AssignmentRole) IsValid() bool {
	switch r {
	case AssignmentRoleParticipant, AssignmentRoleJudge:
		return true
	default:
		return false
	}
}

func (r AssignmentRole) String() string { return string(r) }

// AssignmentStatus 轮次分配状态
type AssignmentStatus string

const (
	AssignmentStatusAssigned   AssignmentStatus = "assigned"
	AssignmentStatusAccepted   AssignmentStatus = "accepted"
	AssignmentStatusDeclined   AssignmentStatus = "declined"
	AssignmentStatusCompleted  AssignmentStatus = "completed"
	AssignmentStatusAdvanced   AssignmentStatus = "advanced"
	AssignmentStatusEliminated AssignmentStatus = "eliminated"
)

func (s AssignmentStatus) IsValid() bool {
	switch s {
	case AssignmentStatusAssigned, AssignmentStatusAccepted, AssignmentStatusDeclined,
		AssignmentStatusCompleted, AssignmentStatusAdvanced, AssignmentStatusEliminated:
		return true
	default:
		return false
	}
}

func (s AssignmentStatus) String() string { return string(s) }

// Assignment 轮次分配 — 对应 round_assignments
// 选手可以是个人（UserID）或队伍（TeamID），评委只能是个人
// (round_id, user_id, role) 与 (round_id, team_id, role) 均唯一
type Assignment struct {
	AssignmentID        string           `gorm:"type:uuid;primaryKey"                                         json:"assignment_id"`
	RoundID             string           `gorm:"type:uuid;not null;uniqueIndex:uk_round_assignment_user,priority:1;uniqueIndex:uk_round_assignment_team,priority:1" json:"round_id"`
	UserID              *string          `gorm:"type:uuid;uniqueIndex:uk_round_assignment_user,priority:2"    json:"user_id,omitempty"`
	TeamID              *string          `gorm:"type:uuid;uniqueIndex:uk_round_assignment_team,priority:2"    json:"team_id,omitempty"`
	Role                AssignmentRole   `gorm:"type:varchar(20);not null;uniqueIndex:uk_round_assignment_user,priority:3;uniqueIndex:uk_round_assignment_team,priority:3" json:"role"`
	Status              AssignmentStatus `gorm:"type:varchar(20);not null;default:'assigned'"                 json:"status"`
	Score               *float64         `gorm:"type:numeric(6,2)"                                            json:"score"`
	TechnicalScore      *float64         `gorm:"type:numeric(6,2)"                                            json:"technical_score"`
	PresentationScore   *float64         `gorm:"type:numeric(6,2)"                                            json:"presentation_score"`
	CreativityScore     *float64         `gorm:"type:numeric(6,2)"                                            json:"creativity_score"`
	ImplementationScore *float64         `gorm:"type:numeric(6,2)"                                            json:"implementation_score"`
	JudgeComments       *string          `gorm:"type:text"                                                    json:"judge_comments"`
	Feedback            *string          `gorm:"type:text"                                                    json:"feedback"`
	BaseModel

	// 关联
	User  *User  `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
	Team  *Team  `gorm:"foreignKey:TeamID;references:TeamID" json:"team,omitempty"`
	Round *Round `gorm:"foreignKey:RoundID;references:RoundID" json:"round,omitempty"`
}

func (Assignment) TableName() string { return "round_assignments" }

func (a *Assignment) BeforeCreate(*gorm.DB) error {
	ensureID(&a.AssignmentID)
	return nil
}

// SubjectID 选手标识：个人选手返回 user_id，队伍返回 team_id
func (a *Assignment) SubjectID() string {
	if a.TeamID != nil {
		return *a.TeamID
	}
	if a.UserID != nil {
		return *a.UserID
	}
	return ""
}
