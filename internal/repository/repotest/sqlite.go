// Package repotest 提供基于内存 SQLite 的测试数据库与种子数据
package repotest

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/database"
)

// OpenSQLite 打开独立的内存库并按模型建表
// 连接数限制为 1，否则每个新连接都会得到一个空库
func OpenSQLite(t testing.TB) *gorm.DB {
	t.Helper()

	cfg := database.GormConfig(gormlogger.Silent)
	cfg.DisableForeignKeyConstraintWhenMigrating = true

	db, err := gorm.Open(sqlite.Open(":memory:"), cfg)
	if err != nil {
		t.Fatalf("打开 SQLite 失败: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("获取 sql.DB 失败: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(
		&model.User{},
		&model.Event{},
		&model.Team{},
		&model.Round{},
		&model.Assignment{},
		&model.JudgeAssignment{},
	); err != nil {
		t.Fatalf("AutoMigrate 失败: %v", err)
	}
	return db
}

// ── 种子数据 ──

// EventStart 测试赛事的开始时间，赛事持续 3 天
var EventStart = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

func SeedUser(t testing.TB, db *gorm.DB, name string, role model.UserRole) *model.User {
	t.Helper()
	u := &model.User{Name: name, Email: name + "@example.com", Role: role}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("创建用户失败: %v", err)
	}
	return u
}

func SeedEvent(t testing.TB, db *gorm.DB, organizerID string) *model.Event {
	t.Helper()
	e := &model.Event{
		OrganizerID: organizerID,
		Title:       "黑客马拉松",
		StartDate:   EventStart,
		EndDate:     EventStart.Add(72 * time.Hour),
		Location:    "主会场",
		Status:      "published",
	}
	if err := db.Create(e).Error; err != nil {
		t.Fatalf("创建赛事失败: %v", err)
	}
	return e
}

func SeedTeam(t testing.TB, db *gorm.DB, eventID, leaderID, name string) *model.Team {
	t.Helper()
	team := &model.Team{EventID: eventID, LeaderID: leaderID, Name: name}
	if err := db.Create(team).Error; err != nil {
		t.Fatalf("创建队伍失败: %v", err)
	}
	return team
}

// SeedRound 创建轮次，offset/length 相对 EventStart
func SeedRound(t testing.TB, db *gorm.DB, eventID, name string, offset, length time.Duration) *model.Round {
	t.Helper()
	r := &model.Round{
		EventID:   eventID,
		Name:      name,
		Type:      model.RoundTypePreliminary,
		StartTime: EventStart.Add(offset),
		EndTime:   EventStart.Add(offset + length),
		Status:    model.RoundStatusScheduled,
		VersionedModel: model.VersionedModel{
			Version: 1,
		},
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("创建轮次失败: %v", err)
	}
	return r
}

func SeedAssignment(t testing.TB, db *gorm.DB, roundID string, userID *string, teamID *string, role model.AssignmentRole) *model.Assignment {
	t.Helper()
	a := &model.Assignment{
		RoundID: roundID,
		UserID:  userID,
		TeamID:  teamID,
		Role:    role,
		Status:  model.AssignmentStatusAssigned,
	}
	if err := db.Create(a).Error; err != nil {
		t.Fatalf("创建分配失败: %v", err)
	}
	return a
}
