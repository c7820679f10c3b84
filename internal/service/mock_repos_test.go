package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/config"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/dto"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/repository"
	pkgerrors "github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/errors"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/metrics"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock EventRepository ──

type mockEventRepo struct {
	events map[string]*model.Event
}

func newMockEventRepo() *mockEventRepo {
	return &mockEventRepo{events: make(map[string]*model.Event)}
}

func (m *mockEventRepo) GetByID(_ context.Context, id string) (*model.Event, error) {
	if e, ok := m.events[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock TeamRepository ──

type mockTeamRepo struct {
	teams map[string]*model.Team
}

func newMockTeamRepo() *mockTeamRepo {
	return &mockTeamRepo{teams: make(map[string]*model.Team)}
}

func (m *mockTeamRepo) GetByID(_ context.Context, id string) (*model.Team, error) {
	if t, ok := m.teams[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// ── Mock RoundRepository ──

type mockRoundRepo struct {
	rounds map[string]*model.Round
}

func newMockRoundRepo() *mockRoundRepo {
	return &mockRoundRepo{rounds: make(map[string]*model.Round)}
}

func (m *mockRoundRepo) Create(_ context.Context, round *model.Round) error {
	if round.RoundID == "" {
		round.RoundID = "round-" + round.Name
	}
	cp := *round
	m.rounds[round.RoundID] = &cp
	return nil
}

func (m *mockRoundRepo) GetByID(_ context.Context, id string) (*model.Round, error) {
	if r, ok := m.rounds[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRoundRepo) ListByEvent(_ context.Context, eventID string) ([]model.Round, error) {
	var result []model.Round
	for _, r := range m.rounds {
		if r.EventID == eventID {
			result = append(result, *r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].StartTime.Before(result[j].StartTime) })
	return result, nil
}

func (m *mockRoundRepo) FindConflicts(ctx context.Context, eventID string, start, end time.Time, excludeID string) ([]model.Round, error) {
	all, _ := m.ListByEvent(ctx, eventID)
	var result []model.Round
	for i := range all {
		if all[i].RoundID == excludeID {
			continue
		}
		if all[i].Overlaps(start, end) {
			result = append(result, all[i])
		}
	}
	return result, nil
}

func (m *mockRoundRepo) Update(_ context.Context, round *model.Round) error {
	stored, ok := m.rounds[round.RoundID]
	if !ok || stored.Version != round.Version {
		return pkgerrors.ErrOptimisticLock
	}
	round.Version++
	cp := *round
	m.rounds[round.RoundID] = &cp
	return nil
}

func (m *mockRoundRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.rounds[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.rounds, id)
	return nil
}

// ── Mock AssignmentRepository ──

type mockAssignmentRepo struct {
	assignments map[string]*model.Assignment
	order       []string
	seq         int
	rounds      *mockRoundRepo
	users       *mockUserRepo
	teams       *mockTeamRepo

	// 故障注入：按分配 ID 返回错误
	failUpdateStatus map[string]error
}

func newMockAssignmentRepo(rounds *mockRoundRepo, users *mockUserRepo, teams *mockTeamRepo) *mockAssignmentRepo {
	return &mockAssignmentRepo{
		assignments:      make(map[string]*model.Assignment),
		rounds:           rounds,
		users:            users,
		teams:            teams,
		failUpdateStatus: make(map[string]error),
	}
}

func sameSubject(a *model.Assignment, userID, teamID *string) bool {
	if userID != nil {
		return a.UserID != nil && *a.UserID == *userID
	}
	return a.TeamID != nil && teamID != nil && *a.TeamID == *teamID
}

func (m *mockAssignmentRepo) Create(_ context.Context, a *model.Assignment) error {
	for _, existing := range m.assignments {
		if existing.RoundID == a.RoundID && existing.Role == a.Role && sameSubject(existing, a.UserID, a.TeamID) {
			return gorm.ErrDuplicatedKey
		}
	}
	if a.AssignmentID == "" {
		m.seq++
		a.AssignmentID = fmt.Sprintf("asg-%d", m.seq)
	}
	cp := *a
	cp.User, cp.Team, cp.Round = nil, nil, nil
	m.assignments[a.AssignmentID] = &cp
	m.order = append(m.order, a.AssignmentID)
	return nil
}

// hydrate 模拟 Preload
func (m *mockAssignmentRepo) hydrate(a *model.Assignment) model.Assignment {
	cp := *a
	if cp.UserID != nil {
		cp.User = m.users.users[*cp.UserID]
	}
	if cp.TeamID != nil {
		cp.Team = m.teams.teams[*cp.TeamID]
	}
	if r, ok := m.rounds.rounds[cp.RoundID]; ok {
		rc := *r
		cp.Round = &rc
	}
	return cp
}

func (m *mockAssignmentRepo) GetByID(_ context.Context, id string) (*model.Assignment, error) {
	if a, ok := m.assignments[id]; ok {
		cp := m.hydrate(a)
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) FindByRoundAndUser(_ context.Context, roundID, userID string, role model.AssignmentRole) (*model.Assignment, error) {
	for _, id := range m.order {
		a := m.assignments[id]
		if a != nil && a.RoundID == roundID && a.Role == role && a.UserID != nil && *a.UserID == userID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) FindByRoundAndTeam(_ context.Context, roundID, teamID string, role model.AssignmentRole) (*model.Assignment, error) {
	for _, id := range m.order {
		a := m.assignments[id]
		if a != nil && a.RoundID == roundID && a.Role == role && a.TeamID != nil && *a.TeamID == teamID {
			cp := *a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAssignmentRepo) ListByRound(_ context.Context, roundID string, role *model.AssignmentRole) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, id := range m.order {
		a := m.assignments[id]
		if a == nil || a.RoundID != roundID {
			continue
		}
		if role != nil && a.Role != *role {
			continue
		}
		result = append(result, m.hydrate(a))
	}
	return result, nil
}

func (m *mockAssignmentRepo) ListByUserAndEvent(_ context.Context, userID, eventID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, id := range m.order {
		a := m.assignments[id]
		if a == nil || a.UserID == nil || *a.UserID != userID {
			continue
		}
		if r, ok := m.rounds.rounds[a.RoundID]; ok && r.EventID == eventID {
			result = append(result, m.hydrate(a))
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) CountByRole(_ context.Context, roundID string, role model.AssignmentRole) (int64, error) {
	var n int64
	for _, a := range m.assignments {
		if a.RoundID == roundID && a.Role == role {
			n++
		}
	}
	return n, nil
}

func (m *mockAssignmentRepo) CheckAvailability(_ context.Context, userID string, start, end time.Time, excludeRoundID string) ([]model.Assignment, error) {
	var result []model.Assignment
	for _, id := range m.order {
		a := m.assignments[id]
		if a == nil || a.UserID == nil || *a.UserID != userID || a.RoundID == excludeRoundID {
			continue
		}
		r, ok := m.rounds.rounds[a.RoundID]
		if ok && r.Overlaps(start, end) {
			result = append(result, m.hydrate(a))
		}
	}
	return result, nil
}

func (m *mockAssignmentRepo) Update(_ context.Context, a *model.Assignment) error {
	stored, ok := m.assignments[a.AssignmentID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Status = a.Status
	stored.Feedback = a.Feedback
	return nil
}

func (m *mockAssignmentRepo) UpdateStatus(_ context.Context, id string, status model.AssignmentStatus) error {
	if err := m.failUpdateStatus[id]; err != nil {
		return err
	}
	stored, ok := m.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Status = status
	return nil
}

func (m *mockAssignmentRepo) ApplyScore(_ context.Context, id string, s repository.ScoreUpdate) error {
	stored, ok := m.assignments[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	score := s.Score
	stored.Score = &score
	stored.TechnicalScore = s.TechnicalScore
	stored.PresentationScore = s.PresentationScore
	stored.CreativityScore = s.CreativityScore
	stored.ImplementationScore = s.ImplementationScore
	stored.JudgeComments = s.JudgeComments
	return nil
}

func (m *mockAssignmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.assignments, id)
	return nil
}

func (m *mockAssignmentRepo) DeleteByRound(_ context.Context, roundID string) error {
	for id, a := range m.assignments {
		if a.RoundID == roundID {
			delete(m.assignments, id)
		}
	}
	return nil
}

// byUser 测试辅助：按 (round, user, role) 读取存储中的记录
func (m *mockAssignmentRepo) byUser(roundID, userID string, role model.AssignmentRole) *model.Assignment {
	for _, a := range m.assignments {
		if a.RoundID == roundID && a.Role == role && a.UserID != nil && *a.UserID == userID {
			return a
		}
	}
	return nil
}

// ── Mock JudgeAssignmentRepository ──

type mockJudgeAssignmentRepo struct {
	items map[string]*model.JudgeAssignment
	order []string
	seq   int
	users *mockUserRepo
}

func newMockJudgeAssignmentRepo(users *mockUserRepo) *mockJudgeAssignmentRepo {
	return &mockJudgeAssignmentRepo{items: make(map[string]*model.JudgeAssignment), users: users}
}

func sameRound(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func (m *mockJudgeAssignmentRepo) Create(_ context.Context, ja *model.JudgeAssignment) error {
	for _, existing := range m.items {
		if existing.EventID == ja.EventID && existing.JudgeID == ja.JudgeID && sameRound(existing.RoundID, ja.RoundID) {
			return gorm.ErrDuplicatedKey
		}
	}
	if ja.JudgeAssignmentID == "" {
		m.seq++
		ja.JudgeAssignmentID = fmt.Sprintf("ja-%d", m.seq)
	}
	cp := *ja
	cp.Judge = nil
	m.items[ja.JudgeAssignmentID] = &cp
	m.order = append(m.order, ja.JudgeAssignmentID)
	return nil
}

func (m *mockJudgeAssignmentRepo) GetByID(_ context.Context, id string) (*model.JudgeAssignment, error) {
	if ja, ok := m.items[id]; ok {
		cp := *ja
		cp.Judge = m.users.users[cp.JudgeID]
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJudgeAssignmentRepo) Find(_ context.Context, eventID string, roundID *string, judgeID string) (*model.JudgeAssignment, error) {
	for _, id := range m.order {
		ja := m.items[id]
		if ja != nil && ja.EventID == eventID && ja.JudgeID == judgeID && sameRound(ja.RoundID, roundID) {
			cp := *ja
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockJudgeAssignmentRepo) ListByEvent(_ context.Context, eventID string) ([]model.JudgeAssignment, error) {
	var result []model.JudgeAssignment
	for _, id := range m.order {
		ja := m.items[id]
		if ja != nil && ja.EventID == eventID {
			cp := *ja
			cp.Judge = m.users.users[cp.JudgeID]
			result = append(result, cp)
		}
	}
	return result, nil
}

func (m *mockJudgeAssignmentRepo) UpdateStatus(_ context.Context, id string, status model.JudgeAssignmentStatus) error {
	ja, ok := m.items[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	ja.Status = status
	return nil
}

func (m *mockJudgeAssignmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockJudgeAssignmentRepo) DeleteByRound(_ context.Context, roundID string) error {
	for id, ja := range m.items {
		if ja.RoundID != nil && *ja.RoundID == roundID {
			delete(m.items, id)
		}
	}
	return nil
}

// ── Mock Cache ──

type mockCache struct {
	data    map[string][]byte
	deleted []string
	failGet error
}

func newMockCache() *mockCache {
	return &mockCache{data: make(map[string][]byte)}
}

func (c *mockCache) GetJSON(_ context.Context, key string, dest any) (bool, error) {
	if c.failGet != nil {
		return false, c.failGet
	}
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *mockCache) SetJSON(_ context.Context, key string, value any, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *mockCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

// ═══════════════════════════════════════════════════════════
// 测试夹具
// ═══════════════════════════════════════════════════════════

var testEventStart = time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)

var (
	adminCaller     = dto.Caller{UserID: "admin-1", Role: model.UserRoleAdmin}
	organizerCaller = dto.Caller{UserID: "org-1", Role: model.UserRoleOrganizer}
	judgeCaller     = dto.Caller{UserID: "judge-1", Role: model.UserRoleJudge}
)

func participantCaller(id string) dto.Caller {
	return dto.Caller{UserID: id, Role: model.UserRoleParticipant}
}

type mockStore struct {
	users       *mockUserRepo
	events      *mockEventRepo
	teams       *mockTeamRepo
	rounds      *mockRoundRepo
	assignments *mockAssignmentRepo
	judges      *mockJudgeAssignmentRepo
}

// setupTestService 构建基于 mock 仓储的 Service 聚合
//
// 预置：赛事 evt-1（org-1 组织，2026-05-01 起 72 小时）、evt-2（org-2 组织），
// 用户 admin-1 / org-1 / org-2 / judge-1 / judge-2 / p-1 ~ p-5，队伍 team-1（p-1 带领，属于 evt-1）。
func setupTestService(cache Cache) (*Service, *mockStore) {
	users := newMockUserRepo()
	events := newMockEventRepo()
	teams := newMockTeamRepo()
	rounds := newMockRoundRepo()
	st := &mockStore{
		users:       users,
		events:      events,
		teams:       teams,
		rounds:      rounds,
		assignments: newMockAssignmentRepo(rounds, users, teams),
		judges:      newMockJudgeAssignmentRepo(users),
	}

	addUser := func(id string, role model.UserRole) {
		users.users[id] = &model.User{UserID: id, Name: "用户 " + id, Role: role}
	}
	addUser("admin-1", model.UserRoleAdmin)
	addUser("org-1", model.UserRoleOrganizer)
	addUser("org-2", model.UserRoleOrganizer)
	addUser("judge-1", model.UserRoleJudge)
	addUser("judge-2", model.UserRoleJudge)
	for i := 1; i <= 5; i++ {
		addUser(fmt.Sprintf("p-%d", i), model.UserRoleParticipant)
	}

	events.events["evt-1"] = &model.Event{
		EventID: "evt-1", OrganizerID: "org-1", Title: "黑客松",
		StartDate: testEventStart, EndDate: testEventStart.Add(72 * time.Hour),
	}
	events.events["evt-2"] = &model.Event{
		EventID: "evt-2", OrganizerID: "org-2", Title: "设计大赛",
		StartDate: testEventStart, EndDate: testEventStart.Add(72 * time.Hour),
	}
	teams.teams["team-1"] = &model.Team{TeamID: "team-1", EventID: "evt-1", Name: "闪电队", LeaderID: "p-1"}

	repo := &repository.Repository{
		User:            users,
		Event:           events,
		Team:            teams,
		Round:           rounds,
		Assignment:      st.assignments,
		JudgeAssignment: st.judges,
	}
	cfg := &config.Config{Judging: config.JudgingConfig{LeaderboardCacheTTL: time.Minute}}
	svc := NewService(cfg, repo, cache, metrics.New(), noop.NewTracerProvider().Tracer("test"), zap.NewNop())
	return svc, st
}

// seedRound 直接写入一个轮次：从赛事开始偏移 offset，持续 length
func (st *mockStore) seedRound(id, eventID string, offset, length time.Duration) *model.Round {
	r := &model.Round{
		RoundID:   id,
		EventID:   eventID,
		Name:      id,
		Type:      model.RoundTypePreliminary,
		StartTime: testEventStart.Add(offset),
		EndTime:   testEventStart.Add(offset + length),
		Status:    model.RoundStatusScheduled,
	}
	r.Version = 1
	_ = st.rounds.Create(context.Background(), r)
	return st.rounds.rounds[id]
}

// seedParticipant 直接写入选手分配并返回分配 ID
func (st *mockStore) seedParticipant(roundID, userID string) string {
	a := &model.Assignment{
		RoundID: roundID,
		UserID:  strPtr(userID),
		Role:    model.AssignmentRoleParticipant,
		Status:  model.AssignmentStatusAssigned,
	}
	_ = st.assignments.Create(context.Background(), a)
	return a.AssignmentID
}

func (st *mockStore) seedJudge(roundID, userID string) string {
	a := &model.Assignment{
		RoundID: roundID,
		UserID:  strPtr(userID),
		Role:    model.AssignmentRoleJudge,
		Status:  model.AssignmentStatusAssigned,
	}
	_ = st.assignments.Create(context.Background(), a)
	return a.AssignmentID
}

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }
