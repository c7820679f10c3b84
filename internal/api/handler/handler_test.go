package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/dto"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/service"
	"github.com/Schwifty101/Event-Management-System---MERN-sub001/pkg/response"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock RoundService ──

type mockRoundService struct {
	createResult *dto.RoundResponse
	createErr    error
	getResult    *dto.RoundResponse
	getErr       error
	listResult   []dto.RoundResponse
	listErr      error
	updateResult *dto.RoundResponse
	updateErr    error
	deleteErr    error
	importResult *dto.ImportRoundsResponse
	importErr    error

	lastCaller  dto.Caller
	lastEventID string
	importBody  string
}

func (m *mockRoundService) Create(_ context.Context, eventID string, _ *dto.CreateRoundRequest, caller dto.Caller) (*dto.RoundResponse, error) {
	m.lastEventID, m.lastCaller = eventID, caller
	return m.createResult, m.createErr
}
func (m *mockRoundService) Get(_ context.Context, _ string) (*dto.RoundResponse, error) {
	return m.getResult, m.getErr
}
func (m *mockRoundService) ListByEvent(_ context.Context, eventID string) ([]dto.RoundResponse, error) {
	m.lastEventID = eventID
	return m.listResult, m.listErr
}
func (m *mockRoundService) Update(_ context.Context, _ string, _ *dto.UpdateRoundRequest, caller dto.Caller) (*dto.RoundResponse, error) {
	m.lastCaller = caller
	return m.updateResult, m.updateErr
}
func (m *mockRoundService) Delete(_ context.Context, _ string, caller dto.Caller) error {
	m.lastCaller = caller
	return m.deleteErr
}
func (m *mockRoundService) ImportCalendar(_ context.Context, eventID string, r io.Reader, caller dto.Caller) (*dto.ImportRoundsResponse, error) {
	m.lastEventID, m.lastCaller = eventID, caller
	b, _ := io.ReadAll(r)
	m.importBody = string(b)
	return m.importResult, m.importErr
}

// ── Mock JudgingService ──

type mockJudgingService struct {
	assignResult   *dto.JudgeAssignmentResponse
	assignErr      error
	judgesResult   []dto.JudgeAssignmentResponse
	respondResult  *dto.JudgeAssignmentResponse
	respondErr     error
	removeErr      error
	createResult   *dto.CreateAssignmentResponse
	createErr      error
	listResult     []dto.AssignmentResponse
	listErr        error
	availResult    *dto.AvailabilityResponse
	updateResult   *dto.AssignmentResponse
	updateErr      error
	deleteErr      error
	scoresResult   *dto.SubmitScoresResponse
	scoresErr      error
	winnersResult  *dto.DeclareWinnersResponse
	winnersErr     error
	lastRole       string
	lastAvailUser  string
	lastScoresReq  *dto.SubmitScoresRequest
	lastWinnersReq *dto.DeclareWinnersRequest
	lastCaller     dto.Caller
}

func (m *mockJudgingService) AssignJudge(_ context.Context, _ string, _ *dto.AssignJudgeRequest, caller dto.Caller) (*dto.JudgeAssignmentResponse, error) {
	m.lastCaller = caller
	return m.assignResult, m.assignErr
}
func (m *mockJudgingService) ListEventJudges(_ context.Context, _ string) ([]dto.JudgeAssignmentResponse, error) {
	return m.judgesResult, nil
}
func (m *mockJudgingService) RespondJudgeAssignment(_ context.Context, _ string, _ *dto.RespondJudgeAssignmentRequest, _ dto.Caller) (*dto.JudgeAssignmentResponse, error) {
	return m.respondResult, m.respondErr
}
func (m *mockJudgingService) RemoveJudgeAssignment(_ context.Context, _ string, _ dto.Caller) error {
	return m.removeErr
}
func (m *mockJudgingService) CreateRoundAssignment(_ context.Context, _ string, _ *dto.CreateAssignmentRequest, _ dto.Caller) (*dto.CreateAssignmentResponse, error) {
	return m.createResult, m.createErr
}
func (m *mockJudgingService) ListRoundAssignments(_ context.Context, _ string, role string) ([]dto.AssignmentResponse, error) {
	m.lastRole = role
	return m.listResult, m.listErr
}
func (m *mockJudgingService) ListUserEventAssignments(_ context.Context, _ string, caller dto.Caller) ([]dto.AssignmentResponse, error) {
	m.lastCaller = caller
	return m.listResult, m.listErr
}
func (m *mockJudgingService) CheckAvailability(_ context.Context, _ string, userID string) (*dto.AvailabilityResponse, error) {
	m.lastAvailUser = userID
	return m.availResult, nil
}
func (m *mockJudgingService) UpdateRoundAssignment(_ context.Context, _ string, _ *dto.UpdateAssignmentRequest, _ dto.Caller) (*dto.AssignmentResponse, error) {
	return m.updateResult, m.updateErr
}
func (m *mockJudgingService) DeleteRoundAssignment(_ context.Context, _ string, _ dto.Caller) error {
	return m.deleteErr
}
func (m *mockJudgingService) SubmitScores(_ context.Context, _ string, req *dto.SubmitScoresRequest, caller dto.Caller) (*dto.SubmitScoresResponse, error) {
	m.lastScoresReq, m.lastCaller = req, caller
	return m.scoresResult, m.scoresErr
}
func (m *mockJudgingService) DeclareWinners(_ context.Context, _ string, req *dto.DeclareWinnersRequest, _ dto.Caller) (*dto.DeclareWinnersResponse, error) {
	m.lastWinnersReq = req
	return m.winnersResult, m.winnersErr
}

// ── Mock LeaderboardService ──

type mockLeaderboardService struct {
	result *dto.LeaderboardResponse
	err    error
}

func (m *mockLeaderboardService) GetLeaderboard(_ context.Context, _ string) (*dto.LeaderboardResponse, error) {
	return m.result, m.err
}
func (m *mockLeaderboardService) Invalidate(_ context.Context, _ ...string) {}

// ── Mock ExportService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportLeaderboard(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportEventSchedule(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

// ═══════════════════════════════════════════════════════════
// 测试工具
// ═══════════════════════════════════════════════════════════

const (
	uuidP1 = "11111111-1111-4111-8111-111111111111"
	uuidP2 = "22222222-2222-4222-8222-222222222222"
	uuidR2 = "33333333-3333-4333-8333-333333333333"
)

// withAuth 模拟 JWT 中间件注入的身份
func withAuth(userID, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("user_id", userID)
			c.Set("role", role)
		}
		c.Next()
	}
}

func doRequest(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("响应不是合法 JSON: %v\n%s", err, w.Body.String())
	}
	return resp
}

// ═══════════════════════════════════════════════════════════
// Context Helper
// ═══════════════════════════════════════════════════════════

func TestMustGetCaller(t *testing.T) {
	cases := []struct {
		name   string
		userID string
		role   string
		want   int
	}{
		{"已认证", "u-1", "judge", http.StatusOK},
		{"缺少身份", "", "", http.StatusUnauthorized},
		{"未知角色", "u-1", "guest", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", withAuth(tc.userID, tc.role), func(c *gin.Context) {
				caller, ok := MustGetCaller(c)
				if !ok {
					return
				}
				c.String(http.StatusOK, caller.UserID+"/"+caller.Role.String())
			})
			w := doRequest(r, http.MethodGet, "/x", nil)
			if w.Code != tc.want {
				t.Fatalf("期望 %d，实际 %d", tc.want, w.Code)
			}
			if tc.want == http.StatusOK && w.Body.String() != "u-1/judge" {
				t.Errorf("调用方不符: %s", w.Body.String())
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// RoundHandler
// ═══════════════════════════════════════════════════════════

func roundEngine(svc *mockRoundService, userID, role string) *gin.Engine {
	h := NewRoundHandler(svc)
	r := gin.New()
	r.Use(withAuth(userID, role))
	r.GET("/events/:id/rounds", h.ListRounds)
	r.POST("/events/:id/rounds", h.CreateRound)
	r.POST("/events/:id/rounds/import", h.ImportRounds)
	r.GET("/rounds/:id", h.GetRound)
	r.PUT("/rounds/:id", h.UpdateRound)
	r.DELETE("/rounds/:id", h.DeleteRound)
	return r
}

func validRoundBody() map[string]any {
	return map[string]any{
		"name":       "初赛",
		"type":       "preliminary",
		"start_time": "2026-05-01T09:00:00Z",
		"end_time":   "2026-05-01T11:00:00Z",
	}
}

func TestCreateRound_Success(t *testing.T) {
	svc := &mockRoundService{createResult: &dto.RoundResponse{ID: "r-1", Name: "初赛"}}
	w := doRequest(roundEngine(svc, "org-1", "organizer"), http.MethodPost, "/events/evt-1/rounds", validRoundBody())

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}
	if svc.lastEventID != "evt-1" || svc.lastCaller.UserID != "org-1" {
		t.Errorf("路径参数或调用方未透传: %s / %+v", svc.lastEventID, svc.lastCaller)
	}
	if !strings.Contains(w.Body.String(), `"round_id":"r-1"`) {
		t.Errorf("响应应包含轮次: %s", w.Body.String())
	}
}

func TestCreateRound_BindingError(t *testing.T) {
	svc := &mockRoundService{}
	body := validRoundBody()
	delete(body, "name")

	w := doRequest(roundEngine(svc, "org-1", "organizer"), http.MethodPost, "/events/evt-1/rounds", body)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("期望 400，实际 %d", w.Code)
	}
	if resp := decode(t, w); resp.Code != 10001 {
		t.Errorf("期望业务码 10001，实际 %d", resp.Code)
	}
}

func TestCreateRound_Unauthenticated(t *testing.T) {
	w := doRequest(roundEngine(&mockRoundService{}, "", ""), http.MethodPost, "/events/evt-1/rounds", validRoundBody())
	if w.Code != http.StatusUnauthorized {
		t.Errorf("期望 401，实际 %d", w.Code)
	}
}

func TestCreateRound_ConflictCarriesDetails(t *testing.T) {
	conflictErr := service.ErrRoundScheduleConflict.WithDetails([]dto.RoundBrief{{ID: "r-0", Name: "热身赛"}})
	svc := &mockRoundService{createErr: conflictErr}

	w := doRequest(roundEngine(svc, "org-1", "organizer"), http.MethodPost, "/events/evt-1/rounds", validRoundBody())
	if w.Code != http.StatusConflict {
		t.Fatalf("期望 409，实际 %d", w.Code)
	}
	resp := decode(t, w)
	if resp.Code != 14006 {
		t.Errorf("期望业务码 14006，实际 %d", resp.Code)
	}
	if !strings.Contains(w.Body.String(), `"round_id":"r-0"`) {
		t.Errorf("冲突详情应列出已有轮次: %s", w.Body.String())
	}
}

func TestRoundHandler_ErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"不存在", service.ErrRoundNotFound, http.StatusNotFound},
		{"无权限", service.ErrForbidden, http.StatusForbidden},
		{"校验失败", service.ErrInvalidTimeRange, http.StatusBadRequest},
		{"未知错误", errors.New("db down"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &mockRoundService{getErr: tc.err, deleteErr: tc.err}
			r := roundEngine(svc, "admin-1", "admin")

			if w := doRequest(r, http.MethodGet, "/rounds/r-1", nil); w.Code != tc.want {
				t.Errorf("GET 期望 %d，实际 %d", tc.want, w.Code)
			}
			if w := doRequest(r, http.MethodDelete, "/rounds/r-1", nil); w.Code != tc.want {
				t.Errorf("DELETE 期望 %d，实际 %d", tc.want, w.Code)
			}
		})
	}
}

func TestListRounds(t *testing.T) {
	svc := &mockRoundService{listResult: []dto.RoundResponse{{ID: "r-1"}, {ID: "r-2"}}}
	w := doRequest(roundEngine(svc, "p-1", "participant"), http.MethodGet, "/events/evt-9/rounds", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if svc.lastEventID != "evt-9" {
		t.Errorf("赛事 ID 未透传: %s", svc.lastEventID)
	}
	if !strings.Contains(w.Body.String(), `"list":[`) {
		t.Errorf("响应应为 list 包装: %s", w.Body.String())
	}
}

func TestUpdateRound_Validation(t *testing.T) {
	svc := &mockRoundService{updateErr: service.ErrInvalidRoundStatus}
	w := doRequest(roundEngine(svc, "org-1", "organizer"), http.MethodPut, "/rounds/r-1", map[string]any{"status": "weird"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}

	svc = &mockRoundService{updateResult: &dto.RoundResponse{ID: "r-1", Version: 3}}
	w = doRequest(roundEngine(svc, "org-1", "organizer"), http.MethodPut, "/rounds/r-1", map[string]any{"version": 0})
	if w.Code != http.StatusBadRequest {
		t.Errorf("version 必须 >= 1，期望 400，实际 %d", w.Code)
	}
}

func TestImportRounds_Multipart(t *testing.T) {
	svc := &mockRoundService{importResult: &dto.ImportRoundsResponse{Created: []dto.RoundResponse{{ID: "r-1"}}}}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, _ := mw.CreateFormFile("file", "rounds.ics")
	_, _ = fw.Write([]byte("BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"))
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/events/evt-1/rounds/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	roundEngine(svc, "org-1", "organizer").ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(svc.importBody, "BEGIN:VCALENDAR") {
		t.Errorf("服务应收到文件内容，实际 %q", svc.importBody)
	}
}

func TestImportRounds_RawBody(t *testing.T) {
	svc := &mockRoundService{importResult: &dto.ImportRoundsResponse{}}

	req := httptest.NewRequest(http.MethodPost, "/events/evt-1/rounds/import", strings.NewReader("BEGIN:VCALENDAR"))
	req.Header.Set("Content-Type", "text/calendar")
	w := httptest.NewRecorder()
	roundEngine(svc, "org-1", "organizer").ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d", w.Code)
	}
	if svc.importBody != "BEGIN:VCALENDAR" {
		t.Errorf("请求体未透传: %q", svc.importBody)
	}
}

func TestImportRounds_MissingFile(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/events/evt-1/rounds/import", nil)
	w := httptest.NewRecorder()
	roundEngine(&mockRoundService{}, "org-1", "organizer").ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// JudgingHandler
// ═══════════════════════════════════════════════════════════

func judgingEngine(svc *mockJudgingService, userID, role string) *gin.Engine {
	h := NewJudgingHandler(svc)
	r := gin.New()
	r.Use(withAuth(userID, role))
	r.POST("/events/:id/judges", h.AssignJudge)
	r.GET("/events/:id/judges", h.ListJudges)
	r.GET("/events/:id/my-assignments", h.ListMyAssignments)
	r.PUT("/judge-assignments/:id/respond", h.RespondJudgeAssignment)
	r.DELETE("/judge-assignments/:id", h.RemoveJudgeAssignment)
	r.POST("/rounds/:id/assignments", h.CreateAssignment)
	r.GET("/rounds/:id/assignments", h.ListAssignments)
	r.GET("/rounds/:id/availability", h.CheckAvailability)
	r.PUT("/assignments/:id", h.UpdateAssignment)
	r.DELETE("/assignments/:id", h.DeleteAssignment)
	r.POST("/rounds/:id/scores", h.SubmitScores)
	r.POST("/rounds/:id/winners", h.DeclareWinners)
	return r
}

func TestAssignJudge(t *testing.T) {
	svc := &mockJudgingService{assignResult: &dto.JudgeAssignmentResponse{ID: "ja-1"}}
	r := judgingEngine(svc, "org-1", "organizer")

	w := doRequest(r, http.MethodPost, "/events/evt-1/judges", map[string]any{"judge_id": uuidP1})
	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(r, http.MethodPost, "/events/evt-1/judges", map[string]any{"judge_id": "not-a-uuid"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("非法 judge_id 期望 400，实际 %d", w.Code)
	}

	svc.assignErr = service.ErrNotEligible
	w = doRequest(r, http.MethodPost, "/events/evt-1/judges", map[string]any{"judge_id": uuidP1})
	if w.Code != http.StatusBadRequest || decode(t, w).Code != 15005 {
		t.Errorf("非评委期望 400/15005，实际 %d %s", w.Code, w.Body.String())
	}
}

func TestRespondJudgeAssignment_ActionValidated(t *testing.T) {
	svc := &mockJudgingService{respondResult: &dto.JudgeAssignmentResponse{ID: "ja-1", Status: "accepted"}}
	r := judgingEngine(svc, "judge-1", "judge")

	if w := doRequest(r, http.MethodPut, "/judge-assignments/ja-1/respond", map[string]any{"action": "maybe"}); w.Code != http.StatusBadRequest {
		t.Errorf("非法 action 期望 400，实际 %d", w.Code)
	}
	if w := doRequest(r, http.MethodPut, "/judge-assignments/ja-1/respond", map[string]any{"action": "accept"}); w.Code != http.StatusOK {
		t.Errorf("期望 200，实际 %d", w.Code)
	}
}

func TestCreateAssignment_SoftConflict(t *testing.T) {
	svc := &mockJudgingService{createErr: service.ErrJudgeQuotaReached.WithDetails(map[string]int{"judges_required": 1, "current": 1})}
	w := doRequest(judgingEngine(svc, "org-1", "organizer"), http.MethodPost, "/rounds/r-1/assignments",
		map[string]any{"user_id": uuidP1, "role": "judge"})

	if w.Code != http.StatusConflict {
		t.Fatalf("期望 409，实际 %d", w.Code)
	}
	resp := decode(t, w)
	if resp.Code != 15013 || resp.Details == nil {
		t.Errorf("软冲突应带业务码与详情: %s", w.Body.String())
	}
}

func TestCreateAssignment_WarningsReturned(t *testing.T) {
	svc := &mockJudgingService{createResult: &dto.CreateAssignmentResponse{
		Assignment: dto.AssignmentResponse{ID: "asg-1"},
		Warnings:   []dto.ConflictWarning{{Code: 15014, Message: "时间冲突"}},
	}}
	w := doRequest(judgingEngine(svc, "org-1", "organizer"), http.MethodPost, "/rounds/r-1/assignments",
		map[string]any{"user_id": uuidP1, "role": "participant", "override": true})

	if w.Code != http.StatusCreated {
		t.Fatalf("期望 201，实际 %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"warnings":[{"code":15014`) {
		t.Errorf("响应应包含 warnings: %s", w.Body.String())
	}
}

func TestListAssignments_RoleFilter(t *testing.T) {
	svc := &mockJudgingService{listResult: []dto.AssignmentResponse{}}
	w := doRequest(judgingEngine(svc, "org-1", "organizer"), http.MethodGet, "/rounds/r-1/assignments?role=judge", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if svc.lastRole != "judge" {
		t.Errorf("role 过滤未透传: %q", svc.lastRole)
	}
}

func TestCheckAvailability(t *testing.T) {
	svc := &mockJudgingService{availResult: &dto.AvailabilityResponse{Available: true}}
	r := judgingEngine(svc, "org-1", "organizer")

	if w := doRequest(r, http.MethodGet, "/rounds/r-1/availability", nil); w.Code != http.StatusBadRequest {
		t.Errorf("缺少 user_id 期望 400，实际 %d", w.Code)
	}
	w := doRequest(r, http.MethodGet, "/rounds/r-1/availability?user_id="+uuidP2, nil)
	if w.Code != http.StatusOK || svc.lastAvailUser != uuidP2 {
		t.Errorf("期望 200 且透传 user_id，实际 %d / %s", w.Code, svc.lastAvailUser)
	}
}

func TestListMyAssignments_UsesCaller(t *testing.T) {
	svc := &mockJudgingService{listResult: []dto.AssignmentResponse{{ID: "asg-1"}}}
	w := doRequest(judgingEngine(svc, "p-1", "participant"), http.MethodGet, "/events/evt-1/my-assignments", nil)

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if svc.lastCaller.UserID != "p-1" {
		t.Errorf("应以当前用户查询，实际 %+v", svc.lastCaller)
	}
}

func TestDeleteAssignment(t *testing.T) {
	svc := &mockJudgingService{deleteErr: service.ErrAssignmentNotFound}
	if w := doRequest(judgingEngine(svc, "p-1", "participant"), http.MethodDelete, "/assignments/asg-9", nil); w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际 %d", w.Code)
	}
}

func TestSubmitScores(t *testing.T) {
	svc := &mockJudgingService{scoresResult: &dto.SubmitScoresResponse{RoundID: "r-1", JudgeStatus: "completed"}}
	r := judgingEngine(svc, "judge-1", "judge")

	w := doRequest(r, http.MethodPost, "/rounds/r-1/scores", map[string]any{
		"scores": []map[string]any{{"participant_id": uuidP1, "technical_score": 90}},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	if svc.lastCaller.UserID != "judge-1" || len(svc.lastScoresReq.Scores) != 1 {
		t.Errorf("评委身份或评分未透传: %+v", svc.lastCaller)
	}
}

func TestSubmitScores_Validation(t *testing.T) {
	r := judgingEngine(&mockJudgingService{}, "judge-1", "judge")
	cases := map[string]any{
		"空列表":  map[string]any{"scores": []any{}},
		"分数越界": map[string]any{"scores": []map[string]any{{"participant_id": uuidP1, "technical_score": 101}}},
		"负分":   map[string]any{"scores": []map[string]any{{"participant_id": uuidP1, "creativity_score": -1}}},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			if w := doRequest(r, http.MethodPost, "/rounds/r-1/scores", body); w.Code != http.StatusBadRequest {
				t.Errorf("期望 400，实际 %d", w.Code)
			}
		})
	}
}

func TestSubmitScores_NotAssigned(t *testing.T) {
	svc := &mockJudgingService{scoresErr: service.ErrNotAssigned}
	w := doRequest(judgingEngine(svc, "judge-2", "judge"), http.MethodPost, "/rounds/r-1/scores", map[string]any{
		"scores": []map[string]any{{"participant_id": uuidP1, "technical_score": 90}},
	})
	if w.Code != http.StatusForbidden {
		t.Errorf("期望 403，实际 %d", w.Code)
	}
}

func TestDeclareWinners_CamelCaseWire(t *testing.T) {
	next := uuidR2
	svc := &mockJudgingService{winnersResult: &dto.DeclareWinnersResponse{
		RoundID:     "r-1",
		Winners:     []string{uuidP1},
		Eliminated:  []string{uuidP2},
		Advanced:    true,
		NextRoundID: &next,
		Failures:    []dto.ItemFailure{{ID: "x", Stage: "register", Reason: "轮次参赛人数已满"}},
	}}
	w := doRequest(judgingEngine(svc, "org-1", "organizer"), http.MethodPost, "/rounds/r-1/winners",
		map[string]any{"winnerIds": []string{uuidP1}, "nextRoundId": uuidR2})

	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d: %s", w.Code, w.Body.String())
	}
	if svc.lastWinnersReq.NextRoundID == nil || *svc.lastWinnersReq.NextRoundID != uuidR2 {
		t.Errorf("nextRoundId 未解析")
	}
	for _, want := range []string{`"advanced":true`, `"stage":"register"`, `"next_round_id":"` + uuidR2 + `"`} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("响应缺少 %s: %s", want, w.Body.String())
		}
	}
}

func TestDeclareWinners_EmptyList(t *testing.T) {
	w := doRequest(judgingEngine(&mockJudgingService{}, "org-1", "organizer"), http.MethodPost, "/rounds/r-1/winners",
		map[string]any{"winnerIds": []string{}})
	if w.Code != http.StatusBadRequest {
		t.Errorf("期望 400，实际 %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// LeaderboardHandler / ExportHandler
// ═══════════════════════════════════════════════════════════

func TestGetLeaderboard(t *testing.T) {
	rank := 1
	svc := &mockLeaderboardService{result: &dto.LeaderboardResponse{
		RoundID: "r-1",
		Entries: []dto.LeaderboardEntry{{Rank: &rank, AssignmentResponse: dto.AssignmentResponse{ID: "asg-1"}}},
	}}
	r := gin.New()
	r.GET("/rounds/:id/leaderboard", NewLeaderboardHandler(svc).GetLeaderboard)

	w := doRequest(r, http.MethodGet, "/rounds/r-1/leaderboard", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"rank":1,"assignment_id":"asg-1"`) {
		t.Errorf("条目应平铺排名与分配字段: %s", w.Body.String())
	}

	svc.err = service.ErrRoundNotFound
	if w := doRequest(r, http.MethodGet, "/rounds/r-1/leaderboard", nil); w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际 %d", w.Code)
	}
}

func TestExportLeaderboard_Headers(t *testing.T) {
	svc := &mockExportService{buf: bytes.NewBufferString("xlsx-bytes"), filename: "排行榜_初赛.xlsx"}
	r := gin.New()
	r.GET("/rounds/:id/leaderboard/export", NewExportHandler(svc).ExportLeaderboard)

	w := doRequest(r, http.MethodGet, "/rounds/r-1/leaderboard/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("期望 200，实际 %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeXLSX {
		t.Errorf("Content-Type 不符: %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment; filename*=UTF-8''") {
		t.Errorf("Content-Disposition 不符: %s", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("文件内容不符")
	}
}

func TestExportSchedule(t *testing.T) {
	svc := &mockExportService{buf: bytes.NewBufferString("BEGIN:VCALENDAR"), filename: "黑客松.ics"}
	r := gin.New()
	r.GET("/events/:id/schedule.ics", NewExportHandler(svc).ExportSchedule)

	w := doRequest(r, http.MethodGet, "/events/evt-1/schedule.ics", nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/calendar") {
		t.Fatalf("期望 200 text/calendar，实际 %d %s", w.Code, w.Header().Get("Content-Type"))
	}

	svc.err = service.ErrEventNotFound
	if w := doRequest(r, http.MethodGet, "/events/evt-1/schedule.ics", nil); w.Code != http.StatusNotFound {
		t.Errorf("期望 404，实际 %d", w.Code)
	}
}
