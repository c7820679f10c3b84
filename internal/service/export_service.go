package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/repository"
)

// ExportService 导出业务接口
//
// 导出内容以 bytes.Buffer 返回，由 Handler 设置响应头后写出。
type ExportService interface {
	// ExportLeaderboard 导出轮次排行榜为 Excel
	ExportLeaderboard(ctx context.Context, roundID string) (*bytes.Buffer, string, error)
	// ExportEventSchedule 导出赛事轮次日程为 iCalendar
	ExportEventSchedule(ctx context.Context, eventID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo        *repository.Repository
	leaderboard LeaderboardService
	logger      *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, leaderboard LeaderboardService, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, leaderboard: leaderboard, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportLeaderboard
// ═══════════════════════════════════════════════════════════
//
// 表头：| 排名 | 选手 | 队伍 | 技术 | 展示 | 创意 | 实现 | 总分 | 状态 |
// 未评分的选手排名与分数留空

var leaderboardHeaders = []string{"排名", "选手", "队伍", "技术", "展示", "创意", "实现", "总分", "状态"}

func (s *exportService) ExportLeaderboard(ctx context.Context, roundID string) (*bytes.Buffer, string, error) {
	board, err := s.leaderboard.GetLeaderboard(ctx, roundID)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "排行榜"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "C", 20)
	f.SetColWidth(sheetName, "D", "H", 10)
	f.SetColWidth(sheetName, "I", "I", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s 排行榜", board.RoundName))
	f.MergeCell(sheetName, "A1", cell(colName(len(leaderboardHeaders)-1), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	row := 2
	for i, h := range leaderboardHeaders {
		f.SetCellValue(sheetName, cell(colName(i), row), h)
	}
	f.SetCellStyle(sheetName, cell("A", row), cell(colName(len(leaderboardHeaders)-1), row), headerStyle)

	row = 3
	for _, e := range board.Entries {
		values := []any{
			optional(e.Rank),
			"",
			"",
			optional(e.TechnicalScore),
			optional(e.PresentationScore),
			optional(e.CreativityScore),
			optional(e.ImplementationScore),
			optional(e.Score),
			e.Status,
		}
		if e.User != nil {
			values[1] = e.User.Name
		}
		if e.Team != nil {
			values[2] = e.Team.Name
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("round_id", roundID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("排行榜_%s.xlsx", board.RoundName)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportEventSchedule
// ═══════════════════════════════════════════════════════════

func (s *exportService) ExportEventSchedule(ctx context.Context, eventID string) (*bytes.Buffer, string, error) {
	event, err := s.repo.Event.GetByID(ctx, eventID)
	if err != nil {
		if isNotFound(err) {
			return nil, "", ErrEventNotFound
		}
		s.logger.Error("查询赛事失败", zap.Error(err))
		return nil, "", err
	}
	rounds, err := s.repo.Round.ListByEvent(ctx, eventID)
	if err != nil {
		s.logger.Error("查询轮次列表失败", zap.Error(err))
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//event-judging//rounds//CN")
	cal.SetName(event.Title)

	now := time.Now().UTC()
	for i := range rounds {
		r := &rounds[i]
		vevent := cal.AddEvent(r.RoundID + "@event-judging")
		vevent.SetDtStampTime(now)
		vevent.SetStartAt(r.StartTime)
		vevent.SetEndAt(r.EndTime)
		vevent.SetSummary(r.Name)
		if r.Location != "" {
			vevent.SetLocation(r.Location)
		}
		if r.Description != "" {
			vevent.SetDescription(r.Description)
		}
		vevent.AddProperty(ics.ComponentPropertyCategories, r.Type.String())
	}

	buf := new(bytes.Buffer)
	if err := cal.SerializeTo(buf); err != nil {
		s.logger.Error("生成日历失败", zap.String("event_id", eventID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("%s.ics", event.Title)
	return buf, filename, nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}

// optional 空值导出为空单元格
func optional[T any](v *T) any {
	if v == nil {
		return ""
	}
	return *v
}
