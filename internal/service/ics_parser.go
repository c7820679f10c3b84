package service

import (
	"fmt"
	"io"
	"strings"
	"time"
	_ "time/tzdata" // TZID 解析依赖时区数据

	ics "github.com/arran4/golang-ical"

	"github.com/Schwifty101/Event-Management-System---MERN-sub001/internal/model"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 将 iCalendar (RFC 5545) 中的每个 VEVENT 解析为一个待创建的轮次：
//   - SUMMARY → 名称，DESCRIPTION → 描述，LOCATION → 地点
//   - DTSTART / DTEND（缺失时用 DURATION）→ 起止时间，统一转为 UTC
//   - CATEGORIES 中第一个合法的轮次类型 → 类型，否则为 other
// 无法解析的 VEVENT 不中断整体解析，单独返回原因。
// ─────────────────────────────────────────────────────────────

const icsMaxFileSize = 5 * 1024 * 1024 // 5MB

type parsedRound struct {
	UID         string
	Name        string
	Description string
	Location    string
	Type        model.RoundType
	Start       time.Time
	End         time.Time
}

type skippedEvent struct {
	UID    string
	Reason string
}

// ParseRoundCalendar 解析日历内容
func ParseRoundCalendar(r io.Reader) ([]parsedRound, []skippedEvent, error) {
	cal, err := ics.ParseCalendar(io.LimitReader(r, icsMaxFileSize))
	if err != nil {
		return nil, nil, fmt.Errorf("ICS 格式解析失败: %w", err)
	}

	var (
		rounds  []parsedRound
		skipped []skippedEvent
	)
	seen := make(map[string]bool)
	for i, evt := range cal.Events() {
		uid := evt.Id()
		if uid == "" || seen[uid] {
			uid = fmt.Sprintf("#%d", i+1)
		}
		seen[uid] = true

		p, err := parseRoundEvent(evt)
		if err != nil {
			skipped = append(skipped, skippedEvent{UID: uid, Reason: err.Error()})
			continue
		}
		p.UID = uid
		rounds = append(rounds, p)
	}
	return rounds, skipped, nil
}

func parseRoundEvent(evt *ics.VEvent) (parsedRound, error) {
	var p parsedRound

	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return p, fmt.Errorf("缺少 SUMMARY")
	}
	p.Name = strings.TrimSpace(summary.Value)
	if len([]rune(p.Name)) > 100 {
		p.Name = string([]rune(p.Name)[:100])
	}

	if prop := evt.GetProperty(ics.ComponentPropertyDescription); prop != nil {
		p.Description = prop.Value
	}
	if prop := evt.GetProperty(ics.ComponentPropertyLocation); prop != nil {
		p.Location = prop.Value
	}

	start, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart)
	if err != nil {
		return p, err
	}
	end, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd)
	if err != nil {
		durProp := evt.GetProperty(ics.ComponentPropertyDuration)
		if durProp == nil {
			return p, fmt.Errorf("缺少 DTEND 与 DURATION")
		}
		d, derr := parseICSDuration(durProp.Value)
		if derr != nil {
			return p, derr
		}
		end = start.Add(d)
	}
	p.Start, p.End = start, end

	p.Type = model.RoundTypeOther
	if prop := evt.GetProperty(ics.ComponentPropertyCategories); prop != nil {
		for _, c := range strings.Split(prop.Value, ",") {
			if t := model.RoundType(strings.ToLower(strings.TrimSpace(c))); t.IsValid() {
				p.Type = t
				break
			}
		}
	}
	return p, nil
}

// parseICSDateTime 支持 UTC、带 TZID 的本地时间与全天日期，结果统一为 UTC
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("缺少 %s", propName)
	}
	val := prop.Value

	loc := time.UTC
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			if tz, err := time.LoadLocation(v[0]); err == nil {
				loc = tz
			}
		}
	}

	for _, layout := range []string{"20060102T150405Z", "20060102T150405", "20060102"} {
		if t, err := time.ParseInLocation(layout, val, loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}

// parseICSDuration 解析 PT1H30M / P1D 这类常见 DURATION
func parseICSDuration(val string) (time.Duration, error) {
	s := strings.TrimPrefix(strings.ToUpper(strings.TrimSpace(val)), "+")
	if !strings.HasPrefix(s, "P") {
		return 0, fmt.Errorf("无法解析时长: %s", val)
	}
	s = s[1:]

	var (
		total  time.Duration
		num    int
		inTime bool
		digits bool
	)
	for _, ch := range s {
		switch {
		case ch >= '0' && ch <= '9':
			num = num*10 + int(ch-'0')
			digits = true
			continue
		case ch == 'T':
			inTime = true
			continue
		case ch == 'W' && !inTime:
			total += time.Duration(num) * 7 * 24 * time.Hour
		case ch == 'D' && !inTime:
			total += time.Duration(num) * 24 * time.Hour
		case ch == 'H' && inTime:
			total += time.Duration(num) * time.Hour
		case ch == 'M' && inTime:
			total += time.Duration(num) * time.Minute
		case ch == 'S' && inTime:
			total += time.Duration(num) * time.Second
		default:
			return 0, fmt.Errorf("无法解析时长: %s", val)
		}
		num = 0
	}
	if !digits || total <= 0 {
		return 0, fmt.Errorf("无法解析时长: %s", val)
	}
	return total, nil
}
