package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	"fiatimetable/internal/timetable"
)

// ── ICS 解析器 ──────────────────────────────────────────────
//
// 职责：将 iCalendar 内容解析为可写入课表网格的课程。
//
//   - DTSTART 确定星期几，开始/结束时间按已配置的节次对齐到节次下标
//   - RRULE 与 EXDATE 由 rrule-go 展开，落在学期内的日期换算为周次
//   - 无 RRULE 的单次事件只占一周
//   - 同 名称+星期+节次+节数 的事件合并周次
// ─────────────────────────────────────────────────────────────

const (
	icsMaxFileSize  = 5 * 1024 * 1024 // 5MB
	icsFetchTimeout = 30 * time.Second
)

// icsCourse ICS 解析中间结构
type icsCourse struct {
	Name      string
	Classroom string
	Notes     string
	Day       int // 0=周一 … 6=周日
	Slot      int
	Duration  int
	Weeks     []int
}

// FetchICSContent 从 URL 获取 ICS 内容，webcal:// 按 https:// 处理
func FetchICSContent(ctx context.Context, rawURL string) (io.ReadCloser, error) {
	u := rawURL
	if strings.HasPrefix(u, "webcal://") {
		u = "https://" + strings.TrimPrefix(u, "webcal://")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	client := &http.Client{Timeout: icsFetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("获取 ICS 失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("获取 ICS 失败: HTTP %d", resp.StatusCode)
	}
	// 限制响应体大小，防止恶意 URL 返回超大内容导致 OOM
	return struct {
		io.Reader
		io.Closer
	}{
		Reader: io.LimitReader(resp.Body, icsMaxFileSize),
		Closer: resp.Body,
	}, nil
}

// parseICS 解析 ICS 内容。返回可导入的课程与被跳过的事件数
func parseICS(reader io.Reader, term timetable.Term, slots []timetable.SlotTime, loc *time.Location) ([]icsCourse, int, error) {
	cal, err := ics.ParseCalendar(reader)
	if err != nil {
		return nil, 0, fmt.Errorf("ICS 格式解析失败: %w", err)
	}
	termStart, ok := term.Start()
	if !ok {
		return nil, 0, fmt.Errorf("学期开始日期无效: %s", term.StartDate)
	}

	skipped := 0
	var courses []icsCourse
	for _, evt := range cal.Events() {
		c, ok := parseVEvent(evt, term, termStart, slots, loc)
		if !ok {
			skipped++
			continue
		}
		courses = append(courses, c)
	}
	return mergeICSCourses(courses), skipped, nil
}

// parseVEvent 解析单个 VEVENT
func parseVEvent(evt *ics.VEvent, term timetable.Term, termStart time.Time, slots []timetable.SlotTime, loc *time.Location) (icsCourse, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return icsCourse{}, false
	}

	dtStart, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil {
		return icsCourse{}, false
	}
	dtEnd, err := parseICSDateTime(evt, ics.ComponentPropertyDtEnd, loc)
	if err != nil || !dtEnd.After(dtStart) {
		return icsCourse{}, false
	}

	slot, duration, ok := alignToSlots(slots, dtStart, dtEnd)
	if !ok {
		return icsCourse{}, false
	}

	weeks := computeWeeks(evt, dtStart, term, termStart, loc)
	if len(weeks) == 0 {
		return icsCourse{}, false
	}

	c := icsCourse{
		Name:     strings.TrimSpace(summary.Value),
		Day:      timetable.DayIndex(dtStart),
		Slot:     slot,
		Duration: duration,
		Weeks:    weeks,
	}
	if p := evt.GetProperty(ics.ComponentPropertyLocation); p != nil {
		c.Classroom = strings.TrimSpace(p.Value)
	}
	if p := evt.GetProperty(ics.ComponentPropertyDescription); p != nil {
		c.Notes = strings.TrimSpace(p.Value)
	}
	return c, true
}

// alignToSlots 起始节：开始时刻落在其 [Start, End) 内的第一个节次；
// 结束节：开始时刻早于事件结束的最后一个节次
func alignToSlots(slots []timetable.SlotTime, start, end time.Time) (int, int, bool) {
	from := timetable.NewClock(start.Hour(), start.Minute())
	to := timetable.NewClock(end.Hour(), end.Minute())

	first := -1
	for i, st := range slots {
		if from >= st.Start && from < st.End {
			first = i
			break
		}
	}
	if first < 0 {
		return 0, 0, false
	}
	last := first
	for i := first + 1; i < len(slots); i++ {
		if slots[i].Start < to {
			last = i
		}
	}
	return first, timetable.ClampDuration(last - first + 1), true
}

// computeWeeks 展开重复规则并换算为学期内的周次
func computeWeeks(evt *ics.VEvent, dtStart time.Time, term timetable.Term, termStart time.Time, loc *time.Location) []int {
	termEnd, _ := timetable.TermEnd(term)
	rangeStart := time.Date(termStart.Year(), termStart.Month(), termStart.Day(), 0, 0, 0, 0, loc)
	rangeEnd := time.Date(termEnd.Year(), termEnd.Month(), termEnd.Day(), 23, 59, 59, 0, loc)

	dates := []time.Time{dtStart}
	if rruleProp := evt.GetProperty(ics.ComponentPropertyRrule); rruleProp != nil {
		r, err := rrule.StrToRRule(rruleProp.Value)
		if err != nil {
			return nil
		}
		r.DTStart(dtStart)

		var set rrule.Set
		set.RRule(r)
		for _, ex := range parseExDates(evt, loc) {
			set.ExDate(ex)
		}
		dates = set.Between(rangeStart, rangeEnd, true)
	}

	weekSet := make(map[int]bool)
	for _, d := range dates {
		if d.Before(rangeStart) || d.After(rangeEnd) {
			continue
		}
		weekSet[timetable.WeekOf(termStart, d)] = true
	}
	weeks := make([]int, 0, len(weekSet))
	for w := range weekSet {
		weeks = append(weeks, w)
	}
	sort.Ints(weeks)
	return weeks
}

// parseExDates 解析事件中所有 EXDATE，一个属性可含逗号分隔的多个值
func parseExDates(evt *ics.VEvent, loc *time.Location) []time.Time {
	var result []time.Time
	for _, prop := range evt.GetProperties(ics.ComponentPropertyExdate) {
		for _, part := range strings.Split(prop.Value, ",") {
			if t, err := parseICSTime(strings.TrimSpace(part), tzidOf(prop), loc); err == nil {
				result = append(result, t)
			}
		}
	}
	return result
}

// mergeICSCourses 合并相同课程事件的周次，保持首次出现的顺序
func mergeICSCourses(courses []icsCourse) []icsCourse {
	type key struct {
		Name     string
		Day      int
		Slot     int
		Duration int
	}
	merged := make(map[key]*icsCourse)
	order := []key{}

	for _, c := range courses {
		k := key{Name: c.Name, Day: c.Day, Slot: c.Slot, Duration: c.Duration}
		if existing, ok := merged[k]; ok {
			existing.Weeks = timetable.NormalizeWeeks(append(existing.Weeks, c.Weeks...))
			continue
		}
		cp := c
		merged[k] = &cp
		order = append(order, k)
	}

	result := make([]icsCourse, 0, len(merged))
	for _, k := range order {
		result = append(result, *merged[k])
	}
	return result
}

// ── 辅助函数 ──

func tzidOf(prop *ics.IANAProperty) string {
	for k, v := range prop.ICalParameters {
		if strings.ToUpper(k) == "TZID" && len(v) > 0 {
			return v[0]
		}
	}
	return ""
}

// parseICSDateTime 从 VEVENT 中解析日期时间属性
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, fmt.Errorf("缺少属性 %s", propName)
	}
	return parseICSTime(prop.Value, tzidOf(prop), loc)
}

// parseICSTime 支持 UTC、带 TZID 的本地时间与纯日期三种形式
func parseICSTime(val, tzid string, loc *time.Location) (time.Time, error) {
	formats := []string{
		"20060102T150405Z",
		"20060102T150405",
		"20060102",
	}
	for _, layout := range formats {
		t, err := time.Parse(layout, val)
		if err != nil {
			continue
		}
		if strings.HasSuffix(layout, "Z") {
			return t.In(loc), nil
		}
		if tzid != "" {
			if tzLoc, err := time.LoadLocation(tzid); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tzLoc).In(loc), nil
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, loc), nil
	}
	return time.Time{}, fmt.Errorf("无法解析日期: %s", val)
}
