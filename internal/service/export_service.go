package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"fiatimetable/internal/timetable"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoLessons    = errors.New("当前学期没有可导出的课程")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

var dayNames = []string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// ExportService 导出业务接口
//
//   - WeekXLSX：某一周的课表网格，行是节次，列是星期，多节课纵向合并
//   - TermICS：整个学期的日历订阅，每门课一个按周重复的事件，未选中的周以 EXDATE 排除
type ExportService interface {
	WeekXLSX(ctx context.Context, week int) (*bytes.Buffer, string, error)
	TermICS(ctx context.Context) ([]byte, string, error)
}

type exportService struct {
	store  *DocumentStore
	now    func() time.Time
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(store *DocumentStore, now func() time.Time, logger *zap.Logger) ExportService {
	return &exportService{store: store, now: now, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// WeekXLSX 导出一周课表为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 标题行：学期名 第N周
//   - 表头：| 节次 | 时间 | 周一 … 周日 |，周几下方附日期
//   - 单元格：课程名 / 教室，多节课合并单元格

func (s *exportService) WeekXLSX(ctx context.Context, week int) (*bytes.Buffer, string, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	term, err := activeTerm(doc, "")
	if err != nil {
		return nil, "", err
	}
	if week <= 0 {
		week = timetable.CurrentWeek(term, s.now())
	}
	if week > term.TotalWeeks() {
		return nil, "", ErrInvalidWeek
	}

	slots := doc.SlotTimes()
	tg := doc.Courses.Term(term.Name)
	dates := timetable.WeekDates(term, week)

	f := excelize.NewFile()
	defer f.Close()

	sheetName := fmt.Sprintf("第%d周", week)
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 8)
	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, colName(2), colName(8), 18)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	lessonStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border: []excelize.Border{
			{Type: "left", Color: "#BFBFBF", Style: 1},
			{Type: "right", Color: "#BFBFBF", Style: 1},
			{Type: "top", Color: "#BFBFBF", Style: 1},
			{Type: "bottom", Color: "#BFBFBF", Style: 1},
		},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s 第%d周", term.Name, week))
	f.MergeCell(sheetName, "A1", cell(colName(8), 1))
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	f.SetCellValue(sheetName, cell("A", 2), "节次")
	f.SetCellValue(sheetName, cell("B", 2), "时间")
	for d, name := range dayNames {
		if dates != nil {
			name += "\n" + dates[d].Format("01-02")
		}
		f.SetCellValue(sheetName, cell(colName(2+d), 2), name)
	}
	f.SetCellStyle(sheetName, "A2", cell(colName(8), 2), headerStyle)

	// 节次行
	const firstRow = 3
	for i, st := range slots {
		f.SetCellValue(sheetName, cell("A", firstRow+i), i+1)
		f.SetCellValue(sheetName, cell("B", firstRow+i), st.Label())
	}

	// 课程
	lessons := 0
	for d := range dayNames {
		col := colName(2 + d)
		for _, l := range lessonsOn(tg, slots, d, week) {
			top := cell(col, firstRow+l.Slot)
			bottom := cell(col, firstRow+l.EndSlot)
			text := l.Course.Name
			if l.Course.Classroom != "" {
				text += "\n" + l.Course.Classroom
			}
			f.SetCellValue(sheetName, top, text)
			if l.EndSlot > l.Slot {
				f.MergeCell(sheetName, top, bottom)
			}
			f.SetCellStyle(sheetName, top, bottom, lessonStyle)
			lessons++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	s.logger.Info("导出周课表", zap.String("term", term.Name), zap.Int("week", week), zap.Int("lessons", lessons))
	filename := fmt.Sprintf("课表_%s_第%d周.xlsx", term.Name, week)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// TermICS 导出整个学期为 iCalendar
// ═══════════════════════════════════════════════════════════

func (s *exportService) TermICS(ctx context.Context) ([]byte, string, error) {
	doc, err := s.store.Load(ctx)
	if err != nil {
		return nil, "", err
	}
	term, err := activeTerm(doc, "")
	if err != nil {
		return nil, "", err
	}

	now := s.now()
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//fiatimetable//timetable//CN")
	cal.SetName(term.Name)

	slots := doc.SlotTimes()
	events := 0
	for _, e := range doc.Courses.Term(term.Name).Entries() {
		if e.Slot >= len(slots) {
			continue
		}
		for _, c := range e.Courses {
			ok, err := addCourseEvent(cal, term, e, c, slots, now)
			if err != nil {
				s.logger.Warn("生成重复规则失败，跳过该课程",
					zap.String("course", c.Name), zap.Error(err))
				continue
			}
			if ok {
				events++
			}
		}
	}
	if events == 0 {
		return nil, "", ErrExportNoLessons
	}

	s.logger.Info("导出学期日历", zap.String("term", term.Name), zap.Int("events", events))
	return []byte(cal.Serialize()), term.Name + ".ics", nil
}

// addCourseEvent 以课程的第一周为 DTSTART、最后一周为 UNTIL 生成每周重复事件，
// 中间未上课的周写入 EXDATE
func addCourseEvent(cal *ics.Calendar, term timetable.Term, e timetable.Entry, c timetable.Course, slots []timetable.SlotTime, now time.Time) (bool, error) {
	weeks := timetable.NormalizeWeeks(c.SelectedWeeks)
	if len(weeks) == 0 {
		return false, nil
	}
	first := timetable.WeekDates(term, weeks[0])
	last := timetable.WeekDates(term, weeks[len(weeks)-1])
	if first == nil || last == nil {
		return false, nil
	}

	lastSlot := e.Slot + timetable.ClampDuration(c.Duration) - 1
	if lastSlot >= len(slots) {
		lastSlot = len(slots) - 1
	}
	loc := now.Location()
	start := clockOn(first[e.Day], slots[e.Slot].Start, loc)
	end := clockOn(first[e.Day], slots[lastSlot].End, loc)
	until := clockOn(last[e.Day], slots[e.Slot].Start, loc)

	opt := rrule.ROption{Freq: rrule.WEEKLY, Interval: 1, Dtstart: start, Until: until}
	rule, err := rrule.NewRRule(opt)
	if err != nil {
		return false, err
	}

	active := make(map[int]bool, len(weeks))
	for _, w := range weeks {
		active[w] = true
	}
	var set rrule.Set
	set.RRule(rule)
	var exdates []time.Time
	for w := weeks[0]; w <= weeks[len(weeks)-1]; w++ {
		if !active[w] {
			ex := start.AddDate(0, 0, (w-weeks[0])*7)
			set.ExDate(ex)
			exdates = append(exdates, ex)
		}
	}
	if len(set.All()) == 0 {
		return false, nil
	}

	ev := cal.AddEvent(fmt.Sprintf("%s-%d-%d@fiatimetable", c.ID, e.Day, e.Slot))
	ev.SetDtStampTime(now)
	ev.SetStartAt(start)
	ev.SetEndAt(end)
	ev.SetSummary(c.Name)
	if c.Classroom != "" {
		ev.SetLocation(c.Classroom)
	}
	if desc := courseDescription(c); desc != "" {
		ev.SetDescription(desc)
	}
	ev.AddRrule(rule.OrigOptions.RRuleString())
	for _, ex := range exdates {
		ev.AddExdate(ex.UTC().Format("20060102T150405Z"))
	}
	return true, nil
}

func courseDescription(c timetable.Course) string {
	var parts []string
	if c.Teacher != "" {
		parts = append(parts, "教师: "+c.Teacher)
	}
	parts = append(parts, "周次: "+c.WeeksRange)
	if c.Notes != "" {
		parts = append(parts, c.Notes)
	}
	return strings.Join(parts, "\n")
}

// ── 辅助函数 ──

func clockOn(date time.Time, c timetable.Clock, loc *time.Location) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour(), c.Minute(), 0, 0, loc)
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
