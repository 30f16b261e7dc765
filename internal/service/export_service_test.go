package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"fiatimetable/internal/timetable"
)

func setupTestExportService(t *testing.T, withCourses bool) ExportService {
	t.Helper()
	store, _, _ := setupTestStore()
	now := fixedClock(2024, 9, 10, 9, 0)
	createTerm(t, NewTermService(store, now, zap.NewNop()), "秋")
	if withCourses {
		_, _ = store.Update(context.Background(), func(doc *timetable.Document) error {
			n := len(doc.TimeSlots)
			_ = doc.Courses.SetCourse("秋", 0, 0, timetable.Course{ID: "math", Name: "高数", Duration: 2, Classroom: "A101", WeeksRange: "1-16"}, n)
			return doc.Courses.SetCourse("秋", 2, 4, timetable.Course{ID: "phy", Name: "物理", WeeksRange: "1,3"}, n)
		})
	}
	return NewExportService(store, now, zap.NewNop())
}

func TestExportService_WeekXLSX(t *testing.T) {
	svc := setupTestExportService(t, true)

	buf, filename, err := svc.WeekXLSX(context.Background(), 1)
	if err != nil {
		t.Fatalf("WeekXLSX 应成功: %v", err)
	}
	if filename != "课表_秋_第1周.xlsx" {
		t.Errorf("文件名错误: %s", filename)
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("生成的文件应可被读取: %v", err)
	}
	defer f.Close()

	sheet := "第1周"
	if v, _ := f.GetCellValue(sheet, "C3"); v != "高数\nA101" {
		t.Errorf("周一第1节期望=高数/A101，实际=%q", v)
	}
	if v, _ := f.GetCellValue(sheet, "E7"); v != "物理" {
		t.Errorf("周三第5节期望=物理，实际=%q", v)
	}
	if v, _ := f.GetCellValue(sheet, "C2"); !strings.HasPrefix(v, "周一") || !strings.Contains(v, "09-02") {
		t.Errorf("表头应含星期与日期，实际=%q", v)
	}

	merged, _ := f.GetMergeCells(sheet)
	found := false
	for _, m := range merged {
		if m.GetStartAxis() == "C3" && m.GetEndAxis() == "C4" {
			found = true
		}
	}
	if !found {
		t.Error("两节连上的课程应纵向合并 C3:C4")
	}
}

func TestExportService_WeekXLSX_InvalidWeek(t *testing.T) {
	svc := setupTestExportService(t, true)
	if _, _, err := svc.WeekXLSX(context.Background(), 99); !errors.Is(err, ErrInvalidWeek) {
		t.Errorf("期望 ErrInvalidWeek，实际: %v", err)
	}
}

func TestExportService_TermICS(t *testing.T) {
	svc := setupTestExportService(t, true)

	data, filename, err := svc.TermICS(context.Background())
	if err != nil {
		t.Fatalf("TermICS 应成功: %v", err)
	}
	if filename != "秋.ics" {
		t.Errorf("文件名错误: %s", filename)
	}

	cal, err := ics.ParseCalendar(strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("生成的日历应可解析: %v", err)
	}
	events := cal.Events()
	if len(events) != 2 {
		t.Fatalf("期望2个事件，实际=%d", len(events))
	}

	byName := map[string]*ics.VEvent{}
	for _, ev := range events {
		byName[ev.GetProperty(ics.ComponentPropertySummary).Value] = ev
	}

	math := byName["高数"]
	if math == nil {
		t.Fatal("缺少高数事件")
	}
	// 2024-09-02 08:00 CST
	if v := math.GetProperty(ics.ComponentPropertyDtStart).Value; v != "20240902T000000Z" {
		t.Errorf("高数 DTSTART 错误: %s", v)
	}
	if v := math.GetProperty(ics.ComponentPropertyDtEnd).Value; v != "20240902T014000Z" {
		t.Errorf("高数 DTEND 应为第2节下课，实际=%s", v)
	}
	if v := math.GetProperty(ics.ComponentPropertyRrule).Value; !strings.Contains(v, "FREQ=WEEKLY") || !strings.Contains(v, "UNTIL=") {
		t.Errorf("高数 RRULE 错误: %s", v)
	}
	if len(math.GetProperties(ics.ComponentPropertyExdate)) != 0 {
		t.Error("连续周次不应有 EXDATE")
	}

	phy := byName["物理"]
	if phy == nil {
		t.Fatal("缺少物理事件")
	}
	exdates := phy.GetProperties(ics.ComponentPropertyExdate)
	if len(exdates) != 1 || exdates[0].Value != "20240911T060000Z" {
		t.Errorf("物理第2周应被排除，实际=%+v", exdates)
	}
}

func TestExportService_TermICS_NoLessons(t *testing.T) {
	svc := setupTestExportService(t, false)
	if _, _, err := svc.TermICS(context.Background()); !errors.Is(err, ErrExportNoLessons) {
		t.Errorf("期望 ErrExportNoLessons，实际: %v", err)
	}
}
