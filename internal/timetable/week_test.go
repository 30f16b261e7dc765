package timetable

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestCurrentWeek_Scenario(t *testing.T) {
	term := Term{Name: "2024秋", Weeks: 18, StartDate: "2024-09-01"}

	tests := []struct {
		name  string
		today time.Time
		want  int
	}{
		{"开学当天", date(2024, 9, 1), 1},
		{"第一周最后一天", date(2024, 9, 7), 1},
		{"第二周第一天", date(2024, 9, 8), 2},
		{"超出学期截断到最后一周", date(2025, 1, 5), 18},
		{"开学前截断到第一周", date(2024, 8, 20), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CurrentWeek(term, tt.today); got != tt.want {
				t.Errorf("期望第%d周，实际=%d", tt.want, got)
			}
		})
	}
}

func TestCurrentWeek_MonotonicAndBounded(t *testing.T) {
	term := Term{Name: "t", Weeks: 10, StartDate: "2025-02-24"}
	start, _ := term.Start()

	prev := 0
	for i := -10; i < 120; i++ {
		w := CurrentWeek(term, start.AddDate(0, 0, i))
		if w < 1 || w > term.Weeks {
			t.Fatalf("第%d天周次越界: %d", i, w)
		}
		if w < prev {
			t.Fatalf("第%d天周次回退: %d < %d", i, w, prev)
		}
		prev = w
	}
}

func TestCurrentWeek_IgnoresTimeOfDayAndZone(t *testing.T) {
	term := Term{Name: "t", Weeks: 18, StartDate: "2024-09-02"}
	loc := time.FixedZone("CST", 8*3600)

	late := time.Date(2024, 9, 8, 23, 59, 0, 0, loc)
	if got := CurrentWeek(term, late); got != 1 {
		t.Errorf("周日深夜仍属第1周，实际=%d", got)
	}
	early := time.Date(2024, 9, 9, 0, 1, 0, 0, loc)
	if got := CurrentWeek(term, early); got != 2 {
		t.Errorf("周一凌晨应为第2周，实际=%d", got)
	}
}

func TestCurrentWeek_BadStartDate(t *testing.T) {
	term := Term{Name: "t", Weeks: 18, StartDate: "not-a-date"}
	if got := CurrentWeek(term, date(2025, 3, 1)); got != 1 {
		t.Errorf("开始日期非法时应回退到第1周，实际=%d", got)
	}
	if dates := WeekDates(term, 3); dates != nil {
		t.Errorf("开始日期非法时应返回空日期列表，实际=%v", dates)
	}
}

func TestWeekDates(t *testing.T) {
	term := Term{Name: "t", Weeks: 18, StartDate: "2024-09-02"}
	start, _ := term.Start()

	for week := 1; week <= term.Weeks; week++ {
		dates := WeekDates(term, week)
		if len(dates) != 7 {
			t.Fatalf("期望7天，实际=%d", len(dates))
		}
		want := start.AddDate(0, 0, (week-1)*7)
		if !dates[0].Equal(want) {
			t.Errorf("第%d周周一期望=%s，实际=%s", week, want.Format(DateLayout), dates[0].Format(DateLayout))
		}
		if !dates[6].Equal(want.AddDate(0, 0, 6)) {
			t.Errorf("第%d周周日日期错误: %s", week, dates[6].Format(DateLayout))
		}
	}
}

func TestDayIndex(t *testing.T) {
	if got := DayIndex(date(2024, 9, 2)); got != 0 {
		t.Errorf("2024-09-02 是周一，期望0，实际=%d", got)
	}
	if got := DayIndex(date(2024, 9, 1)); got != 6 {
		t.Errorf("2024-09-01 是周日，期望6，实际=%d", got)
	}
}

func TestTermEnd(t *testing.T) {
	end, ok := TermEnd(Term{Name: "t", Weeks: 2, StartDate: "2024-09-02"})
	if !ok {
		t.Fatal("TermEnd 应成功")
	}
	if end.Format(DateLayout) != "2024-09-15" {
		t.Errorf("期望 2024-09-15，实际=%s", end.Format(DateLayout))
	}
}

func TestTotalWeeks_Clamped(t *testing.T) {
	tests := []struct {
		weeks int
		want  int
	}{
		{0, 1},
		{18, 18},
		{MaxWeekCount, MaxWeekCount},
		{5000000, MaxWeekCount},
	}
	for _, tt := range tests {
		if got := (Term{Weeks: tt.weeks}).TotalWeeks(); got != tt.want {
			t.Errorf("weeks=%d 期望=%d，实际=%d", tt.weeks, tt.want, got)
		}
	}

	end, _ := TermEnd(Term{Weeks: 5000000, StartDate: "2024-09-02"})
	if days := DaysBetween(date(2024, 9, 2), end); days != MaxWeekCount*7-1 {
		t.Errorf("学期跨度应截断为%d周，实际=%d天", MaxWeekCount, days+1)
	}
}
