package timetable

import (
	"strings"
	"time"
)

// DateLayout 学期开始日期的存储格式
const DateLayout = "2006-01-02"

// Term 学期定义
type Term struct {
	Name      string `json:"name"`
	Weeks     int    `json:"weeks"`
	StartDate string `json:"startDate"` // YYYY-MM-DD，视为第 1 周周一
}

// Start 解析学期开始日期，失败时 ok=false
func (t Term) Start() (time.Time, bool) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(t.StartDate))
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// TotalWeeks 学期总周数，截断到 [1, MaxWeekCount]
func (t Term) TotalWeeks() int {
	if t.Weeks < 1 {
		return 1
	}
	if t.Weeks > MaxWeekCount {
		return MaxWeekCount
	}
	return t.Weeks
}

// civilDate 截取日期部分并转为 UTC 零点，保证按天相减不受夏令时影响
func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween 返回 to - from 的整天数
func DaysBetween(from, to time.Time) int {
	return int(civilDate(to).Sub(civilDate(from)).Hours() / 24)
}

// DayIndex 周一为 0 … 周日为 6
func DayIndex(date time.Time) int {
	return (int(date.Weekday()) + 6) % 7
}

// WeekOf 日期所在周次（未截断），学期开始前返回值 ≤ 0
func WeekOf(start, date time.Time) int {
	days := DaysBetween(start, date)
	if days < 0 {
		return 0
	}
	return days/7 + 1
}

// CurrentWeek 计算 today 所在教学周，结果截断到 [1, 学期周数]；
// 开始日期无法解析时返回 1
func CurrentWeek(term Term, today time.Time) int {
	start, ok := term.Start()
	if !ok {
		return 1
	}
	week := WeekOf(start, today)
	if week < 1 {
		return 1
	}
	if week > term.TotalWeeks() {
		return term.TotalWeeks()
	}
	return week
}

// WeekDates 返回第 week 周周一至周日的日期；开始日期无法解析时返回 nil
func WeekDates(term Term, week int) []time.Time {
	start, ok := term.Start()
	if !ok {
		return nil
	}
	monday := start.AddDate(0, 0, (week-1)*7)
	dates := make([]time.Time, 7)
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i)
	}
	return dates
}

// TermEnd 学期最后一天；开始日期无法解析时 ok=false
func TermEnd(term Term) (time.Time, bool) {
	start, ok := term.Start()
	if !ok {
		return time.Time{}, false
	}
	return start.AddDate(0, 0, term.TotalWeeks()*7-1), true
}
