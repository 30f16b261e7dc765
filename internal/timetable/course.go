package timetable

import "strings"

const (
	// MaxDuration 单门课最多连续占用的节数
	MaxDuration = 8
	// DefaultColor 未指定颜色时的课程卡片颜色
	DefaultColor = "#4A90E2"
)

// Course 课表中的一门课，从所在节次开始连续占用 Duration 节
type Course struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Duration      int    `json:"duration"`
	SelectedWeeks []int  `json:"selectedWeeks"`
	WeeksRange    string `json:"weeksRange"`
	Color         string `json:"color"`
	Teacher       string `json:"teacher,omitempty"`
	Classroom     string `json:"classroom,omitempty"`
	CourseCode    string `json:"courseCode,omitempty"`
	Credits       string `json:"credits,omitempty"`
	CourseType    string `json:"courseType,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// Normalize 补齐默认值并保持 SelectedWeeks 与 WeeksRange 一致。
// SelectedWeeks 为准；为空时由 WeeksRange 解析得到
func (c Course) Normalize() Course {
	c.Name = strings.TrimSpace(c.Name)
	c.Duration = ClampDuration(c.Duration)
	if strings.TrimSpace(c.Color) == "" {
		c.Color = DefaultColor
	}

	weeks := NormalizeWeeks(c.SelectedWeeks)
	if len(weeks) == 0 {
		weeks = ParseWeekRange(c.WeeksRange)
	}
	c.SelectedWeeks = weeks
	c.WeeksRange = FormatWeekRange(weeks)
	return c
}

// ActiveIn 该课程是否在第 week 周上课
func (c Course) ActiveIn(week int) bool {
	for _, w := range c.SelectedWeeks {
		if w == week {
			return true
		}
	}
	return false
}

// ClampDuration 将节数限制在 1..MaxDuration，非法值取 1
func ClampDuration(d int) int {
	if d < 1 {
		return 1
	}
	if d > MaxDuration {
		return MaxDuration
	}
	return d
}

// OnlineCourse 线上（异步）课程，不占用课表格子
type OnlineCourse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartWeek int    `json:"startWeek"`
	EndWeek   int    `json:"endWeek"`
	Teacher   string `json:"teacher,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Link      string `json:"link,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Color     string `json:"color,omitempty"`
}

// ActiveIn 第 week 周是否处于线上课程的起止周内
func (o OnlineCourse) ActiveIn(week int) bool {
	return week >= o.StartWeek && week <= o.EndWeek
}
