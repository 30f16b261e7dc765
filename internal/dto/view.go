package dto

// ── 视图 DTO ──

// DayViewRequest 日视图查询参数，date 为空时取今天
type DayViewRequest struct {
	Date string `form:"date" binding:"omitempty,datetime=2006-01-02"`
}

// WeekViewRequest 周视图查询参数，week 为空时取当前周
type WeekViewRequest struct {
	Week int `form:"week" binding:"omitempty,min=1"`
}

// LessonResponse 视图中的一节课（多节课只出现一次）
type LessonResponse struct {
	Slot    int            `json:"slot"`
	EndSlot int            `json:"end_slot"`
	Start   string         `json:"start"` // "08:00"
	End     string         `json:"end"`
	Segment string         `json:"segment"`
	Course  CourseResponse `json:"course"`
}

// DayViewResponse 日视图
type DayViewResponse struct {
	Term          string                 `json:"term"`
	Date          string                 `json:"date"`
	Week          int                    `json:"week"`
	Day           int                    `json:"day"`
	Lessons       []LessonResponse       `json:"lessons"`
	OnlineCourses []OnlineCourseResponse `json:"online_courses"`
}

// WeekDayResponse 周视图中的一天
type WeekDayResponse struct {
	Day     int              `json:"day"`
	Date    string           `json:"date"`
	Today   bool             `json:"today"`
	Lessons []LessonResponse `json:"lessons"`
}

// WeekViewResponse 周视图
type WeekViewResponse struct {
	Term          string                 `json:"term"`
	Week          int                    `json:"week"`
	CurrentWeek   int                    `json:"current_week"`
	TotalWeeks    int                    `json:"total_weeks"`
	TimeSlots     []TimeSlotResponse     `json:"time_slots"`
	Days          []WeekDayResponse      `json:"days"`
	OnlineCourses []OnlineCourseResponse `json:"online_courses"`
}

// OccurrenceResponse 时间线中的一次上课
type OccurrenceResponse struct {
	Date      string         `json:"date"`
	Week      int            `json:"week"`
	Day       int            `json:"day"`
	Slot      int            `json:"slot"`
	EndSlot   int            `json:"end_slot"`
	Start     string         `json:"start"` // RFC3339
	End       string         `json:"end"`
	Course    CourseResponse `json:"course"`
	IsCurrent bool           `json:"is_current"`
	IsNext    bool           `json:"is_next"`
}

// NextViewResponse "下一节课"视图：state 为 current / next / none
type NextViewResponse struct {
	Term             string               `json:"term"`
	State            string               `json:"state"`
	Display          string               `json:"display"`
	RemainingSeconds int64                `json:"remaining_seconds"`
	Focus            *OccurrenceResponse  `json:"focus,omitempty"`
	Upcoming         []OccurrenceResponse `json:"upcoming"`
}

// CountdownEvent SSE 推送的一次倒计时刷新
type CountdownEvent struct {
	State            string `json:"state"`
	Display          string `json:"display"`
	RemainingSeconds int64  `json:"remaining_seconds"`
	CourseName       string `json:"course_name,omitempty"`
	Start            string `json:"start,omitempty"`
	End              string `json:"end,omitempty"`
}
