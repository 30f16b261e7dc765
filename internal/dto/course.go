package dto

// ── 课表网格 DTO ──

// CourseRequest 写入一门课
// selected_weeks 优先；为空时解析 weeks_range，两者都无效时为 1-16 周
type CourseRequest struct {
	ID            string `json:"id"`
	Name          string `json:"name"           binding:"required,max=100"`
	Duration      int    `json:"duration"       binding:"omitempty,min=1,max=8"`
	SelectedWeeks []int  `json:"selected_weeks" binding:"omitempty,dive,min=1,max=60"`
	WeeksRange    string `json:"weeks_range"    binding:"omitempty,max=100"`
	Color         string `json:"color"          binding:"omitempty,max=16"`
	Teacher       string `json:"teacher"        binding:"omitempty,max=50"`
	Classroom     string `json:"classroom"      binding:"omitempty,max=50"`
	CourseCode    string `json:"course_code"    binding:"omitempty,max=50"`
	Credits       string `json:"credits"        binding:"omitempty,max=10"`
	CourseType    string `json:"course_type"    binding:"omitempty,max=20"`
	Notes         string `json:"notes"          binding:"omitempty,max=500"`
}

// CourseResponse 课程信息
type CourseResponse struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Duration      int    `json:"duration"`
	SelectedWeeks []int  `json:"selected_weeks"`
	WeeksRange    string `json:"weeks_range"`
	Color         string `json:"color"`
	Teacher       string `json:"teacher,omitempty"`
	Classroom     string `json:"classroom,omitempty"`
	CourseCode    string `json:"course_code,omitempty"`
	Credits       string `json:"credits,omitempty"`
	CourseType    string `json:"course_type,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// GridCellResponse 一个起始节格子，day 为 0（周一）至 6（周日）
type GridCellResponse struct {
	Day     int              `json:"day"`
	Slot    int              `json:"slot"`
	EndSlot int              `json:"end_slot"`
	Courses []CourseResponse `json:"courses"`
}

// GridResponse 一个学期的完整课表（只含起始节）
type GridResponse struct {
	Term      string             `json:"term"`
	SlotCount int                `json:"slot_count"`
	Cells     []GridCellResponse `json:"cells"`
}

// ResolveRequest 解析查询参数，week 为空时取当前周
type ResolveRequest struct {
	Week int `form:"week" binding:"omitempty,min=1"`
}

// OccupantResponse 某周某格子的实际课程
type OccupantResponse struct {
	Day          int             `json:"day"`
	Slot         int             `json:"slot"`
	Week         int             `json:"week"`
	Occupied     bool            `json:"occupied"`
	OriginSlot   int             `json:"origin_slot,omitempty"`
	Continuation bool            `json:"continuation"`
	Course       *CourseResponse `json:"course,omitempty"`
}
