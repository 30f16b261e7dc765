package dto

// ── 线上课程 DTO ──

// OnlineCourseRequest 创建或更新线上课程
type OnlineCourseRequest struct {
	Name      string `json:"name"       binding:"required,max=100"`
	StartWeek int    `json:"start_week" binding:"required,min=1,max=60"`
	EndWeek   int    `json:"end_week"   binding:"required,min=1,max=60,gtefield=StartWeek"`
	Teacher   string `json:"teacher"    binding:"omitempty,max=50"`
	Platform  string `json:"platform"   binding:"omitempty,max=50"`
	Link      string `json:"link"       binding:"omitempty,url"`
	Notes     string `json:"notes"      binding:"omitempty,max=500"`
	Color     string `json:"color"      binding:"omitempty,max=16"`
}

// OnlineCourseListRequest 列表查询，给定 week 时只返回该周进行中的课程
type OnlineCourseListRequest struct {
	Week int `form:"week" binding:"omitempty,min=1"`
}

// OnlineCourseResponse 线上课程信息
type OnlineCourseResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StartWeek int    `json:"start_week"`
	EndWeek   int    `json:"end_week"`
	Teacher   string `json:"teacher,omitempty"`
	Platform  string `json:"platform,omitempty"`
	Link      string `json:"link,omitempty"`
	Notes     string `json:"notes,omitempty"`
	Color     string `json:"color,omitempty"`
}
