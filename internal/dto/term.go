package dto

// ── 学期模块 DTO ──

// CreateTermRequest 创建学期请求
type CreateTermRequest struct {
	Name      string `json:"name"       binding:"required,max=50"`
	Weeks     int    `json:"weeks"      binding:"required,min=1,max=60"`
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"` // 第1周周一
}

// UpdateTermRequest 更新学期请求，改名时课表与线上课程随之迁移
type UpdateTermRequest struct {
	Name      *string `json:"name"       binding:"omitempty,max=50"`
	Weeks     *int    `json:"weeks"      binding:"omitempty,min=1,max=60"`
	StartDate *string `json:"start_date" binding:"omitempty,datetime=2006-01-02"`
}

// TermResponse 学期信息响应
type TermResponse struct {
	Name        string `json:"name"`
	Weeks       int    `json:"weeks"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date,omitempty"`
	CurrentWeek int    `json:"current_week"`
	Selected    bool   `json:"selected"`
}
