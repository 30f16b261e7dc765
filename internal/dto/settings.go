package dto

// ── 设置 DTO ──

// UpdateSettingsRequest 修改当前学期或主题
type UpdateSettingsRequest struct {
	SelectedTerm *string `json:"selected_term"`
	Theme        *string `json:"theme" binding:"omitempty,oneof=system light dark"`
}

// SettingsResponse 当前设置
type SettingsResponse struct {
	SelectedTerm string `json:"selected_term"`
	Theme        string `json:"theme"`
}
