package dto

// ── 备份与导入 DTO ──

// ImportResponse 导入结果，只给出汇总计数
type ImportResponse struct {
	Terms         int `json:"terms"`
	Courses       int `json:"courses"`
	OnlineCourses int `json:"online_courses"`
	Skipped       int `json:"skipped"`
}

// CloudSyncResponse 一次云端同步的结果
type CloudSyncResponse struct {
	ID        string          `json:"id"`
	Direction string          `json:"direction"` // upload | download
	ObjectKey string          `json:"object_key"`
	SizeBytes int64           `json:"size_bytes"`
	Revision  int64           `json:"revision"`
	CreatedAt string          `json:"created_at"`
	Imported  *ImportResponse `json:"imported,omitempty"`
}

// ICSImportRequest 从 URL 导入 ICS 日历（也可 multipart 上传 file 字段）
type ICSImportRequest struct {
	URL string `json:"url" binding:"required,url"`
}
