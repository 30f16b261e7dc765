package dto

// ── 节次模块 DTO ──

// TimeSlotRequest 新增或修改节次
type TimeSlotRequest struct {
	Label string `json:"label" binding:"required,max=32"` // "08:00-08:45"
}

// TimeSlotResponse 节次信息，index 即课表中的节次下标
type TimeSlotResponse struct {
	Index   int    `json:"index"`
	Label   string `json:"label"`
	Start   string `json:"start"`
	End     string `json:"end"`
	Segment string `json:"segment"` // morning | afternoon | evening
}
