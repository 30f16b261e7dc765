package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/service"
	"fiatimetable/pkg/response"
)

// TimeSlotHandler 节次模块 HTTP 处理器
type TimeSlotHandler struct {
	svc service.TimeSlotService
}

// NewTimeSlotHandler 创建 TimeSlotHandler
func NewTimeSlotHandler(svc service.TimeSlotService) *TimeSlotHandler {
	return &TimeSlotHandler{svc: svc}
}

// ListTimeSlots 获取节次列表
// GET /api/v1/time-slots
func (h *TimeSlotHandler) ListTimeSlots(c *gin.Context) {
	slots, err := h.svc.List(c.Request.Context())
	if err != nil {
		h.handleTimeSlotError(c, err)
		return
	}
	response.OK(c, gin.H{"list": slots})
}

// AppendTimeSlot 在末尾追加一个节次
// POST /api/v1/time-slots
func (h *TimeSlotHandler) AppendTimeSlot(c *gin.Context) {
	var req dto.TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slot, err := h.svc.Append(c.Request.Context(), &req)
	if err != nil {
		h.handleTimeSlotError(c, err)
		return
	}
	response.Created(c, slot)
}

// UpdateTimeSlot 修改节次时间
// PUT /api/v1/time-slots/:index
func (h *TimeSlotHandler) UpdateTimeSlot(c *gin.Context) {
	index, ok := parseIndexParam(c, "index")
	if !ok {
		return
	}

	var req dto.TimeSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	slot, err := h.svc.Update(c.Request.Context(), index, &req)
	if err != nil {
		h.handleTimeSlotError(c, err)
		return
	}
	response.OK(c, slot)
}

// DeleteTimeSlot 删除节次（只能从末尾删除未被占用的节次）
// DELETE /api/v1/time-slots/:index
func (h *TimeSlotHandler) DeleteTimeSlot(c *gin.Context) {
	index, ok := parseIndexParam(c, "index")
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), index); err != nil {
		h.handleTimeSlotError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *TimeSlotHandler) handleTimeSlotError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTimeSlotNotFound):
		response.NotFound(c, 13001, "节次不存在")
	case errors.Is(err, service.ErrInvalidTimeSlot):
		response.BadRequest(c, 13002, err.Error())
	case errors.Is(err, service.ErrTimeSlotInUse):
		response.Conflict(c, 13003, err.Error())
	default:
		response.InternalError(c)
	}
}

// parseIndexParam 解析非负整数路径参数，失败时直接写入 400
func parseIndexParam(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil || v < 0 {
		response.BadRequest(c, 10001, name+" 参数无效")
		return 0, false
	}
	return v, true
}
