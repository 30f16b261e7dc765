package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/service"
	"fiatimetable/pkg/response"
)

// ViewHandler 日视图、周视图与"下一节课"
type ViewHandler struct {
	svc service.ViewService
}

// NewViewHandler 创建 ViewHandler
func NewViewHandler(svc service.ViewService) *ViewHandler {
	return &ViewHandler{svc: svc}
}

// GetDayView 日视图
// GET /api/v1/views/day?date=2024-09-02
func (h *ViewHandler) GetDayView(c *gin.Context) {
	var req dto.DayViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	view, err := h.svc.Day(c.Request.Context(), req.Date)
	if err != nil {
		h.handleViewError(c, err)
		return
	}
	response.OK(c, view)
}

// GetWeekView 周视图
// GET /api/v1/views/week?week=3
func (h *ViewHandler) GetWeekView(c *gin.Context) {
	var req dto.WeekViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	view, err := h.svc.Week(c.Request.Context(), req.Week)
	if err != nil {
		h.handleViewError(c, err)
		return
	}
	response.OK(c, view)
}

// GetNextView 当前或下一节课及之后的安排
// GET /api/v1/views/next
func (h *ViewHandler) GetNextView(c *gin.Context) {
	view, err := h.svc.Next(c.Request.Context())
	if err != nil {
		h.handleViewError(c, err)
		return
	}
	response.OK(c, view)
}

// StreamCountdown 以 SSE 推送倒计时，客户端断开后停止
// GET /api/v1/views/next/stream
func (h *ViewHandler) StreamCountdown(c *gin.Context) {
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	events := make(chan dto.CountdownEvent)
	done := make(chan error, 1)
	go func() {
		done <- h.svc.Countdown(ctx, func(e dto.CountdownEvent) {
			select {
			case events <- e:
			case <-ctx.Done():
			}
		})
	}()

	// 第一个事件之前失败（如尚未创建学期）按普通 JSON 返回
	var first dto.CountdownEvent
	select {
	case first = <-events:
	case err := <-done:
		if err != nil && !errors.Is(err, context.Canceled) {
			h.handleViewError(c, err)
		}
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.SSEvent("countdown", first)
	c.Writer.Flush()

	for {
		select {
		case e := <-events:
			c.SSEvent("countdown", e)
			c.Writer.Flush()
		case <-done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *ViewHandler) handleViewError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 16001, err.Error())
	case errors.Is(err, service.ErrInvalidWeek):
		response.BadRequest(c, 16002, err.Error())
	default:
		handleTermError(c, err)
	}
}
