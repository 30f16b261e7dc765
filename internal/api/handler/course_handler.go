package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/service"
	"fiatimetable/internal/timetable"
	"fiatimetable/pkg/response"
)

// CourseHandler 课表网格 HTTP 处理器
type CourseHandler struct {
	svc service.CourseService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(svc service.CourseService) *CourseHandler {
	return &CourseHandler{svc: svc}
}

// GetGrid 获取学期课表
// GET /api/v1/grid/:term
func (h *CourseHandler) GetGrid(c *gin.Context) {
	grid, err := h.svc.Grid(c.Request.Context(), c.Param("term"))
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, grid)
}

// SetCourse 用一门课覆盖格子
// PUT /api/v1/grid/:term/:day/:slot
func (h *CourseHandler) SetCourse(c *gin.Context) {
	h.write(c, h.svc.Set)
}

// AppendCourse 在格子里追加一门课（单双周等共享同一位置）
// POST /api/v1/grid/:term/:day/:slot/append
func (h *CourseHandler) AppendCourse(c *gin.Context) {
	h.write(c, h.svc.Append)
}

// DeleteCourse 删除格子里的课程，course_id 为空时清空整个格子
// DELETE /api/v1/grid/:term/:day/:slot?course_id=xxx
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	day, slot, ok := parsePosition(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(c.Request.Context(), c.Param("term"), day, slot, c.Query("course_id")); err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, nil)
}

// ResolveCourse 查询某周该位置实际上课的课程
// GET /api/v1/grid/:term/:day/:slot/resolve?week=3
func (h *CourseHandler) ResolveCourse(c *gin.Context) {
	day, slot, ok := parsePosition(c)
	if !ok {
		return
	}

	var req dto.ResolveRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	occupant, err := h.svc.Resolve(c.Request.Context(), c.Param("term"), day, slot, req.Week)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, occupant)
}

// ── 内部辅助方法 ──

type courseWriter func(ctx context.Context, term string, day, slot int, req *dto.CourseRequest) (*dto.GridCellResponse, error)

func (h *CourseHandler) write(c *gin.Context, fn courseWriter) {
	day, slot, ok := parsePosition(c)
	if !ok {
		return
	}

	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	cell, err := fn(c.Request.Context(), c.Param("term"), day, slot, &req)
	if err != nil {
		h.handleCourseError(c, err)
		return
	}
	response.OK(c, cell)
}

func (h *CourseHandler) handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, timetable.ErrInvalidDay), errors.Is(err, timetable.ErrInvalidSlot):
		response.BadRequest(c, 14001, err.Error())
	case errors.Is(err, timetable.ErrCourseNameRequired):
		response.BadRequest(c, 14002, err.Error())
	case errors.Is(err, service.ErrCellEmpty):
		response.NotFound(c, 14003, "该位置没有课程")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 14004, "该位置不存在指定课程")
	default:
		handleTermError(c, err)
	}
}

// parsePosition 解析 :day 与 :slot 路径参数
func parsePosition(c *gin.Context) (int, int, bool) {
	day, ok := parseIndexParam(c, "day")
	if !ok {
		return 0, 0, false
	}
	slot, ok := parseIndexParam(c, "slot")
	if !ok {
		return 0, 0, false
	}
	return day, slot, true
}
