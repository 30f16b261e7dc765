package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/service"
	"fiatimetable/pkg/response"
)

// OnlineCourseHandler 线上课程 HTTP 处理器
type OnlineCourseHandler struct {
	svc service.OnlineCourseService
}

// NewOnlineCourseHandler 创建 OnlineCourseHandler
func NewOnlineCourseHandler(svc service.OnlineCourseService) *OnlineCourseHandler {
	return &OnlineCourseHandler{svc: svc}
}

// ListOnlineCourses 获取线上课程，可按周过滤
// GET /api/v1/online-courses/:term?week=3
func (h *OnlineCourseHandler) ListOnlineCourses(c *gin.Context) {
	var req dto.OnlineCourseListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.svc.List(c.Request.Context(), c.Param("term"), req.Week)
	if err != nil {
		h.handleOnlineCourseError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

// CreateOnlineCourse 新增线上课程
// POST /api/v1/online-courses/:term
func (h *OnlineCourseHandler) CreateOnlineCourse(c *gin.Context) {
	var req dto.OnlineCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	oc, err := h.svc.Create(c.Request.Context(), c.Param("term"), &req)
	if err != nil {
		h.handleOnlineCourseError(c, err)
		return
	}
	response.Created(c, oc)
}

// UpdateOnlineCourse 修改线上课程
// PUT /api/v1/online-courses/:term/:id
func (h *OnlineCourseHandler) UpdateOnlineCourse(c *gin.Context) {
	var req dto.OnlineCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	oc, err := h.svc.Update(c.Request.Context(), c.Param("term"), c.Param("id"), &req)
	if err != nil {
		h.handleOnlineCourseError(c, err)
		return
	}
	response.OK(c, oc)
}

// DeleteOnlineCourse 删除线上课程
// DELETE /api/v1/online-courses/:term/:id
func (h *OnlineCourseHandler) DeleteOnlineCourse(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("term"), c.Param("id")); err != nil {
		h.handleOnlineCourseError(c, err)
		return
	}
	response.OK(c, nil)
}

func (h *OnlineCourseHandler) handleOnlineCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrOnlineCourseNotFound):
		response.NotFound(c, 15001, "线上课程不存在")
	case errors.Is(err, service.ErrInvalidWeekSpan):
		response.BadRequest(c, 15002, "结束周不能早于开始周")
	default:
		handleTermError(c, err)
	}
}
