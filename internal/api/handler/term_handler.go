package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/service"
	"fiatimetable/pkg/response"
)

// TermHandler 学期模块 HTTP 处理器
type TermHandler struct {
	svc service.TermService
}

// NewTermHandler 创建 TermHandler
func NewTermHandler(svc service.TermService) *TermHandler {
	return &TermHandler{svc: svc}
}

// ListTerms 获取学期列表
// GET /api/v1/terms
func (h *TermHandler) ListTerms(c *gin.Context) {
	terms, err := h.svc.List(c.Request.Context())
	if err != nil {
		handleTermError(c, err)
		return
	}
	response.OK(c, gin.H{"list": terms})
}

// CreateTerm 创建学期
// POST /api/v1/terms
func (h *TermHandler) CreateTerm(c *gin.Context) {
	var req dto.CreateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	term, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		handleTermError(c, err)
		return
	}
	response.Created(c, term)
}

// UpdateTerm 修改学期（改名时数据随之迁移）
// PUT /api/v1/terms/:name
func (h *TermHandler) UpdateTerm(c *gin.Context) {
	var req dto.UpdateTermRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	term, err := h.svc.Update(c.Request.Context(), c.Param("name"), &req)
	if err != nil {
		handleTermError(c, err)
		return
	}
	response.OK(c, term)
}

// DeleteTerm 删除学期
// DELETE /api/v1/terms/:name
func (h *TermHandler) DeleteTerm(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("name")); err != nil {
		handleTermError(c, err)
		return
	}
	response.OK(c, nil)
}

// handleTermError 学期相关错误同时被课表、线上课程等模块复用
func handleTermError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTermNotFound):
		response.NotFound(c, 12001, "学期不存在")
	case errors.Is(err, service.ErrTermNameExists):
		response.Conflict(c, 12002, "学期名称已存在")
	case errors.Is(err, service.ErrNoTerm):
		response.NotFound(c, 12003, "尚未创建任何学期")
	default:
		response.InternalError(c)
	}
}
