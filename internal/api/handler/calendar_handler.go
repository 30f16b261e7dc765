package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/service"
	"fiatimetable/pkg/response"
)

// CalendarHandler ICS 日历导入
type CalendarHandler struct {
	svc service.CalendarService
}

// NewCalendarHandler 创建 CalendarHandler
func NewCalendarHandler(svc service.CalendarService) *CalendarHandler {
	return &CalendarHandler{svc: svc}
}

// ImportICS 把 ICS 日历中的课程导入学期课表
// POST /api/v1/import/ics/:term
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"
//   - URL 导入: application/json, body={"url": "..."}（也接受 form 字段 url）
func (h *CalendarHandler) ImportICS(c *gin.Context) {
	term := c.Param("term")

	file, _, err := c.Request.FormFile("file")
	if err == nil {
		defer file.Close()
		resp, err := h.svc.ImportICS(c.Request.Context(), term, file)
		if err != nil {
			h.handleCalendarError(c, err)
			return
		}
		response.Created(c, resp)
		return
	}

	var req dto.ICSImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		req.URL = c.PostForm("url")
		if req.URL == "" {
			response.BadRequest(c, 20001, "请上传 ICS 文件或提供 ICS URL")
			return
		}
	}

	resp, err := h.svc.ImportICSURL(c.Request.Context(), term, req.URL)
	if err != nil {
		h.handleCalendarError(c, err)
		return
	}
	response.Created(c, resp)
}

func (h *CalendarHandler) handleCalendarError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrICSFetchFailed):
		response.ErrorWithDetails(c, http.StatusBadRequest, 20002, "ICS URL 获取失败", err.Error())
	case errors.Is(err, service.ErrICSInvalid):
		response.BadRequest(c, 20003, "ICS 文件解析失败")
	default:
		handleTermError(c, err)
	}
}
