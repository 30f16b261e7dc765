package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/service"
	"fiatimetable/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportWeek 导出某一周的课表
// GET /api/v1/export/week.xlsx?week=3
func (h *ExportHandler) ExportWeek(c *gin.Context) {
	var req dto.WeekViewRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	buf, filename, err := h.exportSvc.WeekXLSX(c.Request.Context(), req.Week)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Attachment(c, xlsxContentType, filename, buf.Bytes())
}

// ExportTerm 导出当前学期的 iCalendar 日历
// GET /api/v1/export/term.ics
func (h *ExportHandler) ExportTerm(c *gin.Context) {
	data, filename, err := h.exportSvc.TermICS(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	response.Attachment(c, icsContentType, filename, data)
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoLessons):
		response.NotFound(c, 19001, "当前学期没有可导出的课程")
	case errors.Is(err, service.ErrInvalidWeek):
		response.BadRequest(c, 19002, "周次超出学期范围")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		handleTermError(c, err)
	}
}
