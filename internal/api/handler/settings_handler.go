package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"fiatimetable/internal/dto"
	"fiatimetable/internal/service"
	"fiatimetable/pkg/response"
)

// SettingsHandler 设置 HTTP 处理器
type SettingsHandler struct {
	svc service.SettingsService
}

// NewSettingsHandler 创建 SettingsHandler
func NewSettingsHandler(svc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// GetSettings 获取当前学期与主题
// GET /api/v1/settings
func (h *SettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.svc.Get(c.Request.Context())
	if err != nil {
		h.handleSettingsError(c, err)
		return
	}
	response.OK(c, settings)
}

// UpdateSettings 修改当前学期或主题
// PUT /api/v1/settings
func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	settings, err := h.svc.Update(c.Request.Context(), &req)
	if err != nil {
		h.handleSettingsError(c, err)
		return
	}
	response.OK(c, settings)
}

func (h *SettingsHandler) handleSettingsError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrInvalidTheme) {
		response.BadRequest(c, 17001, err.Error())
		return
	}
	handleTermError(c, err)
}
