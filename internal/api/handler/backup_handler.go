package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"fiatimetable/internal/service"
	apperrors "fiatimetable/pkg/errors"
	"fiatimetable/pkg/response"
)

// BackupHandler 本地与云端备份 HTTP 处理器
type BackupHandler struct {
	svc service.BackupService
}

// NewBackupHandler 创建 BackupHandler
func NewBackupHandler(svc service.BackupService) *BackupHandler {
	return &BackupHandler{svc: svc}
}

// ExportBackup 下载完整备份
// GET /api/v1/backup/export
func (h *BackupHandler) ExportBackup(c *gin.Context) {
	data, filename, err := h.svc.Export(c.Request.Context())
	if err != nil {
		h.handleBackupError(c, err)
		return
	}

	response.Attachment(c, "application/json; charset=utf-8", filename, data)
}

// ImportBackup 导入备份文件，覆盖全部数据
// POST /api/v1/backup/import
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"
//   - 原始请求体: application/json
func (h *BackupHandler) ImportBackup(c *gin.Context) {
	var reader io.Reader = c.Request.Body
	if file, _, err := c.Request.FormFile("file"); err == nil {
		defer file.Close()
		reader = file
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		response.TooLarge(c)
		return
	}
	if len(content) == 0 {
		response.BadRequest(c, 18001, "请上传备份文件")
		return
	}

	stats, err := h.svc.Import(c.Request.Context(), content)
	if err != nil {
		h.handleBackupError(c, err)
		return
	}
	response.OK(c, stats)
}

// UploadCloud 上传备份到对象存储
// POST /api/v1/backup/cloud/upload
func (h *BackupHandler) UploadCloud(c *gin.Context) {
	result, err := h.svc.UploadCloud(c.Request.Context())
	if err != nil {
		h.handleBackupError(c, err)
		return
	}
	response.OK(c, result)
}

// DownloadCloud 从对象存储恢复备份
// POST /api/v1/backup/cloud/download
func (h *BackupHandler) DownloadCloud(c *gin.Context) {
	result, err := h.svc.DownloadCloud(c.Request.Context())
	if err != nil {
		h.handleBackupError(c, err)
		return
	}
	response.OK(c, result)
}

// CloudHistory 最近的云端同步记录
// GET /api/v1/backup/cloud/history
func (h *BackupHandler) CloudHistory(c *gin.Context) {
	list, err := h.svc.History(c.Request.Context())
	if err != nil {
		h.handleBackupError(c, err)
		return
	}
	response.OK(c, gin.H{"list": list})
}

func (h *BackupHandler) handleBackupError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBackupInvalid):
		response.BadRequest(c, 18002, "备份文件格式无效")
	case errors.Is(err, apperrors.ErrCloudNotConfigured):
		response.Error(c, http.StatusServiceUnavailable, 18003, "未配置云端存储")
	case errors.Is(err, apperrors.ErrCloudTransferFailed):
		response.ErrorWithDetails(c, http.StatusBadGateway, 18004, "云端同步失败", err.Error())
	default:
		response.InternalError(c)
	}
}
