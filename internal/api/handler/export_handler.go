package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xszhu002/ke-cheng-biao/internal/service"
	"github.com/xszhu002/ke-cheng-biao/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportWeekExcel 导出周课表 Excel
// GET /api/v1/schedules/:id/export/week/:week
func (h *ExportHandler) ExportWeekExcel(c *gin.Context) {
	week, ok := MustParamInt(c, "week")
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportWeekExcel(c.Request.Context(), c.Param("id"), week)
	if err != nil {
		handleExportError(c, err)
		return
	}
	response.Attachment(c, filename, contentTypeXLSX, buf.Bytes())
}

// ExportWeekICS 导出周课表 iCalendar
// GET /api/v1/schedules/:id/export/week/:week/ics
func (h *ExportHandler) ExportWeekICS(c *gin.Context) {
	week, ok := MustParamInt(c, "week")
	if !ok {
		return
	}

	body, filename, err := h.exportSvc.ExportWeekICS(c.Request.Context(), c.Param("id"), week)
	if err != nil {
		handleExportError(c, err)
		return
	}
	response.Attachment(c, filename, contentTypeICS, body)
}

func handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		_ = c.Error(err)
		response.Error(c, 500, 17002, "生成导出文件失败")
	default:
		handleScheduleError(c, err)
	}
}
