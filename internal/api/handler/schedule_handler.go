package handler

import (
	"errors"
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
	"github.com/xszhu002/ke-cheng-biao/internal/service"
	"github.com/xszhu002/ke-cheng-biao/pkg/response"
)

// ScheduleHandler 课表模块 HTTP 处理器：课表管理、保存/重置、周视图、历史、导入
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
	importSvc   service.ImportService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService, importSvc service.ImportService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc, importSvc: importSvc}
}

// GetTeacherSchedule 教师当前有效课表
// GET /api/v1/schedules/teacher/:teacherId
func (h *ScheduleHandler) GetTeacherSchedule(c *gin.Context) {
	schedule, err := h.scheduleSvc.GetByTeacher(c.Request.Context(), c.Param("teacherId"))
	if err != nil {
		handleScheduleError(c, err)
		return
	}
	response.OK(c, schedule)
}

// CreateSchedule 创建课表
// POST /api/v1/schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	schedule, err := h.scheduleSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleScheduleError(c, err)
		return
	}
	response.Created(c, schedule)
}

// SaveOriginal 保存为原始课表，请求体可省略
// POST /api/v1/schedules/:id/save-original
func (h *ScheduleHandler) SaveOriginal(c *gin.Context) {
	var req dto.SaveOriginalRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		bindFailed(c, err)
		return
	}
	source, err := service.ParseSaveSource(req.Source)
	if err != nil {
		handleScheduleError(c, err)
		return
	}

	result, err := h.scheduleSvc.SaveAsOriginal(c.Request.Context(), c.Param("id"), source)
	if err != nil {
		handleScheduleError(c, err)
		return
	}
	response.OKMessage(c, "原始课程表保存成功", result)
}

// ResetSchedule 用原始课表覆盖临时课表
// POST /api/v1/schedules/:id/reset
func (h *ScheduleHandler) ResetSchedule(c *gin.Context) {
	result, err := h.scheduleSvc.Reset(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleScheduleError(c, err)
		return
	}
	response.OKMessage(c, "课程表已重置", result)
}

// GetOriginal 原始课表（编辑模式）
// GET /api/v1/schedules/:id/original
func (h *ScheduleHandler) GetOriginal(c *gin.Context) {
	result, err := h.scheduleSvc.GetOriginal(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleScheduleError(c, err)
		return
	}
	response.OK(c, result)
}

// GetWeek 指定周的临时课表（查看模式）
// GET /api/v1/schedules/:id/week/:week
func (h *ScheduleHandler) GetWeek(c *gin.Context) {
	week, ok := MustParamInt(c, "week")
	if !ok {
		return
	}

	result, err := h.scheduleSvc.GetWeek(c.Request.Context(), c.Param("id"), week)
	if err != nil {
		handleScheduleError(c, err)
		return
	}
	response.OK(c, result)
}

// ListHistory 操作历史（分页）
// GET /api/v1/schedules/:id/history?page=1&page_size=20
func (h *ScheduleHandler) ListHistory(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		bindFailed(c, err)
		return
	}

	list, total, err := h.scheduleSvc.ListHistory(c.Request.Context(), c.Param("id"), &page)
	if err != nil {
		handleScheduleError(c, err)
		return
	}
	response.OKPage(c, list, total, page.GetPage(), page.GetPageSize())
}

// ImportICS 从 iCalendar 导入原始课表
// POST /api/v1/schedules/:id/import/ics
//
// 支持两种方式：
//   - 文件上传: multipart/form-data, field="file"
//   - 原始内容: text/calendar 请求体
func (h *ScheduleHandler) ImportICS(c *gin.Context) {
	var body io.Reader
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, _, err := c.Request.FormFile("file")
		if err != nil {
			response.BadRequest(c, 17001, "请上传 ICS 文件")
			return
		}
		defer file.Close()
		body = file
	} else {
		if c.Request.ContentLength == 0 {
			response.BadRequest(c, 17001, "请上传 ICS 文件")
			return
		}
		body = c.Request.Body
	}

	result, err := h.importSvc.ImportICS(c.Request.Context(), c.Param("id"), body)
	if err != nil {
		handleScheduleError(c, err)
		return
	}
	response.Created(c, result)
}

func handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 13001, "课表不存在")
	case errors.Is(err, service.ErrNoBaseline):
		response.BadRequest(c, 13002, "请先保存原始课程表")
	case errors.Is(err, service.ErrScheduleExists):
		response.Conflict(c, 13003, "该教师本学期已有课表")
	case errors.Is(err, service.ErrInvalidWeek):
		response.BadRequest(c, 13004, "周次必须大于 0")
	case errors.Is(err, service.ErrInvalidSource):
		response.BadRequest(c, 13006, "source 只能为 auto、original 或 working")
	case errors.Is(err, service.ErrTeacherNotFound):
		response.NotFound(c, 11001, "教师不存在")
	case errors.Is(err, service.ErrSemesterNotFound):
		response.NotFound(c, 12001, "学期不存在")
	default:
		handleCommonError(c, err)
	}
}
