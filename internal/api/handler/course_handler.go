package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
	"github.com/xszhu002/ke-cheng-biao/internal/grid"
	"github.com/xszhu002/ke-cheng-biao/internal/service"
	"github.com/xszhu002/ke-cheng-biao/pkg/response"
)

// CourseHandler 课程安排 HTTP 处理器：常规课程与特需托管
type CourseHandler struct {
	arrangementSvc service.ArrangementService
}

// NewCourseHandler 创建 CourseHandler
func NewCourseHandler(arrangementSvc service.ArrangementService) *CourseHandler {
	return &CourseHandler{arrangementSvc: arrangementSvc}
}

// ── 常规课程 ──

// CreateCourse 新增课程；edit_mode=true 写入原始课表
// POST /api/v1/courses
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req dto.CreateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	course, err := h.arrangementSvc.CreateCourse(c.Request.Context(), &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.Created(c, course)
}

// MoveCourse 拖拽移动
// PUT /api/v1/courses/:id/move
func (h *CourseHandler) MoveCourse(c *gin.Context) {
	var req dto.MoveCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	result, err := h.arrangementSvc.Move(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, result)
}

// UpdateCourse 修改课程名称、教室、备注
// PUT /api/v1/courses/:id
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	var req dto.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	course, err := h.arrangementSvc.UpdateCourse(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, course)
}

// DeleteCourse 删除课程；删除原始课程需 edit_mode=true
// DELETE /api/v1/courses/:id?edit_mode=true
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	h.delete(c, "")
}

// ── 特需托管 ──

// CreateSpecialCare 新增特需托管
// POST /api/v1/special-care
func (h *CourseHandler) CreateSpecialCare(c *gin.Context) {
	var req dto.CreateSpecialCareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	sc, err := h.arrangementSvc.CreateSpecialCare(c.Request.Context(), &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.Created(c, sc)
}

// ListSpecialCare 课表全部特需托管（两代数据）
// GET /api/v1/special-care/schedule/:scheduleId
func (h *CourseHandler) ListSpecialCare(c *gin.Context) {
	list, err := h.arrangementSvc.ListSpecialCare(c.Request.Context(), c.Param("scheduleId"))
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, list)
}

// UpdateSpecialCare 修改特需托管内容或日期
// PUT /api/v1/special-care/:id
func (h *CourseHandler) UpdateSpecialCare(c *gin.Context) {
	var req dto.UpdateSpecialCareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	sc, err := h.arrangementSvc.UpdateSpecialCare(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleCourseError(c, err)
		return
	}
	response.OK(c, sc)
}

// DeleteSpecialCare 删除特需托管
// DELETE /api/v1/special-care/:id?edit_mode=true
func (h *CourseHandler) DeleteSpecialCare(c *gin.Context) {
	h.delete(c, grid.KindSpecialCare)
}

func (h *CourseHandler) delete(c *gin.Context, kind grid.Kind) {
	if err := h.arrangementSvc.Delete(c.Request.Context(), c.Param("id"), kind, queryBool(c, "edit_mode")); err != nil {
		handleCourseError(c, err)
		return
	}
	response.OKMessage(c, "删除成功", nil)
}

func handleCourseError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrArrangementNotFound):
		response.NotFound(c, 14001, "课程不存在")
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 13001, "课表不存在")
	case errors.Is(err, service.ErrIllegalPlacement):
		response.BadRequest(c, 14002, "该课程类型不能放在此节次")
	case errors.Is(err, service.ErrCellOccupied):
		response.BadRequest(c, 14003, "目标位置已有课程")
	case errors.Is(err, service.ErrSameCell):
		response.BadRequest(c, 14004, "目标位置与原位置相同")
	case errors.Is(err, service.ErrEditModeRequired):
		response.BadRequest(c, 14005, "删除原始课程需要进入编辑模式")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 14006, "日期格式无效，应为 YYYY-MM-DD")
	default:
		handleCommonError(c, err)
	}
}
