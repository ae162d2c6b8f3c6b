package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
	"github.com/xszhu002/ke-cheng-biao/internal/service"
	"github.com/xszhu002/ke-cheng-biao/pkg/response"
)

// WeeklyNoteHandler 周备注 HTTP 处理器
type WeeklyNoteHandler struct {
	noteSvc service.WeeklyNoteService
}

// NewWeeklyNoteHandler 创建 WeeklyNoteHandler
func NewWeeklyNoteHandler(noteSvc service.WeeklyNoteService) *WeeklyNoteHandler {
	return &WeeklyNoteHandler{noteSvc: noteSvc}
}

// GetNote 读取周备注
// GET /api/v1/weekly-notes/:teacherId/:scheduleId/:year/:week
func (h *WeeklyNoteHandler) GetNote(c *gin.Context) {
	year, ok := MustParamInt(c, "year")
	if !ok {
		return
	}
	week, ok := MustParamInt(c, "week")
	if !ok {
		return
	}

	note, err := h.noteSvc.Get(c.Request.Context(), c.Param("teacherId"), c.Param("scheduleId"), year, week)
	if err != nil {
		if errors.Is(err, service.ErrNoteNotFound) {
			response.NotFound(c, 16001, "本周暂无备注")
			return
		}
		handleCommonError(c, err)
		return
	}
	response.OK(c, note)
}

// UpsertNote 保存周备注
// POST /api/v1/weekly-notes
func (h *WeeklyNoteHandler) UpsertNote(c *gin.Context) {
	var req dto.UpsertWeeklyNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	note, err := h.noteSvc.Upsert(c.Request.Context(), &req)
	if err != nil {
		handleCommonError(c, err)
		return
	}
	response.OK(c, note)
}
