package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
	"github.com/xszhu002/ke-cheng-biao/internal/service"
	"github.com/xszhu002/ke-cheng-biao/pkg/response"
)

// TaskHandler 任务模块 HTTP 处理器
type TaskHandler struct {
	taskSvc service.TaskService
}

// NewTaskHandler 创建 TaskHandler
func NewTaskHandler(taskSvc service.TaskService) *TaskHandler {
	return &TaskHandler{taskSvc: taskSvc}
}

// ListCellTasks 单元格上的任务
// GET /api/v1/tasks/course/:scheduleId/:weekday/:timeSlot
func (h *TaskHandler) ListCellTasks(c *gin.Context) {
	weekday, ok := MustParamInt(c, "weekday")
	if !ok {
		return
	}
	timeSlot, ok := MustParamInt(c, "timeSlot")
	if !ok {
		return
	}

	tasks, err := h.taskSvc.ListByCell(c.Request.Context(), c.Param("scheduleId"), weekday, timeSlot)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	response.OK(c, tasks)
}

// ListTeacherTasks 教师任务列表，可按日期、状态、类型筛选
// GET /api/v1/tasks/teacher/:teacherId?date=&status=&task_type=
func (h *TaskHandler) ListTeacherTasks(c *gin.Context) {
	var filter dto.TaskFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		bindFailed(c, err)
		return
	}

	tasks, err := h.taskSvc.ListByTeacher(c.Request.Context(), c.Param("teacherId"), &filter)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	response.OK(c, tasks)
}

// GetTeacherStats 教师任务统计
// GET /api/v1/tasks/teacher/:teacherId/stats
func (h *TaskHandler) GetTeacherStats(c *gin.Context) {
	stats, err := h.taskSvc.Stats(c.Request.Context(), c.Param("teacherId"))
	if err != nil {
		handleTaskError(c, err)
		return
	}
	response.OK(c, stats)
}

// ListReminders 已到提醒时间的待办
// GET /api/v1/tasks/teacher/:teacherId/reminders
func (h *TaskHandler) ListReminders(c *gin.Context) {
	tasks, err := h.taskSvc.ListReminders(c.Request.Context(), c.Param("teacherId"))
	if err != nil {
		handleTaskError(c, err)
		return
	}
	response.OK(c, tasks)
}

// CreateTask 创建任务
// POST /api/v1/tasks
func (h *TaskHandler) CreateTask(c *gin.Context) {
	var req dto.CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	task, err := h.taskSvc.Create(c.Request.Context(), &req)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	response.Created(c, task)
}

// UpdateTask 更新任务
// PUT /api/v1/tasks/:id
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	var req dto.UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	task, err := h.taskSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		handleTaskError(c, err)
		return
	}
	response.OK(c, task)
}

// CompleteTask 标记完成
// POST /api/v1/tasks/:id/complete
func (h *TaskHandler) CompleteTask(c *gin.Context) {
	task, err := h.taskSvc.Complete(c.Request.Context(), c.Param("id"))
	if err != nil {
		handleTaskError(c, err)
		return
	}
	response.OK(c, task)
}

// DeleteTask 删除任务
// DELETE /api/v1/tasks/:id
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	if err := h.taskSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		handleTaskError(c, err)
		return
	}
	response.OKMessage(c, "删除成功", nil)
}

func handleTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrTaskNotFound):
		response.NotFound(c, 15001, "任务不存在")
	case errors.Is(err, service.ErrIllegalPlacement):
		response.BadRequest(c, 15002, "任务只能挂在周一至周五的节次上")
	default:
		handleCommonError(c, err)
	}
}
