package dto

import "time"

// ── 任务模块 DTO ──

// CreateTaskRequest 创建任务
type CreateTaskRequest struct {
	TeacherID     string     `json:"teacher_id"     binding:"required"`
	ScheduleID    string     `json:"schedule_id"    binding:"required"`
	Weekday       int        `json:"weekday"        binding:"required,min=1,max=5"`
	TimeSlot      int        `json:"time_slot"      binding:"required,min=1,max=9"`
	TaskDate      string     `json:"task_date"`
	Title         string     `json:"title"          binding:"required,max=100"`
	Description   string     `json:"description"`
	TaskType      string     `json:"task_type"      binding:"omitempty,oneof=general homework meeting activity"`
	PriorityLevel string     `json:"priority_level" binding:"omitempty,oneof=low medium high"`
	RemindAt      *time.Time `json:"remind_at"`
}

// UpdateTaskRequest 更新任务
type UpdateTaskRequest struct {
	Title         *string    `json:"title"          binding:"omitempty,min=1,max=100"`
	Description   *string    `json:"description"`
	TaskDate      *string    `json:"task_date"`
	TaskType      *string    `json:"task_type"      binding:"omitempty,oneof=general homework meeting activity"`
	Status        *string    `json:"status"         binding:"omitempty,oneof=pending completed"`
	PriorityLevel *string    `json:"priority_level" binding:"omitempty,oneof=low medium high"`
	RemindAt      *time.Time `json:"remind_at"`
}

// TaskFilter 教师任务列表筛选
type TaskFilter struct {
	Date     string `form:"date"`
	Status   string `form:"status"    binding:"omitempty,oneof=pending completed"`
	TaskType string `form:"task_type" binding:"omitempty,oneof=general homework meeting activity"`
}

// TaskResponse 任务信息
type TaskResponse struct {
	ID            string     `json:"id"`
	TeacherID     string     `json:"teacher_id"`
	ScheduleID    string     `json:"schedule_id"`
	Weekday       int        `json:"weekday"`
	TimeSlot      int        `json:"time_slot"`
	TaskDate      string     `json:"task_date,omitempty"`
	Title         string     `json:"title"`
	Description   string     `json:"description"`
	TaskType      string     `json:"task_type"`
	Status        string     `json:"status"`
	PriorityLevel string     `json:"priority_level"`
	RemindAt      *time.Time `json:"remind_at,omitempty"`
	RemindedAt    *time.Time `json:"reminded_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
}

// TaskStatsResponse 教师任务统计
type TaskStatsResponse struct {
	Total        int64 `json:"total"`
	Pending      int64 `json:"pending"`
	Completed    int64 `json:"completed"`
	HighPriority int64 `json:"high_priority"`
}
