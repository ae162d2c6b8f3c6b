package dto

import "encoding/json"

// ── 课表模块 DTO ──

// CreateScheduleRequest 创建课表；SemesterID 为空时使用当前学期
type CreateScheduleRequest struct {
	TeacherID  string `json:"teacher_id"  binding:"required"`
	SemesterID string `json:"semester_id"`
	Name       string `json:"name"        binding:"required,max=100"`
	Notes      string `json:"notes"`
}

// ScheduleResponse 课表信息
type ScheduleResponse struct {
	ID          string            `json:"id"`
	TeacherID   string            `json:"teacher_id"`
	SemesterID  string            `json:"semester_id"`
	Name        string            `json:"name"`
	IsActive    bool              `json:"is_active"`
	Notes       string            `json:"notes"`
	HasBaseline bool              `json:"has_baseline"`
	Teacher     *TeacherResponse  `json:"teacher,omitempty"`
	Semester    *SemesterResponse `json:"semester,omitempty"`
	CurrentWeek int               `json:"current_week"`
}

// HistoryResponse 操作历史条目
type HistoryResponse struct {
	ID            string          `json:"id"`
	OperationType string          `json:"operation_type"`
	OldData       json.RawMessage `json:"old_data,omitempty"`
	NewData       json.RawMessage `json:"new_data,omitempty"`
	CreatedAt     string          `json:"created_at"`
}

// ImportResponse ICS 导入结果
type ImportResponse struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}
