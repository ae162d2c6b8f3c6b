package model

import "time"

// 任务状态
const (
	TaskStatusPending   = "pending"
	TaskStatusCompleted = "completed"
)

// Task 任务/待办，对应 tasks，挂在课表某个单元格上
type Task struct {
	TaskID        string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"task_id"`
	TeacherID     string     `gorm:"type:uuid;not null"                             json:"teacher_id"`
	ScheduleID    string     `gorm:"type:uuid;not null"                             json:"schedule_id"`
	Weekday       int        `gorm:"type:smallint;not null"                         json:"weekday"`
	TimeSlot      int        `gorm:"type:smallint;not null"                         json:"time_slot"`
	TaskDate      *time.Time `gorm:"type:date"                                      json:"task_date,omitempty"`
	Title         string     `gorm:"type:varchar(100);not null"                     json:"title"`
	Description   string     `gorm:"type:text;not null;default:''"                  json:"description"`
	TaskType      string     `gorm:"type:varchar(20);not null;default:'general'"    json:"task_type"`      // general | homework | meeting | activity
	Status        string     `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`         // pending | completed
	PriorityLevel string     `gorm:"type:varchar(10);not null;default:'medium'"     json:"priority_level"` // low | medium | high
	RemindAt      *time.Time `json:"remind_at,omitempty"`
	RemindedAt    *time.Time `json:"reminded_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Task) TableName() string { return "tasks" }
