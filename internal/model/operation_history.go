package model

import (
	"time"

	"gorm.io/datatypes"
)

// 操作类型
const (
	OperationAdd          = "add"
	OperationMove         = "move"
	OperationDelete       = "delete"
	OperationUpdate       = "update"
	OperationSaveOriginal = "save_original"
	OperationReset        = "reset"
)

// OperationHistory 操作历史，对应 operation_history，只追加
type OperationHistory struct {
	HistoryID     string         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"history_id"`
	ScheduleID    string         `gorm:"type:uuid;not null"                             json:"schedule_id"`
	OperationType string         `gorm:"type:varchar(20);not null"                      json:"operation_type"`
	OldData       datatypes.JSON `gorm:"type:jsonb"                                     json:"old_data,omitempty"`
	NewData       datatypes.JSON `gorm:"type:jsonb"                                     json:"new_data,omitempty"`
	CreatedAt     time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (OperationHistory) TableName() string { return "operation_history" }
