package model

import "time"

// Semester 学期表，对应 semesters
type Semester struct {
	SemesterID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"semester_id"`
	Name       string    `gorm:"type:varchar(50);not null"                      json:"name"`
	StartDate  time.Time `gorm:"type:date;not null"                             json:"start_date"`
	EndDate    time.Time `gorm:"type:date;not null"                             json:"end_date"`
	IsCurrent  bool      `gorm:"not null;default:false"                         json:"is_current"` // 全局至多一个
	BaseModel
}

// TableName 指定表名
func (Semester) TableName() string { return "semesters" }
