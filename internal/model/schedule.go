package model

// Schedule 课程表，对应 schedules
// 同一教师同一学期至多一个 is_active 的课表
type Schedule struct {
	ScheduleID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"schedule_id"`
	TeacherID  string `gorm:"type:uuid;not null"                             json:"teacher_id"`
	SemesterID string `gorm:"type:uuid;not null"                             json:"semester_id"`
	Name       string `gorm:"type:varchar(100);not null"                     json:"name"`
	IsActive   bool   `gorm:"not null;default:true"                          json:"is_active"`
	Notes      string `gorm:"type:text;not null;default:''"                  json:"notes"`

	// HasBaseline 是否保存过原始课表；保存过之后原始课表为空也是有效基线
	HasBaseline bool `gorm:"not null;default:false" json:"has_baseline"`
	BaseModel

	// 关联
	Teacher  *Teacher  `gorm:"foreignKey:TeacherID;references:TeacherID"   json:"teacher,omitempty"`
	Semester *Semester `gorm:"foreignKey:SemesterID;references:SemesterID" json:"semester,omitempty"`
}

// TableName 指定表名
func (Schedule) TableName() string { return "schedules" }
