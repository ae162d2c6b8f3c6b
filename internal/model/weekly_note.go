package model

// WeeklyNote 周备注，对应 weekly_notes，(teacher, schedule, year, week) 唯一
type WeeklyNote struct {
	NoteID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"note_id"`
	TeacherID  string `gorm:"type:uuid;not null"                             json:"teacher_id"`
	ScheduleID string `gorm:"type:uuid;not null"                             json:"schedule_id"`
	Year       int    `gorm:"type:smallint;not null"                         json:"year"`
	WeekNumber int    `gorm:"type:smallint;not null"                         json:"week_number"`
	Content    string `gorm:"type:text;not null;default:''"                  json:"content"`
	BaseModel
}

// TableName 指定表名
func (WeeklyNote) TableName() string { return "weekly_notes" }
