package model

// Teacher 教师表，对应 teachers
type Teacher struct {
	TeacherID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"teacher_id"`
	Name      string `gorm:"type:varchar(50);not null;uniqueIndex"          json:"name"`
	Email     string `gorm:"type:varchar(100);not null;default:''"          json:"email"`
	Phone     string `gorm:"type:varchar(20);not null;default:''"           json:"phone"`
	Subject   string `gorm:"type:varchar(50);not null;default:''"           json:"subject"`
	BaseModel
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }
