package model

import (
	"time"

	"github.com/xszhu002/ke-cheng-biao/internal/grid"
)

// Arrangement 课程安排，对应 course_arrangements
// IsOriginal=true 为原始课表（基准），false 为临时课表（工作副本）
type Arrangement struct {
	ArrangementID string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ScheduleID    string     `gorm:"type:uuid;not null;index"                       json:"schedule_id"`
	CourseType    grid.Kind  `gorm:"type:varchar(20);not null;default:'regular'"    json:"course_type"`
	Weekday       *int       `gorm:"type:smallint"                                  json:"weekday"` // 特需托管为空，由日期推导
	TimeSlot      int        `gorm:"type:smallint;not null"                         json:"time_slot"`
	SpecificDate  *time.Time `gorm:"type:date"                                      json:"specific_date,omitempty"`
	CourseName    string     `gorm:"type:varchar(100);not null"                     json:"course_name"`
	Classroom     string     `gorm:"type:varchar(50);not null;default:''"           json:"classroom"`
	Notes         string     `gorm:"type:text;not null;default:''"                  json:"notes"`
	IsOriginal    bool       `gorm:"not null;default:false"                         json:"is_original"`
	BaseModel
}

// TableName 指定表名
func (Arrangement) TableName() string { return "course_arrangements" }

// IsSpecialCare 是否为特需托管
func (a *Arrangement) IsSpecialCare() bool {
	return a.CourseType == grid.KindSpecialCare
}

// EffectiveWeekday 实际所在星期：特需托管取日期对应的星期，周末返回 6/7
func (a *Arrangement) EffectiveWeekday() int {
	if a.IsSpecialCare() {
		if a.SpecificDate == nil {
			return 0
		}
		return grid.WeekdayFromDate(*a.SpecificDate)
	}
	if a.Weekday == nil {
		return 0
	}
	return *a.Weekday
}

// Cell 所在网格单元
func (a *Arrangement) Cell() grid.Cell {
	return grid.Cell{Weekday: a.EffectiveWeekday(), TimeSlot: a.TimeSlot}
}

// Clone 复制展示字段生成新行（不含主键与时间戳），用于生成另一代数据
func (a *Arrangement) Clone(original bool) *Arrangement {
	c := &Arrangement{
		ScheduleID: a.ScheduleID,
		CourseType: a.CourseType,
		TimeSlot:   a.TimeSlot,
		CourseName: a.CourseName,
		Classroom:  a.Classroom,
		Notes:      a.Notes,
		IsOriginal: original,
	}
	if a.Weekday != nil {
		w := *a.Weekday
		c.Weekday = &w
	}
	if a.SpecificDate != nil {
		d := *a.SpecificDate
		c.SpecificDate = &d
	}
	return c
}
