package dto

// ── 课程安排 DTO ──

// CreateCourseRequest 新增常规课程
// EditMode=true 时写入原始课表，否则写入临时课表
type CreateCourseRequest struct {
	ScheduleID string `json:"schedule_id" binding:"required"`
	Weekday    int    `json:"weekday"     binding:"required"`
	TimeSlot   int    `json:"time_slot"   binding:"required"`
	CourseName string `json:"course_name" binding:"required,max=100"`
	Classroom  string `json:"classroom"   binding:"omitempty,max=50"`
	Notes      string `json:"notes"`
	EditMode   bool   `json:"edit_mode"`
}

// CreateSpecialCareRequest 新增特需托管，节次固定为 9
type CreateSpecialCareRequest struct {
	ScheduleID   string `json:"schedule_id"   binding:"required"`
	SpecificDate string `json:"specific_date" binding:"required"` // "2024-09-02"
	CourseName   string `json:"course_name"   binding:"required,max=100"`
	Classroom    string `json:"classroom"     binding:"omitempty,max=50"`
	Notes        string `json:"notes"`
	EditMode     bool   `json:"edit_mode"`
}

// MoveCourseRequest 拖拽移动
type MoveCourseRequest struct {
	Weekday  int `json:"weekday"   binding:"required"`
	TimeSlot int `json:"time_slot" binding:"required"`
}

// UpdateCourseRequest 修改课程内容（不改变位置）
type UpdateCourseRequest struct {
	CourseName *string `json:"course_name" binding:"omitempty,min=1,max=100"`
	Classroom  *string `json:"classroom"   binding:"omitempty,max=50"`
	Notes      *string `json:"notes"`
}

// UpdateSpecialCareRequest 修改特需托管内容或日期
type UpdateSpecialCareRequest struct {
	SpecificDate *string `json:"specific_date"`
	CourseName   *string `json:"course_name" binding:"omitempty,min=1,max=100"`
	Classroom    *string `json:"classroom"   binding:"omitempty,max=50"`
	Notes        *string `json:"notes"`
}

// SaveOriginalRequest 保存为原始课表
// Source: auto（默认）| original | working
type SaveOriginalRequest struct {
	Source string `json:"source" binding:"omitempty,oneof=auto original working"`
}

// ArrangementResponse 课程安排及其展示颜色
type ArrangementResponse struct {
	ID           string `json:"id"`
	ScheduleID   string `json:"schedule_id"`
	CourseType   string `json:"course_type"`
	Weekday      int    `json:"weekday"`
	TimeSlot     int    `json:"time_slot"`
	SpecificDate string `json:"specific_date,omitempty"`
	CourseName   string `json:"course_name"`
	Classroom    string `json:"classroom"`
	Notes        string `json:"notes"`
	IsOriginal   bool   `json:"is_original"`
	Color        string `json:"color"`
}

// MoveResponse 移动结果；OriginalKept=true 表示原始课程保留，新位置为临时副本
type MoveResponse struct {
	Arrangement  ArrangementResponse `json:"arrangement"`
	OriginalKept bool                `json:"original_kept"`
}

// OriginalScheduleResponse 原始课表（编辑模式视图）
type OriginalScheduleResponse struct {
	ScheduleID     string                `json:"schedule_id"`
	RegularCourses []ArrangementResponse `json:"regular_courses"`
	SpecialCare    []ArrangementResponse `json:"special_care"`
}

// WeekScheduleResponse 某一周的临时课表（查看模式视图）
type WeekScheduleResponse struct {
	ScheduleID     string                `json:"schedule_id"`
	WeekNumber     int                   `json:"week_number"`
	WeekStart      string                `json:"week_start"`
	WeekEnd        string                `json:"week_end"`
	RegularCourses []ArrangementResponse `json:"regular_courses"`
	SpecialCare    []ArrangementResponse `json:"special_care"`
}

// SaveOriginalResponse 保存原始课表结果
type SaveOriginalResponse struct {
	Source string `json:"source"` // 实际采用的来源：original | working
	Count  int    `json:"count"`
}

// ResetResponse 重置结果
type ResetResponse struct {
	Count int `json:"count"`
}
