package dto

// UpsertWeeklyNoteRequest 保存周备注，同一周重复保存覆盖
type UpsertWeeklyNoteRequest struct {
	TeacherID  string `json:"teacher_id"  binding:"required"`
	ScheduleID string `json:"schedule_id" binding:"required"`
	Year       int    `json:"year"        binding:"required,min=2000,max=2100"`
	WeekNumber int    `json:"week_number" binding:"required,min=1,max=53"`
	Content    string `json:"content"`
}

// WeeklyNoteResponse 周备注
type WeeklyNoteResponse struct {
	TeacherID  string `json:"teacher_id"`
	ScheduleID string `json:"schedule_id"`
	Year       int    `json:"year"`
	WeekNumber int    `json:"week_number"`
	Content    string `json:"content"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}
