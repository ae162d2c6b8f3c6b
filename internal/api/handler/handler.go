package handler

import "github.com/xszhu002/ke-cheng-biao/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Teacher    *TeacherHandler
	Semester   *SemesterHandler
	Schedule   *ScheduleHandler
	Course     *CourseHandler
	Task       *TaskHandler
	WeeklyNote *WeeklyNoteHandler
	Export     *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Teacher:    NewTeacherHandler(svc.Teacher),
		Semester:   NewSemesterHandler(svc.Semester),
		Schedule:   NewScheduleHandler(svc.Schedule, svc.Import),
		Course:     NewCourseHandler(svc.Arrangement),
		Task:       NewTaskHandler(svc.Task),
		WeeklyNote: NewWeeklyNoteHandler(svc.WeeklyNote),
		Export:     NewExportHandler(svc.Export),
	}
}
