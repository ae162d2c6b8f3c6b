package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/xszhu002/ke-cheng-biao/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Teacher     TeacherService
	Semester    SemesterService
	Schedule    ScheduleService
	Arrangement ArrangementService
	Task        TaskService
	WeeklyNote  WeeklyNoteService
	Export      ExportService
	Import      ImportService
}

// NewService 创建 Service 聚合
// loc 为节次时间所在时区，用于 ICS 导入导出
func NewService(
	repo *repository.Repository,
	cache WeekCache,
	loc *time.Location,
	logger *zap.Logger,
) *Service {
	schedule := NewScheduleService(repo, cache, logger)
	return &Service{
		Teacher:     NewTeacherService(repo, logger),
		Semester:    NewSemesterService(repo, logger),
		Schedule:    schedule,
		Arrangement: NewArrangementService(repo, cache, logger),
		Task:        NewTaskService(repo, logger),
		WeeklyNote:  NewWeeklyNoteService(repo, logger),
		Export:      NewExportService(schedule, loc, logger),
		Import:      NewImportService(repo, cache, loc, logger),
	}
}
