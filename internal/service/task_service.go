package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
	"github.com/xszhu002/ke-cheng-biao/internal/grid"
	"github.com/xszhu002/ke-cheng-biao/internal/model"
	"github.com/xszhu002/ke-cheng-biao/internal/repository"
	pkgerrors "github.com/xszhu002/ke-cheng-biao/pkg/errors"
)

// reminderBatch 单次提醒扫描处理的最大任务数
const reminderBatch = 200

// TaskService 任务业务接口
type TaskService interface {
	ListByCell(ctx context.Context, scheduleID string, weekday, timeSlot int) ([]dto.TaskResponse, error)
	ListByTeacher(ctx context.Context, teacherID string, filter *dto.TaskFilter) ([]dto.TaskResponse, error)
	Stats(ctx context.Context, teacherID string) (*dto.TaskStatsResponse, error)
	ListReminders(ctx context.Context, teacherID string) ([]dto.TaskResponse, error)
	Create(ctx context.Context, req *dto.CreateTaskRequest) (*dto.TaskResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error)
	Complete(ctx context.Context, id string) (*dto.TaskResponse, error)
	Delete(ctx context.Context, id string) error
	// ProcessReminders 标记到期任务为已提醒，返回本次处理的任务
	ProcessReminders(ctx context.Context) ([]dto.TaskResponse, error)
}

type taskService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewTaskService 创建 TaskService 实例
func NewTaskService(repo *repository.Repository, logger *zap.Logger) TaskService {
	return &taskService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── 查询 ──────────────────────

func (s *taskService) ListByCell(ctx context.Context, scheduleID string, weekday, timeSlot int) ([]dto.TaskResponse, error) {
	if !grid.IsDisplayWeekday(weekday) || timeSlot < 1 || timeSlot > grid.SpecialCareSlot {
		return nil, ErrIllegalPlacement
	}
	tasks, err := s.repo.Task.ListByCell(ctx, scheduleID, weekday, timeSlot)
	if err != nil {
		s.logger.Error("查询单元格任务失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}
	return toTaskResponses(tasks), nil
}

func (s *taskService) ListByTeacher(ctx context.Context, teacherID string, filter *dto.TaskFilter) ([]dto.TaskResponse, error) {
	q := repository.TaskQuery{Status: filter.Status, TaskType: filter.TaskType}
	if filter.Date != "" {
		d, err := parseDate(filter.Date)
		if err != nil {
			return nil, err
		}
		q.Date = &d
	}
	tasks, err := s.repo.Task.ListByTeacher(ctx, teacherID, q)
	if err != nil {
		s.logger.Error("查询教师任务失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}
	return toTaskResponses(tasks), nil
}

func (s *taskService) Stats(ctx context.Context, teacherID string) (*dto.TaskStatsResponse, error) {
	stats, err := s.repo.Task.Stats(ctx, teacherID)
	if err != nil {
		s.logger.Error("统计教师任务失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}
	return &dto.TaskStatsResponse{
		Total:        stats.Total,
		Pending:      stats.Pending,
		Completed:    stats.Completed,
		HighPriority: stats.HighPriority,
	}, nil
}

func (s *taskService) ListReminders(ctx context.Context, teacherID string) ([]dto.TaskResponse, error) {
	tasks, err := s.repo.Task.ListDue(ctx, teacherID, s.now())
	if err != nil {
		s.logger.Error("查询到期提醒失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}
	return toTaskResponses(tasks), nil
}

// ────────────────────── 写操作 ──────────────────────

func (s *taskService) Create(ctx context.Context, req *dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	title := strings.TrimSpace(req.Title)
	if req.TeacherID == "" || req.ScheduleID == "" || title == "" {
		return nil, ErrMissingField
	}
	if !grid.IsDisplayWeekday(req.Weekday) || req.TimeSlot < 1 || req.TimeSlot > grid.SpecialCareSlot {
		return nil, ErrIllegalPlacement
	}

	task := &model.Task{
		TeacherID:     req.TeacherID,
		ScheduleID:    req.ScheduleID,
		Weekday:       req.Weekday,
		TimeSlot:      req.TimeSlot,
		Title:         title,
		Description:   req.Description,
		TaskType:      defaultString(req.TaskType, "general"),
		Status:        model.TaskStatusPending,
		PriorityLevel: defaultString(req.PriorityLevel, "medium"),
		RemindAt:      req.RemindAt,
	}
	if req.TaskDate != "" {
		d, err := parseDate(req.TaskDate)
		if err != nil {
			return nil, err
		}
		task.TaskDate = &d
	}

	if err := s.repo.Task.Create(ctx, task); err != nil {
		s.logger.Error("创建任务失败", zap.String("teacher_id", req.TeacherID), zap.Error(err))
		return nil, err
	}
	return toTaskResponse(task), nil
}

func (s *taskService) Update(ctx context.Context, id string, req *dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	task, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, ErrMissingField
		}
		task.Title = title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.TaskDate != nil {
		if *req.TaskDate == "" {
			task.TaskDate = nil
		} else {
			d, err := parseDate(*req.TaskDate)
			if err != nil {
				return nil, err
			}
			task.TaskDate = &d
		}
	}
	if req.TaskType != nil {
		task.TaskType = *req.TaskType
	}
	if req.PriorityLevel != nil {
		task.PriorityLevel = *req.PriorityLevel
	}
	if req.RemindAt != nil {
		task.RemindAt = req.RemindAt
		task.RemindedAt = nil
	}
	if req.Status != nil {
		s.setStatus(task, *req.Status)
	}

	if err := s.repo.Task.Update(ctx, task); err != nil {
		s.logger.Error("更新任务失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTaskResponse(task), nil
}

func (s *taskService) Complete(ctx context.Context, id string) (*dto.TaskResponse, error) {
	task, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.setStatus(task, model.TaskStatusCompleted)
	if err := s.repo.Task.Update(ctx, task); err != nil {
		s.logger.Error("完成任务失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return toTaskResponse(task), nil
}

func (s *taskService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Task.Delete(ctx, id); err != nil {
		if errors.Is(err, pkgerrors.ErrNoRowsAffected) {
			return ErrTaskNotFound
		}
		s.logger.Error("删除任务失败", zap.String("id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 提醒 ──────────────────────

func (s *taskService) ProcessReminders(ctx context.Context) ([]dto.TaskResponse, error) {
	tasks, err := s.repo.Task.MarkReminded(ctx, s.now(), reminderBatch)
	if err != nil {
		s.logger.Error("处理任务提醒失败", zap.Error(err))
		return nil, err
	}
	s.logger.Debug("标记到期任务", zap.Int("count", len(tasks)))
	return toTaskResponses(tasks), nil
}

// ── 辅助函数 ──

func (s *taskService) get(ctx context.Context, id string) (*model.Task, error) {
	task, err := s.repo.Task.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		s.logger.Error("查询任务失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	return task, nil
}

func (s *taskService) setStatus(task *model.Task, status string) {
	task.Status = status
	if status == model.TaskStatusCompleted {
		if task.CompletedAt == nil {
			now := s.now()
			task.CompletedAt = &now
		}
		return
	}
	task.CompletedAt = nil
}

func toTaskResponses(tasks []model.Task) []dto.TaskResponse {
	result := make([]dto.TaskResponse, 0, len(tasks))
	for i := range tasks {
		result = append(result, *toTaskResponse(&tasks[i]))
	}
	return result
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
