package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xszhu002/ke-cheng-biao/internal/model"
	pkgerrors "github.com/xszhu002/ke-cheng-biao/pkg/errors"
)

// TaskQuery 教师任务列表筛选条件，零值字段不参与过滤
type TaskQuery struct {
	Date     *time.Time
	Status   string
	TaskType string
}

// TaskStats 教师任务统计
type TaskStats struct {
	Total        int64
	Pending      int64
	Completed    int64
	HighPriority int64
}

// TaskRepository 任务数据访问接口
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id string) (*model.Task, error)
	ListByCell(ctx context.Context, scheduleID string, weekday, timeSlot int) ([]model.Task, error)
	ListByTeacher(ctx context.Context, teacherID string, q TaskQuery) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context, teacherID string) (*TaskStats, error)
	ListDue(ctx context.Context, teacherID string, now time.Time) ([]model.Task, error)
	MarkReminded(ctx context.Context, now time.Time, limit int) ([]model.Task, error)
}

type taskRepo struct {
	db *gorm.DB
}

// NewTaskRepo 创建 TaskRepository 实例
func NewTaskRepo(db *gorm.DB) TaskRepository {
	return &taskRepo{db: db}
}

func (r *taskRepo) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

func (r *taskRepo) GetByID(ctx context.Context, id string) (*model.Task, error) {
	var task model.Task
	err := r.db.WithContext(ctx).
		Where("task_id = ?", id).
		First(&task).Error
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *taskRepo) ListByCell(ctx context.Context, scheduleID string, weekday, timeSlot int) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND weekday = ? AND time_slot = ?", scheduleID, weekday, timeSlot).
		Order("status ASC, created_at DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) ListByTeacher(ctx context.Context, teacherID string, q TaskQuery) ([]model.Task, error) {
	db := r.db.WithContext(ctx).Where("teacher_id = ?", teacherID)
	if q.Date != nil {
		db = db.Where("task_date = ?", q.Date.Format("2006-01-02"))
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.TaskType != "" {
		db = db.Where("task_type = ?", q.TaskType)
	}
	var tasks []model.Task
	err := db.Order("task_date ASC NULLS LAST, weekday ASC, time_slot ASC").Find(&tasks).Error
	return tasks, err
}

func (r *taskRepo) Update(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

func (r *taskRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("task_id = ?", id).
		Delete(&model.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrNoRowsAffected
	}
	return nil
}

func (r *taskRepo) Stats(ctx context.Context, teacherID string) (*TaskStats, error) {
	var stats TaskStats
	err := r.db.WithContext(ctx).
		Model(&model.Task{}).
		Select(`COUNT(*) AS total,
			COUNT(*) FILTER (WHERE status = 'pending') AS pending,
			COUNT(*) FILTER (WHERE status = 'completed') AS completed,
			COUNT(*) FILTER (WHERE priority_level = 'high' AND status = 'pending') AS high_priority`).
		Where("teacher_id = ?", teacherID).
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

// ListDue 教师已到提醒时间且未完成的任务
func (r *taskRepo) ListDue(ctx context.Context, teacherID string, now time.Time) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND status = ? AND remind_at <= ?", teacherID, model.TaskStatusPending, now).
		Order("remind_at ASC").
		Find(&tasks).Error
	return tasks, err
}

// MarkReminded 将到期未提醒的任务标记为已提醒并返回这些任务
func (r *taskRepo) MarkReminded(ctx context.Context, now time.Time, limit int) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("status = ? AND reminded_at IS NULL AND remind_at <= ?", model.TaskStatusPending, now).
			Order("remind_at ASC").
			Limit(limit).
			Find(&tasks).Error; err != nil {
			return err
		}
		if len(tasks) == 0 {
			return nil
		}
		ids := make([]string, len(tasks))
		for i := range tasks {
			ids[i] = tasks[i].TaskID
			tasks[i].RemindedAt = &now
		}
		return tx.Model(&model.Task{}).
			Where("task_id IN ?", ids).
			Update("reminded_at", now).Error
	})
	if err != nil {
		return nil, err
	}
	return tasks, nil
}
