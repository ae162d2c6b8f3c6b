package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xszhu002/ke-cheng-biao/internal/model"
)

// ScheduleRepository 课表数据访问接口
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	GetActiveByTeacher(ctx context.Context, teacherID string) (*model.Schedule, error)
	LockForUpdate(ctx context.Context, id string) (*model.Schedule, error)
	MarkBaseline(ctx context.Context, id string) error
}

type scheduleRepo struct {
	db *gorm.DB
}

// NewScheduleRepo 创建 ScheduleRepository 实例
func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Semester").
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// GetActiveByTeacher 教师的有效课表，当前学期优先，其次最新创建
func (r *scheduleRepo) GetActiveByTeacher(ctx context.Context, teacherID string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Teacher").
		Preload("Semester").
		Joins("JOIN semesters ON semesters.semester_id = schedules.semester_id").
		Where("schedules.teacher_id = ? AND schedules.is_active = ?", teacherID, true).
		Order("semesters.is_current DESC").
		Order("schedules.created_at DESC").
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// LockForUpdate SELECT ... FOR UPDATE 锁住课表行，同一课表的重排操作串行执行
// 仅在事务内调用有意义
func (r *scheduleRepo) LockForUpdate(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// MarkBaseline 标记课表已保存过原始课表
func (r *scheduleRepo) MarkBaseline(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Schedule{}).
		Where("schedule_id = ?", id).
		Update("has_baseline", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
