package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/xszhu002/ke-cheng-biao/internal/grid"
	"github.com/xszhu002/ke-cheng-biao/internal/model"
	pkgerrors "github.com/xszhu002/ke-cheng-biao/pkg/errors"
)

// ArrangementRepository 课程安排数据访问接口
// original 参数选择代：true 原始课表，false 临时课表
type ArrangementRepository interface {
	Create(ctx context.Context, a *model.Arrangement) error
	BatchCreate(ctx context.Context, list []*model.Arrangement) error
	GetByID(ctx context.Context, id string) (*model.Arrangement, error)
	ListBySchedule(ctx context.Context, scheduleID string, original bool) ([]model.Arrangement, error)
	ListSpecialCareInRange(ctx context.Context, scheduleID string, original bool, start, end time.Time) ([]model.Arrangement, error)
	ListSpecialCare(ctx context.Context, scheduleID string) ([]model.Arrangement, error)
	RegularOccupied(ctx context.Context, scheduleID string, original bool, weekday, timeSlot int, excludeID string) (bool, error)
	SpecialCareOccupied(ctx context.Context, scheduleID string, original bool, date time.Time, excludeID string) (bool, error)
	UpdatePosition(ctx context.Context, a *model.Arrangement) error
	UpdateContent(ctx context.Context, a *model.Arrangement) error
	Delete(ctx context.Context, id string) error
	DeleteBySchedule(ctx context.Context, scheduleID string) (int64, error)
}

type arrangementRepo struct {
	db *gorm.DB
}

// NewArrangementRepo 创建 ArrangementRepository 实例
func NewArrangementRepo(db *gorm.DB) ArrangementRepository {
	return &arrangementRepo{db: db}
}

func (r *arrangementRepo) Create(ctx context.Context, a *model.Arrangement) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *arrangementRepo) BatchCreate(ctx context.Context, list []*model.Arrangement) error {
	if len(list) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&list).Error
}

func (r *arrangementRepo) GetByID(ctx context.Context, id string) (*model.Arrangement, error) {
	var a model.Arrangement
	err := r.db.WithContext(ctx).
		Where("arrangement_id = ?", id).
		First(&a).Error
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *arrangementRepo) ListBySchedule(ctx context.Context, scheduleID string, original bool) ([]model.Arrangement, error) {
	var list []model.Arrangement
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND is_original = ?", scheduleID, original).
		Order("course_type ASC, weekday ASC NULLS LAST, time_slot ASC, specific_date ASC, created_at ASC").
		Find(&list).Error
	return list, err
}

func (r *arrangementRepo) ListSpecialCareInRange(ctx context.Context, scheduleID string, original bool, start, end time.Time) ([]model.Arrangement, error) {
	var list []model.Arrangement
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND is_original = ? AND course_type = ?", scheduleID, original, grid.KindSpecialCare).
		Where("specific_date BETWEEN ? AND ?", start.Format("2006-01-02"), end.Format("2006-01-02")).
		Order("specific_date ASC").
		Find(&list).Error
	return list, err
}

// ListSpecialCare 课表下全部特需托管（两代），按日期排序
func (r *arrangementRepo) ListSpecialCare(ctx context.Context, scheduleID string) ([]model.Arrangement, error) {
	var list []model.Arrangement
	err := r.db.WithContext(ctx).
		Where("schedule_id = ? AND course_type = ?", scheduleID, grid.KindSpecialCare).
		Order("specific_date ASC, is_original DESC").
		Find(&list).Error
	return list, err
}

func (r *arrangementRepo) RegularOccupied(ctx context.Context, scheduleID string, original bool, weekday, timeSlot int, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Arrangement{}).
		Where("schedule_id = ? AND is_original = ? AND course_type = ?", scheduleID, original, grid.KindRegular).
		Where("weekday = ? AND time_slot = ?", weekday, timeSlot)
	if excludeID != "" {
		q = q.Where("arrangement_id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

func (r *arrangementRepo) SpecialCareOccupied(ctx context.Context, scheduleID string, original bool, date time.Time, excludeID string) (bool, error) {
	q := r.db.WithContext(ctx).
		Model(&model.Arrangement{}).
		Where("schedule_id = ? AND is_original = ? AND course_type = ?", scheduleID, original, grid.KindSpecialCare).
		Where("specific_date = ?", date.Format("2006-01-02"))
	if excludeID != "" {
		q = q.Where("arrangement_id <> ?", excludeID)
	}
	var count int64
	err := q.Count(&count).Error
	return count > 0, err
}

// UpdatePosition 仅更新位置字段
func (r *arrangementRepo) UpdatePosition(ctx context.Context, a *model.Arrangement) error {
	result := r.db.WithContext(ctx).
		Model(&model.Arrangement{}).
		Where("arrangement_id = ?", a.ArrangementID).
		Updates(map[string]interface{}{
			"weekday":       a.Weekday,
			"time_slot":     a.TimeSlot,
			"specific_date": a.SpecificDate,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrNoRowsAffected
	}
	return nil
}

// UpdateContent 更新展示字段；特需托管的日期一并更新
func (r *arrangementRepo) UpdateContent(ctx context.Context, a *model.Arrangement) error {
	result := r.db.WithContext(ctx).
		Model(&model.Arrangement{}).
		Where("arrangement_id = ?", a.ArrangementID).
		Updates(map[string]interface{}{
			"course_name":   a.CourseName,
			"classroom":     a.Classroom,
			"notes":         a.Notes,
			"specific_date": a.SpecificDate,
			"updated_at":    gorm.Expr("NOW()"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrNoRowsAffected
	}
	return nil
}

func (r *arrangementRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).
		Where("arrangement_id = ?", id).
		Delete(&model.Arrangement{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrNoRowsAffected
	}
	return nil
}

// DeleteBySchedule 删除课表下两代全部课程安排
func (r *arrangementRepo) DeleteBySchedule(ctx context.Context, scheduleID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Delete(&model.Arrangement{})
	return result.RowsAffected, result.Error
}
