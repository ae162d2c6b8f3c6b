package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/xszhu002/ke-cheng-biao/internal/model"
)

// HistoryRepository 操作历史数据访问接口
type HistoryRepository interface {
	Create(ctx context.Context, h *model.OperationHistory) error
	ListBySchedule(ctx context.Context, scheduleID string, offset, limit int) ([]model.OperationHistory, int64, error)
}

type historyRepo struct {
	db *gorm.DB
}

// NewHistoryRepo 创建 HistoryRepository 实例
func NewHistoryRepo(db *gorm.DB) HistoryRepository {
	return &historyRepo{db: db}
}

func (r *historyRepo) Create(ctx context.Context, h *model.OperationHistory) error {
	return r.db.WithContext(ctx).Create(h).Error
}

func (r *historyRepo) ListBySchedule(ctx context.Context, scheduleID string, offset, limit int) ([]model.OperationHistory, int64, error) {
	var (
		list  []model.OperationHistory
		total int64
	)
	q := r.db.WithContext(ctx).
		Model(&model.OperationHistory{}).
		Where("schedule_id = ?", scheduleID)
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, total, err
}
