package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/xszhu002/ke-cheng-biao/internal/model"
	"github.com/xszhu002/ke-cheng-biao/internal/repository"
)

// recorder 课表写操作的收尾动作：记录操作历史、使周缓存失效
// 两者都不影响主操作的结果
type recorder struct {
	repo   *repository.Repository
	cache  WeekCache
	logger *zap.Logger
}

func (r *recorder) history(ctx context.Context, scheduleID, op string, oldData, newData interface{}) {
	h := &model.OperationHistory{
		ScheduleID:    scheduleID,
		OperationType: op,
		OldData:       toJSON(oldData),
		NewData:       toJSON(newData),
	}
	if err := r.repo.History.Create(ctx, h); err != nil {
		r.logger.Warn("记录操作历史失败",
			zap.String("schedule_id", scheduleID),
			zap.String("operation", op),
			zap.Error(err),
		)
	}
}

func (r *recorder) changed(ctx context.Context, scheduleID string) {
	r.cache.Invalidate(ctx, scheduleID)
}

func toJSON(v interface{}) datatypes.JSON {
	if v == nil {
		return nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(raw)
}
