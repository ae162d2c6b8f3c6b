package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xszhu002/ke-cheng-biao/internal/model"
)

// WeeklyNoteRepository 周备注数据访问接口
type WeeklyNoteRepository interface {
	Get(ctx context.Context, teacherID, scheduleID string, year, week int) (*model.WeeklyNote, error)
	Upsert(ctx context.Context, note *model.WeeklyNote) error
}

type weeklyNoteRepo struct {
	db *gorm.DB
}

// NewWeeklyNoteRepo 创建 WeeklyNoteRepository 实例
func NewWeeklyNoteRepo(db *gorm.DB) WeeklyNoteRepository {
	return &weeklyNoteRepo{db: db}
}

func (r *weeklyNoteRepo) Get(ctx context.Context, teacherID, scheduleID string, year, week int) (*model.WeeklyNote, error) {
	var note model.WeeklyNote
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND schedule_id = ? AND year = ? AND week_number = ?", teacherID, scheduleID, year, week).
		First(&note).Error
	if err != nil {
		return nil, err
	}
	return &note, nil
}

// Upsert 按 (teacher_id, schedule_id, year, week_number) 插入或覆盖内容
func (r *weeklyNoteRepo) Upsert(ctx context.Context, note *model.WeeklyNote) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "teacher_id"}, {Name: "schedule_id"}, {Name: "year"}, {Name: "week_number"},
			},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"content":    note.Content,
				"updated_at": gorm.Expr("NOW()"),
			}),
		}).
		Create(note).Error
}
