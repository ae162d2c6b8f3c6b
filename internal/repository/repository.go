package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Teacher     TeacherRepository
	Semester    SemesterRepository
	Schedule    ScheduleRepository
	Arrangement ArrangementRepository
	History     HistoryRepository
	Task        TaskRepository
	WeeklyNote  WeeklyNoteRepository

	Tx Transactor
}

// Transactor 在同一事务内执行 fn，fn 返回错误时整体回滚
// fn 收到的 Repository 绑定到该事务
type Transactor interface {
	Transaction(ctx context.Context, fn func(tx *Repository) error) error
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Teacher:     NewTeacherRepo(db),
		Semester:    NewSemesterRepo(db),
		Schedule:    NewScheduleRepo(db),
		Arrangement: NewArrangementRepo(db),
		History:     NewHistoryRepo(db),
		Task:        NewTaskRepo(db),
		WeeklyNote:  NewWeeklyNoteRepo(db),
		Tx:          &gormTransactor{db: db},
	}
}

type gormTransactor struct {
	db *gorm.DB
}

func (t *gormTransactor) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
