package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
	"github.com/xszhu002/ke-cheng-biao/internal/model"
	"github.com/xszhu002/ke-cheng-biao/internal/repository"
)

// WeeklyNoteService 周备注业务接口
type WeeklyNoteService interface {
	Get(ctx context.Context, teacherID, scheduleID string, year, week int) (*dto.WeeklyNoteResponse, error)
	Upsert(ctx context.Context, req *dto.UpsertWeeklyNoteRequest) (*dto.WeeklyNoteResponse, error)
}

type weeklyNoteService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewWeeklyNoteService 创建 WeeklyNoteService 实例
func NewWeeklyNoteService(repo *repository.Repository, logger *zap.Logger) WeeklyNoteService {
	return &weeklyNoteService{repo: repo, logger: logger}
}

func (s *weeklyNoteService) Get(ctx context.Context, teacherID, scheduleID string, year, week int) (*dto.WeeklyNoteResponse, error) {
	note, err := s.repo.WeeklyNote.Get(ctx, teacherID, scheduleID, year, week)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoteNotFound
		}
		s.logger.Error("查询周备注失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}
	return toWeeklyNoteResponse(note), nil
}

func (s *weeklyNoteService) Upsert(ctx context.Context, req *dto.UpsertWeeklyNoteRequest) (*dto.WeeklyNoteResponse, error) {
	if req.TeacherID == "" || req.ScheduleID == "" || req.Year == 0 || req.WeekNumber == 0 {
		return nil, ErrMissingField
	}
	note := &model.WeeklyNote{
		TeacherID:  req.TeacherID,
		ScheduleID: req.ScheduleID,
		Year:       req.Year,
		WeekNumber: req.WeekNumber,
		Content:    req.Content,
	}
	if err := s.repo.WeeklyNote.Upsert(ctx, note); err != nil {
		s.logger.Error("保存周备注失败", zap.String("teacher_id", req.TeacherID), zap.Error(err))
		return nil, err
	}
	return toWeeklyNoteResponse(note), nil
}

func toWeeklyNoteResponse(n *model.WeeklyNote) *dto.WeeklyNoteResponse {
	resp := &dto.WeeklyNoteResponse{
		TeacherID:  n.TeacherID,
		ScheduleID: n.ScheduleID,
		Year:       n.Year,
		WeekNumber: n.WeekNumber,
		Content:    n.Content,
	}
	if !n.UpdatedAt.IsZero() {
		resp.UpdatedAt = n.UpdatedAt.Format(time.RFC3339)
	}
	return resp
}
