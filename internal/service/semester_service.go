package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
	"github.com/xszhu002/ke-cheng-biao/internal/model"
	"github.com/xszhu002/ke-cheng-biao/internal/repository"
)

// SemesterService 学期业务接口
type SemesterService interface {
	GetCurrent(ctx context.Context) (*dto.SemesterResponse, error)
	// Create IsCurrent=true 时在同一事务内取消原当前学期
	Create(ctx context.Context, req *dto.CreateSemesterRequest) (*dto.SemesterResponse, error)
}

type semesterService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewSemesterService 创建 SemesterService 实例
func NewSemesterService(repo *repository.Repository, logger *zap.Logger) SemesterService {
	return &semesterService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── GetCurrent ──────────────────────

func (s *semesterService) GetCurrent(ctx context.Context) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetCurrent(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询当前学期失败", zap.Error(err))
		return nil, err
	}
	return toSemesterResponse(semester, s.now()), nil
}

// ────────────────────── Create ──────────────────────

func (s *semesterService) Create(ctx context.Context, req *dto.CreateSemesterRequest) (*dto.SemesterResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrMissingField
	}
	startDate, err := parseDate(req.StartDate)
	if err != nil {
		return nil, err
	}
	endDate, err := parseDate(req.EndDate)
	if err != nil {
		return nil, err
	}
	if endDate.Before(startDate) {
		return nil, ErrSemesterDateInvalid
	}

	semester := &model.Semester{
		Name:      name,
		StartDate: startDate,
		EndDate:   endDate,
		IsCurrent: req.IsCurrent,
	}

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if semester.IsCurrent {
			if err := tx.Semester.ClearCurrent(ctx); err != nil {
				return err
			}
		}
		return tx.Semester.Create(ctx, semester)
	})
	if err != nil {
		s.logger.Error("创建学期失败", zap.String("name", name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("创建学期",
		zap.String("semester_id", semester.SemesterID),
		zap.Bool("is_current", semester.IsCurrent),
	)
	return toSemesterResponse(semester, s.now()), nil
}
