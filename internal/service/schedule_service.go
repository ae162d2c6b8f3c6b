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
)

// SaveSource 保存原始课表时采集的数据来源
type SaveSource string

const (
	// SaveSourceAuto 采集原始课表；仅当从未保存过且原始课表为空时采集临时课表（首次保存）
	SaveSourceAuto     SaveSource = "auto"
	SaveSourceOriginal SaveSource = "original"
	SaveSourceWorking  SaveSource = "working"
)

// ParseSaveSource 空串视为 auto
func ParseSaveSource(s string) (SaveSource, error) {
	switch SaveSource(s) {
	case "", SaveSourceAuto:
		return SaveSourceAuto, nil
	case SaveSourceOriginal, SaveSourceWorking:
		return SaveSource(s), nil
	default:
		return "", ErrInvalidSource
	}
}

// ScheduleService 课表业务接口
type ScheduleService interface {
	// SaveAsOriginal 以采集集合重建课表：每条记录写入原始、临时各一份
	SaveAsOriginal(ctx context.Context, scheduleID string, source SaveSource) (*dto.SaveOriginalResponse, error)
	// Reset 用原始课表覆盖临时课表；无原始课表返回 ErrNoBaseline
	Reset(ctx context.Context, scheduleID string) (*dto.ResetResponse, error)
	GetOriginal(ctx context.Context, scheduleID string) (*dto.OriginalScheduleResponse, error)
	GetWeek(ctx context.Context, scheduleID string, week int) (*dto.WeekScheduleResponse, error)
	GetByTeacher(ctx context.Context, teacherID string) (*dto.ScheduleResponse, error)
	Create(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error)
	ListHistory(ctx context.Context, scheduleID string, page *dto.PaginationRequest) ([]dto.HistoryResponse, int64, error)
}

type scheduleService struct {
	repo   *repository.Repository
	cache  WeekCache
	rec    *recorder
	logger *zap.Logger
	now    func() time.Time
}

// NewScheduleService 创建 ScheduleService 实例
func NewScheduleService(repo *repository.Repository, cache WeekCache, logger *zap.Logger) ScheduleService {
	return &scheduleService{
		repo:   repo,
		cache:  cache,
		rec:    &recorder{repo: repo, cache: cache, logger: logger},
		logger: logger,
		now:    time.Now,
	}
}

// ────────────────────── SaveAsOriginal ──────────────────────

func (s *scheduleService) SaveAsOriginal(ctx context.Context, scheduleID string, source SaveSource) (*dto.SaveOriginalResponse, error) {
	if source == "" {
		source = SaveSourceAuto
	}

	var (
		used  SaveSource
		count int
	)
	err := s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		schedule, err := lockScheduleRow(ctx, tx, scheduleID)
		if err != nil {
			return err
		}

		originals, err := tx.Arrangement.ListBySchedule(ctx, scheduleID, true)
		if err != nil {
			return err
		}
		captured := originals
		used = SaveSourceOriginal
		bootstrap := !schedule.HasBaseline && len(originals) == 0
		if source == SaveSourceWorking || (source == SaveSourceAuto && bootstrap) {
			captured, err = tx.Arrangement.ListBySchedule(ctx, scheduleID, false)
			if err != nil {
				return err
			}
			used = SaveSourceWorking
		}

		count = len(captured)
		if err := rebuild(ctx, tx, scheduleID, captured); err != nil {
			return err
		}
		return tx.Schedule.MarkBaseline(ctx, scheduleID)
	})
	if err != nil {
		return nil, s.fail("保存原始课表失败", scheduleID, err)
	}

	resp := &dto.SaveOriginalResponse{Source: string(used), Count: count}
	s.rec.history(ctx, scheduleID, model.OperationSaveOriginal, nil, resp)
	s.rec.changed(ctx, scheduleID)

	s.logger.Info("保存原始课表",
		zap.String("schedule_id", scheduleID),
		zap.String("source", string(used)),
		zap.Int("count", count),
	)
	return resp, nil
}

// ────────────────────── Reset ──────────────────────

func (s *scheduleService) Reset(ctx context.Context, scheduleID string) (*dto.ResetResponse, error) {
	var count int
	err := s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := lockSchedule(ctx, tx, scheduleID); err != nil {
			return err
		}
		originals, err := tx.Arrangement.ListBySchedule(ctx, scheduleID, true)
		if err != nil {
			return err
		}
		if len(originals) == 0 {
			return ErrNoBaseline
		}
		count = len(originals)
		return rebuild(ctx, tx, scheduleID, originals)
	})
	if err != nil {
		return nil, s.fail("重置课表失败", scheduleID, err)
	}

	resp := &dto.ResetResponse{Count: count}
	s.rec.history(ctx, scheduleID, model.OperationReset, nil, resp)
	s.rec.changed(ctx, scheduleID)

	s.logger.Info("重置课表", zap.String("schedule_id", scheduleID), zap.Int("count", count))
	return resp, nil
}

// rebuild 删除课表全部课程安排，再把 rows 各写入原始、临时一份
func rebuild(ctx context.Context, tx *repository.Repository, scheduleID string, rows []model.Arrangement) error {
	if _, err := tx.Arrangement.DeleteBySchedule(ctx, scheduleID); err != nil {
		return err
	}
	fresh := make([]*model.Arrangement, 0, len(rows)*2)
	for i := range rows {
		fresh = append(fresh, rows[i].Clone(true))
	}
	for i := range rows {
		fresh = append(fresh, rows[i].Clone(false))
	}
	return tx.Arrangement.BatchCreate(ctx, fresh)
}

// ────────────────────── 读视图 ──────────────────────

// GetOriginal 编辑模式视图：原始课表全部记录，不按周过滤
func (s *scheduleService) GetOriginal(ctx context.Context, scheduleID string) (*dto.OriginalScheduleResponse, error) {
	if _, err := s.getSchedule(ctx, scheduleID); err != nil {
		return nil, err
	}
	list, err := s.repo.Arrangement.ListBySchedule(ctx, scheduleID, true)
	if err != nil {
		s.logger.Error("查询原始课表失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}
	regular, special := renderArrangements(list)
	return &dto.OriginalScheduleResponse{
		ScheduleID:     scheduleID,
		RegularCourses: regular,
		SpecialCare:    special,
	}, nil
}

// GetWeek 查看模式视图：临时课表的常规课程 + 本周日期内的临时特需托管
func (s *scheduleService) GetWeek(ctx context.Context, scheduleID string, week int) (*dto.WeekScheduleResponse, error) {
	if week < 1 {
		return nil, ErrInvalidWeek
	}
	cached, cacheKey, ok := s.cache.GetWeek(ctx, scheduleID, week)
	if ok {
		return cached, nil
	}

	schedule, err := s.getSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	if schedule.Semester == nil {
		return nil, ErrSemesterNotFound
	}
	weekStart, weekEnd := grid.WeekDateRange(schedule.Semester.StartDate, week)

	working, err := s.repo.Arrangement.ListBySchedule(ctx, scheduleID, false)
	if err != nil {
		s.logger.Error("查询临时课表失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}
	special, err := s.repo.Arrangement.ListSpecialCareInRange(ctx, scheduleID, false, weekStart, weekEnd)
	if err != nil {
		s.logger.Error("查询特需托管失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}

	rows := make([]model.Arrangement, 0, len(working)+len(special))
	for i := range working {
		if !working[i].IsSpecialCare() {
			rows = append(rows, working[i])
		}
	}
	rows = append(rows, special...)
	regularResp, specialResp := renderArrangements(rows)

	resp := &dto.WeekScheduleResponse{
		ScheduleID:     scheduleID,
		WeekNumber:     week,
		WeekStart:      formatDate(weekStart),
		WeekEnd:        formatDate(weekEnd),
		RegularCourses: regularResp,
		SpecialCare:    specialResp,
	}
	s.cache.SetWeek(ctx, cacheKey, resp)
	return resp, nil
}

// ────────────────────── 课表管理 ──────────────────────

func (s *scheduleService) GetByTeacher(ctx context.Context, teacherID string) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetActiveByTeacher(ctx, teacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询教师课表失败", zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}
	return s.toScheduleResponse(schedule), nil
}

func (s *scheduleService) Create(ctx context.Context, req *dto.CreateScheduleRequest) (*dto.ScheduleResponse, error) {
	name := strings.TrimSpace(req.Name)
	if req.TeacherID == "" || name == "" {
		return nil, ErrMissingField
	}

	teacher, err := s.repo.Teacher.GetByID(ctx, req.TeacherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		return nil, err
	}

	var semester *model.Semester
	if req.SemesterID != "" {
		semester, err = s.repo.Semester.GetByID(ctx, req.SemesterID)
	} else {
		semester, err = s.repo.Semester.GetCurrent(ctx)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		return nil, err
	}

	existing, err := s.repo.Schedule.GetActiveByTeacher(ctx, teacher.TeacherID)
	switch {
	case err == nil && existing.SemesterID == semester.SemesterID:
		return nil, ErrScheduleExists
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	}

	schedule := &model.Schedule{
		TeacherID:  teacher.TeacherID,
		SemesterID: semester.SemesterID,
		Name:       name,
		IsActive:   true,
		Notes:      req.Notes,
	}
	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		s.logger.Error("创建课表失败", zap.String("teacher_id", teacher.TeacherID), zap.Error(err))
		return nil, err
	}
	schedule.Teacher = teacher
	schedule.Semester = semester

	s.logger.Info("创建课表",
		zap.String("schedule_id", schedule.ScheduleID),
		zap.String("teacher_id", teacher.TeacherID),
		zap.String("semester_id", semester.SemesterID),
	)
	return s.toScheduleResponse(schedule), nil
}

func (s *scheduleService) ListHistory(ctx context.Context, scheduleID string, page *dto.PaginationRequest) ([]dto.HistoryResponse, int64, error) {
	if _, err := s.getSchedule(ctx, scheduleID); err != nil {
		return nil, 0, err
	}
	list, total, err := s.repo.History.ListBySchedule(ctx, scheduleID, page.GetOffset(), page.GetPageSize())
	if err != nil {
		s.logger.Error("查询操作历史失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, 0, err
	}
	result := make([]dto.HistoryResponse, 0, len(list))
	for _, h := range list {
		result = append(result, dto.HistoryResponse{
			ID:            h.HistoryID,
			OperationType: h.OperationType,
			OldData:       []byte(h.OldData),
			NewData:       []byte(h.NewData),
			CreatedAt:     h.CreatedAt.Format(time.RFC3339),
		})
	}
	return result, total, nil
}

// ── 辅助函数 ──

func (s *scheduleService) getSchedule(ctx context.Context, scheduleID string) (*model.Schedule, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询课表失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}
	return schedule, nil
}

func (s *scheduleService) fail(msg, scheduleID string, err error) error {
	err = txError(err)
	if errors.Is(err, ErrReconcileFailed) {
		s.logger.Error(msg, zap.String("schedule_id", scheduleID), zap.Error(err))
	}
	return err
}

func (s *scheduleService) toScheduleResponse(schedule *model.Schedule) *dto.ScheduleResponse {
	resp := &dto.ScheduleResponse{
		ID:         schedule.ScheduleID,
		TeacherID:  schedule.TeacherID,
		SemesterID: schedule.SemesterID,
		Name:       schedule.Name,
		IsActive:   schedule.IsActive,
		Notes:      schedule.Notes,

		HasBaseline: schedule.HasBaseline,
	}
	if schedule.Teacher != nil {
		resp.Teacher = toTeacherResponse(schedule.Teacher)
	}
	if schedule.Semester != nil {
		resp.Semester = toSemesterResponse(schedule.Semester, s.now())
		resp.CurrentWeek = resp.Semester.CurrentWeek
	}
	return resp
}
