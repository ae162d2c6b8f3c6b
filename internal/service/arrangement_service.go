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
	pkgerrors "github.com/xszhu002/ke-cheng-biao/pkg/errors"
)

// ArrangementService 课程安排业务接口
//
// 两代数据：
//   - 编辑模式下新增写入原始课表（is_original=true）
//   - 查看模式下新增、移动只作用于临时课表，原始课表保持不变
type ArrangementService interface {
	CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*dto.ArrangementResponse, error)
	CreateSpecialCare(ctx context.Context, req *dto.CreateSpecialCareRequest) (*dto.ArrangementResponse, error)
	Move(ctx context.Context, id string, req *dto.MoveCourseRequest) (*dto.MoveResponse, error)
	UpdateCourse(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.ArrangementResponse, error)
	UpdateSpecialCare(ctx context.Context, id string, req *dto.UpdateSpecialCareRequest) (*dto.ArrangementResponse, error)
	// Delete kind 为空时不限类型；删除原始课程要求 editMode
	Delete(ctx context.Context, id string, kind grid.Kind, editMode bool) error
	ListSpecialCare(ctx context.Context, scheduleID string) ([]dto.ArrangementResponse, error)
}

type arrangementService struct {
	repo   *repository.Repository
	rec    *recorder
	logger *zap.Logger
}

// NewArrangementService 创建 ArrangementService 实例
func NewArrangementService(repo *repository.Repository, cache WeekCache, logger *zap.Logger) ArrangementService {
	return &arrangementService{
		repo:   repo,
		rec:    &recorder{repo: repo, cache: cache, logger: logger},
		logger: logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *arrangementService) CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*dto.ArrangementResponse, error) {
	name := strings.TrimSpace(req.CourseName)
	if req.ScheduleID == "" || name == "" || req.Weekday == 0 || req.TimeSlot == 0 {
		return nil, ErrMissingField
	}
	if !grid.IsValidPlacement(grid.KindRegular, req.Weekday, req.TimeSlot) {
		return nil, ErrIllegalPlacement
	}

	weekday := req.Weekday
	a := &model.Arrangement{
		ScheduleID: req.ScheduleID,
		CourseType: grid.KindRegular,
		Weekday:    &weekday,
		TimeSlot:   req.TimeSlot,
		CourseName: name,
		Classroom:  strings.TrimSpace(req.Classroom),
		Notes:      req.Notes,
		IsOriginal: req.EditMode,
	}

	err := s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := lockSchedule(ctx, tx, a.ScheduleID); err != nil {
			return err
		}
		occupied, err := tx.Arrangement.RegularOccupied(ctx, a.ScheduleID, a.IsOriginal, weekday, a.TimeSlot, "")
		if err != nil {
			return err
		}
		if occupied {
			return ErrCellOccupied
		}
		return tx.Arrangement.Create(ctx, a)
	})
	if err != nil {
		return nil, s.fail("新增课程失败", a.ScheduleID, err)
	}

	return s.created(ctx, a), nil
}

func (s *arrangementService) CreateSpecialCare(ctx context.Context, req *dto.CreateSpecialCareRequest) (*dto.ArrangementResponse, error) {
	name := strings.TrimSpace(req.CourseName)
	if req.ScheduleID == "" || name == "" || req.SpecificDate == "" {
		return nil, ErrMissingField
	}
	date, err := parseDate(req.SpecificDate)
	if err != nil {
		return nil, err
	}

	a := &model.Arrangement{
		ScheduleID:   req.ScheduleID,
		CourseType:   grid.KindSpecialCare,
		TimeSlot:     grid.SpecialCareSlot,
		SpecificDate: &date,
		CourseName:   name,
		Classroom:    strings.TrimSpace(req.Classroom),
		Notes:        req.Notes,
		IsOriginal:   req.EditMode,
	}

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := lockSchedule(ctx, tx, a.ScheduleID); err != nil {
			return err
		}
		occupied, err := tx.Arrangement.SpecialCareOccupied(ctx, a.ScheduleID, a.IsOriginal, date, "")
		if err != nil {
			return err
		}
		if occupied {
			return ErrCellOccupied
		}
		return tx.Arrangement.Create(ctx, a)
	})
	if err != nil {
		return nil, s.fail("新增特需托管失败", a.ScheduleID, err)
	}

	return s.created(ctx, a), nil
}

// created 新增成功后的收尾；编辑模式下的新增属于基准调整，不计入历史
func (s *arrangementService) created(ctx context.Context, a *model.Arrangement) *dto.ArrangementResponse {
	resp := toArrangementResponse(a, grid.AssignColor(a.CourseName, a.ArrangementID, nil))
	if !a.IsOriginal {
		s.rec.history(ctx, a.ScheduleID, model.OperationAdd, nil, resp)
	}
	s.rec.changed(ctx, a.ScheduleID)
	return &resp
}

// ────────────────────── Move ──────────────────────

// Move 移动课程到新单元格
// 原始课程不动，在目标位置生成临时副本；临时课程原地更新位置
// 特需托管只能在所在周内换星期，日期随之重算
func (s *arrangementService) Move(ctx context.Context, id string, req *dto.MoveCourseRequest) (*dto.MoveResponse, error) {
	var (
		result       *model.Arrangement
		before       dto.ArrangementResponse
		originalKept bool
	)

	err := s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		a, err := lockArrangement(ctx, tx, id)
		if err != nil {
			return err
		}
		before = toArrangementResponse(a, "")

		to := grid.Cell{Weekday: req.Weekday, TimeSlot: req.TimeSlot}
		exclude := ""
		if !a.IsOriginal {
			exclude = a.ArrangementID
		}

		var (
			occupied bool
			newDate  *time.Time
		)
		if a.IsSpecialCare() && a.SpecificDate != nil && grid.IsDisplayWeekday(to.Weekday) {
			d := grid.DateInWeek(*a.SpecificDate, to.Weekday)
			newDate = &d
			occupied, err = tx.Arrangement.SpecialCareOccupied(ctx, a.ScheduleID, false, d, exclude)
		} else if !a.IsSpecialCare() {
			occupied, err = tx.Arrangement.RegularOccupied(ctx, a.ScheduleID, false, to.Weekday, to.TimeSlot, exclude)
		}
		if err != nil {
			return err
		}

		if err := grid.ValidateMove(a.CourseType, a.Cell(), to, func(grid.Cell) bool { return occupied }); err != nil {
			return placementError(err)
		}

		target := a
		if a.IsOriginal {
			target = a.Clone(false)
			originalKept = true
		}
		if a.IsSpecialCare() {
			target.SpecificDate = newDate
			target.Weekday = nil
		} else {
			w := to.Weekday
			target.Weekday = &w
		}
		target.TimeSlot = to.TimeSlot

		if originalKept {
			err = tx.Arrangement.Create(ctx, target)
		} else {
			err = tx.Arrangement.UpdatePosition(ctx, target)
		}
		if err != nil {
			return err
		}
		result = target
		return nil
	})
	if err != nil {
		return nil, s.fail("移动课程失败", id, err)
	}

	resp := toArrangementResponse(result, grid.AssignColor(result.CourseName, result.ArrangementID, nil))
	s.rec.history(ctx, result.ScheduleID, model.OperationMove, before, resp)
	s.rec.changed(ctx, result.ScheduleID)

	return &dto.MoveResponse{Arrangement: resp, OriginalKept: originalKept}, nil
}

// ────────────────────── Update ──────────────────────

func (s *arrangementService) UpdateCourse(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.ArrangementResponse, error) {
	return s.update(ctx, id, "", func(a *model.Arrangement) error {
		return applyContent(a, req.CourseName, req.Classroom, req.Notes)
	}, nil)
}

func (s *arrangementService) UpdateSpecialCare(ctx context.Context, id string, req *dto.UpdateSpecialCareRequest) (*dto.ArrangementResponse, error) {
	var newDate *time.Time
	if req.SpecificDate != nil {
		d, err := parseDate(*req.SpecificDate)
		if err != nil {
			return nil, err
		}
		newDate = &d
	}

	return s.update(ctx, id, grid.KindSpecialCare, func(a *model.Arrangement) error {
		if newDate != nil {
			a.SpecificDate = newDate
		}
		if a.TimeSlot != grid.SpecialCareSlot {
			return ErrIllegalPlacement
		}
		return applyContent(a, req.CourseName, req.Classroom, req.Notes)
	}, func(ctx context.Context, tx *repository.Repository, a *model.Arrangement) error {
		if newDate == nil {
			return nil
		}
		occupied, err := tx.Arrangement.SpecialCareOccupied(ctx, a.ScheduleID, a.IsOriginal, *newDate, a.ArrangementID)
		if err != nil {
			return err
		}
		if occupied {
			return ErrCellOccupied
		}
		return nil
	})
}

func applyContent(a *model.Arrangement, name, classroom, notes *string) error {
	if name != nil {
		n := strings.TrimSpace(*name)
		if n == "" {
			return ErrMissingField
		}
		a.CourseName = n
	}
	if classroom != nil {
		a.Classroom = strings.TrimSpace(*classroom)
	}
	if notes != nil {
		a.Notes = *notes
	}
	return nil
}

// update 在事务内读取、修改并保存展示字段；check 在写入前做额外校验
func (s *arrangementService) update(
	ctx context.Context,
	id string,
	kind grid.Kind,
	apply func(a *model.Arrangement) error,
	check func(ctx context.Context, tx *repository.Repository, a *model.Arrangement) error,
) (*dto.ArrangementResponse, error) {
	var (
		updated *model.Arrangement
		before  dto.ArrangementResponse
	)
	err := s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		a, err := lockArrangement(ctx, tx, id)
		if err != nil {
			return err
		}
		if kind != "" && a.CourseType != kind {
			return ErrArrangementNotFound
		}
		before = toArrangementResponse(a, "")
		if err := apply(a); err != nil {
			return err
		}
		if check != nil {
			if err := check(ctx, tx, a); err != nil {
				return err
			}
		}
		if err := tx.Arrangement.UpdateContent(ctx, a); err != nil {
			return err
		}
		updated = a
		return nil
	})
	if err != nil {
		return nil, s.fail("修改课程失败", id, err)
	}

	resp := toArrangementResponse(updated, grid.AssignColor(updated.CourseName, updated.ArrangementID, nil))
	s.rec.history(ctx, updated.ScheduleID, model.OperationUpdate, before, resp)
	s.rec.changed(ctx, updated.ScheduleID)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *arrangementService) Delete(ctx context.Context, id string, kind grid.Kind, editMode bool) error {
	a, err := s.repo.Arrangement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArrangementNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if kind != "" && a.CourseType != kind {
		return ErrArrangementNotFound
	}
	if a.IsOriginal && !editMode {
		return ErrEditModeRequired
	}

	if err := s.repo.Arrangement.Delete(ctx, id); err != nil {
		if errors.Is(err, pkgerrors.ErrNoRowsAffected) {
			return ErrArrangementNotFound
		}
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	s.rec.history(ctx, a.ScheduleID, model.OperationDelete, toArrangementResponse(a, ""), nil)
	s.rec.changed(ctx, a.ScheduleID)
	return nil
}

// ────────────────────── ListSpecialCare ──────────────────────

func (s *arrangementService) ListSpecialCare(ctx context.Context, scheduleID string) ([]dto.ArrangementResponse, error) {
	list, err := s.repo.Arrangement.ListSpecialCare(ctx, scheduleID)
	if err != nil {
		s.logger.Error("查询特需托管失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.ArrangementResponse, 0, len(list))
	for i := range list {
		result = append(result, toArrangementResponse(&list[i], grid.AssignColor(list[i].CourseName, list[i].ArrangementID, nil)))
	}
	return result, nil
}

// ── 辅助函数 ──

func (s *arrangementService) fail(msg, id string, err error) error {
	err = txError(err)
	if errors.Is(err, ErrReconcileFailed) {
		s.logger.Error(msg, zap.String("id", id), zap.Error(err))
	}
	return err
}

// lockSchedule 锁住课表行，课表不存在返回 ErrScheduleNotFound
func lockSchedule(ctx context.Context, tx *repository.Repository, scheduleID string) error {
	_, err := lockScheduleRow(ctx, tx, scheduleID)
	return err
}

// lockScheduleRow 同 lockSchedule，并返回加锁后的课表行
func lockScheduleRow(ctx context.Context, tx *repository.Repository, scheduleID string) (*model.Schedule, error) {
	schedule, err := tx.Schedule.LockForUpdate(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return schedule, nil
}

// lockArrangement 读取课程并锁住其所属课表，加锁后重新读取以拿到最新状态
func lockArrangement(ctx context.Context, tx *repository.Repository, id string) (*model.Arrangement, error) {
	a, err := tx.Arrangement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArrangementNotFound
		}
		return nil, err
	}
	if err := lockSchedule(ctx, tx, a.ScheduleID); err != nil {
		return nil, err
	}
	a, err = tx.Arrangement.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArrangementNotFound
		}
		return nil, err
	}
	return a, nil
}
