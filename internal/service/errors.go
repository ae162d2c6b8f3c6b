package service

import (
	"errors"
	"fmt"

	"github.com/xszhu002/ke-cheng-biao/internal/grid"
)

// ── 错误分类 ──
// Handler 通过 errors.Is 匹配以下基础错误决定 HTTP 状态码

var (
	ErrValidation      = errors.New("参数校验失败")
	ErrNotFound        = errors.New("记录不存在")
	ErrConflict        = errors.New("数据冲突")
	ErrNoBaseline      = errors.New("请先保存原始课程表")
	ErrReconcileFailed = errors.New("课表操作失败，数据未改变，可重试")
)

// ── 具体业务错误 ──

var (
	ErrMissingField     = fmt.Errorf("%w: 缺少必要参数", ErrValidation)
	ErrInvalidDate      = fmt.Errorf("%w: 日期格式无效，应为 YYYY-MM-DD", ErrValidation)
	ErrInvalidWeek      = fmt.Errorf("%w: 周次必须大于 0", ErrValidation)
	ErrInvalidSource    = fmt.Errorf("%w: source 只能为 auto、original 或 working", ErrValidation)
	ErrIllegalPlacement = fmt.Errorf("%w: %w", ErrValidation, grid.ErrIllegalPlacement)
	ErrCellOccupied     = fmt.Errorf("%w: %w", ErrValidation, grid.ErrCellOccupied)
	ErrSameCell         = fmt.Errorf("%w: %w", ErrValidation, grid.ErrSameCell)
	ErrEditModeRequired = fmt.Errorf("%w: 删除原始课程需要进入编辑模式", ErrValidation)

	ErrArrangementNotFound = fmt.Errorf("%w: 课程不存在", ErrNotFound)
	ErrScheduleNotFound    = fmt.Errorf("%w: 课表不存在", ErrNotFound)
	ErrTeacherNotFound     = fmt.Errorf("%w: 教师不存在", ErrNotFound)
	ErrSemesterNotFound    = fmt.Errorf("%w: 学期不存在", ErrNotFound)
	ErrTaskNotFound        = fmt.Errorf("%w: 任务不存在", ErrNotFound)
	ErrNoteNotFound        = fmt.Errorf("%w: 本周暂无备注", ErrNotFound)

	ErrTeacherNameExists = fmt.Errorf("%w: 教师姓名已存在", ErrConflict)
	ErrScheduleExists    = fmt.Errorf("%w: 该教师本学期已有课表", ErrConflict)

	ErrSemesterDateInvalid = fmt.Errorf("%w: 学期结束日期不能早于开始日期", ErrValidation)
)

// placementError 将 grid 校验错误归入参数校验类
func placementError(err error) error {
	switch {
	case errors.Is(err, grid.ErrSameCell):
		return ErrSameCell
	case errors.Is(err, grid.ErrCellOccupied):
		return ErrCellOccupied
	case errors.Is(err, grid.ErrIllegalPlacement), errors.Is(err, grid.ErrUnknownKind):
		return fmt.Errorf("%w: %v", ErrIllegalPlacement, err)
	default:
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
}

// txError 事务内业务错误原样返回，其余错误视为事务失败
func txError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) || errors.Is(err, ErrNoBaseline) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrReconcileFailed, err)
}
