// Package grid 描述课程表网格：5 个工作日 × 9 个节次，以及课程放置合法性规则。
package grid

import (
	"errors"
	"fmt"
)

// Kind 课程类型
type Kind string

const (
	KindRegular     Kind = "regular"
	KindSpecialCare Kind = "special_care"
)

// Valid 是否为已知课程类型
func (k Kind) Valid() bool {
	return k == KindRegular || k == KindSpecialCare
}

const (
	// Weekdays 可显示的工作日数量（周一至周五）
	Weekdays = 5
	// RegularSlots 常规课程可用节次 1..8
	RegularSlots = 8
	// SpecialCareSlot 特需托管专用节次
	SpecialCareSlot = 9
)

var (
	ErrUnknownKind      = errors.New("未知的课程类型")
	ErrIllegalPlacement = errors.New("该课程类型不能放在此节次")
	ErrSameCell         = errors.New("目标位置与原位置相同")
	ErrCellOccupied     = errors.New("目标位置已有课程")
)

// Cell 网格中的一个单元格
type Cell struct {
	Weekday  int `json:"weekday"`
	TimeSlot int `json:"time_slot"`
}

func (c Cell) String() string {
	return fmt.Sprintf("(%d,%d)", c.Weekday, c.TimeSlot)
}

// IsDisplayWeekday 仅周一至周五渲染
func IsDisplayWeekday(weekday int) bool {
	return weekday >= 1 && weekday <= Weekdays
}

// IsValidPlacement 判断课程类型能否放在指定位置
// 特需托管只校验节次，星期由具体日期决定
func IsValidPlacement(kind Kind, weekday, timeSlot int) bool {
	switch kind {
	case KindRegular:
		return IsDisplayWeekday(weekday) && timeSlot >= 1 && timeSlot <= RegularSlots
	case KindSpecialCare:
		return timeSlot == SpecialCareSlot
	default:
		return false
	}
}

// ValidateMove 拖拽放置前的校验
// occupied 报告目标单元格在工作副本中是否已被占用
func ValidateMove(kind Kind, from, to Cell, occupied func(Cell) bool) error {
	if !kind.Valid() {
		return ErrUnknownKind
	}
	if from == to {
		return ErrSameCell
	}
	if !IsValidPlacement(kind, to.Weekday, to.TimeSlot) || !IsDisplayWeekday(to.Weekday) {
		return fmt.Errorf("%w: %s → %s", ErrIllegalPlacement, kind, to)
	}
	if occupied != nil && occupied(to) {
		return fmt.Errorf("%w: %s", ErrCellOccupied, to)
	}
	return nil
}

// ── 节次目录 ──

// Slot 节次定义；Start/End 为空表示无固定时间
type Slot struct {
	Number int    `json:"number"`
	Name   string `json:"name"`
	Start  string `json:"start,omitempty"`
	End    string `json:"end,omitempty"`
}

var slots = [...]Slot{
	{Number: 1, Name: "上午1", Start: "08:30", End: "09:10"},
	{Number: 2, Name: "上午2", Start: "09:50", End: "10:30"},
	{Number: 3, Name: "上午3", Start: "10:45", End: "11:30"},
	{Number: 4, Name: "午间管理"},
	{Number: 5, Name: "下午1", Start: "13:30", End: "14:10"},
	{Number: 6, Name: "下午2", Start: "14:20", End: "15:05"},
	{Number: 7, Name: "下午3", Start: "15:15", End: "15:55"},
	{Number: 8, Name: "晚托"},
	{Number: 9, Name: "特需托管"},
}

// Slots 返回全部 9 个节次
func Slots() []Slot {
	out := make([]Slot, len(slots))
	copy(out, slots[:])
	return out
}

// SlotByNumber 按节次号查找
func SlotByNumber(n int) (Slot, bool) {
	if n < 1 || n > len(slots) {
		return Slot{}, false
	}
	return slots[n-1], true
}

// SlotAt 按 "HH:MM" 时刻匹配有固定时间的节次，落在 [Start, End) 内即命中
func SlotAt(clock string) (Slot, bool) {
	for _, s := range slots {
		if s.Start == "" {
			continue
		}
		if clock >= s.Start && clock < s.End {
			return s, true
		}
	}
	return Slot{}, false
}

var weekdayNames = [...]string{"周一", "周二", "周三", "周四", "周五", "周六", "周日"}

// WeekdayName 1..7 对应中文星期名
func WeekdayName(weekday int) string {
	if weekday < 1 || weekday > len(weekdayNames) {
		return ""
	}
	return weekdayNames[weekday-1]
}
