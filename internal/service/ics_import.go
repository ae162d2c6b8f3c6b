package service

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"go.uber.org/zap"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
	"github.com/xszhu002/ke-cheng-biao/internal/grid"
	"github.com/xszhu002/ke-cheng-biao/internal/model"
	"github.com/xszhu002/ke-cheng-biao/internal/repository"
)

// ── ICS 导入 ──────────────────────────────────────────────
//
// 将 iCalendar 中的课程事件导入原始课表：
//   - DTSTART 决定星期与节次，只接受周一至周五、落在有固定时间节次内的事件
//   - 同一单元格出现多个事件时取第一个
//   - 原始课表中已占用的单元格跳过
// ─────────────────────────────────────────────────────────────

// ImportService 课表导入业务接口
type ImportService interface {
	ImportICS(ctx context.Context, scheduleID string, r io.Reader) (*dto.ImportResponse, error)
}

type importService struct {
	repo   *repository.Repository
	rec    *recorder
	loc    *time.Location
	logger *zap.Logger
}

// NewImportService 创建 ImportService 实例
func NewImportService(repo *repository.Repository, cache WeekCache, loc *time.Location, logger *zap.Logger) ImportService {
	if loc == nil {
		loc = time.Local
	}
	return &importService{
		repo:   repo,
		rec:    &recorder{repo: repo, cache: cache, logger: logger},
		loc:    loc,
		logger: logger,
	}
}

// parsedCourseEvent ICS 解析中间结构
type parsedCourseEvent struct {
	Name     string
	Location string
	Cell     grid.Cell
}

func (s *importService) ImportICS(ctx context.Context, scheduleID string, r io.Reader) (*dto.ImportResponse, error) {
	events, skipped, err := parseICSEvents(r, s.loc)
	if err != nil {
		return nil, err
	}

	resp := &dto.ImportResponse{Skipped: skipped}
	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := lockSchedule(ctx, tx, scheduleID); err != nil {
			return err
		}
		rows := make([]*model.Arrangement, 0, len(events))
		for _, e := range events {
			occupied, err := tx.Arrangement.RegularOccupied(ctx, scheduleID, true, e.Cell.Weekday, e.Cell.TimeSlot, "")
			if err != nil {
				return err
			}
			if occupied {
				resp.Skipped++
				continue
			}
			weekday := e.Cell.Weekday
			rows = append(rows, &model.Arrangement{
				ScheduleID: scheduleID,
				CourseType: grid.KindRegular,
				Weekday:    &weekday,
				TimeSlot:   e.Cell.TimeSlot,
				CourseName: e.Name,
				Classroom:  e.Location,
				IsOriginal: true,
			})
		}
		resp.Imported = len(rows)
		return tx.Arrangement.BatchCreate(ctx, rows)
	})
	if err != nil {
		err = txError(err)
		s.logger.Error("导入 ICS 失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}

	s.rec.changed(ctx, scheduleID)
	s.logger.Info("导入 ICS",
		zap.String("schedule_id", scheduleID),
		zap.Int("imported", resp.Imported),
		zap.Int("skipped", resp.Skipped),
	)
	return resp, nil
}

// parseICSEvents 解析事件并映射到网格单元，返回可导入事件与跳过数
func parseICSEvents(r io.Reader, loc *time.Location) ([]parsedCourseEvent, int, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: 无法解析 ICS 内容: %v", ErrValidation, err)
	}

	var (
		events  []parsedCourseEvent
		skipped int
		seen    = make(map[grid.Cell]bool)
	)
	for _, evt := range cal.Events() {
		e, ok := parseVEvent(evt, loc)
		if !ok || seen[e.Cell] {
			skipped++
			continue
		}
		seen[e.Cell] = true
		events = append(events, e)
	}
	return events, skipped, nil
}

func parseVEvent(evt *ics.VEvent, loc *time.Location) (parsedCourseEvent, bool) {
	summary := evt.GetProperty(ics.ComponentPropertySummary)
	if summary == nil || strings.TrimSpace(summary.Value) == "" {
		return parsedCourseEvent{}, false
	}
	start, allDay, err := parseICSDateTime(evt, ics.ComponentPropertyDtStart, loc)
	if err != nil || allDay {
		return parsedCourseEvent{}, false
	}

	weekday := grid.WeekdayFromDate(start)
	if !grid.IsDisplayWeekday(weekday) {
		return parsedCourseEvent{}, false
	}
	slot, ok := grid.SlotAt(start.Format("15:04"))
	if !ok {
		return parsedCourseEvent{}, false
	}

	e := parsedCourseEvent{
		Name: strings.TrimSpace(summary.Value),
		Cell: grid.Cell{Weekday: weekday, TimeSlot: slot.Number},
	}
	if l := evt.GetProperty(ics.ComponentPropertyLocation); l != nil {
		e.Location = strings.TrimSpace(l.Value)
	}
	return e, true
}

// parseICSDateTime 解析日期时间属性，第二个返回值表示是否为全天日期
func parseICSDateTime(evt *ics.VEvent, propName ics.ComponentProperty, loc *time.Location) (time.Time, bool, error) {
	prop := evt.GetProperty(propName)
	if prop == nil {
		return time.Time{}, false, fmt.Errorf("missing property %s", propName)
	}
	val := prop.Value

	if t, err := time.Parse("20060102T150405Z", val); err == nil {
		return t.In(loc), false, nil
	}
	if t, err := time.Parse("20060102T150405", val); err == nil {
		tz := loc
		for k, v := range prop.ICalParameters {
			if strings.EqualFold(k, "TZID") && len(v) > 0 {
				if l, err := time.LoadLocation(v[0]); err == nil {
					tz = l
				}
			}
		}
		return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, tz).In(loc), false, nil
	}
	if t, err := time.Parse("20060102", val); err == nil {
		return t, true, nil
	}
	return time.Time{}, false, fmt.Errorf("无法解析日期: %s", val)
}
