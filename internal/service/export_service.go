package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
	"github.com/xszhu002/ke-cheng-biao/internal/grid"
)

// ErrExportGenerateFail 导出文件生成失败
var ErrExportGenerateFail = errors.New("生成导出文件失败")

// ExportService 导出业务接口
//
// 导出内容即查看模式下某一周的临时课表，返回文件内容与建议文件名
type ExportService interface {
	ExportWeekExcel(ctx context.Context, scheduleID string, week int) (*bytes.Buffer, string, error)
	ExportWeekICS(ctx context.Context, scheduleID string, week int) ([]byte, string, error)
}

type exportService struct {
	schedules ScheduleService
	loc       *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService 创建 ExportService 实例；loc 为课表节次时间所在时区
func NewExportService(schedules ScheduleService, loc *time.Location, logger *zap.Logger) ExportService {
	if loc == nil {
		loc = time.Local
	}
	return &exportService{schedules: schedules, loc: loc, logger: logger, now: time.Now}
}

// weekGrid 按 (星期, 节次) 索引的周课表
type weekGrid struct {
	week  *dto.WeekScheduleResponse
	start time.Time
	cells map[grid.Cell]dto.ArrangementResponse
}

func (s *exportService) loadWeek(ctx context.Context, scheduleID string, week int) (*weekGrid, error) {
	resp, err := s.schedules.GetWeek(ctx, scheduleID, week)
	if err != nil {
		return nil, err
	}
	start, err := parseDate(resp.WeekStart)
	if err != nil {
		return nil, err
	}
	g := &weekGrid{week: resp, start: start, cells: make(map[grid.Cell]dto.ArrangementResponse)}
	for _, list := range [][]dto.ArrangementResponse{resp.RegularCourses, resp.SpecialCare} {
		for _, a := range list {
			g.cells[grid.Cell{Weekday: a.Weekday, TimeSlot: a.TimeSlot}] = a
		}
	}
	return g, nil
}

// ═══════════════════════════════════════════════════════════
// ExportWeekExcel 周课表导出为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "第N周"
//   - 行：9 个节次；列：节次 | 时间 | 周一 ~ 周五（附日期）
//   - 单元格：课程名，有教室时换行显示教室

func (s *exportService) ExportWeekExcel(ctx context.Context, scheduleID string, week int) (*bytes.Buffer, string, error) {
	g, err := s.loadWeek(ctx, scheduleID, week)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := fmt.Sprintf("第%d周", week)
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	_ = f.DeleteSheet("Sheet1")

	_ = f.SetColWidth(sheetName, "A", "A", 12)
	_ = f.SetColWidth(sheetName, "B", "B", 14)
	_ = f.SetColWidth(sheetName, "C", "G", 20)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	cellStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})

	// 标题行
	_ = f.SetCellValue(sheetName, "A1", fmt.Sprintf("第%d周课表（%s ~ %s）", week, g.week.WeekStart, g.week.WeekEnd))
	_ = f.MergeCell(sheetName, "A1", "G1")
	_ = f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	_ = f.SetCellValue(sheetName, cell("A", 2), "节次")
	_ = f.SetCellValue(sheetName, cell("B", 2), "时间")
	for wd := 1; wd <= grid.Weekdays; wd++ {
		date := g.start.AddDate(0, 0, wd-1)
		_ = f.SetCellValue(sheetName, cell(colName(1+wd), 2), fmt.Sprintf("%s %s", grid.WeekdayName(wd), date.Format("01-02")))
	}
	_ = f.SetCellStyle(sheetName, "A2", "G2", headerStyle)

	// 数据行
	row := 3
	for _, slot := range grid.Slots() {
		_ = f.SetCellValue(sheetName, cell("A", row), slot.Name)
		if slot.Start != "" {
			_ = f.SetCellValue(sheetName, cell("B", row), slot.Start+"-"+slot.End)
		}
		for wd := 1; wd <= grid.Weekdays; wd++ {
			text := "-"
			if a, ok := g.cells[grid.Cell{Weekday: wd, TimeSlot: slot.Number}]; ok {
				text = a.CourseName
				if a.Classroom != "" {
					text += "\n" + a.Classroom
				}
			}
			_ = f.SetCellValue(sheetName, cell(colName(1+wd), row), text)
		}
		row++
	}
	_ = f.SetCellStyle(sheetName, "A3", cell("G", row-1), cellStyle)

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("课表_第%d周_%s.xlsx", week, g.week.WeekStart)
	return buf, filename, nil
}

// ═══════════════════════════════════════════════════════════
// ExportWeekICS 周课表导出为 iCalendar
// ═══════════════════════════════════════════════════════════
//
// 有固定时间的节次生成定时事件，午间管理、晚托、特需托管生成全天事件

func (s *exportService) ExportWeekICS(ctx context.Context, scheduleID string, week int) ([]byte, string, error) {
	g, err := s.loadWeek(ctx, scheduleID, week)
	if err != nil {
		return nil, "", err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//ke-cheng-biao//week export//CN")
	cal.SetName(fmt.Sprintf("第%d周课表", week))

	stamp := s.now().UTC()
	for wd := 1; wd <= grid.Weekdays; wd++ {
		date := g.start.AddDate(0, 0, wd-1)
		for _, slot := range grid.Slots() {
			a, ok := g.cells[grid.Cell{Weekday: wd, TimeSlot: slot.Number}]
			if !ok {
				continue
			}
			event := cal.AddEvent(fmt.Sprintf("%s-%s@ke-cheng-biao", a.ID, date.Format("20060102")))
			event.SetDtStampTime(stamp)
			event.SetSummary(a.CourseName)
			if a.Classroom != "" {
				event.SetLocation(a.Classroom)
			}
			desc := slot.Name
			if a.Notes != "" {
				desc += "\n" + a.Notes
			}
			event.SetDescription(desc)

			start, end, timed := s.slotTimes(date, slot)
			if timed {
				event.SetStartAt(start)
				event.SetEndAt(end)
			} else {
				event.SetAllDayStartAt(date)
				event.SetAllDayEndAt(date.AddDate(0, 0, 1))
			}
		}
	}

	filename := fmt.Sprintf("课表_第%d周_%s.ics", week, g.week.WeekStart)
	return []byte(cal.Serialize()), filename, nil
}

// slotTimes 节次在指定日期的起止时间；无固定时间返回 false
func (s *exportService) slotTimes(date time.Time, slot grid.Slot) (time.Time, time.Time, bool) {
	if slot.Start == "" || slot.End == "" {
		return time.Time{}, time.Time{}, false
	}
	start, err1 := clockOn(date, slot.Start, s.loc)
	end, err2 := clockOn(date, slot.End, s.loc)
	if err1 != nil || err2 != nil {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func clockOn(date time.Time, hhmm string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(hhmm))
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), 0, 0, loc), nil
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
