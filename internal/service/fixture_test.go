package service

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
	"github.com/xszhu002/ke-cheng-biao/internal/model"
)

// ── 测试辅助 ──

// fixture 一位教师、一个当前学期（2024-09-02 开学）与一张课表
type fixture struct {
	svc        *Service
	store      *memStore
	teacherID  string
	semesterID string
	scheduleID string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return newFixtureWithCache(t, NewWeekCache(nil, 0, zap.NewNop()))
}

func newFixtureWithCache(t *testing.T, cache WeekCache) *fixture {
	t.Helper()
	repo, store := newMockRepository()
	ctx := context.Background()

	teacher := &model.Teacher{Name: "王老师", Subject: "语文"}
	semester := &model.Semester{
		Name:      "2024-2025学年第一学期",
		StartDate: date(t, "2024-09-02"),
		EndDate:   date(t, "2025-01-17"),
		IsCurrent: true,
	}
	if err := repo.Teacher.Create(ctx, teacher); err != nil {
		t.Fatalf("初始化教师失败: %v", err)
	}
	if err := repo.Semester.Create(ctx, semester); err != nil {
		t.Fatalf("初始化学期失败: %v", err)
	}
	schedule := &model.Schedule{
		TeacherID:  teacher.TeacherID,
		SemesterID: semester.SemesterID,
		Name:       "王老师课表",
		IsActive:   true,
	}
	if err := repo.Schedule.Create(ctx, schedule); err != nil {
		t.Fatalf("初始化课表失败: %v", err)
	}

	return &fixture{
		svc:        NewService(repo, cache, time.UTC, zap.NewNop()),
		store:      store,
		teacherID:  teacher.TeacherID,
		semesterID: semester.SemesterID,
		scheduleID: schedule.ScheduleID,
	}
}

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		t.Fatalf("日期格式错误 %q: %v", s, err)
	}
	return d
}

// addCourse 新增常规课程；editMode=true 写入原始课表
func (f *fixture) addCourse(t *testing.T, name string, weekday, slot int, editMode bool) dto.ArrangementResponse {
	t.Helper()
	resp, err := f.svc.Arrangement.CreateCourse(context.Background(), &dto.CreateCourseRequest{
		ScheduleID: f.scheduleID,
		Weekday:    weekday,
		TimeSlot:   slot,
		CourseName: name,
		EditMode:   editMode,
	})
	if err != nil {
		t.Fatalf("新增课程 %s(%d,%d) 失败: %v", name, weekday, slot, err)
	}
	return *resp
}

// addSpecialCare 新增特需托管
func (f *fixture) addSpecialCare(t *testing.T, name, day string, editMode bool) dto.ArrangementResponse {
	t.Helper()
	resp, err := f.svc.Arrangement.CreateSpecialCare(context.Background(), &dto.CreateSpecialCareRequest{
		ScheduleID:   f.scheduleID,
		SpecificDate: day,
		CourseName:   name,
		EditMode:     editMode,
	})
	if err != nil {
		t.Fatalf("新增特需托管 %s(%s) 失败: %v", name, day, err)
	}
	return *resp
}

// layout 某一代数据的展示字段摘要，已排序，忽略主键
func (f *fixture) layout(original bool) []string {
	list := f.store.generation(f.scheduleID, original)
	out := make([]string, 0, len(list))
	for _, a := range list {
		d := ""
		if a.SpecificDate != nil {
			d = a.SpecificDate.Format(dto.DateLayout)
		}
		out = append(out, fmt.Sprintf("%s|%d|%d|%s|%s|%s", a.CourseType, a.EffectiveWeekday(), a.TimeSlot, d, a.CourseName, a.Classroom))
	}
	sort.Strings(out)
	return out
}

func equalLayout(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (f *fixture) historyOps() []string {
	var ops []string
	for _, h := range f.store.history {
		if h.ScheduleID == f.scheduleID {
			ops = append(ops, h.OperationType)
		}
	}
	return ops
}

func strPtr(s string) *string { return &s }
