package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
	"github.com/xszhu002/ke-cheng-biao/internal/grid"
	"github.com/xszhu002/ke-cheng-biao/pkg/client"
)

var _ API = (*client.Client)(nil)

// fakeAPI 内存版对账接口，语义与服务端一致：原始/临时两代，保存与重置整体重建
type fakeAPI struct {
	mu       sync.Mutex
	nextID   int
	rows     []dto.ArrangementResponse
	calls    []string
	weekGate map[int]chan struct{}
	weekErr  map[int]error
	saved    bool // 是否保存过原始课表
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{weekGate: map[int]chan struct{}{}, weekErr: map[int]error{}}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) mutations() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		switch c {
		case "save", "reset", "create", "move", "delete", "special":
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeAPI) add(a dto.ArrangementResponse) dto.ArrangementResponse {
	f.nextID++
	a.ID = fmt.Sprintf("a-%d", f.nextID)
	a.ScheduleID = "s-1"
	f.rows = append(f.rows, a)
	return a
}

func (f *fakeAPI) generation(original bool) []dto.ArrangementResponse {
	var out []dto.ArrangementResponse
	for _, r := range f.rows {
		if r.IsOriginal == original {
			out = append(out, r)
		}
	}
	return out
}

func split(rows []dto.ArrangementResponse) (regular, special []dto.ArrangementResponse) {
	for _, r := range rows {
		if r.CourseType == string(grid.KindSpecialCare) {
			special = append(special, r)
		} else {
			regular = append(regular, r)
		}
	}
	return regular, special
}

func (f *fakeAPI) GetCurrentSemester(context.Context) (*dto.SemesterResponse, error) {
	return &dto.SemesterResponse{ID: "sem-1", StartDate: "2024-09-02", CurrentWeek: 2}, nil
}

func (f *fakeAPI) GetTeacherSchedule(_ context.Context, teacherID string) (*dto.ScheduleResponse, error) {
	if teacherID != "t-1" {
		return nil, &client.APIError{Status: 404, Code: 13001, Message: "课表不存在"}
	}
	return &dto.ScheduleResponse{ID: "s-1", TeacherID: teacherID}, nil
}

func (f *fakeAPI) GetOriginal(_ context.Context, scheduleID string) (*dto.OriginalScheduleResponse, error) {
	f.record("original")
	f.mu.Lock()
	defer f.mu.Unlock()
	regular, special := split(f.generation(true))
	return &dto.OriginalScheduleResponse{ScheduleID: scheduleID, RegularCourses: regular, SpecialCare: special}, nil
}

func (f *fakeAPI) GetWeek(_ context.Context, scheduleID string, week int) (*dto.WeekScheduleResponse, error) {
	f.record(fmt.Sprintf("week:%d", week))
	f.mu.Lock()
	gate := f.weekGate[week]
	err := f.weekErr[week]
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	regular, special := split(f.generation(false))
	return &dto.WeekScheduleResponse{ScheduleID: scheduleID, WeekNumber: week, RegularCourses: regular, SpecialCare: special}, nil
}

func (f *fakeAPI) SaveOriginal(_ context.Context, _ string, source string) (*dto.SaveOriginalResponse, error) {
	f.record("save")
	f.mu.Lock()
	defer f.mu.Unlock()

	captured := f.generation(true)
	if source == "auto" && !f.saved && len(captured) == 0 {
		captured = f.generation(false)
	}
	f.saved = true
	f.rows = nil
	for _, r := range captured {
		r.IsOriginal = true
		f.add(r)
		r.IsOriginal = false
		f.add(r)
	}
	return &dto.SaveOriginalResponse{Count: len(captured)}, nil
}

func (f *fakeAPI) Reset(context.Context, string) (*dto.ResetResponse, error) {
	f.record("reset")
	f.mu.Lock()
	defer f.mu.Unlock()

	originals := f.generation(true)
	if len(originals) == 0 {
		return nil, &client.APIError{Status: 400, Code: client.CodeNoBaseline, Message: "请先保存原始课程表"}
	}
	f.rows = nil
	for _, r := range originals {
		f.add(r)
		r.IsOriginal = false
		f.add(r)
	}
	return &dto.ResetResponse{Count: len(originals)}, nil
}

func (f *fakeAPI) CreateCourse(_ context.Context, req *dto.CreateCourseRequest) (*dto.ArrangementResponse, error) {
	f.record("create")
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.add(dto.ArrangementResponse{
		CourseType: string(grid.KindRegular),
		Weekday:    req.Weekday,
		TimeSlot:   req.TimeSlot,
		CourseName: req.CourseName,
		IsOriginal: req.EditMode,
	})
	return &a, nil
}

func (f *fakeAPI) MoveCourse(_ context.Context, id string, req *dto.MoveCourseRequest) (*dto.MoveResponse, error) {
	f.record("move")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID != id {
			continue
		}
		if r.IsOriginal {
			r.IsOriginal = false
			r.Weekday, r.TimeSlot = req.Weekday, req.TimeSlot
			return &dto.MoveResponse{Arrangement: f.add(r), OriginalKept: true}, nil
		}
		f.rows[i].Weekday, f.rows[i].TimeSlot = req.Weekday, req.TimeSlot
		return &dto.MoveResponse{Arrangement: f.rows[i]}, nil
	}
	return nil, &client.APIError{Status: 404, Code: 14001, Message: "课程不存在"}
}

func (f *fakeAPI) DeleteCourse(_ context.Context, id string, editMode bool) error {
	f.record("delete")
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.rows {
		if r.ID == id {
			if r.IsOriginal && !editMode {
				return &client.APIError{Status: 400, Code: 14005}
			}
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return &client.APIError{Status: 404, Code: 14001}
}

func (f *fakeAPI) CreateSpecialCare(_ context.Context, req *dto.CreateSpecialCareRequest) (*dto.ArrangementResponse, error) {
	f.record("special")
	f.mu.Lock()
	defer f.mu.Unlock()
	a := f.add(dto.ArrangementResponse{
		CourseType:   string(grid.KindSpecialCare),
		Weekday:      3,
		TimeSlot:     grid.SpecialCareSlot,
		SpecificDate: req.SpecificDate,
		CourseName:   req.CourseName,
		IsOriginal:   req.EditMode,
	})
	return &a, nil
}

// ── 辅助 ──

func newSession(t *testing.T) (*Session, *fakeAPI) {
	t.Helper()
	api := newFakeAPI()
	s := New(api, zap.NewNop())
	if err := s.SelectTeacher(context.Background(), "t-1"); err != nil {
		t.Fatalf("选择教师失败: %v", err)
	}
	return s, api
}

func cellOf(v *View, name string) (grid.Cell, bool) {
	for c, a := range v.Grid() {
		if a.CourseName == name {
			return c, true
		}
	}
	return grid.Cell{}, false
}

// ── 测试 ──

func TestSelectTeacher_LoadsCurrentWeek(t *testing.T) {
	var rendered []View
	api := newFakeAPI()
	s := New(api, zap.NewNop(), WithRenderHook(func(v View) { rendered = append(rendered, v) }))

	if err := s.SelectTeacher(context.Background(), "t-1"); err != nil {
		t.Fatalf("选择教师失败: %v", err)
	}
	if s.Week() != 2 || s.Mode() != ModeViewing {
		t.Errorf("期望第 2 周查看模式，实际: week=%d mode=%s", s.Week(), s.Mode())
	}
	if len(rendered) != 1 || rendered[0].Week != 2 {
		t.Errorf("期望渲染一次第 2 周，实际: %+v", rendered)
	}
	if s.TeacherID() != "t-1" || s.ScheduleID() != "s-1" {
		t.Errorf("会话状态错误: teacher=%s schedule=%s", s.TeacherID(), s.ScheduleID())
	}
}

func TestSelectTeacher_NotFound(t *testing.T) {
	s := New(newFakeAPI(), zap.NewNop())
	if err := s.SelectTeacher(context.Background(), "nobody"); err == nil {
		t.Fatal("期望错误")
	}
	if err := s.EnterEditMode(context.Background()); !errors.Is(err, ErrNoSchedule) {
		t.Errorf("期望 ErrNoSchedule，实际: %v", err)
	}
}

func TestModeTransitions(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)

	if _, err := s.Save(ctx); !errors.Is(err, ErrNotEditing) {
		t.Errorf("查看模式保存期望 ErrNotEditing，实际: %v", err)
	}
	if err := s.Cancel(ctx); !errors.Is(err, ErrNotEditing) {
		t.Errorf("查看模式取消期望 ErrNotEditing，实际: %v", err)
	}
	if err := s.EnterEditMode(ctx); err != nil {
		t.Fatalf("进入编辑模式失败: %v", err)
	}
	if err := s.EnterEditMode(ctx); !errors.Is(err, ErrNotViewing) {
		t.Errorf("重复进入编辑模式期望 ErrNotViewing，实际: %v", err)
	}
	if _, err := s.ResetSchedule(ctx); !errors.Is(err, ErrNotViewing) {
		t.Errorf("编辑模式重置期望 ErrNotViewing，实际: %v", err)
	}
	if err := s.ChangeWeek(ctx, 1); !errors.Is(err, ErrNotViewing) {
		t.Errorf("编辑模式翻周期望 ErrNotViewing，实际: %v", err)
	}
	if v := s.View(); v == nil || v.Mode != ModeEditing || v.WeekStart != "" {
		t.Errorf("编辑模式视图应为原始课表: %+v", v)
	}
}

func TestCancel_NoMutation(t *testing.T) {
	ctx := context.Background()
	s, api := newSession(t)

	if err := s.EnterEditMode(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddCourse(ctx, 1, 1, "语文", ""); err != nil {
		t.Fatalf("编辑模式新增失败: %v", err)
	}
	before := len(api.mutations())

	if err := s.Cancel(ctx); err != nil {
		t.Fatalf("取消失败: %v", err)
	}
	if got := len(api.mutations()); got != before {
		t.Errorf("取消不应发起写操作: %v", api.mutations())
	}
	if s.Mode() != ModeViewing {
		t.Errorf("取消后应回到查看模式")
	}
	// 编辑期间的新增已直接写入原始课表
	orig, _ := api.GetOriginal(ctx, "s-1")
	if len(orig.RegularCourses) != 1 {
		t.Errorf("原始课表应保留编辑期间的新增，实际: %d", len(orig.RegularCourses))
	}
}

func TestChangeWeek(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)

	if err := s.ChangeWeek(ctx, -1); err != nil {
		t.Fatalf("翻到第 1 周失败: %v", err)
	}
	if err := s.ChangeWeek(ctx, -1); !errors.Is(err, ErrFirstWeek) {
		t.Errorf("期望 ErrFirstWeek，实际: %v", err)
	}
	if s.Week() != 1 {
		t.Errorf("越界后周次应保持 1，实际: %d", s.Week())
	}
	if err := s.ChangeWeek(ctx, 3); err != nil {
		t.Fatal(err)
	}
	if v := s.View(); v.Week != 4 {
		t.Errorf("期望视图为第 4 周，实际: %d", v.Week)
	}
}

func TestStaleResponseDiscarded(t *testing.T) {
	ctx := context.Background()
	s, api := newSession(t)

	gate := make(chan struct{})
	api.mu.Lock()
	api.weekGate[3] = gate
	api.mu.Unlock()

	slow := make(chan error, 1)
	go func() { slow <- s.ChangeWeek(ctx, 1) }()

	// 等待第 3 周请求发出
	for {
		api.mu.Lock()
		n := len(api.calls)
		last := ""
		if n > 0 {
			last = api.calls[n-1]
		}
		api.mu.Unlock()
		if last == "week:3" {
			break
		}
	}

	if err := s.ChangeWeek(ctx, 1); err != nil {
		t.Fatalf("翻到第 4 周失败: %v", err)
	}
	close(gate)
	if err := <-slow; err != nil {
		t.Errorf("过期响应不应报错，实际: %v", err)
	}

	if v := s.View(); v.Week != 4 {
		t.Errorf("过期的第 3 周响应覆盖了视图: week=%d", v.Week)
	}
}

func TestStaleErrorDiscarded(t *testing.T) {
	ctx := context.Background()
	s, api := newSession(t)

	gate := make(chan struct{})
	api.mu.Lock()
	api.weekGate[3] = gate
	api.weekErr[3] = errors.New("timeout")
	api.mu.Unlock()

	slow := make(chan error, 1)
	go func() { slow <- s.ChangeWeek(ctx, 1) }()
	for {
		api.mu.Lock()
		done := len(api.calls) > 0 && api.calls[len(api.calls)-1] == "week:3"
		api.mu.Unlock()
		if done {
			break
		}
	}
	if err := s.ChangeWeek(ctx, 1); err != nil {
		t.Fatal(err)
	}
	close(gate)
	if err := <-slow; err != nil {
		t.Errorf("过期请求的错误不应暴露，实际: %v", err)
	}
}

func TestMoveCourse_PreValidation(t *testing.T) {
	ctx := context.Background()
	s, api := newSession(t)

	a, err := s.AddCourse(ctx, 1, 3, "数学", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddCourse(ctx, 2, 3, "英语", ""); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddCourse(ctx, 1, 3, "物理", ""); !errors.Is(err, grid.ErrCellOccupied) {
		t.Errorf("期望 ErrCellOccupied，实际: %v", err)
	}

	tests := []struct {
		name string
		to   grid.Cell
		want error
	}{
		{"原位", grid.Cell{Weekday: 1, TimeSlot: 3}, grid.ErrSameCell},
		{"占用", grid.Cell{Weekday: 2, TimeSlot: 3}, grid.ErrCellOccupied},
		{"第 9 节", grid.Cell{Weekday: 3, TimeSlot: 9}, grid.ErrIllegalPlacement},
		{"周六", grid.Cell{Weekday: 6, TimeSlot: 1}, grid.ErrIllegalPlacement},
	}
	before := len(api.mutations())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.MoveCourse(ctx, a.ID, tt.to); !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
	if got := len(api.mutations()); got != before {
		t.Errorf("本地校验失败不应请求服务端: %v", api.mutations())
	}

	if _, err := s.MoveCourse(ctx, "missing", grid.Cell{Weekday: 4, TimeSlot: 1}); !errors.Is(err, ErrNotInView) {
		t.Errorf("期望 ErrNotInView，实际: %v", err)
	}
	if _, err := s.MoveCourse(ctx, a.ID, grid.Cell{Weekday: 4, TimeSlot: 1}); err != nil {
		t.Fatalf("移动失败: %v", err)
	}
	if c, ok := cellOf(s.View(), "数学"); !ok || c != (grid.Cell{Weekday: 4, TimeSlot: 1}) {
		t.Errorf("移动后视图未更新: %v %v", c, ok)
	}
}

func TestScenario_CreateMoveSaveReset(t *testing.T) {
	ctx := context.Background()
	s, api := newSession(t)

	if _, err := s.ResetSchedule(ctx); !client.IsNoBaseline(err) {
		t.Errorf("无基线时重置期望 no-baseline，实际: %v", err)
	}

	a, err := s.AddCourse(ctx, 1, 3, "数学", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.MoveCourse(ctx, a.ID, grid.Cell{Weekday: 2, TimeSlot: 3}); err != nil {
		t.Fatal(err)
	}
	if err := s.EnterEditMode(ctx); err != nil {
		t.Fatal(err)
	}
	if v := s.View(); len(v.Regular) != 0 {
		t.Errorf("尚未保存时原始课表应为空，实际: %d", len(v.Regular))
	}
	if _, err := s.Save(ctx); err != nil {
		t.Fatal(err)
	}
	if s.Mode() != ModeViewing {
		t.Fatal("保存后应回到查看模式")
	}
	if c, ok := cellOf(s.View(), "数学"); !ok || c != (grid.Cell{Weekday: 2, TimeSlot: 3}) {
		t.Errorf("保存后临时课表错误: %v %v", c, ok)
	}

	if _, err := s.ResetSchedule(ctx); err != nil {
		t.Fatal(err)
	}
	if c, ok := cellOf(s.View(), "数学"); !ok || c != (grid.Cell{Weekday: 2, TimeSlot: 3}) {
		t.Errorf("重置后临时课表错误: %v %v", c, ok)
	}

	want := []string{"reset", "create", "move", "save", "reset"}
	got := api.mutations()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("写操作顺序错误: %v", got)
	}
}

func TestDeleteCourse_UsesEditMode(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)

	if _, err := s.AddCourse(ctx, 1, 1, "语文", ""); err != nil {
		t.Fatal(err)
	}
	if err := s.EnterEditMode(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Save(ctx); err != nil {
		t.Fatal(err)
	}
	if err := s.EnterEditMode(ctx); err != nil {
		t.Fatal(err)
	}
	orig := s.View().Regular[0]
	if err := s.DeleteCourse(ctx, orig.ID); err != nil {
		t.Fatalf("编辑模式删除原始课程失败: %v", err)
	}
	if v := s.View(); len(v.Regular) != 0 {
		t.Errorf("删除后原始课表应为空，实际: %d", len(v.Regular))
	}

	// 已有基线时保存空的原始课表，临时课表随之清空
	if _, err := s.Save(ctx); err != nil {
		t.Fatal(err)
	}
	if v := s.View(); v.Mode != ModeViewing || len(v.Regular) != 0 {
		t.Errorf("保存后周视图应为空，实际 mode=%v 课程=%d", v.Mode, len(v.Regular))
	}
}

func TestAddSpecialCare(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)

	sc, err := s.AddSpecialCare(ctx, "2024-09-11", "晚托", "101")
	if err != nil {
		t.Fatal(err)
	}
	if sc.TimeSlot != grid.SpecialCareSlot {
		t.Errorf("特需托管应在第 9 节，实际: %d", sc.TimeSlot)
	}
	if len(s.View().SpecialCare) != 1 {
		t.Errorf("视图应包含新增的特需托管")
	}
}
