// Package session 客户端课表会话：维护当前教师、课表、周次与编辑模式，
// 把界面操作转成对账接口调用并重新渲染网格。
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
	"github.com/xszhu002/ke-cheng-biao/internal/grid"
)

// Mode 会话模式
type Mode int

const (
	// ModeViewing 查看当前周的临时课表
	ModeViewing Mode = iota
	// ModeEditing 编辑原始课表，不按周过滤
	ModeEditing
)

func (m Mode) String() string {
	if m == ModeEditing {
		return "editing"
	}
	return "viewing"
}

var (
	ErrNoSchedule = errors.New("尚未选择教师课表")
	ErrFirstWeek  = errors.New("已经是第一周")
	ErrNotViewing = errors.New("请先退出编辑模式")
	ErrNotEditing = errors.New("当前不在编辑模式")
	ErrNotInView  = errors.New("课程不在当前视图中")
)

// API 会话依赖的对账接口；*client.Client 满足该接口
type API interface {
	GetCurrentSemester(ctx context.Context) (*dto.SemesterResponse, error)
	GetTeacherSchedule(ctx context.Context, teacherID string) (*dto.ScheduleResponse, error)
	GetOriginal(ctx context.Context, scheduleID string) (*dto.OriginalScheduleResponse, error)
	GetWeek(ctx context.Context, scheduleID string, week int) (*dto.WeekScheduleResponse, error)
	SaveOriginal(ctx context.Context, scheduleID, source string) (*dto.SaveOriginalResponse, error)
	Reset(ctx context.Context, scheduleID string) (*dto.ResetResponse, error)
	CreateCourse(ctx context.Context, req *dto.CreateCourseRequest) (*dto.ArrangementResponse, error)
	MoveCourse(ctx context.Context, id string, req *dto.MoveCourseRequest) (*dto.MoveResponse, error)
	DeleteCourse(ctx context.Context, id string, editMode bool) error
	CreateSpecialCare(ctx context.Context, req *dto.CreateSpecialCareRequest) (*dto.ArrangementResponse, error)
}

// View 已渲染的网格快照
type View struct {
	ScheduleID  string
	Week        int
	Mode        Mode
	WeekStart   string // 编辑模式下为空
	WeekEnd     string
	Regular     []dto.ArrangementResponse
	SpecialCare []dto.ArrangementResponse
}

// Grid 按 (星期, 节次) 索引视图中的课程，周末特需托管不显示
func (v *View) Grid() map[grid.Cell]dto.ArrangementResponse {
	cells := make(map[grid.Cell]dto.ArrangementResponse, len(v.Regular)+len(v.SpecialCare))
	for _, a := range v.Regular {
		cells[grid.Cell{Weekday: a.Weekday, TimeSlot: a.TimeSlot}] = a
	}
	for _, a := range v.SpecialCare {
		if grid.IsDisplayWeekday(a.Weekday) {
			cells[grid.Cell{Weekday: a.Weekday, TimeSlot: a.TimeSlot}] = a
		}
	}
	return cells
}

func (v *View) find(id string) (dto.ArrangementResponse, bool) {
	for _, list := range [][]dto.ArrangementResponse{v.Regular, v.SpecialCare} {
		for _, a := range list {
			if a.ID == id {
				return a, true
			}
		}
	}
	return dto.ArrangementResponse{}, false
}

// target 一次加载请求的上下文，响应返回时与当前状态比对
type target struct {
	scheduleID string
	week       int
	mode       Mode
	seq        uint64
}

// Session 单个界面的课表会话；并发调用安全
type Session struct {
	api    API
	logger *zap.Logger

	mu       sync.Mutex
	teacher  string
	schedule *dto.ScheduleResponse
	semester *dto.SemesterResponse
	week     int
	mode     Mode
	seq      uint64
	view     *View
	onRender func(View)
}

// Option 会话选项
type Option func(*Session)

// WithRenderHook 每次视图更新后回调
func WithRenderHook(fn func(View)) Option {
	return func(s *Session) { s.onRender = fn }
}

// New 创建会话
func New(api API, logger *zap.Logger, opts ...Option) *Session {
	s := &Session{api: api, logger: logger, week: 1}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ── 状态读取 ──

func (s *Session) Mode() Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.mode
}

func (s *Session) Week() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.week
}

// View 当前视图的副本；尚未加载时返回 nil
func (s *Session) View() *View {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view == nil {
		return nil
	}
	v := *s.view
	return &v
}

// TeacherID 当前教师 ID
func (s *Session) TeacherID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teacher
}

// ScheduleID 当前课表 ID
func (s *Session) ScheduleID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule == nil {
		return ""
	}
	return s.schedule.ID
}

// ── 选择教师 ──

// SelectTeacher 载入教师的有效课表，定位到当前学期周次并进入查看模式
func (s *Session) SelectTeacher(ctx context.Context, teacherID string) error {
	schedule, err := s.api.GetTeacherSchedule(ctx, teacherID)
	if err != nil {
		return err
	}
	semester, err := s.api.GetCurrentSemester(ctx)
	if err != nil {
		return err
	}

	week := semester.CurrentWeek
	if schedule.CurrentWeek > 0 {
		week = schedule.CurrentWeek
	}
	if week < 1 {
		week = 1
	}

	s.mu.Lock()
	s.teacher = teacherID
	s.schedule = schedule
	s.semester = semester
	s.week = week
	s.mode = ModeViewing
	s.view = nil
	t := s.nextTargetLocked()
	s.mu.Unlock()

	s.logger.Info("选择教师",
		zap.String("teacher_id", teacherID),
		zap.String("schedule_id", schedule.ID),
		zap.Int("week", week),
	)
	return s.load(ctx, t)
}

// ── 模式切换 ──

// EnterEditMode 查看 → 编辑，载入完整原始课表
func (s *Session) EnterEditMode(ctx context.Context) error {
	s.mu.Lock()
	if s.schedule == nil {
		s.mu.Unlock()
		return ErrNoSchedule
	}
	if s.mode != ModeViewing {
		s.mu.Unlock()
		return ErrNotViewing
	}
	s.mode = ModeEditing
	t := s.nextTargetLocked()
	s.mu.Unlock()

	return s.load(ctx, t)
}

// Save 编辑 → 查看：以 auto 来源保存原始课表后重新载入当前周
// 保存失败时保持编辑模式
func (s *Session) Save(ctx context.Context) (*dto.SaveOriginalResponse, error) {
	scheduleID, err := s.requireMode(ModeEditing)
	if err != nil {
		return nil, err
	}

	result, err := s.api.SaveOriginal(ctx, scheduleID, "auto")
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.mode = ModeViewing
	t := s.nextTargetLocked()
	s.mu.Unlock()

	return result, s.load(ctx, t)
}

// Cancel 编辑 → 查看，不发起任何写操作；编辑期间的改动已即时生效
func (s *Session) Cancel(ctx context.Context) error {
	if _, err := s.requireMode(ModeEditing); err != nil {
		return err
	}

	s.mu.Lock()
	s.mode = ModeViewing
	t := s.nextTargetLocked()
	s.mu.Unlock()

	return s.load(ctx, t)
}

// ResetSchedule 仅查看模式可用：用原始课表覆盖临时课表后重新载入
func (s *Session) ResetSchedule(ctx context.Context) (*dto.ResetResponse, error) {
	scheduleID, err := s.requireMode(ModeViewing)
	if err != nil {
		return nil, err
	}

	result, err := s.api.Reset(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	return result, s.reload(ctx)
}

// ChangeWeek 周次前后翻动；小于 1 时拒绝且状态不变
func (s *Session) ChangeWeek(ctx context.Context, delta int) error {
	s.mu.Lock()
	if s.schedule == nil {
		s.mu.Unlock()
		return ErrNoSchedule
	}
	if s.mode != ModeViewing {
		s.mu.Unlock()
		return ErrNotViewing
	}
	next := s.week + delta
	if next < 1 {
		s.mu.Unlock()
		return ErrFirstWeek
	}
	s.week = next
	t := s.nextTargetLocked()
	s.mu.Unlock()

	return s.load(ctx, t)
}

// ── 课程操作 ──

// AddCourse 在当前模式对应的一代数据中新增常规课程
func (s *Session) AddCourse(ctx context.Context, weekday, timeSlot int, name, classroom string) (*dto.ArrangementResponse, error) {
	if !grid.IsValidPlacement(grid.KindRegular, weekday, timeSlot) {
		return nil, fmt.Errorf("%w: %s", grid.ErrIllegalPlacement, grid.Cell{Weekday: weekday, TimeSlot: timeSlot})
	}

	s.mu.Lock()
	if s.schedule == nil {
		s.mu.Unlock()
		return nil, ErrNoSchedule
	}
	cell := grid.Cell{Weekday: weekday, TimeSlot: timeSlot}
	if s.view != nil {
		if _, taken := s.view.Grid()[cell]; taken {
			s.mu.Unlock()
			return nil, fmt.Errorf("%w: %s", grid.ErrCellOccupied, cell)
		}
	}
	req := &dto.CreateCourseRequest{
		ScheduleID: s.schedule.ID,
		Weekday:    weekday,
		TimeSlot:   timeSlot,
		CourseName: name,
		Classroom:  classroom,
		EditMode:   s.mode == ModeEditing,
	}
	s.mu.Unlock()

	created, err := s.api.CreateCourse(ctx, req)
	if err != nil {
		return nil, err
	}
	return created, s.reload(ctx)
}

// AddSpecialCare 新增特需托管，date 为 YYYY-MM-DD
func (s *Session) AddSpecialCare(ctx context.Context, date, name, classroom string) (*dto.ArrangementResponse, error) {
	s.mu.Lock()
	if s.schedule == nil {
		s.mu.Unlock()
		return nil, ErrNoSchedule
	}
	req := &dto.CreateSpecialCareRequest{
		ScheduleID:   s.schedule.ID,
		SpecificDate: date,
		CourseName:   name,
		Classroom:    classroom,
		EditMode:     s.mode == ModeEditing,
	}
	s.mu.Unlock()

	created, err := s.api.CreateSpecialCare(ctx, req)
	if err != nil {
		return nil, err
	}
	return created, s.reload(ctx)
}

// MoveCourse 拖拽放置：先用网格规则在本地校验，通过后再请求服务端
func (s *Session) MoveCourse(ctx context.Context, id string, to grid.Cell) (*dto.MoveResponse, error) {
	s.mu.Lock()
	if s.view == nil {
		s.mu.Unlock()
		return nil, ErrNoSchedule
	}
	item, ok := s.view.find(id)
	if !ok {
		s.mu.Unlock()
		return nil, ErrNotInView
	}
	cells := s.view.Grid()
	s.mu.Unlock()

	from := grid.Cell{Weekday: item.Weekday, TimeSlot: item.TimeSlot}
	err := grid.ValidateMove(grid.Kind(item.CourseType), from, to, func(c grid.Cell) bool {
		other, taken := cells[c]
		return taken && other.ID != id
	})
	if err != nil {
		return nil, err
	}

	result, err := s.api.MoveCourse(ctx, id, &dto.MoveCourseRequest{Weekday: to.Weekday, TimeSlot: to.TimeSlot})
	if err != nil {
		return nil, err
	}
	return result, s.reload(ctx)
}

// DeleteCourse 删除课程；编辑模式下可删除原始课程
func (s *Session) DeleteCourse(ctx context.Context, id string) error {
	s.mu.Lock()
	if s.schedule == nil {
		s.mu.Unlock()
		return ErrNoSchedule
	}
	editMode := s.mode == ModeEditing
	s.mu.Unlock()

	if err := s.api.DeleteCourse(ctx, id, editMode); err != nil {
		return err
	}
	return s.reload(ctx)
}

// ── 加载 ──

func (s *Session) requireMode(want Mode) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schedule == nil {
		return "", ErrNoSchedule
	}
	if s.mode != want {
		if want == ModeEditing {
			return "", ErrNotEditing
		}
		return "", ErrNotViewing
	}
	return s.schedule.ID, nil
}

func (s *Session) nextTargetLocked() target {
	s.seq++
	return target{scheduleID: s.schedule.ID, week: s.week, mode: s.mode, seq: s.seq}
}

func (s *Session) currentLocked(t target) bool {
	return s.schedule != nil &&
		s.schedule.ID == t.scheduleID &&
		s.week == t.week &&
		s.mode == t.mode &&
		s.seq == t.seq
}

// reload 以当前状态重新加载视图
func (s *Session) reload(ctx context.Context) error {
	s.mu.Lock()
	if s.schedule == nil {
		s.mu.Unlock()
		return ErrNoSchedule
	}
	t := s.nextTargetLocked()
	s.mu.Unlock()
	return s.load(ctx, t)
}

// load 拉取 t 对应的视图；响应返回时会话已切换到其他目标则静默丢弃
func (s *Session) load(ctx context.Context, t target) error {
	v := View{ScheduleID: t.scheduleID, Week: t.week, Mode: t.mode}

	if t.mode == ModeEditing {
		orig, err := s.api.GetOriginal(ctx, t.scheduleID)
		if err != nil {
			return s.dropIfStale(t, err)
		}
		v.Regular, v.SpecialCare = orig.RegularCourses, orig.SpecialCare
	} else {
		week, err := s.api.GetWeek(ctx, t.scheduleID, t.week)
		if err != nil {
			return s.dropIfStale(t, err)
		}
		v.WeekStart, v.WeekEnd = week.WeekStart, week.WeekEnd
		v.Regular, v.SpecialCare = week.RegularCourses, week.SpecialCare
	}

	s.mu.Lock()
	if !s.currentLocked(t) {
		s.mu.Unlock()
		s.logger.Debug("丢弃过期响应",
			zap.String("schedule_id", t.scheduleID),
			zap.Int("week", t.week),
			zap.Stringer("mode", t.mode),
			zap.Uint64("seq", t.seq),
		)
		return nil
	}
	s.view = &v
	hook := s.onRender
	s.mu.Unlock()

	if hook != nil {
		hook(v)
	}
	return nil
}

// dropIfStale 过期请求的错误同样不向上暴露
func (s *Session) dropIfStale(t target, err error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.currentLocked(t) {
		return nil
	}
	return err
}
