package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/xszhu002/ke-cheng-biao/internal/grid"
	"github.com/xszhu002/ke-cheng-biao/internal/model"
	"github.com/xszhu002/ke-cheng-biao/internal/repository"
	pkgerrors "github.com/xszhu002/ke-cheng-biao/pkg/errors"
)

// ── 内存存储 ──
// 所有 mock repo 共享一个 memStore；mockTx 在 fn 失败时恢复快照，模拟事务回滚

type memStore struct {
	teachers     map[string]model.Teacher
	semesters    map[string]model.Semester
	schedules    map[string]model.Schedule
	arrangements map[string]model.Arrangement
	history      []model.OperationHistory
	tasks        map[string]model.Task
	notes        map[string]model.WeeklyNote

	seq   int
	locks int
	// fail 按 "Repo.Method" 注入错误
	fail map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		teachers:     make(map[string]model.Teacher),
		semesters:    make(map[string]model.Semester),
		schedules:    make(map[string]model.Schedule),
		arrangements: make(map[string]model.Arrangement),
		tasks:        make(map[string]model.Task),
		notes:        make(map[string]model.WeeklyNote),
		fail:         make(map[string]error),
	}
}

func (s *memStore) nextID(prefix string) string {
	s.seq++
	return fmt.Sprintf("%s-%06d", prefix, s.seq)
}

func (s *memStore) failure(op string) error {
	return s.fail[op]
}

func (s *memStore) snapshot() *memStore {
	snap := newMemStore()
	for k, v := range s.teachers {
		snap.teachers[k] = v
	}
	for k, v := range s.semesters {
		snap.semesters[k] = v
	}
	for k, v := range s.schedules {
		snap.schedules[k] = v
	}
	for k, v := range s.arrangements {
		snap.arrangements[k] = v
	}
	for k, v := range s.tasks {
		snap.tasks[k] = v
	}
	for k, v := range s.notes {
		snap.notes[k] = v
	}
	snap.history = append(snap.history, s.history...)
	return snap
}

func (s *memStore) restore(snap *memStore) {
	s.teachers = snap.teachers
	s.semesters = snap.semesters
	s.schedules = snap.schedules
	s.arrangements = snap.arrangements
	s.tasks = snap.tasks
	s.notes = snap.notes
	s.history = snap.history
}

// generation 按 (类型, 星期, 节次, 日期, ID) 排序返回某一代数据
func (s *memStore) generation(scheduleID string, original bool) []model.Arrangement {
	var list []model.Arrangement
	for _, a := range s.arrangements {
		if a.ScheduleID == scheduleID && a.IsOriginal == original {
			list = append(list, a)
		}
	}
	sortArrangements(list)
	return list
}

func sortArrangements(list []model.Arrangement) {
	sort.Slice(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.CourseType != b.CourseType {
			return a.CourseType < b.CourseType
		}
		if a.EffectiveWeekday() != b.EffectiveWeekday() {
			return a.EffectiveWeekday() < b.EffectiveWeekday()
		}
		if a.TimeSlot != b.TimeSlot {
			return a.TimeSlot < b.TimeSlot
		}
		return a.ArrangementID < b.ArrangementID
	})
}

// newMockRepository 组装基于同一 memStore 的 Repository
func newMockRepository() (*repository.Repository, *memStore) {
	s := newMemStore()
	repo := &repository.Repository{
		Teacher:     &mockTeacherRepo{s: s},
		Semester:    &mockSemesterRepo{s: s},
		Schedule:    &mockScheduleRepo{s: s},
		Arrangement: &mockArrangementRepo{s: s},
		History:     &mockHistoryRepo{s: s},
		Task:        &mockTaskRepo{s: s},
		WeeklyNote:  &mockWeeklyNoteRepo{s: s},
	}
	repo.Tx = &mockTx{s: s, repo: repo}
	return repo, s
}

// ── Mock Transactor ──

type mockTx struct {
	s     *memStore
	repo  *repository.Repository
	calls int
}

func (m *mockTx) Transaction(_ context.Context, fn func(tx *repository.Repository) error) error {
	m.calls++
	if err := m.s.failure("Tx.Begin"); err != nil {
		return err
	}
	snap := m.s.snapshot()
	if err := fn(m.repo); err != nil {
		m.s.restore(snap)
		return err
	}
	return nil
}

// ── Mock TeacherRepository ──

type mockTeacherRepo struct{ s *memStore }

func (m *mockTeacherRepo) Create(_ context.Context, t *model.Teacher) error {
	if t.TeacherID == "" {
		t.TeacherID = m.s.nextID("teacher")
	}
	m.s.teachers[t.TeacherID] = *t
	return nil
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	if t, ok := m.s.teachers[id]; ok {
		return &t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByName(_ context.Context, name string) (*model.Teacher, error) {
	for _, t := range m.s.teachers {
		if t.Name == name {
			return &t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) List(_ context.Context) ([]model.Teacher, error) {
	result := make([]model.Teacher, 0, len(m.s.teachers))
	for _, t := range m.s.teachers {
		result = append(result, t)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}

func (m *mockTeacherRepo) Update(_ context.Context, t *model.Teacher) error {
	m.s.teachers[t.TeacherID] = *t
	return nil
}

func (m *mockTeacherRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.s.teachers[id]; !ok {
		return pkgerrors.ErrNoRowsAffected
	}
	delete(m.s.teachers, id)
	return nil
}

// ── Mock SemesterRepository ──

type mockSemesterRepo struct{ s *memStore }

func (m *mockSemesterRepo) Create(_ context.Context, sem *model.Semester) error {
	if err := m.s.failure("Semester.Create"); err != nil {
		return err
	}
	if sem.SemesterID == "" {
		sem.SemesterID = m.s.nextID("sem")
	}
	m.s.semesters[sem.SemesterID] = *sem
	return nil
}

func (m *mockSemesterRepo) GetByID(_ context.Context, id string) (*model.Semester, error) {
	if sem, ok := m.s.semesters[id]; ok {
		return &sem, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) GetCurrent(_ context.Context) (*model.Semester, error) {
	for _, sem := range m.s.semesters {
		if sem.IsCurrent {
			return &sem, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) List(_ context.Context) ([]model.Semester, error) {
	result := make([]model.Semester, 0, len(m.s.semesters))
	for _, sem := range m.s.semesters {
		result = append(result, sem)
	}
	return result, nil
}

func (m *mockSemesterRepo) ClearCurrent(_ context.Context) error {
	for id, sem := range m.s.semesters {
		sem.IsCurrent = false
		m.s.semesters[id] = sem
	}
	return nil
}

// ── Mock ScheduleRepository ──

type mockScheduleRepo struct{ s *memStore }

func (m *mockScheduleRepo) Create(_ context.Context, sch *model.Schedule) error {
	if sch.ScheduleID == "" {
		sch.ScheduleID = m.s.nextID("sch")
	}
	stored := *sch
	stored.Teacher, stored.Semester = nil, nil
	m.s.schedules[sch.ScheduleID] = stored
	return nil
}

func (m *mockScheduleRepo) withAssociations(sch model.Schedule) *model.Schedule {
	if t, ok := m.s.teachers[sch.TeacherID]; ok {
		sch.Teacher = &t
	}
	if sem, ok := m.s.semesters[sch.SemesterID]; ok {
		sch.Semester = &sem
	}
	return &sch
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id string) (*model.Schedule, error) {
	if sch, ok := m.s.schedules[id]; ok {
		return m.withAssociations(sch), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockScheduleRepo) GetActiveByTeacher(_ context.Context, teacherID string) (*model.Schedule, error) {
	var best *model.Schedule
	for _, sch := range m.s.schedules {
		if sch.TeacherID != teacherID || !sch.IsActive {
			continue
		}
		cand := m.withAssociations(sch)
		if best == nil || (cand.Semester != nil && cand.Semester.IsCurrent) {
			best = cand
		}
	}
	if best == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return best, nil
}

func (m *mockScheduleRepo) LockForUpdate(_ context.Context, id string) (*model.Schedule, error) {
	if err := m.s.failure("Schedule.LockForUpdate"); err != nil {
		return nil, err
	}
	sch, ok := m.s.schedules[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	m.s.locks++
	return &sch, nil
}

func (m *mockScheduleRepo) MarkBaseline(_ context.Context, id string) error {
	if err := m.s.failure("Schedule.MarkBaseline"); err != nil {
		return err
	}
	sch, ok := m.s.schedules[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	sch.HasBaseline = true
	m.s.schedules[id] = sch
	return nil
}

// ── Mock ArrangementRepository ──

type mockArrangementRepo struct{ s *memStore }

func (m *mockArrangementRepo) Create(_ context.Context, a *model.Arrangement) error {
	if err := m.s.failure("Arrangement.Create"); err != nil {
		return err
	}
	if a.ArrangementID == "" {
		a.ArrangementID = m.s.nextID("arr")
	}
	m.s.arrangements[a.ArrangementID] = *a
	return nil
}

// BatchCreate 逐条写入，写入过半时可注入失败以验证回滚
func (m *mockArrangementRepo) BatchCreate(ctx context.Context, list []*model.Arrangement) error {
	for i, a := range list {
		if i == len(list)/2 {
			if err := m.s.failure("Arrangement.BatchCreate"); err != nil {
				return err
			}
		}
		if a.ArrangementID == "" {
			a.ArrangementID = m.s.nextID("arr")
		}
		m.s.arrangements[a.ArrangementID] = *a
	}
	return nil
}

func (m *mockArrangementRepo) GetByID(_ context.Context, id string) (*model.Arrangement, error) {
	if a, ok := m.s.arrangements[id]; ok {
		return &a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockArrangementRepo) ListBySchedule(_ context.Context, scheduleID string, original bool) ([]model.Arrangement, error) {
	if err := m.s.failure("Arrangement.ListBySchedule"); err != nil {
		return nil, err
	}
	return m.s.generation(scheduleID, original), nil
}

func (m *mockArrangementRepo) ListSpecialCareInRange(_ context.Context, scheduleID string, original bool, start, end time.Time) ([]model.Arrangement, error) {
	var list []model.Arrangement
	for _, a := range m.s.generation(scheduleID, original) {
		if a.IsSpecialCare() && a.SpecificDate != nil && grid.InRange(*a.SpecificDate, start, end) {
			list = append(list, a)
		}
	}
	return list, nil
}

func (m *mockArrangementRepo) ListSpecialCare(_ context.Context, scheduleID string) ([]model.Arrangement, error) {
	var list []model.Arrangement
	for _, a := range m.s.arrangements {
		if a.ScheduleID == scheduleID && a.IsSpecialCare() {
			list = append(list, a)
		}
	}
	sortArrangements(list)
	return list, nil
}

func (m *mockArrangementRepo) RegularOccupied(_ context.Context, scheduleID string, original bool, weekday, timeSlot int, excludeID string) (bool, error) {
	for _, a := range m.s.generation(scheduleID, original) {
		if a.IsSpecialCare() || a.ArrangementID == excludeID {
			continue
		}
		if a.EffectiveWeekday() == weekday && a.TimeSlot == timeSlot {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockArrangementRepo) SpecialCareOccupied(_ context.Context, scheduleID string, original bool, date time.Time, excludeID string) (bool, error) {
	for _, a := range m.s.generation(scheduleID, original) {
		if !a.IsSpecialCare() || a.ArrangementID == excludeID || a.SpecificDate == nil {
			continue
		}
		if grid.DateOnly(*a.SpecificDate).Equal(grid.DateOnly(date)) {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockArrangementRepo) UpdatePosition(_ context.Context, a *model.Arrangement) error {
	if err := m.s.failure("Arrangement.UpdatePosition"); err != nil {
		return err
	}
	stored, ok := m.s.arrangements[a.ArrangementID]
	if !ok {
		return pkgerrors.ErrNoRowsAffected
	}
	stored.Weekday = a.Weekday
	stored.TimeSlot = a.TimeSlot
	stored.SpecificDate = a.SpecificDate
	m.s.arrangements[a.ArrangementID] = stored
	return nil
}

func (m *mockArrangementRepo) UpdateContent(_ context.Context, a *model.Arrangement) error {
	stored, ok := m.s.arrangements[a.ArrangementID]
	if !ok {
		return pkgerrors.ErrNoRowsAffected
	}
	stored.CourseName = a.CourseName
	stored.Classroom = a.Classroom
	stored.Notes = a.Notes
	stored.SpecificDate = a.SpecificDate
	m.s.arrangements[a.ArrangementID] = stored
	return nil
}

func (m *mockArrangementRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.s.arrangements[id]; !ok {
		return pkgerrors.ErrNoRowsAffected
	}
	delete(m.s.arrangements, id)
	return nil
}

func (m *mockArrangementRepo) DeleteBySchedule(_ context.Context, scheduleID string) (int64, error) {
	var n int64
	for id, a := range m.s.arrangements {
		if a.ScheduleID == scheduleID {
			delete(m.s.arrangements, id)
			n++
		}
	}
	return n, nil
}

// ── Mock HistoryRepository ──

type mockHistoryRepo struct{ s *memStore }

func (m *mockHistoryRepo) Create(_ context.Context, h *model.OperationHistory) error {
	if err := m.s.failure("History.Create"); err != nil {
		return err
	}
	h.HistoryID = m.s.nextID("hist")
	h.CreatedAt = time.Now()
	m.s.history = append(m.s.history, *h)
	return nil
}

func (m *mockHistoryRepo) ListBySchedule(_ context.Context, scheduleID string, offset, limit int) ([]model.OperationHistory, int64, error) {
	var all []model.OperationHistory
	for i := len(m.s.history) - 1; i >= 0; i-- {
		if m.s.history[i].ScheduleID == scheduleID {
			all = append(all, m.s.history[i])
		}
	}
	total := int64(len(all))
	if offset >= len(all) {
		return []model.OperationHistory{}, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock TaskRepository ──

type mockTaskRepo struct{ s *memStore }

func (m *mockTaskRepo) Create(_ context.Context, t *model.Task) error {
	if t.TaskID == "" {
		t.TaskID = m.s.nextID("task")
	}
	m.s.tasks[t.TaskID] = *t
	return nil
}

func (m *mockTaskRepo) GetByID(_ context.Context, id string) (*model.Task, error) {
	if t, ok := m.s.tasks[id]; ok {
		return &t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTaskRepo) sorted(keep func(model.Task) bool) []model.Task {
	var list []model.Task
	for _, t := range m.s.tasks {
		if keep(t) {
			list = append(list, t)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].TaskID < list[j].TaskID })
	return list
}

func (m *mockTaskRepo) ListByCell(_ context.Context, scheduleID string, weekday, timeSlot int) ([]model.Task, error) {
	return m.sorted(func(t model.Task) bool {
		return t.ScheduleID == scheduleID && t.Weekday == weekday && t.TimeSlot == timeSlot
	}), nil
}

func (m *mockTaskRepo) ListByTeacher(_ context.Context, teacherID string, q repository.TaskQuery) ([]model.Task, error) {
	return m.sorted(func(t model.Task) bool {
		if t.TeacherID != teacherID {
			return false
		}
		if q.Date != nil && (t.TaskDate == nil || !t.TaskDate.Equal(*q.Date)) {
			return false
		}
		if q.Status != "" && t.Status != q.Status {
			return false
		}
		return q.TaskType == "" || t.TaskType == q.TaskType
	}), nil
}

func (m *mockTaskRepo) Update(_ context.Context, t *model.Task) error {
	m.s.tasks[t.TaskID] = *t
	return nil
}

func (m *mockTaskRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.s.tasks[id]; !ok {
		return pkgerrors.ErrNoRowsAffected
	}
	delete(m.s.tasks, id)
	return nil
}

func (m *mockTaskRepo) Stats(_ context.Context, teacherID string) (*repository.TaskStats, error) {
	var st repository.TaskStats
	for _, t := range m.s.tasks {
		if t.TeacherID != teacherID {
			continue
		}
		st.Total++
		switch t.Status {
		case model.TaskStatusPending:
			st.Pending++
			if t.PriorityLevel == "high" {
				st.HighPriority++
			}
		case model.TaskStatusCompleted:
			st.Completed++
		}
	}
	return &st, nil
}

func (m *mockTaskRepo) ListDue(_ context.Context, teacherID string, now time.Time) ([]model.Task, error) {
	return m.sorted(func(t model.Task) bool {
		return t.TeacherID == teacherID && t.Status == model.TaskStatusPending &&
			t.RemindAt != nil && !t.RemindAt.After(now)
	}), nil
}

func (m *mockTaskRepo) MarkReminded(_ context.Context, now time.Time, limit int) ([]model.Task, error) {
	due := m.sorted(func(t model.Task) bool {
		return t.Status == model.TaskStatusPending && t.RemindedAt == nil &&
			t.RemindAt != nil && !t.RemindAt.After(now)
	})
	if len(due) > limit {
		due = due[:limit]
	}
	for i := range due {
		due[i].RemindedAt = &now
		m.s.tasks[due[i].TaskID] = due[i]
	}
	return due, nil
}

// ── Mock WeeklyNoteRepository ──

type mockWeeklyNoteRepo struct{ s *memStore }

func noteKey(teacherID, scheduleID string, year, week int) string {
	return fmt.Sprintf("%s/%s/%d/%d", teacherID, scheduleID, year, week)
}

func (m *mockWeeklyNoteRepo) Get(_ context.Context, teacherID, scheduleID string, year, week int) (*model.WeeklyNote, error) {
	if n, ok := m.s.notes[noteKey(teacherID, scheduleID, year, week)]; ok {
		return &n, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockWeeklyNoteRepo) Upsert(_ context.Context, n *model.WeeklyNote) error {
	key := noteKey(n.TeacherID, n.ScheduleID, n.Year, n.WeekNumber)
	if existing, ok := m.s.notes[key]; ok {
		n.NoteID = existing.NoteID
	} else {
		n.NoteID = m.s.nextID("note")
	}
	n.UpdatedAt = time.Now()
	m.s.notes[key] = *n
	return nil
}
