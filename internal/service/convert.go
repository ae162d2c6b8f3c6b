package service

import (
	"time"

	"github.com/xszhu002/ke-cheng-biao/internal/dto"
	"github.com/xszhu002/ke-cheng-biao/internal/grid"
	"github.com/xszhu002/ke-cheng-biao/internal/model"
)

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dto.DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return d, nil
}

func formatDate(t time.Time) string {
	return t.Format(dto.DateLayout)
}

func toArrangementResponse(a *model.Arrangement, color string) dto.ArrangementResponse {
	resp := dto.ArrangementResponse{
		ID:         a.ArrangementID,
		ScheduleID: a.ScheduleID,
		CourseType: string(a.CourseType),
		Weekday:    a.EffectiveWeekday(),
		TimeSlot:   a.TimeSlot,
		CourseName: a.CourseName,
		Classroom:  a.Classroom,
		Notes:      a.Notes,
		IsOriginal: a.IsOriginal,
		Color:      color,
	}
	if a.SpecificDate != nil {
		resp.SpecificDate = formatDate(*a.SpecificDate)
	}
	return resp
}

// renderArrangements 拆分常规课程与特需托管并分配颜色，周末的特需托管不显示
func renderArrangements(list []model.Arrangement) (regular, special []dto.ArrangementResponse) {
	regular = make([]dto.ArrangementResponse, 0, len(list))
	special = make([]dto.ArrangementResponse, 0)
	var palette grid.Palette
	for i := range list {
		a := &list[i]
		if !grid.IsDisplayWeekday(a.EffectiveWeekday()) {
			continue
		}
		resp := toArrangementResponse(a, palette.Assign(a.CourseName, a.ArrangementID))
		if a.IsSpecialCare() {
			special = append(special, resp)
		} else {
			regular = append(regular, resp)
		}
	}
	return regular, special
}

func toTeacherResponse(t *model.Teacher) *dto.TeacherResponse {
	return &dto.TeacherResponse{
		ID:      t.TeacherID,
		Name:    t.Name,
		Email:   t.Email,
		Phone:   t.Phone,
		Subject: t.Subject,
	}
}

func toSemesterResponse(s *model.Semester, now time.Time) *dto.SemesterResponse {
	return &dto.SemesterResponse{
		ID:          s.SemesterID,
		Name:        s.Name,
		StartDate:   formatDate(s.StartDate),
		EndDate:     formatDate(s.EndDate),
		IsCurrent:   s.IsCurrent,
		CurrentWeek: grid.CurrentWeekNumber(s.StartDate, now),
	}
}

func toTaskResponse(t *model.Task) *dto.TaskResponse {
	resp := &dto.TaskResponse{
		ID:            t.TaskID,
		TeacherID:     t.TeacherID,
		ScheduleID:    t.ScheduleID,
		Weekday:       t.Weekday,
		TimeSlot:      t.TimeSlot,
		Title:         t.Title,
		Description:   t.Description,
		TaskType:      t.TaskType,
		Status:        t.Status,
		PriorityLevel: t.PriorityLevel,
		RemindAt:      t.RemindAt,
		RemindedAt:    t.RemindedAt,
		CompletedAt:   t.CompletedAt,
	}
	if t.TaskDate != nil {
		resp.TaskDate = formatDate(*t.TaskDate)
	}
	return resp
}
