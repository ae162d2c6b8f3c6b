package grid

import "time"

// DateOnly 截断为 UTC 零点，日期比较统一以此为准
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WeekdayFromDate 返回 1..7，周日为 7
func WeekdayFromDate(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}

// MondayOf 所在周的周一
func MondayOf(t time.Time) time.Time {
	d := DateOnly(t)
	return d.AddDate(0, 0, -(WeekdayFromDate(d) - 1))
}

// WeekDateRange 计算学期第 week 周的周一与周五
func WeekDateRange(semesterStart time.Time, week int) (time.Time, time.Time) {
	target := DateOnly(semesterStart).AddDate(0, 0, (week-1)*7)
	monday := MondayOf(target)
	return monday, monday.AddDate(0, 0, Weekdays-1)
}

// DateInWeek 同一周内指定星期的日期
func DateInWeek(anyDay time.Time, weekday int) time.Time {
	return MondayOf(anyDay).AddDate(0, 0, weekday-1)
}

// InRange 日期是否落在 [start, end] 闭区间
func InRange(t, start, end time.Time) bool {
	d := DateOnly(t)
	return !d.Before(DateOnly(start)) && !d.After(DateOnly(end))
}

// CurrentWeekNumber 今天所在的教学周，开学当天计为第 1 天，最小为 1
func CurrentWeekNumber(semesterStart, today time.Time) int {
	days := int(DateOnly(today).Sub(DateOnly(semesterStart)).Hours()/24) + 1
	week := (days + 6) / 7
	if week < 1 {
		return 1
	}
	return week
}
