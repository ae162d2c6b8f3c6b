package grid

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestWeekDateRange(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		week      int
		wantStart string
		wantEnd   string
	}{
		{"周一开学第1周", "2024-09-02", 1, "2024-09-02", "2024-09-06"},
		{"周一开学第2周", "2024-09-02", 2, "2024-09-09", "2024-09-13"},
		{"周三开学第1周对齐到周一", "2024-09-04", 1, "2024-09-02", "2024-09-06"},
		{"周日开学第1周", "2024-09-01", 1, "2024-08-26", "2024-08-30"},
		{"跨年", "2024-09-02", 18, "2024-12-30", "2025-01-03"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotStart, gotEnd := WeekDateRange(date(tt.start), tt.week)
			if !gotStart.Equal(date(tt.wantStart)) || !gotEnd.Equal(date(tt.wantEnd)) {
				t.Errorf("WeekDateRange(%s,%d)=(%s,%s)，期望 (%s,%s)",
					tt.start, tt.week, gotStart.Format("2006-01-02"), gotEnd.Format("2006-01-02"),
					tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestWeekDateRange_IgnoresTimeOfDay(t *testing.T) {
	loc := time.FixedZone("CST", 8*3600)
	start := time.Date(2024, 9, 2, 23, 30, 0, 0, loc)
	s, e := WeekDateRange(start, 1)
	if !s.Equal(date("2024-09-02")) || !e.Equal(date("2024-09-06")) {
		t.Errorf("时间分量不应影响周范围，实际 (%s,%s)", s, e)
	}
}

func TestWeekdayFromDate(t *testing.T) {
	if got := WeekdayFromDate(date("2024-09-02")); got != 1 {
		t.Errorf("2024-09-02 应为周一，实际 %d", got)
	}
	if got := WeekdayFromDate(date("2024-09-08")); got != 7 {
		t.Errorf("周日应为 7，实际 %d", got)
	}
}

func TestDateInWeek(t *testing.T) {
	got := DateInWeek(date("2024-09-05"), 1)
	if !got.Equal(date("2024-09-02")) {
		t.Errorf("期望 2024-09-02，实际 %s", got.Format("2006-01-02"))
	}
	got = DateInWeek(date("2024-09-02"), 5)
	if !got.Equal(date("2024-09-06")) {
		t.Errorf("期望 2024-09-06，实际 %s", got.Format("2006-01-02"))
	}
}

func TestInRange(t *testing.T) {
	s, e := date("2024-09-02"), date("2024-09-06")
	if !InRange(date("2024-09-02"), s, e) || !InRange(date("2024-09-06"), s, e) {
		t.Error("区间端点应包含在内")
	}
	if InRange(date("2024-09-07"), s, e) {
		t.Error("周六不在区间内")
	}
}

func TestCurrentWeekNumber(t *testing.T) {
	start := date("2024-09-02")
	tests := []struct {
		today string
		want  int
	}{
		{"2024-08-20", 1},
		{"2024-09-02", 1},
		{"2024-09-08", 1},
		{"2024-09-09", 2},
		{"2024-09-15", 2},
		{"2024-09-16", 3},
	}
	for _, tt := range tests {
		if got := CurrentWeekNumber(start, date(tt.today)); got != tt.want {
			t.Errorf("CurrentWeekNumber(%s)=%d，期望 %d", tt.today, got, tt.want)
		}
	}
}
