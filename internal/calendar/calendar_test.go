package calendar_test

import (
	"testing"
	"time"

	"taskCalendar/internal/calendar"
	"taskCalendar/internal/models/task"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := calendar.ParseDate(s)
	require.NoError(t, err)
	return d
}

// TestMonthGrid_Properties проверяет сетку для каждого месяца диапазона лет
func TestMonthGrid_Properties(t *testing.T) {
	now := time.Date(2024, 3, 5, 12, 0, 0, 0, time.UTC)

	for year := 1900; year <= 2100; year++ {
		for month := time.January; month <= time.December; month++ {
			days := calendar.MonthGrid(year, month, now)

			require.NotEmpty(t, days)
			assert.Zero(t, len(days)%7, "%d-%02d: длина не кратна 7", year, month)
			assert.GreaterOrEqual(t, len(days), 28)
			assert.LessOrEqual(t, len(days), 42)
			assert.Equal(t, time.Sunday, days[0].Weekday, "%d-%02d", year, month)
			assert.Equal(t, time.Saturday, days[len(days)-1].Weekday, "%d-%02d", year, month)

			seen := map[string]int{}
			inMonth := 0
			for i, d := range days {
				if i > 0 {
					assert.Equal(t, days[i-1].Time.AddDate(0, 0, 1), d.Time, "сетка должна быть непрерывной")
				}
				if d.InMonth {
					inMonth++
					seen[d.Date]++
				}
			}

			daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
			assert.Equal(t, daysInMonth, inMonth)
			for day := 1; day <= daysInMonth; day++ {
				key := calendar.FormatDate(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
				assert.Equal(t, 1, seen[key], "день %s должен встретиться ровно один раз", key)
			}
		}
	}
}

func TestMonthGrid_Overflow(t *testing.T) {
	// февраль 2026 начинается в воскресенье и заканчивается в субботу
	days := calendar.MonthGrid(2026, time.February, time.Time{})
	assert.Len(t, days, 28)
	assert.Equal(t, "2026-02-01", days[0].Date)
	assert.Equal(t, "2026-02-28", days[27].Date)

	// март 2024: с 25 февраля по 6 апреля
	days = calendar.MonthGrid(2024, time.March, time.Time{})
	assert.Len(t, days, 42)
	assert.Equal(t, "2024-02-25", days[0].Date)
	assert.False(t, days[0].InMonth)
	assert.Equal(t, "2024-04-06", days[41].Date)
	assert.False(t, days[41].InMonth)
	assert.True(t, days[5].InMonth)
	assert.Equal(t, "2024-03-01", days[5].Date)
}

func TestMonthGrid_Today(t *testing.T) {
	now := time.Date(2024, 3, 5, 23, 30, 0, 0, time.UTC)
	days := calendar.MonthGrid(2024, time.March, now)

	var today []string
	for _, d := range days {
		if d.IsToday {
			today = append(today, d.Date)
		}
	}
	assert.Equal(t, []string{"2024-03-05"}, today)

	// "сегодня" определяется в локации переданного момента
	loc := time.FixedZone("UTC+3", 3*60*60)
	days = calendar.MonthGrid(2024, time.March, now.In(loc))
	for _, d := range days {
		if d.IsToday {
			assert.Equal(t, "2024-03-06", d.Date)
		}
	}
}

func TestWeekGrid(t *testing.T) {
	tests := []struct {
		name  string
		ref   string
		first string
		last  string
	}{
		{name: "wednesday", ref: "2024-03-06", first: "2024-03-03", last: "2024-03-09"},
		{name: "sunday", ref: "2024-03-03", first: "2024-03-03", last: "2024-03-09"},
		{name: "saturday", ref: "2024-03-09", first: "2024-03-03", last: "2024-03-09"},
		{name: "spans months", ref: "2024-02-29", first: "2024-02-25", last: "2024-03-02"},
		{name: "spans years", ref: "2025-01-01", first: "2024-12-29", last: "2025-01-04"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			days := calendar.WeekGrid(date(t, tt.ref), time.Time{})
			require.Len(t, days, 7)
			assert.Equal(t, tt.first, days[0].Date)
			assert.Equal(t, tt.last, days[6].Date)
			assert.Equal(t, time.Sunday, days[0].Weekday)
			assert.Equal(t, time.Saturday, days[6].Weekday)
		})
	}
}

func TestDayGrid(t *testing.T) {
	ref := date(t, "2024-03-05")
	days := calendar.DayGrid(ref, ref.Add(10*time.Hour))
	require.Len(t, days, 1)
	assert.Equal(t, "2024-03-05", days[0].Date)
	assert.True(t, days[0].IsToday)
	assert.True(t, days[0].InMonth)
}

func TestGridAndRange(t *testing.T) {
	ref := date(t, "2024-03-15")

	from, to := calendar.Range(calendar.Grid(calendar.UnitMonth, ref, time.Time{}))
	assert.Equal(t, "2024-02-25", from)
	assert.Equal(t, "2024-04-06", to)

	from, to = calendar.Range(calendar.Grid(calendar.UnitWeek, ref, time.Time{}))
	assert.Equal(t, "2024-03-10", from)
	assert.Equal(t, "2024-03-16", to)

	from, to = calendar.Range(calendar.Grid(calendar.UnitDay, ref, time.Time{}))
	assert.Equal(t, "2024-03-15", from)
	assert.Equal(t, "2024-03-15", to)

	from, to = calendar.Range(nil)
	assert.Empty(t, from)
	assert.Empty(t, to)
}

func TestMonthBounds(t *testing.T) {
	from, to := calendar.MonthBounds(2024, 2)
	assert.Equal(t, "2024-02-01", from)
	assert.Equal(t, "2024-02-31", to)

	from, to = calendar.MonthBounds(987, 11)
	assert.Equal(t, "0987-11-01", from)
	assert.Equal(t, "0987-11-31", to)
}

func TestNavigation(t *testing.T) {
	tests := []struct {
		name string
		unit calendar.Unit
		ref  string
		prev string
		next string
	}{
		{name: "day across month", unit: calendar.UnitDay, ref: "2024-03-01", prev: "2024-02-29", next: "2024-03-02"},
		{name: "day across year", unit: calendar.UnitDay, ref: "2024-12-31", prev: "2024-12-30", next: "2025-01-01"},
		{name: "week", unit: calendar.UnitWeek, ref: "2024-03-05", prev: "2024-02-27", next: "2024-03-12"},
		{name: "month from last day", unit: calendar.UnitMonth, ref: "2024-01-31", prev: "2023-12-01", next: "2024-02-01"},
		{name: "month across year", unit: calendar.UnitMonth, ref: "2024-12-15", prev: "2024-11-01", next: "2025-01-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := date(t, tt.ref)
			assert.Equal(t, tt.prev, calendar.FormatDate(calendar.Prev(tt.unit, ref)))
			assert.Equal(t, tt.next, calendar.FormatDate(calendar.Next(tt.unit, ref)))
		})
	}
}

func TestParseUnit(t *testing.T) {
	for raw, want := range map[string]calendar.Unit{
		"day": calendar.UnitDay, "daily": calendar.UnitDay,
		"Week": calendar.UnitWeek, "weekly": calendar.UnitWeek,
		"month": calendar.UnitMonth, "monthly": calendar.UnitMonth, "": calendar.UnitMonth,
	} {
		got, err := calendar.ParseUnit(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := calendar.ParseUnit("year")
	assert.Error(t, err)
}

func TestParseDate(t *testing.T) {
	_, err := calendar.ParseDate("2024-02-30")
	assert.Error(t, err)

	d, err := calendar.ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, time.UTC, d.Location())
	assert.Equal(t, "2024-02-29", calendar.FormatDate(d))
}

func TestTasksForDate(t *testing.T) {
	tasks := []*task.Task{
		{ID: 3, Date: "2024-03-05"},
		{ID: 1, Date: "2024-03-06"},
		{ID: 2, Date: "2024-03-05"},
	}

	got := calendar.TasksForDate("2024-03-05", tasks)
	require.Len(t, got, 2)
	assert.Equal(t, int64(3), got[0].ID)
	assert.Equal(t, int64(2), got[1].ID)

	assert.Empty(t, calendar.TasksForDate("2024-03-07", tasks))
	assert.NotNil(t, calendar.TasksForDate("2024-03-07", tasks))
}

func TestGroup(t *testing.T) {
	days := calendar.WeekGrid(date(t, "2024-03-05"), time.Time{})
	tasks := []*task.Task{
		{ID: 1, Date: "2024-03-05"},
		{ID: 2, Date: "2024-03-05"},
		{ID: 3, Date: "2024-03-09"},
		{ID: 4, Date: "2024-04-01"},
	}

	cells := calendar.Group(days, tasks)
	require.Len(t, cells, 7)
	assert.Equal(t, "2024-03-05", cells[2].Date)
	require.Len(t, cells[2].Tasks, 2)
	assert.Equal(t, int64(1), cells[2].Tasks[0].ID)
	assert.Equal(t, int64(2), cells[2].Tasks[1].ID)
	assert.Len(t, cells[6].Tasks, 1)
	assert.NotNil(t, cells[0].Tasks)
	assert.Empty(t, cells[0].Tasks)
}

func TestMovePatch(t *testing.T) {
	src := &task.Task{ID: 1, Date: "2024-03-05"}

	patch, changed := calendar.MovePatch(src, "2024-03-05")
	assert.False(t, changed)
	assert.True(t, patch.IsEmpty())

	patch, changed = calendar.MovePatch(src, "2024-03-07")
	assert.True(t, changed)
	require.NotNil(t, patch.Date)
	assert.Equal(t, "2024-03-07", *patch.Date)
	assert.Nil(t, patch.Title)
	assert.Nil(t, patch.Category)
	assert.Nil(t, patch.UserID)
	assert.Nil(t, patch.Description)
}

func TestDuplicateOf(t *testing.T) {
	desc := "5 km"
	src := &task.Task{
		ID:          7,
		Title:       "Run",
		Description: &desc,
		Category:    "training",
		Date:        "2024-03-05",
		UserID:      "emily",
	}

	dup := calendar.DuplicateOf(src)
	assert.Equal(t, "Run", dup.Title)
	assert.Equal(t, "training", dup.Category)
	assert.Equal(t, "2024-03-05", dup.Date)
	assert.Equal(t, "emily", dup.UserID)
	require.NotNil(t, dup.Description)
	assert.Equal(t, "5 km", *dup.Description)

	// изменения исходной задачи не переходят в копию
	desc = "10 km"
	assert.Equal(t, "5 km", *dup.Description)
}
