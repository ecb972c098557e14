// Package calendar строит сетки дат для дневного, недельного и месячного представления
// и группирует по ним задачи. Пакет не делает ввода-вывода.
package calendar

import (
	"fmt"
	"strings"
	"taskCalendar/internal/models/task"
	"time"
)

type Unit string

const (
	UnitDay   Unit = "day"
	UnitWeek  Unit = "week"
	UnitMonth Unit = "month"
)

func ParseUnit(raw string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "day", "daily":
		return UnitDay, nil
	case "week", "weekly":
		return UnitWeek, nil
	case "month", "monthly", "":
		return UnitMonth, nil
	default:
		return "", fmt.Errorf("неизвестный вид календаря %q", raw)
	}
}

// Day - одна ячейка сетки
type Day struct {
	Date    string       `json:"date"`
	Time    time.Time    `json:"-"`
	Weekday time.Weekday `json:"weekday"`
	InMonth bool         `json:"in_month"`
	IsToday bool         `json:"is_today"`
}

// ParseDate разбирает YYYY-MM-DD в полночь UTC
func ParseDate(date string) (time.Time, error) {
	t, err := time.Parse(task.DateLayout, date)
	if err != nil {
		return time.Time{}, fmt.Errorf("разбор даты %q: %w", date, err)
	}
	return t, nil
}

func FormatDate(t time.Time) string {
	return t.Format(task.DateLayout)
}

// Today возвращает календарный день переданного момента в его собственной локации
func Today(now time.Time) time.Time {
	return truncate(now)
}

// MonthBounds - границы выборки за месяц. Верхняя граница всегда "-31":
// при фиксированной ширине дат ни один день месяца лексикографически её не превышает.
func MonthBounds(year, month int) (string, string) {
	prefix := fmt.Sprintf("%04d-%02d", year, month)
	return prefix + "-01", prefix + "-31"
}

func MonthGrid(year int, month time.Month, now time.Time) []Day {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)

	start := first.AddDate(0, 0, -int(first.Weekday()))
	end := last.AddDate(0, 0, int(time.Saturday-last.Weekday()))

	return span(start, end, month, now)
}

func WeekGrid(ref time.Time, now time.Time) []Day {
	ref = truncate(ref)
	start := ref.AddDate(0, 0, -int(ref.Weekday()))
	return span(start, start.AddDate(0, 0, 6), ref.Month(), now)
}

func DayGrid(ref time.Time, now time.Time) []Day {
	ref = truncate(ref)
	return span(ref, ref, ref.Month(), now)
}

func Grid(unit Unit, ref time.Time, now time.Time) []Day {
	switch unit {
	case UnitDay:
		return DayGrid(ref, now)
	case UnitWeek:
		return WeekGrid(ref, now)
	default:
		ref = truncate(ref)
		return MonthGrid(ref.Year(), ref.Month(), now)
	}
}

// Range - первая и последняя дата сетки включительно
func Range(days []Day) (string, string) {
	if len(days) == 0 {
		return "", ""
	}
	return days[0].Date, days[len(days)-1].Date
}

func Prev(unit Unit, ref time.Time) time.Time {
	ref = truncate(ref)
	switch unit {
	case UnitDay:
		return ref.AddDate(0, 0, -1)
	case UnitWeek:
		return ref.AddDate(0, 0, -7)
	default:
		return time.Date(ref.Year(), ref.Month()-1, 1, 0, 0, 0, 0, time.UTC)
	}
}

func Next(unit Unit, ref time.Time) time.Time {
	ref = truncate(ref)
	switch unit {
	case UnitDay:
		return ref.AddDate(0, 0, 1)
	case UnitWeek:
		return ref.AddDate(0, 0, 7)
	default:
		return time.Date(ref.Year(), ref.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	}
}

func span(start, end time.Time, month time.Month, now time.Time) []Day {
	today := FormatDate(Today(now))
	days := make([]Day, 0, int(end.Sub(start).Hours()/24)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		date := FormatDate(d)
		days = append(days, Day{
			Date:    date,
			Time:    d,
			Weekday: d.Weekday(),
			InMonth: d.Month() == month,
			IsToday: date == today,
		})
	}
	return days
}

// truncate переносит календарный день в полночь UTC, чтобы AddDate не зависел от переходов времени
func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
