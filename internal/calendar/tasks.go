package calendar

import "taskCalendar/internal/models/task"

// Cell - день сетки вместе с его задачами
type Cell struct {
	Day
	Tasks []*task.Task `json:"tasks"`
}

// TasksForDate возвращает задачи на дату в порядке хранилища
func TasksForDate(date string, tasks []*task.Task) []*task.Task {
	result := make([]*task.Task, 0)
	for _, t := range tasks {
		if t.Date == date {
			result = append(result, t)
		}
	}
	return result
}

func Group(days []Day, tasks []*task.Task) []Cell {
	byDate := make(map[string][]*task.Task, len(days))
	for _, t := range tasks {
		byDate[t.Date] = append(byDate[t.Date], t)
	}

	cells := make([]Cell, len(days))
	for i, d := range days {
		dayTasks := byDate[d.Date]
		if dayTasks == nil {
			dayTasks = []*task.Task{}
		}
		cells[i] = Cell{Day: d, Tasks: dayTasks}
	}
	return cells
}

// MovePatch - перенос задачи на другую дату. false означает, что дата совпадает
// и хранилище трогать не нужно.
func MovePatch(t *task.Task, target string) (task.Patch, bool) {
	if t.Date == target {
		return task.Patch{}, false
	}
	return task.NewPatch(task.WithDate(target)), true
}

// DuplicateOf копирует поля задачи в новую, связи с исходной нет
func DuplicateOf(t *task.Task) task.NewTask {
	var desc *string
	if t.Description != nil {
		d := *t.Description
		desc = &d
	}
	return task.NewTask{
		Title:       t.Title,
		Description: desc,
		Category:    t.Category,
		Date:        t.Date,
		UserID:      t.UserID,
	}
}
