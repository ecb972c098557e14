package dto

import (
	"taskCalendar/internal/calendar"
	"taskCalendar/internal/models/task"
	"taskCalendar/internal/service"
	"time"
)

type CreateTaskRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Category    string  `json:"category"`
	Date        string  `json:"date"`
	UserID      string  `json:"user_id"`
}

func (r CreateTaskRequest) ToNewTask() task.NewTask {
	return task.NewTask{
		Title:       r.Title,
		Description: r.Description,
		Category:    r.Category,
		Date:        r.Date,
		UserID:      r.UserID,
	}
}

// UpdateTaskRequest - отсутствующее в JSON поле не меняется
type UpdateTaskRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Category    *string `json:"category,omitempty"`
	Date        *string `json:"date,omitempty"`
	UserID      *string `json:"user_id,omitempty"`
}

func (r UpdateTaskRequest) ToPatch() task.Patch {
	opts := make([]task.PatchOption, 0, 5)
	if r.Title != nil {
		opts = append(opts, task.WithTitle(*r.Title))
	}
	if r.Description != nil {
		opts = append(opts, task.WithDescription(*r.Description))
	}
	if r.Category != nil {
		opts = append(opts, task.WithCategory(*r.Category))
	}
	if r.Date != nil {
		opts = append(opts, task.WithDate(*r.Date))
	}
	if r.UserID != nil {
		opts = append(opts, task.WithUserID(*r.UserID))
	}
	return task.NewPatch(opts...)
}

type MoveTaskRequest struct {
	Date string `json:"date"`
}

type TaskResponse struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Category    string    `json:"category"`
	Date        string    `json:"date"`
	UserID      string    `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromTask(t *task.Task) *TaskResponse {
	if t == nil {
		return nil
	}
	return &TaskResponse{
		ID:          t.ID,
		Title:       t.Title,
		Description: t.Description,
		Category:    t.Category,
		Date:        t.Date,
		UserID:      t.UserID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func FromTaskList(tasks []*task.Task) []*TaskResponse {
	result := make([]*TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t)
	}
	return result
}

type CalendarDay struct {
	Date    string          `json:"date"`
	Weekday string          `json:"weekday"`
	InMonth bool            `json:"in_month"`
	IsToday bool            `json:"is_today"`
	Tasks   []*TaskResponse `json:"tasks"`
}

type CalendarResponse struct {
	View  calendar.Unit `json:"view"`
	Date  string        `json:"date"`
	From  string        `json:"from"`
	To    string        `json:"to"`
	Prev  string        `json:"prev"`
	Next  string        `json:"next"`
	Today string        `json:"today"`
	Days  []CalendarDay `json:"days"`
}

func FromCalendarView(v *service.CalendarView) CalendarResponse {
	days := make([]CalendarDay, len(v.Days))
	for i, cell := range v.Days {
		days[i] = CalendarDay{
			Date:    cell.Date,
			Weekday: cell.Weekday.String(),
			InMonth: cell.InMonth,
			IsToday: cell.IsToday,
			Tasks:   FromTaskList(cell.Tasks),
		}
	}
	return CalendarResponse{
		View:  v.View,
		Date:  v.Date,
		From:  v.From,
		To:    v.To,
		Prev:  v.Prev,
		Next:  v.Next,
		Today: v.Today,
		Days:  days,
	}
}
