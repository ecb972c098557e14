package task

import (
	"time"
)

// DateLayout - формат календарного дня задачи
const DateLayout = "2006-01-02"

type Task struct {
	ID          int64     `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description,omitempty" db:"description"`
	Category    string    `json:"category" db:"category"`
	Date        string    `json:"date" db:"date"`
	UserID      string    `json:"user_id" db:"user_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewTask - поля, из которых хранилище создаёт задачу
type NewTask struct {
	Title       string
	Description *string
	Category    string
	Date        string
	UserID      string
}

// Patch - частичное обновление, nil поле не меняется
type Patch struct {
	Title       *string
	Description *string
	Category    *string
	Date        *string
	UserID      *string
}

func (p Patch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Category == nil && p.Date == nil && p.UserID == nil
}

// Apply применяет патч к копии задачи, временные метки не трогает
func (p Patch) Apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		desc := *p.Description
		t.Description = &desc
	}
	if p.Category != nil {
		t.Category = *p.Category
	}
	if p.Date != nil {
		t.Date = *p.Date
	}
	if p.UserID != nil {
		t.UserID = *p.UserID
	}
	return t
}

func (t *Task) Clone() *Task {
	if t == nil {
		return nil
	}
	c := *t
	if t.Description != nil {
		desc := *t.Description
		c.Description = &desc
	}
	return &c
}

func (t *Task) DescriptionText() string {
	if t.Description == nil {
		return ""
	}
	return *t.Description
}
