package repository

import (
	"strings"
	"taskCalendar/internal/models/task"
	"time"
)

func ValidateNewTask(t task.NewTask) error {
	if err := required("title", t.Title); err != nil {
		return err
	}
	if err := required("category", t.Category); err != nil {
		return err
	}
	if err := ValidateDate("date", t.Date); err != nil {
		return err
	}
	return required("user_id", t.UserID)
}

// ValidatePatch запрещает очищать обязательные поля
func ValidatePatch(p task.Patch) error {
	if p.Title != nil {
		if err := required("title", *p.Title); err != nil {
			return err
		}
	}
	if p.Category != nil {
		if err := required("category", *p.Category); err != nil {
			return err
		}
	}
	if p.Date != nil {
		if err := ValidateDate("date", *p.Date); err != nil {
			return err
		}
	}
	if p.UserID != nil {
		if err := required("user_id", *p.UserID); err != nil {
			return err
		}
	}
	return nil
}

// ValidateDate проверяет формат YYYY-MM-DD: на нём держится лексикографическое сравнение дат
func ValidateDate(field, date string) error {
	if err := required(field, date); err != nil {
		return err
	}
	if len(date) != len(task.DateLayout) {
		return NewValidationError(field, "ожидается формат YYYY-MM-DD")
	}
	if _, err := time.Parse(task.DateLayout, date); err != nil {
		return NewValidationError(field, "ожидается формат YYYY-MM-DD")
	}
	return nil
}

func ValidateMonth(year, month int) error {
	if year < 1 || year > 9999 {
		return NewValidationError("year", "ожидается значение от 1 до 9999")
	}
	if month < 1 || month > 12 {
		return NewValidationError("month", "ожидается значение от 1 до 12")
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return NewValidationError(field, "не может быть пустым")
	}
	return nil
}
