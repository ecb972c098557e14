package service

import (
	"context"
	"fmt"
	"strings"
	"taskCalendar/internal/calendar"
	"taskCalendar/internal/logger"
	"taskCalendar/internal/models/task"
	"taskCalendar/internal/reference"
	"taskCalendar/internal/repository"
	"time"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskRepository interface {
	HealthCheck(ctx context.Context) error
	Maintain(ctx context.Context) error
	Create(ctx context.Context, newTask task.NewTask) (*task.Task, error)
	GetByID(ctx context.Context, id int64) (*task.Task, error)
	Update(ctx context.Context, id int64, patch task.Patch) (*task.Task, error)
	Delete(ctx context.Context, id int64) (int64, error)
	ListByDate(ctx context.Context, date, userID string) ([]*task.Task, error)
	ListByMonth(ctx context.Context, year, month int, userID string) ([]*task.Task, error)
	ListRange(ctx context.Context, from, to, userID string) ([]*task.Task, error)
	ListAll(ctx context.Context, userID string) ([]*task.Task, error)
}

// ListQuery - фильтры списка задач. Year и Month работают только вместе
// и имеют приоритет над Date.
type ListQuery struct {
	Date   string
	UserID string
	Year   int
	Month  int
}

// CalendarView - сетка дат с задачами и соседними периодами для навигации
type CalendarView struct {
	View  calendar.Unit   `json:"view"`
	Date  string          `json:"date"`
	From  string          `json:"from"`
	To    string          `json:"to"`
	Prev  string          `json:"prev"`
	Next  string          `json:"next"`
	Today string          `json:"today"`
	Days  []calendar.Cell `json:"days"`
}

type TaskService struct {
	repo TaskRepository
	ref  *reference.Data
	now  func() time.Time
}

type Option func(*TaskService)

func WithClock(now func() time.Time) Option {
	return func(s *TaskService) {
		s.now = now
	}
}

func NewTaskService(repo TaskRepository, ref *reference.Data, opts ...Option) *TaskService {
	if ref == nil {
		ref = reference.Default()
	}
	s := &TaskService{
		repo: repo,
		ref:  ref,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

func (s *TaskService) Maintain(ctx context.Context) error {
	if err := s.repo.Maintain(ctx); err != nil {
		return fmt.Errorf("обслуживание хранилища: %w", err)
	}
	return nil
}

func (s *TaskService) Users() []reference.User {
	return s.ref.Users
}

func (s *TaskService) Categories() []reference.Category {
	return s.ref.Categories
}

func (s *TaskService) ListTasks(ctx context.Context, q ListQuery) ([]*task.Task, error) {
	userID := s.ref.UserFilter(strings.TrimSpace(q.UserID))

	var (
		tasks []*task.Task
		err   error
	)
	switch {
	case q.Year != 0 && q.Month != 0:
		tasks, err = s.repo.ListByMonth(ctx, q.Year, q.Month, userID)
	case q.Date != "":
		tasks, err = s.repo.ListByDate(ctx, q.Date, userID)
	default:
		tasks, err = s.repo.ListAll(ctx, userID)
	}
	if err != nil {
		return nil, fromRepository("получение задач", err)
	}

	logger.Debug("Service: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.String("user_id", userID))
	return tasks, nil
}

// CreateTask подставляет пользователя по умолчанию, если он не указан
func (s *TaskService) CreateTask(ctx context.Context, newTask task.NewTask) (*task.Task, error) {
	newTask.UserID = strings.TrimSpace(newTask.UserID)
	if newTask.UserID == "" {
		newTask.UserID = s.ref.DefaultUser
	}
	if err := s.checkUser(newTask.UserID); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, newTask)
	if err != nil {
		return nil, fromRepository("создание задачи", err)
	}

	logger.Info("Service: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.String("date", created.Date),
		zap.String("user_id", created.UserID))
	return created, nil
}

func (s *TaskService) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fromRepository("получение задачи", err)
	}
	if t == nil {
		logger.Info("Service: Задача не найдена", zap.Int64("target_id", id))
		return nil, NewNotFound("задача", id)
	}
	return t, nil
}

// UpdateTask для отсутствующего id возвращает nil без ошибки
func (s *TaskService) UpdateTask(ctx context.Context, id int64, patch task.Patch) (*task.Task, error) {
	if patch.UserID != nil {
		if err := s.checkUser(*patch.UserID); err != nil {
			return nil, err
		}
	}

	updated, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, fromRepository("обновление задачи", err)
	}
	if updated == nil {
		logger.Info("Service: Обновление несуществующей задачи", zap.Int64("target_id", id))
	}
	return updated, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) (int64, error) {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return 0, fromRepository("удаление задачи", err)
	}

	logger.Info("Service: Удаление задачи", zap.Int64("target_id", id), zap.Int64("deleted", deleted))
	return deleted, nil
}

// MoveTask переносит задачу на другую дату. Если дата не меняется,
// хранилище не вызывается и moved == false.
func (s *TaskService) MoveTask(ctx context.Context, id int64, date string) (*task.Task, bool, error) {
	if err := repository.ValidateDate("date", date); err != nil {
		return nil, false, fromRepository("перенос задачи", err)
	}

	current, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, false, err
	}

	patch, changed := calendar.MovePatch(current, date)
	if !changed {
		logger.Debug("Service: Перенос на ту же дату пропущен", zap.Int64("task_id", id))
		return current, false, nil
	}

	moved, err := s.repo.Update(ctx, id, patch)
	if err != nil {
		return nil, false, fromRepository("перенос задачи", err)
	}
	if moved == nil {
		return nil, false, NewNotFound("задача", id)
	}

	logger.Info("Service: Задача перенесена",
		zap.Int64("task_id", id),
		zap.String("from", current.Date),
		zap.String("to", moved.Date))
	return moved, true, nil
}

func (s *TaskService) DuplicateTask(ctx context.Context, id int64) (*task.Task, error) {
	source, err := s.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}

	duplicate, err := s.repo.Create(ctx, calendar.DuplicateOf(source))
	if err != nil {
		return nil, fromRepository("копирование задачи", err)
	}

	logger.Info("Service: Задача скопирована",
		zap.Int64("source_id", id),
		zap.Int64("task_id", duplicate.ID))
	return duplicate, nil
}

// CalendarView строит сетку периода, содержащего ref, и раскладывает по ней задачи.
// Пустой ref означает сегодня.
func (s *TaskService) CalendarView(ctx context.Context, unit calendar.Unit, ref, userID string) (*CalendarView, error) {
	now := s.now()
	today := calendar.Today(now)

	refDate := today
	if ref != "" {
		parsed, err := calendar.ParseDate(ref)
		if err != nil {
			return nil, NewValidationError("date", "ожидается формат YYYY-MM-DD")
		}
		refDate = parsed
	}

	days := calendar.Grid(unit, refDate, now)
	from, to := calendar.Range(days)

	tasks, err := s.repo.ListRange(ctx, from, to, s.ref.UserFilter(strings.TrimSpace(userID)))
	if err != nil {
		return nil, fromRepository("получение задач календаря", err)
	}

	return &CalendarView{
		View:  unit,
		Date:  calendar.FormatDate(refDate),
		From:  from,
		To:    to,
		Prev:  calendar.FormatDate(calendar.Prev(unit, refDate)),
		Next:  calendar.FormatDate(calendar.Next(unit, refDate)),
		Today: calendar.FormatDate(today),
		Days:  calendar.Group(days, tasks),
	}, nil
}

// checkUser запрещает сохранять служебный токен "все пользователи".
// Незнакомые id допускаются: справочник лишь подсказка для клиента.
func (s *TaskService) checkUser(userID string) error {
	if userID == s.ref.AllToken {
		return NewValidationError("user_id", fmt.Sprintf("значение %q зарезервировано", userID))
	}
	if !s.ref.HasUser(userID) {
		logger.Debug("Service: Пользователь вне справочника", zap.String("user_id", userID))
	}
	return nil
}
