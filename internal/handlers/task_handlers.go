package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"taskCalendar/internal/calendar"
	"taskCalendar/internal/handlers/dto"
	"taskCalendar/internal/logger"
	"taskCalendar/internal/models/task"
	"taskCalendar/internal/reference"
	"taskCalendar/internal/service"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

const serviceName = "task-calendar"

type Service interface {
	HealthCheck(ctx context.Context) error
	ListTasks(ctx context.Context, q service.ListQuery) ([]*task.Task, error)
	CreateTask(ctx context.Context, newTask task.NewTask) (*task.Task, error)
	GetTask(ctx context.Context, id int64) (*task.Task, error)
	UpdateTask(ctx context.Context, id int64, patch task.Patch) (*task.Task, error)
	DeleteTask(ctx context.Context, id int64) (int64, error)
	MoveTask(ctx context.Context, id int64, date string) (*task.Task, bool, error)
	DuplicateTask(ctx context.Context, id int64) (*task.Task, error)
	CalendarView(ctx context.Context, unit calendar.Unit, ref, userID string) (*service.CalendarView, error)
	Users() []reference.User
	Categories() []reference.Category
}

type TaskHandler struct {
	TaskService Service
}

func NewTaskHandler(taskService Service) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

// Mount регистрирует маршруты API на роутере
func (h *TaskHandler) Mount(r chi.Router) {
	r.Get("/health", h.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", h.ListTasks)   // GET /api/tasks
			r.Post("/", h.CreateTask) // POST /api/tasks

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetTask)                 // GET /api/tasks/{id}
				r.Put("/", h.UpdateTask)              // PUT /api/tasks/{id}
				r.Delete("/", h.DeleteTask)           // DELETE /api/tasks/{id}
				r.Post("/move", h.MoveTask)           // POST /api/tasks/{id}/move
				r.Post("/duplicate", h.DuplicateTask) // POST /api/tasks/{id}/duplicate
			})
		})

		r.Get("/calendar", h.Calendar)     // GET /api/calendar
		r.Get("/users", h.Users)           // GET /api/users
		r.Get("/categories", h.Categories) // GET /api/categories
	})
}

func (h *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unavailable"),
			toPayload("service", serviceName),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("status", "ok"),
		toPayload("service", serviceName),
	)
}

func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	year, err := optionalInt(r, "year")
	if err != nil {
		logger.Warn("HTTP: Неверное значение параметра", zap.String("query", "year"), zap.Error(err))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	month, err := optionalInt(r, "month")
	if err != nil {
		logger.Warn("HTTP: Неверное значение параметра", zap.String("query", "month"), zap.Error(err))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	query := service.ListQuery{
		Date:   r.URL.Query().Get("date"),
		UserID: userParam(r),
		Year:   year,
		Month:  month,
	}

	tasks, err := h.TaskService.ListTasks(r.Context(), query)
	if err != nil {
		handleError(w, r, err, "list_tasks", "Failed to fetch tasks")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks))
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if strings.TrimSpace(request.Title) == "" || request.Category == "" || request.Date == "" {
		logger.Warn("HTTP: Ошибка валидации",
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "Title, category, and date are required")
		return
	}

	created, err := h.TaskService.CreateTask(r.Context(), request.ToNewTask())
	if err != nil {
		handleError(w, r, err, "create_task", "Failed to create task")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.Int64("task_id", created.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithJSON(w, http.StatusCreated,
		toPayload("id", created.ID),
		toPayload("success", true),
		toPayload("task", dto.FromTask(created)),
	)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	t, err := h.TaskService.GetTask(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "get_task", "Failed to fetch task")
		return
	}

	responseWithBody(w, http.StatusOK, dto.FromTask(t))
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	id, err := parseID(r)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var request dto.UpdateTaskRequest
	decoder := json.NewDecoder(r.Body)
	defer r.Body.Close()

	if err := decoder.Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверно переданы параметры обновления: "+err.Error())
		return
	}

	updated, err := h.TaskService.UpdateTask(r.Context(), id, request.ToPatch())
	if err != nil {
		handleError(w, r, err, "update_task", "Failed to update task")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.Int64("task_id", id),
		zap.Bool("found", updated != nil),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("success", true),
		toPayload("task", dto.FromTask(updated)),
	)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	deleted, err := h.TaskService.DeleteTask(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "delete_task", "Failed to delete task")
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("success", true),
		toPayload("deleted", deleted),
	)
}

func (h *TaskHandler) MoveTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	var request dto.MoveTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	moved, changed, err := h.TaskService.MoveTask(r.Context(), id, request.Date)
	if err != nil {
		handleError(w, r, err, "move_task", "Failed to move task")
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("success", true),
		toPayload("moved", changed),
		toPayload("task", dto.FromTask(moved)),
	)
}

func (h *TaskHandler) DuplicateTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		logger.Warn("HTTP: Не удалось получить id", zap.Error(err), zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	duplicate, err := h.TaskService.DuplicateTask(r.Context(), id)
	if err != nil {
		handleError(w, r, err, "duplicate_task", "Failed to duplicate task")
		return
	}

	responseWithJSON(w, http.StatusCreated,
		toPayload("id", duplicate.ID),
		toPayload("success", true),
		toPayload("task", dto.FromTask(duplicate)),
	)
}

// Calendar - GET /api/calendar?view=month&date=2024-03-05&userId=all
func (h *TaskHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	unit, err := calendar.ParseUnit(r.URL.Query().Get("view"))
	if err != nil {
		logger.Warn("HTTP: Неверное значение параметра", zap.String("query", "view"), zap.Error(err))
		responseWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	view, err := h.TaskService.CalendarView(r.Context(), unit, r.URL.Query().Get("date"), userParam(r))
	if err != nil {
		handleError(w, r, err, "calendar_view", "Failed to fetch calendar")
		return
	}

	logger.Info("HTTP_OUT: Календарь построен",
		zap.String("view", string(unit)),
		zap.Int("days", len(view.Days)),
		zap.Duration("ms", time.Since(start)))

	responseWithBody(w, http.StatusOK, dto.FromCalendarView(view))
}

func (h *TaskHandler) Users(w http.ResponseWriter, r *http.Request) {
	responseWithBody(w, http.StatusOK, h.TaskService.Users())
}

func (h *TaskHandler) Categories(w http.ResponseWriter, r *http.Request) {
	responseWithBody(w, http.StatusOK, h.TaskService.Categories())
}
