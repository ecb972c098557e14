package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"taskCalendar/internal/calendar"
	"taskCalendar/internal/logger"
	"taskCalendar/internal/models/task"
	repo "taskCalendar/internal/repository"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

const (
	driverName = "sqlite"

	slowQuery = 100 * time.Millisecond

	taskColumns = `id, title, description, category, date, user_id, created_at, updated_at`
)

type Storage struct {
	db           *sql.DB
	migrationDSN string
	busyTimeout  time.Duration
	now          func() time.Time

	initOnce sync.Once
	initErr  error
}

type Option func(*Storage)

// WithClock подменяет источник времени для created_at/updated_at
func WithClock(now func() time.Time) Option {
	return func(s *Storage) {
		s.now = now
	}
}

func WithBusyTimeout(timeout time.Duration) Option {
	return func(s *Storage) {
		s.busyTimeout = timeout
	}
}

// New открывает файл базы, создавая каталог данных при необходимости.
// Схема не трогается до вызова Init.
func New(ctx context.Context, path string, opts ...Option) (*Storage, error) {
	s := &Storage{
		busyTimeout: 5 * time.Second,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := ensureDir(path); err != nil {
		logger.Error("Repository: Не удалось создать каталог данных", err, zap.String("path", path))
		return nil, err
	}

	pragmas := fmt.Sprintf("_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)", s.busyTimeout.Milliseconds())
	s.migrationDSN = path + "?" + pragmas + "&_txlock=immediate"

	db, err := sql.Open(driverName, path+"?"+pragmas)
	if err != nil {
		logger.Error("Repository: Ошибка открытия базы", err)
		return nil, fmt.Errorf("открытие базы: %w", err)
	}

	// SQLite лучше всего работает с одним писателем
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	s.db = db
	logger.Info("Repository: Успешное подключение к SQLite", zap.String("path", path))
	return s, nil
}

// NewWithDB оборачивает готовое соединение. Init для такого хранилища недоступен.
func NewWithDB(db *sql.DB, opts ...Option) *Storage {
	s := &Storage{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storage) Close() {
	s.db.Close()
	logger.Info("Repository: Закрытие соединения SQLite")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return repo.NewStorageError("проверка соединения ping", err)
	}
	return nil
}

// Maintain сбрасывает WAL в основной файл и обновляет статистику планировщика
func (s *Storage) Maintain(ctx context.Context) error {
	start := time.Now()

	var busy, logFrames, checkpointed int
	err := s.db.QueryRowContext(ctx, `PRAGMA wal_checkpoint(TRUNCATE)`).Scan(&busy, &logFrames, &checkpointed)
	if err != nil {
		logger.Error("Repository: Ошибка checkpoint WAL", err)
		return repo.NewStorageError("checkpoint WAL", err)
	}

	if _, err := s.db.ExecContext(ctx, `PRAGMA optimize`); err != nil {
		logger.Error("Repository: Ошибка PRAGMA optimize", err)
		return repo.NewStorageError("оптимизация базы", err)
	}

	logger.Info("Repository: Обслуживание базы завершено",
		zap.Int("busy", busy),
		zap.Int("wal_frames", logFrames),
		zap.Int("checkpointed", checkpointed),
		zap.Duration("ms", time.Since(start)))
	return nil
}

func (s *Storage) Create(ctx context.Context, newTask task.NewTask) (*task.Task, error) {
	if err := repo.ValidateNewTask(newTask); err != nil {
		return nil, err
	}

	start := time.Now()
	now := s.now().UTC()

	query := `INSERT INTO tasks
				(title, description, category, date, user_id, created_at, updated_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.ExecContext(ctx, query,
		newTask.Title,
		nullString(newTask.Description),
		newTask.Category,
		newTask.Date,
		newTask.UserID,
		now,
		now,
	)
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, repo.NewStorageError("добавление задачи", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		logger.Error("Repository: Не удалось получить id задачи", err)
		return nil, repo.NewStorageError("получение id задачи", err)
	}

	s.observe("create", start)

	created := &task.Task{
		ID:        id,
		Title:     newTask.Title,
		Category:  newTask.Category,
		Date:      newTask.Date,
		UserID:    newTask.UserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if newTask.Description != nil {
		desc := *newTask.Description
		created.Description = &desc
	}
	return created, nil
}

// GetByID возвращает nil без ошибки, если задачи нет
func (s *Storage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	start := time.Now()

	t, err := scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		logger.Error("Repository: Не удалось получить задачу", err, zap.Int64("task_id", id))
		return nil, repo.NewStorageError("получение задачи", err)
	}

	s.observe("get_by_id", start)
	return t, nil
}

// Update меняет только переданные поля и всегда обновляет updated_at.
// Для несуществующего id возвращает nil без ошибки.
func (s *Storage) Update(ctx context.Context, id int64, patch task.Patch) (*task.Task, error) {
	if err := repo.ValidatePatch(patch); err != nil {
		return nil, err
	}

	start := time.Now()

	sets := make([]string, 0, 6)
	args := make([]any, 0, 7)
	if patch.Title != nil {
		sets = append(sets, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		sets = append(sets, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Category != nil {
		sets = append(sets, "category = ?")
		args = append(args, *patch.Category)
	}
	if patch.Date != nil {
		sets = append(sets, "date = ?")
		args = append(args, *patch.Date)
	}
	if patch.UserID != nil {
		sets = append(sets, "user_id = ?")
		args = append(args, *patch.UserID)
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, s.now().UTC(), id)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		logger.Error("Repository: Не удалось начать транзакцию", err)
		return nil, repo.NewStorageError("обновление задачи", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...)
	if err != nil {
		logger.Error("Repository: Не удалось обновить задачу", err, zap.Int64("task_id", id))
		return nil, repo.NewStorageError("обновление задачи", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, repo.NewStorageError("обновление задачи", err)
	}
	if affected == 0 {
		logger.Info("Repository: Обновление несуществующей задачи пропущено", zap.Int64("task_id", id))
		return nil, nil
	}

	updated, err := scanTask(tx.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
	if err != nil {
		logger.Error("Repository: Не удалось прочитать обновлённую задачу", err, zap.Int64("task_id", id))
		return nil, repo.NewStorageError("обновление задачи", err)
	}

	if err := tx.Commit(); err != nil {
		logger.Error("Repository: Не удалось зафиксировать обновление", err)
		return nil, repo.NewStorageError("обновление задачи", err)
	}

	s.observe("update", start)
	return updated, nil
}

// Delete идемпотентен: удаление отсутствующего id возвращает 0 без ошибки
func (s *Storage) Delete(ctx context.Context, id int64) (int64, error) {
	start := time.Now()

	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		logger.Error("Repository: Не удалось удалить задачу", err, zap.Duration("ms", time.Since(start)))
		return 0, repo.NewStorageError("удаление задачи", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return 0, repo.NewStorageError("удаление задачи", err)
	}

	s.observe("delete", start)
	return affected, nil
}

func (s *Storage) ListByDate(ctx context.Context, date, userID string) ([]*task.Task, error) {
	if err := repo.ValidateDate("date", date); err != nil {
		return nil, err
	}
	return s.list(ctx, "list_by_date", []string{"date = ?"}, []any{date}, userID, "created_at, id")
}

// ListByMonth выбирает задачи в диапазоне [YYYY-MM-01, YYYY-MM-31]
func (s *Storage) ListByMonth(ctx context.Context, year, month int, userID string) ([]*task.Task, error) {
	if err := repo.ValidateMonth(year, month); err != nil {
		return nil, err
	}
	from, to := calendar.MonthBounds(year, month)
	return s.list(ctx, "list_by_month", []string{"date >= ?", "date <= ?"}, []any{from, to}, userID, "date, created_at, id")
}

func (s *Storage) ListRange(ctx context.Context, from, to, userID string) ([]*task.Task, error) {
	if err := repo.ValidateDate("from", from); err != nil {
		return nil, err
	}
	if err := repo.ValidateDate("to", to); err != nil {
		return nil, err
	}
	return s.list(ctx, "list_range", []string{"date >= ?", "date <= ?"}, []any{from, to}, userID, "date, created_at, id")
}

func (s *Storage) ListAll(ctx context.Context, userID string) ([]*task.Task, error) {
	return s.list(ctx, "list_all", nil, nil, userID, "date, created_at, id")
}

func (s *Storage) list(ctx context.Context, op string, conds []string, args []any, userID, order string) ([]*task.Task, error) {
	start := time.Now()

	if userID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, userID)
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(conds) > 0 {
		query += ` WHERE ` + strings.Join(conds, " AND ")
	}
	query += ` ORDER BY ` + order

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.String("operation", op), zap.Duration("ms", time.Since(start)))
		return nil, repo.NewStorageError("получение задач", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err, zap.String("operation", op))
			return nil, repo.NewStorageError("сканирование задачи", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, repo.NewStorageError("итерация по строкам", err)
	}

	s.observe(op, start)
	return tasks, nil
}

func (s *Storage) observe(op string, start time.Time) {
	if elapsed := time.Since(start); elapsed > slowQuery {
		logger.Warn("Repository: Медленный запрос", zap.String("operation", op), zap.Duration("ms", elapsed))
	}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*task.Task, error) {
	t := &task.Task{}
	var description sql.NullString
	var createdAt, updatedAt sql.NullTime

	err := row.Scan(
		&t.ID,
		&t.Title,
		&description,
		&t.Category,
		&t.Date,
		&t.UserID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		desc := description.String
		t.Description = &desc
	}
	t.CreatedAt = createdAt.Time.UTC()
	t.UpdatedAt = updatedAt.Time.UTC()
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func ensureDir(path string) error {
	if path == "" || strings.Contains(path, ":memory:") {
		return fmt.Errorf("путь к файлу базы не задан")
	}
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("создание каталога %q: %w", dir, err)
	}
	return nil
}
