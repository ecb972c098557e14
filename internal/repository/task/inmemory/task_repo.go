package inmemory

import (
	"context"
	"sort"
	"sync"
	"taskCalendar/internal/calendar"
	"taskCalendar/internal/logger"
	"taskCalendar/internal/models/task"
	repo "taskCalendar/internal/repository"
	"time"

	"go.uber.org/zap"
)

// TaskStorage - хранилище в памяти с тем же контрактом, что и у SQLite
type TaskStorage struct {
	storage map[int64]*task.Task
	mtx     *sync.RWMutex
	ids     []int64
	nextID  int64
	now     func() time.Time
}

func NewTaskStorage() *TaskStorage {
	return NewTaskStorageWithClock(time.Now)
}

func NewTaskStorageWithClock(now func() time.Time) *TaskStorage {
	return &TaskStorage{
		storage: make(map[int64]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []int64{},
		now:     now,
	}
}

func (s *TaskStorage) Init(ctx context.Context) error {
	logger.Info("Repository: Хранилище в памяти готово")
	return nil
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	return nil
}

func (s *TaskStorage) Maintain(ctx context.Context) error {
	s.mtx.RLock()
	defer s.mtx.RUnlock()
	logger.Info("Repository: Обслуживание хранилища в памяти", zap.Int("tasks", len(s.storage)))
	return nil
}

func (s *TaskStorage) Close() {}

func (s *TaskStorage) Create(ctx context.Context, newTask task.NewTask) (*task.Task, error) {
	if err := repo.ValidateNewTask(newTask); err != nil {
		return nil, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.nextID++
	now := s.now().UTC()
	created := &task.Task{
		ID:        s.nextID,
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

	s.storage[created.ID] = created
	s.ids = append(s.ids, created.ID)
	return created.Clone(), nil
}

func (s *TaskStorage) GetByID(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.storage[id]
	if !ok {
		return nil, nil
	}
	return t.Clone(), nil
}

func (s *TaskStorage) Update(ctx context.Context, id int64, patch task.Patch) (*task.Task, error) {
	if err := repo.ValidatePatch(patch); err != nil {
		return nil, err
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	existing, ok := s.storage[id]
	if !ok {
		return nil, nil
	}

	updated := patch.Apply(*existing)
	updated.UpdatedAt = s.now().UTC()
	s.storage[id] = &updated
	return updated.Clone(), nil
}

func (s *TaskStorage) Delete(ctx context.Context, id int64) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.storage[id]; !ok {
		return 0, nil
	}

	delete(s.storage, id)
	for i, existing := range s.ids {
		if existing == id {
			s.ids = append(s.ids[:i], s.ids[i+1:]...)
			break
		}
	}
	return 1, nil
}

func (s *TaskStorage) ListByDate(ctx context.Context, date, userID string) ([]*task.Task, error) {
	if err := repo.ValidateDate("date", date); err != nil {
		return nil, err
	}
	return s.filter(func(t *task.Task) bool { return t.Date == date }, userID, false), nil
}

func (s *TaskStorage) ListByMonth(ctx context.Context, year, month int, userID string) ([]*task.Task, error) {
	if err := repo.ValidateMonth(year, month); err != nil {
		return nil, err
	}
	from, to := calendar.MonthBounds(year, month)
	return s.filter(func(t *task.Task) bool { return t.Date >= from && t.Date <= to }, userID, true), nil
}

func (s *TaskStorage) ListRange(ctx context.Context, from, to, userID string) ([]*task.Task, error) {
	if err := repo.ValidateDate("from", from); err != nil {
		return nil, err
	}
	if err := repo.ValidateDate("to", to); err != nil {
		return nil, err
	}
	return s.filter(func(t *task.Task) bool { return t.Date >= from && t.Date <= to }, userID, true), nil
}

func (s *TaskStorage) ListAll(ctx context.Context, userID string) ([]*task.Task, error) {
	return s.filter(func(*task.Task) bool { return true }, userID, true), nil
}

// filter идёт по порядку вставки, поэтому стабильная сортировка по дате
// сохраняет порядок создания внутри дня
func (s *TaskStorage) filter(match func(*task.Task) bool, userID string, byDate bool) []*task.Task {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	tasks := []*task.Task{}
	for _, id := range s.ids {
		t := s.storage[id]
		if !match(t) {
			continue
		}
		if userID != "" && t.UserID != userID {
			continue
		}
		tasks = append(tasks, t.Clone())
	}

	if byDate {
		sort.SliceStable(tasks, func(i, j int) bool {
			return tasks[i].Date < tasks[j].Date
		})
	}
	return tasks
}
