package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"taskCalendar/internal/config"
	"taskCalendar/internal/handlers"
	"taskCalendar/internal/logger"
	"taskCalendar/internal/middleware"
	"taskCalendar/internal/reference"
	"taskCalendar/internal/repository/task/inmemory"
	"taskCalendar/internal/repository/task/sqlite"
	"taskCalendar/internal/service"
	"taskCalendar/internal/worker"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

// Repository - хранилище задач вместе с управлением жизненным циклом
type Repository interface {
	service.TaskRepository
	Init(ctx context.Context) error
	Close()
}

type App struct {
	config     *config.Config
	server     *http.Server
	repository Repository
	service    *service.TaskService
	worker     *worker.MaintenanceWorker
	shutdowns  []func() // функции для graceful shutdown
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

func (a *App) Init(ctx context.Context) error {
	if err := initLogger(a.config); err != nil {
		return err
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Завершение работы логгирования...")
		logger.Sync()
	})

	ref, err := reference.Load(a.config.Reference.Path)
	if err != nil {
		return fmt.Errorf("загрузка справочников: %w", err)
	}

	repo, err := OpenRepository(ctx, a.config)
	if err != nil {
		return err
	}
	a.repository = repo
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("App: Закрытие хранилища...")
		repo.Close()
	})

	if err := repo.Init(ctx); err != nil {
		return fmt.Errorf("инициализация схемы: %w", err)
	}

	a.service = service.NewTaskService(repo, ref)
	router := NewRouter(a.config, handlers.NewTaskHandler(a.service))

	a.server = &http.Server{
		Addr:              a.config.GetServerAddr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if a.config.Maintenance.Enabled {
		a.worker, err = worker.NewMaintenanceWorker(a.service, a.config.Maintenance.Schedule, nil)
		if err != nil {
			return err
		}
	}

	logger.Info("App: Инициализация завершена",
		zap.String("repository", a.config.Repository.Type),
		zap.String("addr", a.server.Addr))
	return nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливается
func (a *App) Run(ctx context.Context) error {
	workerCtx, stopWorker := context.WithCancel(ctx)
	workerDone := make(chan struct{})
	if a.worker != nil {
		go func() {
			defer close(workerDone)
			if err := a.worker.Start(workerCtx); err != nil {
				logger.Error("App: Ошибка запуска обслуживания", err)
			}
		}()
	} else {
		close(workerDone)
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("App: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("App: Получен сигнал остановки")
	case err := <-serverErr:
		if err != nil {
			logger.Error("App: Сервер завершился с ошибкой", err)
			runErr = fmt.Errorf("http сервер: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		logger.Error("App: Ошибка остановки сервера", err)
	}

	stopWorker()
	<-workerDone

	a.Shutdown()
	return runErr
}

// Shutdown выполняет функции остановки в обратном порядке
func (a *App) Shutdown() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}

// Migrate приводит схему к текущей версии и завершается
func Migrate(ctx context.Context, cfg *config.Config) error {
	if err := initLogger(cfg); err != nil {
		return err
	}
	defer logger.Sync()

	repo, err := OpenRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := repo.Init(ctx); err != nil {
		return fmt.Errorf("миграция схемы: %w", err)
	}
	return nil
}

func OpenRepository(ctx context.Context, cfg *config.Config) (Repository, error) {
	switch cfg.Repository.Type {
	case "inmemory":
		logger.Info("App: Используется хранилище в памяти")
		return inmemory.NewTaskStorage(), nil
	case "sqlite":
		storage, err := sqlite.New(ctx, cfg.DBPath(), sqlite.WithBusyTimeout(cfg.Database.BusyTimeout))
		if err != nil {
			return nil, fmt.Errorf("открытие SQLite: %w", err)
		}
		return storage, nil
	default:
		return nil, fmt.Errorf("неизвестный тип репозитория %q", cfg.Repository.Type)
	}
}

func NewRouter(cfg *config.Config, h *handlers.TaskHandler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.Server.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))
	r.Use(middleware.RateLimit(cfg.Server.RateLimit))
	r.Use(chimw.Timeout(cfg.Server.RequestTimeout))

	h.Mount(r)

	return otelhttp.NewHandler(r, "task-calendar")
}

func initLogger(cfg *config.Config) error {
	if err := logger.Init(cfg.Logging.Development, cfg.Logging.Level); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	return nil
}
