package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"taskCalendar/internal/logger"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Maintainer interface {
	Maintain(ctx context.Context) error
}

// MaintenanceWorker по расписанию cron сбрасывает WAL и обновляет статистику базы
type MaintenanceWorker struct {
	target   Maintainer
	schedule string
	timeout  time.Duration
	cron     *cron.Cron
	runs     atomic.Int64
}

func NewMaintenanceWorker(target Maintainer, schedule string, timeout *time.Duration) (*MaintenanceWorker, error) {
	if _, err := cron.ParseStandard(schedule); err != nil {
		return nil, fmt.Errorf("неверное расписание обслуживания %q: %w", schedule, err)
	}

	timeoutToSet := time.Minute
	if timeout != nil {
		timeoutToSet = *timeout
	}

	cl := cronLogger{}
	return &MaintenanceWorker{
		target:   target,
		schedule: schedule,
		timeout:  timeoutToSet,
		cron:     cron.New(cron.WithLogger(cl), cron.WithChain(cron.SkipIfStillRunning(cl))),
	}, nil
}

// Start регистрирует задачу и блокируется до отмены ctx
func (w *MaintenanceWorker) Start(ctx context.Context) error {
	if _, err := w.cron.AddFunc(w.schedule, func() { w.Run(ctx) }); err != nil {
		return fmt.Errorf("регистрация задачи обслуживания: %w", err)
	}

	logger.Info("Worker: Обслуживание по расписанию запущено", zap.String("schedule", w.schedule))
	w.cron.Start()

	<-ctx.Done()

	logger.Info("Worker: Обслуживание по расписанию останавливается")
	<-w.cron.Stop().Done()
	return nil
}

// Run выполняет одно обслуживание с ограничением по времени
func (w *MaintenanceWorker) Run(ctx context.Context) {
	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	if err := w.target.Maintain(ctx); err != nil {
		logger.Warn("Worker: Ошибка обслуживания хранилища", zap.Error(err))
		return
	}

	runs := w.runs.Add(1)
	logger.Info("Worker: Обслуживание завершено",
		zap.Int64("runs", runs),
		zap.Duration("ms", time.Since(start)))
}

func (w *MaintenanceWorker) Runs() int64 {
	return w.runs.Load()
}

// cronLogger направляет сообщения планировщика в общий логгер
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...any) {
	logger.Logger.Sugar().Debugw("Worker: cron "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...any) {
	logger.Logger.Sugar().Errorw("Worker: cron "+msg, append(keysAndValues, "error", err)...)
}
