package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"taskCalendar/internal/logger"
	"taskCalendar/internal/migrations"
	"time"

	"github.com/golang-migrate/migrate/v4"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

// migrateMu сериализует миграции всех хранилищ процесса, межпроцессные гонки
// разрешает блокировка записи SQLite
var migrateMu sync.Mutex

// Init приводит схему к текущей версии. Повторные вызовы возвращают результат первого.
func (s *Storage) Init(ctx context.Context) error {
	s.initOnce.Do(func() {
		s.initErr = s.migrate(ctx)
	})
	return s.initErr
}

func (s *Storage) migrate(ctx context.Context) error {
	if s.migrationDSN == "" {
		return fmt.Errorf("миграции недоступны: хранилище создано без пути к базе")
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	start := time.Now()

	conn, err := sql.Open(driverName, s.migrationDSN)
	if err != nil {
		return fmt.Errorf("открытие соединения для миграций: %w", err)
	}

	src, err := iofs.New(migrations.FS, ".")
	if err != nil {
		conn.Close()
		return fmt.Errorf("чтение миграций: %w", err)
	}

	driver, err := sqlitemigrate.WithInstance(conn, &sqlitemigrate.Config{})
	if err != nil {
		conn.Close()
		return fmt.Errorf("инициализация драйвера миграций: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		conn.Close()
		return fmt.Errorf("создание мигратора: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Warn("Repository: Ошибка закрытия мигратора", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	if err := baseline(ctx, conn, m); err != nil {
		logger.Error("Repository: Ошибка определения версии схемы", err)
		return err
	}

	if err := up(ctx, conn, m); err != nil {
		logger.Error("Repository: Миграция схемы не удалась", err)
		return err
	}

	version, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("получение версии схемы: %w", err)
	}

	logger.Info("Repository: Схема актуальна",
		zap.Uint("version", version),
		zap.Duration("ms", time.Since(start)))
	return nil
}

// baseline фиксирует версию, если колонка user_id уже добавлена в обход мигратора,
// чтобы ALTER не выполнялся повторно
func baseline(ctx context.Context, conn *sql.DB, m *migrate.Migrate) error {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		version, dirty = 0, false
	} else if err != nil {
		return fmt.Errorf("получение версии схемы: %w", err)
	}

	if version >= migrations.UserIDVersion && !dirty {
		return nil
	}

	exists, err := hasColumn(ctx, conn, "tasks", "user_id")
	if err != nil {
		return err
	}
	if !exists {
		if dirty {
			return fmt.Errorf("схема в незавершённом состоянии на версии %d", version)
		}
		return nil
	}

	logger.Info("Repository: Колонка user_id уже существует, версия схемы зафиксирована",
		zap.Uint("from_version", version),
		zap.Bool("dirty", dirty))
	return m.Force(migrations.UserIDVersion)
}

// up применяет миграции. Ошибка "duplicate column name" означает, что колонку
// успел добавить другой процесс: она проглатывается только после повторной проверки.
func up(ctx context.Context, conn *sql.DB, m *migrate.Migrate) error {
	err := m.Up()
	if err == nil || errors.Is(err, migrate.ErrNoChange) {
		return nil
	}
	if !isDuplicateColumn(err) {
		return fmt.Errorf("применение миграций: %w", err)
	}

	exists, cerr := hasColumn(ctx, conn, "tasks", "user_id")
	if cerr != nil {
		return cerr
	}
	if !exists {
		return fmt.Errorf("применение миграций: %w", err)
	}

	logger.Warn("Repository: Колонка user_id добавлена параллельной инициализацией", zap.Error(err))
	if err := m.Force(migrations.UserIDVersion); err != nil {
		return fmt.Errorf("фиксация версии схемы: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("применение миграций: %w", err)
	}
	return nil
}

func hasColumn(ctx context.Context, conn *sql.DB, table, column string) (bool, error) {
	var count int
	err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM pragma_table_info(?) WHERE name = ?`, table, column).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("проверка колонки %s.%s: %w", table, column, err)
	}
	return count > 0, nil
}

func isDuplicateColumn(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "duplicate column name")
}
