// Package migrations хранит версионированные SQL миграции таблицы задач.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// UserIDVersion - миграция, добавляющая колонку user_id
const UserIDVersion = 2
