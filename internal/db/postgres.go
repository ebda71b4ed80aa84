package db

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"github.com/ignatzorin/lostfound-backend/internal/config"
	"github.com/ignatzorin/lostfound-backend/internal/logger"
	"github.com/ignatzorin/lostfound-backend/migrations"
)

// migrationLockID ключ pg_advisory_lock: реплики, стартующие одновременно,
// применяют миграции по очереди.
const migrationLockID = 0x4c46_4d49

// NewPostgres открывает пул соединений и проверяет доступность базы.
func NewPostgres(ctx context.Context, dsn string, pool config.DBPoolConfig) (*sqlx.DB, error) {
	conn, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: не удалось подключиться: %w", err)
	}

	if pool.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(pool.MaxOpenConns)
	}
	if pool.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(pool.MaxIdleConns)
	}
	if pool.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(pool.ConnMaxLifetime)
	}
	return conn, nil
}

// MigrationSource возвращает каталог dir или встроенные миграции, если dir пуст.
func MigrationSource(dir string) fs.FS {
	if dir == "" {
		return migrations.FS
	}
	return os.DirFS(dir)
}

// RunMigrations применяет ещё не применённые *.sql из src в лексикографическом
// порядке, каждую в своей транзакции. Возвращает имена применённых.
func RunMigrations(ctx context.Context, conn *sqlx.DB, src fs.FS) ([]string, error) {
	c, err := conn.Connx(ctx)
	if err != nil {
		return nil, fmt.Errorf("postgres: соединение для миграций: %w", err)
	}
	defer c.Close()

	if _, err := c.ExecContext(ctx, `SELECT pg_advisory_lock($1)`, migrationLockID); err != nil {
		return nil, fmt.Errorf("postgres: блокировка миграций: %w", err)
	}
	defer func() {
		if _, err := c.ExecContext(context.Background(), `SELECT pg_advisory_unlock($1)`, migrationLockID); err != nil {
			logger.Log.WithError(err).Warn("postgres: не удалось снять блокировку миграций")
		}
	}()

	pending, err := pendingMigrations(ctx, c, src)
	if err != nil {
		return nil, err
	}

	applied := make([]string, 0, len(pending))
	for _, name := range pending {
		if err := applyMigration(ctx, c, src, name); err != nil {
			return applied, err
		}
		applied = append(applied, name)
		logger.Log.WithFields(logrus.Fields{"migration": name}).Info("postgres: миграция применена")
	}
	return applied, nil
}

// PendingMigrations возвращает миграции, которые ещё не применены.
func PendingMigrations(ctx context.Context, conn *sqlx.DB, src fs.FS) ([]string, error) {
	return pendingMigrations(ctx, conn, src)
}

type execQueryer interface {
	sqlx.ExecerContext
	sqlx.QueryerContext
}

func pendingMigrations(ctx context.Context, q execQueryer, src fs.FS) ([]string, error) {
	if _, err := q.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			name TEXT PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		return nil, fmt.Errorf("postgres: таблица миграций: %w", err)
	}

	names, err := MigrationFiles(src)
	if err != nil {
		return nil, err
	}

	var done []string
	if err := sqlx.SelectContext(ctx, q, &done, `SELECT name FROM schema_migrations`); err != nil {
		return nil, fmt.Errorf("postgres: список применённых миграций: %w", err)
	}
	applied := make(map[string]struct{}, len(done))
	for _, name := range done {
		applied[name] = struct{}{}
	}

	var pending []string
	for _, name := range names {
		if _, ok := applied[name]; !ok {
			pending = append(pending, name)
		}
	}
	return pending, nil
}

// MigrationFiles перечисляет *.sql в корне src по возрастанию имени.
func MigrationFiles(src fs.FS) ([]string, error) {
	entries, err := fs.ReadDir(src, ".")
	if err != nil {
		return nil, fmt.Errorf("postgres: каталог миграций: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

func applyMigration(ctx context.Context, c *sqlx.Conn, src fs.FS, name string) error {
	body, err := fs.ReadFile(src, path.Clean(name))
	if err != nil {
		return fmt.Errorf("postgres: чтение миграции %s: %w", name, err)
	}

	tx, err := c.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: транзакция миграции %s: %w", name, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, string(body)); err != nil {
		return fmt.Errorf("postgres: миграция %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO schema_migrations (name) VALUES ($1)`, name); err != nil {
		return fmt.Errorf("postgres: отметка миграции %s: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres: фиксация миграции %s: %w", name, err)
	}
	return nil
}
