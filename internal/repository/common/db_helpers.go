package common

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// GetOne читает одну строку в T. Отсутствие строки превращается в notFoundErr.
func GetOne[T any](ctx context.Context, q sqlx.QueryerContext, notFoundErr error, query string, args ...interface{}) (*T, error) {
	var dest T
	if err := sqlx.GetContext(ctx, q, &dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFoundErr
		}
		return nil, fmt.Errorf("get one: %w", err)
	}
	return &dest, nil
}

// SelectByColumn выбирает columns из table по равенству column = value.
func SelectByColumn[T any](ctx context.Context, q sqlx.QueryerContext, table, columns, column string, value interface{}, notFoundErr error) (*T, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1", columns, table, column)
	return GetOne[T](ctx, q, notFoundErr, query, value)
}

// WithTransaction выполняет fn в транзакции. Ошибка или паника в fn откатывают её.
func WithTransaction(ctx context.Context, db *sqlx.DB, fn func(*sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err = fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return fmt.Errorf("%w (rollback: %v)", err, rbErr)
		}
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ContainsPattern строит шаблон ILIKE для поиска подстроки. Символы % и _ из
// пользовательского ввода экранируются и совпадают только сами с собой.
func ContainsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}
